package port

// ReferenceData supplies the lookup lists used to validate extracted fields.
type ReferenceData interface {
	// EmployeeNames returns (last, first) pairs.
	EmployeeNames() [][2]string
	// Projects returns project number to customer name.
	Projects() map[string]string
	Cities() []string
	Countries() []string
	Currencies() []string
}
