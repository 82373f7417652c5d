// Package refdata loads the reference lookup lists used to validate
// extracted fields: employee names, project-to-customer assignments, and
// cities from the administration workbooks, plus static currency and country
// tables.
package refdata

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"feldbeleg/internal/config"
)

// Provider implements port.ReferenceData over data loaded once at startup.
type Provider struct {
	names      [][2]string
	projects   map[string]string
	cities     []string
	countries  []string
	currencies []string
}

// Load reads the reference workbooks named in cfg. A missing cities file is
// tolerated; employees and projects are required.
func Load(cfg *config.RefDataConfig) (*Provider, error) {
	names, err := loadEmployees(cfg.EmployeesFile)
	if err != nil {
		return nil, fmt.Errorf("refdata.Load: employees: %w", err)
	}
	projects, err := loadProjects(cfg.ProjectsFile)
	if err != nil {
		return nil, fmt.Errorf("refdata.Load: projects: %w", err)
	}
	cities, err := loadCities(cfg.CitiesFile)
	if err != nil {
		cities = nil
	}
	return &Provider{
		names:      names,
		projects:   projects,
		cities:     cities,
		countries:  Countries,
		currencies: Currencies,
	}, nil
}

// NewStatic builds a provider from in-memory data (for tests and tooling).
func NewStatic(names [][2]string, projects map[string]string, cities []string) *Provider {
	return &Provider{
		names:      names,
		projects:   projects,
		cities:     cities,
		countries:  Countries,
		currencies: Currencies,
	}
}

func (p *Provider) EmployeeNames() [][2]string  { return p.names }
func (p *Provider) Projects() map[string]string { return p.projects }
func (p *Provider) Cities() []string            { return p.cities }
func (p *Provider) Countries() []string         { return p.countries }
func (p *Provider) Currencies() []string        { return p.currencies }

// loadEmployees reads (last, first) name pairs. The header cells "Nachname"
// and "Vorname" are discovered anywhere on the first sheet; the last-name
// column must come before the first-name column, matching the workbook
// layout the administration maintains.
func loadEmployees(path string) ([][2]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	lastRow, lastCol, firstCol := -1, -1, -1
	for r, row := range rows {
		for c, cell := range row {
			switch strings.ToLower(strings.TrimSpace(cell)) {
			case "nachname":
				lastRow, lastCol = r, c
			case "vorname":
				firstCol = c
			}
		}
		if lastCol >= 0 && firstCol >= 0 {
			break
		}
	}
	if lastCol < 0 || firstCol < 0 {
		return nil, fmt.Errorf("header cells Nachname/Vorname not found in %s", path)
	}
	if lastCol >= firstCol {
		return nil, fmt.Errorf("Nachname column must precede Vorname column in %s", path)
	}

	var names [][2]string
	for _, row := range rows[lastRow+1:] {
		last := cellAt(row, lastCol)
		first := cellAt(row, firstCol)
		if last == "" && first == "" {
			break
		}
		names = append(names, [2]string{last, first})
	}
	return names, nil
}

// loadProjects reads project number to customer name from the first two
// columns, skipping the header row.
func loadProjects(path string) (map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	projects := make(map[string]string)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		number := cellAt(row, 0)
		customer := cellAt(row, 1)
		if number == "" {
			continue
		}
		projects[number] = customer
	}
	return projects, nil
}

// loadCities reads one city per row from the first column.
func loadCities(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	var cities []string
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if city := cellAt(row, 0); city != "" {
			cities = append(cities, city)
		}
	}
	return cities, nil
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}
