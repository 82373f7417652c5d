package domain

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// UserRole defines the role hierarchy.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// ValidUserRoles enumerates the roles a user may be assigned.
var ValidUserRoles = map[UserRole]bool{
	RoleAdmin:  true,
	RoleMember: true,
}

// InvoiceType classifies a scanned document into one of the supported
// extraction schemas.
type InvoiceType string

const (
	InvoiceTypeTimesheet InvoiceType = "timesheet"
	InvoiceTypeExpense   InvoiceType = "expense"
	InvoiceTypeReceipt   InvoiceType = "receipt"
)

// ExtractionStatus represents the lifecycle of a document's extraction.
type ExtractionStatus string

const (
	ExtractionStatusNotExtracted ExtractionStatus = "not extracted"
	ExtractionStatusProcessing   ExtractionStatus = "processing"
	ExtractionStatusCompleted    ExtractionStatus = "completed"
	ExtractionStatusFailed       ExtractionStatus = "failed"
)
