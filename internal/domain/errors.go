package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserInactive        = errors.New("user is inactive")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrInvalidRole         = errors.New("invalid user role")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrUnknownInvoiceType  = errors.New("unknown invoice type")
	ErrExtractionFailed    = errors.New("extraction failed")
	ErrEmptyDocument       = errors.New("document contains no readable text")
)
