package port

import (
	"context"
	"io"
)

// UploadInput describes one object headed for the archive: an uploaded
// scan or a generated export artifact.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput reports where the archive stored the object.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage is the document archive. Scans land here on upload and
// are downloaded again for each extraction attempt; presigned URLs give
// the back office short-lived access to export files.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
