package storage

import "context"

// UploadInput describes a single upload operation.
type UploadInput struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
	// Progress, when set, receives the integer upload percentage (0-100).
	// Callbacks are monotonic non-decreasing for a well-behaved transport.
	Progress func(percent int)
}

// UploadResult describes the persisted artefact.
type UploadResult struct {
	URL  string
	ETag string
}

// Uploader defines the behaviour for storing blobs.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}
