package storage

import (
	"context"
	"errors"
)

// NoopUploader returns an error signalling no backend is configured.
type NoopUploader struct{}

// Upload always fails, signalling the feature is unavailable.
func (NoopUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	return nil, errors.New("storage: no uploader configured")
}
