package attachment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("attachment not found")
	ErrForbidden = errors.New("forbidden")
	ErrNoFiles   = errors.New("at least one file is required")
)

// UploadStatus tracks the lifecycle of an attachment's files.
type UploadStatus string

const (
	StatusPending  UploadStatus = "pending"
	StatusComplete UploadStatus = "complete"
	StatusFailed   UploadStatus = "failed"
)

// Attachment is one submitted document: an optional attendance register plus
// any number of pictures. The record exists before its files finish
// uploading; Status says whether the URLs are final.
type Attachment struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"userId"`
	UserName    string       `json:"userName"`
	District    string       `json:"district,omitempty"`
	Title       string       `json:"title"`
	Notes       string       `json:"notes,omitempty"`
	Date        time.Time    `json:"date"`
	RegisterURL *string      `json:"registerAttachmentUrl,omitempty"`
	PictureURLs []string     `json:"pictureAttachmentUrls"`
	Status      UploadStatus `json:"uploadStatus"`
	UploadError string       `json:"uploadError,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// FileInput is one file received from the client, already read into memory.
type FileInput struct {
	Name        string
	ContentType string
	Body        []byte
}

// CreateInput is a new attachment submission.
type CreateInput struct {
	Title    string
	Notes    string
	Date     time.Time
	Register *FileInput
	Pictures []FileInput
}

// Validate checks the submission carries a title, a date and at least one file.
func (in *CreateInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return errors.New("title is required")
	}
	if in.Date.IsZero() {
		return errors.New("date is required")
	}
	if in.Register == nil && len(in.Pictures) == 0 {
		return ErrNoFiles
	}
	return nil
}

// FileCount returns how many files the submission carries.
func (in *CreateInput) FileCount() int {
	n := len(in.Pictures)
	if in.Register != nil {
		n++
	}
	return n
}

var whitespace = regexp.MustCompile(`\s+`)

// ObjectKey builds the storage key for one file. Whitespace in the original
// file name collapses to underscores so the key stays URL-safe.
func ObjectKey(attachmentID uuid.UUID, at time.Time, fileName string) string {
	safe := whitespace.ReplaceAllString(strings.TrimSpace(fileName), "_")
	return fmt.Sprintf("attachments/%s/%d_%s", attachmentID, at.UnixMilli(), safe)
}
