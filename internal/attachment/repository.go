package attachment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/impilo/fieldreport/internal/scope"
)

const attachmentColumns = `id, user_id, user_name, district, title, notes, date, register_url, picture_urls, status, upload_error, created_at`

// Repository provides access to the attachments table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the attachment record in its pending state, before any file
// has finished uploading.
func (r *Repository) Create(ctx context.Context, a Attachment) (*Attachment, error) {
	const query = `
        INSERT INTO attachments (id, user_id, user_name, district, title, notes, date, picture_urls, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, '{}', $8)
        RETURNING ` + attachmentColumns

	return scanAttachment(r.pool.QueryRow(ctx, query,
		a.ID, a.UserID, a.UserName, a.District,
		strings.TrimSpace(a.Title), strings.TrimSpace(a.Notes), a.Date, StatusPending))
}

// SetURLs patches the final file URLs in one statement and flips the record
// to complete.
func (r *Repository) SetURLs(ctx context.Context, id uuid.UUID, registerURL *string, pictureURLs []string) (*Attachment, error) {
	if pictureURLs == nil {
		pictureURLs = []string{}
	}
	const query = `
        UPDATE attachments
        SET register_url = $2, picture_urls = $3, status = $4, upload_error = ''
        WHERE id = $1
        RETURNING ` + attachmentColumns
	return scanAttachment(r.pool.QueryRow(ctx, query, id, registerURL, pictureURLs, StatusComplete))
}

// MarkFailed records the upload failure reason on the record.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attachments SET status = $2, upload_error = $3 WHERE id = $1`,
		id, StatusFailed, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Get fetches one attachment by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Attachment, error) {
	const query = `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1`
	return scanAttachment(r.pool.QueryRow(ctx, query, id))
}

// List returns attachments visible inside the scope, newest first.
func (r *Repository) List(ctx context.Context, s scope.Scope) ([]Attachment, error) {
	base := `SELECT ` + attachmentColumns + ` FROM attachments`

	var (
		query string
		args  []any
	)
	switch s.Kind {
	case scope.KindAll:
		query = base
	case scope.KindDistrict:
		query = base + ` WHERE district = $1`
		args = append(args, s.District)
	case scope.KindSelf:
		query = base + ` WHERE user_id = $1`
		args = append(args, s.UserID)
	default:
		// Fail closed: no scope, no rows.
		return []Attachment{}, nil
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := []Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, *a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return attachments, nil
}

// Delete removes the attachment record. Uploaded blobs are not reclaimed;
// see the retention note in the schema.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAttachment(row pgx.Row) (*Attachment, error) {
	var a Attachment
	err := row.Scan(&a.ID, &a.UserID, &a.UserName, &a.District, &a.Title, &a.Notes,
		&a.Date, &a.RegisterURL, &a.PictureURLs, &a.Status, &a.UploadError, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan attachment: %w", err)
	}
	if a.PictureURLs == nil {
		a.PictureURLs = []string{}
	}
	return &a, nil
}
