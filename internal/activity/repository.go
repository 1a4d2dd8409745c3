package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/impilo/fieldreport/internal/scope"
)

const activityColumns = `id, user_id, user_name, district, kind, date, details, created_at`

// Repository provides access to the activities table. Details live in a
// jsonb column keyed by the kind column.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts one activity row.
func (r *Repository) Create(ctx context.Context, a Activity) (*Activity, error) {
	details, err := json.Marshal(a.Details)
	if err != nil {
		return nil, err
	}

	const query = `
        INSERT INTO activities (id, user_id, user_name, district, kind, date, details)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + activityColumns

	return scanActivity(r.pool.QueryRow(ctx, query,
		a.ID, a.UserID, a.UserName, a.District, a.Kind, a.Date, details))
}

// Get fetches one activity by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Activity, error) {
	const query = `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	return scanActivity(r.pool.QueryRow(ctx, query, id))
}

// List returns activities visible inside the scope, newest first. The filter
// is applied on top of the scope, never instead of it.
func (r *Repository) List(ctx context.Context, s scope.Scope, f Filter) ([]Activity, error) {
	conditions := []string{}
	args := []any{}
	idx := 1

	add := func(condition string, value any) {
		conditions = append(conditions, fmt.Sprintf(condition, idx))
		args = append(args, value)
		idx++
	}

	switch s.Kind {
	case scope.KindAll:
	case scope.KindDistrict:
		add("district = $%d", s.District)
	case scope.KindSelf:
		add("user_id = $%d", s.UserID)
	default:
		// Fail closed: no scope, no rows.
		return []Activity{}, nil
	}

	if !f.From.IsZero() {
		add("date >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("date <= $%d", f.To)
	}
	if f.UserID != uuid.Nil {
		add("user_id = $%d", f.UserID)
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}

	query := `SELECT ` + activityColumns + ` FROM activities`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return activities, nil
}

// Delete removes one activity row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanActivity(row pgx.Row) (*Activity, error) {
	var (
		a   Activity
		raw []byte
	)
	err := row.Scan(&a.ID, &a.UserID, &a.UserName, &a.District, &a.Kind, &a.Date, &raw, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	details, err := DecodeDetails(a.Kind, raw)
	if err != nil {
		return nil, err
	}
	a.Details = details
	return &a, nil
}
