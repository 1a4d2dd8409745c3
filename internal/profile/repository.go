package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/impilo/fieldreport/internal/auth"
	"github.com/impilo/fieldreport/internal/db"
	"github.com/impilo/fieldreport/internal/scope"
)

const profileColumns = `id, display_name, email, role, district, persal_number, phone, organization, created_at, updated_at`

// Repository provides access to the profiles and credentials tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the profile and its credential row in one transaction.
func (r *Repository) Create(ctx context.Context, p Profile, passwordHash string) (*Profile, error) {
	var created *Profile
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const insertProfile = `
            INSERT INTO profiles (id, display_name, email, role, district, persal_number, phone, organization)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING ` + profileColumns

		row := tx.QueryRow(ctx, insertProfile,
			p.ID,
			strings.TrimSpace(p.DisplayName),
			strings.ToLower(strings.TrimSpace(p.Email)),
			p.Role,
			strings.TrimSpace(p.District),
			strings.TrimSpace(p.PersalNumber),
			strings.TrimSpace(p.Phone),
			strings.TrimSpace(p.Organization),
		)
		out, err := scanProfile(row)
		if err != nil {
			return err
		}

		const insertCredential = `
            INSERT INTO credentials (profile_id, email, password_hash, active)
            VALUES ($1, $2, $3, TRUE)
        `
		if _, err := tx.Exec(ctx, insertCredential, out.ID, out.Email, passwordHash); err != nil {
			return err
		}

		created = out
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// Get fetches one profile by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail fetches one profile by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// List returns profiles visible inside the scope, newest first.
func (r *Repository) List(ctx context.Context, s scope.Scope) ([]Profile, error) {
	base := `SELECT ` + profileColumns + ` FROM profiles`

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
		query = base + ` WHERE id = $1`
		args = append(args, s.UserID)
	default:
		// Fail closed: no scope, no rows.
		return []Profile{}, nil
	}
	query += ` ORDER BY display_name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return profiles, nil
}

// Update mutates the editable profile fields.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Profile, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	appendSet := func(column string, value *string) {
		if value == nil {
			return
		}
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, strings.TrimSpace(*value))
		idx++
	}

	appendSet("display_name", input.DisplayName)
	appendSet("persal_number", input.PersalNumber)
	appendSet("phone", input.Phone)
	appendSet("organization", input.Organization)

	if len(setParts) == 0 {
		return r.Get(ctx, input.ID)
	}
	setParts = append(setParts, "updated_at = now()")

	args = append(args, input.ID)
	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(setParts, ", "), idx, profileColumns)

	return scanProfile(r.pool.QueryRow(ctx, query, args...))
}

// SetRole changes role and district.
func (r *Repository) SetRole(ctx context.Context, id uuid.UUID, role, district string) (*Profile, error) {
	const query = `
        UPDATE profiles SET role = $2, district = $3, updated_at = now()
        WHERE id = $1
        RETURNING ` + profileColumns
	return scanProfile(r.pool.QueryRow(ctx, query, id, role, strings.TrimSpace(district)))
}

// Delete removes the profile record. The credential row is kept so the
// identity itself is never hard-deleted.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IdentityByEmail implements auth.IdentityStore.
func (r *Repository) IdentityByEmail(ctx context.Context, email string) (auth.Identity, string, bool, error) {
	const query = `
        SELECT p.id, p.display_name, p.email, p.role, p.district, c.password_hash, c.active
        FROM credentials c
        JOIN profiles p ON p.id = c.profile_id
        WHERE c.email = $1
    `
	var (
		identity auth.Identity
		hash     string
		active   bool
	)
	err := r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))).
		Scan(&identity.ID, &identity.DisplayName, &identity.Email, &identity.Role, &identity.District, &hash, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Identity{}, "", false, auth.ErrIdentityNotFound
		}
		return auth.Identity{}, "", false, err
	}
	return identity, hash, active, nil
}

// IdentityByID implements auth.IdentityStore.
func (r *Repository) IdentityByID(ctx context.Context, id uuid.UUID) (auth.Identity, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.Identity{}, auth.ErrIdentityNotFound
		}
		return auth.Identity{}, err
	}
	return auth.Identity{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Role:        p.Role,
		District:    p.District,
	}, nil
}

// UpdatePasswordHash implements auth.IdentityStore.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE credentials SET password_hash = $2, updated_at = now() WHERE profile_id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrIdentityNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.DisplayName, &p.Email, &p.Role, &p.District,
		&p.PersalNumber, &p.Phone, &p.Organization, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

