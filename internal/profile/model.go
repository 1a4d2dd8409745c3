package profile

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/impilo/fieldreport/internal/scope"
	"github.com/impilo/fieldreport/internal/util"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidRole   = errors.New("invalid role")
	ErrInvalidPersal = errors.New("persal number must be exactly 8 characters")
	ErrForbidden     = errors.New("forbidden")
)

// Profile is a provisioned user account. The identity row (credentials) is
// kept even when the profile record is removed.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"displayName"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	District     string    `json:"district,omitempty"`
	PersalNumber string    `json:"persalNumber,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Organization string    `json:"organization,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProvisionInput captures an administrator-initiated account creation.
type ProvisionInput struct {
	DisplayName  string
	Email        string
	Password     string
	Role         string
	District     string
	PersalNumber string
	Phone        string
	Organization string
}

// UpdateInput mutates profile fields. Nil pointers leave fields unchanged.
type UpdateInput struct {
	ID           uuid.UUID
	DisplayName  *string
	PersalNumber *string
	Phone        *string
	Organization *string
}

// Validate checks the provisioning payload.
func (in *ProvisionInput) Validate() error {
	if err := util.RequireString(in.DisplayName, "display name"); err != nil {
		return err
	}
	if err := util.ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return err
	}
	if !scope.ValidRole(in.Role) {
		return ErrInvalidRole
	}
	if err := ValidatePersal(in.PersalNumber); err != nil {
		return err
	}
	return nil
}

// ValidatePersal accepts an empty persal number or exactly 8 characters.
func ValidatePersal(persal string) error {
	persal = strings.TrimSpace(persal)
	if persal != "" && len(persal) != 8 {
		return ErrInvalidPersal
	}
	return nil
}
