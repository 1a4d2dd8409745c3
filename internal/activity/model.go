package activity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("activity not found")
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidKind = errors.New("invalid activity kind")
)

// Kind identifies one of the reportable activity types.
type Kind string

const (
	KindWeeklyPlan         Kind = "Weekly Plan"
	KindHealthTalk         Kind = "Health Talk"
	KindHealthCampaign     Kind = "Health Campaign"
	KindIMCITraining       Kind = "IMCI Training"
	KindSchoolVisit        Kind = "School Visit"
	KindCrecheVisit        Kind = "Creche Visit"
	KindOutbreakResponse   Kind = "Outbreak Response"
	KindSocialMobilization Kind = "Social Mobilization"
	KindTISH               Kind = "TISH"
	KindCornerToCorner     Kind = "Corner to Corner"
	KindSupportGroup       Kind = "Support Group"
)

// Kinds lists every known activity kind in presentation order.
var Kinds = []Kind{
	KindWeeklyPlan,
	KindHealthTalk,
	KindHealthCampaign,
	KindIMCITraining,
	KindSchoolVisit,
	KindCrecheVisit,
	KindOutbreakResponse,
	KindSocialMobilization,
	KindTISH,
	KindCornerToCorner,
	KindSupportGroup,
}

// Known reports whether k is one of the kinds this build understands.
func (k Kind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Activity is one field report logged by a health promoter.
type Activity struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	UserName  string    `json:"userName"`
	District  string    `json:"district,omitempty"`
	Kind      Kind      `json:"activityType"`
	Date      time.Time `json:"date"`
	Details   Details   `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON decodes the envelope first, then dispatches the details
// payload on the activity kind.
func (a *Activity) UnmarshalJSON(data []byte) error {
	type envelope struct {
		ID        uuid.UUID       `json:"id"`
		UserID    uuid.UUID       `json:"userId"`
		UserName  string          `json:"userName"`
		District  string          `json:"district"`
		Kind      Kind            `json:"activityType"`
		Date      time.Time       `json:"date"`
		Details   json.RawMessage `json:"details"`
		CreatedAt time.Time       `json:"createdAt"`
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	details, err := DecodeDetails(env.Kind, env.Details)
	if err != nil {
		return err
	}

	a.ID = env.ID
	a.UserID = env.UserID
	a.UserName = env.UserName
	a.District = env.District
	a.Kind = env.Kind
	a.Date = env.Date
	a.Details = details
	a.CreatedAt = env.CreatedAt
	return nil
}

// CreateInput is a new report as submitted by the author. Owner identity and
// district come from the authenticated caller, never from the payload.
type CreateInput struct {
	Kind    Kind
	Date    time.Time
	Details Details
}

// Validate checks the submission.
func (in *CreateInput) Validate() error {
	if !in.Kind.Known() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, in.Kind)
	}
	if in.Date.IsZero() {
		return errors.New("date is required")
	}
	if in.Details == nil {
		return errors.New("details are required")
	}
	if in.Details.Kind() != in.Kind {
		return fmt.Errorf("details do not match activity kind %q", in.Kind)
	}
	return in.Details.Validate()
}

// Filter narrows a scoped listing.
type Filter struct {
	From   time.Time
	To     time.Time
	UserID uuid.UUID
	Kind   Kind
}
