// Package report aggregates activity slices into summaries and renders the
// downloadable CSV. Everything here is pure and synchronous; callers fetch
// the scoped data first.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/impilo/fieldreport/internal/activity"
)

// MostActiveNone is the placeholder when no activity falls in range.
const MostActiveNone = "None"

// Config narrows which activities count toward a report.
type Config struct {
	From   time.Time
	To     time.Time
	UserID uuid.UUID
}

// Matches reports whether the activity falls inside the config.
func (c Config) Matches(a activity.Activity) bool {
	if !c.From.IsZero() && a.Date.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && a.Date.After(c.To) {
		return false
	}
	if c.UserID != uuid.Nil && a.UserID != c.UserID {
		return false
	}
	return true
}

// Summary is the headline numbers shown above a report.
type Summary struct {
	TotalActivities int     `json:"totalActivities"`
	PeopleReached   int     `json:"peopleReached"`
	MostActive      string  `json:"mostActive"`
	AvgPerActivity  float64 `json:"avgPerActivity"`
}

// Breakdown counts activities per kind. Kinds this build does not recognise
// are counted in the summary total but omitted here.
type Breakdown map[activity.Kind]int

// Aggregate computes the summary and per-kind breakdown for the activities
// matching the config. AvgPerActivity is people reached per activity, zero
// when nothing matched.
func Aggregate(activities []activity.Activity, cfg Config) (Summary, Breakdown) {
	breakdown := Breakdown{}

	var (
		total      int
		reached    int
		mostActive string
		mostCount  int
	)

	for _, a := range activities {
		if !cfg.Matches(a) {
			continue
		}
		total++
		if a.Details != nil {
			reached += a.Details.Reached()
		}
		if !a.Kind.Known() {
			continue
		}
		breakdown[a.Kind]++
		// Strictly-greater keeps the first kind to reach the max.
		if breakdown[a.Kind] > mostCount {
			mostCount = breakdown[a.Kind]
			mostActive = string(a.Kind)
		}
	}

	summary := Summary{
		TotalActivities: total,
		PeopleReached:   reached,
		MostActive:      MostActiveNone,
	}
	if mostActive != "" {
		summary.MostActive = mostActive
	}
	if total > 0 {
		summary.AvgPerActivity = float64(reached) / float64(total)
	}
	return summary, breakdown
}
