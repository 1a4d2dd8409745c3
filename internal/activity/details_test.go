package activity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDetailsDispatchesOnKind(t *testing.T) {
	raw := []byte(`{"venue":"Community Hall","topics":["Nutrition"],"startTime":"09:00","endTime":"10:30","peopleReached":25}`)

	details, err := DecodeDetails(KindHealthTalk, raw)
	require.NoError(t, err)

	talk, ok := details.(*HealthTalkDetails)
	require.True(t, ok)
	assert.Equal(t, "Community Hall", talk.Venue)
	assert.Equal(t, 25, talk.Reached())
	assert.NoError(t, talk.Validate())
}

func TestDecodeDetailsUnknownKindKeepsPayload(t *testing.T) {
	raw := []byte(`{"legacy":true}`)

	details, err := DecodeDetails(Kind("Home Visit"), raw)
	require.NoError(t, err)

	assert.Equal(t, Kind("Home Visit"), details.Kind())
	assert.Error(t, details.Validate())
	assert.Zero(t, details.Reached())

	out, err := json.Marshal(details)
	require.NoError(t, err)
	assert.JSONEq(t, `{"legacy":true}`, string(out))
}

func TestHealthTalkOtherTopicRequiresFreeText(t *testing.T) {
	talk := &HealthTalkDetails{
		Venue:         "Clinic",
		Topics:        []string{"Other"},
		StartTime:     "09:00",
		EndTime:       "10:00",
		PeopleReached: 5,
	}
	assert.Error(t, talk.Validate())

	talk.OtherTopic = "Oral health"
	assert.NoError(t, talk.Validate())
}

func TestTimeRangeMustEndAfterStart(t *testing.T) {
	plan := &WeeklyPlanDetails{
		Activity:  "Door-to-door visits",
		Venue:     "Ward 4",
		StartTime: "14:00",
		EndTime:   "13:00",
	}
	assert.Error(t, plan.Validate())

	plan.EndTime = "16:00"
	assert.NoError(t, plan.Validate())
}

func TestCrecheVisitReachedUsesChildrenCount(t *testing.T) {
	visit := &CrecheVisitDetails{
		CrecheName:             "Little Stars",
		AgeGroup:               "3-5",
		Topic:                  "Handwashing",
		ChildrenMindersReached: 4,
		ChildrenReached:        30,
		StartTime:              "09:00",
		EndTime:                "11:00",
	}
	require.NoError(t, visit.Validate())
	assert.Equal(t, 30, visit.Reached())
}

func TestSchoolVisitReachedUsesStudentCount(t *testing.T) {
	visit := &SchoolVisitDetails{
		SchoolName:      "Zola Primary",
		GradeLevels:     []string{"Grade 4", "Grade 5"},
		Topic:           "Hygiene",
		StudentsReached: 80,
		StartTime:       "08:00",
		EndTime:         "10:00",
	}
	require.NoError(t, visit.Validate())
	assert.Equal(t, 80, visit.Reached())
}

func TestSupportGroupRequiresEverySelection(t *testing.T) {
	group := &SupportGroupDetails{
		Venue:            "Clinic",
		SupportGroupType: "Other",
		Topic:            "Adherence",
		PhysicalActivity: "Walking",
		PeopleReached:    12,
		StartTime:        "09:00",
		EndTime:          "10:00",
	}
	assert.Error(t, group.Validate())

	group.OtherSupportGroupType = "Men's health"
	assert.NoError(t, group.Validate())
}
