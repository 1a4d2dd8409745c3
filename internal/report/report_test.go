package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impilo/fieldreport/internal/activity"
	"github.com/impilo/fieldreport/internal/attachment"
)

func talk(people int) activity.Activity {
	return activity.Activity{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		UserName: "Thandi Nkosi",
		District: "uMgungundlovu",
		Kind:     activity.KindHealthTalk,
		Date:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Details: &activity.HealthTalkDetails{
			Venue:         "Community Hall",
			Topics:        []string{"Nutrition"},
			StartTime:     "09:00",
			EndTime:       "10:00",
			PeopleReached: people,
		},
	}
}

func schoolVisit(students int) activity.Activity {
	return activity.Activity{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		UserName: "Sipho Dlamini",
		District: "eThekwini",
		Kind:     activity.KindSchoolVisit,
		Date:     time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		Details: &activity.SchoolVisitDetails{
			SchoolName:      "Zola Primary",
			GradeLevels:     []string{"Grade 4"},
			Topic:           "Hygiene",
			StudentsReached: students,
			StartTime:       "08:00",
			EndTime:         "09:00",
		},
	}
}

func TestAggregateFixture(t *testing.T) {
	activities := []activity.Activity{
		talk(10), talk(20), talk(5),
		schoolVisit(7), schoolVisit(3),
	}

	summary, breakdown := Aggregate(activities, Config{})

	assert.Equal(t, 5, summary.TotalActivities)
	assert.Equal(t, 45, summary.PeopleReached)
	assert.InDelta(t, 9.0, summary.AvgPerActivity, 1e-9)
	assert.Equal(t, "Health Talk", summary.MostActive)
	assert.Equal(t, Breakdown{
		activity.KindHealthTalk:  3,
		activity.KindSchoolVisit: 2,
	}, breakdown)
}

func TestAggregateEmptyRange(t *testing.T) {
	summary, breakdown := Aggregate(nil, Config{})

	assert.Zero(t, summary.TotalActivities)
	assert.Zero(t, summary.PeopleReached)
	assert.Zero(t, summary.AvgPerActivity)
	assert.Equal(t, MostActiveNone, summary.MostActive)
	assert.Empty(t, breakdown)
}

func TestAggregateMostActiveTieKeepsFirstSeen(t *testing.T) {
	activities := []activity.Activity{
		schoolVisit(1), talk(1), schoolVisit(1), talk(1),
	}
	summary, _ := Aggregate(activities, Config{})
	assert.Equal(t, "School Visit", summary.MostActive)
}

func TestAggregateUnknownKindCountsInTotalOnly(t *testing.T) {
	unknown := activity.Activity{
		ID:   uuid.New(),
		Kind: activity.Kind("Home Visit"),
		Date: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	activities := []activity.Activity{talk(10), unknown}

	summary, breakdown := Aggregate(activities, Config{})

	assert.Equal(t, 2, summary.TotalActivities)
	assert.Equal(t, Breakdown{activity.KindHealthTalk: 1}, breakdown)

	counted := 0
	for _, n := range breakdown {
		counted += n
	}
	assert.Equal(t, summary.TotalActivities-1, counted)
}

func TestAggregateConfigFilters(t *testing.T) {
	a := talk(10)
	b := schoolVisit(5)

	summary, _ := Aggregate([]activity.Activity{a, b}, Config{UserID: a.UserID})
	assert.Equal(t, 1, summary.TotalActivities)
	assert.Equal(t, 10, summary.PeopleReached)

	summary, _ = Aggregate([]activity.Activity{a, b}, Config{
		From: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, 1, summary.TotalActivities)
	assert.Equal(t, 5, summary.PeopleReached)
}

func TestEscapeCell(t *testing.T) {
	assert.Equal(t, `"Jane, ""Doe"""`, escapeCell(`Jane, "Doe"`))
	assert.Equal(t, "plain", escapeCell("plain"))
	assert.Equal(t, "\"line\nbreak\"", escapeCell("line\nbreak"))
	assert.Equal(t, "", escapeCell(""))
}

func TestExportEscapesAndSubstitutesOther(t *testing.T) {
	a := talk(10)
	a.UserName = `Jane, "Doe"`
	details := a.Details.(*activity.HealthTalkDetails)
	details.Topics = []string{"Other"}
	details.OtherTopic = "Oral health"

	var sb strings.Builder
	require.NoError(t, Export(&sb, []activity.Activity{a}, nil))

	lines := strings.Split(sb.String(), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Activity ID,Activity Type,User Name,District,Date"))
	assert.Contains(t, lines[1], `"Jane, ""Doe"""`)
	assert.Contains(t, lines[1], "Oral health")
	assert.Contains(t, lines[1], ",10,")
	assert.NotContains(t, lines[1], "Other")
}

func TestExportAppendsAttachmentTableAfterBlankLine(t *testing.T) {
	registerURL := "https://cdn.example.com/attachments/x/1_register.pdf"
	at := attachment.Attachment{
		ID:          uuid.New(),
		UserName:    "Thandi Nkosi",
		District:    "uMgungundlovu",
		Title:       "Nutrition talk",
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		RegisterURL: &registerURL,
		PictureURLs: []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
	}

	var sb strings.Builder
	require.NoError(t, Export(&sb, []activity.Activity{talk(10)}, []attachment.Attachment{at}))

	lines := strings.Split(sb.String(), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "", lines[2])
	assert.Equal(t, strings.Join(attachmentHeaders, ","), lines[3])
	assert.Contains(t, lines[4], registerURL)
	assert.Contains(t, lines[4], `"https://cdn.example.com/a.jpg, https://cdn.example.com/b.jpg"`)
}
