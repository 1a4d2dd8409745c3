package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/impilo/fieldreport/internal/activity"
	"github.com/impilo/fieldreport/internal/attachment"
)

// activityHeaders is the fixed column superset across every activity kind.
// Columns not applicable to a record stay blank.
var activityHeaders = []string{
	"Activity ID", "Activity Type",
	"User Name",
	"District", "Date", "Start Time", "End Time",
	"Venue", "Location", "People Reached", "Topic", "Notes",
	"Campaign Type", "Target Group",
	"Creche Name", "Age Group", "Children Minders Reached", "Children Reached",
	"Trainee Type",
	"Disease Type", "Severity Level",
	"School Name", "Grade Level", "Students Reached",
	"Mobilization Method",
	"Support Group Type", "Physical Activity",
}

var attachmentHeaders = []string{
	"Attachment ID", "User Name", "District", "Date", "Title", "Notes",
	"Register Attachment URL", "Picture Attachment URLs",
}

// Export renders the activities, and optionally a second table of
// attachments separated by a blank line, as CSV. Lines end in LF.
func Export(w io.Writer, activities []activity.Activity, attachments []attachment.Attachment) error {
	lines := []string{joinRow(activityHeaders)}
	for _, a := range activities {
		row := activityRow(a)
		cells := make([]string, len(activityHeaders))
		for i, header := range activityHeaders {
			cells[i] = escapeCell(row[header])
		}
		lines = append(lines, strings.Join(cells, ","))
	}

	if attachments != nil {
		lines = append(lines, "", joinRow(attachmentHeaders))
		for _, at := range attachments {
			lines = append(lines, strings.Join([]string{
				escapeCell(at.ID.String()),
				escapeCell(at.UserName),
				escapeCell(at.District),
				escapeCell(at.Date.Format("2006-01-02")),
				escapeCell(at.Title),
				escapeCell(at.Notes),
				escapeCell(stringOrEmpty(at.RegisterURL)),
				escapeCell(strings.Join(at.PictureURLs, ", ")),
			}, ","))
		}
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

// activityRow maps one activity onto the column superset. "Other" selections
// are replaced by their free-text values.
func activityRow(a activity.Activity) map[string]string {
	row := map[string]string{
		"Activity ID":   a.ID.String(),
		"Activity Type": string(a.Kind),
		"User Name":     a.UserName,
		"District":      a.District,
		"Date":          a.Date.Format("2006-01-02"),
	}

	switch d := a.Details.(type) {
	case *activity.WeeklyPlanDetails:
		row["Venue"] = d.Venue
		row["Notes"] = d.Activity
		setTimes(row, d.StartTime, d.EndTime)
	case *activity.HealthTalkDetails:
		row["Venue"] = d.Venue
		row["Topic"] = joinTopics(d.Topics, d.OtherTopic)
		row["People Reached"] = strconv.Itoa(d.PeopleReached)
		row["Notes"] = d.Notes
		setTimes(row, d.StartTime, d.EndTime)
	case *activity.HealthCampaignDetails:
		row["Venue"] = d.Venue
		row["Location"] = d.Location
		row["Campaign Type"] = orOther(d.CampaignType, d.OtherCampaignType)
		row["Target Group"] = orOther(d.TargetGroup, d.OtherTargetGroup)
		row["People Reached"] = strconv.Itoa(d.PeopleReached)
		row["Notes"] = d.Notes
		setTimes(row, d.StartTime, d.EndTime)
	case *activity.IMCITrainingDetails:
		row["Venue"] = d.Venue
		row["Trainee Type"] = orOther(d.TraineeType, d.OtherTraineeType)
		row["People Reached"] = strconv.Itoa(d.PeopleReached)
		row["Notes"] = d.Notes
		setTimes(row, d.StartTime, d.EndTime)
	case *activity.SchoolVisitDetails:
		row["School Name"] = d.SchoolName
		row["Grade Level"] = strings.Join(d.GradeLevels, ", ")
		row["Topic"] = orOther(d.Topic, d.OtherTopic)
		row["Students Reached"] = strconv.Itoa(d.StudentsReached)
		row["Notes"] = d.Notes
		setTimes(row, d.StartTime, d.EndTime)
	case *activity.CrecheVisitDetails:
		row["Creche Name"] = d.CrecheName
		row["Age Group"] = d.AgeGroup
		row["Topic"] = orOther(d.Topic, d.OtherTopic)
		row["Children Minders Reached"] = strconv.Itoa(d.ChildrenMindersReached)
		row["Children Reached"] = strconv.Itoa(d.ChildrenReached)
		row["Notes"] = d.Notes
		setTimes(row, d.StartTime, d.EndTime)
	case *activity.OutbreakResponseDetails:
		row["Location"] = d.Location
		row["Disease Type"] = orOther(d.DiseaseType, d.OtherDiseaseType)
		row["Severity Level"] = d.SeverityLevel
		row["Topic"] = orOther(d.Topic, d.OtherTopic)
		row["People Reached"] = strconv.Itoa(d.PeopleReached)
		row["Notes"] = d.Notes
		setTimes(row, d.StartTime, d.EndTime)
	case *activity.SocialMobilizationDetails:
		row["Location"] = d.Location
		row["Campaign Type"] = orOther(d.CampaignType, d.OtherCampaignType)
		row["Mobilization Method"] = orOther(d.MobilizationMethod, d.OtherMobilizationMethod)
		row["Topic"] = orOther(d.Topic, d.OtherTopic)
		row["People Reached"] = strconv.Itoa(d.PeopleReached)
		row["Notes"] = d.Notes
		setTimes(row, d.StartTime, d.EndTime)
	case *activity.TISHDetails:
		row["Venue"] = d.Venue
		row["Topic"] = orOther(d.Topic, d.OtherTopic)
		row["People Reached"] = strconv.Itoa(d.PeopleReached)
		row["Notes"] = d.Notes
		setTimes(row, d.StartTime, d.EndTime)
	case *activity.CornerToCornerDetails:
		row["Venue"] = d.Venue
		row["Topic"] = orOther(d.Topic, d.OtherTopic)
		row["People Reached"] = strconv.Itoa(d.PeopleReached)
		row["Notes"] = d.Notes
		setTimes(row, d.StartTime, d.EndTime)
	case *activity.SupportGroupDetails:
		row["Venue"] = d.Venue
		row["Support Group Type"] = orOther(d.SupportGroupType, d.OtherSupportGroupType)
		row["Topic"] = orOther(d.Topic, d.OtherTopic)
		row["Physical Activity"] = orOther(d.PhysicalActivity, d.OtherPhysicalActivity)
		row["People Reached"] = strconv.Itoa(d.PeopleReached)
		row["Notes"] = d.Notes
		setTimes(row, d.StartTime, d.EndTime)
	}
	return row
}

// escapeCell quotes a value containing commas, quotes or newlines, doubling
// embedded quotes.
func escapeCell(value string) string {
	if strings.ContainsAny(value, ",\"\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

func joinRow(headers []string) string {
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = escapeCell(h)
	}
	return strings.Join(cells, ",")
}

func setTimes(row map[string]string, start, end string) {
	row["Start Time"] = start
	row["End Time"] = end
}

func orOther(value, other string) string {
	if strings.EqualFold(strings.TrimSpace(value), "Other") && other != "" {
		return other
	}
	return value
}

func joinTopics(topics []string, other string) string {
	out := make([]string, 0, len(topics))
	for _, topic := range topics {
		out = append(out, orOther(topic, other))
	}
	return strings.Join(out, ", ")
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
