package activity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Details is the tagged union of per-kind field sets. Each variant validates
// its own payload and reports how many people it reached, so reports never
// have to guess at field names.
type Details interface {
	Kind() Kind
	Validate() error
	// Reached returns the people/children/students count for this record,
	// whichever the kind carries. Zero when the kind has no reach field.
	Reached() int
}

// DecodeDetails unmarshals raw details for the given kind. Unknown kinds
// decode into RawDetails so legacy rows still list and aggregate; they are
// excluded from per-kind breakdowns.
func DecodeDetails(kind Kind, data []byte) (Details, error) {
	var target Details
	switch kind {
	case KindWeeklyPlan:
		target = &WeeklyPlanDetails{}
	case KindHealthTalk:
		target = &HealthTalkDetails{}
	case KindHealthCampaign:
		target = &HealthCampaignDetails{}
	case KindIMCITraining:
		target = &IMCITrainingDetails{}
	case KindSchoolVisit:
		target = &SchoolVisitDetails{}
	case KindCrecheVisit:
		target = &CrecheVisitDetails{}
	case KindOutbreakResponse:
		target = &OutbreakResponseDetails{}
	case KindSocialMobilization:
		target = &SocialMobilizationDetails{}
	case KindTISH:
		target = &TISHDetails{}
	case KindCornerToCorner:
		target = &CornerToCornerDetails{}
	case KindSupportGroup:
		target = &SupportGroupDetails{}
	default:
		raw := RawDetails{DetailsKind: kind}
		if len(data) > 0 {
			raw.Fields = append(json.RawMessage(nil), data...)
		}
		return raw, nil
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, target); err != nil {
			return nil, fmt.Errorf("decode %s details: %w", kind, err)
		}
	}
	return target, nil
}

// RawDetails preserves the payload of a kind this build does not know.
type RawDetails struct {
	DetailsKind Kind
	Fields      json.RawMessage
}

func (d RawDetails) Kind() Kind      { return d.DetailsKind }
func (d RawDetails) Validate() error { return fmt.Errorf("unknown activity kind %q", d.DetailsKind) }
func (d RawDetails) Reached() int    { return 0 }

func (d RawDetails) MarshalJSON() ([]byte, error) {
	if len(d.Fields) == 0 {
		return []byte("{}"), nil
	}
	return d.Fields, nil
}

// WeeklyPlanDetails describes one planned activity for the week.
type WeeklyPlanDetails struct {
	Activity  string `json:"activity"`
	Venue     string `json:"venue"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func (d *WeeklyPlanDetails) Kind() Kind   { return KindWeeklyPlan }
func (d *WeeklyPlanDetails) Reached() int { return 0 }

func (d *WeeklyPlanDetails) Validate() error {
	if strings.TrimSpace(d.Activity) == "" {
		return errors.New("activity description is required")
	}
	if strings.TrimSpace(d.Venue) == "" {
		return errors.New("venue is required")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// HealthTalkDetails describes a health talk session.
type HealthTalkDetails struct {
	Venue         string   `json:"venue"`
	Topics        []string `json:"topics"`
	OtherTopic    string   `json:"otherTopic,omitempty"`
	StartTime     string   `json:"startTime"`
	EndTime       string   `json:"endTime"`
	PeopleReached int      `json:"peopleReached"`
	Notes         string   `json:"notes,omitempty"`
}

func (d *HealthTalkDetails) Kind() Kind   { return KindHealthTalk }
func (d *HealthTalkDetails) Reached() int { return d.PeopleReached }

func (d *HealthTalkDetails) Validate() error {
	if strings.TrimSpace(d.Venue) == "" {
		return errors.New("venue is required")
	}
	if len(d.Topics) == 0 {
		return errors.New("at least one topic is required")
	}
	for _, topic := range d.Topics {
		if strings.EqualFold(topic, "Other") && strings.TrimSpace(d.OtherTopic) == "" {
			return errors.New("please specify the 'Other' topic")
		}
	}
	if d.PeopleReached < 1 {
		return errors.New("people reached must be at least 1")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// HealthCampaignDetails describes a health campaign.
type HealthCampaignDetails struct {
	CampaignType      string `json:"campaignType"`
	OtherCampaignType string `json:"otherCampaignType,omitempty"`
	TargetGroup       string `json:"targetGroup"`
	OtherTargetGroup  string `json:"otherTargetGroup,omitempty"`
	Venue             string `json:"venue"`
	Location          string `json:"location"`
	PeopleReached     int    `json:"peopleReached"`
	Notes             string `json:"notes,omitempty"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
}

func (d *HealthCampaignDetails) Kind() Kind   { return KindHealthCampaign }
func (d *HealthCampaignDetails) Reached() int { return d.PeopleReached }

func (d *HealthCampaignDetails) Validate() error {
	if err := requireWithOther("campaign type", d.CampaignType, d.OtherCampaignType); err != nil {
		return err
	}
	if err := requireWithOther("target group", d.TargetGroup, d.OtherTargetGroup); err != nil {
		return err
	}
	if strings.TrimSpace(d.Venue) == "" {
		return errors.New("venue is required")
	}
	if strings.TrimSpace(d.Location) == "" {
		return errors.New("location is required")
	}
	if d.PeopleReached < 0 {
		return errors.New("people reached must not be negative")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// IMCITrainingDetails describes an IMCI training session.
type IMCITrainingDetails struct {
	Venue            string `json:"venue"`
	TraineeType      string `json:"traineeType"`
	OtherTraineeType string `json:"otherTraineeType,omitempty"`
	PeopleReached    int    `json:"peopleReached"`
	Notes            string `json:"notes,omitempty"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
}

func (d *IMCITrainingDetails) Kind() Kind   { return KindIMCITraining }
func (d *IMCITrainingDetails) Reached() int { return d.PeopleReached }

func (d *IMCITrainingDetails) Validate() error {
	if strings.TrimSpace(d.Venue) == "" {
		return errors.New("venue is required")
	}
	if err := requireWithOther("trainee type", d.TraineeType, d.OtherTraineeType); err != nil {
		return err
	}
	if d.PeopleReached < 0 {
		return errors.New("people reached must not be negative")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// SchoolVisitDetails describes a school visit.
type SchoolVisitDetails struct {
	SchoolName      string   `json:"schoolName"`
	GradeLevels     []string `json:"gradeLevel"`
	Topic           string   `json:"topic"`
	OtherTopic      string   `json:"otherTopic,omitempty"`
	StudentsReached int      `json:"studentsReached"`
	Notes           string   `json:"notes,omitempty"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
}

func (d *SchoolVisitDetails) Kind() Kind   { return KindSchoolVisit }
func (d *SchoolVisitDetails) Reached() int { return d.StudentsReached }

func (d *SchoolVisitDetails) Validate() error {
	if strings.TrimSpace(d.SchoolName) == "" {
		return errors.New("school name is required")
	}
	if len(d.GradeLevels) == 0 {
		return errors.New("at least one grade level is required")
	}
	if err := requireWithOther("topic", d.Topic, d.OtherTopic); err != nil {
		return err
	}
	if d.StudentsReached < 0 {
		return errors.New("students reached must not be negative")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// CrecheVisitDetails describes a creche visit.
type CrecheVisitDetails struct {
	CrecheName             string `json:"crecheName"`
	AgeGroup               string `json:"ageGroup"`
	Topic                  string `json:"topic"`
	OtherTopic             string `json:"otherTopic,omitempty"`
	ChildrenMindersReached int    `json:"childrenMindersReached"`
	ChildrenReached        int    `json:"childrenReached"`
	Notes                  string `json:"notes,omitempty"`
	StartTime              string `json:"startTime"`
	EndTime                string `json:"endTime"`
}

func (d *CrecheVisitDetails) Kind() Kind   { return KindCrecheVisit }
func (d *CrecheVisitDetails) Reached() int { return d.ChildrenReached }

func (d *CrecheVisitDetails) Validate() error {
	if strings.TrimSpace(d.CrecheName) == "" {
		return errors.New("creche name is required")
	}
	if strings.TrimSpace(d.AgeGroup) == "" {
		return errors.New("age group is required")
	}
	if err := requireWithOther("topic", d.Topic, d.OtherTopic); err != nil {
		return err
	}
	if d.ChildrenReached < 0 || d.ChildrenMindersReached < 0 {
		return errors.New("reached counts must not be negative")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// OutbreakResponseDetails describes an outbreak response.
type OutbreakResponseDetails struct {
	Location         string `json:"location"`
	DiseaseType      string `json:"diseaseType"`
	OtherDiseaseType string `json:"otherDiseaseType,omitempty"`
	SeverityLevel    string `json:"severityLevel"`
	Topic            string `json:"topic"`
	OtherTopic       string `json:"otherTopic,omitempty"`
	PeopleReached    int    `json:"peopleReached"`
	Notes            string `json:"notes,omitempty"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
}

func (d *OutbreakResponseDetails) Kind() Kind   { return KindOutbreakResponse }
func (d *OutbreakResponseDetails) Reached() int { return d.PeopleReached }

func (d *OutbreakResponseDetails) Validate() error {
	if strings.TrimSpace(d.Location) == "" {
		return errors.New("location is required")
	}
	if err := requireWithOther("disease type", d.DiseaseType, d.OtherDiseaseType); err != nil {
		return err
	}
	if strings.TrimSpace(d.SeverityLevel) == "" {
		return errors.New("severity level is required")
	}
	if err := requireWithOther("topic", d.Topic, d.OtherTopic); err != nil {
		return err
	}
	if d.PeopleReached < 0 {
		return errors.New("people reached must not be negative")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// SocialMobilizationDetails describes a social-mobilization drive.
type SocialMobilizationDetails struct {
	Location                string `json:"location"`
	CampaignType            string `json:"campaignType"`
	OtherCampaignType       string `json:"otherCampaignType,omitempty"`
	MobilizationMethod      string `json:"mobilizationMethod"`
	OtherMobilizationMethod string `json:"otherMobilizationMethod,omitempty"`
	Topic                   string `json:"topic"`
	OtherTopic              string `json:"otherTopic,omitempty"`
	PeopleReached           int    `json:"peopleReached"`
	Notes                   string `json:"notes,omitempty"`
	StartTime               string `json:"startTime"`
	EndTime                 string `json:"endTime"`
}

func (d *SocialMobilizationDetails) Kind() Kind   { return KindSocialMobilization }
func (d *SocialMobilizationDetails) Reached() int { return d.PeopleReached }

func (d *SocialMobilizationDetails) Validate() error {
	if strings.TrimSpace(d.Location) == "" {
		return errors.New("location is required")
	}
	if err := requireWithOther("campaign type", d.CampaignType, d.OtherCampaignType); err != nil {
		return err
	}
	if err := requireWithOther("mobilization method", d.MobilizationMethod, d.OtherMobilizationMethod); err != nil {
		return err
	}
	if err := requireWithOther("topic", d.Topic, d.OtherTopic); err != nil {
		return err
	}
	if d.PeopleReached < 0 {
		return errors.New("people reached must not be negative")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// TISHDetails describes a TISH (targeted in-community services) session.
type TISHDetails struct {
	Venue         string `json:"venue"`
	Topic         string `json:"topic"`
	OtherTopic    string `json:"otherTopic,omitempty"`
	PeopleReached int    `json:"peopleReached"`
	Notes         string `json:"notes,omitempty"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

func (d *TISHDetails) Kind() Kind   { return KindTISH }
func (d *TISHDetails) Reached() int { return d.PeopleReached }

func (d *TISHDetails) Validate() error {
	if strings.TrimSpace(d.Venue) == "" {
		return errors.New("venue is required")
	}
	if err := requireWithOther("topic", d.Topic, d.OtherTopic); err != nil {
		return err
	}
	if d.PeopleReached < 0 {
		return errors.New("people reached must not be negative")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// CornerToCornerDetails describes a corner-to-corner service session.
type CornerToCornerDetails struct {
	Venue         string `json:"venue"`
	Topic         string `json:"topic"`
	OtherTopic    string `json:"otherTopic,omitempty"`
	PeopleReached int    `json:"peopleReached"`
	Notes         string `json:"notes,omitempty"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
}

func (d *CornerToCornerDetails) Kind() Kind   { return KindCornerToCorner }
func (d *CornerToCornerDetails) Reached() int { return d.PeopleReached }

func (d *CornerToCornerDetails) Validate() error {
	if strings.TrimSpace(d.Venue) == "" {
		return errors.New("venue is required")
	}
	if err := requireWithOther("topic", d.Topic, d.OtherTopic); err != nil {
		return err
	}
	if d.PeopleReached < 0 {
		return errors.New("people reached must not be negative")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// SupportGroupDetails describes a support-group session.
type SupportGroupDetails struct {
	Venue                 string `json:"venue"`
	SupportGroupType      string `json:"supportGroupType"`
	OtherSupportGroupType string `json:"otherSupportGroupType,omitempty"`
	Topic                 string `json:"topic"`
	OtherTopic            string `json:"otherTopic,omitempty"`
	PhysicalActivity      string `json:"physicalActivity"`
	OtherPhysicalActivity string `json:"otherPhysicalActivity,omitempty"`
	PeopleReached         int    `json:"peopleReached"`
	Notes                 string `json:"notes,omitempty"`
	StartTime             string `json:"startTime"`
	EndTime               string `json:"endTime"`
}

func (d *SupportGroupDetails) Kind() Kind   { return KindSupportGroup }
func (d *SupportGroupDetails) Reached() int { return d.PeopleReached }

func (d *SupportGroupDetails) Validate() error {
	if strings.TrimSpace(d.Venue) == "" {
		return errors.New("venue is required")
	}
	if err := requireWithOther("support group type", d.SupportGroupType, d.OtherSupportGroupType); err != nil {
		return err
	}
	if err := requireWithOther("topic", d.Topic, d.OtherTopic); err != nil {
		return err
	}
	if err := requireWithOther("physical activity", d.PhysicalActivity, d.OtherPhysicalActivity); err != nil {
		return err
	}
	if d.PeopleReached < 1 {
		return errors.New("people reached must be at least 1")
	}
	return validateTimeRange(d.StartTime, d.EndTime)
}

// requireWithOther enforces a selection and, when the selection is "Other",
// its free-text counterpart.
func requireWithOther(field, value, other string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if strings.EqualFold(strings.TrimSpace(value), "Other") && strings.TrimSpace(other) == "" {
		return fmt.Errorf("please specify the 'Other' %s", field)
	}
	return nil
}

// validateTimeRange checks HH:MM values and that end is after start.
func validateTimeRange(start, end string) error {
	startAt, err := time.Parse("15:04", start)
	if err != nil {
		return errors.New("start time is required (HH:MM)")
	}
	endAt, err := time.Parse("15:04", end)
	if err != nil {
		return errors.New("end time is required (HH:MM)")
	}
	if !endAt.After(startAt) {
		return errors.New("end time must be after start time")
	}
	return nil
}
