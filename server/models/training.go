package models

import "strings"

const (
	WK_TRAINING       = "wk"
	KADER_TRAINING    = "kader"
	EXERCISE_TRAINING = "uebung"
	COURSE_TRAINING   = "kurs"
	DEPLOYMENT        = "einsatz"
	OTHER_TRAINING    = "sonstiges"
)

var TrainingTypeLabels = map[string]string{
	WK_TRAINING:       "Wiederholungskurs",
	KADER_TRAINING:    "Kaderausbildung",
	EXERCISE_TRAINING: "Übung",
	COURSE_TRAINING:   "Kurs",
	DEPLOYMENT:        "Einsatz",
	OTHER_TRAINING:    "Sonstiges",
}

var TrainingColumns = map[string]string{
	"title":       "title",
	"description": "description",
	"type":        "type",
	"year":        "year",
	"start_date":  "start_date",
	"end_date":    "end_date",
	"start_time":  "start_time",
	"end_time":    "end_time",
	"required":    "required",
}

// Training is an Ausbildung: a (possibly multi-day) training or exercise event.
type Training struct {
	BaseModel
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description,omitempty"`
	Type            string `json:"type" validate:"required,oneof=wk kader uebung kurs einsatz sonstiges"`
	Year            int    `json:"year" validate:"min=2000,max=2100" gorm:"index"`
	StartDate       string `json:"start_date" validate:"required,date" gorm:"not null;index"`
	EndDate         string `json:"end_date" validate:"required,date" gorm:"not null"`
	StartTime       string `json:"start_time,omitempty" validate:"omitempty,time_stamp"`
	EndTime         string `json:"end_time,omitempty" validate:"omitempty,time_stamp"`
	Required        bool   `json:"required"`
	CalendarEventID string `json:"calendar_event_id,omitempty"`

	Metadata
}

func (t Training) TypeLabel() string {
	if label, ok := TrainingTypeLabels[t.Type]; ok {
		return label
	}
	return t.Type
}

func (t Training) SearchText() string {
	return strings.Join([]string{t.Title, t.Description, t.TypeLabel()}, " ")
}

func RequiredTrainingsStartingOn(date string) ([]Training, error) {
	trainings := []Training{}
	err := db.Where("required = ? AND start_date = ?", true, date).Order("start_time").Find(&trainings).Error
	if err != nil {
		return nil, err
	}

	return trainings, nil
}
