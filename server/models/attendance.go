package models

import (
	"errors"

	"gorm.io/gorm"
)

const (
	ATTENDED     = "teilgenommen"
	NOT_ATTENDED = "nicht_teilgenommen"
	EXCUSED      = "entschuldigt"
)

var AttendanceStatusLabels = map[string]string{
	ATTENDED:     "Teilgenommen",
	NOT_ATTENDED: "Nicht teilgenommen",
	EXCUSED:      "Entschuldigt",
}

// Attendance is a Teilnahme: one person's status for one day of a training.
type Attendance struct {
	BaseModel
	PersonID   uint   `json:"person_id" validate:"required" gorm:"not null;uniqueIndex:idx_attendance_person_training_date"`
	TrainingID uint   `json:"training_id" validate:"required" gorm:"not null;index;uniqueIndex:idx_attendance_person_training_date"`
	Date       string `json:"date" validate:"required,date" gorm:"not null;uniqueIndex:idx_attendance_person_training_date"`
	Status     string `json:"status" validate:"required,oneof=teilgenommen nicht_teilgenommen entschuldigt" gorm:"not null"`
	Remark     string `json:"remark,omitempty"`

	Metadata
}

func (a Attendance) StatusLabel() string {
	return AttendanceStatusLabels[a.Status]
}

// SetAttendanceStatus updates the record for (person, training, date) or creates it when none
// exists yet. It reports whether a record was created.
func SetAttendanceStatus(attendance *Attendance) (bool, error) {
	existing := Attendance{}
	err := db.Where("person_id = ? AND training_id = ? AND date = ?",
		attendance.PersonID, attendance.TrainingID, attendance.Date).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		createErr := db.Create(attendance).Error
		if createErr == nil {
			return true, nil
		}

		// Lost a race against a concurrent create; fall through to updating that record.
		err = db.Where("person_id = ? AND training_id = ? AND date = ?",
			attendance.PersonID, attendance.TrainingID, attendance.Date).First(&existing).Error
		if err != nil {
			return false, createErr
		}
	}

	if err != nil {
		return false, err
	}

	err = db.Model(&existing).Updates(map[string]interface{}{
		"status":     attendance.Status,
		"remark":     attendance.Remark,
		"updated_by": attendance.UpdatedBy,
	}).Error
	if err != nil {
		return false, err
	}

	*attendance = Attendance{}
	return false, db.First(attendance, existing.ID).Error
}

func AttendancesForYear(year int) ([]Attendance, error) {
	attendances := []Attendance{}
	err := db.Joins("INNER JOIN trainings ON trainings.id = attendances.training_id AND trainings.year = ?", year).
		Order("attendances.date").Find(&attendances).Error
	if err != nil {
		return nil, err
	}

	return attendances, nil
}
