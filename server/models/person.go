package models

import (
	"strings"
)

const (
	ACTIVE_PERSON   = "aktiv"
	INACTIVE_PERSON = "inaktiv"
	NEW_PERSON      = "neu"
)

var PersonStatusNameMap = map[string]bool{
	ACTIVE_PERSON:   true,
	INACTIVE_PERSON: true,
	NEW_PERSON:      true,
}

// PersonColumns maps the json name of every updatable person field to its column.
var PersonColumns = map[string]string{
	"first_name":    "first_name",
	"last_name":     "last_name",
	"date_of_birth": "date_of_birth",
	"ahv_number":    "ahv_number",
	"grade":         "grade",
	"function":      "function",
	"street":        "street",
	"zip_code":      "zip_code",
	"city":          "city",
	"email":         "email",
	"mobile_phone":  "mobile_phone",
	"private_phone": "private_phone",
	"work_phone":    "work_phone",
	"platoon":       "platoon",
	"group":         "group_name",
	"status":        "status",
	"entry_date":    "entry_date",
	"allergies":     "allergies",
	"languages":     "languages",
	"notes":         "notes",
	"profession":    "profession",
	"employer":      "employer",
}

type Person struct {
	BaseModel

	// Identity
	FirstName   string `json:"first_name" validate:"required" gorm:"not null"`
	LastName    string `json:"last_name" validate:"required" gorm:"not null;index"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,date"`
	AHVNumber   string `json:"ahv_number,omitempty" validate:"omitempty,ahv_number"`
	Grade       string `json:"grade,omitempty"`
	Function    string `json:"function,omitempty"`

	// Contact
	Street       string `json:"street,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
	City         string `json:"city,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	MobilePhone  string `json:"mobile_phone,omitempty" validate:"omitempty,e164"`
	PrivatePhone string `json:"private_phone,omitempty" validate:"omitempty,e164"`
	WorkPhone    string `json:"work_phone,omitempty" validate:"omitempty,e164"`

	// Assignment (Zug/Gruppe)
	Platoon   int    `json:"platoon" validate:"min=0" gorm:"index"`
	Group     string `json:"group,omitempty" gorm:"column:group_name"`
	Status    string `json:"status" validate:"required,oneof=aktiv inaktiv neu" gorm:"not null;default:neu"`
	EntryDate string `json:"entry_date,omitempty" validate:"omitempty,date"`

	// Personal
	Allergies string `json:"allergies,omitempty"`
	Languages string `json:"languages,omitempty"`
	Notes     string `json:"notes,omitempty"`

	// Professional
	Profession string `json:"profession,omitempty"`
	Employer   string `json:"employer,omitempty"`

	PhotoObject string `json:"photo_object,omitempty"`

	Metadata
}

func (Person) TableName() string {
	return "persons"
}

func (p Person) FullName() string {
	return strings.TrimSpace(p.LastName + " " + p.FirstName)
}

// SearchText is what the free-text person filter matches against.
func (p Person) SearchText() string {
	return strings.Join([]string{p.FirstName, p.LastName, p.Group, p.City, p.Email, p.Function, p.Grade}, " ")
}

func ActivePersonsWithMobile() ([]Person, error) {
	persons := []Person{}
	err := db.Where("status = ? AND mobile_phone <> ''", ACTIVE_PERSON).Order("last_name, first_name").Find(&persons).Error
	if err != nil {
		return nil, err
	}

	return persons, nil
}

func PersonExists(id interface{}) (bool, error) {
	var count int64
	err := db.Model(&Person{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
