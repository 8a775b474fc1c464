package models

var EmergencyContactColumns = map[string]string{
	"name":         "name",
	"relationship": "relationship",
	"phone_number": "phone_number",
	"priority":     "priority",
}

// EmergencyContact is a Notfallkontakt; priority 1 is called first.
type EmergencyContact struct {
	BaseModel
	PersonID     uint   `json:"person_id" gorm:"not null;index"`
	Name         string `json:"name" validate:"required"`
	Relationship string `json:"relationship" validate:"required"`
	PhoneNumber  string `json:"phone_number" validate:"required,e164" gorm:"not null"`
	Priority     int    `json:"priority" validate:"min=1" gorm:"default:1"`
}

func (c EmergencyContact) SearchText() string {
	return c.Name + " " + c.Relationship + " " + c.PhoneNumber
}
