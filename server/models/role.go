package models

import "github.com/zivilschutz/zsadmin/server/auth"

type Role struct {
	BaseModel
	Name  string `json:"name" gorm:"not null;unique"`
	Users []User `json:"users,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func FindRole(name string) (*Role, error) {
	role := Role{}
	err := db.Select("id", "name").First(&role, "name = ?", name).Error
	if err != nil {
		return nil, err
	}

	return &role, nil
}

func seedRoles() []Role {
	return []Role{{Name: auth.ADMIN_ROLE}, {Name: auth.WRITE_ROLE}, {Name: auth.READ_ROLE}}
}
