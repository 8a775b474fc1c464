package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/zivilschutz/zsadmin/server/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const PASSWORD_RESET_VALIDITY = time.Hour

var (
	allFieldsExceptPassword = []string{"id",
		"email",
		"display_name",
		"role_id",
		"email_verified",
		"created_at",
		"updated_at",
	}

	// UserColumns are the fields a user may change on their own record.
	UserColumns = map[string]string{
		"display_name": "display_name",
		"password":     "password",
	}

	ErrInvalidToken = errors.New("token is invalid or expired")
)

type User struct {
	BaseModel
	Email               string     `json:"email" validate:"required,email" gorm:"not null;unique"`
	DisplayName         string     `json:"display_name" validate:"required"`
	Password            string     `json:"password,omitempty" validate:"required,min=8,password" gorm:"not null"`
	RoleID              uint       `json:"role_id" gorm:"null"`
	Role                *Role      `json:"role,omitempty"`
	EmailVerified       bool       `json:"email_verified" gorm:"default:false"`
	VerificationToken   string     `json:"-" gorm:"index"`
	ResetToken          string     `json:"-" gorm:"index"`
	ResetTokenExpiresAt *time.Time `json:"-"`
}

func (user *User) RoleName() string {
	if user.Role == nil {
		return ""
	}
	return user.Role.Name
}

func (user *User) IsAdmin() bool {
	return user.RoleName() == auth.ADMIN_ROLE
}

func (user User) SearchText() string {
	return user.DisplayName + " " + user.Email + " " + user.RoleName()
}

func (user *User) Update(data map[string]interface{}) error {
	if data["password"] != nil {
		passwordHash, err := auth.HashPassword(data["password"].(string))
		if err != nil {
			return err
		}
		data["password"] = passwordHash
	}

	return Repository[User]{}.Update(user.ID, data)
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Preload("Role").Select(allFieldsExceptPassword).
		Where(map[string]interface{}{field: value}).First(&user).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindUserWithPassword loads the user including the password hash, for sign-in only.
func FindUserWithPassword(email string) (*User, error) {
	user := User{}
	err := db.Preload("Role").First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func AllUsers() ([]User, error) {
	users := []User{}
	err := db.Preload("Role").Select(allFieldsExceptPassword).Order("display_name").Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// CreateUser hashes the password and stores the user with the given role.
// Unverified users get a fresh verification token.
func CreateUser(user *User, roleName string) error {
	role, err := FindRole(roleName)
	if err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash
	user.RoleID = role.ID

	if !user.EmailVerified {
		user.VerificationToken = uuid.NewString()
	}

	err = db.Create(user).Error
	if err != nil {
		return err
	}

	user.Role = role
	return nil
}

func DeleteUser(id interface{}) error {
	return Repository[User]{}.Delete(id)
}

func SetUserRole(userID interface{}, roleName string) error {
	role, err := FindRole(roleName)
	if err != nil {
		return err
	}

	return Repository[User]{}.Update(userID, map[string]interface{}{"role_id": role.ID})
}

func CountUsersWithRole(roleName string) (int64, error) {
	var count int64
	err := db.Model(&User{}).
		Joins("INNER JOIN roles ON roles.id = users.role_id AND roles.name = ?", roleName).
		Count(&count).Error

	return count, err
}

func UsersWithRole(roleName string) ([]User, error) {
	users := []User{}
	err := db.Preload("Role").Select(allFieldsExceptPassword).
		Where("role_id IN (?)", db.Model(&Role{}).Select("id").Where("name = ?", roleName)).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// RegisterUser creates user with roleName, or as a verified admin when no account exists yet.
// The check and the insert share one transaction with the admin role row locked.
func RegisterUser(user *User, roleName string) error {
	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin := Role{}
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&admin, "name = ?", auth.ADMIN_ROLE).Error
		if err != nil {
			return err
		}

		var count int64
		err = tx.Model(&User{}).Count(&count).Error
		if err != nil {
			return err
		}

		role := admin
		if count > 0 {
			err = tx.First(&role, "name = ?", roleName).Error
			if err != nil {
				return err
			}
		} else {
			user.EmailVerified = true
		}

		user.Password = passwordHash
		user.RoleID = role.ID
		if !user.EmailVerified {
			user.VerificationToken = uuid.NewString()
		}

		err = tx.Create(user).Error
		if err != nil {
			return err
		}

		user.Role = &role
		return nil
	})
}

// VerifyEmail marks the owner of token as verified and consumes the token.
func VerifyEmail(token string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	user, err := FindUserBy("verification_token", token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	err = Repository[User]{}.Update(user.ID, map[string]interface{}{
		"email_verified":     true,
		"verification_token": "",
	})
	if err != nil {
		return nil, err
	}
	user.EmailVerified = true

	return user, nil
}

// StartPasswordReset issues a reset token valid for PASSWORD_RESET_VALIDITY.
func StartPasswordReset(email string) (*User, string, error) {
	user, err := FindUserBy("email", email)
	if err != nil {
		return nil, "", err
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(PASSWORD_RESET_VALIDITY)
	err = Repository[User]{}.Update(user.ID, map[string]interface{}{
		"reset_token":            token,
		"reset_token_expires_at": expiresAt,
	})
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// CompletePasswordReset sets a new password for the owner of a still valid reset token.
func CompletePasswordReset(token, newPassword string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	user := User{}
	err := db.First(&user, "reset_token = ? AND reset_token_expires_at > ?", token, time.Now()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	err = Repository[User]{}.Update(user.ID, map[string]interface{}{
		"password":               passwordHash,
		"reset_token":            "",
		"reset_token_expires_at": nil,
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}
