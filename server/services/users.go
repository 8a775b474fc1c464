package services

import (
	"errors"
	"strings"

	"github.com/go-playground/validator"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/auth"
	"github.com/zivilschutz/zsadmin/server/cache"
	"github.com/zivilschutz/zsadmin/server/models"
	"gorm.io/gorm"
)

type UserService struct {
	cache    *cache.Collection[models.User]
	validate *validator.Validate
}

func newUserService(deps Deps) *UserService {
	return &UserService{
		cache:    cache.NewCollection(models.AllUsers, func(u models.User) uint { return u.ID }),
		validate: deps.Validate,
	}
}

// List returns the users whose name, e-mail or role contains query.
func (s *UserService) List(query string) ([]models.User, error) {
	users, err := s.cache.All()
	if err != nil {
		return nil, err
	}

	return cache.Filter(users, query), nil
}

// Get falls back to the database on a cache miss, since accounts can also be created
// from the command line.
func (s *UserService) Get(id uint) (*models.User, error) {
	user, ok, err := s.cache.Get(id)
	if err != nil {
		return nil, err
	}

	if !ok {
		return s.refresh(id)
	}
	return &user, nil
}

// SetRole changes a user's role. The last admin cannot be demoted.
func (s *UserService) SetRole(id uint, roleName string) (*models.User, error) {
	if !auth.RoleNameMap[roleName] {
		return nil, apperr.Wrap(apperr.ErrValidation, errors.New("unknown role "+roleName))
	}

	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() && roleName != auth.ADMIN_ROLE {
		err = s.ensureAnotherAdmin()
		if err != nil {
			return nil, err
		}
	}

	err = models.SetUserRole(id, roleName)
	if err != nil {
		return nil, apperr.NotFoundAs(err, apperr.ErrUserNotFound)
	}

	return s.refresh(id)
}

// UpdateProfile lets users change their own display name and password. A new password
// signs out every other session of the user; currentSessionID stays valid.
func (s *UserService) UpdateProfile(id uint, data map[string]interface{}, currentSessionID string) (*models.User, error) {
	updates := map[string]interface{}{}
	for key, column := range models.UserColumns {
		value, ok := data[key].(string)
		if !ok {
			continue
		}
		updates[column] = value
	}

	if len(updates) == 0 {
		return nil, apperr.New(apperr.ErrNoValidFields)
	}

	if name, ok := updates["display_name"]; ok && strings.TrimSpace(name.(string)) == "" {
		return nil, apperr.Wrap(apperr.ErrValidation, errors.New("display_name cannot be empty"))
	}

	if password, ok := updates["password"]; ok {
		if s.validate.Var(password, "min=8,password") != nil {
			return nil, apperr.New(apperr.ErrWeakPassword)
		}
	}

	_, passwordChanged := updates["password"]

	user := &models.User{}
	user.ID = id
	err := user.Update(updates)
	if err != nil {
		return nil, apperr.NotFoundAs(err, apperr.ErrUserNotFound)
	}

	if passwordChanged {
		err = models.DeleteOtherUserSessions(id, currentSessionID)
		if err != nil {
			return nil, err
		}
	}

	return s.refresh(id)
}

// Delete removes the user and their sessions. The last admin cannot be deleted.
func (s *UserService) Delete(id uint) error {
	user, err := s.Get(id)
	if err != nil {
		return err
	}

	if user.IsAdmin() {
		err = s.ensureAnotherAdmin()
		if err != nil {
			return err
		}
	}

	err = models.DeleteUserSessions(id)
	if err != nil {
		return err
	}

	err = models.DeleteUser(id)
	if err != nil {
		return apperr.NotFoundAs(err, apperr.ErrUserNotFound)
	}

	s.cache.Remove(id)
	return nil
}

func (s *UserService) ensureAnotherAdmin() error {
	count, err := models.CountUsersWithRole(auth.ADMIN_ROLE)
	if err != nil {
		return err
	}

	if count <= 1 {
		return apperr.New(apperr.ErrLastAdmin)
	}
	return nil
}

func (s *UserService) refresh(id uint) (*models.User, error) {
	user, err := models.FindUserBy("id", id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.cache.Remove(id)
		return nil, apperr.Wrap(apperr.ErrUserNotFound, err)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Put(*user)
	return user, nil
}
