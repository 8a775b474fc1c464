package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/auth"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/server/work"
	"gorm.io/gorm"
)

type AuthService struct {
	validate *validator.Validate
	jobs     JobEnqueuer
	users    *UserService
	baseURL  string
}

func newAuthService(deps Deps, users *UserService) *AuthService {
	return &AuthService{
		validate: deps.Validate,
		jobs:     deps.Jobs,
		users:    users,
		baseURL:  strings.TrimSuffix(deps.BaseURL, "/"),
	}
}

// Register creates an account. The very first account becomes a verified admin; every
// later one starts with read access and has to confirm the e-mail address.
func (s *AuthService) Register(email, displayName, password string) (*models.User, error) {
	user := &models.User{Email: strings.TrimSpace(strings.ToLower(email)), DisplayName: displayName, Password: password}

	if s.validate.Var(password, "required,min=8,password") != nil {
		return nil, apperr.New(apperr.ErrWeakPassword)
	}

	err := validateRecord(s.validate, user)
	if err != nil {
		return nil, err
	}

	_, err = models.FindUserBy("email", user.Email)
	if err == nil {
		return nil, apperr.New(apperr.ErrEmailAlreadyInUse)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = models.RegisterUser(user, auth.READ_ROLE)
	if err != nil {
		return nil, err
	}

	if !user.EmailVerified {
		s.sendEmail(user.Email, "E-Mail-Adresse bestätigen", fmt.Sprintf(
			"Hallo %s\n\nBitte bestätige deine E-Mail-Adresse mit folgendem Link:\n%s/v1/auth/verify?token=%s",
			user.DisplayName, s.baseURL, user.VerificationToken))
	}

	user.Password = ""
	user.VerificationToken = ""
	s.users.cache.Invalidate()
	return user, nil
}

func (s *AuthService) Verify(token string) (*models.User, error) {
	user, err := models.VerifyEmail(token)
	if errors.Is(err, models.ErrInvalidToken) {
		return nil, apperr.New(apperr.ErrInvalidVerificationToken)
	}
	if err != nil {
		return nil, err
	}

	s.users.cache.Put(*user)
	return user, nil
}

// Login checks the credentials and opens a session.
func (s *AuthService) Login(email, password string) (*models.User, *models.Session, error) {
	user, err := models.FindUserWithPassword(strings.TrimSpace(strings.ToLower(email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.New(apperr.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, nil, err
	}

	if !auth.CheckPasswordHash(password, user.Password) {
		return nil, nil, apperr.New(apperr.ErrInvalidCredentials)
	}

	if !user.EmailVerified {
		return nil, nil, apperr.New(apperr.ErrEmailNotVerified)
	}

	session, err := models.CreateSession(user.ID)
	if err != nil {
		return nil, nil, err
	}

	user.Password = ""
	return user, session, nil
}

func (s *AuthService) Logout(sessionID string) error {
	return models.DeleteSession(sessionID)
}

// CheckSession rejects sessions that are unknown or idle for longer than idleTimeout,
// and marks live ones as seen.
func (s *AuthService) CheckSession(sessionID string, idleTimeout time.Duration, now time.Time) error {
	session, err := models.FindSession(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.ErrSessionExpired)
	}
	if err != nil {
		return err
	}

	if session.IdleFor(now) > idleTimeout {
		err = models.DeleteSession(sessionID)
		if err != nil {
			logg.Error(err)
		}
		return apperr.New(apperr.ErrSessionExpired)
	}

	return session.Touch()
}

// ReapSessions deletes sessions idle for longer than idleTimeout.
func (s *AuthService) ReapSessions(idleTimeout time.Duration, now time.Time) (int64, error) {
	return models.DeleteSessionsIdleSince(now.Add(-idleTimeout))
}

// StartPasswordReset mails a reset link when the address belongs to a user.
// Unknown addresses are not reported to the caller.
func (s *AuthService) StartPasswordReset(email string) error {
	user, token, err := models.StartPasswordReset(strings.TrimSpace(strings.ToLower(email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.sendEmail(user.Email, "Passwort zurücksetzen", fmt.Sprintf(
		"Hallo %s\n\nMit folgendem Link kannst du ein neues Passwort setzen. Der Link ist %v gültig.\n%s/reset-password?token=%s",
		user.DisplayName, models.PASSWORD_RESET_VALIDITY, s.baseURL, token))
	return nil
}

// CompletePasswordReset sets the new password and signs the user out everywhere.
func (s *AuthService) CompletePasswordReset(token, password string) error {
	if s.validate.Var(password, "required,min=8,password") != nil {
		return apperr.New(apperr.ErrWeakPassword)
	}

	user, err := models.CompletePasswordReset(token, password)
	if errors.Is(err, models.ErrInvalidToken) {
		return apperr.New(apperr.ErrInvalidResetToken)
	}
	if err != nil {
		return err
	}

	return models.DeleteUserSessions(user.ID)
}

func (s *AuthService) sendEmail(to, subject, text string) {
	err := s.jobs.Perform(work.JobParams{
		Name:    fmt.Sprintf("email_%s_%d", to, time.Now().UnixNano()),
		Handler: SEND_EMAIL,
		Args:    map[string]interface{}{"to": to, "subject": subject, "text": text},
	})
	if err != nil {
		logg.Errorf("could not enqueue e-mail to %v: %v", to, err)
	}
}
