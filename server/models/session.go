package models

import (
	"time"

	"github.com/google/uuid"
)

// Session backs a signed-in JWT; it is dropped after a period of inactivity.
type Session struct {
	ID         string    `json:"id" gorm:"primarykey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at" gorm:"index"`
}

func CreateSession(userID uint) (*Session, error) {
	now := time.Now()
	session := Session{ID: uuid.NewString(), UserID: userID, CreatedAt: now, LastSeenAt: now}

	err := db.Create(&session).Error
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func FindSession(id string) (*Session, error) {
	session := Session{}
	err := db.First(&session, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (session *Session) Touch() error {
	session.LastSeenAt = time.Now()
	return db.Model(&Session{}).Where("id = ?", session.ID).Update("last_seen_at", session.LastSeenAt).Error
}

func (session *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(session.LastSeenAt)
}

func DeleteSession(id string) error {
	return db.Where("id = ?", id).Delete(&Session{}).Error
}

func DeleteUserSessions(userID interface{}) error {
	return db.Where("user_id = ?", userID).Delete(&Session{}).Error
}

// DeleteOtherUserSessions removes every session of the user except keepID.
func DeleteOtherUserSessions(userID interface{}, keepID string) error {
	return db.Where("user_id = ? AND id <> ?", userID, keepID).Delete(&Session{}).Error
}

// DeleteSessionsIdleSince removes every session last seen before cutoff.
func DeleteSessionsIdleSince(cutoff time.Time) (int64, error) {
	res := db.Where("last_seen_at < ?", cutoff).Delete(&Session{})
	return res.RowsAffected, res.Error
}
