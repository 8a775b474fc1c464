package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	validate := NewValidator()

	cases := []struct {
		description string
		value       string
		tag         string
		valid       bool
	}{
		{"password without whitespace", "sehrgeheim", "password", true},
		{"password with whitespace", "sehr geheim", "password", false},
		{"empty password", "", "password", false},
		{"time stamp", "07:30", "time_stamp", true},
		{"time stamp at midnight", "00:00", "time_stamp", true},
		{"hour out of range", "24:00", "time_stamp", false},
		{"minute out of range", "12:60", "time_stamp", false},
		{"time stamp without leading zero", "7:30", "time_stamp", false},
		{"date", "2026-03-02", "date", true},
		{"swiss date format", "02.03.2026", "date", false},
		{"impossible date", "2026-02-30", "date", false},
		{"ahv number", "756.9217.0769.85", "ahv_number", true},
		{"ahv number with wrong check digit", "756.9217.0769.84", "ahv_number", false},
		{"ahv number without dots", "7569217076985", "ahv_number", false},
		{"ahv number with foreign prefix", "123.9217.0769.85", "ahv_number", false},
	}

	for _, c := range cases {
		err := validate.Var(c.value, c.tag)
		assert.Equal(t, c.valid, err == nil, c.description)
	}
}

func TestConfigValidation(t *testing.T) {
	validate := NewValidator()

	config := ServerConfig{
		App: AppConfig{
			Cron:     CronConfig{TimeZone: "Europe/Zurich"},
			Listener: ListenerConfig{Port: 3000},
		},
	}
	assert.Nil(t, validate.Struct(config))

	config.App.Listener.Port = 0
	assert.NotNil(t, validate.Struct(config))

	config.App.Listener.Port = 3000
	config.Twilio.AdminNumber = "079 123 45 67"
	assert.NotNil(t, validate.Struct(config), "Admin number must be E.164")
}

func TestConfigDefaults(t *testing.T) {
	assert.Equal(t, 30, AppConfig{}.IdleTimeoutMinutes())
	assert.Equal(t, 5, AppConfig{Session: SessionConfig{IdleTimeoutMinutes: 5}}.IdleTimeoutMinutes())

	assert.True(t, StorageConfig{EnableSqliteBackupAndSync: true}.Enabled())
	assert.True(t, StorageConfig{EnableSqliteBackupAndSync: "true"}.Enabled())
	assert.False(t, StorageConfig{}.Enabled())

	assert.False(t, TwilioConfig{AccountSid: "AC1"}.Enabled())
	assert.True(t, TwilioConfig{AccountSid: "AC1", AuthToken: "x", MessagingServiceSid: "MG1"}.Enabled())
}

func TestStorageConfigValidation(t *testing.T) {
	validate := NewValidator()

	storage := StorageConfig{EnableSqliteBackupAndSync: true}
	assert.NotNil(t, validate.Struct(storage), "Bucket, prefix and schedule are required with backups")

	storage.Bucket, storage.Prefix, storage.SqliteBackupSchedule = "zso", "zsadmin", "0 3 * * *"
	assert.Nil(t, validate.Struct(storage))
}
