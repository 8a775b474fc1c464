package shared

type ServerConfig struct {
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Google   GoogleConfig   `mapstructure:"google"`
	Twilio   TwilioConfig   `mapstructure:"twilio"`
	Resend   ResendConfig   `mapstructure:"resend"`
}

type DatabaseConfig struct {
	Sqlite SqliteConfig `mapstructure:"sqlite"`

	// MysqlDSN switches the store from the local sqlite file to MySQL when set.
	MysqlDSN string `mapstructure:"mysqlDsn"`
}

type SqliteConfig struct {
	PassPhrase string `mapstructure:"passPhrase"`
	Dir        string `mapstructure:"dir"`
}

type AppConfig struct {
	PrivateKeyPem string         `mapstructure:"privateKeyPem"`
	BaseURL       string         `mapstructure:"baseUrl" validate:"omitempty,url"`
	StaticDir     string         `mapstructure:"staticDir"`
	Cron          CronConfig     `mapstructure:"cron" validate:"required"`
	Listener      ListenerConfig `mapstructure:"listener" validate:"required"`
	Session       SessionConfig  `mapstructure:"session"`
	Workers       int            `mapstructure:"workers" validate:"omitempty,min=1,max=16"`
	ReminderCron  string         `mapstructure:"reminderCron"`
}

type GoogleConfig struct {
	ApplicationCredentials string         `mapstructure:"applicationCredentials"`
	Storage                StorageConfig  `mapstructure:"storage"`
	Calendar               CalendarConfig `mapstructure:"calendar"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone" validate:"required"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

type SessionConfig struct {
	IdleTimeoutMinutes int `mapstructure:"idleTimeoutMinutes" validate:"omitempty,min=1"`
}

type StorageConfig struct {
	Bucket                    string      `mapstructure:"bucket" validate:"required_with=EnableSqliteBackupAndSync"`
	Prefix                    string      `mapstructure:"prefix" validate:"required_with=EnableSqliteBackupAndSync"`
	SqliteBackupSchedule      string      `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackupAndSync"`
	EnableSqliteBackupAndSync interface{} `mapstructure:"enableSqliteBackupAndSync"`
}

type CalendarConfig struct {
	CalendarID string `mapstructure:"calendarId"`
}

type TwilioConfig struct {
	AccountSid          string `mapstructure:"accountSid"`
	AuthToken           string `mapstructure:"authToken"`
	MessagingServiceSid string `mapstructure:"messagingServiceSid"`
	AdminNumber         string `mapstructure:"adminNumber" validate:"omitempty,e164"`
}

type ResendConfig struct {
	ApiKey string `mapstructure:"apiKey"`
	From   string `mapstructure:"from"`
}

// Enabled reports whether sqlite backups to google storage are switched on.
// The value may come from yaml (bool) or from an env var (string).
func (s StorageConfig) Enabled() bool {
	switch v := s.EnableSqliteBackupAndSync.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSid != "" && t.AuthToken != "" && t.MessagingServiceSid != ""
}

func (a AppConfig) IdleTimeoutMinutes() int {
	if a.Session.IdleTimeoutMinutes <= 0 {
		return 30
	}
	return a.Session.IdleTimeoutMinutes
}
