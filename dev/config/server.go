package config

// SERVER_YML is written to dev/config/server.yml on the first "zsadmin server --dev".
// Without app.privateKeyPem dev mode signs tokens with a generated key.
const SERVER_YML = `
app:
  privateKeyPem:
  baseUrl: "http://localhost:3000"
  staticDir:
  cron:
    timeZone: "Europe/Zurich"
  listener:
    port: 3000
  session:
    idleTimeoutMinutes: 30
  workers: 1
  reminderCron: "0 18 * * *"

database:
  sqlite:
    passPhrase: passphrase
    dir:
  mysqlDsn:

google:
  applicationCredentials:
  storage:
    bucket:
    prefix: "zsadmin-dev"
    sqliteBackupSchedule: "*/30 * * * *"
    enableSqliteBackupAndSync: false
  calendar:
    calendarId:

twilio:
  accountSid:
  authToken:
  messagingServiceSid:
  adminNumber:

resend:
  apiKey:
  from: "zsadmin <noreply@example.ch>"
`
