package apperr

import "net/http"

type Code int

// General (100xxx).
const (
	ErrUnknown Code = iota + 100000
	ErrBind
	ErrValidation
	ErrNoValidFields
	ErrTokenMissing
	ErrTokenInvalid
	ErrSessionExpired
	ErrForbidden
	ErrNotFound
	ErrStorageDisabled
	ErrFileTooLarge
)

// Authentication (101xxx).
const (
	ErrInvalidCredentials Code = iota + 101000
	ErrEmailNotVerified
	ErrEmailAlreadyInUse
	ErrWeakPassword
	ErrInvalidVerificationToken
	ErrInvalidResetToken
	ErrLastAdmin
)

// Records (102xxx).
const (
	ErrPersonNotFound Code = iota + 102000
	ErrTrainingNotFound
	ErrAttendanceNotFound
	ErrContactNotFound
	ErrUserNotFound
	ErrFileNotFound
	ErrDateOutsideTraining
	ErrEndBeforeStart
	ErrJobNotFound
)

var codeMessageMap = map[Code]string{
	ErrUnknown:         "Ein unerwarteter Fehler ist aufgetreten. Bitte später erneut versuchen.",
	ErrBind:            "Die Anfrage konnte nicht gelesen werden.",
	ErrValidation:      "Die Eingaben sind ungültig.",
	ErrNoValidFields:   "Es wurden keine gültigen Felder übermittelt.",
	ErrTokenMissing:    "Bitte zuerst anmelden.",
	ErrTokenInvalid:    "Die Anmeldung ist ungültig. Bitte erneut anmelden.",
	ErrSessionExpired:  "Die Sitzung ist wegen Inaktivität abgelaufen. Bitte erneut anmelden.",
	ErrForbidden:       "Für diese Aktion fehlt die Berechtigung.",
	ErrNotFound:        "Der Eintrag wurde nicht gefunden.",
	ErrStorageDisabled: "Der Dateispeicher ist nicht konfiguriert.",
	ErrFileTooLarge:    "Die Datei ist zu gross.",

	ErrInvalidCredentials:       "E-Mail oder Passwort ist ungültig.",
	ErrEmailNotVerified:         "Die E-Mail-Adresse wurde noch nicht bestätigt.",
	ErrEmailAlreadyInUse:        "Diese E-Mail-Adresse wird bereits verwendet.",
	ErrWeakPassword:             "Das Passwort muss mindestens 8 Zeichen lang sein und darf keine Leerzeichen enthalten.",
	ErrInvalidVerificationToken: "Der Bestätigungslink ist ungültig.",
	ErrInvalidResetToken:        "Der Link zum Zurücksetzen des Passworts ist ungültig oder abgelaufen.",
	ErrLastAdmin:                "Der letzte Administrator kann nicht entfernt werden.",

	ErrPersonNotFound:      "Die Person wurde nicht gefunden.",
	ErrTrainingNotFound:    "Die Ausbildung wurde nicht gefunden.",
	ErrAttendanceNotFound:  "Die Teilnahme wurde nicht gefunden.",
	ErrContactNotFound:     "Der Notfallkontakt wurde nicht gefunden.",
	ErrUserNotFound:        "Der Benutzer wurde nicht gefunden.",
	ErrFileNotFound:        "Die Datei wurde nicht gefunden.",
	ErrDateOutsideTraining: "Das Datum liegt ausserhalb der Ausbildung.",
	ErrEndBeforeStart:      "Das Enddatum liegt vor dem Startdatum.",
	ErrJobNotFound:         "Der Auftrag wurde nicht gefunden.",
}

var codeStatusMap = map[Code]int{
	ErrUnknown:         http.StatusInternalServerError,
	ErrBind:            http.StatusBadRequest,
	ErrValidation:      http.StatusBadRequest,
	ErrNoValidFields:   http.StatusBadRequest,
	ErrTokenMissing:    http.StatusUnauthorized,
	ErrTokenInvalid:    http.StatusUnauthorized,
	ErrSessionExpired:  http.StatusUnauthorized,
	ErrForbidden:       http.StatusForbidden,
	ErrNotFound:        http.StatusNotFound,
	ErrStorageDisabled: http.StatusServiceUnavailable,
	ErrFileTooLarge:    http.StatusRequestEntityTooLarge,

	ErrInvalidCredentials:       http.StatusUnauthorized,
	ErrEmailNotVerified:         http.StatusForbidden,
	ErrEmailAlreadyInUse:        http.StatusConflict,
	ErrWeakPassword:             http.StatusBadRequest,
	ErrInvalidVerificationToken: http.StatusBadRequest,
	ErrInvalidResetToken:        http.StatusBadRequest,
	ErrLastAdmin:                http.StatusConflict,

	ErrPersonNotFound:      http.StatusNotFound,
	ErrTrainingNotFound:    http.StatusNotFound,
	ErrAttendanceNotFound:  http.StatusNotFound,
	ErrContactNotFound:     http.StatusNotFound,
	ErrUserNotFound:        http.StatusNotFound,
	ErrFileNotFound:        http.StatusNotFound,
	ErrDateOutsideTraining: http.StatusBadRequest,
	ErrEndBeforeStart:      http.StatusBadRequest,
	ErrJobNotFound:         http.StatusNotFound,
}

// Message returns the localized message shown to users.
func (c Code) Message() string {
	if msg, ok := codeMessageMap[c]; ok {
		return msg
	}
	return codeMessageMap[ErrUnknown]
}

// Status returns the HTTP status for the code.
func (c Code) Status() int {
	if status, ok := codeStatusMap[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
