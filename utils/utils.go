package utils

import (
	"log"
	"os"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func FileExist(filePath string) bool {
	var err error

	if _, err = os.Stat(filePath); os.IsNotExist(err) {
		return false
	}

	if err != nil {
		log.Panic(err)
	}

	return true
}

func CreateDirIfNotExist(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}

	return nil
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// FormatSwissDate turns YYYY-MM-DD into DD.MM.YYYY, leaving unparsable input untouched.
func FormatSwissDate(value string) string {
	date, err := ParseDate(value)
	if err != nil {
		return value
	}
	return date.Format("02.01.2006")
}
