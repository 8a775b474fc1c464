package shared

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

const DATE_LAYOUT = "2006-01-02"

var ahvPattern = regexp.MustCompile(`^756\.\d{4}\.\d{4}\.\d{2}$`)

// RegisterValidators adds the custom tags used by the records and the config:
// password, time_stamp (HH:MM), date (YYYY-MM-DD) and ahv_number (756.XXXX.XXXX.XX).
func RegisterValidators(validate *validator.Validate) error {
	err := validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		// if whitespace in password return false
		err := validate.Var(fl.Field().String(), "contains= ")
		if err == nil {
			return false
		}
		return len(fl.Field().String()) > 0
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("time_stamp", func(fl validator.FieldLevel) bool {
		return IsTimeStamp(fl.Field().String())
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DATE_LAYOUT, fl.Field().String())
		return err == nil
	})
	if err != nil {
		return err
	}

	return validate.RegisterValidation("ahv_number", func(fl validator.FieldLevel) bool {
		return IsAHVNumber(fl.Field().String())
	})
}

// NewValidator returns a validator with RegisterValidators applied.
func NewValidator() *validator.Validate {
	validate := validator.New()
	if err := RegisterValidators(validate); err != nil {
		panic(err)
	}
	return validate
}

func IsTimeStamp(value string) bool {
	timeSegments := strings.Split(value, ":")
	if len(timeSegments) != 2 || len(timeSegments[0]) != 2 || len(timeSegments[1]) != 2 {
		return false
	}

	hour, err := strconv.Atoi(timeSegments[0])
	if err != nil || hour < 0 || hour > 23 {
		return false
	}

	minute, err := strconv.Atoi(timeSegments[1])
	return err == nil && minute >= 0 && minute <= 59
}

// IsAHVNumber checks the format and the EAN-13 check digit of a Swiss social security number.
func IsAHVNumber(value string) bool {
	if !ahvPattern.MatchString(value) {
		return false
	}

	digits := strings.ReplaceAll(value, ".", "")
	sum := 0
	for i := 0; i < 12; i++ {
		digit := int(digits[i] - '0')
		if i%2 == 1 {
			digit *= 3
		}
		sum += digit
	}

	check := (10 - sum%10) % 10
	return check == int(digits[12]-'0')
}
