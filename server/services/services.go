package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/gstorage"
	"github.com/zivilschutz/zsadmin/server/logger"
	"github.com/zivilschutz/zsadmin/server/work"
)

// Job handler names enqueued by the services.
const (
	NOTIFY_ADMINS          = "notifyAdmins"
	SYNC_TRAINING_CALENDAR = "syncTrainingCalendar"
	SEND_EMAIL             = "sendEmail"
)

var logg = logger.NewLogger()

// JobEnqueuer hands work to the background job queue.
type JobEnqueuer interface {
	Perform(job work.JobParams) error
}

type Deps struct {
	Validate *validator.Validate
	Jobs     JobEnqueuer

	// Blobs is nil when file storage is not configured.
	Blobs gstorage.BlobStore

	// BaseURL prefixes links sent by e-mail.
	BaseURL string
}

type Services struct {
	Persons     *PersonService
	Trainings   *TrainingService
	Attendances *AttendanceService
	Contacts    *ContactService
	Users       *UserService
	Auth        *AuthService
	Files       *FileService
	Reports     *ReportService
	Maintenance *MaintenanceService
}

func New(deps Deps) *Services {
	s := &Services{}
	s.Persons = newPersonService(deps)
	s.Trainings = newTrainingService(deps)
	s.Contacts = newContactService(deps, s.Persons)
	s.Attendances = newAttendanceService(deps, s.Persons, s.Trainings)
	s.Users = newUserService(deps)
	s.Auth = newAuthService(deps, s.Users)
	s.Files = newFileService(deps, s.Persons)
	s.Reports = &ReportService{persons: s.Persons, trainings: s.Trainings, attendances: s.Attendances, contacts: s.Contacts}
	s.Maintenance = &MaintenanceService{deps: deps, attendances: s.Attendances, contacts: s.Contacts, files: s.Files}
	return s
}

func validateRecord(validate *validator.Validate, record interface{}) error {
	err := validate.Struct(record)
	if err != nil {
		return apperr.Wrap(apperr.ErrValidation, err)
	}
	return nil
}

// ValidationDetails lists the failed fields of a validation error, one line each.
func ValidationDetails(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	details := []string{}
	for _, fieldErr := range validationErrs {
		details = append(details, fmt.Sprintf("%s: %s", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return details
}

// applyPatch overlays the known fields of data onto record, validates the result and
// returns the column updates for the repository.
func applyPatch(validate *validator.Validate, record interface{}, data map[string]interface{}, columns map[string]string) (map[string]interface{}, error) {
	known := map[string]interface{}{}
	for key, value := range data {
		if _, ok := columns[key]; ok {
			known[key] = value
		}
	}

	if len(known) == 0 {
		return nil, apperr.New(apperr.ErrNoValidFields)
	}

	patch, err := json.Marshal(known)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrBind, err)
	}

	err = json.Unmarshal(patch, record)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrBind, err)
	}

	err = validateRecord(validate, record)
	if err != nil {
		return nil, err
	}

	values := jsonFieldValues(record)
	updates := map[string]interface{}{}
	for key := range known {
		updates[columns[key]] = values[key]
	}
	return updates, nil
}

// jsonFieldValues maps the json name of every field of a struct pointer, including
// embedded structs, to its current value.
func jsonFieldValues(record interface{}) map[string]interface{} {
	values := map[string]interface{}{}
	collectFieldValues(reflect.Indirect(reflect.ValueOf(record)), values)
	return values
}

func collectFieldValues(v reflect.Value, values map[string]interface{}) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			collectFieldValues(v.Field(i), values)
			continue
		}

		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" || !field.IsExported() {
			continue
		}
		values[name] = v.Field(i).Interface()
	}
}
