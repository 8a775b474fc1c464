package server

import (
	"encoding/json"
	"net/http"

	"github.com/zivilschutz/zsadmin/server/apperr"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/server/services"
)

// ---------------------------------------------------------------------------------//
// Persons
// --------------------------------------------------------------------------------//

func listPersons(rw http.ResponseWriter, r *http.Request) {
	filter, err := personFilter(r)
	if err != nil {
		writeError(rw, err)
		return
	}

	persons, err := svc.Persons.List(filter)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, persons, http.StatusOK)
}

func findPerson(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrPersonNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	person, err := svc.Persons.Get(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, person, http.StatusOK)
}

func createPerson(rw http.ResponseWriter, r *http.Request) {
	person := models.Person{}
	err := decodeBody(r, &person)
	if err != nil {
		writeError(rw, err)
		return
	}

	person.PhotoObject = ""
	err = svc.Persons.Create(&person, editor(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, person, http.StatusCreated)
}

func updatePerson(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrPersonNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	data := make(map[string]interface{})
	err = decodeBody(r, &data)
	if err != nil {
		writeError(rw, err)
		return
	}

	removeUnknownFields(data, models.PersonColumns)
	person, err := svc.Persons.Update(id, data, editor(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, person, http.StatusOK)
}

func deletePerson(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrPersonNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	err = svc.Persons.Delete(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func personSummary(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrPersonNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	year, err := yearQuery(r)
	if err != nil {
		writeError(rw, err)
		return
	}

	summary, err := svc.Attendances.Summary(id, year)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, summary, http.StatusOK)
}

func personAttendances(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrPersonNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	records, err := svc.Attendances.ForPerson(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, records, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Trainings
// --------------------------------------------------------------------------------//

func listTrainings(rw http.ResponseWriter, r *http.Request) {
	year, err := intQuery(r, "year")
	if err != nil {
		writeError(rw, err)
		return
	}

	filterYear := 0
	if year != nil {
		filterYear = *year
	}

	trainings, err := svc.Trainings.List(r.URL.Query().Get("q"), filterYear)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, trainings, http.StatusOK)
}

func findTraining(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrTrainingNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	training, err := svc.Trainings.Get(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, training, http.StatusOK)
}

func createTraining(rw http.ResponseWriter, r *http.Request) {
	training := models.Training{}
	err := decodeBody(r, &training)
	if err != nil {
		writeError(rw, err)
		return
	}

	err = svc.Trainings.Create(&training, editor(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, training, http.StatusCreated)
}

func updateTraining(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrTrainingNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	data := make(map[string]interface{})
	err = decodeBody(r, &data)
	if err != nil {
		writeError(rw, err)
		return
	}

	removeUnknownFields(data, models.TrainingColumns)
	training, err := svc.Trainings.Update(id, data, editor(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, training, http.StatusOK)
}

func deleteTraining(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrTrainingNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	err = svc.Trainings.Delete(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// ---------------------------------------------------------------------------------//
// Attendance
// --------------------------------------------------------------------------------//

func trainingAttendances(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrTrainingNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	_, err = svc.Trainings.Get(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	records, err := svc.Attendances.ForTraining(id, r.URL.Query().Get("date"))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, records, http.StatusOK)
}

func setAttendance(rw http.ResponseWriter, r *http.Request) {
	input := models.Attendance{}
	err := decodeBody(r, &input)
	if err != nil {
		writeError(rw, err)
		return
	}

	record, created, err := svc.Attendances.SetStatus(input, editor(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeData(rw, record, status)
}

func bulkSetAttendance(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrTrainingNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	data := struct {
		Date    string               `json:"date"`
		Entries []services.BulkEntry `json:"entries"`
	}{}
	err = decodeBody(r, &data)
	if err != nil {
		writeError(rw, err)
		return
	}

	records, err := svc.Attendances.BulkSetStatus(id, data.Date, data.Entries, editor(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, records, http.StatusOK)
}

func deleteAttendance(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrAttendanceNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	err = svc.Attendances.Delete(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func attendanceMatrix(rw http.ResponseWriter, r *http.Request) {
	year, err := yearQuery(r)
	if err != nil {
		writeError(rw, err)
		return
	}

	platoon, err := intQuery(r, "platoon")
	if err != nil {
		writeError(rw, err)
		return
	}

	matrix, err := svc.Attendances.Matrix(year, platoon)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, matrix, http.StatusOK)
}

// ---------------------------------------------------------------------------------//
// Emergency contacts
// --------------------------------------------------------------------------------//

func personContacts(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrPersonNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	contacts, err := svc.Contacts.ForPerson(id, r.URL.Query().Get("q"))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, contacts, http.StatusOK)
}

func findContact(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrContactNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	contact, err := svc.Contacts.Get(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, contact, http.StatusOK)
}

func createContact(rw http.ResponseWriter, r *http.Request) {
	personID, err := idVar(r, "id", apperr.ErrPersonNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	contact := models.EmergencyContact{}
	err = decodeBody(r, &contact)
	if err != nil {
		writeError(rw, err)
		return
	}

	err = svc.Contacts.Create(personID, &contact)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, contact, http.StatusCreated)
}

func updateContact(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrContactNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	data := make(map[string]interface{})
	err = decodeBody(r, &data)
	if err != nil {
		writeError(rw, err)
		return
	}

	removeUnknownFields(data, models.EmergencyContactColumns)
	contact, err := svc.Contacts.Update(id, data)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeData(rw, contact, http.StatusOK)
}

func deleteContact(rw http.ResponseWriter, r *http.Request) {
	id, err := idVar(r, "id", apperr.ErrContactNotFound)
	if err != nil {
		writeError(rw, err)
		return
	}

	err = svc.Contacts.Delete(id)
	if err != nil {
		writeError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}
