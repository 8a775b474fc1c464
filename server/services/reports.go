package services

import (
	"fmt"
	"io"

	"github.com/zivilschutz/zsadmin/server/report"
)

// ReportService renders the reports from the current records.
type ReportService struct {
	persons     *PersonService
	trainings   *TrainingService
	attendances *AttendanceService
	contacts    *ContactService
}

func (s *ReportService) AttendancePDF(w io.Writer, year int, platoon *int) error {
	matrix, err := s.attendances.Matrix(year, platoon)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Teilnahmekontrolle %d", year)
	if platoon != nil {
		title = fmt.Sprintf("%s, Zug %d", title, *platoon)
	}

	return report.AttendancePDF(w, title, matrix)
}

func (s *ReportService) PersonSheetPDF(w io.Writer, personID uint, year int) error {
	person, err := s.persons.Get(personID)
	if err != nil {
		return err
	}

	contacts, err := s.contacts.ForPerson(personID, "")
	if err != nil {
		return err
	}

	summary, err := s.attendances.Summary(personID, year)
	if err != nil {
		return err
	}

	return report.PersonSheetPDF(w, *person, contacts, summary, year)
}

func (s *ReportService) PersonnelPDF(w io.Writer, filter PersonFilter) error {
	persons, err := s.persons.List(filter)
	if err != nil {
		return err
	}

	return report.PersonnelPDF(w, "Personalliste", persons)
}

func (s *ReportService) PersonnelXLSX(w io.Writer, filter PersonFilter) error {
	persons, err := s.persons.List(filter)
	if err != nil {
		return err
	}

	return report.PersonnelXLSX(w, persons)
}
