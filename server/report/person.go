package report

import (
	"fmt"
	"io"

	"github.com/zivilschutz/zsadmin/server/attendance"
	"github.com/zivilschutz/zsadmin/server/models"
)

// PersonSheetPDF renders the personal data sheet with emergency contacts and the
// participation summary.
func PersonSheetPDF(w io.Writer, person models.Person, contacts []models.EmergencyContact, summary attendance.Summary, year int) error {
	doc := newDocument("P", fmt.Sprintf("Personalblatt %s", person.FullName()))
	doc.pdf.AddPage()

	doc.heading("Personalien")
	doc.field("Name", person.LastName)
	doc.field("Vorname", person.FirstName)
	doc.field("Geburtsdatum", swissDate(person.DateOfBirth))
	doc.field("AHV-Nummer", person.AHVNumber)
	doc.field("Grad", person.Grade)
	doc.field("Funktion", person.Function)
	doc.field("Zug / Gruppe", platoonLabel(person))
	doc.field("Status", personStatusLabel(person.Status))
	doc.field("Eintritt", swissDate(person.EntryDate))
	doc.pdf.Ln(3)

	doc.heading("Kontakt")
	doc.field("Adresse", person.Street)
	doc.field("Ort", fmt.Sprintf("%s %s", person.ZipCode, person.City))
	doc.field("E-Mail", person.Email)
	doc.field("Mobile", person.MobilePhone)
	doc.field("Privat", person.PrivatePhone)
	doc.field("Geschäft", person.WorkPhone)
	doc.pdf.Ln(3)

	doc.heading("Beruf & Persönliches")
	doc.field("Beruf", person.Profession)
	doc.field("Arbeitgeber", person.Employer)
	doc.field("Sprachen", person.Languages)
	doc.field("Allergien", person.Allergies)
	doc.field("Bemerkungen", person.Notes)
	doc.pdf.Ln(3)

	doc.heading("Notfallkontakte")
	if len(contacts) == 0 {
		doc.pdf.CellFormat(0, LINE_HEIGHT, doc.tr("Keine Notfallkontakte erfasst."), "", 1, "L", false, 0, "")
	} else {
		rows := [][]string{}
		for _, contact := range contacts {
			rows = append(rows, []string{fmt.Sprint(contact.Priority), contact.Name, contact.Relationship, contact.PhoneNumber})
		}
		doc.table([]float64{12, 70, 50, 54}, []string{"Prio", "Name", "Beziehung", "Telefon"}, rows)
	}
	doc.pdf.Ln(3)

	doc.heading(fmt.Sprintf("Ausbildungen %d", year))
	if len(summary.Entries) == 0 {
		doc.pdf.CellFormat(0, LINE_HEIGHT, doc.tr("Keine Ausbildungen in diesem Jahr."), "", 1, "L", false, 0, "")
		return doc.write(w)
	}

	rows := [][]string{}
	for _, entry := range summary.Entries {
		for _, day := range entry.Days {
			status := models.AttendanceStatusLabels[day.Status]
			if status == "" {
				status = "offen"
			}
			rows = append(rows, []string{swissDate(day.Date), entry.Training.Title, entry.Training.TypeLabel(), status})
		}
	}
	doc.table([]float64{25, 86, 40, 35}, []string{"Datum", "Ausbildung", "Art", "Status"}, rows)

	doc.pdf.Ln(3)
	totals := summary.Totals
	doc.field("Teilgenommen", fmt.Sprint(totals.Attended))
	doc.field("Nicht teilgenommen", fmt.Sprint(totals.NotAttended))
	doc.field("Entschuldigt", fmt.Sprint(totals.Excused))
	doc.field("Offen", fmt.Sprint(totals.Open))
	doc.field("Pflicht verpasst", fmt.Sprint(totals.RequiredMissed))
	doc.field("Quote", fmt.Sprintf("%.0f%%", totals.Rate()))

	return doc.write(w)
}
