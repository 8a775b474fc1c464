package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"github.com/zivilschutz/zsadmin/server/models"
)

const PERSONNEL_SHEET = "Personal"

var personnelHeader = []string{
	"Name", "Vorname", "Grad", "Funktion", "Zug", "Gruppe", "Status",
	"Geburtsdatum", "Strasse", "PLZ", "Ort", "E-Mail", "Mobile", "Eintritt",
}

// PersonnelPDF renders a compact personnel list.
func PersonnelPDF(w io.Writer, title string, persons []models.Person) error {
	doc := newDocument("L", title)
	doc.pdf.AddPage()

	rows := [][]string{}
	for _, person := range persons {
		rows = append(rows, []string{
			person.LastName, person.FirstName, person.Grade, person.Function,
			platoonLabel(person), personStatusLabel(person.Status), person.MobilePhone, person.Email,
		})
	}

	doc.table(
		[]float64{38, 32, 25, 35, 35, 18, 32, 58},
		[]string{"Name", "Vorname", "Grad", "Funktion", "Zug / Gruppe", "Status", "Mobile", "E-Mail"},
		rows,
	)

	doc.pdf.Ln(3)
	doc.pdf.SetFont(FONT, "I", 8)
	doc.pdf.CellFormat(0, LINE_HEIGHT, doc.tr(fmt.Sprintf("%d Personen", len(persons))), "", 1, "L", false, 0, "")

	return doc.write(w)
}

// PersonnelXLSX exports the personnel list as a spreadsheet with a bold, filterable header.
func PersonnelXLSX(w io.Writer, persons []models.Person) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logg.Error(err)
		}
	}()

	err := f.SetSheetName("Sheet1", PERSONNEL_SHEET)
	if err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDDDDD"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	for i, title := range personnelHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err = f.SetCellValue(PERSONNEL_SHEET, cell, title); err != nil {
			return err
		}
	}

	for i, person := range persons {
		values := []interface{}{
			person.LastName, person.FirstName, person.Grade, person.Function, person.Platoon, person.Group,
			personStatusLabel(person.Status), swissDate(person.DateOfBirth), person.Street, person.ZipCode,
			person.City, person.Email, person.MobilePhone, swissDate(person.EntryDate),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err = f.SetSheetRow(PERSONNEL_SHEET, cell, &values); err != nil {
			return err
		}
	}

	lastColumn, err := excelize.ColumnNumberToName(len(personnelHeader))
	if err != nil {
		return err
	}

	if err = f.SetCellStyle(PERSONNEL_SHEET, "A1", lastColumn+"1", headerStyle); err != nil {
		return err
	}
	if err = f.SetColWidth(PERSONNEL_SHEET, "A", lastColumn, 16); err != nil {
		return err
	}
	if err = f.AutoFilter(PERSONNEL_SHEET, "A1:"+lastColumn+"1", nil); err != nil {
		return err
	}
	err = f.SetPanes(PERSONNEL_SHEET, &excelize.Panes{Freeze: true, Split: false, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	if err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}
