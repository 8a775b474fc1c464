package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/zivilschutz/zsadmin/server/logger"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/utils"
)

const (
	ORGANISATION = "Zivilschutz"
	FONT         = "Helvetica"
	LINE_HEIGHT  = 6.0
)

var logg = logger.NewLogger()

// document wraps fpdf with the header, footer and text translation every report shares.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(orientation, title string) *document {
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetAuthor(ORGANISATION, true)
	pdf.SetCreationDate(time.Now())
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")

	doc := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(FONT, "B", 14)
		pdf.CellFormat(0, 8, doc.tr(title), "", 1, "L", false, 0, "")
		pdf.SetFont(FONT, "", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 5, doc.tr(fmt.Sprintf("%s, erstellt am %s", ORGANISATION, time.Now().Format("02.01.2006 15:04"))), "B", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(3)
	})

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(FONT, "I", 8)
		pdf.CellFormat(0, 8, doc.tr(fmt.Sprintf("Seite %d/{nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	return doc
}

func (doc *document) heading(text string) {
	doc.pdf.SetFont(FONT, "B", 11)
	doc.pdf.CellFormat(0, LINE_HEIGHT+1, doc.tr(text), "", 1, "L", false, 0, "")
	doc.pdf.SetFont(FONT, "", 9)
}

// field writes a label/value line, skipping empty values.
func (doc *document) field(label, value string) {
	if value == "" {
		return
	}

	doc.pdf.SetFont(FONT, "B", 9)
	doc.pdf.CellFormat(45, LINE_HEIGHT, doc.tr(label), "", 0, "L", false, 0, "")
	doc.pdf.SetFont(FONT, "", 9)
	doc.pdf.MultiCell(0, LINE_HEIGHT, doc.tr(value), "", "L", false)
}

// table writes a header row and body rows with fixed column widths.
func (doc *document) table(widths []float64, header []string, rows [][]string) {
	doc.pdf.SetFont(FONT, "B", 9)
	doc.pdf.SetFillColor(220, 220, 220)
	for i, title := range header {
		doc.pdf.CellFormat(widths[i], LINE_HEIGHT+1, doc.tr(title), "1", 0, "L", true, 0, "")
	}
	doc.pdf.Ln(-1)

	doc.pdf.SetFont(FONT, "", 9)
	for _, row := range rows {
		for i, value := range row {
			doc.pdf.CellFormat(widths[i], LINE_HEIGHT, doc.tr(value), "1", 0, "L", false, 0, "")
		}
		doc.pdf.Ln(-1)
	}
}

func (doc *document) write(w io.Writer) error {
	if doc.pdf.Err() {
		return fmt.Errorf("render pdf: %v", doc.pdf.Error())
	}

	return doc.pdf.Output(w)
}

func personStatusLabel(status string) string {
	switch status {
	case models.ACTIVE_PERSON:
		return "Aktiv"
	case models.INACTIVE_PERSON:
		return "Inaktiv"
	case models.NEW_PERSON:
		return "Neu"
	}
	return status
}

func platoonLabel(person models.Person) string {
	if person.Platoon == 0 && person.Group == "" {
		return ""
	}
	if person.Group == "" {
		return fmt.Sprintf("Zug %d", person.Platoon)
	}
	return fmt.Sprintf("Zug %d / %s", person.Platoon, person.Group)
}

func swissDate(date string) string {
	if date == "" {
		return ""
	}
	return utils.FormatSwissDate(date)
}
