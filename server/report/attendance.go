package report

import (
	"fmt"
	"io"

	"github.com/zivilschutz/zsadmin/server/attendance"
	"github.com/zivilschutz/zsadmin/server/models"
	"github.com/zivilschutz/zsadmin/utils"
)

const (
	DAYS_PER_PAGE = 20
	NAME_WIDTH    = 55.0
	DAY_WIDTH     = 9.0
	TOTAL_WIDTH   = 10.0
)

var statusSymbols = map[string]string{
	models.ATTENDED:     "X",
	models.NOT_ATTENDED: "-",
	models.EXCUSED:      "E",
}

// AttendancePDF renders the attendance matrix on landscape pages. Wide matrices are split
// into pages of DAYS_PER_PAGE days; totals are printed with the last chunk.
func AttendancePDF(w io.Writer, title string, matrix attendance.Matrix) error {
	doc := newDocument("L", title)
	pdf := doc.pdf

	if len(matrix.Columns) == 0 || len(matrix.Rows) == 0 {
		pdf.AddPage()
		pdf.SetFont(FONT, "", 10)
		pdf.CellFormat(0, LINE_HEIGHT, doc.tr("Keine Ausbildungen oder Personen für diese Auswahl."), "", 1, "L", false, 0, "")
		return doc.write(w)
	}

	for start := 0; start < len(matrix.Columns); start += DAYS_PER_PAGE {
		end := start + DAYS_PER_PAGE
		if end > len(matrix.Columns) {
			end = len(matrix.Columns)
		}
		last := end == len(matrix.Columns)

		pdf.AddPage()
		matrixHeader(doc, matrix.Columns[start:end], last)

		pdf.SetFont(FONT, "", 8)
		for i, row := range matrix.Rows {
			fill := i%2 == 1
			pdf.SetFillColor(245, 245, 245)
			pdf.CellFormat(NAME_WIDTH, LINE_HEIGHT, doc.tr(row.Person.FullName()), "1", 0, "L", fill, 0, "")
			for _, status := range row.Cells[start:end] {
				pdf.CellFormat(DAY_WIDTH, LINE_HEIGHT, statusSymbols[status], "1", 0, "C", fill, 0, "")
			}
			if last {
				for _, total := range []int{row.Totals.Attended, row.Totals.NotAttended, row.Totals.Excused, row.Totals.Open} {
					pdf.CellFormat(TOTAL_WIDTH, LINE_HEIGHT, fmt.Sprint(total), "1", 0, "C", fill, 0, "")
				}
			}
			pdf.Ln(-1)
		}
	}

	pdf.Ln(4)
	pdf.SetFont(FONT, "I", 8)
	pdf.CellFormat(0, LINE_HEIGHT, doc.tr("Legende: X = teilgenommen, - = nicht teilgenommen, E = entschuldigt, leer = offen"), "", 1, "L", false, 0, "")

	return doc.write(w)
}

func matrixHeader(doc *document, columns []attendance.Column, withTotals bool) {
	pdf := doc.pdf
	pdf.SetFont(FONT, "B", 7)
	pdf.SetFillColor(220, 220, 220)

	pdf.CellFormat(NAME_WIDTH, LINE_HEIGHT, "", "LTR", 0, "L", true, 0, "")
	for _, column := range columns {
		pdf.CellFormat(DAY_WIDTH, LINE_HEIGHT, doc.tr(abbreviate(column.Training.Title, 5)), "LTR", 0, "C", true, 0, "")
	}
	if withTotals {
		pdf.CellFormat(TOTAL_WIDTH*4, LINE_HEIGHT, "Total", "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.CellFormat(NAME_WIDTH, LINE_HEIGHT, "Name", "LBR", 0, "L", true, 0, "")
	for _, column := range columns {
		pdf.CellFormat(DAY_WIDTH, LINE_HEIGHT, shortDate(column.Date), "LBR", 0, "C", true, 0, "")
	}
	if withTotals {
		for _, label := range []string{"X", "-", "E", "offen"} {
			pdf.CellFormat(TOTAL_WIDTH, LINE_HEIGHT, label, "1", 0, "C", true, 0, "")
		}
	}
	pdf.Ln(-1)
}

func shortDate(date string) string {
	day, err := utils.ParseDate(date)
	if err != nil {
		return date
	}
	return day.Format("02.01.")
}

func abbreviate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "."
}
