// Package export renders tabular reports as XLSX or PDF.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Table is a titled grid of text cells.
type Table struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     [][]string
}

// ContentType returns the MIME type and file extension for format.
func ContentType(format string) (string, string, error) {
	switch strings.ToLower(format) {
	case FormatXLSX, "":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatXLSX, nil
	case FormatPDF:
		return "application/pdf", FormatPDF, nil
	default:
		return "", "", fmt.Errorf("unsupported export format %q", format)
	}
}

// Render encodes t in the requested format.
func Render(format string, t Table) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatXLSX, "":
		return XLSX(t)
	case FormatPDF:
		return PDF(t)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

func XLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	for i, h := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}
	for r, row := range t.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func PDF(t Table) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, t.Title)
	pdf.Ln(10)
	if t.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 8, t.Subtitle)
		pdf.Ln(10)
	}

	width := 277.0
	if len(t.Headers) > 0 {
		width /= float64(len(t.Headers))
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(226, 232, 240)
	for _, h := range t.Headers {
		pdf.CellFormat(width, 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range t.Rows {
		for _, value := range row {
			pdf.CellFormat(width, 7, truncate(value, int(width/1.8)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sheetName(title string) string {
	name := strings.NewReplacer("/", "-", "\\", "-", "?", "", "*", "", "[", "", "]", "", ":", "").Replace(title)
	if name == "" {
		name = "Report"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
