package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

// RenderPrescriptionPDF lays out a diagnosis with its prescriptions on one A4 page.
func RenderPrescriptionPDF(d *models.Diagnosis) ([]byte, error) {
	apt := &d.Appointment

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(0, 70, 140)
	pdf.CellFormat(0, 10, "Smart Health - Medical Prescription", "", 1, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	detail := func(label, value string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(40, 8, label, "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, tr(value), "", 1, "", false, 0, "")
	}
	detail("Patient:", apt.Patient.User.DisplayName())
	detail("Doctor:", "Dr. "+apt.Doctor.User.DisplayName())
	if apt.Doctor.Specialization != "" {
		detail("Specialization:", apt.Doctor.Specialization)
	}
	detail("Visit:", fmt.Sprintf("%s at %s", models.FormatDate(apt.Date), models.FormatClock(apt.Time)))
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Diagnosis", "B", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, tr(d.Summary), "", "L", false)
	if d.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 6, tr("Notes: "+d.Notes), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Prescriptions", "B", 1, "", false, 0, "")
	if len(d.Prescriptions) == 0 {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 8, "No medication prescribed.", "", 1, "", false, 0, "")
	} else {
		widths := []float64{80, 50, 50}
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range []string{"Medicine", "Dosage", "Duration"} {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 11)
		for _, p := range d.Prescriptions {
			pdf.CellFormat(widths[0], 8, tr(p.MedicineName), "1", 0, "", false, 0, "")
			pdf.CellFormat(widths[1], 8, tr(p.Dosage), "1", 0, "", false, 0, "")
			pdf.CellFormat(widths[2], 8, tr(p.Duration), "1", 1, "", false, 0, "")
		}
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, fmt.Sprintf("Issued %s. Follow the instructions given by your doctor.", d.CreatedAt.Format("2006-01-02")), "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render prescription pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTablePDF renders a titled table, switching to landscape for wide data.
func RenderTablePDF(ds Dataset) ([]byte, error) {
	orientation := "P"
	if len(ds.Headers) > 5 {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(ds.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 6, "Generated "+time.Now().UTC().Format(time.RFC1123), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	if len(ds.Headers) == 0 {
		return outputPDF(pdf)
	}
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(ds.Headers))

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(128, 128, 128)
		pdf.SetTextColor(255, 255, 255)
		for _, h := range ds.Headers {
			pdf.CellFormat(colW, 7, fit(pdf, tr(h), colW), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "", 8)
	}
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range ds.Rows {
		if pdf.GetY()+6 > pageH-bottom-10 {
			pdf.AddPage()
			header()
		}
		for i := range ds.Headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pdf.CellFormat(colW, 6, fit(pdf, tr(cell), colW), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return outputPDF(pdf)
}

// fit shortens s until it fits in width w.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	max := w - 2
	if pdf.GetStringWidth(s) <= max {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > max {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func outputPDF(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
