package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ReportAppointments = "appointments"
	ReportFinance      = "finance"
	ReportUsers        = "users"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"

	ReportStatusPending = "pending"
	ReportStatusReady   = "ready"
	ReportStatusError   = "error"
)

type Report struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ReportType    string            `gorm:"size:20;not null;index" json:"report_type"`
	Format        string            `gorm:"size:10;not null;default:csv" json:"format"`
	DateFrom      datatypes.Date    `gorm:"not null" json:"date_from"`
	DateTo        datatypes.Date    `gorm:"not null" json:"date_to"`
	GeneratedByID uint              `gorm:"not null;index" json:"generated_by"`
	GeneratedBy   User              `json:"-"`
	File          string            `gorm:"size:255" json:"file"`
	IsReady       bool              `gorm:"not null;default:false" json:"is_ready"`
	Attempts      int               `gorm:"not null;default:0" json:"attempts"`
	LastError     string            `gorm:"type:text" json:"last_error,omitempty"`
	Filters       datatypes.JSONMap `json:"filters,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func ValidReportType(t string) bool {
	switch t {
	case ReportAppointments, ReportFinance, ReportUsers:
		return true
	}
	return false
}

func ValidReportFormat(f string) bool {
	switch f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return true
	}
	return false
}

// Status is ready when a file exists, error when finished without one.
func (r *Report) Status() string {
	switch {
	case r.IsReady && r.File != "":
		return ReportStatusReady
	case r.IsReady:
		return ReportStatusError
	default:
		return ReportStatusPending
	}
}
