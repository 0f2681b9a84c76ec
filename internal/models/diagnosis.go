package models

import "time"

type Diagnosis struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	AppointmentID uint           `gorm:"uniqueIndex;not null" json:"appointment"`
	Appointment   Appointment    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Summary       string         `gorm:"column:diagnosis;type:text;not null" json:"diagnosis"`
	Notes         string         `gorm:"type:text" json:"notes"`
	Prescriptions []Prescription `gorm:"constraint:OnDelete:CASCADE" json:"prescriptions"`
	CreatedAt     time.Time      `json:"created_at"`
}

type Prescription struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	DiagnosisID  uint   `gorm:"index;not null" json:"-"`
	MedicineName string `gorm:"size:255;not null" json:"medicine_name"`
	Dosage       string `gorm:"size:100;not null" json:"dosage"`
	Duration     string `gorm:"size:100;not null" json:"duration"`
}
