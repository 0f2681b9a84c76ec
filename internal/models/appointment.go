package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

var Statuses = []string{StatusPending, StatusApproved, StatusCancelled, StatusCompleted}

var allowedTransitions = map[string][]string{
	StatusPending:   {StatusApproved, StatusCancelled},
	StatusApproved:  {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Appointment holds one booked slot. A doctor and a patient can each hold
// at most one appointment per date and time.
type Appointment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	PatientID      uint           `gorm:"not null;uniqueIndex:uniq_patient_slot,priority:1" json:"patient_id"`
	Patient        PatientProfile `json:"-"`
	DoctorID       uint           `gorm:"not null;uniqueIndex:uniq_doctor_slot,priority:1" json:"doctor_id"`
	Doctor         DoctorProfile  `json:"-"`
	AvailabilityID *uint          `json:"availability_id"`
	Availability   *Availability  `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Date           datatypes.Date `gorm:"not null;index;uniqueIndex:uniq_doctor_slot,priority:2;uniqueIndex:uniq_patient_slot,priority:2" json:"date"`
	Time           datatypes.Time `gorm:"not null;uniqueIndex:uniq_doctor_slot,priority:3;uniqueIndex:uniq_patient_slot,priority:3" json:"time"`
	ReasonForVisit string         `gorm:"type:text" json:"reason_for_visit"`
	Status         string         `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func ValidStatus(status string) bool {
	_, ok := allowedTransitions[status]
	return ok
}

func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionTo moves the appointment to status or returns a ValidationError.
func (a *Appointment) TransitionTo(status string) error {
	if !ValidStatus(status) {
		return NewValidationError("status", fmt.Sprintf("%q is not a valid status.", status))
	}
	if !CanTransition(a.Status, status) {
		return NewValidationError("status", fmt.Sprintf("Cannot change status from %s to %s", a.Status, status))
	}
	a.Status = status
	return nil
}

func (a *Appointment) StartsAt() time.Time {
	return At(time.Time(a.Date), a.Time)
}
