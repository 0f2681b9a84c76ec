package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
)

const NonFieldErrors = "non_field_errors"

// Slot is a requested appointment position.
type Slot struct {
	PatientID      uint
	DoctorID       uint
	AvailabilityID *uint
	Date           time.Time
	Time           datatypes.Time
	// ExcludeID skips the appointment being rescheduled in conflict checks.
	ExcludeID uint
}

// BookingValidator checks a slot against the clock, the doctor's weekly
// windows and existing appointments.
type BookingValidator struct {
	doctors      repository.DoctorRepository
	availability repository.AvailabilityRepository
	appointments repository.AppointmentRepository
	now          func() time.Time
}

func NewBookingValidator(doctors repository.DoctorRepository, availability repository.AvailabilityRepository, appointments repository.AppointmentRepository) *BookingValidator {
	return &BookingValidator{
		doctors:      doctors,
		availability: availability,
		appointments: appointments,
		now:          time.Now,
	}
}

// Validate returns a *models.ValidationError for rule violations and a plain
// error for storage failures.
func (v *BookingValidator) Validate(ctx context.Context, s Slot) error {
	if _, err := v.doctors.FindByID(ctx, s.DoctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewValidationError("doctor", "Invalid doctor.")
		}
		return err
	}

	if !models.At(s.Date, s.Time).After(v.now()) {
		return models.NewValidationError(NonFieldErrors, "Cannot book in the past.")
	}

	day := models.WeekdayOf(s.Date)
	if s.AvailabilityID != nil {
		a, err := v.availability.FindForDoctor(ctx, *s.AvailabilityID, s.DoctorID)
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewValidationError("availability", "Availability does not belong to this doctor.")
		}
		if err != nil {
			return err
		}
		if a.DayOfWeek != day {
			return models.NewValidationError("availability", "Availability day does not match the appointment date.")
		}
		if !a.Contains(s.Time) {
			return models.NewValidationError("availability", "Time outside availability window.")
		}
	}

	windows, err := v.availability.ListByDay(ctx, s.DoctorID, day)
	if err != nil {
		return err
	}
	covered := false
	for i := range windows {
		if windows[i].Contains(s.Time) {
			covered = true
			break
		}
	}
	if !covered {
		return models.NewValidationError(NonFieldErrors, "Doctor not available.")
	}

	taken, err := v.appointments.DoctorSlotTaken(ctx, s.DoctorID, s.Date, s.Time, s.ExcludeID)
	if err != nil {
		return err
	}
	if taken {
		return models.NewValidationError(NonFieldErrors, "This time slot is already booked.")
	}

	taken, err = v.appointments.PatientSlotTaken(ctx, s.PatientID, s.Date, s.Time, s.ExcludeID)
	if err != nil {
		return err
	}
	if taken {
		return models.NewValidationError(NonFieldErrors, "You already have an appointment at this time.")
	}
	return nil
}
