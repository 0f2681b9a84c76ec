package models

import (
	"time"

	"gorm.io/datatypes"
)

var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Availability is a recurring weekly window in which a doctor accepts bookings.
type Availability struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	DoctorID  uint           `gorm:"not null;uniqueIndex:uniq_doctor_day_start,priority:1" json:"-"`
	DayOfWeek string         `gorm:"size:10;not null;uniqueIndex:uniq_doctor_day_start,priority:2" json:"day_of_week"`
	StartTime datatypes.Time `gorm:"not null;uniqueIndex:uniq_doctor_day_start,priority:3" json:"start_time"`
	EndTime   datatypes.Time `gorm:"not null" json:"end_time"`
}

func ValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// WeekdayOf returns the day_of_week label for a calendar date.
func WeekdayOf(date time.Time) string {
	return date.Weekday().String()
}

func (a *Availability) Validate() error {
	if !ValidWeekday(a.DayOfWeek) {
		return NewValidationError("day_of_week", "Invalid day of week.")
	}
	if a.StartTime >= a.EndTime {
		return NewValidationError("end_time", "End time must be after start time.")
	}
	return nil
}

// Contains reports whether t falls in [start, end).
func (a *Availability) Contains(t datatypes.Time) bool {
	return a.StartTime <= t && t < a.EndTime
}

func (a *Availability) Overlaps(other *Availability) bool {
	return a.DayOfWeek == other.DayOfWeek &&
		a.StartTime < other.EndTime && other.StartTime < a.EndTime
}
