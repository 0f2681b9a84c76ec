package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

type PatientProfile struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           uint            `gorm:"uniqueIndex;not null" json:"-"`
	User             User            `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Age              *int            `json:"age"`
	Gender           string          `gorm:"size:10" json:"gender"`
	DateOfBirth      *datatypes.Date `json:"date_of_birth"`
	MedicalHistory   string          `gorm:"type:text" json:"medical_history"`
	EmergencyContact string          `gorm:"size:100" json:"emergency_contact"`
	BloodGroup       string          `gorm:"size:5" json:"blood_group"`
	Allergies        string          `gorm:"type:text" json:"allergies"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type DoctorProfile struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"uniqueIndex;not null" json:"-"`
	User              User           `gorm:"constraint:OnDelete:CASCADE" json:"user"`
	Specialization    string         `gorm:"size:100;index" json:"specialization"`
	Location          string         `gorm:"size:255;index" json:"location"`
	Bio               string         `gorm:"type:text" json:"bio"`
	YearsOfExperience int            `gorm:"not null;default:0" json:"years_of_experience"`
	PhoneNumber       string         `gorm:"size:20" json:"phone_number"`
	ConsultationFee   float64        `gorm:"not null;default:0" json:"consultation_fee"`
	IsVerified        bool           `gorm:"not null;default:false;index" json:"is_verified"`
	Rating            float64        `gorm:"not null;default:0" json:"rating"`
	Availability      []Availability `gorm:"foreignKey:DoctorID" json:"availability"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}
