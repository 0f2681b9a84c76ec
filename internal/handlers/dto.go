package handlers

import (
	"time"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

type UserResponse struct {
	ID         uint       `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Role       string     `json:"role"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	IsActive   bool       `json:"is_active"`
	DateJoined time.Time  `json:"date_joined"`
	LastLogin  *time.Time `json:"last_login"`
}

func toUser(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		Phone:      u.Phone,
		Address:    u.Address,
		IsActive:   u.IsActive,
		DateJoined: u.DateJoined,
		LastLogin:  u.LastLogin,
	}
}

type PatientResponse struct {
	ID               uint    `json:"id"`
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Age              *int    `json:"age"`
	Gender           string  `json:"gender"`
	DateOfBirth      *string `json:"date_of_birth"`
	MedicalHistory   string  `json:"medical_history"`
	EmergencyContact string  `json:"emergency_contact"`
	BloodGroup       string  `json:"blood_group"`
	Allergies        string  `json:"allergies"`
}

func toPatient(p *models.PatientProfile) PatientResponse {
	resp := PatientResponse{
		ID:               p.ID,
		Username:         p.User.Username,
		Email:            p.User.Email,
		FirstName:        p.User.FirstName,
		LastName:         p.User.LastName,
		Age:              p.Age,
		Gender:           p.Gender,
		MedicalHistory:   p.MedicalHistory,
		EmergencyContact: p.EmergencyContact,
		BloodGroup:       p.BloodGroup,
		Allergies:        p.Allergies,
	}
	if p.DateOfBirth != nil {
		dob := models.FormatDate(*p.DateOfBirth)
		resp.DateOfBirth = &dob
	}
	return resp
}

type AvailabilityResponse struct {
	ID        uint   `json:"id"`
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toAvailability(a *models.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		ID:        a.ID,
		DayOfWeek: a.DayOfWeek,
		StartTime: models.FormatClock(a.StartTime),
		EndTime:   models.FormatClock(a.EndTime),
	}
}

func toAvailabilities(list []models.Availability) []AvailabilityResponse {
	out := make([]AvailabilityResponse, len(list))
	for i := range list {
		out[i] = toAvailability(&list[i])
	}
	return out
}

type DoctorResponse struct {
	ID                uint                   `json:"id"`
	Username          string                 `json:"username"`
	Email             string                 `json:"email"`
	FirstName         string                 `json:"first_name"`
	LastName          string                 `json:"last_name"`
	Specialization    string                 `json:"specialization"`
	Location          string                 `json:"location"`
	Bio               string                 `json:"bio"`
	YearsOfExperience int                    `json:"years_of_experience"`
	PhoneNumber       string                 `json:"phone_number"`
	ConsultationFee   float64                `json:"consultation_fee"`
	IsVerified        bool                   `json:"is_verified"`
	Rating            float64                `json:"rating"`
	Availability      []AvailabilityResponse `json:"availability"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func toDoctor(d *models.DoctorProfile) DoctorResponse {
	return DoctorResponse{
		ID:                d.ID,
		Username:          d.User.Username,
		Email:             d.User.Email,
		FirstName:         d.User.FirstName,
		LastName:          d.User.LastName,
		Specialization:    d.Specialization,
		Location:          d.Location,
		Bio:               d.Bio,
		YearsOfExperience: d.YearsOfExperience,
		PhoneNumber:       d.PhoneNumber,
		ConsultationFee:   d.ConsultationFee,
		IsVerified:        d.IsVerified,
		Rating:            d.Rating,
		Availability:      toAvailabilities(d.Availability),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func toDoctors(list []models.DoctorProfile) []DoctorResponse {
	out := make([]DoctorResponse, len(list))
	for i := range list {
		out[i] = toDoctor(&list[i])
	}
	return out
}

type AppointmentResponse struct {
	ID             uint      `json:"id"`
	PatientID      uint      `json:"patient"`
	PatientName    string    `json:"patient_name"`
	DoctorID       uint      `json:"doctor"`
	DoctorName     string    `json:"doctor_name"`
	AvailabilityID *uint     `json:"availability"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	ReasonForVisit string    `json:"reason_for_visit"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toAppointment(a *models.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:             a.ID,
		PatientID:      a.PatientID,
		PatientName:    a.Patient.User.Username,
		DoctorID:       a.DoctorID,
		DoctorName:     a.Doctor.User.Username,
		AvailabilityID: a.AvailabilityID,
		Date:           models.FormatDate(a.Date),
		Time:           models.FormatClock(a.Time),
		ReasonForVisit: a.ReasonForVisit,
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func toAppointments(list []models.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, len(list))
	for i := range list {
		out[i] = toAppointment(&list[i])
	}
	return out
}

type PrescriptionResponse struct {
	ID           uint   `json:"id"`
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	Duration     string `json:"duration"`
}

type DiagnosisResponse struct {
	ID              uint                   `json:"id"`
	Appointment     uint                   `json:"appointment"`
	Diagnosis       string                 `json:"diagnosis"`
	Notes           string                 `json:"notes"`
	Prescriptions   []PrescriptionResponse `json:"prescriptions"`
	PatientName     string                 `json:"patient_name"`
	DoctorName      string                 `json:"doctor_name"`
	AppointmentDate string                 `json:"appointment_date"`
	AppointmentTime string                 `json:"appointment_time"`
	CreatedAt       time.Time              `json:"created_at"`
}

func toDiagnosis(d *models.Diagnosis) DiagnosisResponse {
	resp := DiagnosisResponse{
		ID:              d.ID,
		Appointment:     d.AppointmentID,
		Diagnosis:       d.Summary,
		Notes:           d.Notes,
		Prescriptions:   make([]PrescriptionResponse, len(d.Prescriptions)),
		PatientName:     d.Appointment.Patient.User.DisplayName(),
		DoctorName:      d.Appointment.Doctor.User.DisplayName(),
		AppointmentDate: models.FormatDate(d.Appointment.Date),
		AppointmentTime: models.FormatClock(d.Appointment.Time),
		CreatedAt:       d.CreatedAt,
	}
	for i, p := range d.Prescriptions {
		resp.Prescriptions[i] = PrescriptionResponse{
			ID:           p.ID,
			MedicineName: p.MedicineName,
			Dosage:       p.Dosage,
			Duration:     p.Duration,
		}
	}
	return resp
}

func toDiagnoses(list []models.Diagnosis) []DiagnosisResponse {
	out := make([]DiagnosisResponse, len(list))
	for i := range list {
		out[i] = toDiagnosis(&list[i])
	}
	return out
}

type ReportResponse struct {
	ID           uint                   `json:"id"`
	ReportType   string                 `json:"report_type"`
	Format       string                 `json:"format"`
	DateFrom     string                 `json:"date_from"`
	DateTo       string                 `json:"date_to"`
	GeneratedBy  uint                   `json:"generated_by"`
	File         string                 `json:"file"`
	IsReady      bool                   `json:"is_ready"`
	ReportStatus string                 `json:"report_status"`
	Attempts     int                    `json:"attempts"`
	LastError    string                 `json:"last_error,omitempty"`
	Filters      map[string]interface{} `json:"filters,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

func toReport(r *models.Report) ReportResponse {
	return ReportResponse{
		ID:           r.ID,
		ReportType:   r.ReportType,
		Format:       r.Format,
		DateFrom:     models.FormatDate(r.DateFrom),
		DateTo:       models.FormatDate(r.DateTo),
		GeneratedBy:  r.GeneratedByID,
		File:         r.File,
		IsReady:      r.IsReady,
		ReportStatus: r.Status(),
		Attempts:     r.Attempts,
		LastError:    r.LastError,
		Filters:      r.Filters,
		CreatedAt:    r.CreatedAt,
	}
}
