package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/smart-health-api/internal/middleware"
	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/services"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

type PrescriptionRequest struct {
	MedicineName string `json:"medicine_name" binding:"required,max=255"`
	Dosage       string `json:"dosage" binding:"required,max=100"`
	Duration     string `json:"duration" binding:"required,max=100"`
}

type CreateDiagnosisRequest struct {
	Appointment   uint                  `json:"appointment" binding:"required"`
	Diagnosis     string                `json:"diagnosis" binding:"required"`
	Notes         string                `json:"notes"`
	Prescriptions []PrescriptionRequest `json:"prescriptions" binding:"dive"`
}

// CreateDiagnosis records the diagnosis of an appointment assigned to the
// calling doctor and mails the prescription to the patient.
func (h *Handler) CreateDiagnosis(c *gin.Context) {
	if middleware.CurrentRole(c) != models.RoleDoctor {
		utils.SendForbidden(c, "Only doctors can create diagnoses.")
		return
	}
	var req CreateDiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	doctor, ok := h.currentDoctor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	apt, err := h.appointments.FindByID(ctx, req.Appointment)
	if err != nil {
		h.fail(c, err, "appointment")
		return
	}
	if apt.DoctorID != doctor.ID {
		utils.SendForbidden(c, "You are not assigned to this appointment.")
		return
	}
	if apt.Status == models.StatusCancelled {
		utils.SendFieldError(c, "appointment", "Cannot diagnose a cancelled appointment.")
		return
	}
	exists, err := h.diagnoses.ExistsForAppointment(ctx, apt.ID)
	if err != nil {
		h.fail(c, err, "diagnosis")
		return
	}
	if exists {
		utils.SendFieldError(c, "appointment", "This appointment already has a diagnosis.")
		return
	}

	d := models.Diagnosis{AppointmentID: apt.ID, Summary: req.Diagnosis, Notes: req.Notes}
	for _, p := range req.Prescriptions {
		d.Prescriptions = append(d.Prescriptions, models.Prescription{
			MedicineName: p.MedicineName,
			Dosage:       p.Dosage,
			Duration:     p.Duration,
		})
	}
	if err := h.diagnoses.Create(ctx, &d); err != nil {
		h.fail(c, err, "diagnosis")
		return
	}

	saved, err := h.diagnoses.FindByID(ctx, d.ID)
	if err != nil {
		h.fail(c, err, "diagnosis")
		return
	}
	pdf, err := services.RenderPrescriptionPDF(saved)
	if err != nil {
		// The diagnosis is stored; only the attachment is lost.
		h.log.Warn("render prescription pdf", zap.Uint("diagnosis_id", saved.ID), zap.Error(err))
	}
	h.notifier.DiagnosisRecorded(saved, pdf)
	c.JSON(http.StatusCreated, toDiagnosis(saved))
}

func (h *Handler) DoctorDiagnosisHistory(c *gin.Context) {
	doctor, ok := h.currentDoctor(c)
	if !ok {
		return
	}
	page, ok := h.pageParams(c)
	if !ok {
		return
	}
	list, total, err := h.diagnoses.ListByDoctor(c.Request.Context(), doctor.ID, page)
	if err != nil {
		h.fail(c, err, "diagnosis")
		return
	}
	c.JSON(http.StatusOK, h.newPage(c, page, total, toDiagnoses(list)))
}

func (h *Handler) PatientDiagnosisHistory(c *gin.Context) {
	patient, ok := h.currentPatient(c)
	if !ok {
		return
	}
	page, ok := h.pageParams(c)
	if !ok {
		return
	}
	list, total, err := h.diagnoses.ListByPatient(c.Request.Context(), patient.ID, page)
	if err != nil {
		h.fail(c, err, "diagnosis")
		return
	}
	c.JSON(http.StatusOK, h.newPage(c, page, total, toDiagnoses(list)))
}

// PrescriptionPDF streams the prescription to the appointment's doctor or patient.
func (h *Handler) PrescriptionPDF(c *gin.Context) {
	id, ok := pathID(c, "diagnosis_id")
	if !ok {
		return
	}
	d, err := h.diagnoses.FindByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "diagnosis")
		return
	}

	userID := middleware.CurrentUserID(c)
	if d.Appointment.Doctor.UserID != userID && d.Appointment.Patient.UserID != userID {
		utils.SendForbidden(c, "You do not have access to this prescription.")
		return
	}

	pdf, err := services.RenderPrescriptionPDF(d)
	if err != nil {
		h.fail(c, err, "prescription")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="prescription_%d.pdf"`, d.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
