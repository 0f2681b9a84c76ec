package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
	"github.com/harentsoaR/smart-health-api/internal/services"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

type CreateAppointmentRequest struct {
	Doctor         uint   `json:"doctor" binding:"required"`
	Availability   *uint  `json:"availability"`
	Date           string `json:"date" binding:"required,isodate"`
	Time           string `json:"time" binding:"required,clock"`
	ReasonForVisit string `json:"reason_for_visit" binding:"max=2000"`
}

type RescheduleAppointmentRequest struct {
	Availability *uint  `json:"availability"`
	Date         string `json:"date" binding:"required,isodate"`
	Time         string `json:"time" binding:"required,clock"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved cancelled completed"`
}

// parseSlot reads the YYYY-MM-DD date and HH:MM time of a booking request.
func parseSlot(date, clock string) (time.Time, datatypes.Time, error) {
	d, err := models.ParseDate(date)
	if err != nil {
		return time.Time{}, 0, models.NewValidationError("date", "Use the YYYY-MM-DD format.")
	}
	t, err := models.ParseClock(clock)
	if err != nil {
		return time.Time{}, 0, models.NewValidationError("time", "Use the HH:MM format.")
	}
	return d, t, nil
}

// appointmentFilter reads the status, startDate, endDate, search and ordering query params.
func appointmentFilter(c *gin.Context) (repository.AppointmentFilter, bool) {
	f := repository.AppointmentFilter{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}
	if f.Status != "" && !models.ValidStatus(f.Status) {
		utils.SendFieldError(c, "status", "Select a valid choice. "+f.Status+" is not one of the available choices.")
		return f, false
	}
	for _, p := range []struct {
		param string
		dst   **time.Time
	}{{"startDate", &f.From}, {"endDate", &f.To}} {
		raw := c.Query(p.param)
		if raw == "" {
			continue
		}
		d, err := models.ParseDate(raw)
		if err != nil {
			utils.SendFieldError(c, p.param, "Use the YYYY-MM-DD format.")
			return f, false
		}
		*p.dst = &d
	}
	return f, true
}

func (h *Handler) listAppointments(c *gin.Context, f repository.AppointmentFilter) {
	page, ok := h.pageParams(c)
	if !ok {
		return
	}
	list, total, err := h.appointments.List(c.Request.Context(), f, page)
	if err != nil {
		h.fail(c, err, "appointment")
		return
	}
	c.JSON(http.StatusOK, h.newPage(c, page, total, toAppointments(list)))
}

// PatientCreateAppointment books a slot for the calling patient.
func (h *Handler) PatientCreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	patient, ok := h.currentPatient(c)
	if !ok {
		return
	}
	date, clock, err := parseSlot(req.Date, req.Time)
	if err != nil {
		h.fail(c, err, "appointment")
		return
	}
	ctx := c.Request.Context()

	slot := services.Slot{
		PatientID:      patient.ID,
		DoctorID:       req.Doctor,
		AvailabilityID: req.Availability,
		Date:           date,
		Time:           clock,
	}
	if err := h.booking.Validate(ctx, slot); err != nil {
		h.fail(c, err, "appointment")
		return
	}

	apt := models.Appointment{
		PatientID:      patient.ID,
		DoctorID:       req.Doctor,
		AvailabilityID: req.Availability,
		Date:           datatypes.Date(date),
		Time:           clock,
		ReasonForVisit: req.ReasonForVisit,
		Status:         models.StatusPending,
	}
	if err := h.appointments.Create(ctx, &apt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			utils.SendFieldError(c, services.NonFieldErrors, "This time slot is already booked.")
			return
		}
		h.fail(c, err, "appointment")
		return
	}

	saved, err := h.appointments.FindByID(ctx, apt.ID)
	if err != nil {
		h.fail(c, err, "appointment")
		return
	}
	h.notifier.AppointmentBooked(saved)
	h.log.Info("appointment booked",
		zap.Uint("appointment_id", saved.ID),
		zap.Uint("doctor_id", saved.DoctorID),
		zap.Uint("patient_id", saved.PatientID),
	)
	c.JSON(http.StatusCreated, toAppointment(saved))
}

func (h *Handler) PatientAppointments(c *gin.Context) {
	patient, ok := h.currentPatient(c)
	if !ok {
		return
	}
	f, ok := appointmentFilter(c)
	if !ok {
		return
	}
	f.PatientID = patient.ID
	h.listAppointments(c, f)
}

// patientAppointment loads an appointment owned by the calling patient.
func (h *Handler) patientAppointment(c *gin.Context) (*models.Appointment, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	patient, ok := h.currentPatient(c)
	if !ok {
		return nil, false
	}
	apt, err := h.appointments.FindByID(c.Request.Context(), id)
	if err == nil && apt.PatientID != patient.ID {
		err = repository.ErrNotFound
	}
	if err != nil {
		h.fail(c, err, "appointment")
		return nil, false
	}
	return apt, true
}

func (h *Handler) PatientCancelAppointment(c *gin.Context) {
	apt, ok := h.patientAppointment(c)
	if !ok {
		return
	}
	if err := apt.TransitionTo(models.StatusCancelled); err != nil {
		h.fail(c, err, "appointment")
		return
	}
	if err := h.appointments.Update(c.Request.Context(), apt); err != nil {
		h.fail(c, err, "appointment")
		return
	}
	h.notifier.AppointmentCancelled(apt)
	c.Status(http.StatusNoContent)
}

// PatientRescheduleAppointment moves a pending appointment to a new slot.
func (h *Handler) PatientRescheduleAppointment(c *gin.Context) {
	var req RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	apt, ok := h.patientAppointment(c)
	if !ok {
		return
	}
	if apt.Status != models.StatusPending {
		utils.SendFieldError(c, "status", "Only pending appointments can be rescheduled.")
		return
	}
	date, clock, err := parseSlot(req.Date, req.Time)
	if err != nil {
		h.fail(c, err, "appointment")
		return
	}
	ctx := c.Request.Context()

	slot := services.Slot{
		PatientID:      apt.PatientID,
		DoctorID:       apt.DoctorID,
		AvailabilityID: req.Availability,
		Date:           date,
		Time:           clock,
		ExcludeID:      apt.ID,
	}
	if err := h.booking.Validate(ctx, slot); err != nil {
		h.fail(c, err, "appointment")
		return
	}

	apt.Date, apt.Time, apt.AvailabilityID = datatypes.Date(date), clock, req.Availability
	if err := h.appointments.Update(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			utils.SendFieldError(c, services.NonFieldErrors, "This time slot is already booked.")
			return
		}
		h.fail(c, err, "appointment")
		return
	}
	h.notifier.AppointmentRescheduled(apt)
	c.JSON(http.StatusOK, toAppointment(apt))
}

func (h *Handler) DoctorAppointments(c *gin.Context) {
	doctor, ok := h.currentDoctor(c)
	if !ok {
		return
	}
	f, ok := appointmentFilter(c)
	if !ok {
		return
	}
	f.DoctorID = doctor.ID
	h.listAppointments(c, f)
}

// DoctorUpdateAppointmentStatus applies a status transition to one of the caller's appointments.
func (h *Handler) DoctorUpdateAppointmentStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	doctor, ok := h.currentDoctor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	apt, err := h.appointments.FindByID(ctx, id)
	if err == nil && apt.DoctorID != doctor.ID {
		err = repository.ErrNotFound
	}
	if err != nil {
		h.fail(c, err, "appointment")
		return
	}

	if err := apt.TransitionTo(req.Status); err != nil {
		h.fail(c, err, "appointment")
		return
	}
	if err := h.appointments.Update(ctx, apt); err != nil {
		h.fail(c, err, "appointment")
		return
	}

	switch apt.Status {
	case models.StatusApproved:
		h.notifier.AppointmentConfirmed(apt)
	case models.StatusCancelled:
		h.notifier.AppointmentCancelled(apt)
	}
	c.JSON(http.StatusOK, toAppointment(apt))
}

func (h *Handler) AdminAllAppointments(c *gin.Context) {
	f, ok := appointmentFilter(c)
	if !ok {
		return
	}
	h.listAppointments(c, f)
}

// AdminAppointmentTrend returns per-day appointment counts for a dashboard period.
func (h *Handler) AdminAppointmentTrend(c *gin.Context) {
	r, err := services.DashboardPeriod(c.Query("period"), h.now())
	if err != nil {
		utils.SendFieldError(c, "period", "Invalid period")
		return
	}
	counts, err := h.appointments.DailyCounts(c.Request.Context(), r)
	if err != nil {
		h.fail(c, err, "appointment")
		return
	}
	if counts == nil {
		counts = []repository.DailyCount{}
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) AdminAppointmentStatusSummary(c *gin.Context) {
	counts, err := h.appointments.CountByStatus(c.Request.Context(), nil)
	if err != nil {
		h.fail(c, err, "appointment")
		return
	}
	c.JSON(http.StatusOK, counts)
}
