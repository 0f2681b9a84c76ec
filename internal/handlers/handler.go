package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/smart-health-api/internal/middleware"
	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
	"github.com/harentsoaR/smart-health-api/internal/services"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

// ReportSubmitter hands a stored report over for background generation.
type ReportSubmitter interface {
	Submit(ctx context.Context, reportID uint)
}

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

// Deps groups everything the handlers need. Optional services may be nil.
type Deps struct {
	Users        repository.UserRepository
	Patients     repository.PatientRepository
	Doctors      repository.DoctorRepository
	Availability repository.AvailabilityRepository
	Appointments repository.AppointmentRepository
	Diagnoses    repository.DiagnosisRepository
	Reports      repository.ReportRepository

	Booking   *services.BookingValidator
	Analytics *services.Analytics
	Notifier  services.Notifier
	AI        services.TextGenerator
	Feed      services.FeedStore
	Cache     services.Cache
	Storage   services.FileStorage
	Jobs      ReportSubmitter

	Health         map[string]HealthCheck
	BaseURL        *url.URL
	PageSize       int
	DoctorCacheTTL time.Duration
	Log            *zap.Logger
}

// Handler serves every HTTP endpoint of the API.
type Handler struct {
	users        repository.UserRepository
	patients     repository.PatientRepository
	doctors      repository.DoctorRepository
	availability repository.AvailabilityRepository
	appointments repository.AppointmentRepository
	diagnoses    repository.DiagnosisRepository
	reports      repository.ReportRepository

	booking   *services.BookingValidator
	analytics *services.Analytics
	notifier  services.Notifier
	ai        services.TextGenerator
	feed      services.FeedStore
	cache     services.Cache
	storage   services.FileStorage
	jobs      ReportSubmitter

	health         map[string]HealthCheck
	baseURL        *url.URL
	pageSize       int
	doctorCacheTTL time.Duration
	log            *zap.Logger
	now            func() time.Time
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		users:          d.Users,
		patients:       d.Patients,
		doctors:        d.Doctors,
		availability:   d.Availability,
		appointments:   d.Appointments,
		diagnoses:      d.Diagnoses,
		reports:        d.Reports,
		booking:        d.Booking,
		analytics:      d.Analytics,
		notifier:       d.Notifier,
		ai:             d.AI,
		feed:           d.Feed,
		cache:          d.Cache,
		storage:        d.Storage,
		jobs:           d.Jobs,
		health:         d.Health,
		baseURL:        d.BaseURL,
		pageSize:       d.PageSize,
		doctorCacheTTL: d.DoctorCacheTTL,
		log:            d.Log,
		now:            time.Now,
	}
	if h.booking == nil {
		h.booking = services.NewBookingValidator(d.Doctors, d.Availability, d.Appointments)
	}
	if h.analytics == nil {
		h.analytics = services.NewAnalytics(d.Appointments, d.Users)
	}
	if h.cache == nil {
		h.cache = services.NopCache{}
	}
	if h.feed == nil {
		h.feed = services.DisabledFeed{}
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.pageSize <= 0 {
		h.pageSize = 10
	}
	return h
}

// fail maps service and repository errors onto the error envelope.
func (h *Handler) fail(c *gin.Context, err error, resource string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.SendFieldError(c, verr.Field, verr.Message)
	case errors.Is(err, repository.ErrNotFound):
		utils.SendNotFoundError(c, resource)
	case errors.Is(err, repository.ErrDuplicate):
		utils.SendError(c, http.StatusBadRequest, utils.CodeConflict, "Conflict",
			"A "+resource+" with these values already exists.", nil)
	case errors.Is(err, repository.ErrReferenced):
		utils.SendError(c, http.StatusBadRequest, utils.CodeConflict, "Conflict",
			"This "+resource+" is still used by existing appointments.", nil)
	default:
		h.log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("resource", resource),
			zap.Error(err),
		)
		utils.SendDatabaseError(c, "Could not process the "+resource+".")
	}
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.SendFieldError(c, name, "A valid integer is required.")
		return 0, false
	}
	return uint(id), true
}

// currentPatient loads the caller's patient profile.
func (h *Handler) currentPatient(c *gin.Context) (*models.PatientProfile, bool) {
	p, err := h.patients.FindByUserID(c.Request.Context(), middleware.CurrentUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		utils.SendForbidden(c, "Patient profile not found.")
		return nil, false
	}
	if err != nil {
		h.fail(c, err, "patient profile")
		return nil, false
	}
	return p, true
}

// currentDoctor loads the caller's doctor profile.
func (h *Handler) currentDoctor(c *gin.Context) (*models.DoctorProfile, bool) {
	d, err := h.doctors.FindByUserID(c.Request.Context(), middleware.CurrentUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		utils.SendForbidden(c, "Doctor profile not found.")
		return nil, false
	}
	if err != nil {
		h.fail(c, err, "doctor profile")
		return nil, false
	}
	return d, true
}

// Health pings every configured backing service.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.health))
	for name, check := range h.health {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
