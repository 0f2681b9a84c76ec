package handlers

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/harentsoaR/smart-health-api/internal/config"
	"github.com/harentsoaR/smart-health-api/internal/middleware"
	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/services"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

// RouterOptions configures the cross-cutting middleware. A nil Limiter
// disables throttling. Forwarding headers are honoured only from
// TrustedProxies; when empty the client IP is the connection's peer address.
type RouterOptions struct {
	Limiter        services.Limiter
	AnonRate       config.Rate
	UserRate       config.Rate
	AIRate         config.Rate
	CORSOrigins    []string
	TrustedProxies []string
	Log            *zap.Logger
}

func NewRouter(h *Handler, opts RouterOptions) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			return nil, err
		}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log))
	corsCfg := cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Health)
	r.GET("/swagger/openapi.yaml", h.OpenAPIYAML)
	r.GET("/swagger/doc.json", h.OpenAPIJSON)

	anon := middleware.RateLimit(opts.Limiter, "anon", opts.AnonRate, log)
	user := middleware.RateLimit(opts.Limiter, "user", opts.UserRate, log)
	ai := middleware.RateLimit(opts.Limiter, "ai", opts.AIRate, log)

	api := r.Group("/api")

	// --- Public ---
	public := api.Group("", anon)
	{
		public.POST("/auth/register/", h.RegisterUser)
		public.POST("/auth/login/", h.Login)
		public.POST("/auth/refresh/", h.Refresh)

		public.GET("/doctors/", h.ListDoctors)
		public.GET("/doctors/recommendations/", h.RecommendedDoctors)
		public.GET("/doctors/:id/", h.GetDoctor)
	}

	authed := api.Group("", middleware.AuthMiddleware(), user)
	patient := middleware.RequireRole(models.RolePatient)
	doctor := middleware.RequireRole(models.RoleDoctor)
	admin := middleware.RequireRole(models.RoleAdmin)

	// --- Accounts ---
	authed.GET("/auth/me/", h.GetCurrentUser)
	authed.PATCH("/auth/me/", h.UpdateCurrentUser)
	authed.GET("/auth/admin/users/stats/", admin, h.AdminUserStats)

	// --- Patients ---
	patients := authed.Group("/patients", patient)
	{
		patients.GET("/profile/", h.GetPatientProfile)
		patients.PATCH("/profile/", h.UpdatePatientProfile)
		patients.GET("/appointments/", h.PatientAppointments)
	}

	// --- Doctors ---
	doctors := authed.Group("/doctors")
	{
		doctors.GET("/profile/", doctor, h.GetDoctorProfile)
		doctors.PATCH("/profile/", doctor, h.UpdateDoctorProfile)
		doctors.PATCH("/:id/verify/", admin, h.VerifyDoctor)

		doctors.GET("/availability/", doctor, h.ListAvailability)
		doctors.POST("/availability/", doctor, h.CreateAvailability)
		doctors.GET("/availability/:id/", doctor, h.GetAvailability)
		doctors.PUT("/availability/:id/", doctor, h.UpdateAvailability)
		doctors.PATCH("/availability/:id/", doctor, h.UpdateAvailability)
		doctors.DELETE("/availability/:id/", doctor, h.DeleteAvailability)

		// Role is checked inside so patients get the diagnosis-specific 403.
		doctors.POST("/diagnosis/create/", h.CreateDiagnosis)
		doctors.GET("/diagnosis/doctor/history/", doctor, h.DoctorDiagnosisHistory)
		doctors.GET("/diagnosis/patient/history/", patient, h.PatientDiagnosisHistory)
		doctors.GET("/prescription/pdf/:diagnosis_id/", h.PrescriptionPDF)
	}

	// --- Appointments ---
	appointments := authed.Group("/appointments")
	{
		appointments.POST("/patient/create/", patient, h.PatientCreateAppointment)
		appointments.GET("/patient/list/", patient, h.PatientAppointments)
		appointments.PATCH("/patient/cancel/:id/", patient, h.PatientCancelAppointment)
		appointments.PATCH("/patient/reschedule/:id/", patient, h.PatientRescheduleAppointment)

		appointments.GET("/doctor/list/", doctor, h.DoctorAppointments)
		appointments.PATCH("/doctor/update-status/:id/", doctor, h.DoctorUpdateAppointmentStatus)

		appointments.GET("/admin/all/", admin, h.AdminAllAppointments)
		appointments.GET("/admin/appointments/trend/", admin, h.AdminAppointmentTrend)
		appointments.GET("/admin/appointments/status-summary/", admin, h.AdminAppointmentStatusSummary)
	}

	// --- AI ---
	aiRoutes := authed.Group("/v1", ai)
	{
		aiRoutes.POST("/symptoms/checker/", h.SymptomChecker)
		aiRoutes.POST("/medical/summary/", h.MedicalSummary)
		aiRoutes.POST("/doctors/recommendation/", h.DoctorRecommendation)
		aiRoutes.POST("/admin/insights/", admin, h.AdminInsights)
	}

	// --- Notifications ---
	authed.GET("/notifications/", h.ListNotifications)
	authed.PATCH("/notifications/:id/read/", h.MarkNotificationRead)
	authed.POST("/notifications/read-all/", h.MarkAllNotificationsRead)

	// --- Reports ---
	reports := authed.Group("/reports", admin)
	{
		reports.GET("/", h.ListReports)
		reports.POST("/generate/", h.GenerateReport)
		reports.GET("/analytics/", h.ReportAnalytics)
		reports.GET("/:id/download/", h.DownloadReport)
		reports.GET("/:id/status/", h.ReportStatus)
	}

	return r, nil
}
