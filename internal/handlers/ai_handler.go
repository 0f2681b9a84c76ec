package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

const (
	aiUnavailableMessage = "AI service is temporarily unavailable."
	insightsTopN         = 5
	insightsDefaultDays  = 30
)

// AIResponse is the envelope of every AI endpoint.
type AIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type SymptomCheckerRequest struct {
	Symptoms string `json:"symptoms" binding:"required,max=1000"`
}

type MedicalSummaryRequest struct {
	MedicalHistory string `json:"medical_history" binding:"required,max=5000"`
}

type DoctorRecommendationRequest struct {
	Symptoms string `json:"symptoms" binding:"required,max=1000"`
	Location string `json:"location" binding:"required,max=255"`
}

type AdminInsightsRequest struct {
	StartDate string `json:"start_date" binding:"omitempty,isodate"`
	EndDate   string `json:"end_date" binding:"omitempty,isodate"`
}

// generate calls the model with a bounded deadline. Any failure is logged and
// reported as unavailable.
func (h *Handler) generate(ctx context.Context, prompt string) (string, bool) {
	if h.ai == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	text, err := h.ai.Generate(ctx, prompt)
	if err != nil {
		h.log.Warn("ai generation failed", zap.Error(err))
		return "", false
	}
	return text, true
}

func aiUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, AIResponse{Status: "error", Message: aiUnavailableMessage})
}

func aiSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, AIResponse{Status: "success", Message: message, Data: data})
}

func (h *Handler) SymptomChecker(c *gin.Context) {
	var req SymptomCheckerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	analysis, ok := h.generate(c.Request.Context(), "Analyze these symptoms medically and safely: "+req.Symptoms)
	if !ok {
		aiUnavailable(c)
		return
	}
	aiSuccess(c, "Symptom analysis completed.", gin.H{"analysis": analysis})
}

func (h *Handler) MedicalSummary(c *gin.Context) {
	var req MedicalSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	summary, ok := h.generate(c.Request.Context(), "Generate a professional medical summary: "+req.MedicalHistory)
	if !ok {
		aiUnavailable(c)
		return
	}
	aiSuccess(c, "Medical summary generated.", gin.H{"summary": summary})
}

// DoctorRecommendation asks the model to rank the verified doctors of a location.
func (h *Handler) DoctorRecommendation(c *gin.Context) {
	var req DoctorRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	ctx := c.Request.Context()

	doctors, _, err := h.doctors.ListVerified(ctx, repository.DoctorFilter{Location: req.Location}, repository.Page{})
	if err != nil {
		h.fail(c, err, "doctor")
		return
	}
	if len(doctors) == 0 {
		c.JSON(http.StatusNotFound, AIResponse{
			Status:  "error",
			Message: "No verified doctors found in this location.",
			Data:    []interface{}{},
		})
		return
	}

	names := make([]string, len(doctors))
	for i := range doctors {
		names[i] = doctors[i].User.DisplayName()
	}
	prompt := fmt.Sprintf("Recommend the best doctors for symptoms '%s' from this list: [%s]",
		req.Symptoms, strings.Join(names, ", "))

	recommendation, ok := h.generate(ctx, prompt)
	if !ok {
		aiUnavailable(c)
		return
	}
	aiSuccess(c, "Doctor recommendation generated.", gin.H{
		"recommendation": recommendation,
		"doctors":        toDoctors(doctors),
	})
}

// AdminInsights aggregates appointment activity and adds a model-written summary.
// The aggregates are returned even when the model is unavailable.
func (h *Handler) AdminInsights(c *gin.Context) {
	var req AdminInsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.SendBindingError(c, err)
		return
	}

	end := models.DayOf(h.now())
	if req.EndDate != "" {
		end, _ = models.ParseDate(req.EndDate)
	}
	start := end.AddDate(0, 0, -insightsDefaultDays)
	if req.StartDate != "" {
		start, _ = models.ParseDate(req.StartDate)
	}
	if start.After(end) {
		utils.SendFieldError(c, "start_date", "start_date must be on or before end_date.")
		return
	}
	ctx := c.Request.Context()
	r := repository.DateRange{From: start, To: end}

	top, err := h.appointments.TopDoctors(ctx, r, insightsTopN)
	if err != nil {
		h.fail(c, err, "insights")
		return
	}
	trend, err := h.appointments.DailyCounts(ctx, r)
	if err != nil {
		h.fail(c, err, "insights")
		return
	}
	risky, err := h.appointments.FrequentCancellers(ctx, r, insightsTopN)
	if err != nil {
		h.fail(c, err, "insights")
		return
	}

	points := make([]string, len(trend))
	for i, t := range trend {
		points[i] = fmt.Sprintf("%s: %d", t.Date, t.Count)
	}
	summary, ok := h.generate(ctx, "Summarize these appointment trends for a hospital admin: "+strings.Join(points, "; "))
	if !ok {
		summary = aiUnavailableMessage
	}

	if top == nil {
		top = []repository.DoctorCount{}
	}
	if trend == nil {
		trend = []repository.DailyCount{}
	}
	if risky == nil {
		risky = []repository.PatientCount{}
	}
	c.JSON(http.StatusOK, gin.H{
		"start_date":         start.Format(models.DateLayout),
		"end_date":           end.Format(models.DateLayout),
		"top_doctors":        top,
		"appointment_trend":  trend,
		"high_risk_patients": risky,
		"ai_summary":         summary,
	})
}
