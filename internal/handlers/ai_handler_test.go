package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
	"github.com/harentsoaR/smart-health-api/internal/services"
)

func TestSymptomChecker(t *testing.T) {
	f := newFixture(t)
	tok := token(t, patientUser, models.RolePatient)
	f.ai.GenerateFunc = func(context.Context, string) (string, error) {
		return "Likely a tension headache.", nil
	}

	w := f.do(t, http.MethodPost, "/api/v1/symptoms/checker/", tok, gin.H{"symptoms": "headache"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Analysis string `json:"analysis"`
		} `json:"data"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Likely a tension headache.", resp.Data.Analysis)
	require.Len(t, f.ai.prompts, 1)
	assert.Contains(t, f.ai.prompts[0], "headache")

	w = f.do(t, http.MethodPost, "/api/v1/symptoms/checker/", tok, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAIUnavailable(t *testing.T) {
	f := newFixture(t)
	f.ai.GenerateFunc = func(context.Context, string) (string, error) {
		return "", services.ErrAIUnavailable
	}

	w := f.do(t, http.MethodPost, "/api/v1/medical/summary/", token(t, patientUser, models.RolePatient),
		gin.H{"medical_history": "asthma since 2010"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp AIResponse
	decode(t, w, &resp)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, aiUnavailableMessage, resp.Message)
}

func TestDoctorRecommendation(t *testing.T) {
	f := newFixture(t)
	tok := token(t, patientUser, models.RolePatient)
	body := gin.H{"symptoms": "chest pain", "location": "Antananarivo"}

	w := f.do(t, http.MethodPost, "/api/v1/doctors/recommendation/", tok, body)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"No verified doctors found in this location.","data":[]}`, w.Body.String())
	assert.Empty(t, f.ai.prompts, "the model is not called without candidates")

	var gotFilter repository.DoctorFilter
	var gotPage repository.Page
	f.doctors.ListVerifiedFunc = func(_ context.Context, flt repository.DoctorFilter, p repository.Page) ([]models.DoctorProfile, int64, error) {
		gotFilter, gotPage = flt, p
		return []models.DoctorProfile{
			{ID: doctorID, IsVerified: true, Specialization: "Cardiology", User: models.User{Username: "drkay"}},
		}, 1, nil
	}
	w = f.do(t, http.MethodPost, "/api/v1/doctors/recommendation/", tok, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Antananarivo", gotFilter.Location)
	assert.Equal(t, repository.Page{}, gotPage)
	require.Len(t, f.ai.prompts, 1)
	assert.Contains(t, f.ai.prompts[0], "drkay")
}

func TestAdminInsights(t *testing.T) {
	f := newFixture(t)
	tok := token(t, adminUser, models.RoleAdmin)
	f.ai.GenerateFunc = func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	}

	w := f.do(t, http.MethodPost, "/api/v1/admin/insights/", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		StartDate string        `json:"start_date"`
		EndDate   string        `json:"end_date"`
		Top       []interface{} `json:"top_doctors"`
		Summary   string        `json:"ai_summary"`
	}
	decode(t, w, &resp)
	assert.Equal(t, aiUnavailableMessage, resp.Summary)
	assert.NotNil(t, resp.Top)
	assert.NotEmpty(t, resp.StartDate)
	assert.Less(t, resp.StartDate, resp.EndDate)

	w = f.do(t, http.MethodPost, "/api/v1/admin/insights/", tok, gin.H{"start_date": "2024-03-01", "end_date": "2024-02-01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/admin/insights/", token(t, doctorUser, models.RoleDoctor), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
