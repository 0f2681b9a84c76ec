package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

type UpdatePatientRequest struct {
	Age              *int    `json:"age" binding:"omitempty,min=0,max=150"`
	Gender           *string `json:"gender" binding:"omitempty,gender"`
	DateOfBirth      *string `json:"date_of_birth" binding:"omitempty,isodate"`
	MedicalHistory   *string `json:"medical_history"`
	EmergencyContact *string `json:"emergency_contact" binding:"omitempty,max=100"`
	BloodGroup       *string `json:"blood_group" binding:"omitempty,max=5"`
	Allergies        *string `json:"allergies"`
}

func (h *Handler) GetPatientProfile(c *gin.Context) {
	p, ok := h.currentPatient(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toPatient(p))
}

func (h *Handler) UpdatePatientProfile(c *gin.Context) {
	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	p, ok := h.currentPatient(c)
	if !ok {
		return
	}

	if req.Age != nil {
		p.Age = req.Age
	}
	if req.Gender != nil {
		p.Gender = *req.Gender
	}
	if req.DateOfBirth != nil {
		dob, err := models.ParseDate(*req.DateOfBirth)
		if err != nil {
			utils.SendFieldError(c, "date_of_birth", "Use the YYYY-MM-DD format.")
			return
		}
		if dob.After(h.now()) {
			utils.SendFieldError(c, "date_of_birth", "Date of birth cannot be in the future.")
			return
		}
		d := datatypes.Date(dob)
		p.DateOfBirth = &d
	}
	if req.MedicalHistory != nil {
		p.MedicalHistory = *req.MedicalHistory
	}
	if req.EmergencyContact != nil {
		p.EmergencyContact = *req.EmergencyContact
	}
	if req.BloodGroup != nil {
		p.BloodGroup = *req.BloodGroup
	}
	if req.Allergies != nil {
		p.Allergies = *req.Allergies
	}

	if err := h.patients.Update(c.Request.Context(), p); err != nil {
		h.fail(c, err, "patient profile")
		return
	}
	c.JSON(http.StatusOK, toPatient(p))
}
