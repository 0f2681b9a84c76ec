package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/services"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

type AvailabilityRequest struct {
	DayOfWeek string `json:"day_of_week" binding:"required,weekday"`
	StartTime string `json:"start_time" binding:"required,clock"`
	EndTime   string `json:"end_time" binding:"required,clock"`
}

type PatchAvailabilityRequest struct {
	DayOfWeek *string `json:"day_of_week" binding:"omitempty,weekday"`
	StartTime *string `json:"start_time" binding:"omitempty,clock"`
	EndTime   *string `json:"end_time" binding:"omitempty,clock"`
}

// checkWindow validates a window and rejects overlap with the doctor's other
// windows on the same day.
func (h *Handler) checkWindow(c *gin.Context, a *models.Availability) bool {
	if err := a.Validate(); err != nil {
		h.fail(c, err, "availability")
		return false
	}
	others, err := h.availability.ListByDay(c.Request.Context(), a.DoctorID, a.DayOfWeek)
	if err != nil {
		h.fail(c, err, "availability")
		return false
	}
	for i := range others {
		if others[i].ID != a.ID && a.Overlaps(&others[i]) {
			utils.SendFieldError(c, services.NonFieldErrors, "Availability overlaps an existing window on "+a.DayOfWeek+".")
			return false
		}
	}
	return true
}

func (h *Handler) ListAvailability(c *gin.Context) {
	d, ok := h.currentDoctor(c)
	if !ok {
		return
	}
	list, err := h.availability.ListByDoctor(c.Request.Context(), d.ID)
	if err != nil {
		h.fail(c, err, "availability")
		return
	}
	c.JSON(http.StatusOK, toAvailabilities(list))
}

func (h *Handler) CreateAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	d, ok := h.currentDoctor(c)
	if !ok {
		return
	}

	a := models.Availability{DoctorID: d.ID, DayOfWeek: req.DayOfWeek}
	a.StartTime, _ = models.ParseClock(req.StartTime)
	a.EndTime, _ = models.ParseClock(req.EndTime)
	if !h.checkWindow(c, &a) {
		return
	}
	if err := h.availability.Create(c.Request.Context(), &a); err != nil {
		h.fail(c, err, "availability")
		return
	}
	h.invalidateDoctorList(c)
	c.JSON(http.StatusCreated, toAvailability(&a))
}

// ownAvailability loads a window of the calling doctor; others' windows are 404.
func (h *Handler) ownAvailability(c *gin.Context) (*models.Availability, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	d, ok := h.currentDoctor(c)
	if !ok {
		return nil, false
	}
	a, err := h.availability.FindForDoctor(c.Request.Context(), id, d.ID)
	if err != nil {
		h.fail(c, err, "availability")
		return nil, false
	}
	return a, true
}

func (h *Handler) GetAvailability(c *gin.Context) {
	a, ok := h.ownAvailability(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toAvailability(a))
}

// UpdateAvailability handles PUT with every field and PATCH with a subset.
func (h *Handler) UpdateAvailability(c *gin.Context) {
	var req PatchAvailabilityRequest
	if c.Request.Method == http.MethodPut {
		var full AvailabilityRequest
		if err := c.ShouldBindJSON(&full); err != nil {
			utils.SendBindingError(c, err)
			return
		}
		req = PatchAvailabilityRequest{DayOfWeek: &full.DayOfWeek, StartTime: &full.StartTime, EndTime: &full.EndTime}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}

	a, ok := h.ownAvailability(c)
	if !ok {
		return
	}
	if req.DayOfWeek != nil {
		a.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		a.StartTime, _ = models.ParseClock(*req.StartTime)
	}
	if req.EndTime != nil {
		a.EndTime, _ = models.ParseClock(*req.EndTime)
	}
	if !h.checkWindow(c, a) {
		return
	}
	if err := h.availability.Update(c.Request.Context(), a); err != nil {
		h.fail(c, err, "availability")
		return
	}
	h.invalidateDoctorList(c)
	c.JSON(http.StatusOK, toAvailability(a))
}

func (h *Handler) DeleteAvailability(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, ok := h.currentDoctor(c)
	if !ok {
		return
	}
	if err := h.availability.Delete(c.Request.Context(), id, d.ID); err != nil {
		h.fail(c, err, "availability")
		return
	}
	h.invalidateDoctorList(c)
	c.Status(http.StatusNoContent)
}
