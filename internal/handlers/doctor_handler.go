package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harentsoaR/smart-health-api/internal/repository"
	"github.com/harentsoaR/smart-health-api/internal/utils"
)

const recommendedDoctors = 10

type UpdateDoctorRequest struct {
	Specialization    *string  `json:"specialization" binding:"omitempty,max=100"`
	Location          *string  `json:"location" binding:"omitempty,max=255"`
	Bio               *string  `json:"bio"`
	YearsOfExperience *int     `json:"years_of_experience" binding:"omitempty,min=0,max=80"`
	PhoneNumber       *string  `json:"phone_number" binding:"omitempty,max=20"`
	ConsultationFee   *float64 `json:"consultation_fee" binding:"omitempty,min=0"`
}

type VerifyDoctorRequest struct {
	IsVerified *bool `json:"is_verified" binding:"required"`
}

// Only the unfiltered first page at the default size is cached. Links are
// built per request, so the cache holds rows and the total only.
const doctorListKey = "doctors:list:p1"

type cachedDoctorPage struct {
	Count   int64            `json:"count"`
	Results []DoctorResponse `json:"results"`
}

func (h *Handler) invalidateDoctorList(c *gin.Context) {
	if err := h.cache.Delete(c.Request.Context(), doctorListKey); err != nil {
		h.log.Warn("invalidate doctor cache", zap.Error(err))
	}
}

func (h *Handler) GetDoctorProfile(c *gin.Context) {
	d, ok := h.currentDoctor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toDoctor(d))
}

// UpdateDoctorProfile patches the caller's profile; verification and rating stay read-only.
func (h *Handler) UpdateDoctorProfile(c *gin.Context) {
	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	d, ok := h.currentDoctor(c)
	if !ok {
		return
	}

	if req.Specialization != nil {
		d.Specialization = *req.Specialization
	}
	if req.Location != nil {
		d.Location = *req.Location
	}
	if req.Bio != nil {
		d.Bio = *req.Bio
	}
	if req.YearsOfExperience != nil {
		d.YearsOfExperience = *req.YearsOfExperience
	}
	if req.PhoneNumber != nil {
		d.PhoneNumber = *req.PhoneNumber
	}
	if req.ConsultationFee != nil {
		d.ConsultationFee = *req.ConsultationFee
	}

	if err := h.doctors.Update(c.Request.Context(), d); err != nil {
		h.fail(c, err, "doctor profile")
		return
	}
	h.invalidateDoctorList(c)
	c.JSON(http.StatusOK, toDoctor(d))
}

// ListDoctors is the verified doctor directory, most experienced first.
func (h *Handler) ListDoctors(c *gin.Context) {
	page, ok := h.pageParams(c)
	if !ok {
		return
	}
	filter := repository.DoctorFilter{
		Specialization: c.Query("specialization"),
		Location:       c.Query("location"),
	}
	ctx := c.Request.Context()

	cacheable := page.Number == 1 && page.Size == h.pageSize && filter == (repository.DoctorFilter{})
	if cacheable {
		var cached cachedDoctorPage
		if err := h.cache.Get(ctx, doctorListKey, &cached); err == nil {
			c.JSON(http.StatusOK, h.newPage(c, page, cached.Count, cached.Results))
			return
		}
	}

	doctors, total, err := h.doctors.ListVerified(ctx, filter, page)
	if err != nil {
		h.fail(c, err, "doctor")
		return
	}
	results := toDoctors(doctors)
	if cacheable {
		if err := h.cache.Set(ctx, doctorListKey, cachedDoctorPage{Count: total, Results: results}, h.doctorCacheTTL); err != nil {
			h.log.Warn("cache doctor list", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, h.newPage(c, page, total, results))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.doctors.FindByID(c.Request.Context(), id)
	if err == nil && !d.IsVerified {
		err = repository.ErrNotFound
	}
	if err != nil {
		h.fail(c, err, "doctor")
		return
	}
	c.JSON(http.StatusOK, toDoctor(d))
}

// RecommendedDoctors lists the best rated verified doctors.
func (h *Handler) RecommendedDoctors(c *gin.Context) {
	doctors, err := h.doctors.TopRated(c.Request.Context(), recommendedDoctors)
	if err != nil {
		h.fail(c, err, "doctor")
		return
	}
	c.JSON(http.StatusOK, toDoctors(doctors))
}

func (h *Handler) VerifyDoctor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req VerifyDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindingError(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.doctors.SetVerified(ctx, id, *req.IsVerified); err != nil {
		h.fail(c, err, "doctor")
		return
	}
	h.invalidateDoctorList(c)

	d, err := h.doctors.FindByID(ctx, id)
	if err != nil {
		h.fail(c, err, "doctor")
		return
	}
	h.log.Info("doctor verification changed", zap.Uint("doctor_id", id), zap.Bool("verified", d.IsVerified))
	c.JSON(http.StatusOK, toDoctor(d))
}
