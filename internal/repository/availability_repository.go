package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

type AvailabilityRepository interface {
	ListByDoctor(ctx context.Context, doctorID uint) ([]models.Availability, error)
	ListByDay(ctx context.Context, doctorID uint, day string) ([]models.Availability, error)
	// FindForDoctor returns ErrNotFound when the window belongs to another doctor.
	FindForDoctor(ctx context.Context, id, doctorID uint) (*models.Availability, error)
	Create(ctx context.Context, a *models.Availability) error
	Update(ctx context.Context, a *models.Availability) error
	// Delete returns ErrReferenced while appointments still use the window.
	Delete(ctx context.Context, id, doctorID uint) error
}

type availabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) ListByDoctor(ctx context.Context, doctorID uint) ([]models.Availability, error) {
	var out []models.Availability
	err := r.db.WithContext(ctx).Where("doctor_id = ?", doctorID).Order(weeklyOrder).Find(&out).Error
	return out, err
}

func (r *availabilityRepository) ListByDay(ctx context.Context, doctorID uint, day string) ([]models.Availability, error) {
	var out []models.Availability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ?", doctorID, day).
		Order("start_time").
		Find(&out).Error
	return out, err
}

func (r *availabilityRepository) FindForDoctor(ctx context.Context, id, doctorID uint) (*models.Availability, error) {
	var a models.Availability
	if err := r.db.WithContext(ctx).Where("id = ? AND doctor_id = ?", id, doctorID).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *availabilityRepository) Create(ctx context.Context, a *models.Availability) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *availabilityRepository) Update(ctx context.Context, a *models.Availability) error {
	return translate(r.db.WithContext(ctx).Save(a).Error)
}

func (r *availabilityRepository) Delete(ctx context.Context, id, doctorID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND doctor_id = ?", id, doctorID).Delete(&models.Availability{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
