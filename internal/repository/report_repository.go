package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

type ReportRepository interface {
	Create(ctx context.Context, r *models.Report) error
	FindByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, p Page) ([]models.Report, int64, error)
	// PendingIDs lists reports that have neither a file nor a final failure.
	PendingIDs(ctx context.Context) ([]uint, error)
	MarkReady(ctx context.Context, id uint, file string, attempts int) error
	// RecordFailure stores the error; a final failure also sets is_ready.
	RecordFailure(ctx context.Context, id uint, attempts int, cause string, final bool) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, rep *models.Report) error {
	return translate(r.db.WithContext(ctx).Omit("GeneratedBy").Create(rep).Error)
}

func (r *reportRepository) FindByID(ctx context.Context, id uint) (*models.Report, error) {
	var rep models.Report
	if err := r.db.WithContext(ctx).Preload("GeneratedBy").First(&rep, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rep, nil
}

func (r *reportRepository) List(ctx context.Context, p Page) ([]models.Report, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Report{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Report
	err := r.db.WithContext(ctx).Order("created_at DESC").Scopes(paginate(p)).Find(&out).Error
	return out, total, err
}

func (r *reportRepository) PendingIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("is_ready = ?", false).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *reportRepository) MarkReady(ctx context.Context, id uint, file string, attempts int) error {
	return r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Updates(map[string]interface{}{
		"file":       file,
		"is_ready":   true,
		"attempts":   attempts,
		"last_error": "",
	}).Error
}

func (r *reportRepository) RecordFailure(ctx context.Context, id uint, attempts int, cause string, final bool) error {
	return r.db.WithContext(ctx).Model(&models.Report{}).Where("id = ?", id).Updates(map[string]interface{}{
		"attempts":   attempts,
		"last_error": cause,
		"is_ready":   final,
	}).Error
}
