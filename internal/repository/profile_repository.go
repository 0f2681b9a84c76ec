package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

type PatientRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*models.PatientProfile, error)
	Update(ctx context.Context, p *models.PatientProfile) error
}

type DoctorFilter struct {
	Specialization string
	Location       string
}

type DoctorRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*models.DoctorProfile, error)
	FindByID(ctx context.Context, id uint) (*models.DoctorProfile, error)
	Update(ctx context.Context, d *models.DoctorProfile) error
	// ListVerified orders by experience, most experienced first.
	ListVerified(ctx context.Context, f DoctorFilter, p Page) ([]models.DoctorProfile, int64, error)
	TopRated(ctx context.Context, limit int) ([]models.DoctorProfile, error)
	SetVerified(ctx context.Context, id uint, verified bool) error
}

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) FindByUserID(ctx context.Context, userID uint) (*models.PatientProfile, error) {
	var p models.PatientProfile
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *patientRepository) Update(ctx context.Context, p *models.PatientProfile) error {
	return translate(r.db.WithContext(ctx).Omit("User").Save(p).Error)
}

type doctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User").Preload("Availability", func(db *gorm.DB) *gorm.DB {
		return db.Order(weeklyOrder)
	})
}

func (r *doctorRepository) FindByUserID(ctx context.Context, userID uint) (*models.DoctorProfile, error) {
	var d models.DoctorProfile
	if err := r.withRelations(ctx).Where("user_id = ?", userID).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *doctorRepository) FindByID(ctx context.Context, id uint) (*models.DoctorProfile, error) {
	var d models.DoctorProfile
	if err := r.withRelations(ctx).First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *doctorRepository) Update(ctx context.Context, d *models.DoctorProfile) error {
	return translate(r.db.WithContext(ctx).Omit("User", "Availability").Save(d).Error)
}

func (r *doctorRepository) ListVerified(ctx context.Context, f DoctorFilter, p Page) ([]models.DoctorProfile, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.DoctorProfile{}).Where("is_verified = ?", true)
	if f.Specialization != "" {
		q = q.Where("specialization ILIKE ?", containsPattern(f.Specialization))
	}
	if f.Location != "" {
		q = q.Where("location ILIKE ?", containsPattern(f.Location))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var doctors []models.DoctorProfile
	err := q.Preload("User").
		Order("years_of_experience DESC, id").
		Scopes(paginate(p)).
		Find(&doctors).Error
	return doctors, total, err
}

func (r *doctorRepository) TopRated(ctx context.Context, limit int) ([]models.DoctorProfile, error) {
	var doctors []models.DoctorProfile
	err := r.db.WithContext(ctx).Preload("User").
		Where("is_verified = ?", true).
		Order("rating DESC, years_of_experience DESC, id").
		Limit(limit).
		Find(&doctors).Error
	return doctors, err
}

func (r *doctorRepository) SetVerified(ctx context.Context, id uint, verified bool) error {
	res := r.db.WithContext(ctx).Model(&models.DoctorProfile{}).Where("id = ?", id).Update("is_verified", verified)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
