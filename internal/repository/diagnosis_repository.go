package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

type DiagnosisRepository interface {
	// Create stores the diagnosis and its prescriptions atomically.
	Create(ctx context.Context, d *models.Diagnosis) error
	ExistsForAppointment(ctx context.Context, appointmentID uint) (bool, error)
	FindByID(ctx context.Context, id uint) (*models.Diagnosis, error)
	ListByDoctor(ctx context.Context, doctorID uint, p Page) ([]models.Diagnosis, int64, error)
	ListByPatient(ctx context.Context, patientID uint, p Page) ([]models.Diagnosis, int64, error)
}

type diagnosisRepository struct {
	db *gorm.DB
}

func NewDiagnosisRepository(db *gorm.DB) DiagnosisRepository {
	return &diagnosisRepository{db: db}
}

func (r *diagnosisRepository) Create(ctx context.Context, d *models.Diagnosis) error {
	return translate(r.db.WithContext(ctx).Omit("Appointment").Create(d).Error)
}

func (r *diagnosisRepository) ExistsForAppointment(ctx context.Context, appointmentID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Diagnosis{}).Where("appointment_id = ?", appointmentID).Count(&n).Error
	return n > 0, err
}

func (r *diagnosisRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Prescriptions").
		Preload("Appointment.Patient.User").
		Preload("Appointment.Doctor.User")
}

func (r *diagnosisRepository) FindByID(ctx context.Context, id uint) (*models.Diagnosis, error) {
	var d models.Diagnosis
	if err := r.withRelations(r.db.WithContext(ctx)).First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *diagnosisRepository) list(ctx context.Context, column string, id uint, p Page) ([]models.Diagnosis, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Diagnosis{}).
		Joins("JOIN appointments a ON a.id = diagnoses.appointment_id").
		Where("a."+column+" = ?", id)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Diagnosis
	err := r.withRelations(q).Order("diagnoses.created_at DESC").Scopes(paginate(p)).Find(&out).Error
	return out, total, err
}

func (r *diagnosisRepository) ListByDoctor(ctx context.Context, doctorID uint, p Page) ([]models.Diagnosis, int64, error) {
	return r.list(ctx, "doctor_id", doctorID, p)
}

func (r *diagnosisRepository) ListByPatient(ctx context.Context, patientID uint, p Page) ([]models.Diagnosis, int64, error) {
	return r.list(ctx, "patient_id", patientID, p)
}
