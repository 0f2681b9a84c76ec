package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

type AppointmentFilter struct {
	PatientID uint
	DoctorID  uint
	Status    string
	From      *time.Time
	To        *time.Time
	// Search matches the doctor's username or the reason for visit.
	Search string
	// Ordering is one of date, -date, created_at, -created_at. Newest
	// bookings come first when it is empty or unknown.
	Ordering string
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type DoctorCount struct {
	DoctorID          uint   `json:"doctor_id"`
	Username          string `json:"doctor"`
	TotalAppointments int64  `json:"total_appointments"`
}

type PatientCount struct {
	PatientID      uint   `json:"patient_id"`
	Username       string `json:"patient"`
	CancelledCount int64  `json:"cancelled_count"`
}

type DailyRevenue struct {
	Date      string  `json:"date"`
	Completed int64   `json:"completed"`
	Revenue   float64 `json:"revenue"`
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	// FindByID preloads patient and doctor with their users.
	FindByID(ctx context.Context, id uint) (*models.Appointment, error)
	Update(ctx context.Context, a *models.Appointment) error
	List(ctx context.Context, f AppointmentFilter, p Page) ([]models.Appointment, int64, error)
	DoctorSlotTaken(ctx context.Context, doctorID uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error)
	PatientSlotTaken(ctx context.Context, patientID uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error)
	CountByStatus(ctx context.Context, r *DateRange) (map[string]int64, error)
	DailyCounts(ctx context.Context, r DateRange) ([]DailyCount, error)
	TopDoctors(ctx context.Context, r DateRange, limit int) ([]DoctorCount, error)
	FrequentCancellers(ctx context.Context, r DateRange, limit int) ([]PatientCount, error)
	DailyRevenue(ctx context.Context, r DateRange) ([]DailyRevenue, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Patient.User").Preload("Doctor.User")
}

func (r *appointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Omit("Patient", "Doctor", "Availability").Create(a).Error)
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.withRelations(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	return translate(r.db.WithContext(ctx).Omit("Patient", "Doctor", "Availability").Save(a).Error)
}

var appointmentOrderings = map[string]string{
	"date":        "appointments.date ASC, appointments.time ASC",
	"-date":       "appointments.date DESC, appointments.time DESC",
	"created_at":  "appointments.created_at ASC",
	"-created_at": "appointments.created_at DESC",
}

func (r *appointmentRepository) List(ctx context.Context, f AppointmentFilter, p Page) ([]models.Appointment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if f.PatientID != 0 {
		q = q.Where("appointments.patient_id = ?", f.PatientID)
	}
	if f.DoctorID != 0 {
		q = q.Where("appointments.doctor_id = ?", f.DoctorID)
	}
	if f.Status != "" {
		q = q.Where("appointments.status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("appointments.date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("appointments.date <= ?", *f.To)
	}
	if f.Search != "" {
		like := containsPattern(f.Search)
		q = q.Joins("JOIN doctor_profiles dp ON dp.id = appointments.doctor_id").
			Joins("JOIN users du ON du.id = dp.user_id").
			Where("du.username ILIKE ? OR appointments.reason_for_visit ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := appointmentOrderings[f.Ordering]
	if !ok {
		order = appointmentOrderings["-created_at"]
	}
	var out []models.Appointment
	err := q.Preload("Patient.User").Preload("Doctor.User").
		Order(order).
		Scopes(paginate(p)).
		Find(&out).Error
	return out, total, err
}

func (r *appointmentRepository) slotTaken(ctx context.Context, column string, id uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Where(column+" = ? AND date = ? AND time = ? AND id <> ?", id, datatypes.Date(date), clock, excludeID).
		Count(&n).Error
	return n > 0, err
}

func (r *appointmentRepository) DoctorSlotTaken(ctx context.Context, doctorID uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error) {
	return r.slotTaken(ctx, "doctor_id", doctorID, date, clock, excludeID)
}

func (r *appointmentRepository) PatientSlotTaken(ctx context.Context, patientID uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error) {
	return r.slotTaken(ctx, "patient_id", patientID, date, clock, excludeID)
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, dr *DateRange) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if dr != nil {
		q = q.Where("date BETWEEN ? AND ?", dr.From, dr.To)
	}
	if err := q.Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(models.Statuses))
	for _, s := range models.Statuses {
		out[s] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

func (r *appointmentRepository) DailyCounts(ctx context.Context, dr DateRange) ([]DailyCount, error) {
	var out []DailyCount
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("TO_CHAR(date, 'YYYY-MM-DD') AS date, COUNT(*) AS count").
		Where("date BETWEEN ? AND ?", dr.From, dr.To).
		Group("date").
		Order("date").
		Scan(&out).Error
	return out, err
}

func (r *appointmentRepository) TopDoctors(ctx context.Context, dr DateRange, limit int) ([]DoctorCount, error) {
	var out []DoctorCount
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("appointments.doctor_id, u.username, COUNT(appointments.id) AS total_appointments").
		Joins("JOIN doctor_profiles dp ON dp.id = appointments.doctor_id").
		Joins("JOIN users u ON u.id = dp.user_id").
		Where("appointments.date BETWEEN ? AND ?", dr.From, dr.To).
		Group("appointments.doctor_id, u.username").
		Order("total_appointments DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *appointmentRepository) FrequentCancellers(ctx context.Context, dr DateRange, limit int) ([]PatientCount, error) {
	var out []PatientCount
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("appointments.patient_id, u.username, COUNT(appointments.id) AS cancelled_count").
		Joins("JOIN patient_profiles pp ON pp.id = appointments.patient_id").
		Joins("JOIN users u ON u.id = pp.user_id").
		Where("appointments.date BETWEEN ? AND ? AND appointments.status = ?", dr.From, dr.To, models.StatusCancelled).
		Group("appointments.patient_id, u.username").
		Order("cancelled_count DESC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *appointmentRepository) DailyRevenue(ctx context.Context, dr DateRange) ([]DailyRevenue, error) {
	var out []DailyRevenue
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Select("TO_CHAR(appointments.date, 'YYYY-MM-DD') AS date, COUNT(appointments.id) AS completed, COALESCE(SUM(dp.consultation_fee), 0) AS revenue").
		Joins("JOIN doctor_profiles dp ON dp.id = appointments.doctor_id").
		Where("appointments.date BETWEEN ? AND ? AND appointments.status = ?", dr.From, dr.To, models.StatusCompleted).
		Group("appointments.date").
		Order("appointments.date").
		Scan(&out).Error
	return out, err
}
