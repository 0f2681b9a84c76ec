package services

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
)

var (
	_ repository.DoctorRepository       = (*mockDoctorRepo)(nil)
	_ repository.AvailabilityRepository = (*mockAvailabilityRepo)(nil)
	_ repository.AppointmentRepository  = (*mockAppointmentRepo)(nil)
	_ repository.ReportRepository       = (*mockReportRepo)(nil)
	_ repository.UserRepository         = (*mockUserRepo)(nil)
)

type mockDoctorRepo struct {
	FindByIDFunc func(ctx context.Context, id uint) (*models.DoctorProfile, error)
}

func (m *mockDoctorRepo) FindByUserID(ctx context.Context, userID uint) (*models.DoctorProfile, error) {
	return nil, repository.ErrNotFound
}

func (m *mockDoctorRepo) FindByID(ctx context.Context, id uint) (*models.DoctorProfile, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return &models.DoctorProfile{ID: id}, nil
}

func (m *mockDoctorRepo) Update(ctx context.Context, d *models.DoctorProfile) error { return nil }

func (m *mockDoctorRepo) ListVerified(ctx context.Context, f repository.DoctorFilter, p repository.Page) ([]models.DoctorProfile, int64, error) {
	return nil, 0, nil
}

func (m *mockDoctorRepo) TopRated(ctx context.Context, limit int) ([]models.DoctorProfile, error) {
	return nil, nil
}

func (m *mockDoctorRepo) SetVerified(ctx context.Context, id uint, verified bool) error { return nil }

type mockAvailabilityRepo struct {
	ListByDayFunc     func(ctx context.Context, doctorID uint, day string) ([]models.Availability, error)
	FindForDoctorFunc func(ctx context.Context, id, doctorID uint) (*models.Availability, error)
}

func (m *mockAvailabilityRepo) ListByDoctor(ctx context.Context, doctorID uint) ([]models.Availability, error) {
	return nil, nil
}

func (m *mockAvailabilityRepo) ListByDay(ctx context.Context, doctorID uint, day string) ([]models.Availability, error) {
	if m.ListByDayFunc != nil {
		return m.ListByDayFunc(ctx, doctorID, day)
	}
	return nil, nil
}

func (m *mockAvailabilityRepo) FindForDoctor(ctx context.Context, id, doctorID uint) (*models.Availability, error) {
	if m.FindForDoctorFunc != nil {
		return m.FindForDoctorFunc(ctx, id, doctorID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockAvailabilityRepo) Create(ctx context.Context, a *models.Availability) error { return nil }

func (m *mockAvailabilityRepo) Update(ctx context.Context, a *models.Availability) error { return nil }

func (m *mockAvailabilityRepo) Delete(ctx context.Context, id, doctorID uint) error { return nil }

type mockAppointmentRepo struct {
	ListFunc             func(ctx context.Context, f repository.AppointmentFilter, p repository.Page) ([]models.Appointment, int64, error)
	DoctorSlotTakenFunc  func(ctx context.Context, doctorID uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error)
	PatientSlotTakenFunc func(ctx context.Context, patientID uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error)
	CountByStatusFunc    func(ctx context.Context, r *repository.DateRange) (map[string]int64, error)
	DailyRevenueFunc     func(ctx context.Context, r repository.DateRange) ([]repository.DailyRevenue, error)
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *models.Appointment) error { return nil }

func (m *mockAppointmentRepo) FindByID(ctx context.Context, id uint) (*models.Appointment, error) {
	return nil, repository.ErrNotFound
}

func (m *mockAppointmentRepo) Update(ctx context.Context, a *models.Appointment) error { return nil }

func (m *mockAppointmentRepo) List(ctx context.Context, f repository.AppointmentFilter, p repository.Page) ([]models.Appointment, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, f, p)
	}
	return nil, 0, nil
}

func (m *mockAppointmentRepo) DoctorSlotTaken(ctx context.Context, doctorID uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error) {
	if m.DoctorSlotTakenFunc != nil {
		return m.DoctorSlotTakenFunc(ctx, doctorID, date, clock, excludeID)
	}
	return false, nil
}

func (m *mockAppointmentRepo) PatientSlotTaken(ctx context.Context, patientID uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error) {
	if m.PatientSlotTakenFunc != nil {
		return m.PatientSlotTakenFunc(ctx, patientID, date, clock, excludeID)
	}
	return false, nil
}

func (m *mockAppointmentRepo) CountByStatus(ctx context.Context, r *repository.DateRange) (map[string]int64, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, r)
	}
	return map[string]int64{}, nil
}

func (m *mockAppointmentRepo) DailyCounts(ctx context.Context, r repository.DateRange) ([]repository.DailyCount, error) {
	return nil, nil
}

func (m *mockAppointmentRepo) TopDoctors(ctx context.Context, r repository.DateRange, limit int) ([]repository.DoctorCount, error) {
	return nil, nil
}

func (m *mockAppointmentRepo) FrequentCancellers(ctx context.Context, r repository.DateRange, limit int) ([]repository.PatientCount, error) {
	return nil, nil
}

func (m *mockAppointmentRepo) DailyRevenue(ctx context.Context, r repository.DateRange) ([]repository.DailyRevenue, error) {
	if m.DailyRevenueFunc != nil {
		return m.DailyRevenueFunc(ctx, r)
	}
	return nil, nil
}

type mockReportRepo struct {
	FindByIDFunc      func(ctx context.Context, id uint) (*models.Report, error)
	PendingIDsFunc    func(ctx context.Context) ([]uint, error)
	MarkReadyFunc     func(ctx context.Context, id uint, file string, attempts int) error
	RecordFailureFunc func(ctx context.Context, id uint, attempts int, cause string, final bool) error
}

func (m *mockReportRepo) Create(ctx context.Context, r *models.Report) error { return nil }

func (m *mockReportRepo) FindByID(ctx context.Context, id uint) (*models.Report, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockReportRepo) List(ctx context.Context, p repository.Page) ([]models.Report, int64, error) {
	return nil, 0, nil
}

func (m *mockReportRepo) PendingIDs(ctx context.Context) ([]uint, error) {
	if m.PendingIDsFunc != nil {
		return m.PendingIDsFunc(ctx)
	}
	return nil, nil
}

func (m *mockReportRepo) MarkReady(ctx context.Context, id uint, file string, attempts int) error {
	if m.MarkReadyFunc != nil {
		return m.MarkReadyFunc(ctx, id, file, attempts)
	}
	return nil
}

func (m *mockReportRepo) RecordFailure(ctx context.Context, id uint, attempts int, cause string, final bool) error {
	if m.RecordFailureFunc != nil {
		return m.RecordFailureFunc(ctx, id, attempts, cause, final)
	}
	return nil
}

type mockUserRepo struct {
	CountJoinedFunc func(ctx context.Context, r repository.DateRange) (int64, error)
	CountActiveFunc func(ctx context.Context, r repository.DateRange) (int64, error)
	ListJoinedFunc  func(ctx context.Context, r repository.DateRange) ([]models.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	return false, nil
}

func (m *mockUserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return false, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error { return nil }

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, id uint, at time.Time) error { return nil }

func (m *mockUserRepo) CountJoined(ctx context.Context, r repository.DateRange) (int64, error) {
	if m.CountJoinedFunc != nil {
		return m.CountJoinedFunc(ctx, r)
	}
	return 0, nil
}

func (m *mockUserRepo) CountActive(ctx context.Context, r repository.DateRange) (int64, error) {
	if m.CountActiveFunc != nil {
		return m.CountActiveFunc(ctx, r)
	}
	return 0, nil
}

func (m *mockUserRepo) ListJoined(ctx context.Context, r repository.DateRange) ([]models.User, error) {
	if m.ListJoinedFunc != nil {
		return m.ListJoinedFunc(ctx, r)
	}
	return nil, nil
}
