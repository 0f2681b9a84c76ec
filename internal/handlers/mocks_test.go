package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
	"github.com/harentsoaR/smart-health-api/internal/services"
)

var (
	_ repository.UserRepository         = (*mockUserRepo)(nil)
	_ repository.PatientRepository      = (*mockPatientRepo)(nil)
	_ repository.DoctorRepository       = (*mockDoctorRepo)(nil)
	_ repository.AvailabilityRepository = (*mockAvailabilityRepo)(nil)
	_ repository.AppointmentRepository  = (*mockAppointmentRepo)(nil)
	_ repository.DiagnosisRepository    = (*mockDiagnosisRepo)(nil)
	_ repository.ReportRepository       = (*mockReportRepo)(nil)
	_ services.Notifier                 = (*mockNotifier)(nil)
	_ services.TextGenerator            = (*mockAI)(nil)
	_ services.FileStorage              = (*mockStorage)(nil)
	_ services.Cache                    = (*memoryCache)(nil)
	_ ReportSubmitter                   = (*mockSubmitter)(nil)
)

type mockUserRepo struct {
	CreateFunc         func(ctx context.Context, user *models.User) error
	FindByIDFunc       func(ctx context.Context, id uint) (*models.User, error)
	FindByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	EmailTakenFunc     func(ctx context.Context, email string, excludeID uint) (bool, error)
	UsernameTakenFunc  func(ctx context.Context, username string) (bool, error)
	CountJoinedFunc    func(ctx context.Context, r repository.DateRange) (int64, error)
	CountActiveFunc    func(ctx context.Context, r repository.DateRange) (int64, error)

	updated []models.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.FindByUsernameFunc != nil {
		return m.FindByUsernameFunc(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	if m.EmailTakenFunc != nil {
		return m.EmailTakenFunc(ctx, email, excludeID)
	}
	return false, nil
}

func (m *mockUserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	if m.UsernameTakenFunc != nil {
		return m.UsernameTakenFunc(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.updated = append(m.updated, *user)
	return nil
}

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
	return nil, nil
}

// mockPatientRepo maps user ids to patient profiles.
type mockPatientRepo struct {
	profiles map[uint]*models.PatientProfile
}

func (m *mockPatientRepo) FindByUserID(ctx context.Context, userID uint) (*models.PatientProfile, error) {
	if p, ok := m.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockPatientRepo) Update(ctx context.Context, p *models.PatientProfile) error {
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

type mockDoctorRepo struct {
	profiles         map[uint]*models.DoctorProfile // by user id
	ListVerifiedFunc func(ctx context.Context, f repository.DoctorFilter, p repository.Page) ([]models.DoctorProfile, int64, error)
}

func (m *mockDoctorRepo) FindByUserID(ctx context.Context, userID uint) (*models.DoctorProfile, error) {
	if d, ok := m.profiles[userID]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockDoctorRepo) FindByID(ctx context.Context, id uint) (*models.DoctorProfile, error) {
	for _, d := range m.profiles {
		if d.ID == id {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockDoctorRepo) Update(ctx context.Context, d *models.DoctorProfile) error {
	cp := *d
	m.profiles[d.UserID] = &cp
	return nil
}

func (m *mockDoctorRepo) ListVerified(ctx context.Context, f repository.DoctorFilter, p repository.Page) ([]models.DoctorProfile, int64, error) {
	if m.ListVerifiedFunc != nil {
		return m.ListVerifiedFunc(ctx, f, p)
	}
	return nil, 0, nil
}

func (m *mockDoctorRepo) TopRated(ctx context.Context, limit int) ([]models.DoctorProfile, error) {
	return nil, nil
}

func (m *mockDoctorRepo) SetVerified(ctx context.Context, id uint, verified bool) error {
	for _, d := range m.profiles {
		if d.ID == id {
			d.IsVerified = verified
			return nil
		}
	}
	return repository.ErrNotFound
}

type mockAvailabilityRepo struct {
	windows    []models.Availability
	created    []models.Availability
	referenced map[uint]bool
}

func (m *mockAvailabilityRepo) ListByDoctor(ctx context.Context, doctorID uint) ([]models.Availability, error) {
	var out []models.Availability
	for _, w := range m.windows {
		if w.DoctorID == doctorID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockAvailabilityRepo) ListByDay(ctx context.Context, doctorID uint, day string) ([]models.Availability, error) {
	var out []models.Availability
	for _, w := range m.windows {
		if w.DoctorID == doctorID && w.DayOfWeek == day {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *mockAvailabilityRepo) FindForDoctor(ctx context.Context, id, doctorID uint) (*models.Availability, error) {
	for _, w := range m.windows {
		if w.ID == id && w.DoctorID == doctorID {
			cp := w
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockAvailabilityRepo) Create(ctx context.Context, a *models.Availability) error {
	a.ID = uint(len(m.windows) + 100)
	m.created = append(m.created, *a)
	return nil
}

func (m *mockAvailabilityRepo) Update(ctx context.Context, a *models.Availability) error { return nil }

func (m *mockAvailabilityRepo) Delete(ctx context.Context, id, doctorID uint) error {
	if _, err := m.FindForDoctor(ctx, id, doctorID); err != nil {
		return err
	}
	if m.referenced[id] {
		return repository.ErrReferenced
	}
	return nil
}

type mockAppointmentRepo struct {
	CreateFunc           func(ctx context.Context, a *models.Appointment) error
	FindByIDFunc         func(ctx context.Context, id uint) (*models.Appointment, error)
	ListFunc             func(ctx context.Context, f repository.AppointmentFilter, p repository.Page) ([]models.Appointment, int64, error)
	DoctorSlotTakenFunc  func(ctx context.Context, doctorID uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error)
	PatientSlotTakenFunc func(ctx context.Context, patientID uint, date time.Time, clock datatypes.Time, excludeID uint) (bool, error)

	updated []models.Appointment
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *models.Appointment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	a.ID = 1
	return nil
}

func (m *mockAppointmentRepo) FindByID(ctx context.Context, id uint) (*models.Appointment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockAppointmentRepo) Update(ctx context.Context, a *models.Appointment) error {
	m.updated = append(m.updated, *a)
	return nil
}

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
	return nil, nil
}

type mockDiagnosisRepo struct {
	FindByIDFunc func(ctx context.Context, id uint) (*models.Diagnosis, error)
	exists       bool
	created      []models.Diagnosis
}

func (m *mockDiagnosisRepo) Create(ctx context.Context, d *models.Diagnosis) error {
	d.ID = 7
	m.created = append(m.created, *d)
	return nil
}

func (m *mockDiagnosisRepo) ExistsForAppointment(ctx context.Context, appointmentID uint) (bool, error) {
	return m.exists, nil
}

func (m *mockDiagnosisRepo) FindByID(ctx context.Context, id uint) (*models.Diagnosis, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockDiagnosisRepo) ListByDoctor(ctx context.Context, doctorID uint, p repository.Page) ([]models.Diagnosis, int64, error) {
	return nil, 0, nil
}

func (m *mockDiagnosisRepo) ListByPatient(ctx context.Context, patientID uint, p repository.Page) ([]models.Diagnosis, int64, error) {
	return nil, 0, nil
}

type mockReportRepo struct {
	reports map[uint]*models.Report
	nextID  uint
}

func (m *mockReportRepo) Create(ctx context.Context, r *models.Report) error {
	m.nextID++
	r.ID = m.nextID
	if m.reports == nil {
		m.reports = map[uint]*models.Report{}
	}
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *mockReportRepo) FindByID(ctx context.Context, id uint) (*models.Report, error) {
	if r, ok := m.reports[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockReportRepo) List(ctx context.Context, p repository.Page) ([]models.Report, int64, error) {
	var out []models.Report
	for _, r := range m.reports {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (m *mockReportRepo) PendingIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	for id, r := range m.reports {
		if !r.IsReady {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockReportRepo) MarkReady(ctx context.Context, id uint, file string, attempts int) error {
	return nil
}

func (m *mockReportRepo) RecordFailure(ctx context.Context, id uint, attempts int, cause string, final bool) error {
	return nil
}

// mockNotifier records event names in call order.
type mockNotifier struct {
	mu     sync.Mutex
	events []string
	pdf    []byte
}

func (m *mockNotifier) record(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockNotifier) AppointmentBooked(apt *models.Appointment) { m.record("booked") }
func (m *mockNotifier) AppointmentCancelled(apt *models.Appointment) { m.record("cancelled") }
func (m *mockNotifier) AppointmentRescheduled(apt *models.Appointment) { m.record("rescheduled") }
func (m *mockNotifier) AppointmentConfirmed(apt *models.Appointment) { m.record("confirmed") }

func (m *mockNotifier) DiagnosisRecorded(d *models.Diagnosis, prescriptionPDF []byte) {
	m.pdf = prescriptionPDF
	m.record("diagnosis")
}

func (m *mockNotifier) ReportReady(user *models.User, report *models.Report, fileName string, content []byte) {
	m.record("report_ready")
}

type mockAI struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	prompts      []string
}

func (m *mockAI) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "ok", nil
}

type mockStorage struct {
	files map[string][]byte
}

func (m *mockStorage) Save(name string, data []byte) (string, error) {
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = data
	return name, nil
}

func (m *mockStorage) Read(name string) ([]byte, error) {
	if b, ok := m.files[name]; ok {
		return b, nil
	}
	return nil, repository.ErrNotFound
}

type mockSubmitter struct {
	submitted []uint
}

func (m *mockSubmitter) Submit(ctx context.Context, reportID uint) {
	m.submitted = append(m.submitted, reportID)
}

// memoryCache is a JSON round-tripping cache that ignores expiry.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dst interface{}) error {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return services.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = raw
	return true, nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
