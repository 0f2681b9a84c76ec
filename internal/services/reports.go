package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
)

// ReportJob is the queued payload for one report.
type ReportJob struct {
	ReportID uint `json:"report_id"`
}

// ReportGenerator builds, stores and delivers report files.
type ReportGenerator struct {
	reports      repository.ReportRepository
	appointments repository.AppointmentRepository
	users        repository.UserRepository
	storage      FileStorage
	notifier     Notifier
}

func NewReportGenerator(reports repository.ReportRepository, appointments repository.AppointmentRepository, users repository.UserRepository, storage FileStorage, notifier Notifier) *ReportGenerator {
	return &ReportGenerator{
		reports:      reports,
		appointments: appointments,
		users:        users,
		storage:      storage,
		notifier:     notifier,
	}
}

// Generate renders the report and marks it ready. Running it again for the
// same report overwrites the previous file.
func (g *ReportGenerator) Generate(ctx context.Context, reportID uint, attempt int) error {
	rep, err := g.reports.FindByID(ctx, reportID)
	if err != nil {
		return fmt.Errorf("load report %d: %w", reportID, err)
	}
	// A duplicate job for a finished report is a no-op.
	if rep.IsReady {
		return nil
	}

	ds, err := g.dataset(ctx, rep)
	if err != nil {
		return fmt.Errorf("build %s dataset: %w", rep.ReportType, err)
	}
	content, err := Export(rep.Format, ds)
	if err != nil {
		return fmt.Errorf("export report %d: %w", reportID, err)
	}

	name := fmt.Sprintf("reports/%s_report_%d.%s", rep.ReportType, rep.ID, rep.Format)
	stored, err := g.storage.Save(name, content)
	if err != nil {
		return fmt.Errorf("store report %d: %w", reportID, err)
	}
	if err := g.reports.MarkReady(ctx, rep.ID, stored, attempt); err != nil {
		return fmt.Errorf("mark report %d ready: %w", reportID, err)
	}

	rep.File, rep.IsReady = stored, true
	if g.notifier != nil {
		g.notifier.ReportReady(&rep.GeneratedBy, rep, path.Base(stored), content)
	}
	return nil
}

func (g *ReportGenerator) dataset(ctx context.Context, rep *models.Report) (Dataset, error) {
	r := repository.DateRange{From: time.Time(rep.DateFrom), To: time.Time(rep.DateTo)}
	period := fmt.Sprintf("%s to %s", models.FormatDate(rep.DateFrom), models.FormatDate(rep.DateTo))

	switch rep.ReportType {
	case models.ReportAppointments:
		f := repository.AppointmentFilter{From: &r.From, To: &r.To, Ordering: "date"}
		if s, ok := rep.Filters["status"].(string); ok {
			f.Status = s
		}
		f.DoctorID = filterUint(rep.Filters["doctor_id"])
		list, _, err := g.appointments.List(ctx, f, repository.Page{})
		if err != nil {
			return Dataset{}, err
		}
		ds := Dataset{
			Title:   "Appointments report, " + period,
			Headers: []string{"id", "date", "time", "patient", "doctor", "status", "reason_for_visit"},
		}
		for _, a := range list {
			ds.Rows = append(ds.Rows, []string{
				strconv.FormatUint(uint64(a.ID), 10),
				models.FormatDate(a.Date),
				models.FormatClock(a.Time),
				a.Patient.User.Username,
				a.Doctor.User.Username,
				a.Status,
				a.ReasonForVisit,
			})
		}
		return ds, nil

	case models.ReportFinance:
		days, err := g.appointments.DailyRevenue(ctx, r)
		if err != nil {
			return Dataset{}, err
		}
		ds := Dataset{
			Title:   "Finance report, " + period,
			Headers: []string{"date", "completed_appointments", "revenue"},
		}
		var completed int64
		var revenue float64
		for _, d := range days {
			completed += d.Completed
			revenue += d.Revenue
			ds.Rows = append(ds.Rows, []string{d.Date, strconv.FormatInt(d.Completed, 10), money(d.Revenue)})
		}
		ds.Rows = append(ds.Rows, []string{"total", strconv.FormatInt(completed, 10), money(revenue)})
		return ds, nil

	case models.ReportUsers:
		users, err := g.users.ListJoined(ctx, r)
		if err != nil {
			return Dataset{}, err
		}
		ds := Dataset{
			Title:   "Users report, " + period,
			Headers: []string{"id", "username", "email", "role", "date_joined", "last_login"},
		}
		for _, u := range users {
			lastLogin := ""
			if u.LastLogin != nil {
				lastLogin = u.LastLogin.UTC().Format(time.RFC3339)
			}
			ds.Rows = append(ds.Rows, []string{
				strconv.FormatUint(uint64(u.ID), 10),
				u.Username,
				u.Email,
				u.Role,
				u.DateJoined.UTC().Format(time.RFC3339),
				lastLogin,
			})
		}
		return ds, nil
	}
	return Dataset{}, fmt.Errorf("unknown report type %q", rep.ReportType)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// filterUint reads a numeric filter decoded from JSON.
func filterUint(v interface{}) uint {
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return uint(n)
		}
	case int:
		if n > 0 {
			return uint(n)
		}
	case string:
		if u, err := strconv.ParseUint(n, 10, 64); err == nil {
			return uint(u)
		}
	}
	return 0
}

type reportRunner interface {
	Generate(ctx context.Context, reportID uint, attempt int) error
}

// ReportDispatcher queues report jobs and retries failed generations.
type ReportDispatcher struct {
	queue      Queue
	runner     reportRunner
	reports    repository.ReportRepository
	maxRetries int
	backoff    time.Duration
	log        *zap.Logger
}

func NewReportDispatcher(queue Queue, runner *ReportGenerator, reports repository.ReportRepository, maxRetries int, log *zap.Logger) *ReportDispatcher {
	return &ReportDispatcher{
		queue:      queue,
		runner:     runner,
		reports:    reports,
		maxRetries: maxRetries,
		backoff:    2 * time.Second,
		log:        log,
	}
}

// Submit enqueues the report. When the queue refuses the job it is generated
// inline so the request still completes.
func (d *ReportDispatcher) Submit(ctx context.Context, reportID uint) {
	data, _ := json.Marshal(ReportJob{ReportID: reportID})
	if err := d.queue.Publish(ctx, data); err != nil {
		d.log.Warn("enqueue report failed, generating synchronously", zap.Uint("report_id", reportID), zap.Error(err))
		if err := d.Process(context.WithoutCancel(ctx), reportID); err != nil {
			d.log.Error("report generation failed", zap.Uint("report_id", reportID), zap.Error(err))
		}
	}
}

func (d *ReportDispatcher) Start(ctx context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}
	return d.queue.StartConsuming(ctx, workers, d.handle)
}

// Resume re-submits every report still waiting for a file, such as jobs that
// were queued in memory when the previous process exited.
func (d *ReportDispatcher) Resume(ctx context.Context) (int, error) {
	ids, err := d.reports.PendingIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending reports: %w", err)
	}
	for _, id := range ids {
		d.Submit(ctx, id)
	}
	return len(ids), nil
}

func (d *ReportDispatcher) Stop(ctx context.Context) error {
	return d.queue.Stop(ctx)
}

func (d *ReportDispatcher) handle(ctx context.Context, data []byte) error {
	var job ReportJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("decode report job: %w", err)
	}
	return d.Process(ctx, job.ReportID)
}

// Process runs up to maxRetries+1 attempts. The last failure leaves the
// report ready without a file.
func (d *ReportDispatcher) Process(ctx context.Context, reportID uint) error {
	var err error
	for attempt := 1; attempt <= d.maxRetries+1; attempt++ {
		if err = d.runner.Generate(ctx, reportID, attempt); err == nil {
			d.log.Info("report generated", zap.Uint("report_id", reportID), zap.Int("attempt", attempt))
			return nil
		}

		final := attempt > d.maxRetries
		if recErr := d.reports.RecordFailure(ctx, reportID, attempt, err.Error(), final); recErr != nil {
			d.log.Error("record report failure", zap.Uint("report_id", reportID), zap.Error(recErr))
		}
		if final {
			break
		}
		d.log.Warn("report attempt failed, retrying",
			zap.Uint("report_id", reportID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-time.After(d.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
