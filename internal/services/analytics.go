package services

import (
	"context"
	"errors"
	"time"

	"github.com/harentsoaR/smart-health-api/internal/models"
	"github.com/harentsoaR/smart-health-api/internal/repository"
)

const (
	PeriodToday      = "today"
	PeriodYesterday  = "yesterday"
	PeriodLast7Days  = "last_7_days"
	PeriodLast30Days = "last_30_days"
	PeriodThisMonth  = "this_month"
)

var ErrInvalidPeriod = errors.New("invalid period")

// DashboardPeriod resolves the periods accepted by the admin dashboards.
// An empty period means the last seven days.
func DashboardPeriod(period string, now time.Time) (repository.DateRange, error) {
	today := models.DayOf(now)
	switch period {
	case "", PeriodLast7Days:
		return repository.DateRange{From: today.AddDate(0, 0, -6), To: today}, nil
	case PeriodToday:
		return repository.DateRange{From: today, To: today}, nil
	case PeriodYesterday:
		y := today.AddDate(0, 0, -1)
		return repository.DateRange{From: y, To: y}, nil
	case PeriodLast30Days:
		return repository.DateRange{From: today.AddDate(0, 0, -29), To: today}, nil
	}
	return repository.DateRange{}, ErrInvalidPeriod
}

// ReportPeriod resolves report analytics periods. Unknown values fall back to
// the last thirty days; the resolved period name is returned with the range.
func ReportPeriod(period string, now time.Time) (string, repository.DateRange) {
	today := models.DayOf(now)
	switch period {
	case PeriodToday:
		return period, repository.DateRange{From: today, To: today}
	case PeriodLast7Days:
		return period, repository.DateRange{From: today.AddDate(0, 0, -6), To: today}
	case PeriodThisMonth:
		return period, repository.DateRange{From: today.AddDate(0, 0, 1-today.Day()), To: today}
	}
	return PeriodLast30Days, repository.DateRange{From: today.AddDate(0, 0, -29), To: today}
}

type AppointmentStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	Pending   int64 `json:"pending"`
}

type FinanceStats struct {
	TotalRevenue float64 `json:"total_revenue"`
}

type UserStats struct {
	NewUsers    int64 `json:"new_users"`
	ActiveUsers int64 `json:"active_users"`
}

type AnalyticsSummary struct {
	Period       string           `json:"period"`
	Appointments AppointmentStats `json:"appointments"`
	Finance      FinanceStats     `json:"finance"`
	Users        UserStats        `json:"users"`
}

// Analytics aggregates appointment, revenue and user activity figures.
type Analytics struct {
	appointments repository.AppointmentRepository
	users        repository.UserRepository
}

func NewAnalytics(appointments repository.AppointmentRepository, users repository.UserRepository) *Analytics {
	return &Analytics{appointments: appointments, users: users}
}

func (a *Analytics) AppointmentStats(ctx context.Context, r repository.DateRange) (AppointmentStats, error) {
	counts, err := a.appointments.CountByStatus(ctx, &r)
	if err != nil {
		return AppointmentStats{}, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return AppointmentStats{
		Total:     total,
		Completed: counts[models.StatusCompleted],
		Cancelled: counts[models.StatusCancelled],
		Pending:   counts[models.StatusPending],
	}, nil
}

// Revenue is the consultation fee of every completed appointment in r.
func (a *Analytics) Revenue(ctx context.Context, r repository.DateRange) (FinanceStats, error) {
	days, err := a.appointments.DailyRevenue(ctx, r)
	if err != nil {
		return FinanceStats{}, err
	}
	var total float64
	for _, d := range days {
		total += d.Revenue
	}
	return FinanceStats{TotalRevenue: total}, nil
}

func (a *Analytics) UserStats(ctx context.Context, r repository.DateRange) (UserStats, error) {
	joined, err := a.users.CountJoined(ctx, r)
	if err != nil {
		return UserStats{}, err
	}
	active, err := a.users.CountActive(ctx, r)
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{NewUsers: joined, ActiveUsers: active}, nil
}

func (a *Analytics) Summary(ctx context.Context, period string, now time.Time) (*AnalyticsSummary, error) {
	name, r := ReportPeriod(period, now)
	out := &AnalyticsSummary{Period: name}

	var err error
	if out.Appointments, err = a.AppointmentStats(ctx, r); err != nil {
		return nil, err
	}
	if out.Finance, err = a.Revenue(ctx, r); err != nil {
		return nil, err
	}
	if out.Users, err = a.UserStats(ctx, r); err != nil {
		return nil, err
	}
	return out, nil
}
