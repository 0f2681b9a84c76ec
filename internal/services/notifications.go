package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harentsoaR/smart-health-api/internal/models"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	deliveryTimeout = 30 * time.Second
)

// Notifier fans domain events out to users. Delivery happens in the background.
type Notifier interface {
	AppointmentBooked(apt *models.Appointment)
	AppointmentCancelled(apt *models.Appointment)
	AppointmentRescheduled(apt *models.Appointment)
	AppointmentConfirmed(apt *models.Appointment)
	DiagnosisRecorded(d *models.Diagnosis, prescriptionPDF []byte)
	ReportReady(user *models.User, report *models.Report, fileName string, content []byte)
}

// NotificationService sends email, SMS and feed entries. Any channel may be nil.
type NotificationService struct {
	mailer Mailer
	sms    SMSSender
	feed   FeedStore
	log    *zap.Logger
	wg     sync.WaitGroup
}

var _ Notifier = (*NotificationService)(nil)

func NewNotificationService(mailer Mailer, sms SMSSender, feed FeedStore, log *zap.Logger) *NotificationService {
	return &NotificationService{mailer: mailer, sms: sms, feed: feed, log: log}
}

// Wait blocks until every in-flight delivery has finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

type message struct {
	userID uint
	kind   string
	title  string
	text   string
	email  *Email
	phone  string
}

func (s *NotificationService) dispatch(m message) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.deliver(m)
	}()
}

func (s *NotificationService) deliver(m message) map[string]bool {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	log := s.log.With(zap.String("kind", m.kind), zap.Uint("user_id", m.userID))
	sent := map[string]bool{ChannelEmail: false, ChannelSMS: false}

	if s.mailer != nil && m.email != nil && m.email.To != "" {
		if err := s.mailer.Send(ctx, *m.email); err != nil {
			log.Error("email delivery failed", zap.String("to", m.email.To), zap.Error(err))
		} else {
			sent[ChannelEmail] = true
			log.Info("email sent", zap.String("to", m.email.To))
		}
	}

	if s.sms != nil && m.phone != "" {
		if phone, err := NormalizePhone(m.phone); err != nil {
			log.Warn("SMS skipped", zap.Error(err))
		} else if err := s.sms.SendSMS(ctx, phone, m.text); err != nil {
			log.Error("SMS delivery failed", zap.String("phone", phone), zap.Error(err))
		} else {
			sent[ChannelSMS] = true
			log.Info("SMS sent", zap.String("phone", phone))
		}
	} else if m.phone == "" {
		log.Debug("SMS skipped: no phone number")
	}

	if s.feed != nil && m.userID != 0 {
		n := &models.Notification{
			UserID:    m.userID,
			Kind:      m.kind,
			Title:     m.title,
			Message:   m.text,
			Channels:  sent,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.feed.Insert(ctx, n); err != nil {
			log.Error("feed insert failed", zap.Error(err))
		}
	}
	return sent
}

func slot(apt *models.Appointment) (string, string) {
	return models.FormatDate(apt.Date), models.FormatClock(apt.Time)
}

func (s *NotificationService) appointmentMessage(apt *models.Appointment, kind, title, text string) message {
	patient := &apt.Patient.User
	return message{
		userID: patient.ID,
		kind:   kind,
		title:  title,
		text:   text,
		phone:  patient.Phone,
		email: &Email{
			To:      patient.Email,
			Subject: title,
			Body:    fmt.Sprintf("Hello %s,\n\n%s\n\nSmart Health", patient.DisplayName(), text),
		},
	}
}

func (s *NotificationService) AppointmentBooked(apt *models.Appointment) {
	date, clock := slot(apt)
	text := fmt.Sprintf("Your appointment with Dr. %s is booked for %s at %s.", apt.Doctor.User.DisplayName(), date, clock)
	s.dispatch(s.appointmentMessage(apt, models.NotifyBooked, "Appointment booked", text))
}

func (s *NotificationService) AppointmentCancelled(apt *models.Appointment) {
	date, clock := slot(apt)
	text := fmt.Sprintf("Your appointment on %s at %s has been cancelled.", date, clock)
	s.dispatch(s.appointmentMessage(apt, models.NotifyCancelled, "Appointment cancelled", text))
}

func (s *NotificationService) AppointmentRescheduled(apt *models.Appointment) {
	date, clock := slot(apt)
	text := fmt.Sprintf("Your appointment with Dr. %s has been rescheduled to %s at %s.", apt.Doctor.User.DisplayName(), date, clock)
	s.dispatch(s.appointmentMessage(apt, models.NotifyRescheduled, "Appointment rescheduled", text))
}

func (s *NotificationService) AppointmentConfirmed(apt *models.Appointment) {
	date, clock := slot(apt)
	text := fmt.Sprintf("Appointment confirmed: Dr. %s on %s at %s.", apt.Doctor.User.DisplayName(), date, clock)
	s.dispatch(s.appointmentMessage(apt, models.NotifyConfirmed, "Appointment confirmed", text))
}

func (s *NotificationService) DiagnosisRecorded(d *models.Diagnosis, prescriptionPDF []byte) {
	apt := &d.Appointment
	date, _ := slot(apt)
	text := fmt.Sprintf("Dr. %s recorded a diagnosis for your visit on %s. Your prescription is attached.", apt.Doctor.User.DisplayName(), date)
	m := s.appointmentMessage(apt, models.NotifyDiagnosis, "Your diagnosis and prescription", text)
	m.phone = ""
	if len(prescriptionPDF) > 0 {
		m.email.Attachments = []Attachment{{Name: fmt.Sprintf("prescription_%d.pdf", d.ID), Data: prescriptionPDF}}
	}
	s.dispatch(m)
}

func (s *NotificationService) ReportReady(user *models.User, report *models.Report, fileName string, content []byte) {
	text := fmt.Sprintf("Your %s report (%s to %s) is ready.", report.ReportType, models.FormatDate(report.DateFrom), models.FormatDate(report.DateTo))
	s.dispatch(message{
		userID: user.ID,
		kind:   models.NotifyReportReady,
		title:  "Your report is ready",
		text:   text,
		email: &Email{
			To:          user.Email,
			Subject:     "Your report is ready",
			Body:        "Please find your report attached.",
			Attachments: []Attachment{{Name: fileName, Data: content}},
		},
	})
}
