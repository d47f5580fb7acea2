package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/brils-gym/booking-api/internal/model"
	"github.com/brils-gym/booking-api/internal/repository"
	"github.com/brils-gym/booking-api/internal/service/capacity"
	"github.com/brils-gym/booking-api/internal/service/notification"
	apperrors "github.com/brils-gym/booking-api/pkg/errors"
	"github.com/brils-gym/booking-api/pkg/messaging"
	"github.com/brils-gym/booking-api/pkg/metrics"
	"github.com/brils-gym/booking-api/pkg/timeutil"
	"github.com/brils-gym/booking-api/pkg/validator"
)

// Service coordinates bookings and cancellations: persist through the store
// first, then reflect the echoed slot identity into the capacity aggregator.
// A failed persist never touches the aggregator. Capacity enforcement is a
// caller-level policy; this service only does the bookkeeping.
type Service struct {
	repo       repository.AppointmentRepository
	aggregator *capacity.Aggregator
	broker     messaging.Broker
	notifier   notification.Notifier
	metrics    *metrics.Metrics
	validate   validator.Validator

	// session-scoped appointment list, mutated only by the two flows and
	// the fetch methods
	mu           sync.RWMutex
	appointments []*model.Appointment
}

func NewService(
	repo repository.AppointmentRepository,
	aggregator *capacity.Aggregator,
	broker messaging.Broker,
	notifier notification.Notifier,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repo:       repo,
		aggregator: aggregator,
		broker:     broker,
		notifier:   notifier,
		metrics:    m,
		validate:   validator.New(),
	}
}

// Book persists one booked appointment and bumps the aggregator with the
// store's echoed values, not the request's, so the tracked key matches
// whatever the store normalized.
func (s *Service) Book(ctx context.Context, userID uuid.UUID, req *model.CreateAppointmentRequest) (*model.BookingEcho, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, apperrors.BadRequest("invalid booking request", err)
	}

	appt := &model.Appointment{
		UserID:            userID,
		Date:              timeutil.NormalizeYMD(req.Date),
		StartTime:         timeutil.ToStorageTime(req.StartTime),
		EndTime:           timeutil.ToStorageTime(req.EndTime),
		SlotID:            req.SlotID,
		AppointmentTypeID: req.AppointmentTypeID,
		Status:            model.AppointmentStatusBooked,
	}

	echo, err := s.repo.Insert(ctx, appt)
	if err != nil {
		s.metrics.IncFailure("book")
		return nil, fmt.Errorf("failed to book appointment: %w", err)
	}

	s.aggregator.Increment(echo.Key())
	s.metrics.IncBookings()

	s.publish(ctx, messaging.ChannelAppointmentBooked, &messaging.AppointmentEvent{
		UserID:    userID.String(),
		Date:      echo.Date,
		StartTime: echo.StartTime,
		EndTime:   echo.EndTime,
		SlotID:    echo.SlotID,
	})
	s.notifyBooked(ctx, echo)

	return echo, nil
}

// Cancel flips the appointment to cancelled. A non-nil userID is passed to
// the store as an ownership filter; nothing beyond that filter is enforced
// here. On success the session list entry and the aggregator are updated
// from the echoed identity, decrement floored at zero.
func (s *Service) Cancel(ctx context.Context, id int64, userID *uuid.UUID) (*model.CancelEcho, error) {
	echo, err := s.repo.UpdateStatus(ctx, id, model.AppointmentStatusCancelled, userID)
	if err != nil {
		s.metrics.IncFailure("cancel")
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.mu.Lock()
	for _, appt := range s.appointments {
		if appt.ID == echo.ID {
			appt.Status = model.AppointmentStatusCancelled
			break
		}
	}
	s.mu.Unlock()

	s.aggregator.Decrement(echo.Key())
	s.metrics.IncCancellations()

	event := &messaging.AppointmentEvent{
		Date:      echo.Date,
		StartTime: echo.StartTime,
		EndTime:   echo.EndTime,
		SlotID:    echo.SlotID,
	}
	if userID != nil {
		event.UserID = userID.String()
	}
	s.publish(ctx, messaging.ChannelAppointmentCancelled, event)
	s.notifyCancelled(ctx, echo)

	return echo, nil
}

// FetchUserUpcoming loads the user's future appointments: later dates, or
// today's whose end time is still ahead. Ordered by date then start time.
func (s *Service) FetchUserUpcoming(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Appointment, error) {
	if limit <= 0 {
		limit = 20
	}
	now := time.Now()

	appointments, err := s.repo.List(ctx, &model.AppointmentFilters{
		UserID:   &userID,
		Upcoming: true,
		NowDate:  timeutil.ToYMD(now),
		NowTime:  now.Format("15:04:05"),
		OrderBy:  true,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming appointments: %w", err)
	}

	s.setAppointments(appointments)
	return appointments, nil
}

// FetchUserAppointmentsByDate loads the user's appointments for one date,
// ordered by start time.
func (s *Service) FetchUserAppointmentsByDate(ctx context.Context, userID uuid.UUID, date string) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, &model.AppointmentFilters{
		UserID:  &userID,
		Date:    timeutil.NormalizeYMD(date),
		OrderBy: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointments by date: %w", err)
	}

	s.setAppointments(appointments)
	return appointments, nil
}

// FetchAppointmentsRange loads the user's appointments from today through
// daysAhead days out.
func (s *Service) FetchAppointmentsRange(ctx context.Context, userID uuid.UUID, daysAhead int) ([]*model.Appointment, error) {
	today := time.Now()

	appointments, err := s.repo.List(ctx, &model.AppointmentFilters{
		UserID:   &userID,
		FromDate: timeutil.ToYMD(today),
		ToDate:   timeutil.ToYMD(today.AddDate(0, 0, daysAhead)),
		OrderBy:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointments in range: %w", err)
	}

	s.setAppointments(appointments)
	return appointments, nil
}

// Appointments returns a copy of the session list.
func (s *Service) Appointments() []*model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

func (s *Service) setAppointments(appointments []*model.Appointment) {
	s.mu.Lock()
	s.appointments = appointments
	s.mu.Unlock()
}

func (s *Service) publish(ctx context.Context, channel string, event *messaging.AppointmentEvent) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, channel, event); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("failed to publish appointment event")
	}
}

func (s *Service) notifyBooked(ctx context.Context, echo *model.BookingEcho) {
	if s.notifier == nil {
		return
	}
	email := emailFromContext(ctx)
	if err := s.notifier.AppointmentBooked(email, echo); err != nil {
		log.Warn().Err(err).Msg("booking confirmation not sent")
	}
}

func (s *Service) notifyCancelled(ctx context.Context, echo *model.CancelEcho) {
	if s.notifier == nil {
		return
	}
	email := emailFromContext(ctx)
	if err := s.notifier.AppointmentCancelled(email, echo); err != nil {
		log.Warn().Err(err).Msg("cancellation notice not sent")
	}
}

type contextKey string

// EmailContextKey carries the authenticated user's email, set by the auth
// middleware when the token provides one.
const EmailContextKey contextKey = "user_email"

func emailFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(EmailContextKey).(string); ok {
		return v
	}
	return ""
}
