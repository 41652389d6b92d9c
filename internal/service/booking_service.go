package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/faridmamadou/anipHair/internal/model"
	"github.com/faridmamadou/anipHair/internal/schedule"
	"github.com/faridmamadou/anipHair/internal/service/ports"
)

// Business hours and the free-slot probe width. The probe is a fixed
// hour regardless of the requested service's duration; FreeSlotsForDay
// documents that choice.
const (
	OpenHour        = 9
	CloseHour       = 18
	SlotGranularity = time.Hour
)

type BookingService struct {
	catalog  ports.Catalog
	appts    ports.Appointments
	notifier ports.AdminNotifier
	logger   *zap.Logger
}

func NewBookingService(
	catalog ports.Catalog,
	appts ports.Appointments,
	notifier ports.AdminNotifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		catalog:  catalog,
		appts:    appts,
		notifier: notifier,
		logger:   logger,
	}
}

// Create books a new appointment with status pending. The conflict check
// and the insert run under the booking-day lock so concurrent creates for
// overlapping windows cannot both pass. A successful creation fires the
// admin notification; notification failure never fails the booking.
func (s *BookingService) Create(ctx context.Context, serviceID int64, customerName, telephone string, start time.Time, notes string) (*model.Appointment, error) {
	svc, err := s.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	end := start.Add(schedule.ParseDuration(svc.Duration))

	appt := &model.Appointment{
		ID:           uuid.NewString(),
		ServiceID:    serviceID,
		CustomerName: customerName,
		Telephone:    telephone,
		StartTime:    start,
		Notes:        notes,
		Status:       model.AppointmentStatusPending,
		Service:      svc,
	}

	err = s.appts.WithDayLock(ctx, start, func(ctx context.Context) error {
		existing, err := s.appts.ListActive(ctx)
		if err != nil {
			return fmt.Errorf("list active appointments: %w", err)
		}

		candidate := schedule.Window{Start: start, End: end}
		if hit, occupied := schedule.FindConflict(candidate, busyWindows(existing)); occupied {
			return &ConflictError{
				AppointmentID: hit.AppointmentID,
				CustomerName:  hit.CustomerName,
				Start:         hit.Window.Start,
				End:           hit.Window.End,
			}
		}

		if err := s.appts.Insert(ctx, appt); err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment created",
		zap.String("appointment_id", appt.ID),
		zap.String("customer", customerName),
		zap.Time("start_time", start))

	s.notifier.NotifyNewAppointment(ctx, appt, svc)

	return appt, nil
}

// Confirm resolves an appointment by exact id or unambiguous prefix and
// sets it to confirmed. Confirming an already-confirmed appointment is
// not an error.
func (s *BookingService) Confirm(ctx context.Context, idOrPrefix string) (*model.Appointment, error) {
	appt, err := s.resolve(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	if err := s.appts.UpdateStatus(ctx, appt.ID, model.AppointmentStatusConfirmed); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	appt.Status = model.AppointmentStatusConfirmed

	s.logger.Info("Appointment confirmed", zap.String("appointment_id", appt.ID))
	return appt, nil
}

// Cancel sets an appointment to canceled; the record is kept. An id (or
// prefix) takes priority; with only a customer-name hint the most recent
// non-canceled match by start time wins.
func (s *BookingService) Cancel(ctx context.Context, idOrPrefix, customerHint string) (*model.Appointment, error) {
	var appt *model.Appointment
	var err error

	switch {
	case idOrPrefix != "":
		appt, err = s.resolve(ctx, idOrPrefix)
	case customerHint != "":
		appt, err = s.appts.LatestActiveByCustomer(ctx, customerHint)
		if err != nil {
			err = fmt.Errorf("find appointment by customer: %w", err)
		} else if appt == nil {
			err = ErrAppointmentNotFound
		}
	default:
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.appts.UpdateStatus(ctx, appt.ID, model.AppointmentStatusCanceled); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	appt.Status = model.AppointmentStatusCanceled

	s.logger.Info("Appointment canceled", zap.String("appointment_id", appt.ID))
	return appt, nil
}

// ListForDay returns the day's non-canceled appointments, earliest first.
func (s *BookingService) ListForDay(ctx context.Context, date time.Time) ([]model.Appointment, error) {
	from := startOfDay(date)
	appts, err := s.appts.ListActiveBetween(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list appointments for day: %w", err)
	}
	return appts, nil
}

// ListUpcoming returns non-canceled appointments from the start of today
// through the next days days, earliest first.
func (s *BookingService) ListUpcoming(ctx context.Context, days int) ([]model.Appointment, error) {
	from := startOfDay(time.Now())
	appts, err := s.appts.ListActiveBetween(ctx, from, from.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("list upcoming appointments: %w", err)
	}
	return appts, nil
}

// FreeSlotsForDay returns the day's free start times within business
// hours, probed at SlotGranularity.
func (s *BookingService) FreeSlotsForDay(ctx context.Context, date time.Time) ([]time.Time, error) {
	from := startOfDay(date)
	appts, err := s.appts.ListActiveBetween(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list appointments for day: %w", err)
	}

	var free []time.Time
	for t := range schedule.FreeSlots(from, OpenHour, CloseHour, SlotGranularity, busyWindows(appts)) {
		free = append(free, t)
	}
	return free, nil
}

// resolve finds an appointment by exact id first, then by id prefix
// among non-canceled appointments. Multiple prefix matches resolve to
// the first in the store's order (start time ascending, then id).
func (s *BookingService) resolve(ctx context.Context, idOrPrefix string) (*model.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appt != nil && appt.Status != model.AppointmentStatusCanceled {
		return appt, nil
	}

	matches, err := s.appts.FindByIDPrefix(ctx, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("find appointment by prefix: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrAppointmentNotFound
	}
	return &matches[0], nil
}

// busyWindows maps appointments to occupied windows, deriving each end
// from the referenced service's duration at check time.
func busyWindows(appts []model.Appointment) []schedule.Busy {
	busy := make([]schedule.Busy, 0, len(appts))
	for _, a := range appts {
		duration := schedule.DefaultDuration
		if a.Service != nil {
			duration = schedule.ParseDuration(a.Service.Duration)
		}
		busy = append(busy, schedule.Busy{
			AppointmentID: a.ID,
			CustomerName:  a.CustomerName,
			Window:        schedule.Window{Start: a.StartTime, End: a.StartTime.Add(duration)},
		})
	}
	return busy
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
