package ports

import (
	"context"

	"github.com/faridmamadou/anipHair/internal/model"
)

// AdminNotifier is fire-and-forget: implementations deliver in the
// background and a delivery failure must never fail the booking.
type AdminNotifier interface {
	NotifyNewAppointment(ctx context.Context, appt *model.Appointment, svc *model.Service)
}
