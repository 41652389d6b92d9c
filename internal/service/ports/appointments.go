package ports

import (
	"context"
	"time"

	"github.com/faridmamadou/anipHair/internal/model"
)

type Appointments interface {
	Insert(ctx context.Context, appt *model.Appointment) error

	// GetByID returns nil, nil when no appointment has this exact id.
	GetByID(ctx context.Context, id string) (*model.Appointment, error)

	// FindByIDPrefix returns non-canceled appointments whose id starts
	// with prefix, ordered by start time ascending then id. Prefix
	// resolution takes the first row of this order.
	FindByIDPrefix(ctx context.Context, prefix string) ([]model.Appointment, error)

	// ListActive returns all non-canceled appointments with their service
	// joined, ordered by start time ascending.
	ListActive(ctx context.Context) ([]model.Appointment, error)

	// ListActiveBetween returns non-canceled appointments with start time
	// in [from, to), service joined, ordered by start time ascending.
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.Appointment, error)

	// LatestActiveByCustomer returns the most recent (by start time)
	// non-canceled appointment whose customer name contains name,
	// case-insensitively. nil, nil when none match.
	LatestActiveByCustomer(ctx context.Context, name string) (*model.Appointment, error)

	UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error

	// WithDayLock runs fn while holding an exclusive lock scoped to the
	// booking day, so that two concurrent creates cannot both observe
	// "no conflict" for overlapping windows.
	WithDayLock(ctx context.Context, day time.Time, fn func(ctx context.Context) error) error
}
