// Package servicetest provides in-memory fakes for the service ports,
// shared by the service, engine and agent tests.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/faridmamadou/anipHair/internal/model"
)

// Catalog is a fixed in-memory catalog.
type Catalog struct {
	Services []model.Service
}

func (c *Catalog) GetService(_ context.Context, id int64) (*model.Service, error) {
	for _, svc := range c.Services {
		if svc.ID == id {
			s := svc
			return &s, nil
		}
	}
	return nil, nil
}

func (c *Catalog) ListServices(_ context.Context) ([]model.Service, error) {
	return append([]model.Service(nil), c.Services...), nil
}

// Appointments is an in-memory appointment store mirroring the
// repository's ordering contract (start time ascending, then id).
type Appointments struct {
	mu      sync.Mutex
	catalog *Catalog
	items   []*model.Appointment
}

func NewAppointments(catalog *Catalog) *Appointments {
	return &Appointments{catalog: catalog}
}

func (s *Appointments) Insert(ctx context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *appt
	stored.CreatedAt = time.Now()
	if stored.Service == nil {
		stored.Service, _ = s.catalog.GetService(ctx, stored.ServiceID)
	}
	s.items = append(s.items, &stored)
	appt.CreatedAt = stored.CreatedAt
	return nil
}

func (s *Appointments) GetByID(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, appt := range s.items {
		if appt.ID == id {
			out := *appt
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Appointments) FindByIDPrefix(_ context.Context, prefix string) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []model.Appointment
	for _, appt := range s.items {
		if appt.Status != model.AppointmentStatusCanceled && strings.HasPrefix(appt.ID, prefix) {
			matches = append(matches, *appt)
		}
	}
	sortAppointments(matches)
	return matches, nil
}

func (s *Appointments) ListActive(_ context.Context) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []model.Appointment
	for _, appt := range s.items {
		if appt.Status != model.AppointmentStatusCanceled {
			active = append(active, *appt)
		}
	}
	sortAppointments(active)
	return active, nil
}

func (s *Appointments) ListActiveBetween(_ context.Context, from, to time.Time) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []model.Appointment
	for _, appt := range s.items {
		if appt.Status == model.AppointmentStatusCanceled {
			continue
		}
		if appt.StartTime.Before(from) || !appt.StartTime.Before(to) {
			continue
		}
		active = append(active, *appt)
	}
	sortAppointments(active)
	return active, nil
}

func (s *Appointments) LatestActiveByCustomer(_ context.Context, name string) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(name)
	var latest *model.Appointment
	for _, appt := range s.items {
		if appt.Status == model.AppointmentStatusCanceled {
			continue
		}
		if !strings.Contains(strings.ToLower(appt.CustomerName), needle) {
			continue
		}
		if latest == nil || appt.StartTime.After(latest.StartTime) {
			latest = appt
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (s *Appointments) UpdateStatus(_ context.Context, id string, status model.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, appt := range s.items {
		if appt.ID == id {
			appt.Status = status
			return nil
		}
	}
	return nil
}

func (s *Appointments) WithDayLock(ctx context.Context, _ time.Time, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func sortAppointments(appts []model.Appointment) {
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].StartTime.Equal(appts[j].StartTime) {
			return appts[i].ID < appts[j].ID
		}
		return appts[i].StartTime.Before(appts[j].StartTime)
	})
}

// Notifier records notified appointment ids.
type Notifier struct {
	mu       sync.Mutex
	Notified []string
}

func (n *Notifier) NotifyNewAppointment(_ context.Context, appt *model.Appointment, _ *model.Service) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notified = append(n.Notified, appt.ID)
}

// DefaultCatalog mirrors the seeded production catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{Services: []model.Service{
		{ID: 1, Name: "Coiffe Afro", Price: "85€", Duration: "4h", Category: "Protection"},
		{ID: 2, Name: "Nattes Collées", Price: "50€", Duration: "2h", Category: "Classique"},
		{ID: 3, Name: "Coupe Courte", Price: "120€", Duration: "6h", Category: "Longue tenue"},
		{ID: 4, Name: "Twists Passion", Price: "95€", Duration: "3h30", Category: "Moderne"},
		{ID: 5, Name: "Chignon Haut", Price: "45€", Duration: "1h", Category: "Événement"},
		{ID: 6, Name: "Cheveux Bouclés", Price: "65€", Duration: "2h30", Category: "Artistique"},
	}}
}
