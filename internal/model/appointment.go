package model

import "time"

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
)

// Appointment is owned by the booking service: created on booking,
// status-mutated by confirm/cancel, never physically deleted.
type Appointment struct {
	ID           string            `json:"id"` // uuid
	ServiceID    int64             `json:"service_id"`
	CustomerName string            `json:"customer_name"`
	Telephone    string            `json:"telephone"`
	StartTime    time.Time         `json:"start_time"`
	Notes        string            `json:"notes,omitempty"`
	Status       AppointmentStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`

	// Joined for convenience, not a DB column.
	Service *Service `json:"service,omitempty"`
}

// ShortID is the identity prefix shown to operators (CONFIRM ab12cd34).
func (a *Appointment) ShortID() string {
	if len(a.ID) < 8 {
		return a.ID
	}
	return a.ID[:8]
}
