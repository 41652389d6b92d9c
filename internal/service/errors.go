package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrServiceNotFound     = errors.New("service not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// ConflictError reports which appointment occupies the requested window
// and until when, so callers can compose a useful reply.
type ConflictError struct {
	AppointmentID string
	CustomerName  string
	Start         time.Time
	End           time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot conflict: appointment %s (%s) occupies %s-%s",
		e.AppointmentID, e.CustomerName,
		e.Start.Format("15:04"), e.End.Format("15:04"))
}
