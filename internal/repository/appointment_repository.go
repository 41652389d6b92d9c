package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/faridmamadou/anipHair/internal/model"
)

// Advisory lock namespace for per-day booking serialization.
const bookingLockClass = 7342

const appointmentColumns = `
	a.id, a.service_id, a.customer_name, a.telephone, a.start_time,
	COALESCE(a.notes, ''), a.status, a.created_at,
	s.id, s.name, s.price, s.duration, s.category
`

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// Insert persists a new appointment. The id is assigned by the caller.
func (r *AppointmentRepository) Insert(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (id, service_id, customer_name, telephone, start_time, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		appt.ID,
		appt.ServiceID,
		appt.CustomerName,
		appt.Telephone,
		appt.StartTime,
		appt.Notes,
		appt.Status,
	).Scan(&appt.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	return nil
}

// GetByID returns the appointment with this exact id, or nil.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.id = $1
	`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appt, nil
}

// FindByIDPrefix returns non-canceled appointments whose id starts with
// prefix. The order (start time ascending, then id) is the store's
// defined resolution order: prefix matches resolve to the first row.
func (r *AppointmentRepository) FindByIDPrefix(ctx context.Context, prefix string) ([]model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.id LIKE $1 || '%' AND a.status <> 'canceled'
		ORDER BY a.start_time, a.id
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("find appointments by prefix: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListActive returns all non-canceled appointments, earliest first.
func (r *AppointmentRepository) ListActive(ctx context.Context) ([]model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.status <> 'canceled'
		ORDER BY a.start_time, a.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListActiveBetween returns non-canceled appointments starting in
// [from, to), earliest first.
func (r *AppointmentRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.status <> 'canceled' AND a.start_time >= $1 AND a.start_time < $2
		ORDER BY a.start_time, a.id
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list appointments between: %w", err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// LatestActiveByCustomer returns the most recent non-canceled appointment
// whose customer name contains name (case-insensitive), or nil.
func (r *AppointmentRepository) LatestActiveByCustomer(ctx context.Context, name string) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.status <> 'canceled' AND a.customer_name ILIKE '%' || $1 || '%'
		ORDER BY a.start_time DESC
		LIMIT 1
	`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find appointment by customer: %w", err)
	}

	return appt, nil
}

// UpdateStatus sets the appointment status. Records are never deleted;
// cancellation is this same transition.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1
		WHERE id = $2
	`

	result, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

// WithDayLock serializes booking attempts for one calendar day with a
// Postgres advisory lock held on a dedicated connection for the duration
// of fn.
func (r *AppointmentRepository) WithDayLock(ctx context.Context, day time.Time, fn func(ctx context.Context) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	dayKey := int32(day.Unix() / 86400)

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1, $2)`, bookingLockClass, dayKey); err != nil {
		return fmt.Errorf("acquire day lock: %w", err)
	}
	defer func() {
		// Release even when the surrounding context is already canceled.
		_, _ = conn.Exec(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1, $2)`, bookingLockClass, dayKey)
	}()

	return fn(ctx)
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var appt model.Appointment
	var svc model.Service

	err := row.Scan(
		&appt.ID,
		&appt.ServiceID,
		&appt.CustomerName,
		&appt.Telephone,
		&appt.StartTime,
		&appt.Notes,
		&appt.Status,
		&appt.CreatedAt,
		&svc.ID,
		&svc.Name,
		&svc.Price,
		&svc.Duration,
		&svc.Category,
	)
	if err != nil {
		return nil, err
	}

	appt.Service = &svc
	return &appt, nil
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, *appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}

	return appts, nil
}
