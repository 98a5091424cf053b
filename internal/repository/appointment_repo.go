package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"medportal/internal/domain"
)

// AppointmentRepository define el contrato de persistencia para citas.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment domain.Appointment) error
	ListByAccount(ctx context.Context, accountID string) ([]domain.Appointment, error)
	DeleteByAccount(ctx context.Context, accountID string) error
}

// PgAppointmentRepository implementa AppointmentRepository usando pgxpool.
type PgAppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgAppointmentRepository(pool *pgxpool.Pool) *PgAppointmentRepository {
	return &PgAppointmentRepository{pool: pool}
}

func (r *PgAppointmentRepository) Create(ctx context.Context, appointment domain.Appointment) error {
	const query = `
		INSERT INTO appointments (id, doctor_id, account_id, date, time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		appointment.ID,
		appointment.DoctorID,
		appointment.AccountID,
		appointment.Date,
		appointment.Time,
		appointment.Status,
		appointment.CreatedAt,
	)
	return translateConstraint(err)
}

func (r *PgAppointmentRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Appointment, error) {
	const query = `
		SELECT id, doctor_id, account_id, date, time, status, created_at
		FROM appointments
		WHERE account_id = $1
		ORDER BY date, time
	`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []domain.Appointment
	for rows.Next() {
		var a domain.Appointment
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.AccountID, &a.Date, &a.Time, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func (r *PgAppointmentRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	const query = `DELETE FROM appointments WHERE account_id = $1`
	_, err := r.pool.Exec(ctx, query, accountID)
	return err
}
