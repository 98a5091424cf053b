package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"medportal/internal/domain"
	"medportal/internal/repository"
)

// AppointmentService agenda citas entre cuentas y medicos.
type AppointmentService struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
}

func NewAppointmentService(appointments repository.AppointmentRepository, doctors repository.DoctorRepository) *AppointmentService {
	return &AppointmentService{
		appointments: appointments,
		doctors:      doctors,
	}
}

var ErrDoctorNotFound = errors.New("doctor not found")

// BookInput son los datos para agendar una cita.
type BookInput struct {
	DoctorID string
	Date     string // YYYY-MM-DD
	Time     string // HH:MM
}

// Book agenda una cita en estado pending para la cuenta dada.
func (s *AppointmentService) Book(ctx context.Context, accountID string, input BookInput) (domain.Appointment, error) {
	if _, err := s.doctors.GetByID(ctx, input.DoctorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Appointment{}, ErrDoctorNotFound
		}
		return domain.Appointment{}, err
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(input.Date))
	if err != nil {
		return domain.Appointment{}, ErrInvalidDate
	}
	at := strings.TrimSpace(input.Time)
	if _, err := time.Parse("15:04", at); err != nil {
		return domain.Appointment{}, ErrInvalidDate
	}

	appointment := domain.Appointment{
		ID:        uuid.NewString(),
		DoctorID:  input.DoctorID,
		AccountID: accountID,
		Date:      date,
		Time:      at,
		Status:    domain.AppointmentPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.appointments.Create(ctx, appointment); err != nil {
		return domain.Appointment{}, err
	}
	return appointment, nil
}

// ListMine devuelve las citas de la cuenta ordenadas por fecha.
func (s *AppointmentService) ListMine(ctx context.Context, accountID string) ([]domain.Appointment, error) {
	return s.appointments.ListByAccount(ctx, accountID)
}
