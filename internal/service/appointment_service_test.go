package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"medportal/internal/domain"
)

type mockAppointmentRepo struct {
	items []domain.Appointment
}

func (m *mockAppointmentRepo) Create(_ context.Context, appointment domain.Appointment) error {
	m.items = append(m.items, appointment)
	return nil
}

func (m *mockAppointmentRepo) ListByAccount(_ context.Context, accountID string) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, a := range m.items {
		if a.AccountID == accountID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) DeleteByAccount(_ context.Context, accountID string) error {
	kept := m.items[:0]
	for _, a := range m.items {
		if a.AccountID != accountID {
			kept = append(kept, a)
		}
	}
	m.items = kept
	return nil
}

type mockDoctorRepo struct {
	byID map[string]domain.Doctor
}

func (m *mockDoctorRepo) Create(_ context.Context, doctor domain.Doctor) error {
	m.byID[doctor.ID] = doctor
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id string) (domain.Doctor, error) {
	doctor, ok := m.byID[id]
	if !ok {
		return domain.Doctor{}, pgx.ErrNoRows
	}
	return doctor, nil
}

func (m *mockDoctorRepo) List(_ context.Context) ([]domain.Doctor, error) {
	var out []domain.Doctor
	for _, d := range m.byID {
		out = append(out, d)
	}
	return out, nil
}

func (m *mockDoctorRepo) Count(_ context.Context) (int, error) {
	return len(m.byID), nil
}

func TestBookAppointment(t *testing.T) {
	doctors := &mockDoctorRepo{byID: map[string]domain.Doctor{
		"doc-1": {ID: "doc-1", FullName: "Dr. Sarah Ahmed", Specialty: "Cardiology"},
	}}
	svc := NewAppointmentService(&mockAppointmentRepo{}, doctors)
	ctx := context.Background()

	appointment, err := svc.Book(ctx, "acc-1", BookInput{DoctorID: "doc-1", Date: "2026-09-15", Time: "10:30"})
	if err != nil {
		t.Fatalf("expected booking to succeed, got %v", err)
	}
	if appointment.Status != domain.AppointmentPending {
		t.Fatalf("expected pending status, got %s", appointment.Status)
	}

	mine, err := svc.ListMine(ctx, "acc-1")
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected one appointment, got %d err=%v", len(mine), err)
	}
}

func TestBookAppointmentValidation(t *testing.T) {
	doctors := &mockDoctorRepo{byID: map[string]domain.Doctor{
		"doc-1": {ID: "doc-1", FullName: "Dr. Sarah Ahmed", Specialty: "Cardiology"},
	}}
	svc := NewAppointmentService(&mockAppointmentRepo{}, doctors)
	ctx := context.Background()

	if _, err := svc.Book(ctx, "acc-1", BookInput{DoctorID: "ghost", Date: "2026-09-15", Time: "10:30"}); !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
	if _, err := svc.Book(ctx, "acc-1", BookInput{DoctorID: "doc-1", Date: "15/09/2026", Time: "10:30"}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for bad date, got %v", err)
	}
	if _, err := svc.Book(ctx, "acc-1", BookInput{DoctorID: "doc-1", Date: "2026-09-15", Time: "25:99"}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for bad time, got %v", err)
	}
}
