package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"medportal/internal/domain"
)

type mockMedicalRepo struct {
	byAccount map[string]domain.MedicalRecord
}

func newMockMedicalRepo() *mockMedicalRepo {
	return &mockMedicalRepo{byAccount: make(map[string]domain.MedicalRecord)}
}

func (m *mockMedicalRepo) GetByAccount(_ context.Context, accountID string) (domain.MedicalRecord, error) {
	record, ok := m.byAccount[accountID]
	if !ok {
		return domain.MedicalRecord{}, pgx.ErrNoRows
	}
	return record, nil
}

func (m *mockMedicalRepo) Upsert(_ context.Context, record domain.MedicalRecord) error {
	m.byAccount[record.AccountID] = record
	return nil
}

func (m *mockMedicalRepo) DeleteByAccount(_ context.Context, accountID string) error {
	delete(m.byAccount, accountID)
	return nil
}

func TestMedicalRecordCreateAndPartialUpdate(t *testing.T) {
	repo := newMockMedicalRepo()
	svc := NewMedicalRecordService(repo)
	ctx := context.Background()

	symptoms := "persistent headache"
	record, err := svc.Update(ctx, "acc-1", UpdateMedicalRecordInput{Symptoms: &symptoms})
	if err != nil {
		t.Fatalf("expected first update to create record, got %v", err)
	}
	if record.Symptoms != symptoms {
		t.Fatalf("expected symptoms stored")
	}
	if record.ID == "" {
		t.Fatalf("expected record id assigned")
	}

	medication := "ibuprofen"
	record, err = svc.Update(ctx, "acc-1", UpdateMedicalRecordInput{CurrentMedication: &medication})
	if err != nil {
		t.Fatalf("update medication: %v", err)
	}
	if record.Symptoms != symptoms {
		t.Fatalf("expected untouched field to survive partial update")
	}
	if record.CurrentMedication != medication {
		t.Fatalf("expected medication stored")
	}

	empty := ""
	record, err = svc.Update(ctx, "acc-1", UpdateMedicalRecordInput{Symptoms: &empty})
	if err != nil {
		t.Fatalf("clear symptoms: %v", err)
	}
	if record.Symptoms != "" {
		t.Fatalf("expected symptoms cleared by explicit empty value")
	}
}

func TestMedicalRecordDateValidation(t *testing.T) {
	repo := newMockMedicalRepo()
	svc := NewMedicalRecordService(repo)
	ctx := context.Background()

	bad := "not-a-date"
	if _, err := svc.Update(ctx, "acc-1", UpdateMedicalRecordInput{DateOfBirth: &bad}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	started := "2026-08-01T14:30"
	record, err := svc.Update(ctx, "acc-1", UpdateMedicalRecordInput{SymptomsStartedAt: &started})
	if err != nil {
		t.Fatalf("expected datetime-local format accepted, got %v", err)
	}
	if record.SymptomsStartedAt == nil {
		t.Fatalf("expected started_at stored")
	}
}

func TestMedicalRecordGetEmptyWhenUndeclared(t *testing.T) {
	svc := NewMedicalRecordService(newMockMedicalRepo())
	record, err := svc.Get(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("expected empty record, got %v", err)
	}
	if record.AccountID != "acc-1" || record.ID != "" {
		t.Fatalf("expected placeholder record for account")
	}
}
