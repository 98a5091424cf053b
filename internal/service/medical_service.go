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

// MedicalRecordService mantiene la informacion medica declarada por cuenta.
type MedicalRecordService struct {
	records repository.MedicalRecordRepository
}

func NewMedicalRecordService(records repository.MedicalRecordRepository) *MedicalRecordService {
	return &MedicalRecordService{records: records}
}

// UpdateMedicalRecordInput aplica semantica de actualizacion parcial igual
// que el perfil: nil deja el campo intacto, vacio lo limpia.
type UpdateMedicalRecordInput struct {
	FullName          *string
	DateOfBirth       *string // YYYY-MM-DD
	Gender            *string
	PhoneNumber       *string
	Symptoms          *string
	SymptomsStartedAt *string // YYYY-MM-DDTHH:MM o RFC 3339
	CurrentMedication *string
	Allergies         *string
}

// Get devuelve el registro medico de la cuenta, o un registro vacio si aun
// no declaro nada.
func (s *MedicalRecordService) Get(ctx context.Context, accountID string) (domain.MedicalRecord, error) {
	record, err := s.records.GetByAccount(ctx, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MedicalRecord{AccountID: accountID}, nil
	}
	return record, err
}

// Update valida todos los campos tocados y persiste el registro completo en
// un unico upsert.
func (s *MedicalRecordService) Update(ctx context.Context, accountID string, input UpdateMedicalRecordInput) (domain.MedicalRecord, error) {
	record, err := s.records.GetByAccount(ctx, accountID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.MedicalRecord{}, err
		}
		record = domain.MedicalRecord{
			ID:        uuid.NewString(),
			AccountID: accountID,
		}
	}

	if input.FullName != nil {
		record.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.DateOfBirth != nil {
		dob := strings.TrimSpace(*input.DateOfBirth)
		if dob == "" {
			record.DateOfBirth = nil
		} else {
			parsed, err := time.Parse("2006-01-02", dob)
			if err != nil {
				return domain.MedicalRecord{}, ErrInvalidDate
			}
			record.DateOfBirth = &parsed
		}
	}
	if input.Gender != nil {
		record.Gender = strings.TrimSpace(*input.Gender)
	}
	if input.PhoneNumber != nil {
		record.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Symptoms != nil {
		record.Symptoms = strings.TrimSpace(*input.Symptoms)
	}
	if input.SymptomsStartedAt != nil {
		started := strings.TrimSpace(*input.SymptomsStartedAt)
		if started == "" {
			record.SymptomsStartedAt = nil
		} else {
			parsed, err := parseStartedAt(started)
			if err != nil {
				return domain.MedicalRecord{}, ErrInvalidDate
			}
			record.SymptomsStartedAt = &parsed
		}
	}
	if input.CurrentMedication != nil {
		record.CurrentMedication = strings.TrimSpace(*input.CurrentMedication)
	}
	if input.Allergies != nil {
		record.Allergies = strings.TrimSpace(*input.Allergies)
	}

	record.UpdatedAt = time.Now().UTC()
	if err := s.records.Upsert(ctx, record); err != nil {
		return domain.MedicalRecord{}, err
	}
	return record, nil
}

// parseStartedAt acepta el formato de <input type="datetime-local"> y
// RFC 3339 como fallback.
func parseStartedAt(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
