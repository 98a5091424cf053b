package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"medportal/internal/domain"
)

// MedicalRecordRepository define el contrato de persistencia para la
// informacion medica declarada por cuenta. Hay a lo sumo un registro por
// cuenta, por eso el upsert.
type MedicalRecordRepository interface {
	GetByAccount(ctx context.Context, accountID string) (domain.MedicalRecord, error)
	Upsert(ctx context.Context, record domain.MedicalRecord) error
	DeleteByAccount(ctx context.Context, accountID string) error
}

// PgMedicalRecordRepository implementa MedicalRecordRepository usando pgxpool.
type PgMedicalRecordRepository struct {
	pool *pgxpool.Pool
}

func NewPgMedicalRecordRepository(pool *pgxpool.Pool) *PgMedicalRecordRepository {
	return &PgMedicalRecordRepository{pool: pool}
}

func (r *PgMedicalRecordRepository) GetByAccount(ctx context.Context, accountID string) (domain.MedicalRecord, error) {
	const query = `
		SELECT id, account_id, full_name, date_of_birth, gender, phone_number,
		       symptoms, symptoms_started_at, current_medication, allergies, updated_at
		FROM medical_records
		WHERE account_id = $1
	`
	var m domain.MedicalRecord
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&m.ID,
		&m.AccountID,
		&m.FullName,
		&m.DateOfBirth,
		&m.Gender,
		&m.PhoneNumber,
		&m.Symptoms,
		&m.SymptomsStartedAt,
		&m.CurrentMedication,
		&m.Allergies,
		&m.UpdatedAt,
	)
	if err != nil {
		return domain.MedicalRecord{}, err
	}
	return m, nil
}

func (r *PgMedicalRecordRepository) Upsert(ctx context.Context, record domain.MedicalRecord) error {
	const query = `
		INSERT INTO medical_records (
			id, account_id, full_name, date_of_birth, gender, phone_number,
			symptoms, symptoms_started_at, current_medication, allergies, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (account_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			date_of_birth = EXCLUDED.date_of_birth,
			gender = EXCLUDED.gender,
			phone_number = EXCLUDED.phone_number,
			symptoms = EXCLUDED.symptoms,
			symptoms_started_at = EXCLUDED.symptoms_started_at,
			current_medication = EXCLUDED.current_medication,
			allergies = EXCLUDED.allergies,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.AccountID,
		record.FullName,
		record.DateOfBirth,
		record.Gender,
		record.PhoneNumber,
		record.Symptoms,
		record.SymptomsStartedAt,
		record.CurrentMedication,
		record.Allergies,
		record.UpdatedAt,
	)
	return err
}

func (r *PgMedicalRecordRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	const query = `DELETE FROM medical_records WHERE account_id = $1`
	_, err := r.pool.Exec(ctx, query, accountID)
	return err
}
