package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"medportal/internal/domain"
)

// DoctorRepository define el contrato de persistencia para medicos.
type DoctorRepository interface {
	Create(ctx context.Context, doctor domain.Doctor) error
	GetByID(ctx context.Context, id string) (domain.Doctor, error)
	List(ctx context.Context) ([]domain.Doctor, error)
	Count(ctx context.Context) (int, error)
}

// PgDoctorRepository implementa DoctorRepository usando pgxpool.
type PgDoctorRepository struct {
	pool *pgxpool.Pool
}

func NewPgDoctorRepository(pool *pgxpool.Pool) *PgDoctorRepository {
	return &PgDoctorRepository{pool: pool}
}

const doctorColumns = `
	id, full_name, gender, date_of_birth, specialty, phone_number, email,
	available_days, available_time, years_experience, qualification,
	profile_photo, bio
`

func (r *PgDoctorRepository) Create(ctx context.Context, doctor domain.Doctor) error {
	const query = `
		INSERT INTO doctors (
			id, full_name, gender, date_of_birth, specialty, phone_number, email,
			available_days, available_time, years_experience, qualification,
			profile_photo, bio
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.pool.Exec(ctx, query,
		doctor.ID,
		doctor.FullName,
		doctor.Gender,
		doctor.DateOfBirth,
		doctor.Specialty,
		doctor.PhoneNumber,
		doctor.Email,
		doctor.AvailableDays,
		doctor.AvailableTime,
		doctor.YearsExperience,
		doctor.Qualification,
		doctor.ProfilePhoto,
		doctor.Bio,
	)
	return err
}

func (r *PgDoctorRepository) GetByID(ctx context.Context, id string) (domain.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`
	var d domain.Doctor
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.FullName,
		&d.Gender,
		&d.DateOfBirth,
		&d.Specialty,
		&d.PhoneNumber,
		&d.Email,
		&d.AvailableDays,
		&d.AvailableTime,
		&d.YearsExperience,
		&d.Qualification,
		&d.ProfilePhoto,
		&d.Bio,
	)
	if err != nil {
		return domain.Doctor{}, err
	}
	return d, nil
}

func (r *PgDoctorRepository) List(ctx context.Context) ([]domain.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors ORDER BY full_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []domain.Doctor
	for rows.Next() {
		var d domain.Doctor
		if err := rows.Scan(
			&d.ID,
			&d.FullName,
			&d.Gender,
			&d.DateOfBirth,
			&d.Specialty,
			&d.PhoneNumber,
			&d.Email,
			&d.AvailableDays,
			&d.AvailableTime,
			&d.YearsExperience,
			&d.Qualification,
			&d.ProfilePhoto,
			&d.Bio,
		); err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func (r *PgDoctorRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&n)
	return n, err
}
