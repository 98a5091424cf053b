package db

import (
	"context"

	"github.com/google/uuid"

	"medportal/internal/domain"
	"medportal/internal/repository"
)

// SeedDoctors carga un directorio inicial de medicos cuando la tabla esta
// vacia. Pensado para ambientes de desarrollo y demo.
func SeedDoctors(ctx context.Context, doctors repository.DoctorRepository) error {
	n, err := doctors.Count(ctx)
	if err != nil || n > 0 {
		return err
	}

	seed := []domain.Doctor{
		{
			FullName:        "Dr. Sarah Ahmed",
			Gender:          "female",
			Specialty:       "Cardiology",
			AvailableDays:   "Mon,Wed,Fri",
			AvailableTime:   "09:00-13:00",
			YearsExperience: 12,
			Qualification:   "MBBS, FCPS (Cardiology)",
		},
		{
			FullName:        "Dr. Rafiq Hasan",
			Gender:          "male",
			Specialty:       "Endocrinology",
			AvailableDays:   "Tue,Thu",
			AvailableTime:   "14:00-18:00",
			YearsExperience: 9,
			Qualification:   "MBBS, MD (Endocrinology)",
		},
		{
			FullName:        "Dr. Nusrat Jahan",
			Gender:          "female",
			Specialty:       "Neurology",
			AvailableDays:   "Sat,Sun,Tue",
			AvailableTime:   "10:00-14:00",
			YearsExperience: 15,
			Qualification:   "MBBS, FCPS (Neurology)",
		},
	}

	for _, d := range seed {
		d.ID = uuid.NewString()
		if err := doctors.Create(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
