package domain

import "time"

// MedicalRecord guarda la informacion medica autodeclarada de una cuenta.
// Todos los campos son opcionales; vacio significa no declarado.
type MedicalRecord struct {
	ID                string     `json:"id"`
	AccountID         string     `json:"account_id"`
	FullName          string     `json:"full_name,omitempty"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	Gender            string     `json:"gender,omitempty"`
	PhoneNumber       string     `json:"phone_number,omitempty"`
	Symptoms          string     `json:"symptoms,omitempty"`
	SymptomsStartedAt *time.Time `json:"symptoms_started_at,omitempty"`
	CurrentMedication string     `json:"current_medication,omitempty"`
	Allergies         string     `json:"allergies,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
