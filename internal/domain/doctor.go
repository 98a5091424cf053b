package domain

import "time"

// Doctor es el registro de un medico disponible para citas.
type Doctor struct {
	ID              string     `json:"id"`
	FullName        string     `json:"full_name"`
	Gender          string     `json:"gender,omitempty"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	Specialty       string     `json:"specialty"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	Email           string     `json:"email,omitempty"`
	AvailableDays   string     `json:"available_days,omitempty"`
	AvailableTime   string     `json:"available_time,omitempty"`
	YearsExperience int        `json:"years_experience,omitempty"`
	Qualification   string     `json:"qualification,omitempty"`
	ProfilePhoto    string     `json:"profile_photo,omitempty"`
	Bio             string     `json:"bio,omitempty"`
}
