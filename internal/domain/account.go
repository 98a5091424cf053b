package domain

import "time"

// Proveedores de autenticacion soportados por el portal.
const (
	ProviderPassword  = "password"
	ProviderFederated = "federated"
)

// Account es el registro durable de identidad de un usuario del portal.
// PasswordHash esta vacio para cuentas puramente federadas; FederatedUID
// esta vacio salvo para cuentas federadas o cuentas password vinculadas.
type Account struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name,omitempty"`
	PasswordHash   string     `json:"-"`
	AuthProvider   string     `json:"auth_provider"`
	FederatedUID   string     `json:"-"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	PhoneNumber    string     `json:"phone_number,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Active         bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// Linked indica si una cuenta password tiene una identidad federada asociada.
func (a Account) Linked() bool {
	return a.AuthProvider == ProviderPassword && a.FederatedUID != ""
}

// IdentityClaim es la identidad normalizada que devuelve el proveedor
// federado tras verificar un token. No se persiste.
type IdentityClaim struct {
	Subject       string
	Email         string
	DisplayName   string
	PhotoURL      string
	EmailVerified bool
}
