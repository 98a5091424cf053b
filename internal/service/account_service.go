package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"medportal/internal/domain"
	"medportal/internal/identity"
	"medportal/internal/repository"
)

// AccountService coordina reglas de negocio de identidad: registro,
// verificacion de credenciales, resolucion de claims federados, vinculacion
// de cuentas y mutacion de perfil.
type AccountService struct {
	logger   *zap.Logger
	accounts repository.AccountRepository
	verifier identity.Verifier
}

func NewAccountService(logger *zap.Logger, accounts repository.AccountRepository, verifier identity.Verifier) *AccountService {
	return &AccountService{
		logger:   logger,
		accounts: accounts,
		verifier: verifier,
	}
}

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountInactive     = errors.New("account inactive")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAlreadyExists       = errors.New("account already exists")
	ErrEmailOwnedByPassword = errors.New("email owned by password account")
	ErrAlreadyLinked       = errors.New("account already linked")
	ErrNotLinked           = errors.New("account not linked")
	ErrUnsupportedProvider = errors.New("operation unsupported for provider")
	ErrUsernameTooShort    = errors.New("username too short")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrWeakPassword        = errors.New("weak password")
	ErrPasswordMismatch    = errors.New("password mismatch")
	ErrInvalidDate         = errors.New("invalid date")
)

// Credential es la union de credenciales que acepta el verificador: password
// o token federado. Es una interfaz sellada para que ambas ramas queden
// cubiertas en tiempo de compilacion.
type Credential interface {
	isCredential()
}

// PasswordCredential identifica una cuenta password por email y secreto.
type PasswordCredential struct {
	Email    string
	Password string
}

// FederatedToken es un bearer token opaco emitido por el proveedor federado.
type FederatedToken struct {
	IDToken string
}

func (PasswordCredential) isCredential() {}
func (FederatedToken) isCredential()     {}

// RegisterInput son los datos de registro por password.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Register crea una cuenta password. La unicidad de username y email la
// garantiza el constraint de la base; los chequeos previos solo anticipan
// el error mas comun.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (domain.Account, error) {
	username := strings.TrimSpace(input.Username)
	emailAddr := normalizeEmail(input.Email)
	password := strings.TrimSpace(input.Password)

	if len(username) < 3 {
		return domain.Account{}, ErrUsernameTooShort
	}
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return domain.Account{}, ErrInvalidEmail
	}
	if err := validatePasswordStrength(password); err != nil {
		return domain.Account{}, err
	}

	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return domain.Account{}, ErrAlreadyExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, err
	}
	if _, err := s.accounts.GetByEmail(ctx, emailAddr); err == nil {
		return domain.Account{}, ErrAlreadyExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Account{}, err
	}

	account := domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        emailAddr,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: string(hashBytes),
		AuthProvider: domain.ProviderPassword,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return domain.Account{}, ErrAlreadyExists
		}
		return domain.Account{}, err
	}
	return account, nil
}

// VerifyCredential valida una credencial y devuelve la cuenta resuelta.
// La rama password es una verificacion pura; la rama federada verifica el
// token contra el proveedor y resuelve el claim resultante.
func (s *AccountService) VerifyCredential(ctx context.Context, cred Credential) (domain.Account, error) {
	switch c := cred.(type) {
	case PasswordCredential:
		return s.VerifyPassword(ctx, c.Email, c.Password)
	case FederatedToken:
		claim, err := s.verifier.Verify(ctx, c.IDToken)
		if err != nil {
			return domain.Account{}, err
		}
		return s.ResolveClaim(ctx, claim)
	default:
		return domain.Account{}, fmt.Errorf("unknown credential type %T", cred)
	}
}

// VerifyPassword busca la cuenta por email dentro del proveedor password y
// compara el secreto. No tiene efectos secundarios.
func (s *AccountService) VerifyPassword(ctx context.Context, emailAddr, password string) (domain.Account, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.Account{}, ErrInvalidCredentials
	}
	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}
	if account.AuthProvider != domain.ProviderPassword || account.PasswordHash == "" {
		return domain.Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return domain.Account{}, ErrInvalidCredentials
	}
	if !account.Active {
		return domain.Account{}, ErrAccountInactive
	}
	return account, nil
}

// ResolveClaim encuentra o crea exactamente una cuenta local para un claim
// federado verificado. Es idempotente: el mismo claim devuelve siempre la
// misma cuenta.
func (s *AccountService) ResolveClaim(ctx context.Context, claim domain.IdentityClaim) (domain.Account, error) {
	subject := strings.TrimSpace(claim.Subject)
	if subject == "" {
		return domain.Account{}, ErrInvalidCredentials
	}

	account, err := s.accounts.GetByFederatedUID(ctx, subject)
	if err == nil {
		if !account.Active {
			return domain.Account{}, ErrAccountInactive
		}
		return account, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, err
	}

	emailAddr := normalizeEmail(claim.Email)
	if emailAddr != "" {
		existing, err := s.accounts.GetByEmail(ctx, emailAddr)
		if err == nil {
			// Una identidad federada no puede anexar silenciosamente una
			// cuenta existente: vincular es una operacion explicita.
			if existing.AuthProvider == domain.ProviderPassword {
				return domain.Account{}, ErrEmailOwnedByPassword
			}
			return domain.Account{}, ErrAlreadyExists
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, err
		}
	}

	username, err := s.deriveUsername(ctx, claim.DisplayName, emailAddr)
	if err != nil {
		return domain.Account{}, err
	}

	account = domain.Account{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          emailAddr,
		FullName:       strings.TrimSpace(claim.DisplayName),
		AuthProvider:   domain.ProviderFederated,
		FederatedUID:   subject,
		ProfilePicture: claim.PhotoURL,
		Active:         true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return domain.Account{}, ErrAlreadyExists
		}
		return domain.Account{}, err
	}
	if s.logger != nil {
		s.logger.Info("federated account created",
			zap.String("account_id", account.ID),
			zap.String("username", account.Username),
		)
	}
	return account, nil
}

// deriveUsername genera un username a partir del display name o, si falta,
// de la parte local del email, con sufijo numerico ante colisiones.
func (s *AccountService) deriveUsername(ctx context.Context, displayName, emailAddr string) (string, error) {
	base := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(displayName), " ", "_"))
	if base == "" {
		base, _, _ = strings.Cut(emailAddr, "@")
	}
	if len(base) < 3 {
		base = "user_" + base
	}

	candidate := base
	for i := 1; ; i++ {
		_, err := s.accounts.GetByUsername(ctx, candidate)
		if errors.Is(err, pgx.ErrNoRows) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
}

// LinkFederated verifica el token federado y asocia su identidad a una
// cuenta password existente, dejando intacta la credencial password.
func (s *AccountService) LinkFederated(ctx context.Context, accountID, idToken string) (domain.Account, error) {
	account, err := s.get(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if account.AuthProvider != domain.ProviderPassword || account.FederatedUID != "" {
		return domain.Account{}, ErrAlreadyLinked
	}

	claim, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return domain.Account{}, err
	}

	if err := s.accounts.SetFederatedUID(ctx, account.ID, claim.Subject, claim.PhotoURL); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return domain.Account{}, ErrAlreadyExists
		}
		return domain.Account{}, err
	}

	account.FederatedUID = claim.Subject
	if account.ProfilePicture == "" {
		account.ProfilePicture = claim.PhotoURL
	}
	return account, nil
}

// UnlinkFederated quita la identidad federada de una cuenta password.
// Llamar sobre una cuenta sin vinculo es un error reportado, no un no-op.
func (s *AccountService) UnlinkFederated(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.get(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if account.AuthProvider != domain.ProviderPassword || account.FederatedUID == "" {
		return domain.Account{}, ErrNotLinked
	}

	if err := s.accounts.ClearFederatedUID(ctx, account.ID); err != nil {
		return domain.Account{}, err
	}

	account.FederatedUID = ""
	account.ProfilePicture = ""
	return account, nil
}

// UpdateProfileInput aplica semantica de actualizacion parcial: nil deja el
// campo intacto, string vacio limpia los campos anulables.
type UpdateProfileInput struct {
	Username        *string
	Email           *string
	FullName        *string
	PhoneNumber     *string
	DateOfBirth     *string // YYYY-MM-DD; vacio limpia
	Password        *string
	ConfirmPassword string
}

// UpdateProfile valida todos los campos tocados contra la cuenta cargada y
// recien entonces persiste en un unico UPDATE. La primera regla violada gana
// y nada se persiste en caso de fallo.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, input UpdateProfileInput) (domain.Account, error) {
	account, err := s.get(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if len(username) < 3 {
			return domain.Account{}, ErrUsernameTooShort
		}
		if username != account.Username {
			other, err := s.accounts.GetByUsername(ctx, username)
			if err == nil && other.ID != account.ID {
				return domain.Account{}, ErrAlreadyExists
			}
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return domain.Account{}, err
			}
		}
		account.Username = username
	}

	if input.Email != nil {
		if account.AuthProvider != domain.ProviderPassword {
			return domain.Account{}, ErrUnsupportedProvider
		}
		emailAddr := normalizeEmail(*input.Email)
		if emailAddr == "" || !strings.Contains(emailAddr, "@") {
			return domain.Account{}, ErrInvalidEmail
		}
		if emailAddr != account.Email {
			other, err := s.accounts.GetByEmail(ctx, emailAddr)
			if err == nil && other.ID != account.ID {
				return domain.Account{}, ErrAlreadyExists
			}
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return domain.Account{}, err
			}
		}
		account.Email = emailAddr
	}

	if input.FullName != nil {
		account.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.PhoneNumber != nil {
		account.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}

	if input.DateOfBirth != nil {
		dob := strings.TrimSpace(*input.DateOfBirth)
		if dob == "" {
			account.DateOfBirth = nil
		} else {
			parsed, err := time.Parse("2006-01-02", dob)
			if err != nil {
				return domain.Account{}, ErrInvalidDate
			}
			account.DateOfBirth = &parsed
		}
	}

	if input.Password != nil && *input.Password != "" {
		if account.AuthProvider != domain.ProviderPassword {
			return domain.Account{}, ErrUnsupportedProvider
		}
		password := *input.Password
		if password != input.ConfirmPassword {
			return domain.Account{}, ErrPasswordMismatch
		}
		if err := validatePasswordStrength(password); err != nil {
			return domain.Account{}, err
		}
		hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return domain.Account{}, err
		}
		account.PasswordHash = string(hashBytes)
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return domain.Account{}, ErrAlreadyExists
		}
		return domain.Account{}, err
	}
	return account, nil
}

// Get devuelve una cuenta por id.
func (s *AccountService) Get(ctx context.Context, accountID string) (domain.Account, error) {
	return s.get(ctx, accountID)
}

// Delete elimina la cuenta. El caller es responsable de terminar la sesion
// activa antes de invocar esta operacion.
func (s *AccountService) Delete(ctx context.Context, accountID string) error {
	if _, err := s.get(ctx, accountID); err != nil {
		return err
	}
	return s.accounts.Delete(ctx, accountID)
}

func (s *AccountService) get(ctx context.Context, accountID string) (domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, err
	}
	return account, nil
}

// validatePasswordStrength exige 8+ caracteres con mayuscula, minuscula y digito.
func validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
