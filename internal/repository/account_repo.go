package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"medportal/internal/domain"
)

// ErrDuplicateKey indica una violacion de constraint de unicidad en la base.
// Es la senal autoritativa de colision: los chequeos previos en servicios son
// solo para dar mensajes mejores, nunca reemplazan el constraint.
var ErrDuplicateKey = errors.New("duplicate key")

// AccountRepository define el contrato de persistencia para cuentas.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetByFederatedUID(ctx context.Context, uid string) (domain.Account, error)
	Update(ctx context.Context, account domain.Account) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetFederatedUID(ctx context.Context, id, uid, profilePicture string) error
	ClearFederatedUID(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// PgAccountRepository implementa AccountRepository usando pgxpool.
type PgAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

const accountColumns = `
	id, username, email, full_name, password_hash, auth_provider,
	federated_uid, profile_picture, phone_number, date_of_birth,
	is_active, created_at, last_login_at
`

func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateKey
	}
	return err
}

func (r *PgAccountRepository) Create(ctx context.Context, account domain.Account) error {
	const query = `
		INSERT INTO accounts (
			id, username, email, full_name, password_hash, auth_provider,
			federated_uid, profile_picture, phone_number, date_of_birth,
			is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.FullName,
		account.PasswordHash,
		account.AuthProvider,
		account.FederatedUID,
		account.ProfilePicture,
		account.PhoneNumber,
		account.DateOfBirth,
		account.Active,
		account.CreatedAt,
	)
	return translateConstraint(err)
}

func (r *PgAccountRepository) getBy(ctx context.Context, where string, arg any) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + where
	var (
		a            domain.Account
		federatedUID *string
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&a.ID,
		&a.Username,
		&a.Email,
		&a.FullName,
		&a.PasswordHash,
		&a.AuthProvider,
		&federatedUID,
		&a.ProfilePicture,
		&a.PhoneNumber,
		&a.DateOfBirth,
		&a.Active,
		&a.CreatedAt,
		&a.LastLoginAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if federatedUID != nil {
		a.FederatedUID = *federatedUID
	}
	return a, nil
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *PgAccountRepository) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *PgAccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *PgAccountRepository) GetByFederatedUID(ctx context.Context, uid string) (domain.Account, error) {
	return r.getBy(ctx, "federated_uid = $1", uid)
}

func (r *PgAccountRepository) Update(ctx context.Context, account domain.Account) error {
	const query = `
		UPDATE accounts
		SET username = $2, email = $3, full_name = $4, password_hash = $5,
		    profile_picture = $6, phone_number = $7, date_of_birth = $8,
		    is_active = $9
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.FullName,
		account.PasswordHash,
		account.ProfilePicture,
		account.PhoneNumber,
		account.DateOfBirth,
		account.Active,
	)
	return translateConstraint(err)
}

func (r *PgAccountRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE accounts SET last_login_at = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *PgAccountRepository) SetFederatedUID(ctx context.Context, id, uid, profilePicture string) error {
	const query = `
		UPDATE accounts
		SET federated_uid = $2,
		    profile_picture = CASE WHEN profile_picture = '' THEN $3 ELSE profile_picture END
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, uid, profilePicture)
	return translateConstraint(err)
}

func (r *PgAccountRepository) ClearFederatedUID(ctx context.Context, id string) error {
	const query = `
		UPDATE accounts SET federated_uid = NULL, profile_picture = '' WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *PgAccountRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM accounts WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
