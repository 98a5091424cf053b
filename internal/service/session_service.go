package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"medportal/internal/domain"
	"medportal/internal/repository"
)

// SessionService emite y valida tokens de sesion firmados. Cada token lleva
// un jti registrado en el store, por lo que terminar una sesion lo revoca
// de inmediato aunque el token siga sin expirar.
type SessionService struct {
	secret      []byte
	sessionTTL  time.Duration
	rememberTTL time.Duration
	issuer      string
	store       SessionTokenStore
	accounts    repository.AccountRepository
}

// SessionClaims son los claims embebidos en el token de sesion.
type SessionClaims struct {
	AccountID string `json:"aid"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

var (
	ErrSessionInvalid = errors.New("session invalid")
	ErrSessionExpired = errors.New("session expired")
)

func NewSessionService(secret string, sessionTTL, rememberTTL time.Duration, store SessionTokenStore, accounts repository.AccountRepository) *SessionService {
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	if rememberTTL <= 0 {
		rememberTTL = 30 * 24 * time.Hour
	}
	if store == nil {
		store = NewMemorySessionTokenStore()
	}
	return &SessionService{
		secret:      []byte(secret),
		sessionTTL:  sessionTTL,
		rememberTTL: rememberTTL,
		issuer:      "medportal",
		store:       store,
		accounts:    accounts,
	}
}

// TTL devuelve la vigencia que corresponde al flag remember.
func (s *SessionService) TTL(remember bool) time.Duration {
	if remember {
		return s.rememberTTL
	}
	return s.sessionTTL
}

// Establish convierte una cuenta resuelta en una sesion autenticada.
// Estampa last_login_at antes de emitir el token.
func (s *SessionService) Establish(ctx context.Context, account domain.Account, remember bool) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSessionInvalid
	}
	if !account.Active {
		return "", ErrAccountInactive
	}

	now := time.Now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return "", err
	}

	ttl := s.TTL(remember)
	jti := uuid.NewString()
	claims := SessionClaims{
		AccountID: account.ID,
		Username:  account.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.issuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	if err := s.store.Store(jti, account.ID, ttl); err != nil {
		return "", err
	}
	return signed, nil
}

// Terminate revoca la sesion. Siempre tiene exito, incluso con tokens
// invalidos o ya revocados.
func (s *SessionService) Terminate(token string) {
	claims, err := s.parse(token)
	if err != nil || claims.ID == "" {
		return
	}
	_ = s.store.Revoke(claims.ID)
}

// CurrentAccount resuelve el token de sesion a la cuenta autenticada.
func (s *SessionService) CurrentAccount(ctx context.Context, token string) (domain.Account, error) {
	claims, err := s.parse(token)
	if err != nil {
		return domain.Account{}, err
	}
	if claims.AccountID == "" || claims.ID == "" || claims.Issuer != s.issuer {
		return domain.Account{}, ErrSessionInvalid
	}
	ok, err := s.store.Exists(claims.ID)
	if err != nil || !ok {
		return domain.Account{}, ErrSessionInvalid
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		return domain.Account{}, ErrSessionInvalid
	}
	if !account.Active {
		return domain.Account{}, ErrSessionInvalid
	}
	return account, nil
}

func (s *SessionService) parse(token string) (SessionClaims, error) {
	if len(s.secret) == 0 || strings.TrimSpace(token) == "" {
		return SessionClaims{}, ErrSessionInvalid
	}
	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(token, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrSessionExpired
		}
		return SessionClaims{}, ErrSessionInvalid
	}
	return claims, nil
}
