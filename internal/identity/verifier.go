package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medportal/internal/domain"
)

// Verifier define la interfaz para verificar tokens del proveedor federado.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (domain.IdentityClaim, error)
}

var (
	// ErrInvalidToken indica que el proveedor rechazo el token o la
	// respuesta no contiene una identidad usable.
	ErrInvalidToken = errors.New("federated token invalid")
	// ErrUnavailable indica un fallo de transporte o timeout contra el
	// proveedor; no dice nada sobre la validez del token.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// HTTPVerifier verifica tokens contra el endpoint accounts:lookup del
// proveedor de identidad. Es un paso puro de verificacion: nunca crea ni
// modifica cuentas.
type HTTPVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPVerifier construye un verificador apuntando al endpoint de lookup.
func NewHTTPVerifier(baseURL, apiKey string) *HTTPVerifier {
	if baseURL == "" {
		baseURL = "https://identitytoolkit.googleapis.com/v1"
	}
	return &HTTPVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		DisplayName   string `json:"displayName"`
		PhotoURL      string `json:"photoUrl"`
		EmailVerified bool   `json:"emailVerified"`
	} `json:"users"`
}

func (v *HTTPVerifier) Verify(ctx context.Context, idToken string) (domain.IdentityClaim, error) {
	if strings.TrimSpace(idToken) == "" {
		return domain.IdentityClaim{}, ErrInvalidToken
	}

	bodyBytes, err := json.Marshal(lookupRequest{IDToken: idToken})
	if err != nil {
		return domain.IdentityClaim{}, fmt.Errorf("marshal request: %w", err)
	}

	url := v.baseURL + "/accounts:lookup?key=" + v.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.IdentityClaim{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return domain.IdentityClaim{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.IdentityClaim{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return domain.IdentityClaim{}, ErrInvalidToken
	}

	var lr lookupResponse
	if err := json.Unmarshal(respBody, &lr); err != nil {
		return domain.IdentityClaim{}, ErrInvalidToken
	}
	if len(lr.Users) == 0 || lr.Users[0].LocalID == "" {
		return domain.IdentityClaim{}, ErrInvalidToken
	}

	u := lr.Users[0]
	// La afirmacion email_verified del proveedor se toma tal cual, sin
	// re-verificacion local.
	return domain.IdentityClaim{
		Subject:       u.LocalID,
		Email:         strings.ToLower(strings.TrimSpace(u.Email)),
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoURL,
		EmailVerified: u.EmailVerified,
	}, nil
}
