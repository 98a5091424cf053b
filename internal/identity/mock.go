package identity

import (
	"context"

	"medportal/internal/domain"
)

// MockVerifier devuelve claims predefinidos por token. Util para tests y
// desarrollo sin proveedor real.
type MockVerifier struct {
	Claims map[string]domain.IdentityClaim
	Err    error
}

func (m *MockVerifier) Verify(_ context.Context, idToken string) (domain.IdentityClaim, error) {
	if m.Err != nil {
		return domain.IdentityClaim{}, m.Err
	}
	claim, ok := m.Claims[idToken]
	if !ok {
		return domain.IdentityClaim{}, ErrInvalidToken
	}
	return claim, nil
}
