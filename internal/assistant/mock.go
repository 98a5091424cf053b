package assistant

import "context"

// MockClient devuelve una respuesta fija. Util para tests.
type MockClient struct {
	Reply string
	Err   error
}

func (m *MockClient) Ask(_ context.Context, _ string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}
