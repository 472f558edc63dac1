package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/blogem/microsoft-login/authenticator"
)

// MockProvider is a testify mock of authenticator.Provider
type MockProvider struct {
	mock.Mock
}

// NewMockProvider creates a mock that asserts its expectations on cleanup
func NewMockProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockProvider {
	m := &MockProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockProvider) Name() string {
	return authenticator.MicrosoftProviderName
}

func (m *MockProvider) Scopes() []string {
	return authenticator.MicrosoftDefaultScopes()
}

func (m *MockProvider) GetAuthURL(state string) string {
	return "https://login.example.com/authorize?state=" + state
}

func (m *MockProvider) ExchangeCode(ctx context.Context, code string) (*authenticator.Token, error) {
	args := m.Called(ctx, code)
	token, _ := args.Get(0).(*authenticator.Token)
	return token, args.Error(1)
}

func (m *MockProvider) GetResourceOwner(ctx context.Context, token *authenticator.Token) (*authenticator.Profile, error) {
	args := m.Called(ctx, token)
	profile, _ := args.Get(0).(*authenticator.Profile)
	return profile, args.Error(1)
}

func (m *MockProvider) RequestEndpoint(ctx context.Context, token *authenticator.Token, method, path string) (map[string]interface{}, error) {
	args := m.Called(ctx, token, method, path)
	data, _ := args.Get(0).(map[string]interface{})
	return data, args.Error(1)
}
