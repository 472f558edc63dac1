package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/blogem/microsoft-login/models"
)

// MockUserProvisioner is a testify mock of services.UserProvisioner
type MockUserProvisioner struct {
	mock.Mock
}

// NewMockUserProvisioner creates a mock that asserts its expectations on cleanup
func NewMockUserProvisioner(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserProvisioner {
	m := &MockUserProvisioner{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserProvisioner) CheckIfUserExists(ctx context.Context, pluginID, externalID string) (bool, error) {
	args := m.Called(ctx, pluginID, externalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserProvisioner) Authenticate(ctx context.Context, req *models.AuthenticateRequest) (*models.AuthenticateResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*models.AuthenticateResult)
	return result, args.Error(1)
}
