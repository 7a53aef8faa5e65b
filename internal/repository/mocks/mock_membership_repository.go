package mocks

import (
	"context"

	"docvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) OfferingExists(ctx context.Context, offeringID string) (bool, error) {
	args := m.Called(ctx, offeringID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) RoleForOffering(ctx context.Context, userID, offeringID string) (model.Role, error) {
	args := m.Called(ctx, userID, offeringID)
	return args.Get(0).(model.Role), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Insert(ctx context.Context, e *model.AuditEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) UserIDForToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}
