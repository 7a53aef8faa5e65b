package mocks

import (
	"context"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) List(ctx context.Context, userID, offeringID string, f repository.DocumentFilter) ([]model.Document, error) {
	args := m.Called(ctx, userID, offeringID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Presign(ctx context.Context, userID, offeringID string, req service.PresignRequest) (*service.PresignResult, error) {
	args := m.Called(ctx, userID, offeringID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PresignResult), args.Error(1)
}

func (m *MockDocumentService) Confirm(ctx context.Context, userID, offeringID string, req service.ConfirmRequest) (*model.Document, error) {
	args := m.Called(ctx, userID, offeringID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, userID, documentID string, req service.UpdateRequest) (*model.Document, error) {
	args := m.Called(ctx, userID, documentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, userID, documentID string) error {
	args := m.Called(ctx, userID, documentID)
	return args.Error(0)
}

func (m *MockDocumentService) ViewURL(ctx context.Context, userID, documentID string) (*service.SignedURLResult, error) {
	args := m.Called(ctx, userID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SignedURLResult), args.Error(1)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, userID, documentID string) (*service.SignedURLResult, error) {
	args := m.Called(ctx, userID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SignedURLResult), args.Error(1)
}

func (m *MockDocumentService) Download(ctx context.Context, userID, documentID string) (*service.DownloadResult, error) {
	args := m.Called(ctx, userID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadResult), args.Error(1)
}

func (m *MockDocumentService) Migrate(ctx context.Context, userID, documentID string) (*model.Document, error) {
	args := m.Called(ctx, userID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
