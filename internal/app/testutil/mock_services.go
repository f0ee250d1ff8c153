package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"echoscript/internal/api/v1/dto"
	"echoscript/internal/app/converter/export"
)

// MockServices contains all mock services for testing
type MockServices struct {
	JobService     *MockJobService
	SessionService *MockSessionService
}

// NewMockServices creates a new instance of mock services
func NewMockServices(t *testing.T) *MockServices {
	return &MockServices{
		JobService:     NewMockJobService(t),
		SessionService: NewMockSessionService(t),
	}
}

// AssertExpectations checks every mock
func (ms *MockServices) AssertExpectations(t *testing.T) {
	ms.JobService.AssertExpectations(t)
	ms.SessionService.AssertExpectations(t)
}

// MockJobService is a mock implementation of services.JobService
type MockJobService struct {
	mock.Mock
}

func NewMockJobService(t *testing.T) *MockJobService {
	m := &MockJobService{}
	m.Test(t)
	return m
}

func (m *MockJobService) CreateJob(ctx context.Context, apiKey, fileName string, data []byte, contentType string) (*dto.JobResponse, error) {
	args := m.Called(ctx, apiKey, fileName, data, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JobResponse), args.Error(1)
}

func (m *MockJobService) ImportJob(ctx context.Context, apiKey, pageURL, fileName string) (*dto.JobResponse, error) {
	args := m.Called(ctx, apiKey, pageURL, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JobResponse), args.Error(1)
}

func (m *MockJobService) ListJobs(ctx context.Context, apiKey string) (*dto.JobListResponse, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JobListResponse), args.Error(1)
}

func (m *MockJobService) GetJob(ctx context.Context, apiKey, jobID string) (*dto.JobResponse, error) {
	args := m.Called(ctx, apiKey, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JobResponse), args.Error(1)
}

func (m *MockJobService) RetryJob(ctx context.Context, apiKey, jobID string) (*dto.JobResponse, error) {
	args := m.Called(ctx, apiKey, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JobResponse), args.Error(1)
}

func (m *MockJobService) DeleteJob(ctx context.Context, apiKey, jobID string) error {
	args := m.Called(ctx, apiKey, jobID)
	return args.Error(0)
}

func (m *MockJobService) ExportJob(ctx context.Context, apiKey, jobID string, format export.Format) ([]byte, error) {
	args := m.Called(ctx, apiKey, jobID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockJobService) GetAudio(ctx context.Context, apiKey, jobID string) ([]byte, error) {
	args := m.Called(ctx, apiKey, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockSessionService is a mock implementation of services.SessionService
type MockSessionService struct {
	mock.Mock
}

func NewMockSessionService(t *testing.T) *MockSessionService {
	m := &MockSessionService{}
	m.Test(t)
	return m
}

func (m *MockSessionService) OpenSession(ctx context.Context, apiKey string) (*dto.SessionResponse, error) {
	args := m.Called(ctx, apiKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}
