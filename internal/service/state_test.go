package service

import (
	"context"
	"errors"
	"testing"

	"chapak/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) GetState(ctx context.Context, sessionID string) (*models.FlowSnapshot, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlowSnapshot), args.Error(1)
}

func (m *MockStateRepository) SetState(ctx context.Context, snapshot *models.FlowSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockStateRepository) ClearState(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func TestStateService_GetSessionState(t *testing.T) {
	mockRepo := new(MockStateRepository)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, &logger)
	ctx := context.Background()
	sessionID := "booking_draft"

	t.Run("Success", func(t *testing.T) {
		expected := &models.FlowSnapshot{SessionID: sessionID, CurrentStep: models.StepCollectingTickets}
		mockRepo.On("GetState", ctx, sessionID).Return(expected, nil).Once()

		snapshot, err := s.GetSessionState(ctx, sessionID)
		assert.NoError(t, err)
		assert.Equal(t, expected, snapshot)
	})

	t.Run("Error", func(t *testing.T) {
		mockRepo.On("GetState", ctx, sessionID).Return(nil, errors.New("redis error")).Once()

		snapshot, err := s.GetSessionState(ctx, sessionID)
		assert.Error(t, err)
		assert.Nil(t, snapshot)
	})
}

func TestStateService_SetSessionState(t *testing.T) {
	mockRepo := new(MockStateRepository)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, &logger)
	ctx := context.Background()
	sessionID := "booking_draft"

	mockRepo.On("SetState", ctx, mock.MatchedBy(func(snapshot *models.FlowSnapshot) bool {
		return snapshot.SessionID == sessionID &&
			snapshot.CurrentStep == models.StepCollectingCustomer &&
			snapshot.TempData["adults"] == 2
	})).Return(nil).Once()

	err := s.SetSessionState(ctx, sessionID, models.StepCollectingCustomer, map[string]interface{}{"adults": 2})
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestStateService_ClearSessionState(t *testing.T) {
	mockRepo := new(MockStateRepository)
	logger := zerolog.Nop()
	s := NewStateService(mockRepo, &logger)
	ctx := context.Background()

	mockRepo.On("ClearState", ctx, "booking_draft").Return(nil).Once()

	assert.NoError(t, s.ClearSessionState(ctx, "booking_draft"))
	mockRepo.AssertExpectations(t)
}
