package service

import (
	"context"

	"chapak/internal/domain"
	"chapak/internal/models"

	"github.com/rs/zerolog"
)

// StateService persists booking-flow snapshots so an interrupted console
// session can resume its draft.
type StateService struct {
	stateRepo domain.StateRepository
	logger    *zerolog.Logger
}

func NewStateService(stateRepo domain.StateRepository, logger *zerolog.Logger) *StateService {
	return &StateService{
		stateRepo: stateRepo,
		logger:    logger,
	}
}

func (s *StateService) GetSessionState(ctx context.Context, sessionID string) (*models.FlowSnapshot, error) {
	snapshot, err := s.stateRepo.GetState(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get session state")
		return nil, err
	}

	return snapshot, nil
}

func (s *StateService) SetSessionState(ctx context.Context, sessionID string, step string, data map[string]interface{}) error {
	snapshot := &models.FlowSnapshot{
		SessionID:   sessionID,
		CurrentStep: step,
		TempData:    data,
	}
	return s.stateRepo.SetState(ctx, snapshot)
}

func (s *StateService) ClearSessionState(ctx context.Context, sessionID string) error {
	return s.stateRepo.ClearState(ctx, sessionID)
}
