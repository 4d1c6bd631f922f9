package domain

import (
	"context"

	"chapak/internal/models"
)

// StateRepository persists booking-flow snapshots keyed by session ID.
type StateRepository interface {
	GetState(ctx context.Context, sessionID string) (*models.FlowSnapshot, error)
	SetState(ctx context.Context, snapshot *models.FlowSnapshot) error
	ClearState(ctx context.Context, sessionID string) error
}

// StateManager is the service-level view over a StateRepository.
type StateManager interface {
	GetSessionState(ctx context.Context, sessionID string) (*models.FlowSnapshot, error)
	SetSessionState(ctx context.Context, sessionID string, step string, data map[string]interface{}) error
	ClearSessionState(ctx context.Context, sessionID string) error
}

// EventPublisher pushes domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
