package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"chapak/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct {
	err error
}

func (f *failingRepo) GetState(ctx context.Context, sessionID string) (*models.FlowSnapshot, error) {
	return nil, f.err
}

func (f *failingRepo) SetState(ctx context.Context, snapshot *models.FlowSnapshot) error {
	return f.err
}

func (f *failingRepo) ClearState(ctx context.Context, sessionID string) error {
	return f.err
}

func TestFailoverStateRepository(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	t.Run("PrimaryHealthy", func(t *testing.T) {
		primary := NewMemoryStateRepository(time.Hour)
		fallback := NewMemoryStateRepository(time.Hour)
		repo := NewFailoverStateRepository(primary, fallback, &logger)

		snapshot := &models.FlowSnapshot{SessionID: "sess-1", CurrentStep: models.StepCollectingTickets}
		require.NoError(t, repo.SetState(ctx, snapshot))

		got, err := repo.GetState(ctx, "sess-1")
		require.NoError(t, err)
		require.NotNil(t, got)

		// Written to primary, not fallback.
		fromPrimary, _ := primary.GetState(ctx, "sess-1")
		assert.NotNil(t, fromPrimary)
		fromFallback, _ := fallback.GetState(ctx, "sess-1")
		assert.Nil(t, fromFallback)
	})

	t.Run("FallsBackOnPrimaryError", func(t *testing.T) {
		primary := &failingRepo{err: errors.New("redis down")}
		fallback := NewMemoryStateRepository(time.Hour)
		repo := NewFailoverStateRepository(primary, fallback, &logger)

		snapshot := &models.FlowSnapshot{SessionID: "sess-2", CurrentStep: models.StepCollectingCustomer}
		require.NoError(t, repo.SetState(ctx, snapshot))

		got, err := repo.GetState(ctx, "sess-2")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.StepCollectingCustomer, got.CurrentStep)
	})

	t.Run("StaysOnFallbackWhileDown", func(t *testing.T) {
		primary := &failingRepo{err: errors.New("redis down")}
		fallback := NewMemoryStateRepository(time.Hour)
		repo := NewFailoverStateRepository(primary, fallback, &logger)

		// First call marks the primary down.
		_, err := repo.GetState(ctx, "sess-3")
		require.NoError(t, err)
		assert.True(t, repo.isDown.Load())

		require.NoError(t, repo.ClearState(ctx, "sess-3"))
	})
}
