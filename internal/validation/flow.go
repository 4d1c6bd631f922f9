package validation

import (
	"context"
	"strings"
	"sync"

	"chapak/internal/domain"
	"chapak/internal/events"
	"chapak/internal/metrics"
	"chapak/internal/models"

	"github.com/rs/zerolog"
)

const (
	StateIdle       = "idle"
	StateValidating = "validating"
	StateResolved   = "resolved"
)

// Backend is the slice of the ticketing API the check-in flow talks to.
type Backend interface {
	ValidateTicket(ctx context.Context, bookingID string) (*models.ValidationResult, error)
	TodayStats(ctx context.Context) (*models.TodayStats, error)
}

// Flow is the ticket check-in state machine: Idle -> Validating ->
// Resolved, re-enterable on the next attempt. The Manual/Scan input mode is
// orthogonal to the validation state; the camera stream is acquired on entry
// to Scan and released on every exit path, teardown included.
type Flow struct {
	mu      sync.Mutex
	backend Backend
	camera  Camera
	bus     domain.EventPublisher
	logger  *zerolog.Logger

	state  string
	mode   string
	stream Stream
	result *models.ValidationResult
	stats  models.TodayStats
	errMsg string
}

func NewFlow(backend Backend, camera Camera, bus domain.EventPublisher, logger *zerolog.Logger) *Flow {
	return &Flow{
		backend: backend,
		camera:  camera,
		bus:     bus,
		logger:  logger,
		state:   StateIdle,
		mode:    models.ModeManual,
	}
}

func (f *Flow) State() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Mode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Result returns the last resolved attempt, nil while Idle/Validating.
func (f *Flow) Result() *models.ValidationResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

func (f *Flow) Stats() models.TodayStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *Flow) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// Enter fetches today's counters. Called once on flow entry regardless of
// mode; a failure is logged, not fatal.
func (f *Flow) Enter(ctx context.Context) {
	if err := f.RefreshStats(ctx); err != nil {
		f.logger.Warn().Err(err).Msg("failed to fetch today's validation stats")
	}
}

// RefreshStats re-reads today's counters from the backend.
func (f *Flow) RefreshStats(ctx context.Context) error {
	stats, err := f.backend.TodayStats(ctx)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.stats = *stats
	f.mu.Unlock()
	return nil
}

// SetMode switches the capture mechanism. Any held stream is released before
// the switch; entering Scan acquires a fresh one. Acquisition failure leaves
// the user in Scan mode without a live preview.
func (f *Flow) SetMode(ctx context.Context, mode string) {
	f.mu.Lock()
	f.releaseLocked()
	f.mode = mode
	f.mu.Unlock()

	if mode != models.ModeScan {
		return
	}

	stream, err := f.camera.Acquire(ctx)
	if err != nil {
		// A partially-started stream still needs closing.
		if stream != nil {
			_ = stream.Close()
		}
		f.mu.Lock()
		f.errMsg = "Camera access denied"
		f.mu.Unlock()
		f.logger.Warn().Err(err).Msg("camera acquisition failed")
		return
	}

	f.mu.Lock()
	if f.mode != models.ModeScan {
		// Mode changed while acquiring; release immediately.
		f.mu.Unlock()
		_ = stream.Close()
		return
	}
	f.stream = stream
	f.errMsg = ""
	f.mu.Unlock()
}

// Close releases the camera on flow teardown.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releaseLocked()
}

func (f *Flow) releaseLocked() {
	if f.stream != nil {
		_ = f.stream.Close()
		f.stream = nil
	}
}

// HasStream reports whether a live preview is active.
func (f *Flow) HasStream() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stream != nil
}

// Validate submits a booking identifier for check-in. Blank input and
// re-submission while Validating are no-ops. On a transport failure the flow
// returns to Idle with a generic message and no stale result. A valid result
// refreshes today's counters: the server has mutated them.
func (f *Flow) Validate(ctx context.Context, bookingIDInput string) error {
	bookingID := strings.TrimSpace(bookingIDInput)
	if bookingID == "" {
		return nil
	}

	f.mu.Lock()
	if f.state == StateValidating {
		f.mu.Unlock()
		return nil
	}
	f.state = StateValidating
	f.result = nil
	f.errMsg = ""
	f.mu.Unlock()

	result, err := f.backend.ValidateTicket(ctx, bookingID)
	if err != nil {
		f.mu.Lock()
		f.state = StateIdle
		f.errMsg = "Validation failed"
		f.mu.Unlock()
		metrics.IncValidation("error")
		f.logger.Error().Err(err).Str("booking_id", bookingID).Msg("validation call failed")
		return err
	}

	f.mu.Lock()
	f.result = result
	f.state = StateResolved
	f.mu.Unlock()

	if result.Valid {
		metrics.IncValidation("valid")
	} else {
		metrics.IncValidation("invalid")
	}
	f.publishResult(bookingID, result)

	if result.Valid {
		if err := f.RefreshStats(ctx); err != nil {
			f.logger.Warn().Err(err).Msg("failed to refresh stats after validation")
		}
	}
	return nil
}

func (f *Flow) publishResult(bookingID string, result *models.ValidationResult) {
	if f.bus == nil {
		return
	}
	payload := events.ValidationEventPayload{
		BookingID: bookingID,
		Valid:     result.Valid,
		Message:   result.Message,
	}
	if err := f.bus.PublishJSON(events.EventTicketValidated, payload); err != nil {
		f.logger.Error().Err(err).Str("booking_id", bookingID).Msg("publish event error")
	}
}
