package booking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"chapak/internal/api"
	"chapak/internal/domain"
	"chapak/internal/events"
	"chapak/internal/metrics"
	"chapak/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Backend is the slice of the ticketing API the checkout flow talks to.
type Backend interface {
	CalculatePricing(ctx context.Context, visitDate time.Time, adults, kids int) (*api.QuoteOutcome, error)
	CreateBooking(ctx context.Context, req api.CreateBookingRequest) (*models.Booking, error)
	ConfirmPayment(ctx context.Context, bookingID string, ref api.PaymentReference) (*models.Booking, error)
}

// Flow is the booking checkout state machine:
//
//	CollectingTickets -> CollectingCustomer -> Confirmed
//
// Ticket/date setters return a generation-stamped QuoteRequest when the draft
// qualifies for repricing; Resolve executes it and applies the outcome unless
// a newer request has superseded it (last-write-wins).
type Flow struct {
	mu      sync.Mutex
	backend Backend
	bus     domain.EventPublisher
	logger  *zerolog.Logger
	now     func() time.Time

	sessionID  string
	step       string
	visitDate  time.Time
	adults     int
	kids       int
	customer   models.Customer
	quote      *models.PriceQuote
	booking    *models.Booking
	errMsg     string
	generation uint64
}

// NewFlow starts an empty draft. Mirrors the public form's initial state:
// one adult, no kids, no date.
func NewFlow(backend Backend, bus domain.EventPublisher, logger *zerolog.Logger) *Flow {
	return &Flow{
		backend:   backend,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
		sessionID: uuid.NewString(),
		step:      models.StepCollectingTickets,
		adults:    1,
	}
}

func (f *Flow) SessionID() string { return f.sessionID }

func (f *Flow) Step() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Adults() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.adults
}

func (f *Flow) Kids() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.kids
}

func (f *Flow) VisitDate() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visitDate
}

// Quote returns the current price preview, nil when the draft does not
// qualify for one.
func (f *Flow) Quote() *models.PriceQuote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quote
}

// Booking returns the server-confirmed record once the flow reaches
// Confirmed.
func (f *Flow) Booking() *models.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.booking
}

// ErrorMessage returns the user-facing error banner, "" when clear.
func (f *Flow) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// ParseDate parses a YYYY-MM-DD visit date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// ParseCount coerces numeric input to a count; anything unparseable is 0.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// SetVisitDate updates the visit date and returns a QuoteRequest when the
// draft qualifies for repricing, nil otherwise (quote cleared).
func (f *Flow) SetVisitDate(date time.Time) *QuoteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visitDate = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return f.repriceLocked()
}

// SetAdultCount stores max(0, n) and triggers repricing like SetVisitDate.
func (f *Flow) SetAdultCount(n int) *QuoteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adults = max(0, n)
	return f.repriceLocked()
}

// SetKidCount stores max(0, n) and triggers repricing like SetVisitDate.
func (f *Flow) SetKidCount(n int) *QuoteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kids = max(0, n)
	return f.repriceLocked()
}

// SetCustomer stores the step-2 contact details. No repricing.
func (f *Flow) SetCustomer(c models.Customer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customer = c
}

func (f *Flow) dateValidLocked() bool {
	if f.visitDate.IsZero() {
		return false
	}
	now := f.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !f.visitDate.Before(today)
}

func (f *Flow) repriceLocked() *QuoteRequest {
	if f.dateValidLocked() && f.adults+f.kids > 0 {
		f.generation++
		return &QuoteRequest{
			Generation: f.generation,
			Date:       f.visitDate,
			Adults:     f.adults,
			Kids:       f.kids,
		}
	}
	f.quote = nil
	return nil
}

// Advance moves CollectingTickets -> CollectingCustomer. A no-op (returns
// false) unless a quote exists and at least one ticket is selected.
func (f *Flow) Advance() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != models.StepCollectingTickets {
		return false
	}
	if f.quote == nil || f.adults+f.kids == 0 {
		return false
	}
	f.step = models.StepCollectingCustomer
	return true
}

// Retreat moves CollectingCustomer -> CollectingTickets, preserving the
// ticket fields.
func (f *Flow) Retreat() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != models.StepCollectingCustomer {
		return false
	}
	f.step = models.StepCollectingTickets
	return true
}

// Submit validates the customer details and creates the booking. On success
// the flow transitions to Confirmed; on failure it stays in
// CollectingCustomer with a user-facing message.
func (f *Flow) Submit(ctx context.Context, customer models.Customer) error {
	f.mu.Lock()
	if f.step != models.StepCollectingCustomer {
		f.mu.Unlock()
		return ErrWrongStep
	}
	if f.adults+f.kids == 0 {
		f.errMsg = "Please select at least one ticket"
		f.mu.Unlock()
		return ErrNoTickets
	}
	if strings.TrimSpace(customer.Name) == "" || strings.TrimSpace(customer.Mobile) == "" {
		f.errMsg = "Please provide your name and mobile number"
		f.mu.Unlock()
		return ErrMissingCustomer
	}
	f.customer = customer
	req := api.CreateBookingRequest{
		VisitDate: f.visitDate.Format("2006-01-02"),
		Adults:    f.adults,
		Kids:      f.kids,
		Customer:  customer,
	}
	f.mu.Unlock()

	created, err := f.backend.CreateBooking(ctx, req)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		var domainErr *api.DomainError
		if errors.As(err, &domainErr) {
			f.errMsg = domainErr.Message
		} else {
			f.errMsg = "Failed to create booking"
		}
		f.logger.Error().Err(err).Str("session_id", f.sessionID).Msg("booking creation failed")
		return err
	}

	f.booking = created
	f.step = models.StepConfirmed
	f.errMsg = ""
	metrics.IncBookingCreated()
	f.publishBooking(events.EventBookingCreated, created)
	f.logger.Info().Str("booking_id", created.BookingID).Msg("booking created")
	return nil
}

// ConfirmPayment reports a successful payment with a client-generated
// reference pair. The booking is replaced only when the backend answers
// payment.status PAID; there is no automatic retry.
func (f *Flow) ConfirmPayment(ctx context.Context) error {
	f.mu.Lock()
	if f.booking == nil {
		f.mu.Unlock()
		return ErrNoBooking
	}
	bookingID := f.booking.BookingID
	f.mu.Unlock()

	updated, err := f.backend.ConfirmPayment(ctx, bookingID, NewPaymentReference())
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.errMsg = "Payment verification failed"
		f.logger.Error().Err(err).Str("booking_id", bookingID).Msg("payment confirmation failed")
		return err
	}
	if updated.Payment.Status != models.PaymentPaid {
		f.errMsg = "Payment verification failed"
		return errors.New("payment not confirmed: status " + updated.Payment.Status)
	}

	f.booking = updated
	f.errMsg = ""
	f.publishBooking(events.EventPaymentConfirmed, updated)
	f.logger.Info().Str("booking_id", bookingID).Msg("payment confirmed")
	return nil
}

// NewPaymentReference generates the idempotency-style transaction/payment
// pair sent with a payment confirmation.
func NewPaymentReference() api.PaymentReference {
	return api.PaymentReference{
		TransactionID: "TXN-" + uuid.NewString(),
		PaymentID:     "PAY-" + uuid.NewString(),
	}
}

func (f *Flow) publishBooking(eventType string, b *models.Booking) {
	if f.bus == nil {
		return
	}
	payload := events.BookingEventPayload{
		BookingID:     b.BookingID,
		VisitDate:     b.VisitDate,
		Adults:        b.Tickets.Adult,
		Kids:          b.Tickets.Kids,
		FinalAmount:   b.Pricing.FinalAmount,
		PaymentStatus: b.Payment.Status,
	}
	if err := f.bus.PublishJSON(eventType, payload); err != nil {
		f.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", b.BookingID).Msg("publish event error")
	}
}

// Snapshot captures the resumable part of the draft. The quote is ephemeral
// and deliberately not included; Restore reprices instead.
func (f *Flow) Snapshot() *models.FlowSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := &models.FlowSnapshot{
		SessionID:   f.sessionID,
		CurrentStep: f.step,
	}
	snap.Set("adults", f.adults)
	snap.Set("kids", f.kids)
	snap.Set("customer_name", f.customer.Name)
	snap.Set("customer_email", f.customer.Email)
	snap.Set("customer_mobile", f.customer.Mobile)
	if !f.visitDate.IsZero() {
		snap.Set("visit_date", f.visitDate.Format("2006-01-02"))
	}
	return snap
}

// Restore loads a snapshot into a fresh flow and returns a QuoteRequest when
// the restored draft qualifies for repricing. Confirmed drafts are not
// restorable; callers start a new flow instead.
func (f *Flow) Restore(snap *models.FlowSnapshot) *QuoteRequest {
	if snap == nil || snap.CurrentStep == models.StepConfirmed {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionID = snap.SessionID
	f.step = snap.CurrentStep
	if f.step == "" {
		f.step = models.StepCollectingTickets
	}
	f.adults = max(0, snap.GetInt("adults"))
	f.kids = max(0, snap.GetInt("kids"))
	f.customer = models.Customer{
		Name:   snap.GetString("customer_name"),
		Email:  snap.GetString("customer_email"),
		Mobile: snap.GetString("customer_mobile"),
	}
	f.visitDate = snap.GetTime("visit_date")
	return f.repriceLocked()
}
