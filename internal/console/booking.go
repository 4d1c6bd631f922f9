package console

import (
	"context"
	"errors"
	"strings"

	"chapak/internal/api"
	"chapak/internal/booking"
	"chapak/internal/models"
)

// draftSessionKey is the single resumable booking draft of this console.
const draftSessionKey = "booking_draft"

// runBooking drives the checkout flow: tickets, customer details, payment.
func (c *Console) runBooking(ctx context.Context) {
	flow := booking.NewFlow(c.client, c.eventBus, c.logger)
	c.maybeResume(ctx, flow)

	for {
		var done bool
		var err error
		switch flow.Step() {
		case models.StepCollectingTickets:
			err = c.ticketStep(ctx, flow)
		case models.StepCollectingCustomer:
			err = c.customerStep(ctx, flow)
		case models.StepConfirmed:
			err = c.paymentStep(ctx, flow)
			done = true
		}
		if err != nil || done {
			return
		}
	}
}

func (c *Console) maybeResume(ctx context.Context, flow *booking.Flow) {
	snap, err := c.stateService.GetSessionState(ctx, draftSessionKey)
	if err != nil || snap == nil {
		return
	}
	answer, err := c.readLine("Resume saved draft? [y/N]: ")
	if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
		_ = c.stateService.ClearSessionState(ctx, draftSessionKey)
		return
	}
	if req := flow.Restore(snap); req != nil {
		flow.Resolve(ctx, req)
	}
}

func (c *Console) saveDraft(ctx context.Context, flow *booking.Flow) {
	snap := flow.Snapshot()
	if err := c.stateService.SetSessionState(ctx, draftSessionKey, snap.CurrentStep, snap.TempData); err != nil {
		c.logger.Warn().Err(err).Msg("failed to save booking draft")
	}
}

// ticketStep collects date and ticket counts, repricing after every change.
func (c *Console) ticketStep(ctx context.Context, flow *booking.Flow) error {
	for {
		c.printTicketSummary(flow)
		input, err := c.readLine("tickets [d <date> | a <n> | k <n> | next]: ")
		if err != nil {
			c.saveDraft(ctx, flow)
			return err
		}

		field, value, _ := strings.Cut(strings.TrimSpace(input), " ")
		var req *booking.QuoteRequest
		switch field {
		case "d", "date":
			date, err := booking.ParseDate(value)
			if err != nil {
				c.printf("Invalid date, expected YYYY-MM-DD\n")
				continue
			}
			req = flow.SetVisitDate(date)
		case "a", "adults":
			req = flow.SetAdultCount(booking.ParseCount(value))
		case "k", "kids":
			req = flow.SetKidCount(booking.ParseCount(value))
		case "n", "next":
			if !flow.Advance() {
				c.printf("Select a valid future date and at least one ticket first.\n")
				continue
			}
			c.saveDraft(ctx, flow)
			return nil
		case "":
			continue
		default:
			c.printf("Unknown field: %s\n", field)
			continue
		}

		flow.Resolve(ctx, req)
		c.saveDraft(ctx, flow)
		if msg := flow.ErrorMessage(); msg != "" {
			c.printf("! %s\n", msg)
		}
	}
}

func (c *Console) printTicketSummary(flow *booking.Flow) {
	date := "-"
	if !flow.VisitDate().IsZero() {
		date = flow.VisitDate().Format("2006-01-02")
	}
	c.printf("\nVisit date: %s  Adults: %d  Kids: %d\n", date, flow.Adults(), flow.Kids())

	quote := flow.Quote()
	if quote == nil {
		return
	}
	c.printf("Price: %d (adults %d x %d + kids %d x %d, %s)\n",
		quote.FinalAmount,
		flow.Adults(), quote.Pricing.AdultPrice,
		flow.Kids(), quote.Pricing.KidsPrice,
		quote.Pricing.Type)
	if quote.Discount > 0 {
		c.printf("Discount applied: -%d (%s)\n", quote.Discount, quote.Offer)
	}
	if quote.Fallback {
		c.printf("(estimate: pricing service unavailable, final amount set at checkout)\n")
	}
}

// customerStep collects contact details and submits the booking.
func (c *Console) customerStep(ctx context.Context, flow *booking.Flow) error {
	c.printf("\nCustomer details (\"b\" to go back to tickets)\n")

	name, err := c.readLine("Name: ")
	if err != nil {
		c.saveDraft(ctx, flow)
		return err
	}
	if strings.TrimSpace(name) == "b" {
		flow.Retreat()
		c.saveDraft(ctx, flow)
		return nil
	}
	email, err := c.readLine("Email: ")
	if err != nil {
		c.saveDraft(ctx, flow)
		return err
	}
	mobile, err := c.readLine("Mobile: ")
	if err != nil {
		c.saveDraft(ctx, flow)
		return err
	}

	customer := models.Customer{
		Name:   strings.TrimSpace(name),
		Email:  strings.TrimSpace(email),
		Mobile: strings.TrimSpace(mobile),
	}
	flow.SetCustomer(customer)
	c.saveDraft(ctx, flow)

	if err := flow.Submit(ctx, customer); err != nil {
		c.printf("! %s\n", flow.ErrorMessage())
		var domainErr *api.DomainError
		if errors.Is(err, booking.ErrNoTickets) || errors.As(err, &domainErr) {
			// Unrecoverable from this step; back to tickets.
			flow.Retreat()
		}
		return nil
	}

	// The draft is done; only the confirmed booking remains.
	_ = c.stateService.ClearSessionState(ctx, draftSessionKey)
	return nil
}

// paymentStep shows the confirmed booking and settles the payment.
func (c *Console) paymentStep(ctx context.Context, flow *booking.Flow) error {
	b := flow.Booking()
	if b == nil {
		return booking.ErrNoBooking
	}

	c.printf("\nBooking confirmed: %s\n", b.BookingID)
	c.printf("Amount due: %d\n", b.Pricing.FinalAmount)
	if b.QRCode != "" {
		c.printf("QR code: %s\n", b.QRCode)
	}

	answer, err := c.readLine("Confirm payment now? [y/N]: ")
	if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
		if reportErr := c.client.ReportPaymentFailed(ctx, b.BookingID); reportErr != nil {
			c.logger.Warn().Err(reportErr).Str("booking_id", b.BookingID).Msg("failed to report aborted payment")
		}
		c.printf("Payment not completed; booking %s stays pending.\n", b.BookingID)
		return err
	}

	if err := flow.ConfirmPayment(ctx); err != nil {
		c.printf("! %s\n", flow.ErrorMessage())
		return nil
	}
	c.printf("Payment received. Booking %s is paid.\n", b.BookingID)
	return nil
}
