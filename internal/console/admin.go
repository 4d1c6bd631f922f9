package console

import (
	"context"
	"errors"
	"strings"
	"time"

	"chapak/internal/api"
	"chapak/internal/booking"
	"chapak/internal/worker"
)

func (c *Console) showDashboard(ctx context.Context) {
	stats, err := c.client.DashboardStats(ctx)
	if err != nil {
		c.printf("Could not load dashboard.\n")
		c.logger.Error().Err(err).Msg("dashboard fetch failed")
		return
	}

	c.printf("\n--- Today ---\n")
	c.printf("Bookings: %d  Tickets: %d  Checked in: %d  Revenue: %d\n",
		stats.Today.Bookings, stats.Today.Tickets, stats.Today.Verified, stats.Today.Revenue)
	c.printf("--- This month ---\n")
	c.printf("Bookings: %d  Revenue: %d\n", stats.Month.Bookings, stats.Month.Revenue)
}

func (c *Console) lookupBooking(ctx context.Context) {
	id, err := c.readLine("Booking ID: ")
	if err != nil {
		return
	}

	b, err := c.client.GetBooking(ctx, strings.TrimSpace(id))
	if err != nil {
		var domainErr *api.DomainError
		if errors.As(err, &domainErr) {
			c.printf("%s\n", domainErr.Message)
		} else {
			c.printf("Lookup failed.\n")
			c.logger.Error().Err(err).Msg("booking lookup failed")
		}
		return
	}

	c.printf("\n%s | %s | adults %d, kids %d\n",
		b.BookingID, b.VisitDate.Format("2006-01-02"), b.Tickets.Adult, b.Tickets.Kids)
	c.printf("Customer: %s (%s)\n", b.Customer.Name, b.Customer.Mobile)
	c.printf("Amount: %d  Payment: %s  Checked in: %v\n",
		b.Pricing.FinalAmount, b.Payment.Status, b.Verified)
}

func (c *Console) showOffers(ctx context.Context) {
	offers, err := c.client.ActiveOffers(ctx)
	if err != nil {
		c.printf("Could not load offers.\n")
		c.logger.Error().Err(err).Msg("offers fetch failed")
	} else if len(offers) == 0 {
		c.printf("\nNo active offers.\n")
	} else {
		c.printf("\nActive offers:\n")
		for _, offer := range offers {
			c.printf("  %s: %d off\n", offer.Name, offer.Discount)
		}
	}

	tiers, err := c.client.PriceTable(ctx)
	if err != nil {
		c.printf("Could not load price table.\n")
		c.logger.Error().Err(err).Msg("price table fetch failed")
		return
	}
	c.printf("Prices:\n")
	for _, tier := range tiers {
		c.printf("  %-8s adult %d / kids %d\n", tier.Type, tier.AdultPrice, tier.KidsPrice)
	}

	dates, err := c.client.SpecialDates(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("special dates fetch failed")
		return
	}
	if len(dates) == 0 {
		return
	}
	c.printf("Special dates:\n")
	for _, d := range dates {
		label := "special price"
		if d.Type == "CLOSED" {
			label = "closed"
		}
		c.printf("  %s %s (%s)", d.Date.Format("2006-01-02"), d.Name, label)
		if d.PriceOverride != nil {
			c.printf(" adult %d / kids %d", d.PriceOverride.AdultPrice, d.PriceOverride.KidsPrice)
		}
		c.printf("\n")
	}
}

// runExport queues an Excel export and waits for the file.
func (c *Console) runExport(ctx context.Context) {
	if c.exports == nil {
		c.printf("Exports are not configured.\n")
		return
	}

	dateInput, err := c.readLine("Visit date filter (YYYY-MM-DD, empty for all): ")
	if err != nil {
		return
	}

	req := worker.ExportRequest{Result: make(chan worker.ExportResult, 1)}
	if strings.TrimSpace(dateInput) != "" {
		date, parseErr := booking.ParseDate(dateInput)
		if parseErr != nil {
			c.printf("Invalid date, expected YYYY-MM-DD\n")
			return
		}
		req.Date = date
	}

	if err := c.exports.Enqueue(req); err != nil {
		c.printf("Export queue is busy, try again later.\n")
		return
	}

	c.printf("Exporting...\n")
	select {
	case res := <-req.Result:
		if res.Err != nil {
			c.printf("Export failed: %v\n", res.Err)
			return
		}
		c.printf("Saved: %s\n", res.FilePath)
	case <-time.After(2 * time.Minute):
		c.printf("Export is taking long; it will land in %s when done.\n", c.config.Exports.Path)
	case <-ctx.Done():
	}
}
