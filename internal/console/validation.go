package console

import (
	"context"
	"strings"

	"chapak/internal/models"
	"chapak/internal/validation"
)

// runValidation drives the check-in desk: stats banner, manual entry or
// camera scan, one validation attempt per input.
func (c *Console) runValidation(ctx context.Context) {
	flow := validation.NewFlow(c.client, c.camera, c.eventBus, c.logger)
	defer flow.Close()

	flow.Enter(ctx)

	for {
		c.printStatsBanner(flow)
		input, err := c.readLine("check-in [booking id | mode | stats]: ")
		if err != nil {
			return
		}

		switch strings.TrimSpace(input) {
		case "":
			continue
		case "mode":
			c.toggleMode(ctx, flow)
			continue
		case "stats":
			if err := flow.RefreshStats(ctx); err != nil {
				c.printf("Could not refresh stats.\n")
			}
			continue
		}

		if err := flow.Validate(ctx, input); err != nil {
			c.printf("! %s\n", flow.ErrorMessage())
			continue
		}
		c.printResult(flow.Result())
	}
}

func (c *Console) toggleMode(ctx context.Context, flow *validation.Flow) {
	next := models.ModeScan
	if flow.Mode() == models.ModeScan {
		next = models.ModeManual
	}
	flow.SetMode(ctx, next)

	if next == models.ModeScan && !flow.HasStream() {
		c.printf("! %s\n", flow.ErrorMessage())
		c.printf("Scan mode active without camera; enter codes manually.\n")
		return
	}
	c.printf("Mode: %s\n", flow.Mode())
}

func (c *Console) printStatsBanner(flow *validation.Flow) {
	stats := flow.Stats()
	c.printf("\nToday: %d total / %d checked in / %d pending  [mode: %s]\n",
		stats.Total, stats.Verified, stats.Pending, flow.Mode())
}

func (c *Console) printResult(result *models.ValidationResult) {
	if result == nil {
		return
	}
	if result.Valid {
		c.printf("✅ %s\n", result.Message)
	} else {
		c.printf("❌ %s\n", result.Message)
	}
	if b := result.Booking; b != nil {
		c.printf("   %s | %s | adults %d, kids %d | %s\n",
			b.BookingID,
			b.VisitDate.Format("2006-01-02"),
			b.Tickets.Adult, b.Tickets.Kids,
			b.Payment.Status)
		if b.VerifiedAt != nil {
			c.printf("   checked in at %s\n", b.VerifiedAt.Format("15:04:05"))
		}
	}
}
