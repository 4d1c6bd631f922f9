package api

import (
	"context"
	"strings"
	"time"

	"chapak/internal/models"
)

// QuoteKind tags the polymorphic pricing response. The backend answers a
// usable quote, a closed-date signal, or a validation message on the same
// channel; decoding resolves the precedence once, here at the boundary.
type QuoteKind int

const (
	// QuoteOK means a usable quote with finalAmount was returned.
	QuoteOK QuoteKind = iota
	// QuoteClosed means the park is closed on the requested date.
	QuoteClosed
	// QuoteRejected means the backend refused the inputs (e.g. no tickets
	// selected yet). Expected while the user is still typing; not an error.
	QuoteRejected
	// QuoteMalformed means the response had no recognizable shape. Callers
	// fall back to local default pricing.
	QuoteMalformed
)

// QuoteOutcome is the decoded pricing response.
type QuoteOutcome struct {
	Kind    QuoteKind
	Quote   *models.PriceQuote
	Message string
}

type pricingRequest struct {
	VisitDate string `json:"visitDate"`
	Adults    int    `json:"adults"`
	Kids      int    `json:"kids"`
}

type pricingResponse struct {
	IsClosed    bool              `json:"isClosed"`
	Message     string            `json:"message"`
	FinalAmount *int64            `json:"finalAmount"`
	BaseAmount  int64             `json:"baseAmount"`
	Discount    int64             `json:"discount"`
	Pricing     models.UnitPrices `json:"pricing"`
	Offer       string            `json:"offer"`
}

// CalculatePricing asks the backend to price (visitDate, adults, kids).
// A transport failure is returned as an error; every 2xx response decodes to
// one of the QuoteOutcome kinds.
func (c *Client) CalculatePricing(ctx context.Context, visitDate time.Time, adults, kids int) (*QuoteOutcome, error) {
	if c.pricingLimiter != nil {
		if err := c.pricingLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body := pricingRequest{
		VisitDate: visitDate.Format("2006-01-02"),
		Adults:    adults,
		Kids:      kids,
	}
	var resp pricingResponse
	if err := c.doPost(ctx, c.baseURL+"/bookings/calculate", body, &resp); err != nil {
		return nil, err
	}
	return decodePricing(&resp), nil
}

func decodePricing(resp *pricingResponse) *QuoteOutcome {
	switch {
	case resp.IsClosed:
		return &QuoteOutcome{Kind: QuoteClosed, Message: resp.Message}
	case resp.Message != "" && strings.Contains(resp.Message, "at least one ticket"):
		return &QuoteOutcome{Kind: QuoteRejected, Message: resp.Message}
	case resp.FinalAmount != nil:
		return &QuoteOutcome{
			Kind: QuoteOK,
			Quote: &models.PriceQuote{
				Pricing:     resp.Pricing,
				BaseAmount:  resp.BaseAmount,
				Discount:    resp.Discount,
				FinalAmount: *resp.FinalAmount,
				Offer:       resp.Offer,
			},
		}
	default:
		return &QuoteOutcome{Kind: QuoteMalformed, Message: resp.Message}
	}
}
