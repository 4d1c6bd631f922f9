package booking

import (
	"context"
	"time"

	"chapak/internal/api"
	"chapak/internal/metrics"
	"chapak/internal/models"
)

// QuoteRequest is one generation-stamped repricing request. Responses carry
// the stamp back; only the newest generation's outcome is applied.
type QuoteRequest struct {
	Generation uint64
	Date       time.Time
	Adults     int
	Kids       int
}

// Resolve calls the pricing collaborator for the request and applies the
// outcome. Safe to run on its own goroutine; a stale response for a
// superseded request is discarded.
//
// Outcome policy:
//   - usable quote      -> adopted verbatim
//   - closed date       -> blocking error, quote cleared
//   - input rejection   -> quote cleared silently (user still typing)
//   - transport failure or unrecognized shape -> local fallback quote; the
//     server re-derives the authoritative amount at submission
func (f *Flow) Resolve(ctx context.Context, req *QuoteRequest) {
	if req == nil {
		return
	}

	outcome, err := f.backend.CalculatePricing(ctx, req.Date, req.Adults, req.Kids)
	if err != nil {
		f.logger.Warn().Err(err).Msg("pricing collaborator unreachable, using fallback quote")
		metrics.IncPricing("fallback")
		f.applyQuote(req.Generation, fallbackQuote(req.Adults, req.Kids), "")
		return
	}

	switch outcome.Kind {
	case api.QuoteOK:
		metrics.IncPricing("ok")
		f.applyQuote(req.Generation, outcome.Quote, "")
	case api.QuoteClosed:
		metrics.IncPricing("closed")
		f.applyQuote(req.Generation, nil, "Park is closed on this date. Please select another date.")
	case api.QuoteRejected:
		metrics.IncPricing("rejected")
		f.applyQuote(req.Generation, nil, "")
	default:
		f.logger.Warn().Str("message", outcome.Message).Msg("unrecognized pricing response, using fallback quote")
		metrics.IncPricing("fallback")
		f.applyQuote(req.Generation, fallbackQuote(req.Adults, req.Kids), "")
	}
}

func (f *Flow) applyQuote(generation uint64, quote *models.PriceQuote, errMsg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if generation != f.generation {
		// Stale response for superseded inputs.
		return
	}
	f.quote = quote
	f.errMsg = errMsg
}

// fallbackQuote synthesizes the degraded-mode preview from the default price
// table. Never blocks the user from proceeding.
func fallbackQuote(adults, kids int) *models.PriceQuote {
	base := int64(adults)*models.DefaultAdultPrice + int64(kids)*models.DefaultKidsPrice
	return &models.PriceQuote{
		Pricing: models.UnitPrices{
			AdultPrice: models.DefaultAdultPrice,
			KidsPrice:  models.DefaultKidsPrice,
			Type:       models.DefaultPricingType,
		},
		BaseAmount:  base,
		Discount:    0,
		FinalAmount: base,
		Fallback:    true,
	}
}
