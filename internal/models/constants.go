package models

const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
)

const (
	StepCollectingTickets  = "collecting_tickets"
	StepCollectingCustomer = "collecting_customer"
	StepConfirmed          = "confirmed"
)

const (
	ModeManual = "manual"
	ModeScan   = "scan"
)

const (
	// DefaultAdultPrice and DefaultKidsPrice back the degraded-mode quote
	// used when the pricing collaborator is unreachable or answers an
	// unrecognized shape. The server re-derives the true charge at
	// submission, so these only bound the preview.
	DefaultAdultPrice = 800
	DefaultKidsPrice  = 500

	// DefaultPricingType labels fallback quotes.
	DefaultPricingType = "weekday"
)

const (
	// DefaultSessionTTL время жизни сессии в Redis (секунды)
	DefaultSessionTTL = 24 * 60 * 60

	// DefaultCacheTTL время жизни кэша GET-ответов API (секунды)
	DefaultCacheTTL = 5 * 60

	// ExportQueueSize размер очереди воркера экспорта
	ExportQueueSize = 100
)
