package models

import "time"

// Customer holds the contact details captured in step 2 of the booking flow.
type Customer struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

// Tickets is the per-category ticket count of a booking.
type Tickets struct {
	Adult int `json:"adult"`
	Kids  int `json:"kids"`
}

// UnitPrices is the price tier applied to a visit date.
type UnitPrices struct {
	AdultPrice int64  `json:"adultPrice"`
	KidsPrice  int64  `json:"kidsPrice"`
	Type       string `json:"type"`
}

// PriceQuote is the client-side price preview. It is ephemeral: superseded by
// the authoritative amount the server returns at booking creation.
type PriceQuote struct {
	Pricing     UnitPrices `json:"pricing"`
	BaseAmount  int64      `json:"baseAmount"`
	Discount    int64      `json:"discount"`
	FinalAmount int64      `json:"finalAmount"`
	Offer       string     `json:"offer,omitempty"`
	Fallback    bool       `json:"-"`
}

// Payment is the payment section of a server-confirmed booking.
type Payment struct {
	Status        string `json:"status"` // PENDING, PAID, FAILED
	TransactionID string `json:"transactionId,omitempty"`
	PaymentID     string `json:"paymentId,omitempty"`
}

// Booking is a server-confirmed record, read-only to the client.
type Booking struct {
	BookingID  string     `json:"bookingId"`
	VisitDate  time.Time  `json:"visitDate"`
	Tickets    Tickets    `json:"tickets"`
	Customer   Customer   `json:"customer"`
	Pricing    PriceQuote `json:"pricing"`
	Payment    Payment    `json:"payment"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verifiedAt,omitempty"`
	QRCode     string     `json:"qrCode,omitempty"`
	CreatedAt  time.Time  `json:"createdAt,omitempty"`
}

// ValidationResult is the response to a single check-in attempt. The booking
// snapshot is present whenever a matching booking was found, valid or not.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Message string   `json:"message"`
	Booking *Booking `json:"booking,omitempty"`
}

// TodayStats are the running counters on the validation screen.
// Invariant (server-enforced): Total == Verified + Pending.
type TodayStats struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Pending  int `json:"pending"`
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	Today struct {
		Bookings int   `json:"bookings"`
		Tickets  int   `json:"tickets"`
		Verified int   `json:"verified"`
		Revenue  int64 `json:"revenue"`
	} `json:"today"`
	Month struct {
		Bookings int   `json:"bookings"`
		Revenue  int64 `json:"revenue"`
	} `json:"month"`
}

// Offer is an active discount offer as listed by the API.
type Offer struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Discount int64  `json:"discount"`
	Active   bool   `json:"active"`
}

// PriceTier is one row of the park's price table.
type PriceTier struct {
	ID         string `json:"_id"`
	Type       string `json:"type"` // weekday, weekend, special
	AdultPrice int64  `json:"adultPrice"`
	KidsPrice  int64  `json:"kidsPrice"`
}

// SpecialDate marks a calendar day as closed or specially priced.
type SpecialDate struct {
	ID            string      `json:"_id"`
	Date          time.Time   `json:"date"`
	Type          string      `json:"type"` // SPECIAL_PRICE, CLOSED
	Name          string      `json:"name"`
	PriceOverride *UnitPrices `json:"priceOverride,omitempty"`
}

// User is the authenticated operator account.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	IsFirstLogin bool   `json:"isFirstLogin"`
}
