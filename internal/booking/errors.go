package booking

import "errors"

var (
	// ErrNoTickets blocks submission while both counts are zero.
	ErrNoTickets = errors.New("at least one ticket is required")

	// ErrMissingCustomer blocks submission until name and mobile are filled.
	ErrMissingCustomer = errors.New("customer name and mobile are required")

	// ErrWrongStep is returned when an operation is invoked outside the step
	// it belongs to.
	ErrWrongStep = errors.New("operation not allowed in current step")

	// ErrNoBooking is returned when payment is confirmed before a booking
	// exists.
	ErrNoBooking = errors.New("no booking to confirm payment for")
)
