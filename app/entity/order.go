package entity

import "time"

type Order struct {
	ID uint64

	UserID uint64

	// Email of the paypal account expected to receive the payment.
	PaypalEmail string

	Paid bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
