package entity

import "time"

const (
	PaymentStatusCompleted = "Completed"
	PaymentStatusPending   = "Pending"
	PaymentStatusRefunded  = "Refunded"
)

// PaymentNotification is an inbound IPN record from the payment gateway,
// signature-verified by the upstream integration before it reaches us.
// Immutable once stored except for the flag fields and the invoice backfill.
type PaymentNotification struct {
	ID uint64

	PaymentStatus string
	TxnID         string
	Invoice       string

	// Custom carries the correlation payload: order id plus optional
	// voucher code, whitespace separated.
	Custom string

	ReceiverEmail string

	Flag     bool
	FlagInfo string

	PaymentDate *time.Time

	CreatedAt time.Time
}
