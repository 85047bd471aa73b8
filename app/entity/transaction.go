package entity

import "time"

// OrderTransaction correlates a locally minted invoice id with the gateway
// transaction id for one order. Created lazily; TransactionID stays nil until
// the gateway confirms payment.
type OrderTransaction struct {
	ID uint64

	InvoiceID *string
	OrderID   *uint64

	TransactionID *string
	VoucherCode   *string

	CreatedAt time.Time
}
