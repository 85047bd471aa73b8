package service

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/rebk-studio/ms-go-studio/app/entity"
)

const invoiceBase = "order-inv#"

// CreateOrderTransaction returns the transaction record to use for an order,
// creating one when necessary.
//
// A record is created when the payment page is rendered, not when payment is
// made, so an existing record with no gateway transaction id is still awaiting
// payment and is reused as-is. Otherwise the invoice counter is the numeric
// suffix of the newest invoice plus one, zero-padded to the same width;
// "001" for a first record.
func (s *PaymentService) CreateOrderTransaction(ctx context.Context, order *entity.Order) (*entity.OrderTransaction, error) {
	existing, err := s.txnRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	counter := "001"
	if len(existing) > 0 {
		for _, txn := range existing {
			if txn.TransactionID == nil {
				return txn, nil
			}
		}
		prev := invoiceCounter(derefString(existing[0].InvoiceID))
		n, err := strconv.Atoi(prev)
		if err != nil {
			return nil, fmt.Errorf("malformed invoice counter %q: %w", prev, err)
		}
		counter = fmt.Sprintf("%0*d", len(prev), n+1)
	}

	invoiceID := invoiceBase + counter

	// The per-order check above cannot see the same invoice id minted for a
	// different order; disambiguate with a random prefix before the counter.
	collision, err := s.txnRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if collision != nil {
		invoiceID = fmt.Sprintf("%s%d%s", invoiceBase, 100+rand.Intn(900), counter)
	}

	orderID := order.ID
	txn := &entity.OrderTransaction{
		InvoiceID: &invoiceID,
		OrderID:   &orderID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

func invoiceCounter(invoiceID string) string {
	if len(invoiceID) < 3 {
		return invoiceID
	}
	return invoiceID[len(invoiceID)-3:]
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
