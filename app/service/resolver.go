package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rebk-studio/ms-go-studio/app/entity"
)

// transactionOutcome tags how many transaction records an order turned out to
// have. More than one is a historical inconsistency the resolver tolerates.
type transactionOutcome int

const (
	transactionNone transactionOutcome = iota
	transactionOne
	transactionMany
)

type resolvedNotification struct {
	order       *entity.Order
	txn         *entity.OrderTransaction
	voucherCode string
}

// resolveNotification maps an inbound notification to its order, transaction
// record, and optional voucher code. The correlation payload is whitespace
// separated: order id first, voucher code optionally second. On failures past
// payload parsing the returned result still carries the order.
func (s *PaymentService) resolveNotification(ctx context.Context, n *entity.PaymentNotification) (*resolvedNotification, error) {
	tokens := strings.Fields(n.Custom)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: unknown order for payment", ErrUnresolvedReference)
	}

	orderID, err := strconv.ParseUint(tokens[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown order for payment", ErrUnresolvedReference)
	}

	voucherCode := ""
	if len(tokens) == 2 {
		voucherCode = tokens[1]
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		// Lookup failed but the order id parsed; hand it back so the caller
		// can name the order when reporting the failure.
		return &resolvedNotification{order: &entity.Order{ID: orderID}}, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order with id %d does not exist", ErrUnresolvedReference, orderID)
	}

	outcome, txns, err := s.lookupTransactions(ctx, order.ID)
	if err != nil {
		// The order is known at this point; hand it back so the caller can
		// name it when reporting the failure.
		return &resolvedNotification{order: order}, err
	}

	var txn *entity.OrderTransaction
	switch outcome {
	case transactionNone:
		txn, err = s.CreateOrderTransaction(ctx, order)
		if err != nil {
			return &resolvedNotification{order: order}, err
		}
	case transactionOne:
		txn = txns[0]
	case transactionMany:
		// Two records can exist from a historical race; the one matching the
		// notification's invoice wins, else the most recently created.
		txn = pickTransaction(txns, n.Invoice)
	}

	return &resolvedNotification{
		order:       order,
		txn:         txn,
		voucherCode: voucherCode,
	}, nil
}

func (s *PaymentService) lookupTransactions(ctx context.Context, orderID uint64) (transactionOutcome, []*entity.OrderTransaction, error) {
	txns, err := s.txnRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return transactionNone, nil, err
	}

	switch len(txns) {
	case 0:
		return transactionNone, nil, nil
	case 1:
		return transactionOne, txns, nil
	default:
		return transactionMany, txns, nil
	}
}

func pickTransaction(txns []*entity.OrderTransaction, invoice string) *entity.OrderTransaction {
	if invoice != "" {
		for _, txn := range txns {
			if txn.InvoiceID != nil && *txn.InvoiceID == invoice {
				return txn
			}
		}
	}

	latest := txns[0]
	for _, txn := range txns[1:] {
		if txn.ID > latest.ID {
			latest = txn
		}
	}
	return latest
}
