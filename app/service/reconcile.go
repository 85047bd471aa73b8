package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rebk-studio/ms-go-studio/app/entity"
)

type inboundNotificationRequest interface {
	GetPaymentStatus() string
	GetTxnId() string
	GetInvoice() string
	GetCustom() string
	GetReceiverEmail() string
	GetFlag() bool
	GetFlagInfo() string
	GetPaymentDate() string
}

// paypalDateLayout is the timestamp format PayPal uses on IPN messages.
const paypalDateLayout = "15:04:05 Jan 02, 2006 MST"

// ReceiveNotification persists an inbound gateway notification and runs
// reconciliation. It never returns an error for business conditions; the
// webhook transport always acknowledges the gateway.
func (s *PaymentService) ReceiveNotification(ctx context.Context, req inboundNotificationRequest) (*entity.PaymentNotification, error) {
	n := &entity.PaymentNotification{
		PaymentStatus: strings.TrimSpace(req.GetPaymentStatus()),
		TxnID:         strings.TrimSpace(req.GetTxnId()),
		Invoice:       strings.TrimSpace(req.GetInvoice()),
		Custom:        req.GetCustom(),
		ReceiverEmail: strings.TrimSpace(req.GetReceiverEmail()),
		Flag:          req.GetFlag(),
		FlagInfo:      req.GetFlagInfo(),
		CreatedAt:     time.Now().UTC(),
	}

	if raw := strings.TrimSpace(req.GetPaymentDate()); raw != "" {
		if parsed, err := time.Parse(paypalDateLayout, raw); err == nil {
			t := parsed.UTC()
			n.PaymentDate = &t
		}
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}

	if n.Flag {
		s.ProcessInvalidNotification(ctx, n)
	} else {
		s.ProcessNotification(ctx, n)
	}

	return n, nil
}

// ProcessNotification reconciles a verified notification against local
// orders. Every failure mode resolves to an operator email here; nothing
// propagates to the caller.
func (s *PaymentService) ProcessNotification(ctx context.Context, n *entity.PaymentNotification) {
	res, err := s.resolveNotification(ctx, n)
	if err != nil {
		if res == nil || errors.Is(err, ErrUnresolvedReference) {
			s.logger.WithError(err).WithField("txn_id", n.TxnID).Error("cannot resolve payment notification")
			s.sendMail(ctx, s.unresolvedWarning(n, err))
			return
		}
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"order_id": res.order.ID,
			"txn_id":   n.TxnID,
		}).Warn("problem processing payment")
		s.sendMail(ctx, s.processingFailure(n, res.order, err))
		return
	}

	if err := s.applyNotification(ctx, n, res); err != nil {
		if isReportableCondition(err) {
			s.sendMail(ctx, s.conditionWarning(n, res.order, err))
			return
		}
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"order_id": res.order.ID,
			"invoice":  n.Invoice,
			"txn_id":   n.TxnID,
		}).Warn("problem processing payment")
		s.sendMail(ctx, s.processingFailure(n, res.order, err))
	}
}

// applyNotification runs the state transition for a resolved notification.
// Reportable conditions come back as sentinel-wrapped errors.
func (s *PaymentService) applyNotification(ctx context.Context, n *entity.PaymentNotification, res *resolvedNotification) error {
	order := res.order
	txn := res.txn

	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d for order %d not found", order.UserID, order.ID)
	}

	switch n.PaymentStatus {
	case entity.PaymentStatusCompleted:
		return s.applyCompleted(ctx, n, order, txn, user, res.voucherCode)

	case entity.PaymentStatusRefunded:
		order.Paid = false
		order.UpdatedAt = time.Now().UTC()
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return err
		}
		s.logActivity(ctx, fmt.Sprintf(
			"Order id %d for user %s has been refunded from paypal; paypal transaction id %s, invoice id %s",
			order.ID, user.Username, n.TxnID, derefString(txn.InvoiceID),
		))
		return s.sendMail(ctx, s.refundProcessed(order, txn, user))

	case entity.PaymentStatusPending:
		s.logActivity(ctx, fmt.Sprintf(
			"PayPal payment returned with status PENDING for order %d; notification id %d (txn id %s)",
			order.ID, n.ID, n.TxnID,
		))
		return fmt.Errorf(
			"%w: PayPal payment returned with status PENDING for order %d; notification id %d (txn id %s). "+
				"This is usually due to an unrecognised or unverified paypal email address",
			ErrPendingPayment, order.ID, n.ID, n.TxnID,
		)

	default:
		s.logActivity(ctx, fmt.Sprintf(
			"Unexpected payment status %s for order %d; notification id %d (txn id %s)",
			strings.ToUpper(n.PaymentStatus), order.ID, n.ID, n.TxnID,
		))
		return fmt.Errorf(
			"%w: Unexpected payment status %s for order %d; notification id %d (txn id %s)",
			ErrUnexpectedStatus, strings.ToUpper(n.PaymentStatus), order.ID, n.ID, n.TxnID,
		)
	}
}

func (s *PaymentService) applyCompleted(
	ctx context.Context,
	n *entity.PaymentNotification,
	order *entity.Order,
	txn *entity.OrderTransaction,
	user *entity.User,
	voucherCode string,
) error {
	if order.PaypalEmail != n.ReceiverEmail {
		flagInfo := fmt.Sprintf("Invalid receiver_email (%s)", n.ReceiverEmail)
		n.Flag = true
		n.FlagInfo = flagInfo
		if err := s.notificationRepo.Update(ctx, n); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrReceiverMismatch, flagInfo)
	}

	order.Paid = true
	order.UpdatedAt = time.Now().UTC()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return err
	}

	// Stamp the gateway transaction id only after the order is marked paid.
	// A concurrent re-request landing in between sees the order paid (no
	// payment button) or the transaction still unstamped (record reused), so
	// no second invoice number gets minted. Advisory ordering, not a
	// transactional guarantee.
	txnID := n.TxnID
	txn.TransactionID = &txnID
	if err := s.txnRepo.Update(ctx, txn); err != nil {
		return err
	}

	s.logActivity(ctx, fmt.Sprintf(
		"Order id %d for user %s paid by PayPal; paypal transaction id %s (paypal email %s)",
		order.ID, user.Username, n.TxnID, order.PaypalEmail,
	))

	if err := s.sendPaymentProcessed(ctx, order, txn, user); err != nil {
		return err
	}

	if voucherCode != "" {
		if err := s.applyVoucher(ctx, order, txn, user, voucherCode); err != nil {
			return err
		}
	}

	if n.Invoice == "" {
		// The gateway sometimes omits the invoice id; backfill from the
		// transaction record and ask support to double-check.
		n.Invoice = derefString(txn.InvoiceID)
		if err := s.notificationRepo.Update(ctx, n); err != nil {
			return err
		}
		if err := s.sendMail(ctx, s.missingInvoiceWarning(n, order, txn)); err != nil {
			return err
		}
	}

	return nil
}

func (s *PaymentService) applyVoucher(
	ctx context.Context,
	order *entity.Order,
	txn *entity.OrderTransaction,
	user *entity.User,
	code string,
) error {
	voucher, err := s.voucherRepo.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if voucher == nil {
		return fmt.Errorf("voucher with code %s does not exist", code)
	}

	if err := s.voucherRepo.AttachUser(ctx, voucher.ID, user.ID); err != nil {
		return err
	}

	txn.VoucherCode = &voucher.Code
	if err := s.txnRepo.Update(ctx, txn); err != nil {
		return err
	}

	s.logActivity(ctx, fmt.Sprintf(
		"Voucher code %s used for order id %d by user %s",
		voucher.Code, order.ID, user.Username,
	))

	return nil
}

// ProcessInvalidNotification handles notifications the upstream gateway
// integration has already flagged (bad signature, duplicate transaction id,
// malformed fields). Warn the operator, never raise.
func (s *PaymentService) ProcessInvalidNotification(ctx context.Context, n *entity.PaymentNotification) {
	res, err := s.resolveNotification(ctx, n)
	if err != nil {
		s.logger.WithError(err).WithField("txn_id", n.TxnID).Error("invalid notification could not be resolved")
		s.sendMail(ctx, s.invalidUnresolvedWarning(n, err))
		return
	}

	s.logger.WithField("order_id", res.order.ID).Warn("invalid payment notification received")
	s.sendMail(ctx, s.invalidResolvedWarning(n, res.order))
}

func isReportableCondition(err error) bool {
	return errors.Is(err, ErrReceiverMismatch) ||
		errors.Is(err, ErrPendingPayment) ||
		errors.Is(err, ErrUnexpectedStatus)
}

func (s *PaymentService) sendMail(ctx context.Context, msg *mailerMessage) error {
	if err := s.mail.Send(ctx, msg.toMessage()); err != nil {
		s.logger.WithError(err).WithField("subject", msg.subject).Error("mail delivery failed")
		return err
	}
	return nil
}
