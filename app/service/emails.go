package service

import (
	"context"
	"fmt"

	"github.com/rebk-studio/ms-go-studio/app/entity"
	"github.com/rebk-studio/ms-go-studio/app/mailer"
)

type mailerMessage struct {
	subject string
	body    string
	to      []string
}

func (m *mailerMessage) toMessage() *mailer.Message {
	return &mailer.Message{Subject: m.subject, Body: m.body, To: m.to}
}

func (s *PaymentService) subject(text string) string {
	if s.mailCfg.SubjectPrefix == "" {
		return text
	}
	return s.mailCfg.SubjectPrefix + " " + text
}

// sendPaymentProcessed notifies the studio and the customer that payment for
// an order cleared. The studio copy is suppressed when full notifications are
// turned off; the customer copy always goes out.
func (s *PaymentService) sendPaymentProcessed(ctx context.Context, order *entity.Order, txn *entity.OrderTransaction, user *entity.User) error {
	subject := s.subject(fmt.Sprintf("Payment processed for order id %d", order.ID))

	if s.mailCfg.SendAllStudioEmails {
		body := fmt.Sprintf(
			"PayPal payment received for order id %d placed by %s.\n\n"+
				"Invoice id %s\nPayPal transaction id %s\nPayPal email %s",
			order.ID, user.FullName(), derefString(txn.InvoiceID), derefString(txn.TransactionID), order.PaypalEmail,
		)
		if err := s.sendMail(ctx, &mailerMessage{subject: subject, body: body, to: []string{s.mailCfg.StudioEmail}}); err != nil {
			return err
		}
	}

	body := fmt.Sprintf(
		"Hi %s,\n\nWe have received your PayPal payment for order id %d "+
			"(invoice id %s).\n\nThank you for your order.",
		user.FirstName, order.ID, derefString(txn.InvoiceID),
	)
	return s.sendMail(ctx, &mailerMessage{subject: subject, body: body, to: []string{user.Email}})
}

// refundProcessed is a single message addressed to both the studio and
// support inboxes.
func (s *PaymentService) refundProcessed(order *entity.Order, txn *entity.OrderTransaction, user *entity.User) *mailerMessage {
	return &mailerMessage{
		subject: s.subject(fmt.Sprintf("Payment refund processed for order id %d", order.ID)),
		body: fmt.Sprintf(
			"PayPal refund processed for order id %d placed by %s.\n\n"+
				"Invoice id %s\nPayPal transaction id %s",
			order.ID, user.FullName(), derefString(txn.InvoiceID), derefString(txn.TransactionID),
		),
		to: []string{s.mailCfg.StudioEmail, s.mailCfg.SupportEmail},
	}
}

func (s *PaymentService) unresolvedWarning(n *entity.PaymentNotification, cause error) *mailerMessage {
	return &mailerMessage{
		subject: "WARNING! Error processing PayPal IPN",
		body: fmt.Sprintf(
			"Valid Payment Notification received from PayPal but an error occurred "+
				"during processing.\n\nPayPal transaction id %s\n\n"+
				"The flag info was \"%s\"\n\nError raised: %s",
			n.TxnID, n.FlagInfo, cause,
		),
		to: []string{s.mailCfg.SupportEmail},
	}
}

func (s *PaymentService) conditionWarning(n *entity.PaymentNotification, order *entity.Order, cause error) *mailerMessage {
	return &mailerMessage{
		subject: s.subject(fmt.Sprintf("Problem with PayPal payment for order id %d", order.ID)),
		body: fmt.Sprintf(
			"A PayPal payment notification needs attention.\n\n"+
				"Order id %d\nNotification id %d\nPayPal transaction id %s\n\n%s",
			order.ID, n.ID, n.TxnID, cause,
		),
		to: []string{s.mailCfg.SupportEmail},
	}
}

func (s *PaymentService) processingFailure(n *entity.PaymentNotification, order *entity.Order, cause error) *mailerMessage {
	return &mailerMessage{
		subject: s.subject(fmt.Sprintf("There was some problem processing payment for order id %d", order.ID)),
		body: fmt.Sprintf(
			"Please check your order and paypal records for invoice # %s, "+
				"paypal transaction id %s.\n\nThe error raised was \"%s\"",
			n.Invoice, n.TxnID, cause,
		),
		to: []string{s.mailCfg.SupportEmail},
	}
}

func (s *PaymentService) missingInvoiceWarning(n *entity.PaymentNotification, order *entity.Order, txn *entity.OrderTransaction) *mailerMessage {
	return &mailerMessage{
		subject: s.subject(fmt.Sprintf("No invoice number on paypal ipn for order id %d", order.ID)),
		body: fmt.Sprintf(
			"Please check order and paypal records for paypal transaction id %s. "+
				"No invoice number was present on the paypal IPN. The invoice number "+
				"has been set to %s from the order transaction record.",
			n.TxnID, derefString(txn.InvoiceID),
		),
		to: []string{s.mailCfg.SupportEmail},
	}
}

func (s *PaymentService) invalidUnresolvedWarning(n *entity.PaymentNotification, cause error) *mailerMessage {
	return &mailerMessage{
		subject: "WARNING! Error processing Invalid Payment Notification from PayPal",
		body: fmt.Sprintf(
			"PayPal sent an invalid transaction notification and an error occurred "+
				"while attempting to process it.\n\nPayPal transaction id %s\n\n"+
				"The flag info was \"%s\"\n\nAn additional error was raised: %s",
			n.TxnID, n.FlagInfo, cause,
		),
		to: []string{s.mailCfg.SupportEmail},
	}
}

func (s *PaymentService) invalidResolvedWarning(n *entity.PaymentNotification, order *entity.Order) *mailerMessage {
	return &mailerMessage{
		subject: "WARNING! Invalid Payment Notification received from PayPal",
		body: fmt.Sprintf(
			"PayPal sent an invalid transaction notification while attempting to "+
				"process payment for order id %d.\n\nPayPal transaction id %s\n\n"+
				"The flag info was \"%s\"",
			order.ID, n.TxnID, n.FlagInfo,
		),
		to: []string{s.mailCfg.SupportEmail},
	}
}
