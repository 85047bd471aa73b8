package service

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")

	// Reportable payment reconciliation conditions. All of them resolve to an
	// operator warning inside the service; none reach the webhook transport.
	ErrUnresolvedReference = errors.New("cannot resolve notification to an order")
	ErrReceiverMismatch    = errors.New("invalid receiver email")
	ErrPendingPayment      = errors.New("payment returned with status pending")
	ErrUnexpectedStatus    = errors.New("unexpected payment status")

	ErrCategoryNotFound = errors.New("category not found")
	ErrImageNotFound    = errors.New("image not found")
)
