package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rebk-studio/ms-go-studio/app/entity"
	"github.com/rebk-studio/ms-go-studio/app/mailer"
	"github.com/rebk-studio/ms-go-studio/app/service"
	"github.com/rebk-studio/ms-go-studio/config"
)

type controllerOrderRepo struct {
	findByIDFn func(ctx context.Context, id uint64) (*entity.Order, error)
	updateFn   func(ctx context.Context, order *entity.Order) error
}

func (r *controllerOrderRepo) FindByID(ctx context.Context, id uint64) (*entity.Order, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (r *controllerOrderRepo) Update(ctx context.Context, order *entity.Order) error {
	if r.updateFn != nil {
		return r.updateFn(ctx, order)
	}
	return nil
}

type controllerTxnRepo struct {
	listByOrderFn func(ctx context.Context, orderID uint64) ([]*entity.OrderTransaction, error)
}

func (r *controllerTxnRepo) Create(_ context.Context, txn *entity.OrderTransaction) error {
	txn.ID = 1
	return nil
}

func (r *controllerTxnRepo) Update(_ context.Context, _ *entity.OrderTransaction) error {
	return nil
}

func (r *controllerTxnRepo) ListByOrder(ctx context.Context, orderID uint64) ([]*entity.OrderTransaction, error) {
	if r.listByOrderFn != nil {
		return r.listByOrderFn(ctx, orderID)
	}
	return nil, nil
}

func (r *controllerTxnRepo) FindByInvoice(_ context.Context, _ string) (*entity.OrderTransaction, error) {
	return nil, nil
}

type controllerNotificationRepo struct {
	created []*entity.PaymentNotification
}

func (r *controllerNotificationRepo) Create(_ context.Context, n *entity.PaymentNotification) error {
	n.ID = uint64(len(r.created) + 1)
	r.created = append(r.created, n)
	return nil
}

func (r *controllerNotificationRepo) Update(_ context.Context, _ *entity.PaymentNotification) error {
	return nil
}

type controllerActivityRepo struct{}

func (r *controllerActivityRepo) Create(_ context.Context, _ *entity.ActivityLog) error {
	return nil
}

type controllerUserRepo struct {
	findByIDFn func(ctx context.Context, id uint64) (*entity.User, error)
}

func (r *controllerUserRepo) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, nil
}

type controllerVoucherRepo struct{}

func (r *controllerVoucherRepo) FindByCode(_ context.Context, _ string) (*entity.Voucher, error) {
	return nil, nil
}

func (r *controllerVoucherRepo) AttachUser(_ context.Context, _, _ uint64) error {
	return nil
}

type controllerMailer struct {
	messages []*mailer.Message
}

func (m *controllerMailer) Send(_ context.Context, msg *mailer.Message) error {
	m.messages = append(m.messages, msg)
	return nil
}

func newWebhookTestController(notifications *controllerNotificationRepo, mail *controllerMailer) *WebhookController {
	paymentService := service.NewPaymentService(
		&controllerOrderRepo{},
		&controllerTxnRepo{},
		notifications,
		&controllerActivityRepo{},
		&controllerUserRepo{},
		&controllerVoucherRepo{},
		mail,
		config.MailConfig{
			StudioEmail:  "studio@example.com",
			SupportEmail: "support@example.com",
		},
	)
	return NewWebhookController(paymentService)
}

func postIPN(t *testing.T, handler echo.HandlerFunc, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paypal/ipn", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := handler(ctx); err != nil {
		t.Fatalf("unexpected handler error: %v", err)
	}
	return rec
}

func TestPaypalIPNAlwaysAcknowledges(t *testing.T) {
	notifications := &controllerNotificationRepo{}
	mail := &controllerMailer{}
	webhookController := newWebhookTestController(notifications, mail)

	// Unknown order: processing fails internally, the gateway still gets 200.
	rec := postIPN(t, webhookController.PaypalIPN, url.Values{
		"payment_status": {"Completed"},
		"txn_id":         {"TXN-123"},
		"custom":         {"42"},
		"receiver_email": {"studio@example.com"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected an empty body, got %q", rec.Body.String())
	}
	if len(notifications.created) != 1 {
		t.Fatalf("expected the notification persisted, got %d", len(notifications.created))
	}
	if len(mail.messages) != 1 {
		t.Fatalf("expected one operator warning, got %d", len(mail.messages))
	}
}

func TestPaypalIPNIncompleteFormStillAcknowledges(t *testing.T) {
	notifications := &controllerNotificationRepo{}
	webhookController := newWebhookTestController(notifications, &controllerMailer{})

	rec := postIPN(t, webhookController.PaypalIPN, url.Values{
		"payment_status": {"Completed"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(notifications.created) != 0 {
		t.Fatalf("expected nothing persisted for an incomplete form, got %d", len(notifications.created))
	}
}

func TestPaypalIPNFlaggedRoutesToInvalidHandler(t *testing.T) {
	notifications := &controllerNotificationRepo{}
	mail := &controllerMailer{}
	webhookController := newWebhookTestController(notifications, mail)

	rec := postIPN(t, webhookController.PaypalIPN, url.Values{
		"payment_status": {"Completed"},
		"txn_id":         {"TXN-123"},
		"custom":         {""},
		"flag":           {"true"},
		"flag_info":      {"Duplicate txn_id"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(mail.messages) != 1 {
		t.Fatalf("expected one operator warning, got %d", len(mail.messages))
	}
	if !strings.Contains(mail.messages[0].Subject, "Invalid Payment Notification") {
		t.Fatalf("unexpected subject %q", mail.messages[0].Subject)
	}
}
