package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/rebk-studio/ms-go-studio/app/factory"
	"github.com/rebk-studio/ms-go-studio/app/service"
	"github.com/rebk-studio/ms-go-studio/app/types"
)

type WebhookController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewWebhookController(paymentService *service.PaymentService) *WebhookController {
	return &WebhookController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("webhook-controller"),
	}
}

func (c *WebhookController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

// PaypalIPN ingests a gateway payment notification. The gateway retries on
// anything but 200, so every outcome acknowledges; failures surface through
// logs and operator email instead.
func (c *WebhookController) PaypalIPN(ctx echo.Context) error {
	req, err := types.NewPaypalIPNRequestFromContext(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("Unreadable paypal notification")
		return ctx.NoContent(http.StatusOK)
	}
	if err := req.Validate(); err != nil {
		c.logger.WithError(err).Warn("Incomplete paypal notification")
		return ctx.NoContent(http.StatusOK)
	}

	if _, err := c.paymentService.ReceiveNotification(ctx.Request().Context(), req); err != nil {
		c.logger.WithError(err).WithField("txn_id", req.GetTxnId()).Error("Paypal notification ingest failed")
	}

	return ctx.NoContent(http.StatusOK)
}
