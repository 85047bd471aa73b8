package types

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// PaypalIPNRequest carries the form fields of a PayPal Instant Payment
// Notification as relayed by the gateway integration. Flag is set upstream
// when the message failed verification.
type PaypalIPNRequest struct {
	PaymentStatus string
	TxnId         string
	Invoice       string
	Custom        string
	ReceiverEmail string
	Flag          bool
	FlagInfo      string
	PaymentDate   string
}

func NewPaypalIPNRequestFromContext(ctx echo.Context) (*PaypalIPNRequest, error) {
	if err := ctx.Request().ParseForm(); err != nil {
		return nil, err
	}

	req := &PaypalIPNRequest{
		PaymentStatus: strings.TrimSpace(ctx.FormValue("payment_status")),
		TxnId:         strings.TrimSpace(ctx.FormValue("txn_id")),
		Invoice:       strings.TrimSpace(ctx.FormValue("invoice")),
		Custom:        ctx.FormValue("custom"),
		ReceiverEmail: strings.TrimSpace(ctx.FormValue("receiver_email")),
		FlagInfo:      ctx.FormValue("flag_info"),
		PaymentDate:   strings.TrimSpace(ctx.FormValue("payment_date")),
	}

	flagRaw := strings.TrimSpace(ctx.FormValue("flag"))
	if flag, err := strconv.ParseBool(flagRaw); err == nil {
		req.Flag = flag
	} else {
		req.Flag = flagRaw != ""
	}

	return req, nil
}

func (r *PaypalIPNRequest) Validate() error {
	if strings.TrimSpace(r.GetTxnId()) == "" {
		return errors.New("txn_id is required")
	}
	if strings.TrimSpace(r.GetPaymentStatus()) == "" {
		return errors.New("payment_status is required")
	}
	return nil
}

func (r *PaypalIPNRequest) GetPaymentStatus() string {
	if r == nil {
		return ""
	}
	return r.PaymentStatus
}

func (r *PaypalIPNRequest) GetTxnId() string {
	if r == nil {
		return ""
	}
	return r.TxnId
}

func (r *PaypalIPNRequest) GetInvoice() string {
	if r == nil {
		return ""
	}
	return r.Invoice
}

func (r *PaypalIPNRequest) GetCustom() string {
	if r == nil {
		return ""
	}
	return r.Custom
}

func (r *PaypalIPNRequest) GetReceiverEmail() string {
	if r == nil {
		return ""
	}
	return r.ReceiverEmail
}

func (r *PaypalIPNRequest) GetFlag() bool {
	if r == nil {
		return false
	}
	return r.Flag
}

func (r *PaypalIPNRequest) GetFlagInfo() string {
	if r == nil {
		return ""
	}
	return r.FlagInfo
}

func (r *PaypalIPNRequest) GetPaymentDate() string {
	if r == nil {
		return ""
	}
	return r.PaymentDate
}
