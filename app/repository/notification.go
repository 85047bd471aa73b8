package repository

import (
	"context"

	"github.com/rebk-studio/ms-go-studio/app/entity"
)

type PaymentNotificationRepository struct {
	db DBTX
}

func NewPaymentNotificationRepository(db DBTX) *PaymentNotificationRepository {
	return &PaymentNotificationRepository{db: db}
}

func (r *PaymentNotificationRepository) Create(ctx context.Context, n *entity.PaymentNotification) error {
	query := `
		INSERT INTO payment_notifications (
			payment_status, txn_id, invoice, custom, receiver_email, flag, flag_info, payment_date, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		n.PaymentStatus,
		n.TxnID,
		n.Invoice,
		n.Custom,
		n.ReceiverEmail,
		n.Flag,
		n.FlagInfo,
		nullableTimeValue(n.PaymentDate),
		n.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)

	return nil
}

// Update writes back the only mutable fields of a stored notification: the
// flag set on receiver mismatch and the backfilled invoice id.
func (r *PaymentNotificationRepository) Update(ctx context.Context, n *entity.PaymentNotification) error {
	query := `
		UPDATE payment_notifications SET
			invoice = ?,
			flag = ?,
			flag_info = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query, n.Invoice, n.Flag, n.FlagInfo, n.ID)
	return err
}
