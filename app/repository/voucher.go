package repository

import (
	"context"
	"database/sql"

	"github.com/rebk-studio/ms-go-studio/app/entity"
)

type VoucherRepository struct {
	db DBTX
}

func NewVoucherRepository(db DBTX) *VoucherRepository {
	return &VoucherRepository{db: db}
}

func (r *VoucherRepository) FindByCode(ctx context.Context, code string) (*entity.Voucher, error) {
	query := `
		SELECT id, code
		FROM vouchers
		WHERE code = ?
		LIMIT 1
	`

	voucher := &entity.Voucher{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(&voucher.ID, &voucher.Code)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return voucher, nil
}

// AttachUser records that the user has redeemed the voucher. Re-attaching is
// a no-op so replayed notifications stay idempotent.
func (r *VoucherRepository) AttachUser(ctx context.Context, voucherID, userID uint64) error {
	query := `
		INSERT INTO voucher_users (voucher_id, user_id)
		VALUES (?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, voucherID, userID)
	if err != nil && isDuplicateEntryError(err) {
		return nil
	}
	return err
}
