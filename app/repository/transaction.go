package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rebk-studio/ms-go-studio/app/entity"
)

var ErrDuplicateInvoice = errors.New("invoice id already exists")

type OrderTransactionRepository struct {
	db DBTX
}

func NewOrderTransactionRepository(db DBTX) *OrderTransactionRepository {
	return &OrderTransactionRepository{db: db}
}

func (r *OrderTransactionRepository) Create(ctx context.Context, txn *entity.OrderTransaction) error {
	query := `
		INSERT INTO order_transactions (invoice_id, order_id, transaction_id, voucher_code, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		nullableStringValue(txn.InvoiceID),
		nullableUint64Value(txn.OrderID),
		nullableStringValue(txn.TransactionID),
		nullableStringValue(txn.VoucherCode),
		txn.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateInvoice
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	txn.ID = uint64(id)

	return nil
}

func (r *OrderTransactionRepository) Update(ctx context.Context, txn *entity.OrderTransaction) error {
	query := `
		UPDATE order_transactions SET
			invoice_id = ?,
			order_id = ?,
			transaction_id = ?,
			voucher_code = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		nullableStringValue(txn.InvoiceID),
		nullableUint64Value(txn.OrderID),
		nullableStringValue(txn.TransactionID),
		nullableStringValue(txn.VoucherCode),
		txn.ID,
	)
	if err != nil && isDuplicateEntryError(err) {
		return ErrDuplicateInvoice
	}
	return err
}

// ListByOrder returns the order's transactions newest invoice first.
func (r *OrderTransactionRepository) ListByOrder(ctx context.Context, orderID uint64) ([]*entity.OrderTransaction, error) {
	query := `
		SELECT id, invoice_id, order_id, transaction_id, voucher_code, created_at
		FROM order_transactions
		WHERE order_id = ?
		ORDER BY invoice_id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]*entity.OrderTransaction, 0)
	for rows.Next() {
		item, err := scanTransactionFromRows(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return txns, nil
}

// FindByInvoice looks up an invoice id across all orders.
func (r *OrderTransactionRepository) FindByInvoice(ctx context.Context, invoiceID string) (*entity.OrderTransaction, error) {
	query := `
		SELECT id, invoice_id, order_id, transaction_id, voucher_code, created_at
		FROM order_transactions
		WHERE invoice_id = ?
		LIMIT 1
	`

	txn := &entity.OrderTransaction{}
	if err := scanTransaction(r.db.QueryRowContext(ctx, query, invoiceID), txn); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return txn, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(scan rowScanner, txn *entity.OrderTransaction) error {
	var invoiceID sql.NullString
	var orderID sql.NullInt64
	var transactionID sql.NullString
	var voucherCode sql.NullString

	err := scan.Scan(
		&txn.ID,
		&invoiceID,
		&orderID,
		&transactionID,
		&voucherCode,
		&txn.CreatedAt,
	)
	if err != nil {
		return err
	}

	txn.InvoiceID = stringPtrFromNull(invoiceID)
	txn.OrderID = uint64PtrFromNull(orderID)
	txn.TransactionID = stringPtrFromNull(transactionID)
	txn.VoucherCode = stringPtrFromNull(voucherCode)

	return nil
}

func scanTransactionFromRows(rows *sql.Rows) (*entity.OrderTransaction, error) {
	item := &entity.OrderTransaction{}
	if err := scanTransaction(rows, item); err != nil {
		return nil, err
	}
	return item, nil
}
