package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rebk-studio/ms-go-studio/app/entity"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (user_id, paypal_email, paid, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		order.UserID,
		order.PaypalEmail,
		order.Paid,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = uint64(id)

	return nil
}

func (r *OrderRepository) Update(ctx context.Context, order *entity.Order) error {
	query := `
		UPDATE orders SET
			paypal_email = ?,
			paid = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		order.PaypalEmail,
		order.Paid,
		order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint64) (*entity.Order, error) {
	query := `
		SELECT id, user_id, paypal_email, paid, created_at, updated_at
		FROM orders
		WHERE id = ?
	`

	order := &entity.Order{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.PaypalEmail,
		&order.Paid,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return order, nil
}
