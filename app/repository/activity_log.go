package repository

import (
	"context"

	"github.com/rebk-studio/ms-go-studio/app/entity"
)

type ActivityLogRepository struct {
	db DBTX
}

func NewActivityLogRepository(db DBTX) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, log *entity.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (log, created_at)
		VALUES (?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, log.Log, log.CreatedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = uint64(id)

	return nil
}
