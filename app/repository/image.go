package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rebk-studio/ms-go-studio/app/entity"
)

var ErrImageNotFound = errors.New("image not found")

type ImageRepository struct {
	db DBTX
}

func NewImageRepository(db DBTX) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(ctx context.Context, image *entity.Image) error {
	query := `
		INSERT INTO images (category_id, filename, caption, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		image.CategoryID,
		image.Filename,
		image.Caption,
		image.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	image.ID = uint64(id)

	return nil
}

func (r *ImageRepository) Update(ctx context.Context, image *entity.Image) error {
	query := `
		UPDATE images SET
			category_id = ?,
			filename = ?,
			caption = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		image.CategoryID,
		image.Filename,
		image.Caption,
		image.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrImageNotFound
	}

	return nil
}

func (r *ImageRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrImageNotFound
	}

	return nil
}

func (r *ImageRepository) FindByID(ctx context.Context, id uint64) (*entity.Image, error) {
	query := `
		SELECT id, category_id, filename, caption, created_at
		FROM images
		WHERE id = ?
	`

	image := &entity.Image{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&image.ID,
		&image.CategoryID,
		&image.Filename,
		&image.Caption,
		&image.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return image, nil
}

// ListByCategory returns the category's images in display order (by id).
func (r *ImageRepository) ListByCategory(ctx context.Context, categoryID uint64) ([]*entity.Image, error) {
	query := `
		SELECT id, category_id, filename, caption, created_at
		FROM images
		WHERE category_id = ?
		ORDER BY id ASC
	`
	return r.list(ctx, query, categoryID)
}

func (r *ImageRepository) ListAll(ctx context.Context) ([]*entity.Image, error) {
	query := `
		SELECT id, category_id, filename, caption, created_at
		FROM images
		ORDER BY id ASC
	`
	return r.list(ctx, query)
}

func (r *ImageRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images`).Scan(&count)
	return count, err
}

func (r *ImageRepository) CountByCategory(ctx context.Context, categoryID uint64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM images WHERE category_id = ?`, categoryID).Scan(&count)
	return count, err
}

// ListFilenames returns every stored filename still referenced by an image row.
func (r *ImageRepository) ListFilenames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT filename FROM images`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	filenames := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		filenames = append(filenames, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return filenames, nil
}

func (r *ImageRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Image, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]*entity.Image, 0)
	for rows.Next() {
		item := &entity.Image{}
		if err := rows.Scan(&item.ID, &item.CategoryID, &item.Filename, &item.Caption, &item.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return images, nil
}
