package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rebk-studio/ms-go-studio/app/entity"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrDuplicateSlug    = errors.New("category slug already exists")
)

type CategoryRepository struct {
	db DBTX
}

func NewCategoryRepository(db DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (name, description, slug)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, category.Name, category.Description, category.Slug)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateSlug
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	category.ID = uint64(id)

	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	query := `
		UPDATE categories SET
			name = ?,
			description = ?,
			slug = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, category.Name, category.Description, category.Slug, category.ID)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateSlug
		}
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint64) (*entity.Category, error) {
	query := `
		SELECT id, name, description, slug
		FROM categories
		WHERE id = ?
	`
	return r.findOne(ctx, query, id)
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	query := `
		SELECT id, name, description, slug
		FROM categories
		WHERE slug = ?
		LIMIT 1
	`
	return r.findOne(ctx, query, slug)
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	query := `
		SELECT id, name, description, slug
		FROM categories
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*entity.Category, 0)
	for rows.Next() {
		item := &entity.Category{}
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Slug); err != nil {
			return nil, err
		}
		categories = append(categories, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *CategoryRepository) findOne(ctx context.Context, query string, arg interface{}) (*entity.Category, error) {
	category := &entity.Category{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.Slug,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return category, nil
}
