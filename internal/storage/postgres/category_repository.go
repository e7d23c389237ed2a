package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

type categoryRepository struct {
	store *Store
}

// NewCategoryRepository создаёт PostgreSQL-реализацию CategoryRepository.
func NewCategoryRepository(store *Store) domain.CategoryRepository {
	return &categoryRepository{store: store}
}

func (r *categoryRepository) Create(category domain.Category) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name) VALUES ($1, $2)
		`, category.ID, category.Name); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("category id already taken: %w", err)
			}
			return fmt.Errorf("insert category: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.NewPersistenceError("create category", err)
	}
	return nil
}

func (r *categoryRepository) Update(category domain.Category) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		return execExpectingRow(ctx, tx, `
			UPDATE categories SET name = $1 WHERE id = $2
		`, "update category", category.Name, category.ID)
	})
	return normalizeWriteErr("update category", err)
}

func (r *categoryRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		err := execExpectingRow(ctx, tx, `DELETE FROM categories WHERE id = $1`, "delete category", id)
		if err != nil && isForeignKeyViolation(err) {
			return fmt.Errorf("category is referenced by products: %w", err)
		}
		return err
	})
	return normalizeWriteErr("delete category", err)
}

func (r *categoryRepository) FindByID(id string) (domain.Category, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var category domain.Category
	err := r.store.db.QueryRowContext(ctx, `
		SELECT id, name FROM categories WHERE id = $1
	`, id).Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, domain.ErrNotFound
		}
		return domain.Category{}, domain.NewPersistenceError("find category", err)
	}
	return category, nil
}

func (r *categoryRepository) FindAll() ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, name FROM categories ORDER BY name, id
	`)
	if err != nil {
		return nil, domain.NewPersistenceError("list categories", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, domain.NewPersistenceError("list categories", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("list categories", err)
	}
	return categories, nil
}

// execExpectingRow выполняет запись, которая обязана затронуть хотя бы
// одну строку; ноль затронутых строк означает ErrNotFound.
func execExpectingRow(ctx context.Context, tx DBTX, query, op string, args ...any) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// normalizeWriteErr пропускает доменные ошибки как есть и заворачивает
// остальные в PersistenceError.
func normalizeWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return domain.NewPersistenceError(op, err)
}

var _ domain.CategoryRepository = (*categoryRepository)(nil)
