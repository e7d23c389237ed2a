package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

type productRepository struct {
	store *Store
}

// NewProductRepository создаёт PostgreSQL-реализацию ProductRepository.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{store: store}
}

func (r *productRepository) Create(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO products (id, name, description, price, category_id)
			VALUES ($1, $2, $3, $4, $5)
		`, product.ID, product.Name, product.Description, product.Price, product.CategoryID); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("category does not exist: %w", err)
			}
			return fmt.Errorf("insert product: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.NewPersistenceError("create product", err)
	}
	return nil
}

func (r *productRepository) Update(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		return execExpectingRow(ctx, tx, `
			UPDATE products
			SET name = $1, description = $2, price = $3, category_id = $4
			WHERE id = $5
		`, "update product", product.Name, product.Description, product.Price,
			product.CategoryID, product.ID)
	})
	return normalizeWriteErr("update product", err)
}

func (r *productRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		err := execExpectingRow(ctx, tx, `DELETE FROM products WHERE id = $1`, "delete product", id)
		if err != nil && isForeignKeyViolation(err) {
			return fmt.Errorf("product is referenced by order items: %w", err)
		}
		return err
	})
	return normalizeWriteErr("delete product", err)
}

func (r *productRepository) FindByID(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.store.db.QueryRowContext(ctx, selectProductSQL+` WHERE id = $1`, id).Scan(
		&product.ID, &product.Name, &product.Description, &product.Price, &product.CategoryID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, domain.NewPersistenceError("find product", err)
	}
	return product, nil
}

func (r *productRepository) FindAll() ([]domain.Product, error) {
	return r.queryProducts(selectProductSQL + ` ORDER BY name, id`)
}

// FindByName возвращает товары с точным совпадением имени.
func (r *productRepository) FindByName(name string) ([]domain.Product, error) {
	return r.queryProducts(selectProductSQL+` WHERE name = $1 ORDER BY id`, name)
}

func (r *productRepository) FindByCategory(categoryID string) ([]domain.Product, error) {
	return r.queryProducts(selectProductSQL+` WHERE category_id = $1 ORDER BY name, id`, categoryID)
}

const selectProductSQL = `
	SELECT id, name, description, price, category_id
	FROM products
`

func (r *productRepository) queryProducts(query string, args ...any) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewPersistenceError("list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Description,
			&product.Price, &product.CategoryID,
		); err != nil {
			return nil, domain.NewPersistenceError("list products", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("list products", err)
	}
	return products, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
