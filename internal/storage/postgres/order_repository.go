package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

// dateArg передаёт календарную дату в колонку DATE текстом YYYY-MM-DD.
// time.Time уходит на сервер как timestamptz и конвертируется в дату
// через часовой пояс сессии, что на не-UTC сервере сдвигает границы дня.
func dateArg(t time.Time) string {
	return domain.DateOnly(t).Format("2006-01-02")
}

type orderRepository struct {
	store *Store
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{store: store}
}

// Save сохраняет новый заказ вместе с позициями в одной транзакции.
// Пустой заказ отклоняется до какого-либо обращения к базе.
func (r *orderRepository) Save(order *domain.Order) error {
	if order == nil || len(order.Items) == 0 {
		return domain.ErrEmptyOrder
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, client_id, order_date)
			VALUES ($1, $2, $3)
		`, order.ID, order.ClientID, dateArg(order.Date)); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range order.Items {
			if err := insertItem(ctx, tx, order.ID, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.NewPersistenceError("save order", err)
	}

	return nil
}

// Update сводит сохранённое состояние заказа к текущему состоянию агрегата:
// скалярные поля обновляются, набор позиций синхронизируется diff-ом по ID —
// новые вставляются, отсутствующие удаляются, оставшиеся обновляются.
func (r *orderRepository) Update(order *domain.Order) error {
	if order == nil {
		return domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET client_id = $1,
			    order_date = $2
			WHERE id = $3
		`, order.ClientID, dateArg(order.Date), order.ID)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return domain.ErrNotFound
		}

		return syncItems(ctx, tx, order)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.NewPersistenceError("update order", err)
	}

	return nil
}

// Delete удаляет заказ и все его позиции. Позиции удаляются первыми внутри
// той же транзакции, чтобы откат восстанавливал и заказ, и позиции.
func (r *orderRepository) Delete(order *domain.Order) error {
	if order == nil {
		return domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM order_items WHERE order_id = $1
		`, order.ID); err != nil {
			return fmt.Errorf("delete order items: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, order.ID)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.NewPersistenceError("delete order", err)
	}

	return nil
}

// DeleteItem удаляет одну позицию, не трогая остальной заказ.
func (r *orderRepository) DeleteItem(item domain.OrderItem) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.store.WithinTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1`, item.ID)
		if err != nil {
			return fmt.Errorf("delete order item: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.NewPersistenceError("delete order item", err)
	}

	return nil
}

func (r *orderRepository) FindByID(id string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	order, err := scanOrder(r.store.db.QueryRowContext(ctx, selectOrderSQL+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewPersistenceError("find order", err)
	}

	items, err := loadItems(ctx, r.store.db, order.ID)
	if err != nil {
		return nil, domain.NewPersistenceError("find order", err)
	}
	order.Items = items

	return order, nil
}

// FindByDateRange возвращает заказы с датой в [start, end], включительно
// с обеих сторон. Позиции и клиент подгружаются жадно.
func (r *orderRepository) FindByDateRange(start, end time.Time) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	orders, err := r.queryOrders(ctx,
		selectOrderSQL+` WHERE o.order_date BETWEEN $1 AND $2 ORDER BY o.id`,
		dateArg(start), dateArg(end),
	)
	if err != nil {
		return nil, domain.NewPersistenceError("find orders by date range", err)
	}
	return orders, nil
}

func (r *orderRepository) FindByClient(clientID string) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	orders, err := r.queryOrders(ctx,
		selectOrderSQL+` WHERE o.client_id = $1 ORDER BY o.id`,
		clientID,
	)
	if err != nil {
		return nil, domain.NewPersistenceError("find orders by client", err)
	}
	return orders, nil
}

const selectOrderSQL = `
	SELECT o.id, o.client_id, o.order_date, c.name, c.document
	FROM orders o
	JOIN clients c ON c.id = o.client_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order  domain.Order
		client domain.Client
	)
	if err := row.Scan(&order.ID, &order.ClientID, &order.Date, &client.Name, &client.Document); err != nil {
		return nil, err
	}
	client.ID = order.ClientID
	order.Client = &client
	order.Date = domain.DateOnly(order.Date)
	return &order, nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for _, order := range orders {
		items, err := loadItems(ctx, r.store.db, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

func loadItems(ctx context.Context, db DBTX, orderID string) ([]domain.OrderItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, qty, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID,
			&item.ProductName, &item.Qty, &item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func insertItem(ctx context.Context, tx DBTX, orderID string, item domain.OrderItem) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, product_name, qty, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, item.ID, orderID, item.ProductID, item.ProductName, item.Qty, item.UnitPrice); err != nil {
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// syncItems приводит сохранённый набор позиций к набору агрегата:
// вычисляет разность множеств по ID и вставляет/обновляет/удаляет строки.
func syncItems(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM order_items WHERE order_id = $1
	`, order.ID)
	if err != nil {
		return fmt.Errorf("load stored item ids: %w", err)
	}
	stored := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan stored item id: %w", err)
		}
		stored[id] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate stored item ids: %w", err)
	}
	rows.Close()

	current := make(map[string]bool, len(order.Items))
	for _, item := range order.Items {
		current[item.ID] = true
		if stored[item.ID] {
			if _, err := tx.ExecContext(ctx, `
				UPDATE order_items
				SET product_id = $1, product_name = $2, qty = $3, unit_price = $4
				WHERE id = $5
			`, item.ProductID, item.ProductName, item.Qty, item.UnitPrice, item.ID); err != nil {
				return fmt.Errorf("update order item: %w", err)
			}
			continue
		}
		if err := insertItem(ctx, tx, order.ID, item); err != nil {
			return err
		}
	}

	for id := range stored {
		if current[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete removed order item: %w", err)
		}
	}

	return nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
