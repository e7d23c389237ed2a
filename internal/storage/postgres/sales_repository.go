package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

type salesRepository struct {
	store *Store
}

// NewSalesRepository создаёт PostgreSQL-реализацию SalesReporter.
// Все проекции выводятся из строк позиций (qty * unit_price): сумма заказа
// нигде не хранится отдельным полем и потому не может разойтись с позициями.
// Выручка складывается из сумм заказов, округлённых до 2 знаков каждая,
// так что результат совпадает с Σ Order.Total() по тем же заказам.
func NewSalesRepository(store *Store) domain.SalesReporter {
	return &salesRepository{store: store}
}

// TotalRevenue возвращает выручку за период [start, end] включительно.
// При отсутствии заказов возвращается ноль, а не ошибка.
func (r *salesRepository) TotalRevenue(start, end time.Time) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var total decimal.Decimal
	err := r.store.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(t.order_total), 0)
		FROM (
			SELECT ROUND(SUM(i.qty * i.unit_price), 2) AS order_total
			FROM order_items i
			JOIN orders o ON o.id = i.order_id
			WHERE o.order_date BETWEEN $1 AND $2
			GROUP BY o.id
		) t
	`, dateArg(start), dateArg(end)).Scan(&total)
	if err != nil {
		return decimal.Zero, domain.NewPersistenceError("total revenue", err)
	}
	return total, nil
}

// SalesByProduct группирует позиции всех заказов по имени товара.
// Период не применяется: отчёт всегда покрывает всю историю продаж.
func (r *salesRepository) SalesByProduct() ([]domain.ProductSalesRow, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT i.product_name, SUM(i.qty), MAX(o.order_date)
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		GROUP BY i.product_name
		ORDER BY SUM(i.qty) DESC, i.product_name ASC
	`)
	if err != nil {
		return nil, domain.NewPersistenceError("sales by product", err)
	}
	defer rows.Close()

	report := make([]domain.ProductSalesRow, 0)
	for rows.Next() {
		var row domain.ProductSalesRow
		if err := rows.Scan(&row.ProductName, &row.QtySold, &row.LastSale); err != nil {
			return nil, domain.NewPersistenceError("sales by product", err)
		}
		row.LastSale = domain.DateOnly(row.LastSale)
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("sales by product", err)
	}
	return report, nil
}

// RevenueByClient группирует выручку всех заказов по имени клиента.
func (r *salesRepository) RevenueByClient() ([]domain.ClientRevenueRow, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT t.client_name, SUM(t.order_total) AS revenue
		FROM (
			SELECT c.name AS client_name, ROUND(SUM(i.qty * i.unit_price), 2) AS order_total
			FROM clients c
			JOIN orders o ON o.client_id = c.id
			JOIN order_items i ON i.order_id = o.id
			GROUP BY c.name, o.id
		) t
		GROUP BY t.client_name
		ORDER BY SUM(t.order_total) DESC, t.client_name ASC
	`)
	if err != nil {
		return nil, domain.NewPersistenceError("revenue by client", err)
	}
	defer rows.Close()

	report := make([]domain.ClientRevenueRow, 0)
	for rows.Next() {
		var row domain.ClientRevenueRow
		if err := rows.Scan(&row.ClientName, &row.Revenue); err != nil {
			return nil, domain.NewPersistenceError("revenue by client", err)
		}
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewPersistenceError("revenue by client", err)
	}
	return report, nil
}

var _ domain.SalesReporter = (*salesRepository)(nil)
