package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSalesRow — строка отчёта по продажам: товар, суммарно проданное
// количество и дата последней продажи.
type ProductSalesRow struct {
	ProductName string
	QtySold     int64
	LastSale    time.Time
}

// ClientRevenueRow — строка финансового отчёта: клиент и суммарная
// выручка по всем его заказам.
type ClientRevenueRow struct {
	ClientName string
	Revenue    decimal.Decimal
}

// SalesReporter строит read-only проекции по сохранённым заказам.
// Отчёты ничего не изменяют и всегда считаются по всем заказам;
// только TotalRevenue ограничен периодом — эта асимметрия является
// частью контракта.
type SalesReporter interface {
	// TotalRevenue возвращает сумму заказов за период [start, end]
	// включительно; ноль, когда заказов нет.
	TotalRevenue(start, end time.Time) (decimal.Decimal, error)
	// SalesByProduct возвращает строки, упорядоченные по количеству
	// убыванием, при равенстве — по имени товара.
	SalesByProduct() ([]ProductSalesRow, error)
	// RevenueByClient возвращает строки, упорядоченные по выручке
	// убыванием, при равенстве — по имени клиента.
	RevenueByClient() ([]ClientRevenueRow, error)
}
