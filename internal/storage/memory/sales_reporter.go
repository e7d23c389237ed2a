package memory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

// SalesReporter — in-memory реализация отчётов. Считает те же проекции,
// что SQL-реализация, перебором снапшота заказов.
type SalesReporter struct {
	orders  *OrderRepository
	clients domain.ClientRepository
}

// NewSalesReporter возвращает построитель отчётов поверх in-memory заказов.
func NewSalesReporter(orders *OrderRepository, clients domain.ClientRepository) *SalesReporter {
	return &SalesReporter{orders: orders, clients: clients}
}

// TotalRevenue суммирует суммы заказов за период [start, end] включительно.
// Складываются уже округлённые суммы заказов, а не сырые значения позиций:
// выручка обязана совпадать с Σ Order.Total() по тем же заказам.
// Возвращает ноль, когда заказов нет.
func (r *SalesReporter) TotalRevenue(start, end time.Time) (decimal.Decimal, error) {
	startDay := domain.DateOnly(start)
	endDay := domain.DateOnly(end)

	total := decimal.Zero
	for _, order := range r.orders.snapshot() {
		if order.Date.Before(startDay) || order.Date.After(endDay) {
			continue
		}
		total = total.Add(order.Total())
	}
	return total, nil
}

// SalesByProduct группирует позиции всех заказов по имени товара:
// суммарное количество и дата последней продажи, по количеству убыванием.
func (r *SalesReporter) SalesByProduct() ([]domain.ProductSalesRow, error) {
	type acc struct {
		qty      int64
		lastSale time.Time
	}
	byProduct := make(map[string]*acc)

	for _, order := range r.orders.snapshot() {
		for _, item := range order.Items {
			a, ok := byProduct[item.ProductName]
			if !ok {
				a = &acc{}
				byProduct[item.ProductName] = a
			}
			a.qty += int64(item.Qty)
			if order.Date.After(a.lastSale) {
				a.lastSale = order.Date
			}
		}
	}

	report := make([]domain.ProductSalesRow, 0, len(byProduct))
	for name, a := range byProduct {
		report = append(report, domain.ProductSalesRow{
			ProductName: name,
			QtySold:     a.qty,
			LastSale:    a.lastSale,
		})
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].QtySold != report[j].QtySold {
			return report[i].QtySold > report[j].QtySold
		}
		return report[i].ProductName < report[j].ProductName
	})
	return report, nil
}

// RevenueByClient группирует выручку всех заказов по имени клиента,
// по выручке убыванием. Как и в TotalRevenue, складываются округлённые
// суммы заказов.
func (r *SalesReporter) RevenueByClient() ([]domain.ClientRevenueRow, error) {
	byClient := make(map[string]decimal.Decimal)

	for _, order := range r.orders.snapshot() {
		name := r.clientName(order.ClientID)
		byClient[name] = byClient[name].Add(order.Total())
	}

	report := make([]domain.ClientRevenueRow, 0, len(byClient))
	for name, revenue := range byClient {
		report = append(report, domain.ClientRevenueRow{
			ClientName: name,
			Revenue:    revenue,
		})
	}
	sort.Slice(report, func(i, j int) bool {
		if !report[i].Revenue.Equal(report[j].Revenue) {
			return report[i].Revenue.GreaterThan(report[j].Revenue)
		}
		return report[i].ClientName < report[j].ClientName
	})
	return report, nil
}

func (r *SalesReporter) clientName(clientID string) string {
	if r.clients == nil {
		return clientID
	}
	client, err := r.clients.FindByID(clientID)
	if err != nil {
		return clientID
	}
	return client.Name
}

var _ domain.SalesReporter = (*SalesReporter)(nil)
