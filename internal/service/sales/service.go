package sales

import (
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
	"github.com/vladislavdragonenkov/catalog/internal/metrics"
)

// Service отдаёт read-only отчёты по продажам. Данные не изменяет.
type Service struct {
	reporter domain.SalesReporter
	logger   *log.Entry
	metrics  *metrics.OperationMetrics
}

// NewService создаёт сервис отчётов.
func NewService(reporter domain.SalesReporter, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "sales")
	}
	return &Service{
		reporter: reporter,
		logger:   logger,
		metrics:  metrics.NewOperationMetrics(),
	}
}

// TotalRevenue возвращает выручку за период [start, end] включительно;
// ноль, когда подходящих заказов нет.
func (s *Service) TotalRevenue(start, end time.Time) (total decimal.Decimal, err error) {
	defer s.observe("total_revenue", time.Now(), &err)
	return s.reporter.TotalRevenue(start, end)
}

// SalesByProduct возвращает отчёт по продажам, упорядоченный по
// проданному количеству убыванием. Периодом не ограничивается.
func (s *Service) SalesByProduct() (rows []domain.ProductSalesRow, err error) {
	defer s.observe("sales_by_product", time.Now(), &err)
	return s.reporter.SalesByProduct()
}

// RevenueByClient возвращает финансовый отчёт, упорядоченный по
// выручке убыванием. Периодом не ограничивается.
func (s *Service) RevenueByClient() (rows []domain.ClientRevenueRow, err error) {
	defer s.observe("revenue_by_client", time.Now(), &err)
	return s.reporter.RevenueByClient()
}

func (s *Service) observe(op string, start time.Time, err *error) {
	s.metrics.Observe("sales", op, start, *err)
	if *err != nil {
		s.logger.WithError(*err).WithField("op", op).Warn("sales report failed")
	}
}
