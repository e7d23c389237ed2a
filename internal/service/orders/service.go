package orders

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
	"github.com/vladislavdragonenkov/catalog/internal/metrics"
)

// ItemRequest описывает одну запрашиваемую позицию заказа.
type ItemRequest struct {
	ProductID string
	Qty       int
}

// Service реализует операции жизненного цикла заказа поверх портов домена.
// Ошибки ссылок и количества поднимаются до любого обращения к хранилищу,
// поэтому частичного состояния после них не остаётся.
type Service struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	clients  domain.ClientRepository
	logger   *log.Entry
	metrics  *metrics.OperationMetrics
}

// NewService создаёт сервис заказов.
func NewService(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	clients domain.ClientRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{
		orders:   orders,
		products: products,
		clients:  clients,
		logger:   logger,
		metrics:  metrics.NewOperationMetrics(),
	}
}

// PlaceOrder создаёт заказ на клиента из списка (товар, количество),
// фиксируя текущие каталожные цены, и сохраняет его одной транзакцией.
func (s *Service) PlaceOrder(clientID string, items []ItemRequest) (order *domain.Order, err error) {
	defer s.observe("place", time.Now(), &err)

	client, err := s.resolveClient(clientID)
	if err != nil {
		return nil, err
	}

	order, err = domain.NewOrder(&client)
	if err != nil {
		return nil, err
	}

	for _, req := range items {
		product, err := s.resolveProduct(req.ProductID)
		if err != nil {
			return nil, err
		}
		if _, err := order.AddItem(&product, req.Qty); err != nil {
			return nil, err
		}
	}

	if err = s.orders.Save(order); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"order_id":  order.ID,
		"client_id": order.ClientID,
		"items":     len(order.Items),
		"total":     order.Total().StringFixed(2),
	}).Info("order placed")

	return order, nil
}

// AddItem добавляет позицию в сохранённый заказ и пересинхронизирует
// его состояние в хранилище.
func (s *Service) AddItem(orderID, productID string, qty int) (order *domain.Order, err error) {
	defer s.observe("add_item", time.Now(), &err)

	order, err = s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	product, err := s.resolveProduct(productID)
	if err != nil {
		return nil, err
	}
	if _, err = order.AddItem(&product, qty); err != nil {
		return nil, err
	}
	if err = s.orders.Update(order); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return order, nil
}

// RemoveItem убирает позицию из заказа и пересинхронизирует хранилище.
func (s *Service) RemoveItem(orderID, itemID string) (order *domain.Order, err error) {
	defer s.observe("remove_item", time.Now(), &err)

	order, err = s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if err = order.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err = s.orders.Update(order); err != nil {
		return nil, fmt.Errorf("remove item: %w", err)
	}
	return order, nil
}

// ChangeItemQuantity меняет количество в позиции, сохраняя её ID и
// зафиксированную цену.
func (s *Service) ChangeItemQuantity(orderID, itemID string, qty int) (order *domain.Order, err error) {
	defer s.observe("change_item_qty", time.Now(), &err)

	order, err = s.orders.FindByID(orderID)
	if err != nil {
		return nil, err
	}
	if err = order.ChangeItemQuantity(itemID, qty); err != nil {
		return nil, err
	}
	if err = s.orders.Update(order); err != nil {
		return nil, fmt.Errorf("change item quantity: %w", err)
	}
	return order, nil
}

// DeleteOrder удаляет заказ вместе со всеми его позициями.
func (s *Service) DeleteOrder(orderID string) (err error) {
	defer s.observe("delete", time.Now(), &err)

	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return err
	}
	if err = s.orders.Delete(order); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.logger.WithField("order_id", orderID).Info("order deleted")
	return nil
}

// DeleteItem удаляет ровно одну позицию заказа, не переписывая остальные.
func (s *Service) DeleteItem(orderID, itemID string) (err error) {
	defer s.observe("delete_item", time.Now(), &err)

	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return err
	}
	item, ok := order.Item(itemID)
	if !ok {
		return domain.ErrNotFound
	}
	if err = s.orders.DeleteItem(item); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Get возвращает заказ с жадно загруженными позициями и клиентом.
func (s *Service) Get(orderID string) (order *domain.Order, err error) {
	defer s.observe("get", time.Now(), &err)
	return s.orders.FindByID(orderID)
}

// ListByPeriod возвращает заказы с датой в [start, end] включительно.
func (s *Service) ListByPeriod(start, end time.Time) (result []*domain.Order, err error) {
	defer s.observe("list_by_period", time.Now(), &err)
	return s.orders.FindByDateRange(start, end)
}

// ListByClient возвращает все заказы клиента; пустой список — не ошибка.
func (s *Service) ListByClient(clientID string) (result []*domain.Order, err error) {
	defer s.observe("list_by_client", time.Now(), &err)
	return s.orders.FindByClient(clientID)
}

func (s *Service) resolveClient(clientID string) (domain.Client, error) {
	client, err := s.clients.FindByID(clientID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Client{}, domain.ErrInvalidReference
		}
		return domain.Client{}, fmt.Errorf("resolve client %s: %w", clientID, err)
	}
	return client, nil
}

func (s *Service) resolveProduct(productID string) (domain.Product, error) {
	product, err := s.products.FindByID(productID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Product{}, domain.ErrInvalidReference
		}
		return domain.Product{}, fmt.Errorf("resolve product %s: %w", productID, err)
	}
	return product, nil
}

func (s *Service) observe(op string, start time.Time, err *error) {
	s.metrics.Observe("orders", op, start, *err)
	if *err != nil {
		s.logger.WithError(*err).WithField("op", op).Warn("order operation failed")
	}
}
