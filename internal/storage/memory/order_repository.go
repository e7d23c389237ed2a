package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

// OrderRepository — in-memory реализация транзакционного хранилища заказов.
// Атомарность эмулируется просто: все проверки выполняются до первой
// мутации разделяемого состояния, само состояние меняется под мьютексом.
type OrderRepository struct {
	mu      sync.RWMutex
	orders  map[string]*domain.Order
	clients domain.ClientRepository
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
// clients используется для жадного присоединения клиента при чтении;
// допускается nil, тогда Client у загруженных заказов остаётся пустым.
func NewOrderRepository(clients domain.ClientRepository) *OrderRepository {
	return &OrderRepository{
		orders:  make(map[string]*domain.Order),
		clients: clients,
	}
}

// Save сохраняет новый заказ. Пустой заказ отклоняется до записи.
func (r *OrderRepository) Save(order *domain.Order) error {
	if order == nil || len(order.Items) == 0 {
		return domain.ErrEmptyOrder
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return domain.NewPersistenceError("save order", errDuplicateID)
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

// Update замещает сохранённое состояние заказа состоянием агрегата.
// Полная замена копии эквивалентна diff-синхронизации SQL-реализации.
func (r *OrderRepository) Update(order *domain.Order) error {
	if order == nil {
		return domain.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; !exists {
		return domain.ErrNotFound
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

// Delete удаляет заказ вместе со всеми его позициями.
func (r *OrderRepository) Delete(order *domain.Order) error {
	if order == nil {
		return domain.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; !exists {
		return domain.ErrNotFound
	}
	delete(r.orders, order.ID)
	return nil
}

// DeleteItem удаляет одну позицию из сохранённого заказа.
func (r *OrderRepository) DeleteItem(item domain.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, order := range r.orders {
		for idx, stored := range order.Items {
			if stored.ID == item.ID {
				order.Items = append(order.Items[:idx], order.Items[idx+1:]...)
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (r *OrderRepository) FindByID(id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.attachClient(cloneOrder(order)), nil
}

// FindByDateRange возвращает заказы с датой в [start, end] включительно.
func (r *OrderRepository) FindByDateRange(start, end time.Time) ([]*domain.Order, error) {
	startDay := domain.DateOnly(start)
	endDay := domain.DateOnly(end)
	return r.filter(func(o *domain.Order) bool {
		return !o.Date.Before(startDay) && !o.Date.After(endDay)
	}), nil
}

func (r *OrderRepository) FindByClient(clientID string) ([]*domain.Order, error) {
	return r.filter(func(o *domain.Order) bool {
		return o.ClientID == clientID
	}), nil
}

func (r *OrderRepository) filter(keep func(*domain.Order) bool) []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if keep(order) {
			result = append(result, r.attachClient(cloneOrder(order)))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// snapshot возвращает копии всех заказов; используется отчётами.
func (r *OrderRepository) snapshot() []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		result = append(result, cloneOrder(order))
	}
	return result
}

func (r *OrderRepository) attachClient(order *domain.Order) *domain.Order {
	if r.clients == nil {
		return order
	}
	client, err := r.clients.FindByID(order.ClientID)
	if err != nil {
		return order
	}
	order.Client = &client
	return order
}

// cloneOrder копирует заказ вместе с позициями, чтобы мутации агрегата
// у вызывающего не просачивались в сохранённое состояние.
func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = make([]domain.OrderItem, len(order.Items))
	copy(clone.Items, order.Items)
	if order.Client != nil {
		client := *order.Client
		clone.Client = &client
	}
	return &clone
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
