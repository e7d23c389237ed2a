package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ID позиции назначается при добавлении и остаётся стабильным
	// на протяжении всех операций diff-синхронизации с хранилищем.
	ID      string
	OrderID string
	// ProductID — ссылка на товар каталога.
	ProductID string
	// ProductName денормализуется в позицию: отчёт по продажам группирует
	// по имени товара на момент продажи, а не по текущему состоянию каталога.
	ProductName string
	// Qty — количество единиц товара, строго положительное.
	Qty int
	// UnitPrice — цена за единицу, зафиксированная в момент добавления позиции.
	// Последующие изменения каталожной цены на неё не влияют.
	UnitPrice decimal.Decimal
}

// Value возвращает стоимость позиции: qty * unit price, без округления.
// Округление выполняется один раз при подсчёте суммы заказа.
func (i OrderItem) Value() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}

// Order — агрегат заказа: корень консистентности для своих позиций.
// Позиции принадлежат заказу эксклюзивно, удаление заказа удаляет и их.
type Order struct {
	ID       string
	ClientID string
	// Client подгружается жадно при чтении из хранилища.
	Client *Client
	// Date — календарная дата заказа (полночь UTC).
	Date  time.Time
	Items []OrderItem
}

// NewOrder создаёт пустой заказ на клиента с датой "сегодня".
// Возвращает ErrInvalidReference, если клиент не задан.
func NewOrder(client *Client) (*Order, error) {
	if client == nil || client.ID == "" {
		return nil, ErrInvalidReference
	}
	return &Order{
		ID:       uuid.NewString(),
		ClientID: client.ID,
		Client:   client,
		Date:     DateOnly(time.Now().UTC()),
	}, nil
}

// AddItem добавляет позицию, фиксируя текущую цену товара.
// Возвращает ErrInvalidQuantity при qty <= 0 и ErrInvalidReference,
// если товар не задан.
func (o *Order) AddItem(product *Product, qty int) (OrderItem, error) {
	if product == nil || product.ID == "" {
		return OrderItem{}, ErrInvalidReference
	}
	if qty <= 0 {
		return OrderItem{}, ErrInvalidQuantity
	}

	item := OrderItem{
		ID:          uuid.NewString(),
		OrderID:     o.ID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Qty:         qty,
		UnitPrice:   product.Price,
	}
	o.Items = append(o.Items, item)
	return item, nil
}

// RemoveItem убирает позицию из заказа. Если позиции с таким ID нет,
// возвращает ErrNotFound: вызывающий не должен молча продолжать.
func (o *Order) RemoveItem(itemID string) error {
	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ChangeItemQuantity меняет количество в позиции, сохраняя её ID и
// зафиксированную цену. Возвращает ErrInvalidQuantity при qty <= 0
// и ErrNotFound, если позиция не принадлежит заказу.
func (o *Order) ChangeItemQuantity(itemID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			o.Items[idx].Qty = qty
			return nil
		}
	}
	return ErrNotFound
}

// Item возвращает позицию заказа по ID.
func (o *Order) Item(itemID string) (OrderItem, bool) {
	for _, item := range o.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return OrderItem{}, false
}

// Total — сумма заказа: Σ(qty * unit price) по всем текущим позициям.
// Значение всегда выводится из позиций и нигде не хранится отдельно.
// Округление half-up до 2 знаков выполняется один раз на итоговой сумме,
// чтобы не накапливать ошибку округления по строкам.
func (o *Order) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Value())
	}
	return sum.Round(2)
}

// DateOnly нормализует момент времени до календарной даты (полночь UTC).
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
