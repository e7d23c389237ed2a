package domain

import "time"

// CategoryRepository описывает требования к хранилищу категорий.
type CategoryRepository interface {
	Create(category Category) error
	Update(category Category) error
	// Delete возвращает ErrNotFound, если категории нет.
	Delete(id string) error
	// FindByID возвращает категорию или ErrNotFound.
	FindByID(id string) (Category, error)
	FindAll() ([]Category, error)
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	Create(product Product) error
	Update(product Product) error
	Delete(id string) error
	FindByID(id string) (Product, error)
	FindAll() ([]Product, error)
	// FindByName возвращает товары с точным совпадением имени.
	FindByName(name string) ([]Product, error)
	FindByCategory(categoryID string) ([]Product, error)
}

// ClientRepository описывает требования к хранилищу клиентов.
type ClientRepository interface {
	Create(client Client) error
	Update(client Client) error
	Delete(id string) error
	FindByID(id string) (Client, error)
	FindAll() ([]Client, error)
}

// OrderRepository описывает транзакционное хранилище агрегата заказа.
// Каждая операция записи выполняется ровно в одной транзакции и либо
// фиксируется целиком, либо откатывается без следов. Изоляция между
// конкурентными вызовами не гарантируется: предполагается один писатель.
type OrderRepository interface {
	// Save сохраняет новый заказ вместе со всеми позициями.
	// Пустой заказ отклоняется с ErrEmptyOrder до обращения к хранилищу.
	Save(order *Order) error
	// Update сводит сохранённое состояние к текущему состоянию агрегата:
	// новые позиции вставляются, отсутствующие удаляются, оставшиеся
	// обновляются — всё в одной транзакции.
	Update(order *Order) error
	// Delete удаляет заказ вместе с позициями (позиции первыми, в той же
	// транзакции, чтобы откат восстанавливал и то и другое).
	Delete(order *Order) error
	// DeleteItem удаляет одну позицию, не переписывая весь заказ.
	DeleteItem(item OrderItem) error
	// FindByID возвращает заказ с жадно загруженными позициями и клиентом
	// или ErrNotFound.
	FindByID(id string) (*Order, error)
	// FindByDateRange возвращает заказы с датой в [start, end] включительно.
	// Хронологический порядок не гарантируется.
	FindByDateRange(start, end time.Time) ([]*Order, error)
	// FindByClient возвращает все заказы клиента с позициями и клиентом.
	FindByClient(clientID string) ([]*Order, error)
}
