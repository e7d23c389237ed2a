package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReference возвращается, когда операция ссылается на
	// несуществующего клиента или товар.
	ErrInvalidReference = errors.New("referenced entity does not exist")
	// ErrInvalidQuantity возвращается при количестве <= 0.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	// ErrEmptyOrder возвращается при попытке сохранить заказ без позиций.
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// ErrNotFound возвращается, когда сущность не найдена в ожидаемой
	// коллекции или хранилище.
	ErrNotFound = errors.New("entity not found")

	// Ошибки валидации полей каталожных сущностей.
	ErrNameRequired     = errors.New("name is required")
	ErrDocumentRequired = errors.New("document is required")
	ErrCategoryRequired = errors.New("category_id is required")
	ErrPriceNegative    = errors.New("price must be non-negative")
)

// PersistenceError сигнализирует о сбое хранилища внутри транзакции.
// Транзакция к этому моменту уже откачена, частичное состояние не видно.
type PersistenceError struct {
	// Op называет операцию репозитория, в которой произошёл сбой.
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

// Unwrap открывает исходную причину для errors.Is/As.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError оборачивает низкоуровневую ошибку хранилища.
func NewPersistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// IsNotFound проверяет, является ли ошибка отсутствием сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
