package memory

import (
	"errors"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

// errDuplicateID возвращается при попытке вставить сущность с занятым ID.
var errDuplicateID = errors.New("id already taken")

// CategoryRepository — in-memory реализация для локальной разработки и тестов.
// Ссылочная целостность каталога здесь не эмулируется: её проверяет
// сервисный слой, а в production — внешние ключи PostgreSQL.
type CategoryRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Category
}

// NewCategoryRepository возвращает пустой in-memory репозиторий категорий.
func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{items: make(map[string]domain.Category)}
}

func (r *CategoryRepository) Create(category domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[category.ID]; exists {
		return domain.NewPersistenceError("create category", errDuplicateID)
	}
	r.items[category.ID] = category
	return nil
}

func (r *CategoryRepository) Update(category domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[category.ID]; !exists {
		return domain.ErrNotFound
	}
	r.items[category.ID] = category
	return nil
}

func (r *CategoryRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *CategoryRepository) FindByID(id string) (domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.items[id]
	if !ok {
		return domain.Category{}, domain.ErrNotFound
	}
	return category, nil
}

func (r *CategoryRepository) FindAll() ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.items))
	for _, category := range r.items {
		result = append(result, category)
	}
	sortByNameThenID(result,
		func(c domain.Category) string { return c.Name },
		func(c domain.Category) string { return c.ID })
	return result, nil
}

// ProductRepository — in-memory реализация ProductRepository.
type ProductRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает пустой in-memory репозиторий товаров.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: make(map[string]domain.Product)}
}

func (r *ProductRepository) Create(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.NewPersistenceError("create product", errDuplicateID)
	}
	r.items[product.ID] = product
	return nil
}

func (r *ProductRepository) Update(product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; !exists {
		return domain.ErrNotFound
	}
	r.items[product.ID] = product
	return nil
}

func (r *ProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ProductRepository) FindByID(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return product, nil
}

func (r *ProductRepository) FindAll() ([]domain.Product, error) {
	return r.filter(func(domain.Product) bool { return true }), nil
}

// FindByName возвращает товары с точным совпадением имени.
func (r *ProductRepository) FindByName(name string) ([]domain.Product, error) {
	return r.filter(func(p domain.Product) bool { return p.Name == name }), nil
}

func (r *ProductRepository) FindByCategory(categoryID string) ([]domain.Product, error) {
	return r.filter(func(p domain.Product) bool { return p.CategoryID == categoryID }), nil
}

func (r *ProductRepository) filter(keep func(domain.Product) bool) []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0)
	for _, product := range r.items {
		if keep(product) {
			result = append(result, product)
		}
	}
	sortByNameThenID(result,
		func(p domain.Product) string { return p.Name },
		func(p domain.Product) string { return p.ID })
	return result
}

// ClientRepository — in-memory реализация ClientRepository.
type ClientRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Client
}

// NewClientRepository возвращает пустой in-memory репозиторий клиентов.
func NewClientRepository() *ClientRepository {
	return &ClientRepository{items: make(map[string]domain.Client)}
}

func (r *ClientRepository) Create(client domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[client.ID]; exists {
		return domain.NewPersistenceError("create client", errDuplicateID)
	}
	r.items[client.ID] = client
	return nil
}

func (r *ClientRepository) Update(client domain.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[client.ID]; !exists {
		return domain.ErrNotFound
	}
	r.items[client.ID] = client
	return nil
}

func (r *ClientRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ClientRepository) FindByID(id string) (domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.items[id]
	if !ok {
		return domain.Client{}, domain.ErrNotFound
	}
	return client, nil
}

func (r *ClientRepository) FindAll() ([]domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Client, 0, len(r.items))
	for _, client := range r.items {
		result = append(result, client)
	}
	sortByNameThenID(result,
		func(c domain.Client) string { return c.Name },
		func(c domain.Client) string { return c.ID })
	return result, nil
}

// sortByNameThenID сортирует так же, как SQL-реализации: по имени,
// при равенстве — по ID.
func sortByNameThenID[T any](items []T, name func(T) string, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		if name(items[i]) != name(items[j]) {
			return name(items[i]) < name(items[j])
		}
		return id(items[i]) < id(items[j])
	})
}

var (
	_ domain.CategoryRepository = (*CategoryRepository)(nil)
	_ domain.ProductRepository  = (*ProductRepository)(nil)
	_ domain.ClientRepository   = (*ClientRepository)(nil)
)
