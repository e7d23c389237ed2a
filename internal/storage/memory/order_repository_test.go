package memory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

func newTestClient(t *testing.T, clients domain.ClientRepository, name string) domain.Client {
	t.Helper()
	client := domain.Client{ID: "client-" + name, Name: name, Document: "doc-" + name}
	require.NoError(t, clients.Create(client))
	return client
}

func newTestProduct(name, price string) domain.Product {
	return domain.Product{
		ID:         "product-" + name,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: "category-1",
	}
}

func newTestOrder(t *testing.T, client domain.Client, date string, lines ...struct {
	product domain.Product
	qty     int
}) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(&client)
	require.NoError(t, err)
	day, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	order.Date = domain.DateOnly(day)
	for _, line := range lines {
		product := line.product
		_, err := order.AddItem(&product, line.qty)
		require.NoError(t, err)
	}
	return order
}

type orderLine = struct {
	product domain.Product
	qty     int
}

func TestOrderRepositorySaveRejectsEmptyOrder(t *testing.T) {
	clients := NewClientRepository()
	repo := NewOrderRepository(clients)
	client := newTestClient(t, clients, "ivan")

	order, err := domain.NewOrder(&client)
	require.NoError(t, err)

	err = repo.Save(order)
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)

	_, err = repo.FindByID(order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepositorySaveAndFindAttachesClient(t *testing.T) {
	clients := NewClientRepository()
	repo := NewOrderRepository(clients)
	client := newTestClient(t, clients, "ivan")
	product := newTestProduct("mouse", "800.00")

	order := newTestOrder(t, client, "2026-08-10", orderLine{product, 2})
	require.NoError(t, repo.Save(order))

	stored, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Client)
	assert.Equal(t, "ivan", stored.Client.Name)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, "1600.00", stored.Total().StringFixed(2))
}

func TestOrderRepositoryStoredCopyIsIsolated(t *testing.T) {
	clients := NewClientRepository()
	repo := NewOrderRepository(clients)
	client := newTestClient(t, clients, "ivan")
	product := newTestProduct("mouse", "800.00")

	order := newTestOrder(t, client, "2026-08-10", orderLine{product, 2})
	require.NoError(t, repo.Save(order))

	// Мутация агрегата после сохранения не должна менять хранимое состояние.
	require.NoError(t, order.ChangeItemQuantity(order.Items[0].ID, 99))

	stored, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Items[0].Qty)
}

func TestOrderRepositoryUpdateReplacesItems(t *testing.T) {
	clients := NewClientRepository()
	repo := NewOrderRepository(clients)
	client := newTestClient(t, clients, "ivan")
	mouse := newTestProduct("mouse", "800.00")
	keyboard := newTestProduct("keyboard", "1200.50")

	order := newTestOrder(t, client, "2026-08-10", orderLine{mouse, 2}, orderLine{keyboard, 1})
	require.NoError(t, repo.Save(order))

	require.NoError(t, order.RemoveItem(order.Items[0].ID))
	_, err := order.AddItem(&keyboard, 3)
	require.NoError(t, err)
	require.NoError(t, repo.Update(order))

	stored, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	for _, item := range stored.Items {
		assert.Equal(t, "keyboard", item.ProductName)
	}
}

func TestOrderRepositoryUpdateUnknownOrder(t *testing.T) {
	repo := NewOrderRepository(NewClientRepository())
	client := domain.Client{ID: "client-x", Name: "x", Document: "d"}

	order := newTestOrder(t, client, "2026-08-10", orderLine{newTestProduct("mouse", "10"), 1})
	assert.ErrorIs(t, repo.Update(order), domain.ErrNotFound)
}

func TestOrderRepositoryDeleteRemovesItemsToo(t *testing.T) {
	clients := NewClientRepository()
	repo := NewOrderRepository(clients)
	client := newTestClient(t, clients, "ivan")
	product := newTestProduct("mouse", "800.00")

	order := newTestOrder(t, client, "2026-08-10", orderLine{product, 2})
	itemID := order.Items[0].ID
	require.NoError(t, repo.Save(order))

	require.NoError(t, repo.Delete(order))

	_, err := repo.FindByID(order.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteItem(domain.OrderItem{ID: itemID}), domain.ErrNotFound)
}

func TestOrderRepositoryDeleteItem(t *testing.T) {
	clients := NewClientRepository()
	repo := NewOrderRepository(clients)
	client := newTestClient(t, clients, "ivan")
	mouse := newTestProduct("mouse", "800.00")
	keyboard := newTestProduct("keyboard", "1200.50")

	order := newTestOrder(t, client, "2026-08-10", orderLine{mouse, 2}, orderLine{keyboard, 1})
	require.NoError(t, repo.Save(order))

	require.NoError(t, repo.DeleteItem(order.Items[0]))

	stored, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "keyboard", stored.Items[0].ProductName)

	assert.ErrorIs(t, repo.DeleteItem(order.Items[0]), domain.ErrNotFound)
}

func TestOrderRepositoryFindByDateRangeInclusive(t *testing.T) {
	clients := NewClientRepository()
	repo := NewOrderRepository(clients)
	client := newTestClient(t, clients, "ivan")
	product := newTestProduct("mouse", "800.00")

	for _, date := range []string{"2026-08-09", "2026-08-10", "2026-08-11", "2026-08-12"} {
		order := newTestOrder(t, client, date, orderLine{product, 1})
		require.NoError(t, repo.Save(order))
	}

	start, _ := time.Parse("2006-01-02", "2026-08-10")
	end, _ := time.Parse("2006-01-02", "2026-08-11")

	found, err := repo.FindByDateRange(start, end)
	require.NoError(t, err)
	require.Len(t, found, 2)
	// Обе границы включаются, сортировка по дате возрастающая.
	assert.Equal(t, "2026-08-10", found[0].Date.Format("2006-01-02"))
	assert.Equal(t, "2026-08-11", found[1].Date.Format("2006-01-02"))
}

func TestOrderRepositoryFindByClient(t *testing.T) {
	clients := NewClientRepository()
	repo := NewOrderRepository(clients)
	ivan := newTestClient(t, clients, "ivan")
	olga := newTestClient(t, clients, "olga")
	product := newTestProduct("mouse", "800.00")

	require.NoError(t, repo.Save(newTestOrder(t, ivan, "2026-08-10", orderLine{product, 1})))
	require.NoError(t, repo.Save(newTestOrder(t, ivan, "2026-08-11", orderLine{product, 2})))
	require.NoError(t, repo.Save(newTestOrder(t, olga, "2026-08-11", orderLine{product, 3})))

	found, err := repo.FindByClient(ivan.ID)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	empty, err := repo.FindByClient("client-unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
