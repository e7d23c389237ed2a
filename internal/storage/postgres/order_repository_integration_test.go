package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

func mustParseDay(t *testing.T, value string) time.Time {
	t.Helper()

	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse day %q: %v", value, err)
	}
	return day
}

func buildOrderForIntegrationTest(t *testing.T, client domain.Client, date string, lines map[*domain.Product]int) *domain.Order {
	t.Helper()

	order, err := domain.NewOrder(&client)
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	order.Date = domain.DateOnly(mustParseDay(t, date))
	for product, qty := range lines {
		if _, err := order.AddItem(product, qty); err != nil {
			t.Fatalf("add item %q: %v", product.Name, err)
		}
	}
	return order
}

func TestOrderRepository_PostgresSaveAndFind(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	category := seedCategoryForIntegrationTest(t, store, "периферия")
	mouse := seedProductForIntegrationTest(t, store, category.ID, "mouse", "800.00")
	keyboard := seedProductForIntegrationTest(t, store, category.ID, "keyboard", "1200.50")
	client := seedClientForIntegrationTest(t, store, "ivan")

	order := buildOrderForIntegrationTest(t, client, "2026-08-10",
		map[*domain.Product]int{&mouse: 2, &keyboard: 1})
	if err := repo.Save(order); err != nil {
		t.Fatalf("save order: %v", err)
	}

	got, err := repo.FindByID(order.ID)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if got.ClientID != client.ID {
		t.Fatalf("unexpected client id: %s", got.ClientID)
	}
	if got.Client == nil || got.Client.Name != "ivan" {
		t.Fatalf("client must be attached eagerly: %+v", got.Client)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Total().StringFixed(2) != "2800.50" {
		t.Fatalf("unexpected total: %s", got.Total().StringFixed(2))
	}
	if !got.Date.Equal(domain.DateOnly(mustParseDay(t, "2026-08-10"))) {
		t.Fatalf("unexpected date: %s", got.Date)
	}
}

func TestOrderRepository_PostgresSaveRejectsEmptyOrder(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	client := seedClientForIntegrationTest(t, store, "ivan")
	order, err := domain.NewOrder(&client)
	if err != nil {
		t.Fatalf("new order: %v", err)
	}

	if err := repo.Save(order); !errors.Is(err, domain.ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
	if _, err := repo.FindByID(order.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("rejected order must not be persisted, got %v", err)
	}
}

func TestOrderRepository_PostgresUpdateSyncsItems(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	category := seedCategoryForIntegrationTest(t, store, "периферия")
	mouse := seedProductForIntegrationTest(t, store, category.ID, "mouse", "800.00")
	keyboard := seedProductForIntegrationTest(t, store, category.ID, "keyboard", "1200.50")
	client := seedClientForIntegrationTest(t, store, "ivan")

	order := buildOrderForIntegrationTest(t, client, "2026-08-10",
		map[*domain.Product]int{&mouse: 2})
	if err := repo.Save(order); err != nil {
		t.Fatalf("save order: %v", err)
	}
	keptID := order.Items[0].ID

	// Одна позиция остаётся с новым количеством, одна добавляется.
	if err := order.ChangeItemQuantity(keptID, 5); err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if _, err := order.AddItem(&keyboard, 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := repo.Update(order); err != nil {
		t.Fatalf("update order: %v", err)
	}

	got, err := repo.FindByID(order.ID)
	if err != nil {
		t.Fatalf("find order after update: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items after sync, got %d", len(got.Items))
	}
	kept, ok := got.Item(keptID)
	if !ok {
		t.Fatalf("retained item must keep its id %s", keptID)
	}
	if kept.Qty != 5 {
		t.Fatalf("unexpected qty after sync: %d", kept.Qty)
	}
	if kept.UnitPrice.StringFixed(2) != "800.00" {
		t.Fatalf("snapshot price must survive sync: %s", kept.UnitPrice.StringFixed(2))
	}

	// Теперь позиция удаляется из агрегата и diff убирает её из базы.
	if err := got.RemoveItem(keptID); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if err := repo.Update(got); err != nil {
		t.Fatalf("update after removal: %v", err)
	}

	final, err := repo.FindByID(order.ID)
	if err != nil {
		t.Fatalf("find order after removal: %v", err)
	}
	if len(final.Items) != 1 {
		t.Fatalf("expected 1 item after removal, got %d", len(final.Items))
	}
	if final.Items[0].ProductName != "keyboard" {
		t.Fatalf("unexpected surviving item: %s", final.Items[0].ProductName)
	}
}

func TestOrderRepository_PostgresUpdateUnknownOrder(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	category := seedCategoryForIntegrationTest(t, store, "периферия")
	mouse := seedProductForIntegrationTest(t, store, category.ID, "mouse", "800.00")
	client := seedClientForIntegrationTest(t, store, "ivan")

	order := buildOrderForIntegrationTest(t, client, "2026-08-10",
		map[*domain.Product]int{&mouse: 1})
	if err := repo.Update(order); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderRepository_PostgresDeleteCascadesToItems(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	category := seedCategoryForIntegrationTest(t, store, "периферия")
	mouse := seedProductForIntegrationTest(t, store, category.ID, "mouse", "800.00")
	client := seedClientForIntegrationTest(t, store, "ivan")

	order := buildOrderForIntegrationTest(t, client, "2026-08-10",
		map[*domain.Product]int{&mouse: 2})
	if err := repo.Save(order); err != nil {
		t.Fatalf("save order: %v", err)
	}

	if err := repo.Delete(order); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if _, err := repo.FindByID(order.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteItem(order.Items[0]); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("items must be deleted with the order, got %v", err)
	}
}

func TestOrderRepository_PostgresDeleteItem(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	category := seedCategoryForIntegrationTest(t, store, "периферия")
	mouse := seedProductForIntegrationTest(t, store, category.ID, "mouse", "800.00")
	keyboard := seedProductForIntegrationTest(t, store, category.ID, "keyboard", "1200.50")
	client := seedClientForIntegrationTest(t, store, "ivan")

	order := buildOrderForIntegrationTest(t, client, "2026-08-10",
		map[*domain.Product]int{&mouse: 2, &keyboard: 1})
	if err := repo.Save(order); err != nil {
		t.Fatalf("save order: %v", err)
	}

	var mouseItem domain.OrderItem
	for _, item := range order.Items {
		if item.ProductID == mouse.ID {
			mouseItem = item
		}
	}
	if err := repo.DeleteItem(mouseItem); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	got, err := repo.FindByID(order.ID)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ProductName != "keyboard" {
		t.Fatalf("unexpected items after delete: %+v", got.Items)
	}
	if err := repo.DeleteItem(mouseItem); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeated delete, got %v", err)
	}
}

func TestOrderRepository_PostgresDateBoundsIgnoreSessionTimeZone(t *testing.T) {
	// Сессия в UTC-3: если дата уходит на сервер как timestamptz,
	// полночь UTC конвертируется в предыдущий календарный день.
	store := openPostgresStoreWithSessionTimeZoneForIntegrationTest(t, "America/Sao_Paulo")
	repo := NewOrderRepository(store)

	category := seedCategoryForIntegrationTest(t, store, "периферия")
	mouse := seedProductForIntegrationTest(t, store, category.ID, "mouse", "800.00")
	client := seedClientForIntegrationTest(t, store, "ivan")

	order := buildOrderForIntegrationTest(t, client, "2026-08-10",
		map[*domain.Product]int{&mouse: 1})
	if err := repo.Save(order); err != nil {
		t.Fatalf("save order: %v", err)
	}

	got, err := repo.FindByDateRange(
		mustParseDay(t, "2026-08-10"), mustParseDay(t, "2026-08-10"))
	if err != nil {
		t.Fatalf("find by date range: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the order on its own day, got %d orders", len(got))
	}
	if !got[0].Date.Equal(domain.DateOnly(mustParseDay(t, "2026-08-10"))) {
		t.Fatalf("stored date shifted by session time zone: %s", got[0].Date)
	}

	reporter := NewSalesRepository(store)
	total, err := reporter.TotalRevenue(
		mustParseDay(t, "2026-08-10"), mustParseDay(t, "2026-08-10"))
	if err != nil {
		t.Fatalf("total revenue: %v", err)
	}
	if total.StringFixed(2) != "800.00" {
		t.Fatalf("unexpected revenue: %s", total.StringFixed(2))
	}
}

func TestOrderRepository_PostgresFindByDateRangeAndClient(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	category := seedCategoryForIntegrationTest(t, store, "периферия")
	mouse := seedProductForIntegrationTest(t, store, category.ID, "mouse", "800.00")
	ivan := seedClientForIntegrationTest(t, store, "ivan")
	olga := seedClientForIntegrationTest(t, store, "olga")

	for _, seed := range []struct {
		client domain.Client
		date   string
	}{
		{ivan, "2026-08-09"},
		{ivan, "2026-08-10"},
		{olga, "2026-08-11"},
		{olga, "2026-08-12"},
	} {
		order := buildOrderForIntegrationTest(t, seed.client, seed.date,
			map[*domain.Product]int{&mouse: 1})
		if err := repo.Save(order); err != nil {
			t.Fatalf("save order for %s: %v", seed.date, err)
		}
	}

	// Обе границы диапазона включаются.
	inRange, err := repo.FindByDateRange(
		mustParseDay(t, "2026-08-10"), mustParseDay(t, "2026-08-11"))
	if err != nil {
		t.Fatalf("find by date range: %v", err)
	}
	if len(inRange) != 2 {
		t.Fatalf("expected 2 orders in range, got %d", len(inRange))
	}
	for _, order := range inRange {
		if len(order.Items) != 1 {
			t.Fatalf("items must be loaded eagerly: %+v", order)
		}
		if order.Client == nil {
			t.Fatalf("client must be attached eagerly: %+v", order)
		}
	}

	byClient, err := repo.FindByClient(ivan.ID)
	if err != nil {
		t.Fatalf("find by client: %v", err)
	}
	if len(byClient) != 2 {
		t.Fatalf("expected 2 orders for ivan, got %d", len(byClient))
	}

	none, err := repo.FindByDateRange(
		mustParseDay(t, "2025-01-01"), mustParseDay(t, "2025-12-31"))
	if err != nil {
		t.Fatalf("find outside range: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no orders outside range, got %d", len(none))
	}
}
