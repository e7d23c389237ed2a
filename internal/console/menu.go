package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
	"github.com/vladislavdragonenkov/catalog/internal/service/orders"
	"github.com/vladislavdragonenkov/catalog/internal/service/sales"
)

const dateLayout = "2006-01-02"

// Menu — интерактивный командный слой поверх сервисов и репозиториев.
// Через границу ходят только простые значения и идентификаторы.
type Menu struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	clients    domain.ClientRepository
	orders     *orders.Service
	sales      *sales.Service

	in     *bufio.Scanner
	out    io.Writer
	logger *log.Entry
}

// NewMenu создаёт меню. Потоки ввода/вывода инжектируются, чтобы меню
// можно было прогонять в тестах по сценарию.
func NewMenu(
	categories domain.CategoryRepository,
	products domain.ProductRepository,
	clients domain.ClientRepository,
	orderSvc *orders.Service,
	salesSvc *sales.Service,
	in io.Reader,
	out io.Writer,
	logger *log.Entry,
) *Menu {
	if logger == nil {
		logger = log.New().WithField("component", "console")
	}
	return &Menu{
		categories: categories,
		products:   products,
		clients:    clients,
		orders:     orderSvc,
		sales:      salesSvc,
		in:         bufio.NewScanner(in),
		out:        out,
		logger:     logger,
	}
}

// Run крутит цикл меню до выбора выхода, конца ввода или отмены контекста.
func (m *Menu) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		m.printMenu()
		choice, ok := m.readLine("Choose an option: ")
		if !ok {
			return nil
		}

		option, err := strconv.Atoi(strings.TrimSpace(choice))
		if err != nil {
			m.printf("Invalid option!")
			continue
		}
		if option == 0 {
			return nil
		}
		m.dispatch(option)
	}
}

func (m *Menu) printMenu() {
	m.printf("----- MENU -----")
	m.printf(" 1. Register category")
	m.printf(" 2. Update category")
	m.printf(" 3. Delete category")
	m.printf(" 4. Find category by ID")
	m.printf(" 5. List categories")
	m.printf(" 6. Register product")
	m.printf(" 7. Update product")
	m.printf(" 8. Delete product")
	m.printf(" 9. Find product by ID")
	m.printf("10. Find products by name")
	m.printf("11. Find products by category")
	m.printf("12. Register client")
	m.printf("13. Update client")
	m.printf("14. Delete client")
	m.printf("15. List clients")
	m.printf("16. Place order")
	m.printf("17. Find order by ID")
	m.printf("18. Find orders by period")
	m.printf("19. Find orders by client")
	m.printf("20. Add item to order")
	m.printf("21. Change item quantity")
	m.printf("22. Delete order item")
	m.printf("23. Delete order")
	m.printf("24. Total revenue for a period")
	m.printf("25. Sales by product report")
	m.printf("26. Revenue by client report")
	m.printf(" 0. Quit")
}

func (m *Menu) dispatch(option int) {
	switch option {
	case 1:
		m.registerCategory()
	case 2:
		m.updateCategory()
	case 3:
		m.deleteCategory()
	case 4:
		m.findCategory()
	case 5:
		m.listCategories()
	case 6:
		m.registerProduct()
	case 7:
		m.updateProduct()
	case 8:
		m.deleteProduct()
	case 9:
		m.findProduct()
	case 10:
		m.findProductsByName()
	case 11:
		m.findProductsByCategory()
	case 12:
		m.registerClient()
	case 13:
		m.updateClient()
	case 14:
		m.deleteClient()
	case 15:
		m.listClients()
	case 16:
		m.placeOrder()
	case 17:
		m.findOrder()
	case 18:
		m.findOrdersByPeriod()
	case 19:
		m.findOrdersByClient()
	case 20:
		m.addOrderItem()
	case 21:
		m.changeItemQuantity()
	case 22:
		m.deleteOrderItem()
	case 23:
		m.deleteOrder()
	case 24:
		m.totalRevenue()
	case 25:
		m.salesByProduct()
	case 26:
		m.revenueByClient()
	default:
		m.printf("Invalid option!")
	}
}

func (m *Menu) registerCategory() {
	name, ok := m.readLine("Category name: ")
	if !ok {
		return
	}
	category := domain.Category{ID: uuid.NewString(), Name: name}
	if errs := category.Validate(); len(errs) > 0 {
		m.printErrs(errs)
		return
	}
	if err := m.categories.Create(category); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Category registered: %s", category.ID)
}

func (m *Menu) updateCategory() {
	id, ok := m.readLine("Category ID: ")
	if !ok {
		return
	}
	category, err := m.categories.FindByID(id)
	if err != nil {
		m.printErr(err)
		return
	}
	name, ok := m.readLine("New name: ")
	if !ok {
		return
	}
	category.Name = name
	if err := m.categories.Update(category); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Category updated.")
}

func (m *Menu) deleteCategory() {
	id, ok := m.readLine("Category ID: ")
	if !ok {
		return
	}
	if err := m.categories.Delete(id); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Category deleted.")
}

func (m *Menu) findCategory() {
	id, ok := m.readLine("Category ID: ")
	if !ok {
		return
	}
	category, err := m.categories.FindByID(id)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printf("%s  %s", category.ID, category.Name)
}

func (m *Menu) listCategories() {
	categories, err := m.categories.FindAll()
	if err != nil {
		m.printErr(err)
		return
	}
	for _, category := range categories {
		m.printf("%s  %s", category.ID, category.Name)
	}
	if len(categories) == 0 {
		m.printf("No categories registered.")
	}
}

func (m *Menu) registerProduct() {
	name, ok := m.readLine("Product name: ")
	if !ok {
		return
	}
	description, ok := m.readLine("Description: ")
	if !ok {
		return
	}
	price, ok := m.readDecimal("Price: ")
	if !ok {
		return
	}
	categoryID, ok := m.readLine("Category ID: ")
	if !ok {
		return
	}
	if _, err := m.categories.FindByID(categoryID); err != nil {
		m.printErr(err)
		return
	}

	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Price:       price,
		CategoryID:  categoryID,
	}
	if errs := product.Validate(); len(errs) > 0 {
		m.printErrs(errs)
		return
	}
	if err := m.products.Create(product); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Product registered: %s", product.ID)
}

func (m *Menu) updateProduct() {
	id, ok := m.readLine("Product ID: ")
	if !ok {
		return
	}
	product, err := m.products.FindByID(id)
	if err != nil {
		m.printErr(err)
		return
	}
	if product.Name, ok = m.readLine("New name: "); !ok {
		return
	}
	if product.Description, ok = m.readLine("New description: "); !ok {
		return
	}
	if product.Price, ok = m.readDecimal("New price: "); !ok {
		return
	}
	if errs := product.Validate(); len(errs) > 0 {
		m.printErrs(errs)
		return
	}
	if err := m.products.Update(product); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Product updated.")
}

func (m *Menu) deleteProduct() {
	id, ok := m.readLine("Product ID: ")
	if !ok {
		return
	}
	if err := m.products.Delete(id); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Product deleted.")
}

func (m *Menu) findProduct() {
	id, ok := m.readLine("Product ID: ")
	if !ok {
		return
	}
	product, err := m.products.FindByID(id)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printProduct(product)
}

func (m *Menu) findProductsByName() {
	name, ok := m.readLine("Product name: ")
	if !ok {
		return
	}
	products, err := m.products.FindByName(name)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printProducts(products)
}

func (m *Menu) findProductsByCategory() {
	categoryID, ok := m.readLine("Category ID: ")
	if !ok {
		return
	}
	products, err := m.products.FindByCategory(categoryID)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printProducts(products)
}

func (m *Menu) registerClient() {
	name, ok := m.readLine("Client name: ")
	if !ok {
		return
	}
	document, ok := m.readLine("Document: ")
	if !ok {
		return
	}
	client := domain.Client{ID: uuid.NewString(), Name: name, Document: document}
	if errs := client.Validate(); len(errs) > 0 {
		m.printErrs(errs)
		return
	}
	if err := m.clients.Create(client); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Client registered: %s", client.ID)
}

func (m *Menu) updateClient() {
	id, ok := m.readLine("Client ID: ")
	if !ok {
		return
	}
	client, err := m.clients.FindByID(id)
	if err != nil {
		m.printErr(err)
		return
	}
	if client.Name, ok = m.readLine("New name: "); !ok {
		return
	}
	if client.Document, ok = m.readLine("New document: "); !ok {
		return
	}
	if errs := client.Validate(); len(errs) > 0 {
		m.printErrs(errs)
		return
	}
	if err := m.clients.Update(client); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Client updated.")
}

func (m *Menu) deleteClient() {
	id, ok := m.readLine("Client ID: ")
	if !ok {
		return
	}
	if err := m.clients.Delete(id); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Client deleted.")
}

func (m *Menu) listClients() {
	clients, err := m.clients.FindAll()
	if err != nil {
		m.printErr(err)
		return
	}
	for _, client := range clients {
		m.printf("%s  %s (%s)", client.ID, client.Name, client.Document)
	}
	if len(clients) == 0 {
		m.printf("No clients registered.")
	}
}

func (m *Menu) placeOrder() {
	clientID, ok := m.readLine("Client ID: ")
	if !ok {
		return
	}

	var items []orders.ItemRequest
	for {
		productID, ok := m.readLine("Product ID: ")
		if !ok {
			return
		}
		qty, ok := m.readInt("Quantity: ")
		if !ok {
			return
		}
		items = append(items, orders.ItemRequest{ProductID: productID, Qty: qty})

		more, ok := m.readLine("Add another product? (y/n): ")
		if !ok || !strings.EqualFold(strings.TrimSpace(more), "y") {
			break
		}
	}

	order, err := m.orders.PlaceOrder(clientID, items)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printf("Order placed: %s", order.ID)
	m.printOrder(order)
}

func (m *Menu) findOrder() {
	id, ok := m.readLine("Order ID: ")
	if !ok {
		return
	}
	order, err := m.orders.Get(id)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printOrder(order)
}

func (m *Menu) findOrdersByPeriod() {
	start, ok := m.readDate("Start date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	end, ok := m.readDate("End date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	found, err := m.orders.ListByPeriod(start, end)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printOrders(found)
}

func (m *Menu) findOrdersByClient() {
	clientID, ok := m.readLine("Client ID: ")
	if !ok {
		return
	}
	found, err := m.orders.ListByClient(clientID)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printOrders(found)
}

func (m *Menu) addOrderItem() {
	orderID, ok := m.readLine("Order ID: ")
	if !ok {
		return
	}
	productID, ok := m.readLine("Product ID: ")
	if !ok {
		return
	}
	qty, ok := m.readInt("Quantity: ")
	if !ok {
		return
	}
	order, err := m.orders.AddItem(orderID, productID, qty)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printOrder(order)
}

func (m *Menu) changeItemQuantity() {
	orderID, ok := m.readLine("Order ID: ")
	if !ok {
		return
	}
	itemID, ok := m.readLine("Item ID: ")
	if !ok {
		return
	}
	qty, ok := m.readInt("New quantity: ")
	if !ok {
		return
	}
	order, err := m.orders.ChangeItemQuantity(orderID, itemID, qty)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printOrder(order)
}

func (m *Menu) deleteOrderItem() {
	orderID, ok := m.readLine("Order ID: ")
	if !ok {
		return
	}
	itemID, ok := m.readLine("Item ID: ")
	if !ok {
		return
	}
	if err := m.orders.DeleteItem(orderID, itemID); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Item deleted.")
}

func (m *Menu) deleteOrder() {
	orderID, ok := m.readLine("Order ID: ")
	if !ok {
		return
	}
	if err := m.orders.DeleteOrder(orderID); err != nil {
		m.printErr(err)
		return
	}
	m.printf("Order deleted.")
}

func (m *Menu) totalRevenue() {
	start, ok := m.readDate("Start date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	end, ok := m.readDate("End date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	total, err := m.sales.TotalRevenue(start, end)
	if err != nil {
		m.printErr(err)
		return
	}
	m.printf("Total revenue: %s", total.StringFixed(2))
}

func (m *Menu) salesByProduct() {
	rows, err := m.sales.SalesByProduct()
	if err != nil {
		m.printErr(err)
		return
	}
	for _, row := range rows {
		m.printf("%s  qty=%d  last sale=%s", row.ProductName, row.QtySold, row.LastSale.Format(dateLayout))
	}
	if len(rows) == 0 {
		m.printf("No sales recorded.")
	}
}

func (m *Menu) revenueByClient() {
	rows, err := m.sales.RevenueByClient()
	if err != nil {
		m.printErr(err)
		return
	}
	for _, row := range rows {
		m.printf("%s  revenue=%s", row.ClientName, row.Revenue.StringFixed(2))
	}
	if len(rows) == 0 {
		m.printf("No orders recorded.")
	}
}

func (m *Menu) printProduct(product domain.Product) {
	m.printf("%s  %s  %s  (category %s)",
		product.ID, product.Name, product.Price.StringFixed(2), product.CategoryID)
}

func (m *Menu) printProducts(products []domain.Product) {
	for _, product := range products {
		m.printProduct(product)
	}
	if len(products) == 0 {
		m.printf("No products found.")
	}
}

func (m *Menu) printOrder(order *domain.Order) {
	clientName := order.ClientID
	if order.Client != nil {
		clientName = order.Client.Name
	}
	m.printf("Order %s  client=%s  date=%s  total=%s",
		order.ID, clientName, order.Date.Format(dateLayout), order.Total().StringFixed(2))
	for _, item := range order.Items {
		m.printf("  item %s  %s  qty=%d  unit=%s  value=%s",
			item.ID, item.ProductName, item.Qty,
			item.UnitPrice.StringFixed(2), item.Value().Round(2).StringFixed(2))
	}
}

func (m *Menu) printOrders(found []*domain.Order) {
	for _, order := range found {
		m.printOrder(order)
	}
	if len(found) == 0 {
		m.printf("No orders found.")
	}
}

func (m *Menu) readLine(prompt string) (string, bool) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) readInt(prompt string) (int, bool) {
	for {
		raw, ok := m.readLine(prompt)
		if !ok {
			return 0, false
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			m.printf("Enter a whole number.")
			continue
		}
		return value, true
	}
}

func (m *Menu) readDecimal(prompt string) (decimal.Decimal, bool) {
	for {
		raw, ok := m.readLine(prompt)
		if !ok {
			return decimal.Zero, false
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			m.printf("Enter a decimal number, e.g. 800.00.")
			continue
		}
		return value, true
	}
}

func (m *Menu) readDate(prompt string) (time.Time, bool) {
	for {
		raw, ok := m.readLine(prompt)
		if !ok {
			return time.Time{}, false
		}
		value, err := time.Parse(dateLayout, raw)
		if err != nil {
			m.printf("Enter a date as YYYY-MM-DD.")
			continue
		}
		return value, true
	}
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format+"\n", args...)
}

func (m *Menu) printErr(err error) {
	switch {
	case domain.IsNotFound(err):
		m.printf("Not found.")
	default:
		m.printf("Error: %v", err)
	}
	m.logger.WithError(err).Debug("menu operation failed")
}

func (m *Menu) printErrs(errs []error) {
	for _, err := range errs {
		m.printf("Error: %v", err)
	}
}
