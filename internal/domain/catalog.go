package domain

import "github.com/shopspring/decimal"

// Category группирует товары каталога.
type Category struct {
	ID   string
	Name string
}

// Product — товар каталога. Price меняется со временем; заказы фиксируют
// цену в позиции в момент добавления и не зависят от последующих изменений.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  string
}

// Client — покупатель, на которого оформляются заказы.
type Client struct {
	ID       string
	Name     string
	Document string
}

// Validate проверяет обязательные поля категории.
func (c *Category) Validate() []error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	return errs
}

// Validate проверяет базовые инварианты товара.
func (p *Product) Validate() []error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	if p.CategoryID == "" {
		errs = append(errs, ErrCategoryRequired)
	}
	if p.Price.IsNegative() {
		errs = append(errs, ErrPriceNegative)
	}
	return errs
}

// Validate проверяет обязательные поля клиента.
func (c *Client) Validate() []error {
	var errs []error
	if c.Name == "" {
		errs = append(errs, ErrNameRequired)
	}
	if c.Document == "" {
		errs = append(errs, ErrDocumentRequired)
	}
	return errs
}
