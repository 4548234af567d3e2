package service

import (
	"fmt"
	"strings"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/shopspring/decimal"
)

// Catalog owns the product records in insertion order. lastID is the
// highest id ever issued; it never decreases, so a deleted product's id is
// not handed to a new one.
type Catalog struct {
	products []domain.Product
	lastID   int64
}

// NewCatalog returns a catalog holding a copy of products.
func NewCatalog(products []domain.Product) *Catalog {
	c := &Catalog{products: append([]domain.Product(nil), products...)}
	for _, p := range c.products {
		c.reserve(p.ID)
	}
	return c
}

// ProductInput is the validated input for creating or updating a product.
type ProductInput struct {
	Name        string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	Description string
	Discount    decimal.NullDecimal
	Stock       int
}

// List returns the products in category, or every product for "" and "All".
func (c *Catalog) List(category string) []domain.Product {
	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if category == "" || category == enum.CategoryAll || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the product with id.
func (c *Catalog) Get(id int64) (domain.Product, error) {
	i := c.index(id)
	if i < 0 {
		return domain.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return c.products[i], nil
}

// Stock returns the current stock of id. Satisfies StockSource.
func (c *Catalog) Stock(id int64) (int, error) {
	p, err := c.Get(id)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// Create validates in and appends a product with the next unissued id.
func (c *Catalog) Create(in ProductInput, settings domain.SystemSettings) (domain.Product, error) {
	if err := validateProduct(in, settings); err != nil {
		return domain.Product{}, err
	}
	c.lastID++
	p := in.product(c.lastID)
	c.products = append(c.products, p)
	return p, nil
}

// LastID returns the highest product id issued so far.
func (c *Catalog) LastID() int64 { return c.lastID }

// reserve marks id as issued.
func (c *Catalog) reserve(id int64) {
	if id > c.lastID {
		c.lastID = id
	}
}

// Update replaces every editable field of product id.
func (c *Catalog) Update(id int64, in ProductInput, settings domain.SystemSettings) (domain.Product, error) {
	i := c.index(id)
	if i < 0 {
		return domain.Product{}, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	if err := validateProduct(in, settings); err != nil {
		return domain.Product{}, err
	}
	c.products[i] = in.product(id)
	return c.products[i], nil
}

// Delete removes product id.
func (c *Catalog) Delete(id int64) error {
	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	c.products = append(c.products[:i], c.products[i+1:]...)
	return nil
}

// Snapshot returns a copy of every product for persistence.
func (c *Catalog) Snapshot() []domain.Product {
	return append([]domain.Product(nil), c.products...)
}

// decrement lowers stock by qty, floored at zero. It returns the shortfall
// that was clamped away and false when the product no longer exists.
func (c *Catalog) decrement(id int64, qty int) (int, bool) {
	i := c.index(id)
	if i < 0 {
		return 0, false
	}
	p := &c.products[i]
	if qty > p.Stock {
		short := qty - p.Stock
		p.Stock = 0
		return short, true
	}
	p.Stock -= qty
	return 0, true
}

// increment raises stock by qty without an upper bound.
func (c *Catalog) increment(id int64, qty int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.products[i].Stock += qty
	return true
}

func (c *Catalog) usesCategory(name string) bool {
	for _, p := range c.products {
		if p.Category == name {
			return true
		}
	}
	return false
}

func (c *Catalog) renameCategory(from, to string) int {
	n := 0
	for i := range c.products {
		if c.products[i].Category == from {
			c.products[i].Category = to
			n++
		}
	}
	return n
}

func (c *Catalog) index(id int64) int {
	for i, p := range c.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (in ProductInput) product(id int64) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Category:    in.Category,
		ImageURL:    in.ImageURL,
		Description: in.Description,
		Discount:    in.Discount,
		Stock:       in.Stock,
	}
}

func validateProduct(in ProductInput, settings domain.SystemSettings) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidProduct)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", ErrInvalidProduct)
	}
	if in.Discount.Valid && !domain.ValidPercent(in.Discount.Decimal) {
		return fmt.Errorf("%w: default %w", ErrInvalidProduct, ErrInvalidDiscount)
	}
	if !settings.HasCategory(in.Category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, in.Category)
	}
	return nil
}
