package service

import (
	"fmt"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/shopspring/decimal"
)

// StockSource reports current stock for a product.
// Satisfied by *Catalog; narrow interface for testability.
type StockSource interface {
	Stock(id int64) (int, error)
}

// Cart is the in-progress order. Lines are keyed by product id and kept in
// the order they were first added. A rejected operation leaves the cart
// unchanged.
type Cart struct {
	stock StockSource
	lines []domain.OrderLine
}

// NewCart creates an empty cart reading stock from src.
func NewCart(src StockSource) *Cart {
	return &Cart{stock: src}
}

// Add puts one unit of p into the cart.
func (c *Cart) Add(p domain.Product) error {
	stock, err := c.stock.Stock(p.ID)
	if err != nil {
		return err
	}
	if stock <= 0 {
		return fmt.Errorf("%w: %s", ErrOutOfStock, p.Name)
	}
	if i := c.index(p.ID); i >= 0 {
		if c.lines[i].Quantity+1 > stock {
			return fmt.Errorf("%w: only %d %s available", ErrInsufficientStock, stock, p.Name)
		}
		c.lines[i].Quantity++
		c.lines[i].Product.Stock = stock
		return nil
	}
	p.Stock = stock
	c.lines = append(c.lines, domain.OrderLine{
		Product:  p,
		Quantity: 1,
		Discount: p.DefaultDiscount(),
	})
	return nil
}

// SetQuantity replaces the quantity of productID verbatim. Callers route
// zero or negative quantities to Remove.
func (c *Cart) SetQuantity(productID int64, q int) error {
	i := c.index(productID)
	if i < 0 {
		return fmt.Errorf("%w: %d not in cart", ErrProductNotFound, productID)
	}
	stock, err := c.stock.Stock(productID)
	if err != nil {
		return err
	}
	if q > stock {
		return fmt.Errorf("%w: only %d available", ErrInsufficientStock, stock)
	}
	c.lines[i].Quantity = q
	c.lines[i].Product.Stock = stock
	return nil
}

// SetDiscount overwrites the discount of productID. Bounds are checked by
// the caller.
func (c *Cart) SetDiscount(productID int64, percent decimal.Decimal) error {
	i := c.index(productID)
	if i < 0 {
		return fmt.Errorf("%w: %d not in cart", ErrProductNotFound, productID)
	}
	c.lines[i].Discount = percent
	return nil
}

// Remove deletes the line for productID if present.
func (c *Cart) Remove(productID int64) {
	if i := c.index(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() { c.lines = nil }

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []domain.OrderLine {
	return append([]domain.OrderLine(nil), c.lines...)
}

// Quantity returns the quantity of productID in the cart, 0 when absent.
func (c *Cart) Quantity(productID int64) int {
	if i := c.index(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}
