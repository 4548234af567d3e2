package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/storage"
	"github.com/shopspring/decimal"
)

func seedProduct(id int64, name, price, category, desc string, stock int) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Category:    category,
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/400", seedSlug(name)),
		Description: desc,
		Stock:       stock,
	}
}

func seedSlug(name string) string {
	switch name {
	case "Turkey Sandwich":
		return "sandwich"
	case "Iced Coffee":
		return "icedcoffee"
	case "POS Tumbler":
		return "tumbler"
	}
	return strings.ToLower(name)
}

// DefaultProducts is the demo catalog used when nothing is stored.
func DefaultProducts() []domain.Product {
	tumbler := seedProduct(7, "POS Tumbler", "15.00", "Merchandise", "A stylish and reusable tumbler for your favorite drinks.", 25)
	tumbler.Discount = decimal.NewNullDecimal(decimal.NewFromInt(10))
	return []domain.Product{
		seedProduct(1, "Espresso", "2.50", "Beverages", "A rich and aromatic shot of concentrated coffee.", 100),
		seedProduct(2, "Latte", "3.50", "Beverages", "Smooth espresso with steamed milk, topped with a light layer of foam.", 8),
		seedProduct(3, "Croissant", "2.75", "Pastries", "Buttery, flaky, and freshly baked to perfection.", 50),
		seedProduct(4, "Turkey Sandwich", "7.50", "Sandwiches", "Roasted turkey, fresh lettuce, and tomato on whole wheat bread.", 30),
		seedProduct(5, "Muffin", "3.00", "Pastries", "A soft and moist muffin, available in blueberry or chocolate chip.", 0),
		seedProduct(6, "Iced Coffee", "3.25", "Beverages", "Chilled coffee served over ice, perfect for a warm day.", 80),
		tumbler,
	}
}

var defaultUserSeeds = []struct {
	name, pin, role string
}{
	{"Admin", "1111", enum.UserRoleManager},
	{"Jessica", "2222", enum.UserRoleCashier},
	{"Michael", "3333", enum.UserRoleCashier},
	{"Susan", "4444", enum.UserRoleSupervisor},
}

// DefaultUsers returns the demo employees with hashed PINs.
func DefaultUsers() ([]domain.User, error) {
	users := make([]domain.User, 0, len(defaultUserSeeds))
	for i, s := range defaultUserSeeds {
		hash, err := HashPIN(s.pin)
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", s.name, err)
		}
		users = append(users, domain.User{ID: int64(i + 1), Name: s.name, PINHash: hash, Role: s.role})
	}
	return users, nil
}

// SeedResult reports which namespaces SeedDefaults wrote.
type SeedResult struct {
	Written []string
	Skipped []string
}

// SeedDefaults writes the default catalog, users, settings and an empty
// history into st. Existing documents are kept unless overwrite is set.
func SeedDefaults(ctx context.Context, st storage.Store, overwrite bool) (SeedResult, error) {
	users, err := DefaultUsers()
	if err != nil {
		return SeedResult{}, err
	}
	docs := []struct {
		key string
		v   any
	}{
		{storage.KeyProducts, DefaultProducts()},
		{storage.KeyOrderHistory, []domain.CompletedOrder{}},
		{storage.KeyUsers, users},
		{storage.KeySettings, domain.DefaultSettings()},
	}

	var res SeedResult
	for _, d := range docs {
		if !overwrite {
			_, err := st.Load(ctx, d.key)
			if err == nil {
				res.Skipped = append(res.Skipped, d.key)
				continue
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return res, fmt.Errorf("check %s: %w", d.key, err)
			}
		}
		b, err := json.Marshal(d.v)
		if err != nil {
			return res, fmt.Errorf("encode %s: %w", d.key, err)
		}
		if err := st.Save(ctx, d.key, b); err != nil {
			return res, err
		}
		res.Written = append(res.Written, d.key)
	}
	return res, nil
}
