package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/shopspring/decimal"
)

const topProductsLimit = 5

// ProductSales is the quantity sold of one product.
type ProductSales struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// CategorySales is the revenue of one category after line discounts.
type CategorySales struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// SalesSummary aggregates non-refunded orders within a range.
type SalesSummary struct {
	Range           string          `json:"range"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalOrders     int             `json:"total_orders"`
	AvgOrderValue   decimal.Decimal `json:"avg_order_value"`
	TotalItemsSold  int             `json:"total_items_sold"`
	TopProducts     []ProductSales  `json:"top_products"`
	SalesByCategory []CategorySales `json:"sales_by_category"`
}

// EmployeeStats is the sales attributed to one user.
type EmployeeStats struct {
	UserID          int64           `json:"user_id"`
	Name            string          `json:"name"`
	Role            string          `json:"role"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	OrdersProcessed int             `json:"orders_processed"`
	TotalItemsSold  int             `json:"total_items_sold"`
}

// Summarize aggregates orders placed within rng, measured against now.
// Refunded orders are excluded.
func Summarize(orders []domain.CompletedOrder, rng string, now time.Time) (SalesSummary, error) {
	if rng == "" {
		rng = enum.ReportRangeAll
	}
	inRange, err := rangeFilter(rng, now)
	if err != nil {
		return SalesSummary{}, err
	}

	sum := SalesSummary{Range: rng, TotalRevenue: decimal.Zero, AvgOrderValue: decimal.Zero}
	byProduct := map[int64]*ProductSales{}
	var productOrder []int64
	byCategory := map[string]decimal.Decimal{}

	for _, o := range orders {
		if o.Status == enum.OrderStatusRefunded || !inRange(o.Date) {
			continue
		}
		sum.TotalOrders++
		sum.TotalRevenue = sum.TotalRevenue.Add(o.Total)
		for _, it := range o.Items {
			sum.TotalItemsSold += it.Quantity
			ps, ok := byProduct[it.Product.ID]
			if !ok {
				ps = &ProductSales{ProductID: it.Product.ID, Name: it.Product.Name}
				byProduct[it.Product.ID] = ps
				productOrder = append(productOrder, it.Product.ID)
			}
			ps.Quantity += it.Quantity
			byCategory[it.Product.Category] = byCategory[it.Product.Category].Add(it.NetTotal())
		}
	}
	if sum.TotalOrders > 0 {
		sum.AvgOrderValue = sum.TotalRevenue.Div(decimal.NewFromInt(int64(sum.TotalOrders)))
	}

	sum.TopProducts = make([]ProductSales, 0, len(productOrder))
	for _, id := range productOrder {
		sum.TopProducts = append(sum.TopProducts, *byProduct[id])
	}
	sort.SliceStable(sum.TopProducts, func(i, j int) bool {
		return sum.TopProducts[i].Quantity > sum.TopProducts[j].Quantity
	})
	if len(sum.TopProducts) > topProductsLimit {
		sum.TopProducts = sum.TopProducts[:topProductsLimit]
	}

	sum.SalesByCategory = make([]CategorySales, 0, len(byCategory))
	for c, rev := range byCategory {
		sum.SalesByCategory = append(sum.SalesByCategory, CategorySales{Category: c, Revenue: rev})
	}
	sort.Slice(sum.SalesByCategory, func(i, j int) bool {
		a, b := sum.SalesByCategory[i], sum.SalesByCategory[j]
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.Category < b.Category
	})
	return sum, nil
}

// EmployeePerformance attributes non-refunded orders to users by cashier
// name, sorted by revenue descending.
func EmployeePerformance(orders []domain.CompletedOrder, users []domain.User) []EmployeeStats {
	out := make([]EmployeeStats, 0, len(users))
	for _, u := range users {
		st := EmployeeStats{UserID: u.ID, Name: u.Name, Role: u.Role, TotalRevenue: decimal.Zero}
		for _, o := range orders {
			if o.Status == enum.OrderStatusRefunded || o.CashierName != u.Name {
				continue
			}
			st.OrdersProcessed++
			st.TotalRevenue = st.TotalRevenue.Add(o.Total)
			st.TotalItemsSold += o.ItemCount()
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalRevenue.GreaterThan(out[j].TotalRevenue)
	})
	return out
}

// rangeFilter returns a predicate for order dates within rng. Weeks start
// on Sunday at midnight in now's location.
func rangeFilter(rng string, now time.Time) (func(time.Time) bool, error) {
	loc := now.Location()
	switch rng {
	case enum.ReportRangeAll:
		return func(time.Time) bool { return true }, nil
	case enum.ReportRangeToday:
		y, m, d := now.Date()
		return func(t time.Time) bool {
			ty, tm, td := t.In(loc).Date()
			return ty == y && tm == m && td == d
		}, nil
	case enum.ReportRangeWeek:
		y, m, d := now.Date()
		start := time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, loc)
		return func(t time.Time) bool { return !t.Before(start) }, nil
	case enum.ReportRangeMonth:
		y, m, _ := now.Date()
		return func(t time.Time) bool {
			ty, tm, _ := t.In(loc).Date()
			return ty == y && tm == m
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidRange, rng)
}
