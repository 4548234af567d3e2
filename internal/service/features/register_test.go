package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/service"
	"github.com/kiwari-pos/register/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type registerTestContext struct {
	reg      *service.Register
	identity *domain.Identity
	order    domain.CompletedOrder
	err      error
}

func (c *registerTestContext) reset() {
	c.reg = nil
	c.identity = nil
	c.order = domain.CompletedOrder{}
	c.err = nil
}

func hashPIN(pin string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	return string(b), err
}

func (c *registerTestContext) aRegisterWithTaxRateAndProducts(rate string, table *godog.Table) error {
	ctx := context.Background()
	st := storage.NewMemory()

	var products []domain.Product
	for i, row := range table.Rows {
		if i == 0 {
			continue // skip header
		}
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		price, err := decimal.NewFromString(row.Cells[2].Value)
		if err != nil {
			return err
		}
		stock, err := strconv.Atoi(row.Cells[4].Value)
		if err != nil {
			return err
		}
		products = append(products, domain.Product{
			ID:       id,
			Name:     row.Cells[1].Value,
			Price:    price,
			Category: row.Cells[3].Value,
			Stock:    stock,
		})
	}

	var users []domain.User
	for i, u := range []struct{ name, pin, role string }{
		{"Admin", "1111", "manager"},
		{"Jessica", "2222", "cashier"},
	} {
		hash, err := hashPIN(u.pin)
		if err != nil {
			return err
		}
		users = append(users, domain.User{ID: int64(i + 1), Name: u.name, PINHash: hash, Role: u.role})
	}

	docs := map[string]any{
		storage.KeyProducts: products,
		storage.KeyUsers:    users,
		storage.KeySettings: map[string]string{"tax_rate": rate},
	}
	for key, v := range docs {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if err := st.Save(ctx, key, b); err != nil {
			return err
		}
	}

	reg, err := service.Open(ctx, service.Options{Store: st, Logger: zap.NewNop()})
	if err != nil {
		return err
	}
	c.reg = reg
	return nil
}

func (c *registerTestContext) isLoggedIn(name string) error {
	pins := map[string]string{"Admin": "1111", "Jessica": "2222"}
	u, err := c.user(name)
	if err != nil {
		return err
	}
	id, err := c.reg.Login(u.ID, pins[name])
	if err != nil {
		return err
	}
	c.identity = &id
	return nil
}

func (c *registerTestContext) product(name string) (domain.Product, error) {
	for _, p := range c.reg.Products("") {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Product{}, fmt.Errorf("no product named %q", name)
}

func (c *registerTestContext) user(name string) (domain.User, error) {
	for _, u := range c.reg.Users() {
		if u.Name == name {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("no user named %q", name)
}

func (c *registerTestContext) iAddToTheCart(name string) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	_, c.err = c.reg.AddToCart(p.ID)
	return nil
}

func (c *registerTestContext) iAddToTheCartTimes(name string, n int) error {
	for i := 0; i < n; i++ {
		if err := c.iAddToTheCart(name); err != nil {
			return err
		}
		if c.err != nil {
			return fmt.Errorf("add %d of %s: %w", i+1, name, c.err)
		}
	}
	return nil
}

func (c *registerTestContext) iSetTheQuantityOfTo(name string, q int) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	_, c.err = c.reg.SetCartQuantity(p.ID, q)
	return nil
}

func (c *registerTestContext) iSetTheDiscountOfTo(name, pct string) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(pct)
	if err != nil {
		return err
	}
	_, c.err = c.reg.SetCartDiscount(p.ID, v)
	return c.err
}

func (c *registerTestContext) iCheckOut() error {
	c.order, c.err = c.reg.Checkout(context.Background(), c.identity)
	return c.err
}

func (c *registerTestContext) theStockOfIsChangedTo(name string, stock int) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	_, err = c.reg.UpdateProduct(context.Background(), p.ID, service.ProductInput{
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		Discount:    p.Discount,
		Stock:       stock,
	})
	return err
}

func (c *registerTestContext) iRefundTheLastOrder() error {
	_, c.err = c.reg.Refund(context.Background(), c.order.ID)
	return nil
}

func (c *registerTestContext) iDeleteTheCategory(name string) error {
	_, c.err = c.reg.DeleteCategory(context.Background(), name)
	return nil
}

func (c *registerTestContext) iDeleteTheUser(name string) error {
	u, err := c.user(name)
	if err != nil {
		return err
	}
	c.err = c.reg.DeleteUser(context.Background(), u.ID)
	return nil
}

func (c *registerTestContext) theOperationIsRejectedWith(msg string) error {
	if c.err == nil {
		return errors.New("expected the operation to be rejected")
	}
	if !strings.Contains(c.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %q", msg, c.err.Error())
	}
	return nil
}

func (c *registerTestContext) cartAmount(field string) func(string) error {
	return func(want string) error {
		t := c.reg.Cart().Totals
		got := map[string]decimal.Decimal{
			"subtotal":       t.Subtotal,
			"discount total": t.DiscountTotal,
			"tax":            t.Tax,
			"total":          t.Total,
		}[field]
		if !got.Equal(decimal.RequireFromString(want)) {
			return fmt.Errorf("cart %s: expected %s, got %s", field, want, got)
		}
		return nil
	}
}

func (c *registerTestContext) theCartHasUnitsOf(n int, name string) error {
	for _, l := range c.reg.Cart().Lines {
		if l.Product.Name == name {
			if l.Quantity != n {
				return fmt.Errorf("expected %d %s in cart, got %d", n, name, l.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("%s is not in the cart", name)
}

func (c *registerTestContext) theCartIsEmpty() error {
	if n := len(c.reg.Cart().Lines); n != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", n)
	}
	return nil
}

func (c *registerTestContext) theStockOfIs(name string, want int) error {
	p, err := c.product(name)
	if err != nil {
		return err
	}
	if p.Stock != want {
		return fmt.Errorf("stock of %s: expected %d, got %d", name, want, p.Stock)
	}
	return nil
}

func (c *registerTestContext) theLastOrderIs(status string) error {
	o, err := c.reg.Order(c.order.ID)
	if err != nil {
		return err
	}
	if o.Status != status {
		return fmt.Errorf("expected order %s to be %s, got %s", o.ID, status, o.Status)
	}
	return nil
}

func (c *registerTestContext) theCategoriesAre(list string) error {
	got := strings.Join(c.reg.Categories(), ",")
	if got != list {
		return fmt.Errorf("expected categories %q, got %q", list, got)
	}
	return nil
}

func (c *registerTestContext) thereAreUsers(n int) error {
	if got := len(c.reg.Users()); got != n {
		return fmt.Errorf("expected %d users, got %d", n, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &registerTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a register with tax rate ([\d.]+) and products:$`, tc.aRegisterWithTaxRateAndProducts)
	ctx.Step(`^"([^"]*)" is logged in$`, tc.isLoggedIn)

	// When steps
	ctx.Step(`^I add "([^"]*)" to the cart$`, tc.iAddToTheCart)
	ctx.Step(`^I add "([^"]*)" to the cart (\d+) times$`, tc.iAddToTheCartTimes)
	ctx.Step(`^I set the quantity of "([^"]*)" to (\d+)$`, tc.iSetTheQuantityOfTo)
	ctx.Step(`^I set the discount of "([^"]*)" to ([\d.]+)%$`, tc.iSetTheDiscountOfTo)
	ctx.Step(`^I check out$`, tc.iCheckOut)
	ctx.Step(`^the stock of "([^"]*)" is changed to (\d+)$`, tc.theStockOfIsChangedTo)
	ctx.Step(`^I refund the last order$`, tc.iRefundTheLastOrder)
	ctx.Step(`^I delete the category "([^"]*)"$`, tc.iDeleteTheCategory)
	ctx.Step(`^I delete the user "([^"]*)"$`, tc.iDeleteTheUser)

	// Then steps
	ctx.Step(`^the operation is rejected with "([^"]*)"$`, tc.theOperationIsRejectedWith)
	ctx.Step(`^the cart subtotal is ([\d.]+)$`, tc.cartAmount("subtotal"))
	ctx.Step(`^the cart discount total is ([\d.]+)$`, tc.cartAmount("discount total"))
	ctx.Step(`^the cart tax is ([\d.]+)$`, tc.cartAmount("tax"))
	ctx.Step(`^the cart total is ([\d.]+)$`, tc.cartAmount("total"))
	ctx.Step(`^the cart has (\d+) units of "([^"]*)"$`, tc.theCartHasUnitsOf)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
	ctx.Step(`^the last order is "([^"]*)"$`, tc.theLastOrderIs)
	ctx.Step(`^the categories are "([^"]*)"$`, tc.theCategoriesAre)
	ctx.Step(`^there are (\d+) users$`, tc.thereAreUsers)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"register.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
