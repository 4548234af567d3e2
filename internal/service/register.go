package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/events"
	"github.com/kiwari-pos/register/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Describer generates product descriptions. Failures come back as text.
// Satisfied by *describe.Gemini; narrow interface for testability.
type Describer interface {
	Describe(ctx context.Context, productName string) string
}

// Options configures Open.
type Options struct {
	Store     storage.Store
	Publisher events.Publisher
	Describer Describer
	Logger    *zap.Logger
}

// CartView is the cart with its priced totals.
type CartView struct {
	Lines          []domain.OrderLine `json:"lines"`
	Totals         Totals             `json:"totals"`
	SecondaryTotal string             `json:"secondary_total,omitempty"`
}

// idSequences records the highest product and user ids ever issued.
type idSequences struct {
	Product int64 `json:"product"`
	User    int64 `json:"user"`
}

// Register owns all state of one point-of-sale terminal. Every operation
// validates before it mutates, so a failed call leaves state unchanged.
// Committed mutations are saved to the store and published as events.
type Register struct {
	mu sync.Mutex

	catalog  *Catalog
	cart     *Cart
	history  *History
	users    *Users
	settings *Settings
	settler  *Settler
	refunder *Refunder

	store     storage.Store
	publisher events.Publisher
	describer Describer
	log       *zap.Logger
	now       func() time.Time
}

// Open loads every namespace from opts.Store. Missing or unreadable
// documents fall back to the built-in defaults.
func Open(ctx context.Context, opts Options) (*Register, error) {
	if opts.Store == nil {
		return nil, errors.New("register: store is required")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	pub := opts.Publisher
	if pub == nil {
		pub = events.Nop{}
	}

	products, ok := loadDoc[[]domain.Product](ctx, opts.Store, storage.KeyProducts, log)
	if !ok {
		products = DefaultProducts()
	}

	orders, _ := loadDoc[[]domain.CompletedOrder](ctx, opts.Store, storage.KeyOrderHistory, log)

	users, ok := loadDoc[[]domain.User](ctx, opts.Store, storage.KeyUsers, log)
	if !ok || len(users) == 0 {
		defaults, err := DefaultUsers()
		if err != nil {
			return nil, err
		}
		users = defaults
	}

	settings := domain.DefaultSettings()
	if raw, err := opts.Store.Load(ctx, storage.KeySettings); err == nil {
		parsed, err := domain.ParseSettings(raw)
		if err != nil {
			log.Warn("stored settings rejected, using defaults", zap.Error(err))
		} else {
			settings = parsed
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Warn("load settings failed, using defaults", zap.Error(err))
	}

	// Ids seen in history or issued before a delete stay retired.
	seq, _ := loadDoc[idSequences](ctx, opts.Store, storage.KeySequences, log)
	catalog := NewCatalog(products)
	catalog.reserve(seq.Product)
	for _, o := range orders {
		for _, it := range o.Items {
			catalog.reserve(it.Product.ID)
		}
	}
	staff := NewUsers(users)
	staff.reserve(seq.User)

	history := NewHistory(orders)
	r := &Register{
		catalog:   catalog,
		cart:      NewCart(catalog),
		history:   history,
		users:     staff,
		settings:  NewSettings(settings, catalog),
		settler:   NewSettler(catalog, history, log),
		refunder:  NewRefunder(catalog, history, log),
		store:     opts.Store,
		publisher: pub,
		describer: opts.Describer,
		log:       log,
		now:       time.Now,
	}
	log.Info("register loaded",
		zap.Int("products", len(products)),
		zap.Int("orders", len(orders)),
		zap.Int("users", len(users)))
	return r, nil
}

// loadDoc decodes key. It reports false when the document is absent or
// cannot be decoded.
func loadDoc[T any](ctx context.Context, st storage.Store, key string, log *zap.Logger) (T, bool) {
	var v T
	raw, err := st.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn("load failed, using defaults", zap.String("key", key), zap.Error(err))
		}
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Warn("stored document corrupt, using defaults", zap.String("key", key), zap.Error(err))
		var zero T
		return zero, false
	}
	return v, true
}

// ── Catalog ──

// Products lists products in category ("" or "All" for every product).
func (r *Register) Products(category string) []domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.catalog.List(category)
}

// Product returns product id.
func (r *Register) Product(id int64) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.catalog.Get(id)
}

// CreateProduct adds a product to the catalog.
func (r *Register) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.catalog.Create(in, r.settings.Current())
	if err != nil {
		return domain.Product{}, err
	}
	r.persist(ctx, storage.KeyProducts, storage.KeySequences)
	r.publish(ctx, enum.EventCatalogChanged, productSubject(p.ID), p)
	return p, nil
}

// UpdateProduct replaces product id. A cart line keeps its snapshot.
func (r *Register) UpdateProduct(ctx context.Context, id int64, in ProductInput) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.catalog.Update(id, in, r.settings.Current())
	if err != nil {
		return domain.Product{}, err
	}
	r.persist(ctx, storage.KeyProducts)
	r.publish(ctx, enum.EventCatalogChanged, productSubject(p.ID), p)
	return p, nil
}

// DeleteProduct removes product id from the catalog and the cart.
func (r *Register) DeleteProduct(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.catalog.Delete(id); err != nil {
		return err
	}
	r.cart.Remove(id)
	r.persist(ctx, storage.KeyProducts)
	r.publish(ctx, enum.EventCatalogChanged, productSubject(id), map[string]any{"id": id, "deleted": true})
	return nil
}

// DescribeProduct asks the text generator for a description of name. It
// never fails; problems are returned as the description text.
func (r *Register) DescribeProduct(ctx context.Context, name string) string {
	if r.describer == nil {
		return "Description generation is not available."
	}
	return r.describer.Describe(ctx, name)
}

// ── Cart ──

// Cart returns the current cart priced at the configured tax rate.
func (r *Register) Cart() CartView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cartView()
}

// AddToCart adds one unit of productID.
func (r *Register) AddToCart(productID int64) (CartView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.catalog.Get(productID)
	if err != nil {
		return CartView{}, err
	}
	if err := r.cart.Add(p); err != nil {
		return CartView{}, err
	}
	return r.cartView(), nil
}

// SetCartQuantity sets the quantity of productID. Zero or less removes
// the line.
func (r *Register) SetCartQuantity(productID int64, q int) (CartView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q <= 0 {
		r.cart.Remove(productID)
		return r.cartView(), nil
	}
	if err := r.cart.SetQuantity(productID, q); err != nil {
		return CartView{}, err
	}
	return r.cartView(), nil
}

// SetCartDiscount sets the discount percentage of productID's line.
func (r *Register) SetCartDiscount(productID int64, percent decimal.Decimal) (CartView, error) {
	if !domain.ValidPercent(percent) {
		return CartView{}, ErrInvalidDiscount
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.cart.SetDiscount(productID, percent); err != nil {
		return CartView{}, err
	}
	return r.cartView(), nil
}

// RemoveFromCart deletes productID's line if present.
func (r *Register) RemoveFromCart(productID int64) CartView {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart.Remove(productID)
	return r.cartView()
}

// ClearCart empties the cart.
func (r *Register) ClearCart() CartView {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cart.Clear()
	return r.cartView()
}

// PaymentPayload returns the simulated payment QR string for the cart total.
func (r *Register) PaymentPayload() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.cart.Lines()
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}
	t := Price(lines, r.settings.Current().TaxRate)
	return PaymentPayload(t.Total, r.now()), nil
}

// Checkout settles the cart as a sale by cashier and clears it.
func (r *Register) Checkout(ctx context.Context, cashier *domain.Identity) (domain.CompletedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings := r.settings.Current()
	lines := r.cart.Lines()
	order, err := r.settler.Settle(lines, Price(lines, settings.TaxRate), cashier, settings)
	if err != nil {
		return domain.CompletedOrder{}, err
	}
	r.cart.Clear()
	r.log.Info("order settled",
		zap.String("order_id", order.ID),
		zap.String("cashier", order.CashierName),
		zap.String("total", order.Total.StringFixed(2)))
	r.persist(ctx, storage.KeyProducts, storage.KeyOrderHistory)
	r.publish(ctx, enum.EventOrderSettled, order.ID, order)
	return order, nil
}

func (r *Register) cartView() CartView {
	settings := r.settings.Current()
	lines := r.cart.Lines()
	v := CartView{Lines: lines, Totals: Price(lines, settings.TaxRate)}
	if v.Lines == nil {
		v.Lines = []domain.OrderLine{}
	}
	if settings.HasSecondaryCurrency() {
		if amt, ok := domain.Convert(v.Totals.Total, settings.ExchangeRate); ok {
			v.SecondaryTotal = domain.FormatSecondary(amt, settings.SecondaryCurrencySymbol)
		}
	}
	return v
}

// ── Orders ──

// Orders lists orders with status, or all orders when status is empty.
func (r *Register) Orders(status string) []domain.CompletedOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.List(status)
}

// Order returns order id.
func (r *Register) Order(id string) (domain.CompletedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Get(id)
}

// Receipt renders order id for printing.
func (r *Register) Receipt(id string) (Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, err := r.history.Get(id)
	if err != nil {
		return Receipt{}, err
	}
	return BuildReceipt(o, r.settings.Current()), nil
}

// Refund reverses order id.
func (r *Register) Refund(ctx context.Context, id string) (domain.CompletedOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, err := r.refunder.Refund(id)
	if err != nil {
		return domain.CompletedOrder{}, err
	}
	r.log.Info("order refunded", zap.String("order_id", id))
	r.persist(ctx, storage.KeyProducts, storage.KeyOrderHistory)
	r.publish(ctx, enum.EventOrderRefunded, order.ID, order)
	return order, nil
}

// ── Users ──

// Users lists every user.
func (r *Register) Users() []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users.List()
}

// Login checks pin for user id and returns the identity used for
// attribution.
func (r *Register) Login(id int64, pin string) (domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.users.Authenticate(id, pin)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.IdentityOf(u), nil
}

// AddUser creates a user.
func (r *Register) AddUser(ctx context.Context, in UserInput) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.users.Add(in)
	if err != nil {
		return domain.User{}, err
	}
	r.persist(ctx, storage.KeyUsers, storage.KeySequences)
	return u, nil
}

// UpdateUser changes user id.
func (r *Register) UpdateUser(ctx context.Context, id int64, in UserInput) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, err := r.users.Update(id, in)
	if err != nil {
		return domain.User{}, err
	}
	r.persist(ctx, storage.KeyUsers)
	return u, nil
}

// DeleteUser removes user id.
func (r *Register) DeleteUser(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.users.Delete(id); err != nil {
		return err
	}
	r.persist(ctx, storage.KeyUsers)
	return nil
}

// ── Settings ──

// Settings returns the current settings.
func (r *Register) Settings() domain.SystemSettings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings.Current()
}

// UpdateSettings applies p.
func (r *Register) UpdateSettings(ctx context.Context, p SettingsPatch) (domain.SystemSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.settings.Apply(p)
	if err != nil {
		return domain.SystemSettings{}, err
	}
	r.persist(ctx, storage.KeySettings)
	return s, nil
}

// Categories returns the configured category names in order.
func (r *Register) Categories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings.Current().Categories
}

// AddCategory appends a category.
func (r *Register) AddCategory(ctx context.Context, name string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.settings.AddCategory(name); err != nil {
		return nil, err
	}
	r.persist(ctx, storage.KeySettings)
	return r.settings.Current().Categories, nil
}

// RenameCategory renames a category and every product in it.
func (r *Register) RenameCategory(ctx context.Context, from, to string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.settings.RenameCategory(from, to); err != nil {
		return nil, err
	}
	r.persist(ctx, storage.KeySettings, storage.KeyProducts)
	r.publish(ctx, enum.EventCatalogChanged, "category:"+from, map[string]string{"from": from, "to": to})
	return r.settings.Current().Categories, nil
}

// DeleteCategory removes an unused category.
func (r *Register) DeleteCategory(ctx context.Context, name string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.settings.DeleteCategory(name); err != nil {
		return nil, err
	}
	r.persist(ctx, storage.KeySettings)
	return r.settings.Current().Categories, nil
}

// ── Reports ──

// Summary aggregates sales within rng.
func (r *Register) Summary(rng string) (SalesSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Summarize(r.history.Snapshot(), rng, r.now())
}

// EmployeePerformance aggregates sales per user.
func (r *Register) EmployeePerformance() []EmployeeStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return EmployeePerformance(r.history.Snapshot(), r.users.List())
}

// ── collaborators ──

// persist saves the named namespaces. Failures are logged; the in-memory
// mutation stands.
func (r *Register) persist(ctx context.Context, keys ...string) {
	for _, key := range keys {
		var v any
		switch key {
		case storage.KeyProducts:
			v = r.catalog.Snapshot()
		case storage.KeyOrderHistory:
			v = r.history.Snapshot()
		case storage.KeyUsers:
			v = r.users.List()
		case storage.KeySettings:
			v = r.settings.Current()
		case storage.KeySequences:
			v = idSequences{Product: r.catalog.LastID(), User: r.users.LastID()}
		default:
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			r.log.Error("encode for save", zap.String("key", key), zap.Error(err))
			continue
		}
		if err := r.store.Save(ctx, key, b); err != nil {
			r.log.Error("save failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (r *Register) publish(ctx context.Context, typ, subject string, payload any) {
	ev, err := events.New(typ, subject, payload)
	if err != nil {
		r.log.Error("build event", zap.String("type", typ), zap.Error(err))
		return
	}
	r.publisher.Publish(ctx, ev)
}

func productSubject(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}
