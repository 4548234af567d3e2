package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/register/internal/auth"
	"github.com/kiwari-pos/register/internal/config"
	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/events"
	"github.com/kiwari-pos/register/internal/router"
	"github.com/kiwari-pos/register/internal/service"
	"github.com/kiwari-pos/register/internal/storage"
	"github.com/kiwari-pos/register/internal/ws"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

var (
	admin   = domain.Identity{UserID: 1, Name: "Admin", Role: "manager"}
	jessica = domain.Identity{UserID: 2, Name: "Jessica", Role: "cashier"}
	susan   = domain.Identity{UserID: 4, Name: "Susan", Role: "supervisor"}
)

func setup(t *testing.T) chi.Router {
	t.Helper()
	reg, err := service.Open(context.Background(), service.Options{
		Store:     storage.NewMemory(),
		Publisher: events.Nop{},
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("open register: %v", err)
	}
	cfg := &config.Config{JWTSecret: testSecret, AllowedOrigins: []string{"http://localhost:5173"}}
	return router.New(cfg, reg, ws.NewHub(zap.NewNop()), zap.NewNop())
}

func do(t *testing.T, h http.Handler, id *domain.Identity, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if id != nil {
		token, err := auth.GenerateToken(testSecret, *id)
		if err != nil {
			t.Fatalf("generate token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := do(t, setup(t), nil, "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestRoleGating(t *testing.T) {
	r := setup(t)

	tests := []struct {
		name   string
		id     *domain.Identity
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"login screen is public", nil, "GET", "/auth/users", nil, http.StatusOK},
		{"catalog needs a login", nil, "GET", "/products", nil, http.StatusUnauthorized},
		{"cashier reads catalog", &jessica, "GET", "/products", nil, http.StatusOK},
		{"cashier reads categories", &jessica, "GET", "/categories", nil, http.StatusOK},
		{"cashier reads history", &jessica, "GET", "/orders", nil, http.StatusOK},
		{"cashier cannot edit products", &jessica, "DELETE", "/products/1", nil, http.StatusForbidden},
		{"cashier cannot see reports", &jessica, "GET", "/reports/summary", nil, http.StatusForbidden},
		{"cashier cannot refund", &jessica, "POST", "/orders/ORD-1/refund", nil, http.StatusForbidden},
		{"supervisor sees reports", &susan, "GET", "/reports/employees", nil, http.StatusOK},
		{"supervisor cannot manage users", &susan, "GET", "/users", nil, http.StatusForbidden},
		{"supervisor cannot change settings", &susan, "GET", "/settings", nil, http.StatusForbidden},
		{"supervisor cannot add categories", &susan, "POST", "/categories", map[string]string{"name": "Soup"}, http.StatusForbidden},
		{"manager manages users", &admin, "GET", "/users", nil, http.StatusOK},
		{"manager reads settings", &admin, "GET", "/settings", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, r, tt.id, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status: got %d, want %d; body: %s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestLoginSellRefund(t *testing.T) {
	r := setup(t)

	rr := do(t, r, nil, "POST", "/auth/pin-login", map[string]interface{}{"user_id": 2, "pin": "2222"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	// Latte has 8 in stock in the default catalog
	for i := 0; i < 2; i++ {
		rr = do(t, r, &jessica, "POST", "/cart/items", map[string]int64{"product_id": 2})
		if rr.Code != http.StatusOK {
			t.Fatalf("add status: got %d; body: %s", rr.Code, rr.Body.String())
		}
	}

	rr = do(t, r, &jessica, "POST", "/cart/checkout", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("checkout status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	var order domain.CompletedOrder
	if err := json.NewDecoder(rr.Body).Decode(&order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.CashierName != "Jessica" || order.ItemCount() != 2 {
		t.Fatalf("unexpected order: %+v", order)
	}

	var latte domain.Product
	rr = do(t, r, &jessica, "GET", "/products/2", nil)
	json.NewDecoder(rr.Body).Decode(&latte)
	if latte.Stock != 6 {
		t.Fatalf("stock after sale: got %d, want 6", latte.Stock)
	}

	rr = do(t, r, &susan, "POST", "/orders/"+order.ID+"/refund", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("refund status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	rr = do(t, r, &susan, "POST", "/orders/"+order.ID+"/refund", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("second refund status: got %d, want %d", rr.Code, http.StatusConflict)
	}

	rr = do(t, r, &jessica, "GET", "/products/2", nil)
	json.NewDecoder(rr.Body).Decode(&latte)
	if latte.Stock != 8 {
		t.Fatalf("stock after refund: got %d, want 8", latte.Stock)
	}
}
