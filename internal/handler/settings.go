package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/register/internal/domain"
	"github.com/kiwari-pos/register/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettingsRegister defines the register methods needed by settings handlers.
// Satisfied by *service.Register; narrow interface for testability.
type SettingsRegister interface {
	Settings() domain.SystemSettings
	UpdateSettings(ctx context.Context, p service.SettingsPatch) (domain.SystemSettings, error)
}

// SettingsHandler handles store configuration endpoints.
type SettingsHandler struct {
	reg SettingsRegister
	log *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(reg SettingsRegister, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{reg: reg, log: log}
}

// RegisterRoutes registers settings endpoints. Expected to be mounted at
// /settings behind manager-only gating.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
}

// settingsRequest is a partial update. Omitted fields are left alone; an
// explicit null exchange_rate turns secondary-currency display off.
type settingsRequest struct {
	TaxRate                 *decimal.Decimal `json:"tax_rate"`
	StoreLogoURL            *string          `json:"store_logo_url"`
	StoreAddress            *string          `json:"store_address"`
	ReceiptMessage          *string          `json:"receipt_message"`
	CurrencySymbol          *string          `json:"currency_symbol"`
	SecondaryCurrencySymbol *string          `json:"secondary_currency_symbol"`
	ExchangeRate            json.RawMessage  `json:"exchange_rate"`
}

func (req settingsRequest) patch() (service.SettingsPatch, error) {
	p := service.SettingsPatch{
		TaxRate:                 req.TaxRate,
		StoreLogoURL:            req.StoreLogoURL,
		StoreAddress:            req.StoreAddress,
		ReceiptMessage:          req.ReceiptMessage,
		CurrencySymbol:          req.CurrencySymbol,
		SecondaryCurrencySymbol: req.SecondaryCurrencySymbol,
	}
	switch {
	case len(req.ExchangeRate) == 0:
	case bytes.Equal(req.ExchangeRate, []byte("null")):
		p.ClearExchangeRate = true
	default:
		var rate decimal.Decimal
		if err := json.Unmarshal(req.ExchangeRate, &rate); err != nil {
			return service.SettingsPatch{}, err
		}
		p.ExchangeRate = &rate
	}
	return p, nil
}

// Get returns the current settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.Settings())
}

// Update applies a partial settings change.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := req.patch()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exchange_rate"})
		return
	}
	s, err := h.reg.UpdateSettings(r.Context(), p)
	if err != nil {
		writeError(w, h.log, "update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
