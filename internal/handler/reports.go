package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/register/internal/service"
	"go.uber.org/zap"
)

// ReportsRegister defines the register methods needed by report handlers.
// Satisfied by *service.Register; narrow interface for testability.
type ReportsRegister interface {
	Summary(rng string) (service.SalesSummary, error)
	EmployeePerformance() []service.EmployeeStats
}

// ReportsHandler handles dashboard report endpoints.
type ReportsHandler struct {
	reg ReportsRegister
	log *zap.Logger
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(reg ReportsRegister, log *zap.Logger) *ReportsHandler {
	return &ReportsHandler{reg: reg, log: log}
}

// RegisterRoutes registers report endpoints.
// Expected to be mounted at /reports.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
	r.Get("/employees", h.Employees)
}

// Summary returns sales totals for ?range=all|today|week|month.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.reg.Summary(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, h.log, "sales summary", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Employees returns per-user sales, highest revenue first.
func (h *ReportsHandler) Employees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.EmployeePerformance())
}
