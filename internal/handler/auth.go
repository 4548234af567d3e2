package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/register/internal/auth"
	"github.com/kiwari-pos/register/internal/domain"
	"go.uber.org/zap"
)

// AuthRegister defines the register methods needed by auth handlers.
// Satisfied by *service.Register; narrow interface for testability.
type AuthRegister interface {
	Users() []domain.User
	Login(id int64, pin string) (domain.Identity, error)
}

// AuthHandler handles the PIN login endpoints.
type AuthHandler struct {
	reg       AuthRegister
	jwtSecret string
	log       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(reg AuthRegister, jwtSecret string, log *zap.Logger) *AuthHandler {
	return &AuthHandler{reg: reg, jwtSecret: jwtSecret, log: log}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/users", h.Users)
	r.Post("/auth/pin-login", h.PinLogin)
}

// --- Request / Response types ---

type pinLoginRequest struct {
	UserID int64  `json:"user_id"`
	Pin    string `json:"pin"`
}

type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	User        domain.Identity `json:"user"`
}

type userResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Role: u.Role}
}

// --- Handlers ---

// Users lists who can log in, for the login screen. PIN hashes are never
// returned.
func (h *AuthHandler) Users(w http.ResponseWriter, r *http.Request) {
	users := h.reg.Users()
	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

// PinLogin checks a user's PIN and issues a shift token.
func (h *AuthHandler) PinLogin(w http.ResponseWriter, r *http.Request) {
	var req pinLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.UserID == 0 || req.Pin == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user_id and pin are required"})
		return
	}

	id, err := h.reg.Login(req.UserID, req.Pin)
	if err != nil {
		writeError(w, h.log, "pin login", err)
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, id)
	if err != nil {
		h.log.Error("generate token", zap.Int64("user_id", id.UserID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.log.Info("user logged in", zap.Int64("user_id", id.UserID), zap.String("role", id.Role))
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, User: id})
}
