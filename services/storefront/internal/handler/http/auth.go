package http

import (
	"log/slog"
	"net/http"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/httputil"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/guard"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/service"
)

// AuthHandler handles sign-in and sign-out.
type AuthHandler struct {
	auth   *service.AuthStore
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	service.LoginInput
	ReturnURL string `json:"returnUrl"`
}

type registerRequest struct {
	service.RegisterInput
	ReturnURL string `json:"returnUrl"`
}

type sessionResponse struct {
	domain.Session
	Redirect string `json:"redirect,omitempty"`
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.auth.Login(r.Context(), req.LoginInput); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, sessionResponse{
		Session:  h.auth.Session(),
		Redirect: guard.ReturnURL(req.ReturnURL),
	})
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.auth.Register(r.Context(), req.RegisterInput); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, sessionResponse{
		Session:  h.auth.Session(),
		Redirect: guard.ReturnURL(req.ReturnURL),
	})
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())
	httputil.WriteData(w, http.StatusOK, sessionResponse{
		Session:  h.auth.Session(),
		Redirect: guard.LoginPath,
	})
}

// Session handles GET /api/v1/auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, sessionResponse{Session: h.auth.Session()})
}
