package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/httputil"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/validator"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/service"
)

// PublicationsHandler manages the signed-in user's cars.
type PublicationsHandler struct {
	publications *service.Publications
	logger       *slog.Logger
}

// NewPublicationsHandler creates a new PublicationsHandler.
func NewPublicationsHandler(publications *service.Publications, logger *slog.Logger) *PublicationsHandler {
	return &PublicationsHandler{publications: publications, logger: logger}
}

type publicationsResponse struct {
	Cars       []carView `json:"cars"`
	Email      string    `json:"email"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
	Total      int       `json:"total"`
	HasMore    bool      `json:"hasMore"`
	Error      string    `json:"error,omitempty"`
}

func presentPublications(s service.PublicationsState) publicationsResponse {
	return publicationsResponse{
		Cars:       presentCars(s.Cars),
		Email:      s.Email,
		Page:       s.Page,
		TotalPages: s.TotalPages,
		Total:      s.Total,
		HasMore:    s.Page < s.TotalPages,
		Error:      s.Error,
	}
}

// ListPublications handles GET /api/v1/publications.
func (h *PublicationsHandler) ListPublications(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r.URL.Query().Get("page"), "page", 1)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.publications.Load(r.Context(), page); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, presentPublications(h.publications.State()))
}

// UpdatePublication handles PUT /api/v1/publications/{id}.
func (h *PublicationsHandler) UpdatePublication(w http.ResponseWriter, r *http.Request) {
	var in domain.UpdateCarInput
	if err := decodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	in.ID = chi.URLParam(r, "id")
	if err := validator.Validate(in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	car, err := h.publications.Update(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, presentCar(*car))
}

// DeletePublication handles DELETE /api/v1/publications/{id}.
func (h *PublicationsHandler) DeletePublication(w http.ResponseWriter, r *http.Request) {
	if err := h.publications.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
