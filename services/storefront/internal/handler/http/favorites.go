package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/httputil"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/service"
)

// FavoritesHandler handles the favorites list.
type FavoritesHandler struct {
	favorites *service.FavoritesStore
	cars      CarGateway
	logger    *slog.Logger
}

// NewFavoritesHandler creates a new FavoritesHandler.
func NewFavoritesHandler(favorites *service.FavoritesStore, cars CarGateway, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites, cars: cars, logger: logger}
}

type favoritesResponse struct {
	Cars  []carView `json:"cars"`
	Count int       `json:"count"`
}

type toggleResponse struct {
	CarID    string `json:"carId"`
	Favorite bool   `json:"favorite"`
	Count    int    `json:"count"`
}

func (h *FavoritesHandler) list() favoritesResponse {
	return favoritesResponse{
		Cars:  presentCars(h.favorites.Items()),
		Count: h.favorites.Count(),
	}
}

// ListFavorites handles GET /api/v1/favorites.
func (h *FavoritesHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.list())
}

// AddFavorite handles POST /api/v1/favorites/{carId}. Adding a car that is
// already a favorite changes nothing.
func (h *FavoritesHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "carId")
	if !h.favorites.Contains(carID) {
		car, err := h.cars.Get(r.Context(), carID)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		h.favorites.Add(r.Context(), *car)
	}
	httputil.WriteData(w, http.StatusOK, h.list())
}

// ToggleFavorite handles POST /api/v1/favorites/{carId}/toggle.
func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "carId")

	var favorite bool
	if h.favorites.Contains(carID) {
		h.favorites.Remove(r.Context(), carID)
	} else {
		car, err := h.cars.Get(r.Context(), carID)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		favorite = h.favorites.Toggle(r.Context(), *car)
	}

	httputil.WriteData(w, http.StatusOK, toggleResponse{
		CarID:    carID,
		Favorite: favorite,
		Count:    h.favorites.Count(),
	})
}

// RemoveFavorite handles DELETE /api/v1/favorites/{carId}.
func (h *FavoritesHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	carID := chi.URLParam(r, "carId")
	if !h.favorites.Remove(r.Context(), carID) {
		httputil.WriteError(w, r, apperrors.NotFound("favorite", carID), h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, h.list())
}
