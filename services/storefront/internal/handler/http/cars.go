package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/httputil"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/pagination"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/service"
)

// CarGateway is the part of the car gateway the handlers call directly.
type CarGateway interface {
	Get(ctx context.Context, id string) (*domain.Car, error)
	Search(ctx context.Context, query string, page, limit int) (*domain.CarsPage, error)
	Create(ctx context.Context, in domain.CarInput) (*domain.Car, error)
}

// CarHandler serves the catalogue.
type CarHandler struct {
	cars    CarGateway
	listing *service.Listing
	logger  *slog.Logger
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(cars CarGateway, listing *service.Listing, logger *slog.Logger) *CarHandler {
	return &CarHandler{cars: cars, listing: listing, logger: logger}
}

type listingResponse struct {
	Cars       []carView `json:"cars"`
	Brands     []string  `json:"brands"`
	Search     string    `json:"search"`
	Brand      string    `json:"brand"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
	Total      int       `json:"total"`
	HasMore    bool      `json:"hasMore"`
	Error      string    `json:"error,omitempty"`
}

func presentListing(v service.ListingView) listingResponse {
	return listingResponse{
		Cars:       presentCars(v.Cars),
		Brands:     v.Brands,
		Search:     v.Search,
		Brand:      v.Brand,
		Page:       v.Page,
		TotalPages: v.TotalPages,
		Total:      v.Total,
		HasMore:    v.HasMore,
		Error:      v.Error,
	}
}

// ListCars handles GET /api/v1/cars. It loads a page through the listing
// and applies the local search term and brand.
func (h *CarHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := parseCarFilter(q.Get)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	page, err := queryInt(q.Get("page"), "page", 1)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	view, err := h.listing.Query(r.Context(), filter, page, q.Get("search"), q.Get("brand"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, presentListing(view))
}

// SearchCars handles GET /api/v1/cars/search.
func (h *CarHandler) SearchCars(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		httputil.WriteError(w, r, apperrors.InvalidInput("q is required"), h.logger)
		return
	}
	params := pagination.FromRequest(r)

	res, err := h.cars.Search(r.Context(), query, params.Page, params.Limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, presentPage(res))
}

// GetCar handles GET /api/v1/cars/{id}.
func (h *CarHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	car, err := h.cars.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, presentCar(*car))
}

// parseCarFilter reads the server-side filter from query parameters.
func parseCarFilter(get func(string) string) (domain.CarFilter, error) {
	f := domain.CarFilter{
		Model:        get("model"),
		FuelType:     domain.FuelType(strings.ToUpper(get("fuelType"))),
		Transmission: domain.Transmission(strings.ToUpper(get("transmission"))),
		City:         get("city"),
		State:        get("state"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"minYear", &f.MinYear},
		{"maxYear", &f.MaxYear},
		{"minMileage", &f.MinMileage},
		{"maxMileage", &f.MaxMileage},
	}
	for _, p := range ints {
		v, err := queryInt(get(p.name), p.name, 0)
		if err != nil {
			return domain.CarFilter{}, err
		}
		*p.dst = v
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	}
	for _, p := range floats {
		raw := get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.CarFilter{}, apperrors.InvalidInput(p.name + " must be a number")
		}
		*p.dst = v
	}
	return f, nil
}

func queryInt(raw, name string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(name + " must be an integer")
	}
	return v, nil
}
