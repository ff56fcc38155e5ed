package http

import (
	"log/slog"
	"net/http"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/httputil"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// Seller exposes the signed-in user the sell form is prefilled with.
type Seller interface {
	UserEmail() string
	UserName() string
}

// SellHandler publishes new cars.
type SellHandler struct {
	cars   CarGateway
	seller Seller
	logger *slog.Logger
}

// NewSellHandler creates a new SellHandler.
func NewSellHandler(cars CarGateway, seller Seller, logger *slog.Logger) *SellHandler {
	return &SellHandler{cars: cars, seller: seller, logger: logger}
}

// NewForm handles GET /api/v1/sell and returns a blank form with defaults.
func (h *SellHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	form := domain.NewCarForm()
	form.SellerName = h.seller.UserName()
	form.SellerEmail = h.seller.UserEmail()
	httputil.WriteData(w, http.StatusOK, form)
}

// Submit handles POST /api/v1/sell.
func (h *SellHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form domain.CarForm
	if err := decodeJSON(w, r, &form); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := form.Validate(); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	car, err := h.cars.Create(r.Context(), form.ToInput())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "car published",
		slog.String("car_id", car.ID),
		slog.String("brand", car.Brand),
	)
	httputil.WriteData(w, http.StatusCreated, presentCar(*car))
}
