package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/graphql"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/httpclient"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/pagination"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// SellerScanLimit is the page size used when scanning the catalogue for a
// seller's cars.
const SellerScanLimit = pagination.MaxLimit

// maxSellerScanPages bounds the catalogue scan of ListBySeller.
const maxSellerScanPages = 100

// Executor runs parsed GraphQL documents. *graphql.Client implements it.
type Executor interface {
	Execute(ctx context.Context, doc *graphql.Document, vars map[string]any, out any) error
}

// Notifier is told about confirmed mutations.
type Notifier interface {
	CarCreated(ctx context.Context, car domain.Car)
	CarUpdated(ctx context.Context, car domain.Car)
	CarDeleted(ctx context.Context, id string)
}

// CarGateway is the storefront's only path to the marketplace backend.
type CarGateway struct {
	client   Executor
	notifier Notifier
	logger   *slog.Logger
}

// NewCarGateway creates a gateway. A nil notifier drops notifications.
func NewCarGateway(client Executor, notifier Notifier, log *slog.Logger) *CarGateway {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &CarGateway{
		client:   client,
		notifier: notifier,
		logger:   logger.Component(log, "car_gateway"),
	}
}

// List fetches one page of the catalogue. page is 1-indexed; limit defaults
// to 10 and is capped at 100.
func (g *CarGateway) List(ctx context.Context, filter *domain.CarFilter, page, limit int) (*domain.CarsPage, error) {
	p := pagination.Normalize(page, limit)
	vars := map[string]any{"page": p.Page, "limit": p.Limit}
	if filter != nil && !filter.IsZero() {
		vars["filter"] = filter
	}

	var out struct {
		Cars *domain.CarsPage `json:"cars"`
	}
	if err := g.client.Execute(ctx, listCarsDoc, vars, &out); err != nil {
		return nil, fmt.Errorf("list cars: %w", translate(err))
	}
	if out.Cars == nil {
		return nil, apperrors.Upstream("empty cars response", nil)
	}
	return completePage(out.Cars, p), nil
}

// Get fetches a single car.
func (g *CarGateway) Get(ctx context.Context, id string) (*domain.Car, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("car id is required")
	}

	var out struct {
		Car *domain.Car `json:"car"`
	}
	if err := g.client.Execute(ctx, getCarDoc, map[string]any{"id": id}, &out); err != nil {
		return nil, fmt.Errorf("get car %s: %w", id, translate(err))
	}
	if out.Car == nil {
		return nil, apperrors.NotFound("car", id)
	}
	return out.Car, nil
}

// Search runs the backend's free-text search.
func (g *CarGateway) Search(ctx context.Context, query string, page, limit int) (*domain.CarsPage, error) {
	p := pagination.Normalize(page, limit)
	vars := map[string]any{"query": query, "page": p.Page, "limit": p.Limit}

	var out struct {
		SearchCars *domain.CarsPage `json:"searchCars"`
	}
	if err := g.client.Execute(ctx, searchCarsDoc, vars, &out); err != nil {
		return nil, fmt.Errorf("search cars: %w", translate(err))
	}
	if out.SearchCars == nil {
		return nil, apperrors.Upstream("empty search response", nil)
	}
	return completePage(out.SearchCars, p), nil
}

// ListBySeller returns the page of cars whose seller email matches email,
// ignoring case. The backend cannot filter by seller, so the whole catalogue
// is scanned and paginated locally.
func (g *CarGateway) ListBySeller(ctx context.Context, email string, page, limit int) (*domain.CarsPage, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("seller email is required")
	}

	var mine []domain.Car
	for scan := 1; scan <= maxSellerScanPages; scan++ {
		res, err := g.List(ctx, nil, scan, SellerScanLimit)
		if err != nil {
			return nil, fmt.Errorf("list cars by seller: %w", err)
		}
		for _, c := range res.Cars {
			if strings.EqualFold(c.Seller.Email, email) {
				mine = append(mine, c)
			}
		}
		if len(res.Cars) == 0 || scan >= res.TotalPages {
			break
		}
	}

	r := pagination.Slice(mine, pagination.Normalize(page, limit))
	return &domain.CarsPage{
		Cars:       r.Items,
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}, nil
}

// Create publishes a new car and announces it once the backend confirmed it.
func (g *CarGateway) Create(ctx context.Context, in domain.CarInput) (*domain.Car, error) {
	var out struct {
		CreateCar *domain.Car `json:"createCar"`
	}
	if err := g.client.Execute(ctx, createCarDoc, map[string]any{"input": in}, &out); err != nil {
		return nil, fmt.Errorf("create car: %w", translate(err))
	}
	if out.CreateCar == nil {
		return nil, apperrors.Upstream("empty createCar response", nil)
	}

	g.logger.InfoContext(ctx, "car created",
		slog.String("car_id", out.CreateCar.ID),
		slog.String("seller_email", out.CreateCar.Seller.Email),
	)
	g.notifier.CarCreated(ctx, *out.CreateCar)
	return out.CreateCar, nil
}

// Update edits a car and announces the new version.
func (g *CarGateway) Update(ctx context.Context, in domain.UpdateCarInput) (*domain.Car, error) {
	if in.ID == "" {
		return nil, apperrors.InvalidInput("car id is required")
	}

	var out struct {
		UpdateCar *domain.Car `json:"updateCar"`
	}
	if err := g.client.Execute(ctx, updateCarDoc, map[string]any{"input": in}, &out); err != nil {
		return nil, fmt.Errorf("update car %s: %w", in.ID, translate(err))
	}
	if out.UpdateCar == nil {
		return nil, apperrors.NotFound("car", in.ID)
	}

	g.logger.InfoContext(ctx, "car updated", slog.String("car_id", in.ID))
	g.notifier.CarUpdated(ctx, *out.UpdateCar)
	return out.UpdateCar, nil
}

// Delete removes a car. A false answer from the backend means no such car.
func (g *CarGateway) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("car id is required")
	}

	var out struct {
		DeleteCar bool `json:"deleteCar"`
	}
	if err := g.client.Execute(ctx, deleteCarDoc, map[string]any{"id": id}, &out); err != nil {
		return fmt.Errorf("delete car %s: %w", id, translate(err))
	}
	if !out.DeleteCar {
		return apperrors.NotFound("car", id)
	}

	g.logger.InfoContext(ctx, "car deleted", slog.String("car_id", id))
	g.notifier.CarDeleted(ctx, id)
	return nil
}

// Health returns the backend's health string.
func (g *CarGateway) Health(ctx context.Context) (string, error) {
	var out struct {
		Health string `json:"health"`
	}
	if err := g.client.Execute(ctx, healthDoc, nil, &out); err != nil {
		return "", fmt.Errorf("health: %w", translate(err))
	}
	return out.Health, nil
}

// completePage fills what the server left out of a page.
func completePage(res *domain.CarsPage, p pagination.Params) *domain.CarsPage {
	if res.Cars == nil {
		res.Cars = []domain.Car{}
	}
	if res.Page < 1 {
		res.Page = p.Page
	}
	if res.Limit < 1 {
		res.Limit = p.Limit
	}
	if res.TotalPages == 0 {
		res.TotalPages = pagination.TotalPages(res.Total, res.Limit)
	}
	return res
}

// translate maps transport and GraphQL failures onto application errors.
// Errors that already carry an application status are kept as they are.
func translate(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		return apperrors.ServiceUnavailable("marketplace backend temporarily unavailable")
	}
	var gqlErr *graphql.Error
	if errors.As(err, &gqlErr) {
		return apperrors.Upstream(gqlErr.Message(), err)
	}
	return apperrors.Upstream("marketplace backend unavailable", err)
}

type noopNotifier struct{}

func (noopNotifier) CarCreated(context.Context, domain.Car) {}
func (noopNotifier) CarUpdated(context.Context, domain.Car) {}
func (noopNotifier) CarDeleted(context.Context, string)     {}
