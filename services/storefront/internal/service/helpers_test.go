package service

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// --- Mock Repositories ---

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Load(ctx context.Context) (domain.Cart, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *mockCartRepository) Save(ctx context.Context, cart domain.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

type mockFavoritesRepository struct {
	mock.Mock
}

func (m *mockFavoritesRepository) Load(ctx context.Context) (domain.Favorites, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Favorites), args.Error(1)
}

func (m *mockFavoritesRepository) Save(ctx context.Context, favs domain.Favorites) error {
	args := m.Called(ctx, favs)
	return args.Error(0)
}

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Load(ctx context.Context) (domain.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *mockSessionRepository) Save(ctx context.Context, s domain.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSessionRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Mock Gateway ---

type mockCarGateway struct {
	mock.Mock
}

func (m *mockCarGateway) List(ctx context.Context, filter *domain.CarFilter, page, limit int) (*domain.CarsPage, error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarsPage), args.Error(1)
}

func (m *mockCarGateway) ListBySeller(ctx context.Context, email string, page, limit int) (*domain.CarsPage, error) {
	args := m.Called(ctx, email, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CarsPage), args.Error(1)
}

func (m *mockCarGateway) Update(ctx context.Context, in domain.UpdateCarInput) (*domain.Car, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *mockCarGateway) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCar(id, brand string, price float64) domain.Car {
	return domain.Car{ID: id, Title: brand + " " + id, Brand: brand, Model: "M" + id, Color: "Rojo", Price: price}
}

// recorder collects an ordered trace of events from several goroutines.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
