package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/health"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/middleware"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/event"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/guard"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/repository"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/service"
)

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

func (m *mockCarGateway) Get(ctx context.Context, id string) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *mockCarGateway) Search(ctx context.Context, query string, page, limit int) (*domain.CarsPage, error) {
	args := m.Called(ctx, query, page, limit)
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

func (m *mockCarGateway) Create(ctx context.Context, in domain.CarInput) (*domain.Car, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
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

type staticEvents []event.CarEvent

func (s staticEvents) Recent() []event.CarEvent { return s }

// --- Test Server ---

type testServer struct {
	handler   http.Handler
	cars      *mockCarGateway
	auth      *service.AuthStore
	cart      *service.CartStore
	favorites *service.FavoritesStore
}

func newTestServer(t *testing.T, events ...event.CarEvent) *testServer {
	t.Helper()

	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewAdapter(storage.NewMemory())
	cars := new(mockCarGateway)

	auth := service.NewAuthStore(ctx, repository.NewSessionRepository(store), log)
	cart := service.NewCartStore(ctx, repository.NewCartRepository(store), log)
	favs := service.NewFavoritesStore(ctx, repository.NewFavoritesRepository(store), log)

	deps := Deps{
		Cars:         cars,
		Listing:      service.NewListing(cars, log),
		Publications: service.NewPublications(cars, auth, log),
		Cart:         cart,
		Favorites:    favs,
		Auth:         auth,
		Events:       staticEvents(events),
		Gate:         guard.New(auth),
	}

	return &testServer{
		handler:   NewRouter(deps, health.NewHandler(), Options{
			CORS:           middleware.DefaultCORSConfig(),
			CatalogMaxAge:  30,
			PprofAllowlist: []string{"127.0.0.0/8"},
		}, log),
		cars:      cars,
		auth:      auth,
		cart:      cart,
		favorites: favs,
	}
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	require.NoError(t, s.auth.Login(context.Background(), service.LoginInput{
		Email:    "ana@example.com",
		Password: "secret",
	}))
}

func (s *testServer) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, target, body string) *http.Request {
	return httptest.NewRequest(method, target, strings.NewReader(body))
}

func serve(s *testServer, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func testCar(id, brand string, price float64) domain.Car {
	return domain.Car{
		ID:           id,
		Title:        brand + " usado " + id,
		Brand:        brand,
		Model:        "Modelo",
		Year:         2020,
		Price:        price,
		Mileage:      45000,
		FuelType:     domain.FuelGasoline,
		Transmission: domain.TransmissionManual,
		Status:       domain.StatusAvailable,
		Seller:       domain.Seller{Name: "Ana", Email: "ana@example.com"},
	}
}
