package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/observable"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// ListPageSize is the page size of the car list screen.
const ListPageSize = 10

// AllBrands is the brand choice that disables the brand filter.
const AllBrands = "Todas"

// ErrSuperseded is returned by Listing.Load when a newer load started before
// this one finished. Its result was discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// CarLister fetches pages of the catalogue.
type CarLister interface {
	List(ctx context.Context, filter *domain.CarFilter, page, limit int) (*domain.CarsPage, error)
}

// ListingState is the state of the car list screen.
type ListingState struct {
	Cars       []domain.Car
	Filter     domain.CarFilter
	Search     string
	Brand      string
	Page       int
	TotalPages int
	Total      int
	Loading    bool
	Error      string
}

// ListingView is what the car list screen renders.
type ListingView struct {
	Cars       []domain.Car `json:"cars"`
	Brands     []string     `json:"brands"`
	Search     string       `json:"search"`
	Brand      string       `json:"brand"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	Total      int          `json:"total"`
	HasMore    bool         `json:"hasMore"`
	Loading    bool         `json:"loading"`
	Error      string       `json:"error,omitempty"`
}

// Listing drives the car list screen: it fetches pages and filters the
// fetched cars locally by search term and brand.
type Listing struct {
	cars   CarLister
	state  *observable.Subject[ListingState]
	gen    atomic.Uint64
	logger *slog.Logger
}

// NewListing creates a listing over cars.
func NewListing(cars CarLister, log *slog.Logger) *Listing {
	return &Listing{
		cars:   cars,
		state:  observable.New(ListingState{Page: 1, TotalPages: 1}),
		logger: logger.Component(log, "listing"),
	}
}

// Load fetches page with the server-side filter and replaces the fetched
// list. If another Load starts before this one returns, this result is
// dropped and ErrSuperseded is returned.
func (l *Listing) Load(ctx context.Context, filter domain.CarFilter, page int) error {
	_, stale, err := l.load(ctx, filter, page)
	if err == nil && stale {
		return ErrSuperseded
	}
	return err
}

// Query serves one list request: it sets the screen's search term and brand,
// loads page, and renders the view from this request's own page and filters.
// A newer concurrent load can win the screen state, but never changes what
// this call returns.
func (l *Listing) Query(ctx context.Context, filter domain.CarFilter, page int, search, brand string) (ListingView, error) {
	l.SetSearch(search)
	l.SetBrand(brand)

	res, _, err := l.load(ctx, filter, page)
	if err != nil {
		return ListingView{}, err
	}
	return ListingView{
		Cars:       FilterCars(res.Cars, search, brand),
		Brands:     brandsOf(res.Cars),
		Search:     search,
		Brand:      brand,
		Page:       res.Page,
		TotalPages: res.TotalPages,
		Total:      res.Total,
		HasMore:    res.Page < res.TotalPages,
	}, nil
}

// load fetches a page and applies it to the screen state unless a newer load
// started meanwhile, which it reports as stale. The fetched page is returned
// either way.
func (l *Listing) load(ctx context.Context, filter domain.CarFilter, page int) (*domain.CarsPage, bool, error) {
	gen := l.gen.Add(1)
	l.state.Update(func(s ListingState) (ListingState, bool) {
		s.Loading = true
		s.Error = ""
		return s, true
	})

	var fp *domain.CarFilter
	if !filter.IsZero() {
		fp = &filter
	}
	res, err := l.cars.List(ctx, fp, page, ListPageSize)

	var stale bool
	l.state.Update(func(s ListingState) (ListingState, bool) {
		if l.gen.Load() != gen {
			stale = true
			return s, false
		}
		s.Loading = false
		if err != nil {
			s.Error = "Error loading cars: " + errorMessage(err)
			return s, true
		}
		s.Cars = res.Cars
		s.Filter = filter
		s.Page = res.Page
		s.TotalPages = res.TotalPages
		s.Total = res.Total
		return s, true
	})

	switch {
	case err != nil:
		l.logger.ErrorContext(ctx, "failed to load cars", slog.String("error", err.Error()))
		return nil, stale, err
	case stale:
		l.logger.DebugContext(ctx, "car list response is stale for the screen", slog.Int("page", page))
	}
	return res, stale, nil
}

// LoadMore fetches the next page with the current filter. It does nothing
// on the last page.
func (l *Listing) LoadMore(ctx context.Context) error {
	s := l.state.Value()
	if s.Page >= s.TotalPages {
		return nil
	}
	return l.Load(ctx, s.Filter, s.Page+1)
}

// SetSearch sets the local search term.
func (l *Listing) SetSearch(term string) {
	l.state.Update(func(s ListingState) (ListingState, bool) {
		changed := s.Search != term
		s.Search = term
		return s, changed
	})
}

// SetBrand sets the local brand filter. "" and AllBrands select every brand.
func (l *Listing) SetBrand(brand string) {
	l.state.Update(func(s ListingState) (ListingState, bool) {
		changed := s.Brand != brand
		s.Brand = brand
		return s, changed
	})
}

// ClearFilters resets the search term and the brand filter.
func (l *Listing) ClearFilters() {
	l.state.Update(func(s ListingState) (ListingState, bool) {
		changed := s.Search != "" || s.Brand != ""
		s.Search, s.Brand = "", ""
		return s, changed
	})
}

// State returns the raw screen state.
func (l *Listing) State() ListingState { return l.state.Value() }

// Subscribe calls fn with the current state and every later one.
func (l *Listing) Subscribe(fn func(ListingState)) *observable.Subscription {
	return l.state.Subscribe(fn)
}

// Brands returns the distinct brands of the fetched cars, sorted.
func (l *Listing) Brands() []string {
	return brandsOf(l.state.Value().Cars)
}

// View returns the filtered list and paging info.
func (l *Listing) View() ListingView {
	s := l.state.Value()
	return ListingView{
		Cars:       FilterCars(s.Cars, s.Search, s.Brand),
		Brands:     brandsOf(s.Cars),
		Search:     s.Search,
		Brand:      s.Brand,
		Page:       s.Page,
		TotalPages: s.TotalPages,
		Total:      s.Total,
		HasMore:    s.Page < s.TotalPages,
		Loading:    s.Loading,
		Error:      s.Error,
	}
}

// FilterCars keeps the cars matching term and brand. The term is matched
// case-insensitively against title, brand, model, color and description.
func FilterCars(cars []domain.Car, term, brand string) []domain.Car {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]domain.Car, 0, len(cars))
	for _, c := range cars {
		if term != "" && !matchesTerm(c, term) {
			continue
		}
		if brand != "" && brand != AllBrands && c.Brand != brand {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesTerm(c domain.Car, term string) bool {
	for _, field := range []string{c.Title, c.Brand, c.Model, c.Color, c.Description} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func brandsOf(cars []domain.Car) []string {
	brands := make([]string, 0, len(cars))
	for _, c := range cars {
		if c.Brand != "" && !slices.Contains(brands, c.Brand) {
			brands = append(brands, c.Brand)
		}
	}
	slices.Sort(brands)
	return brands
}

// errorMessage picks the user-facing text of err.
func errorMessage(err error) string {
	var gqlErr interface{ Message() string }
	if errors.As(err, &gqlErr) {
		return gqlErr.Message()
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
