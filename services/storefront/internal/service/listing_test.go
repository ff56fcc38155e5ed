package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

func catalogue() []domain.Car {
	return []domain.Car{
		{ID: "1", Title: "Sedán familiar", Brand: "Toyota", Model: "Corolla", Color: "Blanco"},
		{ID: "2", Title: "Deportivo", Brand: "Mazda", Model: "MX-5", Color: "Rojo", Description: "Techo convertible"},
		{ID: "3", Title: "Camioneta", Brand: "Toyota", Model: "Hilux", Color: "Gris"},
		{ID: "4", Title: "Urbano", Brand: "Kia", Model: "Picanto", Color: "Rojo"},
	}
}

func ids(cars []domain.Car) []string {
	out := make([]string, 0, len(cars))
	for _, c := range cars {
		out = append(out, c.ID)
	}
	return out
}

func TestFilterCars(t *testing.T) {
	tests := []struct {
		name  string
		term  string
		brand string
		want  []string
	}{
		{name: "no filters", want: []string{"1", "2", "3", "4"}},
		{name: "term matches color case-insensitively", term: "ROJO", want: []string{"2", "4"}},
		{name: "term matches description", term: "convertible", want: []string{"2"}},
		{name: "term matches model", term: "hilux", want: []string{"3"}},
		{name: "blank term ignored", term: "   ", want: []string{"1", "2", "3", "4"}},
		{name: "brand", brand: "Toyota", want: []string{"1", "3"}},
		{name: "all brands", brand: AllBrands, want: []string{"1", "2", "3", "4"}},
		{name: "term and brand", term: "rojo", brand: "Kia", want: []string{"4"}},
		{name: "nothing matches", term: "tesla", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterCars(catalogue(), tt.term, tt.brand)))
		})
	}
}

func TestListing_LoadAndView(t *testing.T) {
	ctx := context.Background()
	gw := new(mockCarGateway)
	gw.On("List", mock.Anything, (*domain.CarFilter)(nil), 1, ListPageSize).
		Return(&domain.CarsPage{Cars: catalogue(), Total: 14, Page: 1, Limit: 10, TotalPages: 2}, nil)

	l := NewListing(gw, newTestLogger())
	require.NoError(t, l.Load(ctx, domain.CarFilter{}, 1))

	l.SetSearch("rojo")
	view := l.View()
	assert.Equal(t, []string{"2", "4"}, ids(view.Cars))
	assert.Equal(t, []string{"Kia", "Mazda", "Toyota"}, view.Brands)
	assert.Equal(t, 14, view.Total)
	assert.True(t, view.HasMore)
	assert.False(t, view.Loading)

	l.ClearFilters()
	assert.Len(t, l.View().Cars, 4)
	gw.AssertExpectations(t)
}

func TestListing_ServerFilterIsPassedThrough(t *testing.T) {
	ctx := context.Background()
	filter := domain.CarFilter{Brand: "Mazda", MaxPrice: 30000}
	gw := new(mockCarGateway)
	gw.On("List", mock.Anything, &filter, 1, ListPageSize).
		Return(&domain.CarsPage{Page: 1, TotalPages: 1}, nil)

	l := NewListing(gw, newTestLogger())
	require.NoError(t, l.Load(ctx, filter, 1))

	assert.Equal(t, filter, l.State().Filter)
	gw.AssertExpectations(t)
}

func TestListing_LoadMoreReplacesWithNextPage(t *testing.T) {
	ctx := context.Background()
	gw := new(mockCarGateway)
	gw.On("List", mock.Anything, mock.Anything, 1, ListPageSize).
		Return(&domain.CarsPage{Cars: catalogue()[:2], Total: 4, Page: 1, TotalPages: 2}, nil).Once()
	gw.On("List", mock.Anything, mock.Anything, 2, ListPageSize).
		Return(&domain.CarsPage{Cars: catalogue()[2:], Total: 4, Page: 2, TotalPages: 2}, nil).Once()

	l := NewListing(gw, newTestLogger())
	require.NoError(t, l.Load(ctx, domain.CarFilter{}, 1))
	require.NoError(t, l.LoadMore(ctx))

	assert.Equal(t, []string{"3", "4"}, ids(l.View().Cars))
	assert.Equal(t, 2, l.State().Page)

	require.NoError(t, l.LoadMore(ctx), "last page is a no-op")
	gw.AssertExpectations(t)
}

func TestListing_ErrorMessage(t *testing.T) {
	ctx := context.Background()
	gw := new(mockCarGateway)
	gw.On("List", mock.Anything, mock.Anything, 1, ListPageSize).
		Return(nil, apperrors.ServiceUnavailable("backend down"))

	l := NewListing(gw, newTestLogger())
	err := l.Load(ctx, domain.CarFilter{}, 1)

	require.Error(t, err)
	assert.Equal(t, "Error loading cars: backend down", l.View().Error)
	assert.False(t, l.View().Loading)
}

func TestListing_StaleResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	gw := new(mockCarGateway)
	gw.On("List", mock.Anything, mock.Anything, 1, ListPageSize).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&domain.CarsPage{Cars: catalogue()[:1], Page: 1, TotalPages: 2}, nil).Once()
	gw.On("List", mock.Anything, mock.Anything, 2, ListPageSize).
		Return(&domain.CarsPage{Cars: catalogue()[1:], Page: 2, TotalPages: 2}, nil).Once()

	l := NewListing(gw, newTestLogger())

	slow := make(chan error, 1)
	go func() { slow <- l.Load(ctx, domain.CarFilter{}, 1) }()
	<-started

	require.NoError(t, l.Load(ctx, domain.CarFilter{}, 2))
	close(release)

	assert.ErrorIs(t, <-slow, ErrSuperseded)
	assert.Equal(t, 2, l.State().Page)
	assert.Equal(t, []string{"2", "3", "4"}, ids(l.View().Cars))
}

func TestListing_OverlappingQueriesKeepTheirOwnFilters(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	gw := new(mockCarGateway)
	gw.On("List", mock.Anything, mock.Anything, 1, ListPageSize).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&domain.CarsPage{Cars: catalogue(), Page: 1, TotalPages: 2, Total: 8}, nil).Once()
	gw.On("List", mock.Anything, mock.Anything, 2, ListPageSize).
		Return(&domain.CarsPage{Cars: catalogue(), Page: 2, TotalPages: 2, Total: 8}, nil).Once()

	l := NewListing(gw, newTestLogger())

	type result struct {
		view ListingView
		err  error
	}
	slow := make(chan result, 1)
	go func() {
		v, err := l.Query(ctx, domain.CarFilter{}, 1, "", "Toyota")
		slow <- result{v, err}
	}()
	<-started

	fast, err := l.Query(ctx, domain.CarFilter{}, 2, "rojo", "Kia")
	require.NoError(t, err)
	close(release)
	old := <-slow
	require.NoError(t, old.err)

	assert.Equal(t, []string{"4"}, ids(fast.Cars))
	assert.Equal(t, "Kia", fast.Brand)
	assert.Equal(t, "rojo", fast.Search)
	assert.Equal(t, 2, fast.Page)
	assert.False(t, fast.HasMore)

	assert.Equal(t, []string{"1", "3"}, ids(old.view.Cars))
	assert.Equal(t, "Toyota", old.view.Brand)
	assert.Empty(t, old.view.Search)
	assert.Equal(t, 1, old.view.Page)
	assert.True(t, old.view.HasMore)
	assert.False(t, old.view.Loading)
	assert.Equal(t, []string{"Kia", "Mazda", "Toyota"}, old.view.Brands)

	// the screen keeps the newer page
	assert.Equal(t, 2, l.State().Page)
}

func TestListing_QueryReturnsFetchError(t *testing.T) {
	gw := new(mockCarGateway)
	gw.On("List", mock.Anything, mock.Anything, 1, ListPageSize).
		Return(nil, apperrors.ServiceUnavailable("backend down")).Once()

	l := NewListing(gw, newTestLogger())
	_, err := l.Query(context.Background(), domain.CarFilter{}, 1, "", "")
	require.Error(t, err)
	assert.NotEmpty(t, l.State().Error)
}
