package service

import (
	"context"
	"log/slog"

	apperrors "github.com/limosnd/Marketplace-go-grahpql/pkg/errors"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/observable"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// MissingEmailMessage is shown when there is no signed-in email to look up.
const MissingEmailMessage = "No se pudo obtener el email del usuario actual"

// SellerCars is the part of the gateway the publications screen uses.
type SellerCars interface {
	ListBySeller(ctx context.Context, email string, page, limit int) (*domain.CarsPage, error)
	Update(ctx context.Context, in domain.UpdateCarInput) (*domain.Car, error)
	Delete(ctx context.Context, id string) error
}

// SessionSource exposes the signed-in user.
type SessionSource interface {
	UserEmail() string
}

// PublicationsState is the state of the "my publications" screen.
type PublicationsState struct {
	Cars       []domain.Car `json:"cars"`
	Email      string       `json:"email"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	Total      int          `json:"total"`
	Loading    bool         `json:"loading"`
	Error      string       `json:"error,omitempty"`
}

// Publications lists and manages the cars published by the signed-in user.
type Publications struct {
	cars    SellerCars
	session SessionSource
	state   *observable.Subject[PublicationsState]
	logger  *slog.Logger
}

// NewPublications creates the publications screen model.
func NewPublications(cars SellerCars, session SessionSource, log *slog.Logger) *Publications {
	return &Publications{
		cars:    cars,
		session: session,
		state:   observable.New(PublicationsState{Page: 1, TotalPages: 1}),
		logger:  logger.Component(log, "publications"),
	}
}

// Load fetches page of the current user's cars.
func (p *Publications) Load(ctx context.Context, page int) error {
	email := p.session.UserEmail()
	if email == "" {
		p.setState(func(s *PublicationsState) {
			s.Loading = false
			s.Error = MissingEmailMessage
		})
		return apperrors.Unauthorized(MissingEmailMessage)
	}

	p.setState(func(s *PublicationsState) {
		s.Loading = true
		s.Error = ""
		s.Email = email
	})

	res, err := p.cars.ListBySeller(ctx, email, page, ListPageSize)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to load publications",
			slog.String("user_email", email),
			slog.String("error", err.Error()),
		)
		p.setState(func(s *PublicationsState) {
			s.Loading = false
			s.Error = "Error loading your publications: " + errorMessage(err)
		})
		return err
	}

	p.setState(func(s *PublicationsState) {
		s.Loading = false
		s.Cars = res.Cars
		s.Page = res.Page
		s.TotalPages = res.TotalPages
		s.Total = res.Total
	})
	return nil
}

// LoadMore fetches the next page, if any.
func (p *Publications) LoadMore(ctx context.Context) error {
	s := p.state.Value()
	if s.Page >= s.TotalPages {
		return nil
	}
	return p.Load(ctx, s.Page+1)
}

// Update edits one of the user's cars and reloads the current page.
func (p *Publications) Update(ctx context.Context, in domain.UpdateCarInput) (*domain.Car, error) {
	car, err := p.cars.Update(ctx, in)
	if err != nil {
		return nil, err
	}
	p.reload(ctx)
	return car, nil
}

// Delete removes one of the user's cars and reloads the current page.
func (p *Publications) Delete(ctx context.Context, id string) error {
	if err := p.cars.Delete(ctx, id); err != nil {
		return err
	}
	p.reload(ctx)
	return nil
}

func (p *Publications) reload(ctx context.Context) {
	if err := p.Load(ctx, p.state.Value().Page); err != nil {
		p.logger.WarnContext(ctx, "failed to reload publications", slog.String("error", err.Error()))
	}
}

// State returns the current screen state.
func (p *Publications) State() PublicationsState { return p.state.Value() }

func (p *Publications) setState(fn func(*PublicationsState)) {
	p.state.Update(func(s PublicationsState) (PublicationsState, bool) {
		fn(&s)
		return s, true
	})
}
