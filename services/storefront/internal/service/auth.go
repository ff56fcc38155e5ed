package service

import (
	"context"
	"log/slog"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/observable"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/validator"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/repository"
)

// LoginInput holds the credentials of a sign-in attempt.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=3"`
}

// RegisterInput holds the fields of a sign-up attempt.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthStore tracks the signed-in user. Credentials are only checked for
// shape; no account backend is involved.
type AuthStore struct {
	store    *snapshotStore[domain.Session]
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewAuthStore restores the session from repo. Anything short of a complete
// authenticated session is wiped and the store starts signed out.
func NewAuthStore(ctx context.Context, repo repository.SessionRepository, log *slog.Logger) *AuthStore {
	log = logger.Component(log, "auth_store")

	initial, err := repo.Load(ctx)
	if err != nil {
		logRestoreFailure(ctx, log, "auth", err)
		initial = domain.Anonymous
	}
	if !initial.Valid() {
		initial = domain.Anonymous
		if err := repo.Clear(ctx); err != nil {
			log.WarnContext(ctx, "failed to clear stale session",
				slog.String("error", err.Error()),
			)
		}
	}

	a := &AuthStore{sessions: repo, logger: log}
	a.store = newSnapshotStore("auth", initial, a.save, log)
	return a
}

func (a *AuthStore) save(ctx context.Context, s domain.Session) error {
	if !s.Valid() {
		return a.sessions.Clear(ctx)
	}
	return a.sessions.Save(ctx, s)
}

// Login signs the user in. The display name is the local part of the email.
func (a *AuthStore) Login(ctx context.Context, in LoginInput) error {
	if err := validator.Validate(in); err != nil {
		return err
	}
	a.signIn(ctx, "login", domain.Session{
		Authenticated: true,
		Email:         in.Email,
		Name:          domain.DisplayNameFromEmail(in.Email),
	})
	return nil
}

// Register signs a new user in under the given name.
func (a *AuthStore) Register(ctx context.Context, in RegisterInput) error {
	if err := validator.Validate(in); err != nil {
		return err
	}
	a.signIn(ctx, "register", domain.Session{
		Authenticated: true,
		Email:         in.Email,
		Name:          in.Name,
	})
	return nil
}

func (a *AuthStore) signIn(ctx context.Context, op string, s domain.Session) {
	a.store.mutate(ctx, op, func(cur domain.Session) (domain.Session, bool) {
		return s, cur != s
	})
	a.logger.InfoContext(ctx, "user signed in",
		slog.String("op", op),
		slog.String("user_email", s.Email),
	)
}

// Logout signs the user out and removes the stored session.
func (a *AuthStore) Logout(ctx context.Context) {
	a.store.mutate(ctx, "logout", func(cur domain.Session) (domain.Session, bool) {
		return domain.Anonymous, cur != domain.Anonymous
	})
}

func (a *AuthStore) Session() domain.Session { return a.store.value() }
func (a *AuthStore) IsAuthenticated() bool   { return a.store.value().Valid() }
func (a *AuthStore) UserEmail() string       { return a.store.value().Email }
func (a *AuthStore) UserName() string        { return a.store.value().Name }

// Subscribe calls fn with the current session and every later one.
func (a *AuthStore) Subscribe(fn func(domain.Session)) *observable.Subscription {
	return a.store.subscribe(fn)
}
