package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/storage"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// SnapshotCartRepository stores the cart as a JSON array under KeyCart.
type SnapshotCartRepository struct {
	store *storage.Adapter
}

var _ CartRepository = (*SnapshotCartRepository)(nil)

// NewCartRepository creates a cart repository over store.
func NewCartRepository(store *storage.Adapter) *SnapshotCartRepository {
	return &SnapshotCartRepository{store: store}
}

// Load returns the stored cart. A corrupt snapshot yields an empty cart and
// an error wrapping storage.ErrCorrupt.
func (r *SnapshotCartRepository) Load(ctx context.Context) (domain.Cart, error) {
	var cart domain.Cart
	if _, err := r.store.GetJSON(ctx, KeyCart, &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

// Save overwrites the stored cart.
func (r *SnapshotCartRepository) Save(ctx context.Context, cart domain.Cart) error {
	if err := r.store.SetJSON(ctx, KeyCart, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// SnapshotFavoritesRepository stores favorites as a JSON array under
// KeyFavorites.
type SnapshotFavoritesRepository struct {
	store *storage.Adapter
}

var _ FavoritesRepository = (*SnapshotFavoritesRepository)(nil)

// NewFavoritesRepository creates a favorites repository over store.
func NewFavoritesRepository(store *storage.Adapter) *SnapshotFavoritesRepository {
	return &SnapshotFavoritesRepository{store: store}
}

func (r *SnapshotFavoritesRepository) Load(ctx context.Context) (domain.Favorites, error) {
	var favs domain.Favorites
	if _, err := r.store.GetJSON(ctx, KeyFavorites, &favs); err != nil {
		return domain.Favorites{}, fmt.Errorf("load favorites: %w", err)
	}
	return favs, nil
}

func (r *SnapshotFavoritesRepository) Save(ctx context.Context, favs domain.Favorites) error {
	if err := r.store.SetJSON(ctx, KeyFavorites, favs); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}

// KeyValueSessionRepository stores the session as three plain string entries.
type KeyValueSessionRepository struct {
	store *storage.Adapter
}

var _ SessionRepository = (*KeyValueSessionRepository)(nil)

// NewSessionRepository creates a session repository over store.
func NewSessionRepository(store *storage.Adapter) *KeyValueSessionRepository {
	return &KeyValueSessionRepository{store: store}
}

// Load reads the three entries. Only the exact string "true" marks the
// session as authenticated.
func (r *KeyValueSessionRepository) Load(ctx context.Context) (domain.Session, error) {
	flag, _, err := r.store.GetItem(ctx, KeyIsAuthenticated)
	if err != nil {
		return domain.Anonymous, fmt.Errorf("load session: %w", err)
	}
	email, _, err := r.store.GetItem(ctx, KeyUserEmail)
	if err != nil {
		return domain.Anonymous, fmt.Errorf("load session: %w", err)
	}
	name, _, err := r.store.GetItem(ctx, KeyUserName)
	if err != nil {
		return domain.Anonymous, fmt.Errorf("load session: %w", err)
	}
	return domain.Session{Authenticated: flag == "true", Email: email, Name: name}, nil
}

// Save writes all three entries.
func (r *KeyValueSessionRepository) Save(ctx context.Context, s domain.Session) error {
	err := errors.Join(
		r.store.SetItem(ctx, KeyIsAuthenticated, strconv.FormatBool(s.Authenticated)),
		r.store.SetItem(ctx, KeyUserEmail, s.Email),
		r.store.SetItem(ctx, KeyUserName, s.Name),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes all three entries, attempting each even if one fails.
func (r *KeyValueSessionRepository) Clear(ctx context.Context) error {
	err := errors.Join(
		r.store.RemoveItem(ctx, KeyIsAuthenticated),
		r.store.RemoveItem(ctx, KeyUserEmail),
		r.store.RemoveItem(ctx, KeyUserName),
	)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
