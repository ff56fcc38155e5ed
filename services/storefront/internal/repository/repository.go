package repository

import (
	"context"

	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
)

// Storage keys. They match the keys the browser storefront writes, so a
// snapshot exported from local storage can be imported as is.
const (
	KeyCart            = "marketplace_cart"
	KeyFavorites       = "favorites"
	KeyIsAuthenticated = "isAuthenticated"
	KeyUserEmail       = "userEmail"
	KeyUserName        = "userName"
)

// CartRepository persists the cart snapshot.
type CartRepository interface {
	// Load returns the stored cart, or an empty cart when none is stored.
	Load(ctx context.Context) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
}

// FavoritesRepository persists the favorites snapshot.
type FavoritesRepository interface {
	Load(ctx context.Context) (domain.Favorites, error)
	Save(ctx context.Context, favs domain.Favorites) error
}

// SessionRepository persists the three session entries.
type SessionRepository interface {
	// Load returns whatever is stored, possibly a partial session.
	Load(ctx context.Context) (domain.Session, error)
	Save(ctx context.Context, s domain.Session) error
	Clear(ctx context.Context) error
}
