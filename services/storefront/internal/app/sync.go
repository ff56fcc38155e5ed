package app

import (
	"context"
	"log/slog"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/event"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/service"
)

// carEventSync keeps the cart and favorites in step with car changes,
// whether they happened here or on another instance.
func carEventSync(cart *service.CartStore, favorites *service.FavoritesStore, log *slog.Logger) func(event.CarEvent) {
	log = logger.Component(log, "car_sync")
	return func(ev event.CarEvent) {
		ctx := context.Background()
		switch ev.Type {
		case event.TypeDeleted:
			inCart := cart.Remove(ctx, ev.CarID)
			inFavs := favorites.Remove(ctx, ev.CarID)
			if inCart || inFavs {
				log.Info("dropped deleted car",
					slog.String("car_id", ev.CarID),
					slog.Bool("cart", inCart),
					slog.Bool("favorites", inFavs),
					slog.Bool("remote", ev.Remote),
				)
			}
		case event.TypeUpdated:
			if ev.Car == nil {
				return
			}
			inCart := cart.Refresh(ctx, *ev.Car)
			inFavs := favorites.Refresh(ctx, *ev.Car)
			if inCart || inFavs {
				log.Debug("refreshed updated car",
					slog.String("car_id", ev.CarID),
					slog.Bool("cart", inCart),
					slog.Bool("favorites", inFavs),
				)
			}
		}
	}
}
