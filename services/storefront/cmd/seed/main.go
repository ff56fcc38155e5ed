// Command seed publishes demo cars to the marketplace GraphQL API through
// the same gateway the storefront uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/graphql"
	"github.com/limosnd/Marketplace-go-grahpql/pkg/logger"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/config"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/domain"
	"github.com/limosnd/Marketplace-go-grahpql/services/storefront/internal/gateway"
)

type modelDef struct {
	brand  string
	model  string
	basePx float64
}

var models = []modelDef{
	{"Toyota", "Corolla", 21000},
	{"Toyota", "Hilux", 34000},
	{"Mazda", "CX-5", 29000},
	{"Mazda", "3", 19500},
	{"Chevrolet", "Onix", 14000},
	{"Renault", "Duster", 16500},
	{"Kia", "Sportage", 27000},
	{"Volkswagen", "Golf", 23000},
	{"Nissan", "Frontier", 31000},
	{"Tesla", "Model 3", 42000},
}

var (
	colors = []string{"Blanco", "Negro", "Gris", "Rojo", "Azul", "Plata"}
	cities = []struct{ city, state string }{
		{"Bogotá", "Cundinamarca"},
		{"Medellín", "Antioquia"},
		{"Cali", "Valle del Cauca"},
		{"Barranquilla", "Atlántico"},
		{"Bucaramanga", "Santander"},
	}
	features = []string{"ABS", "Aire acondicionado", "Bluetooth", "Cámara de reversa", "Sensores de parqueo", "Techo solar"}
)

func main() {
	count := flag.Int("count", 20, "number of cars to publish")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := graphql.New(graphql.Config{
		Endpoint:   cfg.GraphQLEndpoint,
		Name:       "marketplace-seed",
		Timeout:    cfg.GraphQLTimeout(),
		MaxRetries: cfg.GraphQLMaxRetries,
		RateLimit:  cfg.GraphQLRateLimitRPS,
	}, log)
	cars := gateway.NewCarGateway(client, nil, log)

	if _, err := cars.Health(ctx); err != nil {
		log.Error("marketplace API is not reachable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	created := 0
	for i := range *count {
		form := demoForm(rng, i)
		if err := form.Validate(); err != nil {
			log.Error("generated form is invalid", slog.Int("index", i), slog.String("error", err.Error()))
			continue
		}
		car, err := cars.Create(ctx, form.ToInput())
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error("failed to create car", slog.Int("index", i), slog.String("error", err.Error()))
			continue
		}
		created++
		log.Info("car created", slog.String("car_id", car.ID), slog.String("title", car.Title))
	}

	log.Info("seeding finished", slog.Int("created", created), slog.Int("requested", *count))
	if created < *count {
		os.Exit(1)
	}
}

func demoForm(rng *rand.Rand, i int) domain.CarForm {
	m := models[rng.IntN(len(models))]
	year := 2012 + rng.IntN(13)
	mileage := (2025 - year) * (8000 + rng.IntN(12000))
	loc := cities[rng.IntN(len(cities))]

	picked := make([]string, 0, 3)
	for _, j := range rng.Perm(len(features))[:3] {
		picked = append(picked, features[j])
	}

	fuel := domain.FuelGasoline
	switch {
	case m.brand == "Tesla":
		fuel = domain.FuelElectric
	case m.model == "Hilux" || m.model == "Frontier":
		fuel = domain.FuelDiesel
	case rng.IntN(5) == 0:
		fuel = domain.FuelHybrid
	}
	transmission := domain.TransmissionManual
	if rng.IntN(2) == 0 || fuel == domain.FuelElectric {
		transmission = domain.TransmissionAutomatic
	}

	form := domain.NewCarForm()
	form.Title = fmt.Sprintf("%s %s %d", m.brand, m.model, year)
	form.Description = fmt.Sprintf("Vehículo de demostración #%d, papeles al día.", i+1)
	form.Brand = m.brand
	form.Model = m.model
	form.Year = year
	form.FuelType = fuel
	form.Transmission = transmission
	form.Mileage = &mileage
	form.Color = colors[rng.IntN(len(colors))]
	form.Price = m.basePx * (0.6 + 0.04*float64(year-2012))
	form.Features = fmt.Sprintf("%s, %s, %s", picked[0], picked[1], picked[2])
	form.ImageURL = fmt.Sprintf("https://picsum.photos/seed/car-%d/800/600", i+1)
	form.SellerName = "Concesionario Demo"
	form.SellerPhone = fmt.Sprintf("+57 300 %03d %04d", rng.IntN(1000), rng.IntN(10000))
	form.SellerEmail = "demo@marketplace.example"
	form.LocationCity = loc.city
	form.LocationState = loc.state
	return form
}
