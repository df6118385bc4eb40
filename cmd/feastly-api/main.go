// README: Entry point; loads config, wires stores and services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"feastly/internal/config"
	httptransport "feastly/internal/http"
	"feastly/internal/infra"
	"feastly/internal/modules/account"
	"feastly/internal/modules/commission"
	"feastly/internal/modules/delivery"
	"feastly/internal/modules/driver"
	"feastly/internal/modules/earnings"
	"feastly/internal/modules/onboarding"
	"feastly/internal/modules/restaurant"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	loc, err := time.LoadLocation(cfg.Earnings.Timezone)
	if err != nil {
		log.Printf("unknown timezone %q, falling back to UTC", cfg.Earnings.Timezone)
		loc = time.UTC
	}

	restaurantStore := restaurant.NewStore(dbPool)
	restaurantSvc := restaurant.NewService(restaurantStore)
	restaurantLifecycle := account.NewLifecycle(restaurantStore)

	driverStore := driver.NewStore(dbPool)
	driverSvc := driver.NewService(driverStore)
	driverLifecycle := account.NewLifecycle(driverStore)

	commissionStore := commission.NewStore(dbPool)
	commissionCache := commission.NewCache(redisClient, time.Duration(cfg.Commission.CacheTTLSeconds)*time.Second)
	commissionSvc := commission.NewService(commissionStore, restaurantStore, commissionCache)

	earningsStore := earnings.NewStore(dbPool)
	earningsSvc := earnings.NewService(earningsStore, loc)

	deliveryStore := delivery.NewStore(dbPool)
	deliverySvc := delivery.NewService(deliveryStore, commissionSvc, earningsSvc)

	correctionStore := onboarding.NewStore(dbPool)
	notifier := onboarding.LogNotifier{}
	restaurantOnboarding := onboarding.NewService(onboarding.KindRestaurant, restaurantLifecycle, correctionStore, notifier)
	driverOnboarding := onboarding.NewService(onboarding.KindDriver, driverLifecycle, correctionStore, notifier)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Restaurants:          restaurantSvc,
		Drivers:              driverSvc,
		RestaurantLifecycle:  restaurantLifecycle,
		DriverLifecycle:      driverLifecycle,
		RestaurantOnboarding: restaurantOnboarding,
		DriverOnboarding:     driverOnboarding,
		Commission:           commissionSvc,
		Earnings:             earningsSvc,
		Deliveries:           deliverySvc,
		JWTSecret:            cfg.Auth.JWTSecret,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
