package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/example/shopcore/internal/cart"
	"github.com/example/shopcore/internal/catalog"
	"github.com/example/shopcore/internal/checkout"
	"github.com/example/shopcore/internal/config"
	"github.com/example/shopcore/internal/events"
	"github.com/example/shopcore/internal/favorites"
	"github.com/example/shopcore/internal/handlers"
	"github.com/example/shopcore/internal/kvstore"
	"github.com/example/shopcore/internal/logging"
	"github.com/example/shopcore/internal/prefs"
	"github.com/example/shopcore/internal/ratelimit"
	"github.com/example/shopcore/internal/session"
	"github.com/example/shopcore/internal/token"
	httpserver "github.com/example/shopcore/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := kvstore.Open(configuration.DB_PATH)
	if err != nil {
		log.Fatalf("failed to open local db: %v", err)
	}

	store, err := kvstore.New(db, []byte(configuration.STORE_SECRET), logger)
	if err != nil {
		log.Fatalf("failed to init storage adapter: %v", err)
	}

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer(configuration.KAFKA_ADDRESS, logger)
	}

	var source catalog.Source
	if configuration.ES_URL != "" {
		esClient, err := catalog.NewClient(configuration.ES_URL, configuration.ES_USER, configuration.ES_PASSWORD)
		if err != nil {
			log.Fatalf("failed to connect to catalog: %v", err)
		}
		source = &catalog.ElasticSource{Client: esClient, Index: configuration.ES_INDEX}
	}

	loginLimiter := ratelimit.New(ratelimit.Policy{Window: configuration.LOGIN_WINDOW, MaxAttempts: configuration.LOGIN_MAX_ATTEMPTS})
	registerLimiter := ratelimit.New(ratelimit.Policy{Window: configuration.REGISTER_WINDOW, MaxAttempts: configuration.REGISTER_MAX_ATTEMPTS})
	checkoutLimiter := ratelimit.New(ratelimit.Policy{Window: configuration.CHECKOUT_WINDOW, MaxAttempts: configuration.CHECKOUT_MAX_ATTEMPTS})
	paymentLimiter := ratelimit.New(ratelimit.Policy{Window: configuration.PAYMENT_WINDOW, MaxAttempts: configuration.PAYMENT_MAX_ATTEMPTS})

	sessions := session.NewService(store, producer, logger)
	preferences := prefs.NewService(store, nil, logger)
	cartStore := cart.NewService(store, logger)
	favoritesStore := favorites.NewService(store, logger)
	checkoutStore := checkout.NewService(store, logger)

	sessions.Subscribe(preferences)
	sessions.Subscribe(cartStore)
	sessions.Subscribe(favoritesStore)
	sessions.Subscribe(checkoutStore)

	ctx := context.Background()
	preferences.Init(ctx)
	sessions.Restore(ctx)

	tokens := &token.Service{Secret: []byte(configuration.JWT_SECRET), TTL: 24 * time.Hour}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			Sessions:        sessions,
			Tokens:          tokens,
			Store:           store,
			LoginLimiter:    loginLimiter,
			RegisterLimiter: registerLimiter,
			Log:             logger,
		},
		CartHandler: &handlers.CartHandler{
			Cart:            cartStore,
			Sessions:        sessions,
			Tokens:          tokens,
			CheckoutLimiter: checkoutLimiter,
			Events:          producer,
			Log:             logger,
		},
		FavoritesHandler: &handlers.FavoritesHandler{Favorites: favoritesStore, Sessions: sessions, Tokens: tokens},
		SettingsHandler:  &handlers.SettingsHandler{Prefs: preferences, Sessions: sessions, Tokens: tokens},
		CheckoutHandler: &handlers.CheckoutHandler{
			Checkout:       checkoutStore,
			Sessions:       sessions,
			Tokens:         tokens,
			PaymentLimiter: paymentLimiter,
			Events:         producer,
			Log:            logger,
		},
		SearchHandler: &handlers.SearchHandler{Source: source},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
