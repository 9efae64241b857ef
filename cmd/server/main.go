package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sivarmarket/storefront/internal/account"
	"github.com/sivarmarket/storefront/internal/cart"
	"github.com/sivarmarket/storefront/internal/catalog"
	"github.com/sivarmarket/storefront/internal/checkout"
	"github.com/sivarmarket/storefront/internal/config"
	"github.com/sivarmarket/storefront/internal/handlers"
	"github.com/sivarmarket/storefront/internal/middleware"
	"github.com/sivarmarket/storefront/internal/ws"
	"github.com/sivarmarket/storefront/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting sivar market storefront server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	// Initialize the storefront engine: one catalog and one cart per
	// session; all state lives in memory and resets on restart.
	cat := catalog.New()
	shoppingCart := cart.New(cat)
	registry := account.NewRegistry()
	processor := checkout.NewProcessor(shoppingCart, checkout.Options{
		Delay:          cfg.Checkout.ProcessingDelay,
		TaxRatePercent: cfg.Checkout.TaxRatePercent,
		InvoiceDir:     cfg.Checkout.InvoiceDir,
	}, log)

	// Wire change notifications to the websocket update feed
	hub := ws.NewHub(log)
	shoppingCart.OnChange(func() { hub.Broadcast("cart_changed") })
	cat.OnChange(func() { hub.Broadcast("catalog_changed") })

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log)
	productHandler := handlers.NewProductHandler(cat, log)
	cartHandler := handlers.NewCartHandler(shoppingCart, log)
	checkoutHandler := handlers.NewCheckoutHandler(processor, log)
	accountHandler := handlers.NewAccountHandler(registry, cfg.Account.ProcessingDelay, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check and the websocket update feed outside the
	// API timeout group; the feed holds its connection open.
	r.Get("/health", healthHandler.ServeHTTP)
	r.Get("/ws", hub.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		// Product endpoints
		r.Get("/product", productHandler.ListProducts)
		r.Get("/product/{productId}", productHandler.GetProduct)

		// Cart endpoints
		r.Get("/cart", cartHandler.View)
		r.Delete("/cart", cartHandler.Clear)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Post("/cart/items/{productId}/decrement", cartHandler.Decrement)
		r.Delete("/cart/items/{productId}", cartHandler.Remove)

		// Checkout endpoint
		r.Post("/checkout", checkoutHandler.Checkout)

		// Account endpoints
		r.Post("/account/register", accountHandler.Register)
		r.Post("/account/login", accountHandler.Login)
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
