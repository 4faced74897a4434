package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/autoworksph/garage-backend/internal/modules/auth"
	"github.com/autoworksph/garage-backend/internal/modules/billing"
	"github.com/autoworksph/garage-backend/internal/modules/booking"
	"github.com/autoworksph/garage-backend/internal/modules/inventory"
	"github.com/autoworksph/garage-backend/internal/modules/joborder"
	"github.com/autoworksph/garage-backend/internal/modules/registry"
	"github.com/autoworksph/garage-backend/internal/modules/shop"
	"github.com/autoworksph/garage-backend/internal/modules/user"
	"github.com/autoworksph/garage-backend/internal/modules/wallet"
	"github.com/autoworksph/garage-backend/internal/platform/logger"
	"github.com/autoworksph/garage-backend/internal/platform/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	if err := logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV")); err != nil {
		log.Fatal(err)
	}
	defer logger.L().Sync()

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.L().Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.L().Fatal("ping database", zap.Error(err))
	}
	logger.L().Info("connected to database")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Handle("/metrics", metrics.Handler())

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	user.NewHandler(userService).RegisterRoutes(router)

	authService := auth.NewService(userRepo)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Customers & Vehicles ────────────────────────────────
	registryRepo := registry.NewPostgresRepository(db)
	registryService := registry.NewService(registryRepo)
	registry.NewHandler(registryService).RegisterRoutes(router)

	// ── Parts & Stock ───────────────────────────────────────
	inventoryRepo := inventory.NewPostgresRepository(db)
	inventoryService := inventory.NewService(inventoryRepo)
	inventory.NewHandler(inventoryService).RegisterRoutes(router)

	// ── Bookings ────────────────────────────────────────────
	bookingRepo := booking.NewPostgresRepository(db)
	bookingService := booking.NewService(bookingRepo)
	booking.NewHandler(bookingService).RegisterRoutes(router)

	// ── Job Orders ──────────────────────────────────────────
	jobOrderRepo := joborder.NewPostgresRepository(db)
	jobOrderService := joborder.NewService(jobOrderRepo)
	joborder.NewHandler(jobOrderService).RegisterRoutes(router)

	// ── Billing & Payments ──────────────────────────────────
	billingRepo := billing.NewPostgresRepository(db)
	billingPolicy := billing.NegativeTotalPolicy(os.Getenv("BILLING_NEGATIVE_TOTAL"))
	billingService := billing.NewService(billingRepo, billingPolicy)
	billing.NewHandler(billingService).RegisterRoutes(router)

	// ── Online Shop ─────────────────────────────────────────
	shopRepo := shop.NewPostgresRepository(db)
	shopService := shop.NewService(shopRepo)
	shop.NewHandler(shopService).RegisterRoutes(router)

	// ── Wallet ──────────────────────────────────────────────
	walletRepo := wallet.NewPostgresRepository(db)
	walletService := wallet.NewService(walletRepo, userRepo)
	wallet.NewHandler(walletService).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	logger.L().Info("garage API server starting", zap.String("port", port))
	log.Fatal(http.ListenAndServe(":"+port, router))
}
