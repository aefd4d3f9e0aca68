package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/kese-app/goldday/internal/auth"
	"github.com/kese-app/goldday/internal/handlers"
	"github.com/kese-app/goldday/internal/ledger"
	"github.com/kese-app/goldday/internal/middleware"
	"github.com/kese-app/goldday/internal/models"
	"github.com/kese-app/goldday/internal/pricing"
	"github.com/kese-app/goldday/internal/service"
	"github.com/kese-app/goldday/internal/storage"
	"github.com/kese-app/goldday/internal/storage/sqlite"
	"github.com/kese-app/goldday/internal/wallet"
	"github.com/kese-app/goldday/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	port := getEnv("PORT", "8080")
	dbPath := getEnv("DB_PATH", "./data/goldday.db")
	oracleURL := getEnv("ORACLE_URL", pricing.DefaultBitfinexURL)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	kv, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer kv.Close()
	slog.Info("Storage initialized", "database", dbPath)

	prices := pricing.NewCache(pricing.NewBitfinexClient(oracleURL))
	warmPriceCache(prices)

	jwtManager := auth.NewJWTManager(jwtSecret, 24*time.Hour)
	rooms := service.NewCircleService(storage.NewCircleStore(kv))
	sessions := service.NewSessionService(jwtManager)
	balances := ledger.New(prices)

	// The on-device build binds the real wallet SDK here; the server build
	// ships a seeded in-memory wallet for development.
	devWallet := wallet.NewMemoryWallet(
		[]string{"0xdev000000000000000000000000000000000001"},
		[]wallet.Balance{
			{Denomination: "USD₮", Value: decimal.RequireFromString("250")},
			{Denomination: "XAU₮", Value: decimal.RequireFromString("0.5")},
		},
	)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logging())
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	handlers.New(rooms, sessions, balances, prices, devWallet, jwtManager).Register(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Server starting", "address", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// warmPriceCache fetches the supported pairs once at startup. Failures are
// logged and tolerated; valuation degrades until a refresh succeeds.
func warmPriceCache(prices *pricing.Cache) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	for _, asset := range []models.Asset{models.AssetUSDT, models.AssetXAUT} {
		rate, _, err := prices.Refresh(ctx, asset, pricing.USD)
		if err != nil {
			slog.Warn("Price warmup failed", "asset", asset, "error", err)
			continue
		}
		slog.Info("Exchange rate loaded", "asset", asset, "rate", rate)
	}
}
