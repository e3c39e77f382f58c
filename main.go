package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/fieldservice-app/alerts"
	"github.com/yeremiapane/fieldservice-app/config"
	"github.com/yeremiapane/fieldservice-app/database"
	"github.com/yeremiapane/fieldservice-app/hub"
	"github.com/yeremiapane/fieldservice-app/lock"
	"github.com/yeremiapane/fieldservice-app/router"
	"github.com/yeremiapane/fieldservice-app/services"
	"github.com/yeremiapane/fieldservice-app/store"
	"github.com/yeremiapane/fieldservice-app/utils"
)

func main() {
	// Load .env di awal sebelum config dibaca
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
		}
		utils.InfoLogger.Println("AutoMigrate completed.")
	}

	// Lock per request: redis bila tersedia supaya beberapa instance tetap
	// saling eksklusif, selain itu lock lokal.
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		locker = lock.NewRedisLocker(rdb, cfg.LockTTL())
		utils.InfoLogger.Printf("Using redis request locks (%s)", cfg.RedisAddr)
	}

	wsHub := hub.New()
	monitor := services.NewPaymentMonitor()
	notifiers := services.Notifiers{wsHub, monitor}

	if cfg.AlertsEnabled && cfg.RedisAddr != "" {
		client := alerts.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer client.Close()
		notifiers = append(notifiers, alerts.NewEnqueuer(client))

		worker := alerts.StartWorker(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer worker.Shutdown()
	} else if cfg.AlertsEnabled {
		utils.InfoLogger.Warn("ALERTS_ENABLED requires REDIS_ADDR, alerts disabled")
	}

	st := store.New(db, store.WithRetries(cfg.DBTxRetries))
	opts := []services.Option{
		services.WithLocker(locker),
		services.WithNotifier(notifiers),
	}
	engine := services.NewEngine(st, opts...)

	r := router.SetupRouter(router.Deps{
		Engine:          engine,
		Payments:        services.NewPaymentGate(st, engine, opts...),
		Reviews:         services.NewReviewGate(st, engine, opts...),
		Tracking:        services.NewTrackingLog(st, engine, opts...),
		Dashboard:       services.NewDashboard(st),
		Monitor:         monitor,
		Hub:             wsHub,
		AllowedOrigin:   cfg.AllowedOrigin,
		RateLimitPerSec: cfg.RateLimitPerSec,
		RateLimitBurst:  cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server forced to shutdown: %v", err)
	}
}
