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

	"fieldsales/visit-planner/internal/api"
	"fieldsales/visit-planner/internal/cache"
	"fieldsales/visit-planner/internal/config"
	"fieldsales/visit-planner/internal/logger"
	"fieldsales/visit-planner/internal/repository/mongo"
	"fieldsales/visit-planner/internal/service"
	"fieldsales/visit-planner/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "visit-planner"

// @title Visit Planner API
// @version 1.0
// @description Weekly visit plans, visit logging and coverage reports for field sales representatives.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	week, err := cfg.Planning.WeekConfig()
	if err != nil {
		zlog.Fatal("invalid planning week", zap.Error(err))
	}
	loc, err := cfg.Planning.Location()
	if err != nil {
		zlog.Fatal("invalid planning timezone", zap.Error(err))
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		zlog.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongo.DisconnectDB(dbClient); err != nil {
			zlog.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), time.Minute)
	if err := mongo.EnsureIndexes(indexCtx, appDB); err != nil {
		cancelIndex()
		zlog.Fatal("could not ensure indexes", zap.Error(err))
	}
	cancelIndex()
	zlog.Info("database ready", zap.String("name", cfg.Database.Name))

	// --- Report cache (optional) ---
	var reports *cache.ReportCache
	if cfg.Redis.Addr != "" {
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := cache.NewRedisClient(pingCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		cancelPing()
		if err != nil {
			zlog.Warn("redis unavailable, report caching disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			defer rdb.Close()
			reports = cache.NewReportCache(cache.NewRedisKVStore(rdb), cfg.Redis.ReportTTL, zlog)
			zlog.Info("report cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.ReportTTL))
		}
	}

	// --- Plan archive (optional) ---
	var archive storage.ObjectStorage
	if cfg.S3.BucketName != "" {
		archive, err = storage.NewS3Storage(context.Background(), cfg.S3, zlog)
		if err != nil {
			zlog.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
	} else {
		zlog.Info("no S3 bucket configured, approved plans will not be archived")
	}

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	regionRepo := mongo.NewMongoRegionRepository(appDB)
	clientRepo := mongo.NewMongoClientRepository(appDB)
	visitRepo := mongo.NewMongoVisitRepository(appDB)
	planRepo := mongo.NewMongoWeeklyPlanRepository(appDB)

	// --- Services ---
	services := api.Services{
		Auth:      service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, zlog),
		Directory: service.NewDirectoryService(userRepo, regionRepo, clientRepo, reports, zlog),
		Visits:    service.NewVisitService(visitRepo, clientRepo, reports, service.SystemClock, zlog),
		Plans:     service.NewPlanService(planRepo, clientRepo, archive, week, loc, service.SystemClock, zlog),
		Reports: service.NewReportService(clientRepo, visitRepo, reports,
			cfg.Planning.OverdueThresholdDays, loc, service.SystemClock, zlog),
		Location: loc,
	}

	// --- First manager ---
	if cfg.Bootstrap.ManagerEmail != "" {
		seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := services.Auth.EnsureManager(seedCtx, cfg.Bootstrap.ManagerName, cfg.Bootstrap.ManagerEmail, cfg.Bootstrap.ManagerPassword)
		cancelSeed()
		if err != nil {
			zlog.Fatal("could not seed manager account", zap.Error(err))
		}
		if created {
			zlog.Info("manager account seeded", zap.String("email", cfg.Bootstrap.ManagerEmail))
		}
	}

	// --- Gin Engine ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, cfg.JWT.Secret, services, zlog)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server exiting")
}
