package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/StrafeZ/quality-inspector-app/internal/cache"
	"github.com/StrafeZ/quality-inspector-app/internal/config"
	"github.com/StrafeZ/quality-inspector-app/internal/db"
	httpserver "github.com/StrafeZ/quality-inspector-app/internal/http"
	"github.com/StrafeZ/quality-inspector-app/internal/logger"
	"github.com/StrafeZ/quality-inspector-app/internal/models"
	"github.com/StrafeZ/quality-inspector-app/internal/mq"
	"github.com/StrafeZ/quality-inspector-app/internal/repository"
	"github.com/StrafeZ/quality-inspector-app/internal/service"
	"github.com/StrafeZ/quality-inspector-app/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	gin.SetMode(cfg.Server.Mode)

	database, err := db.New(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, zlog)
	if err != nil {
		zlog.Fatal("connect database", zap.Error(err))
	}
	autoMigrate(database, zlog)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	aggregateCache := cache.New(redisClient, cfg.Cache.TTL)

	var publisher mq.Publisher
	rabbit, err := mq.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		zlog.Warn("rabbitmq unavailable, continuing without events", zap.Error(err))
	} else {
		publisher = rabbit
	}

	orderRepo := repository.NewOrderRepository(database)
	inspectionRepo := repository.NewInspectionRepository(database)
	alterationRepo := repository.NewAlterationRepository(database)
	templateRepo := repository.NewTemplateRepository(database)

	orderService := service.NewOrderService(orderRepo, alterationRepo, inspectionRepo, zlog)
	inspectionService := service.NewInspectionService(inspectionRepo, orderRepo, alterationRepo, publisher, aggregateCache, zlog)
	alterationService := service.NewAlterationService(alterationRepo, templateRepo, publisher, aggregateCache, zlog)
	statsService := service.NewStatsService(inspectionRepo, alterationRepo, zlog)

	apiServer := httpserver.NewServer(orderService, inspectionService, alterationService, statsService, aggregateCache, cfg.JWT.Secret, zlog)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	refresher := worker.NewStatsRefresher(inspectionRepo, statsService, aggregateCache,
		cfg.Worker.RefreshInterval, cfg.Worker.CohortWindow, zlog)
	go refresher.Run(ctx)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: apiServer.Engine,
	}

	go func() {
		zlog.Info("HTTP server listening", zap.String("addr", cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutdown initiated")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Warn("server shutdown error", zap.Error(err))
	}

	if rabbit != nil {
		_ = rabbit.Close()
	}
	_ = redisClient.Close()
	zlog.Info("bye")
}

func autoMigrate(database *gorm.DB, zlog *zap.Logger) {
	err := database.AutoMigrate(
		&models.Order{},
		&models.JobCard{},
		&models.InspectionReport{},
		&models.Alteration{},
		&models.AlterationTemplate{},
	)
	if err != nil {
		zlog.Fatal("auto migrate", zap.Error(err))
	}
}
