package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stayhub/service-booking/internal/application"
	"github.com/stayhub/service-booking/internal/auth"
	"github.com/stayhub/service-booking/internal/config"
	"github.com/stayhub/service-booking/internal/events"
	"github.com/stayhub/service-booking/internal/handler"
	"github.com/stayhub/service-booking/internal/middleware"
	"github.com/stayhub/service-booking/internal/repository"
	"github.com/stayhub/service-booking/pkg/database"
	"github.com/stayhub/service-booking/pkg/kafka"
	"github.com/stayhub/service-booking/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking", zap.String("port", cfg.Port))

	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&repository.HotelModel{},
		&repository.RoomModel{},
		&repository.BookingModel{},
	); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, 15*time.Minute)

	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	bookingRepo := repository.NewGormBookingRepository(db)
	roomCatalog := repository.NewGormRoomCatalog(db)

	bookingService := application.NewBookingService(
		bookingRepo,
		bookingRepo,
		roomCatalog,
		kafkaProducer,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := events.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	bookingHandler := handler.NewBookingHandler(bookingService)
	adminHandler := handler.NewAdminBookingHandler(bookingService)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())

	healthHandler := handler.NewHealthHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
