// File: fundi/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fundi/config"
	"fundi/cron"
	"fundi/database"
	providerRepo "fundi/database/repository/provider"
	requestRepo "fundi/database/repository/request"
	"fundi/handlers"
	"fundi/middleware"
	"fundi/routes"
	"fundi/services/booking"
	"fundi/services/dispatch"
	"fundi/services/notification"
	"fundi/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitTrackingCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(middleware.ActorMiddleware())

	// repositories.
	reqRepo := requestRepo.NewMongoRequestRepo()
	provRepo := providerRepo.NewMongoProviderRepo()
	if err := reqRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create request indexes: %v", err)
	}
	if err := provRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create provider indexes: %v", err)
	}

	// services.
	notificationService := notification.NewDefaultNotificationService(provRepo, utils.GetCacheClient())

	estimator := booking.NewEstimator(config.AppConfig.AverageSpeedKmph, booking.UnitAdjustment{})

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueClient.Close()

	dispatchEngine := &dispatch.DefaultDispatchEngine{
		Requests:  reqRepo,
		Providers: provRepo,
		Notifier:  notificationService,
		Queue:     &dispatch.AsynqEnqueuer{Client: queueClient},
		Estimator: estimator,
		Config:    config.AppConfig.Dispatch(),
		Logger:    logger,
	}

	bookingService := &booking.DefaultBookingService{
		Requests:              reqRepo,
		Providers:             provRepo,
		Notifier:              notificationService,
		Estimator:             estimator,
		Dispatch:              dispatchEngine,
		TrackingCache:         utils.GetTrackingCacheClient(),
		Logger:                logger,
		SearchRadiusKm:        config.AppConfig.SearchRadiusKm,
		MaxSearchRadiusKm:     config.AppConfig.MaxSearchRadiusKm,
		CancellationFeeRate:   config.AppConfig.CancellationFeeRate,
		NearbyThresholdMeters: config.AppConfig.NearbyThresholdMeters,
	}

	// Background dispatch worker consuming the durable queue.
	cron.InitDispatchWorker(dispatchEngine)

	requestHandler := handlers.NewRequestHandler(bookingService)
	providerHandler := handlers.NewProviderHandler(provRepo)
	adminHandler := handlers.NewAdminHandler(bookingService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		CreateRequest:  requestHandler.CreateRequest,
		GetRequest:     requestHandler.GetRequest,
		AcceptRequest:  requestHandler.AcceptRequest,
		RejectRequest:  requestHandler.RejectRequest,
		UpdateStatus:   requestHandler.UpdateStatus,
		UpdateLocation: requestHandler.UpdateLocation,
		CancelRequest:  requestHandler.CancelRequest,
		GetTracking:    requestHandler.GetTracking,

		RegisterProvider: providerHandler.RegisterProvider,
		GetProvider:      providerHandler.GetProvider,

		OverrideStatus: adminHandler.OverrideStatus,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
