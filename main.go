// File: coachbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coachbook/config"
	"coachbook/cron"
	"coachbook/database"
	bookingRepoPkg "coachbook/database/repository/booking"
	catalogRepoPkg "coachbook/database/repository/catalog"
	membershipRepoPkg "coachbook/database/repository/membership"
	tenantRepoPkg "coachbook/database/repository/tenant"
	"coachbook/handlers"
	"coachbook/middleware"
	"coachbook/routes"
	"coachbook/services/booking"
	"coachbook/services/membership"
	"coachbook/services/payment"
	"coachbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitPaymentCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	membershipRepo := membershipRepoPkg.NewMongoMembershipRepo()
	tenantRepo := tenantRepoPkg.NewMongoTenantRepo(utils.GetCacheClient())
	catalogRepo := catalogRepoPkg.NewMongoServiceRepo()

	// services.
	resolver := membership.NewDefaultResolver(membershipRepo, logger)
	successRegistry := payment.NewSuccessRegistry(utils.GetPaymentCacheClient(), 24*time.Hour)
	gateway := payment.NewStripeGateway(successRegistry, bookingRepo, logger)

	bookingService := &booking.DefaultBookingService{
		Repo:       bookingRepo,
		Membership: resolver,
		Gateway:    gateway,
		Config:     tenantRepo,
		Logger:     logger,
	}

	bookingHandler := handlers.NewBookingHandler(bookingService, resolver, catalogRepo, logger)

	// Register routes.
	routes.RegisterRoutes(router, bookingHandler)

	// Reconcile orphaned pending bookings in the background.
	cron.InitPendingSweeper(bookingRepo, logger)

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
