// File: mytutor/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mytutor/config"
	"mytutor/cron"
	"mytutor/database"
	timeslotRepo "mytutor/database/repository/timeslot"
	userRepoPkg "mytutor/database/repository/user"
	"mytutor/handlers"
	"mytutor/middleware"
	"mytutor/routes"
	"mytutor/services/booking"
	"mytutor/services/directory"
	"mytutor/services/rating"
	"mytutor/services/slot"
	"mytutor/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// repositories.
	var (
		slotRepo    timeslotRepo.SlotRepository
		userRepo    userRepoPkg.UserRepository
		mongoClient *mongo.Client
	)
	switch config.AppConfig.StoreDriver {
	case "memory":
		logger.Warn("Using in-memory store; data is lost on restart")
		slotRepo = timeslotRepo.NewMemoryTimeSlotRepo()
		userRepo = userRepoPkg.NewMemoryUserRepo()
	default:
		database.InitDB()
		mongoClient = database.MongoClient
		db := database.Database()
		slotRepo = timeslotRepo.NewMongoTimeSlotRepo(db)
		userRepo = userRepoPkg.NewMongoUserRepo(db)
		for _, repo := range []any{slotRepo, userRepo} {
			if ix, ok := repo.(indexer); ok {
				if err := ix.EnsureIndexes(context.Background()); err != nil {
					logger.Warn("main: failed to create indexes", zap.Error(err))
				}
			}
		}
	}

	// services.
	clock := utils.SystemClock{}
	var providerDirectory directory.ProviderDirectory = directory.NewRepoDirectory(userRepo)
	var cacheClient *redis.Client
	if config.AppConfig.RedisAddr != "" {
		cacheClient = utils.GetCacheClient()
		providerDirectory = directory.NewCachedDirectory(providerDirectory, cacheClient, config.AppConfig.DirectoryCacheTTL)
	}

	slotEngine := slot.NewSlotEngine(slotRepo, userRepo, providerDirectory, clock)
	bookingEngine := booking.NewBookingEngine(slotRepo, clock,
		config.AppConfig.BookingLeadTime, config.AppConfig.CancelLeadTime)
	ratingEngine := rating.NewRatingEngine(userRepo, slotRepo, providerDirectory, clock)

	reconciler := cron.NewReconciler(slotRepo, clock, config.AppConfig.ReconcileSchedule)
	if err := reconciler.Start(); err != nil {
		logger.Sugar().Fatalf("main: failed to start reconciler: %v", err)
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, config.AppConfig.StoreDriver, cacheClient, mongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := &handlers.HandlerBundle{
		Slots:    handlers.NewSlotHandler(slotEngine),
		Bookings: handlers.NewBookingHandler(bookingEngine),
		Reviews:  handlers.NewReviewHandler(ratingEngine),
	}
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
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	reconciler.Stop(ctx)
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to disconnect from MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
