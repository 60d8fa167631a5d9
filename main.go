package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v76"

	"travelmateAPI/config"
	"travelmateAPI/handlers"
	"travelmateAPI/internal/achievement"
	"travelmateAPI/internal/alert"
	"travelmateAPI/internal/notification"
	"travelmateAPI/internal/provider"
	"travelmateAPI/internal/ratelimit"
	"travelmateAPI/internal/storage"
	"travelmateAPI/middleware"
	"travelmateAPI/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	for _, warning := range cfg.Validate() {
		log.Printf("Config warning: %s", warning)
	}

	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		stripe.Key = key
	} else {
		log.Println("STRIPE_SECRET_KEY not set, subscription endpoints will fail")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store := openStore(ctx, cfg)
	cancel()
	defer store.Close()

	// Core services
	persistence := services.NewPersistenceService(store)
	achievementService := services.NewAchievementService(store)
	historyService := services.NewHistoryService(store)
	notificationService := services.NewNotificationService(store)
	userService := services.NewUserService(persistence, achievementService)
	tripService := services.NewTripService(persistence, achievementService)

	limiter := ratelimit.New(time.Duration(cfg.Pricing.MinDelay))
	defer limiter.Stop()

	priceClient := services.NewPriceClient(cfg.Pricing.APIURL, limiter)
	monitor := services.NewPriceMonitor(priceClient, time.Duration(cfg.Pricing.CheckInterval))
	alertService := services.NewAlertService(persistence, achievementService, historyService, monitor, notificationService)
	subscriptionService := services.NewSubscriptionService(cfg.JWTSecret, cfg.Stripe.PriceID, cfg.Server.FrontendURL, userService)

	amadeus := provider.NewAmadeusProvider(cfg.Amadeus.BaseURL, cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret)
	quoteService := services.NewQuoteService(amadeus, time.Duration(cfg.Pricing.CacheTTL))

	if fcm, err := notification.NewFCMService("./serviceAccountKey.json"); err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcm)
		log.Println("FCM Push Provider initialized successfully")
	}

	// Unlocked achievements surface as notifications
	achievementService.SetUnlockListener(func(a achievement.Achievement) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		notificationService.NotifyAchievement(ctx, a.Title, a.Description, a.Points)
	})

	middleware.InitPrometheus()

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	quoteService.StartCacheSweeper(sweepCtx)

	monitor.StartMonitoring(
		func() []alert.PriceAlert {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return alertService.GetAlerts(ctx)
		},
		func(results []alert.PriceCheckResult) {
			for _, r := range results {
				switch {
				case r.Error != "":
					middleware.RecordPriceCheck("error")
				case r.Triggered:
					middleware.RecordPriceCheck("triggered")
				default:
					middleware.RecordPriceCheck("ok")
				}
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			alertService.ApplyCheckResults(ctx, results)
		},
	)
	defer monitor.StopMonitoring()

	// Initialize handlers
	priceHandler := handlers.NewPriceHandler(quoteService)
	alertHandler := handlers.NewAlertHandler(alertService, monitor)
	tripHandler := handlers.NewTripHandler(tripService)
	userHandler := handlers.NewUserHandler(userService, achievementService)
	historyHandler := handlers.NewHistoryHandler(historyService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	dataHandler := handlers.NewDataHandler(persistence)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	webhookHandler := handlers.NewWebhookHandler()

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", priceHandler.Health).Methods("GET")
	r.HandleFunc("/api/stripe-webhook", webhookHandler.HandleStripeWebhook).Methods("POST")

	r.HandleFunc("/api/prices", priceHandler.GetPrices).Methods("POST")
	r.HandleFunc("/api/create-checkout-session", subscriptionHandler.CreateCheckoutSession).Methods("POST")
	r.HandleFunc("/api/verify-subscription", subscriptionHandler.VerifySubscription).Methods("POST")
	r.HandleFunc("/api/cancel-subscription", subscriptionHandler.CancelSubscription).Methods("POST")
	r.HandleFunc("/api/create-portal-session", subscriptionHandler.CreatePortalSession).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/alerts", alertHandler.GetAlerts).Methods("GET")
	api.HandleFunc("/alerts", alertHandler.CreateAlert).Methods("POST")
	api.HandleFunc("/alerts/next-check", alertHandler.NextCheck).Methods("GET")
	api.HandleFunc("/alerts/{id}/check", alertHandler.CheckAlert).Methods("POST")
	api.HandleFunc("/alerts/{id}", alertHandler.DeleteAlert).Methods("DELETE")

	api.HandleFunc("/trips", tripHandler.GetTrips).Methods("GET")
	api.HandleFunc("/trips", tripHandler.CreateTrip).Methods("POST")
	api.HandleFunc("/trips/{id}", tripHandler.UpdateTrip).Methods("PUT")
	api.HandleFunc("/trips/{id}", tripHandler.DeleteTrip).Methods("DELETE")
	api.HandleFunc("/trips/{id}/activities", tripHandler.AddActivity).Methods("POST")
	api.HandleFunc("/trips/{id}/activities/{activityId}", tripHandler.RemoveActivity).Methods("DELETE")

	api.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	api.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/achievements", userHandler.GetAchievements).Methods("GET")
	api.HandleFunc("/achievements/summary", userHandler.GetAchievementSummary).Methods("GET")
	api.HandleFunc("/stats", userHandler.GetStats).Methods("GET")
	api.HandleFunc("/check-in", userHandler.CheckIn).Methods("POST")

	api.HandleFunc("/history/routes", historyHandler.GetRoutes).Methods("GET")
	api.HandleFunc("/history/{origin}/{destination}", historyHandler.GetRouteHistory).Methods("GET")
	api.HandleFunc("/history/{origin}/{destination}", historyHandler.ClearRouteHistory).Methods("DELETE")
	api.HandleFunc("/history/{origin}/{destination}/chart", historyHandler.GetChartData).Methods("GET")
	api.HandleFunc("/history/{origin}/{destination}/prediction", historyHandler.GetPrediction).Methods("GET")

	api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	api.HandleFunc("/notifications/read-all", notificationHandler.MarkAllRead).Methods("POST")
	api.HandleFunc("/notifications/devices", notificationHandler.RegisterDevice).Methods("POST")

	api.HandleFunc("/data/export", dataHandler.Export).Methods("GET")
	api.HandleFunc("/data/import", dataHandler.Import).Methods("POST")
	api.HandleFunc("/data", dataHandler.ClearAll).Methods("DELETE")

	// CORS configuration
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{cfg.Server.FrontendURL}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// openStore prefers Postgres when DATABASE_URL is set and falls back
// to the embedded SQLite store otherwise.
func openStore(ctx context.Context, cfg *config.Config) storage.Store {
	if cfg.Database.URL != "" {
		store, err := storage.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal("Failed to connect to Postgres:", err)
		}
		log.Println("Using Postgres storage")
		return store
	}

	store, err := storage.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatal("Failed to open SQLite store:", err)
	}
	log.Printf("Using SQLite storage at %s", cfg.Database.SQLitePath)
	return store
}
