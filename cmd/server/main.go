package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fremontasb/fremont-api/internal/config"
	"github.com/fremontasb/fremont-api/internal/constants"
	"github.com/fremontasb/fremont-api/internal/database"
	"github.com/fremontasb/fremont-api/internal/handlers"
	"github.com/fremontasb/fremont-api/internal/logger"
	"github.com/fremontasb/fremont-api/internal/middleware"
	"github.com/fremontasb/fremont-api/internal/notifications"
	"github.com/fremontasb/fremont-api/internal/repository"
	"github.com/fremontasb/fremont-api/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.GinMode == gin.DebugMode)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	store := repository.NewStore(database.GetDB())

	dispatcher := notifications.NewDispatcher(store.DeviceTokens, notifications.Config{
		Endpoint:      cfg.Push.Endpoint,
		BatchSize:     cfg.Push.BatchSize,
		Workers:       cfg.Push.Workers,
		QueueSize:     cfg.Push.QueueSize,
		RatePerSecond: cfg.Push.RatePerSecond,
		HTTPClient:    &http.Client{Timeout: 30 * time.Second},
	})
	dispatcher.Start(context.Background())

	svc := handlers.Services{
		Auth:          services.NewAuthService(store),
		Users:         services.NewUserService(store),
		Organizations: services.NewOrganizationService(store),
		Posts:         services.NewPostService(store, dispatcher),
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// Setup session middleware with Redis
	sessionStore, err := redisStore.NewStore(
		10,                              // Redis pool size
		"tcp",                           // network type
		cfg.RedisHost+":"+cfg.RedisPort, // Redis address from config
		"",                              // password (empty = no password)
		[]byte(cfg.SessionSecret),       // authentication key
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis store")
	}
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, sessionStore))

	handlers.RegisterRoutes(r, svc, cfg.AppVersion)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server starting")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Could not stop server gracefully")
			server.Close()
		}
		if err := dispatcher.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Pending notifications were not delivered")
		}
	}
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, constants.RequestIDHeader)
	c.ExposeHeaders = []string{constants.RequestIDHeader}
	c.AllowCredentials = true
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		// Credentialed requests cannot use a literal wildcard.
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}
	return c
}
