package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/evermore-app/evermore/internal/analytics"
	"github.com/evermore-app/evermore/internal/config"
	"github.com/evermore-app/evermore/internal/genai"
	"github.com/evermore-app/evermore/internal/gormw"
	"github.com/evermore-app/evermore/internal/handlers/generation"
	"github.com/evermore-app/evermore/internal/handlers/invitations"
	"github.com/evermore-app/evermore/internal/imagestore"
	"github.com/evermore-app/evermore/internal/storage"
)

var (
	configPath = flag.String("c", os.Getenv("CONFIG_PATH"), "Path to configuration file")
)

func main() {
	flag.Parse()
	if *configPath == "" {
		log.Fatal().Msg("Config path must be provided via CONFIG_PATH env var or -c flag")
	}

	// Load configuration
	cfg := config.LoadConfig(*configPath)

	// cron schedule
	scheduler, _ := gocron.NewScheduler()
	scheduler.Start()

	// Initialize database
	db, err := gormw.Open(&cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	retention := time.Duration(cfg.Analytics.RetentionDays) * 24 * time.Hour
	storage.RegisterAnalyticsEventsPruner(scheduler, db, retention)

	// Optional blob store for generated artwork
	var store *imagestore.Store
	if cfg.Images.Enabled() {
		store, err = imagestore.New(&cfg.Images)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open image store")
		}
	}

	events := analytics.NewLogger(db)

	// Set up Gin router
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	invitations.NewHandler(db, events).RegisterHandlers(router.Group("/"))

	generation.NewHandler(
		genai.NewMessageGenerator(&cfg.GenAI),
		genai.NewImageGenerator(&cfg.GenAI),
		store,
		events,
	).RegisterHandlers(router.Group("/"))

	if store != nil {
		router.StaticFS(store.PublicPath(), store.HTTPFileSystem())
	}

	// Start server
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		// Good practice to set timeouts to avoid Slowloris attacks.
		// The write timeout leaves room for generation endpoints that
		// wait on upstream providers with retries.
		WriteTimeout: time.Second * 120,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	// Run our server in a goroutine so that it doesn't block.
	go func() {
		log.Printf("start server at %q", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	c := make(chan os.Signal, 1)
	// We'll accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+/) will not be caught.
	signal.Notify(c, os.Interrupt)

	// Block until we receive our signal.
	<-c

	// Create a deadline to wait for.
	wait := time.Second * 15
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	// Doesn't block if no connections, but will otherwise wait
	// until the timeout deadline.
	srv.Shutdown(ctx)

	log.Info().Msg("shutting down")
	os.Exit(0)
}
