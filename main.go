package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/audit"
	"github.com/mauv0809/slot-matcher/internal/auth"
	"github.com/mauv0809/slot-matcher/internal/config"
	"github.com/mauv0809/slot-matcher/internal/database"
	server "github.com/mauv0809/slot-matcher/internal/http"
	"github.com/mauv0809/slot-matcher/internal/lock"
	"github.com/mauv0809/slot-matcher/internal/matching"
	"github.com/mauv0809/slot-matcher/internal/metrics"
	"github.com/mauv0809/slot-matcher/internal/notifier/alimtalk"
	"github.com/mauv0809/slot-matcher/internal/notifier/slack"
	"github.com/mauv0809/slot-matcher/internal/pubsub"
	"github.com/mauv0809/slot-matcher/internal/settings"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/mauv0809/slot-matcher/internal/solapi"
	"github.com/mauv0809/slot-matcher/internal/team"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %s", err)
	}
	ctx := context.Background()

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	counters := metrics.New(db)

	// Slot locks are shared through redis when several instances run.
	var locker lock.Locker = lock.NewMemory()
	if cfg.RedisURL != "" {
		rdb, err := database.InitRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %s", err)
		}
		defer rdb.Close()
		locker = lock.NewRedis(rdb)
	}

	teamStore := team.New(db)
	slotSvc := slot.NewService(teamStore, slot.NewStore(db), slot.Defaults{
		MaxApplicants:        cfg.Pricing.DefaultMaxApplicants,
		MalePrice:            cfg.Pricing.DefaultMalePrice,
		FemalePrice:          cfg.Pricing.DefaultFemalePrice,
		PublicRoomExtraPrice: cfg.Pricing.DefaultPublicRoomExtraPrice,
	}, cfg.Location)
	settingsSvc := settings.NewService(settings.NewStore(db), cfg)
	eventStore := audit.NewStore(db)

	solapiClient := solapi.NewClient(cfg.Solapi)
	teamNotifier := alimtalk.New(solapiClient, settingsSvc, metricsSvc)
	alerter := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)

	// Without a GCP project, workflow events are consumed in-process.
	var pubsubClient pubsub.PubSubClient
	var consumer *audit.Consumer
	if cfg.ProjectID != "" {
		pubsubClient, err = pubsub.New(ctx, cfg.ProjectID, metricsSvc)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		consumer = audit.NewConsumer(eventStore, counters, alerter, pubsubClient)
	} else {
		inline := pubsub.NewInline(metricsSvc)
		consumer = audit.NewConsumer(eventStore, counters, alerter, inline)
		inline.Subscribe(pubsub.EventWorkflowCompleted, consumer.HandleMessage)
		pubsubClient = inline
		log.Info("No GCP project configured, delivering workflow events inline")
	}
	defer pubsubClient.Close()

	authSvc := auth.NewService(settingsSvc, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
	workflow := matching.New(matching.Deps{
		Teams:    teamStore,
		Slots:    slotSvc,
		Settings: settingsSvc,
		Notifier: teamNotifier,
		Locker:   locker,
		PubSub:   pubsubClient,
		Metrics:  metricsSvc,
	})

	s := server.NewServer(server.Deps{
		Teams:          teamStore,
		Slots:          slotSvc,
		Settings:       settingsSvc,
		Events:         eventStore,
		Consumer:       consumer,
		Counters:       counters,
		MetricsHandler: metricsHandler,
		Alerter:        alerter,
		Sender:         solapiClient,
		Auth:           authSvc,
		Workflow:       workflow,
		Cfg:            cfg,
	})

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
