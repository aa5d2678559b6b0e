package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clariasense/docs"
	"clariasense/internal/config"
	"clariasense/internal/handlers"
	"clariasense/internal/ingest"
	"clariasense/internal/logger"
	"clariasense/internal/metrics"
	"clariasense/internal/models"
	"clariasense/internal/repository"
	"clariasense/internal/repository/db"
	"clariasense/internal/repository/realtime"
	"clariasense/internal/server"
	"clariasense/internal/service"
	"clariasense/internal/trigger"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

const (
	configDir       = "configs"
	shutdownTimeout = 10 * time.Second
)

func main() {
	// load configs/config.yml, .env and CLARIASENSE_* overrides
	cfg, err := config.Load(configDir)
	if err != nil {
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalw("invalid timezone", "err", err)
	}

	// open stores
	sqlDB, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	store, err := realtime.Open(cfg.Realtime.Path)
	if err != nil {
		log.Fatalw("failed to open realtime store", "path", cfg.Realtime.Path, "err", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Errorw("failed to close realtime store", "err", cerr)
		}
	}()

	// wire dependencies
	m := metrics.New()
	bus, err := newBus(cfg.Triggers, log, m)
	if err != nil {
		log.Fatalw("failed to init trigger bus", "transport", cfg.Triggers.Transport, "err", err)
	}

	repos := repository.NewRepository(sqlDB, store)
	services := service.NewService(repos, service.Deps{
		Publisher: bus,
		Log:       log,
		Metrics:   m,
		Settings:  settingsFrom(cfg, loc),
	})
	services.RegisterTriggers(bus)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := provisionDevices(ctx, services, cfg.Devices, log); err != nil {
		log.Fatalw("failed to provision devices", "err", err)
	}

	bg, bgCtx := errgroup.WithContext(ctx)
	bg.Go(func() error { return bus.Run(bgCtx) })

	var hourly *cron.Cron
	if cfg.HourlyLogs.Enabled {
		if hourly, err = services.Hourly.Schedule(bgCtx, cfg.HourlyLogs.Schedule); err != nil {
			log.Fatalw("failed to schedule hourly logs", "err", err)
		}
	}

	var sub *ingest.MQTTSubscriber
	if cfg.MQTT.Enabled {
		sub = ingest.NewMQTTSubscriber(ingest.Options{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
		}, services, log)
		if err := sub.Start(bgCtx); err != nil {
			log.Fatalw("failed to start mqtt ingest", "err", err)
		}
	}

	if cfg.Simulator.Enabled {
		bg.Go(func() error {
			services.Simulator.Run(bgCtx, cfg.Simulator.Tick)
			return nil
		})
	}

	// start HTTP server
	docs.SwaggerInfo.Title = "ClariaSense API"
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		Metrics:     m,
		CORSOrigins: cfg.CORS.Origins,
	})
	srv := server.New(cfg.Server.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)

	if sub != nil {
		sub.Stop()
	}
	if hourly != nil {
		<-hourly.Stop().Done()
	}
	if err := bg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("background worker stopped with error", "err", err)
	}
	// write whatever was buffered since the last scheduled flush
	flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer flushCancel()
	if _, err := services.Hourly.Flush(flushCtx); err != nil {
		log.Errorw("final hourly flush failed", "err", err)
	}
	log.Infow("shutdown complete")
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	log.Infow("opening sqlite", "path", cfg.DB.Path)
	return db.InitDB(cfg.DB.Path)
}

func newBus(cfg config.TriggerConfig, log *logger.Logger, m *metrics.Metrics) (trigger.Bus, error) {
	if cfg.Transport == config.TransportKafka {
		return trigger.NewKafkaBus(trigger.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, cfg.HandlerTimeout, log, m)
	}
	return trigger.NewLocalBus(cfg.Workers, cfg.Buffer, cfg.HandlerTimeout, log, m), nil
}

func settingsFrom(cfg config.Config, loc *time.Location) service.Settings {
	thresholds := make(map[models.SensorID]service.Range, len(cfg.Thresholds))
	for id, r := range cfg.Thresholds {
		thresholds[models.SensorID(id)] = service.Range{Min: r.Min, Max: r.Max}
	}
	return service.Settings{
		Thresholds:        thresholds,
		Location:          loc,
		MailBaseURL:       cfg.Mail.BaseURL,
		MaxParallelWrites: cfg.Mail.MaxParallelWrites,
		RefillThreshold:   cfg.Refill.Threshold,
		RefillCooldown:    cfg.Refill.Cooldown,
		JWTSecret:         cfg.Auth.JWTSecret,
		TokenTTL:          cfg.Auth.TokenTTL,
	}
}

// provisionDevices stores a hash of every configured device secret.
func provisionDevices(ctx context.Context, auth service.DeviceAuth, devices []config.DeviceConfig, log *logger.Logger) error {
	for _, d := range devices {
		if err := auth.Provision(ctx, d.Name, d.Secret); err != nil {
			return err
		}
		log.Infow("device_provisioned", "device", d.Name)
	}
	return nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
