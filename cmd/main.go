package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "garage_opener/docs"
	"garage_opener/internal/config"
	"garage_opener/internal/door"
	"garage_opener/internal/handlers"
	"garage_opener/internal/logger"
	"garage_opener/internal/relay"
	"garage_opener/internal/repository"
	"garage_opener/internal/repository/db"
	"garage_opener/internal/server"
	"garage_opener/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title                       Garage Opener API
// @version                     1.0
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	// load configs/config.yml, GARAGE_* env overrides and defaults
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	if cfg.Auth.UsesDefaultKey() {
		log.Warnw("auth.signing_key is the default; set GARAGE_AUTH_SIGNING_KEY before exposing the API")
	}

	// open DB (audit log and users only)
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(conn)
	recorder := service.NewRecorderService(repos.EventRepo, log.Named("recorder"))

	relayClient := relay.NewClient(cfg.Relay)
	if !relayClient.Configured() {
		log.Warnw("relay host not configured; OPEN commands will not trigger the relay")
	}

	machine := door.NewMachine(door.NewStore(), relayClient, cfg.Door.Timing,
		door.WithLogger(log.Named("door")),
		door.WithAutoCloseHook(recorder.RecordAutoClose),
	)
	services := service.NewService(repos, machine, recorder, service.AuthConfig{
		SigningKey: cfg.Auth.SigningKey,
		TokenTTL:   cfg.Auth.TokenTTL,
	}, log)
	apiHandler := handlers.NewHandler(services, log, cfg.Door.Name)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		services.Recorder.Run(ctx)
	}()

	// start HTTP server
	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)
	log.Infow("garage opener started",
		"addr", srv.Addr(),
		"door", cfg.Door.Name,
		"relay_host", relayClient.Host(),
		"open_delay", cfg.Door.Timing.OpenDelay,
		"close_delay", cfg.Door.Timing.CloseDelay,
		"auto_close_delay", cfg.Door.Timing.AutoCloseDelay,
	)

	// graceful shutdown
	waitForShutdown(srv, log)
	machine.Stop()
	cancel()
	<-recorderDone
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT/SIGTERM and drains in-flight requests.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
