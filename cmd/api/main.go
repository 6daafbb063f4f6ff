package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/schedkit/webhook-relay/call"
	callredis "github.com/schedkit/webhook-relay/call/redis"
	"github.com/schedkit/webhook-relay/config"
	"github.com/schedkit/webhook-relay/internal/clients"
	chihandlers "github.com/schedkit/webhook-relay/internal/http/chi"
	"github.com/schedkit/webhook-relay/metrics"
	"github.com/schedkit/webhook-relay/sources"
	"github.com/schedkit/webhook-relay/webhook"
	webhookredis "github.com/schedkit/webhook-relay/webhook/redis"
)

const TIMEOUT = 30 * time.Second

/* main wires the application together: configuration, collaborators, the
 * webhook pipeline, the call-scheduling layer, and the HTTP server.
 * Imports flow one direction only: cmd -> business packages -> storage.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		return
	}

	logLevel := zerolog.InfoLevel
	if cfg.Debug {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stdout).Level(logLevel).With().
		Timestamp().
		Str("service", "webhook-relay").
		Logger()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	// Inbound sources: built-in resend source plus optional sources.yaml
	sourceLoader := sources.NewLoader()
	if err := sourceLoader.Register(sources.Default(cfg)); err != nil {
		fmt.Println(err)
		return
	}
	if cfg.SourcesFile != "" {
		if err := sourceLoader.Load(cfg.SourcesFile); err != nil {
			fmt.Println(err)
			return
		}
	}

	// Failed-delivery recorder: Redis when available, log-only otherwise
	var recorder webhook.Recorder
	var backlog metrics.BacklogReader
	redisRecorder, err := webhookredis.NewRecorder(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, recording failed deliveries to log only")
		recorder = webhook.NewLogRecorder(logger)
	} else {
		defer redisRecorder.Close(ctx)
		recorder = redisRecorder
		backlog = redisRecorder
	}

	exporter, err := metrics.NewOTelExporter(backlog)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer exporter.Shutdown(ctx)

	forwarder := webhook.NewForwarder(
		cfg.TargetURL,
		cfg.TargetAuthHeader,
		cfg.TargetAuthToken,
		cfg.MaxRetries,
		cfg.RetryDelay(),
		logger,
	)
	webhookService := webhook.NewService(
		webhook.NewTransformer(),
		forwarder,
		recorder,
		cfg.StoreFailedPayloads,
		exporter,
		logger,
	)

	callRepo, err := callredis.NewRepository(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer callRepo.Close(ctx)

	callService := call.NewService(
		callRepo,
		clients.NewCallProvider(cfg.CallProviderURL, cfg.CallProviderAPIKey),
		clients.NewMailer(cfg.MailerURL, cfg.MailerAPIKey, cfg.MailerFrom),
		nil,
		logger,
	)

	r := chihandlers.Handlers(ctx, webhookService, sourceLoader, callService, exporter.Handler())
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	logger.Info().Str("port", cfg.Port).Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		fmt.Println(err)
		return
	}
	err = <-errShutdown
	if err != nil {
		fmt.Println(err)
		return
	}
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	default:
		errShutdown <- fmt.Errorf("forcing closing the server")
	}
}
