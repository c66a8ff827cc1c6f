package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/smart-scheduler/internal/api"
	"github.com/hackgods/smart-scheduler/internal/appointment"
	"github.com/hackgods/smart-scheduler/internal/catalog"
	"github.com/hackgods/smart-scheduler/internal/config"
	"github.com/hackgods/smart-scheduler/internal/db"
	"github.com/hackgods/smart-scheduler/internal/events"
	redisclient "github.com/hackgods/smart-scheduler/internal/redis"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s addr=%s", cfg.Env, cfg.Addr())

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sinks := events.Fanout{events.LogSink{}}
	var checks []api.DependencyCheck
	var closers []io.Closer

	// Postgres event log
	if cfg.PostgresDSN != "" {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		var pgSink *events.PgSink
		if err == nil {
			pgSink = events.NewPgSink(pgPool)
			err = pgSink.EnsureSchema(pgCtx)
		}
		cancelPg()
		if err != nil {
			log.Fatalf("postgres connection error: %v", err)
		}
		defer pgPool.Close()
		log.Println("connected to Postgres")

		sinks = append(sinks, pgSink)
		checks = append(checks, api.DependencyCheck{Name: "postgres", Critical: true, Ping: pgPool.Ping})
	}

	// Redis event stream
	if cfg.RedisAddr != "" {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		closers = append(closers, rdb)
		log.Printf("connected to Redis stream=%s", cfg.RedisStream)

		sinks = append(sinks, events.NewRedisStreamSink(rdb, cfg.RedisStream))
		checks = append(checks, api.DependencyCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return redisclient.Ping(ctx, rdb)
		}})
	}

	// Kafka event topic
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		closers = append(closers, kafkaSink)
		log.Printf("publishing events to kafka brokers=%v topic=%s", cfg.KafkaBrokers, cfg.KafkaTopic)

		sinks = append(sinks, kafkaSink)
	}

	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Printf("error closing event sink: %v", err)
			}
		}
	}()

	ledger := appointment.NewLedger(catalog.Default())
	svc := appointment.NewService(ledger, sinks, cfg)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: api.NewRouter(api.RouterConfig{
			Service:      svc,
			Checks:       checks,
			CORSOrigins:  cfg.CORSOrigins,
			MaxBodyBytes: cfg.MaxBodyBytes,
			Env:          cfg.Env,
			Version:      version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-rootCtx.Done():
	case err := <-serveErr:
		if err != nil {
			log.Printf("http server error: %v", err)
		}
	}

	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}
