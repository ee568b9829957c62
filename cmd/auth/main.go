package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/scope_auth/internal/config"
	"github.com/Skotchmaster/scope_auth/internal/db"
	"github.com/Skotchmaster/scope_auth/internal/es"
	"github.com/Skotchmaster/scope_auth/internal/events"
	"github.com/Skotchmaster/scope_auth/internal/hash"
	"github.com/Skotchmaster/scope_auth/internal/httpserver"
	"github.com/Skotchmaster/scope_auth/internal/logging"
	mwauth "github.com/Skotchmaster/scope_auth/internal/middleware/auth"
	"github.com/Skotchmaster/scope_auth/internal/mykafka"
	"github.com/Skotchmaster/scope_auth/internal/repo"
	"github.com/Skotchmaster/scope_auth/internal/service"
	"github.com/Skotchmaster/scope_auth/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, db.Options{Driver: cfg.DBDriver, SQLDriver: cfg.DBSQLDriver, DSN: cfg.DatabaseURL})
	if err == nil {
		err = db.Migrate(ctx, gdb)
	}
	cancel()
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	codec, err := tokens.NewCodec(cfg.Tokens())
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	publisher, closeEvents := newPublisher(cfg, logger)

	r := &repo.GormRepo{DB: gdb}
	authz := &service.Authorizer{Users: r, Tokens: codec}
	authSvc := &service.AuthService{
		Users:      r,
		Hasher:     hash.New(),
		Tokens:     codec,
		Events:     publisher,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	}
	scopeSvc := &service.ScopeService{Repo: r, Events: publisher}

	e := httpserver.New(logger)
	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: authSvc, CookieSecure: cfg.RefreshCookieSecure},
		ScopeHandler: &httpserver.ScopeHTTP{Svc: scopeSvc},
		UserHandler:  &httpserver.UserHTTP{},
		AuthMW:       mwauth.New(authz),
		DB:           gdb,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	closeEvents()
	if err := db.Close(gdb); err != nil {
		logger.Error("db close", "error", err)
	}

	logger.Info("stopped")
}

// newPublisher enables a sink for each configured backend. An unreachable
// Elasticsearch is logged and skipped.
func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, func()) {
	var sinks events.Multi
	closeFn := func() {}

	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		sinks = append(sinks, prod)
		closeFn = func() {
			if err := prod.Close(); err != nil {
				logger.Error("kafka close", "error", err)
			}
		}
	}

	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, logger)
		cancel()
		if err != nil {
			logger.Warn("es_unavailable", "error", err)
		} else {
			sinks = append(sinks, es.NewIndexer(client, cfg.ESEventsIndex))
		}
	}

	if len(sinks) == 0 {
		return events.Nop{}, closeFn
	}
	return sinks, closeFn
}
