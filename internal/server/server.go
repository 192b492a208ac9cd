// Package server wires the process together: it opens the backing stores,
// builds the services and serves HTTP and gRPC until a signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/shopfront/app/controllers"
	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/internal/kernel"
	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/cache"
	"github.com/shashiranjanraj/shopfront/pkg/database"
	grpcserver "github.com/shashiranjanraj/shopfront/pkg/grpc"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/mail"
	"github.com/shashiranjanraj/shopfront/pkg/notification"
	"github.com/shashiranjanraj/shopfront/pkg/payment"
	"github.com/shashiranjanraj/shopfront/pkg/router"
	"github.com/shashiranjanraj/shopfront/pkg/workerpool"
)

const shutdownTimeout = 15 * time.Second

// Runtime holds the long-lived dependencies of a running process.
type Runtime struct {
	Repos    repositories.Set
	Cache    cache.Cache
	Payments payment.Provider
	Mailer   mail.Mailer
	Pool     *workerpool.Pool
	// Probe backs GET /health and the gRPC health service.
	Probe func(ctx context.Context) error

	jwt     *auth.Signer
	closers []func(ctx context.Context)
}

// Boot opens every store named by the configuration. Redis is optional:
// when it cannot be reached the in-process cache is used instead.
func Boot(ctx context.Context) (*Runtime, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rt := &Runtime{}

	if uri := config.LogMongoURI(); uri != "" {
		closeSink, err := logger.EnableMongoSink(uri, config.MongoDatabase(), "logs")
		if err != nil {
			logger.Warn("log sink disabled", "error", err)
		} else {
			rt.onClose(func(context.Context) { closeSink() })
		}
	}

	switch config.DatabaseDriver() {
	case "mongo":
		if err := database.Connect(ctx); err != nil {
			rt.Close(context.Background())
			return nil, err
		}
		rt.Repos = repositories.NewMongo(database.DB)
		rt.Probe = database.Ping
		rt.onClose(func(ctx context.Context) {
			if err := database.Disconnect(ctx); err != nil {
				logger.Error("mongo disconnect failed", "error", err)
			}
		})
		logger.Info("mongo connected", "database", config.MongoDatabase())
	default:
		rt.Repos = repositories.NewMemory()
		logger.Warn("using in-memory storage; data is lost on exit")
	}

	if rdb, err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, using in-process cache", "error", err)
		rt.Cache = cache.NewMemory()
	} else {
		rt.Cache = cache.NewRedis(rdb)
		rt.onClose(func(context.Context) { _ = rdb.Close() })
	}

	if key := config.StripeSecretKey(); key != "" {
		stripe := payment.NewStripe(key, config.StripeWebhookSecret())
		rt.Payments = payment.NewResilient(stripe, payment.DefaultPolicy(config.ProviderTimeout()))
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set; payment endpoints will fail")
		rt.Payments = payment.Unconfigured{}
	}

	rt.Mailer = mail.FromConfig()
	rt.Pool = workerpool.New(config.Int("WORKER_POOL_SIZE", 8))
	rt.onClose(func(context.Context) { rt.Pool.Shutdown() })

	return rt, nil
}

// InMemory returns a Runtime with no external connections.
func InMemory() *Runtime {
	return &Runtime{
		Repos:    repositories.NewMemory(),
		Cache:    cache.NewMemory(),
		Payments: payment.Unconfigured{},
		Mailer:   mail.NewLog(nil),
	}
}

func (rt *Runtime) onClose(fn func(ctx context.Context)) {
	rt.closers = append(rt.closers, fn)
}

// Services builds the service layer on top of rt.
func (rt *Runtime) Services() services.Set {
	opts := notification.DefaultOptions()
	opts.Timeout = config.ProviderTimeout()

	return services.New(services.Deps{
		Repos:    rt.Repos,
		Cache:    rt.Cache,
		Payments: rt.Payments,
		Notifier: notification.NewDispatcher(rt.Mailer, rt.Pool, opts),
		Signer:   rt.signer(),
	})
}

func (rt *Runtime) signer() *auth.Signer {
	if rt.jwt == nil {
		rt.jwt = auth.NewSigner(config.JWTSecret())
	}
	return rt.jwt
}

// Router builds the controllers and HTTP kernel on top of rt.
func (rt *Runtime) Router() *router.Router {
	return kernel.NewRouter(kernel.Options{
		Gate:        auth.NewGate(rt.signer(), rt.Repos.Users),
		Controllers: controllers.New(rt.Services()),
		Health:      rt.Probe,
		RateLimit:   config.RateLimit(),
	})
}

// Close releases resources in reverse order of acquisition.
func (rt *Runtime) Close(ctx context.Context) {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i](ctx)
	}
}

// Start boots the runtime and serves until SIGINT or SIGTERM.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := Boot(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           rt.Router().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	grpcSrv, err := grpcserver.Start(config.GRPCPort(), rt.Probe)
	if err != nil {
		rt.Close(context.Background())
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if e := srv.Shutdown(shutdownCtx); e != nil {
		logger.Error("HTTP shutdown failed", "error", e)
	}
	grpcserver.Stop(grpcSrv)
	rt.Close(shutdownCtx)
	logger.Info("server stopped")
	return err
}
