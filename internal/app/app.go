package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirinyoku/deskgo/internal/config"
	"github.com/kirinyoku/deskgo/internal/events"
	"github.com/kirinyoku/deskgo/internal/postgres"
	"github.com/kirinyoku/deskgo/internal/queue"
	"github.com/kirinyoku/deskgo/internal/redis"
	"github.com/kirinyoku/deskgo/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/deskgo/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/deskgo/internal/repository/redis"
	"github.com/kirinyoku/deskgo/internal/service"
	"github.com/kirinyoku/deskgo/internal/service/query"
	"github.com/kirinyoku/deskgo/internal/service/reservation"
	"github.com/kirinyoku/deskgo/internal/service/sweep"
	httpgin "github.com/kirinyoku/deskgo/internal/transport/http/gin"
	"github.com/kirinyoku/deskgo/internal/uow"
	"golang.org/x/sync/errgroup"
)

const (
	appName        = "deskgo"
	idempotencyTTL = 2 * time.Hour
	shutdownWait   = 5 * time.Second
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	services   *service.Services
	closers    []func() error
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	// Initialize store
	store, err := a.openStore(context.Background())
	if err != nil {
		a.close()
		return nil, err
	}

	// Optional Redis: cache, limiter, idempotency, sweep lock and seat feed
	var (
		cache   *redisrepo.Cache
		idem    *redisrepo.IdempotencyStore
		pubsub  *redisrepo.SeatsPubSub
		feed    httpgin.SeatFeed
		limiter reservation.Limiter
		locker  sweep.Locker
	)
	if cfg.Redis.Enabled() {
		rdb, err := redis.New(context.Background(), redis.Config{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			ClientName: appName,
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)

		cache = redisrepo.New(rdb)
		idem = redisrepo.NewIdempotencyStore(rdb, idempotencyTTL)
		pubsub = redisrepo.NewSeatsPubSub(rdb)
		feed = pubsub
		limiter = redisrepo.NewSlidingWindowLimiter(rdb, "reservations", cfg.RateLimit.Limit, cfg.RateLimit.Window)
		locker = redisrepo.NewLocker(rdb)
	} else {
		logger.Warn("REDIS_ADDR is empty: caching, rate limiting, idempotency keys and the seat feed are off")
	}

	// Event sinks
	publisher := events.Multi{}
	if cfg.RabbitMQ.Enabled() {
		q := queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)
		a.closers = append(a.closers, q.Close)
		publisher = append(publisher, q)
	}
	if pubsub != nil {
		publisher = append(publisher, events.SeatChanges{Next: pubsub})
	}

	// Initialize services
	a.services = service.NewServices(store, cache, publisher, limiter, locker, service.Config{
		Reservation: reservation.Config{
			Location: cfg.Location,
			Logger:   logger,
		},
		Query: query.Config{},
		Sweep: sweep.Config{
			Interval: cfg.Sweep.Interval,
			Logger:   logger,
		},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(a.services, idem, feed, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) openStore(ctx context.Context) (uow.Transactor, error) {
	switch a.cfg.Store.Driver {
	case config.DriverMemory:
		a.logger.Warn("using the in-memory store; data is lost on restart")
		s := memory.New()
		s.Seed(memory.DemoDataset())
		return s, nil

	default:
		pool, err := postgres.New(ctx, postgres.Config{
			DSN:      a.cfg.Postgres.DSN(),
			MaxConns: a.cfg.Postgres.MaxConns,
			AppName:  appName,
			TimeZone: a.cfg.Location.String(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })

		s := postgresrepo.NewStore(pool)
		if err := s.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		return s, nil
	}
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Status sweep
	if a.cfg.Sweep.Enabled {
		g.Go(func() error {
			a.logger.Info("status sweep started", "interval", a.cfg.Sweep.Interval)
			return a.services.Sweep.Run(gCtx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

// close releases connections in reverse order of opening.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
