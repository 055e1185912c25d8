package service

import (
	"github.com/kirinyoku/deskgo/internal/events"
	redisrepo "github.com/kirinyoku/deskgo/internal/repository/redis"
	"github.com/kirinyoku/deskgo/internal/service/admin"
	"github.com/kirinyoku/deskgo/internal/service/query"
	"github.com/kirinyoku/deskgo/internal/service/reservation"
	"github.com/kirinyoku/deskgo/internal/service/sweep"
	"github.com/kirinyoku/deskgo/internal/uow"
)

type Services struct {
	Reservation *reservation.Service
	Query       *query.Service
	Admin       *admin.Service
	Sweep       *sweep.Service
}

type Config struct {
	Reservation reservation.Config
	Query       query.Config
	Sweep       sweep.Config
}

// NewServices builds every service over one store. cache, publisher, limiter
// and locker may be nil when Redis or RabbitMQ are not configured.
func NewServices(
	store uow.Transactor,
	cache *redisrepo.Cache,
	publisher events.Publisher,
	limiter reservation.Limiter,
	locker sweep.Locker,
	cfg Config,
) *Services {
	return &Services{
		Reservation: reservation.New(store, cache, publisher, limiter, cfg.Reservation),
		Query:       query.New(store, cache, cfg.Query),
		Admin:       admin.New(store, publisher, cfg.Reservation.Logger),
		Sweep:       sweep.New(store, publisher, locker, cfg.Sweep),
	}
}
