// Package query serves the seat registry: buildings, floors and seats. Reads
// go through the Redis cache when one is configured.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/deskgo/internal/domain"
	"github.com/kirinyoku/deskgo/internal/repository"
	redisrepo "github.com/kirinyoku/deskgo/internal/repository/redis"
)

type Config struct {
	ReferenceTTL time.Duration
	SeatTTL      time.Duration
}

type Service struct {
	store repository.Repos
	cache *redisrepo.Cache
	cfg   Config
}

func New(store repository.Repos, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.ReferenceTTL <= 0 {
		cfg.ReferenceTTL = 10 * time.Minute
	}

	if cfg.SeatTTL <= 0 {
		cfg.SeatTTL = 15 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// GetSeat retrieves a seat by its ID.
//
// Returns:
//   - error: query.ErrSeatNotFound if the seat does not exist.
func (s *Service) GetSeat(ctx context.Context, id int64) (*domain.Seat, error) {
	const op = "service.query.GetSeat"

	seat, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeySeat(id),
		s.cfg.SeatTTL,
		func(ctx context.Context) (domain.Seat, error) {
			st, err := s.store.Seats().GetSeat(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Seat{}, ErrSeatNotFound
				}
				return domain.Seat{}, err
			}
			return *st, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &seat, nil
}

// ListSeatsByFloor returns the seats of a floor ordered by ID. An unknown
// floor yields an empty list.
func (s *Service) ListSeatsByFloor(ctx context.Context, floorID int64) ([]domain.Seat, error) {
	const op = "service.query.ListSeatsByFloor"

	seats, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyFloorSeats(floorID),
		s.cfg.SeatTTL,
		func(ctx context.Context) ([]domain.Seat, error) {
			return s.store.Seats().ListSeatsByFloor(ctx, floorID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return seats, nil
}

// ListSeatsByBuildingFloor resolves the floor by building and floor number
// and returns its seats.
//
// Returns:
//   - error: query.ErrFloorNotFound if the building has no such floor.
func (s *Service) ListSeatsByBuildingFloor(ctx context.Context, buildingID int64, floor int) ([]domain.Seat, error) {
	const op = "service.query.ListSeatsByBuildingFloor"

	f, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyFloor(buildingID, floor),
		s.cfg.ReferenceTTL,
		func(ctx context.Context) (domain.Floor, error) {
			f, err := s.store.Seats().FindFloor(ctx, buildingID, floor)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Floor{}, ErrFloorNotFound
				}
				return domain.Floor{}, err
			}
			return *f, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.ListSeatsByFloor(ctx, f.ID)
}

func (s *Service) ListBuildings(ctx context.Context) ([]domain.Building, error) {
	const op = "service.query.ListBuildings"

	buildings, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyBuildings(),
		s.cfg.ReferenceTTL,
		s.store.Seats().ListBuildings,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return buildings, nil
}

// ListFloors returns the floors of a building ordered by floor number.
func (s *Service) ListFloors(ctx context.Context, buildingID int64) ([]domain.Floor, error) {
	const op = "service.query.ListFloors"

	floors, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyBuildingFloors(buildingID),
		s.cfg.ReferenceTTL,
		func(ctx context.Context) ([]domain.Floor, error) {
			return s.store.Seats().ListFloorsByBuilding(ctx, buildingID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return floors, nil
}
