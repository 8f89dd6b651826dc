package service

import (
	postgres "github.com/1t0t0/dispatch-go/internal/repository/postgres"
	redis "github.com/1t0t0/dispatch-go/internal/repository/redis"
	"github.com/1t0t0/dispatch-go/internal/service/query"
	"github.com/1t0t0/dispatch-go/internal/service/scan"
	"github.com/1t0t0/dispatch-go/internal/service/trip"
)

// The postgres repos back the scan coordinator's storage interfaces.
var (
	_ scan.TicketStore  = (*postgres.TicketRepo)(nil)
	_ scan.TripRegistry = (*postgres.TripRepo)(nil)
)

type Services struct {
	Scan  *scan.Service
	Trip  *trip.Service
	Query *query.Service
}

type Config struct {
	Scan  scan.Config
	Trip  trip.Config
	Query query.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.TripsPubSub,
	limiter *redis.SlidingWindowLimiter,
	cfg Config,
) *Services {
	return &Services{
		Scan:  scan.New(store.Tickets(), store.Trips(), cache, pubsub, limiter, cfg.Scan),
		Trip:  trip.New(store, cache, pubsub, cfg.Trip),
		Query: query.New(store, cache, cfg.Query),
	}
}
