// Package kernel assembles the HTTP side of the service: the global
// middleware stack, the REST API, GraphQL, the alert streams and the
// operational endpoints.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/shashiranjanraj/kproduct/app/routes"
	"github.com/shashiranjanraj/kproduct/app/services"
	"github.com/shashiranjanraj/kproduct/config"
	"github.com/shashiranjanraj/kproduct/pkg/cache"
	"github.com/shashiranjanraj/kproduct/pkg/database"
	"github.com/shashiranjanraj/kproduct/pkg/event"
	"github.com/shashiranjanraj/kproduct/pkg/graphql"
	"github.com/shashiranjanraj/kproduct/pkg/metrics"
	"github.com/shashiranjanraj/kproduct/pkg/middleware"
	"github.com/shashiranjanraj/kproduct/pkg/reqid"
	"github.com/shashiranjanraj/kproduct/pkg/response"
	"github.com/shashiranjanraj/kproduct/pkg/router"
	"github.com/shashiranjanraj/kproduct/pkg/sse"
	"github.com/shashiranjanraj/kproduct/pkg/workerpool"
	"github.com/shashiranjanraj/kproduct/pkg/ws"
	"gorm.io/gorm"
)

// Options tunes the kernel. A zero value runs without authentication and
// with synchronous event delivery.
type Options struct {
	// JWTSecret enables bearer authentication on /api when non-empty.
	JWTSecret string
	// EventWorkers is the size of the event delivery pool. Zero delivers
	// events on the request goroutine.
	EventWorkers int
	// RateLimit is the per-client request budget per minute. Zero disables it.
	RateLimit int
}

// OptionsFromConfig reads Options from the environment.
func OptionsFromConfig() Options {
	return Options{
		JWTSecret:    config.JWTSecret(),
		EventWorkers: config.Int("EVENT_WORKERS", 4),
		RateLimit:    config.RateLimitPerMinute(),
	}
}

// Kernel owns the router and everything the routes depend on.
type Kernel struct {
	Router   *router.Router
	Services *services.Services
	Events   *event.Dispatcher
	Hub      *ws.Hub
	Stream   *sse.Broker

	db    *gorm.DB
	cache *cache.Store
	pool  *workerpool.Pool
}

// New builds the kernel over db and store. store may be nil.
func New(db *gorm.DB, store *cache.Store, opts Options) (*Kernel, error) {
	if store == nil {
		store = cache.Disabled()
	}

	k := &Kernel{db: db, cache: store, Hub: ws.NewHub(), Stream: sse.NewBroker()}
	if opts.EventWorkers > 0 {
		k.pool = workerpool.NewNamed("events", opts.EventWorkers)
	}
	k.Events = event.NewDispatcher(k.pool)
	k.Events.Listen(event.Wildcard, k.Hub.Notify)
	k.Events.Listen(event.Wildcard, k.Stream.Notify)
	k.Services = services.New(db, store, k.Events)

	schema, err := graphql.Build(k.Services)
	if err != nil {
		return nil, err
	}

	r := router.New()

	// Global middleware, outermost first. chi requires these before any
	// route is mounted.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", k.health)
	r.Get("/graphql", "graphql.query", graphql.Handler(schema))
	r.Post("/graphql", "graphql", graphql.Handler(schema))
	r.Handle(http.MethodGet, "/ws/alerts", "alerts", k.Hub)
	r.Handle(http.MethodGet, "/sse/alerts", "alerts.sse", k.Stream)

	var guard []router.Middleware
	if opts.JWTSecret != "" {
		guard = append(guard, middleware.Auth(opts.JWTSecret))
	}
	routes.RegisterAPI(r, k.Services, guard...)

	k.Router = r
	return k, nil
}

func (k *Kernel) Handler() http.Handler { return k.Router.Handler() }

// Run drives the alert hub until ctx is cancelled.
func (k *Kernel) Run(ctx context.Context) { k.Hub.Run(ctx) }

// Close drains queued event deliveries.
func (k *Kernel) Close() {
	if k.pool != nil {
		k.pool.Shutdown()
	}
}

type componentHealth struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthReport struct {
	Status     string                     `json:"status"`
	Components map[string]componentHealth `json:"components"`
}

// health reports UP when the database answers and the cache, if enabled,
// answers too.
func (k *Kernel) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	report := healthReport{Status: "UP", Components: map[string]componentHealth{}}
	check := func(name string, err error) {
		if err != nil {
			report.Status = "DOWN"
			report.Components[name] = componentHealth{Status: "DOWN", Error: err.Error()}
			return
		}
		report.Components[name] = componentHealth{Status: "UP"}
	}

	check("db", database.Ping(ctx, k.db))
	if k.cache.Enabled() {
		check("cache", k.cache.Ping(ctx))
	} else {
		report.Components["cache"] = componentHealth{Status: "DISABLED"}
	}

	status := http.StatusOK
	if report.Status != "UP" {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, report)
}
