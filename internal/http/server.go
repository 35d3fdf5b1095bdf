package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"spendview/internal/cache"
	"spendview/internal/dashboard"
	"spendview/internal/filter"
	"spendview/internal/loader"
	"spendview/internal/log"
	"spendview/internal/middleware/ratelimit"
	"spendview/internal/middleware/security"
	"spendview/internal/middleware/trace"
)

const (
	readHeaderTimeout  = 2 * time.Second
	defaultLoadTimeout = 7 * time.Second
	viewCacheSize      = 64
)

// Options configures the dashboard server.
type Options struct {
	Addr              string
	AllowedOrigins    []string
	TrustedProxies    []string
	CacheTTL          time.Duration
	RequestsPerMinute int
	LoadTimeout       time.Duration
}

// Server serves dashboard views as JSON.
type Server struct {
	http.Server

	loader  *loader.Loader
	builder *dashboard.Builder
	filter  *filter.Engine
	logger  *log.Logger

	views        *cache.LRUCache[dashboard.View]
	cacheManager *cache.Manager

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	loadTimeout time.Duration
	startedAt   time.Time
}

// NewServer wires routes and middleware. The engine holds the server-wide
// filter that the PUT/DELETE /api/filter endpoints mutate.
func NewServer(opts Options, ld *loader.Loader, builder *dashboard.Builder, engine *filter.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	if engine == nil {
		engine = filter.NewEngine()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}

	limiterCfg := ratelimit.DefaultConfig()
	if opts.RequestsPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RequestsPerMinute
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}
	s := &Server{
		loader:           ld,
		builder:          builder,
		filter:           engine,
		logger:           logger,
		views:            cache.NewLRUCache[dashboard.View](viewCacheSize, opts.CacheTTL),
		cacheManager:     cache.NewManager(logger.Logger),
		rateLimiter:      ratelimit.NewLimiter(limiterCfg),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		loadTimeout:      opts.LoadTimeout,
		startedAt:        time.Now(),
	}
	s.cacheManager.Register(s.views)
	s.cacheManager.StartCleanup(opts.CacheTTL)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(opts.AllowedOrigins),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func (s *Server) routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(s.traceMiddleware.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.securityDetector.Middleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "If-None-Match", trace.RequestIDHeader},
		ExposedHeaders: []string{"ETag", trace.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	}).Handler)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		TooManyRequestsError().Write(w, r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(security.NoStore)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/expenses/grouped", s.handleGrouped)
		r.Get("/expenses/amounts", s.handleAmounts)
		r.Get("/categories/summary", s.handleCategorySummary)
		r.Get("/budget", s.handleBudget)
		r.Get("/categories", s.handleCategories)
		r.Get("/status", s.handleStatus)
		r.Get("/filter", s.handleGetFilter)

		r.Group(func(r chi.Router) {
			r.Use(limited)
			r.Post("/refresh", s.handleRefresh)
			r.Put("/filter", s.handleSetFilter)
			r.Delete("/filter/{field}", s.handleRemoveFilter)
			r.Delete("/filter", s.handleClearFilter)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w, r)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed)).Write(w, r)
	})

	return r
}

// Shutdown stops background workers and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	s.cacheManager.Stop()
	return s.Server.Shutdown(ctx)
}
