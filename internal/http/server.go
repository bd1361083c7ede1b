package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cashflow/internal/cache"
	"cashflow/internal/core"
	"cashflow/internal/log"
	"cashflow/internal/middleware/ratelimit"
	"cashflow/internal/middleware/security"
	"cashflow/internal/middleware/trace"
	"cashflow/internal/services"
)

// Services bundles what the handlers call. StatsCache and Ready are optional.
type Services struct {
	Thresholds *services.ThresholdService
	Alerts     *services.AlertService
	Stats      *services.StatsService
	StatsCache *cache.StatsCache
	Expenses   *services.ExpenseService
	Accounts   *services.AccountService
	Ready      func(ctx context.Context) error
}

// Options tunes the server's limits.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	TrendMonthsDefault int
	TrendMonthsMax     int
}

type Server struct {
	http.Server
	svc     Services
	opts    Options
	logger  *log.Logger
	now     func() time.Time
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	guard   *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(opts Options, svc Services, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.TrendMonthsDefault <= 0 {
		opts.TrendMonthsDefault = 6
	}
	if opts.TrendMonthsMax < opts.TrendMonthsDefault {
		opts.TrendMonthsMax = opts.TrendMonthsDefault
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		svc:    svc,
		opts:   opts,
		logger: logger,
		now:    time.Now,
		guard:  security.NewDetector(logger),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}
	s.tracer = trace.NewMiddleware(s.guard.ExtractClientIP, logger)

	mux := http.NewServeMux()
	s.routes(mux)

	limit := s.limiter.Middleware(s.guard.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	}, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Addr = opts.Addr
	s.Handler = s.tracer.Middleware(headers.Middleware(s.guard.Middleware(limit(mux))))
	s.ReadHeaderTimeout = 10 * time.Second
	s.ReadTimeout = 30 * time.Second
	s.WriteTimeout = 30 * time.Second
	s.IdleTimeout = 120 * time.Second
	return s
}

// WithClock replaces the time source used for defaults such as the current month.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /api/users", s.handleCreateUser)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)

	mux.HandleFunc("POST /api/thresholds", s.handleCreateThreshold)
	mux.HandleFunc("GET /api/thresholds/{id}", s.handleGetThreshold)
	mux.HandleFunc("PUT /api/thresholds/{id}", s.handleUpdateThreshold)
	mux.HandleFunc("DELETE /api/thresholds/{id}", s.handleDeleteThreshold)
	mux.HandleFunc("PATCH /api/thresholds/{id}/toggle", s.handleToggleThreshold)
	mux.HandleFunc("GET /api/thresholds/user/{userId}", s.handleListThresholds)
	mux.HandleFunc("GET /api/thresholds/user/{userId}/active", s.handleActiveThresholds)
	mux.HandleFunc("GET /api/thresholds/user/{userId}/overall", s.handleOverallThreshold)
	mux.HandleFunc("GET /api/thresholds/alerts/{userId}", s.handleCurrentAlerts)
	mux.HandleFunc("GET /api/thresholds/check/{userId}", s.handleCheckAlerts)

	mux.HandleFunc("GET /api/stats/monthly/{userId}", s.handleMonthlyStats)
	mux.HandleFunc("GET /api/stats/trends/{userId}", s.handleTrends)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("No route for " + r.Method + " " + r.URL.Path).Write(w)
	})
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.Ready(ctx); err != nil {
			s.logger.WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			ErrorResponse(http.StatusServiceUnavailable, "not ready").Write(w)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	NewResponse().Data(map[string]any{
		"requests":   s.tracer.GetMetrics(),
		"rateLimit":  s.limiter.GetMetrics(),
		"security":   s.guard.GetMetrics(),
		"statsCache": s.svc.StatsCache != nil,
	}).Write(w)
}
