package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/auth"
	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/report"
	"bilancio/internal/storage"
)

const (
	monthCacheSize = 256
	monthCacheTTL  = 5 * time.Minute

	// readTimeout bounds store reads behind cached endpoints
	readTimeout = 7 * time.Second
)

// ReportPublisher queues monthly report export requests. A nil
// publisher disables the export endpoint.
type ReportPublisher interface {
	PublishReportRequest(ctx context.Context, msg *amqp.ReportRequest) error
}

type identityKey struct{}

// IdentityFrom returns the authenticated caller stored by the auth
// middleware.
func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(auth.Identity)
	return identity, ok
}

// Server is the JSON API for incomes, bills, categories and month
// views. It embeds http.Server so callers tune timeouts directly.
type Server struct {
	http.Server
	store     storage.Store
	provider  auth.Provider
	publisher ReportPublisher
	logger    *log.Logger

	// Month views are cached per user; a generation counter per user
	// invalidates them wholesale on any write.
	monthCache   cache.Cache[core.MonthView]
	cacheManager *cache.Manager
	genMu        sync.Mutex
	cacheGen     map[int64]uint64
	cacheHits    int64
	cacheMisses  int64

	traceMW  *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector

	startTime    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run server listening on addr.
func NewServer(addr string, store storage.Store, provider auth.Provider, publisher ReportPublisher, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	limiter := ratelimit.NewLimiter(ratelimit.DefaultConfig())
	traceMW := trace.NewMiddleware(detector.ExtractClientIP)

	monthCache := cache.NewLRUCache[core.MonthView](monthCacheSize, monthCacheTTL)
	manager := cache.NewManager()
	manager.Register(monthCache)
	manager.StartCleanup(10 * time.Minute)

	s := &Server{
		store:        store,
		provider:     provider,
		publisher:    publisher,
		logger:       logger,
		monthCache:   monthCache,
		cacheManager: manager,
		cacheGen:     make(map[int64]uint64),
		traceMW:      traceMW,
		limiter:      limiter,
		detector:     detector,
		startTime:    time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/api/login", s.handleLogin)
	mux.HandleFunc("/api/incomes", s.handleIncomes)
	mux.HandleFunc("/api/incomes/{id}", s.handleIncomeByID)
	mux.HandleFunc("/api/bills", s.handleBills)
	mux.HandleFunc("/api/bills/{id}", s.handleBillByID)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/categories/{id}", s.handleCategoryByID)
	mux.HandleFunc("/api/months/{year}/{month}", s.handleMonth)
	mux.HandleFunc("/api/months/{year}/{month}/export", s.handleMonthExport)

	// Middleware chain, outermost first: context logger, tracing,
	// rate limiting, security, auth.
	var handler http.Handler = mux
	handler = s.authMiddleware(handler)
	handler = s.securityMiddleware(handler)
	handler = limiter.Middleware(detector.ExtractClientIP, nil)(handler)
	handler = traceMW.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}
	return s
}

// authBypass lists paths served without authentication.
func authBypass(path string) bool {
	switch path {
	case "/healthz", "/readyz", "/metrics", "/api/login":
		return true
	}
	return false
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authBypass(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := s.provider.Authenticate(r)
		if err != nil {
			if !errors.Is(err, auth.ErrUnauthorized) {
				s.logger.ErrorContext(r.Context(), "Authentication backend error", log.FieldError, err)
				InternalServerError("authentication unavailable").Write(w)
				return
			}
			UnauthorizedError().Write(w)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) securityMiddleware(next http.Handler) http.Handler {
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	withHeaders := headers.Middleware(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WarnContext(r.Context(), "Rejected suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
			BadRequestError("request rejected").Write(w)
			return
		}
		withHeaders.ServeHTTP(w, r)
	})
}

// Shutdown stops the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.ErrorContext(r.Context(), "Readiness check failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics reports application and security counters in a
// Prometheus-like plain text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMW.GetMetrics()
	rateMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	cacheHits := atomic.LoadInt64(&s.cacheHits)
	cacheMisses := atomic.LoadInt64(&s.cacheMisses)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_request_duration_average_us Average request duration in microseconds\n")
	fmt.Fprintf(w, "# TYPE http_request_duration_average_us gauge\n")
	fmt.Fprintf(w, "http_request_duration_average_us %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP month_cache_hits_total Total month view cache hits\n")
	fmt.Fprintf(w, "# TYPE month_cache_hits_total counter\n")
	fmt.Fprintf(w, "month_cache_hits_total %d\n\n", cacheHits)

	fmt.Fprintf(w, "# HELP month_cache_misses_total Total month view cache misses\n")
	fmt.Fprintf(w, "# TYPE month_cache_misses_total counter\n")
	fmt.Fprintf(w, "month_cache_misses_total %d\n\n", cacheMisses)

	fmt.Fprintf(w, "# HELP month_cache_entries Current month view cache entries\n")
	fmt.Fprintf(w, "# TYPE month_cache_entries gauge\n")
	fmt.Fprintf(w, "month_cache_entries %d\n\n", s.monthCache.Size())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE rate_limit_clients gauge\n")
	fmt.Fprintf(w, "rate_limit_clients %d\n\n", rateMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.startTime).Seconds())
}

// monthCacheKey builds the cache key for one user month under the
// user's current generation.
func (s *Server) monthCacheKey(userID int64, year, month int) string {
	s.genMu.Lock()
	gen := s.cacheGen[userID]
	s.genMu.Unlock()
	return strconv.FormatInt(userID, 10) + ":" + strconv.FormatUint(gen, 10) +
		":" + fmt.Sprintf("%04d-%02d", year, month)
}

// invalidateUserMonths orphans every cached month view of the user.
// A recurring definition touches arbitrarily many months, so per-key
// deletion cannot work; orphans age out via TTL and LRU pressure.
func (s *Server) invalidateUserMonths(userID int64) {
	s.genMu.Lock()
	s.cacheGen[userID]++
	s.genMu.Unlock()
}

func (s *Server) getMonthView(ctx context.Context, userID int64, year, month int) (core.MonthView, error) {
	key := s.monthCacheKey(userID, year, month)

	if view, found := s.monthCache.Get(key); found {
		atomic.AddInt64(&s.cacheHits, 1)
		s.logger.DebugContext(ctx, "Month view cache hit",
			log.FieldUserID, userID,
			log.FieldYear, year,
			log.FieldMonth, month)
		return view, nil
	}
	atomic.AddInt64(&s.cacheMisses, 1)

	cctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	view, err := report.BuildMonthView(cctx, s.store, userID, year, month)
	if err != nil {
		return core.MonthView{}, err
	}

	s.monthCache.Set(key, view)
	s.logger.DebugContext(ctx, "Month view cached",
		log.FieldUserID, userID,
		log.FieldYear, year,
		log.FieldMonth, month,
		log.FieldCount, len(view.Items))
	return view, nil
}
