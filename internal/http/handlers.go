package http

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"spendview/internal/cache"
	"spendview/internal/core"
	"spendview/internal/dashboard"
	"spendview/internal/filter"
	"spendview/internal/loader"
	"spendview/internal/log"
	"spendview/internal/middleware/ratelimit"
	"spendview/internal/middleware/security"
	"spendview/internal/middleware/trace"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	}).Write(w, r)
}

// handleReady reports 503 until the first load has finished.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	snap := s.loader.Snapshot()
	checks := map[string]any{
		"loaded":     snap.Ready,
		"generation": snap.Generation,
	}
	if snap.Error != "" {
		checks["last_error"] = snap.Error
	}

	status, code := "ready", http.StatusOK
	if !snap.Ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	NewJSONResponse(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Status(code).Write(w, r)
}

// ensureLoaded runs a pending load, bounded by the server load timeout.
// A failed load is recorded by the loader and surfaces in View.Error.
func (s *Server) ensureLoaded(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()
	if err := s.loader.Load(ctx); err != nil {
		log.FromContext(ctx).DebugContext(ctx, "Load before render failed", log.FieldError, err)
	}
}

// constraints returns the per-request filter when the query names record
// fields, otherwise the server-wide one.
func (s *Server) constraints(r *http.Request) ([]filter.Constraint, error) {
	q := r.URL.Query()
	if len(q) == 0 {
		return s.filter.Constraints(), nil
	}
	cs, err := filter.FromQuery(q)
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 {
		return s.filter.Constraints(), nil
	}
	return cs, nil
}

// view loads if stale and returns the cached or freshly built view with
// its entity tag. ok is false when a response has already been written.
func (s *Server) view(w http.ResponseWriter, r *http.Request) (dashboard.View, string, bool) {
	ctx := r.Context()
	cs, err := s.constraints(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return dashboard.View{}, "", false
	}

	s.ensureLoaded(ctx)
	snap := s.loader.Snapshot()

	key := viewKey(snap.Generation, filter.Key(cs), s.builder.Day())
	v, hit := s.views.Get(key)
	if !hit {
		v = s.builder.Build(snap.Records, cs)
		for _, d := range v.Diagnostics {
			log.FromContext(ctx).WarnContext(ctx, "Skipping malformed record",
				log.FieldRecordID, d.RecordID,
				"field", d.Field,
				"value", d.Value,
				log.FieldError, d.Message)
		}
		s.views.Set(key, v)
	}
	v.Error = snap.Error

	etag := entityTag(snap.Generation, key+"|"+snap.Error)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return dashboard.View{}, "", false
	}
	return v, etag, true
}

func viewKey(generation uint64, filterKey, day string) string {
	return fmt.Sprintf("%d|%s|%s", generation, filterKey, day)
}

func entityTag(generation uint64, key string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return fmt.Sprintf(`W/"%d-%x"`, generation, h.Sum64())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.view(w, r)
	if !ok {
		return
	}
	NewJSONResponse(v).Write(w, r)
}

func (s *Server) handleGrouped(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.view(w, r)
	if !ok {
		return
	}
	NewJSONResponse(v.GroupedByDate).Write(w, r)
}

type amountsResponse struct {
	Items   dashboard.DayTotals `json:"items"`
	ByLabel map[string]string   `json:"byLabel"`
}

func (s *Server) handleAmounts(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.view(w, r)
	if !ok {
		return
	}
	NewJSONResponse(amountsResponse{
		Items:   v.AmountsByDate,
		ByLabel: v.AmountsByDateMap(),
	}).Write(w, r)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.view(w, r)
	if !ok {
		return
	}
	NewJSONResponse(v.Categories).Write(w, r)
}

type budgetResponse struct {
	dashboard.BudgetStatus
	TotalSpentFormatted       string `json:"totalSpentFormatted"`
	RemainingFormatted        string `json:"remainingFormatted"`
	PercentRemainingFormatted string `json:"percentRemainingFormatted"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	v, _, ok := s.view(w, r)
	if !ok {
		return
	}
	NewJSONResponse(budgetResponse{
		BudgetStatus:              v.Budget,
		TotalSpentFormatted:       v.TotalSpentFormatted,
		RemainingFormatted:        v.BudgetRemainingFormatted,
		PercentRemainingFormatted: v.BudgetPercentRemainingFormatted,
	}).Write(w, r)
}

// handleCategories lists the registry. The tag follows the load generation
// since only a load repopulates the registry.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.ensureLoaded(r.Context())

	etag := fmt.Sprintf(`W/"categories-%d"`, s.loader.Generation())
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	NewJSONResponse(s.loader.Registry().Entries()).Write(w, r)
}

type statusResponse struct {
	loader.Snapshot
	Filter    []filter.Constraint       `json:"filter"`
	Cache     cache.Stats               `json:"cache"`
	RateLimit ratelimit.Metrics         `json:"rateLimit"`
	Requests  trace.Metrics             `json:"requests"`
	Security  security.DetectionMetrics `json:"security"`
	Uptime    string                    `json:"uptime"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse(statusResponse{
		Snapshot:  s.loader.Snapshot(),
		Filter:    s.filter.Constraints(),
		Cache:     s.views.Stats(),
		RateLimit: s.rateLimiter.GetMetrics(),
		Requests:  s.traceMiddleware.GetMetrics(),
		Security:  s.securityDetector.GetMetrics(),
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
	}).Write(w, r)
}

// handleRefresh marks the data stale and loads it synchronously.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.loader.NeedUpdate()

	ctx, cancel := context.WithTimeout(r.Context(), s.loadTimeout)
	defer cancel()
	if err := s.loader.Load(ctx); err != nil {
		msg := s.loader.Snapshot().Error
		if msg == "" {
			msg = err.Error()
		}
		BadGatewayError(msg).Write(w, r)
		return
	}
	NewJSONResponse(s.loader.Snapshot()).Write(w, r)
}

type filterResponse struct {
	Filter []filter.Constraint `json:"filter"`
	Key    string              `json:"key"`
}

func (s *Server) writeFilter(w http.ResponseWriter, r *http.Request) {
	cs := s.filter.Constraints()
	if cs == nil {
		cs = []filter.Constraint{}
	}
	NewJSONResponse(filterResponse{Filter: cs, Key: filter.Key(cs)}).Write(w, r)
}

func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	s.writeFilter(w, r)
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	req, err := parseFilterRequest(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w, r)
		return
	}
	field, err := core.ParseField(req.Field)
	if err != nil {
		BadRequestError(fmt.Sprintf("%v: %q", err, req.Field)).Write(w, r)
		return
	}
	s.filter.Set(field, req.Value)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Filter updated",
		log.FieldFilter, filter.Key(s.filter.Constraints()))
	s.writeFilter(w, r)
}

func (s *Server) handleRemoveFilter(w http.ResponseWriter, r *http.Request) {
	field, err := core.ParseField(chi.URLParam(r, "field"))
	if errors.Is(err, core.ErrUnknownField) {
		NotFoundError(fmt.Sprintf("%v: %q", err, chi.URLParam(r, "field"))).Write(w, r)
		return
	}
	s.filter.Remove(field)
	s.writeFilter(w, r)
}

func (s *Server) handleClearFilter(w http.ResponseWriter, r *http.Request) {
	s.filter.Clear()
	s.writeFilter(w, r)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	snap := s.loader.Snapshot()
	cacheStats := s.views.Stats()
	traceMetrics := s.traceMiddleware.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()
	secMetrics := s.securityDetector.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_response_time_microseconds_avg", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	metric("expenses_loaded", "gauge", "Records in the current snapshot", snap.Count)
	metric("expenses_generation", "gauge", "Generation of the current snapshot", snap.Generation)
	metric("view_cache_hits_total", "counter", "Dashboard view cache hits", cacheStats.Hits)
	metric("view_cache_misses_total", "counter", "Dashboard view cache misses", cacheStats.Misses)
	metric("view_cache_entries", "gauge", "Cached dashboard views", cacheStats.Size)
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rateMetrics.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Suspicious requests rejected", secMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(time.Since(s.startedAt).Seconds()))
}
