package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"macrotrend-snapshot/internal/domain"
	"macrotrend-snapshot/internal/trend"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStalenessWindow = 24 * time.Hour
	// DefaultCycleTimeout bounds one shared fetch cycle, which outlives the
	// request that started it.
	DefaultCycleTimeout = 2 * time.Minute
	// DefaultMaxCredentials caps how many per-credential results are held.
	DefaultMaxCredentials = 256
	anonymousFingerprint  = "anonymous"
)

// ErrHistoryUnavailable is returned when no history repository is configured.
var ErrHistoryUnavailable = errors.New("macro history unavailable")

// FetchResolver runs one fetch cycle.
type FetchResolver interface {
	Resolve(ctx context.Context, credential string) (domain.FetchResult, error)
}

type HistoryRepository interface {
	UpsertSeries(ctx context.Context, schema string, series []domain.MonthlySnapshot, provenance domain.Provenance, fetchedAt time.Time) error
	History(ctx context.Context, schema string, limit int) ([]domain.HistoryPoint, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Dashboard is a fetch result with its derived trends.
type Dashboard struct {
	domain.FetchResult
	Trends domain.Trends `json:"trends"`
}

// DashboardService owns the current result per credential and refreshes it
// when it ages past the staleness window.
type DashboardService struct {
	tracer   trace.Tracer
	resolver FetchResolver
	schema   domain.Schema
	redis    RedisClient
	history  HistoryRepository
	window   time.Duration
	now      func() time.Time

	cycleTimeout   time.Duration
	maxCredentials int

	group   singleflight.Group
	mu      sync.Mutex
	current map[string]*atomic.Pointer[domain.FetchResult]
}

func NewDashboardService(
	tracer trace.Tracer,
	resolver FetchResolver,
	schema domain.Schema,
	redisClient RedisClient,
	history HistoryRepository,
	window time.Duration,
) *DashboardService {
	if window <= 0 {
		window = DefaultStalenessWindow
	}
	return &DashboardService{
		tracer:   tracer,
		resolver: resolver,
		schema:   schema,
		redis:    redisClient,
		history:  history,
		window:   window,
		now:      time.Now,
		current:  make(map[string]*atomic.Pointer[domain.FetchResult]),

		cycleTimeout:   DefaultCycleTimeout,
		maxCredentials: DefaultMaxCredentials,
	}
}

// Schema returns the configured indicator schema.
func (s *DashboardService) Schema() domain.Schema {
	return s.schema
}

// Snapshot returns the current dashboard for the credential, refreshing it if
// it is missing or stale.
func (s *DashboardService) Snapshot(ctx context.Context, credential string) (*Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard-service.snapshot")
	defer span.End()

	fp := Fingerprint(credential)
	span.SetAttributes(attribute.String("fingerprint", fp))

	if res := s.slot(fp).Load(); res != nil && s.fresh(res) {
		span.SetAttributes(attribute.String("source", "memory"))
		return s.dashboard(res), nil
	}

	if s.redis != nil {
		cached, err := s.getCache(ctx, fp)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil && s.fresh(cached) {
			s.slot(fp).Store(cached)
			span.SetAttributes(attribute.String("source", "redis"))
			return s.dashboard(cached), nil
		}
	}

	span.SetAttributes(attribute.String("source", "resolver"))
	return s.Refresh(ctx, credential)
}

// Refresh forces a fetch cycle. Concurrent refreshes for the same credential
// share one cycle. The cycle is detached from ctx: a caller that goes away
// gets ctx.Err() while the cycle completes for everyone else.
func (s *DashboardService) Refresh(ctx context.Context, credential string) (*Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard-service.refresh")
	defer span.End()

	fp := Fingerprint(credential)
	ch := s.group.DoChan(fp, func() (any, error) {
		cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cycleTimeout)
		defer cancel()
		return s.cycle(cycleCtx, fp, credential)
	})

	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		return nil, ctx.Err()
	case r := <-ch:
		span.SetAttributes(attribute.Bool("shared", r.Shared))
		if r.Err != nil {
			span.RecordError(r.Err)
			return nil, r.Err
		}
		return s.dashboard(r.Val.(*domain.FetchResult)), nil
	}
}

// History returns stored macro points, newest first.
func (s *DashboardService) History(ctx context.Context, limit int) ([]domain.HistoryPoint, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard-service.history")
	defer span.End()

	if s.history == nil {
		return nil, ErrHistoryUnavailable
	}
	return s.history.History(ctx, s.schema.Name, limit)
}

func (s *DashboardService) cycle(ctx context.Context, fp, credential string) (*domain.FetchResult, error) {
	start := s.now()
	res, err := s.resolver.Resolve(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("resolve dashboard: %w", err)
	}
	if res.FetchedAt.IsZero() {
		res.FetchedAt = s.now()
	}
	s.slot(fp).Store(&res)

	if s.redis != nil {
		if err := s.setCache(ctx, fp, &res); err != nil {
			log.Printf("redis cache write error: %v", err)
		}
	}
	if s.history != nil {
		if err := s.history.UpsertSeries(ctx, res.Schema, res.MacroData, res.MacroProvenance, res.FetchedAt); err != nil {
			log.Printf("macro history write error: %v", err)
		}
	}

	log.Printf("Refreshed dashboard %s in %s (macro=%s companies=%s indices=%s error=%q)",
		fp, s.now().Sub(start).Round(time.Millisecond), res.MacroProvenance, res.CompanyProvenance, res.IndexProvenance, res.ErrorType)
	return &res, nil
}

func (s *DashboardService) slot(fp string) *atomic.Pointer[domain.FetchResult] {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.current[fp]
	if !ok {
		if len(s.current) >= s.maxCredentials {
			s.evictLocked()
		}
		p = new(atomic.Pointer[domain.FetchResult])
		s.current[fp] = p
	}
	return p
}

// evictLocked drops stale results, then the oldest ones until there is room
// for one more credential. Callers hold s.mu.
func (s *DashboardService) evictLocked() {
	for fp, p := range s.current {
		if res := p.Load(); res != nil && !s.fresh(res) {
			delete(s.current, fp)
		}
	}
	for len(s.current) >= s.maxCredentials {
		var (
			oldestFP string
			oldestAt time.Time
			found    bool
		)
		for fp, p := range s.current {
			var at time.Time
			if res := p.Load(); res != nil {
				at = res.FetchedAt
			}
			if !found || at.Before(oldestAt) {
				oldestFP, oldestAt, found = fp, at, true
			}
		}
		delete(s.current, oldestFP)
	}
}

func (s *DashboardService) fresh(res *domain.FetchResult) bool {
	return s.now().Sub(res.FetchedAt) < s.window
}

func (s *DashboardService) dashboard(res *domain.FetchResult) *Dashboard {
	out := res.Clone()
	return &Dashboard{FetchResult: out, Trends: trend.Calculate(s.schema, out.MacroData)}
}

func (s *DashboardService) cacheKey(fp string) string {
	return "dashboard:" + s.schema.Name + ":" + fp
}

func (s *DashboardService) getCache(ctx context.Context, fp string) (*domain.FetchResult, error) {
	raw, err := s.redis.Get(ctx, s.cacheKey(fp)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res domain.FetchResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, err
	}
	if res.Schema != s.schema.Name {
		return nil, nil
	}
	return &res, nil
}

func (s *DashboardService) setCache(ctx context.Context, fp string, res *domain.FetchResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, s.cacheKey(fp), data, s.window).Err()
}

// Fingerprint identifies a credential without retaining it.
func Fingerprint(credential string) string {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return anonymousFingerprint
	}
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:8])
}
