package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mburgan/gutcheck-backend/internal/logger"
	"github.com/mburgan/gutcheck-backend/internal/modules/analysis"
)

// ReportCache stores model-quality reports per user. Keying by user id with
// explicit invalidation on each new run keeps one user's analysis from ever
// surfacing for another.
type ReportCache interface {
	Put(ctx context.Context, userID uuid.UUID, reports []analysis.ModelQualityReport) error
	Get(ctx context.Context, userID uuid.UUID) ([]analysis.ModelQualityReport, bool, error)
	Invalidate(ctx context.Context, userID uuid.UUID) error
	Close() error
}

type reportCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// NewReportCache connects to redis via REDIS_ADDR.
func NewReportCache(log *logger.Logger, ttl time.Duration) (ReportCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &reportCache{
		log: log.With("service", "RedisReportCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func cacheKey(userID uuid.UUID) string {
	return "ml:reports:" + userID.String()
}

func (c *reportCache) Put(ctx context.Context, userID uuid.UUID, reports []analysis.ModelQualityReport) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("report cache not initialized")
	}
	raw, err := json.Marshal(reports)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(userID), raw, c.ttl).Err()
}

func (c *reportCache) Get(ctx context.Context, userID uuid.UUID) ([]analysis.ModelQualityReport, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, fmt.Errorf("report cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, cacheKey(userID)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var reports []analysis.ModelQualityReport
	if err := json.Unmarshal(raw, &reports); err != nil {
		c.log.Warn("Dropping undecodable cached reports", "user_id", userID, "error", err)
		return nil, false, nil
	}
	return reports, true, nil
}

func (c *reportCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("report cache not initialized")
	}
	return c.rdb.Del(ctx, cacheKey(userID)).Err()
}

func (c *reportCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// memoryReportCache backs the same interface with a process-local map for
// deployments without redis. Still keyed per user.
type memoryReportCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]analysis.ModelQualityReport
}

func NewMemoryReportCache() ReportCache {
	return &memoryReportCache{entries: map[uuid.UUID][]analysis.ModelQualityReport{}}
}

func (c *memoryReportCache) Put(_ context.Context, userID uuid.UUID, reports []analysis.ModelQualityReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]analysis.ModelQualityReport, len(reports))
	copy(cp, reports)
	c.entries[userID] = cp
	return nil
}

func (c *memoryReportCache) Get(_ context.Context, userID uuid.UUID) ([]analysis.ModelQualityReport, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	reports, ok := c.entries[userID]
	if !ok {
		return nil, false, nil
	}
	cp := make([]analysis.ModelQualityReport, len(reports))
	copy(cp, reports)
	return cp, true, nil
}

func (c *memoryReportCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

func (c *memoryReportCache) Close() error { return nil }
