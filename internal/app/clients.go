package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/mburgan/gutcheck-backend/internal/clients/redis"
	"github.com/mburgan/gutcheck-backend/internal/logger"
)

type Clients struct {
	ReportCache redis.ReportCache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis is optional: without REDIS_ADDR the ML report cache falls back
	// to a per-user in-memory map.
	var cache redis.ReportCache
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		c, err := redis.NewReportCache(log, cfg.MLCacheTTL)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis report cache: %w", err)
		}
		cache = c
	} else {
		log.Info("REDIS_ADDR not set, using in-memory ML report cache")
		cache = redis.NewMemoryReportCache()
	}

	return Clients{ReportCache: cache}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.ReportCache != nil {
		_ = c.ReportCache.Close()
	}
}
