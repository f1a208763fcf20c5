package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const keyPrefix = "visit-planner:reports"

// ScopeAll is the scope of reports spanning every representative.
const ScopeAll = "all"

// ReportCache memoizes computed reports as JSON. Each scope (a rep id or
// ScopeAll) has a generation counter baked into its keys; invalidating a scope
// bumps the counter so older entries are never read again and expire by TTL.
//
// Cache errors never fail a request: a read error is treated as a miss and a
// write error is logged.
type ReportCache struct {
	kv  KVStore
	ttl time.Duration
	log *zap.Logger
}

// NewReportCache returns nil when kv is nil; a nil *ReportCache is a valid,
// always-missing cache.
func NewReportCache(kv KVStore, ttl time.Duration, log *zap.Logger) *ReportCache {
	if kv == nil {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportCache{kv: kv, ttl: ttl, log: log}
}

func (c *ReportCache) generation(ctx context.Context, scope string) string {
	gen, err := c.kv.Get(ctx, fmt.Sprintf("%s:gen:%s", keyPrefix, scope))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("report cache generation read failed", zap.String("scope", scope), zap.Error(err))
		}
		return "0"
	}
	return gen
}

func (c *ReportCache) key(ctx context.Context, report, scope, variant string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", keyPrefix, report, scope, c.generation(ctx, scope), variant)
}

// Get decodes the cached report into dst and reports whether it was found.
func (c *ReportCache) Get(ctx context.Context, report, scope, variant string, dst any) bool {
	if c == nil {
		return false
	}
	raw, err := c.kv.Get(ctx, c.key(ctx, report, scope, variant))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("report cache read failed", zap.String("report", report), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		c.log.Warn("report cache entry undecodable", zap.String("report", report), zap.Error(err))
		return false
	}
	return true
}

// Put stores value under the scope's current generation.
func (c *ReportCache) Put(ctx context.Context, report, scope, variant string, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("report cache encode failed", zap.String("report", report), zap.Error(err))
		return
	}
	if err := c.kv.Set(ctx, c.key(ctx, report, scope, variant), string(raw), c.ttl); err != nil {
		c.log.Warn("report cache write failed", zap.String("report", report), zap.Error(err))
	}
}

// Invalidate drops every cached report of the given scopes.
func (c *ReportCache) Invalidate(ctx context.Context, scopes ...string) {
	if c == nil {
		return
	}
	for _, scope := range scopes {
		if _, err := c.kv.Incr(ctx, fmt.Sprintf("%s:gen:%s", keyPrefix, scope)); err != nil {
			c.log.Warn("report cache invalidation failed", zap.String("scope", scope), zap.Error(err))
		}
	}
}

// Variant joins the parameters that distinguish one report request from another.
func Variant(asOf time.Time, threshold int) string {
	return asOf.Format("2006-01-02") + ":" + strconv.Itoa(threshold)
}
