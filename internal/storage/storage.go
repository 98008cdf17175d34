// Package storage keeps dashboard snapshots: the latest refresh result in
// memory, a bounded history for trend charts, an optional Redis cache so
// multiple replicas can serve the latest snapshot, and an optional S3
// archive for end-of-day retention.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ignite/exec-dashboard/internal/config"
	"github.com/ignite/exec-dashboard/internal/health"
	"github.com/ignite/exec-dashboard/internal/insight"
	"github.com/ignite/exec-dashboard/internal/kpi"
	"github.com/redis/go-redis/v9"
)

// snapshotCacheKey is the Redis key the serialized latest snapshot lives
// under.
const snapshotCacheKey = "exec-dashboard:snapshot:latest"

// Snapshot is one refresh cycle's complete dashboard state.
type Snapshot struct {
	GeneratedAt     time.Time                `json:"generated_at"`
	KPIs            []kpi.Classified         `json:"kpis"`
	HealthScore     health.CompositeScore    `json:"health_score"`
	Insights        []insight.Insight        `json:"insights"`
	Recommendations []insight.Recommendation `json:"recommendations"`
	Summary         insight.ExecutiveSummary `json:"executive_summary"`
}

// Storage holds snapshots with a simple create-read lifecycle. The mutex
// guards the latest pointer and history ring; Redis and S3 are best-effort
// layers on top and never fail a save.
type Storage struct {
	mu      sync.RWMutex
	latest  *Snapshot
	history []Snapshot
	maxHist int

	redis *redis.Client
	ttl   time.Duration
	aws   *S3Archiver
}

// New creates a Storage from configuration. Redis and S3 are attached only
// when enabled; the in-memory layer always works.
func New(ctx context.Context, cfg config.StorageConfig, redisCfg config.RedisConfig) (*Storage, error) {
	s := &Storage{maxHist: cfg.HistorySize, ttl: redisCfg.TTL()}

	if redisCfg.Enabled {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		if err := s.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis at %s: %w", redisCfg.Addr, err)
		}
	}

	if cfg.S3Enabled {
		archiver, err := NewS3Archiver(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSRegion, cfg.AWSProfile)
		if err != nil {
			return nil, fmt.Errorf("initializing S3 archiver: %w", err)
		}
		s.aws = archiver
	}

	return s, nil
}

// NewInMemory creates a Storage with no external layers, for tests and the
// demo source.
func NewInMemory(historySize int) *Storage {
	return &Storage{maxHist: historySize}
}

// Save records a snapshot as the latest, appends it to history, and
// propagates it to the cache and archive layers.
func (s *Storage) Save(ctx context.Context, snap Snapshot) {
	s.mu.Lock()
	s.latest = &snap
	s.history = append(s.history, snap)
	if s.maxHist > 0 && len(s.history) > s.maxHist {
		s.history = s.history[len(s.history)-s.maxHist:]
	}
	s.mu.Unlock()

	if s.redis != nil {
		if err := s.cacheSnapshot(ctx, snap); err != nil {
			log.Printf("[storage] caching snapshot: %v", err)
		}
	}
	if s.aws != nil {
		if err := s.aws.Archive(ctx, snap); err != nil {
			log.Printf("[storage] archiving snapshot: %v", err)
		}
	}
}

// Latest returns the most recent snapshot. When this replica has none in
// memory (fresh start, collector running elsewhere) it falls back to the
// Redis cache.
func (s *Storage) Latest(ctx context.Context) (Snapshot, bool) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest != nil {
		return *latest, true
	}
	if s.redis == nil {
		return Snapshot{}, false
	}

	data, err := s.redis.Get(ctx, snapshotCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[storage] reading cached snapshot: %v", err)
		}
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("[storage] decoding cached snapshot: %v", err)
		return Snapshot{}, false
	}
	return snap, true
}

// History returns up to limit recent snapshots, oldest first. limit <= 0
// returns everything retained.
func (s *Storage) History(limit int) []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hist := s.history
	if limit > 0 && len(hist) > limit {
		hist = hist[len(hist)-limit:]
	}
	out := make([]Snapshot, len(hist))
	copy(out, hist)
	return out
}

func (s *Storage) cacheSnapshot(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	return s.redis.Set(ctx, snapshotCacheKey, data, s.ttl).Err()
}

// Close releases the Redis connection if one is held.
func (s *Storage) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
