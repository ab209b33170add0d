package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"demo-data-loader/internal/delivery"

	"github.com/redis/go-redis/v9"
)

const runsZKey = "ddl:runs"

// RedisStore keeps finished run reports so recent loads can be inspected.
// Only completed reports are written; nothing about in-flight runs is kept.
type RedisStore struct {
	rdb   *redis.Client
	ttl   time.Duration
	limit int
}

// NewRedisStore creates a store. Reports expire after ttl and the index is
// trimmed to the newest limit runs.
func NewRedisStore(rdb *redis.Client, ttl time.Duration, limit int) *RedisStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if limit <= 0 {
		limit = 100
	}
	return &RedisStore{rdb: rdb, ttl: ttl, limit: limit}
}

func runKey(id string) string {
	return fmt.Sprintf("ddl:run:%s", id)
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// RecordRun stores a finished report and indexes it by finish time.
func (s *RedisStore) RecordRun(ctx context.Context, rep delivery.Report, finished time.Time) error {
	if rep.RunID == "" {
		return errors.New("report has no run id")
	}
	b, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, runKey(rep.RunID), b, s.ttl)
	pipe.ZAdd(ctx, runsZKey, redis.Z{Score: float64(finished.UnixMilli()), Member: rep.RunID})
	// keep only the newest s.limit entries
	pipe.ZRemRangeByRank(ctx, runsZKey, 0, int64(-s.limit-1))
	_, err = pipe.Exec(ctx)
	return err
}

// RecentRuns returns up to n reports, newest first. Index entries whose
// report has expired are skipped.
func (s *RedisStore) RecentRuns(ctx context.Context, n int) ([]delivery.Report, error) {
	if n <= 0 {
		return []delivery.Report{}, nil
	}
	ids, err := s.rdb.ZRevRange(ctx, runsZKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]delivery.Report, 0, len(ids))
	for _, id := range ids {
		b, err := s.rdb.Get(ctx, runKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var rep delivery.Report
		if err := json.Unmarshal(b, &rep); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}

// GetRun returns one report by id.
func (s *RedisStore) GetRun(ctx context.Context, id string) (delivery.Report, bool, error) {
	b, err := s.rdb.Get(ctx, runKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return delivery.Report{}, false, nil
	}
	if err != nil {
		return delivery.Report{}, false, err
	}
	var rep delivery.Report
	if err := json.Unmarshal(b, &rep); err != nil {
		return delivery.Report{}, false, err
	}
	return rep, true, nil
}

// PruneExpired removes index entries whose report has already expired and
// returns how many were removed.
func (s *RedisStore) PruneExpired(ctx context.Context) (int, error) {
	ids, err := s.rdb.ZRange(ctx, runsZKey, 0, -1).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	pipe := s.rdb.Pipeline()
	exists := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		exists[i] = pipe.Exists(ctx, runKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	var stale []any
	for i, cmd := range exists {
		if cmd.Val() == 0 {
			stale = append(stale, ids[i])
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := s.rdb.ZRem(ctx, runsZKey, stale...).Err(); err != nil {
		return 0, err
	}
	return len(stale), nil
}
