package cache

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"workboard/internal/config"
	"workboard/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CountsKey is the hash holding one field per partition table.
const CountsKey = "workboard:partition_counts"

// Redis mirrors partition record counts for dashboards and other processes.
// When the server cannot be reached at startup every call becomes a no-op.
type Redis struct {
	client *redis.Client
	log    *zap.Logger

	warnedUnavailable atomic.Bool
}

func NewRedis(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) *Redis {
	log = logger.OrNop(log).Named("cache")
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, bypassing count mirror", zap.String("addr", cfg.Addr()), zap.Error(err))
		_ = client.Close()
		return &Redis{client: nil, log: log}
	}

	return &Redis{client: client, log: log}
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil || r.log == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.log.Warn("redis unavailable, bypassing count mirror", zap.Error(err))
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Healthy(ctx context.Context) bool {
	return r.Ping(ctx) == nil
}

func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) IncrPartition(ctx context.Context, table string, delta int64) error {
	if r.isUnavailable() {
		return nil
	}
	if err := r.client.HIncrBy(ctx, CountsKey, table, delta).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// SetPartitions replaces the whole hash with counts.
func (r *Redis) SetPartitions(ctx context.Context, counts map[string]int64) error {
	if r.isUnavailable() {
		return nil
	}
	fields := make(map[string]any, len(counts))
	for table, n := range counts {
		fields[table] = n
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, CountsKey)
		if len(fields) > 0 {
			pipe.HSet(ctx, CountsKey, fields)
		}
		return nil
	})
	if err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// Counts reads the mirrored hash back. Unparseable fields are skipped.
func (r *Redis) Counts(ctx context.Context) (map[string]int64, error) {
	if r.isUnavailable() {
		return map[string]int64{}, nil
	}
	raw, err := r.client.HGetAll(ctx, CountsKey).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for table, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[table] = n
	}
	return out, nil
}
