package reportstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"socialbench/biz/model/benchmark"
)

const (
	// DefaultReportTTL 报告的默认保留时间。
	DefaultReportTTL = 24 * time.Hour
	// DefaultTTLJitterPercent TTL Jitter 百分比，例如 0.1 表示在基础 TTL 上增加 0% 到 10% 的随机时间，
	// 避免同一批报告同时过期。
	DefaultTTLJitterPercent = 0.1
)

// redisStore 实现了 Store 接口，把报告以 JSON 形式保存在 Redis 中。
type redisStore struct {
	client *redis.Client
	prefix string // 区分不同部署的 key 前缀
}

// NewRedisStore 创建一个新的 Redis 报告存储实例。
func NewRedisStore(client *redis.Client, prefix string) (Store, error) {
	if client == nil {
		return nil, errors.New("reportstore: redis client cannot be nil")
	}
	return &redisStore{client: client, prefix: prefix}, nil
}

func (s *redisStore) key(runID string) string {
	return fmt.Sprintf("%sreport:%s", s.prefix, runID)
}

// Save 序列化报告并写入 Redis，TTL 附加随机 Jitter。
func (s *redisStore) Save(ctx context.Context, report *benchmark.BenchmarkReport, ttl time.Duration) error {
	if report == nil {
		return ErrNilReport
	}
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("reportstore: failed to marshal report %s: %w", report.RunID, err)
	}

	key := s.key(report.RunID)
	if err := s.client.Set(ctx, key, data, addJitter(ttl)).Err(); err != nil {
		return fmt.Errorf("reportstore: redis set failed for key %s: %w", key, err)
	}
	return nil
}

// Get 按 RunID 读取并反序列化报告。
func (s *redisStore) Get(ctx context.Context, runID string) (*benchmark.BenchmarkReport, error) {
	key := s.key(runID)
	val, err := s.client.Get(ctx, key).Result()

	if errors.Is(err, redis.Nil) {
		// Key 不存在
		return nil, ErrNotFound
	} else if err != nil {
		// 其他 Redis 错误
		return nil, fmt.Errorf("reportstore: redis get failed for key %s: %w", key, err)
	}

	var report benchmark.BenchmarkReport
	if err := json.Unmarshal([]byte(val), &report); err != nil {
		// 数据损坏，尝试删除这个 key
		s.client.Del(ctx, key)
		return nil, fmt.Errorf("reportstore: failed to unmarshal report for key %s: %w", key, err)
	}
	return &report, nil
}

// Delete 按 RunID 删除报告。
func (s *redisStore) Delete(ctx context.Context, runID string) error {
	key := s.key(runID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reportstore: redis del failed for key %s: %w", key, err)
	}
	return nil
}

// addJitter 在基础 TTL 上附加按比例的随机时间。
func addJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	jitter := time.Duration(rand.Float64() * DefaultTTLJitterPercent * float64(ttl))
	return ttl + jitter
}
