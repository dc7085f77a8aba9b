package pgdal

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"socialbench/biz/model/benchmark"
)

// SampleLoader 从关系库抓取有界的实体样本，驱动基准测试的随机输入。
// 样本在一次运行开始时抓取一次，运行期间不再变化。
type SampleLoader struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewSampleLoader 创建一个新的 SampleLoader 实例。
func NewSampleLoader(pool *pgxpool.Pool, logger *zap.Logger) *SampleLoader {
	return &SampleLoader{pool: pool, logger: logger}
}

// SampleEntities 按种类抓取最多 limit 个实体快照。
func (l *SampleLoader) SampleEntities(ctx context.Context, kind benchmark.SampleKind, limit int) ([]benchmark.SampleEntity, error) {
	switch kind {
	case benchmark.KindUser:
		return l.sample(ctx, kind, `SELECT id, COALESCE(name, ''), COALESCE(email, '') FROM users LIMIT $1`, "email", limit)
	case benchmark.KindProduct:
		return l.sample(ctx, kind, `SELECT id, COALESCE(name, ''), COALESCE(category, '') FROM products LIMIT $1`, "category", limit)
	}
	return nil, fmt.Errorf("pgdal: 未知的样本种类: %q", kind)
}

func (l *SampleLoader) sample(ctx context.Context, kind benchmark.SampleKind, query, extraKey string, limit int) ([]benchmark.SampleEntity, error) {
	rows, err := l.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgdal: 抓取 %s 样本失败: %w", kind, err)
	}
	defer rows.Close()

	var out []benchmark.SampleEntity
	for rows.Next() {
		var id int64
		var name, extra string
		if err := rows.Scan(&id, &name, &extra); err != nil {
			return nil, fmt.Errorf("pgdal: 解析 %s 样本行失败: %w", kind, err)
		}
		out = append(out, benchmark.SampleEntity{
			// 报告和图后端都以字符串形式使用 id。
			ID:    strconv.FormatInt(id, 10),
			Name:  name,
			Extra: map[string]string{extraKey: extra},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgdal: 读取 %s 样本结果失败: %w", kind, err)
	}

	l.logger.Debug("样本抓取完成",
		zap.String("kind", string(kind)),
		zap.Int("count", len(out)),
	)
	return out, nil
}
