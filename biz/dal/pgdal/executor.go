package pgdal

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"socialbench/biz/model/benchmark"
)

// Executor 基于 pgx 连接池实现关系后端的计时查询执行。
// 只发起只读查询，不修改任何状态。
type Executor struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewExecutor 创建一个新的关系执行器实例。
func NewExecutor(pool *pgxpool.Pool, logger *zap.Logger) *Executor {
	return &Executor{pool: pool, logger: logger}
}

// Name 返回报告中使用的后端名。
func (e *Executor) Name() string {
	return benchmark.BackendPostgres
}

// Execute 执行一条参数化 SQL 并返回耗时（秒）与物化的行数。
// 计时覆盖提交到全部结果行读取完成；查询文本使用 @named 参数。
func (e *Executor) Execute(ctx context.Context, query string, params map[string]any) (float64, int, error) {
	start := time.Now()

	rows, err := e.pool.Query(ctx, query, pgx.NamedArgs(params))
	if err != nil {
		return 0, 0, fmt.Errorf("pgdal: 执行查询失败: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("pgdal: 读取查询结果失败: %w", err)
	}

	return time.Since(start).Seconds(), count, nil
}

// CoerceID 把字符串标识符转换为关系库的数字主键。
// 无法转换时按约定原样返回字符串并记录告警，不让运行失败。
func (e *Executor) CoerceID(id string) any {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		e.logger.Warn("标识符无法转换为数字，按字符串原样下发",
			zap.String("id", id),
		)
		return id
	}
	return n
}
