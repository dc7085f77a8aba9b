package neo4jdal

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"socialbench/biz/model/benchmark"
)

// Executor 基于 Neo4j driver 实现图后端的计时查询执行。
// 每次调用使用独立的只读 session，不持有跨查询状态。
type Executor struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewExecutor 创建一个新的图执行器实例。
func NewExecutor(driver neo4j.DriverWithContext, logger *zap.Logger) *Executor {
	return &Executor{driver: driver, logger: logger}
}

// Name 返回报告中使用的后端名。
func (e *Executor) Name() string {
	return benchmark.BackendNeo4j
}

// Execute 执行一条 Cypher 模式查询并返回耗时（秒）与收集到的记录数。
// 使用 ExecuteRead 在读事务中执行，计时覆盖提交到全部记录收集完成。
func (e *Executor) Execute(ctx context.Context, query string, params map[string]any) (float64, int, error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	start := time.Now()
	collected, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, fmt.Errorf("neo4jdal: 运行图查询失败: %w", err)
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("neo4jdal: 收集图查询结果失败: %w", err)
		}
		return records, nil
	})
	if err != nil {
		return 0, 0, err
	}
	elapsed := time.Since(start).Seconds()

	records, ok := collected.([]*neo4j.Record)
	if !ok {
		return 0, 0, fmt.Errorf("neo4jdal: 事务返回了非预期的结果类型")
	}
	return elapsed, len(records), nil
}

// CoerceID 图后端的节点 id 属性本身就是字符串，原样返回。
func (e *Executor) CoerceID(id string) any {
	return id
}
