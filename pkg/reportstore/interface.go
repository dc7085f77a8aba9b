package reportstore

import (
	"context"
	"time"

	"socialbench/biz/model/benchmark"
)

// Store 定义基准测试报告的存取接口。
// 报告在运行结束后写入一次，之后只读；持久化策略由实现决定。
type Store interface {
	// Save 按 RunID 保存报告，ttl 为保留时间。
	Save(ctx context.Context, report *benchmark.BenchmarkReport, ttl time.Duration) error

	// Get 按 RunID 读取报告。
	// 不存在时返回 ErrNotFound。
	Get(ctx context.Context, runID string) (*benchmark.BenchmarkReport, error)

	// Delete 按 RunID 删除报告。
	Delete(ctx context.Context, runID string) error
}
