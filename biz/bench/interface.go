package bench

import (
	"context"

	"socialbench/biz/model/benchmark"
)

// QueryExecutor 抽象一个可计时执行查询的后端。
// 编排器只依赖该接口，新增后端只需提供一个实现。
type QueryExecutor interface {
	// Name 返回后端名称，作为报告中的一级 key（例如 "postgresql"）。
	Name() string

	// Execute 执行一条查询并返回耗时（秒）与物化的结果行数。
	// 计时范围覆盖提交到结果全部物化；查询失败时返回底层错误。
	Execute(ctx context.Context, query string, params map[string]any) (elapsed float64, rows int, err error)

	// CoerceID 把后端无关的字符串标识符转换为该后端的原生键类型。
	// 转换失败时必须原样返回字符串而不是报错。
	CoerceID(id string) any
}

// Sampler 提供基准测试随机输入用的有界实体样本。
type Sampler interface {
	// SampleEntities 按种类抓取最多 limit 个实体。
	// 返回空切片表示库中没有该种类的数据。
	SampleEntities(ctx context.Context, kind benchmark.SampleKind, limit int) ([]benchmark.SampleEntity, error)
}
