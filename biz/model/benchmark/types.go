package benchmark

import "time"

// Backend 名称常量，作为报告 Results 的一级 key 使用。
const (
	BackendPostgres = "postgresql"
	BackendNeo4j    = "neo4j"
)

// TestType 控制一次基准测试运行哪些场景。
type TestType string

const (
	TestAll            TestType = "all"
	TestBasic          TestType = "basic"
	TestRecommendation TestType = "recommendation_queries"
	TestVirality       TestType = "product_virality"
	TestInfluence      TestType = "user_influence"
	TestViralProducts  TestType = "viral_products"
)

// Valid 判断 TestType 是否为已知取值。
func (t TestType) Valid() bool {
	switch t {
	case TestAll, TestBasic, TestRecommendation, TestVirality, TestInfluence, TestViralProducts:
		return true
	}
	return false
}

// SampleKind 标识样本实体的种类。
type SampleKind string

const (
	KindUser    SampleKind = "user"
	KindProduct SampleKind = "product"
)

// SampleEntity 是驱动随机输入的只读实体快照。
// ID 始终以字符串形式保存，由各后端的执行器自行转换为原生键类型。
type SampleEntity struct {
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Extra map[string]string `json:"extra,omitempty"`
}

// LatencySample 是单次查询的耗时采样（秒），带后端和场景标签。
type LatencySample struct {
	Backend  string  `json:"backend"`
	Scenario string  `json:"scenario"`
	Seconds  float64 `json:"seconds"`
}

// ScenarioResult 是一个 backend+scenario 组合的聚合统计。
// 当 Samples 为 0 时所有统计量为零值，表示该组合没有成功的迭代。
type ScenarioResult struct {
	Avg     float64 `json:"avg"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Median  float64 `json:"median"`
	Samples int     `json:"samples"`
	Errors  int     `json:"errors,omitempty"`
}

// Available 报告该组合是否有可用的统计数据。
func (r ScenarioResult) Available() bool {
	return r.Samples > 0
}

// BenchmarkReport 是一次完整基准测试运行的结果。
// Results 按后端名 -> 场景名组织；运行结束后不再修改。
type BenchmarkReport struct {
	RunID      string                               `json:"run_id"`
	TestType   TestType                             `json:"test_type"`
	MaxLevel   int                                  `json:"max_level"`
	Iterations int                                  `json:"iterations"`
	StartedAt  time.Time                            `json:"started_at"`
	FinishedAt time.Time                            `json:"finished_at"`
	Incomplete bool                                 `json:"incomplete,omitempty"`
	Results    map[string]map[string]ScenarioResult `json:"results"`
}
