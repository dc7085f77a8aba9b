package bench

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData 表示数据库中缺少运行场景所需的样本实体。
	// 该错误在任何场景执行之前产生，整个运行直接中止。
	ErrInsufficientData = errors.New("bench: not enough sample data")

	// ErrInvalidTestType 表示调用方传入了未知的 test type。
	ErrInvalidTestType = errors.New("bench: invalid test type")

	// ErrInvalidMaxLevel 表示 max_level 超出 [1,5] 的允许范围。
	ErrInvalidMaxLevel = errors.New("bench: max_level out of range [1,5]")

	// ErrInvalidIterations 表示迭代次数不是正整数。
	ErrInvalidIterations = errors.New("bench: iterations must be positive")
)

// QueryExecutionError 表示某个后端拒绝或执行失败了一条场景查询。
// 默认策略是跳过该次迭代并继续运行，由编排器记录告警。
type QueryExecutionError struct {
	Backend  string
	Scenario string
	Err      error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("bench: %s query failed on %s: %v", e.Scenario, e.Backend, e.Err)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}
