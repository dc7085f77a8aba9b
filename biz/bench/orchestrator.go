package bench

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialbench/biz/model/benchmark"
)

const (
	// DefaultSampleSize 是样本抓取的默认上限，与参考数据集保持一致。
	DefaultSampleSize = 100

	// MinLevel / MaxLevel 是社交网络遍历深度的允许范围。
	MinLevel = 1
	MaxLevel = 5
)

// Options 是一次基准测试运行的全部调用方参数。
type Options struct {
	TestType   benchmark.TestType
	MaxLevel   int
	Iterations int
	// ProductID / UserID 非空时，对应场景的每次迭代都使用该固定值，
	// 否则每次迭代从样本中随机抽取。
	ProductID string
	UserID    string
	// SampleSize 为 0 时使用 DefaultSampleSize。
	SampleSize int
}

func (o Options) validate() error {
	if !o.TestType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTestType, o.TestType)
	}
	if o.MaxLevel < MinLevel || o.MaxLevel > MaxLevel {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxLevel, o.MaxLevel)
	}
	if o.Iterations <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidIterations, o.Iterations)
	}
	return nil
}

// ProgressFunc 用于上报基准测试进度，step 从 1 递增到 total。
type ProgressFunc func(step, total int, message string)

// Orchestrator 负责一次完整的基准测试运行：
// 加载样本、按场景依次驱动各个后端、聚合延迟并产出报告。
// 结果只保存在本次运行的报告值里，同一进程内可以并存多个实例。
type Orchestrator struct {
	executors []QueryExecutor
	sampler   Sampler
	logger    *zap.Logger
	progress  ProgressFunc
	rng       *rand.Rand
}

// NewOrchestrator 创建一个新的 Orchestrator 实例。
// 依赖注入样本加载器、若干后端执行器和 logger。
func NewOrchestrator(sampler Sampler, logger *zap.Logger, executors ...QueryExecutor) *Orchestrator {
	return &Orchestrator{
		executors: executors,
		sampler:   sampler,
		logger:    logger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// OnProgress 注册进度回调，传 nil 表示关闭进度上报。
func (o *Orchestrator) OnProgress(fn ProgressFunc) {
	o.progress = fn
}

func (o *Orchestrator) emit(step, total int, message string) {
	if o.progress != nil {
		o.progress(step, total, message)
	}
}

// Run 执行一次基准测试并返回完整报告。
// 场景与迭代严格串行执行，避免两个后端互相争抢资源影响计时；
// 取消信号只在迭代之间和场景之间检查，命中后返回标记为 Incomplete 的部分报告。
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*benchmark.BenchmarkReport, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	scenarios, err := ScenariosFor(opts.TestType)
	if err != nil {
		return nil, err
	}

	o.logger.Info("开始基准测试",
		zap.String("test_type", string(opts.TestType)),
		zap.Int("max_level", opts.MaxLevel),
		zap.Int("iterations", opts.Iterations),
	)

	users, products, err := o.loadSamples(ctx, scenarios, opts)
	if err != nil {
		return nil, err
	}

	report := &benchmark.BenchmarkReport{
		RunID:      uuid.NewString(),
		TestType:   opts.TestType,
		MaxLevel:   opts.MaxLevel,
		Iterations: opts.Iterations,
		StartedAt:  time.Now().UTC(),
		Results:    make(map[string]map[string]benchmark.ScenarioResult, len(o.executors)),
	}
	for _, exec := range o.executors {
		report.Results[exec.Name()] = make(map[string]benchmark.ScenarioResult, len(scenarios))
	}

	total := len(scenarios)
	for step, sc := range scenarios {
		if ctx.Err() != nil {
			report.Incomplete = true
			break
		}
		o.emit(step+1, total, fmt.Sprintf("Running %s benchmark", sc.Name))
		o.logger.Info("运行场景",
			zap.String("scenario", sc.Name),
			zap.Int("step", step+1),
			zap.Int("total", total),
		)

		// 两个后端必须使用同一批输入，否则延迟不可比较。
		ids := o.pickInputs(sc, opts, users, products)

		for _, exec := range o.executors {
			if ctx.Err() != nil {
				report.Incomplete = true
				break
			}
			samples, errCount := o.runScenario(ctx, exec, sc, opts, ids)
			report.Results[exec.Name()][sc.Name] = Aggregate(samples, errCount)
		}
	}

	report.FinishedAt = time.Now().UTC()
	if ctx.Err() != nil {
		report.Incomplete = true
	}
	o.emit(total, total, "All benchmarks completed")
	o.logger.Info("基准测试完成",
		zap.String("run_id", report.RunID),
		zap.Bool("incomplete", report.Incomplete),
	)
	return report, nil
}

// loadSamples 只抓取选中场景实际需要的实体种类。
// 任何一种所需实体为空都会在执行任何场景之前中止整个运行。
func (o *Orchestrator) loadSamples(ctx context.Context, scenarios []Scenario, opts Options) (users, products []benchmark.SampleEntity, err error) {
	needUsers, needProducts := false, false
	for _, sc := range scenarios {
		switch sc.Input {
		case inputUser:
			needUsers = true
		case inputProduct:
			needProducts = true
		}
	}

	limit := opts.SampleSize
	if limit <= 0 {
		limit = DefaultSampleSize
	}

	if needUsers {
		users, err = o.sampler.SampleEntities(ctx, benchmark.KindUser, limit)
		if err != nil {
			return nil, nil, fmt.Errorf("bench: 加载用户样本失败: %w", err)
		}
		if len(users) == 0 {
			return nil, nil, fmt.Errorf("%w: no users available, generate data first", ErrInsufficientData)
		}
	}
	if needProducts {
		products, err = o.sampler.SampleEntities(ctx, benchmark.KindProduct, limit)
		if err != nil {
			return nil, nil, fmt.Errorf("bench: 加载商品样本失败: %w", err)
		}
		if len(products) == 0 {
			return nil, nil, fmt.Errorf("%w: no products available, generate data first", ErrInsufficientData)
		}
	}
	return users, products, nil
}

// pickInputs 为一个场景预先选好每次迭代的输入标识符。
// 调用方指定了固定 id 时每次迭代都用它，否则逐次随机抽样。
func (o *Orchestrator) pickInputs(sc Scenario, opts Options, users, products []benchmark.SampleEntity) []string {
	if sc.Input == inputNone {
		return nil
	}
	ids := make([]string, opts.Iterations)
	for i := range ids {
		switch sc.Input {
		case inputUser:
			if opts.UserID != "" {
				ids[i] = opts.UserID
			} else {
				ids[i] = users[o.rng.Intn(len(users))].ID
			}
		case inputProduct:
			if opts.ProductID != "" {
				ids[i] = opts.ProductID
			} else {
				ids[i] = products[o.rng.Intn(len(products))].ID
			}
		}
	}
	return ids
}

// runScenario 在单个后端上跑完一个场景的全部迭代。
// 单次查询失败只跳过该次迭代并计入错误数，不中断运行。
func (o *Orchestrator) runScenario(ctx context.Context, exec QueryExecutor, sc Scenario, opts Options, ids []string) (samples []float64, errCount int) {
	query, ok := sc.QueryFor(exec.Name(), opts.MaxLevel)
	if !ok {
		o.logger.Warn("后端没有该场景的查询实现，跳过",
			zap.String("backend", exec.Name()),
			zap.String("scenario", sc.Name),
		)
		return nil, 0
	}

	for i := 0; i < opts.Iterations; i++ {
		if ctx.Err() != nil {
			return samples, errCount
		}

		params := make(map[string]any, 2)
		switch sc.Input {
		case inputUser:
			params["user_id"] = exec.CoerceID(ids[i])
		case inputProduct:
			params["product_id"] = exec.CoerceID(ids[i])
		}
		if sc.UsesLevel {
			params["max_level"] = opts.MaxLevel
		}

		elapsed, rows, err := exec.Execute(ctx, query, params)
		if err != nil {
			errCount++
			qerr := &QueryExecutionError{Backend: exec.Name(), Scenario: sc.Name, Err: err}
			o.logger.Warn("查询执行失败，跳过本次迭代",
				zap.Int("iteration", i+1),
				zap.Error(qerr),
			)
			continue
		}
		samples = append(samples, elapsed)
		o.logger.Debug("迭代完成",
			zap.String("backend", exec.Name()),
			zap.String("scenario", sc.Name),
			zap.Int("iteration", i+1),
			zap.Float64("seconds", elapsed),
			zap.Int("rows", rows),
		)
	}
	return samples, errCount
}

// SamplesOf 把某个后端+场景的成功迭代数换算为 LatencySample 序列长度，
// 仅供调用方快速校验 "iterations 次成功则恰好 iterations 个采样" 的约定。
func SamplesOf(report *benchmark.BenchmarkReport, backend, scenario string) int {
	if report == nil {
		return 0
	}
	byScenario, ok := report.Results[backend]
	if !ok {
		return 0
	}
	return byScenario[scenario].Samples
}

// IsConfigurationError 判断错误是否属于运行前即被拒绝的配置类错误。
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidTestType) ||
		errors.Is(err, ErrInvalidMaxLevel) ||
		errors.Is(err, ErrInvalidIterations)
}
