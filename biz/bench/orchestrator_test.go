package bench_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialbench/biz/bench"
	"socialbench/biz/model/benchmark"
)

type recordedCall struct {
	query  string
	params map[string]any
}

// fakeExecutor 记录全部调用并返回固定耗时，numeric 为真时模拟关系侧的数字 id 转换。
type fakeExecutor struct {
	name    string
	elapsed float64
	numeric bool
	err     error
	onCall  func()
	calls   []recordedCall
}

func (f *fakeExecutor) Name() string { return f.name }

func (f *fakeExecutor) Execute(_ context.Context, query string, params map[string]any) (float64, int, error) {
	copied := make(map[string]any, len(params))
	for k, v := range params {
		copied[k] = v
	}
	f.calls = append(f.calls, recordedCall{query: query, params: copied})
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.elapsed, 1, nil
}

func (f *fakeExecutor) CoerceID(id string) any {
	if f.numeric {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			return n
		}
	}
	return id
}

type fakeSampler struct {
	users    []benchmark.SampleEntity
	products []benchmark.SampleEntity
	err      error
	calls    int
}

func (s *fakeSampler) SampleEntities(_ context.Context, kind benchmark.SampleKind, _ int) ([]benchmark.SampleEntity, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if kind == benchmark.KindUser {
		return s.users, nil
	}
	return s.products, nil
}

func entities(ids ...string) []benchmark.SampleEntity {
	out := make([]benchmark.SampleEntity, len(ids))
	for i, id := range ids {
		out[i] = benchmark.SampleEntity{ID: id, Name: "entity-" + id}
	}
	return out
}

func newTestOrchestrator(sampler bench.Sampler, execs ...bench.QueryExecutor) *bench.Orchestrator {
	return bench.NewOrchestrator(sampler, zap.NewNop(), execs...)
}

func TestRunBasicProducesAllSamples(t *testing.T) {
	pg := &fakeExecutor{name: benchmark.BackendPostgres, elapsed: 0.002, numeric: true}
	neo := &fakeExecutor{name: benchmark.BackendNeo4j, elapsed: 0.004}
	sampler := &fakeSampler{users: entities("1", "2", "3"), products: entities("10", "11")}
	o := newTestOrchestrator(sampler, pg, neo)

	report, err := o.Run(context.Background(), bench.Options{
		TestType:   benchmark.TestBasic,
		MaxLevel:   3,
		Iterations: 4,
	})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.Incomplete)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	for _, backend := range []string{benchmark.BackendPostgres, benchmark.BackendNeo4j} {
		require.Len(t, report.Results[backend], 4)
		for name, res := range report.Results[backend] {
			assert.Equal(t, 4, res.Samples, "%s/%s", backend, name)
			assert.Equal(t, 0, res.Errors)
			assert.True(t, res.Available())
		}
	}
	// 4 个场景 × 4 次迭代
	assert.Len(t, pg.calls, 16)
	assert.Len(t, neo.calls, 16)
}

func TestRunFixedUserIDSharedAcrossBackends(t *testing.T) {
	pg := &fakeExecutor{name: benchmark.BackendPostgres, elapsed: 0.001, numeric: true}
	neo := &fakeExecutor{name: benchmark.BackendNeo4j, elapsed: 0.001}
	sampler := &fakeSampler{users: entities("1", "2")}
	o := newTestOrchestrator(sampler, pg, neo)

	report, err := o.Run(context.Background(), bench.Options{
		TestType:   benchmark.TestInfluence,
		MaxLevel:   4,
		Iterations: 5,
		UserID:     "77",
	})
	require.NoError(t, err)
	require.NotNil(t, report)

	require.Len(t, pg.calls, 5)
	require.Len(t, neo.calls, 5)
	for _, call := range pg.calls {
		assert.Equal(t, int64(77), call.params["user_id"])
		assert.Equal(t, 4, call.params["max_level"])
	}
	for _, call := range neo.calls {
		assert.Equal(t, "77", call.params["user_id"])
		assert.Equal(t, 4, call.params["max_level"])
		assert.Contains(t, call.query, "*0..4")
	}
}

func TestRunRandomInputsComeFromSamples(t *testing.T) {
	pg := &fakeExecutor{name: benchmark.BackendPostgres, elapsed: 0.001, numeric: true}
	neo := &fakeExecutor{name: benchmark.BackendNeo4j, elapsed: 0.001}
	sampler := &fakeSampler{products: entities("100", "200", "300")}
	o := newTestOrchestrator(sampler, pg, neo)

	_, err := o.Run(context.Background(), bench.Options{
		TestType:   benchmark.TestVirality,
		MaxLevel:   2,
		Iterations: 6,
	})
	require.NoError(t, err)

	allowed := map[string]bool{"100": true, "200": true, "300": true}
	require.Len(t, neo.calls, 6)
	for i, call := range neo.calls {
		id, ok := call.params["product_id"].(string)
		require.True(t, ok)
		assert.True(t, allowed[id], "unexpected product id %q", id)
		// 关系侧和图侧同一次迭代必须拿到同一个输入
		assert.Equal(t, int64FromString(t, id), pg.calls[i].params["product_id"])
	}
}

func int64FromString(t *testing.T, s string) int64 {
	t.Helper()
	n, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return n
}

func TestRunRejectsBadOptionsBeforeSampling(t *testing.T) {
	sampler := &fakeSampler{users: entities("1")}
	o := newTestOrchestrator(sampler, &fakeExecutor{name: benchmark.BackendPostgres})

	cases := []struct {
		opts bench.Options
		want error
	}{
		{bench.Options{TestType: "bogus", MaxLevel: 3, Iterations: 1}, bench.ErrInvalidTestType},
		{bench.Options{TestType: benchmark.TestBasic, MaxLevel: 0, Iterations: 1}, bench.ErrInvalidMaxLevel},
		{bench.Options{TestType: benchmark.TestBasic, MaxLevel: 6, Iterations: 1}, bench.ErrInvalidMaxLevel},
		{bench.Options{TestType: benchmark.TestBasic, MaxLevel: 3, Iterations: 0}, bench.ErrInvalidIterations},
	}
	for _, tc := range cases {
		report, err := o.Run(context.Background(), tc.opts)
		assert.Nil(t, report)
		assert.ErrorIs(t, err, tc.want)
		assert.True(t, bench.IsConfigurationError(err))
	}
	assert.Zero(t, sampler.calls, "invalid options must be rejected before touching the database")
}

func TestRunAbortsWhenNoSamples(t *testing.T) {
	sampler := &fakeSampler{} // 空数据集
	o := newTestOrchestrator(sampler, &fakeExecutor{name: benchmark.BackendPostgres, numeric: true})

	report, err := o.Run(context.Background(), bench.Options{
		TestType:   benchmark.TestVirality,
		MaxLevel:   3,
		Iterations: 2,
	})
	assert.Nil(t, report)
	assert.ErrorIs(t, err, bench.ErrInsufficientData)
	assert.False(t, bench.IsConfigurationError(err))
}

func TestRunSamplerFailurePropagates(t *testing.T) {
	sampler := &fakeSampler{err: errors.New("connection refused")}
	o := newTestOrchestrator(sampler, &fakeExecutor{name: benchmark.BackendPostgres})

	report, err := o.Run(context.Background(), bench.Options{
		TestType:   benchmark.TestBasic,
		MaxLevel:   3,
		Iterations: 1,
	})
	assert.Nil(t, report)
	assert.ErrorContains(t, err, "connection refused")
}

func TestRunQueryFailureSkipsIteration(t *testing.T) {
	pg := &fakeExecutor{name: benchmark.BackendPostgres, numeric: true, err: errors.New("relation does not exist")}
	neo := &fakeExecutor{name: benchmark.BackendNeo4j, elapsed: 0.003}
	sampler := &fakeSampler{users: entities("1", "2")}
	o := newTestOrchestrator(sampler, pg, neo)

	report, err := o.Run(context.Background(), bench.Options{
		TestType:   benchmark.TestInfluence,
		MaxLevel:   2,
		Iterations: 3,
	})
	require.NoError(t, err, "query failures must not abort the run")
	require.NotNil(t, report)

	pgRes := report.Results[benchmark.BackendPostgres][bench.ScenarioUserInfluence]
	assert.Equal(t, 0, pgRes.Samples)
	assert.Equal(t, 3, pgRes.Errors)
	assert.False(t, pgRes.Available())

	neoRes := report.Results[benchmark.BackendNeo4j][bench.ScenarioUserInfluence]
	assert.Equal(t, 3, neoRes.Samples)
	assert.Equal(t, 0, neoRes.Errors)

	out := bench.FormatSummary(report)
	assert.Contains(t, out, "not comparable")
}

func TestRunCancellationYieldsPartialReport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg := &fakeExecutor{name: benchmark.BackendPostgres, elapsed: 0.001, numeric: true}
	// 第一次查询后立刻取消，后续场景不再执行
	pg.onCall = func() { cancel() }
	neo := &fakeExecutor{name: benchmark.BackendNeo4j, elapsed: 0.001}
	sampler := &fakeSampler{users: entities("1"), products: entities("2")}
	o := newTestOrchestrator(sampler, pg, neo)

	report, err := o.Run(ctx, bench.Options{
		TestType:   benchmark.TestAll,
		MaxLevel:   3,
		Iterations: 5,
	})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.Incomplete)
	assert.Len(t, pg.calls, 1)
	assert.Empty(t, neo.calls)
	assert.Contains(t, bench.FormatSummary(report), "results are partial")
}

func TestRunNonNumericIDFallsBackToString(t *testing.T) {
	pg := &fakeExecutor{name: benchmark.BackendPostgres, elapsed: 0.001, numeric: true}
	sampler := &fakeSampler{products: entities("1")}
	o := newTestOrchestrator(sampler, pg)

	_, err := o.Run(context.Background(), bench.Options{
		TestType:   benchmark.TestVirality,
		MaxLevel:   3,
		Iterations: 2,
		ProductID:  "abc-not-numeric",
	})
	require.NoError(t, err)

	require.Len(t, pg.calls, 2)
	assert.Equal(t, "abc-not-numeric", pg.calls[0].params["product_id"])
}

func TestRunProgressCallbacks(t *testing.T) {
	pg := &fakeExecutor{name: benchmark.BackendPostgres, elapsed: 0.001, numeric: true}
	sampler := &fakeSampler{users: entities("1"), products: entities("2")}
	o := newTestOrchestrator(sampler, pg)

	type event struct {
		step, total int
		message     string
	}
	var events []event
	o.OnProgress(func(step, total int, message string) {
		events = append(events, event{step, total, message})
	})

	_, err := o.Run(context.Background(), bench.Options{
		TestType:   benchmark.TestBasic,
		MaxLevel:   1,
		Iterations: 1,
	})
	require.NoError(t, err)

	// 4 个场景各一条 + 终态一条
	require.Len(t, events, 5)
	for i := 0; i < 4; i++ {
		assert.Equal(t, i+1, events[i].step)
		assert.Equal(t, 4, events[i].total)
		assert.Contains(t, events[i].message, "Running")
	}
	assert.Equal(t, "All benchmarks completed", events[4].message)
}

func TestRunProductViralityMinimalDataset(t *testing.T) {
	pg := &fakeExecutor{name: benchmark.BackendPostgres, elapsed: 0.005, numeric: true}
	neo := &fakeExecutor{name: benchmark.BackendNeo4j, elapsed: 0.002}
	// 只有商品样本：virality 族不需要用户样本
	sampler := &fakeSampler{products: entities("42")}
	o := newTestOrchestrator(sampler, pg, neo)

	report, err := o.Run(context.Background(), bench.Options{
		TestType:   benchmark.TestVirality,
		MaxLevel:   3,
		Iterations: 1,
		ProductID:  "42",
	})
	require.NoError(t, err)
	require.NotNil(t, report)

	for _, backend := range []string{benchmark.BackendPostgres, benchmark.BackendNeo4j} {
		res, ok := report.Results[backend][bench.ScenarioProductVirality]
		require.True(t, ok, "missing %s result", backend)
		assert.Equal(t, 1, res.Samples)
		assert.GreaterOrEqual(t, res.Avg, 0.0)
	}
	assert.Equal(t, 1, bench.SamplesOf(report, benchmark.BackendNeo4j, bench.ScenarioProductVirality))
}

func TestSamplesOfMissingEntries(t *testing.T) {
	assert.Zero(t, bench.SamplesOf(nil, benchmark.BackendNeo4j, bench.ScenarioUserRetrieval))
	report := &benchmark.BenchmarkReport{Results: map[string]map[string]benchmark.ScenarioResult{}}
	assert.Zero(t, bench.SamplesOf(report, benchmark.BackendNeo4j, bench.ScenarioUserRetrieval))
}
