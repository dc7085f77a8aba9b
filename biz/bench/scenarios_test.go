package bench_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbench/biz/bench"
	"socialbench/biz/model/benchmark"
)

func scenarioNames(scs []bench.Scenario) []string {
	names := make([]string, len(scs))
	for i, sc := range scs {
		names[i] = sc.Name
	}
	return names
}

func TestScenariosForAll(t *testing.T) {
	scs, err := bench.ScenariosFor(benchmark.TestAll)
	require.NoError(t, err)
	assert.Equal(t, bench.ScenarioOrder(), scenarioNames(scs))
	assert.Len(t, scs, 8)
}

func TestScenariosForBasic(t *testing.T) {
	scs, err := bench.ScenariosFor(benchmark.TestBasic)
	require.NoError(t, err)

	assert.Equal(t, []string{
		bench.ScenarioUserRetrieval,
		bench.ScenarioProductRetrieval,
		bench.ScenarioUserFollows,
		bench.ScenarioProductPurchases,
	}, scenarioNames(scs))
}

func TestScenariosForSingleFamily(t *testing.T) {
	cases := map[benchmark.TestType]string{
		benchmark.TestRecommendation: bench.ScenarioRecommendation,
		benchmark.TestVirality:       bench.ScenarioProductVirality,
		benchmark.TestInfluence:      bench.ScenarioUserInfluence,
		benchmark.TestViralProducts:  bench.ScenarioViralProducts,
	}
	for tt, want := range cases {
		scs, err := bench.ScenariosFor(tt)
		require.NoError(t, err)
		require.Len(t, scs, 1, "test type %s", tt)
		assert.Equal(t, want, scs[0].Name)
	}
}

func TestScenariosForUnknownType(t *testing.T) {
	scs, err := bench.ScenariosFor(benchmark.TestType("bogus"))
	assert.Nil(t, scs)
	assert.ErrorIs(t, err, bench.ErrInvalidTestType)
	assert.True(t, bench.IsConfigurationError(err))
}

func TestEveryScenarioCoversBothBackends(t *testing.T) {
	scs, err := bench.ScenariosFor(benchmark.TestAll)
	require.NoError(t, err)

	for _, sc := range scs {
		for _, backend := range []string{benchmark.BackendPostgres, benchmark.BackendNeo4j} {
			q, ok := sc.QueryFor(backend, 3)
			assert.True(t, ok, "scenario %s missing %s query", sc.Name, backend)
			assert.NotEmpty(t, q)
			assert.NotContains(t, q, "%d", "scenario %s %s query leaked placeholder", sc.Name, backend)
			assert.NotContains(t, q, "%!", "scenario %s %s query broke formatting", sc.Name, backend)
		}
	}
}

func TestQueryForFillsTraversalBound(t *testing.T) {
	scs, err := bench.ScenariosFor(benchmark.TestInfluence)
	require.NoError(t, err)
	require.Len(t, scs, 1)

	q, ok := scs[0].QueryFor(benchmark.BackendNeo4j, 2)
	require.True(t, ok)
	assert.Contains(t, q, "*0..2")

	q, ok = scs[0].QueryFor(benchmark.BackendNeo4j, 5)
	require.True(t, ok)
	assert.Contains(t, q, "*0..5")
}

func TestRelationalQueriesUseNamedArgs(t *testing.T) {
	scs, err := bench.ScenariosFor(benchmark.TestAll)
	require.NoError(t, err)

	for _, sc := range scs {
		q, ok := sc.QueryFor(benchmark.BackendPostgres, 3)
		require.True(t, ok)
		// 关系侧深度经由命名参数下发，不做文本拼接
		if sc.UsesLevel {
			assert.Contains(t, q, "@max_level", "scenario %s", sc.Name)
		}
		assert.False(t, strings.Contains(q, "$1"), "scenario %s should not use positional args", sc.Name)
	}
}

func TestQueryForUnknownBackend(t *testing.T) {
	scs, err := bench.ScenariosFor(benchmark.TestBasic)
	require.NoError(t, err)

	_, ok := scs[0].QueryFor("oracle", 3)
	assert.False(t, ok)
}
