package bench

import (
	"fmt"
	"strings"

	"socialbench/biz/model/benchmark"
)

const summaryWidth = 50

// FormatSummary 把一次运行的报告渲染为人类可读的对比摘要。
// 只有两个后端都有成功采样且平均值大于零的场景才会给出倍率，
// 其余场景标记为 not comparable，绝不会除零。
func FormatSummary(report *benchmark.BenchmarkReport) string {
	var b strings.Builder
	sep := strings.Repeat("=", summaryWidth)
	line := strings.Repeat("-", summaryWidth)

	b.WriteString(sep + "\n")
	b.WriteString("DATABASE BENCHMARK RESULTS (times in seconds)\n")
	b.WriteString(sep + "\n")

	if report == nil {
		b.WriteString("no results\n")
		b.WriteString(sep + "\n")
		return b.String()
	}

	pg := report.Results[benchmark.BackendPostgres]
	neo := report.Results[benchmark.BackendNeo4j]

	for _, name := range ScenarioOrder() {
		pgRes, pgOK := pg[name]
		neoRes, neoOK := neo[name]
		if !pgOK && !neoOK {
			continue
		}

		b.WriteString(fmt.Sprintf("Operation: %s\n", name))
		writeBackendLine(&b, benchmark.BackendPostgres, pgRes, pgOK)
		writeBackendLine(&b, benchmark.BackendNeo4j, neoRes, neoOK)

		if comparableResult(pgRes, pgOK) && comparableResult(neoRes, neoOK) {
			faster, factor := fasterOf(pgRes.Avg, neoRes.Avg)
			b.WriteString(fmt.Sprintf("  %s is %.2fx faster\n", faster, factor))
		} else {
			b.WriteString("  not comparable (insufficient successful samples)\n")
		}
		b.WriteString(line + "\n")
	}

	if report.Incomplete {
		b.WriteString("NOTE: run was cancelled, results are partial\n")
	}
	b.WriteString(sep + "\n")
	return b.String()
}

func writeBackendLine(b *strings.Builder, backend string, res benchmark.ScenarioResult, present bool) {
	if !present || !res.Available() {
		b.WriteString(fmt.Sprintf("  %-10s no successful iterations\n", backend+":"))
		return
	}
	b.WriteString(fmt.Sprintf("  %-10s avg %.6fs  min %.6fs  max %.6fs  median %.6fs\n",
		backend+":", res.Avg, res.Min, res.Max, res.Median))
}

func comparableResult(res benchmark.ScenarioResult, present bool) bool {
	return present && res.Available() && res.Avg > 0
}

// fasterOf 前提：两个平均值都大于零。
func fasterOf(pgAvg, neoAvg float64) (string, float64) {
	if pgAvg <= neoAvg {
		return benchmark.BackendPostgres, neoAvg / pgAvg
	}
	return benchmark.BackendNeo4j, pgAvg / neoAvg
}
