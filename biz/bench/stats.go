package bench

import (
	"sort"

	"socialbench/biz/model/benchmark"
)

// Aggregate 把一组耗时采样（秒）聚合为 ScenarioResult。
// 空序列返回全零结果（Samples 为 0），由上层按"不可比较"处理。
func Aggregate(samples []float64, errs int) benchmark.ScenarioResult {
	res := benchmark.ScenarioResult{Errors: errs}
	if len(samples) == 0 {
		return res
	}

	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	var sum float64
	for _, s := range sorted {
		sum += s
	}

	res.Samples = len(sorted)
	res.Avg = sum / float64(len(sorted))
	res.Min = sorted[0]
	res.Max = sorted[len(sorted)-1]
	res.Median = median(sorted)
	return res
}

// median 要求输入已排序；偶数个取中间两数的均值。
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
