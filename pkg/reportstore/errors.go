package reportstore

import "errors"

var (
	// ErrNotFound 表示存储中没有指定 RunID 的报告。
	// 用于区分"没找到"和其他存储错误。
	ErrNotFound = errors.New("reportstore: report not found")

	// ErrNilReport 表示调用方试图保存空报告。
	ErrNilReport = errors.New("reportstore: report cannot be nil")
)
