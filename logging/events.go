package logging

import (
	"context"
)

// Operation names a store operation in log records.
type Operation string

const (
	OpGet    Operation = "get"
	OpPut    Operation = "put"
	OpDelete Operation = "delete"
	OpExists Operation = "exists"
	OpList   Operation = "list"
	OpEvict  Operation = "evict"
	OpPoll   Operation = "poll"
)

// LogCacheHit logs a cache hit event.
func LogCacheHit(ctx context.Context, logger *Logger, key string, size int) {
	logger.Debug(ctx, "cache hit",
		"key", key,
		"size", size,
		"result", "hit")
}

// LogCacheMiss logs a cache miss event.
func LogCacheMiss(ctx context.Context, logger *Logger, key string, reason string) {
	logger.Debug(ctx, "cache miss",
		"key", key,
		"reason", reason,
		"result", "miss")
}

// LogDedup logs a write skipped because the cached bytes already match.
func LogDedup(ctx context.Context, logger *Logger, key string, size int) {
	logger.Debug(ctx, "write deduplicated",
		"key", key,
		"size", size)
}

// LogEviction logs an eviction event.
func LogEviction(ctx context.Context, logger *Logger, key string, size int, reason string) {
	logger.Info(ctx, "cache entry evicted",
		"key", key,
		"size", size,
		"reason", reason)
}

// LogBackendFailure logs a failed call into the wrapped store.
func LogBackendFailure(ctx context.Context, logger *Logger, op Operation, key string, err error) {
	if err == nil {
		return
	}
	logger.Warn(ctx, "backend operation failed",
		"operation", string(op),
		"key", key,
		"error", err.Error())
}
