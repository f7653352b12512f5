package alog

import (
	"testing"
	"time"
)

// BenchmarkLoggerInfo benchmarks the producer side of standard Info logging
func BenchmarkLoggerInfo(b *testing.B) {
	logger, _ := createTestLogger(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message")
	}
	b.StopTimer()
	_ = logger.Stop()
}

// BenchmarkLoggerVerbose benchmarks logging with caller capture
func BenchmarkLoggerVerbose(b *testing.B) {
	logger, _ := createTestLogger(b, func(cfg *Config) {
		cfg.Verbose = true
		cfg.Template = VerboseTemplate
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message")
	}
	b.StopTimer()
	_ = logger.Stop()
}

// BenchmarkLoggerFiltered benchmarks events rejected by the level filter
func BenchmarkLoggerFiltered(b *testing.B) {
	logger, _ := createTestLogger(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug("filtered")
	}
}

// BenchmarkConcurrentLogging benchmarks concurrent producers
func BenchmarkConcurrentLogging(b *testing.B) {
	logger, _ := createTestLogger(b)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			logger.Info("concurrent message")
		}
	})
	b.StopTimer()
	_ = logger.Flush(10 * time.Second)
}

// BenchmarkLineEncoder benchmarks rendering on the writer side
func BenchmarkLineEncoder(b *testing.B) {
	enc := newLineEncoder(VerboseTemplate, "escape")
	ev := Event{Time: time.Now(), Level: LevelInfo, Message: "benchmark\tmessage", File: "main.go", Function: "run"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = enc.encode(&ev)
	}
}
