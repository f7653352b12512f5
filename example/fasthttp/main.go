package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lixenwraith/alog"
	"github.com/lixenwraith/alog/compat"
	"github.com/valyala/fasthttp"
)

func main() {
	cfg := alog.DefaultConfig()
	cfg.Path = filepath.Join("logs", "fasthttp.log")
	cfg.QueueCapacity = 2048
	cfg.Sanitize = "escape"

	builder := compat.NewBuilder().WithConfig(cfg)
	fasthttpAdapter, err := builder.BuildFastHTTP(
		compat.WithDefaultLevel(alog.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)
	if err != nil {
		panic(err)
	}
	logger, _ := builder.GetLogger()
	defer logger.Stop(5 * time.Second)

	server := &fasthttp.Server{
		Handler: requestHandler,
		Logger:  fasthttpAdapter,

		Name:              "MyServer",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	fmt.Println("Starting server on :8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain")
	fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
}

// customLevelDetector maps known fasthttp messages before falling back to keywords
func customLevelDetector(msg string) (alog.Level, bool) {
	if strings.Contains(msg, "connection cannot be served") {
		return alog.LevelWarning, true
	}
	if strings.Contains(msg, "error when serving connection") {
		return alog.LevelError, true
	}
	return compat.DetectLogLevel(msg)
}
