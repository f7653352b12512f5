// stress floods one logger from many workers with small rotation limits and
// reports throughput and the logger's counters.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/alog"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

var levels = []alog.Level{
	alog.LevelDebug,
	alog.LevelInfo,
	alog.LevelWarning,
	alog.LevelError,
}

func generateRandomMessage(size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rand.IntN(len(chars))])
	}
	return sb.String()
}

// logBurst simulates a burst of logging activity
func logBurst(logger *alog.Logger, burstID, logsPerBurst, maxMessageSize int) {
	for i := 0; i < logsPerBurst; i++ {
		level := levels[rand.IntN(len(levels))]
		msg := fmt.Sprintf("bst=%d seq=%d %s", burstID, i, generateRandomMessage(rand.IntN(maxMessageSize)+10))
		logger.Log(level, msg)
	}
}

func main() {
	app := &cli.Command{
		Name:  "stress",
		Usage: "stress the asynchronous logger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Usage: "log directory, cleaned before the run", Value: "./logs"},
			&cli.IntFlag{Name: "workers", Value: 500},
			&cli.IntFlag{Name: "bursts", Value: 100},
			&cli.IntFlag{Name: "logs-per-burst", Value: 500},
			&cli.IntFlag{Name: "max-message-size", Value: 10000},
			&cli.Int64Flag{Name: "max-size", Usage: "rotation threshold in bytes", Value: 1024 * 1024},
			&cli.Int64Flag{Name: "max-backups", Value: 10},
			&cli.Int64Flag{Name: "queue-capacity", Usage: "0 = unbounded, else drop-oldest"},
			&cli.DurationFlag{Name: "stop-timeout", Usage: "bounded stop, 0 waits for the full drain", Value: 10 * time.Second},
		},
		Action: runStress,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runStress(ctx context.Context, cmd *cli.Command) error {
	logsDir := cmd.String("dir")
	_ = os.RemoveAll(logsDir) // Clean previous run's logs

	logger, err := alog.NewBuilder().
		Path(filepath.Join(logsDir, "stress.log")).
		Level(alog.LevelDebug).
		MaxSizeBytes(cmd.Int64("max-size")).
		MaxBackups(cmd.Int64("max-backups")).
		QueueCapacity(cmd.Int64("queue-capacity")).
		EnableConsole(false).
		FlushIntervalMs(50).
		Build()
	if err != nil {
		return err
	}
	if err := logger.Start(); err != nil {
		return err
	}

	numWorkers := cmd.Int("workers")
	totalBursts := cmd.Int("bursts")
	logsPerBurst := cmd.Int("logs-per-burst")
	maxMessageSize := cmd.Int("max-message-size")

	fmt.Println("--- Logger Stress Test ---")
	fmt.Printf("Starting stress test: %d workers, %d bursts, %d logs/burst.\n", numWorkers, totalBursts, logsPerBurst)
	fmt.Println("Press Ctrl+C to stop early.")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	burstChan := make(chan int, numWorkers)
	var completedBursts atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < numWorkers; i++ {
		g.Go(func() error {
			for burstID := range burstChan {
				logBurst(logger, burstID, logsPerBurst, maxMessageSize)
				completed := completedBursts.Add(1)
				if completed%10 == 0 || completed == int64(totalBursts) {
					fmt.Printf("\rProgress: %d/%d bursts completed", completed, totalBursts)
				}
			}
			return nil
		})
	}

	startTime := time.Now()
submit:
	for i := 1; i <= totalBursts; i++ {
		select {
		case burstChan <- i:
		case <-gctx.Done():
			fmt.Println("\n[Signal Received] Halting burst submission.")
			break submit
		}
	}
	close(burstChan)

	fmt.Println("\nWaiting for workers to finish...")
	if err := g.Wait(); err != nil {
		return err
	}
	duration := time.Since(startTime)
	finalCompleted := completedBursts.Load()

	fmt.Printf("\n--- Test Finished ---")
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", finalCompleted, totalBursts, duration.Round(time.Millisecond))
	if finalCompleted > 0 && duration.Seconds() > 0 {
		logsPerSec := float64(finalCompleted*int64(logsPerBurst)) / duration.Seconds()
		fmt.Printf("Approximate Logs/sec: %.2f\n", logsPerSec)
	}

	fmt.Println("Stopping logger...")
	var stopErr error
	if timeout := cmd.Duration("stop-timeout"); timeout > 0 {
		stopErr = logger.Stop(timeout)
	} else {
		stopErr = logger.Stop()
	}
	if stopErr != nil {
		fmt.Fprintf(os.Stderr, "Logger stop error: %v\n", stopErr)
	}

	s := logger.Stats()
	fmt.Printf("written=%d evicted=%d discarded=%d lost=%d rotations=%d rotation_failures=%d\n",
		s.Written, s.Evicted, s.Discarded, s.Lost, s.Rotations, s.RotationFailures)
	fmt.Printf("Check log files in '%s'.\n", logsDir)
	return nil
}
