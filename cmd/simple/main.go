// simple runs a small multi-worker logging demo.
//
// Configuration is layered: defaults, then the [log] table of --config,
// then ALOG_* variables (optionally loaded from --env-file), then flags.
//
// Usage:
//
//	simple [--config alog.toml] [--env-file .env] [--path logTest.log] [--workers 5]
//	       [--level debug] [--max-size 5242880] [--max-backups 3] [--console]
//	       [--verbose] [--crash-log crash.log] [--dump-config] [--watch 10s]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"
	"github.com/lixenwraith/alog"
	"github.com/lixenwraith/alog/emergency"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run())
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:  "simple",
		Usage: "log from several workers through one asynchronous logger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "TOML file with a [log] table"},
			&cli.StringFlag{Name: "env-file", Usage: "dotenv file with ALOG_* variables"},
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "log file path"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "minimum level (trace, debug, info, warning, error, critical)"},
			&cli.Int64Flag{Name: "max-size", Usage: "rotation threshold in bytes, 0 disables rotation"},
			&cli.Int64Flag{Name: "max-backups", Usage: "number of rotated files to keep"},
			&cli.BoolFlag{Name: "console", Usage: "echo lines to stdout"},
			&cli.StringFlag{Name: "template", Usage: "line template"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "include caller file and function"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "number of logging workers", Value: 5},
			&cli.StringFlag{Name: "crash-log", Usage: "emergency crash log path, empty disables"},
			&cli.BoolFlag{Name: "dump-config", Usage: "print the effective configuration and exit"},
			&cli.DurationFlag{Name: "watch", Usage: "keep running and reload --config on change for this long"},
		},
		Action: runDemo,
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	if err := createApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig layers file, environment and flags over the defaults.
func loadConfig(cmd *cli.Command) (*alog.Config, error) {
	cfg := alog.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		fileCfg, err := alog.NewConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if envFile := cmd.String("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	if err := overrides(cmd)(cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// overrides layers ALOG_* variables and explicitly set flags over cfg.
// Config reloads run it again so they keep the startup overrides.
func overrides(cmd *cli.Command) alog.ConfigLayer {
	return func(cfg *alog.Config) error {
		if err := alog.ApplyEnv(cfg); err != nil {
			return err
		}
		return applyFlags(cmd, cfg)
	}
}

func applyFlags(cmd *cli.Command, cfg *alog.Config) error {
	if cmd.IsSet("path") {
		cfg.Path = cmd.String("path")
	}
	if cmd.IsSet("level") {
		lvl, err := alog.ParseLevel(cmd.String("level"))
		if err != nil {
			return err
		}
		cfg.Level = lvl
	}
	if cmd.IsSet("max-size") {
		cfg.MaxSizeBytes = cmd.Int64("max-size")
	}
	if cmd.IsSet("max-backups") {
		cfg.MaxBackups = cmd.Int64("max-backups")
	}
	if cmd.IsSet("console") {
		cfg.EnableConsole = cmd.Bool("console")
	}
	if cmd.IsSet("template") {
		cfg.Template = cmd.String("template")
	}
	if cmd.IsSet("verbose") {
		cfg.Verbose = cmd.Bool("verbose")
	}
	return nil
}

func runDemo(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("dump-config") {
		spew.Dump(cfg)
		return nil
	}

	if crashPath := cmd.String("crash-log"); crashPath != "" {
		sink, err := emergency.Open(crashPath)
		if err != nil {
			return fmt.Errorf("open crash log: %w", err)
		}
		defer sink.Close()
		if err := sink.CaptureRuntimeCrashes(); err != nil {
			fmt.Fprintf(os.Stderr, "runtime crash capture unavailable: %v\n", err)
		}
		stop := emergency.Notify(sink)
		defer stop()
	}

	logger := alog.New()
	if err := logger.ApplyConfig(cfg); err != nil {
		return err
	}
	if err := logger.Start(); err != nil {
		if !errors.Is(err, alog.ErrFileUnavailable) {
			return err
		}
		fmt.Fprintf(os.Stderr, "continuing without log file: %v\n", err)
	}
	defer func() {
		if err := logger.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "logger stop: %v\n", err)
		}
	}()

	logger.Info("demo starting")

	workers := cmd.Int("workers")
	g, _ := errgroup.WithContext(ctx)
	for i := 1; i <= workers; i++ {
		id := i
		g.Go(func() error {
			worker(logger, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if watch := cmd.Duration("watch"); watch > 0 && cmd.String("config") != "" {
		watchCtx, cancel := context.WithTimeout(ctx, watch)
		defer cancel()
		logger.Info(fmt.Sprintf("watching %s for %v", cmd.String("config"), watch))
		if err := logger.WatchConfig(watchCtx, cmd.String("config"), overrides(cmd)); err != nil {
			return err
		}
	}

	logger.LogAt(alog.LevelInfo, "demo finished", "", "")
	fmt.Printf("Finished. Check the log file: %s\n", cfg.Path)
	return nil
}

// worker logs five lines at mixed levels.
func worker(logger *alog.Logger, id int) {
	logger.Info(fmt.Sprintf("Worker %d started.", id))
	logger.Debug(fmt.Sprintf("Worker %d is running.", id))
	logger.Warn(fmt.Sprintf("Worker %d encountered a minor issue.", id))
	logger.Error(fmt.Sprintf("Worker %d encountered an error.", id))
	logger.Info(fmt.Sprintf("Worker %d finished.", id))
}
