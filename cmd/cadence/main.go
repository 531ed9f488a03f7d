package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/fmoraes/go-cadence/cadence"
	"github.com/fmoraes/go-cadence/cadence/monitor"
	"github.com/fmoraes/go-cadence/cadence/stats"
)

func main() {
	app := cli.NewApp()
	app.Name = "cadence"
	app.Description = "A drift-compensated periodic event generator"
	app.Usage = "cadence [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "fps",
			Usage: "Target ticks per second",
			Value: 60,
		},
		cli.DurationFlag{
			Name:  "duration",
			Usage: "How long to run in headless mode",
			Value: 10 * time.Second,
		},
		cli.BoolFlag{
			Name:  "monitor",
			Usage: "Show a live terminal dashboard instead of running headless",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
	app.Action = runTimer

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running timer", "error", err)
		os.Exit(1)
	}
}

func runTimer(c *cli.Context) error {
	fps := c.Int("fps")
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	collector, err := stats.NewCollector(stats.DefaultCapacity)
	if err != nil {
		return err
	}

	timer := cadence.New(fps)
	timer.SetListener(collector)

	if c.Bool("monitor") {
		return monitor.New(timer, collector, fps).Run()
	}

	duration := c.Duration("duration")
	slog.Info("Running timer", "fps", fps, "duration", duration)

	timer.Create()
	timer.Resume()

	report := time.NewTicker(time.Second)
	defer report.Stop()
	deadline := time.After(duration)

	for running := true; running; {
		select {
		case <-report.C:
			snap := collector.Snapshot()
			slog.Info("Timer stats",
				"rate", fmt.Sprintf("%.2f", snap.Rate),
				"ticks", snap.Ticks,
				"frames_lost", snap.FramesLost,
				"mean_cycle", snap.MeanCycle,
				"max_cycle", snap.MaxCycle)
		case <-deadline:
			running = false
		}
	}

	timer.Pause()
	timer.Destroy()

	snap := collector.Snapshot()
	slog.Info("Timer finished",
		"ticks", snap.Ticks,
		"frames_lost", snap.FramesLost,
		"dropped_samples", snap.Dropped)
	return nil
}
