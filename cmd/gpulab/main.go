// Command gpulab opens a window and renders animated WebGPU demo scenes: cubes, spheres,
// tori, pixel grids, textured planes, a glTF model and instanced cubes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/gpulab-go/internal/config"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"go.uber.org/zap"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "gpulab: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "gpulab: invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "gpulab: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting gpulab",
		zap.String("demo", cfg.Scene.Demo),
		zap.Int("count", cfg.Scene.Count),
		zap.Int("msaa", cfg.Window.MSAA),
		zap.Bool("vsync", cfg.Window.VSync),
	)

	a := newApp(ctx, cfg)
	defer a.close()
	a.run()
}
