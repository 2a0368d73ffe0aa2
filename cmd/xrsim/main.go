package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/uGboly/xrblocks/internal/config"
	"github.com/uGboly/xrblocks/internal/logging"
	"github.com/uGboly/xrblocks/internal/registry"
	"github.com/uGboly/xrblocks/internal/runtime"
	"github.com/uGboly/xrblocks/internal/server"
	"github.com/uGboly/xrblocks/internal/sim"
)

func main() {
	configPath := flag.String("config", "", "path to runtime config (toml)")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("xrsim failed")
	}
}

func run(cfg config.RuntimeConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	graph := sim.NewGraph()
	renderer := sim.NewRenderer()
	world := sim.NewWorld()
	inputs := sim.NewInput(sim.NewSource("right-hand"))

	reg := registry.NewRegistry()
	if err := reg.RegisterProvider(sim.Clock{}); err != nil {
		return err
	}

	core, err := runtime.New(runtime.Options{
		Graph:    graph,
		Renderer: renderer,
		Provider: sim.Provider{},
		Session:  cfg.SessionOptions(),
		Physics:  world,
		Input:    inputs,
		Timestep: cfg.Timestep(),
		Registry: reg,
	})
	if err != nil {
		return err
	}

	if err := core.Init(ctx); err != nil {
		return err
	}
	defer func() {
		if err := core.Teardown(); err != nil {
			log.Error().Err(err).Msg("teardown failed")
		}
	}()

	core.AddScript(sim.NewSpinner())
	core.AddScript(sim.NewSelectLogger())

	if cfg.Session.AutoStart {
		if err := core.StartSession(ctx); err != nil {
			log.Warn().Err(err).Msg("session auto-start failed")
		}
	}

	debug := server.New(cfg.App, cfg.DebugAddr, cfg.CorsOrigins, core)
	errc := make(chan error, 1)
	go func() {
		errc <- debug.Run(ctx)
	}()

	log.Info().
		Int("frame_rate", cfg.FrameRate).
		Str("debug_addr", cfg.DebugAddr).
		Msg("xrsim running")

	ticker := time.NewTicker(cfg.FrameInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return <-errc
		case err := <-errc:
			return err
		case now := <-ticker.C:
			renderer.DriveFrame(now)
		}
	}
}
