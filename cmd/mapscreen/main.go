// Command mapscreen mounts a headless map screen, replays a scripted user
// session against it and writes the final rendering as GeoJSON.
//
//	mapscreen [scenario.toml]
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/routeview/internal/adapters/headless"
	natsadapter "github.com/samirrijal/routeview/internal/adapters/nats"
	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/core/ports"
	"github.com/samirrijal/routeview/internal/core/usecases"
	"github.com/samirrijal/routeview/internal/pkg/config"
	"github.com/samirrijal/routeview/internal/pkg/logging"
	"github.com/samirrijal/routeview/internal/pkg/metrics"
	"github.com/samirrijal/routeview/internal/pkg/telemetry"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("mapscreen: %v", err)
	}
}

func run() error {
	cfg, err := config.Load("routeview-mapscreen")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	scriptPath := "scenario.toml"
	if len(os.Args) > 1 {
		scriptPath = os.Args[1]
	}
	script, err := LoadScript(scriptPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-quit:
			slog.Info("shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// NATS
	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	perm, loc, err := deviceServices(cfg.Device)
	if err != nil {
		return err
	}
	source, destination, dirs, err := providers(cfg)
	if err != nil {
		return err
	}

	screenCfg := screenConfig(cfg.Screen)
	screen := usecases.New(usecases.Deps{
		Permission:        perm,
		Location:          loc,
		SourceSearch:      source,
		DestinationSearch: destination,
		Directions:        dirs,
		Publisher:         publisher,
	}, screenCfg, slog.Default())
	surface := headless.NewSurface(screenCfg.Viewport)

	runCtx, unmount := context.WithCancel(ctx)
	defer unmount()
	g, gctx := errgroup.WithContext(runCtx)

	var (
		view  domain.View
		route *domain.RouteResult
	)
	g.Go(func() error { return screen.Run(gctx) })
	g.Go(func() error {
		defer unmount()
		var err error
		view, route, err = runSession(gctx, screen, surface, script, slog.Default())
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	if route != nil {
		slog.Info("route rendered",
			"distance_meters", route.DistanceMeters,
			"duration", route.Duration.String(),
			"points", len(route.Coordinates),
		)
	} else {
		slog.Info("no route rendered", "route_state", view.RouteState)
	}
	slog.Info("camera operations", "count", len(surface.Operations()))

	out, err := headless.Render(view)
	if err != nil {
		return err
	}
	if err := writeOutput(script.Output, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if cfg.Metrics.PushgatewayURL != "" {
		if err := metrics.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, screen.ID().String()); err != nil {
			slog.Warn("metrics push failed", "error", err)
		}
	}
	return nil
}
