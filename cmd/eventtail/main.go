// Command eventtail follows the map screen event stream and logs each
// event as it arrives.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	natsadapter "github.com/samirrijal/routeview/internal/adapters/nats"
	"github.com/samirrijal/routeview/internal/core/domain"
	"github.com/samirrijal/routeview/internal/pkg/config"
	"github.com/samirrijal/routeview/internal/pkg/logging"
)

func main() {
	cfg, err := config.LoadConsumer("routeview-eventtail")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.NATS.Durable)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	var (
		mu     sync.Mutex
		counts = make(map[domain.ScreenEventType]int)
	)
	err = sub.SubscribeScreenEvents(ctx, func(ctx context.Context, evt *domain.ScreenEvent) error {
		mu.Lock()
		counts[evt.Type]++
		mu.Unlock()

		attrs := []any{
			"id", evt.ID.String(),
			"screen_id", evt.ScreenID.String(),
			"type", evt.Type,
			"time", evt.Time,
		}
		if evt.Role != "" {
			attrs = append(attrs, "role", evt.Role)
		}
		if evt.Coordinate != nil {
			attrs = append(attrs, "latitude", evt.Coordinate.Latitude, "longitude", evt.Coordinate.Longitude)
		}
		if evt.Outcome != "" {
			attrs = append(attrs, "outcome", evt.Outcome)
		}
		if evt.Error != "" {
			attrs = append(attrs, "error", evt.Error)
		}
		slog.Info("screen event", attrs...)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("tailing screen events", "stream", natsadapter.StreamName, "durable", cfg.NATS.Durable)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	mu.Lock()
	defer mu.Unlock()
	slog.Info("shutdown signal received", "signal", sig.String(), "counts", counts)
}
