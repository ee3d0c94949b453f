// Command reset-revenue moves every delivered order back to Pending, which
// zeroes the revenue figure on the admin dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/partify/internal/config"
	"github.com/Skotchmaster/partify/internal/logging"
	"github.com/Skotchmaster/partify/internal/mykafka"
	"github.com/Skotchmaster/partify/internal/service"
	"github.com/Skotchmaster/partify/internal/store"
)

func main() {
	envFile := flag.String("env", ".env", "optional env file")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("warning: could not load %s: %v", *envFile, err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "command", "reset-revenue")
	slog.SetDefault(logger)

	if err := run(cfg, logger, *timeout); err != nil {
		logger.Error("reset_revenue_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	st, closeStore, err := store.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("store open: %w", err)
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			logger.Error("store_close_failed", "error", err)
		}
	}()

	admin := &service.AdminService{Products: st, Orders: st, Users: st}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		defer producer.Close()
		admin.Events = producer
	}

	n, err := admin.ResetRevenue(logging.IntoContext(ctx, logger))
	if err != nil {
		return err
	}

	logger.Info("reset_revenue_success", "orders", n)
	fmt.Printf("Revenue cleared: %d delivered orders moved back to Pending\n", n)
	return nil
}
