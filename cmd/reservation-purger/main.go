// Command reservation-purger cancels PENDING orders older than a TTL,
// releasing their stock reservations. Meant to run on a schedule (cron or a
// Kubernetes CronJob).
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	inventorypostgres "github.com/dominusaudio/commerce-api/internal/domains/inventory/adapters/persistence/postgres"
	inventoryapp "github.com/dominusaudio/commerce-api/internal/domains/inventory/application"
	orderspostgres "github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/persistence/postgres"
	"github.com/dominusaudio/commerce-api/internal/domains/orders/adapters/stock"
	ordersapp "github.com/dominusaudio/commerce-api/internal/domains/orders/application"
	ordersports "github.com/dominusaudio/commerce-api/internal/domains/orders/ports"
	platformpostgres "github.com/dominusaudio/commerce-api/internal/platform/postgres"
)

const defaultPendingTTL = 72 * time.Hour

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		log.Fatal("POSTGRES_DSN not set; cannot purge stale orders")
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer platformpostgres.Close(db, logger)

	runner := platformpostgres.NewTxRunner(db)
	inventoryService := inventoryapp.NewService(inventorypostgres.NewRepository(db), runner)
	orderService := ordersapp.NewService(
		orderspostgres.NewRepository(db),
		stock.NewLedger(inventoryService),
		nil, // cart access is not needed to expire orders
		nil,
		nil,
		ordersports.NopPublisher{},
		runner,
	)

	cutoff := time.Now().Add(-pendingTTLFromEnv())
	cancelled, err := orderService.CancelStalePending(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to cancel stale orders: %v", err)
	}
	log.Printf("reservation purge completed, %d orders cancelled", cancelled)
}

func pendingTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("PENDING_ORDER_TTL_HOURS"))
	if raw == "" {
		return defaultPendingTTL
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return defaultPendingTTL
	}
	return time.Duration(hours) * time.Hour
}
