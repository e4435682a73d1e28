package main

import (
	"context"
	"fmt"
	"os"

	"github.com/grachmannico95/payment-engine/internal/config"
	"github.com/grachmannico95/payment-engine/internal/ledger"
	"github.com/grachmannico95/payment-engine/internal/service"
	"github.com/grachmannico95/payment-engine/pkg/logger"
)

// The engine command reads a transaction CSV given as the single positional
// argument, folds it through one ledger in arrival order, and writes the
// final account snapshots as CSV to stdout. Diagnostics go to stderr, so the
// two streams stay separable.
func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "payment-engine: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s <transactions.csv>", args[0])
	}

	cfg := config.Load()
	log := logger.New(cfg.Logging.Level)
	defer log.Sync()

	file, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer file.Close()

	ctx := context.Background()

	led := ledger.New()
	processor := service.NewProcessor(log)

	if _, err := processor.ProcessStream(ctx, file, led); err != nil {
		return err
	}

	return service.WriteSnapshots(os.Stdout, led.Snapshots())
}
