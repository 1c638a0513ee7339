// Package sweeper parses sweeper command flags and runs one overdue sweep.
package sweeper

import (
	"context"
	"flag"
	"log"

	entrypoint "github.com/inkledger/inkledger/internal/platform/cmd"
	billingserver "github.com/inkledger/inkledger/internal/services/billing/app"
)

// Config holds sweeper command configuration.
type Config struct {
	DBPath string `env:"INKLEDGER_BILLING_DB_PATH" envDefault:"data/billing.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The billing SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run performs a single overdue sweep and logs the result.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSweeper, func(ctx context.Context) error {
		changed, err := billingserver.RunSweepOnce(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		log.Printf("overdue sweep marked %d installments", changed)
		return nil
	})
}
