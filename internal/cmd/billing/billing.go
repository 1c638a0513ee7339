// Package billing parses billing command flags and launches the billing runtime.
package billing

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/inkledger/inkledger/internal/platform/cmd"
	billingserver "github.com/inkledger/inkledger/internal/services/billing/app"
)

// Config holds billing command configuration.
type Config struct {
	Port          int           `env:"INKLEDGER_BILLING_PORT" envDefault:"8093"`
	DBPath        string        `env:"INKLEDGER_BILLING_DB_PATH" envDefault:"data/billing.db"`
	SweepInterval time.Duration `env:"INKLEDGER_BILLING_SWEEP_INTERVAL" envDefault:"1h"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The billing health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The billing SQLite database path")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "Overdue installment sweep interval")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the billing runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBilling, func(ctx context.Context) error {
		return billingserver.Run(ctx, billingserver.RuntimeConfig{
			Port:          cfg.Port,
			DBPath:        cfg.DBPath,
			SweepInterval: cfg.SweepInterval,
		})
	})
}
