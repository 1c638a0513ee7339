package sweeper

import (
	"flag"
	"testing"
)

func TestParseConfig_ParsesEnvAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("sweeper", flag.ContinueOnError)
	t.Setenv("INKLEDGER_BILLING_DB_PATH", "data/from-env.db")

	cfg, err := ParseConfig(fs, []string{"-db-path", "data/from-flag.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/from-flag.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "data/from-flag.db")
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("sweeper", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/billing.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "data/billing.db")
	}
}
