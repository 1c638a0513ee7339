// Package app wires the billing runtime: storage, the domain service, the
// health endpoint, and the overdue sweep loop.
package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/inkledger/inkledger/internal/services/billing/authz"
	"github.com/inkledger/inkledger/internal/services/billing/domain"
	billingsqlite "github.com/inkledger/inkledger/internal/services/billing/storage/sqlite"
	"github.com/inkledger/inkledger/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls billing runtime startup and sweep behavior.
type RuntimeConfig struct {
	Port          int
	DBPath        string
	SweepInterval time.Duration
}

const (
	defaultBillingPort   = 8093
	defaultBillingDB     = "data/billing.db"
	defaultSweepInterval = time.Hour
)

// sweepActor runs the periodic sweep with operator privileges.
var sweepActor = domain.Actor{ID: "system.sweeper", Role: domain.RoleOwner}

// Run starts billing runtime dependencies and the periodic overdue sweep.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultBillingPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultBillingDB
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	store, err := openBillingStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close billing sqlite store: %v", closeErr)
		}
	}()

	service := NewService(store)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on billing port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(errorUnaryInterceptor),
	)
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("billing.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("billing server listening at %v", listener.Addr())
	return runSweepLoop(ctx, service, cfg.SweepInterval)
}

// NewService assembles the billing domain service over one sqlite store.
func NewService(store *billingsqlite.Store) *domain.Service {
	adapter := newDomainStoreAdapter(store, store)
	emitter := telemetry.NewEmitter(newEventStoreAdapter(store), nil)
	return domain.NewService(adapter, authz.NewPolicy(), emitter, nil, nil)
}

// RunSweepOnce performs a single overdue sweep against the store at dbPath.
func RunSweepOnce(ctx context.Context, dbPath string) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(dbPath) == "" {
		dbPath = defaultBillingDB
	}
	store, err := openBillingStore(dbPath)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close billing sqlite store: %v", closeErr)
		}
	}()
	return NewService(store).MarkOverdue(ctx, sweepActor)
}

func runSweepLoop(ctx context.Context, service *domain.Service, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changed, err := service.MarkOverdue(ctx, sweepActor)
			if err != nil {
				log.Printf("overdue sweep: %v", err)
				continue
			}
			if changed > 0 {
				log.Printf("overdue sweep marked %d installments", changed)
			}
		}
	}
}

func openBillingStore(path string) (*billingsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create billing storage dir: %w", err)
		}
	}
	store, err := billingsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open billing sqlite store: %w", err)
	}
	return store, nil
}
