package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/inkledger/inkledger/internal/services/billing/domain"
)

func TestRunSweepLoopMarksOverdueUntilCancelled(t *testing.T) {
	t.Parallel()

	store := openTempBillingStore(t)
	service := NewService(store)
	manager := domain.Actor{ID: "user-1", Role: domain.RoleManager}
	past := time.Now().UTC().AddDate(0, -2, 0)

	order, err := service.CreateOrder(context.Background(), manager, domain.CreateOrderInput{
		MemberID:    "member-1",
		BranchID:    "branch-1",
		TotalAmount: 900,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, _, err := service.CompleteOrderPayment(context.Background(), manager, domain.CompleteOrderPaymentInput{
		OrderID:          order.ID,
		PaymentType:      domain.PaymentTypeInstallment,
		InstallmentCount: 3,
		FirstDueDate:     &past,
	}); err != nil {
		t.Fatalf("complete order payment: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := runSweepLoop(ctx, service, 10*time.Millisecond); err != nil {
		t.Fatalf("run sweep loop: %v", err)
	}

	installments, err := store.ListInstallments(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	overdue := 0
	for _, inst := range installments {
		if inst.Status == "OVERDUE" {
			overdue++
		}
	}
	if overdue == 0 {
		t.Fatal("expected the sweep loop to mark overdue installments")
	}
}

func TestRunSweepOnceReportsChanged(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "billing.db")

	store, err := openBillingStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	service := NewService(store)
	manager := domain.Actor{ID: "user-1", Role: domain.RoleManager}
	past := time.Now().UTC().AddDate(0, -1, 0)

	order, err := service.CreateOrder(context.Background(), manager, domain.CreateOrderInput{
		MemberID:    "member-1",
		BranchID:    "branch-1",
		TotalAmount: 400,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, _, err := service.CompleteOrderPayment(context.Background(), manager, domain.CompleteOrderPaymentInput{
		OrderID:          order.ID,
		PaymentType:      domain.PaymentTypeInstallment,
		InstallmentCount: 1,
		FirstDueDate:     &past,
	}); err != nil {
		t.Fatalf("complete order payment: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	changed, err := RunSweepOnce(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("run sweep once: %v", err)
	}
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}

	changed, err = RunSweepOnce(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if changed != 0 {
		t.Fatalf("second sweep changed = %d, want 0", changed)
	}
}
