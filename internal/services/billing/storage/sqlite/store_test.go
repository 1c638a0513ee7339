package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/inkledger/inkledger/internal/services/billing/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenAppliesConcurrencyPragmas(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	var journalMode string
	if err := store.sqlDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if !strings.EqualFold(journalMode, "wal") {
		t.Errorf("journal_mode = %q, want wal", journalMode)
	}

	var busyTimeout int
	if err := store.sqlDB.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatalf("read busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", busyTimeout)
	}
}

func TestPutGetOrderRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	input := storage.OrderRecord{
		ID:            "order-1",
		MemberID:      "member-1",
		BranchID:      "branch-1",
		TotalAmount:   1000,
		Status:        "PENDING_PAYMENT",
		PaymentType:   "INSTALLMENT",
		IsInstallment: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.PutOrder(context.Background(), input); err != nil {
		t.Fatalf("put order: %v", err)
	}

	got, err := store.GetOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got != input {
		t.Fatalf("order = %+v, want %+v", got, input)
	}

	paidAt := now.Add(time.Hour)
	input.Status = "PAID_COMPLETE"
	input.PaidAt = &paidAt
	input.UpdatedAt = paidAt
	if err := store.PutOrder(context.Background(), input); err != nil {
		t.Fatalf("update order: %v", err)
	}
	got, err = store.GetOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("get updated order: %v", err)
	}
	if got.Status != "PAID_COMPLETE" {
		t.Fatalf("status = %q, want %q", got.Status, "PAID_COMPLETE")
	}
	if got.PaidAt == nil || !got.PaidAt.Equal(paidAt) {
		t.Fatalf("paid_at = %v, want %v", got.PaidAt, paidAt)
	}
}

func TestGetOrderMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	if _, err := store.GetOrder(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing order err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestOrderTxWritesCommitTogether(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, store, "order-1", 1000, now)

	err := store.InOrderTx(context.Background(), "order-1", func(tx storage.OrderTx) error {
		for i, amount := range []int64{333, 333, 334} {
			if err := tx.PutInstallment(context.Background(), storage.InstallmentRecord{
				ID:            "inst-" + string(rune('1'+i)),
				OrderID:       "order-1",
				InstallmentNo: i + 1,
				DueDate:       now.AddDate(0, i+1, 0),
				Amount:        amount,
				Status:        "UNPAID",
				CreatedAt:     now,
				UpdatedAt:     now,
			}); err != nil {
				return err
			}
		}
		record, err := tx.GetOrder(context.Background())
		if err != nil {
			return err
		}
		record.Status = "INSTALLMENT_ACTIVE"
		record.UpdatedAt = now.Add(time.Minute)
		return tx.UpdateOrder(context.Background(), record)
	})
	if err != nil {
		t.Fatalf("order transaction: %v", err)
	}

	installments, err := store.ListInstallments(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	if len(installments) != 3 {
		t.Fatalf("installments = %d, want 3", len(installments))
	}
	for i, installment := range installments {
		if installment.InstallmentNo != i+1 {
			t.Fatalf("installment %d number = %d, want %d", i, installment.InstallmentNo, i+1)
		}
	}
	order, err := store.GetOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.Status != "INSTALLMENT_ACTIVE" {
		t.Fatalf("order status = %q, want %q", order.Status, "INSTALLMENT_ACTIVE")
	}
}

func TestOrderTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, store, "order-1", 1000, now)

	wantErr := errors.New("boom")
	err := store.InOrderTx(context.Background(), "order-1", func(tx storage.OrderTx) error {
		if err := tx.PutInstallment(context.Background(), storage.InstallmentRecord{
			ID:            "inst-1",
			OrderID:       "order-1",
			InstallmentNo: 1,
			DueDate:       now.AddDate(0, 1, 0),
			Amount:        1000,
			Status:        "UNPAID",
			CreatedAt:     now,
			UpdatedAt:     now,
		}); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("order transaction err = %v, want %v", err, wantErr)
	}

	installments, err := store.ListInstallments(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	if len(installments) != 0 {
		t.Fatalf("installments after rollback = %d, want 0", len(installments))
	}
}

func TestPutInstallmentRejectsDuplicateNumber(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, store, "order-1", 1000, now)

	err := store.InOrderTx(context.Background(), "order-1", func(tx storage.OrderTx) error {
		for _, id := range []string{"inst-1", "inst-2"} {
			if err := tx.PutInstallment(context.Background(), storage.InstallmentRecord{
				ID:            id,
				OrderID:       "order-1",
				InstallmentNo: 1,
				DueDate:       now.AddDate(0, 1, 0),
				Amount:        500,
				Status:        "UNPAID",
				CreatedAt:     now,
				UpdatedAt:     now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate installment number err = %v, want %v", err, storage.ErrConflict)
	}
}

func TestPutInstallmentRequiresExistingOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	err := store.InOrderTx(context.Background(), "missing-order", func(tx storage.OrderTx) error {
		return tx.PutInstallment(context.Background(), storage.InstallmentRecord{
			ID:            "inst-1",
			OrderID:       "missing-order",
			InstallmentNo: 1,
			DueDate:       now.AddDate(0, 1, 0),
			Amount:        500,
			Status:        "UNPAID",
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("missing order parent err = %v, want %v", err, storage.ErrConflict)
	}
}

func TestDeleteInstallmentsClearsPlan(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, store, "order-1", 1000, now)
	seedPlan(t, store, "order-1", now, 333, 333, 334)

	err := store.InOrderTx(context.Background(), "order-1", func(tx storage.OrderTx) error {
		return tx.DeleteInstallments(context.Background())
	})
	if err != nil {
		t.Fatalf("delete installments: %v", err)
	}

	installments, err := store.ListInstallments(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	if len(installments) != 0 {
		t.Fatalf("installments = %d, want 0", len(installments))
	}
}

func TestDeleteInstallmentMissingReturnsNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, store, "order-1", 1000, now)

	err := store.InOrderTx(context.Background(), "order-1", func(tx storage.OrderTx) error {
		return tx.DeleteInstallment(context.Background(), "missing")
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete missing installment err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestIncrementMemberSpendAccumulates(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, store, "order-1", 1000, now)
	if err := store.PutMember(context.Background(), storage.MemberRecord{
		ID:          "member-1",
		DisplayName: "Ada",
		BranchID:    "branch-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("put member: %v", err)
	}

	for _, amount := range []int64{333, 334} {
		amount := amount
		if err := store.InOrderTx(context.Background(), "order-1", func(tx storage.OrderTx) error {
			return tx.IncrementMemberSpend(context.Background(), "member-1", amount)
		}); err != nil {
			t.Fatalf("increment member spend: %v", err)
		}
	}

	member, err := store.GetMember(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member.LifetimeSpend != 667 {
		t.Fatalf("lifetime spend = %d, want 667", member.LifetimeSpend)
	}
	if member.DisplayName != "Ada" {
		t.Fatalf("display name = %q, want %q", member.DisplayName, "Ada")
	}
}

func TestIncrementMemberSpendCreatesMissingMember(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, store, "order-1", 1000, now)

	if err := store.InOrderTx(context.Background(), "order-1", func(tx storage.OrderTx) error {
		return tx.IncrementMemberSpend(context.Background(), "member-new", 250)
	}); err != nil {
		t.Fatalf("increment member spend: %v", err)
	}

	member, err := store.GetMember(context.Background(), "member-new")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member.LifetimeSpend != 250 {
		t.Fatalf("lifetime spend = %d, want 250", member.LifetimeSpend)
	}
}

func TestMarkOverdueIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, store, "order-1", 1000, now)

	err := store.InOrderTx(context.Background(), "order-1", func(tx storage.OrderTx) error {
		for i, due := range []time.Time{now.AddDate(0, -2, 0), now.AddDate(0, -1, 0), now.AddDate(0, 1, 0)} {
			if err := tx.PutInstallment(context.Background(), storage.InstallmentRecord{
				ID:            "inst-" + string(rune('1'+i)),
				OrderID:       "order-1",
				InstallmentNo: i + 1,
				DueDate:       due,
				Amount:        333,
				Status:        "UNPAID",
				CreatedAt:     now,
				UpdatedAt:     now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed installments: %v", err)
	}

	changed, err := store.MarkOverdue(context.Background(), now)
	if err != nil {
		t.Fatalf("mark overdue: %v", err)
	}
	if changed != 2 {
		t.Fatalf("first sweep changed = %d, want 2", changed)
	}

	changed, err = store.MarkOverdue(context.Background(), now)
	if err != nil {
		t.Fatalf("second mark overdue: %v", err)
	}
	if changed != 0 {
		t.Fatalf("second sweep changed = %d, want 0", changed)
	}

	installments, err := store.ListInstallments(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("list installments: %v", err)
	}
	if installments[0].Status != "OVERDUE" || installments[1].Status != "OVERDUE" {
		t.Fatalf("past-due statuses = %q/%q, want OVERDUE/OVERDUE", installments[0].Status, installments[1].Status)
	}
	if installments[2].Status != "UNPAID" {
		t.Fatalf("future installment status = %q, want UNPAID", installments[2].Status)
	}
}

func TestListOverdueJoinsOrderAndMember(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, store, "order-1", 1000, now)
	if err := store.PutMember(context.Background(), storage.MemberRecord{
		ID:          "member-1",
		DisplayName: "Ada",
		BranchID:    "branch-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		t.Fatalf("put member: %v", err)
	}

	err := store.InOrderTx(context.Background(), "order-1", func(tx storage.OrderTx) error {
		return tx.PutInstallment(context.Background(), storage.InstallmentRecord{
			ID:            "inst-1",
			OrderID:       "order-1",
			InstallmentNo: 1,
			DueDate:       now.AddDate(0, -1, 0),
			Amount:        1000,
			Status:        "UNPAID",
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	})
	if err != nil {
		t.Fatalf("seed installment: %v", err)
	}
	if _, err := store.MarkOverdue(context.Background(), now); err != nil {
		t.Fatalf("mark overdue: %v", err)
	}

	results, err := store.ListOverdue(context.Background(), "")
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("overdue results = %d, want 1", len(results))
	}
	got := results[0]
	if got.Installment.ID != "inst-1" {
		t.Fatalf("installment id = %q, want %q", got.Installment.ID, "inst-1")
	}
	if got.OrderTotal != 1000 {
		t.Fatalf("order total = %d, want 1000", got.OrderTotal)
	}
	if got.MemberID != "member-1" || got.MemberName != "Ada" {
		t.Fatalf("member = %q/%q, want member-1/Ada", got.MemberID, got.MemberName)
	}
	if got.BranchID != "branch-1" {
		t.Fatalf("branch = %q, want branch-1", got.BranchID)
	}

	filtered, err := store.ListOverdue(context.Background(), `branch_id = "branch-other"`)
	if err != nil {
		t.Fatalf("list overdue filtered: %v", err)
	}
	if len(filtered) != 0 {
		t.Fatalf("filtered results = %d, want 0", len(filtered))
	}

	filtered, err = store.ListOverdue(context.Background(), `branch_id = "branch-1" AND amount >= 500`)
	if err != nil {
		t.Fatalf("list overdue filtered by branch and amount: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("branch-and-amount results = %d, want 1", len(filtered))
	}
}

func TestListOverdueRejectsInvalidFilter(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	if _, err := store.ListOverdue(context.Background(), `secret_column = "x"`); err == nil {
		t.Fatal("expected invalid filter error")
	}
}

func TestAppendAndListEvents(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := store.AppendEvent(context.Background(), storage.EventRecord{
			ID:         "event-" + string(rune('1'+i)),
			EventType:  "billing.installment.paid",
			OccurredAt: now.Add(time.Duration(i) * time.Minute),
			FieldsJSON: `{"order_id":"order-1"}`,
		}); err != nil {
			t.Fatalf("append event %d: %v", i, err)
		}
	}

	events, err := store.ListEvents(context.Background(), "billing.installment.paid", 2)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].ID != "event-3" || events[1].ID != "event-2" {
		t.Fatalf("event order = %q/%q, want event-3/event-2", events[0].ID, events[1].ID)
	}

	err = store.AppendEvent(context.Background(), storage.EventRecord{
		ID:         "event-1",
		EventType:  "billing.installment.paid",
		OccurredAt: now,
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("duplicate event err = %v, want %v", err, storage.ErrConflict)
	}
}

func seedOrder(t *testing.T, store *Store, orderID string, total int64, now time.Time) {
	t.Helper()
	if err := store.PutOrder(context.Background(), storage.OrderRecord{
		ID:            orderID,
		MemberID:      "member-1",
		BranchID:      "branch-1",
		TotalAmount:   total,
		Status:        "PENDING_PAYMENT",
		PaymentType:   "INSTALLMENT",
		IsInstallment: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}); err != nil {
		t.Fatalf("seed order %s: %v", orderID, err)
	}
}

func seedPlan(t *testing.T, store *Store, orderID string, now time.Time, amounts ...int64) {
	t.Helper()
	err := store.InOrderTx(context.Background(), orderID, func(tx storage.OrderTx) error {
		for i, amount := range amounts {
			if err := tx.PutInstallment(context.Background(), storage.InstallmentRecord{
				ID:            orderID + "-inst-" + string(rune('1'+i)),
				OrderID:       orderID,
				InstallmentNo: i + 1,
				DueDate:       now.AddDate(0, i+1, 0),
				Amount:        amount,
				Status:        "UNPAID",
				CreatedAt:     now,
				UpdatedAt:     now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed plan %s: %v", orderID, err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "billing.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}
