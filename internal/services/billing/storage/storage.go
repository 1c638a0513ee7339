// Package storage defines the persistence records and interfaces for the
// billing service. Statuses persist as their canonical TEXT names and
// timestamps as UTC Unix milliseconds.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested billing record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// OrderRecord stores one order row.
type OrderRecord struct {
	ID            string
	MemberID      string
	BranchID      string
	TotalAmount   int64
	Status        string
	PaymentType   string
	IsInstallment bool
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InstallmentRecord stores one scheduled payment row.
type InstallmentRecord struct {
	ID            string
	OrderID       string
	InstallmentNo int
	DueDate       time.Time
	Amount        int64
	Status        string
	PaidAt        *time.Time
	PaymentMethod string
	Notes         string
	IsCustom      bool
	AutoAdjusted  bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MemberRecord stores one member row with the lifetime spend aggregate.
type MemberRecord struct {
	ID            string
	DisplayName   string
	BranchID      string
	LifetimeSpend int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OverdueRecord stores one overdue installment joined with order and member
// context for reporting.
type OverdueRecord struct {
	Installment InstallmentRecord
	OrderTotal  int64
	OrderStatus string
	MemberID    string
	MemberName  string
	BranchID    string
}

// EventRecord stores one structured operation event.
type EventRecord struct {
	ID         string
	EventType  string
	OccurredAt time.Time
	FieldsJSON string
}

// OrderStore persists orders and their installment plans.
type OrderStore interface {
	PutOrder(ctx context.Context, record OrderRecord) error
	GetOrder(ctx context.Context, orderID string) (OrderRecord, error)
	GetInstallment(ctx context.Context, installmentID string) (InstallmentRecord, error)
	ListInstallments(ctx context.Context, orderID string) ([]InstallmentRecord, error)
	// InOrderTx runs fn inside one write transaction scoped to orderID.
	// The transaction commits only when fn returns nil; any error rolls
	// back every write fn made.
	InOrderTx(ctx context.Context, orderID string, fn func(tx OrderTx) error) error
}

// OrderTx is the order-scoped unit of work handed to InOrderTx callbacks.
type OrderTx interface {
	GetOrder(ctx context.Context) (OrderRecord, error)
	UpdateOrder(ctx context.Context, record OrderRecord) error
	ListInstallments(ctx context.Context) ([]InstallmentRecord, error)
	PutInstallment(ctx context.Context, record InstallmentRecord) error
	DeleteInstallment(ctx context.Context, installmentID string) error
	DeleteInstallments(ctx context.Context) error
	IncrementMemberSpend(ctx context.Context, memberID string, amount int64) error
}

// SweepStore serves the overdue sweeper and its report.
type SweepStore interface {
	// MarkOverdue transitions UNPAID installments with due dates before now
	// to OVERDUE in one batch and reports rows changed.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	// ListOverdue returns overdue installments with order and member
	// context, optionally narrowed by an AIP-160 filter expression.
	ListOverdue(ctx context.Context, filter string) ([]OverdueRecord, error)
}

// MemberStore persists member rows.
type MemberStore interface {
	PutMember(ctx context.Context, record MemberRecord) error
	GetMember(ctx context.Context, memberID string) (MemberRecord, error)
}

// EventStore persists structured operation events.
type EventStore interface {
	AppendEvent(ctx context.Context, record EventRecord) error
	ListEvents(ctx context.Context, eventType string, limit int) ([]EventRecord, error)
}
