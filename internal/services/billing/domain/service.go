package domain

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/inkledger/inkledger/internal/platform/id"
	"github.com/inkledger/inkledger/internal/telemetry"
)

// Store is the domain persistence boundary for billing behavior. Mutations
// that touch an order's plan run through InOrderTx so the sum invariant is
// checked and committed atomically per order.
type Store interface {
	PutOrder(ctx context.Context, order Order) error
	GetOrder(ctx context.Context, orderID string) (Order, error)
	GetInstallment(ctx context.Context, installmentID string) (Installment, error)
	ListInstallments(ctx context.Context, orderID string) ([]Installment, error)
	// InOrderTx runs fn inside one atomic transaction scoped to orderID.
	// Two concurrent transactions on the same order serialize; the
	// transaction commits only when fn returns nil.
	InOrderTx(ctx context.Context, orderID string, fn func(tx OrderTx) error) error
	// MarkOverdue transitions every UNPAID installment past its due date to
	// OVERDUE in one batch and reports the number of rows changed.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	// ListOverdue returns overdue installments joined with order and member
	// context, optionally narrowed by an AIP-160 filter expression.
	ListOverdue(ctx context.Context, filter string) ([]OverdueInstallment, error)
}

// OrderTx is the order-scoped unit of work used by mutating operations.
type OrderTx interface {
	GetOrder(ctx context.Context) (Order, error)
	UpdateOrder(ctx context.Context, order Order) error
	// ListInstallments returns the order's installments sorted by
	// installment number.
	ListInstallments(ctx context.Context) ([]Installment, error)
	PutInstallment(ctx context.Context, installment Installment) error
	DeleteInstallment(ctx context.Context, installmentID string) error
	DeleteInstallments(ctx context.Context) error
	IncrementMemberSpend(ctx context.Context, memberID string, amount int64) error
}

// Service orchestrates installment plan lifecycle behavior.
type Service struct {
	store  Store
	gate   AccessGate
	events telemetry.Sink
	clock  func() time.Time
	newID  func() (string, error)
}

// NewService constructs billing domain use-cases.
func NewService(store Store, gate AccessGate, events telemetry.Sink, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	if events == nil {
		events = telemetry.NopSink{}
	}
	if gate == nil {
		gate = denyAll{}
	}
	return &Service{
		store:  store,
		gate:   gate,
		events: events,
		clock:  clock,
		newID:  newID,
	}
}

// CreateOrderInput describes a new order registration.
type CreateOrderInput struct {
	MemberID    string
	BranchID    string
	TotalAmount int64
}

// CreateOrder registers an order pending payment.
func (s *Service) CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (Order, error) {
	if s == nil || s.store == nil {
		return Order{}, ErrStoreNotConfigured
	}
	if input.TotalAmount <= 0 {
		return Order{}, ErrOrderTotalInvalid
	}
	orderID, err := s.newID()
	if err != nil {
		return Order{}, err
	}
	now := s.nowUTC()
	order := Order{
		ID:          orderID,
		MemberID:    input.MemberID,
		BranchID:    input.BranchID,
		TotalAmount: input.TotalAmount,
		Status:      OrderStatusPendingPayment,
		PaymentType: PaymentTypeOneTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !s.gate.CanReadOrder(actor, order) {
		return Order{}, ErrPermissionDenied
	}
	if err := s.store.PutOrder(ctx, order); err != nil {
		return Order{}, err
	}
	return order, nil
}

// BuildPlanInput describes a plan rebuild request.
type BuildPlanInput struct {
	OrderID            string
	PaymentType        PaymentType
	InstallmentCount   int
	FirstPaymentAmount int64
	// FirstDueDate anchors the monthly schedule; defaults to one month
	// after now.
	FirstDueDate *time.Time
}

// BuildPlan deletes any prior installments for the order and builds the
// schedule from scratch, so repeated calls are an idempotent rebuild. The
// rebuild is rejected once any installment is paid.
func (s *Service) BuildPlan(ctx context.Context, actor Actor, input BuildPlanInput) (Order, []Installment, error) {
	if s == nil || s.store == nil {
		return Order{}, nil, ErrStoreNotConfigured
	}
	if input.PaymentType != PaymentTypeOneTime && input.PaymentType != PaymentTypeInstallment {
		return Order{}, nil, ErrPaymentTypeInvalid
	}

	var (
		order        Order
		installments []Installment
	)
	err := s.store.InOrderTx(ctx, input.OrderID, func(tx OrderTx) error {
		var err error
		order, err = tx.GetOrder(ctx)
		if err != nil {
			return err
		}
		if !s.gate.CanReadOrder(actor, order) {
			return ErrPermissionDenied
		}
		if order.Status.Terminal() {
			return errOrderStatusTerminal(order.Status)
		}
		existing, err := tx.ListInstallments(ctx)
		if err != nil {
			return err
		}
		for _, inst := range existing {
			if inst.Status == InstallmentStatusPaid {
				return ErrOrderPlanLocked
			}
		}

		now := s.nowUTC()
		if input.PaymentType == PaymentTypeOneTime {
			if err := tx.DeleteInstallments(ctx); err != nil {
				return err
			}
			order.PaymentType = PaymentTypeOneTime
			order.IsInstallment = false
			order.Status = OrderStatusPendingPayment
			order.UpdatedAt = now
			installments = nil
			return tx.UpdateOrder(ctx, order)
		}

		amounts, err := planAmounts(order.TotalAmount, input.InstallmentCount, input.FirstPaymentAmount)
		if err != nil {
			return err
		}
		first := now.AddDate(0, 1, 0)
		if input.FirstDueDate != nil {
			if input.FirstDueDate.IsZero() {
				return ErrDueDateInvalid
			}
			first = input.FirstDueDate.UTC()
		}
		dates := dueDates(first, len(amounts))

		if err := tx.DeleteInstallments(ctx); err != nil {
			return err
		}
		installments = make([]Installment, 0, len(amounts))
		for i, amount := range amounts {
			installmentID, err := s.newID()
			if err != nil {
				return err
			}
			inst := Installment{
				ID:            installmentID,
				OrderID:       order.ID,
				InstallmentNo: i + 1,
				DueDate:       dates[i],
				Amount:        amount,
				Status:        InstallmentStatusUnpaid,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.PutInstallment(ctx, inst); err != nil {
				return err
			}
			installments = append(installments, inst)
		}
		order.PaymentType = PaymentTypeInstallment
		order.IsInstallment = true
		order.Status = OrderStatusPendingPayment
		order.UpdatedAt = now
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return Order{}, nil, err
	}
	s.emit(ctx, telemetry.EventPlanCreated, map[string]string{
		"order_id":     order.ID,
		"payment_type": order.PaymentType.String(),
		"installments": strconv.Itoa(len(installments)),
	})
	return order, installments, nil
}

// AdjustResult carries the updated installment set and the calculation
// breakdown for one adjustment.
type AdjustResult struct {
	Installments []Installment
	Breakdown    AdjustBreakdown
}

// AdjustInstallment sets one installment's amount and rebalances the rest of
// the schedule so the plan still sums to the order total. Privileged.
func (s *Service) AdjustInstallment(ctx context.Context, actor Actor, orderID string, installmentNo int, newAmount int64) (AdjustResult, error) {
	if s == nil || s.store == nil {
		return AdjustResult{}, ErrStoreNotConfigured
	}
	if !s.gate.IsPrivileged(actor) {
		return AdjustResult{}, ErrPermissionDenied
	}
	if newAmount <= 0 {
		return AdjustResult{}, ErrAmountNotPositive
	}

	var result AdjustResult
	err := s.store.InOrderTx(ctx, orderID, func(tx OrderTx) error {
		order, err := tx.GetOrder(ctx)
		if err != nil {
			return err
		}
		if order.Status != OrderStatusInstallmentActive && order.Status != OrderStatusPartiallyPaid {
			return errOrderStatusDisallowsAdjustment(order.Status)
		}
		installments, err := tx.ListInstallments(ctx)
		if err != nil {
			return err
		}

		updated, breakdown, err := adjustPlan(installments, order.TotalAmount, installmentNo, newAmount)
		if err != nil {
			return err
		}

		now := s.nowUTC()
		for i, inst := range updated {
			prev := findInstallment(installments, inst.ID)
			if prev == nil || *prev == inst {
				continue
			}
			updated[i].UpdatedAt = now
			if err := tx.PutInstallment(ctx, updated[i]); err != nil {
				return err
			}
		}
		result = AdjustResult{Installments: updated, Breakdown: breakdown}
		return nil
	})
	if err != nil {
		return AdjustResult{}, err
	}
	s.emit(ctx, telemetry.EventInstallmentAdjusted, map[string]string{
		"order_id":       orderID,
		"installment_no": strconv.Itoa(installmentNo),
		"new_amount":     strconv.FormatInt(newAmount, 10),
		"remaining":      strconv.FormatInt(result.Breakdown.Remaining, 10),
		"adjustable":     strconv.Itoa(result.Breakdown.AdjustableCount),
	})
	return result, nil
}

// RecordPaymentInput describes a payment against one installment.
type RecordPaymentInput struct {
	PaymentMethod string
	PaidAt        *time.Time
	Notes         string
}

// RecordPayment marks one installment paid, credits the member's lifetime
// spend, and synchronizes the order status. Paying an installment twice is
// rejected, so the lifetime-spend credit happens exactly once.
func (s *Service) RecordPayment(ctx context.Context, actor Actor, installmentID string, input RecordPaymentInput) (Installment, error) {
	if s == nil || s.store == nil {
		return Installment{}, ErrStoreNotConfigured
	}
	if input.PaymentMethod == "" {
		return Installment{}, ErrPaymentMethodRequired
	}

	located, err := s.store.GetInstallment(ctx, installmentID)
	if err != nil {
		return Installment{}, err
	}

	var paid Installment
	err = s.store.InOrderTx(ctx, located.OrderID, func(tx OrderTx) error {
		order, err := tx.GetOrder(ctx)
		if err != nil {
			return err
		}
		if !s.gate.CanReadOrder(actor, order) {
			return ErrPermissionDenied
		}
		installments, err := tx.ListInstallments(ctx)
		if err != nil {
			return err
		}
		target := findInstallment(installments, installmentID)
		if target == nil {
			return ErrNotFound
		}
		switch target.Status {
		case InstallmentStatusPaid:
			return errInstallmentAlreadyPaid(target.InstallmentNo)
		case InstallmentStatusCancelled:
			return errInstallmentCancelled(target.InstallmentNo)
		}

		now := s.nowUTC()
		paidAt := now
		if input.PaidAt != nil {
			paidAt = input.PaidAt.UTC()
		}
		paid = *target
		paid.Status = InstallmentStatusPaid
		paid.PaidAt = &paidAt
		paid.PaymentMethod = input.PaymentMethod
		paid.Notes = input.Notes
		paid.UpdatedAt = now
		if err := tx.PutInstallment(ctx, paid); err != nil {
			return err
		}
		if err := tx.IncrementMemberSpend(ctx, order.MemberID, paid.Amount); err != nil {
			return err
		}

		for i := range installments {
			if installments[i].ID == installmentID {
				installments[i] = paid
			}
		}
		status := DeriveOrderStatus(order.Status, installments)
		if status != order.Status {
			order.Status = status
			if status == OrderStatusPaidComplete {
				order.PaidAt = &now
			}
			order.UpdatedAt = now
			if err := tx.UpdateOrder(ctx, order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Installment{}, err
	}
	s.emit(ctx, telemetry.EventInstallmentPaid, map[string]string{
		"order_id":       paid.OrderID,
		"installment_no": strconv.Itoa(paid.InstallmentNo),
		"amount":         strconv.FormatInt(paid.Amount, 10),
		"method":         paid.PaymentMethod,
	})
	return paid, nil
}

// UpdateInstallmentInput describes a metadata edit to one installment.
// Amount is deliberately absent; amounts change only through adjustment.
type UpdateInstallmentInput struct {
	DueDate *time.Time
	Notes   *string
}

// UpdateInstallment edits one installment's due date or notes. Privileged.
func (s *Service) UpdateInstallment(ctx context.Context, actor Actor, installmentID string, input UpdateInstallmentInput) (Installment, error) {
	if s == nil || s.store == nil {
		return Installment{}, ErrStoreNotConfigured
	}
	if !s.gate.IsPrivileged(actor) {
		return Installment{}, ErrPermissionDenied
	}
	if input.DueDate != nil && input.DueDate.IsZero() {
		return Installment{}, ErrDueDateInvalid
	}

	located, err := s.store.GetInstallment(ctx, installmentID)
	if err != nil {
		return Installment{}, err
	}

	var updated Installment
	err = s.store.InOrderTx(ctx, located.OrderID, func(tx OrderTx) error {
		installments, err := tx.ListInstallments(ctx)
		if err != nil {
			return err
		}
		target := findInstallment(installments, installmentID)
		if target == nil {
			return ErrNotFound
		}
		if target.Status == InstallmentStatusCancelled {
			return errInstallmentCancelled(target.InstallmentNo)
		}
		updated = *target
		if input.DueDate != nil {
			updated.DueDate = input.DueDate.UTC()
		}
		if input.Notes != nil {
			updated.Notes = *input.Notes
		}
		updated.UpdatedAt = s.nowUTC()
		return tx.PutInstallment(ctx, updated)
	})
	if err != nil {
		return Installment{}, err
	}
	s.emit(ctx, telemetry.EventInstallmentUpdated, map[string]string{
		"order_id":       updated.OrderID,
		"installment_no": strconv.Itoa(updated.InstallmentNo),
	})
	return updated, nil
}

// DeleteInstallment removes one unpaid installment, spreads its amount over
// the remaining adjustable installments, and renumbers the survivors so the
// sequence stays dense. Privileged.
func (s *Service) DeleteInstallment(ctx context.Context, actor Actor, installmentID string) error {
	if s == nil || s.store == nil {
		return ErrStoreNotConfigured
	}
	if !s.gate.IsPrivileged(actor) {
		return ErrPermissionDenied
	}

	located, err := s.store.GetInstallment(ctx, installmentID)
	if err != nil {
		return err
	}

	var removedNo int
	err = s.store.InOrderTx(ctx, located.OrderID, func(tx OrderTx) error {
		order, err := tx.GetOrder(ctx)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return errOrderStatusTerminal(order.Status)
		}
		installments, err := tx.ListInstallments(ctx)
		if err != nil {
			return err
		}
		target := findInstallment(installments, installmentID)
		if target == nil {
			return ErrNotFound
		}
		removedNo = target.InstallmentNo

		updated, err := removePlanSlot(installments, installmentID, order.TotalAmount)
		if err != nil {
			return err
		}
		if err := tx.DeleteInstallment(ctx, installmentID); err != nil {
			return err
		}
		now := s.nowUTC()
		for i, inst := range updated {
			prev := findInstallment(installments, inst.ID)
			if prev == nil || *prev == inst {
				continue
			}
			updated[i].UpdatedAt = now
			if err := tx.PutInstallment(ctx, updated[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.emit(ctx, telemetry.EventInstallmentDeleted, map[string]string{
		"order_id":       located.OrderID,
		"installment_no": strconv.Itoa(removedNo),
	})
	return nil
}

// CompleteOrderPaymentInput describes the checkout entry point.
type CompleteOrderPaymentInput struct {
	OrderID          string
	PaymentType      PaymentType
	InstallmentCount int
	// CustomPlan maps installment numbers to fixed amounts; entries become
	// locked installments that redistribution never touches.
	CustomPlan   map[int]int64
	FirstDueDate *time.Time
}

// CompleteOrderPayment is the checkout entry point: it rebuilds the plan and
// activates the order, or settles it outright for one-time payment.
func (s *Service) CompleteOrderPayment(ctx context.Context, actor Actor, input CompleteOrderPaymentInput) (Order, []Installment, error) {
	if s == nil || s.store == nil {
		return Order{}, nil, ErrStoreNotConfigured
	}
	if input.PaymentType != PaymentTypeOneTime && input.PaymentType != PaymentTypeInstallment {
		return Order{}, nil, ErrPaymentTypeInvalid
	}

	var (
		order        Order
		installments []Installment
	)
	err := s.store.InOrderTx(ctx, input.OrderID, func(tx OrderTx) error {
		var err error
		order, err = tx.GetOrder(ctx)
		if err != nil {
			return err
		}
		if !s.gate.CanReadOrder(actor, order) {
			return ErrPermissionDenied
		}
		if order.Status != OrderStatusPendingPayment && order.Status != OrderStatusInstallmentActive {
			return errOrderStatusTerminal(order.Status)
		}
		existing, err := tx.ListInstallments(ctx)
		if err != nil {
			return err
		}
		for _, inst := range existing {
			if inst.Status == InstallmentStatusPaid {
				return ErrOrderPlanLocked
			}
		}

		now := s.nowUTC()
		if input.PaymentType == PaymentTypeOneTime {
			if err := tx.DeleteInstallments(ctx); err != nil {
				return err
			}
			order.PaymentType = PaymentTypeOneTime
			order.IsInstallment = false
			order.Status = OrderStatusPaid
			order.PaidAt = &now
			order.UpdatedAt = now
			installments = nil
			return tx.UpdateOrder(ctx, order)
		}

		amounts, fixed, err := customPlanAmounts(order.TotalAmount, input.InstallmentCount, input.CustomPlan)
		if err != nil {
			return err
		}
		first := now.AddDate(0, 1, 0)
		if input.FirstDueDate != nil {
			if input.FirstDueDate.IsZero() {
				return ErrDueDateInvalid
			}
			first = input.FirstDueDate.UTC()
		}
		dates := dueDates(first, len(amounts))

		if err := tx.DeleteInstallments(ctx); err != nil {
			return err
		}
		installments = make([]Installment, 0, len(amounts))
		for i, amount := range amounts {
			installmentID, err := s.newID()
			if err != nil {
				return err
			}
			inst := Installment{
				ID:            installmentID,
				OrderID:       order.ID,
				InstallmentNo: i + 1,
				DueDate:       dates[i],
				Amount:        amount,
				Status:        InstallmentStatusUnpaid,
				IsCustom:      fixed[i],
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := tx.PutInstallment(ctx, inst); err != nil {
				return err
			}
			installments = append(installments, inst)
		}
		order.PaymentType = PaymentTypeInstallment
		order.IsInstallment = true
		order.Status = OrderStatusInstallmentActive
		order.UpdatedAt = now
		return tx.UpdateOrder(ctx, order)
	})
	if err != nil {
		return Order{}, nil, err
	}
	s.emit(ctx, telemetry.EventOrderCompleted, map[string]string{
		"order_id":     order.ID,
		"payment_type": order.PaymentType.String(),
		"status":       order.Status.String(),
	})
	return order, installments, nil
}

// MarkOverdue transitions every unpaid installment past its due date to
// OVERDUE and reports how many rows changed. Idempotent. Privileged.
func (s *Service) MarkOverdue(ctx context.Context, actor Actor) (int64, error) {
	if s == nil || s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	if !s.gate.IsPrivileged(actor) {
		return 0, ErrPermissionDenied
	}
	changed, err := s.store.MarkOverdue(ctx, s.nowUTC())
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.emit(ctx, telemetry.EventOverdueMarked, map[string]string{
			"changed": strconv.FormatInt(changed, 10),
		})
	}
	return changed, nil
}

// ListOverdue lists overdue installments with order and member context.
// Privileged, read-only.
func (s *Service) ListOverdue(ctx context.Context, actor Actor, filter string) ([]OverdueInstallment, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if !s.gate.IsPrivileged(actor) {
		return nil, ErrPermissionDenied
	}
	overdue, err := s.store.ListOverdue(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].Installment.DueDate.Before(overdue[j].Installment.DueDate)
	})
	return overdue, nil
}

// GetOrder returns one order with its installments for read paths.
func (s *Service) GetOrder(ctx context.Context, actor Actor, orderID string) (Order, []Installment, error) {
	if s == nil || s.store == nil {
		return Order{}, nil, ErrStoreNotConfigured
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, nil, err
	}
	if !s.gate.CanReadOrder(actor, order) {
		return Order{}, nil, ErrPermissionDenied
	}
	installments, err := s.store.ListInstallments(ctx, orderID)
	if err != nil {
		return Order{}, nil, err
	}
	return order, installments, nil
}

func (s *Service) emit(ctx context.Context, eventType string, fields map[string]string) {
	// Events describe committed work; a sink failure never fails the
	// operation.
	_ = s.events.Emit(ctx, telemetry.Event{
		Type:       eventType,
		OccurredAt: s.nowUTC(),
		Fields:     fields,
	})
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func findInstallment(installments []Installment, installmentID string) *Installment {
	for i := range installments {
		if installments[i].ID == installmentID {
			return &installments[i]
		}
	}
	return nil
}
