package app

import (
	"context"
	"errors"
	"time"

	"github.com/inkledger/inkledger/internal/services/billing/domain"
	"github.com/inkledger/inkledger/internal/services/billing/storage"
)

// domainStoreAdapter implements domain.Store over the storage interfaces.
// Statuses cross the boundary as their canonical TEXT names.
type domainStoreAdapter struct {
	orders storage.OrderStore
	sweep  storage.SweepStore
}

func newDomainStoreAdapter(orders storage.OrderStore, sweep storage.SweepStore) *domainStoreAdapter {
	return &domainStoreAdapter{orders: orders, sweep: sweep}
}

func (a *domainStoreAdapter) PutOrder(ctx context.Context, order domain.Order) error {
	if a == nil || a.orders == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.orders.PutOrder(ctx, toStorageOrder(order)))
}

func (a *domainStoreAdapter) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if a == nil || a.orders == nil {
		return domain.Order{}, domain.ErrStoreNotConfigured
	}
	record, err := a.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, mapStorageError(err)
	}
	return toDomainOrder(record), nil
}

func (a *domainStoreAdapter) GetInstallment(ctx context.Context, installmentID string) (domain.Installment, error) {
	if a == nil || a.orders == nil {
		return domain.Installment{}, domain.ErrStoreNotConfigured
	}
	record, err := a.orders.GetInstallment(ctx, installmentID)
	if err != nil {
		return domain.Installment{}, mapStorageError(err)
	}
	return toDomainInstallment(record), nil
}

func (a *domainStoreAdapter) ListInstallments(ctx context.Context, orderID string) ([]domain.Installment, error) {
	if a == nil || a.orders == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.orders.ListInstallments(ctx, orderID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	installments := make([]domain.Installment, 0, len(records))
	for _, record := range records {
		installments = append(installments, toDomainInstallment(record))
	}
	return installments, nil
}

func (a *domainStoreAdapter) InOrderTx(ctx context.Context, orderID string, fn func(tx domain.OrderTx) error) error {
	if a == nil || a.orders == nil {
		return domain.ErrStoreNotConfigured
	}
	if fn == nil {
		return domain.ErrStoreNotConfigured
	}
	err := a.orders.InOrderTx(ctx, orderID, func(tx storage.OrderTx) error {
		return fn(&orderTxAdapter{tx: tx})
	})
	return mapStorageError(err)
}

func (a *domainStoreAdapter) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	if a == nil || a.sweep == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	changed, err := a.sweep.MarkOverdue(ctx, now)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return changed, nil
}

func (a *domainStoreAdapter) ListOverdue(ctx context.Context, filter string) ([]domain.OverdueInstallment, error) {
	if a == nil || a.sweep == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.sweep.ListOverdue(ctx, filter)
	if err != nil {
		return nil, mapStorageError(err)
	}
	overdue := make([]domain.OverdueInstallment, 0, len(records))
	for _, record := range records {
		overdue = append(overdue, domain.OverdueInstallment{
			Installment: toDomainInstallment(record.Installment),
			OrderTotal:  record.OrderTotal,
			OrderStatus: parseOrderStatus(record.OrderStatus),
			MemberID:    record.MemberID,
			MemberName:  record.MemberName,
			BranchID:    record.BranchID,
		})
	}
	return overdue, nil
}

// orderTxAdapter implements domain.OrderTx over one storage transaction.
type orderTxAdapter struct {
	tx storage.OrderTx
}

func (a *orderTxAdapter) GetOrder(ctx context.Context) (domain.Order, error) {
	record, err := a.tx.GetOrder(ctx)
	if err != nil {
		return domain.Order{}, mapStorageError(err)
	}
	return toDomainOrder(record), nil
}

func (a *orderTxAdapter) UpdateOrder(ctx context.Context, order domain.Order) error {
	return mapStorageError(a.tx.UpdateOrder(ctx, toStorageOrder(order)))
}

func (a *orderTxAdapter) ListInstallments(ctx context.Context) ([]domain.Installment, error) {
	records, err := a.tx.ListInstallments(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	installments := make([]domain.Installment, 0, len(records))
	for _, record := range records {
		installments = append(installments, toDomainInstallment(record))
	}
	return installments, nil
}

func (a *orderTxAdapter) PutInstallment(ctx context.Context, installment domain.Installment) error {
	return mapStorageError(a.tx.PutInstallment(ctx, toStorageInstallment(installment)))
}

func (a *orderTxAdapter) DeleteInstallment(ctx context.Context, installmentID string) error {
	return mapStorageError(a.tx.DeleteInstallment(ctx, installmentID))
}

func (a *orderTxAdapter) DeleteInstallments(ctx context.Context) error {
	return mapStorageError(a.tx.DeleteInstallments(ctx))
}

func (a *orderTxAdapter) IncrementMemberSpend(ctx context.Context, memberID string, amount int64) error {
	return mapStorageError(a.tx.IncrementMemberSpend(ctx, memberID, amount))
}

func toStorageOrder(order domain.Order) storage.OrderRecord {
	return storage.OrderRecord{
		ID:            order.ID,
		MemberID:      order.MemberID,
		BranchID:      order.BranchID,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status.String(),
		PaymentType:   order.PaymentType.String(),
		IsInstallment: order.IsInstallment,
		PaidAt:        order.PaidAt,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func toDomainOrder(record storage.OrderRecord) domain.Order {
	return domain.Order{
		ID:            record.ID,
		MemberID:      record.MemberID,
		BranchID:      record.BranchID,
		TotalAmount:   record.TotalAmount,
		Status:        parseOrderStatus(record.Status),
		PaymentType:   parsePaymentType(record.PaymentType),
		IsInstallment: record.IsInstallment,
		PaidAt:        record.PaidAt,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func toStorageInstallment(installment domain.Installment) storage.InstallmentRecord {
	return storage.InstallmentRecord{
		ID:            installment.ID,
		OrderID:       installment.OrderID,
		InstallmentNo: installment.InstallmentNo,
		DueDate:       installment.DueDate,
		Amount:        installment.Amount,
		Status:        installment.Status.String(),
		PaidAt:        installment.PaidAt,
		PaymentMethod: installment.PaymentMethod,
		Notes:         installment.Notes,
		IsCustom:      installment.IsCustom,
		AutoAdjusted:  installment.AutoAdjusted,
		CreatedAt:     installment.CreatedAt,
		UpdatedAt:     installment.UpdatedAt,
	}
}

func toDomainInstallment(record storage.InstallmentRecord) domain.Installment {
	return domain.Installment{
		ID:            record.ID,
		OrderID:       record.OrderID,
		InstallmentNo: record.InstallmentNo,
		DueDate:       record.DueDate,
		Amount:        record.Amount,
		Status:        parseInstallmentStatus(record.Status),
		PaidAt:        record.PaidAt,
		PaymentMethod: record.PaymentMethod,
		Notes:         record.Notes,
		IsCustom:      record.IsCustom,
		AutoAdjusted:  record.AutoAdjusted,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func parseOrderStatus(value string) domain.OrderStatus {
	switch value {
	case "PENDING_PAYMENT":
		return domain.OrderStatusPendingPayment
	case "PAID":
		return domain.OrderStatusPaid
	case "INSTALLMENT_ACTIVE":
		return domain.OrderStatusInstallmentActive
	case "PARTIALLY_PAID":
		return domain.OrderStatusPartiallyPaid
	case "PAID_COMPLETE":
		return domain.OrderStatusPaidComplete
	case "CANCELLED":
		return domain.OrderStatusCancelled
	default:
		return domain.OrderStatusUnspecified
	}
}

func parsePaymentType(value string) domain.PaymentType {
	switch value {
	case "ONE_TIME":
		return domain.PaymentTypeOneTime
	case "INSTALLMENT":
		return domain.PaymentTypeInstallment
	default:
		return domain.PaymentTypeUnspecified
	}
}

func parseInstallmentStatus(value string) domain.InstallmentStatus {
	switch value {
	case "UNPAID":
		return domain.InstallmentStatusUnpaid
	case "PAID":
		return domain.InstallmentStatusPaid
	case "OVERDUE":
		return domain.InstallmentStatusOverdue
	case "CANCELLED":
		return domain.InstallmentStatusCancelled
	default:
		return domain.InstallmentStatusUnspecified
	}
}

func mapStorageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
