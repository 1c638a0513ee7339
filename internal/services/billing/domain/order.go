package domain

import "time"

// OrderStatus describes the payment lifecycle of an order.
type OrderStatus int

const (
	// OrderStatusUnspecified represents an invalid order status value.
	OrderStatusUnspecified OrderStatus = iota
	// OrderStatusPendingPayment indicates the order awaits checkout.
	OrderStatusPendingPayment
	// OrderStatusPaid indicates a one-time order was paid in full.
	OrderStatusPaid
	// OrderStatusInstallmentActive indicates an installment plan exists with no payments yet.
	OrderStatusInstallmentActive
	// OrderStatusPartiallyPaid indicates some but not all installments are paid.
	OrderStatusPartiallyPaid
	// OrderStatusPaidComplete indicates every installment is paid.
	OrderStatusPaidComplete
	// OrderStatusCancelled indicates the order was cancelled.
	OrderStatusCancelled
)

// String returns the canonical name for the status.
func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPendingPayment:
		return "PENDING_PAYMENT"
	case OrderStatusPaid:
		return "PAID"
	case OrderStatusInstallmentActive:
		return "INSTALLMENT_ACTIVE"
	case OrderStatusPartiallyPaid:
		return "PARTIALLY_PAID"
	case OrderStatusPaidComplete:
		return "PAID_COMPLETE"
	case OrderStatusCancelled:
		return "CANCELLED"
	default:
		return "UNSPECIFIED"
	}
}

// Terminal reports whether the engine treats the status as final.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusPaidComplete, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// PaymentType describes how an order is paid.
type PaymentType int

const (
	// PaymentTypeUnspecified represents an invalid payment type value.
	PaymentTypeUnspecified PaymentType = iota
	// PaymentTypeOneTime indicates the order is settled in a single payment.
	PaymentTypeOneTime
	// PaymentTypeInstallment indicates the order is paid over scheduled installments.
	PaymentTypeInstallment
)

// String returns the canonical name for the payment type.
func (t PaymentType) String() string {
	switch t {
	case PaymentTypeOneTime:
		return "ONE_TIME"
	case PaymentTypeInstallment:
		return "INSTALLMENT"
	default:
		return "UNSPECIFIED"
	}
}

// Order is the priced unit of work being paid for. TotalAmount is an integer
// in the smallest currency unit; fractional amounts never occur.
type Order struct {
	ID            string
	MemberID      string
	BranchID      string
	TotalAmount   int64
	Status        OrderStatus
	PaymentType   PaymentType
	IsInstallment bool
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DeriveOrderStatus maps the multiset of installment statuses to the order
// status. When no installment is paid the current status is preserved so a
// pending plan stays pending and an active plan stays active.
func DeriveOrderStatus(current OrderStatus, installments []Installment) OrderStatus {
	if len(installments) == 0 {
		return current
	}
	paid := 0
	for _, inst := range installments {
		if inst.Status == InstallmentStatusPaid {
			paid++
		}
	}
	switch {
	case paid == len(installments):
		return OrderStatusPaidComplete
	case paid > 0:
		return OrderStatusPartiallyPaid
	default:
		return current
	}
}
