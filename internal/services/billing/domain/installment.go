package domain

import "time"

// InstallmentStatus describes the payment state of a single installment.
type InstallmentStatus int

const (
	// InstallmentStatusUnspecified represents an invalid installment status value.
	InstallmentStatusUnspecified InstallmentStatus = iota
	// InstallmentStatusUnpaid indicates the installment awaits payment.
	InstallmentStatusUnpaid
	// InstallmentStatusPaid indicates the installment was paid. PAID is
	// monotonic; the engine never reverts it.
	InstallmentStatusPaid
	// InstallmentStatusOverdue indicates the installment is unpaid past its due date.
	InstallmentStatusOverdue
	// InstallmentStatusCancelled indicates the installment was cancelled.
	InstallmentStatusCancelled
)

// String returns the canonical name for the status.
func (s InstallmentStatus) String() string {
	switch s {
	case InstallmentStatusUnpaid:
		return "UNPAID"
	case InstallmentStatusPaid:
		return "PAID"
	case InstallmentStatusOverdue:
		return "OVERDUE"
	case InstallmentStatusCancelled:
		return "CANCELLED"
	default:
		return "UNSPECIFIED"
	}
}

// Installment is one scheduled partial payment belonging to an order.
// InstallmentNo values form a dense 1..N sequence unique per order.
// IsCustom marks an amount explicitly fixed by a privileged actor; the
// redistribution algorithm never touches it. AutoAdjusted is informational
// and means the current amount was last set by redistribution, not a human.
type Installment struct {
	ID            string
	OrderID       string
	InstallmentNo int
	DueDate       time.Time
	Amount        int64
	Status        InstallmentStatus
	PaidAt        *time.Time
	PaymentMethod string
	Notes         string
	IsCustom      bool
	AutoAdjusted  bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OverdueInstallment is an overdue installment joined with its order and
// member context for reporting.
type OverdueInstallment struct {
	Installment Installment
	OrderTotal  int64
	OrderStatus OrderStatus
	MemberID    string
	MemberName  string
	BranchID    string
}

func sumAmounts(installments []Installment) int64 {
	var sum int64
	for _, inst := range installments {
		sum += inst.Amount
	}
	return sum
}
