package domain

import (
	"strconv"

	apperrors "github.com/inkledger/inkledger/internal/errors"
)

var (
	// ErrAmountNotPositive indicates a zero or negative amount.
	ErrAmountNotPositive = apperrors.New(apperrors.CodeAmountNotPositive, "amount must be a positive integer")
	// ErrOrderTotalInvalid indicates a zero or negative order total.
	ErrOrderTotalInvalid = apperrors.New(apperrors.CodeOrderTotalInvalid, "order total must be a positive integer")
	// ErrPaymentTypeInvalid indicates a missing or unknown payment type.
	ErrPaymentTypeInvalid = apperrors.New(apperrors.CodePaymentTypeInvalid, "payment type is required")
	// ErrPaymentMethodRequired indicates a payment was recorded without a method.
	ErrPaymentMethodRequired = apperrors.New(apperrors.CodePaymentMethodRequired, "payment method is required")
	// ErrDueDateInvalid indicates a zero or malformed due date.
	ErrDueDateInvalid = apperrors.New(apperrors.CodeDueDateInvalid, "due date is invalid")
	// ErrCustomPlanInvalid indicates custom plan entries that cannot produce a valid schedule.
	ErrCustomPlanInvalid = apperrors.New(apperrors.CodeCustomPlanInvalid, "custom plan amounts are invalid")
	// ErrOrderPlanLocked indicates a rebuild was attempted after an installment was paid.
	ErrOrderPlanLocked = apperrors.New(apperrors.CodeOrderPlanLocked, "payment plan is locked by a recorded payment")
	// ErrNoAdjustableSlot indicates no installment remains to absorb a redistribution.
	ErrNoAdjustableSlot = apperrors.New(apperrors.CodeNoAdjustableSlot, "no adjustable installment remains")
	// ErrPermissionDenied indicates the actor lacks the required capability or scope.
	ErrPermissionDenied = apperrors.New(apperrors.CodePermissionDenied, "permission denied")
	// ErrNotFound indicates the order or installment does not exist.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "resource not found")
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = apperrors.New(apperrors.CodeUnknown, "billing store is not configured")
)

func errInstallmentCountInvalid(count int) error {
	return apperrors.WithMetadata(apperrors.CodeInstallmentCountInvalid,
		"installment count must be between "+strconv.Itoa(minInstallmentCount)+" and "+strconv.Itoa(maxInstallmentCount),
		map[string]string{
			"Count": strconv.Itoa(count),
			"Min":   strconv.Itoa(minInstallmentCount),
			"Max":   strconv.Itoa(maxInstallmentCount),
		})
}

func errFirstPaymentInvalid(firstPayment, total int64) error {
	return apperrors.WithMetadata(apperrors.CodeFirstPaymentInvalid,
		"first payment must leave a positive residual for the remaining installments",
		map[string]string{
			"FirstPayment": strconv.FormatInt(firstPayment, 10),
			"Total":        strconv.FormatInt(total, 10),
		})
}

func errOrderStatusDisallowsAdjustment(status OrderStatus) error {
	return apperrors.WithMetadata(apperrors.CodeOrderStatusDisallowsAdjustment,
		"order status does not allow plan adjustment",
		map[string]string{"Status": status.String()})
}

func errOrderStatusTerminal(status OrderStatus) error {
	return apperrors.WithMetadata(apperrors.CodeOrderStatusTerminal,
		"order status is terminal",
		map[string]string{"Status": status.String()})
}

func errInstallmentAlreadyPaid(installmentNo int) error {
	return apperrors.WithMetadata(apperrors.CodeInstallmentAlreadyPaid,
		"installment is already paid",
		map[string]string{"InstallmentNo": strconv.Itoa(installmentNo)})
}

func errInstallmentCancelled(installmentNo int) error {
	return apperrors.WithMetadata(apperrors.CodeInstallmentCancelled,
		"installment is cancelled",
		map[string]string{"InstallmentNo": strconv.Itoa(installmentNo)})
}

// errBudgetExceeded reports the exact maximum amount the caller may retry with.
func errBudgetExceeded(newAmount, maxAllowed int64) error {
	return apperrors.WithMetadata(apperrors.CodeAdjustmentBudgetExceeded,
		"new amount exceeds the remaining unpaid balance",
		map[string]string{
			"Amount":     strconv.FormatInt(newAmount, 10),
			"MaxAllowed": strconv.FormatInt(maxAllowed, 10),
			"Remaining":  strconv.FormatInt(maxAllowed, 10),
		})
}

// errResidualWithoutSlot reports the exact amount required to make the plan
// balance when no adjustable installment remains.
func errResidualWithoutSlot(required int64) error {
	return apperrors.WithMetadata(apperrors.CodeAdjustmentResidualWithoutSlot,
		"remaining balance cannot be redistributed",
		map[string]string{"Required": strconv.FormatInt(required, 10)})
}

func errRoundingIrreconcilable(total, sum int64) error {
	return apperrors.WithMetadata(apperrors.CodeRoundingIrreconcilable,
		"installment amounts cannot be reconciled with the order total",
		map[string]string{
			"Total": strconv.FormatInt(total, 10),
			"Sum":   strconv.FormatInt(sum, 10),
		})
}
