// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors
	CodeAmountNotPositive       Code = "AMOUNT_NOT_POSITIVE"
	CodeInstallmentCountInvalid Code = "INSTALLMENT_COUNT_INVALID"
	CodeFirstPaymentInvalid     Code = "FIRST_PAYMENT_INVALID"
	CodeCustomPlanInvalid       Code = "CUSTOM_PLAN_INVALID"
	CodePaymentTypeInvalid      Code = "PAYMENT_TYPE_INVALID"
	CodeDueDateInvalid          Code = "DUE_DATE_INVALID"
	CodePaymentMethodRequired   Code = "PAYMENT_METHOD_REQUIRED"
	CodeOrderTotalInvalid       Code = "ORDER_TOTAL_INVALID"

	// Conflict errors - state does not allow the operation
	CodeOrderStatusDisallowsAdjustment Code = "ORDER_STATUS_DISALLOWS_ADJUSTMENT"
	CodeOrderPlanLocked                Code = "ORDER_PLAN_LOCKED"
	CodeOrderStatusTerminal            Code = "ORDER_STATUS_TERMINAL"
	CodeInstallmentAlreadyPaid         Code = "INSTALLMENT_ALREADY_PAID"
	CodeInstallmentCancelled           Code = "INSTALLMENT_CANCELLED"
	CodeAdjustmentBudgetExceeded       Code = "ADJUSTMENT_BUDGET_EXCEEDED"
	CodeAdjustmentResidualWithoutSlot  Code = "ADJUSTMENT_RESIDUAL_WITHOUT_SLOT"
	CodeNoAdjustableSlot               Code = "NO_ADJUSTABLE_SLOT"

	// Access errors
	CodePermissionDenied Code = "PERMISSION_DENIED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Invariant failures - always fatal, nothing persisted
	CodeRoundingIrreconcilable Code = "ROUNDING_IRRECONCILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeAmountNotPositive,
		CodeInstallmentCountInvalid,
		CodeFirstPaymentInvalid,
		CodeCustomPlanInvalid,
		CodePaymentTypeInvalid,
		CodeDueDateInvalid,
		CodePaymentMethodRequired,
		CodeOrderTotalInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeOrderStatusDisallowsAdjustment,
		CodeOrderPlanLocked,
		CodeOrderStatusTerminal,
		CodeInstallmentAlreadyPaid,
		CodeInstallmentCancelled,
		CodeAdjustmentBudgetExceeded,
		CodeAdjustmentResidualWithoutSlot,
		CodeNoAdjustableSlot:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// PermissionDenied - actor lacks the required capability or scope
	case CodePermissionDenied:
		return codes.PermissionDenied

	default:
		return codes.Internal
	}
}
