package i18n

// Error codes must match the codes defined in internal/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeAmountNotPositive              = "AMOUNT_NOT_POSITIVE"
	CodeInstallmentCountInvalid        = "INSTALLMENT_COUNT_INVALID"
	CodeFirstPaymentInvalid            = "FIRST_PAYMENT_INVALID"
	CodeCustomPlanInvalid              = "CUSTOM_PLAN_INVALID"
	CodePaymentTypeInvalid             = "PAYMENT_TYPE_INVALID"
	CodeDueDateInvalid                 = "DUE_DATE_INVALID"
	CodePaymentMethodRequired          = "PAYMENT_METHOD_REQUIRED"
	CodeOrderTotalInvalid              = "ORDER_TOTAL_INVALID"
	CodeOrderStatusDisallowsAdjustment = "ORDER_STATUS_DISALLOWS_ADJUSTMENT"
	CodeOrderPlanLocked                = "ORDER_PLAN_LOCKED"
	CodeOrderStatusTerminal            = "ORDER_STATUS_TERMINAL"
	CodeInstallmentAlreadyPaid         = "INSTALLMENT_ALREADY_PAID"
	CodeInstallmentCancelled           = "INSTALLMENT_CANCELLED"
	CodeAdjustmentBudgetExceeded       = "ADJUSTMENT_BUDGET_EXCEEDED"
	CodeAdjustmentResidualWithoutSlot  = "ADJUSTMENT_RESIDUAL_WITHOUT_SLOT"
	CodeNoAdjustableSlot               = "NO_ADJUSTABLE_SLOT"
	CodePermissionDenied               = "PERMISSION_DENIED"
	CodeNotFound                       = "NOT_FOUND"
	CodeRoundingIrreconcilable         = "ROUNDING_IRRECONCILABLE"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Validation errors
		CodeAmountNotPositive:       "Amount must be greater than zero",
		CodeInstallmentCountInvalid: "Installment count must be between {{.Min}} and {{.Max}}",
		CodeFirstPaymentInvalid:     "First payment {{.FirstPayment}} must be less than the order total {{.Total}}",
		CodeCustomPlanInvalid:       "Custom installment amounts must not exceed the order total",
		CodePaymentTypeInvalid:      "Invalid payment type specified",
		CodeDueDateInvalid:          "Installment due date is invalid",
		CodePaymentMethodRequired:   "A payment method is required to record a payment",
		CodeOrderTotalInvalid:       "Order total must be greater than zero",

		// State conflicts
		CodeOrderStatusDisallowsAdjustment: "Order status {{.Status}} does not allow plan changes",
		CodeOrderPlanLocked:                "The payment plan cannot be rebuilt after an installment is paid",
		CodeOrderStatusTerminal:            "Order status {{.Status}} is terminal",
		CodeInstallmentAlreadyPaid:         "Installment {{.InstallmentNo}} has already been paid",
		CodeInstallmentCancelled:           "Installment {{.InstallmentNo}} has been cancelled",
		CodeAdjustmentBudgetExceeded:       "New amount {{.Amount}} exceeds the remaining unpaid balance {{.Remaining}}",
		CodeAdjustmentResidualWithoutSlot:  "The remaining balance cannot be redistributed to any other installment",
		CodeNoAdjustableSlot:               "No other installment is available to absorb the adjustment",

		// Access errors
		CodePermissionDenied: "You do not have permission to perform this operation",

		// Storage errors
		CodeNotFound: "The requested resource was not found",

		// Invariant failures
		CodeRoundingIrreconcilable: "Installment amounts could not be reconciled with the order total",
	},
}
