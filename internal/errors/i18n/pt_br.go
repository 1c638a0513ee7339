package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		// Validation errors
		CodeAmountNotPositive:       "O valor deve ser maior que zero",
		CodeInstallmentCountInvalid: "O número de parcelas deve estar entre {{.Min}} e {{.Max}}",
		CodeFirstPaymentInvalid:     "A entrada {{.FirstPayment}} deve ser menor que o total do pedido {{.Total}}",
		CodeCustomPlanInvalid:       "Os valores das parcelas personalizadas não podem exceder o total do pedido",
		CodePaymentTypeInvalid:      "Tipo de pagamento inválido",
		CodeDueDateInvalid:          "A data de vencimento da parcela é inválida",
		CodePaymentMethodRequired:   "Um método de pagamento é necessário para registrar o pagamento",
		CodeOrderTotalInvalid:       "O total do pedido deve ser maior que zero",

		// State conflicts
		CodeOrderStatusDisallowsAdjustment: "O status do pedido {{.Status}} não permite alterações no plano",
		CodeOrderPlanLocked:                "O plano de pagamento não pode ser refeito após uma parcela ser paga",
		CodeOrderStatusTerminal:            "O status do pedido {{.Status}} é terminal",
		CodeInstallmentAlreadyPaid:         "A parcela {{.InstallmentNo}} já foi paga",
		CodeInstallmentCancelled:           "A parcela {{.InstallmentNo}} foi cancelada",
		CodeAdjustmentBudgetExceeded:       "O novo valor {{.Amount}} excede o saldo restante {{.Remaining}}",
		CodeAdjustmentResidualWithoutSlot:  "O saldo restante não pode ser redistribuído para nenhuma outra parcela",
		CodeNoAdjustableSlot:               "Nenhuma outra parcela está disponível para absorver o ajuste",

		// Access errors
		CodePermissionDenied: "Você não tem permissão para executar esta operação",

		// Storage errors
		CodeNotFound: "O recurso solicitado não foi encontrado",

		// Invariant failures
		CodeRoundingIrreconcilable: "Os valores das parcelas não puderam ser conciliados com o total do pedido",
	},
}
