package domain

import "time"

const (
	minInstallmentCount = 1
	maxInstallmentCount = 60
)

// splitEven divides total across count slots using the remainder-on-last
// rule: every slot gets floor(total/count) and the last slot absorbs the
// integer-division remainder, so earlier slots stay stable and the split is
// reproducible for the same inputs.
func splitEven(total int64, count int) []int64 {
	amounts := make([]int64, count)
	base := total / int64(count)
	rem := total - base*int64(count)
	for i := range amounts {
		amounts[i] = base
	}
	amounts[count-1] = base + rem
	return amounts
}

// planAmounts computes the installment amounts for a fresh plan. When
// firstPayment is positive, installment 1 is fixed to it and the residual
// splits across the remaining slots. Every resulting amount must be a
// positive integer.
func planAmounts(total int64, count int, firstPayment int64) ([]int64, error) {
	if count < minInstallmentCount || count > maxInstallmentCount {
		return nil, errInstallmentCountInvalid(count)
	}

	var amounts []int64
	if firstPayment > 0 {
		if firstPayment >= total || count < 2 {
			return nil, errFirstPaymentInvalid(firstPayment, total)
		}
		amounts = make([]int64, 0, count)
		amounts = append(amounts, firstPayment)
		amounts = append(amounts, splitEven(total-firstPayment, count-1)...)
	} else {
		amounts = splitEven(total, count)
	}

	for _, amount := range amounts {
		if amount <= 0 {
			return nil, errInstallmentCountInvalid(count)
		}
	}
	return amounts, nil
}

// customPlanAmounts computes amounts for the checkout path where specific
// installment numbers carry fixed amounts. Slots not present in customPlan
// split the residual with the remainder-on-last rule. The second return
// value reports, per slot, whether the amount was fixed by the caller.
func customPlanAmounts(total int64, count int, customPlan map[int]int64) ([]int64, []bool, error) {
	if count < minInstallmentCount || count > maxInstallmentCount {
		return nil, nil, errInstallmentCountInvalid(count)
	}

	var customSum int64
	free := count
	for no, amount := range customPlan {
		if no < 1 || no > count {
			return nil, nil, ErrCustomPlanInvalid
		}
		if amount <= 0 {
			return nil, nil, ErrAmountNotPositive
		}
		customSum += amount
		free--
	}

	residual := total - customSum
	if free == 0 {
		if residual != 0 {
			return nil, nil, ErrCustomPlanInvalid
		}
	} else if residual < int64(free) {
		// Every free slot must receive at least one currency unit.
		return nil, nil, ErrCustomPlanInvalid
	}

	var freeAmounts []int64
	if free > 0 {
		freeAmounts = splitEven(residual, free)
	}

	amounts := make([]int64, count)
	fixed := make([]bool, count)
	next := 0
	for i := 0; i < count; i++ {
		if amount, ok := customPlan[i+1]; ok {
			amounts[i] = amount
			fixed[i] = true
			continue
		}
		amounts[i] = freeAmounts[next]
		next++
	}
	return amounts, fixed, nil
}

// dueDates schedules one due date per installment, monthly from first.
func dueDates(first time.Time, count int) []time.Time {
	dates := make([]time.Time, count)
	for i := range dates {
		dates[i] = first.AddDate(0, i, 0)
	}
	return dates
}
