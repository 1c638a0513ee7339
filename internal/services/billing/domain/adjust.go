package domain

import "sort"

// AdjustBreakdown reports the calculation behind one adjustment so the
// caller can show or audit how the new schedule was derived.
type AdjustBreakdown struct {
	// PaidSum is the total of all PAID installments.
	PaidSum int64
	// LockedUnpaidSum is the total of unpaid installments whose amounts are
	// fixed and untouchable by redistribution.
	LockedUnpaidSum int64
	// Remaining is the balance redistributed across adjustable installments.
	Remaining int64
	// AdjustableCount is how many installments absorbed the redistribution.
	AdjustableCount int
}

// adjustPlan sets the target installment to newAmount and redistributes the
// remaining unpaid balance across the adjustable installments so the plan
// total still equals the order total. It returns an updated copy of the
// installment set; the input is never mutated, so a failed adjustment leaves
// nothing to roll back in memory.
func adjustPlan(installments []Installment, total int64, targetNo int, newAmount int64) ([]Installment, AdjustBreakdown, error) {
	updated := make([]Installment, len(installments))
	copy(updated, installments)
	sort.Slice(updated, func(i, j int) bool {
		return updated[i].InstallmentNo < updated[j].InstallmentNo
	})

	target := -1
	for i, inst := range updated {
		if inst.InstallmentNo == targetNo {
			target = i
			break
		}
	}
	if target < 0 {
		return nil, AdjustBreakdown{}, ErrNotFound
	}
	switch updated[target].Status {
	case InstallmentStatusPaid:
		return nil, AdjustBreakdown{}, errInstallmentAlreadyPaid(targetNo)
	case InstallmentStatusCancelled:
		return nil, AdjustBreakdown{}, errInstallmentCancelled(targetNo)
	}

	var paidSum, lockedSum int64
	var adjustable []int
	for i, inst := range updated {
		if inst.Status == InstallmentStatusPaid {
			paidSum += inst.Amount
			continue
		}
		if i == target {
			continue
		}
		// Cancelled installments keep their amount but never participate
		// in redistribution, like amounts pinned by a human.
		if inst.IsCustom || inst.Status == InstallmentStatusCancelled {
			lockedSum += inst.Amount
			continue
		}
		adjustable = append(adjustable, i)
	}

	// maxAllowed is the largest newAmount that can succeed: the unpaid
	// unlocked budget, minus one currency unit per adjustable slot since
	// every slot must keep a positive amount.
	budget := total - paidSum - lockedSum
	maxAllowed := budget - int64(len(adjustable))
	if newAmount > maxAllowed {
		return nil, AdjustBreakdown{}, errBudgetExceeded(newAmount, maxAllowed)
	}
	remaining := budget - newAmount

	breakdown := AdjustBreakdown{
		PaidSum:         paidSum,
		LockedUnpaidSum: lockedSum,
		Remaining:       remaining,
		AdjustableCount: len(adjustable),
	}

	if len(adjustable) == 0 {
		if remaining != 0 {
			return nil, AdjustBreakdown{}, errResidualWithoutSlot(budget)
		}
		updated[target].Amount = newAmount
		updated[target].IsCustom = true
		updated[target].AutoAdjusted = false
		return updated, breakdown, nil
	}

	for i := range updated {
		if i != target && updated[i].Status != InstallmentStatusPaid {
			updated[i].AutoAdjusted = false
		}
	}
	updated[target].Amount = newAmount
	updated[target].IsCustom = true
	updated[target].AutoAdjusted = false

	// Floor division keeps every share positive: the maxAllowed guard
	// ensures remaining >= n, so each >= 1 and the last slot gets
	// each + rem with rem in [0, n).
	n := int64(len(adjustable))
	each := remaining / n
	rem := remaining - each*n
	for k, i := range adjustable {
		updated[i].Amount = each
		if k == len(adjustable)-1 {
			updated[i].Amount = each + rem
		}
		updated[i].IsCustom = false
		updated[i].AutoAdjusted = true
	}

	if err := reconcileSum(updated, total); err != nil {
		return nil, AdjustBreakdown{}, err
	}
	return updated, breakdown, nil
}

// reconcileSum verifies Σ(amount) == total and corrects a chained-rounding
// discrepancy by pushing the delta onto the last installment that can still
// absorb it. A delta that cannot be absorbed is fatal; the caller aborts the
// transaction and nothing is persisted.
func reconcileSum(installments []Installment, total int64) error {
	sum := sumAmounts(installments)
	delta := total - sum
	if delta == 0 {
		return nil
	}

	for i := len(installments) - 1; i >= 0; i-- {
		inst := &installments[i]
		if inst.Status == InstallmentStatusPaid || inst.Status == InstallmentStatusCancelled {
			continue
		}
		if inst.Amount+delta <= 0 {
			break
		}
		inst.Amount += delta
		if sumAmounts(installments) != total {
			break
		}
		return nil
	}
	return errRoundingIrreconcilable(total, sum)
}

// removePlanSlot drops the target installment, redistributes its amount
// across the adjustable installments, and renumbers the survivors densely.
// It returns an updated copy; the input is never mutated.
func removePlanSlot(installments []Installment, targetID string, total int64) ([]Installment, error) {
	sorted := make([]Installment, len(installments))
	copy(sorted, installments)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].InstallmentNo < sorted[j].InstallmentNo
	})

	target := -1
	for i, inst := range sorted {
		if inst.ID == targetID {
			target = i
			break
		}
	}
	if target < 0 {
		return nil, ErrNotFound
	}
	if sorted[target].Status == InstallmentStatusPaid {
		return nil, errInstallmentAlreadyPaid(sorted[target].InstallmentNo)
	}
	removed := sorted[target]

	updated := append(sorted[:target:target], sorted[target+1:]...)

	var adjustable []int
	for i, inst := range updated {
		if inst.Status == InstallmentStatusPaid || inst.Status == InstallmentStatusCancelled || inst.IsCustom {
			continue
		}
		adjustable = append(adjustable, i)
	}
	if len(adjustable) == 0 {
		return nil, ErrNoAdjustableSlot
	}

	shares := splitEven(removed.Amount, len(adjustable))
	for k, i := range adjustable {
		updated[i].Amount += shares[k]
		updated[i].AutoAdjusted = true
		updated[i].IsCustom = false
	}

	for i := range updated {
		updated[i].InstallmentNo = i + 1
	}

	if err := reconcileSum(updated, total); err != nil {
		return nil, err
	}
	return updated, nil
}
