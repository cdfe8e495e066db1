/*
installment.go - Installment status calculator

PURPOSE:
  Derives, for a fixed installment plan, which installment is currently
  due, how much of it has been paid, and whether the debtor is late.

LATENESS MODEL:
  Lateness is cumulative: the debtor is late when the total paid falls
  short of everything owed through the current installment's due date,
  regardless of which individual installment the shortfall belongs to.
  A payment always counts toward the oldest unpaid installment.

STATUS VALUES:
  ATRASADA  - the current installment's due date passed and the cumulative
              amount owed through it is not fully covered
  EM_ABERTO - the current installment is not yet due
  EM_DIA    - everything due so far is covered

Only payments (negative entries) count toward the plan; ad-hoc positive
charges in an installment debt's history never change what is owed.
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INSTALLMENT STATUS
// =============================================================================

type InstallmentStatusCode string

const (
	StatusLate    InstallmentStatusCode = "ATRASADA"
	StatusOpen    InstallmentStatusCode = "EM_ABERTO"
	StatusCurrent InstallmentStatusCode = "EM_DIA"
)

// InstallmentStatus is the derived view of a plan as of a reference date.
type InstallmentStatus struct {
	Current           int                   // 1-based index of the installment being paid
	Total             int                   // plan length
	Amount            decimal.Decimal       // per-installment amount
	TotalPaid         decimal.Decimal       // sum of all payments
	PaidTowardCurrent decimal.Decimal       // portion of TotalPaid applied to the current installment
	DueDate           Date                  // current installment's due date
	Code              InstallmentStatusCode //
}

// ComputeStatus determines the current installment and its lateness as of
// the reference date. Deterministic: identical inputs yield identical
// output.
func ComputeStatus(plan *InstallmentPlan, events []Event, ref Date) (InstallmentStatus, error) {
	if err := plan.Validate(); err != nil {
		return InstallmentStatus{}, err
	}

	totalPaid := TotalPaid(events)

	// Advance past every installment that is both due and fully covered.
	// Due dates are anchored to the first due date, one calendar month
	// apart, clamped to month ends.
	index := 1
	dueDate := plan.FirstDueDate
	for dueDate.BeforeOrEqual(ref) && totalPaid.GreaterThanOrEqual(plan.Amount.Mul(decimal.NewFromInt(int64(index)))) {
		index++
		dueDate = plan.FirstDueDate.AddMonths(index - 1)
	}

	// The index can never exceed the plan length; once everything is paid
	// the last installment stays current.
	if index > plan.Total {
		index = plan.Total
		dueDate = plan.FirstDueDate.AddMonths(index - 1)
	}

	paidToward := totalPaid.Sub(plan.Amount.Mul(decimal.NewFromInt(int64(index - 1))))
	owedThroughCurrent := plan.Amount.Mul(decimal.NewFromInt(int64(index)))
	shortfall := owedThroughCurrent.Sub(totalPaid)

	var code InstallmentStatusCode
	switch {
	case shortfall.IsPositive() && dueDate.BeforeOrEqual(ref):
		code = StatusLate
	case dueDate.After(ref):
		code = StatusOpen
	default:
		code = StatusCurrent
	}

	return InstallmentStatus{
		Current:           index,
		Total:             plan.Total,
		Amount:            plan.Amount,
		TotalPaid:         totalPaid,
		PaidTowardCurrent: paidToward,
		DueDate:           dueDate,
		Code:              code,
	}, nil
}

// TotalPaid sums the absolute values of all payments in the history.
func TotalPaid(events []Event) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		if e.IsPayment() {
			total = total.Add(e.Amount.Abs())
		}
	}
	return total
}

// InstallmentBalance is the amount still owed under the plan: the plan
// total minus everything paid.
func InstallmentBalance(plan *InstallmentPlan, events []Event) decimal.Decimal {
	return plan.TotalAmount().Sub(TotalPaid(events))
}
