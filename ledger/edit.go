/*
edit.go - Typed field edit operations

PURPOSE:
  Each editable debt field has its own edit variant, dispatched through a
  type switch. Callers construct exactly the variant they mean; there is
  no string-keyed field lookup to typo.

RATE EDITS:
  Changing the monthly rate never rewrites history: EditMonthlyRate
  appends a schedule entry at its effective date, so balances computed
  for earlier dates keep using the rate that was in force then.
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// EDIT OPERATIONS
// =============================================================================

// EditOp is one edit to a debt field.
type EditOp interface {
	isEditOp()
}

type EditDescription struct{ Value string }

type EditNotes struct{ Value string }

// EditMonthlyRate sets a new monthly rate from the effective date onward.
type EditMonthlyRate struct {
	Rate          decimal.Decimal
	EffectiveDate Date
}

// EditInterestCutoff stops (or with nil, resumes) interest accrual.
type EditInterestCutoff struct{ Value *Date }

type EditInstallmentAmount struct{ Value decimal.Decimal }

type EditDueDay struct{ Value int }

type EditTotalInstallments struct{ Value int }

type EditFirstDueDate struct{ Value Date }

func (EditDescription) isEditOp()       {}
func (EditNotes) isEditOp()             {}
func (EditMonthlyRate) isEditOp()       {}
func (EditInterestCutoff) isEditOp()    {}
func (EditInstallmentAmount) isEditOp() {}
func (EditDueDay) isEditOp()            {}
func (EditTotalInstallments) isEditOp() {}
func (EditFirstDueDate) isEditOp()      {}

// ApplyEdit mutates the debt according to the operation. Installment plan
// edits require the debt to have a plan; plan invariants are re-validated
// after the edit.
func (d *Debt) ApplyEdit(op EditOp) error {
	switch e := op.(type) {
	case EditDescription:
		d.Description = e.Value

	case EditNotes:
		d.Notes = e.Value

	case EditMonthlyRate:
		if e.Rate.IsNegative() {
			return &InvalidPlanError{Field: "monthlyRate", Reason: "must not be negative"}
		}
		d.RateHistory = append(d.RateHistory, RateChange{
			EffectiveDate: e.EffectiveDate,
			MonthlyRate:   e.Rate,
		})
		d.RateHistory.sortByDate()

	case EditInterestCutoff:
		d.InterestCutoff = e.Value

	case EditInstallmentAmount:
		return d.editPlan(func(p *InstallmentPlan) { p.Amount = e.Value })

	case EditDueDay:
		return d.editPlan(func(p *InstallmentPlan) { p.DueDay = e.Value })

	case EditTotalInstallments:
		return d.editPlan(func(p *InstallmentPlan) { p.Total = e.Value })

	case EditFirstDueDate:
		return d.editPlan(func(p *InstallmentPlan) { p.FirstDueDate = e.Value })
	}
	return nil
}

func (d *Debt) editPlan(mutate func(*InstallmentPlan)) error {
	if d.Installments == nil {
		return ErrNoInstallmentPlan
	}
	updated := *d.Installments
	mutate(&updated)
	if err := updated.Validate(); err != nil {
		return err
	}
	d.Installments = &updated
	return nil
}
