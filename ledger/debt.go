/*
debt.go - Debt model and document-level operations

PURPOSE:
  Defines the Debt record and the operations the surrounding application
  performs on the in-memory document: finding debtors and debts, adding
  debts and payments, computing totals, and ordering views.

DEBT KINDS:
  A debt is exactly one of:
  - Interest-accruing: open-ended, balance derived by ComputeLedger from
    the event history plus the rate schedule
  - Installment: fixed plan, balance = plan total - payments; the rate
    schedule is ignored entirely

SEE ALSO:
  - accrual.go: ComputeLedger
  - installment.go: ComputeStatus, InstallmentBalance
  - edit.go: Field edit operations
*/
package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DEBT
// =============================================================================

// Debt is one tracked amount owed by a debtor.
type Debt struct {
	ID           int      `json:"id"`
	Description  string   `json:"description"`
	Notes        string   `json:"notes,omitempty"`
	CreationDate Date     `json:"creationDate"`
	RateHistory  Schedule `json:"rateHistory,omitempty"`

	// LegacyMonthlyRate holds the flat rate of pre-history documents.
	// Normalize converts it into a one-entry RateHistory and clears it.
	LegacyMonthlyRate *decimal.Decimal `json:"monthlyRate,omitempty"`

	Ledger []Event `json:"ledger"`

	// InterestCutoff stops interest accrual after this date, if set.
	InterestCutoff *Date `json:"interestCutoff,omitempty"`

	// Installments marks the debt as installment-based.
	Installments *InstallmentPlan `json:"installments,omitempty"`

	// PaidOff is derived: |balance| < 0.01. Recomputed on every balance
	// calculation, persisted for display convenience.
	PaidOff bool `json:"paidOff"`
}

// InstallmentPlan is a fixed per-month payment plan.
type InstallmentPlan struct {
	Amount       decimal.Decimal `json:"amount"`
	Total        int             `json:"total"`
	DueDay       int             `json:"dueDay"`
	FirstDueDate Date            `json:"firstDueDate"`
}

// Validate rejects plans that violate construction invariants.
func (p *InstallmentPlan) Validate() error {
	if !p.Amount.IsPositive() {
		return &InvalidPlanError{Field: "amount", Reason: "must be positive"}
	}
	if p.Total <= 0 {
		return &InvalidPlanError{Field: "total", Reason: "must be positive"}
	}
	if p.DueDay < 1 || p.DueDay > 31 {
		return &InvalidPlanError{Field: "dueDay", Reason: "must be between 1 and 31"}
	}
	if p.FirstDueDate.IsZero() {
		return &InvalidPlanError{Field: "firstDueDate", Reason: "is required"}
	}
	return nil
}

// TotalAmount is the full amount owed under the plan.
func (p *InstallmentPlan) TotalAmount() decimal.Decimal {
	return p.Amount.Mul(decimal.NewFromInt(int64(p.Total)))
}

// IsInstallment reports whether the debt follows a fixed plan.
func (d *Debt) IsInstallment() bool { return d.Installments != nil }

// Balance computes the outstanding balance as of the reference date and
// refreshes the PaidOff flag. Installment debts bypass interest accrual:
// only the plan defines what is owed.
func (d *Debt) Balance(ref Date) decimal.Decimal {
	if d.IsInstallment() {
		balance := InstallmentBalance(d.Installments, d.Ledger)
		d.PaidOff = IsSettled(balance)
		return balance
	}
	_, balance := ComputeLedger(d, ref)
	return balance
}

// MaxPayable is the largest payment the debt accepts as of the reference
// date: the plan remainder for installment debts, the accrued balance
// otherwise.
func (d *Debt) MaxPayable(ref Date) decimal.Decimal {
	if d.IsInstallment() {
		return InstallmentBalance(d.Installments, d.Ledger)
	}
	_, balance := ComputeLedger(d, ref)
	return balance
}

// AddPayment validates and records a payment against the debt.
func (d *Debt) AddPayment(amount decimal.Decimal, date Date, ref Date) error {
	if !amount.IsPositive() {
		return ErrPaymentNotPositive
	}
	max := d.MaxPayable(ref)
	if amount.GreaterThan(max) {
		return &PaymentTooLargeError{Requested: amount, Maximum: max}
	}
	d.Ledger = append(d.Ledger, Event{
		Date:        date,
		Description: "Pagamento recebido",
		Amount:      amount.Neg(),
		Kind:        EventManual,
	})
	return nil
}

// AddEvent appends a manual entry (positive charge or negative payment).
func (d *Debt) AddEvent(e Event) {
	e.Kind = EventManual
	d.Ledger = append(d.Ledger, e)
}

// UpdateEvent replaces the manual entry at the given position (0-based).
func (d *Debt) UpdateEvent(index int, e Event) error {
	if index < 0 || index >= len(d.Ledger) {
		return ErrEventNotFound
	}
	e.Kind = EventManual
	d.Ledger[index] = e
	return nil
}

// RemoveEvent deletes the manual entry at the given position (0-based).
func (d *Debt) RemoveEvent(index int) error {
	if index < 0 || index >= len(d.Ledger) {
		return ErrEventNotFound
	}
	d.Ledger = append(d.Ledger[:index], d.Ledger[index+1:]...)
	return nil
}

// =============================================================================
// DEBTOR AND STATE OPERATIONS
// =============================================================================

// FindDebt returns the debt with the given id, or ErrDebtNotFound.
func (dr *Debtor) FindDebt(id int) (*Debt, error) {
	for _, d := range dr.Debts {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, ErrDebtNotFound
}

// NextDebtID returns the next sequential debt id for this debtor.
func (dr *Debtor) NextDebtID() int {
	max := 0
	for _, d := range dr.Debts {
		if d.ID > max {
			max = d.ID
		}
	}
	return max + 1
}

// Total sums the outstanding balance of all debts as of the reference date.
func (dr *Debtor) Total(ref Date) decimal.Decimal {
	total := decimal.Zero
	for _, d := range dr.Debts {
		total = total.Add(d.Balance(ref))
	}
	return total
}

// ActiveDebts returns the debts not yet paid off, ordered by outstanding
// balance descending.
func (dr *Debtor) ActiveDebts(ref Date) []*Debt {
	var active []*Debt
	for _, d := range dr.Debts {
		if !IsSettled(d.Balance(ref)) {
			active = append(active, d)
		}
	}
	SortDebtsByBalance(active, ref)
	return active
}

// FindDebtor returns the debtor with the given name (case-insensitive),
// or ErrDebtorNotFound.
func (st *State) FindDebtor(name string) (*Debtor, error) {
	for _, dr := range st.Debtors {
		if strings.EqualFold(dr.Name, name) {
			return dr, nil
		}
	}
	return nil, ErrDebtorNotFound
}

// AddDebtor creates a new debtor, rejecting duplicate names.
func (st *State) AddDebtor(name string) (*Debtor, error) {
	if _, err := st.FindDebtor(name); err == nil {
		return nil, ErrDebtorExists
	}
	dr := &Debtor{Name: name}
	st.Debtors = append(st.Debtors, dr)
	return dr, nil
}

// Total sums the outstanding balance across every debtor.
func (st *State) Total(ref Date) decimal.Decimal {
	total := decimal.Zero
	for _, dr := range st.Debtors {
		total = total.Add(dr.Total(ref))
	}
	return total
}

// SortDebtsByBalance orders debts from largest outstanding balance to
// smallest.
func SortDebtsByBalance(debts []*Debt, ref Date) {
	sort.SliceStable(debts, func(i, j int) bool {
		return debts[i].Balance(ref).GreaterThan(debts[j].Balance(ref))
	})
}

// SortDebtorsByTotal orders debtors from largest total owed to smallest.
func SortDebtorsByTotal(debtors []*Debtor, ref Date) {
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].Total(ref).GreaterThan(debtors[j].Total(ref))
	})
}
