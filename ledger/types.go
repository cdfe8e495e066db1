/*
Package ledger provides the core debt tracking engine.

PURPOSE:
  This package contains the types and algorithms for tracking debts:
  replaying a debt's event history, synthesizing monthly interest charges
  from a time-varying rate schedule, and deriving installment status for
  fixed payment plans. Everything here is a pure function of its inputs
  plus a reference date.

KEY CONCEPTS IN THIS FILE (types.go):
  - Event: One dated, signed monetary entry in a debt's history
  - EventKind: Whether an entry was recorded manually or synthesized
  - State/Debtor: The full document the surrounding application persists

DESIGN PRINCIPLES:
  1. Determinism: The same inputs and reference date always produce the
     same ledger and balance
  2. Precision: Uses decimal.Decimal to avoid floating-point drift across
     many monthly compounding steps
  3. Derived balances: Balance is always computed by replaying events,
     never stored as a mutable counter

SEE ALSO:
  - accrual.go: Interest accrual engine
  - installment.go: Installment status calculator
  - schedule.go: Rate schedule resolution
  - store.go: Persistence interface
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EVENT - Atomic change to a debt's balance
// =============================================================================

type EventKind string

const (
	// EventManual is an entry recorded by the user (initial amount,
	// payment, ad-hoc charge). Manual entries are the persisted history.
	EventManual EventKind = "manual"

	// EventInterest is a synthetic monthly interest charge. Interest
	// entries are recomputed on every read and never persisted.
	EventInterest EventKind = "interest"
)

// Event is one signed entry in a debt's history.
// Positive amounts increase the balance owed, negative amounts are payments.
type Event struct {
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        EventKind       `json:"kind,omitempty"`
}

// IsPayment reports whether the event reduces the balance owed.
func (e Event) IsPayment() bool { return e.Amount.IsNegative() }

// sortEventsByDate orders events chronologically. The sort is stable so
// same-day entries keep their insertion order.
func sortEventsByDate(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
}

// sumAmounts adds up the signed amounts of all events.
func sumAmounts(events []Event) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		total = total.Add(e.Amount)
	}
	return total
}

// sumAmountsThrough adds up the signed amounts of events dated on or
// before the given date.
func sumAmountsThrough(events []Event, at Date) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		if e.Date.BeforeOrEqual(at) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// =============================================================================
// STATE - The full document read and written wholesale
// =============================================================================

// Debtor owns a sequence of debts. Debt ids are scoped to the debtor and
// assigned sequentially.
type Debtor struct {
	Name  string  `json:"name"`
	Debts []*Debt `json:"debts"`
}

// State is the whole persisted document: every debtor and every debt.
type State struct {
	Debtors []*Debtor `json:"debtors"`
}
