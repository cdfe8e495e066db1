/*
schedule.go - Time-varying monthly interest rate schedule

PURPOSE:
  A debt's interest rate can change over time. The schedule is an ordered
  sequence of rate changes; the rate in force at any date is the latest
  change whose effective date is on or before it.

INVARIANTS:
  - Entries are sorted by effective date ascending
  - The first entry's date is the debt's creation date (Normalize inserts
    one when a record predates rate history)
  - At most one rate is in force for any date

LEGACY RECORDS:
  Older documents carried a single flat monthly rate instead of a history.
  NormalizeState converts that field into a one-entry schedule on load, so
  the engines only ever see schedules.
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE SCHEDULE
// =============================================================================

// RateChange sets the monthly interest rate (in percent) from a date onward.
type RateChange struct {
	EffectiveDate Date            `json:"effectiveDate"`
	MonthlyRate   decimal.Decimal `json:"monthlyRate"`
}

// Schedule is a sequence of rate changes sorted by effective date.
type Schedule []RateChange

// RateAt returns the monthly rate in force at the given date: the latest
// change with EffectiveDate <= at. If no entry qualifies the rate is zero.
func (s Schedule) RateAt(at Date) decimal.Decimal {
	rate := decimal.Zero
	for _, rc := range s {
		if rc.EffectiveDate.After(at) {
			break
		}
		rate = rc.MonthlyRate
	}
	return rate
}

// IsZero reports whether no entry ever sets a positive rate.
func (s Schedule) IsZero() bool {
	for _, rc := range s {
		if rc.MonthlyRate.IsPositive() {
			return false
		}
	}
	return true
}

// sortByDate orders the schedule by effective date ascending (stable, so a
// same-day correction keeps the later entry after the earlier one and wins
// in RateAt).
func (s Schedule) sortByDate() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].EffectiveDate.Before(s[j].EffectiveDate)
	})
}

// =============================================================================
// NORMALIZATION - One-time migration applied on load
// =============================================================================

// Normalize brings a single debt to the invariant shape: rate history
// sorted, anchored at the creation date, with legacy flat-rate records
// converted to a one-entry schedule.
func (d *Debt) Normalize() {
	if len(d.RateHistory) == 0 {
		rate := decimal.Zero
		if d.LegacyMonthlyRate != nil {
			rate = *d.LegacyMonthlyRate
		}
		d.RateHistory = Schedule{{EffectiveDate: d.CreationDate, MonthlyRate: rate}}
	} else {
		d.RateHistory.sortByDate()
		if d.RateHistory[0].EffectiveDate.After(d.CreationDate) {
			anchored := Schedule{{EffectiveDate: d.CreationDate, MonthlyRate: decimal.Zero}}
			d.RateHistory = append(anchored, d.RateHistory...)
		}
	}
	d.LegacyMonthlyRate = nil

	for i := range d.Ledger {
		if d.Ledger[i].Kind == "" {
			d.Ledger[i].Kind = EventManual
		}
	}
}

// NormalizeState applies Normalize to every debt in the document.
// Stores call this once after loading.
func NormalizeState(st *State) {
	for _, debtor := range st.Debtors {
		for _, debt := range debtor.Debts {
			debt.Normalize()
		}
	}
}
