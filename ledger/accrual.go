/*
accrual.go - Interest accrual engine

PURPOSE:
  Reconstructs a debt's complete chronological ledger as of a reference
  date: the manually recorded events plus synthetic monthly interest
  charges derived from the rate schedule.

ALGORITHM:
  1. Replay manual events in date order, accumulating a running balance.
  2. Immediately after the first event, if a positive rate is in force at
     its date, charge interest on the running balance dated at that event.
  3. From then on, charge interest at creationDate + k months for each k
     whose date is on or before the reference date (and the cutoff date,
     when one is set). Each charge applies the rate in force at the charge
     date to the sum of every ledger entry dated on or before it, so
     interest compounds and mid-month payments reduce the base.
  4. Re-sort and sum. The final balance is always the sum of the returned
     events, and the debt's PaidOff flag tracks it.

ANCHORING:
  Charge dates are always derived from the creation date, never from the
  previous charge. A creation on Jan 31 charges on Feb 29, Mar 31, Apr 30:
  clamped to month ends but re-anchored every month, so the day never
  drifts forward the way naive month addition would.

DETERMINISM:
  ComputeLedger is a pure function of the debt and the reference date.
  Calling it twice with the same inputs yields identical output.
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// =============================================================================
// ACCRUAL ENGINE
// =============================================================================

// ComputeLedger returns the full chronological event sequence for an
// interest-accruing debt as of the reference date, including synthetic
// interest charges, together with the final balance. The debt's PaidOff
// flag is refreshed as a side effect.
//
// Interest only begins once at least one manual event exists: an empty
// history yields an empty ledger and a zero balance.
func ComputeLedger(d *Debt, ref Date) ([]Event, decimal.Decimal) {
	manual := make([]Event, len(d.Ledger))
	copy(manual, d.Ledger)
	sortEventsByDate(manual)

	if len(manual) == 0 {
		d.PaidOff = true
		return manual, decimal.Zero
	}

	// Zero-rate short-circuit: the sorted manual history is the ledger.
	if d.RateHistory.IsZero() {
		balance := sumAmounts(manual)
		d.PaidOff = IsSettled(balance)
		return manual, balance
	}

	events := make([]Event, 0, len(manual)+1)
	running := decimal.Zero

	for i, ev := range manual {
		events = append(events, ev)
		running = running.Add(ev.Amount)

		if i == 0 {
			// The first event is charged immediately at its own date;
			// the monthly cursor then starts one month after creation.
			rate := d.RateHistory.RateAt(ev.Date)
			if rate.IsPositive() {
				interest := running.Mul(rate).Div(oneHundred)
				if interest.IsPositive() {
					events = append(events, interestEvent(ev.Date, rate, running, interest))
					running = running.Add(interest)
				}
			}
		}
	}

	cutoff := d.InterestCutoff
	for k := 1; ; k++ {
		chargeDate := d.CreationDate.AddMonths(k)
		if chargeDate.After(ref) {
			break
		}
		if cutoff != nil && chargeDate.After(*cutoff) {
			break
		}

		rate := d.RateHistory.RateAt(chargeDate)
		base := sumAmountsThrough(events, chargeDate)
		interest := base.Mul(rate).Div(oneHundred)
		if interest.IsPositive() {
			events = append(events, interestEvent(chargeDate, rate, base, interest))
		}
	}

	sortEventsByDate(events)
	balance := sumAmounts(events)
	d.PaidOff = IsSettled(balance)
	return events, balance
}

func interestEvent(date Date, rate, base, interest decimal.Decimal) Event {
	return Event{
		Date:        date,
		Description: "Juros (" + rate.String() + "% de " + FormatBRL(base) + ")",
		Amount:      interest,
		Kind:        EventInterest,
	}
}

// =============================================================================
// NEXT CHARGE PREVIEW
// =============================================================================

// InterestPreview announces the next synthetic charge for display.
type InterestPreview struct {
	Date   Date
	Amount decimal.Decimal
}

// NextInterestCharge predicts the date and amount of the next monthly
// interest charge after the reference date. Returns false for installment
// debts, zero-rate schedules, and debts past their interest cutoff.
//
// The charge day follows the creation date's day-of-month, clamped to the
// end of shorter months.
func NextInterestCharge(d *Debt, ref Date) (InterestPreview, bool) {
	if d.IsInstallment() || d.RateHistory.IsZero() {
		return InterestPreview{}, false
	}

	next := dayInMonth(ref.Year(), ref.Month(), d.CreationDate.Day())
	if !next.After(ref) {
		next = next.AddMonths(1)
		// Re-anchor on the creation day: AddMonths keeps a clamped day
		// clamped (Feb 28 -> Mar 28), but the charge day is Mar 31.
		next = dayInMonth(next.Year(), next.Month(), d.CreationDate.Day())
	}

	if d.InterestCutoff != nil && next.After(*d.InterestCutoff) {
		return InterestPreview{}, false
	}

	rate := d.RateHistory.RateAt(next)
	if !rate.IsPositive() {
		return InterestPreview{}, false
	}

	_, balance := ComputeLedger(d, ref)
	return InterestPreview{
		Date:   next,
		Amount: balance.Mul(rate).Div(oneHundred),
	}, true
}

// dayInMonth builds a date in the given month with the day clamped to the
// month's length.
func dayInMonth(year int, month time.Month, day int) Date {
	first := NewDate(year, month, 1)
	last := first.AddMonths(1).AddDays(-1).Day()
	if day > last {
		day = last
	}
	return NewDate(year, month, day)
}
