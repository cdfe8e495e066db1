/*
errors.go - Centralized error types for the debt engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Boundary packages (api, stores) wrap these with additional context.

ERROR CATEGORIES:
  1. Lookup errors - Missing debtors, debts, or events
  2. Validation errors - Malformed input rejected at the boundary
  3. Plan errors - Programmer errors in installment plan construction

USAGE:
  Callers match with errors.Is / errors.As:

    if errors.Is(err, ledger.ErrDebtNotFound) { ... }

    var planErr *ledger.InvalidPlanError
    if errors.As(err, &planErr) { ... }
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDebtorNotFound is returned when a referenced debtor doesn't exist.
	ErrDebtorNotFound = errors.New("debtor not found")

	// ErrDebtNotFound is returned when a referenced debt doesn't exist.
	ErrDebtNotFound = errors.New("debt not found")

	// ErrEventNotFound is returned for an out-of-range event position.
	ErrEventNotFound = errors.New("event not found")

	// ErrNoInstallmentPlan is returned when an installment-only operation
	// is applied to a debt without a plan.
	ErrNoInstallmentPlan = errors.New("debt has no installment plan")

	// ErrInvalidPlan is the sentinel wrapped by InvalidPlanError.
	ErrInvalidPlan = errors.New("invalid installment plan")

	// ErrPaymentNotPositive is returned for zero or negative payments.
	ErrPaymentNotPositive = errors.New("payment must be greater than zero")

	// ErrDebtorExists is returned when creating a debtor whose name is taken.
	ErrDebtorExists = errors.New("debtor already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidPlanError reports a malformed installment plan. A plan with a
// non-positive amount or installment count is a programmer error, not a
// recoverable condition.
type InvalidPlanError struct {
	Field  string
	Reason string
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("invalid installment plan: %s %s", e.Field, e.Reason)
}

func (e *InvalidPlanError) Unwrap() error { return ErrInvalidPlan }

// PaymentTooLargeError reports a payment exceeding the outstanding balance.
type PaymentTooLargeError struct {
	Requested decimal.Decimal
	Maximum   decimal.Decimal
}

func (e *PaymentTooLargeError) Error() string {
	return fmt.Sprintf("payment %s exceeds outstanding balance %s",
		e.Requested.StringFixed(2), e.Maximum.StringFixed(2))
}

// InvalidDateError reports a date string that doesn't match the expected
// pattern or names a nonexistent calendar date.
type InvalidDateError struct {
	Input string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q (expected a real calendar date)", e.Input)
}

// InvalidAmountError reports non-numeric monetary input.
type InvalidAmountError struct {
	Input string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q", e.Input)
}
