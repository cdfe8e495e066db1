package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigogonn/debtors/ledger"
)

func tenByTwoHundred() *ledger.InstallmentPlan {
	return &ledger.InstallmentPlan{
		Amount:       dec("200"),
		Total:        10,
		DueDay:       15,
		FirstDueDate: ledger.NewDate(2024, time.January, 15),
	}
}

func payments(amounts ...string) []ledger.Event {
	events := make([]ledger.Event, len(amounts))
	day := ledger.NewDate(2024, time.January, 15)
	for i, a := range amounts {
		events[i] = ledger.Event{
			Date:        day.AddMonths(i),
			Description: "Pagamento recebido",
			Amount:      dec(a).Neg(),
			Kind:        ledger.EventManual,
		}
	}
	return events
}

// =============================================================================
// STATUS PROGRESSION
// =============================================================================

func TestComputeStatus_CumulativeUnderpaymentIsLate(t *testing.T) {
	// GIVEN: 10 x 200 due from Jan 15, 450 paid in total
	// WHEN: Checking on Apr 1
	// THEN: Installments 1 and 2 are covered, installment 3 (due Mar 15)
	//       carries 50 and is late

	status, err := ledger.ComputeStatus(tenByTwoHundred(), payments("200", "200", "50"),
		ledger.NewDate(2024, time.April, 1))

	require.NoError(t, err)
	assert.Equal(t, 3, status.Current)
	assert.Equal(t, 10, status.Total)
	assert.True(t, status.TotalPaid.Equal(dec("450")))
	assert.True(t, status.PaidTowardCurrent.Equal(dec("50")))
	assert.True(t, status.DueDate.Equal(ledger.NewDate(2024, time.March, 15)))
	assert.Equal(t, ledger.StatusLate, status.Code)
}

func TestComputeStatus_NotYetDueIsOpen(t *testing.T) {
	// GIVEN: Nothing paid, first installment due Jan 15
	// WHEN: Checking on Jan 10
	// THEN: Installment 1 is simply open

	status, err := ledger.ComputeStatus(tenByTwoHundred(), nil,
		ledger.NewDate(2024, time.January, 10))

	require.NoError(t, err)
	assert.Equal(t, 1, status.Current)
	assert.True(t, status.TotalPaid.IsZero())
	assert.Equal(t, ledger.StatusOpen, status.Code)
}

func TestComputeStatus_PaidAheadIsOpenOnTheNextInstallment(t *testing.T) {
	// GIVEN: Installment 1 fully paid
	// WHEN: Checking after its due date but before installment 2's
	// THEN: The calculator advances to installment 2, still open

	status, err := ledger.ComputeStatus(tenByTwoHundred(), payments("200"),
		ledger.NewDate(2024, time.January, 20))

	require.NoError(t, err)
	assert.Equal(t, 2, status.Current)
	assert.True(t, status.DueDate.Equal(ledger.NewDate(2024, time.February, 15)))
	assert.Equal(t, ledger.StatusOpen, status.Code)
}

func TestComputeStatus_FullyPaidPlanClampsAndReadsCurrent(t *testing.T) {
	// GIVEN: All 10 installments covered
	// WHEN: Checking long after the plan elapsed
	// THEN: Index clamps to 10, due date is the last installment's, status
	//       is current

	events := payments("200", "200", "200", "200", "200", "200", "200", "200", "200", "200")

	status, err := ledger.ComputeStatus(tenByTwoHundred(), events,
		ledger.NewDate(2024, time.December, 1))

	require.NoError(t, err)
	assert.Equal(t, 10, status.Current)
	assert.True(t, status.DueDate.Equal(ledger.NewDate(2024, time.October, 15)))
	assert.True(t, status.PaidTowardCurrent.Equal(dec("200")))
	assert.Equal(t, ledger.StatusCurrent, status.Code)
}

func TestComputeStatus_IndexNeverExceedsPlanLength(t *testing.T) {
	// GIVEN: Paid more than the whole plan
	// WHEN: Checking far in the future
	// THEN: Index stays clamped at the plan length

	status, err := ledger.ComputeStatus(tenByTwoHundred(),
		[]ledger.Event{{
			Date:   ledger.NewDate(2024, time.January, 15),
			Amount: dec("-5000"),
			Kind:   ledger.EventManual,
		}},
		ledger.NewDate(2030, time.January, 1))

	require.NoError(t, err)
	assert.Equal(t, 10, status.Current)
}

func TestComputeStatus_ChargesInTheLedgerDoNotCountTowardThePlan(t *testing.T) {
	// GIVEN: A positive ad-hoc entry mixed with a payment
	// WHEN: Summing paid amounts
	// THEN: Only the payment counts

	events := []ledger.Event{
		{Date: ledger.NewDate(2024, time.January, 15), Amount: dec("-200"), Kind: ledger.EventManual},
		{Date: ledger.NewDate(2024, time.January, 20), Amount: dec("300"), Kind: ledger.EventManual},
	}

	status, err := ledger.ComputeStatus(tenByTwoHundred(), events,
		ledger.NewDate(2024, time.February, 1))

	require.NoError(t, err)
	assert.True(t, status.TotalPaid.Equal(dec("200")))
}

// =============================================================================
// VALIDATION AND BALANCE
// =============================================================================

func TestComputeStatus_RejectsInvalidPlan(t *testing.T) {
	plan := tenByTwoHundred()
	plan.Amount = dec("0")

	_, err := ledger.ComputeStatus(plan, nil, ledger.NewDate(2024, time.April, 1))

	var planErr *ledger.InvalidPlanError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, "amount", planErr.Field)
	assert.ErrorIs(t, err, ledger.ErrInvalidPlan)
}

func TestInstallmentPlanValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ledger.InstallmentPlan)
		field  string
	}{
		{"zero amount", func(p *ledger.InstallmentPlan) { p.Amount = dec("0") }, "amount"},
		{"negative total", func(p *ledger.InstallmentPlan) { p.Total = -1 }, "total"},
		{"due day zero", func(p *ledger.InstallmentPlan) { p.DueDay = 0 }, "dueDay"},
		{"due day 32", func(p *ledger.InstallmentPlan) { p.DueDay = 32 }, "dueDay"},
		{"missing first due date", func(p *ledger.InstallmentPlan) { p.FirstDueDate = ledger.Date{} }, "firstDueDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := tenByTwoHundred()
			tt.mutate(plan)

			err := plan.Validate()

			var planErr *ledger.InvalidPlanError
			require.ErrorAs(t, err, &planErr)
			assert.Equal(t, tt.field, planErr.Field)
		})
	}
}

func TestInstallmentBalance(t *testing.T) {
	// GIVEN: 10 x 200 with 450 paid
	// THEN: 1550 remains owed regardless of dates

	balance := ledger.InstallmentBalance(tenByTwoHundred(), payments("200", "200", "50"))

	assert.True(t, balance.Equal(dec("1550")), "got %s", balance)
}

func TestComputeStatus_Deterministic(t *testing.T) {
	plan := tenByTwoHundred()
	events := payments("200", "150")
	ref := ledger.NewDate(2024, time.March, 20)

	first, err := ledger.ComputeStatus(plan, events, ref)
	require.NoError(t, err)
	second, err := ledger.ComputeStatus(plan, events, ref)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
