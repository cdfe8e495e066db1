package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigogonn/debtors/ledger"
)

// =============================================================================
// RATE RESOLUTION
// =============================================================================

func TestScheduleRateAt(t *testing.T) {
	schedule := ledger.Schedule{
		{EffectiveDate: date(2024, time.January, 1), MonthlyRate: dec("2")},
		{EffectiveDate: date(2024, time.March, 15), MonthlyRate: dec("3")},
	}

	tests := []struct {
		name string
		at   ledger.Date
		want string
	}{
		{"before every entry", date(2023, time.December, 31), "0"},
		{"on the first entry", date(2024, time.January, 1), "2"},
		{"between entries", date(2024, time.March, 14), "2"},
		{"exactly on a change", date(2024, time.March, 15), "3"},
		{"after the last change", date(2025, time.January, 1), "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schedule.RateAt(tt.at)
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestScheduleIsZero(t *testing.T) {
	assert.True(t, ledger.Schedule{}.IsZero())
	assert.True(t, ledger.Schedule{
		{EffectiveDate: date(2024, time.January, 1), MonthlyRate: decimal.Zero},
	}.IsZero())
	assert.False(t, ledger.Schedule{
		{EffectiveDate: date(2024, time.January, 1), MonthlyRate: decimal.Zero},
		{EffectiveDate: date(2024, time.June, 1), MonthlyRate: dec("1")},
	}.IsZero())
}

// =============================================================================
// NORMALIZATION
// =============================================================================

func TestNormalize_MigratesLegacyFlatRate(t *testing.T) {
	// GIVEN: A record persisted before rate history existed
	// WHEN: Normalizing
	// THEN: One schedule entry at the creation date, legacy field cleared

	legacy := dec("2.5")
	d := &ledger.Debt{
		CreationDate:      date(2023, time.June, 10),
		LegacyMonthlyRate: &legacy,
	}

	d.Normalize()

	require.Len(t, d.RateHistory, 1)
	assert.True(t, d.RateHistory[0].EffectiveDate.Equal(date(2023, time.June, 10)))
	assert.True(t, d.RateHistory[0].MonthlyRate.Equal(dec("2.5")))
	assert.Nil(t, d.LegacyMonthlyRate)
}

func TestNormalize_NoLegacyRateMeansZeroRateEntry(t *testing.T) {
	d := &ledger.Debt{CreationDate: date(2023, time.June, 10)}

	d.Normalize()

	require.Len(t, d.RateHistory, 1)
	assert.True(t, d.RateHistory[0].MonthlyRate.IsZero())
}

func TestNormalize_AnchorsHistoryAtCreationDate(t *testing.T) {
	// GIVEN: A history whose first entry postdates creation
	// WHEN: Normalizing
	// THEN: A zero-rate entry is prepended at the creation date so RateAt
	//       resolves for every date from creation onward

	d := &ledger.Debt{
		CreationDate: date(2024, time.January, 1),
		RateHistory: ledger.Schedule{
			{EffectiveDate: date(2024, time.March, 1), MonthlyRate: dec("2")},
		},
	}

	d.Normalize()

	require.Len(t, d.RateHistory, 2)
	assert.True(t, d.RateHistory[0].EffectiveDate.Equal(date(2024, time.January, 1)))
	assert.True(t, d.RateHistory[0].MonthlyRate.IsZero())
	assert.True(t, d.RateHistory[1].MonthlyRate.Equal(dec("2")))
}

func TestNormalize_SortsHistoryAndDefaultsEventKinds(t *testing.T) {
	d := &ledger.Debt{
		CreationDate: date(2024, time.January, 1),
		RateHistory: ledger.Schedule{
			{EffectiveDate: date(2024, time.June, 1), MonthlyRate: dec("3")},
			{EffectiveDate: date(2024, time.January, 1), MonthlyRate: dec("2")},
		},
		Ledger: []ledger.Event{
			{Date: date(2024, time.January, 1), Amount: dec("100")},
		},
	}

	d.Normalize()

	assert.True(t, d.RateHistory[0].EffectiveDate.Equal(date(2024, time.January, 1)))
	assert.True(t, d.RateHistory[1].EffectiveDate.Equal(date(2024, time.June, 1)))
	assert.Equal(t, ledger.EventManual, d.Ledger[0].Kind)
}

func TestNormalizeState_CoversEveryDebt(t *testing.T) {
	legacy := dec("1")
	st := &ledger.State{
		Debtors: []*ledger.Debtor{
			{Name: "Maria", Debts: []*ledger.Debt{
				{CreationDate: date(2024, time.January, 1), LegacyMonthlyRate: &legacy},
			}},
			{Name: "João", Debts: []*ledger.Debt{
				{CreationDate: date(2024, time.February, 1)},
			}},
		},
	}

	ledger.NormalizeState(st)

	assert.Len(t, st.Debtors[0].Debts[0].RateHistory, 1)
	assert.Len(t, st.Debtors[1].Debts[0].RateHistory, 1)
}
