package ledger_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigogonn/debtors/ledger"
)

// =============================================================================
// PARSING AND FORMATTING
// =============================================================================

func TestParseDisplay(t *testing.T) {
	d, err := ledger.ParseDisplay("15/03/2024")
	require.NoError(t, err)
	assert.True(t, d.Equal(date(2024, time.March, 15)))
	assert.Equal(t, "2024-03-15", d.ISO())
	assert.Equal(t, "15/03/2024", d.Display())
}

func TestParseDisplay_RejectsMalformedInput(t *testing.T) {
	tests := []string{
		"2024-03-15", // wrong pattern
		"15-03-2024",
		"1/3/2024", // missing zero padding
		"31/02/2024", // nonexistent calendar date
		"00/01/2024",
		"15/13/2024",
		"",
		"abc",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ledger.ParseDisplay(input)
			var dateErr *ledger.InvalidDateError
			require.ErrorAs(t, err, &dateErr, "input %q should be rejected", input)
			assert.Equal(t, input, dateErr.Input)
		})
	}
}

func TestParseISO(t *testing.T) {
	d, err := ledger.ParseISO("2024-02-29")
	require.NoError(t, err)
	assert.True(t, d.Equal(date(2024, time.February, 29)))

	_, err = ledger.ParseISO("2023-02-29")
	assert.Error(t, err)
}

// =============================================================================
// MONTH ARITHMETIC
// =============================================================================

func TestAddMonths_ClampsToShorterMonths(t *testing.T) {
	tests := []struct {
		name  string
		start ledger.Date
		n     int
		want  ledger.Date
	}{
		{"jan 31 to leap feb", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"jan 31 to non-leap feb", date(2023, time.January, 31), 1, date(2023, time.February, 28)},
		{"jan 31 skipping feb", date(2024, time.January, 31), 2, date(2024, time.March, 31)},
		{"aug 31 to sep", date(2024, time.August, 31), 1, date(2024, time.September, 30)},
		{"year boundary", date(2024, time.November, 15), 2, date(2025, time.January, 15)},
		{"plain mid-month", date(2024, time.April, 10), 3, date(2024, time.July, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.AddMonths(tt.n)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestAddMonths_AnchoredAdditionDoesNotDrift(t *testing.T) {
	// GIVEN: An origin on the 31st
	// WHEN: Adding k months from the origin each time (not chaining)
	// THEN: Months long enough to hold day 31 get day 31 back

	origin := date(2024, time.January, 31)

	assert.Equal(t, 29, origin.AddMonths(1).Day())
	assert.Equal(t, 31, origin.AddMonths(2).Day())
	assert.Equal(t, 30, origin.AddMonths(3).Day())
	assert.Equal(t, 31, origin.AddMonths(4).Day())
}

func TestDateComparisons(t *testing.T) {
	a := date(2024, time.March, 15)
	b := date(2024, time.March, 16)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.AfterOrEqual(a))
	assert.False(t, a.Equal(b))
}

// =============================================================================
// JSON
// =============================================================================

func TestDateJSONRoundTrip(t *testing.T) {
	d := date(2024, time.March, 15)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-15"`, string(data))

	var back ledger.Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(d))
}

func TestDateJSONEmptyValues(t *testing.T) {
	var d ledger.Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"15/03/2024"`), &d))
}
