package jsonfile_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigogonn/debtors/ledger"
	"github.com/rodrigogonn/debtors/store/jsonfile"
)

func newTestStore(t *testing.T) (*jsonfile.Store, string) {
	path := filepath.Join(t.TempDir(), "dados.json")
	log := logrus.New()
	log.SetOutput(io.Discard)
	return jsonfile.New(path, log), path
}

func TestLoad_MissingFileYieldsEmptyState(t *testing.T) {
	store, _ := newTestStore(t)

	st, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, st.Debtors)
}

func TestLoad_CorruptFileYieldsEmptyState(t *testing.T) {
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	st, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, st.Debtors)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	cutoff := ledger.NewDate(2024, time.June, 1)
	st := &ledger.State{
		Debtors: []*ledger.Debtor{{
			Name: "Maria",
			Debts: []*ledger.Debt{{
				ID:           1,
				Description:  "Empréstimo",
				Notes:        "renegociado",
				CreationDate: ledger.NewDate(2024, time.January, 1),
				RateHistory: ledger.Schedule{
					{EffectiveDate: ledger.NewDate(2024, time.January, 1), MonthlyRate: ledger.MustDecimal("2")},
				},
				InterestCutoff: &cutoff,
				Ledger: []ledger.Event{{
					Date:        ledger.NewDate(2024, time.January, 1),
					Description: "Empréstimo",
					Amount:      ledger.MustDecimal("1000"),
					Kind:        ledger.EventManual,
				}},
			}, {
				ID:           2,
				Description:  "Celular",
				CreationDate: ledger.NewDate(2024, time.February, 1),
				Installments: &ledger.InstallmentPlan{
					Amount:       ledger.MustDecimal("200"),
					Total:        10,
					DueDay:       15,
					FirstDueDate: ledger.NewDate(2024, time.February, 15),
				},
			}},
		}},
	}

	require.NoError(t, store.Save(ctx, st))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)

	require.Len(t, loaded.Debtors, 1)
	require.Len(t, loaded.Debtors[0].Debts, 2)

	debt := loaded.Debtors[0].Debts[0]
	assert.Equal(t, "Empréstimo", debt.Description)
	assert.Equal(t, "renegociado", debt.Notes)
	require.NotNil(t, debt.InterestCutoff)
	assert.True(t, debt.InterestCutoff.Equal(cutoff))
	require.Len(t, debt.Ledger, 1)
	assert.True(t, debt.Ledger[0].Amount.Equal(ledger.MustDecimal("1000")))

	plan := loaded.Debtors[0].Debts[1].Installments
	require.NotNil(t, plan)
	assert.Equal(t, 10, plan.Total)
	assert.True(t, plan.Amount.Equal(ledger.MustDecimal("200")))
}

func TestLoad_MigratesLegacyFlatRate(t *testing.T) {
	// GIVEN: A document written before rate history existed
	// WHEN: Loading it
	// THEN: The flat monthlyRate becomes a one-entry schedule at creation

	store, path := newTestStore(t)
	doc := `{
	  "debtors": [{
	    "name": "Maria",
	    "debts": [{
	      "id": 1,
	      "description": "Empréstimo",
	      "creationDate": "2023-06-10",
	      "monthlyRate": "2.5",
	      "ledger": [
	        {"date": "2023-06-10", "description": "Empréstimo", "amount": "500"}
	      ],
	      "paidOff": false
	    }]
	  }]
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	st, err := store.Load(context.Background())
	require.NoError(t, err)

	debt := st.Debtors[0].Debts[0]
	assert.Nil(t, debt.LegacyMonthlyRate)
	require.Len(t, debt.RateHistory, 1)
	assert.True(t, debt.RateHistory[0].EffectiveDate.Equal(ledger.NewDate(2023, time.June, 10)))
	assert.True(t, debt.RateHistory[0].MonthlyRate.Equal(ledger.MustDecimal("2.5")))
	assert.Equal(t, ledger.EventManual, debt.Ledger[0].Kind)
}
