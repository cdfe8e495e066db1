/*
scheduler.go - Nightly paid-off refresh

PURPOSE:
  PaidOff is a derived flag, but it is persisted so list views and the
  stored document stay readable without recomputing every balance. A debt
  can also become paid off purely by the calendar (an installment plan
  fully covered in advance), so the flags are refreshed once a day even
  when nobody mutates anything.

DESIGN:
  - robfig/cron drives the schedule ("0 3 * * *" by default)
  - Each run performs one ordinary load-mutate-save cycle
  - The state is only saved when at least one flag actually changed

USAGE:
  scheduler := NewRefreshScheduler(store, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()
*/
package api

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/rodrigogonn/debtors/ledger"
)

// RefreshScheduler recomputes paid-off flags on a cron schedule.
type RefreshScheduler struct {
	Store ledger.Store
	Log   *logrus.Logger

	// Spec is a standard cron expression. Default: daily at 03:00.
	Spec string

	// Now supplies the reference date, overridable in tests.
	Now func() ledger.Date

	cron *cron.Cron
}

// NewRefreshScheduler creates a scheduler with the default nightly spec.
func NewRefreshScheduler(store ledger.Store, log *logrus.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		Store: store,
		Log:   log,
		Spec:  "0 3 * * *",
		Now:   ledger.Today,
	}
}

// Start registers the job and begins the cron loop.
func (rs *RefreshScheduler) Start() error {
	rs.cron = cron.New()
	if _, err := rs.cron.AddFunc(rs.Spec, rs.RunOnce); err != nil {
		return err
	}
	rs.cron.Start()
	rs.Log.WithField("spec", rs.Spec).Info("paid-off refresh scheduled")
	return nil
}

// Stop halts the cron loop, waiting for a running job to finish.
func (rs *RefreshScheduler) Stop() {
	if rs.cron != nil {
		<-rs.cron.Stop().Done()
	}
}

// RunOnce refreshes every debt's paid-off flag and saves when anything
// changed.
func (rs *RefreshScheduler) RunOnce() {
	ctx := context.Background()
	ref := rs.Now()

	st, err := rs.Store.Load(ctx)
	if err != nil {
		rs.Log.WithError(err).Error("paid-off refresh: load failed")
		return
	}

	changed := 0
	for _, dr := range st.Debtors {
		for _, d := range dr.Debts {
			before := d.PaidOff
			d.Balance(ref)
			if d.PaidOff != before {
				changed++
			}
		}
	}

	if changed == 0 {
		rs.Log.Debug("paid-off refresh: no changes")
		return
	}

	if err := rs.Store.Save(ctx, st); err != nil {
		rs.Log.WithError(err).Error("paid-off refresh: save failed")
		return
	}
	rs.Log.WithField("debts", changed).Info("paid-off refresh: flags updated")
}
