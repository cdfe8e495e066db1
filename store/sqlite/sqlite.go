/*
Package sqlite provides a SQLite-backed implementation of the state store.

PURPOSE:
  Keeps the document in a relational layout while preserving the
  whole-document contract: Load assembles the entire state, Save replaces
  it inside a single transaction. The engine never issues queries; it
  only ever sees the assembled State.

KEY TABLES:
  debtors:            One row per debtor, ordered by position
  debts:              Debt records, keyed (debtor, id)
  rate_changes:       Interest rate history per debt
  events:             Manual ledger entries per debt, ordered by seq
  installment_plans:  At most one plan per debt

AMOUNT STORAGE:
  Monetary values and rates are stored as decimal strings, never as
  floating point columns.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better crash
  recovery. The application holds a single writer; concurrent access is
  serialized above this layer.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rodrigogonn/debtors/ledger"
)

// Store implements ledger.Store on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS debtors (
		name TEXT PRIMARY KEY,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS debts (
		debtor TEXT NOT NULL REFERENCES debtors(name) ON DELETE CASCADE,
		id INTEGER NOT NULL,
		description TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		creation_date TEXT NOT NULL,
		interest_cutoff TEXT,
		paid_off INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (debtor, id)
	);

	CREATE TABLE IF NOT EXISTS rate_changes (
		debtor TEXT NOT NULL,
		debt_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		effective_date TEXT NOT NULL,
		monthly_rate TEXT NOT NULL,
		PRIMARY KEY (debtor, debt_id, seq),
		FOREIGN KEY (debtor, debt_id) REFERENCES debts(debtor, id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS events (
		debtor TEXT NOT NULL,
		debt_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (debtor, debt_id, seq),
		FOREIGN KEY (debtor, debt_id) REFERENCES debts(debtor, id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS installment_plans (
		debtor TEXT NOT NULL,
		debt_id INTEGER NOT NULL,
		amount TEXT NOT NULL,
		total INTEGER NOT NULL,
		due_day INTEGER NOT NULL,
		first_due_date TEXT NOT NULL,
		PRIMARY KEY (debtor, debt_id),
		FOREIGN KEY (debtor, debt_id) REFERENCES debts(debtor, id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_events_debt ON events(debtor, debt_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOAD - Assemble the whole document
// =============================================================================

func (s *Store) Load(ctx context.Context) (*ledger.State, error) {
	st := &ledger.State{}

	debtorRows, err := s.db.QueryContext(ctx,
		`SELECT name FROM debtors ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load debtors: %w", err)
	}
	defer debtorRows.Close()

	index := map[string]*ledger.Debtor{}
	for debtorRows.Next() {
		var name string
		if err := debtorRows.Scan(&name); err != nil {
			return nil, err
		}
		dr := &ledger.Debtor{Name: name}
		st.Debtors = append(st.Debtors, dr)
		index[name] = dr
	}
	if err := debtorRows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadDebts(ctx, index); err != nil {
		return nil, err
	}

	ledger.NormalizeState(st)
	return st, nil
}

type debtKey struct {
	debtor string
	id     int
}

func (s *Store) loadDebts(ctx context.Context, index map[string]*ledger.Debtor) error {
	debts := map[debtKey]*ledger.Debt{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT debtor, id, description, notes, creation_date, interest_cutoff, paid_off
		FROM debts ORDER BY debtor, id`)
	if err != nil {
		return fmt.Errorf("load debts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			debtor, description, notes, creation string
			cutoff                               sql.NullString
			id                                   int
			paidOff                              bool
		)
		if err := rows.Scan(&debtor, &id, &description, &notes, &creation, &cutoff, &paidOff); err != nil {
			return err
		}

		created, err := ledger.ParseISO(creation)
		if err != nil {
			return err
		}
		debt := &ledger.Debt{
			ID:           id,
			Description:  description,
			Notes:        notes,
			CreationDate: created,
			PaidOff:      paidOff,
		}
		if cutoff.Valid {
			d, err := ledger.ParseISO(cutoff.String)
			if err != nil {
				return err
			}
			debt.InterestCutoff = &d
		}

		if dr, ok := index[debtor]; ok {
			dr.Debts = append(dr.Debts, debt)
			debts[debtKey{debtor, id}] = debt
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := s.loadRateChanges(ctx, debts); err != nil {
		return err
	}
	if err := s.loadEvents(ctx, debts); err != nil {
		return err
	}
	return s.loadPlans(ctx, debts)
}

func (s *Store) loadRateChanges(ctx context.Context, debts map[debtKey]*ledger.Debt) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT debtor, debt_id, effective_date, monthly_rate
		FROM rate_changes ORDER BY debtor, debt_id, seq`)
	if err != nil {
		return fmt.Errorf("load rate changes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			debtor, effective, rate string
			id                      int
		)
		if err := rows.Scan(&debtor, &id, &effective, &rate); err != nil {
			return err
		}
		debt, ok := debts[debtKey{debtor, id}]
		if !ok {
			continue
		}
		date, err := ledger.ParseISO(effective)
		if err != nil {
			return err
		}
		monthly, err := decimal.NewFromString(rate)
		if err != nil {
			return fmt.Errorf("rate change for %s/%d: %w", debtor, id, err)
		}
		debt.RateHistory = append(debt.RateHistory, ledger.RateChange{
			EffectiveDate: date,
			MonthlyRate:   monthly,
		})
	}
	return rows.Err()
}

func (s *Store) loadEvents(ctx context.Context, debts map[debtKey]*ledger.Debt) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT debtor, debt_id, date, description, amount
		FROM events ORDER BY debtor, debt_id, seq`)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			debtor, dateStr, description, amountStr string
			id                                      int
		)
		if err := rows.Scan(&debtor, &id, &dateStr, &description, &amountStr); err != nil {
			return err
		}
		debt, ok := debts[debtKey{debtor, id}]
		if !ok {
			continue
		}
		date, err := ledger.ParseISO(dateStr)
		if err != nil {
			return err
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return fmt.Errorf("event for %s/%d: %w", debtor, id, err)
		}
		debt.Ledger = append(debt.Ledger, ledger.Event{
			Date:        date,
			Description: description,
			Amount:      amount,
			Kind:        ledger.EventManual,
		})
	}
	return rows.Err()
}

func (s *Store) loadPlans(ctx context.Context, debts map[debtKey]*ledger.Debt) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT debtor, debt_id, amount, total, due_day, first_due_date
		FROM installment_plans`)
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			debtor, amountStr, firstDue string
			id, total, dueDay           int
		)
		if err := rows.Scan(&debtor, &id, &amountStr, &total, &dueDay, &firstDue); err != nil {
			return err
		}
		debt, ok := debts[debtKey{debtor, id}]
		if !ok {
			continue
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return fmt.Errorf("plan for %s/%d: %w", debtor, id, err)
		}
		date, err := ledger.ParseISO(firstDue)
		if err != nil {
			return err
		}
		debt.Installments = &ledger.InstallmentPlan{
			Amount:       amount,
			Total:        total,
			DueDay:       dueDay,
			FirstDueDate: date,
		}
	}
	return rows.Err()
}

// =============================================================================
// SAVE - Replace the whole document in one transaction
// =============================================================================

func (s *Store) Save(ctx context.Context, st *ledger.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Wholesale replacement: children first for foreign keys.
	for _, table := range []string{"installment_plans", "events", "rate_changes", "debts", "debtors"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for pos, dr := range st.Debtors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO debtors (name, position) VALUES (?, ?)`, dr.Name, pos); err != nil {
			return fmt.Errorf("save debtor %s: %w", dr.Name, err)
		}

		for _, debt := range dr.Debts {
			var cutoff any
			if debt.InterestCutoff != nil {
				cutoff = debt.InterestCutoff.ISO()
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO debts (debtor, id, description, notes, creation_date, interest_cutoff, paid_off)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				dr.Name, debt.ID, debt.Description, debt.Notes,
				debt.CreationDate.ISO(), cutoff, debt.PaidOff); err != nil {
				return fmt.Errorf("save debt %s/%d: %w", dr.Name, debt.ID, err)
			}

			for seq, rc := range debt.RateHistory {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO rate_changes (debtor, debt_id, seq, effective_date, monthly_rate)
					VALUES (?, ?, ?, ?, ?)`,
					dr.Name, debt.ID, seq, rc.EffectiveDate.ISO(), rc.MonthlyRate.String()); err != nil {
					return fmt.Errorf("save rate change %s/%d: %w", dr.Name, debt.ID, err)
				}
			}

			for seq, e := range debt.Ledger {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO events (debtor, debt_id, seq, date, description, amount)
					VALUES (?, ?, ?, ?, ?, ?)`,
					dr.Name, debt.ID, seq, e.Date.ISO(), e.Description, e.Amount.String()); err != nil {
					return fmt.Errorf("save event %s/%d: %w", dr.Name, debt.ID, err)
				}
			}

			if p := debt.Installments; p != nil {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO installment_plans (debtor, debt_id, amount, total, due_day, first_due_date)
					VALUES (?, ?, ?, ?, ?, ?)`,
					dr.Name, debt.ID, p.Amount.String(), p.Total, p.DueDay, p.FirstDueDate.ISO()); err != nil {
					return fmt.Errorf("save plan %s/%d: %w", dr.Name, debt.ID, err)
				}
			}
		}
	}

	return tx.Commit()
}
