/*
Package jsonfile persists the state document as a single JSON file.

PURPOSE:
  The primary store: one human-readable file holding every debtor and
  debt, read in full on load and rewritten in full on every save. This
  matches the single-user, single-writer model of the application.

RECOVERY:
  A missing file means a fresh start; a corrupt file is logged at warn
  level and replaced by an empty state on the next save. Neither is
  fatal.

MIGRATION:
  Loading normalizes the document: debts persisted with a legacy flat
  monthly rate gain a one-entry rate history anchored at their creation
  date.
*/
package jsonfile

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/rodrigogonn/debtors/ledger"
)

// Store reads and writes the state document at a fixed path.
type Store struct {
	path string
	log  *logrus.Logger
}

func New(path string, log *logrus.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load reads and normalizes the whole document. Missing or corrupt files
// yield an empty state.
func (s *Store) Load(_ context.Context) (*ledger.State, error) {
	st := &ledger.State{}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		// First run: start empty.
	case err != nil:
		s.log.WithError(err).WithField("path", s.path).
			Warn("could not read state file, starting with an empty state")
	default:
		if err := json.Unmarshal(data, st); err != nil {
			s.log.WithError(err).WithField("path", s.path).
				Warn("corrupt state file, starting with an empty state")
			st = &ledger.State{}
		}
	}

	ledger.NormalizeState(st)
	return st, nil
}

// Save rewrites the whole document.
func (s *Store) Save(_ context.Context, st *ledger.State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
