/*
store.go - Persistence interface for the state document

PURPOSE:
  Defines the interface between the engine and whatever holds the state
  document. The core never touches storage: the surrounding application
  loads the full document, mutates it in memory, and writes it back
  wholesale after every mutation.

CONTRACT:
  - Load returns the complete document, normalized (legacy rate fields
    migrated, schedules anchored). A missing or corrupt document is NOT
    an error: implementations substitute a fresh empty state and log it.
  - Save overwrites the complete document. Single writer, no partial
    updates, no transactionality across saves.

IMPLEMENTATIONS:
  - ledger/store: in-memory (tests/dev)
  - store/jsonfile: single JSON file, matching the original data layout
  - store/sqlite: relational layout with the same wholesale semantics
*/
package ledger

import "context"

// Store handles persistence of the full state document.
type Store interface {
	// Load returns the entire normalized document. Missing or corrupt
	// backing data yields an empty state, never an error.
	Load(ctx context.Context) (*State, error)

	// Save overwrites the entire document.
	Save(ctx context.Context, st *State) error
}
