package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Repos bundles every repository bound to the same handle.
type Repos struct {
	Profiles *ProfileRepo
	Quests   *QuestRepo
	Ledger   *LedgerRepo
}

func NewRepos(db DBTX) Repos {
	return Repos{
		Profiles: NewProfileRepo(db),
		Quests:   NewQuestRepo(db),
		Ledger:   NewLedgerRepo(db),
	}
}

// WithTx runs fn inside a SQL transaction with repos bound to it.
// The transaction commits only if fn returns nil.
func WithTx(ctx context.Context, db *sql.DB, fn func(r Repos) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
