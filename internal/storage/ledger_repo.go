package storage

import (
	"context"
	"fmt"
)

// LedgerRepo is the audit trail of XP awards.
type LedgerRepo struct {
	db DBTX
}

func NewLedgerRepo(db DBTX) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (r *LedgerRepo) Insert(ctx context.Context, e LedgerEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO xp_ledger (quest_id, quest_title, xp_awarded, level_before, level_after, awarded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.QuestID, e.QuestTitle, e.XPAwarded, e.LevelBefore, e.LevelAfter, e.AwardedAt)
	if err != nil {
		return 0, fmt.Errorf("ledger insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ledger last insert id: %w", err)
	}
	return id, nil
}

func (r *LedgerRepo) ListAll(ctx context.Context) ([]LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, quest_id, quest_title, xp_awarded, level_before, level_after, awarded_at
		FROM xp_ledger
		ORDER BY awarded_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.QuestID, &e.QuestTitle, &e.XPAwarded, &e.LevelBefore, &e.LevelAfter, &e.AwardedAt); err != nil {
			return nil, fmt.Errorf("ledger scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger rows: %w", err)
	}
	return out, nil
}

// SumXP totals every award. It equals the profile's XP unless the profile was edited by hand.
func (r *LedgerRepo) SumXP(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(xp_awarded), 0) FROM xp_ledger`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("ledger sum: %w", err)
	}
	return n, nil
}

func (r *LedgerRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM xp_ledger`); err != nil {
		return fmt.Errorf("ledger delete: %w", err)
	}
	return nil
}
