package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS hero_profile (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			hero_name TEXT NOT NULL DEFAULT 'Hero',
			total_xp INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			active_theme TEXT NOT NULL,
			daily_quote TEXT,
			last_quote_at DATETIME,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS hero_themes (
			theme TEXT PRIMARY KEY,
			unlocked_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			parent_id INTEGER NULL,
			is_main INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL DEFAULT 'General',

			status TEXT NOT NULL DEFAULT 'pending',
			xp_value INTEGER NOT NULL,
			due_at DATETIME,
			completed_at DATETIME,
			created_at DATETIME NOT NULL,

			position INTEGER NOT NULL DEFAULT 0,
			image_url TEXT,

			FOREIGN KEY(parent_id) REFERENCES quests(id) ON DELETE CASCADE
		);`,
		// One row per award. The unique quest id backs the exactly-once rule.
		`CREATE TABLE IF NOT EXISTS xp_ledger (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			quest_id INTEGER NOT NULL UNIQUE,
			quest_title TEXT NOT NULL,
			xp_awarded INTEGER NOT NULL,
			level_before INTEGER NOT NULL,
			level_after INTEGER NOT NULL,
			awarded_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quests_parent_position ON quests(parent_id, position);`,
		`CREATE INDEX IF NOT EXISTS idx_quests_status ON quests(status);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
