package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type ProfileRepo struct {
	db DBTX
}

func NewProfileRepo(db DBTX) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get returns the hero profile, or nil before onboarding.
func (r *ProfileRepo) Get(ctx context.Context) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT hero_name, total_xp, level, active_theme, daily_quote, last_quote_at, created_at
		FROM hero_profile WHERE id = 1
	`)

	var (
		p         Profile
		quote     sql.NullString
		lastQuote sql.NullTime
	)
	if err := row.Scan(&p.HeroName, &p.TotalXP, &p.Level, &p.ActiveTheme, &quote, &lastQuote, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("profile get: %w", err)
	}
	if quote.Valid {
		v := quote.String
		p.DailyQuote = &v
	}
	if lastQuote.Valid {
		v := lastQuote.Time
		p.LastQuoteAt = &v
	}
	return &p, nil
}

// Create inserts the profile row. It fails if one already exists.
func (r *ProfileRepo) Create(ctx context.Context, p Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hero_profile (id, hero_name, total_xp, level, active_theme, created_at)
		VALUES (1, ?, ?, ?, ?, ?)
	`, p.HeroName, p.TotalXP, p.Level, p.ActiveTheme, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("profile insert: %w", err)
	}
	return nil
}

// UpdateProgress writes XP, level and active theme.
func (r *ProfileRepo) UpdateProgress(ctx context.Context, totalXP, level int, activeTheme string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE hero_profile SET total_xp = ?, level = ?, active_theme = ? WHERE id = 1
	`, totalXP, level, activeTheme)
	if err != nil {
		return fmt.Errorf("profile update progress: %w", err)
	}
	return nil
}

func (r *ProfileRepo) UpdateSettings(ctx context.Context, heroName, activeTheme string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE hero_profile SET hero_name = ?, active_theme = ? WHERE id = 1`, heroName, activeTheme)
	if err != nil {
		return fmt.Errorf("profile update settings: %w", err)
	}
	return nil
}

func (r *ProfileRepo) UpdateQuote(ctx context.Context, quote string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE hero_profile SET daily_quote = ?, last_quote_at = ? WHERE id = 1`, quote, at)
	if err != nil {
		return fmt.Errorf("profile update quote: %w", err)
	}
	return nil
}

// ListThemes returns unlocked themes in unlock order.
func (r *ProfileRepo) ListThemes(ctx context.Context) ([]UnlockedTheme, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT theme, unlocked_at FROM hero_themes ORDER BY unlocked_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("theme list: %w", err)
	}
	defer rows.Close()

	var out []UnlockedTheme
	for rows.Next() {
		var t UnlockedTheme
		if err := rows.Scan(&t.Theme, &t.UnlockedAt); err != nil {
			return nil, fmt.Errorf("theme scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("theme rows: %w", err)
	}
	return out, nil
}

// UnlockTheme records a theme. Unlocks are never removed, so re-unlocking
// keeps the original timestamp.
func (r *ProfileRepo) UnlockTheme(ctx context.Context, theme string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO hero_themes (theme, unlocked_at) VALUES (?, ?) ON CONFLICT(theme) DO NOTHING`, theme, at)
	if err != nil {
		return fmt.Errorf("theme unlock: %w", err)
	}
	return nil
}

// DeleteAll wipes the profile and its themes.
func (r *ProfileRepo) DeleteAll(ctx context.Context) error {
	for _, stmt := range []string{`DELETE FROM hero_themes`, `DELETE FROM hero_profile`} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("profile delete: %w", err)
		}
	}
	return nil
}
