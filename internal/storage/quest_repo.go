package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type QuestRepo struct {
	db DBTX
}

func NewQuestRepo(db DBTX) *QuestRepo {
	return &QuestRepo{db: db}
}

type QuestInsert struct {
	ParentID    *int64
	IsMain      bool
	Title       string
	Description *string
	Category    string
	XPValue     int
	DueAt       *time.Time
	CreatedAt   time.Time
	Position    int
	ImageURL    *string
}

const questColumns = `id, parent_id, is_main, title, description, category, status, xp_value,
	due_at, completed_at, created_at, position, image_url`

func (r *QuestRepo) Insert(ctx context.Context, in QuestInsert) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quests (
			parent_id, is_main, title, description, category,
			status, xp_value, due_at, created_at,
			position, image_url
		) VALUES (?, ?, ?, ?, ?, 'pending', ?, ?, ?, ?, ?)
	`, in.ParentID, boolToInt(in.IsMain), in.Title, in.Description, in.Category, in.XPValue, in.DueAt, in.CreatedAt, in.Position, in.ImageURL)
	if err != nil {
		return 0, fmt.Errorf("quest insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("quest last insert id: %w", err)
	}
	return id, nil
}

func (r *QuestRepo) Get(ctx context.Context, id int64) (*Quest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questColumns+` FROM quests WHERE id = ?`, id)
	return scanQuest(row)
}

// GetMain returns the main quest, or nil before onboarding.
func (r *QuestRepo) GetMain(ctx context.Context) (*Quest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questColumns+` FROM quests WHERE is_main = 1 ORDER BY id ASC LIMIT 1`)
	return scanQuest(row)
}

// ListChildren returns the quests under parentID in user order.
func (r *QuestRepo) ListChildren(ctx context.Context, parentID int64) ([]Quest, error) {
	return r.list(ctx, `SELECT `+questColumns+` FROM quests WHERE parent_id = ? ORDER BY position ASC, id ASC`, parentID)
}

func (r *QuestRepo) ListAll(ctx context.Context) ([]Quest, error) {
	return r.list(ctx, `SELECT `+questColumns+` FROM quests ORDER BY is_main DESC, position ASC, id ASC`)
}

func (r *QuestRepo) list(ctx context.Context, query string, args ...any) ([]Quest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quest list: %w", err)
	}
	defer rows.Close()

	var out []Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quest list rows: %w", err)
	}
	return out, nil
}

func (r *QuestRepo) CountChildren(ctx context.Context, parentID int64) (total int, completed int, err error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0)
		FROM quests WHERE parent_id = ?
	`, parentID)
	if err := row.Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("quest count children: %w", err)
	}
	return total, completed, nil
}

// MarkCompleted flips a pending quest to completed. It reports false when the
// quest was not pending, which makes concurrent completions race to a single winner.
func (r *QuestRepo) MarkCompleted(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quests SET status = 'completed', completed_at = ?
		WHERE id = ? AND status = 'pending'
	`, at, id)
	if err != nil {
		return false, fmt.Errorf("quest mark completed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("quest mark completed rows: %w", err)
	}
	return n == 1, nil
}

func (r *QuestRepo) UpdateDetails(ctx context.Context, id int64, title string, dueAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE quests SET title = ?, due_at = ? WHERE id = ?`, title, dueAt, id)
	if err != nil {
		return fmt.Errorf("quest update: %w", err)
	}
	return nil
}

func (r *QuestRepo) UpdateImage(ctx context.Context, id int64, imageURL string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE quests SET image_url = ? WHERE id = ?`, imageURL, id)
	if err != nil {
		return fmt.Errorf("quest update image: %w", err)
	}
	return nil
}

func (r *QuestRepo) UpdatePosition(ctx context.Context, id int64, position int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE quests SET position = ? WHERE id = ?`, position, id)
	if err != nil {
		return fmt.Errorf("quest update position: %w", err)
	}
	return nil
}

func (r *QuestRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM quests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("quest delete: %w", err)
	}
	return nil
}

func (r *QuestRepo) DeleteAll(ctx context.Context) error {
	// Children first; the parent link is a foreign key.
	for _, stmt := range []string{`DELETE FROM quests WHERE parent_id IS NOT NULL`, `DELETE FROM quests`} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("quest delete all: %w", err)
		}
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuest(row scanner) (*Quest, error) {
	var (
		q           Quest
		parent      sql.NullInt64
		isMain      int
		description sql.NullString
		dueAt       sql.NullTime
		completedAt sql.NullTime
		imageURL    sql.NullString
	)

	if err := row.Scan(
		&q.ID, &parent, &isMain, &q.Title, &description, &q.Category, &q.Status, &q.XPValue,
		&dueAt, &completedAt, &q.CreatedAt, &q.Position, &imageURL,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("quest scan: %w", err)
	}

	q.IsMain = isMain != 0
	if parent.Valid {
		v := parent.Int64
		q.ParentID = &v
	}
	if description.Valid {
		v := description.String
		q.Description = &v
	}
	if dueAt.Valid {
		v := dueAt.Time
		q.DueAt = &v
	}
	if completedAt.Valid {
		v := completedAt.Time
		q.CompletedAt = &v
	}
	if imageURL.Valid {
		v := imageURL.String
		q.ImageURL = &v
	}
	return &q, nil
}
