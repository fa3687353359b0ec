package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"twitchDeck/internal/domain"
)

const defaultListLimit = 50

// Store guarda el historial de acciones y raids del plugin.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite: empty db path")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const actionsTable = `
CREATE TABLE IF NOT EXISTS actions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	action TEXT NOT NULL,
	context TEXT,
	result TEXT NOT NULL,
	detail TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_actions_created_at ON actions(created_at DESC);`

	if _, err := db.Exec(actionsTable); err != nil {
		return fmt.Errorf("sqlite: migrate actions: %w", err)
	}

	const raidsTable = `
CREATE TABLE IF NOT EXISTS raids (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	login TEXT NOT NULL,
	display_name TEXT,
	user_id TEXT,
	viewers INTEGER NOT NULL DEFAULT 0,
	received_at TIMESTAMP NOT NULL,
	shouted_out_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_raids_received_at ON raids(received_at DESC);`

	if _, err := db.Exec(raidsTable); err != nil {
		return fmt.Errorf("sqlite: migrate raids: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ----- Actions -----

func (s *Store) SaveAction(ctx context.Context, rec *domain.ActionRecord) error {
	if rec == nil {
		return fmt.Errorf("sqlite: action record nil")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	const stmt = `
INSERT INTO actions (action, context, result, detail, created_at)
VALUES (?, ?, ?, ?, ?);
`

	res, err := s.db.ExecContext(ctx, stmt,
		string(rec.Action),
		rec.Context,
		string(rec.Result),
		rec.Detail,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save action: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

func (s *Store) ListActions(ctx context.Context, limit int) ([]*domain.ActionRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	const query = `
SELECT id, action, context, result, detail, created_at
FROM actions
ORDER BY created_at DESC, id DESC
LIMIT ?;
`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list actions: %w", err)
	}
	defer rows.Close()

	var out []*domain.ActionRecord
	for rows.Next() {
		var (
			record           domain.ActionRecord
			action, result   string
			instance, detail sql.NullString
			createdAt        sql.NullTime
		)
		if err := rows.Scan(&record.ID, &action, &instance, &result, &detail, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan action: %w", err)
		}
		record.Action = domain.ActionKind(action)
		record.Result = domain.ActionResult(result)
		record.Context = instance.String
		record.Detail = detail.String
		record.CreatedAt = createdAt.Time
		out = append(out, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list actions rows: %w", err)
	}
	return out, nil
}

// ----- Raids -----

func (s *Store) SaveRaid(ctx context.Context, raider domain.Raider) (int64, error) {
	if strings.TrimSpace(raider.Login) == "" {
		return 0, fmt.Errorf("sqlite: raid without login")
	}
	receivedAt := raider.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	const stmt = `
INSERT INTO raids (login, display_name, user_id, viewers, received_at)
VALUES (?, ?, ?, ?, ?);
`

	res, err := s.db.ExecContext(ctx, stmt,
		strings.ToLower(raider.Login),
		raider.DisplayName,
		raider.UserID,
		raider.Viewers,
		receivedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: save raid: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: raid id: %w", err)
	}
	return id, nil
}

// MarkShoutedOut stamps the most recent pending raid from login.
func (s *Store) MarkShoutedOut(ctx context.Context, login string) error {
	const stmt = `
UPDATE raids SET shouted_out_at = ?
WHERE id = (
	SELECT id FROM raids
	WHERE login = ? AND shouted_out_at IS NULL
	ORDER BY received_at DESC, id DESC
	LIMIT 1
);
`

	res, err := s.db.ExecContext(ctx, stmt, time.Now().UTC(), strings.ToLower(login))
	if err != nil {
		return fmt.Errorf("sqlite: mark shoutout: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("sqlite: mark shoutout %s: %w", login, ErrNotFound)
	}
	return nil
}

var ErrNotFound = errors.New("not found")

func (s *Store) ListRaids(ctx context.Context, limit int) ([]*domain.RaidRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	const query = `
SELECT id, login, display_name, user_id, viewers, received_at, shouted_out_at
FROM raids
ORDER BY received_at DESC, id DESC
LIMIT ?;
`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list raids: %w", err)
	}
	defer rows.Close()

	var out []*domain.RaidRecord
	for rows.Next() {
		var (
			record                   domain.RaidRecord
			displayName, userID      sql.NullString
			receivedAt, shoutedOutAt sql.NullTime
		)
		if err := rows.Scan(
			&record.ID,
			&record.Raider.Login,
			&displayName,
			&userID,
			&record.Raider.Viewers,
			&receivedAt,
			&shoutedOutAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan raid: %w", err)
		}
		record.Raider.DisplayName = displayName.String
		record.Raider.UserID = userID.String
		record.Raider.ReceivedAt = receivedAt.Time
		record.ShoutedOutAt = shoutedOutAt.Time
		out = append(out, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list raids rows: %w", err)
	}
	return out, nil
}

var _ domain.ActionLogRepository = (*Store)(nil)
var _ domain.RaidRepository = (*Store)(nil)
