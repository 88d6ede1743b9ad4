package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"shotwatch/internal/modules/notify/domain"
	notifyout "shotwatch/internal/modules/notify/port/out"

	_ "modernc.org/sqlite"
)

const sentAtLayout = "2006-01-02T15:04:05Z07:00"

type SQLiteLedger struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteLedger(dbPath string) (notifyout.Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	ledger := &SQLiteLedger{db: db}
	if err := ledger.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return ledger, nil
}

func (s *SQLiteLedger) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS deliveries (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  channel TEXT NOT NULL,
  subject_id TEXT NOT NULL,
  subject_name TEXT,
  session_id TEXT,
  body TEXT NOT NULL,
  media_path TEXT,
  sent_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS deliveries_sent_at ON deliveries (sent_at);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create deliveries table: %w", err)
	}
	return nil
}

func (s *SQLiteLedger) Record(ctx context.Context, d domain.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	const stmt = `
INSERT INTO deliveries (id, kind, channel, subject_id, subject_name, session_id, body, media_path, sent_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  kind=excluded.kind,
  channel=excluded.channel,
  subject_id=excluded.subject_id,
  subject_name=excluded.subject_name,
  session_id=excluded.session_id,
  body=excluded.body,
  media_path=excluded.media_path,
  sent_at=excluded.sent_at;
`
	_, err := s.db.ExecContext(ctx, stmt,
		d.ID,
		string(d.Kind),
		string(d.Channel),
		d.SubjectID,
		d.SubjectName,
		d.SessionID,
		d.Body,
		d.MediaPath,
		d.SentAt.UTC().Format(sentAtLayout),
	)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

func (s *SQLiteLedger) List(ctx context.Context, limit int) ([]domain.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx, `
SELECT id, kind, channel, subject_id, subject_name, session_id, body, media_path, sent_at
FROM deliveries
ORDER BY sent_at DESC, rowid DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	out := []domain.Delivery{}
	for rows.Next() {
		var (
			d                                 domain.Delivery
			kind, channel, sentAt             string
			subjectName, sessionID, mediaPath sql.NullString
		)
		if err := rows.Scan(&d.ID, &kind, &channel, &d.SubjectID, &subjectName, &sessionID, &d.Body, &mediaPath, &sentAt); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		d.Kind = domain.Kind(kind)
		d.Channel = domain.Channel(channel)
		d.SubjectName = subjectName.String
		d.SessionID = sessionID.String
		d.MediaPath = mediaPath.String
		if parsed, err := time.Parse(sentAtLayout, sentAt); err == nil {
			d.SentAt = parsed
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return out, nil
}

func (s *SQLiteLedger) Close() error {
	return s.db.Close()
}
