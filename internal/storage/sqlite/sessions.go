package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/yegors/voxrelay/internal/session"
	"github.com/yegors/voxrelay/pkg/logger"
	_ "modernc.org/sqlite"
)

// SessionStorage is a SQLite-backed session.Store, for deployments that want
// language preferences to survive restarts.
type SessionStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewSessionStorage opens (or creates) the database at dbPath and prepares
// the sessions table
func NewSessionStorage(dbPath string, log *logger.Logger) (*SessionStorage, error) {
	storageLogger := log.Named("sqlite")

	storageLogger.Info("Initializing SQLite session storage",
		logger.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	storage := &SessionStorage{
		db:     db,
		logger: storageLogger,
	}
	if err := storage.initDB(); err != nil {
		return nil, err
	}
	return storage, nil
}

// initDB initializes the database tables
func (s *SessionStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			chat_id INTEGER PRIMARY KEY,
			language TEXT NOT NULL,
			state INTEGER NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Get returns the record for a chat and whether one exists
func (s *SessionStorage) Get(chatID int64) (session.Record, bool, error) {
	var rec session.Record
	var state int
	var updatedAt string
	err := s.db.QueryRow(
		`SELECT language, state, updated_at FROM sessions WHERE chat_id = ?`,
		chatID,
	).Scan(&rec.Language, &state, &updatedAt)
	if err == sql.ErrNoRows {
		return session.Record{}, false, nil
	}
	if err != nil {
		return session.Record{}, false, fmt.Errorf("failed to query session: %w", err)
	}

	rec.State = session.LanguageState(state)
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		rec.UpdatedAt = ts
	}
	return rec, true, nil
}

// Set writes a record unconditionally
func (s *SessionStorage) Set(chatID int64, rec session.Record) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (chat_id, language, state, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET language = excluded.language,
		 state = excluded.state, updated_at = excluded.updated_at`,
		chatID,
		rec.Language,
		int(rec.State),
		rec.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// Init writes the record only if the chat has none yet. The conflict clause
// makes the check-and-create a single atomic statement, so concurrent first
// touches of one conversation resolve to one winner.
func (s *SessionStorage) Init(chatID int64, rec session.Record) (bool, error) {
	result, err := s.db.Exec(
		`INSERT INTO sessions (chat_id, language, state, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO NOTHING`,
		chatID,
		rec.Language,
		int(rec.State),
		rec.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("failed to initialize session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// Count returns the number of stored conversations
func (s *SessionStorage) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// Close closes the underlying database
func (s *SessionStorage) Close() error {
	return s.db.Close()
}
