package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var DB *sql.DB

// Init opens (or creates) the database under dataDir and runs the
// idempotent migration. It is called once at process startup, never
// lazily per request.
func Init(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "focusflow.db")
	var err error
	DB, err = sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	if err := Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return nil
}

func Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS magic_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'pending',
			used INTEGER NOT NULL DEFAULT 0,
			expires_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS auth_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token TEXT NOT NULL UNIQUE,
			expires_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS groups (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS group_members (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role TEXT NOT NULL DEFAULT 'member' CHECK(role IN ('admin','member')),
			UNIQUE(group_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS team_focus_sessions (
			id TEXT PRIMARY KEY,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS focus_sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			admin_user_id TEXT,
			duration_seconds INTEGER,
			goal TEXT,
			recap TEXT,
			team_session_id TEXT REFERENCES team_focus_sessions(id) ON DELETE SET NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			started_at DATETIME,
			ended_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS focus_sessions_started_at_idx ON focus_sessions(started_at)`,
		`CREATE INDEX IF NOT EXISTS focus_sessions_team_session_id_idx ON focus_sessions(team_session_id)`,
		`CREATE TABLE IF NOT EXISTS session_participants (
			id TEXT PRIMARY KEY,
			focus_session_id TEXT NOT NULL REFERENCES focus_sessions(id) ON DELETE CASCADE,
			user_id TEXT REFERENCES users(id) ON DELETE SET NULL,
			user_name TEXT NOT NULL,
			goal TEXT NOT NULL,
			recap TEXT,
			break_active INTEGER NOT NULL DEFAULT 0,
			break_started_at DATETIME,
			break_ends_at DATETIME,
			break_relaxations_used INTEGER NOT NULL DEFAULT 0,
			break_paused_seconds INTEGER NOT NULL DEFAULT 0,
			break_escalated_at DATETIME,
			joined_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(focus_session_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS session_participants_session_idx ON session_participants(focus_session_id)`,
		`CREATE INDEX IF NOT EXISTS session_participants_user_idx ON session_participants(user_id)`,
		`CREATE TABLE IF NOT EXISTS hidden_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			session_id TEXT NOT NULL REFERENCES focus_sessions(id) ON DELETE CASCADE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_focus_state (
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			last_activity_at DATETIME,
			focus_score INTEGER NOT NULL DEFAULT 80,
			reliability_score INTEGER NOT NULL DEFAULT 100,
			overdue_count INTEGER NOT NULL DEFAULT 0,
			last_overdue_at DATETIME,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS focus_score_log (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			score INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS focus_score_log_user_created_idx ON focus_score_log(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS user_gamification (
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			total_points INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			last_session_date DATETIME,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := DB.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}

	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
	}
}
