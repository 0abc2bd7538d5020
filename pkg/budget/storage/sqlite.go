package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"costwise-hq/atlas/pkg/budget"
)

// SQLiteStore implements budget.Store using SQLite for persistence.
// Settings survive restarts, which matters because they are the only
// durable state this engine owns: everything else is recomputed from
// live collector data.
//
// The store uses a write-ahead log for concurrent read performance and
// serializes settings as JSON inside a single row per tenant.
type SQLiteStore struct {
	db *sql.DB

	saveStmt    *sql.Stmt
	loadStmt    *sql.Stmt
	deleteStmt  *sql.Stmt
	tenantsStmt *sql.Stmt
}

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (creating if needed) a SQLite settings store at
// the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteConfig{Path: path})
}

// NewSQLiteStoreWithConfig opens a SQLite store with custom settings.
func NewSQLiteStoreWithConfig(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return store, nil
}

// initSchema creates the settings table if it doesn't exist.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS budget_settings (
		tenant_id TEXT PRIMARY KEY,
		settings TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements pre-compiles the store's SQL.
func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO budget_settings (tenant_id, settings, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(tenant_id) DO UPDATE SET
			settings = excluded.settings,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare save: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`SELECT settings FROM budget_settings WHERE tenant_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare load: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM budget_settings WHERE tenant_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}

	s.tenantsStmt, err = s.db.Prepare(`SELECT tenant_id FROM budget_settings ORDER BY tenant_id`)
	if err != nil {
		return fmt.Errorf("prepare tenants: %w", err)
	}

	return nil
}

// Save implements budget.Store.
func (s *SQLiteStore) Save(ctx context.Context, tenantID string, settings *budget.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	_, err = s.saveStmt.ExecContext(ctx, tenantID, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Load implements budget.Store. Returns (nil, nil) when absent.
func (s *SQLiteStore) Load(ctx context.Context, tenantID string) (*budget.Settings, error) {
	var data string
	err := s.loadStmt.QueryRowContext(ctx, tenantID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var settings budget.Settings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		return nil, fmt.Errorf("failed to deserialize settings: %w", err)
	}
	return &settings, nil
}

// Delete implements budget.Store.
func (s *SQLiteStore) Delete(ctx context.Context, tenantID string) error {
	if _, err := s.deleteStmt.ExecContext(ctx, tenantID); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}

// Tenants implements budget.Store.
func (s *SQLiteStore) Tenants(ctx context.Context) ([]string, error) {
	rows, err := s.tenantsStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tenant id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Close releases the database handle. The store must not be used after
// Close.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.deleteStmt, s.tenantsStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}
