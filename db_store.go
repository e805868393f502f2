package main

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"syndicate-ops/game"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

// SQLRepository stores one snapshot row per mode plus that mode's mission
// history, one row per result.
type SQLRepository struct {
	dialect DBDialect
	db      *sql.DB
}

// snapshotRow is everything in a mode except history, which has its own table.
type snapshotRow struct {
	State     *game.State `json:"state"`
	TickCount int64       `json:"tick_count"`
}

// openRepository returns nil for the in-memory dialect.
func openRepository(cfg DBConfig) (*SQLRepository, error) {
	conn, err := cfg.connection()
	if err != nil || conn.dialect == dialectMemory {
		return nil, err
	}
	if conn.dialect == dialectSQLite {
		if err := os.MkdirAll(filepath.Dir(conn.dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open(conn.driver, conn.dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", conn.dialect, err)
	}
	// Both modes share one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	repo := &SQLRepository{dialect: conn.dialect, db: db}
	if err := repo.ready(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Printf("database: dialect=%s", conn.dialect)
	return repo, nil
}

func (r *SQLRepository) ready(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s database: %w", r.dialect, err)
	}
	return r.applyMigrations(ctx)
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// bind is the n-th (1-based) placeholder: $n for postgres, ? for sqlite.
func (r *SQLRepository) bind(n int) string {
	if r.dialect != dialectPostgres {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

func (r *SQLRepository) insertQuery(table string, cols []string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.bind(i + 1))
	}
	b.WriteString(")")
	return b.String()
}

// applyMigrations runs the dialect's embedded migrations in name order, each
// in its own transaction, skipping versions already recorded.
func (r *SQLRepository) applyMigrations(ctx context.Context) error {
	const create = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL
	)`
	if _, err := r.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	done, err := r.appliedVersions(ctx)
	if err != nil {
		return err
	}
	files, err := fs.Glob(migrationFS, "migrations/"+string(r.dialect)+"/*.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)
	for _, file := range files {
		if done[path.Base(file)] {
			continue
		}
		if err := r.applyMigration(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	done := map[string]bool{}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan schema migration: %w", err)
		}
		done[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema migrations: %w", err)
	}
	return done, nil
}

func (r *SQLRepository) applyMigration(ctx context.Context, file string) error {
	body, err := migrationFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}
	version := path.Base(file)
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration %s: %w", version, err)
	}
	if err := r.insertRow(ctx, tx, "schema_migrations",
		[]string{"version", "applied_at"},
		[]any{version, time.Now().UTC()},
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}

// persistLocked saves after a mutation. Failures are logged; the in-memory
// state stays authoritative.
func (store *Store) persistLocked() {
	if store.repo == nil {
		return
	}
	if err := store.repo.Save(context.Background(), store); err != nil {
		log.Printf("persist %s state failed: %v", store.Mode, err)
	}
}

func (r *SQLRepository) Save(ctx context.Context, store *Store) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	if err := r.saveWithTx(ctx, tx, store); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

func (r *SQLRepository) saveWithTx(ctx context.Context, tx *sql.Tx, store *Store) error {
	mode := string(store.Mode)
	for _, tbl := range []string{"mode_state", "mission_history"} {
		q := fmt.Sprintf("DELETE FROM %s WHERE mode = %s", tbl, r.bind(1))
		if _, err := tx.ExecContext(ctx, q, mode); err != nil {
			return fmt.Errorf("clear %s: %w", tbl, err)
		}
	}

	st := *store.State
	st.History = nil
	payload, err := json.Marshal(snapshotRow{State: &st, TickCount: store.TickCount})
	if err != nil {
		return fmt.Errorf("encode %s state: %w", mode, err)
	}
	if err := r.insertRow(ctx, tx, "mode_state",
		[]string{"mode", "day", "heat", "payload", "updated_at"},
		[]any{mode, st.Day, st.Heat, string(payload), time.Now().UTC()},
	); err != nil {
		return err
	}

	for i, res := range store.State.History {
		if err := r.insertRow(ctx, tx, "mission_history",
			[]string{"mode", "seq", "id", "day", "outcome", "payload"},
			[]any{mode, i, res.ID, res.Day, string(res.Outcome), asJSON(res)},
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) insertRow(ctx context.Context, tx *sql.Tx, table string, cols []string, vals []any) error {
	q := r.insertQuery(table, cols)
	if _, err := tx.ExecContext(ctx, q, vals...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func asJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// LoadInto replaces the store's state with the saved one, or seeds the
// database with the current state when the mode has never been saved.
func (r *SQLRepository) LoadInto(ctx context.Context, store *Store) error {
	mode := string(store.Mode)
	var payload string
	q := fmt.Sprintf("SELECT payload FROM mode_state WHERE mode = %s", r.bind(1))
	err := r.db.QueryRowContext(ctx, q, mode).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		if err := r.Save(ctx, store); err != nil {
			return fmt.Errorf("seed %s state: %w", mode, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s state: %w", mode, err)
	}

	var row snapshotRow
	if err := json.Unmarshal([]byte(payload), &row); err != nil {
		return fmt.Errorf("decode %s state: %w", mode, err)
	}
	if row.State == nil {
		return fmt.Errorf("decode %s state: empty payload", mode)
	}

	history, err := r.loadHistory(ctx, mode)
	if err != nil {
		return err
	}
	row.State.History = history
	if err := row.State.Normalize(); err != nil {
		return fmt.Errorf("saved %s state: %w", mode, err)
	}
	store.State = row.State
	store.TickCount = row.TickCount
	return nil
}

func (r *SQLRepository) loadHistory(ctx context.Context, mode string) ([]game.MissionResult, error) {
	q := fmt.Sprintf("SELECT payload FROM mission_history WHERE mode = %s ORDER BY seq", r.bind(1))
	rows, err := r.db.QueryContext(ctx, q, mode)
	if err != nil {
		return nil, fmt.Errorf("read %s history: %w", mode, err)
	}
	defer rows.Close()

	history := []game.MissionResult{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s history: %w", mode, err)
		}
		var res game.MissionResult
		if err := json.Unmarshal([]byte(payload), &res); err != nil {
			return nil, fmt.Errorf("decode %s history: %w", mode, err)
		}
		history = append(history, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s history: %w", mode, err)
	}
	return history, nil
}

// attachRepository loads each mode from repo and keeps saving there.
func attachRepository(ctx context.Context, stores *Stores, repo *SQLRepository) error {
	if repo == nil {
		return nil
	}
	for _, s := range stores.All() {
		s.mu.Lock()
		s.repo = repo
		err := repo.LoadInto(ctx, s)
		s.mu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}
