package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"stockdash/internal/model"
)

// SQLiteStore persists securities and price bars to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex // serializes writers; SQLite allows only one anyway
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS securities (
			symbol      TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			upstream_id TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS prices (
			symbol     TEXT NOT NULL REFERENCES securities(symbol),
			trade_date TEXT NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			volume     INTEGER,
			PRIMARY KEY (symbol, trade_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(trade_date)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

// SeedSecurities inserts the catalog only if the table is empty, so a
// restart never clobbers or duplicates existing reference data.
func (s *SQLiteStore) SeedSecurities(ctx context.Context, securities []model.Security) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM securities`).Scan(&count); err != nil {
		return fmt.Errorf("count securities: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback()

	for _, sec := range securities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO securities (symbol, name, upstream_id) VALUES (?,?,?)`,
			sec.Symbol, sec.Name, sec.UpstreamID,
		); err != nil {
			return fmt.Errorf("seed %s: %w", sec.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	log.Printf("[INFO] seeded %d securities", len(securities))
	return nil
}

// UpsertBars applies all bars in one transaction using a native upsert, so
// a concurrent existence-check race cannot produce duplicate rows.
func (s *SQLiteStore) UpsertBars(ctx context.Context, bars []model.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO prices
		(symbol, trade_date, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?)
		ON CONFLICT(symbol, trade_date) DO UPDATE SET
			open   = excluded.open,
			high   = excluded.high,
			low    = excluded.low,
			close  = excluded.close,
			volume = excluded.volume`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.ExecContext(ctx,
			b.Symbol, b.TradeDate.Format(model.DateFormat),
			b.Open, b.High, b.Low, b.Close, b.Volume,
		); err != nil {
			return fmt.Errorf("upsert %s %s: %w", b.Symbol, b.TradeDate.Format(model.DateFormat), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

// RangeQuery returns bars for symbol on or after since, oldest first.
func (s *SQLiteStore) RangeQuery(ctx context.Context, symbol string, since time.Time) ([]model.PriceBar, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT trade_date, open, high, low, close, volume
		FROM prices
		WHERE symbol = ? AND trade_date >= ?
		ORDER BY trade_date ASC`,
		symbol, since.Format(model.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("range query %s: %w", symbol, err)
	}
	defer rows.Close()

	var bars []model.PriceBar
	for rows.Next() {
		b := model.PriceBar{Symbol: symbol}
		var day string
		if err := rows.Scan(&day, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.TradeDate, err = time.ParseInLocation(model.DateFormat, day, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse trade date %q: %w", day, err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return bars, nil
}

func (s *SQLiteStore) SecurityExists(ctx context.Context, symbol string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM securities WHERE symbol = ?`, symbol).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("security exists %s: %w", symbol, err)
	}
	return true, nil
}

func (s *SQLiteStore) ListSecurities(ctx context.Context) ([]model.Security, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, name, upstream_id FROM securities ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list securities: %w", err)
	}
	defer rows.Close()

	var out []model.Security
	for rows.Next() {
		var sec model.Security
		if err := rows.Scan(&sec.Symbol, &sec.Name, &sec.UpstreamID); err != nil {
			return nil, fmt.Errorf("scan security: %w", err)
		}
		out = append(out, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate securities: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
