// Package persistence provides SQLite-backed storage for the engine state.
// The whole state — balances, ledger, structures, listings, clock metadata,
// and the day marker — is written in a single transaction so the marker can
// never be observed out of step with the balances it gates.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/sparkworld/internal/economy"
	"github.com/talgya/sparkworld/internal/engine"
)

// DB wraps a SQLite connection for engine state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS balances (
		account TEXT PRIMARY KEY,
		balance INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ledger (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		type TEXT NOT NULL,
		user TEXT NOT NULL,
		amount INTEGER NOT NULL,
		timestamp INTEGER NOT NULL,
		entry_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS structures (
		id TEXT PRIMARY KEY,
		owner TEXT NOT NULL,
		missed_payments INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		seller TEXT NOT NULL,
		item TEXT NOT NULL,
		price INTEGER NOT NULL,
		listed_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_type ON ledger(type);
	CREATE INDEX IF NOT EXISTS idx_ledger_user ON ledger(user);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveState performs a full-replace save of the engine state in one
// transaction.
func (db *DB) SaveState(s *engine.State) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"balances", "ledger", "structures", "listings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for account, balance := range s.Economy.Balances {
		if _, err := tx.Exec(
			"INSERT INTO balances (account, balance) VALUES (?, ?)",
			account, balance,
		); err != nil {
			return fmt.Errorf("insert balance %s: %w", account, err)
		}
	}

	stmt, err := tx.Preparex(`INSERT INTO ledger
		(id, type, user, amount, timestamp, entry_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range s.Economy.Ledger.Entries {
		entryJSON, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal ledger entry %s: %w", e.ID, err)
		}
		if _, err := stmt.Exec(e.ID, e.Type, e.User, e.Amount, e.Timestamp, string(entryJSON)); err != nil {
			return fmt.Errorf("insert ledger entry %s: %w", e.ID, err)
		}
	}

	for _, st := range s.Structures {
		if _, err := tx.Exec(
			"INSERT INTO structures (id, owner, missed_payments) VALUES (?, ?, ?)",
			st.ID, st.Owner, st.MissedPayments,
		); err != nil {
			return fmt.Errorf("insert structure %s: %w", st.ID, err)
		}
	}

	for _, l := range s.Listings {
		if _, err := tx.Exec(
			"INSERT INTO listings (id, seller, item, price, listed_at) VALUES (?, ?, ?, ?, ?)",
			l.ID, l.Seller, l.Item, l.Price, l.ListedAt,
		); err != nil {
			return fmt.Errorf("insert listing %s: %w", l.ID, err)
		}
	}

	gardensJSON, err := json.Marshal(s.Gardens)
	if err != nil {
		return fmt.Errorf("marshal gardens: %w", err)
	}
	zonesJSON, err := json.Marshal(s.Zones)
	if err != nil {
		return fmt.Errorf("marshal zones: %w", err)
	}

	meta := map[string]string{
		"world_time":         strconv.FormatFloat(s.WorldTime, 'f', -1, 64),
		"last_tick_at":       strconv.FormatInt(s.LastTickAt.Unix(), 10),
		"last_processed_day": strconv.FormatInt(s.LastProcessedDay, 10),
		"ledger_cap":         strconv.Itoa(s.Economy.Ledger.Cap),
		"gardens_json":       string(gardensJSON),
		"zones_json":         string(zonesJSON),
	}
	for key, value := range meta {
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
			key, value,
		); err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// HasState reports whether a saved world exists.
func (db *DB) HasState() bool {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = 'world_time'")
	return err == nil
}

// LoadState restores the full engine state. Returns an error if no state was
// saved; check HasState first.
func (db *DB) LoadState() (*engine.State, error) {
	meta := make(map[string]string)
	rows, err := db.conn.Queryx("SELECT key, value FROM world_meta")
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		meta[key] = value
	}

	if _, ok := meta["world_time"]; !ok {
		return nil, errors.New("no saved world state")
	}

	ledgerCap, _ := strconv.Atoi(meta["ledger_cap"])
	s := engine.NewState(ledgerCap)

	s.WorldTime, err = strconv.ParseFloat(meta["world_time"], 64)
	if err != nil {
		return nil, fmt.Errorf("parse world_time: %w", err)
	}
	if v, err := strconv.ParseInt(meta["last_tick_at"], 10, 64); err == nil && v > 0 {
		s.LastTickAt = time.Unix(v, 0)
	}
	if v, err := strconv.ParseInt(meta["last_processed_day"], 10, 64); err == nil {
		s.LastProcessedDay = v
	}
	if raw := meta["gardens_json"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.Gardens); err != nil {
			return nil, fmt.Errorf("parse gardens: %w", err)
		}
	}
	if raw := meta["zones_json"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &s.Zones); err != nil {
			return nil, fmt.Errorf("parse zones: %w", err)
		}
	}

	balRows, err := db.conn.Queryx("SELECT account, balance FROM balances")
	if err != nil {
		return nil, fmt.Errorf("load balances: %w", err)
	}
	defer balRows.Close()
	for balRows.Next() {
		var account string
		var balance int64
		if err := balRows.Scan(&account, &balance); err != nil {
			return nil, err
		}
		s.Economy.Balances[account] = balance
	}

	var entryBlobs []string
	if err := db.conn.Select(&entryBlobs, "SELECT entry_json FROM ledger ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	for _, raw := range entryBlobs {
		var e economy.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("parse ledger entry: %w", err)
		}
		s.Economy.Ledger.Append(e)
	}

	stRows, err := db.conn.Queryx("SELECT id, owner, missed_payments FROM structures")
	if err != nil {
		return nil, fmt.Errorf("load structures: %w", err)
	}
	defer stRows.Close()
	for stRows.Next() {
		var st economy.Structure
		if err := stRows.Scan(&st.ID, &st.Owner, &st.MissedPayments); err != nil {
			return nil, err
		}
		s.Structures[st.ID] = &st
	}

	listRows, err := db.conn.Queryx("SELECT id, seller, item, price, listed_at FROM listings")
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	defer listRows.Close()
	for listRows.Next() {
		var l engine.Listing
		if err := listRows.Scan(&l.ID, &l.Seller, &l.Item, &l.Price, &l.ListedAt); err != nil {
			return nil, err
		}
		s.Listings = append(s.Listings, &l)
	}

	slog.Info("world state restored",
		"world_time", s.WorldTime,
		"day", s.GameDay(),
		"last_processed_day", s.LastProcessedDay,
		"accounts", len(s.Economy.Balances),
		"ledger_entries", s.Economy.Ledger.Len(),
		"structures", len(s.Structures),
	)
	return s, nil
}

// RecentLedger returns the most recent limit entries, newest first, without
// loading the whole state.
func (db *DB) RecentLedger(limit int) ([]economy.Entry, error) {
	var blobs []string
	err := db.conn.Select(&blobs,
		"SELECT entry_json FROM ledger ORDER BY seq DESC LIMIT ?", limit)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	entries := make([]economy.Entry, 0, len(blobs))
	for _, raw := range blobs {
		var e economy.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
