package main

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// BattleRow is a finished battle with its final standings
type BattleRow struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Turns      int          `json:"turns"`
	Winner     string       `json:"winner,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Ships      []ShipResult `json:"ships"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared between calls
	conn.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS battles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		private INTEGER NOT NULL DEFAULT 0,
		turns INTEGER NOT NULL DEFAULT 0,
		winner TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS battle_ships (
		battle_id TEXT NOT NULL REFERENCES battles(id),
		ship_index INTEGER NOT NULL,
		name TEXT NOT NULL,
		team TEXT NOT NULL DEFAULT '',
		score REAL NOT NULL DEFAULT 0,
		bullet_damage REAL NOT NULL DEFAULT 0,
		missile_damage REAL NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		survived INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (battle_id, ship_index)
	);

	CREATE TABLE IF NOT EXISTS frames (
		battle_id TEXT NOT NULL REFERENCES battles(id),
		turn INTEGER NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (battle_id, turn)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_battles_finished ON battles(finished_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// CreateBattle records a new battle
func (db *DB) CreateBattle(id, name string, private bool) error {
	_, err := db.conn.Exec(
		"INSERT INTO battles (id, name, private) VALUES (?, ?, ?)",
		id, name, private,
	)
	return err
}

// FinishBattle stores the outcome and per-ship results in one transaction
func (db *DB) FinishBattle(id string, turns int, winner string, results []ShipResult) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"UPDATE battles SET turns = ?, winner = ?, finished_at = ? WHERE id = ?",
		turns, winner, time.Now().UTC(), id,
	); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO battle_ships
		(battle_id, ship_index, name, team, score, bullet_damage, missile_damage, kills, survived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.Exec(id, r.Index, r.Name, r.Team, r.Score, r.BulletDamage, r.MissileDamage, r.Kills, r.Survived); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecentBattles returns the latest finished battles, newest first
func (db *DB) RecentBattles(limit int) ([]BattleRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, name, turns, winner, created_at, finished_at FROM battles
		WHERE finished_at IS NOT NULL
		ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BattleRow
	for rows.Next() {
		var b BattleRow
		if err := rows.Scan(&b.ID, &b.Name, &b.Turns, &b.Winner, &b.CreatedAt, &b.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Release the only connection before querying the ships
	rows.Close()

	for i := range out {
		ships, err := db.battleShips(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Ships = ships
	}
	return out, nil
}

func (db *DB) battleShips(battleID string) ([]ShipResult, error) {
	rows, err := db.conn.Query(`
		SELECT ship_index, name, team, score, bullet_damage, missile_damage, kills, survived
		FROM battle_ships WHERE battle_id = ? ORDER BY score DESC, ship_index`, battleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShipResult
	for rows.Next() {
		var r ShipResult
		if err := rows.Scan(&r.Index, &r.Name, &r.Team, &r.Score, &r.BulletDamage, &r.MissileDamage, &r.Kills, &r.Survived); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// FrameCount returns the number of recorded turns of a battle
func (db *DB) FrameCount(battleID string) (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM frames WHERE battle_id = ?", battleID).Scan(&n)
	return n, err
}

// LoadFrames decodes the recorded turns of a battle in order
func (db *DB) LoadFrames(battleID string) ([]TurnSnapshot, error) {
	rows, err := db.conn.Query("SELECT data FROM frames WHERE battle_id = ? ORDER BY turn", battleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TurnSnapshot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		snap, err := DecodeSnapshot(data)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// GetSetting returns a stored setting or "" when absent
func (db *DB) GetSetting(key string) string {
	var v string
	if err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v); err != nil {
		return ""
	}
	return v
}

// SetSetting stores a setting
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
