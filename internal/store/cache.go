// Package store holds the local fetch cache and the optional database
// export of the model table.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache keeps the raw survey payloads keyed by year so repeated runs skip
// the network.
type Cache struct {
	conn *sql.DB
}

func OpenCache(path string) (*Cache, error) {
	conn, e := sql.Open("sqlite", path)
	if e != nil {
		return nil, fmt.Errorf("opening cache: %w", e)
	}

	c := &Cache{conn: conn}
	if e = c.initSchema(); e != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", e)
	}

	return c, nil
}

func (c *Cache) Close() error {
	return c.conn.Close()
}

func (c *Cache) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS survey_raw (
		year INTEGER PRIMARY KEY,
		payload BLOB NOT NULL,
		fetched_at TEXT NOT NULL
	);
	`

	_, e := c.conn.Exec(schema)

	return e
}

// Get returns the cached payload for a year, ok=false on a miss.
func (c *Cache) Get(year int) (payload []byte, ok bool, err error) {
	row := c.conn.QueryRow(`SELECT payload FROM survey_raw WHERE year = ?`, year)
	if err = row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("reading cache: %w", err)
	}

	return payload, true, nil
}

// Put stores a payload, replacing any prior fetch of the same year.
func (c *Cache) Put(year int, payload []byte) error {
	query := `
	INSERT INTO survey_raw (year, payload, fetched_at) VALUES (?, ?, ?)
	ON CONFLICT(year) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`

	_, e := c.conn.Exec(query, year, payload, time.Now().UTC().Format(time.RFC3339))
	if e != nil {
		return fmt.Errorf("writing cache: %w", e)
	}

	return nil
}

// Drop removes one year, for forced refetches.
func (c *Cache) Drop(year int) error {
	_, e := c.conn.Exec(`DELETE FROM survey_raw WHERE year = ?`, year)

	return e
}

// Years lists the cached years in ascending order.
func (c *Cache) Years() ([]int, error) {
	rows, e := c.conn.Query(`SELECT year FROM survey_raw ORDER BY year`)
	if e != nil {
		return nil, e
	}
	defer func() { _ = rows.Close() }()

	var years []int
	for rows.Next() {
		var yr int
		if e = rows.Scan(&yr); e != nil {
			return nil, e
		}

		years = append(years, yr)
	}

	return years, rows.Err()
}
