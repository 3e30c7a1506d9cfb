// Package storage persists tracked products and their price history in
// SQLite. The prices table is append-only: history is never rewritten, and
// derived values like the lowest price are computed from it on read.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("product not found")

// TrackedProduct is a product being watched. TargetPrice and LastChecked
// are zero when unset.
type TrackedProduct struct {
	ID          int64     `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	TargetPrice float64   `json:"target_price,omitempty"`
	AddedAt     time.Time `json:"added_at"`
	LastChecked time.Time `json:"last_checked,omitzero"`
	Active      bool      `json:"active"`
}

// PriceRecord is one immutable point of a product's price history.
type PriceRecord struct {
	ID            int64     `json:"id"`
	ProductID     int64     `json:"product_id"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"original_price,omitempty"`
	InStock       bool      `json:"in_stock"`
	RecordedAt    time.Time `json:"recorded_at"`
}

type Store struct {
	db *sql.DB
}

// Open creates the database file (and its parent directory) if needed and
// ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT UNIQUE NOT NULL,
			title TEXT NOT NULL,
			source TEXT NOT NULL,
			target_price REAL,
			added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_checked TIMESTAMP,
			is_active BOOLEAN DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS prices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			product_id INTEGER NOT NULL,
			price REAL NOT NULL,
			original_price REAL,
			in_stock BOOLEAN DEFAULT 1,
			recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (product_id) REFERENCES products(id)
		);

		CREATE INDEX IF NOT EXISTS idx_prices_product_id ON prices(product_id);
		CREATE INDEX IF NOT EXISTS idx_prices_recorded_at ON prices(recorded_at);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// AddProduct registers a URL for tracking and returns its id. Re-adding a
// known URL refreshes the title and reactivates it, keeping its history.
func (s *Store) AddProduct(ctx context.Context, url, title, source string, targetPrice float64) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (url, title, source, target_price)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			is_active = 1
		RETURNING id
	`, url, title, source, nullableAmount(targetPrice)).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// RemoveProduct soft-deletes: the product stops being checked but its
// history stays.
func (s *Store) RemoveProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE products SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*TrackedProduct, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, source, target_price, added_at, last_checked, is_active
		FROM products WHERE id = ?
	`, id)
	return scanProduct(row)
}

func (s *Store) GetProductByURL(ctx context.Context, url string) (*TrackedProduct, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, source, target_price, added_at, last_checked, is_active
		FROM products WHERE url = ?
	`, url)
	return scanProduct(row)
}

// GetActiveProducts returns products still being checked, newest first.
// The id tiebreak keeps the order stable for same-second inserts.
func (s *Store) GetActiveProducts(ctx context.Context) ([]TrackedProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, title, source, target_price, added_at, last_checked, is_active
		FROM products WHERE is_active = 1
		ORDER BY added_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []TrackedProduct
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// RecordPrice appends one observation and bumps the product's last_checked.
func (s *Store) RecordPrice(ctx context.Context, productID int64, price, originalPrice float64, inStock bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO prices (product_id, price, original_price, in_stock)
		VALUES (?, ?, ?, ?)
	`, productID, price, nullableAmount(originalPrice), inStock)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products SET last_checked = CURRENT_TIMESTAMP WHERE id = ?
	`, productID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetPriceHistory returns up to limit records, most recent first.
func (s *Store) GetPriceHistory(ctx context.Context, productID int64, limit int) ([]PriceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, price, original_price, in_stock, recorded_at
		FROM prices
		WHERE product_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PriceRecord
	for rows.Next() {
		var rec PriceRecord
		var original sql.NullFloat64
		var recordedAt sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.Price, &original, &rec.InStock, &recordedAt); err != nil {
			return nil, err
		}
		rec.OriginalPrice = original.Float64
		rec.RecordedAt = parseTimestamp(recordedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetLatestPrice returns the most recent record, or nil without error when
// the product has no history yet.
func (s *Store) GetLatestPrice(ctx context.Context, productID int64) (*PriceRecord, error) {
	history, err := s.GetPriceHistory(ctx, productID, 1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	return &history[0], nil
}

// GetLowestPrice derives min(price) over the product's history; ok is false
// when there is no history.
func (s *Store) GetLowestPrice(ctx context.Context, productID int64) (float64, bool, error) {
	var lowest sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT MIN(price) FROM prices WHERE product_id = ?`, productID,
	).Scan(&lowest)
	if err != nil {
		return 0, false, err
	}
	return lowest.Float64, lowest.Valid, nil
}

// SetTargetPrice sets the alert threshold; zero clears it.
func (s *Store) SetTargetPrice(ctx context.Context, productID int64, target float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET target_price = ? WHERE id = ?`,
		nullableAmount(target), productID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableAmount(v float64) any {
	if v <= 0 {
		return nil
	}
	return v
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row *sql.Row) (*TrackedProduct, error) {
	p, err := scanProductRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func scanProductRow(row scanner) (*TrackedProduct, error) {
	var p TrackedProduct
	var target sql.NullFloat64
	var addedAt, lastChecked sql.NullString
	err := row.Scan(&p.ID, &p.URL, &p.Title, &p.Source, &target, &addedAt, &lastChecked, &p.Active)
	if err != nil {
		return nil, err
	}
	p.TargetPrice = target.Float64
	p.AddedAt = parseTimestamp(addedAt)
	p.LastChecked = parseTimestamp(lastChecked)
	return &p, nil
}

// SQLite's CURRENT_TIMESTAMP stores "2006-01-02 15:04:05" (UTC); values
// written as Go times come back RFC 3339.
func parseTimestamp(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s.String, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
