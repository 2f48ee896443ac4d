// Package orders persists customer orders and fans out best-effort
// notifications. Persistence is the one fatal step of order placement;
// every notification failure is demoted to a warning on a successful
// result.
package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meshforge/printquote/dbopen"
	"github.com/meshforge/printquote/idgen"
)

// Order is one customer order. Quote is kept opaque: it is produced by
// the pricing boundary and only echoed back in notifications.
type Order struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	Email     string          `json:"email,omitempty"`
	Quote     json.RawMessage `json:"quote"`
	CreatedAt time.Time       `json:"created_at"`
}

// InitSchema creates the orders table.
func InitSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS orders (
			order_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			address TEXT NOT NULL,
			email TEXT,
			quote TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("orders: init schema: %w", err)
	}
	return nil
}

// Store reads and writes orders in SQLite.
type Store struct {
	db    *sql.DB
	newID idgen.Generator
}

// NewStore creates a Store. The ID generator defaults to "ord_"-prefixed
// UUIDv7.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		newID: idgen.Prefixed("ord_", idgen.Default),
	}
}

// Save persists the order, assigning its ID and creation time.
func (s *Store) Save(ctx context.Context, o *Order) error {
	o.ID = s.newID()
	o.CreatedAt = time.Now().UTC()
	quote := string(o.Quote)
	if quote == "" {
		quote = "{}"
	}
	err := dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (order_id, name, phone, address, email, quote, created_at)
			VALUES (?,?,?,?,?,?,?)`,
			o.ID, o.Name, o.Phone, o.Address, o.Email, quote, o.CreatedAt.Unix())
		return err
	})
	if err != nil {
		return fmt.Errorf("orders: save: %w", err)
	}
	return nil
}

// Get returns one order by ID, or nil when absent.
func (s *Store) Get(ctx context.Context, id string) (*Order, error) {
	var o Order
	var quote string
	var createdAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT order_id, name, phone, address, email, quote, created_at
		FROM orders WHERE order_id = ?`, id).
		Scan(&o.ID, &o.Name, &o.Phone, &o.Address, &o.Email, &quote, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("orders: get: %w", err)
	}
	o.Quote = json.RawMessage(quote)
	o.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &o, nil
}

// List returns the most recent orders, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_id, name, phone, address, email, quote, created_at
		FROM orders ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var quote string
		var createdAt int64
		if err := rows.Scan(&o.ID, &o.Name, &o.Phone, &o.Address, &o.Email, &quote, &createdAt); err != nil {
			return nil, fmt.Errorf("orders: list scan: %w", err)
		}
		o.Quote = json.RawMessage(quote)
		o.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, o)
	}
	return out, rows.Err()
}
