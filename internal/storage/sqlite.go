package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	usersQuery := `
	CREATE TABLE IF NOT EXISTS users (
		telegram_id INTEGER PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		year TEXT NOT NULL DEFAULT '',
		joined_channel INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(usersQuery); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	productsQuery := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		seller_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price INTEGER NOT NULL,
		category TEXT NOT NULL,
		images TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL,
		channel_message_ids TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		approved_by INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := s.db.Exec(productsQuery); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}

	indexQuery := `CREATE INDEX IF NOT EXISTS idx_products_status ON products(status);`
	if _, err := s.db.Exec(indexQuery); err != nil {
		return fmt.Errorf("failed to create status index: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Users ---

// UpsertUser inserts the user or refreshes their display name and handle.
func (s *SQLiteStore) UpsertUser(user *User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	query := `
	INSERT INTO users (telegram_id, username, first_name, last_name, joined_channel, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(telegram_id) DO UPDATE SET
		username = excluded.username,
		first_name = excluded.first_name,
		last_name = excluded.last_name
	`
	_, err := s.db.Exec(query,
		user.ID, user.Username, user.FirstName, user.LastName, user.JoinedChannel, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", user.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(id int64) (*User, error) {
	query := `
	SELECT telegram_id, username, first_name, last_name, department, year, joined_channel, created_at
	FROM users WHERE telegram_id = ?
	`
	var u User
	err := s.db.QueryRow(query, id).Scan(
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Department, &u.Year, &u.JoinedChannel, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &u, nil
}

func (s *SQLiteStore) SetUserVerification(id int64, department, year string) error {
	res, err := s.db.Exec(`UPDATE users SET department = ?, year = ? WHERE telegram_id = ?`, department, year, id)
	if err != nil {
		return fmt.Errorf("failed to set verification for user %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetJoinedChannel(id int64, joined bool) error {
	_, err := s.db.Exec(`UPDATE users SET joined_channel = ? WHERE telegram_id = ?`, joined, id)
	if err != nil {
		return fmt.Errorf("failed to set joined_channel for user %d: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) ListUserIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT telegram_id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Products ---

func (s *SQLiteStore) CreateProduct(product *Product) error {
	images, err := json.Marshal(product.Images)
	if err != nil {
		return fmt.Errorf("failed to marshal images: %w", err)
	}
	messageIDs, err := json.Marshal(product.ChannelMessageIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal channel message ids: %w", err)
	}
	query := `
	INSERT INTO products (id, seller_id, title, description, price, category, images, status, channel_message_ids, created_at, updated_at, approved_by)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.Exec(query,
		product.ID, product.SellerID, product.Title, product.Description, product.Price,
		product.Category, string(images), string(product.Status), string(messageIDs),
		product.CreatedAt, product.UpdatedAt, product.ApprovedBy)
	if err != nil {
		return fmt.Errorf("failed to create product %s: %w", product.ID, err)
	}
	return nil
}

const productColumns = `id, seller_id, title, description, price, category, images, status, channel_message_ids, created_at, updated_at, approved_by`

func scanProduct(row interface{ Scan(dest ...any) error }) (*Product, error) {
	var p Product
	var images, messageIDs, status string
	err := row.Scan(&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Price, &p.Category,
		&images, &status, &messageIDs, &p.CreatedAt, &p.UpdatedAt, &p.ApprovedBy)
	if err != nil {
		return nil, err
	}
	p.Status = Status(status)
	if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
		return nil, fmt.Errorf("failed to unmarshal images for product %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(messageIDs), &p.ChannelMessageIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal channel message ids for product %s: %w", p.ID, err)
	}
	return &p, nil
}

func (s *SQLiteStore) GetProduct(id string) (*Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteStore) queryProducts(query string, args ...any) ([]Product, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *SQLiteStore) ProductsBySeller(sellerID int64) ([]Product, error) {
	return s.queryProducts(`SELECT `+productColumns+` FROM products WHERE seller_id = ? ORDER BY created_at`, sellerID)
}

func (s *SQLiteStore) ProductsByStatus(status Status) ([]Product, error) {
	return s.queryProducts(`SELECT `+productColumns+` FROM products WHERE status = ? ORDER BY created_at`, string(status))
}

func (s *SQLiteStore) ApprovedByCategory(category string) ([]Product, error) {
	return s.queryProducts(
		`SELECT `+productColumns+` FROM products WHERE status = ? AND category = ? ORDER BY created_at DESC`,
		string(StatusApproved), category)
}

func (s *SQLiteStore) CountByStatus(status Status) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM products WHERE status = ?`, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// TransitionStatus performs a guarded status transition. The WHERE clause on
// the current status makes concurrent duplicate transitions lose cleanly.
func (s *SQLiteStore) TransitionStatus(id string, from, to Status, adminID int64) (bool, error) {
	if !ValidTransition(from, to) {
		return false, fmt.Errorf("invalid status transition %s -> %s", from, to)
	}
	res, err := s.db.Exec(
		`UPDATE products SET status = ?, approved_by = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(to), adminID, time.Now(), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to transition product %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) SetChannelMessageIDs(id string, messageIDs []int) error {
	data, err := json.Marshal(messageIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal channel message ids: %w", err)
	}
	res, err := s.db.Exec(`UPDATE products SET channel_message_ids = ?, updated_at = ? WHERE id = ?`,
		string(data), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set channel message ids for product %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
