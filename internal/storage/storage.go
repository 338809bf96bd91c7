package storage

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrUserBanned          = errors.New("user is banned")
	ErrCountryNotFound     = errors.New("country not found")
	ErrNoNumbers           = errors.New("no numbers available")
	ErrNoAccounts          = errors.New("no accounts available")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowMinimum        = errors.New("amount below minimum deposit")
	ErrDuplicateUTR        = errors.New("utr already used")
	ErrNotPending          = errors.New("payment is not pending")
	ErrExpired             = errors.New("payment expired")
)

// Payment statuses.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentExpired   = "expired"
)

// Order statuses.
const (
	OrderActive  = "active"
	OrderExpired = "expired"
)

// Storage handles all database operations
type Storage struct {
	db *sql.DB
}

// New creates a new Storage instance and initializes the database.
// Transactions open in immediate mode so multi-row lifecycle transitions
// (purchase, verify, sweep) serialize against each other.
func New(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, err
	}

	s := &Storage{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			username TEXT,
			balance INTEGER NOT NULL DEFAULT 0,
			is_banned INTEGER NOT NULL DEFAULT 0,
			total_spent INTEGER NOT NULL DEFAULT 0,
			total_numbers INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS countries (
			country_id INTEGER PRIMARY KEY AUTOINCREMENT,
			country_code TEXT NOT NULL UNIQUE,
			country_name TEXT NOT NULL,
			price INTEGER NOT NULL DEFAULT 50,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			account_id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_string TEXT NOT NULL UNIQUE,
			phone_number TEXT,
			is_active INTEGER NOT NULL DEFAULT 1,
			is_in_use INTEGER NOT NULL DEFAULT 0,
			last_used INTEGER,
			total_numbers_served INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS numbers (
			number_id INTEGER PRIMARY KEY AUTOINCREMENT,
			country_code TEXT NOT NULL,
			phone_number TEXT NOT NULL UNIQUE,
			is_assigned INTEGER NOT NULL DEFAULT 0,
			assigned_to INTEGER,
			assigned_at INTEGER,
			expires_at INTEGER,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_numbers_country ON numbers(country_code, is_assigned)`,

		`CREATE TABLE IF NOT EXISTS orders (
			order_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			number_id INTEGER NOT NULL,
			account_id INTEGER NOT NULL,
			otp_code TEXT,
			price INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_number ON orders(number_id, status)`,

		`CREATE TABLE IF NOT EXISTS payments (
			payment_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			utr TEXT UNIQUE,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL,
			verified_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_user ON payments(user_id)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}
