package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// PurchaseResult describes a completed number purchase.
type PurchaseResult struct {
	OrderID     int64
	PhoneNumber string
	CountryName string
	Price       int
	NewBalance  int
	ExpiresAt   time.Time
}

// PurchaseNumber sells one free number of the given country to a user.
// The whole sequence (price lookup, number claim, account claim, balance
// debit, order insert) runs in a single immediate transaction, and every
// claim re-checks its predicate so a lost race rolls back with no state
// change.
func (s *Storage) PurchaseNumber(userID int64, countryCode string, lease time.Duration) (*PurchaseResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var countryName string
	var price int
	err = tx.QueryRow(
		"SELECT country_name, price FROM countries WHERE country_code = ? AND is_active = 1",
		countryCode,
	).Scan(&countryName, &price)
	if err == sql.ErrNoRows {
		return nil, ErrCountryNotFound
	}
	if err != nil {
		return nil, err
	}

	var balance, banned int
	err = tx.QueryRow(
		"SELECT balance, is_banned FROM users WHERE user_id = ?",
		userID,
	).Scan(&balance, &banned)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if banned == 1 {
		return nil, ErrUserBanned
	}
	if balance < price {
		return nil, ErrInsufficientBalance
	}

	var numberID int64
	var phoneNumber string
	err = tx.QueryRow(
		`SELECT number_id, phone_number FROM numbers
		 WHERE country_code = ? AND is_assigned = 0
		 ORDER BY RANDOM() LIMIT 1`,
		countryCode,
	).Scan(&numberID, &phoneNumber)
	if err == sql.ErrNoRows {
		return nil, ErrNoNumbers
	}
	if err != nil {
		return nil, err
	}

	var accountID int64
	err = tx.QueryRow(
		`SELECT account_id FROM accounts
		 WHERE is_active = 1 AND is_in_use = 0
		 ORDER BY last_used ASC, total_numbers_served ASC
		 LIMIT 1`,
	).Scan(&accountID)
	if err == sql.ErrNoRows {
		return nil, ErrNoAccounts
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(lease)

	result, err := tx.Exec(
		`UPDATE numbers
		 SET is_assigned = 1, assigned_to = ?, assigned_at = ?, expires_at = ?
		 WHERE number_id = ? AND is_assigned = 0`,
		userID, now.Unix(), expiresAt.Unix(), numberID,
	)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrNoNumbers
	}

	result, err = tx.Exec(
		`UPDATE accounts
		 SET is_in_use = 1, last_used = ?, total_numbers_served = total_numbers_served + 1
		 WHERE account_id = ? AND is_in_use = 0`,
		now.Unix(), accountID,
	)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrNoAccounts
	}

	result, err = tx.Exec(
		`UPDATE users
		 SET balance = balance - ?, total_spent = total_spent + ?, total_numbers = total_numbers + 1
		 WHERE user_id = ? AND balance >= ?`,
		price, price, userID, price,
	)
	if err != nil {
		return nil, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrInsufficientBalance
	}

	insert, err := tx.Exec(
		`INSERT INTO orders (user_id, number_id, account_id, price, status, created_at, expires_at)
		 VALUES (?, ?, ?, ?, 'active', ?, ?)`,
		userID, numberID, accountID, price, now.Unix(), expiresAt.Unix(),
	)
	if err != nil {
		return nil, err
	}
	orderID, _ := insert.LastInsertId()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	return &PurchaseResult{
		OrderID:     orderID,
		PhoneNumber: phoneNumber,
		CountryName: countryName,
		Price:       price,
		NewBalance:  balance - price,
		ExpiresAt:   expiresAt,
	}, nil
}
