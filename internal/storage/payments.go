package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreatePayment opens a pending deposit claim. Amounts below the
// configured minimum are rejected without touching the database.
func (s *Storage) CreatePayment(userID int64, amount, minDeposit int, ttl time.Duration) (*Payment, error) {
	if amount < minDeposit {
		return nil, ErrBelowMinimum
	}

	now := time.Now()
	expiresAt := now.Add(ttl)

	result, err := s.db.Exec(
		`INSERT INTO payments (user_id, amount, status, created_at, expires_at)
		 VALUES (?, ?, 'pending', ?, ?)`,
		userID, amount, now.Unix(), expiresAt.Unix(),
	)
	if err != nil {
		return nil, err
	}

	id, _ := result.LastInsertId()
	return &Payment{
		ID:        id,
		UserID:    userID,
		Amount:    amount,
		Status:    PaymentPending,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}, nil
}

// GetPayment returns a payment by ID
func (s *Storage) GetPayment(paymentID int64) (*Payment, error) {
	var p Payment
	var utr sql.NullString
	var verifiedAt sql.NullInt64
	var createdAt, expiresAt int64

	err := s.db.QueryRow(
		`SELECT payment_id, user_id, amount, utr, status, created_at, expires_at, verified_at
		 FROM payments WHERE payment_id = ?`,
		paymentID,
	).Scan(&p.ID, &p.UserID, &p.Amount, &utr, &p.Status, &createdAt, &expiresAt, &verifiedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.UTR = utr.String
	p.CreatedAt = time.Unix(createdAt, 0)
	p.ExpiresAt = time.Unix(expiresAt, 0)
	if verifiedAt.Valid {
		t := time.Unix(verifiedAt.Int64, 0)
		p.VerifiedAt = &t
	}

	return &p, nil
}

// VerifyUTR completes a pending payment with a bank transaction reference
// and credits the deposited amount to the payer's balance. Completion and
// credit commit together; a UTR already attached to any payment is
// rejected (replay protection). Returns the new balance.
func (s *Storage) VerifyUTR(paymentID int64, utr string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRow("SELECT COUNT(*) FROM payments WHERE utr = ?", utr).Scan(&existing); err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, ErrDuplicateUTR
	}

	var userID int64
	var amount int
	var status string
	var expiresAt int64
	err = tx.QueryRow(
		"SELECT user_id, amount, status, expires_at FROM payments WHERE payment_id = ?",
		paymentID,
	).Scan(&userID, &amount, &status, &expiresAt)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if status != PaymentPending {
		return 0, ErrNotPending
	}

	now := time.Now()
	if now.Unix() >= expiresAt {
		return 0, ErrExpired
	}

	result, err := tx.Exec(
		`UPDATE payments
		 SET utr = ?, status = 'completed', verified_at = ?
		 WHERE payment_id = ? AND status = 'pending' AND expires_at > ?`,
		utr, now.Unix(), paymentID, now.Unix(),
	)
	if err != nil {
		return 0, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return 0, ErrNotPending
	}

	if _, err := tx.Exec(
		"UPDATE users SET balance = balance + ? WHERE user_id = ?",
		amount, userID,
	); err != nil {
		return 0, err
	}

	var balance int
	if err := tx.QueryRow("SELECT balance FROM users WHERE user_id = ?", userID).Scan(&balance); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit verify: %w", err)
	}

	return balance, nil
}

// CheckExpiry reports whether a payment should be treated as expired:
// missing, no longer pending, or past its deadline.
func (s *Storage) CheckExpiry(paymentID int64) (bool, error) {
	p, err := s.GetPayment(paymentID)
	if errors.Is(err, ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return true, err
	}

	if p.Status != PaymentPending {
		return true, nil
	}
	return time.Now().After(p.ExpiresAt), nil
}

// UserPayments returns a user's recent payment history
func (s *Storage) UserPayments(userID int64, limit int) ([]Payment, error) {
	rows, err := s.db.Query(
		`SELECT payment_id, user_id, amount, utr, status, created_at, expires_at, verified_at
		 FROM payments WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPayments(rows)
}

// PendingPayments returns payments still awaiting verification
func (s *Storage) PendingPayments() ([]Payment, error) {
	now := time.Now().Unix()
	rows, err := s.db.Query(
		`SELECT payment_id, user_id, amount, utr, status, created_at, expires_at, verified_at
		 FROM payments WHERE status = 'pending' AND expires_at > ?`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPayments(rows)
}

// Revenue returns the sum of all completed deposits
func (s *Storage) Revenue() (int, error) {
	var total int
	err := s.db.QueryRow(
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'completed'",
	).Scan(&total)
	return total, err
}

func scanPayments(rows *sql.Rows) ([]Payment, error) {
	var payments []Payment
	for rows.Next() {
		var p Payment
		var utr sql.NullString
		var verifiedAt sql.NullInt64
		var createdAt, expiresAt int64

		err := rows.Scan(&p.ID, &p.UserID, &p.Amount, &utr, &p.Status,
			&createdAt, &expiresAt, &verifiedAt)
		if err != nil {
			return nil, err
		}

		p.UTR = utr.String
		p.CreatedAt = time.Unix(createdAt, 0)
		p.ExpiresAt = time.Unix(expiresAt, 0)
		if verifiedAt.Valid {
			t := time.Unix(verifiedAt.Int64, 0)
			p.VerifiedAt = &t
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}
