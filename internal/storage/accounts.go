package storage

import (
	"database/sql"
	"time"
)

// AddAccount registers a backing session account
func (s *Storage) AddAccount(sessionString, phoneNumber string) (*Account, error) {
	now := time.Now().Unix()
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO accounts (session_string, phone_number, created_at)
		 VALUES (?, ?, ?)`,
		sessionString, phoneNumber, now,
	)
	if err != nil {
		return nil, err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrAlreadyExists
	}

	id, _ := result.LastInsertId()
	return &Account{
		ID:            id,
		SessionString: sessionString,
		PhoneNumber:   phoneNumber,
		IsActive:      true,
		CreatedAt:     time.Unix(now, 0),
	}, nil
}

// GetAccount returns an account by ID
func (s *Storage) GetAccount(accountID int64) (*Account, error) {
	row := s.db.QueryRow(
		`SELECT account_id, session_string, phone_number, is_active, is_in_use,
			last_used, total_numbers_served, created_at
		 FROM accounts WHERE account_id = ?`,
		accountID,
	)
	return scanAccount(row)
}

// ListAccounts returns every registered account in insertion order
func (s *Storage) ListAccounts() ([]Account, error) {
	rows, err := s.db.Query(
		`SELECT account_id, session_string, phone_number, is_active, is_in_use,
			last_used, total_numbers_served, created_at
		 FROM accounts ORDER BY account_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}

	return accounts, rows.Err()
}

// SetAccountActive enables or disables an account
func (s *Storage) SetAccountActive(accountID int64, active bool) error {
	a := 0
	if active {
		a = 1
	}
	result, err := s.db.Exec(
		"UPDATE accounts SET is_active = ? WHERE account_id = ?",
		a, accountID,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AccountCounts returns total and currently-free account counts
func (s *Storage) AccountCounts() (total, free int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN is_active = 1 AND is_in_use = 0 THEN 1 ELSE 0 END), 0)
		 FROM accounts`,
	).Scan(&total, &free)
	return total, free, err
}

func scanAccount(row rowScanner) (*Account, error) {
	var a Account
	var active, inUse int
	var lastUsed sql.NullInt64
	var createdAt int64

	err := row.Scan(&a.ID, &a.SessionString, &a.PhoneNumber, &active, &inUse,
		&lastUsed, &a.NumbersServed, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.IsActive = active == 1
	a.IsInUse = inUse == 1
	a.CreatedAt = time.Unix(createdAt, 0)
	if lastUsed.Valid {
		t := time.Unix(lastUsed.Int64, 0)
		a.LastUsed = &t
	}

	return &a, nil
}
