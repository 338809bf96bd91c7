package storage

import (
	"database/sql"
	"time"
)

// CreateUser registers a user on first contact. Repeat calls refresh the
// username and leave everything else untouched.
func (s *Storage) CreateUser(userID int64, username string) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(
		`INSERT INTO users (user_id, username, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET username = excluded.username`,
		userID, username, now,
	)
	return err
}

// GetUser returns a user by Telegram ID
func (s *Storage) GetUser(userID int64) (*User, error) {
	var u User
	var banned int
	var createdAt int64

	err := s.db.QueryRow(
		`SELECT user_id, username, balance, is_banned, total_spent, total_numbers, created_at
		 FROM users WHERE user_id = ?`,
		userID,
	).Scan(&u.ID, &u.Username, &u.Balance, &banned, &u.TotalSpent, &u.TotalNumbers, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.IsBanned = banned == 1
	u.CreatedAt = time.Unix(createdAt, 0)
	return &u, nil
}

// SetBanned bans or unbans a user
func (s *Storage) SetBanned(userID int64, banned bool) error {
	b := 0
	if banned {
		b = 1
	}
	result, err := s.db.Exec("UPDATE users SET is_banned = ? WHERE user_id = ?", b, userID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// UsersCount returns the total number of registered users
func (s *Storage) UsersCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
