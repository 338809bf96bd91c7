package storage

import (
	"database/sql"
	"time"
)

// AddNumber adds a virtual number to the pool, returns true if it was new
func (s *Storage) AddNumber(countryCode, phoneNumber string) (bool, error) {
	now := time.Now().Unix()
	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO numbers (country_code, phone_number, created_at)
		 VALUES (?, ?, ?)`,
		countryCode, phoneNumber, now,
	)
	if err != nil {
		return false, err
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// GetNumber returns a number by ID
func (s *Storage) GetNumber(numberID int64) (*Number, error) {
	row := s.db.QueryRow(
		`SELECT number_id, country_code, phone_number, is_assigned,
			assigned_to, assigned_at, expires_at, created_at
		 FROM numbers WHERE number_id = ?`,
		numberID,
	)
	return scanNumber(row)
}

// AvailableNumberCount returns how many free numbers a country has
func (s *Storage) AvailableNumberCount(countryCode string) (int, error) {
	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM numbers WHERE country_code = ? AND is_assigned = 0",
		countryCode,
	).Scan(&count)
	return count, err
}

// NumberCounts returns total and free number counts across all countries
func (s *Storage) NumberCounts() (total, free int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_assigned = 0 THEN 1 ELSE 0 END), 0)
		 FROM numbers`,
	).Scan(&total, &free)
	return total, free, err
}

// UserNumbers returns the numbers currently assigned to a user
func (s *Storage) UserNumbers(userID int64) ([]Number, error) {
	rows, err := s.db.Query(
		`SELECT number_id, country_code, phone_number, is_assigned,
			assigned_to, assigned_at, expires_at, created_at
		 FROM numbers WHERE assigned_to = ? AND is_assigned = 1
		 ORDER BY assigned_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []Number
	for rows.Next() {
		n, err := scanNumber(rows)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, *n)
	}

	return numbers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNumber(row rowScanner) (*Number, error) {
	var n Number
	var assigned int
	var assignedTo, assignedAt, expiresAt sql.NullInt64
	var createdAt int64

	err := row.Scan(&n.ID, &n.CountryCode, &n.PhoneNumber, &assigned,
		&assignedTo, &assignedAt, &expiresAt, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	n.IsAssigned = assigned == 1
	n.CreatedAt = time.Unix(createdAt, 0)
	if assignedTo.Valid {
		n.AssignedTo = &assignedTo.Int64
	}
	if assignedAt.Valid {
		t := time.Unix(assignedAt.Int64, 0)
		n.AssignedAt = &t
	}
	if expiresAt.Valid {
		t := time.Unix(expiresAt.Int64, 0)
		n.ExpiresAt = &t
	}

	return &n, nil
}
