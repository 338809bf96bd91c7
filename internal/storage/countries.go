package storage

import (
	"database/sql"
	"time"
)

// UpsertCountry adds a country or updates its name and price
func (s *Storage) UpsertCountry(code, name string, price int) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(
		`INSERT INTO countries (country_code, country_name, price, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(country_code) DO UPDATE SET
			country_name = excluded.country_name,
			price = excluded.price,
			is_active = 1`,
		code, name, price, now,
	)
	return err
}

// GetCountry returns an active country by code
func (s *Storage) GetCountry(code string) (*Country, error) {
	var c Country
	var active int
	var createdAt int64

	err := s.db.QueryRow(
		`SELECT country_id, country_code, country_name, price, is_active, created_at
		 FROM countries WHERE country_code = ? AND is_active = 1`,
		code,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Price, &active, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrCountryNotFound
	}
	if err != nil {
		return nil, err
	}

	c.IsActive = active == 1
	c.CreatedAt = time.Unix(createdAt, 0)
	return &c, nil
}

// ListCountries returns all active countries ordered by name
func (s *Storage) ListCountries() ([]Country, error) {
	rows, err := s.db.Query(
		`SELECT country_id, country_code, country_name, price, is_active, created_at
		 FROM countries WHERE is_active = 1 ORDER BY country_name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []Country
	for rows.Next() {
		var c Country
		var active int
		var createdAt int64

		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Price, &active, &createdAt); err != nil {
			return nil, err
		}

		c.IsActive = active == 1
		c.CreatedAt = time.Unix(createdAt, 0)
		countries = append(countries, c)
	}

	return countries, rows.Err()
}

// SetCountryActive enables or disables a country (soft delete)
func (s *Storage) SetCountryActive(code string, active bool) error {
	a := 0
	if active {
		a = 1
	}
	result, err := s.db.Exec(
		"UPDATE countries SET is_active = ? WHERE country_code = ?",
		a, code,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrCountryNotFound
	}
	return nil
}

// SetCountryPrice updates the per-number price for a country
func (s *Storage) SetCountryPrice(code string, price int) error {
	result, err := s.db.Exec(
		"UPDATE countries SET price = ? WHERE country_code = ?",
		price, code,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrCountryNotFound
	}
	return nil
}
