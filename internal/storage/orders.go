package storage

import (
	"database/sql"
	"time"
)

// GetOrder returns an order by ID
func (s *Storage) GetOrder(orderID int64) (*Order, error) {
	var o Order
	var otp sql.NullString
	var createdAt, expiresAt int64

	err := s.db.QueryRow(
		`SELECT order_id, user_id, number_id, account_id, otp_code, price, status,
			created_at, expires_at
		 FROM orders WHERE order_id = ?`,
		orderID,
	).Scan(&o.ID, &o.UserID, &o.NumberID, &o.AccountID, &otp, &o.Price, &o.Status,
		&createdAt, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	o.OTPCode = otp.String
	o.CreatedAt = time.Unix(createdAt, 0)
	o.ExpiresAt = time.Unix(expiresAt, 0)
	return &o, nil
}

// ActiveOrders returns a user's live purchases joined with the number and
// country they bought.
func (s *Storage) ActiveOrders(userID int64) ([]ActiveNumber, error) {
	now := time.Now().Unix()
	rows, err := s.db.Query(
		`SELECT o.order_id, n.phone_number, COALESCE(c.country_name, n.country_code),
			COALESCE(o.otp_code, ''), o.expires_at
		 FROM orders o
		 JOIN numbers n ON n.number_id = o.number_id
		 LEFT JOIN countries c ON c.country_code = n.country_code
		 WHERE o.user_id = ? AND o.status = 'active' AND o.expires_at > ?
		 ORDER BY o.created_at DESC`,
		userID, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var active []ActiveNumber
	for rows.Next() {
		var a ActiveNumber
		var expiresAt int64

		if err := rows.Scan(&a.OrderID, &a.PhoneNumber, &a.CountryName, &a.OTPCode, &expiresAt); err != nil {
			return nil, err
		}

		a.ExpiresAt = time.Unix(expiresAt, 0)
		active = append(active, a)
	}

	return active, rows.Err()
}

// AttachOTP records a received OTP on an active order
func (s *Storage) AttachOTP(orderID int64, code string) error {
	result, err := s.db.Exec(
		"UPDATE orders SET otp_code = ? WHERE order_id = ? AND status = 'active'",
		code, orderID,
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
