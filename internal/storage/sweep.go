package storage

import (
	"database/sql"
	"time"
)

// SweepResult counts what a sweep pass touched.
type SweepResult struct {
	Numbers  int
	Orders   int
	Payments int
}

// SweepExpired recycles everything past its deadline. Each expired number
// is reset together with its active order and that order's backing
// account in one transaction, so an account's in-use flag never outlives
// the order that set it. Pending payments past expiry move to an explicit
// expired status. Predicates are self-limiting, so repeated sweeps with
// no intervening changes are no-ops.
func (s *Storage) SweepExpired(now time.Time) (*SweepResult, error) {
	res := &SweepResult{}
	ts := now.Unix()

	numberIDs, err := s.expiredNumberIDs(ts)
	if err != nil {
		return nil, err
	}

	for _, id := range numberIDs {
		if err := s.recycleNumber(id, ts); err != nil {
			return res, err
		}
		res.Numbers++
	}

	// Orders whose number row is already gone or reassigned still need
	// closing, and their accounts need freeing.
	orderIDs, err := s.expiredOrderIDs(ts)
	if err != nil {
		return res, err
	}

	for _, id := range orderIDs {
		if err := s.expireOrder(id); err != nil {
			return res, err
		}
		res.Orders++
	}

	result, err := s.db.Exec(
		"UPDATE payments SET status = 'expired' WHERE status = 'pending' AND expires_at <= ?",
		ts,
	)
	if err != nil {
		return res, err
	}
	expired, _ := result.RowsAffected()
	res.Payments = int(expired)

	return res, nil
}

func (s *Storage) expiredNumberIDs(ts int64) ([]int64, error) {
	rows, err := s.db.Query(
		"SELECT number_id FROM numbers WHERE is_assigned = 1 AND expires_at <= ?",
		ts,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIDs(rows)
}

func (s *Storage) expiredOrderIDs(ts int64) ([]int64, error) {
	rows, err := s.db.Query(
		"SELECT order_id FROM orders WHERE status = 'active' AND expires_at <= ?",
		ts,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIDs(rows)
}

// recycleNumber resets one expired number and closes the order it served.
func (s *Storage) recycleNumber(numberID, ts int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE numbers
		 SET is_assigned = 0, assigned_to = NULL, assigned_at = NULL, expires_at = NULL
		 WHERE number_id = ? AND is_assigned = 1 AND expires_at <= ?`,
		numberID, ts,
	)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		// Someone else got here first.
		return nil
	}

	var orderID, accountID int64
	err = tx.QueryRow(
		"SELECT order_id, account_id FROM orders WHERE number_id = ? AND status = 'active'",
		numberID,
	).Scan(&orderID, &accountID)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if err == nil {
		if _, err := tx.Exec("UPDATE orders SET status = 'expired' WHERE order_id = ?", orderID); err != nil {
			return err
		}
		if _, err := tx.Exec("UPDATE accounts SET is_in_use = 0 WHERE account_id = ?", accountID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// expireOrder closes one expired order and frees its account.
func (s *Storage) expireOrder(orderID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var accountID int64
	err = tx.QueryRow(
		"SELECT account_id FROM orders WHERE order_id = ? AND status = 'active'",
		orderID,
	).Scan(&accountID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec("UPDATE orders SET status = 'expired' WHERE order_id = ?", orderID); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE accounts SET is_in_use = 0 WHERE account_id = ?", accountID); err != nil {
		return err
	}

	return tx.Commit()
}

func collectIDs(rows *sql.Rows) ([]int64, error) {
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
