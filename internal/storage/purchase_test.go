package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseSuccess(t *testing.T) {
	s := newTestStorage(t)
	seedShop(t, s, 100)

	result, err := s.PurchaseNumber(1, "IN", 10*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "+911234567890", result.PhoneNumber)
	assert.Equal(t, "India", result.CountryName)
	assert.Equal(t, 50, result.Price)
	assert.Equal(t, 50, result.NewBalance)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), result.ExpiresAt, 5*time.Second)

	// Balance debited by exactly the country price.
	u, err := s.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 50, u.Balance)
	assert.Equal(t, 50, u.TotalSpent)
	assert.Equal(t, 1, u.TotalNumbers)

	// Number assigned with expiry set.
	numbers, err := s.UserNumbers(1)
	require.NoError(t, err)
	require.Len(t, numbers, 1)
	assert.True(t, numbers[0].IsAssigned)
	require.NotNil(t, numbers[0].AssignedTo)
	assert.Equal(t, int64(1), *numbers[0].AssignedTo)
	require.NotNil(t, numbers[0].ExpiresAt)

	// Exactly one active order binding the number to the user.
	orders, err := s.ActiveOrders(1)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, result.OrderID, orders[0].OrderID)
	assert.Equal(t, "+911234567890", orders[0].PhoneNumber)

	// The backing account is claimed.
	_, free, err := s.AccountCounts()
	require.NoError(t, err)
	assert.Equal(t, 0, free)
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	s := newTestStorage(t)
	seedShop(t, s, 10)

	_, err := s.PurchaseNumber(1, "IN", 10*time.Minute)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// No state changes.
	u, err := s.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 10, u.Balance)
	assert.Equal(t, 0, u.TotalNumbers)

	orders, err := s.ActiveOrders(1)
	require.NoError(t, err)
	assert.Empty(t, orders)

	count, err := s.AvailableNumberCount("IN")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, free, err := s.AccountCounts()
	require.NoError(t, err)
	assert.Equal(t, 1, free)
}

func TestPurchaseNoNumbers(t *testing.T) {
	s := newTestStorage(t)
	seedShop(t, s, 100)
	require.NoError(t, s.UpsertCountry("US", "United States", 80))
	creditUser(t, s, 1, 100)

	_, err := s.PurchaseNumber(1, "US", 10*time.Minute)
	assert.ErrorIs(t, err, ErrNoNumbers)

	u, err := s.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 200, u.Balance)
}

func TestPurchaseNoAccounts(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.CreateUser(1, "alice"))
	require.NoError(t, s.UpsertCountry("IN", "India", 50))
	_, err := s.AddNumber("IN", "+911234567890")
	require.NoError(t, err)
	creditUser(t, s, 1, 100)

	_, err = s.PurchaseNumber(1, "IN", 10*time.Minute)
	assert.ErrorIs(t, err, ErrNoAccounts)

	count, err := s.AvailableNumberCount("IN")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPurchaseBannedUser(t *testing.T) {
	s := newTestStorage(t)
	seedShop(t, s, 100)
	require.NoError(t, s.SetBanned(1, true))

	_, err := s.PurchaseNumber(1, "IN", 10*time.Minute)
	assert.ErrorIs(t, err, ErrUserBanned)
}

func TestPurchaseUnknownCountry(t *testing.T) {
	s := newTestStorage(t)
	seedShop(t, s, 100)

	_, err := s.PurchaseNumber(1, "ZZ", 10*time.Minute)
	assert.ErrorIs(t, err, ErrCountryNotFound)

	require.NoError(t, s.SetCountryActive("IN", false))
	_, err = s.PurchaseNumber(1, "IN", 10*time.Minute)
	assert.ErrorIs(t, err, ErrCountryNotFound)
}

func TestPurchaseUnknownUser(t *testing.T) {
	s := newTestStorage(t)
	seedShop(t, s, 100)

	_, err := s.PurchaseNumber(99, "IN", 10*time.Minute)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Two buyers race for the last free number: exactly one purchase commits.
func TestConcurrentPurchaseLastNumber(t *testing.T) {
	s := newTestStorage(t)
	seedShop(t, s, 100)
	require.NoError(t, s.CreateUser(2, "bob"))
	creditUser(t, s, 2, 100)

	// A second account so contention is only on the number.
	_, err := s.AddAccount("session-string-bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "+922222222222")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []int64{1, 2} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			_, errs[i] = s.PurchaseNumber(userID, "IN", 10*time.Minute)
		}(i, userID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrNoNumbers)
		}
	}
	assert.Equal(t, 1, succeeded)

	count, err := s.AvailableNumberCount("IN")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Only the winner was charged.
	u1, err := s.GetUser(1)
	require.NoError(t, err)
	u2, err := s.GetUser(2)
	require.NoError(t, err)
	assert.Equal(t, 150, u1.Balance+u2.Balance)
}
