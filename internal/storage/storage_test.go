package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var utrSeq int

// creditUser funds a user through the real deposit path so balance
// invariants hold in every test.
func creditUser(t *testing.T, s *Storage, userID int64, amount int) {
	t.Helper()

	p, err := s.CreatePayment(userID, amount, 1, time.Hour)
	require.NoError(t, err)

	utrSeq++
	_, err = s.VerifyUTR(p.ID, fmt.Sprintf("TESTUTR%06d", utrSeq))
	require.NoError(t, err)
}

// seedShop sets up a user, a country, one number and one account.
func seedShop(t *testing.T, s *Storage, balance int) {
	t.Helper()

	require.NoError(t, s.CreateUser(1, "alice"))
	require.NoError(t, s.UpsertCountry("IN", "India", 50))

	isNew, err := s.AddNumber("IN", "+911234567890")
	require.NoError(t, err)
	require.True(t, isNew)

	_, err = s.AddAccount("session-string-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "+911111111111")
	require.NoError(t, err)

	if balance > 0 {
		creditUser(t, s, 1, balance)
	}
}

func TestCreateUserUpsert(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.CreateUser(1, "alice"))
	creditUser(t, s, 1, 100)

	// Re-registering refreshes the username but keeps the balance.
	require.NoError(t, s.CreateUser(1, "alice_new"))

	u, err := s.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, "alice_new", u.Username)
	assert.Equal(t, 100, u.Balance)
	assert.False(t, u.IsBanned)
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetUser(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetBanned(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.CreateUser(1, "alice"))

	require.NoError(t, s.SetBanned(1, true))
	u, err := s.GetUser(1)
	require.NoError(t, err)
	assert.True(t, u.IsBanned)

	require.NoError(t, s.SetBanned(1, false))
	u, err = s.GetUser(1)
	require.NoError(t, err)
	assert.False(t, u.IsBanned)

	assert.ErrorIs(t, s.SetBanned(99, true), ErrNotFound)
}

func TestCountryLifecycle(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.UpsertCountry("IN", "India", 50))
	require.NoError(t, s.UpsertCountry("US", "United States", 80))

	c, err := s.GetCountry("IN")
	require.NoError(t, err)
	assert.Equal(t, "India", c.Name)
	assert.Equal(t, 50, c.Price)

	// Upsert updates price in place.
	require.NoError(t, s.UpsertCountry("IN", "India", 60))
	c, err = s.GetCountry("IN")
	require.NoError(t, err)
	assert.Equal(t, 60, c.Price)

	list, err := s.ListCountries()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "India", list[0].Name)

	require.NoError(t, s.SetCountryActive("IN", false))
	_, err = s.GetCountry("IN")
	assert.ErrorIs(t, err, ErrCountryNotFound)

	list, err = s.ListCountries()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.SetCountryPrice("US", 90))
	c, err = s.GetCountry("US")
	require.NoError(t, err)
	assert.Equal(t, 90, c.Price)

	assert.ErrorIs(t, s.SetCountryPrice("XX", 10), ErrCountryNotFound)
}

func TestAddNumberIdempotent(t *testing.T) {
	s := newTestStorage(t)

	isNew, err := s.AddNumber("IN", "+911234567890")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = s.AddNumber("IN", "+911234567890")
	require.NoError(t, err)
	assert.False(t, isNew)

	count, err := s.AvailableNumberCount("IN")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddAccountDuplicate(t *testing.T) {
	s := newTestStorage(t)

	session := "session-string-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	a, err := s.AddAccount(session, "+911111111111")
	require.NoError(t, err)
	assert.True(t, a.IsActive)

	_, err = s.AddAccount(session, "+922222222222")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	total, free, err := s.AccountCounts()
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, free)
}
