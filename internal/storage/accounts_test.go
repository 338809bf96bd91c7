package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccount(t *testing.T) {
	s := newTestStorage(t)

	added, err := s.AddAccount("session-string-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "+911111111111")
	require.NoError(t, err)

	a, err := s.GetAccount(added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, a.ID)
	assert.Equal(t, "+911111111111", a.PhoneNumber)
	assert.True(t, a.IsActive)
	assert.False(t, a.IsInUse)
	assert.Nil(t, a.LastUsed)
	assert.Equal(t, 0, a.NumbersServed)

	_, err = s.GetAccount(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAccounts(t *testing.T) {
	s := newTestStorage(t)

	list, err := s.ListAccounts()
	require.NoError(t, err)
	assert.Empty(t, list)

	first, err := s.AddAccount("session-string-aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "+911111111111")
	require.NoError(t, err)
	second, err := s.AddAccount("session-string-bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "")
	require.NoError(t, err)
	require.NoError(t, s.SetAccountActive(second.ID, false))

	list, err = s.ListAccounts()
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "+911111111111", list[0].PhoneNumber)
	assert.True(t, list[0].IsActive)

	assert.Equal(t, second.ID, list[1].ID)
	assert.Empty(t, list[1].PhoneNumber)
	assert.False(t, list[1].IsActive)
}

func TestListAccountsReflectsUse(t *testing.T) {
	s := newTestStorage(t)
	seedShop(t, s, 100)

	_, err := s.PurchaseNumber(1, "IN", 10*time.Minute)
	require.NoError(t, err)

	list, err := s.ListAccounts()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsInUse)
	assert.NotNil(t, list[0].LastUsed)
	assert.Equal(t, 1, list[0].NumbersServed)
}

func TestSetAccountActive(t *testing.T) {
	s := newTestStorage(t)
	seedShop(t, s, 100)

	list, err := s.ListAccounts()
	require.NoError(t, err)
	require.Len(t, list, 1)
	accountID := list[0].ID

	// A disabled account is never picked for a purchase.
	require.NoError(t, s.SetAccountActive(accountID, false))
	_, err = s.PurchaseNumber(1, "IN", 10*time.Minute)
	assert.ErrorIs(t, err, ErrNoAccounts)

	require.NoError(t, s.SetAccountActive(accountID, true))
	_, err = s.PurchaseNumber(1, "IN", 10*time.Minute)
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetAccountActive(9999, true), ErrNotFound)
}
