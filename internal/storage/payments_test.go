package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePaymentBelowMinimum(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.CreateUser(1, "alice"))

	_, err := s.CreatePayment(1, 50, 100, 30*time.Minute)
	assert.ErrorIs(t, err, ErrBelowMinimum)

	// Nothing was inserted.
	payments, err := s.UserPayments(1, 10)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestVerifyUTRCreditsBalance(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.CreateUser(1, "alice"))

	p, err := s.CreatePayment(1, 200, 100, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, p.Status)

	balance, err := s.VerifyUTR(p.ID, "AXIS1234567890")
	require.NoError(t, err)
	assert.Equal(t, 200, balance)

	got, err := s.GetPayment(p.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, got.Status)
	assert.Equal(t, "AXIS1234567890", got.UTR)
	assert.NotNil(t, got.VerifiedAt)

	u, err := s.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 200, u.Balance)

	revenue, err := s.Revenue()
	require.NoError(t, err)
	assert.Equal(t, 200, revenue)
}

func TestVerifyUTRDuplicate(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.CreateUser(1, "alice"))

	p1, err := s.CreatePayment(1, 200, 100, 30*time.Minute)
	require.NoError(t, err)
	p2, err := s.CreatePayment(1, 300, 100, 30*time.Minute)
	require.NoError(t, err)

	_, err = s.VerifyUTR(p1.ID, "AXIS1234567890")
	require.NoError(t, err)

	// Same bank reference cannot be claimed twice.
	_, err = s.VerifyUTR(p2.ID, "AXIS1234567890")
	assert.ErrorIs(t, err, ErrDuplicateUTR)

	got, err := s.GetPayment(p2.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, got.Status)

	u, err := s.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 200, u.Balance)
}

func TestVerifyUTRNotPending(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.CreateUser(1, "alice"))

	p, err := s.CreatePayment(1, 200, 100, 30*time.Minute)
	require.NoError(t, err)

	_, err = s.VerifyUTR(p.ID, "AXIS1234567890")
	require.NoError(t, err)

	_, err = s.VerifyUTR(p.ID, "HDFC0987654321")
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = s.VerifyUTR(9999, "ICIC1111111111")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyUTRExpired(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.CreateUser(1, "alice"))

	p, err := s.CreatePayment(1, 200, 100, -time.Minute)
	require.NoError(t, err)

	_, err = s.VerifyUTR(p.ID, "AXIS1234567890")
	assert.ErrorIs(t, err, ErrExpired)

	got, err := s.GetPayment(p.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, got.Status)
	assert.Empty(t, got.UTR)

	u, err := s.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 0, u.Balance)
}

func TestCheckExpiry(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.CreateUser(1, "alice"))

	t.Run("missing payment is expired", func(t *testing.T) {
		expired, err := s.CheckExpiry(9999)
		require.NoError(t, err)
		assert.True(t, expired)
	})

	t.Run("fresh pending payment is not expired", func(t *testing.T) {
		p, err := s.CreatePayment(1, 200, 100, 30*time.Minute)
		require.NoError(t, err)

		expired, err := s.CheckExpiry(p.ID)
		require.NoError(t, err)
		assert.False(t, expired)
	})

	t.Run("completed payment is expired", func(t *testing.T) {
		p, err := s.CreatePayment(1, 200, 100, 30*time.Minute)
		require.NoError(t, err)
		_, err = s.VerifyUTR(p.ID, "AXIS1234567890")
		require.NoError(t, err)

		expired, err := s.CheckExpiry(p.ID)
		require.NoError(t, err)
		assert.True(t, expired)
	})

	t.Run("pending payment past deadline is expired", func(t *testing.T) {
		p, err := s.CreatePayment(1, 200, 100, -time.Minute)
		require.NoError(t, err)

		expired, err := s.CheckExpiry(p.ID)
		require.NoError(t, err)
		assert.True(t, expired)
	})
}

func TestPendingPaymentsExcludesExpired(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.CreateUser(1, "alice"))

	live, err := s.CreatePayment(1, 200, 100, 30*time.Minute)
	require.NoError(t, err)
	_, err = s.CreatePayment(1, 300, 100, -time.Minute)
	require.NoError(t, err)

	pending, err := s.PendingPayments()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, live.ID, pending[0].ID)
}

// A UTR, once attached to a completed payment, can never be attached to
// another, even under concurrent verification attempts.
func TestConcurrentVerifySameUTR(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.CreateUser(1, "alice"))

	const n = 8
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		p, err := s.CreatePayment(1, 200, 100, 30*time.Minute)
		require.NoError(t, err)
		ids[i] = p.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.VerifyUTR(ids[i], "SBIN7777777777")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateUTR)
		}
	}
	assert.Equal(t, 1, succeeded)

	// Only one deposit was credited.
	u, err := s.GetUser(1)
	require.NoError(t, err)
	assert.Equal(t, 200, u.Balance)
}
