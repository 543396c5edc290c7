package event

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petlove/internal/testutil"
)

func newRegistration(email string) *Registration {
	return &Registration{
		FirstName:     "Ana",
		LastName:      "Reyes",
		ContactNumber: "09171234567",
		Email:         email,
		City:          "Pasig",
	}
}

func TestStore_VouchersAreSequential(t *testing.T) {
	store := NewStore(testutil.NewPool(t, "event_registrations"))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		r := newRegistration(fmt.Sprintf("guest%d@example.com", i))
		require.NoError(t, store.Create(ctx, r))
		assert.Equal(t, int64(i), r.VoucherNumber)
		assert.Equal(t, VoucherCode(int64(i)), r.VoucherCode)
		assert.False(t, r.RegisteredAt.IsZero())
	}

	err := store.Create(ctx, newRegistration("guest1@example.com"))
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	next := newRegistration("guest4@example.com")
	next.Facebook = "https://facebook.com/guest4"
	require.NoError(t, store.Create(ctx, next))
	assert.Greater(t, next.VoucherNumber, int64(3))

	found, err := store.FindByVoucher(ctx, next.VoucherCode)
	require.NoError(t, err)
	assert.Equal(t, "guest4@example.com", found.Email)
	assert.Equal(t, "https://facebook.com/guest4", found.Facebook)
	assert.Empty(t, found.Instagram)

	_, err = store.FindByVoucher(ctx, "PLT50OFF-999")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, next.VoucherCode, list[0].VoucherCode)
}

func TestStore_ConcurrentRegistrationsGetDistinctVouchers(t *testing.T) {
	store := NewStore(testutil.NewPool(t, "event_registrations"))
	ctx := context.Background()

	const guests = 12
	codes := make(chan string, guests)
	var wg sync.WaitGroup
	for i := 0; i < guests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := newRegistration(fmt.Sprintf("rush%d@example.com", i))
			if err := store.Create(ctx, r); err != nil {
				t.Errorf("Create() error = %v", err)
				return
			}
			codes <- r.VoucherCode
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		assert.False(t, seen[code], "voucher %s handed out twice", code)
		seen[code] = true
	}
	assert.Len(t, seen, guests)
	for i := 1; i <= guests; i++ {
		assert.True(t, seen[VoucherCode(int64(i))], "missing voucher %d", i)
	}
}
