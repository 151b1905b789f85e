package otp

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SixDigits(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestManager_IssueVerifyConsume(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Minute)

	code, err := m.Issue(ctx, 1, PurposeLogin)
	require.NoError(t, err)

	assert.ErrorIs(t, m.Verify(ctx, 1, PurposeLogin, "not-it"), ErrMismatch)
	assert.ErrorIs(t, m.Verify(ctx, 1, PurposeVerifyEmail, code), ErrNoActiveCode)
	require.NoError(t, m.Verify(ctx, 1, PurposeLogin, " "+code+" "))
	assert.ErrorIs(t, m.Verify(ctx, 1, PurposeLogin, code), ErrNoActiveCode)
}

func TestManager_ReissueReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, time.Minute)

	require.NoError(t, store.Set(ctx, Key(2, PurposeLogin), "111111", time.Minute))
	second, err := m.Issue(ctx, 2, PurposeLogin)
	require.NoError(t, err)

	if second != "111111" {
		assert.ErrorIs(t, m.Verify(ctx, 2, PurposeLogin, "111111"), ErrMismatch)
	}
	require.NoError(t, m.Verify(ctx, 2, PurposeLogin, second))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	m := NewManager(store, 10*time.Minute)
	code, err := m.Issue(ctx, 3, PurposeVerifyEmail)
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	assert.ErrorIs(t, m.Verify(ctx, 3, PurposeVerifyEmail, code), ErrNoActiveCode)
}

func TestNewManager_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewManager(NewMemoryStore(), 0).TTL())
}

func TestManager_ConcurrentVerifyConsumesOnce(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Minute)

	code, err := m.Issue(ctx, 4, PurposeLogin)
	require.NoError(t, err)

	const workers = 16
	results := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Verify(ctx, 4, PurposeLogin, code)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrNoActiveCode)
	}
	assert.Equal(t, 1, succeeded)
}

func TestManager_TooManyAttemptsDiscardsCode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, time.Minute)

	require.NoError(t, store.Set(ctx, Key(5, PurposeVerifyEmail), "123456", time.Minute))
	for i := 1; i < MaxAttempts; i++ {
		assert.ErrorIs(t, m.Verify(ctx, 5, PurposeVerifyEmail, fmt.Sprintf("%06d", i)), ErrMismatch)
	}
	assert.ErrorIs(t, m.Verify(ctx, 5, PurposeVerifyEmail, "000000"), ErrTooManyAttempts)
	assert.ErrorIs(t, m.Verify(ctx, 5, PurposeVerifyEmail, "123456"), ErrNoActiveCode)
}

func TestManager_ReissueResetsAttempts(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Minute)

	_, err := m.Issue(ctx, 6, PurposeLogin)
	require.NoError(t, err)
	for i := 1; i < MaxAttempts; i++ {
		_ = m.Verify(ctx, 6, PurposeLogin, "bad")
	}

	code, err := m.Issue(ctx, 6, PurposeLogin)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Verify(ctx, 6, PurposeLogin, "bad"), ErrMismatch)
	require.NoError(t, m.Verify(ctx, 6, PurposeLogin, code))
}

func TestMemoryStore_TakeRequiresMatchingCode(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "k", "111111", time.Minute))

	taken, err := store.Take(ctx, "k", "222222")
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = store.Take(ctx, "k", "111111")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = store.Take(ctx, "k", "111111")
	require.NoError(t, err)
	assert.False(t, taken)
}
