package locks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	release, err := l.Obtain(ctx, "import:CSE:3", time.Minute)
	require.NoError(t, err)

	_, err = l.Obtain(ctx, "import:CSE:3", time.Minute)
	assert.ErrorIs(t, err, ErrNotObtained)

	other, err := l.Obtain(ctx, "import:ECE:3", time.Minute)
	require.NoError(t, err)
	other(ctx)

	release(ctx)
	again, err := l.Obtain(ctx, "import:CSE:3", time.Minute)
	require.NoError(t, err)
	again(ctx)
}

func TestLocalLocker_ExpiredHolder(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLocker()

	_, err := l.Obtain(ctx, "k", -time.Second)
	require.NoError(t, err)

	release, err := l.Obtain(ctx, "k", time.Minute)
	require.NoError(t, err)
	release(ctx)
}
