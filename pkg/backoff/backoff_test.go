package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemote = errors.New("remote call failed")

func TestDoEventuallySucceeds(t *testing.T) {
	policy := NewPolicy(3, time.Millisecond)

	attempts := 0
	err := policy.Do(context.Background(), "embed", func() error {
		attempts++
		if attempts < 3 {
			return errRemote
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustsAttempts(t *testing.T) {
	policy := NewPolicy(3, time.Millisecond)

	attempts := 0
	err := policy.Do(context.Background(), "embed", func() error {
		attempts++
		return errRemote
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	policy := NewPolicy(10, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, "upsert", func() error {
		attempts++
		return errRemote
	})

	require.Error(t, err)
	assert.Less(t, attempts, 10)
}

func TestNewPolicyClampsAttempts(t *testing.T) {
	policy := NewPolicy(0, time.Millisecond)
	assert.Equal(t, uint(1), policy.MaxAttempts)
}
