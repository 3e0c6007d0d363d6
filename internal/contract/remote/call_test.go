package remote_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-invoker/internal/contract/remote"
)

func TestCallReturnsResult(t *testing.T) {
	v, err := remote.Call(t.Context(), "getAccount", time.Second, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCallPropagatesError(t *testing.T) {
	boom := errors.New("boom")

	_, err := remote.Call(t.Context(), "simulate", time.Second, func(context.Context) (string, error) {
		return "", boom
	})
	require.Error(t, err)
	assert.Equal(t, boom, err)
	assert.False(t, remote.IsTimeout(err))
}

func TestCallTimesOutWithoutWaitingForCall(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	_, err := remote.Call(t.Context(), "submit", 10*time.Millisecond, func(context.Context) (int, error) {
		// ignores its context on purpose
		<-release
		return 1, nil
	})
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, remote.IsTimeout(err))
	assert.Less(t, elapsed, time.Second)

	var te *remote.TimeoutError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "submit", te.Op)
	assert.Equal(t, 10*time.Millisecond, te.Budget)
	assert.Equal(t, "submit timed out after 10ms", te.Error())
}

func TestCallCancelsContextOnTimeout(t *testing.T) {
	_, err := remote.Call(t.Context(), "poll", 5*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.Error(t, err)
	assert.True(t, remote.IsTimeout(err))
}

func TestCallNonPositiveBudget(t *testing.T) {
	called := false
	_, err := remote.Call(t.Context(), "poll", 0, func(context.Context) (int, error) {
		called = true
		return 0, nil
	})
	require.Error(t, err)
	assert.True(t, remote.IsTimeout(err))
	assert.False(t, called)
}

func TestCallParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := remote.Call(ctx, "poll", time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.Error(t, err)
	assert.False(t, remote.IsTimeout(err))
	assert.True(t, errors.Is(err, context.Canceled))
}
