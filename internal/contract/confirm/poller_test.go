package confirm_test

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-invoker/internal/contract/confirm"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/test"
)

const testAccount = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"

type recordingSleeper struct {
	clock  *time2.MockClock
	delays []time.Duration
}

func (r *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	r.clock.Advance(d)
	return nil
}

func pending() *rpc.TransactionInfo { return &rpc.TransactionInfo{Status: rpc.StatusPending} }

func TestDelaySchedule(t *testing.T) {
	p := confirm.NewPoller(nil, time2.DefaultClock, confirm.Config{})

	want := []time.Duration{2, 4, 6, 8, 8, 8}
	for i, w := range want {
		assert.Equal(t, w*time.Second, p.Delay(i), "attempt %d", i)
	}
}

func TestPollLinearBackoff(t *testing.T) {
	clock := time2.NewMockClock(time.Unix(1700000000, 0))
	sleeper := &recordingSleeper{clock: clock}

	fee := int64(100)
	ledger := test.NewFakeLedger(t, testAccount)
	ledger.Statuses = []*rpc.TransactionInfo{
		pending(),
		pending(),
		{Status: rpc.StatusSuccess, FeeCharged: &fee},
	}

	var attempts []confirm.Status
	p := confirm.NewPoller(ledger, clock, confirm.Config{},
		confirm.WithSleeper(sleeper.Sleep),
		confirm.WithAttemptHook(func(s confirm.Status) { attempts = append(attempts, s) }),
	)

	start := clock.Now()
	res, err := p.Poll(t.Context(), "abc", start.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, confirm.StatusSuccess, res.Status)
	assert.Equal(t, 3, res.Attempts)
	require.NotNil(t, res.FeeCharged)
	assert.Equal(t, int64(100), *res.FeeCharged)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.delays)
	assert.Equal(t, 6*time.Second, clock.Now().Sub(start))
	assert.Equal(t, []confirm.Status{confirm.StatusPending, confirm.StatusPending, confirm.StatusSuccess}, attempts)
	assert.Equal(t, 3, ledger.Calls(test.OpGetTransaction))
}

func TestPollDeadlineNotExtended(t *testing.T) {
	clock := time2.NewMockClock(time.Unix(1700000000, 0))
	sleeper := &recordingSleeper{clock: clock}

	ledger := test.NewFakeLedger(t, testAccount)
	ledger.Statuses = []*rpc.TransactionInfo{pending()}

	p := confirm.NewPoller(ledger, clock, confirm.Config{}, confirm.WithSleeper(sleeper.Sleep))

	start := clock.Now()
	_, err := p.Poll(t.Context(), "abc", start.Add(15*time.Second))
	require.Error(t, err)
	assert.True(t, errors.Is(err, confirm.ErrConfirmationTimeout))

	// 2+4+6 then the last wait is cut to the remaining 3s
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second, 3 * time.Second}, sleeper.delays)
	assert.Equal(t, 15*time.Second, clock.Now().Sub(start))
	assert.Equal(t, 4, ledger.Calls(test.OpGetTransaction))
}

func TestPollExpiredDeadlineMakesNoCall(t *testing.T) {
	clock := time2.NewMockClock(time.Unix(1700000000, 0))
	ledger := test.NewFakeLedger(t, testAccount)

	p := confirm.NewPoller(ledger, clock, confirm.Config{})
	_, err := p.Poll(t.Context(), "abc", clock.Now().Add(-time.Second))
	require.Error(t, err)
	assert.True(t, errors.Is(err, confirm.ErrConfirmationTimeout))
	assert.Equal(t, 0, ledger.TotalCalls())
}

func TestPollNotFound(t *testing.T) {
	clock := time2.NewMockClock(time.Unix(1700000000, 0))

	t.Run("terminal", func(t *testing.T) {
		ledger := test.NewFakeLedger(t, testAccount)
		ledger.Statuses = []*rpc.TransactionInfo{{Status: rpc.StatusNotFound}}

		p := confirm.NewPoller(ledger, clock, confirm.Config{})
		res, err := p.Poll(t.Context(), "abc", clock.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, confirm.StatusNotFound, res.Status)
		assert.Equal(t, 1, res.Attempts)
	})

	t.Run("retried", func(t *testing.T) {
		sleeper := &recordingSleeper{clock: clock}
		ledger := test.NewFakeLedger(t, testAccount)
		ledger.Statuses = []*rpc.TransactionInfo{{Status: rpc.StatusNotFound}, {Status: rpc.StatusFailed}}

		p := confirm.NewPoller(ledger, clock, confirm.Config{RetryNotFound: true}, confirm.WithSleeper(sleeper.Sleep))
		res, err := p.Poll(t.Context(), "abc", clock.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, confirm.StatusFailed, res.Status)
		assert.Equal(t, 2, res.Attempts)
	})
}

func TestPollPropagatesRemoteError(t *testing.T) {
	clock := time2.NewMockClock(time.Unix(1700000000, 0))
	ledger := test.NewFakeLedger(t, testAccount)
	ledger.GetTxErr = errors.New("connection refused")

	p := confirm.NewPoller(ledger, clock, confirm.Config{})
	_, err := p.Poll(t.Context(), "abc", clock.Now().Add(time.Minute))
	require.Error(t, err)
	assert.False(t, errors.Is(err, confirm.ErrConfirmationTimeout))
	assert.Equal(t, 1, ledger.Calls(test.OpGetTransaction))
}

func TestPollRealClockShortDeadline(t *testing.T) {
	ledger := test.NewFakeLedger(t, testAccount)
	ledger.Statuses = []*rpc.TransactionInfo{pending()}

	p := confirm.NewPoller(ledger, time2.DefaultClock, confirm.Config{})

	start := time.Now()
	_, err := p.Poll(t.Context(), "abc", start.Add(time.Millisecond))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, confirm.ErrConfirmationTimeout))
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func TestPollSlowStatusQueryHonorsDeadline(t *testing.T) {
	ledger := test.NewFakeLedger(t, testAccount)
	ledger.Delay = time.Minute

	p := confirm.NewPoller(ledger, time2.DefaultClock, confirm.Config{})

	start := time.Now()
	_, err := p.Poll(t.Context(), "abc", start.Add(20*time.Millisecond))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, errors.Is(err, confirm.ErrConfirmationTimeout))
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := confirm.Sleep(ctx, time.Hour)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
