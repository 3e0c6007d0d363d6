// Package confirm polls submitted transactions until they reach a terminal
// status or a deadline passes.
package confirm

import (
	"context"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github/chapool/go-invoker/internal/contract/remote"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/util"
)

type Poller struct {
	source    StatusSource
	clock     time2.Clock
	sleep     Sleeper
	cfg       Config
	onAttempt func(Status)
}

type Option func(*Poller)

// WithSleeper replaces the timer based sleep, e.g. to drive a mock clock.
func WithSleeper(s Sleeper) Option {
	return func(p *Poller) { p.sleep = s }
}

// WithAttemptHook registers a callback run after every status query.
func WithAttemptHook(fn func(Status)) Option {
	return func(p *Poller) { p.onAttempt = fn }
}

func NewPoller(source StatusSource, clock time2.Clock, cfg Config, opts ...Option) *Poller {
	p := &Poller{
		source: source,
		clock:  clock,
		sleep:  Sleep,
		cfg:    cfg.withDefaults(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Delay returns the wait after the given zero-based attempt:
// min(step*(attempt+1), max).
func (p *Poller) Delay(attempt int) time.Duration {
	d := p.cfg.Step * time.Duration(attempt+1)
	if d > p.cfg.MaxDelay || d <= 0 {
		return p.cfg.MaxDelay
	}
	return d
}

// Poll queries hash until it is terminal. The deadline is fixed by the
// caller and never extended.
func (p *Poller) Poll(ctx context.Context, hash string, deadline time.Time) (*Result, error) {
	log := util.LogFromContext(ctx).With().Str("hash", hash).Logger()

	for attempt := 0; ; attempt++ {
		remaining := deadline.Sub(p.clock.Now())
		if remaining <= 0 {
			return nil, p.timeout(hash, attempt)
		}

		budget := p.cfg.CallTimeout
		if remaining < budget {
			budget = remaining
		}

		info, err := remote.Call(ctx, "getTransaction", budget, func(ctx context.Context) (*rpc.TransactionInfo, error) {
			return p.source.GetTransaction(ctx, hash)
		})
		if err != nil {
			if remote.IsTimeout(err) && budget < p.cfg.CallTimeout {
				return nil, p.timeout(hash, attempt+1)
			}
			return nil, err
		}

		status := p.classify(info)
		if p.onAttempt != nil {
			p.onAttempt(status)
		}

		log.Debug().Int("attempt", attempt).Str("status", string(status)).Msg("Polled transaction status")

		if status != StatusPending {
			res := &Result{Status: status, Info: info, Attempts: attempt + 1}
			if info != nil {
				res.FeeCharged = info.FeeCharged
			}
			return res, nil
		}

		delay := p.Delay(attempt)
		remaining = deadline.Sub(p.clock.Now())
		if remaining <= 0 {
			return nil, p.timeout(hash, attempt+1)
		}
		if delay > remaining {
			delay = remaining
		}

		if err := p.sleep(ctx, delay); err != nil {
			return nil, errors.Wrap(err, "confirmation wait interrupted")
		}
	}
}

func (p *Poller) classify(info *rpc.TransactionInfo) Status {
	if info == nil {
		return StatusPending
	}

	switch info.Status {
	case rpc.StatusSuccess:
		return StatusSuccess
	case rpc.StatusFailed:
		return StatusFailed
	case rpc.StatusNotFound:
		if p.cfg.RetryNotFound {
			return StatusPending
		}
		return StatusNotFound
	}

	return StatusPending
}

func (p *Poller) timeout(hash string, attempts int) error {
	return errors.Wrapf(ErrConfirmationTimeout, "transaction %s still pending after %d attempts", hash, attempts)
}

// Sleep waits for d using a timer that is released on return.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
