package confirm

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github/chapool/go-invoker/internal/contract/rpc"
)

const (
	DefaultStep     = 2 * time.Second
	DefaultMaxDelay = 8 * time.Second
)

// ErrConfirmationTimeout is returned once the confirmation deadline passed
// while the transaction was still pending.
var ErrConfirmationTimeout = errors.New("confirmation timeout")

// Status is the confirmation state of a submitted transaction.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusNotFound Status = "NOT_FOUND"
)

// Result is the outcome of polling a transaction to a terminal state.
type Result struct {
	Status     Status
	FeeCharged *int64
	Info       *rpc.TransactionInfo
	Attempts   int
}

// StatusSource reports the status of a submitted transaction.
type StatusSource interface {
	GetTransaction(ctx context.Context, hash string) (*rpc.TransactionInfo, error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Config struct {
	Step        time.Duration // delay grows linearly by Step per attempt
	MaxDelay    time.Duration // upper bound of a single delay
	CallTimeout time.Duration // budget of a single status query
	// RetryNotFound keeps polling while the endpoint reports NOT_FOUND.
	RetryNotFound bool
}

func (c Config) withDefaults() Config {
	if c.Step <= 0 {
		c.Step = DefaultStep
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.MaxDelay < c.Step {
		c.MaxDelay = c.Step
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = rpc.DefaultTimeout
	}
	return c
}
