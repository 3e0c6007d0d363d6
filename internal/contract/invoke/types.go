package invoke

import (
	"context"
	"time"

	"github/chapool/go-invoker/internal/contract/confirm"
	"github/chapool/go-invoker/internal/contract/events"
	"github/chapool/go-invoker/internal/contract/fees"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/contract/scval"
	"github/chapool/go-invoker/internal/contract/txbuild"
)

const (
	DefaultTimeout     = 60 * time.Second
	DefaultCallTimeout = 30 * time.Second
)

// State is a step of the invocation pipeline.
type State string

const (
	StateBuilding             State = "building"
	StateSimulating           State = "simulating"
	StatePreparing            State = "preparing"
	StateSigning              State = "signing"
	StateSubmitting           State = "submitting"
	StateAwaitingConfirmation State = "awaiting_confirmation"
	StateSucceeded            State = "succeeded"
	StateFailed               State = "failed"
	StateTimedOut             State = "timed_out"
)

// Options are the per call settings of Invoke.
type Options struct {
	// SourceSecret is the S... seed that signs the transaction. Required.
	SourceSecret string
	// SourceAccount overrides the account derived from SourceSecret.
	SourceAccount string
	// Timeout bounds confirmation. Zero selects Config.DefaultTimeout.
	Timeout time.Duration
}

// ContractResult is the outcome of a confirmed invocation.
type ContractResult struct {
	Success    bool                   `json:"success"`
	Hash       string                 `json:"hash,omitempty"`
	Status     string                 `json:"status,omitempty"`
	Result     scval.Value            `json:"result"`
	Events     []events.ContractEvent `json:"events"`
	FeeCharged string                 `json:"feeCharged,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// Ledger is the RPC endpoint used by the orchestrator.
type Ledger interface {
	GetAccount(ctx context.Context, address string) (txbuild.Account, error)
	SimulateTransaction(ctx context.Context, tx *txbuild.Transaction) (*rpc.SimulationResult, error)
	PrepareTransaction(ctx context.Context, tx *txbuild.Transaction) (*txbuild.Transaction, error)
	SendTransaction(ctx context.Context, tx *txbuild.Transaction) (*rpc.SendResult, error)
	GetTransaction(ctx context.Context, hash string) (*rpc.TransactionInfo, error)
}

// Recorder receives invocation metrics.
type Recorder interface {
	ObserveInvocation(outcome string, d time.Duration)
	RemoteCall(operation string, outcome string)
	PollAttempt(status string)
	FeeEstimate(source string)
}

type Config struct {
	Network        txbuild.Network
	DefaultTimeout time.Duration
	CallTimeout    time.Duration
	PollStep       time.Duration
	PollMaxDelay   time.Duration
	RetryNotFound  bool
}

// Service is the entry point for contract calls.
type Service interface {
	// Invoke calls method on contractID and waits for confirmation
	Invoke(ctx context.Context, contractID string, method string, params []scval.Value, opts Options) (*ContractResult, error)

	// EstimateFees estimates the fee of calling method on contractID
	EstimateFees(ctx context.Context, contractID string, method string, params []scval.Value) (*fees.Estimate, error)
}

type Option func(*service)

// WithSleeper replaces the wait between confirmation polls.
func WithSleeper(s confirm.Sleeper) Option {
	return func(svc *service) { svc.sleep = s }
}

type noopRecorder struct{}

func (noopRecorder) ObserveInvocation(string, time.Duration) {}
func (noopRecorder) RemoteCall(string, string)               {}
func (noopRecorder) PollAttempt(string)                      {}
func (noopRecorder) FeeEstimate(string)                      {}
