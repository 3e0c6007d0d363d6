package test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stellar/go-stellar-sdk/xdr"
	"github.com/stretchr/testify/require"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/contract/scval"
	"github/chapool/go-invoker/internal/contract/txbuild"
)

// Remote operation names counted by FakeLedger.
const (
	OpGetAccount     = "getAccount"
	OpSimulate       = "simulate"
	OpPrepare        = "prepare"
	OpSend           = "send"
	OpGetTransaction = "getTransaction"
	OpGetFeeStats    = "getFeeStats"
)

// FakeLedger is an in-memory ledger RPC endpoint that counts every call.
// Configure the exported fields before use.
type FakeLedger struct {
	Account     txbuild.Account
	AccountErr  error
	Simulation  *rpc.SimulationResult
	SimulateErr error
	PrepareErr  error
	Send        *rpc.SendResult
	SendErr     error
	// Statuses are returned by successive GetTransaction calls, the last
	// one repeats.
	Statuses    []*rpc.TransactionInfo
	GetTxErr    error
	FeeStats    json.RawMessage
	FeeStatsErr error

	// Delay blocks every call for the given duration or until its context
	// is done, whichever comes first.
	Delay time.Duration
	// OnGetTransaction runs before each GetTransaction call.
	OnGetTransaction func(attempt int)

	mu        sync.Mutex
	calls     map[string]int
	submitted []*txbuild.Transaction
}

// NewFakeLedger returns a ledger where account is funded and every
// transaction succeeds.
func NewFakeLedger(t *testing.T, account string) *FakeLedger {
	t.Helper()

	return &FakeLedger{
		Account:    txbuild.Account{Address: account, Sequence: 100},
		Simulation: SimulationReturning(t, scval.Null(), 1000),
		Send:       &rpc.SendResult{Hash: "deadbeef", Status: rpc.SendPending},
		Statuses:   []*rpc.TransactionInfo{{Status: rpc.StatusSuccess}},
		calls:      map[string]int{},
	}
}

// SimulationReturning builds a successful simulation previewing retval.
func SimulationReturning(t *testing.T, retval scval.Value, minResourceFee int64) *rpc.SimulationResult {
	t.Helper()

	sv, err := scval.Encode(retval)
	require.NoError(t, err)
	ret, err := xdr.MarshalBase64(sv)
	require.NoError(t, err)

	data, err := xdr.MarshalBase64(xdr.SorobanTransactionData{ResourceFee: xdr.Int64(minResourceFee)})
	require.NoError(t, err)

	return &rpc.SimulationResult{
		TransactionData: data,
		MinResourceFee:  minResourceFee,
		Results:         []rpc.SimulationHostFunctionResult{{XDR: ret}},
		LatestLedger:    1,
	}
}

// Calls returns how often op was called.
func (f *FakeLedger) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[op]
}

// TotalCalls returns the number of calls over all operations.
func (f *FakeLedger) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// Submitted returns the transactions passed to SendTransaction.
func (f *FakeLedger) Submitted() []*txbuild.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]*txbuild.Transaction(nil), f.submitted...)
}

func (f *FakeLedger) record(ctx context.Context, op string) (int, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
	n := f.calls[op]
	f.mu.Unlock()

	if f.Delay > 0 {
		timer := time.NewTimer(f.Delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return n, ctx.Err()
		}
	}

	return n, nil
}

func (f *FakeLedger) GetAccount(ctx context.Context, address string) (txbuild.Account, error) {
	if _, err := f.record(ctx, OpGetAccount); err != nil {
		return txbuild.Account{}, err
	}
	if f.AccountErr != nil {
		return txbuild.Account{}, f.AccountErr
	}

	account := f.Account
	account.Address = address
	return account, nil
}

func (f *FakeLedger) SimulateTransaction(ctx context.Context, _ *txbuild.Transaction) (*rpc.SimulationResult, error) {
	if _, err := f.record(ctx, OpSimulate); err != nil {
		return nil, err
	}
	if f.SimulateErr != nil {
		return nil, f.SimulateErr
	}
	return f.Simulation, nil
}

func (f *FakeLedger) PrepareTransaction(ctx context.Context, tx *txbuild.Transaction) (*txbuild.Transaction, error) {
	if _, err := f.record(ctx, OpPrepare); err != nil {
		return nil, err
	}
	if f.PrepareErr != nil {
		return nil, f.PrepareErr
	}

	pf, err := f.Simulation.Preflight()
	if err != nil {
		return nil, err
	}
	return txbuild.Assemble(tx, pf)
}

func (f *FakeLedger) SendTransaction(ctx context.Context, tx *txbuild.Transaction) (*rpc.SendResult, error) {
	if _, err := f.record(ctx, OpSend); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.submitted = append(f.submitted, tx)
	f.mu.Unlock()

	if f.SendErr != nil {
		return nil, f.SendErr
	}
	return f.Send, nil
}

func (f *FakeLedger) GetTransaction(ctx context.Context, _ string) (*rpc.TransactionInfo, error) {
	f.mu.Lock()
	attempt := f.calls[OpGetTransaction]
	f.mu.Unlock()

	if f.OnGetTransaction != nil {
		f.OnGetTransaction(attempt)
	}

	n, err := f.record(ctx, OpGetTransaction)
	if err != nil {
		return nil, err
	}
	if f.GetTxErr != nil {
		return nil, f.GetTxErr
	}
	if len(f.Statuses) == 0 {
		return &rpc.TransactionInfo{Status: rpc.StatusPending}, nil
	}

	idx := n - 1
	if idx >= len(f.Statuses) {
		idx = len(f.Statuses) - 1
	}
	return f.Statuses[idx], nil
}

func (f *FakeLedger) GetFeeStats(ctx context.Context) (json.RawMessage, error) {
	if _, err := f.record(ctx, OpGetFeeStats); err != nil {
		return nil, err
	}
	if f.FeeStatsErr != nil {
		return nil, f.FeeStatsErr
	}
	return f.FeeStats, nil
}
