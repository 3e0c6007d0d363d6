// Package invoke orchestrates contract invocations: build, simulate,
// prepare, sign, submit and confirm.
package invoke

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/strkey"
	"github/chapool/go-invoker/internal/contract/confirm"
	"github/chapool/go-invoker/internal/contract/events"
	"github/chapool/go-invoker/internal/contract/fees"
	"github/chapool/go-invoker/internal/contract/remote"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/contract/scval"
	"github/chapool/go-invoker/internal/contract/signer"
	"github/chapool/go-invoker/internal/contract/txbuild"
	"github/chapool/go-invoker/internal/util"
)

type service struct {
	cfg       Config
	ledger    Ledger
	signers   signer.Service
	estimator fees.Service
	metrics   Recorder
	clock     time2.Clock
	sleep     confirm.Sleeper
}

// NewService creates the invocation orchestrator. The service keeps no
// per call state and is safe for concurrent use.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(
	cfg Config,
	ledger Ledger,
	signers signer.Service,
	estimator fees.Service,
	recorder Recorder,
	clock time2.Clock,
	opts ...Option,
) Service {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if recorder == nil {
		recorder = noopRecorder{}
	}

	s := &service{
		cfg:       cfg,
		ledger:    ledger,
		signers:   signers,
		estimator: estimator,
		metrics:   recorder,
		clock:     clock,
		sleep:     confirm.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) Invoke(ctx context.Context, contractID string, method string, params []scval.Value, opts Options) (*ContractResult, error) {
	inv := &invocation{
		service:    s,
		contractID: contractID,
		method:     method,
	}

	logger := util.LogFromContext(ctx).With().
		Str("invocation_id", uuid.New().String()).
		Str("contract_id", contractID).
		Str("method", method).
		Logger()
	ctx = util.WithLogger(ctx, logger)

	start := time.Now()
	res, err := inv.run(ctx, params, opts)
	outcome := outcomeOf(res, err)
	s.metrics.ObserveInvocation(outcome, time.Since(start))

	switch {
	case err != nil:
		logger.Warn().Err(err).Str("state", string(inv.state)).Msg("Contract invocation failed")
	case res.Success:
		logger.Info().Str("hash", res.Hash).Str("fee_charged", res.FeeCharged).Msg("Contract invocation succeeded")
	default:
		logger.Warn().Str("hash", res.Hash).Str("status", res.Status).Str("error", res.Error).Msg("Contract invocation failed on ledger")
	}

	return res, err
}

func (s *service) EstimateFees(ctx context.Context, contractID string, method string, params []scval.Value) (*fees.Estimate, error) {
	inv := &invocation{service: s, contractID: contractID, method: method}

	if err := validateCall(contractID, method); err != nil {
		return nil, inv.fail(KindInvalidRequest, err)
	}

	args, err := scval.EncodeAll(params)
	if err != nil {
		return nil, inv.fail(KindEncoding, err)
	}

	est, err := s.estimator.Estimate(ctx, txbuild.Call{ContractID: contractID, Method: method, Args: args})
	if err != nil {
		switch {
		case remote.IsTimeout(err):
			return nil, inv.remoteFailure(KindFeeEstimation, err)
		case ctx.Err() != nil:
			return nil, inv.fail(KindUnexpected, err)
		}
		return nil, inv.fail(KindFeeEstimation, err)
	}

	s.metrics.FeeEstimate(est.Source)

	return est, nil
}

func outcomeOf(res *ContractResult, err error) string {
	switch {
	case IsKind(err, KindConfirmationTimeout):
		return string(StateTimedOut)
	case err != nil:
		return "error"
	case res.Success:
		return string(StateSucceeded)
	}
	return string(StateFailed)
}

func validateCall(contractID string, method string) error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(contractID, "contractId"),
		vala.StringNotEmpty(method, "method"),
		isContractAddress(contractID, "contractId"),
	).Check()
}

func validateOptions(opts Options) error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(opts.SourceSecret, "sourceSecret"),
		isNonNegative(opts.Timeout, "timeout"),
		isAccountAddress(opts.SourceAccount, "sourceAccount"),
	).Check()
}

func isContractAddress(s string, paramName string) vala.Checker {
	return func() (bool, string) {
		if s == "" || isStrkey(strkey.VersionByteContract, s) {
			return true, ""
		}
		return false, "parameter " + paramName + " is not a contract address"
	}
}

// empty is accepted, the address is optional
func isAccountAddress(s string, paramName string) vala.Checker {
	return func() (bool, string) {
		if s == "" || isStrkey(strkey.VersionByteAccountID, s) {
			return true, ""
		}
		return false, "parameter " + paramName + " is not an account address"
	}
}

func isStrkey(version strkey.VersionByte, s string) bool {
	_, err := strkey.Decode(version, s)
	return err == nil
}

func isNonNegative(d time.Duration, paramName string) vala.Checker {
	return func() (bool, string) {
		if d >= 0 {
			return true, ""
		}
		return false, "parameter " + paramName + " must not be negative"
	}
}

// invocation is the state of a single Invoke call.
type invocation struct {
	*service

	contractID string
	method     string
	state      State
	// deadline bounds every remote call of the invocation.
	deadline time.Time
}

func (inv *invocation) transition(ctx context.Context, state State) {
	inv.state = state
	util.LogFromContext(ctx).Debug().Str("state", string(state)).Msg("Invocation state changed")
}

func (inv *invocation) run(ctx context.Context, params []scval.Value, opts Options) (*ContractResult, error) {
	if err := validateCall(inv.contractID, inv.method); err != nil {
		return nil, inv.fail(KindInvalidRequest, err)
	}
	if err := validateOptions(opts); err != nil {
		return nil, inv.fail(KindInvalidRequest, err)
	}

	cred, err := inv.signers.FromSecret(ctx, opts.SourceSecret)
	if err != nil {
		return nil, inv.fail(KindInvalidRequest, err)
	}

	args, err := scval.EncodeAll(params)
	if err != nil {
		return nil, inv.fail(KindEncoding, err)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = inv.cfg.DefaultTimeout
	}
	inv.deadline = inv.clock.Now().Add(timeout)

	// Building
	inv.transition(ctx, StateBuilding)

	source := opts.SourceAccount
	if source == "" {
		source = cred.Address()
	}

	account, err := callRemote(ctx, inv, "getAccount", func(ctx context.Context) (txbuild.Account, error) {
		return inv.ledger.GetAccount(ctx, source)
	})
	if err != nil {
		return nil, inv.remoteFailure(KindUnexpected, err)
	}

	call := txbuild.Call{ContractID: inv.contractID, Method: inv.method, Args: args}
	tx, err := txbuild.Build(account, call, inv.cfg.Network, inv.clock.Now())
	if err != nil {
		return nil, inv.fail(KindUnexpected, err)
	}

	// Simulating
	inv.transition(ctx, StateSimulating)

	sim, err := callRemote(ctx, inv, "simulate", func(ctx context.Context) (*rpc.SimulationResult, error) {
		return inv.ledger.SimulateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, inv.simulationFailure(err)
	}

	retval, err := events.DecodeResult(sim)
	if err != nil {
		return nil, inv.fail(KindDecoding, err)
	}

	// Preparing
	inv.transition(ctx, StatePreparing)

	prepared, err := callRemote(ctx, inv, "prepare", func(ctx context.Context) (*txbuild.Transaction, error) {
		return inv.ledger.PrepareTransaction(ctx, tx)
	})
	if err != nil {
		return nil, inv.remoteFailure(KindPreparationFailed, err)
	}

	// Signing
	inv.transition(ctx, StateSigning)

	signed, err := prepared.Sign(cred)
	if err != nil {
		return nil, inv.fail(KindUnexpected, err)
	}

	// Submitting
	inv.transition(ctx, StateSubmitting)

	sent, err := callRemote(ctx, inv, "send", func(ctx context.Context) (*rpc.SendResult, error) {
		return inv.ledger.SendTransaction(ctx, signed)
	})
	if err != nil {
		var rpcErr *rpc.Error
		if errors.As(err, &rpcErr) {
			return nil, inv.remoteFailure(KindSubmissionRejected, err)
		}
		return nil, inv.remoteFailure(KindUnexpected, err)
	}

	switch {
	case sent == nil:
		return nil, inv.fail(KindSubmissionIncomplete, errors.New("empty submission response"))
	case sent.Status == rpc.SendError || sent.Status == rpc.SendTryAgainLater:
		e := inv.fail(KindSubmissionRejected, errors.Errorf("submission status %s", sent.Status))
		e.Detail = events.SubmissionPayload(sent)
		return nil, e
	case sent.Hash == "":
		return nil, inv.fail(KindSubmissionIncomplete, errors.Errorf("no hash returned, status %s", sent.Status))
	}

	util.LogFromContext(ctx).Debug().Str("hash", sent.Hash).Str("status", string(sent.Status)).Msg("Transaction submitted")

	// AwaitingConfirmation
	inv.transition(ctx, StateAwaitingConfirmation)

	poller := confirm.NewPoller(inv.ledger, inv.clock, confirm.Config{
		Step:          inv.cfg.PollStep,
		MaxDelay:      inv.cfg.PollMaxDelay,
		CallTimeout:   inv.cfg.CallTimeout,
		RetryNotFound: inv.cfg.RetryNotFound,
	},
		confirm.WithSleeper(inv.sleep),
		confirm.WithAttemptHook(func(status confirm.Status) {
			inv.metrics.PollAttempt(string(status))
		}),
	)

	confirmed, err := poller.Poll(ctx, sent.Hash, inv.deadline)
	if err != nil {
		switch {
		case errors.Is(err, confirm.ErrConfirmationTimeout):
			inv.transition(ctx, StateTimedOut)
			e := inv.fail(KindConfirmationTimeout, err)
			e.Budget = timeout
			return nil, e
		case errors.Is(err, scval.ErrDecoding):
			return nil, inv.fail(KindDecoding, err)
		}
		return nil, inv.remoteFailure(KindUnexpected, err)
	}

	return inv.finish(ctx, sent.Hash, retval, confirmed), nil
}

func (inv *invocation) finish(ctx context.Context, hash string, retval scval.Value, confirmed *confirm.Result) *ContractResult {
	res := &ContractResult{
		Hash:   hash,
		Status: string(confirmed.Status),
		Result: scval.Null(),
		Events: []events.ContractEvent{},
	}

	if confirmed.Info != nil {
		res.Events = events.DecodeEvents(confirmed.Info.Events)
	}
	if confirmed.FeeCharged != nil {
		res.FeeCharged = strconv.FormatInt(*confirmed.FeeCharged, 10)
	}

	if confirmed.Status == confirm.StatusSuccess {
		inv.transition(ctx, StateSucceeded)
		res.Success = true
		res.Result = retval
		return res
	}

	inv.transition(ctx, StateFailed)
	res.Error = events.ErrorPayload(confirmed.Info, string(confirmed.Status))

	return res
}

// callRemote runs a remote call bounded by the per call budget or the time
// left until the invocation deadline, whichever is shorter, and records its
// outcome.
func callRemote[T any](ctx context.Context, inv *invocation, op string, fn func(context.Context) (T, error)) (T, error) {
	budget := inv.cfg.CallTimeout
	if remaining := inv.deadline.Sub(inv.clock.Now()); remaining < budget {
		budget = max(remaining, 0)
	}

	v, err := remote.Call(ctx, op, budget, fn)

	outcome := "ok"
	switch {
	case remote.IsTimeout(err):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	inv.metrics.RemoteCall(op, outcome)

	return v, err
}

func (inv *invocation) fail(kind Kind, err error) *Error {
	return &Error{
		Kind:       kind,
		ContractID: inv.contractID,
		Method:     inv.method,
		Err:        err,
	}
}

// remoteFailure classifies a failed remote call: timeouts win over kind.
func (inv *invocation) remoteFailure(kind Kind, err error) *Error {
	var te *remote.TimeoutError
	if errors.As(err, &te) {
		e := inv.fail(KindRemoteCallTimeout, err)
		e.Op = te.Op
		e.Budget = te.Budget
		return e
	}

	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) && kind != KindUnexpected {
		e := inv.fail(kind, err)
		e.Detail = rpcErr.Message
		return e
	}

	return inv.fail(kind, err)
}

func (inv *invocation) simulationFailure(err error) *Error {
	var simErr *rpc.SimulationError
	if errors.As(err, &simErr) {
		e := inv.fail(KindSimulationFailed, err)
		e.Detail = strings.TrimSpace(simErr.Message)
		return e
	}

	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) {
		return inv.remoteFailure(KindSimulationFailed, err)
	}

	return inv.remoteFailure(KindUnexpected, err)
}
