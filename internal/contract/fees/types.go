package fees

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/contract/txbuild"
)

// SimulationAccount is the placeholder source used for fee simulations.
// Transactions built against it are never submitted.
const SimulationAccount = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"

// Sources of the inclusion fee part of an Estimate.
const (
	SourceSoroban    = "soroban"
	SourceGeneric    = "generic"
	SourceFeeCharged = "fee_charged"
	SourceBaseFee    = "base_fee"
)

// ErrEstimation is matched by every *EstimationError.
var ErrEstimation = errors.New("fee estimation error")

// EstimationError wraps the simulation failure that prevented an estimate.
type EstimationError struct {
	Err error
}

func (e *EstimationError) Error() string {
	var simErr *rpc.SimulationError
	if errors.As(e.Err, &simErr) {
		return "fee estimation failed: " + simErr.Message
	}
	return "fee estimation failed: " + e.Err.Error()
}

func (e *EstimationError) Unwrap() error { return e.Err }

func (e *EstimationError) Is(target error) bool { return target == ErrEstimation }

// Estimate is a fee estimate in stroops.
type Estimate struct {
	InclusionFee *big.Int `json:"inclusionFee"`
	ResourceFee  *big.Int `json:"resourceFee"`
	TotalFee     *big.Int `json:"totalFee"`
	Source       string   `json:"source"`
}

// Simulator runs transaction simulations.
type Simulator interface {
	SimulateTransaction(ctx context.Context, tx *txbuild.Transaction) (*rpc.SimulationResult, error)
}

// StatsSource reports network-wide fee statistics as raw JSON.
type StatsSource interface {
	GetFeeStats(ctx context.Context) (json.RawMessage, error)
}

// Service estimates the fee of a contract call.
type Service interface {
	Estimate(ctx context.Context, call txbuild.Call) (*Estimate, error)
}
