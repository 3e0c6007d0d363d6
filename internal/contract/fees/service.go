// Package fees estimates contract call fees from a simulation and network
// fee statistics.
package fees

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github/chapool/go-invoker/internal/contract/remote"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/contract/txbuild"
	"github/chapool/go-invoker/internal/util"
)

type bucket struct {
	path   string
	source string
}

// buckets and stats are tried in order, the first usable value wins.
var (
	buckets = []bucket{
		{"sorobanInclusionFee", SourceSoroban},
		{"inclusionFee", SourceGeneric},
		{"feeCharged", SourceFeeCharged},
		{"fee_charged", SourceFeeCharged},
	}
	stats = []string{"p95", "max", "mode", "min"}
)

type service struct {
	simulator   Simulator
	stats       StatsSource
	network     txbuild.Network
	clock       time2.Clock
	callTimeout time.Duration
}

// NewService creates a fee estimator. stats may be nil, estimates then use
// the network base fee as inclusion fee.
//
//nolint:ireturn
func NewService(simulator Simulator, stats StatsSource, network txbuild.Network, clock time2.Clock, callTimeout time.Duration) Service {
	return &service{
		simulator:   simulator,
		stats:       stats,
		network:     network,
		clock:       clock,
		callTimeout: callTimeout,
	}
}

func (s *service) Estimate(ctx context.Context, call txbuild.Call) (*Estimate, error) {
	log := util.LogFromContext(ctx)

	tx, err := txbuild.Build(txbuild.Account{Address: SimulationAccount}, call, s.network, s.clock.Now())
	if err != nil {
		return nil, &EstimationError{Err: err}
	}

	sim, err := remote.Call(ctx, "simulate", s.callTimeout, func(ctx context.Context) (*rpc.SimulationResult, error) {
		return s.simulator.SimulateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, &EstimationError{Err: err}
	}

	resource := sim.ResourceFee()
	if resource.Sign() < 0 {
		return nil, &EstimationError{Err: errors.Errorf("negative resource fee %s", resource)}
	}

	inclusion, source := s.inclusionFee(ctx)

	log.Debug().
		Str("inclusion_fee", inclusion.String()).
		Str("resource_fee", resource.String()).
		Str("source", source).
		Msg("Estimated contract call fee")

	return &Estimate{
		InclusionFee: inclusion,
		ResourceFee:  resource,
		TotalFee:     new(big.Int).Add(inclusion, resource),
		Source:       source,
	}, nil
}

func (s *service) inclusionFee(ctx context.Context) (*big.Int, string) {
	log := util.LogFromContext(ctx)
	fallback := big.NewInt(s.network.BaseFee)

	if s.stats == nil {
		return fallback, SourceBaseFee
	}

	raw, err := remote.Call(ctx, "getFeeStats", s.callTimeout, s.stats.GetFeeStats)
	if err != nil {
		log.Warn().Err(err).Msg("Fee stats unavailable, using base fee")
		return fallback, SourceBaseFee
	}

	if fee, source, ok := SelectInclusionFee(raw); ok {
		return fee, source
	}

	return fallback, SourceBaseFee
}

// SelectInclusionFee picks the inclusion fee from a getFeeStats response:
// the soroban bucket before the generic one before a bare feeCharged object,
// and within a bucket p95, then max, then mode, then min.
func SelectInclusionFee(raw json.RawMessage) (*big.Int, string, bool) {
	if !gjson.ValidBytes(raw) {
		return nil, "", false
	}
	doc := gjson.ParseBytes(raw)

	for _, b := range buckets {
		node := doc.Get(b.path)
		if !node.IsObject() {
			continue
		}
		for _, stat := range stats {
			v := node.Get(stat)
			if !v.Exists() {
				continue
			}
			fee, ok := new(big.Int).SetString(v.String(), 10)
			if !ok || fee.Sign() < 0 {
				continue
			}
			return fee, b.source, true
		}
	}

	return nil, "", false
}
