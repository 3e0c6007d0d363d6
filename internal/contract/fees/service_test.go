package fees_test

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-invoker/internal/contract/fees"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/contract/scval"
	"github/chapool/go-invoker/internal/contract/txbuild"
	"github/chapool/go-invoker/internal/test"
)

const testContract = "CAAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQC526"

func newEstimator(ledger *test.FakeLedger, withStats bool) fees.Service {
	var stats fees.StatsSource
	if withStats {
		stats = ledger
	}

	return fees.NewService(
		ledger,
		stats,
		txbuild.Network{Passphrase: network.TestNetworkPassphrase, BaseFee: 100},
		time2.NewMockClock(time.Unix(1700000000, 0)),
		time.Second,
	)
}

func testCall() txbuild.Call {
	return txbuild.Call{ContractID: testContract, Method: "swap"}
}

func TestEstimatePrefersSorobanBucket(t *testing.T) {
	ledger := test.NewFakeLedger(t, fees.SimulationAccount)
	ledger.Simulation = test.SimulationReturning(t, scval.Null(), 5000)
	ledger.FeeStats = json.RawMessage(`{
		"sorobanInclusionFee": {"max": "900", "p95": "300", "mode": "100", "min": "100"},
		"inclusionFee": {"p95": "250"}
	}`)

	est, err := newEstimator(ledger, true).Estimate(t.Context(), testCall())
	require.NoError(t, err)

	assert.Equal(t, "300", est.InclusionFee.String())
	assert.Equal(t, "5000", est.ResourceFee.String())
	assert.Equal(t, "5300", est.TotalFee.String())
	assert.Equal(t, fees.SourceSoroban, est.Source)
	assert.Equal(t, 1, ledger.Calls(test.OpSimulate))
	assert.Equal(t, 1, ledger.Calls(test.OpGetFeeStats))
}

func TestEstimateUsesGenericBucket(t *testing.T) {
	ledger := test.NewFakeLedger(t, fees.SimulationAccount)
	ledger.FeeStats = json.RawMessage(`{"inclusionFee": {"p95": "250", "max": "1000"}}`)

	est, err := newEstimator(ledger, true).Estimate(t.Context(), testCall())
	require.NoError(t, err)

	assert.Equal(t, "250", est.InclusionFee.String())
	assert.Equal(t, fees.SourceGeneric, est.Source)
	assert.GreaterOrEqual(t, est.InclusionFee.Sign(), 0)
	assert.GreaterOrEqual(t, est.ResourceFee.Sign(), 0)
	assert.Equal(t, 0, new(big.Int).Add(est.InclusionFee, est.ResourceFee).Cmp(est.TotalFee))
}

func TestEstimateFallsBackToBaseFee(t *testing.T) {
	for name, stats := range map[string]json.RawMessage{
		"empty object": json.RawMessage(`{}`),
		"nil":          nil,
		"garbage":      json.RawMessage(`not json`),
	} {
		t.Run(name, func(t *testing.T) {
			ledger := test.NewFakeLedger(t, fees.SimulationAccount)
			ledger.FeeStats = stats

			est, err := newEstimator(ledger, true).Estimate(t.Context(), testCall())
			require.NoError(t, err)
			assert.Equal(t, "100", est.InclusionFee.String())
			assert.Equal(t, fees.SourceBaseFee, est.Source)
		})
	}
}

func TestEstimateWithoutStatsSource(t *testing.T) {
	ledger := test.NewFakeLedger(t, fees.SimulationAccount)

	est, err := newEstimator(ledger, false).Estimate(t.Context(), testCall())
	require.NoError(t, err)
	assert.Equal(t, "100", est.InclusionFee.String())
	assert.Equal(t, "1100", est.TotalFee.String())
	assert.Equal(t, 0, ledger.Calls(test.OpGetFeeStats))
}

func TestEstimateStatsErrorIsNotFatal(t *testing.T) {
	ledger := test.NewFakeLedger(t, fees.SimulationAccount)
	ledger.FeeStatsErr = errors.New("method not found")

	est, err := newEstimator(ledger, true).Estimate(t.Context(), testCall())
	require.NoError(t, err)
	assert.Equal(t, fees.SourceBaseFee, est.Source)
}

func TestEstimateSimulationFailure(t *testing.T) {
	ledger := test.NewFakeLedger(t, fees.SimulationAccount)
	ledger.SimulateErr = &rpc.SimulationError{Message: "HostError: missing contract"}

	_, err := newEstimator(ledger, true).Estimate(t.Context(), testCall())
	require.Error(t, err)
	assert.True(t, errors.Is(err, fees.ErrEstimation))
	assert.Equal(t, "fee estimation failed: HostError: missing contract", err.Error())
	assert.Equal(t, 0, ledger.Calls(test.OpGetFeeStats))
}

func TestSelectInclusionFeeOrder(t *testing.T) {
	tests := []struct {
		raw    string
		fee    string
		source string
	}{
		{`{"sorobanInclusionFee": {"max": "900", "mode": "200"}}`, "900", fees.SourceSoroban},
		{`{"sorobanInclusionFee": {"mode": "200", "min": "100"}}`, "200", fees.SourceSoroban},
		{`{"sorobanInclusionFee": {"min": "100"}}`, "100", fees.SourceSoroban},
		{`{"sorobanInclusionFee": {}, "inclusionFee": {"min": "150"}}`, "150", fees.SourceGeneric},
		{`{"feeCharged": {"p95": "400"}}`, "400", fees.SourceFeeCharged},
		{`{"fee_charged": {"max": "410"}}`, "410", fees.SourceFeeCharged},
		{`{"inclusionFee": {"p95": 123}}`, "123", fees.SourceGeneric},
		{`{"inclusionFee": {"p95": "abc", "max": "77"}}`, "77", fees.SourceGeneric},
	}

	for _, tt := range tests {
		fee, source, ok := fees.SelectInclusionFee(json.RawMessage(tt.raw))
		require.True(t, ok, tt.raw)
		assert.Equal(t, tt.fee, fee.String(), tt.raw)
		assert.Equal(t, tt.source, source, tt.raw)
	}

	_, _, ok := fees.SelectInclusionFee(json.RawMessage(`{"inclusionFee": {"p95": "-5"}}`))
	assert.False(t, ok)
}
