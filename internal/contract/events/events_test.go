package events_test

import (
	"encoding/json"
	"testing"

	"github.com/stellar/go-stellar-sdk/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-invoker/internal/contract/events"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/contract/scval"
	"github/chapool/go-invoker/internal/test"
)

const testContract = "CAAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQC526"

func encoded(t *testing.T, v scval.Value) string {
	t.Helper()

	sv, err := scval.Encode(v)
	require.NoError(t, err)
	b64, err := xdr.MarshalBase64(sv)
	require.NoError(t, err)
	return b64
}

func TestDecodeEvents(t *testing.T) {
	raw := []json.RawMessage{
		json.RawMessage(`{"type":"contract","contractId":"` + testContract + `","topics":["` +
			encoded(t, scval.Symbol("transfer")) + `"],"data":"` + encoded(t, scval.Int64(7)) + `"}`),
		json.RawMessage(`{"data":"not xdr"}`),
		json.RawMessage(`{"type":"system","topics":[],"value":{"amount":5}}`),
		json.RawMessage(`{"type":"diagnostic","topics":"nope"}`),
	}

	evs := events.DecodeEvents(raw)
	require.Len(t, evs, 4)

	assert.Equal(t, "contract", evs[0].Type)
	assert.Equal(t, testContract, evs[0].ContractID)
	require.Len(t, evs[0].Topics, 1)
	assert.True(t, scval.Symbol("transfer").Equal(evs[0].Topics[0]))
	assert.True(t, scval.Int64(7).Equal(evs[0].Data))

	assert.Equal(t, events.UnknownType, evs[1].Type)
	assert.Nil(t, evs[1].Topics)
	assert.Equal(t, scval.KindString, evs[1].Data.Kind())
	assert.Equal(t, "not xdr", evs[1].Data.Str())

	assert.NotNil(t, evs[2].Topics)
	assert.Empty(t, evs[2].Topics)
	assert.Equal(t, scval.KindMap, evs[2].Data.Kind())

	assert.Nil(t, evs[3].Topics)
	assert.True(t, evs[3].Data.IsNull())
}

func TestDecodeEventsEmpty(t *testing.T) {
	assert.Empty(t, events.DecodeEvents(nil))

	ev := events.DecodeEvent(json.RawMessage(`{{`))
	assert.Equal(t, events.UnknownType, ev.Type)
}

func TestContractEventJSONTopicsAsymmetry(t *testing.T) {
	absent, err := json.Marshal(events.ContractEvent{Type: "contract", Data: scval.Int64(1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"contract","data":1}`, string(absent))

	empty, err := json.Marshal(events.ContractEvent{Type: "contract", Topics: []scval.Value{}, Data: scval.Int64(1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"contract","topics":[],"data":1}`, string(empty))
}

func TestDecodeEventsFromRPCConversion(t *testing.T) {
	topic := xdr.ScSymbol("mint")
	amount := xdr.Int64(9)
	var cid xdr.ContractId
	cid[31] = 3

	b64, err := xdr.MarshalBase64(xdr.ContractEvent{
		ContractId: &cid,
		Type:       xdr.ContractEventTypeContract,
		Body: xdr.ContractEventBody{V0: &xdr.ContractEventV0{
			Topics: []xdr.ScVal{{Type: xdr.ScValTypeScvSymbol, Sym: &topic}},
			Data:   xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &amount},
		}},
	})
	require.NoError(t, err)

	raw, err := rpc.ContractEventJSON(b64)
	require.NoError(t, err)

	ev := events.DecodeEvent(raw)
	assert.Equal(t, "contract", ev.Type)
	assert.NotEmpty(t, ev.ContractID)
	require.Len(t, ev.Topics, 1)
	assert.Equal(t, "mint", ev.Topics[0].Str())
	n, ok := ev.Data.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(9), n)
}

func TestDecodeResult(t *testing.T) {
	sim := test.SimulationReturning(t, scval.Int64(42), 10)

	v, err := events.DecodeResult(sim)
	require.NoError(t, err)
	n, ok := v.Int64()
	require.True(t, ok)
	assert.Equal(t, int64(42), n)

	v, err = events.DecodeResult(&rpc.SimulationResult{})
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	_, err = events.DecodeResult(&rpc.SimulationResult{Results: []rpc.SimulationHostFunctionResult{{XDR: "AAAA!"}}})
	require.Error(t, err)
}

func TestErrorPayloadPriority(t *testing.T) {
	structured, err := xdr.MarshalBase64(xdr.TransactionResult{
		FeeCharged: 100,
		Result: xdr.TransactionResultResult{
			Code: xdr.TransactionResultCodeTxFailed,
			Results: &[]xdr.OperationResult{{
				Code: xdr.OperationResultCodeOpInner,
				Tr: &xdr.OperationResultTr{
					Type: xdr.OperationTypeInvokeHostFunction,
					InvokeHostFunctionResult: &xdr.InvokeHostFunctionResult{
						Code: xdr.InvokeHostFunctionResultCodeInvokeHostFunctionTrapped,
					},
				},
			}},
		},
	})
	require.NoError(t, err)

	payload := events.ErrorPayload(&rpc.TransactionInfo{Status: rpc.StatusFailed, ResultXDR: structured}, "FAILED")
	assert.Equal(t, "TransactionResultCodeTxFailed: InvokeHostFunctionResultCodeInvokeHostFunctionTrapped", payload)

	payload = events.ErrorPayload(&rpc.TransactionInfo{Status: rpc.StatusFailed, ResultXDR: "opaque-blob"}, "FAILED")
	assert.Equal(t, "opaque-blob", payload)

	payload = events.ErrorPayload(&rpc.TransactionInfo{Status: rpc.StatusFailed}, "FAILED")
	assert.Equal(t, "FAILED", payload)

	assert.Equal(t, "NOT_FOUND", events.ErrorPayload(nil, "NOT_FOUND"))
}

func TestSubmissionPayload(t *testing.T) {
	assert.Equal(t, "ERROR", events.SubmissionPayload(&rpc.SendResult{Status: rpc.SendError}))
	assert.Equal(t, "raw", events.SubmissionPayload(&rpc.SendResult{Status: rpc.SendError, ErrorResultXDR: "raw"}))
	assert.Empty(t, events.SubmissionPayload(nil))
}
