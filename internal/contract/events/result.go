package events

import (
	"strings"

	"github.com/stellar/go-stellar-sdk/xdr"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/contract/scval"
)

// DecodeResult decodes the preview return value of a simulation. A
// simulation without a return value yields Null.
func DecodeResult(sim *rpc.SimulationResult) (scval.Value, error) {
	if sim == nil {
		return scval.Null(), nil
	}
	b64, ok := sim.ReturnValue()
	if !ok {
		return scval.Null(), nil
	}
	return scval.DecodeBase64(b64)
}

// ErrorPayload describes why a confirmed transaction failed: the decoded
// result codes, else the raw result XDR, else the bare status.
func ErrorPayload(info *rpc.TransactionInfo, status string) string {
	if info == nil {
		return status
	}
	return payload(info.ResultXDR, status)
}

// SubmissionPayload describes a rejected submission in the same order.
func SubmissionPayload(send *rpc.SendResult) string {
	if send == nil {
		return ""
	}
	return payload(send.ErrorResultXDR, string(send.Status))
}

func payload(resultXDR, status string) string {
	if resultXDR != "" {
		var result xdr.TransactionResult
		if err := xdr.SafeUnmarshalBase64(resultXDR, &result); err == nil {
			return DescribeResult(result)
		}
		return resultXDR
	}
	return status
}

// DescribeResult renders the transaction and operation result codes, e.g.
// "TransactionResultCodeTxFailed: InvokeHostFunctionResultCodeInvokeHostFunctionTrapped".
func DescribeResult(result xdr.TransactionResult) string {
	parts := []string{result.Result.Code.String()}

	if ops, ok := result.Result.GetResults(); ok {
		for _, op := range ops {
			parts = append(parts, describeOperation(op))
		}
	}

	if pair, ok := result.Result.GetInnerResultPair(); ok {
		parts = append(parts, pair.Result.Result.Code.String())
		if ops, ok := pair.Result.Result.GetResults(); ok {
			for _, op := range ops {
				parts = append(parts, describeOperation(op))
			}
		}
	}

	return strings.Join(parts, ": ")
}

func describeOperation(op xdr.OperationResult) string {
	if op.Code != xdr.OperationResultCodeOpInner || op.Tr == nil {
		return op.Code.String()
	}
	if r, ok := op.Tr.GetInvokeHostFunctionResult(); ok {
		return r.Code.String()
	}
	return op.Tr.Type.String()
}
