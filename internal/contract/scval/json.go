package scval

import (
	"encoding/hex"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/xdr"
)

type jsonEntry struct {
	Key Value `json:"key"`
	Val Value `json:"val"`
}

// MarshalJSON renders a Value for CLI output and logs. Integers are emitted
// as exact JSON numbers, bytes as hex and ledger values as base64 XDR.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		if v.i == nil {
			return []byte("0"), nil
		}
		return []byte(v.i.String()), nil
	case KindString, KindSymbol, KindAddress, KindLedgerXDR:
		return json.Marshal(v.s)
	case KindBytes:
		return json.Marshal(hex.EncodeToString(v.raw))
	case KindVec:
		if v.vec == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.vec)
	case KindMap:
		entries := make([]jsonEntry, 0, len(v.m))
		for _, e := range v.m {
			entries = append(entries, jsonEntry{Key: e.Key, Val: e.Val})
		}
		return json.Marshal(entries)
	case KindLedger:
		b64, err := xdr.MarshalBase64(v.ledger)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode ledger value")
		}
		return json.Marshal(b64)
	}

	return nil, errors.Errorf("unsupported value kind %s", v.kind)
}
