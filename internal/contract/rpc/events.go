package rpc

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/strkey"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github/chapool/go-invoker/internal/contract/scval"
)

type eventJSON struct {
	Type       string   `json:"type,omitempty"`
	ContractID string   `json:"contractId,omitempty"`
	Topics     []string `json:"topics"`
	Data       string   `json:"data,omitempty"`
}

var eventTypes = map[xdr.ContractEventType]string{
	xdr.ContractEventTypeContract:   "contract",
	xdr.ContractEventTypeSystem:     "system",
	xdr.ContractEventTypeDiagnostic: "diagnostic",
}

// ContractEventJSON converts a base64 ContractEvent into its JSON object form.
func ContractEventJSON(b64 string) (json.RawMessage, error) {
	var ev xdr.ContractEvent
	if err := xdr.SafeUnmarshalBase64(b64, &ev); err != nil {
		return nil, errors.Wrapf(scval.ErrDecoding, "malformed contract event: %v", err)
	}

	out := eventJSON{Type: eventTypes[ev.Type], Topics: []string{}}

	if ev.ContractId != nil {
		id, err := strkey.Encode(strkey.VersionByteContract, ev.ContractId[:])
		if err != nil {
			return nil, errors.Wrap(err, "encode event contract id")
		}
		out.ContractID = id
	}

	if ev.Body.V0 != nil {
		for _, topic := range ev.Body.V0.Topics {
			t, err := xdr.MarshalBase64(topic)
			if err != nil {
				return nil, errors.Wrap(err, "encode event topic")
			}
			out.Topics = append(out.Topics, t)
		}
		data, err := xdr.MarshalBase64(ev.Body.V0.Data)
		if err != nil {
			return nil, errors.Wrap(err, "encode event data")
		}
		out.Data = data
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, errors.Wrap(err, "marshal event")
	}
	return b, nil
}
