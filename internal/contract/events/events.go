// Package events decodes contract events, simulated return values and
// failure payloads of confirmed transactions.
package events

import (
	"encoding/json"
	"math/big"

	"github.com/tidwall/gjson"
	"github/chapool/go-invoker/internal/contract/scval"
)

// UnknownType is used for events that carry no type.
const UnknownType = "unknown"

// ContractEvent is a decoded contract event. A nil Topics means the source
// carried no topic list, which is different from an empty list.
type ContractEvent struct {
	Type       string
	ContractID string
	Topics     []scval.Value
	Data       scval.Value
}

type contractEventJSON struct {
	Type       string         `json:"type"`
	ContractID string         `json:"contractId,omitempty"`
	Topics     *[]scval.Value `json:"topics,omitempty"`
	Data       scval.Value    `json:"data"`
}

func (e ContractEvent) MarshalJSON() ([]byte, error) {
	out := contractEventJSON{Type: e.Type, ContractID: e.ContractID, Data: e.Data}
	if e.Topics != nil {
		topics := e.Topics
		out.Topics = &topics
	}
	return json.Marshal(out)
}

// DecodeEvents decodes raw event objects in order. String payloads are
// decoded as base64 XDR where possible and kept as text otherwise.
func DecodeEvents(raw []json.RawMessage) []ContractEvent {
	out := make([]ContractEvent, 0, len(raw))
	for _, r := range raw {
		out = append(out, DecodeEvent(r))
	}
	return out
}

func DecodeEvent(raw json.RawMessage) ContractEvent {
	if !gjson.ValidBytes(raw) {
		return ContractEvent{Type: UnknownType, Data: scval.String(string(raw))}
	}
	doc := gjson.ParseBytes(raw)

	ev := ContractEvent{Type: UnknownType}

	if t := doc.Get("type"); t.Type == gjson.String {
		ev.Type = t.Str
	}
	if id := doc.Get("contractId"); id.Type == gjson.String {
		ev.ContractID = id.Str
	}
	if topics := doc.Get("topics"); topics.IsArray() {
		ev.Topics = []scval.Value{}
		for _, topic := range topics.Array() {
			ev.Topics = append(ev.Topics, jsonValue(topic))
		}
	}

	data := doc.Get("data")
	if !data.Exists() {
		data = doc.Get("value")
	}
	ev.Data = jsonValue(data)

	return ev
}

func jsonValue(r gjson.Result) scval.Value {
	switch {
	case !r.Exists():
		return scval.Null()
	case r.IsArray():
		items := make([]scval.Value, 0)
		for _, item := range r.Array() {
			items = append(items, jsonValue(item))
		}
		return scval.Vec(items...)
	case r.IsObject():
		var entries []scval.MapEntry
		r.ForEach(func(key, val gjson.Result) bool {
			entries = append(entries, scval.MapEntry{Key: scval.String(key.Str), Val: jsonValue(val)})
			return true
		})
		return scval.Map(entries...)
	}

	switch r.Type {
	case gjson.Null:
		return scval.Null()
	case gjson.True:
		return scval.Bool(true)
	case gjson.False:
		return scval.Bool(false)
	case gjson.Number:
		if n, ok := new(big.Int).SetString(r.Raw, 10); ok {
			return scval.BigInt(n)
		}
		return scval.String(r.Raw)
	case gjson.String:
		return scval.DecodeLenient(r.Str)
	}

	return scval.String(r.Raw)
}
