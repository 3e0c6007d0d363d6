package contract

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github/chapool/go-invoker/internal/contract/scval"
)

var intPrefixes = map[string]struct {
	width    scval.Width
	unsigned bool
}{
	"u32":  {scval.Width32, true},
	"i32":  {scval.Width32, false},
	"u64":  {scval.Width64, true},
	"i64":  {scval.Width64, false},
	"u128": {scval.Width128, true},
	"i128": {scval.Width128, false},
	"u256": {scval.Width256, true},
	"i256": {scval.Width256, false},
}

// ParseArgs parses command line call arguments, see ParseArg.
func ParseArgs(args []string) ([]scval.Value, error) {
	values := make([]scval.Value, 0, len(args))
	for i, arg := range args {
		v, err := ParseArg(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i)
		}
		values = append(values, v)
	}
	return values, nil
}

// ParseArg parses a single argument. Prefixed literals select a ledger type:
//
//	sym:transfer  addr:G...  xdr:<base64>  bytes:<hex>  str:text  u32:7 ... i256:-1
//
// Anything else is read as JSON (numbers, bools, null, arrays, objects,
// strings, where strings may carry a prefix themselves) and falls back to a
// plain string.
func ParseArg(arg string) (scval.Value, error) {
	if v, ok, err := parsePrefixed(arg); ok || err != nil {
		return v, err
	}

	if !gjson.Valid(arg) {
		return scval.String(arg), nil
	}

	return fromJSON(gjson.Parse(arg))
}

func parsePrefixed(arg string) (scval.Value, bool, error) {
	prefix, rest, found := strings.Cut(arg, ":")
	if !found {
		return scval.Value{}, false, nil
	}

	switch prefix {
	case "sym":
		return scval.Symbol(rest), true, nil
	case "addr":
		return scval.Address(rest), true, nil
	case "xdr":
		return scval.LedgerXDR(rest), true, nil
	case "str":
		return scval.String(rest), true, nil
	case "bytes":
		b, err := hex.DecodeString(strings.TrimPrefix(rest, "0x"))
		if err != nil {
			return scval.Value{}, true, errors.Wrapf(err, "invalid hex %q", rest)
		}
		return scval.Bytes(b), true, nil
	}

	if hint, ok := intPrefixes[prefix]; ok {
		n, ok := new(big.Int).SetString(rest, 10)
		if !ok {
			return scval.Value{}, true, errors.Errorf("invalid %s integer %q", prefix, rest)
		}
		return scval.Integer(n, hint.width, hint.unsigned), true, nil
	}

	return scval.Value{}, false, nil
}

func fromJSON(r gjson.Result) (scval.Value, error) {
	switch {
	case r.IsArray():
		var items []scval.Value
		for i, item := range r.Array() {
			v, err := fromJSON(item)
			if err != nil {
				return scval.Value{}, errors.Wrapf(err, "[%d]", i)
			}
			items = append(items, v)
		}
		return scval.Vec(items...), nil
	case r.IsObject():
		var (
			entries []scval.MapEntry
			err     error
		)
		r.ForEach(func(key, val gjson.Result) bool {
			var v scval.Value
			v, err = fromJSON(val)
			if err != nil {
				err = errors.Wrapf(err, "[%q]", key.Str)
				return false
			}
			entries = append(entries, scval.MapEntry{Key: scval.String(key.Str), Val: v})
			return true
		})
		if err != nil {
			return scval.Value{}, err
		}
		return scval.Map(entries...), nil
	}

	switch r.Type {
	case gjson.Null:
		return scval.Null(), nil
	case gjson.True:
		return scval.Bool(true), nil
	case gjson.False:
		return scval.Bool(false), nil
	case gjson.Number:
		n, ok := new(big.Int).SetString(r.Raw, 10)
		if !ok {
			return scval.Value{}, errors.Errorf("unsupported number %s, only integers are allowed", r.Raw)
		}
		return scval.BigInt(n), nil
	case gjson.String:
		if v, ok, err := parsePrefixed(r.Str); ok || err != nil {
			return v, err
		}
		return scval.String(r.Str), nil
	}

	return scval.Value{}, errors.Errorf("unsupported argument %s", r.Raw)
}
