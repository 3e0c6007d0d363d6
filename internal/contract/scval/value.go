package scval

import (
	"bytes"
	"math/big"

	"github.com/stellar/go-stellar-sdk/xdr"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindString
	KindSymbol
	KindBytes
	KindVec
	KindMap
	KindAddress
	// KindLedger holds an already encoded ledger value.
	KindLedger
	// KindLedgerXDR holds a ledger value as base64 XDR text, decoded only on encode.
	KindLedgerXDR
)

var kindNames = map[Kind]string{
	KindNull:      "null",
	KindBool:      "bool",
	KindInt:       "int",
	KindString:    "string",
	KindSymbol:    "symbol",
	KindBytes:     "bytes",
	KindVec:       "vec",
	KindMap:       "map",
	KindAddress:   "address",
	KindLedger:    "ledger",
	KindLedgerXDR: "ledger_xdr",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Width is an optional integer width hint. WidthAuto lets the encoder pick
// the smallest signed width that fits.
type Width uint16

const (
	WidthAuto Width = 0
	Width32   Width = 32
	Width64   Width = 64
	Width128  Width = 128
	Width256  Width = 256
)

// MapEntry is one key/value pair of an ordered mapping.
type MapEntry struct {
	Key Value
	Val Value
}

// Value is the native representation of a contract argument or result.
// The zero Value is Null.
type Value struct {
	kind     Kind
	b        bool
	i        *big.Int
	width    Width
	unsigned bool
	s        string
	raw      []byte
	vec      []Value
	m        []MapEntry
	ledger   xdr.ScVal
}

func Null() Value { return Value{} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int64 wraps a signed 64-bit integer without a width hint.
func Int64(n int64) Value { return Value{kind: KindInt, i: big.NewInt(n)} }

// Uint64 wraps an unsigned integer; it encodes as an unsigned ledger integer.
func Uint64(n uint64) Value {
	return Value{kind: KindInt, i: new(big.Int).SetUint64(n), unsigned: true}
}

// BigInt wraps an arbitrary precision integer. The value is copied.
func BigInt(n *big.Int) Value {
	return Value{kind: KindInt, i: new(big.Int).Set(n)}
}

// Integer wraps n with an explicit width and signedness.
func Integer(n *big.Int, width Width, unsigned bool) Value {
	return Value{kind: KindInt, i: new(big.Int).Set(n), width: width, unsigned: unsigned}
}

func String(s string) Value { return Value{kind: KindString, s: s} }

func Symbol(s string) Value { return Value{kind: KindSymbol, s: s} }

func Bytes(b []byte) Value {
	return Value{kind: KindBytes, raw: append([]byte(nil), b...)}
}

func Vec(items ...Value) Value {
	return Value{kind: KindVec, vec: append([]Value{}, items...)}
}

func Map(entries ...MapEntry) Value {
	return Value{kind: KindMap, m: append([]MapEntry{}, entries...)}
}

// Address wraps a strkey encoded account (G...) or contract (C...) address.
func Address(addr string) Value { return Value{kind: KindAddress, s: addr} }

// Ledger wraps a value that is already in ledger representation.
func Ledger(v xdr.ScVal) Value { return Value{kind: KindLedger, ledger: v} }

// LedgerXDR wraps base64 encoded ledger XDR that is passed through on encode.
func LedgerXDR(b64 string) Value { return Value{kind: KindLedgerXDR, s: b64} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() bool { return v.b }

// BigInt returns a copy of the integer, or nil if v is not an integer.
func (v Value) BigInt() *big.Int {
	if v.kind != KindInt || v.i == nil {
		return nil
	}
	return new(big.Int).Set(v.i)
}

// Int64 returns the integer truncated to int64 and whether it fit.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindInt || v.i == nil {
		return 0, false
	}
	return v.i.Int64(), v.i.IsInt64()
}

func (v Value) Width() Width { return v.width }

func (v Value) Unsigned() bool { return v.unsigned }

// Str returns the text of String, Symbol, Address and LedgerXDR values.
func (v Value) Str() string { return v.s }

func (v Value) BytesValue() []byte { return append([]byte(nil), v.raw...) }

func (v Value) Items() []Value { return append([]Value(nil), v.vec...) }

func (v Value) Entries() []MapEntry { return append([]MapEntry(nil), v.m...) }

func (v Value) LedgerValue() xdr.ScVal { return v.ledger }

// Equal reports whether a and b hold the same variant and content.
// Integers compare by numeric value only; width hints are ignored.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		if v.i == nil || o.i == nil {
			return v.i == o.i
		}
		return v.i.Cmp(o.i) == 0
	case KindString, KindSymbol, KindAddress, KindLedgerXDR:
		return v.s == o.s
	case KindBytes:
		return bytes.Equal(v.raw, o.raw)
	case KindVec:
		if len(v.vec) != len(o.vec) {
			return false
		}
		for i := range v.vec {
			if !v.vec[i].Equal(o.vec[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for i := range v.m {
			if !v.m[i].Key.Equal(o.m[i].Key) || !v.m[i].Val.Equal(o.m[i].Val) {
				return false
			}
		}
		return true
	case KindLedger:
		a, errA := v.ledger.MarshalBinary()
		b, errB := o.ledger.MarshalBinary()
		return errA == nil && errB == nil && bytes.Equal(a, b)
	}

	return false
}
