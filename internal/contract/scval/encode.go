// Package scval converts between native values and the ledger's ScVal representation.
package scval

import (
	"math/big"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/strkey"
	"github.com/stellar/go-stellar-sdk/xdr"
)

var (
	// ErrEncoding is returned when a value has no ledger encoding.
	ErrEncoding = errors.New("encoding error")
	// ErrDecoding is returned for malformed ledger payloads.
	ErrDecoding = errors.New("decoding error")
)

var (
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	minInt256  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
	maxInt256  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	mask64     = new(big.Int).SetUint64(^uint64(0))
)

// EncodeAll encodes a list of call arguments in order.
func EncodeAll(values []Value) ([]xdr.ScVal, error) {
	out := make([]xdr.ScVal, 0, len(values))
	for i, v := range values {
		sv, err := Encode(v)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d", i)
		}
		out = append(out, sv)
	}
	return out, nil
}

// Encode converts a native value into its ledger representation.
func Encode(v Value) (xdr.ScVal, error) {
	switch v.kind {
	case KindNull:
		return xdr.ScVal{Type: xdr.ScValTypeScvVoid}, nil
	case KindBool:
		b := v.b
		return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}, nil
	case KindInt:
		return encodeInt(v)
	case KindString:
		s := xdr.ScString(v.s)
		return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &s}, nil
	case KindSymbol:
		sym := xdr.ScSymbol(v.s)
		return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}, nil
	case KindBytes:
		b := xdr.ScBytes(append([]byte(nil), v.raw...))
		return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &b}, nil
	case KindVec:
		items := make(xdr.ScVec, 0, len(v.vec))
		for i, item := range v.vec {
			sv, err := Encode(item)
			if err != nil {
				return xdr.ScVal{}, errors.Wrapf(err, "vec[%d]", i)
			}
			items = append(items, sv)
		}
		vec := &items
		return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &vec}, nil
	case KindMap:
		entries := make(xdr.ScMap, 0, len(v.m))
		for i, e := range v.m {
			key, err := Encode(e.Key)
			if err != nil {
				return xdr.ScVal{}, errors.Wrapf(err, "map[%d].key", i)
			}
			val, err := Encode(e.Val)
			if err != nil {
				return xdr.ScVal{}, errors.Wrapf(err, "map[%d].val", i)
			}
			entries = append(entries, xdr.ScMapEntry{Key: key, Val: val})
		}
		m := &entries
		return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &m}, nil
	case KindAddress:
		addr, err := EncodeAddress(v.s)
		if err != nil {
			return xdr.ScVal{}, err
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}, nil
	case KindLedger:
		return v.ledger, nil
	case KindLedgerXDR:
		var sv xdr.ScVal
		if err := xdr.SafeUnmarshalBase64(v.s, &sv); err != nil {
			return xdr.ScVal{}, errors.Wrapf(ErrEncoding, "invalid pre-encoded value: %v", err)
		}
		return sv, nil
	}

	return xdr.ScVal{}, errors.Wrapf(ErrEncoding, "unsupported value kind %s", v.kind)
}

// EncodeAddress converts a G... or C... strkey into an ScAddress.
func EncodeAddress(addr string) (xdr.ScAddress, error) {
	switch {
	case strings.HasPrefix(addr, "G"):
		var aid xdr.AccountId
		if err := aid.SetAddress(addr); err != nil {
			return xdr.ScAddress{}, errors.Wrapf(ErrEncoding, "invalid account address %q: %v", addr, err)
		}
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &aid}, nil
	case strings.HasPrefix(addr, "C"):
		raw, err := strkey.Decode(strkey.VersionByteContract, addr)
		if err != nil {
			return xdr.ScAddress{}, errors.Wrapf(ErrEncoding, "invalid contract address %q: %v", addr, err)
		}
		var cid xdr.ContractId
		copy(cid[:], raw)
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &cid}, nil
	}

	return xdr.ScAddress{}, errors.Wrapf(ErrEncoding, "unsupported address %q", addr)
}

func encodeInt(v Value) (xdr.ScVal, error) {
	n := v.i
	if n == nil {
		n = new(big.Int)
	}

	width := v.width
	if width == WidthAuto {
		width = autoWidth(n, v.unsigned)
		if width == WidthAuto {
			return xdr.ScVal{}, errors.Wrapf(ErrEncoding, "integer %s overflows 256 bits", n)
		}
	}

	if v.unsigned && n.Sign() < 0 {
		return xdr.ScVal{}, errors.Wrapf(ErrEncoding, "negative value %s for unsigned integer", n)
	}

	switch width {
	case Width32:
		if v.unsigned {
			if !n.IsUint64() || n.Uint64() > uint64(^uint32(0)) {
				return xdr.ScVal{}, overflow(n, "u32")
			}
			u := xdr.Uint32(n.Uint64())
			return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}, nil
		}
		if !n.IsInt64() || n.Int64() < -1<<31 || n.Int64() > 1<<31-1 {
			return xdr.ScVal{}, overflow(n, "i32")
		}
		i := xdr.Int32(n.Int64())
		return xdr.ScVal{Type: xdr.ScValTypeScvI32, I32: &i}, nil
	case Width64:
		if v.unsigned {
			if !n.IsUint64() {
				return xdr.ScVal{}, overflow(n, "u64")
			}
			u := xdr.Uint64(n.Uint64())
			return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}, nil
		}
		if !n.IsInt64() {
			return xdr.ScVal{}, overflow(n, "i64")
		}
		i := xdr.Int64(n.Int64())
		return xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &i}, nil
	case Width128:
		return encode128(n, v.unsigned)
	case Width256:
		return encode256(n, v.unsigned)
	}

	return xdr.ScVal{}, errors.Wrapf(ErrEncoding, "unsupported integer width %d", width)
}

func autoWidth(n *big.Int, unsigned bool) Width {
	if unsigned {
		switch {
		case n.IsUint64():
			return Width64
		case n.Cmp(maxUint128) <= 0:
			return Width128
		case n.Cmp(maxUint256) <= 0:
			return Width256
		}
		return WidthAuto
	}

	switch {
	case n.IsInt64():
		return Width64
	case n.Cmp(minInt128) >= 0 && n.Cmp(maxInt128) <= 0:
		return Width128
	case n.Cmp(minInt256) >= 0 && n.Cmp(maxInt256) <= 0:
		return Width256
	}
	return WidthAuto
}

func encode128(n *big.Int, unsigned bool) (xdr.ScVal, error) {
	lo := new(big.Int).And(n, mask64).Uint64()
	hi := new(big.Int).Rsh(n, 64)

	if unsigned {
		if n.Cmp(maxUint128) > 0 {
			return xdr.ScVal{}, overflow(n, "u128")
		}
		parts := xdr.UInt128Parts{Hi: xdr.Uint64(hi.Uint64()), Lo: xdr.Uint64(lo)}
		return xdr.ScVal{Type: xdr.ScValTypeScvU128, U128: &parts}, nil
	}

	if n.Cmp(minInt128) < 0 || n.Cmp(maxInt128) > 0 {
		return xdr.ScVal{}, overflow(n, "i128")
	}
	parts := xdr.Int128Parts{Hi: xdr.Int64(hi.Int64()), Lo: xdr.Uint64(lo)}
	return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}, nil
}

func encode256(n *big.Int, unsigned bool) (xdr.ScVal, error) {
	if unsigned {
		if n.Cmp(maxUint256) > 0 {
			return xdr.ScVal{}, overflow(n, "u256")
		}
	} else if n.Cmp(minInt256) < 0 || n.Cmp(maxInt256) > 0 {
		return xdr.ScVal{}, overflow(n, "i256")
	}

	// negative values come back in two's complement
	word, _ := uint256.FromBig(n)

	if unsigned {
		parts := xdr.UInt256Parts{
			HiHi: xdr.Uint64(word[3]),
			HiLo: xdr.Uint64(word[2]),
			LoHi: xdr.Uint64(word[1]),
			LoLo: xdr.Uint64(word[0]),
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvU256, U256: &parts}, nil
	}

	parts := xdr.Int256Parts{
		HiHi: xdr.Int64(int64(word[3])), //nolint:gosec // two's complement reinterpretation
		HiLo: xdr.Uint64(word[2]),
		LoHi: xdr.Uint64(word[1]),
		LoLo: xdr.Uint64(word[0]),
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvI256, I256: &parts}, nil
}

func overflow(n *big.Int, target string) error {
	return errors.Wrapf(ErrEncoding, "integer %s overflows %s", n, target)
}
