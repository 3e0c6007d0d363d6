package scval

import (
	"encoding/base64"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/strkey"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// DecodeBytes decodes binary ScVal XDR.
func DecodeBytes(b []byte) (Value, error) {
	var sv xdr.ScVal
	if err := xdr.SafeUnmarshal(b, &sv); err != nil {
		return Value{}, errors.Wrapf(ErrDecoding, "malformed ledger value: %v", err)
	}
	return Decode(sv)
}

// DecodeBase64 decodes base64 ScVal XDR.
func DecodeBase64(b64 string) (Value, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Value{}, errors.Wrapf(ErrDecoding, "malformed base64: %v", err)
	}
	return DecodeBytes(raw)
}

// DecodeLenient decodes base64 ScVal XDR and, when that is not possible,
// returns the input unchanged as a String value. Event payloads from
// heterogeneous sources are not always XDR; the caller still gets the
// original text.
func DecodeLenient(s string) Value {
	v, err := DecodeBase64(s)
	if err != nil {
		return String(s)
	}
	return v
}

// Decode converts a ledger value into its native representation. Ledger
// types without a native counterpart are returned as Ledger values.
func Decode(sv xdr.ScVal) (Value, error) {
	switch sv.Type {
	case xdr.ScValTypeScvVoid:
		return Null(), nil
	case xdr.ScValTypeScvBool:
		if sv.B == nil {
			return Value{}, missingArm(sv.Type)
		}
		return Bool(*sv.B), nil
	case xdr.ScValTypeScvU32:
		if sv.U32 == nil {
			return Value{}, missingArm(sv.Type)
		}
		return Integer(new(big.Int).SetUint64(uint64(*sv.U32)), Width32, true), nil
	case xdr.ScValTypeScvI32:
		if sv.I32 == nil {
			return Value{}, missingArm(sv.Type)
		}
		return Integer(big.NewInt(int64(*sv.I32)), Width32, false), nil
	case xdr.ScValTypeScvU64:
		if sv.U64 == nil {
			return Value{}, missingArm(sv.Type)
		}
		return Integer(new(big.Int).SetUint64(uint64(*sv.U64)), Width64, true), nil
	case xdr.ScValTypeScvI64:
		if sv.I64 == nil {
			return Value{}, missingArm(sv.Type)
		}
		return Integer(big.NewInt(int64(*sv.I64)), Width64, false), nil
	case xdr.ScValTypeScvTimepoint:
		if sv.Timepoint == nil {
			return Value{}, missingArm(sv.Type)
		}
		return Integer(new(big.Int).SetUint64(uint64(*sv.Timepoint)), Width64, true), nil
	case xdr.ScValTypeScvDuration:
		if sv.Duration == nil {
			return Value{}, missingArm(sv.Type)
		}
		return Integer(new(big.Int).SetUint64(uint64(*sv.Duration)), Width64, true), nil
	case xdr.ScValTypeScvU128:
		if sv.U128 == nil {
			return Value{}, missingArm(sv.Type)
		}
		n := new(big.Int).Lsh(new(big.Int).SetUint64(uint64(sv.U128.Hi)), 64)
		n.Or(n, new(big.Int).SetUint64(uint64(sv.U128.Lo)))
		return Integer(n, Width128, true), nil
	case xdr.ScValTypeScvI128:
		if sv.I128 == nil {
			return Value{}, missingArm(sv.Type)
		}
		n := new(big.Int).Lsh(big.NewInt(int64(sv.I128.Hi)), 64)
		n.Add(n, new(big.Int).SetUint64(uint64(sv.I128.Lo)))
		return Integer(n, Width128, false), nil
	case xdr.ScValTypeScvU256:
		if sv.U256 == nil {
			return Value{}, missingArm(sv.Type)
		}
		word := uint256.Int{uint64(sv.U256.LoLo), uint64(sv.U256.LoHi), uint64(sv.U256.HiLo), uint64(sv.U256.HiHi)}
		return Integer(word.ToBig(), Width256, true), nil
	case xdr.ScValTypeScvI256:
		if sv.I256 == nil {
			return Value{}, missingArm(sv.Type)
		}
		word := uint256.Int{uint64(sv.I256.LoLo), uint64(sv.I256.LoHi), uint64(sv.I256.HiLo), uint64(sv.I256.HiHi)}
		return Integer(signed256(&word), Width256, false), nil
	case xdr.ScValTypeScvBytes:
		if sv.Bytes == nil {
			return Value{}, missingArm(sv.Type)
		}
		return Bytes(*sv.Bytes), nil
	case xdr.ScValTypeScvString:
		if sv.Str == nil {
			return Value{}, missingArm(sv.Type)
		}
		return String(string(*sv.Str)), nil
	case xdr.ScValTypeScvSymbol:
		if sv.Sym == nil {
			return Value{}, missingArm(sv.Type)
		}
		return Symbol(string(*sv.Sym)), nil
	case xdr.ScValTypeScvVec:
		if sv.Vec == nil || *sv.Vec == nil {
			return Vec(), nil
		}
		items := make([]Value, 0, len(**sv.Vec))
		for i, item := range **sv.Vec {
			v, err := Decode(item)
			if err != nil {
				return Value{}, errors.Wrapf(err, "vec[%d]", i)
			}
			items = append(items, v)
		}
		return Value{kind: KindVec, vec: items}, nil
	case xdr.ScValTypeScvMap:
		if sv.Map == nil || *sv.Map == nil {
			return Map(), nil
		}
		entries := make([]MapEntry, 0, len(**sv.Map))
		for i, e := range **sv.Map {
			key, err := Decode(e.Key)
			if err != nil {
				return Value{}, errors.Wrapf(err, "map[%d].key", i)
			}
			val, err := Decode(e.Val)
			if err != nil {
				return Value{}, errors.Wrapf(err, "map[%d].val", i)
			}
			entries = append(entries, MapEntry{Key: key, Val: val})
		}
		return Value{kind: KindMap, m: entries}, nil
	case xdr.ScValTypeScvAddress:
		if sv.Address == nil {
			return Value{}, missingArm(sv.Type)
		}
		addr, ok, err := DecodeAddress(*sv.Address)
		if err != nil {
			return Value{}, err
		}
		if !ok {
			return Ledger(sv), nil
		}
		return Address(addr), nil
	case xdr.ScValTypeScvError,
		xdr.ScValTypeScvContractInstance,
		xdr.ScValTypeScvLedgerKeyContractInstance,
		xdr.ScValTypeScvLedgerKeyNonce:
		return Ledger(sv), nil
	}

	return Value{}, errors.Wrapf(ErrDecoding, "unknown ledger value type %d", int32(sv.Type))
}

// DecodeAddress renders account and contract addresses as strkeys. Other
// address types report ok=false.
func DecodeAddress(addr xdr.ScAddress) (string, bool, error) {
	switch addr.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		if addr.AccountId == nil {
			return "", false, missingArm(xdr.ScValTypeScvAddress)
		}
		return addr.AccountId.Address(), true, nil
	case xdr.ScAddressTypeScAddressTypeContract:
		if addr.ContractId == nil {
			return "", false, missingArm(xdr.ScValTypeScvAddress)
		}
		s, err := strkey.Encode(strkey.VersionByteContract, addr.ContractId[:])
		if err != nil {
			return "", false, errors.Wrapf(ErrDecoding, "contract address: %v", err)
		}
		return s, true, nil
	}

	return "", false, nil
}

func signed256(word *uint256.Int) *big.Int {
	if word.Sign() >= 0 {
		return word.ToBig()
	}
	abs := new(uint256.Int).Neg(word)
	return new(big.Int).Neg(abs.ToBig())
}

func missingArm(t xdr.ScValType) error {
	return errors.Wrapf(ErrDecoding, "missing payload for %s", t)
}
