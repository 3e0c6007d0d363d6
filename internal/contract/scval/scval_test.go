package scval_test

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-invoker/internal/contract/scval"
)

const (
	testAccount  = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"
	testContract = "CAAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQCAIBAEAQC526"
)

func bigFromString(t *testing.T, s string) *big.Int {
	t.Helper()

	n, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, s)
	return n
}

func roundTrip(t *testing.T, v scval.Value) scval.Value {
	t.Helper()

	sv, err := scval.Encode(v)
	require.NoError(t, err)

	raw, err := sv.MarshalBinary()
	require.NoError(t, err)

	out, err := scval.DecodeBytes(raw)
	require.NoError(t, err)
	return out
}

func TestRoundTrip(t *testing.T) {
	values := map[string]scval.Value{
		"null":     scval.Null(),
		"true":     scval.Bool(true),
		"false":    scval.Bool(false),
		"int":      scval.Int64(-42),
		"uint":     scval.Uint64(1 << 63),
		"string":   scval.String("USDC"),
		"symbol":   scval.Symbol("swap"),
		"bytes":    scval.Bytes([]byte{0xde, 0xad, 0xbe, 0xef}),
		"empty":    scval.Bytes(nil),
		"account":  scval.Address(testAccount),
		"contract": scval.Address(testContract),
		"vec":      scval.Vec(scval.Int64(1), scval.String("a"), scval.Vec()),
		"map": scval.Map(
			scval.MapEntry{Key: scval.Symbol("b"), Val: scval.Int64(2)},
			scval.MapEntry{Key: scval.Symbol("a"), Val: scval.Vec(scval.Bool(true))},
		),
	}

	for name, v := range values {
		t.Run(name, func(t *testing.T) {
			out := roundTrip(t, v)
			assert.True(t, v.Equal(out), "%s: got %s", name, out.Kind())
		})
	}
}

func TestRoundTripBigIntegers(t *testing.T) {
	values := []string{
		"0",
		"9223372036854775807",
		"-9223372036854775808",
		"9223372036854775808",
		"-9223372036854775809",
		"170141183460469231731687303715884105727",
		"-170141183460469231731687303715884105728",
		"170141183460469231731687303715884105728",
		"-170141183460469231731687303715884105729",
		"57896044618658097711785492504343953926634992332820282019728792003956564819967",
		"-57896044618658097711785492504343953926634992332820282019728792003956564819968",
	}

	for _, s := range values {
		v := scval.BigInt(bigFromString(t, s))
		out := roundTrip(t, v)
		assert.Equal(t, s, out.BigInt().String())
	}
}

func TestAutoWidth(t *testing.T) {
	tests := []struct {
		in   string
		want xdr.ScValType
	}{
		{"1", xdr.ScValTypeScvI64},
		{"-9223372036854775809", xdr.ScValTypeScvI128},
		{"170141183460469231731687303715884105728", xdr.ScValTypeScvI256},
	}

	for _, tt := range tests {
		sv, err := scval.Encode(scval.BigInt(bigFromString(t, tt.in)))
		require.NoError(t, err)
		assert.Equal(t, tt.want, sv.Type, tt.in)
	}

	sv, err := scval.Encode(scval.Uint64(7))
	require.NoError(t, err)
	assert.Equal(t, xdr.ScValTypeScvU64, sv.Type)
}

func TestExplicitWidths(t *testing.T) {
	tests := []struct {
		width    scval.Width
		unsigned bool
		want     xdr.ScValType
	}{
		{scval.Width32, true, xdr.ScValTypeScvU32},
		{scval.Width32, false, xdr.ScValTypeScvI32},
		{scval.Width64, true, xdr.ScValTypeScvU64},
		{scval.Width64, false, xdr.ScValTypeScvI64},
		{scval.Width128, true, xdr.ScValTypeScvU128},
		{scval.Width128, false, xdr.ScValTypeScvI128},
		{scval.Width256, true, xdr.ScValTypeScvU256},
		{scval.Width256, false, xdr.ScValTypeScvI256},
	}

	for _, tt := range tests {
		v := scval.Integer(big.NewInt(100), tt.width, tt.unsigned)
		sv, err := scval.Encode(v)
		require.NoError(t, err)
		assert.Equal(t, tt.want, sv.Type)

		out, err := scval.Decode(sv)
		require.NoError(t, err)
		assert.Equal(t, tt.width, out.Width())
		assert.Equal(t, tt.unsigned, out.Unsigned())
		n, ok := out.Int64()
		assert.True(t, ok)
		assert.Equal(t, int64(100), n)
	}
}

func TestNegativeI128AndI256(t *testing.T) {
	for _, w := range []scval.Width{scval.Width128, scval.Width256} {
		out := roundTrip(t, scval.Integer(big.NewInt(-5), w, false))
		n, ok := out.Int64()
		require.True(t, ok)
		assert.Equal(t, int64(-5), n)
	}
}

func TestEncodeOverflow(t *testing.T) {
	tests := []scval.Value{
		scval.Integer(big.NewInt(1<<32), scval.Width32, true),
		scval.Integer(big.NewInt(1<<31), scval.Width32, false),
		scval.Integer(big.NewInt(-1), scval.Width64, true),
		scval.Integer(new(big.Int).Lsh(big.NewInt(1), 128), scval.Width128, true),
		scval.Integer(new(big.Int).Lsh(big.NewInt(1), 127), scval.Width128, false),
		scval.BigInt(new(big.Int).Lsh(big.NewInt(1), 300)),
	}

	for _, v := range tests {
		_, err := scval.Encode(v)
		require.Error(t, err)
		assert.True(t, errors.Is(err, scval.ErrEncoding))
	}
}

func TestEncodeInvalidAddress(t *testing.T) {
	for _, addr := range []string{"C1", "G123", "XYZ", ""} {
		_, err := scval.Encode(scval.Address(addr))
		require.Error(t, err, addr)
		assert.True(t, errors.Is(err, scval.ErrEncoding))
	}
}

func TestEncodeAllReportsArgumentIndex(t *testing.T) {
	_, err := scval.EncodeAll([]scval.Value{scval.Int64(1), scval.Address("nope")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 1")
	assert.True(t, errors.Is(err, scval.ErrEncoding))
}

func TestPreEncodedVariants(t *testing.T) {
	u := xdr.Uint32(9)
	sv := xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}

	got, err := scval.Encode(scval.Ledger(sv))
	require.NoError(t, err)
	assert.Equal(t, sv, got)

	b64, err := xdr.MarshalBase64(sv)
	require.NoError(t, err)

	got, err = scval.Encode(scval.LedgerXDR(b64))
	require.NoError(t, err)
	assert.Equal(t, xdr.ScValTypeScvU32, got.Type)
	assert.Equal(t, u, *got.U32)

	_, err = scval.Encode(scval.LedgerXDR("not-xdr"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, scval.ErrEncoding))
}

func TestDecodeUnmappedTypesAsLedger(t *testing.T) {
	sv := xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance}

	out, err := scval.Decode(sv)
	require.NoError(t, err)
	assert.Equal(t, scval.KindLedger, out.Kind())
	assert.Equal(t, sv.Type, out.LedgerValue().Type)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := scval.DecodeBytes([]byte{0x00, 0x00})
	require.Error(t, err)
	assert.True(t, errors.Is(err, scval.ErrDecoding))

	_, err = scval.DecodeBase64("%%%")
	require.Error(t, err)
	assert.True(t, errors.Is(err, scval.ErrDecoding))

	_, err = scval.Decode(xdr.ScVal{Type: xdr.ScValTypeScvBool})
	require.Error(t, err)
	assert.True(t, errors.Is(err, scval.ErrDecoding))
}

func TestDecodeLenient(t *testing.T) {
	sym := xdr.ScSymbol("transfer")
	b64, err := xdr.MarshalBase64(xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym})
	require.NoError(t, err)

	out := scval.DecodeLenient(b64)
	assert.Equal(t, scval.KindSymbol, out.Kind())
	assert.Equal(t, "transfer", out.Str())

	out = scval.DecodeLenient("plain text payload")
	assert.Equal(t, scval.KindString, out.Kind())
	assert.Equal(t, "plain text payload", out.Str())
}

func TestMarshalJSON(t *testing.T) {
	v := scval.Vec(
		scval.Null(),
		scval.Bool(true),
		scval.BigInt(bigFromString(t, "170141183460469231731687303715884105728")),
		scval.Symbol("USDC"),
		scval.Bytes([]byte{0x01, 0xff}),
		scval.Map(scval.MapEntry{Key: scval.String("k"), Val: scval.Int64(42)}),
	)

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `[null,true,170141183460469231731687303715884105728,"USDC","01ff",[{"key":"k","val":42}]]`, string(b))
}
