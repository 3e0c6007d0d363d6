package contract_test

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-invoker/cmd/contract"
	"github/chapool/go-invoker/internal/contract/keystore"
	"github/chapool/go-invoker/internal/contract/scval"
)

const (
	testSeed    = "SAEQSCIJBEEQSCIJBEEQSCIJBEEQSCIJBEEQSCIJBEEQSCIJBEEQTDMN"
	testAddress = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"
)

func TestParseArgs(t *testing.T) {
	values, err := contract.ParseArgs([]string{
		"100",
		"USDC",
		"sym:swap",
		"addr:" + testAddress,
		"u32:7",
		"i128:-5",
		"bytes:0xdead",
		"true",
		"null",
		`["sym:a", 1]`,
		`{"amount": 3}`,
		"str:42",
	})
	require.NoError(t, err)
	require.Len(t, values, 12)

	assert.True(t, values[0].Equal(scval.Int64(100)))
	assert.True(t, values[1].Equal(scval.String("USDC")))
	assert.True(t, values[2].Equal(scval.Symbol("swap")))
	assert.True(t, values[3].Equal(scval.Address(testAddress)))

	assert.Equal(t, scval.Width32, values[4].Width())
	assert.True(t, values[4].Unsigned())
	n, ok := values[5].Int64()
	require.True(t, ok)
	assert.Equal(t, int64(-5), n)
	assert.Equal(t, scval.Width128, values[5].Width())

	assert.Equal(t, []byte{0xde, 0xad}, values[6].BytesValue())
	assert.True(t, values[7].Equal(scval.Bool(true)))
	assert.True(t, values[8].IsNull())
	assert.True(t, values[9].Equal(scval.Vec(scval.Symbol("a"), scval.Int64(1))))
	assert.True(t, values[10].Equal(scval.Map(scval.MapEntry{Key: scval.String("amount"), Val: scval.Int64(3)})))
	assert.True(t, values[11].Equal(scval.String("42")))
}

func TestParseArgsErrors(t *testing.T) {
	for _, arg := range []string{"u64:abc", "bytes:zz", "1.5", `[1, 2.5]`} {
		_, err := contract.ParseArgs([]string{arg})
		assert.Error(t, err, arg)
	}
}

func TestResolveSecretFromEnv(t *testing.T) {
	prompted := false
	prompt := func(string) (string, error) {
		prompted = true
		return "", nil
	}

	secret, err := contract.ResolveSecret(t.Context(), nil, "", " "+testSeed+"\n", prompt)
	require.NoError(t, err)

	assert.Equal(t, testSeed, secret)
	assert.False(t, prompted)
}

func TestResolveSecretInteractive(t *testing.T) {
	secret, err := contract.ResolveSecret(t.Context(), nil, "", "", func(string) (string, error) {
		return testSeed + "\n", nil
	})
	require.NoError(t, err)
	assert.Equal(t, testSeed, secret)

	_, err = contract.ResolveSecret(t.Context(), nil, "", "", func(string) (string, error) {
		return "", errors.New("no terminal")
	})
	require.Error(t, err)
}

func TestResolveSecretFromKeystore(t *testing.T) {
	ctx := t.Context()
	ks := keystore.NewService(&keystore.ScryptParams{DKLen: 32, N: 1024, R: 8, P: 1})
	path := filepath.Join(t.TempDir(), "invoker.json")

	_, err := ks.Create(ctx, path, testAddress, testSeed, "correct horse")
	require.NoError(t, err)

	// the keystore wins over the environment
	secret, err := contract.ResolveSecret(ctx, ks, path, "SOTHER", func(prompt string) (string, error) {
		assert.Contains(t, prompt, testAddress)
		return "correct horse", nil
	})
	require.NoError(t, err)
	assert.Equal(t, testSeed, secret)

	_, err = contract.ResolveSecret(ctx, ks, path, "", func(string) (string, error) {
		return "wrong", nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, keystore.ErrInvalidPassword))
}
