package txbuild

import (
	"time"

	"github.com/stellar/go-stellar-sdk/txnbuild"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// ValidityWindow bounds how long the network accepts a built transaction.
// It is not a business deadline.
const ValidityWindow = 30 * time.Second

// Network identifies the target ledger network.
type Network struct {
	Passphrase string
	BaseFee    int64 // stroops per operation
}

// Account is the source account state used to build a transaction.
type Account struct {
	Address  string
	Sequence int64 // current sequence, the transaction uses Sequence+1
}

// Call describes a single contract function invocation.
type Call struct {
	ContractID string
	Method     string
	Args       []xdr.ScVal
}

// Signer signs a transaction envelope for the given network.
type Signer interface {
	SignEnvelope(tx *txnbuild.Transaction, passphrase string) (*txnbuild.Transaction, error)
}

// Preflight is the resource data a simulation returns for a call.
type Preflight struct {
	TransactionData xdr.SorobanTransactionData
	MinResourceFee  int64
	Auth            []xdr.SorobanAuthorizationEntry
}
