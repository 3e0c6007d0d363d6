// Package txbuild assembles contract invocation transactions. Nothing in
// here performs I/O.
package txbuild

import (
	"time"

	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/txnbuild"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github/chapool/go-invoker/internal/contract/scval"
)

// Transaction is an unsigned or signed contract call transaction bound to a
// source account, sequence number and fee.
type Transaction struct {
	network Network
	params  txnbuild.TransactionParams
	op      txnbuild.InvokeHostFunction
	tx      *txnbuild.Transaction
}

// Build creates an unsigned transaction invoking call from account. The
// result depends only on its inputs; now fixes the validity window.
func Build(account Account, call Call, network Network, now time.Time) (*Transaction, error) {
	if network.BaseFee < txnbuild.MinBaseFee {
		network.BaseFee = txnbuild.MinBaseFee
	}

	contract, err := scval.EncodeAddress(call.ContractID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid contract id")
	}
	if contract.Type != xdr.ScAddressTypeScAddressTypeContract {
		return nil, errors.Errorf("contract id %q is not a contract address", call.ContractID)
	}

	op := txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: contract,
				FunctionName:    xdr.ScSymbol(call.Method),
				Args:            append(xdr.ScVec{}, call.Args...),
			},
		},
	}

	params := txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: account.Address,
			Sequence:  account.Sequence + 1,
		},
		Operations: []txnbuild.Operation{&op},
		BaseFee:    network.BaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimebounds(0, now.Add(ValidityWindow).Unix()),
		},
	}

	return newTransaction(network, params, op)
}

func newTransaction(network Network, params txnbuild.TransactionParams, op txnbuild.InvokeHostFunction) (*Transaction, error) {
	params.Operations = []txnbuild.Operation{&op}

	tx, err := txnbuild.NewTransaction(params)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transaction")
	}

	return &Transaction{
		network: network,
		params:  params,
		op:      op,
		tx:      tx,
	}, nil
}

// Sign returns a copy of t carrying the signatures of signers.
func (t *Transaction) Sign(signers ...Signer) (*Transaction, error) {
	tx := t.tx
	for _, s := range signers {
		signed, err := s.SignEnvelope(tx, t.network.Passphrase)
		if err != nil {
			return nil, errors.Wrap(err, "failed to sign transaction")
		}
		tx = signed
	}

	out := *t
	out.tx = tx
	return &out, nil
}

// Base64 returns the transaction envelope as base64 XDR.
func (t *Transaction) Base64() (string, error) {
	b64, err := t.tx.Base64()
	if err != nil {
		return "", errors.Wrap(err, "failed to encode transaction")
	}
	return b64, nil
}

// Hash returns the hex transaction hash on the network.
func (t *Transaction) Hash() (string, error) {
	hash, err := t.tx.HashHex(t.network.Passphrase)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash transaction")
	}
	return hash, nil
}

func (t *Transaction) Source() string { return t.tx.SourceAccount().AccountID }

func (t *Transaction) Sequence() int64 { return t.tx.SequenceNumber() }

// Fee is the maximum fee in stroops the transaction may be charged.
func (t *Transaction) Fee() int64 { return t.tx.MaxFee() }

// ExpiresAt is the upper bound of the validity window.
func (t *Transaction) ExpiresAt() time.Time {
	return time.Unix(t.tx.Timebounds().MaxTime, 0)
}

func (t *Transaction) Signatures() int { return len(t.tx.Signatures()) }

// HostFunction returns the invoked host function.
func (t *Transaction) HostFunction() xdr.HostFunction { return t.op.HostFunction }

// Envelope exposes the underlying transaction.
func (t *Transaction) Envelope() *txnbuild.Transaction { return t.tx }
