package txbuild

import (
	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// Assemble applies the simulated resource footprint to an unsigned
// transaction. Authorization entries from the simulation are used when the
// call carries none. The inclusion fee stays the network base fee, the
// resource fee travels in the soroban data and is added to the envelope fee
// once.
func Assemble(t *Transaction, pf Preflight) (*Transaction, error) {
	if t.Signatures() > 0 {
		return nil, errors.New("cannot assemble a signed transaction")
	}
	if pf.MinResourceFee < 0 {
		return nil, errors.Errorf("negative resource fee %d", pf.MinResourceFee)
	}

	op := t.op
	if len(op.Auth) == 0 && len(pf.Auth) > 0 {
		op.Auth = append([]xdr.SorobanAuthorizationEntry(nil), pf.Auth...)
	}
	data := pf.TransactionData
	op.Ext = xdr.TransactionExt{V: 1, SorobanData: &data}

	return newTransaction(t.network, t.params, op)
}
