package rpc

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github/chapool/go-invoker/internal/contract/txbuild"
)

func (c *Client) GetHealth(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.call(ctx, "getHealth", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) GetNetwork(ctx context.Context) (*Network, error) {
	var n Network
	if err := c.call(ctx, "getNetwork", nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// GetAccount loads the current sequence number of an account.
func (c *Client) GetAccount(ctx context.Context, address string) (txbuild.Account, error) {
	var aid xdr.AccountId
	if err := aid.SetAddress(address); err != nil {
		return txbuild.Account{}, errors.Wrapf(err, "invalid account address %q", address)
	}

	key, err := xdr.MarshalBase64(xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: aid},
	})
	if err != nil {
		return txbuild.Account{}, errors.Wrap(err, "encode ledger key")
	}

	var resp getLedgerEntriesResponse
	if err := c.call(ctx, "getLedgerEntries", map[string]any{"keys": []string{key}}, &resp); err != nil {
		return txbuild.Account{}, err
	}
	if len(resp.Entries) == 0 {
		return txbuild.Account{}, errors.Wrap(ErrAccountNotFound, address)
	}

	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(resp.Entries[0].XDR, &data); err != nil {
		return txbuild.Account{}, errors.Wrap(err, "malformed account entry")
	}
	if data.Account == nil {
		return txbuild.Account{}, errors.Errorf("ledger entry for %s is not an account", address)
	}

	return txbuild.Account{Address: address, Sequence: int64(data.Account.SeqNum)}, nil
}

// SimulateTransaction dry-runs tx. A simulation that reports an error is
// returned as *SimulationError.
func (c *Client) SimulateTransaction(ctx context.Context, tx *txbuild.Transaction) (*SimulationResult, error) {
	b64, err := tx.Base64()
	if err != nil {
		return nil, err
	}

	var res SimulationResult
	if err := c.call(ctx, "simulateTransaction", map[string]any{"transaction": b64}, &res); err != nil {
		return nil, err
	}
	if res.Error != "" {
		return &res, &SimulationError{Message: res.Error}
	}

	return &res, nil
}

// PrepareTransaction simulates tx and applies the resulting footprint.
func (c *Client) PrepareTransaction(ctx context.Context, tx *txbuild.Transaction) (*txbuild.Transaction, error) {
	sim, err := c.SimulateTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}

	pf, err := sim.Preflight()
	if err != nil {
		return nil, err
	}

	return txbuild.Assemble(tx, pf)
}

func (c *Client) SendTransaction(ctx context.Context, tx *txbuild.Transaction) (*SendResult, error) {
	b64, err := tx.Base64()
	if err != nil {
		return nil, err
	}

	var res SendResult
	if err := c.call(ctx, "sendTransaction", map[string]any{"transaction": b64}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetTransaction fetches the status of a submitted transaction. The charged
// fee is read from the result XDR and contract events are flattened in
// operation order.
func (c *Client) GetTransaction(ctx context.Context, hash string) (*TransactionInfo, error) {
	var resp getTransactionResponse
	if err := c.call(ctx, "getTransaction", map[string]any{"hash": hash}, &resp); err != nil {
		return nil, err
	}

	info := &TransactionInfo{
		Status:        resp.Status,
		Ledger:        resp.Ledger,
		ResultXDR:     resp.ResultXDR,
		ResultMetaXDR: resp.ResultMetaXDR,
	}

	if resp.ResultXDR != "" {
		var result xdr.TransactionResult
		if err := xdr.SafeUnmarshalBase64(resp.ResultXDR, &result); err == nil {
			fee := int64(result.FeeCharged)
			info.FeeCharged = &fee
		}
	}

	for _, op := range resp.Events.ContractEventsXDR {
		for _, b64 := range op {
			ev, err := ContractEventJSON(b64)
			if err != nil {
				return nil, err
			}
			info.Events = append(info.Events, ev)
		}
	}

	return info, nil
}

// GetFeeStats returns the raw getFeeStats response.
func (c *Client) GetFeeStats(ctx context.Context) (json.RawMessage, error) {
	return c.Call(ctx, "getFeeStats", nil)
}
