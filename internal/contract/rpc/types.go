package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github/chapool/go-invoker/internal/contract/txbuild"
)

// ErrAccountNotFound is returned by GetAccount for unknown accounts.
var ErrAccountNotFound = errors.New("account not found")

// TransactionStatus is the status reported by getTransaction.
type TransactionStatus string

const (
	StatusSuccess  TransactionStatus = "SUCCESS"
	StatusFailed   TransactionStatus = "FAILED"
	StatusNotFound TransactionStatus = "NOT_FOUND"
	StatusPending  TransactionStatus = "PENDING"
)

// SendStatus is the status reported by sendTransaction.
type SendStatus string

const (
	SendPending       SendStatus = "PENDING"
	SendDuplicate     SendStatus = "DUPLICATE"
	SendTryAgainLater SendStatus = "TRY_AGAIN_LATER"
	SendError         SendStatus = "ERROR"
)

type Health struct {
	Status                string `json:"status"`
	LatestLedger          uint32 `json:"latestLedger"`
	OldestLedger          uint32 `json:"oldestLedger"`
	LedgerRetentionWindow uint32 `json:"ledgerRetentionWindow"`
}

type Network struct {
	FriendbotURL    string `json:"friendbotUrl,omitempty"`
	Passphrase      string `json:"passphrase"`
	ProtocolVersion int    `json:"protocolVersion"`
}

// SimulationHostFunctionResult is the preview of a single host function.
type SimulationHostFunctionResult struct {
	Auth []string `json:"auth"`
	XDR  string   `json:"xdr"`
}

// SimulationResult is the response of simulateTransaction.
type SimulationResult struct {
	TransactionData string                         `json:"transactionData"`
	MinResourceFee  int64                          `json:"minResourceFee,string"`
	Events          []string                       `json:"events,omitempty"`
	Results         []SimulationHostFunctionResult `json:"results,omitempty"`
	LatestLedger    uint32                         `json:"latestLedger"`
	Error           string                         `json:"error,omitempty"`
}

// SimulationError carries the diagnostic of a failed simulation.
type SimulationError struct {
	Message string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation failed: %s", e.Message)
}

// ReturnValue returns the base64 preview return value of the first host
// function, if any.
func (r *SimulationResult) ReturnValue() (string, bool) {
	if len(r.Results) == 0 || r.Results[0].XDR == "" {
		return "", false
	}
	return r.Results[0].XDR, true
}

// ResourceFee returns the minimum resource fee as an exact integer.
func (r *SimulationResult) ResourceFee() *big.Int {
	return big.NewInt(r.MinResourceFee)
}

// Preflight decodes the resource data needed to assemble a transaction.
func (r *SimulationResult) Preflight() (txbuild.Preflight, error) {
	var pf txbuild.Preflight

	if r.TransactionData == "" {
		return pf, errors.New("simulation returned no transaction data")
	}
	if err := xdr.SafeUnmarshalBase64(r.TransactionData, &pf.TransactionData); err != nil {
		return pf, errors.Wrap(err, "malformed transaction data")
	}
	pf.MinResourceFee = r.MinResourceFee

	if len(r.Results) > 0 {
		for i, a := range r.Results[0].Auth {
			var entry xdr.SorobanAuthorizationEntry
			if err := xdr.SafeUnmarshalBase64(a, &entry); err != nil {
				return pf, errors.Wrapf(err, "malformed auth entry %d", i)
			}
			pf.Auth = append(pf.Auth, entry)
		}
	}

	return pf, nil
}

// SendResult is the response of sendTransaction.
type SendResult struct {
	Hash           string     `json:"hash"`
	Status         SendStatus `json:"status"`
	LatestLedger   uint32     `json:"latestLedger"`
	ErrorResultXDR string     `json:"errorResultXdr,omitempty"`
}

// TransactionInfo is the decoded response of getTransaction.
type TransactionInfo struct {
	Status        TransactionStatus
	Ledger        uint32
	FeeCharged    *int64
	ResultXDR     string
	ResultMetaXDR string
	// Events holds contract events as JSON objects with type, contractId,
	// topics (base64 XDR values) and data (base64 XDR value).
	Events []json.RawMessage
}

type getTransactionResponse struct {
	Status        TransactionStatus `json:"status"`
	LatestLedger  uint32            `json:"latestLedger"`
	Ledger        uint32            `json:"ledger"`
	ResultXDR     string            `json:"resultXdr"`
	ResultMetaXDR string            `json:"resultMetaXdr"`
	Events        struct {
		ContractEventsXDR [][]string `json:"contractEventsXdr"`
	} `json:"events"`
}

type ledgerEntry struct {
	Key string `json:"key"`
	XDR string `json:"xdr"`
}

type getLedgerEntriesResponse struct {
	Entries      []ledgerEntry `json:"entries"`
	LatestLedger uint32        `json:"latestLedger"`
}
