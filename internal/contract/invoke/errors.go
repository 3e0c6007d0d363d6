package invoke

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Kind classifies invocation failures.
type Kind string

const (
	KindInvalidRequest       Kind = "InvalidRequest"
	KindEncoding             Kind = "EncodingError"
	KindDecoding             Kind = "DecodingError"
	KindSimulationFailed     Kind = "SimulationFailed"
	KindPreparationFailed    Kind = "PreparationFailed"
	KindSubmissionRejected   Kind = "SubmissionRejected"
	KindSubmissionIncomplete Kind = "SubmissionIncomplete"
	KindRemoteCallTimeout    Kind = "RemoteCallTimeout"
	KindConfirmationTimeout  Kind = "ConfirmationTimeout"
	KindFeeEstimation        Kind = "FeeEstimationError"
	// KindUnexpected wraps failures without a more specific class.
	KindUnexpected Kind = "Unexpected"
)

// Error is the classified error returned by Service. It always names the
// contract and method of the failed call.
type Error struct {
	Kind       Kind
	ContractID string
	Method     string
	// Op and Budget are set for remote call timeouts.
	Op     string
	Budget time.Duration
	// Detail is the remote diagnostic, if any.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s.%s", e.Kind, e.ContractID, e.Method)
	if e.Op != "" {
		fmt.Fprintf(&b, ": %s exceeded %dms", e.Op, e.Budget.Milliseconds())
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if e.Err != nil && e.Op == "" && e.Detail == "" {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of err, or an empty Kind for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
