package analyzer

import (
	"errors"
	"fmt"
)

// Sentinel errors for the analyzer package.
var (
	// ErrContract is matched by every *ContractError.
	ErrContract = errors.New("analyzer response violates contract")

	// ErrTransport is matched by every *TransportError.
	ErrTransport = errors.New("analyzer unreachable")

	// ErrClientClosed is returned by a Client after Close.
	ErrClientClosed = errors.New("analyzer client is closed")
)

// ContractError reports a response that does not match the analyzer wire
// contract.
type ContractError struct {
	Reason string
	Index  int // entry index, or -1 when the whole body is malformed
	Err    error
}

func (e *ContractError) Error() string {
	msg := "analyzer contract: " + e.Reason
	if e.Index >= 0 {
		msg = fmt.Sprintf("analyzer contract: suggestion %d: %s", e.Index, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// Is matches ErrContract and the wrapped error.
func (e *ContractError) Is(target error) bool {
	return target == ErrContract || errors.Is(e.Err, target)
}

// TransportError reports a failed request to the analyzer.
// Status is the HTTP status when the analyzer answered, 0 otherwise.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	msg := "analyzer " + e.Op
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransport and the wrapped error.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport || errors.Is(e.Err, target)
}
