package cra

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrInvalidAcknowledgment = errors.New("invalid acknowledgment")
	ErrSenderMismatch        = errors.New("sender does not match the signing account")
	ErrRemoteExecutionFailed = errors.New("remote execution failed")
	ErrIndexerQueryFailed    = errors.New("indexer query failed")
	ErrDecode                = errors.New("log decode error")
)

// RemoteExecutionError is returned when the ledger finalizes a transaction
// with a status other than success.
type RemoteExecutionError struct {
	Status        Status
	TransactionID string
}

func (e *RemoteExecutionError) Error() string {
	if e.TransactionID == "" {
		return fmt.Sprintf("%s: status %s", ErrRemoteExecutionFailed, e.Status)
	}

	return fmt.Sprintf("%s: transaction %s finished with status %s", ErrRemoteExecutionFailed, e.TransactionID, e.Status)
}

func (e *RemoteExecutionError) Unwrap() error {
	return ErrRemoteExecutionFailed
}

// DecodeError describes a single log that could not be decoded. It never
// aborts a scan.
type DecodeError struct {
	Index           int
	TransactionHash string
	Err             error
}

func (e *DecodeError) Error() string {
	if e.TransactionHash == "" {
		return fmt.Sprintf("%s: log %d: %v", ErrDecode, e.Index, e.Err)
	}

	return fmt.Sprintf("%s: log %d of %s: %v", ErrDecode, e.Index, e.TransactionHash, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}

	return json.Marshal(struct {
		Index           int    `json:"index"`
		TransactionHash string `json:"transaction_hash,omitempty"`
		Error           string `json:"error"`
	}{e.Index, e.TransactionHash, msg})
}
