package cra

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Status is a ledger receipt status code.
type Status int32

// StatusSuccess is the code the ledger assigns to a successfully executed
// transaction.
const StatusSuccess Status = 22

var statusNames = map[Status]string{
	7:             "INVALID_SIGNATURE",
	10:            "INSUFFICIENT_PAYER_BALANCE",
	StatusSuccess: "SUCCESS",
	30:            "INSUFFICIENT_GAS",
	33:            "CONTRACT_REVERT_EXECUTED",
	184:           "TOKEN_NOT_ASSOCIATED_TO_ACCOUNT",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return fmt.Sprintf("%s (%d)", n, int32(s))
	}

	return fmt.Sprintf("%d", int32(s))
}

// ContractCall is a single contract invocation as handed to the ledger
// client.
type ContractCall struct {
	ContractID    string
	Function      string
	Selector      [4]byte
	Params        []byte // ABI encoded arguments, without selector
	Gas           uint64
	PayableAmount int64 // tinybars
}

// Calldata returns the selector followed by the encoded arguments.
func (c ContractCall) Calldata() []byte {
	data := make([]byte, 0, len(c.Selector)+len(c.Params))
	data = append(data, c.Selector[:]...)
	return append(data, c.Params...)
}

// Receipt is the confirmation returned once a submitted transaction reached
// consensus.
type Receipt struct {
	TransactionID string `json:"transaction_id"`
	Status        Status `json:"status"`
}

func (r *Receipt) Success() bool {
	return r.Status == StatusSuccess
}

// Ledger is a ledger client bound to one operator identity.
type Ledger interface {
	// Operator returns the EVM address of the account that signs every call.
	Operator() common.Address

	// ExecuteContract signs and submits the call, then waits for its receipt.
	ExecuteContract(ctx context.Context, call ContractCall) (*Receipt, error)
}
