package submitter

import (
	"context"
	"errors"
	"fmt"

	"github.com/craprotocol/echo/internal/common"
	"github.com/craprotocol/echo/internal/sc"
	"github.com/craprotocol/echo/pkg/cra"
	"github.com/ethereum/go-ethereum/accounts/abi"
)

const DefaultGas uint64 = 200_000

type Options struct {
	ContractID     string
	Acknowledgment string
	Gas            uint64
}

// Submitter is the only path through which a CRA transfer reaches the
// ledger. Every request is checked locally before anything is signed.
type Submitter struct {
	ledger cra.Ledger
	method abi.Method

	contractID     string
	acknowledgment string
	gas            uint64
}

func New(ledger cra.Ledger, opts Options) (*Submitter, error) {
	if ledger == nil {
		return nil, errors.New("submitter: ledger client is required")
	}

	if opts.ContractID == "" {
		return nil, errors.New("submitter: contract id is required")
	}

	craABI, err := sc.CRAEnforcementABI()
	if err != nil {
		return nil, err
	}

	method, ok := craABI.Methods[sc.CRATransferMethodName]
	if !ok {
		return nil, fmt.Errorf("submitter: %s missing from contract abi", sc.CRATransferMethodName)
	}

	ack := opts.Acknowledgment
	if ack == "" {
		ack = cra.DefaultAcknowledgment
	}

	gas := opts.Gas
	if gas == 0 {
		gas = DefaultGas
	}

	return &Submitter{
		ledger:         ledger,
		method:         method,
		contractID:     opts.ContractID,
		acknowledgment: ack,
		gas:            gas,
	}, nil
}

// Acknowledgment returns the exact string a request must carry.
func (s *Submitter) Acknowledgment() string {
	return s.acknowledgment
}

// Validate runs the local checks in order: acknowledgment first, then the
// sender identity. It never touches the network.
func (s *Submitter) Validate(req cra.TransferRequest) error {
	if req.Acknowledgment != s.acknowledgment {
		return fmt.Errorf("%w: expected exactly %q, got %q", cra.ErrInvalidAcknowledgment, s.acknowledgment, req.Acknowledgment)
	}

	operator := s.ledger.Operator()

	sender, err := common.ParseAddress(req.Sender)
	if err != nil || sender != operator {
		return fmt.Errorf("%w: sender (%s) does not match the signing account (%s)", cra.ErrSenderMismatch, req.Sender, operator.Hex())
	}

	return nil
}

// Transfer validates the request, submits a single transferCRANFT call and
// returns the receipt when the ledger reports success. Retrying is left to
// the caller.
func (s *Submitter) Transfer(ctx context.Context, req cra.TransferRequest) (*cra.Receipt, error) {
	err := s.Validate(req)
	if err != nil {
		return nil, err
	}

	call, err := s.contractCall(req)
	if err != nil {
		return nil, err
	}

	receipt, err := s.ledger.ExecuteContract(ctx, call)
	if err != nil {
		return nil, err
	}

	if receipt == nil {
		return nil, fmt.Errorf("%w: ledger returned no receipt", cra.ErrRemoteExecutionFailed)
	}

	if !receipt.Success() {
		return nil, &cra.RemoteExecutionError{
			Status:        receipt.Status,
			TransactionID: receipt.TransactionID,
		}
	}

	return receipt, nil
}

func (s *Submitter) contractCall(req cra.TransferRequest) (cra.ContractCall, error) {
	token, err := common.ParseAddress(req.Token)
	if err != nil {
		return cra.ContractCall{}, fmt.Errorf("token: %w", err)
	}

	receiver, err := common.ParseAddress(req.Receiver)
	if err != nil {
		return cra.ContractCall{}, fmt.Errorf("receiver: %w", err)
	}

	params, err := s.method.Inputs.Pack(token, s.ledger.Operator(), receiver, req.SerialNumber, req.Acknowledgment)
	if err != nil {
		return cra.ContractCall{}, err
	}

	call := cra.ContractCall{
		ContractID:    s.contractID,
		Function:      s.method.RawName,
		Params:        params,
		Gas:           s.gas,
		PayableAmount: 0,
	}
	copy(call.Selector[:], s.method.ID)

	return call, nil
}
