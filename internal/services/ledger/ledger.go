package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/craprotocol/echo/internal/common"
	"github.com/craprotocol/echo/pkg/cra"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/hashgraph/hedera-sdk-go/v2"
)

type Network string

const (
	NetworkTestnet    Network = "testnet"
	NetworkMainnet    Network = "mainnet"
	NetworkPreviewnet Network = "previewnet"
)

func (n Network) Valid() bool {
	switch n {
	case NetworkTestnet, NetworkMainnet, NetworkPreviewnet:
		return true
	}
	return false
}

// LedgerService is a ledger client bound to one operator account.
type LedgerService struct {
	client     *hedera.Client
	operatorID hedera.AccountID
	operator   ethcommon.Address
}

// NewLedgerService builds a client for network with the given operator id
// and private key.
func NewLedgerService(network Network, operatorID, operatorKey string) (*LedgerService, error) {
	if !network.Valid() {
		return nil, fmt.Errorf("unsupported network %q (must be one of: testnet, mainnet, previewnet)", network)
	}

	accountID, err := hedera.AccountIDFromString(operatorID)
	if err != nil {
		return nil, fmt.Errorf("operator id: %w", err)
	}

	key, err := hedera.PrivateKeyFromString(operatorKey)
	if err != nil {
		return nil, fmt.Errorf("operator key: %w", err)
	}

	client, err := hedera.ClientForName(string(network))
	if err != nil {
		return nil, err
	}

	client.SetOperator(accountID, key)

	operator, err := common.EntityToAddress(accountID.String())
	if err != nil {
		return nil, err
	}

	return &LedgerService{
		client:     client,
		operatorID: accountID,
		operator:   operator,
	}, nil
}

func (l *LedgerService) Close() error {
	return l.client.Close()
}

func (l *LedgerService) Operator() ethcommon.Address {
	return l.operator
}

func (l *LedgerService) OperatorID() string {
	return l.operatorID.String()
}

// ExecuteContract signs the call with the operator key, submits it and waits
// for the receipt. The SDK calls do not take a context, so ctx is only
// checked before submission.
func (l *LedgerService) ExecuteContract(ctx context.Context, call cra.ContractCall) (*cra.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contractID, err := hedera.ContractIDFromString(call.ContractID)
	if err != nil {
		return nil, fmt.Errorf("contract id: %w", err)
	}

	tx := hedera.NewContractExecuteTransaction().
		SetContractID(contractID).
		SetGas(call.Gas).
		SetFunctionParameters(call.Calldata()).
		SetPayableAmount(hedera.HbarFromTinybar(call.PayableAmount))

	resp, err := tx.Execute(l.client)
	if err != nil {
		if r, ok := statusReceipt("", err); ok {
			return r, nil
		}
		return nil, err
	}

	txID := resp.TransactionID.String()

	receipt, err := resp.GetReceipt(l.client)
	if err != nil {
		if r, ok := statusReceipt(txID, err); ok {
			return r, nil
		}
		return nil, err
	}

	return &cra.Receipt{
		TransactionID: txID,
		Status:        cra.Status(receipt.Status),
	}, nil
}

// statusReceipt maps the SDK's precheck and receipt status errors to a
// receipt carrying the ledger status. txID is used when the error has none.
func statusReceipt(txID string, err error) (*cra.Receipt, bool) {
	var (
		id     hedera.TransactionID
		status hedera.Status
	)

	var precheckErr hedera.ErrHederaPreCheckStatus
	var receiptErr hedera.ErrHederaReceiptStatus

	switch {
	case errors.As(err, &receiptErr):
		id, status = receiptErr.TxID, receiptErr.Status
	case errors.As(err, &precheckErr):
		id, status = precheckErr.TxID, precheckErr.Status
	default:
		return nil, false
	}

	if s := id.String(); s != "" {
		txID = s
	}

	return &cra.Receipt{TransactionID: txID, Status: cra.Status(status)}, true
}
