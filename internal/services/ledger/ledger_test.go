package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/craprotocol/echo/pkg/cra"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/stretchr/testify/require"
)

func TestNetworkValid(t *testing.T) {
	require.True(t, NetworkTestnet.Valid())
	require.True(t, NetworkMainnet.Valid())
	require.True(t, NetworkPreviewnet.Valid())
	require.False(t, Network("localnet").Valid())
	require.False(t, Network("").Valid())
}

func TestNewLedgerService(t *testing.T) {
	key, err := hedera.PrivateKeyGenerateEd25519()
	require.NoError(t, err)

	t.Run("binds operator address", func(t *testing.T) {
		l, err := NewLedgerService(NetworkTestnet, "0.0.987654", key.String())
		require.NoError(t, err)
		defer l.Close()

		require.Equal(t, common.HexToAddress("0x00000000000000000000000000000000000f1206"), l.Operator())
		require.Equal(t, "0.0.987654", l.OperatorID())
	})

	t.Run("unsupported network", func(t *testing.T) {
		_, err := NewLedgerService(Network("devnet"), "0.0.987654", key.String())
		require.Error(t, err)
	})

	t.Run("bad operator id", func(t *testing.T) {
		_, err := NewLedgerService(NetworkTestnet, "alice", key.String())
		require.Error(t, err)
	})

	t.Run("bad operator key", func(t *testing.T) {
		_, err := NewLedgerService(NetworkTestnet, "0.0.987654", "not-a-key")
		require.Error(t, err)
	})
}

func TestExecuteContractCancelled(t *testing.T) {
	key, err := hedera.PrivateKeyGenerateEd25519()
	require.NoError(t, err)

	l, err := NewLedgerService(NetworkTestnet, "0.0.987654", key.String())
	require.NoError(t, err)
	defer l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.ExecuteContract(ctx, cra.ContractCall{ContractID: "0.0.123456"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecuteContractBadContractID(t *testing.T) {
	key, err := hedera.PrivateKeyGenerateEd25519()
	require.NoError(t, err)

	l, err := NewLedgerService(NetworkTestnet, "0.0.987654", key.String())
	require.NoError(t, err)
	defer l.Close()

	_, err = l.ExecuteContract(context.Background(), cra.ContractCall{ContractID: "not-a-contract"})
	require.Error(t, err)
}

func TestStatusReceipt(t *testing.T) {
	account, err := hedera.AccountIDFromString("0.0.987654")
	require.NoError(t, err)

	txID := hedera.TransactionIDGenerate(account)

	tests := []struct {
		name     string
		txID     string
		err      error
		expected *cra.Receipt
	}{
		{
			"receipt status",
			"0.0.987654@1700000000.000000001",
			hedera.ErrHederaReceiptStatus{TxID: txID, Status: hedera.StatusContractRevertExecuted},
			&cra.Receipt{TransactionID: txID.String(), Status: 33},
		},
		{
			"precheck status",
			"",
			hedera.ErrHederaPreCheckStatus{TxID: txID, Status: hedera.StatusInsufficientPayerBalance},
			&cra.Receipt{TransactionID: txID.String(), Status: 10},
		},
		{
			"wrapped precheck status",
			"",
			fmt.Errorf("execute: %w", hedera.ErrHederaPreCheckStatus{TxID: txID, Status: hedera.StatusInvalidSignature}),
			&cra.Receipt{TransactionID: txID.String(), Status: 7},
		},
		{
			"status without transaction id",
			"0.0.987654@1700000000.000000001",
			hedera.ErrHederaReceiptStatus{Status: hedera.StatusContractRevertExecuted},
			&cra.Receipt{TransactionID: "0.0.987654@1700000000.000000001", Status: 33},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := statusReceipt(tt.txID, tt.err)
			require.True(t, ok)
			require.Equal(t, tt.expected, r)
			require.False(t, r.Success())
		})
	}

	r, ok := statusReceipt("", errors.New("connection refused"))
	require.False(t, ok)
	require.Nil(t, r)
}
