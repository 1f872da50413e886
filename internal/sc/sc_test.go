package sc

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestCRAEnforcementABI(t *testing.T) {
	craABI, err := CRAEnforcementABI()
	require.NoError(t, err)

	ev, ok := craABI.Events[CRATransferEventName]
	require.True(t, ok)
	require.Equal(t, CRATransferEventID, ev.ID)
	require.Equal(t, CRATransferEvent, ev.Sig)

	indexed := 0
	for _, in := range ev.Inputs {
		if in.Indexed {
			indexed++
		}
	}
	require.Equal(t, 3, indexed)

	m, ok := craABI.Methods[CRATransferMethodName]
	require.True(t, ok)
	require.Equal(t, CRATransferMethod, m.Sig)
	require.Equal(t, crypto.Keccak256([]byte(CRATransferMethod))[:4], m.ID)
}
