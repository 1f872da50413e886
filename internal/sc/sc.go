package sc

import (
	"embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	CRATransferEvent  = "CRATransferEvent(address,address,address,int64,string)"
	CRATransferMethod = "transferCRANFT(address,address,address,int64,string)"

	CRATransferEventName  = "CRATransferEvent"
	CRATransferMethodName = "transferCRANFT"

	craEnforcementABI = "abi/CRAEnforcement.json"
)

var (
	CRATransferEventID = crypto.Keccak256Hash([]byte(CRATransferEvent))

	//go:embed abi/*.json
	abiFiles embed.FS

	loadOnce sync.Once
	craABI   *abi.ABI
	craErr   error
)

// LogCRATransfer mirrors the non-indexed and indexed fields of
// CRATransferEvent.
type LogCRATransfer struct {
	Token          common.Address
	Sender         common.Address
	Receiver       common.Address
	SerialNumber   int64
	Acknowledgment string
}

func extractContractABI(jsonFile string) (*abi.ABI, error) {
	contractBytes, err := abiFiles.ReadFile(jsonFile)
	if err != nil {
		return nil, err
	}

	var m map[string]interface{}
	if err = json.Unmarshal(contractBytes, &m); err != nil {
		return nil, err
	}

	ma := m["abi"]
	abiBytes, err := json.Marshal(ma)
	if err != nil {
		return nil, err
	}

	parsed, err := abi.JSON(strings.NewReader(string(abiBytes)))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// CRAEnforcementABI returns the parsed ABI of the enforcement contract. The
// embedded file is parsed once.
func CRAEnforcementABI() (*abi.ABI, error) {
	loadOnce.Do(func() {
		craABI, craErr = extractContractABI(craEnforcementABI)
	})
	return craABI, craErr
}
