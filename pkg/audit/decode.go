package audit

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/craprotocol/echo/internal/sc"
	"github.com/craprotocol/echo/pkg/cra"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	errTopicCount     = errors.New("unexpected topic count")
	errTopicSignature = errors.New("topic does not match CRATransferEvent")
)

// Decoder decodes raw CRATransferEvent logs with the embedded contract ABI.
type Decoder struct {
	contractAbi *abi.ABI
	event       abi.Event
}

func NewDecoder() (*Decoder, error) {
	craABI, err := sc.CRAEnforcementABI()
	if err != nil {
		return nil, err
	}

	ev, ok := craABI.Events[sc.CRATransferEventName]
	if !ok {
		return nil, fmt.Errorf("%s missing from contract abi", sc.CRATransferEventName)
	}

	return &Decoder{contractAbi: craABI, event: ev}, nil
}

// DecodeTransferLog decodes hex encoded log data and topics. topics[0] must
// be the event id, followed by one topic per indexed argument.
func (d *Decoder) DecodeTransferLog(data string, topics []string) (*cra.TransferEvent, error) {
	indexed := indexedArgs(d.event.Inputs)

	if len(topics) != len(indexed)+1 {
		return nil, fmt.Errorf("%w: expected %d, got %d", errTopicCount, len(indexed)+1, len(topics))
	}

	hashes := make([]common.Hash, 0, len(topics))
	for _, t := range topics {
		b, err := decodeHex(t)
		if err != nil {
			return nil, fmt.Errorf("topic %q: %w", t, err)
		}
		// the indexer may strip leading zero bytes
		if len(b) == 0 || len(b) > common.HashLength {
			return nil, fmt.Errorf("topic %q: expected up to %d bytes, got %d", t, common.HashLength, len(b))
		}
		hashes = append(hashes, common.BytesToHash(b))
	}

	if hashes[0] != d.event.ID {
		return nil, fmt.Errorf("%w: %s", errTopicSignature, hashes[0].Hex())
	}

	raw, err := decodeHex(data)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}

	var trsf sc.LogCRATransfer

	err = d.contractAbi.UnpackIntoInterface(&trsf, sc.CRATransferEventName, raw)
	if err != nil {
		return nil, err
	}

	err = abi.ParseTopics(&trsf, indexed, hashes[1:])
	if err != nil {
		return nil, err
	}

	return &cra.TransferEvent{
		Token:          trsf.Token.Hex(),
		Sender:         trsf.Sender.Hex(),
		Receiver:       trsf.Receiver.Hex(),
		SerialNumber:   strconv.FormatInt(trsf.SerialNumber, 10),
		Acknowledgment: trsf.Acknowledgment,
	}, nil
}

func indexedArgs(args abi.Arguments) abi.Arguments {
	var indexed abi.Arguments
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}

// decodeHex accepts log data with or without the 0x prefix; "0x" alone is
// empty data.
func decodeHex(s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return []byte{}, nil
	}

	if !has0xPrefix(s) {
		s = "0x" + s
	}

	return hexutil.Decode(s)
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
