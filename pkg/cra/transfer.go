package cra

import (
	"fmt"
	"time"
)

// DefaultAcknowledgment is the confession the enforcement contract requires on
// every transfer.
const DefaultAcknowledgment = "No Debt, No Breach, Only Respect"

// TransferRequest describes a single CRA NFT transfer. Addresses are either
// 0x-prefixed EVM addresses or Hedera entity ids (shard.realm.num).
type TransferRequest struct {
	Token          string `json:"token"`
	Sender         string `json:"sender"`
	Receiver       string `json:"receiver"`
	SerialNumber   int64  `json:"serial_number"`
	Acknowledgment string `json:"acknowledgment"`
}

// TransferEvent is a decoded CRATransferEvent log.
type TransferEvent struct {
	Token          string `json:"token"`
	Sender         string `json:"sender"`
	Receiver       string `json:"receiver"`
	SerialNumber   string `json:"serial_number"`
	Acknowledgment string `json:"acknowledgment"`

	Timestamp       time.Time `json:"timestamp,omitempty"`
	TransactionHash string    `json:"transaction_hash,omitempty"`
	Index           int       `json:"index"`
}

func (e *TransferEvent) String() string {
	return fmt.Sprintf("%s #%s %s -> %s", e.Token, e.SerialNumber, e.Sender, e.Receiver)
}
