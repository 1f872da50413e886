package cra

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidWindow = errors.New("invalid time window")

const (
	DefaultPageSize = 100
	MaxPageSize     = 100
)

// Window bounds an audit in consensus time. A nil bound is open.
type Window struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

func (w Window) Validate() error {
	if w.From != nil && w.To != nil && w.From.After(*w.To) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidWindow, w.From.Format(time.RFC3339), w.To.Format(time.RFC3339))
	}

	return nil
}

// LogQuery is a single page request against the indexer.
type LogQuery struct {
	ContractID string
	Signature  string
	Topic0     string
	Limit      int
	Window     Window
	After      string
}

// RawLog is a contract log as returned by the indexer.
type RawLog struct {
	Data            string    `json:"data"`
	Topics          []string  `json:"topics"`
	Timestamp       time.Time `json:"timestamp"`
	TransactionHash string    `json:"transactionHash"`
	Index           int       `json:"index"`
}

type LogPage struct {
	Logs       []RawLog
	NextCursor string
	HasNext    bool
}

// Indexer is a read-only source of historical contract logs.
type Indexer interface {
	ContractLogs(ctx context.Context, q LogQuery) (*LogPage, error)
}

// ClampPageSize keeps a requested page size within what the indexer accepts.
func ClampPageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}

	if size > MaxPageSize {
		return MaxPageSize
	}

	return size
}
