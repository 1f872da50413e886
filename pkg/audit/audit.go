package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/craprotocol/echo/internal/sc"
	"github.com/craprotocol/echo/pkg/cra"
)

type Options struct {
	ContractID string
	PageSize   int
}

// Auditor reads CRATransferEvent history for one contract from an indexer.
type Auditor struct {
	indexer cra.Indexer
	decoder *Decoder

	contractID string
	pageSize   int
}

// Report is a best-effort audit result: every event that decoded and every
// log that did not.
type Report struct {
	Events   []*cra.TransferEvent `json:"events"`
	Failures []*cra.DecodeError   `json:"failures"`
	Cursor   string               `json:"cursor,omitempty"`
}

func New(indexer cra.Indexer, opts Options) (*Auditor, error) {
	if indexer == nil {
		return nil, errors.New("audit: indexer is required")
	}

	if opts.ContractID == "" {
		return nil, errors.New("audit: contract id is required")
	}

	d, err := NewDecoder()
	if err != nil {
		return nil, err
	}

	return &Auditor{
		indexer:    indexer,
		decoder:    d,
		contractID: opts.ContractID,
		pageSize:   cra.ClampPageSize(opts.PageSize),
	}, nil
}

func (a *Auditor) PageSize() int {
	return a.pageSize
}

// Page fetches and decodes a single page after cursor. limit is clamped to
// the indexer's maximum. An indexer failure returns no partial data.
func (a *Auditor) Page(ctx context.Context, window cra.Window, cursor string, limit int) (*Report, bool, error) {
	err := window.Validate()
	if err != nil {
		return nil, false, err
	}

	q := cra.LogQuery{
		ContractID: a.contractID,
		Signature:  sc.CRATransferEvent,
		Topic0:     sc.CRATransferEventID.Hex(),
		Limit:      cra.ClampPageSize(limit),
		Window:     window,
		After:      cursor,
	}

	page, err := a.indexer.ContractLogs(ctx, q)
	if err != nil {
		return nil, false, err
	}

	if page.HasNext && (page.NextCursor == "" || page.NextCursor == cursor) {
		return nil, false, fmt.Errorf("%w: page cursor did not advance past %q", cra.ErrIndexerQueryFailed, cursor)
	}

	r := &Report{
		Events:   []*cra.TransferEvent{},
		Failures: []*cra.DecodeError{},
		Cursor:   page.NextCursor,
	}

	for _, l := range page.Logs {
		ev, err := a.decoder.DecodeTransferLog(l.Data, l.Topics)
		if err != nil {
			r.Failures = append(r.Failures, &cra.DecodeError{
				Index:           l.Index,
				TransactionHash: l.TransactionHash,
				Err:             err,
			})
			continue
		}

		ev.Timestamp = l.Timestamp
		ev.TransactionHash = l.TransactionHash
		ev.Index = l.Index

		r.Events = append(r.Events, ev)
	}

	return r, page.HasNext, nil
}

// Scan starts a lazy scan over window. A non-empty cursor resumes a previous
// scan from the page after it.
func (a *Auditor) Scan(window cra.Window, cursor string) *Scan {
	return &Scan{
		a:      a,
		window: window,
		cursor: cursor,
		next:   cursor,
	}
}

// Collect drains a scan over window into a single report. It returns no
// report when the scan stops early; use Scan to keep the events read so far
// and resume from its cursor.
func (a *Auditor) Collect(ctx context.Context, window cra.Window) (*Report, error) {
	r := &Report{
		Events:   []*cra.TransferEvent{},
		Failures: []*cra.DecodeError{},
	}

	s := a.Scan(window, "")
	for s.Next(ctx) {
		r.Events = append(r.Events, s.Event())
	}

	if err := s.Err(); err != nil {
		return nil, err
	}

	r.Failures = s.Failures()
	r.Cursor = s.Cursor()

	return r, nil
}
