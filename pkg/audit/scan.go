package audit

import (
	"context"

	"github.com/craprotocol/echo/pkg/cra"
)

// Scan walks the indexer one page at a time, only fetching the next page once
// the current one has been consumed.
//
//	s := a.Scan(window, "")
//	for s.Next(ctx) {
//		ev := s.Event()
//	}
//	if err := s.Err(); err != nil {
//		...
//	}
type Scan struct {
	a      *Auditor
	window cra.Window

	// cursor is the position after the last fully consumed page, next the
	// position the next fetch starts from.
	cursor string
	next   string

	done  bool
	pages int

	buf      []*cra.TransferEvent
	current  *cra.TransferEvent
	failures []*cra.DecodeError
	err      error
}

// Next advances to the next decoded event. It returns false when the history
// is exhausted or the indexer failed; check Err to tell them apart.
func (s *Scan) Next(ctx context.Context) bool {
	for len(s.buf) == 0 {
		if s.err != nil || s.done {
			s.current = nil
			return false
		}

		if err := ctx.Err(); err != nil {
			s.err = err
			s.current = nil
			return false
		}

		s.fetch(ctx)
	}

	s.current = s.buf[0]
	s.buf = s.buf[1:]

	if len(s.buf) == 0 {
		s.cursor = s.next
	}

	return true
}

func (s *Scan) fetch(ctx context.Context) {
	r, more, err := s.a.Page(ctx, s.window, s.next, s.a.pageSize)
	if err != nil {
		s.err = err
		return
	}

	s.pages++
	s.failures = append(s.failures, r.Failures...)
	s.buf = r.Events
	if r.Cursor != "" {
		s.next = r.Cursor
	}

	if !more {
		s.done = true
	}

	if len(s.buf) == 0 {
		s.cursor = s.next
	}
}

// Event returns the event Next advanced to.
func (s *Scan) Event() *cra.TransferEvent {
	return s.current
}

// Err returns the error that stopped the scan, if any. Decode failures never
// stop a scan, see Failures.
func (s *Scan) Err() error {
	return s.err
}

// Failures returns the logs skipped so far because they did not decode.
func (s *Scan) Failures() []*cra.DecodeError {
	return s.failures
}

// Cursor returns the position after the last fully consumed page. Resuming
// from it may repeat events of a partially consumed page but never skips one.
func (s *Scan) Cursor() string {
	return s.cursor
}

// Pages returns the number of pages fetched.
func (s *Scan) Pages() int {
	return s.pages
}
