package transfers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	com "github.com/craprotocol/echo/internal/common"
	"github.com/craprotocol/echo/pkg/audit"
	"github.com/craprotocol/echo/pkg/cra"
)

type Pager interface {
	Page(ctx context.Context, window cra.Window, cursor string, limit int) (*audit.Report, bool, error)
}

type Service struct {
	auditor Pager
	window  cra.Window
	limit   int
}

type Meta struct {
	Cursor   string             `json:"cursor"`
	HasMore  bool               `json:"has_more"`
	Failures []*cra.DecodeError `json:"failures"`
}

func NewService(auditor Pager, window cra.Window, limit int) *Service {
	return &Service{
		auditor: auditor,
		window:  window,
		limit:   cra.ClampPageSize(limit),
	}
}

// GetAll returns one page of decoded transfer events together with the logs
// on that page that failed to decode.
func (s *Service) GetAll(w http.ResponseWriter, r *http.Request) {
	window := s.window

	// parse time window from url query, falls back to the configured one
	fromq, _ := url.QueryUnescape(r.URL.Query().Get("from"))
	if fromq != "" {
		t, err := time.Parse(time.RFC3339, fromq)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		window.From = &t
	}

	toq, _ := url.QueryUnescape(r.URL.Query().Get("to"))
	if toq != "" {
		t, err := time.Parse(time.RFC3339, toq)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		window.To = &t
	}

	// parse pagination params from url query
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = s.limit
	}

	cursor := r.URL.Query().Get("cursor")

	report, more, err := s.auditor.Page(r.Context(), window, cursor, limit)
	if err != nil {
		switch {
		case errors.Is(err, cra.ErrInvalidWindow):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, cra.ErrIndexerQueryFailed):
			log.Default().Println(err)
			w.WriteHeader(http.StatusBadGateway)
		default:
			log.Default().Println(err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	err = com.BodyMultiple(w, report.Events, &Meta{
		Cursor:   report.Cursor,
		HasMore:  more,
		Failures: report.Failures,
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}
