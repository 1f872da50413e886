package version

import (
	"net/http"

	"github.com/craprotocol/echo/internal/common"
	"github.com/craprotocol/echo/internal/sc"
)

const Version = "0.1.0"

type Service struct{}

func NewService() *Service {
	return &Service{}
}

type response struct {
	Version string `json:"version"`
	Event   string `json:"event"`
}

// Current returns the current version of the API and the event it audits
func (s *Service) Current(w http.ResponseWriter, r *http.Request) {
	err := common.Body(w, &response{Version: Version, Event: sc.CRATransferEvent}, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
