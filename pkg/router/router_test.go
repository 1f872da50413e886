package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/craprotocol/echo/internal/sc"
	"github.com/craprotocol/echo/pkg/audit"
	"github.com/craprotocol/echo/pkg/cra"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

type testIndexer struct {
	logs    []cra.RawLog
	err     error
	queries []cra.LogQuery
}

func (i *testIndexer) ContractLogs(ctx context.Context, q cra.LogQuery) (*cra.LogPage, error) {
	i.queries = append(i.queries, q)
	if i.err != nil {
		return nil, i.err
	}
	return &cra.LogPage{Logs: i.logs, NextCursor: "next", HasNext: true}, nil
}

func transferLog(t *testing.T, serial int64) cra.RawLog {
	craABI, err := sc.CRAEnforcementABI()
	require.NoError(t, err)

	ev := craABI.Events[sc.CRATransferEventName]

	data, err := ev.Inputs.NonIndexed().Pack(serial, cra.DefaultAcknowledgment)
	require.NoError(t, err)

	return cra.RawLog{
		Data: hexutil.Encode(data),
		Topics: []string{
			ev.ID.Hex(),
			common.HexToHash("0x04d2").Hex(),
			common.HexToHash("0xf1206").Hex(),
			common.HexToHash("0xf1207").Hex(),
		},
		Index: int(serial),
	}
}

type response struct {
	ResponseType string              `json:"response_type"`
	Array        []cra.TransferEvent `json:"array"`
	Meta         struct {
		Cursor   string `json:"cursor"`
		HasMore  bool   `json:"has_more"`
		Failures []struct {
			Index int    `json:"index"`
			Error string `json:"error"`
		} `json:"failures"`
	} `json:"meta"`
}

func newTestServer(t *testing.T, idx *testIndexer, apiKey string) *httptest.Server {
	a, err := audit.New(idx, audit.Options{ContractID: "0.0.123456"})
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(apiKey, a, cra.Window{}, 20).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestGetTransfers(t *testing.T) {
	bad := transferLog(t, 3)
	bad.Topics = bad.Topics[:1]

	idx := &testIndexer{logs: []cra.RawLog{transferLog(t, 1), transferLog(t, 2), bad}}
	srv := newTestServer(t, idx, "")

	resp, err := http.Get(srv.URL + "/v1/transfers?from=2025-01-01T00:00:00Z&cursor=abc&limit=500")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.Equal(t, "array", body.ResponseType)
	require.Len(t, body.Array, 2)
	require.Equal(t, "1", body.Array[0].SerialNumber)
	require.Equal(t, cra.DefaultAcknowledgment, body.Array[1].Acknowledgment)
	require.Equal(t, "next", body.Meta.Cursor)
	require.True(t, body.Meta.HasMore)
	require.Len(t, body.Meta.Failures, 1)
	require.Equal(t, 3, body.Meta.Failures[0].Index)
	require.NotEmpty(t, body.Meta.Failures[0].Error)

	require.Len(t, idx.queries, 1)
	require.Equal(t, "abc", idx.queries[0].After)
	require.Equal(t, cra.MaxPageSize, idx.queries[0].Limit)
	require.NotNil(t, idx.queries[0].Window.From)
	require.Nil(t, idx.queries[0].Window.To)
}

func TestGetTransfersDefaultLimit(t *testing.T) {
	idx := &testIndexer{}
	srv := newTestServer(t, idx, "")

	resp, err := http.Get(srv.URL + "/v1/transfers")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 20, idx.queries[0].Limit)
}

func TestGetTransfersErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		expected int
	}{
		{"bad from", "/v1/transfers?from=yesterday", nil, http.StatusBadRequest},
		{"inverted window", "/v1/transfers?from=2025-02-01T00:00:00Z&to=2025-01-01T00:00:00Z", nil, http.StatusBadRequest},
		{"indexer failure", "/v1/transfers", fmt.Errorf("%w: [{\"message\":\"down\"}]", cra.ErrIndexerQueryFailed), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &testIndexer{err: tt.err}, "")

			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			resp.Body.Close()

			require.Equal(t, tt.expected, resp.StatusCode)
		})
	}
}

func TestHealthAndAuth(t *testing.T) {
	srv := newTestServer(t, &testIndexer{}, "secret")

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/v1/transfers")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/transfers", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVersion(t *testing.T) {
	srv := newTestServer(t, &testIndexer{}, "")

	resp, err := http.Get(srv.URL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Object struct {
			Version string `json:"version"`
			Event   string `json:"event"`
		} `json:"object"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Object.Version)
	require.Equal(t, sc.CRATransferEvent, body.Object.Event)
}

func TestGetTransfersZeroLimit(t *testing.T) {
	idx := &testIndexer{}
	srv := newTestServer(t, idx, "")

	resp, err := http.Get(srv.URL + "/v1/transfers?limit=0")
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 20, idx.queries[0].Limit)
}

func countOptions(prefix string) int {
	n := 0
	options.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			n++
		}
		return true
	})
	return n
}

func TestOptionsCacheOnlyKnownRoutes(t *testing.T) {
	srv := newTestServer(t, &testIndexer{}, "secret")

	for k := 0; k < 500; k++ {
		resp, err := http.Get(fmt.Sprintf("%s/unknown/%d", srv.URL, k))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	require.Zero(t, countOptions("/unknown/"))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/version", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer secret")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "GET, OPTIONS", resp.Header.Get("Allow"))
	require.Equal(t, 1, countOptions("/version"))
}
