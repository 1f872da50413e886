package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/craprotocol/echo/pkg/cra"
)

const contractLogsQuery = `query ContractLogs($contractId: String!, $signature: String!, $topic0: String!, $first: Int!, $after: String, $from: String, $to: String) {
  contractLogs(contractId: $contractId, signature: $signature, topic0: $topic0, first: $first, after: $after, timestampGte: $from, timestampLte: $to) {
    edges {
      cursor
      node {
        data
        topics
        timestamp
        transactionHash
        index
      }
    }
    pageInfo {
      hasNextPage
      endCursor
    }
  }
}`

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// Client talks to a mirror node GraphQL endpoint.
type Client struct {
	BaseURL string

	client *http.Client
}

func New(baseURL string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		BaseURL: baseURL,
		client:  client,
	}
}

// RunQuery posts query with its variables and decodes the data field into
// out. A response carrying errors fails with ErrIndexerQueryFailed and out is
// left untouched.
func (c *Client) RunQuery(ctx context.Context, query string, variables map[string]any, out any) error {
	if variables == nil {
		variables = map[string]any{}
	}

	data, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(data))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: http status %d", cra.ErrIndexerQueryFailed, resp.StatusCode)
		}
		return err
	}

	if hasErrors(r.Errors) {
		return fmt.Errorf("%w: GraphQL errors: %s", cra.ErrIndexerQueryFailed, string(r.Errors))
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: http status %d", cra.ErrIndexerQueryFailed, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	return json.Unmarshal(r.Data, out)
}

func hasErrors(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null" && s != "[]"
}

type logNode struct {
	Data            string        `json:"data"`
	Topics          []string      `json:"topics"`
	Timestamp       consensusTime `json:"timestamp"`
	TransactionHash string        `json:"transactionHash"`
	Index           int           `json:"index"`
}

type contractLogsData struct {
	ContractLogs struct {
		Edges []struct {
			Cursor string  `json:"cursor"`
			Node   logNode `json:"node"`
		} `json:"edges"`
		PageInfo struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
	} `json:"contractLogs"`
}

// ContractLogs fetches one page of contract logs. Time bounds are sent to
// the indexer as ISO-8601 strings.
func (c *Client) ContractLogs(ctx context.Context, q cra.LogQuery) (*cra.LogPage, error) {
	vars := map[string]any{
		"contractId": q.ContractID,
		"signature":  q.Signature,
		"topic0":     q.Topic0,
		"first":      cra.ClampPageSize(q.Limit),
	}

	if q.After != "" {
		vars["after"] = q.After
	}

	if q.Window.From != nil {
		vars["from"] = q.Window.From.UTC().Format(time.RFC3339Nano)
	}

	if q.Window.To != nil {
		vars["to"] = q.Window.To.UTC().Format(time.RFC3339Nano)
	}

	var data contractLogsData

	err := c.RunQuery(ctx, contractLogsQuery, vars, &data)
	if err != nil {
		return nil, err
	}

	page := &cra.LogPage{
		Logs:       make([]cra.RawLog, 0, len(data.ContractLogs.Edges)),
		NextCursor: data.ContractLogs.PageInfo.EndCursor,
		HasNext:    data.ContractLogs.PageInfo.HasNextPage,
	}

	for _, e := range data.ContractLogs.Edges {
		page.Logs = append(page.Logs, cra.RawLog{
			Data:            e.Node.Data,
			Topics:          e.Node.Topics,
			Timestamp:       time.Time(e.Node.Timestamp),
			TransactionHash: e.Node.TransactionHash,
			Index:           e.Node.Index,
		})
	}

	if page.NextCursor == "" && len(data.ContractLogs.Edges) > 0 {
		page.NextCursor = data.ContractLogs.Edges[len(data.ContractLogs.Edges)-1].Cursor
	}

	return page, nil
}

// consensusTime accepts ISO-8601 timestamps as well as the seconds.nanos
// form used by the mirror node REST API.
type consensusTime time.Time

func (t *consensusTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = consensusTime(time.Time{})
		return nil
	}

	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = consensusTime(ts.UTC())
		return nil
	}

	secs, nanos, _ := strings.Cut(s, ".")

	sec, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid consensus timestamp %q", s)
	}

	var nsec int64
	if nanos != "" {
		if len(nanos) > 9 {
			return fmt.Errorf("invalid consensus timestamp %q", s)
		}
		nsec, err = strconv.ParseInt(nanos+strings.Repeat("0", 9-len(nanos)), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid consensus timestamp %q", s)
		}
	}

	*t = consensusTime(time.Unix(sec, nsec).UTC())
	return nil
}
