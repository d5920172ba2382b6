package raritan

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	bulkPath       = "/bulk"
	rpcVersion     = "2.0"
	rpcContentType = "application/json-rpc"

	// Fixed request timeout on the bulk endpoint.
	requestTimeout = 10 * time.Second
)

// Request is one sub-request within a bulk exchange. The ID is the
// caller-assigned correlation token used to match the sub-response back to
// this request: a connector type name during enumeration, a sequence index
// everywhere else. Responses may come back in any order.
type Request struct {
	RID    string
	Method string
	ID     any
}

// Response is one sub-response from a bulk exchange. Result holds the raw
// '_ret_' payload for the caller to decode.
type Response struct {
	id     json.RawMessage
	Result json.RawMessage
}

// StringID decodes the correlation id as a string tag.
func (r *Response) StringID() (string, error) {
	var id string
	if err := json.Unmarshal(r.id, &id); err != nil {
		return "", fmt.Errorf("failed to decode correlation id %s: %w", string(r.id), err)
	}
	return id, nil
}

// IntID decodes the correlation id as a sequence index.
func (r *Response) IntID() (int, error) {
	var id int
	if err := json.Unmarshal(r.id, &id); err != nil {
		return 0, fmt.Errorf("failed to decode correlation id %s: %w", string(r.id), err)
	}
	return id, nil
}

// Wire format of the bulk endpoint. Each sub-request is a complete JSON-RPC
// envelope addressed to an object RID, wrapped in an outer 'performBulk'
// envelope.
type (
	rpcEnvelope struct {
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
		Params  any    `json:"params,omitempty"`
		ID      any    `json:"id"`
	}

	bulkSubRequest struct {
		RID  string      `json:"rid"`
		JSON rpcEnvelope `json:"json"`
	}

	bulkParams struct {
		Requests []bulkSubRequest `json:"requests"`
	}

	rpcError struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	bulkSubResponse struct {
		RID  string `json:"rid,omitempty"`
		JSON struct {
			ID     json.RawMessage `json:"id"`
			Result struct {
				Ret json.RawMessage `json:"_ret_"`
			} `json:"result"`
			Error *rpcError `json:"error,omitempty"`
		} `json:"json"`
	}

	bulkReply struct {
		Result struct {
			Responses []bulkSubResponse `json:"responses"`
		} `json:"result"`
		Error *rpcError `json:"error,omitempty"`
	}
)

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Client speaks the bulk JSON-RPC interface of a single PDU. It owns the
// HTTP session, basic auth, TLS policy, and the one bounded connect retry.
type Client struct {
	endpoint string
	username string
	password string
	http     *http.Client
	seq      atomic.Int64
}

// NewBulkClient creates a client for the bulk endpoint of the PDU at
// location (scheme://host). Insecure disables certificate validation.
func NewBulkClient(location, username, password string, insecure bool) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(location, "/") + bulkPath,
		username: username,
		password: password,
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
			},
		},
	}
}

// PerformBulk sends one batch of sub-requests and returns the sub-responses
// in the order the PDU produced them, which is not necessarily the request
// order. Callers correlate by ID, never by position.
func (c *Client) PerformBulk(ctx context.Context, reqs []Request) ([]Response, error) {
	params := bulkParams{Requests: make([]bulkSubRequest, 0, len(reqs))}
	for _, req := range reqs {
		params.Requests = append(params.Requests, bulkSubRequest{
			RID: req.RID,
			JSON: rpcEnvelope{
				JSONRPC: rpcVersion,
				Method:  req.Method,
				ID:      req.ID,
			},
		})
	}

	envelope := rpcEnvelope{
		JSONRPC: rpcVersion,
		Method:  "performBulk",
		Params:  params,
		ID:      c.seq.Add(1),
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bulk request: %w", err)
	}

	b, err := c.post(ctx, body)
	if err != nil {
		// max. 1 retry to prevent pool overflows
		log.Debug().Err(err).Msgf("retrying bulk request to %s", c.endpoint)
		b, err = c.post(ctx, body)
		if err != nil {
			return nil, err
		}
	}

	var reply bulkReply
	if err := json.Unmarshal(b, &reply); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bulk response: %w", err)
	}
	if reply.Error != nil {
		return nil, reply.Error
	}

	responses := make([]Response, 0, len(reply.Result.Responses))
	for _, sub := range reply.Result.Responses {
		if sub.JSON.Error != nil {
			log.Warn().Str("rid", sub.RID).Msgf("sub-request failed: %v", sub.JSON.Error)
			continue
		}
		responses = append(responses, Response{
			id:     sub.JSON.ID,
			Result: sub.JSON.Result.Ret,
		})
	}
	log.Debug().Msgf("/performBulk with %d requests received %d response(s)",
		len(reqs), len(responses))
	return responses, nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk request: %w", err)
	}
	req.Header.Set("Content-Type", rpcContentType)
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach bulk endpoint: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bulk endpoint returned %s", res.Status)
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bulk response body: %w", err)
	}
	return b, nil
}
