package raritan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestPerformBulkEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bulk" {
			t.Errorf("expected path /bulk, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json-rpc" {
			t.Errorf("unexpected content type %q", ct)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "raritan" {
			t.Errorf("missing or wrong basic auth: %q/%q", user, pass)
		}

		var envelope struct {
			JSONRPC string `json:"jsonrpc"`
			Method  string `json:"method"`
			Params  struct {
				Requests []struct {
					RID  string `json:"rid"`
					JSON struct {
						JSONRPC string          `json:"jsonrpc"`
						Method  string          `json:"method"`
						ID      json.RawMessage `json:"id"`
					} `json:"json"`
				} `json:"requests"`
			} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if envelope.JSONRPC != "2.0" || envelope.Method != "performBulk" {
			t.Errorf("bad outer envelope: %s %s", envelope.JSONRPC, envelope.Method)
		}
		if len(envelope.Params.Requests) != 2 {
			t.Fatalf("expected 2 sub-requests, got %d", len(envelope.Params.Requests))
		}
		first := envelope.Params.Requests[0]
		if first.RID != "/model/pdu/0" || first.JSON.Method != "getInlets" || first.JSON.JSONRPC != "2.0" {
			t.Errorf("bad sub-request: %+v", first)
		}

		fmt.Fprint(w, `{"result":{"responses":[
			{"json":{"id":1,"result":{"_ret_":"b"}}},
			{"json":{"id":0,"result":{"_ret_":"a"}}}
		]}}`)
	}))
	defer srv.Close()

	c := NewBulkClient(srv.URL, "admin", "raritan", false)
	responses, err := c.PerformBulk(context.Background(), []Request{
		{RID: "/model/pdu/0", Method: "getInlets", ID: 0},
		{RID: "/model/pdu/0", Method: "getOutlets", ID: 1},
	})
	if err != nil {
		t.Fatalf("bulk request failed: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}

	// responses come back in device order, not request order
	id, err := responses[0].IntID()
	if err != nil || id != 1 {
		t.Errorf("expected first response to carry id 1, got %d (%v)", id, err)
	}
	var ret string
	if err := json.Unmarshal(responses[0].Result, &ret); err != nil || ret != "b" {
		t.Errorf("expected payload b, got %q (%v)", ret, err)
	}
}

func TestPerformBulkRetriesOnce(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"result":{"responses":[{"json":{"id":0,"result":{"_ret_":null}}}]}}`)
	}))
	defer srv.Close()

	c := NewBulkClient(srv.URL, "", "", false)
	responses, err := c.PerformBulk(context.Background(), []Request{
		{RID: "/model/pdu/0", Method: "getInlets", ID: 0},
	})
	if err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", got)
	}
}

func TestPerformBulkGivesUpAfterRetry(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewBulkClient(srv.URL, "", "", false)
	_, err := c.PerformBulk(context.Background(), []Request{
		{RID: "/model/pdu/0", Method: "getInlets", ID: 0},
	})
	if err == nil {
		t.Fatal("expected an error after the bounded retry")
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", got)
	}
}

func TestPerformBulkSkipsFailedSubRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":{"responses":[
			{"rid":"/a","json":{"id":0,"result":{"_ret_":1}}},
			{"rid":"/b","json":{"id":1,"error":{"code":-32601,"message":"no such method"}}}
		]}}`)
	}))
	defer srv.Close()

	c := NewBulkClient(srv.URL, "", "", false)
	responses, err := c.PerformBulk(context.Background(), []Request{
		{RID: "/a", Method: "getReading", ID: 0},
		{RID: "/b", Method: "getReading", ID: 1},
	})
	if err != nil {
		t.Fatalf("a failed sub-request must not fail the batch: %v", err)
	}
	if len(responses) != 1 {
		t.Fatalf("expected the failed sub-response to be dropped, got %d", len(responses))
	}
}

func TestPerformBulkOuterError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":-32600,"message":"invalid request"}}`)
	}))
	defer srv.Close()

	c := NewBulkClient(srv.URL, "", "", false)
	_, err := c.PerformBulk(context.Background(), []Request{
		{RID: "/model/pdu/0", Method: "getInlets", ID: 0},
	})
	if err == nil {
		t.Fatal("expected an outer rpc error to fail the batch")
	}
}

func TestResponseIDDecoding(t *testing.T) {
	r := Response{id: json.RawMessage(`"inlet"`)}
	tag, err := r.StringID()
	if err != nil || tag != "inlet" {
		t.Errorf("StringID = %q, %v", tag, err)
	}
	if _, err := r.IntID(); err == nil {
		t.Error("expected IntID to reject a string id")
	}

	r = Response{id: json.RawMessage(`7`)}
	id, err := r.IntID()
	if err != nil || id != 7 {
		t.Errorf("IntID = %d, %v", id, err)
	}
}
