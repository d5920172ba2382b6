package poller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rackprobe/raritan-pdu-exporter/pkg/raritan"
)

func TestPollerCadence(t *testing.T) {
	var polls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		fmt.Fprint(w, `{"result":{"responses":[]}}`)
	}))
	defer srv.Close()

	pdu, err := raritan.New(raritan.Config{Location: srv.URL, Name: "rack-a"})
	if err != nil {
		t.Fatalf("failed to construct PDU: %v", err)
	}

	p := New(pdu, 20*time.Millisecond)
	p.Start(context.Background())

	// one immediate poll plus at least one tick
	deadline := time.Now().Add(2 * time.Second)
	for polls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()

	if got := polls.Load(); got < 2 {
		t.Fatalf("expected at least 2 polls, got %d", got)
	}

	// no polls after Stop returns
	settled := polls.Load()
	time.Sleep(60 * time.Millisecond)
	if got := polls.Load(); got != settled {
		t.Errorf("poller kept polling after Stop: %d -> %d", settled, got)
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":{"responses":[]}}`)
	}))
	defer srv.Close()

	pdu, err := raritan.New(raritan.Config{Location: srv.URL, Name: "rack-a"})
	if err != nil {
		t.Fatalf("failed to construct PDU: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := New(pdu, 10*time.Millisecond)
	p.Start(ctx)
	cancel()

	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not exit on context cancellation")
	}
}
