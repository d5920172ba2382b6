// Package poller drives the periodic sensor refresh of a single PDU.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rackprobe/raritan-pdu-exporter/pkg/raritan"
)

// Poller reads one PDU's sensors on a fixed cadence. Exactly one Poller
// owns a PDU, so read cycles for that PDU never overlap; a slow transport
// simply delays the cycle.
type Poller struct {
	pdu      *raritan.PDU
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
}

func New(pdu *raritan.PDU, interval time.Duration) *Poller {
	return &Poller{
		pdu:      pdu,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background polling goroutine.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Stop signals the poller to stop and waits for the goroutine to exit.
func (p *Poller) Stop() {
	close(p.stopCh)
	<-p.done
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	// poll immediately on start
	p.pdu.ReadSensors(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.pdu.ReadSensors(ctx)
		case <-p.stopCh:
			return
		case <-ctx.Done():
			log.Debug().Msgf("stopping poller for %s", p.pdu.Name)
			return
		}
	}
}
