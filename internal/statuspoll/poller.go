// Package statuspoll implements the client-side ticket status loop: poll
// at a fixed interval, surface the handoff once, surface resolution once,
// then stop. Errors are logged and the loop keeps going.
package statuspoll

import (
	"context"
	"log"
	"time"

	"mindhaven/internal/model"
)

// StatusFetcher returns the current status of a ticket. Implementations
// must be safe to call repeatedly; every poll gets a fresh answer.
type StatusFetcher interface {
	FetchStatus(ctx context.Context, ticketID uint) (model.TicketStatus, error)
}

// Poller watches one ticket on a fixed cadence. Each callback fires at
// most once; after OnResolved the loop exits on its own.
type Poller struct {
	fetcher  StatusFetcher
	interval time.Duration

	OnHandoff  func(ticketID uint)
	OnResolved func(ticketID uint)
	OnError    func(ticketID uint, err error)
}

func NewPoller(fetcher StatusFetcher, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 2500 * time.Millisecond
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
	}
}

// Run polls until the ticket resolves or ctx is cancelled. A fetch error
// does not change the cadence; the next tick retries at the same interval.
func (p *Poller) Run(ctx context.Context, ticketID uint) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	handedOff := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := p.fetcher.FetchStatus(ctx, ticketID)
			if err != nil {
				if p.OnError != nil {
					p.OnError(ticketID, err)
				} else {
					log.Printf("poll ticket %d status failed: %v", ticketID, err)
				}
				continue
			}

			switch status {
			case model.TicketStatusAssigned, model.TicketStatusInProgress:
				if !handedOff {
					handedOff = true
					if p.OnHandoff != nil {
						p.OnHandoff(ticketID)
					}
				}
			case model.TicketStatusResolved:
				if p.OnResolved != nil {
					p.OnResolved(ticketID)
				}
				return
			}
		}
	}
}
