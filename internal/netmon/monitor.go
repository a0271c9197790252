// Package netmon supplies the online/offline signal the sync scheduler
// reacts to: a periodic reachability probe with transition callbacks.
package netmon

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/fishlog/internal/logging"
)

const probeTimeout = 3 * time.Second

// Prober checks whether the network is reachable right now.
type Prober interface {
	Ping(ctx context.Context) error
}

// HTTPProber considers the network reachable when an HTTP HEAD to its URL
// gets any response at all; only transport errors mean offline.
type HTTPProber struct {
	url    string
	client *http.Client
}

func NewHTTPProber(url string) *HTTPProber {
	return &HTTPProber{url: url, client: &http.Client{}}
}

func (p *HTTPProber) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// Monitor polls a Prober and tracks the current online state. OnChange (if
// set) is invoked on every transition, from the monitor's goroutine.
type Monitor struct {
	prober   Prober
	interval time.Duration
	log      logging.Logger

	online atomic.Bool

	// OnChange receives the new state after each transition.
	OnChange func(online bool)
}

func NewMonitor(prober Prober, interval time.Duration, log logging.Logger) *Monitor {
	return &Monitor{
		prober:   prober,
		interval: interval,
		log:      log.With("component", "netmon"),
	}
}

// Online returns the most recently observed state. The monitor starts
// offline until the first successful probe.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Run probes immediately and then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := m.prober.Ping(probeCtx)
	cancel()

	online := err == nil
	if m.online.Swap(online) == online {
		return
	}

	if online {
		m.log.Info(ctx, "network is back, going online")
	} else {
		m.log.Info(ctx, "network lost, going offline", "error", err)
	}

	if m.OnChange != nil {
		m.OnChange(online)
	}
}
