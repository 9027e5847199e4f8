package connectivity

import (
	"cmp"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultProbeInterval = 30 * time.Second
	offlineInitialDelay  = time.Second
)

type ProberOptions struct {
	URL        string
	Interval   time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Prober is a Monitor driven by periodic HEAD requests. Any HTTP response
// counts as online; only transport failures count as offline. While offline
// the next probe follows an exponential backoff capped at the interval.
type Prober struct {
	url        string
	interval   time.Duration
	httpClient *http.Client
	state      *Switch

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ Monitor = (*Prober)(nil)

func NewProber(opts ProberOptions) *Prober {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cmp.Or(opts.Timeout, 10*time.Second)}
	}

	return &Prober{
		url:        opts.URL,
		interval:   cmp.Or(opts.Interval, DefaultProbeInterval),
		httpClient: httpClient,
		state:      NewSwitch(true),
	}
}

func (p *Prober) Online() bool {
	return p.state.Online()
}

func (p *Prober) Subscribe(fn func(online bool)) func() {
	return p.state.Subscribe(fn)
}

// Start probes once synchronously so Online is accurate on return, then keeps
// probing in the background until Stop or ctx is done.
func (p *Prober) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.state.Set(p.Probe(ctx))
	slog.Info("Connectivity prober started", "url", p.url, "interval", p.interval.String(), "online", p.Online())

	p.wg.Add(1)
	go p.run(ctx)
}

func (p *Prober) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	slog.Info("Connectivity prober stopped")
}

// Probe reports whether the probe URL answered.
func (p *Prober) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		slog.Error("Invalid probe URL", "url", p.url, "error", err)
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Debug("Connectivity probe failed", "url", p.url, "error", err)
		return false
	}
	resp.Body.Close()
	return true
}

func (p *Prober) run(ctx context.Context) {
	defer p.wg.Done()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = min(offlineInitialDelay, p.interval)
	policy.MaxInterval = p.interval
	policy.MaxElapsedTime = 0

	timer := time.NewTimer(p.nextDelay(policy))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			online := p.Probe(ctx)
			if ctx.Err() != nil {
				return
			}

			if online != p.Online() {
				slog.Info("Connectivity changed", "online", online)
			}
			p.state.Set(online)
			timer.Reset(p.nextDelay(policy))
		}
	}
}

func (p *Prober) nextDelay(policy *backoff.ExponentialBackOff) time.Duration {
	if p.Online() {
		policy.Reset()
		return p.interval
	}
	return policy.NextBackOff()
}
