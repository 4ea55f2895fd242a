package terminal

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"
)

// Prober checks at boot whether the remote store answers at all.
type Prober struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
	logger   *log.Logger
}

func NewProber(client *http.Client, endpoint string, timeout time.Duration, logger *log.Logger) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	// Redirects count as reachable; do not follow them.
	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return &Prober{client: &c, endpoint: endpoint, timeout: timeout, logger: logger}
}

// Probe GETs <endpoint>?health=1 and reports whether it answered 200–399
// within the timeout.
func (p *Prober) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, withQuery(p.endpoint, "health"), nil)
	if err != nil {
		p.logger.Printf("health probe: %v", err)
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Printf("health probe: %v", err)
		return false
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 400
	p.logger.Printf("health probe status=%d ok=%t", resp.StatusCode, ok)
	return ok
}
