package terminal

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// NewHTTPClient returns the client shared by the prober, the roster and the
// submitter.  Timeouts are applied per request through contexts.
func NewHTTPClient(insecureSkipVerify bool) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	// Terminals talk to a fixed endpoint and carry no CA bundle.
	tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: insecureSkipVerify} //nolint:gosec
	tr.MaxIdleConns = 2
	tr.IdleConnTimeout = 30 * time.Second
	return &http.Client{Transport: tr}
}

// withQuery appends key=1 to endpoint.
func withQuery(endpoint, key string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		return endpoint + sep + key + "=1"
	}
	q := u.Query()
	q.Set(key, "1")
	u.RawQuery = q.Encode()
	return u.String()
}

type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
