package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/rollcall-dev/rollcall/internal/metrics"
	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

const maxReplyBody = 64 << 10

// Linker brings the network up before each attempt.
type Linker interface {
	EnsureConnected(ctx context.Context) bool
}

type SubmitConfig struct {
	MaxAttempts int
	Backoff     time.Duration
	Timeout     time.Duration // per attempt
}

// Submitter POSTs one scan with bounded retries.
type Submitter struct {
	client      *http.Client
	endpoint    string
	link        Linker
	maxAttempts int
	backoff     time.Duration
	timeout     time.Duration
	metrics     *metrics.Terminal
	logger      *log.Logger
	sleep       sleepFunc
}

func NewSubmitter(client *http.Client, endpoint string, link Linker, cfg SubmitConfig, m *metrics.Terminal, logger *log.Logger) *Submitter {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Submitter{
		client:      client,
		endpoint:    endpoint,
		link:        link,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		timeout:     cfg.Timeout,
		metrics:     m,
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// Submit sends the scan and returns the first successful Outcome, or the
// last Failed one once attempts are exhausted.
func (s *Submitter) Submit(ctx context.Context, uid string, at time.Time) Outcome {
	return s.send(ctx, uid, types.EndpointRequest{
		UID:       uid,
		Action:    types.ActionScan,
		Timestamp: at.UTC().Format(time.RFC3339),
	})
}

// Register enrols uid under the given names with the same retry policy.
// The store answers with action "registered", which classifies as
// Acknowledged.
func (s *Submitter) Register(ctx context.Context, uid, first, last string) Outcome {
	return s.send(ctx, uid, types.EndpointRequest{
		UID:       uid,
		Action:    types.ActionRegister,
		FirstName: first,
		LastName:  last,
	})
}

func (s *Submitter) send(ctx context.Context, uid string, req types.EndpointRequest) Outcome {
	payload, err := json.Marshal(req)
	if err != nil {
		return failed(&ProtocolError{Reason: "encode request: " + err.Error()})
	}

	start := time.Now()
	var o Outcome
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.metrics.Attempt()
		o = s.attempt(ctx, payload)
		o.Attempts = attempt
		o.Elapsed = time.Since(start)

		if o.Success() {
			return o
		}
		s.logger.Printf("%s uid=%s attempt=%d/%d failed: %v", req.Action, uid, attempt, s.maxAttempts, o.Err)

		if attempt < s.maxAttempts {
			if err := s.sleep(ctx, s.backoff); err != nil {
				return o
			}
		}
	}
	return o
}

func (s *Submitter) attempt(ctx context.Context, payload []byte) Outcome {
	if s.link != nil && !s.link.EnsureConnected(ctx) {
		return failed(ErrNetworkUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Classify(0, nil, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Classify(0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBody))
	if err != nil {
		return Classify(0, nil, err)
	}
	return Classify(resp.StatusCode, body, nil)
}
