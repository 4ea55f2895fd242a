package terminal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rollcall-dev/rollcall/internal/rollcall/types"
)

const maxRosterFeed = 1 << 20

// RosterEntry is one locally cached person.
type RosterEntry struct {
	UID       string
	FirstName string
	LastName  string
}

// FullName joins the names with a single space.
func (e RosterEntry) FullName() string { return types.FullName(e.FirstName, e.LastName) }

// Roster is the terminal's in-memory copy of the remote roster.  It is
// owned by the control loop and takes no locks.
type Roster struct {
	entries  map[string]RosterEntry
	client   *http.Client
	endpoint string
	timeout  time.Duration
	logger   *log.Logger
}

// NewRoster returns an empty cache.  timeout bounds each feed fetch,
// including reading the body; it defaults to 10s.
func NewRoster(client *http.Client, endpoint string, timeout time.Duration, logger *log.Logger) *Roster {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Roster{
		entries:  make(map[string]RosterEntry),
		client:   client,
		endpoint: endpoint,
		timeout:  timeout,
		logger:   logger,
	}
}

func (r *Roster) Len() int { return len(r.entries) }

// Entries returns a copy of the cache ordered by uid.
func (r *Roster) Entries() []RosterEntry {
	out := make([]RosterEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

// Find looks uid up after normalising it.
func (r *Roster) Find(uid string) (RosterEntry, bool) {
	uid, err := types.NormalizeUID(uid)
	if err != nil {
		return RosterEntry{}, false
	}
	e, ok := r.entries[uid]
	return e, ok
}

// Upsert inserts uid when absent.  Otherwise the first name is always
// replaced and the last name only when last is non-empty.
func (r *Roster) Upsert(uid, first, last string) {
	uid, err := types.NormalizeUID(uid)
	if err != nil {
		return
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" {
		return
	}
	e, ok := r.entries[uid]
	if !ok {
		r.entries[uid] = RosterEntry{UID: uid, FirstName: first, LastName: last}
		return
	}
	e.FirstName = first
	if last != "" {
		e.LastName = last
	}
	r.entries[uid] = e
}

// Load fetches the registry feed and replaces the cache.  On any failure the
// cache is left empty, a warning is logged and boot continues.
func (r *Roster) Load(ctx context.Context) bool {
	n, err := r.Refresh(ctx)
	if err != nil {
		r.logger.Printf("roster load: %v", err)
		return false
	}
	r.logger.Printf("roster loaded count=%d", n)
	return true
}

// Refresh is Load with the error returned.  Failures are *RosterLoadError.
func (r *Roster) Refresh(ctx context.Context) (int, error) {
	r.entries = make(map[string]RosterEntry)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, withQuery(r.endpoint, "registry"), nil)
	if err != nil {
		return 0, &RosterLoadError{err: err}
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, &RosterLoadError{err: &TransportError{err: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &RosterLoadError{err: &HTTPError{Code: resp.StatusCode}}
	}

	entries, skipped := ParseRosterFeed(io.LimitReader(resp.Body, maxRosterFeed), r.logger)
	if skipped > 0 {
		r.logger.Printf("roster feed: skipped %d malformed rows", skipped)
	}
	if len(entries) == 0 {
		return 0, &RosterLoadError{err: errors.New("feed has no valid rows")}
	}
	for _, e := range entries {
		r.entries[e.UID] = e
	}
	return len(r.entries), nil
}

// ParseRosterFeed reads newline-delimited uid,firstName,lastName rows.
// Blank lines, '#' comments and header rows are skipped silently; rows
// without a valid uid or a first name are dropped and counted.
func ParseRosterFeed(rd io.Reader, logger *log.Logger) ([]RosterEntry, int) {
	cr := csv.NewReader(rd)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var (
		out     []RosterEntry
		skipped int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			skipped++
			logger.Printf("roster feed line %d: %v", pe.Line, pe.Err)
			continue
		}
		if err != nil {
			logger.Printf("roster feed: %v", err)
			break
		}

		if isHeader(rec) {
			continue
		}
		e, err := rosterRow(rec)
		if err != nil {
			skipped++
			line, _ := cr.FieldPos(0)
			logger.Printf("roster feed line %d: %v", line, err)
			continue
		}
		out = append(out, e)
	}
	return out, skipped
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	f := strings.TrimSpace(rec[0])
	return f == "uid" || f == "UID" || f == "CARD_UID"
}

func rosterRow(rec []string) (RosterEntry, error) {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}
	uid, err := types.NormalizeUID(field(0))
	if err != nil {
		return RosterEntry{}, fmt.Errorf("uid %q: %w", field(0), err)
	}
	first := field(1)
	if first == "" {
		return RosterEntry{}, fmt.Errorf("uid %s: missing first name", uid)
	}
	return RosterEntry{UID: uid, FirstName: first, LastName: field(2)}, nil
}
