package terminal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRosterFeed(t *testing.T) {
	feed := strings.Join([]string{
		"uid,firstName,lastName",
		"",
		"# staff",
		"04:a3:2b:1c,Ada,Lovelace",
		"AB12,John,",
		"CARD_UID,first,last",
		"DEADBEEF,Grace",
		",Nobody,Here",
		"CAFE,,NoFirst",
		"zz!!,Bad,Uid",
	}, "\n")

	entries, skipped := ParseRosterFeed(strings.NewReader(feed), quietLogger())
	assert.Equal(t, 3, skipped)
	assert.Equal(t, []RosterEntry{
		{UID: "04A32B1C", FirstName: "Ada", LastName: "Lovelace"},
		{UID: "AB12", FirstName: "John", LastName: ""},
		{UID: "DEADBEEF", FirstName: "Grace", LastName: ""},
	}, entries)
}

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("registry") != "1" {
			http.Error(w, "want registry", http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestRoster_LoadThenFind(t *testing.T) {
	ts := feedServer(t, 200, "uid,firstName,lastName\n04A32B1C,Ada,Lovelace\nAB12,John,\n")
	r := NewRoster(ts.Client(), ts.URL, time.Second, quietLogger())

	require.True(t, r.Load(context.Background()))
	assert.Equal(t, 2, r.Len())

	for _, q := range []string{"04A32B1C", "04a32b1c", "04:A3:2B:1C"} {
		e, ok := r.Find(q)
		require.True(t, ok, q)
		assert.Equal(t, "Ada", e.FirstName)
	}

	e, ok := r.Find("ab12")
	require.True(t, ok)
	assert.Equal(t, "", e.LastName)
	assert.Equal(t, "John", e.FullName())

	_, ok = r.Find("FFFF")
	assert.False(t, ok)

	uids := []string{}
	for _, e := range r.Entries() {
		uids = append(uids, e.UID)
	}
	assert.Equal(t, []string{"04A32B1C", "AB12"}, uids)
}

func TestRoster_LoadFailuresLeaveCacheEmpty(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", 500, "boom"},
		{"empty body", 200, ""},
		{"header only", 200, "uid,firstName,lastName\n"},
		{"no valid rows", 200, ",x,y\nzz,,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := feedServer(t, tt.status, tt.body)
			r := NewRoster(ts.Client(), ts.URL, time.Second, quietLogger())
			r.Upsert("AAAA", "Stale", "")

			_, err := r.Refresh(context.Background())
			var rle *RosterLoadError
			require.True(t, errors.As(err, &rle))
			assert.Contains(t, err.Error(), "no saved records")
			assert.Equal(t, 0, r.Len())
		})
	}
}

func TestRoster_LoadUnreachable(t *testing.T) {
	ts := feedServer(t, 200, "")
	url := ts.URL
	ts.Close()

	r := NewRoster(http.DefaultClient, url, time.Second, quietLogger())
	assert.False(t, r.Load(context.Background()))
	assert.Equal(t, 0, r.Len())
}

func TestRoster_LoadStalledFeedTimesOut(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	r := NewRoster(NewHTTPClient(true), ts.URL, 100*time.Millisecond, quietLogger())

	done := make(chan bool, 1)
	go func() { done <- r.Load(context.Background()) }()

	select {
	case ok := <-done:
		assert.False(t, ok)
		assert.Equal(t, 0, r.Len())
	case <-time.After(5 * time.Second):
		t.Fatal("Load did not return after the fetch timeout")
	}
}

func TestRoster_Upsert(t *testing.T) {
	r := NewRoster(http.DefaultClient, "http://unused", 0, quietLogger())

	r.Upsert("ab12", "John", "Smith")
	r.Upsert("AB12", "Johnny", "")
	e, ok := r.Find("AB12")
	require.True(t, ok)
	assert.Equal(t, "Johnny", e.FirstName, "first name always overwritten")
	assert.Equal(t, "Smith", e.LastName, "empty last name never erases")

	r.Upsert("AB12", "Johnny", "Cash")
	e, _ = r.Find("AB12")
	assert.Equal(t, "Cash", e.LastName)

	r.Upsert("CAFE", "", "Nobody")
	_, ok = r.Find("CAFE")
	assert.False(t, ok, "entries need a first name")
	assert.Equal(t, 1, r.Len())
}
