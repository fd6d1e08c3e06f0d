package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) (*Connector, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := backoffUnit
	backoffUnit = time.Millisecond
	t.Cleanup(func() { backoffUnit = old })

	c := New(srv.URL, time.Minute, nil, nil)
	return c, srv
}

func TestFetch_MergesDefaultsCallerWins(t *testing.T) {
	var gotAction, gotFormat string
	c, _ := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.URL.Query().Get("action")
		gotFormat = r.URL.Query().Get("format")
		w.Write([]byte(`{}`))
	})

	_, err := c.Fetch(context.Background(), url.Values{"action": {"browsebysubject"}})
	require.NoError(t, err)
	assert.Equal(t, "browsebysubject", gotAction)
	assert.Equal(t, "json", gotFormat)
}

func TestFetch_RetriesTwiceThenSucceeds(t *testing.T) {
	var calls int32
	c, _ := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})

	body, err := c.Fetch(context.Background(), url.Values{"query": {"[[:LSD]]"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))

	// Within TTL, a repeat fetch for the same params must not hit upstream again.
	body2, err := c.Fetch(context.Background(), url.Values{"query": {"[[:LSD]]"}})
	require.NoError(t, err)
	assert.Equal(t, body, body2)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFetch_ExhaustsRetriesAndPropagatesError(t *testing.T) {
	var calls int32
	c, _ := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Fetch(context.Background(), url.Values{"query": {"[[:Nope]]"}})
	require.Error(t, err)
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls), "1 initial attempt + 3 retries")
}

func TestBuildURL_StableParamOrder(t *testing.T) {
	c := &Connector{baseURL: "https://example.com/api.php"}
	got := c.buildURL(url.Values{"b": {"2"}, "a": {"1"}})
	assert.Equal(t, "https://example.com/api.php?a=1&b=2", got)
}
