package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psychonautwiki/bifrost/internal/upstream"
)

// fakeConnector lets tests assert whether Fetch was ever called without
// standing up an HTTP server, for cases that must fail before any I/O.
type fakeConnector struct {
	calls int32
	fn    func(params url.Values) (json.RawMessage, error)
}

func (f *fakeConnector) Fetch(_ context.Context, params url.Values) (json.RawMessage, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.fn(params)
}

func TestSubstances_MutualExclusion_NoUpstreamCalls(t *testing.T) {
	fc := &fakeConnector{fn: func(url.Values) (json.RawMessage, error) {
		t.Fatal("upstream should not be called when arguments are mutually exclusive")
		return nil, nil
	}}
	r := New(fc, nil, nil, "https://example.com/")

	q := "LSD"
	_, err := r.Substances(context.Background(), substancesArgs{
		Query:  &q,
		Effect: &[]string{"Euphoria"},
	})
	require.Error(t, err)
	assert.EqualValues(t, 0, atomic.LoadInt32(&fc.calls))
}

func lsdAskResponse() string {
	return `{"query":{"results":{"LSD":{"fulltext":"LSD","fullurl":"https://psychonautwiki.org/wiki/LSD","printouts":{}}}}}`
}

func lsdBrowseResponse() string {
	return `{"query":{"subject":"LSD","data":[
		{"property":"Psychoactive_class","dataitem":[{"type":9,"item":"Psychedelic"}]},
		{"property":"Chemical_class","dataitem":[{"type":9,"item":"Lysergamide"}]}
	]}}`
}

func TestSubstances_QueryBranch_EndToEnd(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch req.URL.Query().Get("action") {
		case "ask":
			w.Write([]byte(lsdAskResponse()))
		case "browsebysubject":
			w.Write([]byte(lsdBrowseResponse()))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	conn := upstream.New(srv.URL, time.Minute, nil, nil)
	r := New(conn, nil, nil, "https://example.com/")

	q := "LSD"
	subs, err := r.Substances(context.Background(), substancesArgs{Query: &q, Limit: 1})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "LSD", subs[0].Name())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "one ask call plus one browsebysubject call")

	class, err := subs[0].Class(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Psychedelic"}, class.Psychoactive())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "class came from the already-fetched record, no extra call")

	_, err = r.Substances(context.Background(), substancesArgs{Query: &q, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "repeat query within TTL must not hit upstream again")
}

func TestSubstancesByEffect_NoEnrichment_LazyFieldsFetchOnDemand(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch req.URL.Query().Get("action") {
		case "ask":
			w.Write([]byte(lsdAskResponse()))
		case "browsebysubject":
			w.Write([]byte(lsdBrowseResponse()))
		}
	}))
	defer srv.Close()

	conn := upstream.New(srv.URL, time.Minute, nil, nil)
	r := New(conn, nil, nil, "https://example.com/")

	subs, err := r.SubstancesByEffect(context.Background(), substancesByEffectArgs{Effect: []string{"Euphoria"}})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "listing alone must not trigger enrichment")

	_, err = subs[0].Class(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "first field access triggers exactly one browsebysubject call")
}

func TestResolveInteractions_StubOnZeroMatches(t *testing.T) {
	fc := &fakeConnector{fn: func(params url.Values) (json.RawMessage, error) {
		return json.RawMessage(`{"query":{"results":{}}}`), nil
	}}
	r := New(fc, nil, nil, "https://example.com/")

	subs, err := r.resolveInteractions(context.Background(), []string{"Alcohol"})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Alcohol", subs[0].Name())
	assert.True(t, subs[0].isStub)
}

func TestErowid_FeatureDisabledReturnsError(t *testing.T) {
	r := New(&fakeConnector{fn: func(url.Values) (json.RawMessage, error) { return nil, nil }}, nil, nil, "https://example.com/")
	_, err := r.Erowid(context.Background(), erowidArgs{})
	require.Error(t, err)
}

func TestSchema_OmitsErowidWhenDisabled(t *testing.T) {
	assert.NotContains(t, Schema(false), "erowid")
	assert.Contains(t, Schema(true), "erowid")
}
