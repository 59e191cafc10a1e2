package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/pkg/logging"
)

type fakeES struct {
	mu       sync.Mutex
	requests map[string][]byte
	search   string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests[r.Method+" "+r.URL.Path] = body
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, f.search)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	default:
		_, _ = io.WriteString(w, `{"result":"created"}`)
	}
}

func newFake(t *testing.T) (*fakeES, *SweetIndex) {
	t.Helper()
	f := &fakeES{requests: map[string][]byte{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), Config{URL: srv.URL}, logging.Discard())
	require.NoError(t, err)
	return f, NewSweetIndex(client, "")
}

func TestSearch_BuildsFiltersAndParsesIDs(t *testing.T) {
	f, idx := newFake(t)
	f.search = `{"hits":{"total":{"value":2},"hits":[{"_id":"3"},{"_id":"11"}]}}`

	minP := decimal.RequireFromString("2.50")
	total, ids, err := idx.Search(context.Background(), Query{Name: "jam", Category: "DRY", MinPrice: &minP, InStock: true}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uint{3, 11}, ids)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(f.requests["POST /sweets/_search"], &sent))
	filters := sent["query"].(map[string]any)["bool"].(map[string]any)["filter"].([]any)
	require.Len(t, filters, 4)

	term := filters[1].(map[string]any)["term"].(map[string]any)
	assert.Equal(t, "dry", term["category"])

	wildcard := filters[0].(map[string]any)["wildcard"].(map[string]any)["name"].(map[string]any)
	assert.Equal(t, "*jam*", wildcard["value"])
	assert.Equal(t, true, wildcard["case_insensitive"])
}

func TestIndexSweet_FoldsCategory(t *testing.T) {
	f, idx := newFake(t)

	require.NoError(t, idx.IndexSweet(context.Background(), Document{ID: 5, Name: "Jalebi", Category: "Fried", Price: 3.2, Quantity: 4}))

	var doc Document
	require.NoError(t, json.Unmarshal(f.requests["PUT /sweets/_doc/5"], &doc))
	assert.Equal(t, "fried", doc.Category)
	assert.Equal(t, "Jalebi", doc.Name)
}

func TestDeleteSweet_MissingIsNotAnError(t *testing.T) {
	_, idx := newFake(t)
	require.NoError(t, idx.DeleteSweet(context.Background(), 42))
}

func TestBuildQuery_MatchAllWithoutFilters(t *testing.T) {
	idx := NewSweetIndex(nil, "custom")
	q := idx.buildQuery(Query{}, 10, 5)
	assert.Contains(t, q["query"], "match_all")
	assert.Equal(t, 10, q["from"])
	assert.Equal(t, "custom", idx.Index)
}
