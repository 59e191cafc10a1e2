package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

const DefaultIndex = "sweets"

// Document is the indexed projection of a sweet. Category is case folded
// so term filters match regardless of how the admin typed it.
type Document struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type Query struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  bool
}

type SweetIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewSweetIndex(client *elasticsearch.Client, index string) *SweetIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &SweetIndex{ES: client, Index: index}
}

// Casers carry state and must not be shared between goroutines.
func foldString(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`)

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":          map[string]any{"type": "long"},
			"name":        map[string]any{"type": "keyword"},
			"description": map[string]any{"type": "text"},
			"category":    map[string]any{"type": "keyword"},
			"price":       map[string]any{"type": "scaled_float", "scaling_factor": 100},
			"quantity":    map[string]any{"type": "integer"},
		},
	},
}

func (i *SweetIndex) EnsureIndex(ctx context.Context) error {
	res, err := i.ES.Indices.Exists([]string{i.Index}, i.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := encode(indexMapping)
	if err != nil {
		return err
	}
	res, err = i.ES.Indices.Create(i.Index, i.ES.Indices.Create.WithBody(body), i.ES.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res.StatusCode, res.Body)
	}
	return nil
}

func (i *SweetIndex) IndexSweet(ctx context.Context, doc Document) error {
	doc.Category = foldString(doc.Category)
	body, err := encode(doc)
	if err != nil {
		return err
	}

	res, err := i.ES.Index(
		i.Index,
		body,
		i.ES.Index.WithDocumentID(strconv.FormatUint(uint64(doc.ID), 10)),
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("index sweet: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index sweet", res.StatusCode, res.Body)
	}
	return nil
}

func (i *SweetIndex) DeleteSweet(ctx context.Context, id uint) error {
	res, err := i.ES.Delete(i.Index, strconv.FormatUint(uint64(id), 10), i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete sweet: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete sweet", res.StatusCode, res.Body)
	}
	return nil
}

func (i *SweetIndex) buildQuery(q Query, from, size int) map[string]any {
	var filters []map[string]any

	if name := strings.TrimSpace(q.Name); name != "" {
		filters = append(filters, map[string]any{
			"wildcard": map[string]any{
				"name": map[string]any{"value": "*" + wildcardEscaper.Replace(name) + "*", "case_insensitive": true},
			},
		})
	}
	if category := foldString(q.Category); category != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{"category": category},
		})
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		rng := map[string]any{}
		if q.MinPrice != nil {
			rng["gte"] = q.MinPrice.InexactFloat64()
		}
		if q.MaxPrice != nil {
			rng["lte"] = q.MaxPrice.InexactFloat64()
		}
		filters = append(filters, map[string]any{"range": map[string]any{"price": rng}})
	}
	if q.InStock {
		filters = append(filters, map[string]any{"range": map[string]any{"quantity": map[string]any{"gt": 0}}})
	}

	query := map[string]any{"match_all": map[string]any{}}
	if len(filters) > 0 {
		query = map[string]any{"bool": map[string]any{"filter": filters}}
	}

	return map[string]any{
		"query":   query,
		"from":    from,
		"size":    size,
		"sort":    []any{map[string]any{"id": "asc"}},
		"_source": false,
	}
}

// Search returns matching sweet ids in id order; rows are loaded from the database by the caller.
func (i *SweetIndex) Search(ctx context.Context, q Query, from, size int) (int64, []uint, error) {
	body, err := encode(i.buildQuery(q, from, size))
	if err != nil {
		return 0, nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Index),
		i.ES.Search.WithBody(body),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search error: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.StatusCode, res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("unexpected document id %q: %w", hit.ID, err)
		}
		ids = append(ids, uint(id))
	}
	return r.Hits.Total.Value, ids, nil
}

func encode(v any) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return &buf, nil
}

func responseError(op string, status int, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("%s: elasticsearch status %d: %s", op, status, strings.TrimSpace(string(b)))
}
