package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/internal/es"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/testutil"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
)

type publishedEvent struct {
	topic string
	key   string
	event map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{topic: topic, key: key, event: event.(map[string]any)})
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.event["type"].(string))
	}
	return out
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[uint]es.Document
	deleted []uint
	ids     []uint
	err     error
	queries []es.Query
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[uint]es.Document{}} }

func (f *fakeIndex) IndexSweet(_ context.Context, doc es.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) DeleteSweet(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, q es.Query, _, _ int) (int64, []uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.ids)), f.ids, nil
}

var errIndexDown = errors.New("index down")

type testEnv struct {
	repo      *repo.GormRepo
	events    *fakePublisher
	sweets    *SweetService
	inventory *InventoryService
}

func newTestEnv(t *testing.T, index SearchIndex) *testEnv {
	t.Helper()
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	events := &fakePublisher{}
	sweets := NewSweetService(r, events, index)
	return &testEnv{
		repo:      r,
		events:    events,
		sweets:    sweets,
		inventory: &InventoryService{Repo: r, Sweets: sweets, Events: events, Index: index},
	}
}

func (env *testEnv) create(t *testing.T, name, category, price string, qty int) *models.Sweet {
	t.Helper()
	s, err := env.sweets.CreateSweet(context.Background(), transport.CreateSweetRequest{
		Name:     name,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
	})
	require.NoError(t, err)
	return s
}
