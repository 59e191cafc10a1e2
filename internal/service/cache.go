package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Skotchmaster/sweet_shop/internal/metrics"
	"github.com/Skotchmaster/sweet_shop/internal/models"
)

const (
	defaultCacheSize = 512
	defaultCacheTTL  = 30 * time.Second
)

// sweetCache holds single-sweet lookups. Every mutation path invalidates
// the touched id, so the TTL only bounds drift from writes made elsewhere.
type sweetCache struct {
	lru *expirable.LRU[uint, models.Sweet]
}

func newSweetCache(size int, ttl time.Duration) *sweetCache {
	return &sweetCache{lru: expirable.NewLRU[uint, models.Sweet](size, nil, ttl)}
}

func (c *sweetCache) Get(id uint) (*models.Sweet, bool) {
	s, ok := c.lru.Get(id)
	if !ok {
		metrics.SweetCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.SweetCacheLookups.WithLabelValues("hit").Inc()
	return &s, true
}

func (c *sweetCache) Set(s *models.Sweet) {
	c.lru.Add(s.ID, *s)
}

func (c *sweetCache) Invalidate(id uint) {
	c.lru.Remove(id)
}
