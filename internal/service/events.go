package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/sweet_shop/internal/es"
	"github.com/Skotchmaster/sweet_shop/internal/metrics"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
)

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// SearchIndex mirrors the catalog into a search backend.
type SearchIndex interface {
	IndexSweet(ctx context.Context, doc es.Document) error
	DeleteSweet(ctx context.Context, id uint) error
	Search(ctx context.Context, q es.Query, from, size int) (int64, []uint, error)
}

const sideEffectTimeout = 5 * time.Second

// publish never fails the caller: the database is the source of truth.
func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	l := logging.FromContext(ctx)
	eventType := fmt.Sprint(event["type"])
	if _, ok := event["eventID"]; !ok {
		event["eventID"] = uuid.NewString()
	}
	event["occurredAt"] = time.Now().UTC().Format(time.RFC3339)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		metrics.EventPublishErrors.WithLabelValues(topic, eventType).Inc()
		l.Error("kafka_publish_error", "topic", topic, "type", eventType, "error", err)
		return
	}
	metrics.EventsPublished.WithLabelValues(topic, eventType).Inc()
}

func sweetDocument(s *models.Sweet) es.Document {
	return es.Document{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
		Price:       s.Price.InexactFloat64(),
		Quantity:    s.Quantity,
	}
}

func reindex(ctx context.Context, idx SearchIndex, s *models.Sweet) {
	if idx == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := idx.IndexSweet(ctx, sweetDocument(s)); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "sweet_id", s.ID, "error", err)
	}
}

func unindex(ctx context.Context, idx SearchIndex, id uint) {
	if idx == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := idx.DeleteSweet(ctx, id); err != nil {
		logging.FromContext(ctx).Error("search_unindex_error", "sweet_id", id, "error", err)
	}
}
