package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skotchmaster/sweet_shop/internal/es"
	"github.com/Skotchmaster/sweet_shop/internal/metrics"
	"github.com/Skotchmaster/sweet_shop/internal/models"
	"github.com/Skotchmaster/sweet_shop/internal/mykafka"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/transport"
	"github.com/Skotchmaster/sweet_shop/internal/util"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
)

type SweetService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
	Index  SearchIndex
	cache  *sweetCache
}

func NewSweetService(r *repo.GormRepo, events EventPublisher, index SearchIndex) *SweetService {
	return &SweetService{
		Repo:   r,
		Events: events,
		Index:  index,
		cache:  newSweetCache(defaultCacheSize, defaultCacheTTL),
	}
}

// WithCacheTTL replaces the lookup cache; used by tests that need expiry.
func (s *SweetService) WithCacheTTL(ttl time.Duration) *SweetService {
	s.cache = newSweetCache(defaultCacheSize, ttl)
	return s
}

func (s *SweetService) invalidate(id uint) {
	if s.cache != nil {
		s.cache.Invalidate(id)
	}
}

func notFound(id uint) error {
	return detailed(ErrNotFound, "Sweet with ID %d not found", id)
}

func (s *SweetService) GetSweet(ctx context.Context, id uint) (*models.Sweet, error) {
	if s.cache != nil {
		if sweet, ok := s.cache.Get(id); ok {
			return sweet, nil
		}
	}

	sweet, err := s.Repo.GetSweet(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, notFound(id)
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(sweet)
	}
	return sweet, nil
}

func (s *SweetService) ListSweets(ctx context.Context, skip, limit int) (int64, []models.Sweet, error) {
	offset, size := util.Window(skip, limit)
	return s.Repo.ListSweets(ctx, offset, size)
}

// SearchSweets prefers the search index and falls back to the database
// when the index is absent or failing.
func (s *SweetService) SearchSweets(ctx context.Context, req transport.SearchRequest, skip, limit int) (int64, []models.Sweet, error) {
	if err := transport.Validate(req); err != nil {
		return 0, nil, detailed(ErrValidation, "%s", transport.Detail(err))
	}
	if req.MinPrice != nil && req.MaxPrice != nil && req.MinPrice.GreaterThan(*req.MaxPrice) {
		return 0, nil, detailed(ErrValidation, "min_price must not exceed max_price")
	}

	offset, size := util.Window(skip, limit)
	inStock := req.InStock != nil && *req.InStock

	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, es.Query{
			Name:     req.Name,
			Category: req.Category,
			MinPrice: req.MinPrice,
			MaxPrice: req.MaxPrice,
			InStock:  inStock,
		}, offset, size)
		if err == nil {
			items, err := s.Repo.SweetsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			metrics.SearchesPerformed.WithLabelValues("elasticsearch").Inc()
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_fallback", "error", err)
	}

	metrics.SearchesPerformed.WithLabelValues("database").Inc()
	return s.Repo.SearchSweets(ctx, repo.SweetFilter{
		Name:     req.Name,
		Category: req.Category,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		InStock:  inStock,
	}, offset, size)
}

func (s *SweetService) CreateSweet(ctx context.Context, req transport.CreateSweetRequest) (*models.Sweet, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if err := transport.Validate(req); err != nil {
		return nil, detailed(ErrValidation, "%s", transport.Detail(err))
	}

	sweet := &models.Sweet{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Price:       req.Price.Round(2),
		Quantity:    req.Quantity,
		IsAvailable: req.Quantity > 0,
	}
	if err := s.Repo.CreateSweet(ctx, sweet); err != nil {
		if errors.Is(err, repo.ErrDuplicateName) {
			return nil, detailed(ErrConflict, "Sweet with name '%s' already exists", req.Name)
		}
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicSweetEvents, idKey(sweet.ID), map[string]any{
		"type":     "sweet_created",
		"sweetID":  sweet.ID,
		"name":     sweet.Name,
		"category": sweet.Category,
		"price":    sweet.Price.String(),
		"quantity": sweet.Quantity,
	})
	reindex(ctx, s.Index, sweet)
	return sweet, nil
}

func (s *SweetService) UpdateSweet(ctx context.Context, id uint, req transport.UpdateSweetRequest) (*models.Sweet, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Category != nil {
		trimmed := strings.TrimSpace(*req.Category)
		req.Category = &trimmed
	}
	if req.Price != nil {
		rounded := req.Price.Round(2)
		req.Price = &rounded
	}
	if err := transport.Validate(req); err != nil {
		return nil, detailed(ErrValidation, "%s", transport.Detail(err))
	}

	sweet, err := s.Repo.UpdateSweet(ctx, id, req)
	if err != nil {
		switch {
		case repo.IsNotFound(err):
			return nil, notFound(id)
		case errors.Is(err, repo.ErrDuplicateName):
			return nil, detailed(ErrConflict, "Sweet with name '%s' already exists", *req.Name)
		}
		return nil, err
	}
	s.invalidate(id)

	publish(ctx, s.Events, mykafka.TopicSweetEvents, idKey(id), map[string]any{
		"type":     "sweet_updated",
		"sweetID":  sweet.ID,
		"name":     sweet.Name,
		"price":    sweet.Price.String(),
		"quantity": sweet.Quantity,
	})
	reindex(ctx, s.Index, sweet)
	return sweet, nil
}

func (s *SweetService) DeleteSweet(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteSweet(ctx, id); err != nil {
		if repo.IsNotFound(err) {
			return notFound(id)
		}
		return err
	}
	s.invalidate(id)

	publish(ctx, s.Events, mykafka.TopicSweetEvents, idKey(id), map[string]any{
		"type":    "sweet_deleted",
		"sweetID": id,
	})
	unindex(ctx, s.Index, id)
	return nil
}

// Reindex copies the whole catalog into the search index.
func (s *SweetService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	indexed := 0
	for offset := 0; ; offset += util.MaxLimit {
		_, items, err := s.Repo.ListSweets(ctx, offset, util.MaxLimit)
		if err != nil {
			return indexed, err
		}
		for i := range items {
			if err := s.Index.IndexSweet(ctx, sweetDocument(&items[i])); err != nil {
				return indexed, err
			}
			indexed++
		}
		if len(items) < util.MaxLimit {
			return indexed, nil
		}
	}
}
