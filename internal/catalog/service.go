package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	pkgerrors "github.com/mhs-fashion/storefront-backend/pkg/errors"
	"github.com/mhs-fashion/storefront-backend/pkg/logger"
	"github.com/mhs-fashion/storefront-backend/pkg/redis"
)

const (
	genderSampleSize     = 22
	specialitySampleSize = 600
	relatedSampleSize    = 4
)

// countCategories is the fixed set the storefront landing page shows.
var countCategories = []string{"panjabi", "polo", "shirt"}

type countsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// Service exposes the read-only catalog queries.
type Service interface {
	CategoryCounts(ctx context.Context) (map[string]int64, error)
	SampleByGender(ctx context.Context, gender string) ([]Item, error)
	ItemsByCategory(ctx context.Context, category string) ([]Item, error)
	ItemByID(ctx context.Context, hexID string) (*Item, error)
	SampleBySpeciality(ctx context.Context, speciality string) ([]Item, error)
	RelatedItems(ctx context.Context, category string) ([]Item, error)
}

type service struct {
	repo      Repository
	cache     countsCache
	countsTTL time.Duration
	logg      *logger.Logger
}

// NewService builds a catalog service. The cache is optional; when nil the
// category counts are read from the store on every request.
func NewService(repo Repository, cache countsCache, countsTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{
		repo:      repo,
		cache:     cache,
		countsTTL: countsTTL,
		logg:      logg,
	}, nil
}

func (s *service) CategoryCounts(ctx context.Context) (map[string]int64, error) {
	if cached, ok := s.cachedCounts(ctx); ok {
		return cached, nil
	}

	counts := make(map[string]int64, len(countCategories))
	for _, category := range countCategories {
		count, err := s.repo.CountByCategory(ctx, category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count items")
		}
		counts[category] = count
	}

	s.storeCounts(ctx, counts)
	return counts, nil
}

// cachedCounts reads the counts cache; any cache failure degrades to a
// direct store read.
func (s *service) cachedCounts(ctx context.Context) (map[string]int64, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, s.cache.CacheKey("items", "counts"))
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.logg != nil {
			s.logg.Warn(ctx, "counts cache read failed")
		}
		return nil, false
	}

	var counts map[string]int64
	if err := json.Unmarshal([]byte(raw), &counts); err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "counts cache entry corrupt")
		}
		return nil, false
	}
	return counts, true
}

func (s *service) storeCounts(ctx context.Context, counts map[string]int64) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey("items", "counts"), string(payload), s.countsTTL); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "counts cache write failed")
	}
}

func (s *service) SampleByGender(ctx context.Context, gender string) ([]Item, error) {
	if strings.TrimSpace(gender) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gender is required")
	}

	items, err := s.repo.SampleByGender(ctx, gender, genderSampleSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sample items by gender")
	}
	return items, nil
}

func (s *service) ItemsByCategory(ctx context.Context, category string) ([]Item, error) {
	if strings.TrimSpace(category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}

	items, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find items by category")
	}
	return items, nil
}

func (s *service) ItemByID(ctx context.Context, hexID string) (*Item, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hexID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed item id").
			WithDetails(map[string]any{"id": hexID})
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find item")
	}
	return item, nil
}

func (s *service) SampleBySpeciality(ctx context.Context, speciality string) ([]Item, error) {
	if strings.TrimSpace(speciality) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "speciality is required")
	}

	items, err := s.repo.SampleBySpeciality(ctx, speciality, specialitySampleSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sample items by speciality")
	}
	return items, nil
}

func (s *service) RelatedItems(ctx context.Context, category string) ([]Item, error) {
	if strings.TrimSpace(category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}

	items, err := s.repo.SampleByCategory(ctx, category, relatedSampleSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sample related items")
	}
	return items, nil
}
