package news

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hustlehub/marketplace/internal/domain"
	"github.com/hustlehub/marketplace/internal/pkg/ctxlog"
	"github.com/hustlehub/marketplace/internal/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads a raw payload from the provider.
type Fetcher interface {
	Fetch(ctx context.Context, category Category) ([]byte, error)
}

// Service serves headlines through a shared cache. Concurrent misses for the
// same category share one upstream call.
type Service struct {
	fetcher Fetcher
	cache   Cache
	retain  time.Duration
	group   singleflight.Group
	now     func() time.Time
}

// NewService creates a headlines service. Entries are kept for retain, which
// must cover the longest maxAge any caller passes to Headlines.
func NewService(fetcher Fetcher, cache Cache, retain time.Duration) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		retain:  retain,
		now:     time.Now,
	}
}

// Headlines returns the provider payload for category, fetched at most maxAge ago.
// Provider and transport failures are reported as domain.ErrUpstreamFailure.
func (s *Service) Headlines(ctx context.Context, category Category, maxAge time.Duration) (json.RawMessage, error) {
	log := ctxlog.FromContext(ctx)

	entry, err := s.cache.Get(ctx, category)
	if err != nil {
		log.Warn("headline cache unavailable", "category", category, "error", err)
		metrics.NewsCacheTotal.WithLabelValues("error").Inc()
	}
	if entry != nil && s.now().Sub(entry.FetchedAt) < maxAge {
		metrics.NewsCacheTotal.WithLabelValues("hit").Inc()
		return entry.Body, nil
	}
	metrics.NewsCacheTotal.WithLabelValues("miss").Inc()

	// The shared call outlives the caller that started it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(string(category), func() (interface{}, error) {
		body, err := s.fetcher.Fetch(shared, category)
		if err != nil {
			return nil, err
		}
		if !json.Valid(body) {
			return nil, fmt.Errorf("provider returned invalid JSON")
		}

		fresh := Entry{Body: body, FetchedAt: s.now()}
		if err := s.cache.Set(shared, category, fresh, s.retain); err != nil {
			log.Warn("store headlines", "category", category, "error", err)
		}
		return json.RawMessage(body), nil
	})
	if err != nil {
		log.Error("fetch headlines", "category", category, "error", err)
		return nil, fmt.Errorf("fetch headlines: %w", domain.ErrUpstreamFailure)
	}
	return v.(json.RawMessage), nil
}

// Articles extracts the article list from a provider payload.
func Articles(payload json.RawMessage) ([]json.RawMessage, error) {
	var body struct {
		Articles []json.RawMessage `json:"articles"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	if body.Articles == nil {
		body.Articles = []json.RawMessage{}
	}
	return body.Articles, nil
}
