package service

import (
	"context"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/observability"
	"github.com/cineflixpay/ashley-assistant-go/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// gallerySections são as prateleiras da vitrine, na ordem de exibição.
// Cada uma vira uma chamada ao colaborador de catálogo.
var gallerySections = []struct {
	key      string
	title    string
	endpoint string
	params   map[string]string
}{
	{"em_alta", "🔥 Em Alta", "/trending/movie/week", nil},
	{"series", "📺 Séries em Alta", "/trending/tv/week", nil},
	{"acao", "💥 Ação", "/discover/movie", map[string]string{"with_genres": "28"}},
	{"kdramas", "🌸 K-Dramas", "/discover/tv", map[string]string{"with_origin_country": "KR", "sort_by": "popularity.desc"}},
	{"romance", "💕 Romance", "/discover/movie", map[string]string{"with_genres": "10749"}},
	{"populares", "🎬 Populares", "/movie/popular", nil},
}

// GallerySection é uma prateleira montada para a resposta da API.
type GallerySection struct {
	Key     string               `json:"key"`
	Title   string               `json:"title"`
	Results []domain.CatalogItem `json:"results"`
}

// GalleryService monta a vitrine de filmes/séries. As seções são
// buscadas em paralelo; uma seção que falha é OMITIDA da resposta,
// nunca derruba a vitrine inteira.
type GalleryService struct {
	fetcher port.CatalogFetcher
	cache   port.Cache[*domain.CatalogPage]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewGalleryService creates the gallery service.
func NewGalleryService(
	fetcher port.CatalogFetcher,
	cache port.Cache[*domain.CatalogPage],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *GalleryService {
	return &GalleryService{
		fetcher: fetcher,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Sections busca todas as prateleiras (cache 10 min por seção).
func (s *GalleryService) Sections(ctx context.Context) []GallerySection {
	ctx, span := tracer.Start(ctx, "Gallery.Sections")
	defer span.End()

	pages := make([]*domain.CatalogPage, len(gallerySections))

	g, ctx := errgroup.WithContext(ctx)
	for i, sec := range gallerySections {
		i, sec := i, sec
		g.Go(func() error {
			if page, ok := s.cache.Get(sec.key); ok {
				s.metrics.IncrCacheHit("gallery")
				pages[i] = page
				return nil
			}
			s.metrics.IncrCacheMiss("gallery")

			page, err := s.fetcher.FetchPage(ctx, sec.endpoint, sec.params)
			if err != nil {
				// Seção indisponível: loga e segue sem ela.
				s.metrics.IncrExternalError("catalog")
				s.logger.Warn("gallery section unavailable",
					zap.String("section", sec.key),
					zap.Error(err),
				)
				return nil
			}

			s.cache.Set(sec.key, page)
			pages[i] = page
			return nil
		})
	}
	_ = g.Wait()

	out := make([]GallerySection, 0, len(gallerySections))
	for i, sec := range gallerySections {
		if pages[i] == nil {
			continue
		}
		out = append(out, GallerySection{
			Key:     sec.key,
			Title:   sec.title,
			Results: pages[i].Results,
		})
	}
	span.SetAttributes(attribute.Int("gallery.sections", len(out)))
	return out
}
