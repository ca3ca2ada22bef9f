package news

import (
	"context"
	"fmt"

	"aipost/internal/logger"
	"aipost/internal/models"
)

// Fetcher tries the primary source and falls back to the secondary one when
// the primary has nothing to offer. Errors from either source are returned
// as-is; only an empty result triggers the fallback.
type Fetcher struct {
	primary  Source
	fallback Source
	logger   *logger.Logger
}

// NewFetcher creates a fetcher over a primary and a fallback source.
func NewFetcher(primary, fallback Source, log *logger.Logger) *Fetcher {
	return &Fetcher{
		primary:  primary,
		fallback: fallback,
		logger:   log,
	}
}

// Fetch returns one article or ErrNoArticle.
func (f *Fetcher) Fetch(ctx context.Context) (*models.Article, error) {
	for _, src := range []Source{f.primary, f.fallback} {
		if src == nil {
			continue
		}

		article, err := src.TopArticle(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name(), err)
		}

		if article != nil {
			f.logger.Debug("Article selected", "source", src.Name(), "url", article.URL)
			return article, nil
		}

		f.logger.Debug("Source returned nothing", "source", src.Name())
	}

	return nil, ErrNoArticle
}
