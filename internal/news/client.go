// Package news finds one recent AI article, from NewsAPI or public feeds.
package news

import (
	"context"
	"errors"

	"aipost/internal/models"
)

// ErrNoArticle means neither the news API nor any feed produced an article.
// It is a normal outcome, not a failure.
var ErrNoArticle = errors.New("no article found")

// Source returns a single candidate article.
// A nil article with a nil error means the source had nothing to offer.
type Source interface {
	TopArticle(ctx context.Context) (*models.Article, error)
	Name() string
}
