// Package pipeline runs the resolve, fetch, format and publish steps in order.
package pipeline

import (
	"context"
	"errors"
	"time"

	"aipost/internal/config"
	"aipost/internal/formatter"
	"aipost/internal/linkedin"
	"aipost/internal/logger"
	"aipost/internal/models"
	"aipost/internal/news"
	"aipost/pkg/metadata"
)

// ArticleFetcher returns one article or news.ErrNoArticle.
type ArticleFetcher interface {
	Fetch(ctx context.Context) (*models.Article, error)
}

// Runner holds the collaborators of one run.
type Runner struct {
	api        linkedin.API
	fetcher    ArticleFetcher
	logger     *logger.Logger
	now        func() time.Time
	profileURN string
	dryRun     bool
}

// New wires the real LinkedIn, NewsAPI and feed clients from cfg.
func New(cfg *config.Config, log *logger.Logger) *Runner {
	api := linkedin.NewClient(cfg.LinkedIn.APIBaseURL, cfg.LinkedIn.AccessToken, cfg.LinkedInTimeout(), log.With("component", "linkedin"))
	primary := news.NewNewsAPIClient(cfg.NewsAPI, cfg.NewsAPITimeout(), log.With("component", "newsapi"))
	fallback := news.NewFeedClient(cfg.Feeds, cfg.FeedTimeout(), cfg.FeedBodyLimit(), log.With("component", "rss"))

	return NewWithDeps(api, news.NewFetcher(primary, fallback, log), cfg.LinkedIn.ProfileURN, log)
}

// NewWithDeps creates a runner with injected collaborators.
func NewWithDeps(api linkedin.API, fetcher ArticleFetcher, profileURN string, log *logger.Logger) *Runner {
	return &Runner{
		api:        api,
		fetcher:    fetcher,
		logger:     log,
		now:        time.Now,
		profileURN: profileURN,
	}
}

// SetDryRun makes Run stop after formatting.
func (r *Runner) SetDryRun(dryRun bool) {
	r.dryRun = dryRun
}

// SetClock overrides the clock used for the default post date.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Run executes one pass. Any step error aborts the run and is returned as
// a *Failure; no step is retried.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.logger.Debug("Resolving member identity")

	memberID, err := r.api.ResolveMemberID(ctx, r.profileURN)
	if err != nil {
		return nil, NewFailure(StepResolve, err)
	}

	r.logger.Debug("Fetching article", "member", memberID)

	article, err := r.fetcher.Fetch(ctx)
	if errors.Is(err, news.ErrNoArticle) {
		return &Result{Outcome: OutcomeNoArticle, MemberID: memberID}, nil
	}

	if err != nil {
		return nil, NewFailure(StepFetch, err)
	}

	text := formatter.FormatPost(*article, r.now())
	result := &Result{
		Article:     article,
		MemberID:    memberID,
		Text:        text,
		Fingerprint: metadata.Fingerprint(text),
		ArticleKey:  metadata.ArticleKey(article.URL, article.Title),
	}

	r.logger.Debug("Post formatted", "title", formatter.Snippet(article.Title, 60), "fingerprint", result.Fingerprint)

	if r.dryRun {
		result.Outcome = OutcomeDryRun
		return result, nil
	}

	post, err := r.api.Publish(ctx, text, memberID)
	if err != nil {
		return nil, NewFailure(StepPublish, err)
	}

	result.Post = post
	result.Outcome = OutcomePublished

	return result, nil
}
