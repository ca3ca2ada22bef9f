package pipeline

import (
	"errors"
	"fmt"

	"aipost/internal/linkedin"
	"aipost/internal/logger"
	"aipost/internal/models"
)

// Outcome describes how a successful run ended.
type Outcome int

// Run outcomes.
const (
	OutcomePublished Outcome = iota + 1
	OutcomeNoArticle
	OutcomeDryRun
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeNoArticle:
		return "no_article"
	case OutcomeDryRun:
		return "dry_run"
	default:
		return "unknown"
	}
}

// Kind classifies a failed run.
type Kind int

// Failure kinds.
const (
	KindConfig Kind = iota + 1
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Run steps, used to label failures.
const (
	StepConfig  = "config"
	StepResolve = "resolve"
	StepFetch   = "fetch"
	StepPublish = "publish"
)

// Failure is returned by Run when any step fails.
type Failure struct {
	Err  error
	Step string
	Kind Kind
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Step, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure wraps err, deriving its kind from the error chain.
func NewFailure(step string, err error) *Failure {
	return &Failure{Err: err, Step: step, Kind: classify(step, err)}
}

func classify(step string, err error) Kind {
	if step == StepConfig || errors.Is(err, linkedin.ErrMissingAccessToken) {
		return KindConfig
	}

	return KindTransport
}

// Result is what a successful run produced.
type Result struct {
	Article     *models.Article
	Post        *models.PublishResult
	MemberID    string
	Text        string
	Fingerprint string
	ArticleKey  string
	Outcome     Outcome
}

// Report writes the single terminal line describing the run.
func Report(log *logger.Logger, res *Result, err error) {
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			log.Error(err.Error(), "kind", f.Kind.String(), "step", f.Step)
			return
		}

		log.Error(err.Error(), "kind", KindTransport.String())

		return
	}

	switch res.Outcome {
	case OutcomePublished:
		id := res.Post.ID
		if id == "" {
			id = "unknown"
		}
		log.Info(fmt.Sprintf("Posted: %s", id), "fingerprint", res.Fingerprint, "article_key", res.ArticleKey, "article", res.Article.URL)
	case OutcomeDryRun:
		log.Info("Dry run, post not published", "fingerprint", res.Fingerprint, "article_key", res.ArticleKey, "article", res.Article.URL)
	case OutcomeNoArticle:
		log.Info("No article found.")
	}
}

// ExitCode maps a run to the process exit status.
// Finding no article is not a failure.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}

	return 0
}
