package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"aipost/internal/config"
	"aipost/internal/linkedin"
	"aipost/internal/logger"
	"aipost/internal/models"
	"aipost/internal/news"
	"aipost/pkg/metadata"
	"aipost/pkg/utils"
)

var errNetwork = errors.New("network unreachable")

// MockAPI implements linkedin.API for testing.
type MockAPI struct {
	ResolveFunc  func(ctx context.Context, profileURN string) (string, error)
	PublishFunc  func(ctx context.Context, text, memberID string) (*models.PublishResult, error)
	PublishCalls int
}

func (m *MockAPI) ResolveMemberID(ctx context.Context, profileURN string) (string, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, profileURN)
	}

	return "member", nil
}

func (m *MockAPI) Publish(ctx context.Context, text, memberID string) (*models.PublishResult, error) {
	m.PublishCalls++
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, text, memberID)
	}

	return &models.PublishResult{ID: "urn:li:share:1"}, nil
}

// MockFetcher implements ArticleFetcher for testing.
type MockFetcher struct {
	Article *models.Article
	Err     error
	Calls   int
}

func (m *MockFetcher) Fetch(ctx context.Context) (*models.Article, error) {
	m.Calls++
	return m.Article, m.Err
}

var sampleArticle = &models.Article{
	Title:       "X",
	Description: "Y",
	URL:         "https://z",
	SourceName:  "S",
	PublishedAt: "2024-01-02T00:00:00Z",
}

func newRunner(api linkedin.API, fetcher ArticleFetcher) *Runner {
	r := NewWithDeps(api, fetcher, "", logger.NewLogger("error"))
	r.SetClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })

	return r
}

func TestRun_Published(t *testing.T) {
	var gotText, gotMember string

	api := &MockAPI{
		PublishFunc: func(ctx context.Context, text, memberID string) (*models.PublishResult, error) {
			gotText, gotMember = text, memberID
			return &models.PublishResult{ID: "urn:li:share:99"}, nil
		},
	}

	res, err := newRunner(api, &MockFetcher{Article: sampleArticle}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Outcome != OutcomePublished {
		t.Errorf("Expected published, got %s", res.Outcome)
	}

	want := "X\n\nY\n\nSource: S • 2024-01-02\nhttps://z\n\n#AI #MachineLearning #ArtificialIntelligence"
	if gotText != want {
		t.Errorf("Unexpected text %q", gotText)
	}

	if gotMember != "member" {
		t.Errorf("Expected member id, got %q", gotMember)
	}

	if res.Post.ID != "urn:li:share:99" {
		t.Errorf("Unexpected post id %q", res.Post.ID)
	}

	if len(res.Fingerprint) != 16 {
		t.Errorf("Expected fingerprint, got %q", res.Fingerprint)
	}

	if res.ArticleKey != metadata.ArticleKey("https://z", "X") {
		t.Errorf("Unexpected article key %q", res.ArticleKey)
	}
}

func TestRun_NoArticle(t *testing.T) {
	api := &MockAPI{}

	res, err := newRunner(api, &MockFetcher{Err: news.ErrNoArticle}).Run(context.Background())
	if err != nil {
		t.Fatalf("no article should not be an error: %v", err)
	}

	if res.Outcome != OutcomeNoArticle {
		t.Errorf("Expected no_article, got %s", res.Outcome)
	}

	if api.PublishCalls != 0 {
		t.Errorf("Expected no publish, got %d", api.PublishCalls)
	}
}

func TestRun_ResolveFailureStopsRun(t *testing.T) {
	api := &MockAPI{
		ResolveFunc: func(ctx context.Context, profileURN string) (string, error) {
			return "", linkedin.ErrMissingAccessToken
		},
	}
	fetcher := &MockFetcher{Article: sampleArticle}

	_, err := newRunner(api, fetcher).Run(context.Background())

	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("Expected *Failure, got %v", err)
	}

	if f.Kind != KindConfig || f.Step != StepResolve {
		t.Errorf("Expected config failure at resolve, got %s at %s", f.Kind, f.Step)
	}

	if fetcher.Calls != 0 || api.PublishCalls != 0 {
		t.Errorf("no step should run after a failure: fetch=%d publish=%d", fetcher.Calls, api.PublishCalls)
	}
}

func TestRun_FetchFailure(t *testing.T) {
	api := &MockAPI{}

	_, err := newRunner(api, &MockFetcher{Err: errNetwork}).Run(context.Background())

	var f *Failure
	if !errors.As(err, &f) || f.Kind != KindTransport || f.Step != StepFetch {
		t.Fatalf("Expected transport failure at fetch, got %v", err)
	}

	if !errors.Is(err, errNetwork) {
		t.Error("Failure should unwrap to the cause")
	}

	if api.PublishCalls != 0 {
		t.Errorf("Expected no publish, got %d", api.PublishCalls)
	}
}

func TestRun_DryRunSkipsPublish(t *testing.T) {
	api := &MockAPI{}
	r := newRunner(api, &MockFetcher{Article: &models.Article{Title: "T", SourceName: "s"}})
	r.SetDryRun(true)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Outcome != OutcomeDryRun {
		t.Errorf("Expected dry_run, got %s", res.Outcome)
	}

	if api.PublishCalls != 0 {
		t.Errorf("Expected no publish, got %d", api.PublishCalls)
	}

	if !strings.Contains(res.Text, "• 2025-06-01\n") {
		t.Errorf("Expected clock date in text, got %q", res.Text)
	}
}

func TestReport_Lines(t *testing.T) {
	tests := []struct {
		res   *Result
		err   error
		name  string
		want  string
		level string
	}{
		{
			name:  "published",
			res:   &Result{Outcome: OutcomePublished, Article: sampleArticle, Post: &models.PublishResult{ID: "urn:li:share:5"}},
			want:  `msg="Posted: urn:li:share:5"`,
			level: "level=INFO",
		},
		{
			name:  "published without id",
			res:   &Result{Outcome: OutcomePublished, Article: sampleArticle, Post: &models.PublishResult{}},
			want:  `msg="Posted: unknown"`,
			level: "level=INFO",
		},
		{
			name:  "no article",
			res:   &Result{Outcome: OutcomeNoArticle},
			want:  `msg="No article found."`,
			level: "level=INFO",
		},
		{
			name:  "failure",
			err:   NewFailure(StepPublish, &utils.StatusError{Op: "LinkedIn API error", StatusCode: 500, Body: "oops"}),
			want:  "kind=transport step=publish",
			level: "level=ERROR",
		},
		{
			name:  "plain error",
			err:   fmt.Errorf("wrapped: %w", errNetwork),
			want:  "kind=transport",
			level: "level=ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Report(logger.NewLoggerWithWriter("info", &buf), tt.res, tt.err)

			out := buf.String()
			if strings.Count(out, "\n") != 1 {
				t.Errorf("Expected exactly one line, got %q", out)
			}

			if !strings.Contains(out, tt.want) || !strings.Contains(out, tt.level) {
				t.Errorf("Expected %q and %q in %q", tt.want, tt.level, out)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 {
		t.Error("success should exit 0")
	}

	if ExitCode(NewFailure(StepPublish, errNetwork)) != 1 {
		t.Error("failure should exit 1")
	}
}

func TestNewFailure_Classify(t *testing.T) {
	if NewFailure(StepConfig, errNetwork).Kind != KindConfig {
		t.Error("config step should classify as configuration")
	}

	if NewFailure(StepResolve, fmt.Errorf("x: %w", linkedin.ErrMissingAccessToken)).Kind != KindConfig {
		t.Error("missing token should classify as configuration")
	}

	if NewFailure(StepResolve, &utils.StatusError{StatusCode: 401}).Kind != KindTransport {
		t.Error("HTTP status should classify as transport")
	}
}

// TestRun_PublishFailureEndToEnd drives the real clients against fake servers:
// a rejected publish yields one error line and no further requests.
func TestRun_PublishFailureEndToEnd(t *testing.T) {
	var linkedinCalls, publishCalls atomic.Int32

	linkedinSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		linkedinCalls.Add(1)
		if r.URL.Path == "/ugcPosts" {
			publishCalls.Add(1)
			w.WriteHeader(http.StatusForbidden)
			io.WriteString(w, `{"message":"Not enough permissions"}`)
			return
		}
		t.Errorf("unexpected LinkedIn request %s", r.URL.Path)
	}))
	defer linkedinSrv.Close()

	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<rss><channel><item><title>AI news</title><link>https://n/1</link><description>d</description></item></channel></rss>`)
	}))
	defer feedSrv.Close()

	cfg := config.Default()
	cfg.LinkedIn.APIBaseURL = linkedinSrv.URL
	cfg.LinkedIn.AccessToken = "token"
	cfg.LinkedIn.ProfileURN = "urn:li:person:abc"
	cfg.NewsAPI.Endpoint = "http://127.0.0.1:1/never"
	cfg.Feeds.URLs = []string{feedSrv.URL + "/rss"}

	var buf bytes.Buffer
	log := logger.NewLoggerWithWriter("info", &buf)

	res, err := New(cfg, log).Run(context.Background())
	Report(log, res, err)

	if err == nil {
		t.Fatal("Expected publish failure")
	}

	var statusErr *utils.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 StatusError, got %v", err)
	}

	if !strings.Contains(err.Error(), `{"message":"Not enough permissions"}`) {
		t.Errorf("Expected verbatim body in error, got %q", err.Error())
	}

	if linkedinCalls.Load() != 1 || publishCalls.Load() != 1 {
		t.Errorf("Expected exactly one LinkedIn call, got %d", linkedinCalls.Load())
	}

	out := buf.String()
	if strings.Count(out, "\n") != 1 || strings.Count(out, "level=ERROR") != 1 {
		t.Errorf("Expected exactly one error line, got %q", out)
	}
}

func TestRun_EndToEndPublished(t *testing.T) {
	newsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"ok","articles":[{"source":{"name":"S"},"title":"X","description":"Y","url":"https://z","publishedAt":"2024-01-02T00:00:00Z"}]}`)
	}))
	defer newsSrv.Close()

	var posted string

	linkedinSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me":
			io.WriteString(w, `{"id":"m42"}`)
		case "/ugcPosts":
			body, _ := io.ReadAll(r.Body)
			posted = string(body)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"id":"urn:li:share:7"}`)
		}
	}))
	defer linkedinSrv.Close()

	cfg := config.Default()
	cfg.LinkedIn.APIBaseURL = linkedinSrv.URL
	cfg.LinkedIn.AccessToken = "token"
	cfg.NewsAPI.Endpoint = newsSrv.URL
	cfg.NewsAPI.APIKey = "key"

	res, err := New(cfg, logger.NewLogger("error")).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Post.ID != "urn:li:share:7" || res.MemberID != "m42" {
		t.Errorf("Unexpected result %+v", res)
	}

	if !strings.Contains(posted, `"author":"urn:li:person:m42"`) {
		t.Errorf("Unexpected post body %s", posted)
	}
}
