package news

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"aipost/internal/config"
	"aipost/internal/logger"
	"aipost/internal/models"
	"aipost/pkg/utils"

	"golang.org/x/net/html/charset"
)

// Feed parsing errors.
var (
	ErrUnknownFeedFormat  = errors.New("unknown feed format")
	ErrFeedHasNoItems     = errors.New("feed has no items")
	ErrUnsupportedCharset = errors.New("unsupported feed charset")
)

const feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"

// Namespaces whose title/link/description elements belong to the item
// itself. Anything else (atom:link, media:title, dc:*) is an extension.
const (
	rss10Namespace  = "http://purl.org/rss/1.0/"
	atomNamespace   = "http://www.w3.org/2005/Atom"
	atom03Namespace = "http://purl.org/atom/ns#"
)

var (
	rssNamespaces  = []string{"", rss10Namespace}
	atomNamespaces = []string{"", atomNamespace, atom03Namespace}
)

// feedDocument matches RSS 2.0 (<rss><channel><item>), RSS 1.0
// (<rdf:RDF><item>) and Atom (<feed><entry>) roots.
type feedDocument struct {
	XMLName xml.Name
	Channel struct {
		Items []feedItem `xml:"item"`
	} `xml:"channel"`
	Items   []feedItem  `xml:"item"`
	Entries []atomEntry `xml:"entry"`
}

// Untagged names match elements from every namespace, so each field
// collects all of them and the caller picks by namespace.
type feedItem struct {
	Titles       []feedText `xml:"title"`
	Links        []feedText `xml:"link"`
	Descriptions []feedText `xml:"description"`
}

type atomEntry struct {
	Titles    []feedText `xml:"title"`
	Summaries []feedText `xml:"summary"`
	Contents  []feedText `xml:"content"`
	Links     []atomLink `xml:"link"`
}

type feedText struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type atomLink struct {
	XMLName xml.Name
	Href    string `xml:"href,attr"`
	Rel     string `xml:"rel,attr"`
}

// FeedItem is the first entry extracted from a feed.
type FeedItem struct {
	Title       string
	Link        string
	Description string
}

// FeedClient scans a fixed, ordered list of feeds for the first usable item.
type FeedClient struct {
	httpClient *http.Client
	headers    *utils.HTTPHelper
	logger     *logger.Logger
	urls       []string
	bodyLimit  int64
}

// NewFeedClient creates a feed client from the feeds config section.
func NewFeedClient(cfg config.FeedsConfig, timeout time.Duration, bodyLimit int64, log *logger.Logger) *FeedClient {
	return &FeedClient{
		urls: cfg.URLs,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers:   utils.NewHTTPHelper(cfg.UserAgent),
		logger:    log,
		bodyLimit: bodyLimit,
	}
}

// Name returns the source name used in logs.
func (c *FeedClient) Name() string {
	return "RSS"
}

// TopArticle returns the first item of the first feed that yields one.
// Unreachable, failing or unparsable feeds are skipped.
func (c *FeedClient) TopArticle(ctx context.Context) (*models.Article, error) {
	for _, feedURL := range c.urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log := c.logger.With("feed", feedURL)

		body, err := c.fetch(ctx, feedURL)
		if err != nil {
			log.Debug("Skipping feed", "error", err)
			continue
		}

		item, err := ParseFirstItem(body)
		if err != nil {
			log.Debug("Skipping feed", "error", err)
			continue
		}

		log.Debug("Feed item selected", "title", item.Title)

		return &models.Article{
			Title:       item.Title,
			Description: item.Description,
			URL:         item.Link,
			SourceName:  feedHost(feedURL),
			PublishedAt: "",
		}, nil
	}

	return nil, nil
}

func (c *FeedClient) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = c.headers.BuildHeaders(map[string]string{"Accept": feedAccept})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", utils.ErrUnexpectedStatusCode, resp.StatusCode)
	}

	return utils.ReadBody(resp, c.bodyLimit)
}

// ParseFirstItem decodes an RSS or Atom document and returns its first
// entry that has a title or a link. Descriptions are stripped of markup.
func ParseFirstItem(body []byte) (*FeedItem, error) {
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.Strict = false
	decoder.Entity = xml.HTMLEntity
	decoder.CharsetReader = charsetReader

	var doc feedDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var items []FeedItem

	switch strings.ToLower(doc.XMLName.Local) {
	case "rss":
		items = fromRSS(doc.Channel.Items)
	case "rdf":
		items = fromRSS(doc.Items)
	case "feed":
		items = fromAtom(doc.Entries)
	default:
		return nil, fmt.Errorf("%w: <%s>", ErrUnknownFeedFormat, doc.XMLName.Local)
	}

	for i := range items {
		if items[i].Title != "" || items[i].Link != "" {
			return &items[i], nil
		}
	}

	return nil, ErrFeedHasNoItems
}

func fromRSS(raw []feedItem) []FeedItem {
	items := make([]FeedItem, 0, len(raw))
	for _, it := range raw {
		items = append(items, FeedItem{
			Title:       strings.TrimSpace(firstText(it.Titles, rssNamespaces)),
			Link:        strings.TrimSpace(firstText(it.Links, rssNamespaces)),
			Description: utils.StripTags(firstText(it.Descriptions, rssNamespaces)),
		})
	}

	return items
}

func fromAtom(entries []atomEntry) []FeedItem {
	items := make([]FeedItem, 0, len(entries))
	for _, e := range entries {
		desc := firstText(e.Summaries, atomNamespaces)
		if strings.TrimSpace(desc) == "" {
			desc = firstText(e.Contents, atomNamespaces)
		}

		items = append(items, FeedItem{
			Title:       strings.TrimSpace(firstText(e.Titles, atomNamespaces)),
			Link:        atomAlternate(e.Links),
			Description: utils.StripTags(desc),
		})
	}

	return items
}

// firstText returns the first element living in one of the given namespaces.
func firstText(elems []feedText, namespaces []string) string {
	for _, e := range elems {
		if slices.Contains(namespaces, e.XMLName.Space) {
			return e.Value
		}
	}

	return ""
}

func atomAlternate(links []atomLink) string {
	for _, l := range links {
		if !slices.Contains(atomNamespaces, l.XMLName.Space) {
			continue
		}

		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}

	return ""
}

// charsetReader transcodes any WHATWG-labelled encoding to UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	r, err := charset.NewReaderLabel(label, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCharset, label)
	}

	return r, nil
}

func feedHost(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return ""
	}

	return u.Host
}
