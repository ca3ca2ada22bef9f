// Package models defines data structures shared by the fetch, format and publish steps.
package models

import "encoding/json"

// Article is one candidate news item. It lives for a single run only.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	SourceName  string `json:"sourceName"`
	// PublishedAt is an ISO-8601 timestamp or empty.
	PublishedAt string `json:"publishedAt"`
}

// PublishResult is returned by the social API after a post is created.
type PublishResult struct {
	ID  string          `json:"id"`
	Raw json.RawMessage `json:"-"`
}
