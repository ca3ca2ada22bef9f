// Package linkedin provides the member identity lookup and UGC post creation
// against the LinkedIn REST API.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aipost/internal/logger"
	"aipost/internal/models"
	"aipost/pkg/utils"
)

// PersonURNPrefix is the namespace of member URNs.
const PersonURNPrefix = "urn:li:person:"

const (
	restliProtocolVersion = "2.0.0"
	maxResponseBytes      = 1 << 20
)

// LinkedIn errors.
var (
	ErrMissingAccessToken = errors.New("LINKEDIN_ACCESS_TOKEN not set")
	ErrEmptyMemberID      = errors.New("profile response has no id")
)

// API is the surface the run needs from LinkedIn.
type API interface {
	ResolveMemberID(ctx context.Context, profileURN string) (string, error)
	Publish(ctx context.Context, text, memberID string) (*models.PublishResult, error)
}

// Ensure Client implements API.
var _ API = (*Client)(nil)

// Client talks to the LinkedIn v2 API on behalf of one member.
type Client struct {
	httpClient *http.Client
	headers    *utils.HTTPHelper
	logger     *logger.Logger
	baseURL    string
	token      string
}

// NewClient creates a new LinkedIn client.
func NewClient(baseURL, token string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: utils.NewHTTPHelper(""),
		logger:  log,
	}
}

// ParseMemberURN strips the person namespace from a configured identifier.
// Bare identifiers are returned unchanged.
func ParseMemberURN(urn string) string {
	if strings.HasPrefix(urn, PersonURNPrefix) {
		return urn[strings.LastIndex(urn, ":")+1:]
	}

	return urn
}

// ResolveMemberID returns the member identifier used as post author.
// A configured profileURN is used without any network call; otherwise
// the own-profile endpoint is queried.
func (c *Client) ResolveMemberID(ctx context.Context, profileURN string) (string, error) {
	if c.token == "" {
		return "", ErrMissingAccessToken
	}

	if profileURN != "" {
		return ParseMemberURN(profileURN), nil
	}

	c.logger.Debug("Looking up member profile", "url", c.baseURL+"/me")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/me", http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = c.headers.BuildHeaders(map[string]string{
		"Authorization": "Bearer " + c.token,
	})

	status, body, _, err := c.do(req)
	if err != nil {
		return "", err
	}

	if status != http.StatusOK {
		return "", &utils.StatusError{Op: "LinkedIn profile lookup failed", StatusCode: status, Body: string(body)}
	}

	var profile struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(body, &profile); err != nil {
		return "", fmt.Errorf("failed to parse profile response: %w", err)
	}

	if profile.ID == "" {
		return "", ErrEmptyMemberID
	}

	return profile.ID, nil
}

// Publish creates a UGC post with text as commentary, authored by memberID.
// The call is made once; 200 and 201 count as success.
func (c *Client) Publish(ctx context.Context, text, memberID string) (*models.PublishResult, error) {
	if c.token == "" {
		return nil, ErrMissingAccessToken
	}

	payload, err := json.Marshal(NewUGCPost(memberID, text))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}

	c.logger.Debug("Creating UGC post", "author", PersonURNPrefix+memberID, "chars", len([]rune(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ugcPosts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = c.headers.BuildHeaders(map[string]string{
		"Authorization":             "Bearer " + c.token,
		"X-Restli-Protocol-Version": restliProtocolVersion,
		"Content-Type":              "application/json",
	})

	status, body, header, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if !utils.IsSuccess(status, http.StatusCreated, http.StatusOK) {
		return nil, &utils.StatusError{Op: "LinkedIn API error", StatusCode: status, Body: string(body)}
	}

	result := &models.PublishResult{Raw: json.RawMessage(body)}

	if len(bytes.TrimSpace(body)) > 0 {
		var created struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(body, &created); err != nil {
			return nil, fmt.Errorf("failed to parse publish response: %w", err)
		}
		result.ID = created.ID
	}

	// Rest.li may return the new URN only in a header
	if result.ID == "" {
		result.ID = header.Get("X-RestLi-Id")
	}

	return result, nil
}

func (c *Client) do(req *http.Request) (int, []byte, http.Header, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := utils.ReadBody(resp, maxResponseBytes)
	if err != nil {
		return 0, nil, nil, err
	}

	return resp.StatusCode, body, resp.Header, nil
}
