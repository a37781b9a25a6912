package github

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v75/github"
)

const defaultAPIURL = "https://api.github.com"

// Options configures the underlying go-github client.
type Options struct {
	// BaseURL overrides the API root, e.g. "http://localhost:9090" for mock-github.
	// Empty means api.github.com.
	BaseURL string
	// UserAgent is sent on every request. The contents API rejects requests
	// without one, so an empty value falls back to DefaultUserAgent.
	UserAgent string
	// Timeout bounds each HTTP round trip. Zero means no timeout.
	Timeout time.Duration
}

// DefaultUserAgent identifies cgs when no user agent is configured.
const DefaultUserAgent = "cgs"

// NewGoGitHub creates an unauthenticated *github.Client.
// Pass BaseURL="" to use the real GitHub API, or a custom URL for a mock server.
func NewGoGitHub(opts Options) *gogithub.Client {
	c := gogithub.NewClient(&http.Client{Timeout: opts.Timeout})
	c.UserAgent = opts.UserAgent
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	applyBaseURL(c, opts.BaseURL)
	return c
}

func applyBaseURL(c *gogithub.Client, baseURL string) {
	if baseURL == "" || baseURL == defaultAPIURL {
		return
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return
	}
	c.BaseURL = u
}
