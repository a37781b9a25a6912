// Package github implements the gitrepo.Client port on top of go-github.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	gogithub "github.com/google/go-github/v75/github"

	"github.com/tilsley/cgs/apps/cgs/internal/gitrepo"
)

// Client talks to the GitHub (or mock-GitHub) contents API.
// It implicitly satisfies gitrepo.Client.
type Client struct {
	gh *gogithub.Client
}

// NewClient wraps a go-github client. Build one with NewGoGitHub.
func NewClient(gh *gogithub.Client) *Client {
	return &Client{gh: gh}
}

// List fetches listingURL and decodes it into one of the two contents API
// response shapes. listingURL is absolute; it is not resolved against BaseURL.
func (c *Client) List(ctx context.Context, listingURL string) (*gitrepo.Listing, error) {
	req, err := c.gh.NewRequest(http.MethodGet, listingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", gitrepo.ErrAPIRequestFailed, err)
	}

	resp, err := c.gh.BareDo(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", gitrepo.ErrAPIRequestFailed, listingURL, err)
	}
	defer func() { //nolint:errcheck // response body close errors are non-actionable after reading
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", gitrepo.ErrAPIRequestFailed, listingURL, err)
	}

	listing, err := decodeListing(body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", listingURL, err)
	}
	return listing, nil
}

// Download opens the raw file at downloadURL through the same HTTP client
// used for listings, so timeouts and the user agent apply uniformly.
func (c *Client) Download(ctx context.Context, downloadURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", gitrepo.ErrDownloadFailed, err)
	}
	req.Header.Set("User-Agent", c.gh.UserAgent)

	resp, err := c.gh.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", gitrepo.ErrDownloadFailed, downloadURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close() //nolint:errcheck // nothing useful to read from a failed download
		return nil, fmt.Errorf("%w: GET %s returned %d", gitrepo.ErrDownloadFailed, downloadURL, resp.StatusCode)
	}
	return resp.Body, nil
}

// decodeListing classifies a response body. JSON arrays become Entries,
// objects with type=file and base64 encoding become File, and anything else
// that is valid JSON becomes an empty (Invalid) Listing.
func decodeListing(body []byte) (*gitrepo.Listing, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: body is not JSON (%d bytes)", gitrepo.ErrResponsePayloadInvalid, len(body))
	}

	switch trimmed[0] {
	case '[':
		var contents []*gogithub.RepositoryContent
		if err := json.Unmarshal(trimmed, &contents); err != nil {
			return nil, fmt.Errorf("%w: %w", gitrepo.ErrResponsePayloadInvalid, err)
		}
		entries := make([]gitrepo.Entry, 0, len(contents))
		for _, rc := range contents {
			entries = append(entries, toEntry(rc))
		}
		return &gitrepo.Listing{Entries: entries, IsArray: true}, nil

	case '{':
		var rc gogithub.RepositoryContent
		if err := json.Unmarshal(trimmed, &rc); err != nil {
			return nil, fmt.Errorf("%w: %w", gitrepo.ErrResponsePayloadInvalid, err)
		}
		if rc.GetType() != gitrepo.TypeFile || rc.GetEncoding() != gitrepo.EncodingBase64 {
			return &gitrepo.Listing{}, nil
		}
		var content string
		if rc.Content != nil {
			content = *rc.Content
		}
		return &gitrepo.Listing{File: &gitrepo.InlineFile{
			Type:     rc.GetType(),
			Name:     rc.GetName(),
			Path:     rc.GetPath(),
			Encoding: rc.GetEncoding(),
			Content:  content,
		}}, nil

	default:
		return &gitrepo.Listing{}, nil
	}
}

func toEntry(rc *gogithub.RepositoryContent) gitrepo.Entry {
	if rc == nil {
		return gitrepo.Entry{}
	}
	return gitrepo.Entry{
		Type:        rc.GetType(),
		Name:        rc.GetName(),
		Path:        rc.GetPath(),
		URL:         rc.GetURL(),
		DownloadURL: rc.GetDownloadURL(),
	}
}
