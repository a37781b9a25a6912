// Package locator turns a source-browsing URL such as
// https://github.com/<owner>/<repo>/tree/<branch>/<path...> into repository
// coordinates. It performs no network access.
package locator

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when the input cannot be parsed as an absolute URL.
var ErrInvalidURL = errors.New("invalid URL")

// ErrMissingPathSegment is returned when the URL path has fewer than four segments.
var ErrMissingPathSegment = errors.New("missing path segment")

// segment names, in URL order
var segmentNames = [...]string{"account", "repository", "tree", "branch"}

// MissingPathSegmentError names the first segment that was not present.
type MissingPathSegmentError struct {
	Segment string
	URL     string
}

// Error implements the error interface.
func (e *MissingPathSegmentError) Error() string {
	return fmt.Sprintf("no %s in the URL path %q", e.Segment, e.URL)
}

// Unwrap lets errors.Is match ErrMissingPathSegment.
func (e *MissingPathSegmentError) Unwrap() error {
	return ErrMissingPathSegment
}

// Locator holds the coordinates of a sub-directory inside a hosted repository.
type Locator struct {
	Scheme string
	Host   string
	Owner  string
	Repo   string
	// Marker is the literal third segment ("tree", "blob", "src", ...).
	// Its value is carried but never interpreted.
	Marker     string
	Branch     string
	SubdirPath []string
}

// Parse splits raw into owner, repository, marker, branch and sub-directory
// path. Empty segments (for example from a trailing slash) are ignored.
func Parse(raw string) (*Locator, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidURL, raw)
	}

	segments := make([]string, 0, 8)
	for _, raw := range strings.Split(u.EscapedPath(), "/") {
		if raw == "" {
			continue
		}
		s, err := url.PathUnescape(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
		}
		if hasDotSegment(s) {
			return nil, fmt.Errorf("%w: relative path segment %q in %q", ErrInvalidURL, s, raw)
		}
		segments = append(segments, s)
	}
	if len(segments) < len(segmentNames) {
		return nil, &MissingPathSegmentError{Segment: segmentNames[len(segments)], URL: raw}
	}

	return &Locator{
		Scheme:     u.Scheme,
		Host:       u.Hostname(),
		Owner:      segments[0],
		Repo:       segments[1],
		Marker:     segments[2],
		Branch:     segments[3],
		SubdirPath: segments[4:],
	}, nil
}

// hasDotSegment reports whether s, or any "/"-separated part of an
// unescaped segment, is "." or "..".
func hasDotSegment(s string) bool {
	for _, part := range strings.Split(s, "/") {
		if part == "." || part == ".." {
			return true
		}
	}
	return false
}

// Subdir returns the sub-directory path joined with "/".
// The empty string denotes the repository root.
func (l *Locator) Subdir() string {
	return strings.Join(l.SubdirPath, "/")
}

// TargetName is the last segment of the browsing URL: the name of the
// sub-directory being cloned, or the branch when the URL points at the root.
func (l *Locator) TargetName() string {
	if n := len(l.SubdirPath); n > 0 {
		return l.SubdirPath[n-1]
	}
	return l.Branch
}

// APIBase derives the contents API base URL for the locator's host.
// github.com is served from api.github.com; other hosts follow the same
// api.<host> convention.
func (l *Locator) APIBase() string {
	scheme := l.Scheme
	if scheme == "" {
		scheme = "https"
	}
	host := strings.TrimPrefix(l.Host, "www.")
	return scheme + "://api." + host
}

// ListingURL renders the contents API URL for the sub-directory at the branch.
// apiBase overrides the derived base when non-empty.
func (l *Locator) ListingURL(apiBase string) string {
	if apiBase == "" {
		apiBase = l.APIBase()
	}
	escaped := make([]string, len(l.SubdirPath))
	for i, s := range l.SubdirPath {
		escaped[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		strings.TrimSuffix(apiBase, "/"),
		url.PathEscape(l.Owner),
		url.PathEscape(l.Repo),
		strings.Join(escaped, "/"),
		url.QueryEscape(l.Branch),
	)
}
