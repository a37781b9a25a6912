package github

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tilsley/cgs/apps/cgs/internal/gitrepo"
)

// InMem is an in-memory gitrepo.Client for unit tests. Listings and raw files
// are keyed by their absolute URL.
type InMem struct {
	mu        sync.Mutex
	listings  map[string]*gitrepo.Listing
	listErrs  map[string]error
	files     map[string][]byte
	listed    []string
	downloads []string
}

// NewInMem creates an empty InMem client.
func NewInMem() *InMem {
	return &InMem{
		listings: make(map[string]*gitrepo.Listing),
		listErrs: make(map[string]error),
		files:    make(map[string][]byte),
	}
}

// SetListing seeds the response for listingURL.
func (m *InMem) SetListing(listingURL string, l *gitrepo.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listings[listingURL] = l
}

// SetDir seeds an array-shaped listing.
func (m *InMem) SetDir(listingURL string, entries ...gitrepo.Entry) {
	m.SetListing(listingURL, &gitrepo.Listing{Entries: entries, IsArray: true})
}

// FailListing makes List return err for listingURL.
func (m *InMem) FailListing(listingURL string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErrs[listingURL] = err
}

// SetFile seeds the raw bytes served at downloadURL.
func (m *InMem) SetFile(downloadURL string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[downloadURL] = content
}

// Listed returns every listing URL requested, in call order.
func (m *InMem) Listed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.listed))
	copy(out, m.listed)
	return out
}

// Downloads returns every download URL requested, in call order.
func (m *InMem) Downloads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.downloads))
	copy(out, m.downloads)
	return out
}

// List returns the seeded listing, the seeded error, or ErrAPIRequestFailed.
func (m *InMem) List(_ context.Context, listingURL string) (*gitrepo.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listed = append(m.listed, listingURL)
	if err, ok := m.listErrs[listingURL]; ok {
		return nil, err
	}
	l, ok := m.listings[listingURL]
	if !ok {
		return nil, fmt.Errorf("%w: GET %s returned 404", gitrepo.ErrAPIRequestFailed, listingURL)
	}
	return l, nil
}

// Download returns the seeded bytes or ErrDownloadFailed.
func (m *InMem) Download(_ context.Context, downloadURL string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads = append(m.downloads, downloadURL)
	content, ok := m.files[downloadURL]
	if !ok {
		return nil, fmt.Errorf("%w: GET %s returned 404", gitrepo.ErrDownloadFailed, downloadURL)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}
