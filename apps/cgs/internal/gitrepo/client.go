package gitrepo

import (
	"context"
	"errors"
	"io"
)

// Entry types reported by the contents API.
const (
	TypeDir  = "dir"
	TypeFile = "file"
)

// EncodingBase64 is the only inline content encoding the contents API uses.
const EncodingBase64 = "base64"

var (
	// ErrAPIRequestFailed is returned when a listing request fails in transport
	// or comes back with a non-2xx status.
	ErrAPIRequestFailed = errors.New("api request failed")
	// ErrResponsePayloadInvalid is returned when a listing body is not valid JSON.
	ErrResponsePayloadInvalid = errors.New("response payload invalid")
	// ErrDownloadFailed is returned when a raw file download fails.
	ErrDownloadFailed = errors.New("download failed")
)

// Entry is a file or directory returned by a git hosting provider directory listing.
type Entry struct {
	Type        string `json:"type"` // "file" or "dir"
	Name        string `json:"name"`
	Path        string `json:"path"` // repository-root-relative
	URL         string `json:"url"`  // listing URL, set for directories
	DownloadURL string `json:"download_url"`
}

// InlineFile is the single-object response shape: one file with its content
// embedded, typically base64 with line breaks every 60 characters.
type InlineFile struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// Listing is one decoded contents API response. Exactly one of Entries and
// File is set for a well-formed response; a response that is neither an array
// nor an object leaves both empty and reports itself via Invalid.
type Listing struct {
	Entries []Entry
	File    *InlineFile
	// IsArray distinguishes an empty directory from an invalid payload.
	IsArray bool
}

// Invalid reports whether the response matched neither known shape.
func (l *Listing) Invalid() bool {
	return l == nil || (!l.IsArray && l.File == nil)
}

// Client is the port the cloner depends on to read a hosted repository.
type Client interface {
	// List fetches and decodes the listing at listingURL.
	List(ctx context.Context, listingURL string) (*Listing, error)
	// Download opens the raw bytes at downloadURL. Callers close the reader.
	Download(ctx context.Context, downloadURL string) (io.ReadCloser, error)
}
