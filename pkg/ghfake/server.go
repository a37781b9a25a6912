// Package ghfake is an in-process stand-in for the GitHub contents API and
// raw file host. It backs the mock-github app and end-to-end tests.
package ghfake

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	gogithub "github.com/google/go-github/v75/github"
)

// DefaultRef is used when a contents request carries no ?ref=.
const DefaultRef = "main"

// base64 line width used by the contents API
const lineWidth = 60

type override struct {
	status int
	body   []byte
}

// Server holds repository files keyed by "owner/repo@ref" then path.
type Server struct {
	mu        sync.RWMutex
	files     map[string]map[string][]byte
	overrides map[string]override
	requests  []string

	log    *slog.Logger
	engine *gin.Engine
}

// New creates an empty Server. Extra middleware runs before every route.
func New(log *slog.Logger, middleware ...gin.HandlerFunc) *Server {
	s := &Server{
		files:     make(map[string]map[string][]byte),
		overrides: make(map[string]override),
		log:       log,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware...)
	r.Use(s.record)
	s.registerRoutes(r)
	s.engine = r
	return s
}

// Handler exposes the server for http.Server or httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func repoKey(owner, repo, ref string) string {
	return owner + "/" + repo + "@" + ref
}

// Put stores a file. Intermediate directories are implied by the path.
func (s *Server) Put(owner, repo, ref, filePath string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := repoKey(owner, repo, ref)
	if s.files[key] == nil {
		s.files[key] = make(map[string][]byte)
	}
	s.files[key][strings.Trim(filePath, "/")] = content
}

// Override makes any request to urlPath (no query string) answer with status
// and body instead of the stored content.
func (s *Server) Override(urlPath string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[urlPath] = override{status: status, body: []byte(body)}
}

// Requests returns the paths served so far, query included, in arrival order.
func (s *Server) Requests() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.requests...)
}

// Files returns how many files are stored across all repos.
func (s *Server) Files() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, files := range s.files {
		n += len(files)
	}
	return n
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	s.requests = append(s.requests, c.Request.URL.RequestURI())
	o, overridden := s.overrides[c.Request.URL.Path]
	s.mu.Unlock()

	if overridden {
		c.Data(o.status, "application/json; charset=utf-8", o.body)
		c.Abort()
	} else {
		c.Next()
	}
	s.log.Debug("request served",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"overridden", overridden,
	)
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Mirrors GET /repos/:owner/:repo/contents/:path. A file path yields a
	// single base64 object, a directory yields the sorted listing array.
	r.GET("/repos/:owner/:repo/contents/*path", func(c *gin.Context) {
		owner, repo := c.Param("owner"), c.Param("repo")
		p := strings.Trim(c.Param("path"), "/")
		ref := c.DefaultQuery("ref", DefaultRef)
		base := baseURL(c.Request)

		if content, ok := s.file(owner, repo, ref, p); ok {
			c.JSON(http.StatusOK, inlineFile(p, content))
			return
		}
		if entries := s.listDir(base, owner, repo, ref, p); len(entries) > 0 {
			c.JSON(http.StatusOK, entries)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{
			"message": fmt.Sprintf("path %q not found in %s/%s at %s", p, owner, repo, ref),
		})
	})

	// Raw file host, the target of every download_url.
	r.GET("/raw/:owner/:repo/:ref/*path", func(c *gin.Context) {
		content, ok := s.file(c.Param("owner"), c.Param("repo"), c.Param("ref"), strings.Trim(c.Param("path"), "/"))
		if !ok {
			c.String(http.StatusNotFound, "404: Not Found")
			return
		}
		c.Data(http.StatusOK, "application/octet-stream", content)
	})
}

func (s *Server) file(owner, repo, ref, p string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[repoKey(owner, repo, ref)][p]
	return content, ok
}

// listDir returns the immediate children of dir, directories and files alike,
// sorted by name.
func (s *Server) listDir(base, owner, repo, ref, dir string) []*gogithub.RepositoryContent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := s.files[repoKey(owner, repo, ref)]
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	seen := map[string]bool{}
	var entries []*gogithub.RepositoryContent
	for filePath, content := range files {
		if !strings.HasPrefix(filePath, prefix) {
			continue
		}
		rest := filePath[len(prefix):]
		name, _, isDir := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true

		entryPath := path.Join(dir, name)
		e := &gogithub.RepositoryContent{
			Name: gogithub.Ptr(name),
			Path: gogithub.Ptr(entryPath),
			URL:  gogithub.Ptr(contentsURL(base, owner, repo, ref, entryPath)),
		}
		if isDir {
			e.Type = gogithub.Ptr("dir")
		} else {
			e.Type = gogithub.Ptr("file")
			e.Size = gogithub.Ptr(len(content))
			e.DownloadURL = gogithub.Ptr(rawURL(base, owner, repo, ref, entryPath))
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].GetName() < entries[j].GetName() })
	return entries
}

func inlineFile(p string, content []byte) *gogithub.RepositoryContent {
	return &gogithub.RepositoryContent{
		Type:     gogithub.Ptr("file"),
		Name:     gogithub.Ptr(path.Base(p)),
		Path:     gogithub.Ptr(p),
		Size:     gogithub.Ptr(len(content)),
		Encoding: gogithub.Ptr("base64"),
		Content:  gogithub.Ptr(wrap(base64.StdEncoding.EncodeToString(content), lineWidth)),
	}
}

// wrap splits s into newline-terminated lines of at most width characters.
func wrap(s string, width int) string {
	var b strings.Builder
	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteByte('\n')
		s = s[width:]
	}
	if s != "" {
		b.WriteString(s)
		b.WriteByte('\n')
	}
	return b.String()
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

func contentsURL(base, owner, repo, ref, p string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", base, owner, repo, escapePath(p), url.QueryEscape(ref))
}

func rawURL(base, owner, repo, ref, p string) string {
	return fmt.Sprintf("%s/raw/%s/%s/%s/%s", base, owner, repo, url.PathEscape(ref), escapePath(p))
}
