package clone

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tilsley/cgs/apps/cgs/internal/gitrepo"
)

// Lister walks a contents API tree depth-first, pre-order, handing every
// discovered file to a Materializer.
type Lister struct {
	repo gitrepo.Client
	mat  *Materializer
	log  *slog.Logger
	inst *instruments
}

// NewLister creates a Lister. Recoverable subtree failures are reported on log.
func NewLister(repo gitrepo.Client, mat *Materializer, log *slog.Logger) *Lister {
	return &Lister{repo: repo, mat: mat, log: log, inst: newInstruments()}
}

// walk carries per-traversal state. A fresh walk is created for every List
// call so the visited set never leaks between runs.
type walk struct {
	*Lister
	target  string
	opts    Options
	visited map[string]bool
	written []string
}

// List traverses the tree rooted at apiURL and returns the local paths
// written, in traversal order.
//
// Failures inside a sub-directory are logged and skipped. A failure of the
// starting listing itself, or any download or filesystem failure, is
// returned; the latter are fatal (see IsFatal). Paths written before an
// error are still returned.
func (l *Lister) List(ctx context.Context, apiURL, targetDirName string, opts Options) ([]string, error) {
	w := &walk{
		Lister:  l,
		target:  targetDirName,
		opts:    opts,
		visited: make(map[string]bool),
	}
	err := w.list(ctx, apiURL, 0)
	return w.written, err
}

func (w *walk) list(ctx context.Context, apiURL string, depth int) error {
	if w.visited[apiURL] {
		w.log.Debug("listing already visited, skipping", "url", apiURL)
		return nil
	}
	w.visited[apiURL] = true

	if w.opts.MaxDepth > 0 && depth > w.opts.MaxDepth {
		return fmt.Errorf("%w: %s is %d levels deep (limit %d)", ErrMaxDepthExceeded, apiURL, depth, w.opts.MaxDepth)
	}

	ctx, span := otel.Tracer(instrName).Start(ctx, "ListContent",
		trace.WithAttributes(
			attribute.String("listing.url", apiURL),
			attribute.Int("listing.depth", depth),
		),
	)
	defer span.End()

	err := w.visit(ctx, apiURL, depth)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "listing failed")
	}
	return err
}

func (w *walk) visit(ctx context.Context, apiURL string, depth int) error {
	listing, err := w.repo.List(ctx, apiURL)
	w.inst.listings.Add(ctx, 1)
	if err != nil {
		return err
	}

	switch {
	case listing.Invalid():
		return fmt.Errorf("%w: %s is neither a directory listing nor a file", ErrInvalidAPIResponse, apiURL)
	case listing.IsArray:
		return w.entries(ctx, listing.Entries, depth)
	default:
		return w.inline(ctx, listing.File)
	}
}

func (w *walk) entries(ctx context.Context, entries []gitrepo.Entry, depth int) error {
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch e.Type {
		case gitrepo.TypeDir:
			if err := w.list(ctx, e.URL, depth+1); err != nil {
				if IsFatal(err) {
					return err
				}
				w.inst.listingFailures.Add(ctx, 1)
				w.log.Warn("Failed to list sub-directory content", "path", e.Path, "url", e.URL, "error", err)
			}

		case gitrepo.TypeFile:
			if e.DownloadURL == "" {
				return fmt.Errorf("%w: file %q has no download_url", ErrInvalidAPIResponse, e.Path)
			}
			t := Target{
				LocalDir: Resolve(e.Path, w.target, w.opts.Mode),
				FileName: NameFromURL(e.DownloadURL),
				URL:      e.DownloadURL,
			}
			if err := checkTarget(t); err != nil {
				return err
			}
			localPath, err := w.mat.Materialize(ctx, t)
			if err != nil {
				return err
			}
			w.written = append(w.written, localPath)

		default:
			return &UnknownEntryTypeError{Path: e.Path, Type: e.Type}
		}
	}
	return nil
}

// inline writes a single-object response under the file's bare name in the
// working directory, bypassing both the resolver and the download path.
func (w *walk) inline(ctx context.Context, f *gitrepo.InlineFile) error {
	raw, err := f.Decode()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAPIResponse, err)
	}
	if raw == nil {
		raw = []byte{}
	}
	t := Target{FileName: f.Name, Inline: raw}
	if err := checkTarget(t); err != nil {
		return err
	}
	localPath, err := w.mat.Materialize(ctx, t)
	if err != nil {
		return err
	}
	w.written = append(w.written, localPath)
	return nil
}

// checkTarget rejects API-supplied names and paths that would land outside
// the working directory. The failure is scoped to the listing node.
func checkTarget(t Target) error {
	switch name := t.FileName; {
	case name == "", name == ".", name == "..", strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: unusable file name %q", ErrInvalidAPIResponse, name)
	}
	if p, ok := Contained(path.Join(t.LocalDir, t.FileName)); !ok {
		return fmt.Errorf("%w: %w: %s", ErrInvalidAPIResponse, ErrOutsideWorkDir, p)
	}
	return nil
}
