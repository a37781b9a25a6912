package clone

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tilsley/cgs/apps/cgs/internal/gitrepo"
)

// Target is one file to write. Exactly one of URL and Inline is the source:
// a non-nil Inline is written as-is, otherwise URL is downloaded.
type Target struct {
	LocalDir string
	FileName string
	URL      string
	Inline   []byte
}

// NameFromURL returns the final path segment of a download URL.
func NameFromURL(downloadURL string) string {
	if u, err := url.Parse(downloadURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return downloadURL[strings.LastIndex(downloadURL, "/")+1:]
}

// Materializer writes targets into a filesystem, relative to its working directory.
type Materializer struct {
	fs   vfs.FileSystem
	repo gitrepo.Client
	out  io.Writer
	inst *instruments
}

// NewMaterializer creates a Materializer that downloads through repo and
// prints one confirmation line per written file to out.
func NewMaterializer(fs vfs.FileSystem, repo gitrepo.Client, out io.Writer) *Materializer {
	return &Materializer{fs: fs, repo: repo, out: out, inst: newInstruments()}
}

// Reset recursively deletes dir if it exists so a clone never merges with
// stale content. An empty dir (the repository root) is left alone.
func (m *Materializer) Reset(dir string) error {
	if dir == "" {
		return nil
	}
	if _, ok := Contained(dir); !ok {
		return &FileSystemError{Op: "remove", Path: dir, Err: ErrOutsideWorkDir}
	}
	exists, err := vfs.DirExists(m.fs, dir)
	if err != nil {
		return &FileSystemError{Op: "stat", Path: dir, Err: err}
	}
	if !exists {
		return nil
	}
	if err := m.fs.RemoveAll(dir); err != nil {
		return &FileSystemError{Op: "remove", Path: dir, Err: err}
	}
	return nil
}

// Materialize creates t.LocalDir, writes the file and returns its local path.
func (m *Materializer) Materialize(ctx context.Context, t Target) (string, error) {
	localPath := path.Join(t.LocalDir, t.FileName)

	ctx, span := otel.Tracer(instrName).Start(ctx, "Materialize",
		trace.WithAttributes(
			attribute.String("file.path", localPath),
			attribute.Bool("file.inline", t.Inline != nil),
		),
	)
	defer span.End()

	n, err := m.write(ctx, t, localPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "materialize failed")
		return "", err
	}

	source := "url"
	if t.Inline != nil {
		source = "inline"
	}
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.inst.materialized.Add(ctx, 1, attrs)
	m.inst.bytesWritten.Add(ctx, n, attrs)

	fmt.Fprintf(m.out, " %s\n", localPath)
	return localPath, nil
}

func (m *Materializer) write(ctx context.Context, t Target, localPath string) (int64, error) {
	if t.FileName == "" {
		return 0, &FileSystemError{Op: "create", Path: localPath, Err: os.ErrInvalid}
	}
	if t.LocalDir != "" {
		if err := m.fs.MkdirAll(t.LocalDir, 0o755); err != nil {
			return 0, &FileSystemError{Op: "mkdir", Path: t.LocalDir, Err: err}
		}
	}

	var src io.Reader
	if t.Inline != nil {
		src = bytes.NewReader(t.Inline)
	} else {
		body, err := m.repo.Download(ctx, t.URL)
		if err != nil {
			return 0, err
		}
		defer func() { //nolint:errcheck // read side; errors surface through io.Copy
			_ = body.Close()
		}()
		src = body
	}

	f, err := m.fs.Create(localPath)
	if err != nil {
		return 0, &FileSystemError{Op: "create", Path: localPath, Err: err}
	}

	tr := &trackedReader{r: src}
	w := bufio.NewWriter(f)
	n, copyErr := io.Copy(w, tr)
	flushErr := w.Flush()
	closeErr := f.Close()

	switch {
	case tr.err != nil:
		return n, fmt.Errorf("%w: read %s: %w", gitrepo.ErrDownloadFailed, t.URL, tr.err)
	case copyErr != nil:
		return n, &FileSystemError{Op: "write", Path: localPath, Err: copyErr}
	case flushErr != nil:
		return n, &FileSystemError{Op: "flush", Path: localPath, Err: flushErr}
	case closeErr != nil:
		return n, &FileSystemError{Op: "close", Path: localPath, Err: closeErr}
	}
	return n, nil
}

// trackedReader remembers read-side failures so a broken download is not
// reported as a filesystem error.
type trackedReader struct {
	r   io.Reader
	err error
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
