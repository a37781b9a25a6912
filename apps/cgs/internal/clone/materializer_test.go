package clone_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/readonlyfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/cgs/apps/cgs/internal/clone"
	"github.com/tilsley/cgs/apps/cgs/internal/platform/github"
)

func TestNameFromURL(t *testing.T) {
	cases := map[string]string{
		"https://raw.githubusercontent.com/acme/widgets/main/src/lib/a.txt": "a.txt",
		"https://raw.example.com/a/b/c.tar.gz?token=abc":                    "c.tar.gz",
		"https://raw.example.com/dir/with%20space.md":                       "with space.md",
		"plain/name.txt": "name.txt",
	}
	for in, want := range cases {
		assert.Equal(t, want, clone.NameFromURL(in), "input %q", in)
	}
}

func TestMaterialize_DownloadsIntoNewDirectory(t *testing.T) {
	fs := memoryfs.New()
	repo := github.NewInMem()
	repo.SetFile("https://raw.test/a.txt", []byte("alpha"))
	var out bytes.Buffer
	m := clone.NewMaterializer(fs, repo, &out)

	p, err := m.Materialize(context.Background(), clone.Target{
		LocalDir: "src/lib/deep",
		FileName: "a.txt",
		URL:      "https://raw.test/a.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, "src/lib/deep/a.txt", p)

	got, err := vfs.ReadFile(fs, "src/lib/deep/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(got))
	assert.Equal(t, " src/lib/deep/a.txt\n", out.String())
}

func TestMaterialize_TruncatesExistingFile(t *testing.T) {
	fs := memoryfs.New()
	require.NoError(t, fs.MkdirAll("d", 0o755))
	require.NoError(t, vfs.WriteFile(fs, "d/f.txt", []byte("a much longer previous content"), 0o644))

	m := clone.NewMaterializer(fs, github.NewInMem(), &bytes.Buffer{})
	_, err := m.Materialize(context.Background(), clone.Target{LocalDir: "d", FileName: "f.txt", Inline: []byte("new")})
	require.NoError(t, err)

	got, err := vfs.ReadFile(fs, "d/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestMaterialize_InlineSkipsNetwork(t *testing.T) {
	fs := memoryfs.New()
	repo := github.NewInMem()
	m := clone.NewMaterializer(fs, repo, &bytes.Buffer{})

	p, err := m.Materialize(context.Background(), clone.Target{FileName: "x.bin", Inline: []byte{0, 1, 2}})
	require.NoError(t, err)
	assert.Equal(t, "x.bin", p)
	assert.Empty(t, repo.Downloads())

	got, err := vfs.ReadFile(fs, "x.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, got)
}

func TestMaterialize_EmptyInlineFile(t *testing.T) {
	fs := memoryfs.New()
	m := clone.NewMaterializer(fs, github.NewInMem(), &bytes.Buffer{})

	_, err := m.Materialize(context.Background(), clone.Target{FileName: "empty", Inline: []byte{}})
	require.NoError(t, err)
	ok, err := vfs.FileExists(fs, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMaterialize_DownloadFailureIsFatal(t *testing.T) {
	fs := memoryfs.New()
	m := clone.NewMaterializer(fs, github.NewInMem(), &bytes.Buffer{})

	_, err := m.Materialize(context.Background(), clone.Target{LocalDir: "d", FileName: "gone", URL: "https://raw.test/gone"})
	require.Error(t, err)
	assert.ErrorIs(t, err, clone.ErrDownloadFailed)
	assert.True(t, clone.IsFatal(err))
}

func TestMaterialize_FileSystemFailureIsFatal(t *testing.T) {
	fs := readonlyfs.New(memoryfs.New())
	m := clone.NewMaterializer(fs, github.NewInMem(), &bytes.Buffer{})

	_, err := m.Materialize(context.Background(), clone.Target{LocalDir: "d", FileName: "f", Inline: []byte("x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, clone.ErrFileSystemFailed)
	assert.True(t, clone.IsFatal(err))

	var fsErr *clone.FileSystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "mkdir", fsErr.Op)
}

func TestMaterialize_MissingFileName(t *testing.T) {
	m := clone.NewMaterializer(memoryfs.New(), github.NewInMem(), &bytes.Buffer{})
	_, err := m.Materialize(context.Background(), clone.Target{LocalDir: "d", Inline: []byte("x")})
	assert.ErrorIs(t, err, clone.ErrFileSystemFailed)
}

func TestReset(t *testing.T) {
	fs := memoryfs.New()
	require.NoError(t, fs.MkdirAll("src/lib/old", 0o755))
	require.NoError(t, vfs.WriteFile(fs, "src/lib/old/stale.txt", []byte("stale"), 0o644))
	require.NoError(t, vfs.WriteFile(fs, "src/keep.txt", []byte("keep"), 0o644))
	m := clone.NewMaterializer(fs, github.NewInMem(), &bytes.Buffer{})

	require.NoError(t, m.Reset("src/lib"))

	exists, err := vfs.DirExists(fs, "src/lib")
	require.NoError(t, err)
	assert.False(t, exists)
	kept, err := vfs.FileExists(fs, "src/keep.txt")
	require.NoError(t, err)
	assert.True(t, kept, "siblings of the reset directory survive")

	// absent directory and repository root are no-ops
	require.NoError(t, m.Reset("never/created"))
	require.NoError(t, m.Reset(""))
	kept, err = vfs.FileExists(fs, "src/keep.txt")
	require.NoError(t, err)
	assert.True(t, kept)
}

func TestReset_RefusesPathsOutsideWorkDir(t *testing.T) {
	fs := memoryfs.New()
	require.NoError(t, fs.MkdirAll("/outside/work", 0o755))
	require.NoError(t, vfs.WriteFile(fs, "/outside/precious.txt", []byte("keep"), 0o644))
	m := clone.NewMaterializer(fs, github.NewInMem(), &bytes.Buffer{})

	for _, dir := range []string{"..", "src/../..", "../outside", "/outside"} {
		err := m.Reset(dir)
		require.Error(t, err, dir)
		assert.ErrorIs(t, err, clone.ErrOutsideWorkDir, dir)
		assert.True(t, clone.IsFatal(err), dir)
	}

	kept, err := vfs.FileExists(fs, "/outside/precious.txt")
	require.NoError(t, err)
	assert.True(t, kept)
}

func TestContained(t *testing.T) {
	cases := map[string]bool{
		"src/lib/a.txt":        true,
		"a.txt":                true,
		"src/../a.txt":         true,
		"..a/b":                true,
		"..":                   false,
		"../a.txt":             false,
		"src/../../a.txt":      false,
		"/etc/passwd":          false,
		"src/lib/../../../etc": false,
	}
	for in, want := range cases {
		_, ok := clone.Contained(in)
		assert.Equal(t, want, ok, "input %q", in)
	}
}
