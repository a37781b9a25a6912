package clone

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tilsley/cgs/apps/cgs/internal/locator"
)

// Request describes one clone run.
type Request struct {
	// URL is the browsing URL of the sub-directory, e.g.
	// https://github.com/acme/widgets/tree/main/src/lib
	URL string
	// APIBase overrides the contents API root derived from the URL host.
	APIBase string
	Options Options
}

// Result summarises a finished run.
type Result struct {
	Locator *locator.Locator
	Files   []string
	// ListErr is the recoverable failure of the starting listing, if any.
	// The run still counts as successful when it is set.
	ListErr error
}

// Service orchestrates a clone: parse the URL, reset the destination, walk the tree.
type Service struct {
	lister *Lister
	mat    *Materializer
	log    *slog.Logger
}

// NewService wires a Service from its collaborators.
func NewService(lister *Lister, mat *Materializer, log *slog.Logger) *Service {
	return &Service{lister: lister, mat: mat, log: log}
}

// Run performs a clone. Locator, download and filesystem failures are
// returned as errors; a failure to list the starting directory is logged
// and reported through Result.ListErr.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	loc, err := locator.Parse(req.URL)
	if err != nil {
		return nil, err
	}

	for _, dir := range resetDirs(loc, req.Options.Mode) {
		if err := s.mat.Reset(dir); err != nil {
			return nil, fmt.Errorf("reset %q: %w", dir, err)
		}
	}

	listingURL := loc.ListingURL(req.APIBase)
	s.log.Debug("cloning sub-directory",
		"owner", loc.Owner,
		"repo", loc.Repo,
		"branch", loc.Branch,
		"subdir", loc.Subdir(),
		"mode", req.Options.Mode.String(),
		"url", listingURL,
	)

	files, err := s.lister.List(ctx, listingURL, loc.TargetName(), req.Options)
	res := &Result{Locator: loc, Files: files}
	if err != nil {
		if IsFatal(err) {
			return res, err
		}
		s.log.Warn("Failed to list directory content", "url", listingURL, "error", err)
		res.ListErr = err
	}
	return res, nil
}

// resetDirs lists the directories emptied before a run: the sub-directory
// path itself and, in CurrentDirOnly mode, the flattened root the files are
// written under.
func resetDirs(loc *locator.Locator, mode Mode) []string {
	subdir := loc.Subdir()
	if subdir == "" {
		return nil
	}
	dirs := []string{subdir}
	if mode == CurrentDirOnly {
		if root := Resolve(subdir+"/_", loc.TargetName(), mode); root != subdir {
			dirs = append(dirs, root)
		}
	}
	return dirs
}
