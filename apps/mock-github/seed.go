package main

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/tilsley/cgs/pkg/ghfake"
)

//go:embed seed.yaml
var defaultSeed []byte

// seed loads SEED_FILE when set, otherwise the embedded fixture.
func seed(s *ghfake.Server) error {
	if p := os.Getenv("SEED_FILE"); p != "" {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open seed %s: %w", p, err)
		}
		defer f.Close() //nolint:errcheck
		return s.LoadSeed(f)
	}
	return s.LoadSeed(bytes.NewReader(defaultSeed))
}
