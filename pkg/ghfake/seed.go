package ghfake

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Seed is the YAML fixture format:
//
//	repos:
//	  - owner: acme
//	    repo: widgets
//	    ref: main
//	    files:
//	      src/lib/a.txt: |
//	        hello
type Seed struct {
	Repos []SeedRepo `yaml:"repos"`
}

// SeedRepo is one repository at one ref.
type SeedRepo struct {
	Owner string            `yaml:"owner"`
	Repo  string            `yaml:"repo"`
	Ref   string            `yaml:"ref"`
	Files map[string]string `yaml:"files"`
}

// LoadSeed reads a YAML Seed from r and stores every file it names.
// A missing ref defaults to DefaultRef.
func (s *Server) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}
	for i, repo := range seed.Repos {
		if repo.Owner == "" || repo.Repo == "" {
			return fmt.Errorf("seed repo #%d: owner and repo are required", i)
		}
		ref := repo.Ref
		if ref == "" {
			ref = DefaultRef
		}
		for p, content := range repo.Files {
			s.Put(repo.Owner, repo.Repo, ref, p, []byte(content))
		}
	}
	return nil
}
