// Package loader reads ladder program files.
//
// The on-disk format is YAML mirroring the ladder data model one to
// one, so programs round-trip through Marshal/Parse with no loss of
// element ordering, IDs, or kind-specific attributes. Documents are
// checked twice before a program is handed out: structurally against
// the embedded CUE schema, then semantically by ladder.Program.Validate
// (the single-driver invariant).
package loader

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/mfell/rungine/internal/ladder"
)

//go:embed schema.cue
var programSchema string

// Load reads, validates, and decodes a program file.
func Load(path string) (*ladder.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program file: %w", err)
	}
	p, err := Parse(path, data)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", path, err)
	}
	return p, nil
}

// Parse validates and decodes a program document. The filename is used
// only for error positions.
func Parse(filename string, data []byte) (*ladder.Program, error) {
	if err := validateSchema(filename, data); err != nil {
		return nil, err
	}

	// Strict decode: unknown fields are typos, not extensions.
	var p ladder.Program
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// Marshal serializes a program back to its file format.
// Parse(Marshal(p)) reproduces p exactly.
func Marshal(p *ladder.Program) ([]byte, error) {
	out, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal program: %w", err)
	}
	return out, nil
}

// validateSchema unifies the document with the embedded CUE schema.
func validateSchema(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(programSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("internal: program schema does not compile: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("build document: %w", err)
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema violation: %s", cueerrors.Details(err, nil))
	}

	return nil
}
