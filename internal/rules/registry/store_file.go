package registry

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"uwgate/internal/rules"
	dErrors "uwgate/pkg/domain-errors"
)

// Load reads a persisted registry artifact. The artifact is a JSON object
// mapping review rule name to structured rule. Extra fields inside entries
// are ignored for forward compatibility; unknown rule names and schema
// violations fail the whole load.
func Load(r io.Reader) (*Registry, error) {
	var raw map[string]rules.StructuredRule
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "malformed registry document")
	}

	entries := make(map[rules.ReviewRule]rules.StructuredRule, len(raw))
	for name, rule := range raw {
		parsed, err := rules.ParseReviewRule(name)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "registry contains unknown review rule")
		}
		entries[parsed] = rule
	}

	return New(entries)
}

// Save writes the registry as its persisted JSON artifact.
func Save(reg *Registry, w io.Writer) error {
	doc := make(map[string]rules.StructuredRule, reg.Len())
	for _, name := range reg.List() {
		rule, err := reg.Get(name)
		if err != nil {
			return err
		}
		doc[string(name)] = rule
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode registry document")
	}
	return nil
}

// LoadFile loads a registry artifact from disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "open registry file")
	}
	defer f.Close()
	return Load(f)
}

// SaveFile persists a registry artifact to disk, creating parent directories
// as needed.
func SaveFile(reg *Registry, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "create registry directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "create registry file")
	}
	defer f.Close()
	return Save(reg, f)
}
