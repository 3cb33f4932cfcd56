// Package policystore loads the natural-language underwriting policy corpus
// that the rule compiler extracts structured rules from.
package policystore

import (
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"uwgate/internal/rules"
	dErrors "uwgate/pkg/domain-errors"
)

// Store holds the policy text for each review rule, in corpus order.
type Store struct {
	policies map[rules.ReviewRule]string
	order    []rules.ReviewRule
}

type document struct {
	Policies []policyDoc `yaml:"policies"`
}

type policyDoc struct {
	Rule string `yaml:"rule"`
	Text string `yaml:"text"`
}

// Load reads a YAML policy corpus. Every entry must name a known review rule
// and carry non-empty text; duplicates are rejected.
func Load(r io.Reader) (*Store, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid policy corpus")
	}
	if len(doc.Policies) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "policy corpus is empty")
	}

	s := &Store{policies: make(map[rules.ReviewRule]string, len(doc.Policies))}
	for _, p := range doc.Policies {
		name, err := rules.ParseReviewRule(strings.TrimSpace(p.Rule))
		if err != nil {
			return nil, err
		}
		text := strings.TrimSpace(p.Text)
		if text == "" {
			return nil, dErrors.Newf(dErrors.CodeValidation, "policy %s has no text", name)
		}
		if _, dup := s.policies[name]; dup {
			return nil, dErrors.Newf(dErrors.CodeValidation, "duplicate policy for %s", name)
		}
		s.policies[name] = text
		s.order = append(s.order, name)
	}
	return s, nil
}

// LoadFile reads a YAML policy corpus from disk.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "open policy corpus")
	}
	defer f.Close()
	return Load(f)
}

// List returns the review rules covered by the corpus, in corpus order.
func (s *Store) List() []rules.ReviewRule {
	out := make([]rules.ReviewRule, len(s.order))
	copy(out, s.order)
	return out
}

// PolicyText returns the policy document for a review rule.
func (s *Store) PolicyText(rule rules.ReviewRule) (string, error) {
	text, ok := s.policies[rule]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeNotFound, "no policy for %s", rule)
	}
	return text, nil
}
