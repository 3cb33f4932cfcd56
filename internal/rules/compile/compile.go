// Package compile turns the natural-language policy corpus into the
// structured rule registry. Compilation is an offline step: the runtime only
// ever loads the compiled artifact.
package compile

import (
	"context"
	"log/slog"

	"uwgate/internal/rules"
	"uwgate/internal/rules/registry"
	dErrors "uwgate/pkg/domain-errors"
)

// Extractor turns one policy document into a structured rule.
type Extractor interface {
	Extract(ctx context.Context, rule rules.ReviewRule, policyText string) (rules.StructuredRule, error)
}

// PolicySource provides the policy documents to compile.
type PolicySource interface {
	List() []rules.ReviewRule
	PolicyText(rule rules.ReviewRule) (string, error)
}

// Compiler drives extraction across a policy corpus and assembles the
// validated registry. A single failed extraction fails the whole compile:
// the registry is fail-closed, never partial.
type Compiler struct {
	source    PolicySource
	extractor Extractor
	logger    *slog.Logger
}

// New constructs a compiler.
func New(source PolicySource, extractor Extractor, logger *slog.Logger) *Compiler {
	return &Compiler{source: source, extractor: extractor, logger: logger}
}

// Compile extracts every policy in the corpus and builds the registry.
func (c *Compiler) Compile(ctx context.Context) (*registry.Registry, error) {
	names := c.source.List()
	entries := make(map[rules.ReviewRule]rules.StructuredRule, len(names))

	for _, name := range names {
		text, err := c.source.PolicyText(name)
		if err != nil {
			return nil, err
		}

		c.logger.InfoContext(ctx, "extracting structured rule", "rule", name)
		rule, err := c.extractor.Extract(ctx, name, text)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal,
				"rule extraction failed for "+string(name))
		}
		if err := rules.Validate(&rule); err != nil {
			return nil, err
		}
		entries[name] = rule
	}

	return registry.New(entries)
}
