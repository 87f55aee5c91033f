// Package classify assigns catalog products to apparel categories using an
// ordered keyword rule table.
package classify

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/ristretto/v2"

	"stylematch/recommend/models"
	"stylematch/recommend/vocab"
)

//go:embed rules.json
var defaultRules []byte

// Rule maps keywords to a category. Rules are tried in table order.
type Rule struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

type compiledRule struct {
	category models.Category
	keywords [][]string
}

// Classifier is safe for concurrent use; the rule table is read-only after
// construction.
type Classifier struct {
	rules []compiledRule
	memo  *ristretto.Cache[string, models.Category]
}

// DefaultRules returns the embedded rule table.
func DefaultRules() []Rule {
	rules, err := LoadRules(bytes.NewReader(defaultRules))
	if err != nil {
		panic(fmt.Sprintf("embedded classifier rules: %v", err))
	}
	return rules
}

// LoadRules decodes and validates a JSON rule table.
func LoadRules(r io.Reader) ([]Rule, error) {
	var rules []Rule
	if err := json.NewDecoder(r).Decode(&rules); err != nil {
		return nil, fmt.Errorf("failed to decode classifier rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("classifier rule table is empty")
	}
	for i, rule := range rules {
		if _, ok := models.ParseCategory(rule.Category); !ok {
			return nil, fmt.Errorf("rule %d: unknown category %q", i, rule.Category)
		}
		if len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d (%s): no keywords", i, rule.Category)
		}
	}
	return rules, nil
}

// LoadRulesFile reads a rule table from path. An empty path selects the embedded
// table.
func LoadRulesFile(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open classifier rules: %w", err)
	}
	defer f.Close()
	return LoadRules(f)
}

func New(rules []Rule) (*Classifier, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		cat, ok := models.ParseCategory(rule.Category)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", rule.Category)
		}
		cr := compiledRule{category: cat}
		for _, kw := range rule.Keywords {
			if toks := vocab.Tokenize(kw); len(toks) > 0 {
				cr.keywords = append(cr.keywords, toks)
			}
		}
		compiled = append(compiled, cr)
	}

	memo, err := ristretto.NewCache(&ristretto.Config[string, models.Category]{
		NumCounters: 1e5,
		MaxCost:     1 << 14,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier memo: %w", err)
	}

	slog.Info("Classifier initialized", slog.Any("rules", len(compiled)))
	return &Classifier{rules: compiled, memo: memo}, nil
}

// Classify returns the category of p, or models.CategoryUnresolved when no rule
// matches. Title hits win over tag hits, which win over description hits.
func (c *Classifier) Classify(p models.Product) models.Category {
	key := memoKey(p)
	if cat, ok := c.memo.Get(key); ok {
		return cat
	}

	cat := c.classify(p)
	c.memo.Set(key, cat, 1)
	return cat
}

func (c *Classifier) classify(p models.Product) models.Category {
	tagTokens := make([][]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		tagTokens = append(tagTokens, vocab.Tokenize(tag))
	}

	sources := [][][]string{
		{vocab.Tokenize(p.Title)},
		tagTokens,
		{vocab.Tokenize(p.Description)},
	}
	for _, source := range sources {
		if cat, ok := c.match(source); ok {
			return cat
		}
	}
	return models.CategoryUnresolved
}

// match runs the rules in order over one source. A source may be several token
// runs (one per tag) so that phrases never span two tags.
func (c *Classifier) match(runs [][]string) (models.Category, bool) {
	for _, rule := range c.rules {
		for _, kw := range rule.keywords {
			for _, toks := range runs {
				if vocab.ContainsTokens(toks, kw) {
					return rule.category, true
				}
			}
		}
	}
	return models.CategoryUnresolved, false
}

func (c *Classifier) Close() {
	c.memo.Close()
}

func memoKey(p models.Product) string {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteByte(0)
	b.WriteString(strings.Join(p.Tags, "\x1f"))
	b.WriteByte(0)
	b.WriteString(p.Description)
	return b.String()
}
