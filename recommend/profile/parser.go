// Package profile turns vision-language analysis output into a StyleProfile.
package profile

import (
	"encoding/json"
	"math"
	"strings"

	"stylematch/recommend/models"
	"stylematch/recommend/vocab"
)

// Section headers of the analysis prompt.
const (
	sectionDescription   = "DESCRIPTION"
	sectionStyleCategory = "STYLE_CATEGORY"
	sectionOccasions     = "SUITABLE_OCCASIONS"
	sectionItems         = "IDENTIFIED_ITEMS"
	sectionColorPalette  = "COLOR_PALETTE"
	sectionDetailed      = "DETAILED_RECOMMENDATIONS"
	sectionAdditional    = "ADDITIONAL_RECOMMENDATIONS"
)

const (
	maxItemHints          = 8
	confidenceColors      = 0.4
	confidenceStyleTags   = 0.4
	confidenceSilhouettes = 0.2
)

var sectionNames = []string{
	sectionDescription, sectionStyleCategory, sectionOccasions, sectionItems,
	sectionColorPalette, sectionDetailed, sectionAdditional,
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "with": {}, "of": {}, "in": {}, "for": {},
	"to": {}, "or": {}, "is": {}, "are": {}, "this": {}, "that": {}, "her": {}, "his": {},
	"their": {}, "pair": {}, "wearing": {}, "wears": {}, "on": {}, "by": {},
}

// Structured is the JSON shape an analysis service may return instead of text.
type Structured struct {
	Colors      []string `json:"colors"`
	Styles      []string `json:"styles"`
	Silhouettes []string `json:"silhouettes"`
	Occasions   []string `json:"occasions"`
	Items       []string `json:"items"`
	Confidence  *float64 `json:"confidence"`
}

// Parse never fails: output it cannot read yields an empty profile with
// confidence 0.
func Parse(raw string) models.StyleProfile {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Empty()
	}
	if strings.HasPrefix(raw, "{") {
		var s Structured
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return ParseStructured(s)
		}
	}
	return parseText(raw)
}

// Empty is the "no profile" value.
func Empty() models.StyleProfile {
	return models.StyleProfile{
		DominantColors: []string{},
		StyleTags:      []string{},
		Silhouettes:    []string{},
	}
}

func ParseStructured(s Structured) models.StyleProfile {
	colors := map[string]struct{}{}
	for _, c := range s.Colors {
		if canon := vocab.CanonicalColor(c); vocab.IsColor(canon) {
			colors[canon] = struct{}{}
		}
	}

	var tags orderedSet
	for _, st := range s.Styles {
		for _, t := range vocab.Terms(st) {
			if vocab.IsStyleTag(t) {
				tags.add(t)
			}
		}
	}

	sil := map[string]struct{}{}
	for _, v := range s.Silhouettes {
		for _, t := range vocab.Terms(v) {
			if vocab.IsSilhouette(t) {
				sil[t] = struct{}{}
			}
		}
	}

	var occasions orderedSet
	for _, o := range s.Occasions {
		if key, ok := vocab.OccasionFromText(o); ok {
			occasions.add(key)
		}
	}

	var items orderedSet
	for _, it := range s.Items {
		items.add(strings.Join(vocab.Tokenize(it), " "))
	}

	p := build(colors, tags.items, sil, occasions.items, items.items)
	if s.Confidence != nil && p.Confidence > 0 {
		p.Confidence = clamp01(*s.Confidence)
	}
	return p
}

func parseText(raw string) models.StyleProfile {
	sections := splitSections(raw)

	var tags orderedSet
	for _, t := range vocab.Terms(sections[sectionStyleCategory]) {
		if vocab.IsStyleTag(t) {
			tags.add(t)
		}
	}

	m := vocab.Extract(raw)
	for _, t := range vocab.Terms(raw) {
		if vocab.IsStyleTag(t) {
			tags.add(t)
		}
	}

	var occasions orderedSet
	if list, ok := sections[sectionOccasions]; ok {
		for _, entry := range strings.Split(list, ",") {
			if key, ok := vocab.OccasionFromText(entry); ok {
				occasions.add(key)
			}
		}
	}

	var items orderedSet
	if list, ok := sections[sectionItems]; ok {
		for _, entry := range strings.Split(list, ",") {
			items.add(strings.Join(vocab.Tokenize(entry), " "))
		}
	} else {
		for _, hint := range garmentPhrases(raw) {
			items.add(hint)
		}
	}

	return build(m.Colors, tags.items, m.Silhouettes, occasions.items, items.items)
}

func build(colors map[string]struct{}, tags []string, sil map[string]struct{}, occasions, items []string) models.StyleProfile {
	if len(colors) == 0 && len(tags) == 0 {
		return Empty()
	}

	p := models.StyleProfile{
		DominantColors: vocab.SortedKeys(colors),
		StyleTags:      append([]string{}, tags...),
		Silhouettes:    vocab.SortedKeys(sil),
		Occasions:      occasions,
		ItemHints:      limit(items, maxItemHints),
	}
	if len(p.DominantColors) > 0 {
		p.Confidence += confidenceColors
	}
	if len(p.StyleTags) > 0 {
		p.Confidence += confidenceStyleTags
	}
	if len(p.Silhouettes) > 0 {
		p.Confidence += confidenceSilhouettes
	}
	p.Confidence = clamp01(p.Confidence)
	return p
}

// splitSections collects the text under each known header. Continuation lines
// are appended to the current section.
func splitSections(raw string) map[string]string {
	sections := map[string]string{}
	current := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		clean := strings.TrimLeft(line, "*#> ")
		if name, rest, ok := header(clean); ok {
			current = name
			sections[current] = strings.TrimSpace(strings.TrimLeft(rest, "* "))
			continue
		}
		if current != "" && line != "" {
			if sections[current] != "" {
				sections[current] += " "
			}
			sections[current] += line
		}
	}
	return sections
}

func header(line string) (string, string, bool) {
	upper := strings.ToUpper(line)
	for _, name := range sectionNames {
		for _, variant := range []string{name, strings.ReplaceAll(name, "_", " ")} {
			if len(line) >= len(variant) && strings.HasPrefix(upper, variant) {
				rest := strings.TrimLeft(line[len(variant):], "* ")
				if strings.HasPrefix(rest, ":") {
					return name, rest[1:], true
				}
			}
		}
	}
	return "", "", false
}

// garmentPhrases finds "<adjective> <adjective> <garment>" runs in free text,
// used when the analysis did not list its items.
func garmentPhrases(text string) []string {
	toks := vocab.Tokenize(text)
	var out []string
	for i, tok := range toks {
		if !vocab.IsGarment(tok) {
			continue
		}
		start := i
		for start > 0 && i-start < 2 {
			prev := toks[start-1]
			if _, stop := stopwords[prev]; stop || vocab.IsGarment(prev) {
				break
			}
			start--
		}
		out = append(out, strings.Join(toks[start:i+1], " "))
	}
	return out
}

type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func (o *orderedSet) add(v string) {
	if v == "" {
		return
	}
	if o.seen == nil {
		o.seen = map[string]struct{}{}
	}
	if _, ok := o.seen[v]; ok {
		return
	}
	o.seen[v] = struct{}{}
	o.items = append(o.items, v)
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
