// Package vocab holds the recognized fashion vocabulary and the tokenizer shared
// by the profile parser, the constraint model, the classifier and the scorer.
package vocab

import (
	"sort"
	"strings"
	"unicode"
)

var colors = toSet(
	"black", "white", "gray", "navy", "blue", "red", "green", "yellow", "purple",
	"pink", "brown", "beige", "cream", "ivory", "olive", "burgundy", "maroon", "tan",
	"camel", "khaki", "charcoal", "teal", "orange", "gold", "silver", "lavender",
	"mint", "coral", "mustard",
)

var styleTags = toSet(
	"formal", "casual", "business", "smart-casual", "streetwear", "minimalist",
	"vintage", "bohemian", "sporty", "athletic", "elegant", "classic", "preppy",
	"edgy", "romantic", "chic", "modern", "retro", "sophisticated", "professional",
	"grunge", "glamorous", "utilitarian",
)

var silhouettes = toSet(
	"slim", "fitted", "tailored", "relaxed", "oversized", "loose", "straight",
	"wide-leg", "cropped", "a-line", "bodycon", "structured", "boxy", "skinny",
	"flared", "high-waisted",
)

// Garments are the nouns that mark an item phrase in free-form analysis text.
var garments = toSet(
	"jacket", "blazer", "coat", "shirt", "t-shirt", "blouse", "sweater", "cardigan",
	"pants", "trousers", "jeans", "chinos", "skirt", "shorts", "dress", "shoes",
	"sneakers", "boots", "loafers", "heels", "sandals", "flats", "hat", "scarf",
	"belt", "bag", "watch", "hoodie", "vest", "polo",
)

// Two-word phrases collapse into one term before lookup.
var phrases = map[string]string{
	"navy blue":    "navy",
	"light blue":   "blue",
	"sky blue":     "blue",
	"dark green":   "green",
	"forest green": "green",
	"hot pink":     "pink",
	"off white":    "ivory",
	"smart casual": "smart-casual",
	"street wear":  "streetwear",
	"wide leg":     "wide-leg",
	"a line":       "a-line",
	"high waisted": "high-waisted",
	"black tie":    "black-tie",
}

var aliases = map[string]string{
	"grey":       "gray",
	"navy-blue":  "navy",
	"off-white":  "ivory",
	"boho":       "bohemian",
	"minimal":    "minimalist",
	"elegance":   "elegant",
	"slim-fit":   "slim",
	"baggy":      "oversized",
	"tailoring":  "tailored",
	"athleisure": "sporty",
}

// Occasion keys and the labels the UI offers.
const (
	OccasionBusiness = "business_meeting"
	OccasionCasual   = "casual_outing"
	OccasionDate     = "date_night"
	OccasionFormal   = "formal_event"
	OccasionWorkout  = "workout"
	OccasionOther    = "other"
	OccasionCustom   = "custom"
)

var OccasionLabels = map[string]string{
	OccasionBusiness: "Business Meeting",
	OccasionCasual:   "Casual Outing",
	OccasionDate:     "Date Night",
	OccasionFormal:   "Formal Event",
	OccasionWorkout:  "Workout",
	OccasionOther:    "Other",
}

// occasionWords map a single word found in free text to an occasion key.
var occasionWords = map[string]string{
	"business":  OccasionBusiness,
	"office":    OccasionBusiness,
	"meeting":   OccasionBusiness,
	"work":      OccasionBusiness,
	"casual":    OccasionCasual,
	"weekend":   OccasionCasual,
	"date":      OccasionDate,
	"dinner":    OccasionDate,
	"formal":    OccasionFormal,
	"wedding":   OccasionFormal,
	"gala":      OccasionFormal,
	"black-tie": OccasionFormal,
	"workout":   OccasionWorkout,
	"gym":       OccasionWorkout,
	"training":  OccasionWorkout,
}

func toSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func IsColor(term string) bool      { _, ok := colors[term]; return ok }
func IsStyleTag(term string) bool   { _, ok := styleTags[term]; return ok }
func IsSilhouette(term string) bool { _, ok := silhouettes[term]; return ok }
func IsGarment(term string) bool    { _, ok := garments[term]; return ok }

// Tokenize lower-cases text and splits it on everything except letters, digits
// and inner hyphens.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "-"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Terms tokenizes text and canonicalizes phrases and aliases.
func Terms(text string) []string {
	toks := Tokenize(text)
	out := make([]string, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		if i+1 < len(toks) {
			if canon, ok := phrases[toks[i]+" "+toks[i+1]]; ok {
				out = append(out, canon)
				i++
				continue
			}
		}
		out = append(out, Canonical(toks[i]))
	}
	return out
}

// Canonical maps a single lower-case term through the alias table.
func Canonical(term string) string {
	if canon, ok := aliases[term]; ok {
		return canon
	}
	if canon, ok := phrases[term]; ok {
		return canon
	}
	return term
}

// CanonicalColor normalizes a user-supplied color. Phrases like "Navy Blue"
// collapse to their canonical term; unknown colors are kept lower-cased.
func CanonicalColor(raw string) string {
	terms := Terms(raw)
	for _, t := range terms {
		if IsColor(t) {
			return t
		}
	}
	return strings.Join(terms, " ")
}

// Mentions is the vocabulary found in a piece of text.
type Mentions struct {
	Colors      map[string]struct{}
	StyleTags   map[string]struct{}
	Silhouettes map[string]struct{}
}

func Extract(text string) Mentions {
	m := Mentions{
		Colors:      map[string]struct{}{},
		StyleTags:   map[string]struct{}{},
		Silhouettes: map[string]struct{}{},
	}
	for _, t := range Terms(text) {
		switch {
		case IsColor(t):
			m.Colors[t] = struct{}{}
		case IsStyleTag(t):
			m.StyleTags[t] = struct{}{}
		case IsSilhouette(t):
			m.Silhouettes[t] = struct{}{}
		}
	}
	return m
}

// ContainsPhrase reports whether keyword (one or more words) appears as whole
// words in tokens.
func ContainsPhrase(tokens []string, keyword string) bool {
	return ContainsTokens(tokens, Tokenize(keyword))
}

// ContainsTokens is ContainsPhrase for an already tokenized keyword.
func ContainsTokens(tokens, kw []string) bool {
	if len(kw) == 0 || len(kw) > len(tokens) {
		return false
	}
	for i := 0; i+len(kw) <= len(tokens); i++ {
		match := true
		for j := range kw {
			if tokens[i+j] != kw[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// OccasionKey normalizes an occasion label ("Business Meeting", "business-meeting")
// to its key. ok is false for labels outside the recognized set.
func OccasionKey(label string) (string, bool) {
	key := strings.Join(Tokenize(strings.ReplaceAll(label, "_", " ")), "_")
	key = strings.ReplaceAll(key, "-", "_")
	if _, ok := OccasionLabels[key]; ok {
		return key, true
	}
	return key, false
}

// OccasionFromText maps a free-text occasion phrase ("office meetings") to a key.
func OccasionFromText(text string) (string, bool) {
	if key, ok := OccasionKey(text); ok {
		return key, true
	}
	for _, t := range Terms(text) {
		if key, ok := occasionWords[t]; ok {
			return key, true
		}
	}
	return "", false
}

// SortedKeys returns the members of a set in lexical order.
func SortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
