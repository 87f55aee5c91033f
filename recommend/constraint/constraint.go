// Package constraint validates and normalizes user-supplied outfit constraints.
package constraint

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"stylematch/recommend/models"
	"stylematch/recommend/vocab"
)

// Normalize fails with models.ErrInvalidConstraint before any matching work is
// done when the budget window or the occasion is unusable.
func Normalize(in models.ConstraintInput) (models.Constraints, error) {
	if err := checkBudget(in.BudgetMin, in.BudgetMax); err != nil {
		return models.Constraints{}, err
	}

	occasion, custom, err := normalizeOccasion(in.Occasion, in.Custom)
	if err != nil {
		return models.Constraints{}, err
	}

	excluded := normalizeSet(in.ExcludedBrands, strings.ToLower)
	preferred := normalizeSet(in.PreferredBrands, strings.ToLower)
	preferred = subtract(preferred, excluded)

	return models.Constraints{
		Occasion:        occasion,
		CustomOccasion:  custom,
		BudgetMin:       in.BudgetMin,
		BudgetMax:       in.BudgetMax,
		PreferredColors: normalizeSet(in.PreferredColors, vocab.CanonicalColor),
		PreferredBrands: preferred,
		ExcludedBrands:  excluded,
		Notes:           strings.TrimSpace(in.Notes),
	}, nil
}

func checkBudget(min, max float64) error {
	for _, b := range []struct {
		name  string
		value float64
	}{{"budget_min", min}, {"budget_max", max}} {
		if math.IsNaN(b.value) || math.IsInf(b.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number", models.ErrInvalidConstraint, b.name)
		}
		if b.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", models.ErrInvalidConstraint, b.name)
		}
	}
	if max < min {
		return fmt.Errorf("%w: budget_max %.2f is below budget_min %.2f", models.ErrInvalidConstraint, max, min)
	}
	return nil
}

func normalizeOccasion(raw string, allowCustom bool) (string, string, error) {
	label := strings.TrimSpace(raw)
	if key, ok := vocab.OccasionKey(label); ok {
		return key, "", nil
	}
	if allowCustom && label != "" {
		return vocab.OccasionCustom, label, nil
	}
	if label == "" {
		return "", "", fmt.Errorf("%w: occasion is required", models.ErrInvalidConstraint)
	}
	return "", "", fmt.Errorf("%w: unrecognized occasion %q", models.ErrInvalidConstraint, label)
}

// normalizeSet splits comma-separated entries, trims, canonicalizes, dedupes and
// sorts.
func normalizeSet(values []string, canon func(string) string) []string {
	seen := map[string]struct{}{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if c := canon(part); c != "" {
				seen[c] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func subtract(from, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, r := range remove {
		drop[r] = struct{}{}
	}
	out := from[:0]
	for _, v := range from {
		if _, ok := drop[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports membership in a normalized (lower-cased) set.
func Contains(set []string, v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return false
	}
	i := sort.SearchStrings(set, v)
	return i < len(set) && set[i] == v
}
