package engine

import (
	"fmt"
	"math"
	"sort"

	"stylematch/recommend/models"
)

const epsilon = 1e-9

// AssemblyRequest 组装请求. ScoredByCategory lists are expected best-first but
// are re-sorted defensively by score, then price, then id.
type AssemblyRequest struct {
	ScoredByCategory map[models.Category][]models.ScoredProduct
	Constraints      models.Constraints
	Required         []models.Category
	Optional         []models.Category
	NumSets          int
	Allocation       map[models.Category]float64
}

// AssemblyResult holds the ranked sets and every unmet category.
type AssemblyResult struct {
	Sets       []models.OutfitSet
	Shortfalls []models.Shortfall
}

// Assemble builds up to NumSets outfit sets. No product appears in two sets.
// It fails only for a malformed request.
func Assemble(req AssemblyRequest) (AssemblyResult, error) {
	if len(req.Required) == 0 {
		return AssemblyResult{}, fmt.Errorf("%w: no required categories", models.ErrInvalidAssemblyRequest)
	}
	if req.NumSets <= 0 {
		return AssemblyResult{}, fmt.Errorf("%w: num_sets must be positive, got %d", models.ErrInvalidAssemblyRequest, req.NumSets)
	}
	return newAssembler(req).run(), nil
}

type assembler struct {
	pools    map[models.Category][]models.ScoredProduct
	shares   map[models.Category]float64
	required []models.Category
	optional []models.Category
	min, max float64
	numSets  int
	used     map[string]bool
}

// pendingShortfall is resolved to a final rank once sets are sorted.
type pendingShortfall struct {
	models.Shortfall
	seq int // creation index of the set; -1 for the whole response
}

func newAssembler(req AssemblyRequest) *assembler {
	required := uniqueCategories(req.Required, nil)
	optional := uniqueCategories(req.Optional, required)
	shares := Shares(req.Allocation, append(append([]models.Category{}, required...), optional...))

	a := &assembler{
		pools:    map[models.Category][]models.ScoredProduct{},
		shares:   shares,
		required: byShare(required, shares),
		optional: byShare(optional, shares),
		min:      req.Constraints.BudgetMin,
		max:      req.Constraints.BudgetMax,
		numSets:  req.NumSets,
		used:     map[string]bool{},
	}
	for cat, list := range req.ScoredByCategory {
		pool := append([]models.ScoredProduct{}, list...)
		sort.SliceStable(pool, func(i, j int) bool {
			if pool[i].Score != pool[j].Score {
				return pool[i].Score > pool[j].Score
			}
			if pool[i].Price != pool[j].Price {
				return pool[i].Price < pool[j].Price
			}
			return pool[i].ID < pool[j].ID
		})
		a.pools[cat] = pool
	}
	return a
}

func uniqueCategories(cats []models.Category, exclude []models.Category) []models.Category {
	seen := map[models.Category]bool{}
	for _, c := range exclude {
		seen[c] = true
	}
	var out []models.Category
	for _, c := range cats {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// byShare orders categories by descending budget share, then display order.
func byShare(cats []models.Category, shares map[models.Category]float64) []models.Category {
	out := append([]models.Category{}, cats...)
	sort.SliceStable(out, func(i, j int) bool {
		if shares[out[i]] != shares[out[j]] {
			return shares[out[i]] > shares[out[j]]
		}
		return displayIndex(out[i]) < displayIndex(out[j])
	})
	return out
}

func displayIndex(c models.Category) int {
	for i, d := range models.Categories {
		if d == c {
			return i
		}
	}
	return len(models.Categories)
}

// available lists unused candidates of cat, best first.
func (a *assembler) available(cat models.Category, taken map[string]bool) []models.ScoredProduct {
	var out []models.ScoredProduct
	for _, p := range a.pools[cat] {
		if !a.used[p.ID] && !taken[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

func (a *assembler) cheapest(cat models.Category, taken map[string]bool) (models.ScoredProduct, bool) {
	var best models.ScoredProduct
	found := false
	for _, p := range a.available(cat, taken) {
		if !found || p.Price < best.Price {
			best, found = p, true
		}
	}
	return best, found
}

func firstWhere(cands []models.ScoredProduct, ok func(models.ScoredProduct) bool) (models.ScoredProduct, bool) {
	for _, p := range cands {
		if ok(p) {
			return p, true
		}
	}
	return models.ScoredProduct{}, false
}

func (a *assembler) run() AssemblyResult {
	var (
		sets    []models.OutfitSet
		pending []pendingShortfall
	)
	reportedNoCandidates := map[models.Category]bool{}

	for seq := 0; seq < a.numSets; seq++ {
		set, ok := a.buildSet()
		if !ok {
			for _, cat := range a.required {
				if len(a.pools[cat]) == 0 && !reportedNoCandidates[cat] {
					reportedNoCandidates[cat] = true
					pending = append(pending, pendingShortfall{
						Shortfall: models.Shortfall{Category: cat, Reason: models.ReasonNoCandidates},
						seq:       -1,
					})
				}
			}
			if seq > 0 {
				pending = append(pending, pendingShortfall{
					Shortfall: models.Shortfall{Reason: models.ReasonCandidatesExhausted},
					seq:       -1,
				})
			}
			break
		}

		for _, cat := range set.Missing {
			if len(a.pools[cat]) == 0 {
				if !reportedNoCandidates[cat] {
					reportedNoCandidates[cat] = true
					pending = append(pending, pendingShortfall{
						Shortfall: models.Shortfall{Category: cat, Reason: models.ReasonNoCandidates},
						seq:       -1,
					})
				}
				continue
			}
			pending = append(pending, pendingShortfall{
				Shortfall: models.Shortfall{Category: cat, Reason: models.ReasonCandidatesExhausted},
				seq:       seq,
			})
		}

		for _, p := range set.Items {
			a.used[p.ID] = true
		}
		sets = append(sets, set)

		if set.BudgetNote == models.BudgetNoteAboveMax {
			// every later set would cost at least as much
			if seq < a.numSets-1 {
				pending = append(pending, pendingShortfall{
					Shortfall: models.Shortfall{Reason: models.ReasonBudgetExceeded},
					seq:       -1,
				})
			}
			break
		}
	}

	ranks := rankSets(sets)

	shortfalls := make([]models.Shortfall, 0, len(pending))
	for _, p := range pending {
		sf := p.Shortfall
		if p.seq >= 0 {
			sf.Rank = ranks[p.seq]
		}
		shortfalls = append(shortfalls, sf)
	}
	return AssemblyResult{Sets: sets, Shortfalls: shortfalls}
}

// rankSets sorts sets in place and returns the final rank of each creation
// index.
func rankSets(sets []models.OutfitSet) map[int]int {
	order := make([]int, len(sets))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := sets[order[i]], sets[order[j]]
		if a.AggregateScore != b.AggregateScore {
			return a.AggregateScore > b.AggregateScore
		}
		return a.TotalCost < b.TotalCost
	})

	ranks := make(map[int]int, len(sets))
	sorted := make([]models.OutfitSet, len(sets))
	for rank, seq := range order {
		ranks[seq] = rank + 1
		sorted[rank] = sets[seq]
		sorted[rank].Rank = rank + 1
	}
	copy(sets, sorted)
	return ranks
}

// buildSet assembles one set from unused candidates. ok is false when no
// required category could be filled.
func (a *assembler) buildSet() (models.OutfitSet, bool) {
	items := map[models.Category]models.ScoredProduct{}
	taken := map[string]bool{}
	var missing []models.Category
	var total, carry float64

	for i, cat := range a.required {
		cands := a.available(cat, taken)
		if len(cands) == 0 {
			missing = append(missing, cat)
			continue
		}

		var reserve float64
		for _, later := range a.required[i+1:] {
			if p, ok := a.cheapest(later, taken); ok {
				reserve += p.Price
			}
		}
		capacity := a.max - total - reserve
		soft := a.shares[cat]*a.max + carry

		pick, ok := firstWhere(cands, func(p models.ScoredProduct) bool {
			return p.Price <= capacity+epsilon && p.Price <= soft+epsilon
		})
		if !ok {
			pick, ok = firstWhere(cands, func(p models.ScoredProduct) bool {
				return p.Price <= capacity+epsilon
			})
		}
		if !ok {
			pick, _ = a.cheapest(cat, taken)
		}

		carry = math.Max(0, soft-pick.Price)
		items[cat] = pick
		taken[pick.ID] = true
		total += pick.Price
	}

	if len(items) == 0 {
		return models.OutfitSet{}, false
	}

	set := models.OutfitSet{Missing: sortCategories(missing)}

	if total > a.max+epsilon {
		items, total = a.minimal(items)
		if total > a.max+epsilon {
			set.BudgetExceeded = true
			set.BudgetNote = models.BudgetNoteAboveMax
			return finish(set, items), true
		}
		taken = map[string]bool{}
		for _, p := range items {
			taken[p.ID] = true
		}
		// the greedy picks were replaced, so their unspent share is gone too
		carry = 0
	}

	total = a.fillOptional(items, taken, total, carry)

	if total < a.min-epsilon {
		total = a.upgrade(items, taken, total)
	}
	if total < a.min-epsilon {
		set.BudgetExceeded = true
		set.BudgetNote = models.BudgetNoteBelowMin
	}
	return finish(set, items), true
}

// fillOptional adds each optional category whose candidate still fits under
// the budget maximum and returns the new total.
func (a *assembler) fillOptional(items map[models.Category]models.ScoredProduct, taken map[string]bool, total, carry float64) float64 {
	for _, cat := range a.optional {
		cands := a.available(cat, taken)
		capacity := a.max - total
		soft := a.shares[cat]*a.max + carry

		pick, ok := firstWhere(cands, func(p models.ScoredProduct) bool {
			return p.Price <= capacity+epsilon && p.Price <= soft+epsilon
		})
		if !ok {
			pick, ok = firstWhere(cands, func(p models.ScoredProduct) bool {
				return p.Price <= capacity+epsilon
			})
		}
		if !ok {
			continue
		}
		carry = math.Max(0, soft-pick.Price)
		items[cat] = pick
		taken[pick.ID] = true
		total += pick.Price
	}
	return total
}

// minimal replaces every covered category with its cheapest unused candidate.
func (a *assembler) minimal(items map[models.Category]models.ScoredProduct) (map[models.Category]models.ScoredProduct, float64) {
	out := make(map[models.Category]models.ScoredProduct, len(items))
	var total float64
	for _, cat := range categoriesOf(items) {
		p, _ := a.cheapest(cat, nil)
		out[cat] = p
		total += p.Price
	}
	return out, total
}

// upgrade swaps in pricier unused candidates, best score first, until the set
// reaches the budget minimum or no swap fits under the maximum.
func (a *assembler) upgrade(items map[models.Category]models.ScoredProduct, taken map[string]bool, total float64) float64 {
	order := byShare(categoriesOf(items), a.shares)
	for changed := true; changed && total < a.min-epsilon; {
		changed = false
		for _, cat := range order {
			cur := items[cat]
			next, ok := firstWhere(a.available(cat, taken), func(p models.ScoredProduct) bool {
				return p.Price > cur.Price+epsilon && total-cur.Price+p.Price <= a.max+epsilon
			})
			if !ok {
				continue
			}
			delete(taken, cur.ID)
			taken[next.ID] = true
			items[cat] = next
			total += next.Price - cur.Price
			changed = true
			if total >= a.min-epsilon {
				break
			}
		}
	}
	return total
}

func categoriesOf(items map[models.Category]models.ScoredProduct) []models.Category {
	out := make([]models.Category, 0, len(items))
	for cat := range items {
		out = append(out, cat)
	}
	return sortCategories(out)
}

func sortCategories(cats []models.Category) []models.Category {
	sort.Slice(cats, func(i, j int) bool {
		return displayIndex(cats[i]) < displayIndex(cats[j])
	})
	return cats
}

// finish totals the set in display order so equal sets always sum the same way.
// AggregateScore is the sum of the item scores.
func finish(set models.OutfitSet, items map[models.Category]models.ScoredProduct) models.OutfitSet {
	set.Items = items
	var cost, score float64
	for _, cat := range categoriesOf(items) {
		cost += items[cat].Price
		score += items[cat].Score
	}
	set.TotalCost = cost
	set.AggregateScore = score
	return set
}
