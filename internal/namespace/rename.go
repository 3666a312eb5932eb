package namespace

import "strings"

// renamePair links a removed symbol with the added symbol it was likely
// renamed to, plus the confidence of the match.
type renamePair struct {
	before     Symbol
	after      Symbol
	confidence float64
}

// Rename confidence levels. There is deliberately nothing below these
// two rules: no edit distance, no substring matching. Bounding false
// positives matters more than catching exotic renames.
const (
	confidenceCaseOnly  = 1.0 // identical after lowercasing
	confidenceSeparator = 0.8 // identical after stripping separators and lowercasing
)

// matchRenames pairs removed symbols with added symbols of the same
// kind. Matching is greedy, highest confidence first, each candidate
// usable in at most one pair. Ties prefer a partner sharing scope and
// file, then the one appearing earliest in extraction order, so output
// is reproducible.
func matchRenames(removed, added []Symbol) []renamePair {
	var pairs []renamePair
	usedRemoved := make([]bool, len(removed))
	usedAdded := make([]bool, len(added))

	match := func(rule func(a, b Symbol) bool, confidence float64) {
		for i, r := range removed {
			if usedRemoved[i] {
				continue
			}
			best := -1
			bestColoc := false
			for j, a := range added {
				if usedAdded[j] || !rule(r, a) {
					continue
				}
				coloc := a.Scope == r.Scope && a.File == r.File
				switch {
				case best < 0:
					best, bestColoc = j, coloc
				case coloc && !bestColoc:
					best, bestColoc = j, coloc
				case coloc == bestColoc && added[j].seq < added[best].seq:
					best = j
				}
			}
			if best >= 0 {
				usedRemoved[i] = true
				usedAdded[best] = true
				pairs = append(pairs, renamePair{before: r, after: added[best], confidence: confidence})
			}
		}
	}

	match(caseOnlyRename, confidenceCaseOnly)
	match(separatorRename, confidenceSeparator)
	return pairs
}

// caseOnlyRename reports names identical after lowercasing.
func caseOnlyRename(a, b Symbol) bool {
	return foldCase(a.Name) == foldCase(b.Name)
}

// separatorRename reports names identical after stripping separators
// and lowercasing, excluding pairs already covered by the case-only
// rule so a match is never counted twice.
func separatorRename(a, b Symbol) bool {
	return foldSeparators(a.Name) == foldSeparators(b.Name) && !caseOnlyRename(a, b)
}

func foldCase(name string) string {
	return strings.ToLower(name)
}

// foldSeparators lowers a name and drops underscores and hyphens,
// catching snake_case / camelCase / kebab-case drift.
func foldSeparators(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
