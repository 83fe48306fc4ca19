package table

import "strings"

// Resolve returns the index of the first column, in declared order, whose
// lowercased name contains every keyword as a substring. Returns -1 when no
// column matches.
//
// This is the single column-resolution convention used everywhere the engine
// needs "the email column", "the amount column" and so on. Ambiguity between
// multiple matching columns is resolved by declared column order; callers
// must not re-implement the lookup with different tie-breaking.
func Resolve(columns []string, keywords ...string) int {
	for i, c := range columns {
		if containsAll(strings.ToLower(c), keywords) {
			return i
		}
	}
	return -1
}

// ResolveAny returns the index of the first column, in declared order, whose
// lowercased name satisfies at least one of the keyword sets. Returns -1 when
// no column matches.
func ResolveAny(columns []string, keywordSets ...[]string) int {
	for i, c := range columns {
		lower := strings.ToLower(c)
		for _, set := range keywordSets {
			if containsAll(lower, set) {
				return i
			}
		}
	}
	return -1
}

// ResolveExcluding behaves like Resolve but skips columns whose lowercased
// name contains any of the excluded substrings. Used for "the amount column
// that is not a processing-fee column".
func ResolveExcluding(columns []string, keywords []string, excluded []string) int {
	for i, c := range columns {
		lower := strings.ToLower(c)
		if !containsAll(lower, keywords) {
			continue
		}
		if containsAny(lower, excluded) {
			continue
		}
		return i
	}
	return -1
}

func containsAll(s string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(s, k) {
			return false
		}
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
