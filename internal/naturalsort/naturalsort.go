// Package naturalsort provides "natural" ordering of strings, the kind a
// human expects: embedded runs of digits compare by numeric value instead of
// lexically, so "state2" sorts before "state10".
//
// The PRINS model relies on this ordering throughout: renaming states,
// shortening DFA state names, and building the canonical comma-joined name
// of a merged state set all require the same natural ordering the original
// Python implementation gets for free from the natsort package. No
// equivalent library turned up anywhere in the retrieved example pack, so
// this is a small hand-rolled comparator; see DESIGN.md.
package naturalsort

import (
	"sort"
	"unicode"
)

// Less reports whether a should sort before b under natural ordering.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Compare returns -1, 0, or 1 analogous to strings.Compare, but treats
// maximal runs of decimal digits (unicode.IsDigit) as numbers rather than
// comparing rune-by-rune.
func Compare(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0

	for i < len(ra) && j < len(rb) {
		ca, cb := ra[i], rb[j]

		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			starti, startj := i, j
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}

			numA := stripLeadingZeros(ra[starti:i])
			numB := stripLeadingZeros(rb[startj:j])

			if len(numA) != len(numB) {
				if len(numA) < len(numB) {
					return -1
				}
				return 1
			}
			for k := range numA {
				if numA[k] != numB[k] {
					if numA[k] < numB[k] {
						return -1
					}
					return 1
				}
			}
			continue
		}

		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}

	switch {
	case len(ra)-i < len(rb)-j:
		return -1
	case len(ra)-i > len(rb)-j:
		return 1
	default:
		return 0
	}
}

func stripLeadingZeros(digits []rune) []rune {
	k := 0
	for k < len(digits)-1 && digits[k] == '0' {
		k++
	}
	return digits[k:]
}

// Strings returns a copy of ss sorted in natural order.
func Strings(ss []string) []string {
	out := make([]string, len(ss))
	copy(out, ss)
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}
