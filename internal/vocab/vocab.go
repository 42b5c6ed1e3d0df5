// Package vocab contains the closed sets of lexical alternatives used by the
// Sheet grammar. Every list is ordered so that when one entry is a prefix of
// another, the longer entry comes first; regex alternation takes the first
// alternative that matches, so the shorter one would otherwise shadow it.
package vocab

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// AliasPattern matches a quoted note alias such as "my note". It is a regex
// rather than a literal and so is kept out of the sorted lists.
const AliasPattern = `".*?"`

var noteNames = []string{
	"c", "cis", "des", "d", "dis", "es", "e", "fes", "eis", "f", "fis", "ges",
	"g", "gis", "as", "a", "ais", "bes", "b", "ces", "bis",
}

var degreeNames = []string{
	"I", "II", "III", "IV", "V", "VI", "VII",
	"Ib", "IIb", "IIIb", "IVb", "Vb", "VIb", "VIIb",
	"I#", "II#", "III#", "IV#", "V#", "VI#", "VII#",
}

var durationBases = []string{"1", "2", "4", "8", "16", "32", "64", "128"}

var durationSuffixes = []string{"", ".", "t", "n5", "n7", "n9"}

// ExpressionSymbols are the dynamics markers that can follow a \ or a !.
var ExpressionSymbols = []string{
	"p", "pp", "ppp", "pppp", "ppppp",
	"f", "ff", "fff", "ffff", "fffff",
}

// reverseSorted returns a sorted-then-reversed copy of the given strings.
// Reverse byte order puts every string ahead of its proper prefixes.
func reverseSorted(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Notes returns the literal note and scale-degree spellings in match order.
// The quoted alias is not included; see AliasPattern.
func Notes() []string {
	all := make([]string, 0, len(noteNames)+len(degreeNames))
	all = append(all, noteNames...)
	all = append(all, degreeNames...)
	return reverseSorted(all)
}

// Octaves returns the octave markers, longest run first for each mark.
func Octaves() []string {
	var out []string
	for _, mark := range []string{",", "'"} {
		for n := 5; n > 0; n-- {
			out = append(out, strings.Repeat(mark, n))
		}
	}
	return out
}

// Durations returns all 48 note-length spellings in match order.
func Durations() []string {
	all := make([]string, 0, len(durationBases)*len(durationSuffixes))
	for _, suffix := range durationSuffixes {
		for _, base := range durationBases {
			all = append(all, base+suffix)
		}
	}
	return reverseSorted(all)
}

// Expressions returns the sustained dynamics markings (\p, \ff, ...).
func Expressions() []string {
	return prefixAll(`\`, reverseSorted(ExpressionSymbols))
}

// ExpressionsPlayedOnce returns the one-shot dynamics markings (!p, !ff, ...).
func ExpressionsPlayedOnce() []string {
	return prefixAll("!", reverseSorted(ExpressionSymbols))
}

func prefixAll(prefix string, items []string) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = prefix + items[i]
	}
	return out
}

// Alternation quotes every literal and joins them with | in the given order.
func Alternation(literals []string) string {
	quoted := make([]string, len(literals))
	for i := range literals {
		quoted[i] = regexp.QuoteMeta(literals[i])
	}
	return strings.Join(quoted, "|")
}

// CheckPrefixOrder returns an error naming the first pair of entries in which
// a string appears before another string that it is a proper prefix of.
func CheckPrefixOrder(list []string) error {
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			if len(list[i]) < len(list[j]) && strings.HasPrefix(list[j], list[i]) {
				return fmt.Errorf("%q at position %d shadows %q at position %d", list[i], i, list[j], j)
			}
		}
	}
	return nil
}

// Fragments holds the regex alternation fragments consumed by the grammar.
type Fragments struct {
	Notes                 string
	Octaves               string
	Durations             string
	Expressions           string
	ExpressionsPlayedOnce string
}

// Build assembles the alternation fragments. It fails only if one of the
// vocabulary lists is not in prefix-safe order.
func Build() (Fragments, error) {
	lists := []struct {
		name  string
		items []string
	}{
		{"notes", Notes()},
		{"octaves", Octaves()},
		{"durations", Durations()},
		{"expressions", Expressions()},
		{"expressionPlayedOnce", ExpressionsPlayedOnce()},
	}
	for _, l := range lists {
		if err := CheckPrefixOrder(l.items); err != nil {
			return Fragments{}, fmt.Errorf("%s: %w", l.name, err)
		}
	}

	return Fragments{
		Notes:                 Alternation(lists[0].items) + "|" + AliasPattern,
		Octaves:               Alternation(lists[1].items),
		Durations:             Alternation(lists[2].items),
		Expressions:           Alternation(lists[3].items),
		ExpressionsPlayedOnce: Alternation(lists[4].items),
	}, nil
}
