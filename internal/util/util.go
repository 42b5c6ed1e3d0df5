// Package util holds small helpers shared by the other packages.
package util

import (
	"sort"
	"strings"
)

// MakeTextList gives a nice list of items for a message, such as "a, b, and
// c". If quoted is set, each item is put in double quotes.
func MakeTextList(items []string, quoted bool) string {
	if len(items) < 1 {
		return ""
	}

	listed := make([]string, len(items))
	for i := range items {
		if quoted {
			listed[i] = `"` + items[i] + `"`
		} else {
			listed[i] = items[i]
		}
	}

	switch len(listed) {
	case 1:
		return listed[0]
	case 2:
		return listed[0] + " and " + listed[1]
	default:
		// if its more than two, use an oxford comma
		listed[len(listed)-1] = "and " + listed[len(listed)-1]
		return strings.Join(listed, ", ")
	}
}

// OrderedKeys returns the keys of m, ordered a particular way. The order is
// guaranteed to be the same on every run.
//
// As of this writing, the order is alphabetical, but this function does not
// guarantee this will always be the case.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
