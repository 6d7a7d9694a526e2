package lineage

import (
	"strings"
	"unicode/utf8"
)

// labelSeparators are stripped from the end of a common prefix.
const labelSeparators = " ,.:;/"

// Label is the result of reducing the version labels of a group.
type Label struct {
	// Group is the common prefix with trailing separators removed.
	Group string `json:"group"`
	// Prefix is the raw common prefix. Prefix+Suffix[id] rebuilds each label.
	Prefix string `json:"-"`
	// Suffix maps member id to the part of its label after Prefix.
	Suffix map[string]string `json:"suffix,omitempty"`
}

// Reduce derives a group label and per-member suffixes from version labels.
//
// Identical or empty labels are valid input: the group label is the whole
// common string and every suffix is empty.
func Reduce(members []VersionedEntity) Label {
	labels := make([]string, len(members))
	for i, m := range members {
		labels[i] = m.VersionLabel
	}
	prefix := commonPrefix(labels)

	l := Label{
		Group:  strings.TrimRight(prefix, labelSeparators),
		Prefix: prefix,
		Suffix: make(map[string]string, len(members)),
	}
	for _, m := range members {
		l.Suffix[m.ID] = m.VersionLabel[len(prefix):]
	}
	return l
}

// commonPrefix returns the longest prefix shared by all strings, cut on a
// rune boundary.
func commonPrefix(ss []string) string {
	if len(ss) == 0 {
		return ""
	}
	prefix := ss[0]
	for _, s := range ss[1:] {
		n := 0
		for n < len(prefix) && n < len(s) && prefix[n] == s[n] {
			n++
		}
		for n > 0 && n < len(prefix) && !utf8.RuneStart(prefix[n]) {
			n--
		}
		prefix = prefix[:n]
		if prefix == "" {
			return ""
		}
	}
	return prefix
}
