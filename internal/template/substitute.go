package template

import (
	"sort"
	"strings"
)

// PlaceholderMap maps placeholder tokens (e.g. "#obsidianNoteName") to
// their replacement strings. Values must not themselves contain tokens
// of the vocabulary: substitution is a single pass, never recursive.
type PlaceholderMap map[string]string

// Tokens of the fixed vocabulary the template formats support
const (
	TokenObsidianNoteName = "#obsidianNoteName"
	TokenPerspectiveName  = "#ofPerspectiveName"
	TokenColleagueName    = "#colleagueName"
)

// Substitute returns a new tree of identical shape in which every
// string scalar has placeholder tokens replaced. A string that is an
// exact token match takes the mapped value; otherwise each token
// occurrence is replaced in place, so multiple tokens may coexist in
// one field. Unknown tokens and non-string scalars pass through
// untouched. The input tree is never mutated.
func Substitute(n *Node, vars PlaceholderMap) *Node {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case KindString:
		return String(replaceTokens(n.Str, vars))
	case KindArray:
		arr := make([]*Node, len(n.Array))
		for i, item := range n.Array {
			arr[i] = Substitute(item, vars)
		}
		return &Node{Kind: KindArray, Array: arr}
	case KindDict:
		dict := make([]Member, len(n.Dict))
		for i, m := range n.Dict {
			dict[i] = Member{Key: m.Key, Value: Substitute(m.Value, vars)}
		}
		return &Node{Kind: KindDict, Dict: dict}
	default:
		return n.Clone()
	}
}

func replaceTokens(s string, vars PlaceholderMap) string {
	// Exact match first, so a field holding nothing but a token maps
	// cleanly even if the value happens to contain token-like text
	if val, ok := vars[s]; ok {
		return val
	}

	if !strings.ContainsRune(s, '#') {
		return s
	}

	tokens := make([]string, 0, len(vars))
	for tok := range vars {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	for _, tok := range tokens {
		s = strings.ReplaceAll(s, tok, vars[tok])
	}
	return s
}
