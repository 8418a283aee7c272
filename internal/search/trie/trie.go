// Package trie implements the prefix index backing autocomplete. Nodes are
// keyed by rune so indexed terms are not restricted to ASCII.
package trie

import (
	"sort"
	"strings"
)

type node struct {
	children  map[rune]*node
	endOfWord bool
	wordCount int
	// Literal terms ending at this node, deduplicated on insert.
	words []string
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// Trie stores the vocabulary of indexed terms and answers prefix queries.
type Trie struct {
	root       *node
	totalWords int
}

// New creates an empty Trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Insert adds a word to the trie. Words are case-folded; inserting the same
// word twice increments its occurrence counter without duplicating the
// stored literal. Empty input is a no-op.
func (t *Trie) Insert(word string) {
	if word == "" {
		return
	}
	word = strings.ToLower(word)
	n := t.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	if !n.endOfWord {
		n.endOfWord = true
		t.totalWords++
	}
	n.wordCount++
	for _, w := range n.words {
		if w == word {
			return
		}
	}
	n.words = append(n.words, word)
}

// Contains reports whether word was previously inserted.
func (t *Trie) Contains(word string) bool {
	if word == "" {
		return false
	}
	n := t.walk(strings.ToLower(word))
	return n != nil && n.endOfWord
}

// Autocomplete returns up to limit words starting with prefix, in
// lexicographic order. An empty prefix or an unknown prefix yields no
// results.
func (t *Trie) Autocomplete(prefix string, limit int) []string {
	if prefix == "" || limit <= 0 {
		return []string{}
	}
	prefix = strings.ToLower(prefix)
	n := t.walk(prefix)
	if n == nil {
		return []string{}
	}
	results := make([]string, 0, limit)
	collect(n, limit, &results)
	return results
}

// Len returns the number of distinct words stored.
func (t *Trie) Len() int {
	return t.totalWords
}

// Words returns every stored word in lexicographic order.
func (t *Trie) Words() []string {
	results := make([]string, 0, t.totalWords)
	collect(t.root, t.totalWords, &results)
	return results
}

func (t *Trie) walk(s string) *node {
	n := t.root
	for _, r := range s {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

// collect gathers terminal words depth-first, visiting children in sorted
// rune order so the first `limit` results are deterministic.
func collect(n *node, limit int, results *[]string) {
	if len(*results) >= limit {
		return
	}
	if n.endOfWord {
		for _, w := range n.words {
			*results = append(*results, w)
			if len(*results) >= limit {
				return
			}
		}
	}
	runes := make([]rune, 0, len(n.children))
	for r := range n.children {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	for _, r := range runes {
		if len(*results) >= limit {
			return
		}
		collect(n.children[r], limit, results)
	}
}
