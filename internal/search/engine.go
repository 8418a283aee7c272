// Package search implements the in-memory indexing and ranking engine: an
// inverted keyword index with per-document term frequencies, an access
// history feeding recency/usage scoring, a trie for prefix autocomplete,
// and an LRU cache memoizing ranked results.
package search

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/docstash/docstash/internal/search/lru"
	"github.com/docstash/docstash/internal/search/tokenizer"
	"github.com/docstash/docstash/internal/search/trie"
)

const defaultHistoryLimit = 100

// Document is the indexed metadata stored per document ID.
type Document struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// Result is a ranked search hit: a copy of the stored metadata plus its
// relevance score.
type Result struct {
	Document
	Score float64 `json:"relevance_score"`
}

// Patch describes a partial document update. Nil fields are left unchanged.
type Patch struct {
	Title *string
	Body  *string
	Tags  []string
}

// Engine is the search core. All exported methods are safe for concurrent
// use; a single lock guards the inverted index, frequency tables, access
// history, and result cache together since updates must observe a consistent
// joint view.
type Engine struct {
	mu sync.RWMutex

	// term -> set of document IDs whose frequency table contains the term.
	postings map[string]map[string]struct{}
	docs     map[string]Document
	// document ID -> term -> occurrence count across title+body+tags.
	termFreqs map[string]map[string]int
	// document ID -> total token count, kept in step with termFreqs.
	docLengths map[string]int
	// document ID -> access timestamps, oldest first, capped at historyLimit.
	history      map[string][]time.Time
	historyLimit int

	trie  *trie.Trie
	cache *lru.Cache[[]Result]

	now    func() time.Time
	logger *slog.Logger
}

// NewEngine creates an Engine whose result cache holds at most cacheCapacity
// entries. A non-positive capacity is a configuration error. historyLimit
// bounds the per-document access history; zero or negative selects the
// default of 100 entries.
func NewEngine(cacheCapacity, historyLimit int) (*Engine, error) {
	cache, err := lru.New[[]Result](cacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Engine{
		postings:     make(map[string]map[string]struct{}),
		docs:         make(map[string]Document),
		termFreqs:    make(map[string]map[string]int),
		docLengths:   make(map[string]int),
		history:      make(map[string][]time.Time),
		historyLimit: historyLimit,
		trie:         trie.New(),
		cache:        cache,
		now:          time.Now,
		logger:       slog.Default().With("component", "search-engine"),
	}, nil
}

// Index tokenizes title, body, and tags and adds the document to the
// inverted index, registering each distinct token for autocomplete. Indexing
// an ID that already exists replaces all prior index state for that ID.
func (e *Engine) Index(id, title, body string, tags []string) {
	fullText := title + " " + body + " " + strings.Join(tags, " ")
	freqs, total := tokenizer.Frequencies(fullText)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.docs[id]; exists {
		e.removeLocked(id)
	}

	for term := range freqs {
		set, ok := e.postings[term]
		if !ok {
			set = make(map[string]struct{})
			e.postings[term] = set
		}
		set[id] = struct{}{}
		e.trie.Insert(term)
	}
	e.termFreqs[id] = freqs
	e.docLengths[id] = total
	e.docs[id] = Document{
		ID:    id,
		Title: title,
		Body:  body,
		Tags:  cloneTags(tags),
	}
	e.logger.Debug("document indexed", "doc_id", id, "terms", len(freqs), "tokens", total)
}

// Remove deletes the document from the index, dropping posting-set entries
// that become empty. Unknown IDs are a no-op. Tokens already registered for
// autocomplete are kept even when no live document contains them.
func (e *Engine) Remove(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(id)
}

func (e *Engine) removeLocked(id string) {
	if _, exists := e.docs[id]; !exists {
		return
	}
	for term := range e.termFreqs[id] {
		if set, ok := e.postings[term]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(e.postings, term)
			}
		}
	}
	delete(e.termFreqs, id)
	delete(e.docLengths, id)
	delete(e.docs, id)
	delete(e.history, id)
}

// Update merges the patch over the stored metadata and reindexes the
// document from scratch. It returns false if the ID is not indexed.
func (e *Engine) Update(id string, patch Patch) bool {
	e.mu.Lock()
	current, exists := e.docs[id]
	e.mu.Unlock()
	if !exists {
		return false
	}

	title := current.Title
	body := current.Body
	tags := current.Tags
	if patch.Title != nil {
		title = *patch.Title
	}
	if patch.Body != nil {
		body = *patch.Body
	}
	if patch.Tags != nil {
		tags = patch.Tags
	}
	e.Index(id, title, body, tags)
	return true
}

// RecordAccess appends the current time to the document's access history,
// trimming it to the most recent historyLimit entries. It never fails, even
// for unknown IDs.
func (e *Engine) RecordAccess(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recordAccessLocked(id, e.now())
}

func (e *Engine) recordAccessLocked(id string, at time.Time) {
	entries := append(e.history[id], at)
	if len(entries) > e.historyLimit {
		entries = entries[len(entries)-e.historyLimit:]
	}
	e.history[id] = entries
}

// Search returns at most topK documents ranked by relevance, highest first.
// The boolean reports whether the result came from the cache. Candidate
// selection requires every query token (AND); when no document contains all
// tokens it falls back to any token (OR). Ties are broken by ascending
// document ID.
func (e *Engine) Search(query string, topK int) ([]Result, bool) {
	if query == "" || topK <= 0 {
		return []Result{}, false
	}
	key := cacheKey(query, topK)

	e.mu.Lock()
	defer e.mu.Unlock()

	if cached, ok := e.cache.Get(key); ok {
		return cached, true
	}

	terms := tokenizer.Tokenize(query)
	if len(terms) == 0 {
		return []Result{}, false
	}

	candidates := e.intersect(terms)
	if len(candidates) == 0 {
		candidates = e.union(terms)
	}

	now := e.now()
	results := make([]Result, 0, len(candidates))
	for id := range candidates {
		doc, ok := e.docs[id]
		if !ok {
			continue
		}
		// Score first: a search hit counts as an access, but recency and
		// usage reflect the history before this query touched the document.
		score := e.relevance(id, terms, now)
		e.recordAccessLocked(id, now)
		results = append(results, Result{
			Document: Document{
				ID:    doc.ID,
				Title: doc.Title,
				Body:  doc.Body,
				Tags:  cloneTags(doc.Tags),
			},
			Score: score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > topK {
		results = results[:topK]
	}

	e.cache.Put(key, results)
	return results, false
}

// Autocomplete returns up to limit indexed terms starting with prefix, in
// lexicographic order. An empty prefix yields no results.
func (e *Engine) Autocomplete(prefix string, limit int) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.trie.Autocomplete(prefix, limit)
}

// ClearCache drops all cached search results. The inverted index and the
// prefix index are untouched.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.Clear()
}

// DocCount returns the number of indexed documents.
func (e *Engine) DocCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs)
}

// TermCount returns the number of distinct terms with live postings.
func (e *Engine) TermCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.postings)
}

// intersect returns the documents containing every term.
func (e *Engine) intersect(terms []string) map[string]struct{} {
	var candidates map[string]struct{}
	for _, term := range terms {
		set := e.postings[term]
		if candidates == nil {
			candidates = make(map[string]struct{}, len(set))
			for id := range set {
				candidates[id] = struct{}{}
			}
			continue
		}
		for id := range candidates {
			if _, ok := set[id]; !ok {
				delete(candidates, id)
			}
		}
		if len(candidates) == 0 {
			return candidates
		}
	}
	return candidates
}

// union returns the documents containing at least one term.
func (e *Engine) union(terms []string) map[string]struct{} {
	candidates := make(map[string]struct{})
	for _, term := range terms {
		for id := range e.postings[term] {
			candidates[id] = struct{}{}
		}
	}
	return candidates
}

func cacheKey(query string, topK int) string {
	return fmt.Sprintf("search:%s:%d", query, topK)
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
