// Package content implements the document CRUD layer. It owns the canonical
// document records and the folder tree, and drives the search engine's
// index/update/remove lifecycle.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/docstash/docstash/internal/folder"
	"github.com/docstash/docstash/internal/search"
	"github.com/docstash/docstash/internal/stats"
	"github.com/docstash/docstash/pkg/errors"
	"github.com/docstash/docstash/pkg/metrics"
)

// Document is a canonical document record. Timestamps are owned here, not
// by the search engine.
type Document struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Tags         []string  `json:"tags"`
	FolderPath   string    `json:"folder_path"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
}

// Manager owns document records and folder membership, and delegates
// indexing and querying to the search engine.
type Manager struct {
	store   *store
	engine  *search.Engine
	folders *folder.Tree

	recorder *stats.Recorder
	metrics  *metrics.Metrics
	group    singleflight.Group
	newID    func() string
	logger   *slog.Logger
}

// NewManager creates a Manager around the given engine. metrics may be nil,
// in which case no collectors are updated.
func NewManager(engine *search.Engine, m *metrics.Metrics) *Manager {
	return &Manager{
		store:    newStore(),
		engine:   engine,
		folders:  folder.NewTree(),
		recorder: stats.NewRecorder(),
		metrics:  m,
		newID:    uuid.NewString,
		logger:   slog.Default().With("component", "content-manager"),
	}
}

// AddDocument creates a document, indexes it, and files it under folderPath
// (created on demand; "" means the root).
func (m *Manager) AddDocument(title, body string, tags []string, folderPath string) *Document {
	if tags == nil {
		tags = []string{}
	}
	folderPath = folder.Normalize(folderPath)
	now := time.Now().UTC()
	doc := &Document{
		ID:           m.newID(),
		Title:        title,
		Body:         body,
		Tags:         tags,
		FolderPath:   folderPath,
		CreatedAt:    now,
		LastAccessed: now,
	}
	m.store.put(doc)

	m.engine.Index(doc.ID, title, body, tags)
	m.folders.AddFolder(folderPath)
	m.folders.AddDocument(folderPath, doc.ID)

	if m.metrics != nil {
		m.metrics.DocsIndexedTotal.Inc()
		m.syncIndexGauges()
	}
	m.logger.Info("document added", "doc_id", doc.ID, "folder", folderPath)
	return doc.clone()
}

// GetDocument returns the document and records the read as an access for
// recency/usage ranking.
func (m *Manager) GetDocument(id string) (*Document, error) {
	doc, ok := m.store.get(id)
	if !ok {
		return nil, errors.ErrDocumentNotFound
	}
	now := time.Now().UTC()
	m.store.touch(id, now)
	m.engine.RecordAccess(id)
	out := doc.clone()
	out.LastAccessed = now
	return out, nil
}

// UpdateDocument merges the patch into the stored record and reindexes the
// document.
func (m *Manager) UpdateDocument(id string, patch search.Patch) (*Document, error) {
	doc, ok := m.store.get(id)
	if !ok {
		return nil, errors.ErrDocumentNotFound
	}
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.Body != nil {
		doc.Body = *patch.Body
	}
	if patch.Tags != nil {
		doc.Tags = patch.Tags
	}
	m.store.put(doc)

	if !m.engine.Update(id, patch) {
		// The engine and the store are updated in step; a miss here means
		// the document was never indexed, so index it now.
		m.engine.Index(id, doc.Title, doc.Body, doc.Tags)
	}
	m.logger.Info("document updated", "doc_id", id)
	return doc.clone(), nil
}

// DeleteDocument removes the document from its folder, the index, and the
// store.
func (m *Manager) DeleteDocument(id string) error {
	doc, ok := m.store.get(id)
	if !ok {
		return errors.ErrDocumentNotFound
	}
	m.folders.RemoveDocument(doc.FolderPath, id)
	m.engine.Remove(id)
	m.store.delete(id)

	if m.metrics != nil {
		m.metrics.DocsRemovedTotal.Inc()
		m.syncIndexGauges()
	}
	m.logger.Info("document deleted", "doc_id", id)
	return nil
}

// MoveDocument refiles the document under newFolderPath, creating the
// folder if needed.
func (m *Manager) MoveDocument(id, newFolderPath string) error {
	doc, ok := m.store.get(id)
	if !ok {
		return errors.ErrDocumentNotFound
	}
	newFolderPath = folder.Normalize(newFolderPath)
	m.folders.RemoveDocument(doc.FolderPath, id)
	m.folders.AddFolder(newFolderPath)
	m.folders.AddDocument(newFolderPath, id)
	doc.FolderPath = newFolderPath
	m.store.put(doc)

	if m.metrics != nil {
		m.metrics.FolderOpsTotal.WithLabelValues("move").Inc()
	}
	return nil
}

// ListDocuments returns all documents, or only the members of folderPath
// when it is non-empty. Output is sorted by creation time, oldest first.
func (m *Manager) ListDocuments(folderPath string) []*Document {
	var docs []*Document
	if folderPath == "" {
		docs = m.store.all()
	} else {
		for _, id := range m.folders.Documents(folderPath) {
			if doc, ok := m.store.get(id); ok {
				docs = append(docs, doc.clone())
			}
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}

// CreateFolder creates the folder (and any missing ancestors) at path.
func (m *Manager) CreateFolder(path string) string {
	node := m.folders.AddFolder(path)
	if m.metrics != nil {
		m.metrics.FolderOpsTotal.WithLabelValues("create").Inc()
	}
	return node.Path()
}

// DeleteFolder relocates the folder's direct member documents to its parent
// and then deletes the folder and all descendants. Documents filed in
// descendant folders are not relocated and become orphaned from folder
// listings, matching the folder tree's delete contract.
func (m *Manager) DeleteFolder(path string) error {
	node, ok := m.folders.GetFolder(path)
	if !ok {
		return errors.ErrFolderNotFound
	}
	if node.Parent() == nil {
		return errors.ErrRootImmutable
	}

	parentPath := node.Parent().Path()
	for _, id := range m.folders.Documents(path) {
		if err := m.MoveDocument(id, parentPath); err != nil {
			m.logger.Warn("relocating document failed", "doc_id", id, "error", err)
		}
	}
	if !m.folders.DeleteFolder(path) {
		return errors.ErrFolderNotFound
	}
	if m.metrics != nil {
		m.metrics.FolderOpsTotal.WithLabelValues("delete").Inc()
	}
	m.logger.Info("folder deleted", "path", folder.Normalize(path), "relocated_to", parentPath)
	return nil
}

// ListFolders returns a depth-first listing of every live folder.
func (m *Manager) ListFolders() []folder.Info {
	return m.folders.TraverseDFS()
}

// DocumentsInFolder returns the member document IDs of the folder at path.
func (m *Manager) DocumentsInFolder(path string) []string {
	return m.folders.Documents(path)
}

type searchOutcome struct {
	results  []search.Result
	cacheHit bool
}

// Search runs a ranked query through the engine. Concurrent identical
// queries are collapsed into a single execution. The boolean reports
// whether the engine answered from its result cache.
func (m *Manager) Search(ctx context.Context, query string, topK int) ([]search.Result, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	start := time.Now()
	key := searchKey(query, topK)
	v, err, _ := m.group.Do(key, func() (any, error) {
		results, cacheHit := m.engine.Search(query, topK)
		return searchOutcome{results: results, cacheHit: cacheHit}, nil
	})
	if err != nil {
		return nil, false, err
	}
	outcome := v.(searchOutcome)
	m.trackSearch(query, outcome, time.Since(start))
	return outcome.results, outcome.cacheHit, nil
}

// Autocomplete returns up to limit indexed terms starting with prefix.
func (m *Manager) Autocomplete(prefix string, limit int) []string {
	if m.metrics != nil {
		m.metrics.AutocompleteTotal.Inc()
	}
	return m.engine.Autocomplete(prefix, limit)
}

// ClearSearchCache drops all memoized search results.
func (m *Manager) ClearSearchCache() {
	m.engine.ClearCache()
	m.logger.Info("search cache cleared")
}

// Stats returns the aggregated search usage statistics.
func (m *Manager) Stats(topN int) stats.Snapshot {
	return m.recorder.Snapshot(topN)
}

// DocumentCount returns the number of stored documents.
func (m *Manager) DocumentCount() int {
	return m.store.len()
}

// IndexedDocumentCount returns the number of documents in the search index.
func (m *Manager) IndexedDocumentCount() int {
	return m.engine.DocCount()
}

func (m *Manager) trackSearch(query string, outcome searchOutcome, latency time.Duration) {
	m.recorder.RecordSearch(query, len(outcome.results), outcome.cacheHit, latency)
	if m.metrics == nil {
		return
	}
	resultType := "miss"
	cacheStatus := "miss"
	switch {
	case outcome.cacheHit:
		resultType = "hit"
		cacheStatus = "hit"
		m.metrics.CacheHitsTotal.Inc()
	case len(outcome.results) == 0:
		resultType = "zero_result"
		m.metrics.CacheMissesTotal.Inc()
	default:
		m.metrics.CacheMissesTotal.Inc()
	}
	m.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	m.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	m.metrics.SearchResultsCount.Observe(float64(len(outcome.results)))
}

func (m *Manager) syncIndexGauges() {
	m.metrics.IndexedDocuments.Set(float64(m.engine.DocCount()))
	m.metrics.IndexedTerms.Set(float64(m.engine.TermCount()))
}

func searchKey(query string, topK int) string {
	return fmt.Sprintf("%s:%d", query, topK)
}

func (d *Document) clone() *Document {
	out := *d
	out.Tags = make([]string, len(d.Tags))
	copy(out.Tags, d.Tags)
	return &out
}
