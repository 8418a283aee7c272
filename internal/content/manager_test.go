package content

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/docstash/docstash/internal/search"
	apperrors "github.com/docstash/docstash/pkg/errors"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	engine, err := search.NewEngine(100, 100)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	m := NewManager(engine, nil)
	seq := 0
	m.newID = func() string {
		seq++
		return fmt.Sprintf("doc-%d", seq)
	}
	return m
}

func TestAddAndGetDocument(t *testing.T) {
	m := newTestManager(t)
	doc := m.AddDocument("apple pie recipe", "flour butter apples", []string{"dessert"}, "/recipes")

	if doc.ID != "doc-1" {
		t.Errorf("ID = %q", doc.ID)
	}
	if doc.FolderPath != "/recipes" {
		t.Errorf("FolderPath = %q, want /recipes", doc.FolderPath)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	got, err := m.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Title != "apple pie recipe" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.LastAccessed.Before(doc.CreatedAt) {
		t.Error("LastAccessed not refreshed on read")
	}

	if _, err := m.GetDocument("missing"); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("GetDocument(missing) error = %v, want ErrDocumentNotFound", err)
	}
}

func TestAddDocumentDefaultsToRoot(t *testing.T) {
	m := newTestManager(t)
	doc := m.AddDocument("note", "text", nil, "")
	if doc.FolderPath != "/" {
		t.Errorf("FolderPath = %q, want /", doc.FolderPath)
	}
	if ids := m.DocumentsInFolder("/"); !reflect.DeepEqual(ids, []string{"doc-1"}) {
		t.Errorf("DocumentsInFolder(/) = %v", ids)
	}
}

func TestUpdateDocument(t *testing.T) {
	m := newTestManager(t)
	m.AddDocument("old title", "old body", []string{"t1"}, "/")

	newBody := "fresh quokka content"
	doc, err := m.UpdateDocument("doc-1", search.Patch{Body: &newBody})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if doc.Body != newBody || doc.Title != "old title" {
		t.Errorf("merged record = %+v", doc)
	}

	results, _, err := m.Search(context.Background(), "quokka", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "doc-1" {
		t.Errorf("search(quokka) = %v", results)
	}

	if _, err := m.UpdateDocument("missing", search.Patch{}); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("error = %v, want ErrDocumentNotFound", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	m := newTestManager(t)
	m.AddDocument("apple", "", nil, "/fruit")

	if err := m.DeleteDocument("doc-1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := m.GetDocument("doc-1"); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Error("document still retrievable after delete")
	}
	if ids := m.DocumentsInFolder("/fruit"); len(ids) != 0 {
		t.Errorf("folder still lists %v", ids)
	}
	results, _, _ := m.Search(context.Background(), "apple", 10)
	if len(results) != 0 {
		t.Errorf("deleted document still searchable: %v", results)
	}

	if err := m.DeleteDocument("doc-1"); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("second delete error = %v, want ErrDocumentNotFound", err)
	}
}

func TestMoveDocument(t *testing.T) {
	m := newTestManager(t)
	m.AddDocument("note", "", nil, "/a")

	if err := m.MoveDocument("doc-1", "/b/c"); err != nil {
		t.Fatalf("MoveDocument: %v", err)
	}
	if ids := m.DocumentsInFolder("/a"); len(ids) != 0 {
		t.Errorf("old folder still lists %v", ids)
	}
	if ids := m.DocumentsInFolder("/b/c"); !reflect.DeepEqual(ids, []string{"doc-1"}) {
		t.Errorf("new folder lists %v", ids)
	}
	doc, _ := m.GetDocument("doc-1")
	if doc.FolderPath != "/b/c" {
		t.Errorf("FolderPath = %q, want /b/c", doc.FolderPath)
	}

	if err := m.MoveDocument("missing", "/b"); !errors.Is(err, apperrors.ErrDocumentNotFound) {
		t.Errorf("error = %v, want ErrDocumentNotFound", err)
	}
}

func TestListDocuments(t *testing.T) {
	m := newTestManager(t)
	m.AddDocument("one", "", nil, "/a")
	m.AddDocument("two", "", nil, "/b")
	m.AddDocument("three", "", nil, "/a")

	all := m.ListDocuments("")
	if len(all) != 3 {
		t.Errorf("ListDocuments() = %d docs, want 3", len(all))
	}
	inA := m.ListDocuments("/a")
	if len(inA) != 2 {
		t.Fatalf("ListDocuments(/a) = %d docs, want 2", len(inA))
	}
	for _, doc := range inA {
		if doc.FolderPath != "/a" {
			t.Errorf("doc %s has folder %q", doc.ID, doc.FolderPath)
		}
	}
}

func TestDeleteFolderRelocatesDocuments(t *testing.T) {
	m := newTestManager(t)
	m.AddDocument("keep me", "", nil, "/projects/go")

	if err := m.DeleteFolder("/projects/go"); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}
	// Direct members move to the deleted folder's parent.
	if ids := m.DocumentsInFolder("/projects"); !reflect.DeepEqual(ids, []string{"doc-1"}) {
		t.Errorf("DocumentsInFolder(/projects) = %v, want [doc-1]", ids)
	}
	doc, err := m.GetDocument("doc-1")
	if err != nil {
		t.Fatal("document destroyed by folder delete")
	}
	if doc.FolderPath != "/projects" {
		t.Errorf("FolderPath = %q, want /projects", doc.FolderPath)
	}
}

func TestDeleteFolderErrors(t *testing.T) {
	m := newTestManager(t)
	if err := m.DeleteFolder("/missing"); !errors.Is(err, apperrors.ErrFolderNotFound) {
		t.Errorf("error = %v, want ErrFolderNotFound", err)
	}
	if err := m.DeleteFolder("/"); !errors.Is(err, apperrors.ErrRootImmutable) {
		t.Errorf("error = %v, want ErrRootImmutable", err)
	}
}

func TestListFolders(t *testing.T) {
	m := newTestManager(t)
	m.CreateFolder("/a/b")
	folders := m.ListFolders()
	if len(folders) != 3 {
		t.Errorf("got %d folders, want 3", len(folders))
	}
}

func TestSearchPassthrough(t *testing.T) {
	m := newTestManager(t)
	m.AddDocument("apple pie recipe", "", []string{"dessert"}, "/")
	m.AddDocument("apple cider recipe", "", []string{"drink"}, "/")

	results, cacheHit, err := m.Search(context.Background(), "apple recipe", 10)
	if err != nil {
		t.Fatal(err)
	}
	if cacheHit {
		t.Error("first search must miss")
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	_, cacheHit, err = m.Search(context.Background(), "apple recipe", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !cacheHit {
		t.Error("second identical search must hit")
	}

	snap := m.Stats(10)
	if snap.TotalSearches != 2 || snap.CacheHits != 1 || snap.CacheMisses != 1 {
		t.Errorf("stats = %+v", snap)
	}
	if len(snap.TopQueries) != 1 || snap.TopQueries[0].Query != "apple recipe" {
		t.Errorf("top queries = %v", snap.TopQueries)
	}
}

func TestSearchCancelledContext(t *testing.T) {
	m := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := m.Search(ctx, "apple", 10); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestAutocompletePassthrough(t *testing.T) {
	m := newTestManager(t)
	m.AddDocument("apple apricot", "", nil, "/")
	got := m.Autocomplete("ap", 10)
	if !reflect.DeepEqual(got, []string{"apple", "apricot"}) {
		t.Errorf("Autocomplete(ap) = %v", got)
	}
}

func TestClearSearchCache(t *testing.T) {
	m := newTestManager(t)
	m.AddDocument("apple", "", nil, "/")
	ctx := context.Background()

	m.Search(ctx, "apple", 10)
	m.ClearSearchCache()
	_, cacheHit, _ := m.Search(ctx, "apple", 10)
	if cacheHit {
		t.Error("search after cache clear must miss")
	}
}

func TestDocumentCounts(t *testing.T) {
	m := newTestManager(t)
	m.AddDocument("a", "", nil, "/")
	m.AddDocument("b", "", nil, "/")
	if m.DocumentCount() != 2 || m.IndexedDocumentCount() != 2 {
		t.Errorf("counts = %d store / %d indexed, want 2/2",
			m.DocumentCount(), m.IndexedDocumentCount())
	}
	m.DeleteDocument("doc-1")
	if m.DocumentCount() != 1 || m.IndexedDocumentCount() != 1 {
		t.Errorf("counts after delete = %d/%d, want 1/1",
			m.DocumentCount(), m.IndexedDocumentCount())
	}
}
