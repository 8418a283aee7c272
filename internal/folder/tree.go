// Package folder implements the hierarchical namespace used to scope
// document listings. Folders form a tree addressed by normalized
// slash-separated paths; a path map gives O(1) lookup and is kept
// consistent with the live tree on every mutation.
package folder

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Node is a single folder. The parent pointer is a non-owning back-link used
// for path reconstruction and relocation on delete; ownership flows strictly
// parent to child through the children map.
type Node struct {
	name     string
	parent   *Node
	children map[string]*Node
	docs     map[string]struct{}
}

// Name returns the folder's own segment name. The root is named "/".
func (n *Node) Name() string {
	return n.name
}

// Path returns the folder's absolute normalized path.
func (n *Node) Path() string {
	if n.parent == nil {
		return "/"
	}
	segments := make([]string, 0, 4)
	for cur := n; cur.parent != nil; cur = cur.parent {
		segments = append(segments, cur.name)
	}
	var b strings.Builder
	for i := len(segments) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(segments[i])
	}
	return b.String()
}

// ChildCount returns the number of direct subfolders.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// DocumentCount returns the number of member document IDs.
func (n *Node) DocumentCount() int {
	return len(n.docs)
}

// Parent returns the folder's parent, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Info is one record of a tree traversal.
type Info struct {
	Path          string `json:"path"`
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
	ChildCount    int    `json:"children_count"`
}

// Tree is the folder hierarchy. All methods are safe for concurrent use.
type Tree struct {
	mu     sync.RWMutex
	root   *Node
	byPath map[string]*Node
	logger *slog.Logger
}

// NewTree creates a Tree containing only the root folder "/".
func NewTree() *Tree {
	root := &Node{
		name:     "/",
		children: make(map[string]*Node),
		docs:     make(map[string]struct{}),
	}
	return &Tree{
		root:   root,
		byPath: map[string]*Node{"/": root},
		logger: slog.Default().With("component", "folder-tree"),
	}
}

// AddFolder creates the folder at path, creating any missing ancestors, and
// returns its node. Adding an existing path returns the existing node.
func (t *Tree) AddFolder(path string) *Node {
	normalized := Normalize(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	if node, ok := t.byPath[normalized]; ok {
		return node
	}

	current := t.root
	currentPath := ""
	for _, segment := range splitPath(normalized) {
		currentPath += "/" + segment
		child, ok := current.children[segment]
		if !ok {
			child = &Node{
				name:     segment,
				parent:   current,
				children: make(map[string]*Node),
				docs:     make(map[string]struct{}),
			}
			current.children[segment] = child
			t.byPath[currentPath] = child
		}
		current = child
	}
	t.logger.Debug("folder created", "path", normalized)
	return current
}

// GetFolder returns the node at path, or false if it does not exist.
func (t *Tree) GetFolder(path string) (*Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	node, ok := t.byPath[Normalize(path)]
	return node, ok
}

// DeleteFolder detaches the folder at path and removes it and every
// descendant from the path map. It returns false for an unknown path or the
// root, which is permanently undeletable. Member document IDs are not
// touched; relocating them is the caller's responsibility.
func (t *Tree) DeleteFolder(path string) bool {
	normalized := Normalize(path)
	if normalized == "/" {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.byPath[normalized]
	if !ok {
		return false
	}
	delete(node.parent.children, node.name)
	t.unregister(node, normalized)
	t.logger.Debug("folder deleted", "path", normalized)
	return true
}

// unregister removes node and all descendants from the path map
// depth-first. Caller holds t.mu.
func (t *Tree) unregister(node *Node, path string) {
	delete(t.byPath, path)
	for name, child := range node.children {
		childPath := path + "/" + name
		if path == "/" {
			childPath = "/" + name
		}
		t.unregister(child, childPath)
	}
}

// AddDocument records the document ID as a member of the folder at path.
// It returns false (not an error) if the folder does not exist.
func (t *Tree) AddDocument(path, docID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	node, ok := t.byPath[Normalize(path)]
	if !ok {
		return false
	}
	node.docs[docID] = struct{}{}
	return true
}

// RemoveDocument removes the document ID from the folder's member set.
// Unknown folders and non-member IDs are a no-op.
func (t *Tree) RemoveDocument(path, docID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	node, ok := t.byPath[Normalize(path)]
	if !ok {
		return false
	}
	delete(node.docs, docID)
	return true
}

// Documents returns the member document IDs of the folder at path, sorted
// for deterministic output. Unknown folders yield an empty slice.
func (t *Tree) Documents(path string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	node, ok := t.byPath[Normalize(path)]
	if !ok {
		return []string{}
	}
	ids := make([]string, 0, len(node.docs))
	for id := range node.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TraverseDFS walks the tree depth-first starting at the root, parents
// before children, and returns one Info record per live folder. Sibling
// order follows the per-node map and is not contractually sorted.
func (t *Tree) TraverseDFS() []Info {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]Info, 0, len(t.byPath))
	t.dfs(t.root, &result)
	return result
}

func (t *Tree) dfs(node *Node, result *[]Info) {
	*result = append(*result, Info{
		Path:          node.Path(),
		Name:          node.name,
		DocumentCount: len(node.docs),
		ChildCount:    len(node.children),
	})
	for _, child := range node.children {
		t.dfs(child, result)
	}
}

// TraverseBFS walks the tree breadth-first starting at the root and returns
// one Info record per live folder.
func (t *Tree) TraverseBFS() []Info {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]Info, 0, len(t.byPath))
	queue := []*Node{t.root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, Info{
			Path:          node.Path(),
			Name:          node.name,
			DocumentCount: len(node.docs),
			ChildCount:    len(node.children),
		})
		for _, child := range node.children {
			queue = append(queue, child)
		}
	}
	return result
}

// Len returns the number of live folders, root included.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byPath)
}

// Normalize canonicalizes a folder path: leading, trailing, and repeated
// slashes are insignificant and the root is "/".
func Normalize(path string) string {
	segments := splitPath(path)
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}
