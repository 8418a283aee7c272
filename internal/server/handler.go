// Package server exposes the document, folder, and search APIs over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/docstash/docstash/internal/content"
	"github.com/docstash/docstash/internal/search"
	apperrors "github.com/docstash/docstash/pkg/errors"
	"github.com/docstash/docstash/pkg/logger"
)

const statsTopN = 10

// Handler holds the HTTP endpoints for the content manager.
type Handler struct {
	manager      *content.Manager
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler. defaultLimit is used when a request omits the
// result limit; maxResults caps whatever the client asks for.
func New(manager *content.Manager, defaultLimit, maxResults int) *Handler {
	return &Handler{
		manager:      manager,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "http-handler"),
	}
}

type createDocumentRequest struct {
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
	FolderPath string   `json:"folder_path"`
}

type updateDocumentRequest struct {
	Title *string  `json:"title"`
	Body  *string  `json:"body"`
	Tags  []string `json:"tags"`
}

type moveDocumentRequest struct {
	NewFolderPath string `json:"new_folder_path"`
}

type createFolderRequest struct {
	Path string `json:"path"`
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type autocompleteRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
}

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" && req.Body == "" {
		h.writeError(w, http.StatusBadRequest, "title or body is required")
		return
	}
	doc := h.manager.AddDocument(req.Title, req.Body, req.Tags, req.FolderPath)
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"document": doc,
	})
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.manager.GetDocument(r.PathValue("id"))
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"document": doc,
	})
}

func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req updateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	doc, err := h.manager.UpdateDocument(r.PathValue("id"), search.Patch{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"document": doc,
	})
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteDocument(r.PathValue("id")); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "document deleted",
	})
}

func (h *Handler) MoveDocument(w http.ResponseWriter, r *http.Request) {
	var req moveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NewFolderPath == "" {
		h.writeError(w, http.StatusBadRequest, "new_folder_path is required")
		return
	}
	if err := h.manager.MoveDocument(r.PathValue("id"), req.NewFolderPath); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "document moved",
	})
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := h.manager.ListDocuments(r.URL.Query().Get("folder"))
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"documents": docs,
		"count":     len(docs),
	})
}

func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		h.writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	path := h.manager.CreateFolder(req.Path)
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"path":    path,
	})
}

func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'path' is required")
		return
	}
	if err := h.manager.DeleteFolder(path); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "folder deleted",
	})
}

func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders := h.manager.ListFolders()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"folders": folders,
		"count":   len(folders),
	})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())

	var query string
	topK := h.defaultLimit
	if r.Method == http.MethodPost {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		query = req.Query
		if req.TopK > 0 {
			topK = req.TopK
		}
	} else {
		query = r.URL.Query().Get("q")
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed < 1 {
				h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			topK = parsed
		}
	}
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if topK > h.maxResults {
		topK = h.maxResults
	}

	results, cacheHit, err := h.manager.Search(r.Context(), query, topK)
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	log.Info("search completed",
		"query", query,
		"returned", len(results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}

func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	var prefix string
	limit := h.defaultLimit
	if r.Method == http.MethodPost {
		var req autocompleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		prefix = req.Prefix
		if req.Limit > 0 {
			limit = req.Limit
		}
	} else {
		prefix = r.URL.Query().Get("prefix")
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
				limit = parsed
			}
		}
	}
	if limit > h.maxResults {
		limit = h.maxResults
	}

	suggestions := h.manager.Autocomplete(prefix, limit)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"prefix":      prefix,
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.manager.ClearSearchCache()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "cache cleared",
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   h.manager.Stats(statsTopN),
	})
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	h.writeError(w, status, message)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encoding response failed", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
