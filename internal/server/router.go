package server

import (
	"net/http"
	"time"

	"github.com/docstash/docstash/pkg/health"
	"github.com/docstash/docstash/pkg/metrics"
	"github.com/docstash/docstash/pkg/middleware"
)

// NewRouter builds the full HTTP handler with all routes and middleware.
//
// Route table:
//
//	POST   /api/v1/documents           → create document
//	GET    /api/v1/documents           → list documents (optional ?folder=)
//	GET    /api/v1/documents/{id}      → get document
//	PUT    /api/v1/documents/{id}      → update document
//	DELETE /api/v1/documents/{id}      → delete document
//	POST   /api/v1/documents/{id}/move → move document
//	POST   /api/v1/folders             → create folder
//	GET    /api/v1/folders             → list folders (DFS)
//	DELETE /api/v1/folders             → delete folder (?path=)
//	GET    /api/v1/search              → search (?q=&limit=)
//	POST   /api/v1/search              → search (JSON body)
//	GET    /api/v1/autocomplete        → autocomplete (?prefix=&limit=)
//	POST   /api/v1/autocomplete        → autocomplete (JSON body)
//	POST   /api/v1/cache/clear         → clear search cache
//	GET    /api/v1/stats               → search usage statistics
//	GET    /health                     → readiness
//	GET    /health/live                → liveness
//
// Middleware chain (outermost first): RequestID → Metrics → Timeout.
func NewRouter(h *Handler, checker *health.Checker, m *metrics.Metrics, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", checker.ReadyHandler())
	mux.HandleFunc("GET /health/live", checker.LiveHandler())

	mux.HandleFunc("POST /api/v1/documents", h.CreateDocument)
	mux.HandleFunc("GET /api/v1/documents", h.ListDocuments)
	mux.HandleFunc("GET /api/v1/documents/{id}", h.GetDocument)
	mux.HandleFunc("PUT /api/v1/documents/{id}", h.UpdateDocument)
	mux.HandleFunc("DELETE /api/v1/documents/{id}", h.DeleteDocument)
	mux.HandleFunc("POST /api/v1/documents/{id}/move", h.MoveDocument)

	mux.HandleFunc("POST /api/v1/folders", h.CreateFolder)
	mux.HandleFunc("GET /api/v1/folders", h.ListFolders)
	mux.HandleFunc("DELETE /api/v1/folders", h.DeleteFolder)

	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/autocomplete", h.Autocomplete)
	mux.HandleFunc("POST /api/v1/autocomplete", h.Autocomplete)

	mux.HandleFunc("POST /api/v1/cache/clear", h.ClearCache)
	mux.HandleFunc("GET /api/v1/stats", h.Stats)

	var chain http.Handler = mux
	chain = middleware.Timeout(requestTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)
	return chain
}
