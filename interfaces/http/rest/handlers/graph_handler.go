package handlers

import (
	"net/http"

	"snipgraph-backend/application/services"
	"snipgraph-backend/domain/graph"
	"snipgraph-backend/pkg/auth"
	"snipgraph-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GraphHandler serves graph-derived views: propagated content and
// branch combination.
type GraphHandler struct {
	propagation *services.PropagationService
	combine     *services.CombineService
	logger      *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(propagation *services.PropagationService, combine *services.CombineService, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		propagation: propagation,
		combine:     combine,
		logger:      logger,
	}
}

// ContentItemResponse is one piece of upstream content visible to a snippet
type ContentItemResponse struct {
	SnippetID    string `json:"snippet_id"`
	SnippetTitle string `json:"snippet_title"`
	Type         string `json:"type"`
	Value        string `json:"value,omitempty"`
	MediaURL     string `json:"media_url,omitempty"`
	MediaMime    string `json:"media_mime,omitempty"`
}

func toContentItemResponse(item graph.ContentItem) ContentItemResponse {
	out := ContentItemResponse{
		SnippetID:    item.SnippetID,
		SnippetTitle: item.SnippetTitle,
		Type:         string(item.Type),
		Value:        item.Value,
	}
	if item.Media != nil {
		out.MediaURL = item.Media.URL
		out.MediaMime = item.Media.MimeType
	}
	return out
}

// Propagation handles GET /projects/{projectID}/propagation.
// The response maps each snippet ID to its ordered upstream content.
func (h *GraphHandler) Propagation(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	resolved, err := h.propagation.PropagateContent(r.Context(), chi.URLParam(r, "projectID"), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	out := make(map[string][]ContentItemResponse, len(resolved))
	for snippetID, items := range resolved {
		converted := make([]ContentItemResponse, 0, len(items))
		for _, item := range items {
			converted = append(converted, toContentItemResponse(item))
		}
		out[snippetID] = converted
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// SnippetPropagation handles GET /projects/{projectID}/snippets/{snippetID}/propagation
func (h *GraphHandler) SnippetPropagation(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	items, err := h.propagation.PropagateContentFor(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "snippetID"), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	out := make([]ContentItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toContentItemResponse(item))
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// Combine handles POST /projects/{projectID}/snippets/{snippetID}/combine.
// It merges the text of every branch feeding the snippet into the snippet
// itself and returns the updated snippet.
func (h *GraphHandler) Combine(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	projectID := chi.URLParam(r, "projectID")
	snippetID := chi.URLParam(r, "snippetID")

	snippet, err := h.combine.Combine(r.Context(), projectID, snippetID, userCtx.UserID)
	if err != nil {
		h.logger.Warn("Failed to combine branches",
			zap.String("projectID", projectID),
			zap.String("snippetID", snippetID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toSnippetResponse(snippet))
}
