package handlers

import (
	"net/http"
	"time"

	"snipgraph-backend/application/services"
	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/core/valueobjects"
	"snipgraph-backend/pkg/auth"
	"snipgraph-backend/pkg/common"
	"snipgraph-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxRequestBody = 1 << 20 // 1 MiB

// SnippetHandler handles snippet-related HTTP requests
type SnippetHandler struct {
	snippets *services.SnippetService
	deletion *services.DeletionService
	logger   *zap.Logger
}

// NewSnippetHandler creates a new snippet handler
func NewSnippetHandler(snippets *services.SnippetService, deletion *services.DeletionService, logger *zap.Logger) *SnippetHandler {
	return &SnippetHandler{
		snippets: snippets,
		deletion: deletion,
		logger:   logger,
	}
}

// CreateSnippetRequest represents the request body for creating a snippet
type CreateSnippetRequest struct {
	Title           string            `json:"title,omitempty" validate:"omitempty,max=200"`
	Text            string            `json:"text,omitempty"`
	Fields          map[string]string `json:"fields,omitempty"`
	X               float64           `json:"x"`
	Y               float64           `json:"y"`
	SourceSnippetID string            `json:"source_snippet_id,omitempty" validate:"omitempty,uuid"`
}

// UpdateSnippetRequest is a partial patch; omitted fields are left untouched
type UpdateSnippetRequest struct {
	Title  *string            `json:"title,omitempty" validate:"omitempty,max=200"`
	Text   *string            `json:"text,omitempty"`
	Fields *map[string]string `json:"fields,omitempty"`
	X      *float64           `json:"x,omitempty"`
	Y      *float64           `json:"y,omitempty"`
}

// SnippetResponse is the wire representation of a snippet
type SnippetResponse struct {
	ID        string            `json:"id"`
	ProjectID string            `json:"project_id"`
	Title     string            `json:"title"`
	Text      string            `json:"text"`
	Fields    map[string]string `json:"fields,omitempty"`
	ImageURL  string            `json:"image_url,omitempty"`
	VideoURL  string            `json:"video_url,omitempty"`
	X         float64           `json:"x"`
	Y         float64           `json:"y"`
	Version   int               `json:"version"`
	CreatedAt string            `json:"created_at"`
	UpdatedAt string            `json:"updated_at"`
}

func toSnippetResponse(s *entities.Snippet) SnippetResponse {
	content := s.Content()
	return SnippetResponse{
		ID:        s.ID().String(),
		ProjectID: s.ProjectID(),
		Title:     s.Title(),
		Text:      content.Text(),
		Fields:    content.Fields(),
		ImageURL:  content.Image().URL,
		VideoURL:  content.Video().URL,
		X:         s.Position().X,
		Y:         s.Position().Y,
		Version:   s.Version(),
		CreatedAt: s.CreatedAt().Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt().Format(time.RFC3339),
	}
}

// Create handles POST /projects/{projectID}/snippets
func (h *SnippetHandler) Create(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req CreateSnippetRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	input := services.CreateSnippetInput{
		ProjectID:       chi.URLParam(r, "projectID"),
		Title:           req.Title,
		Text:            req.Text,
		Fields:          req.Fields,
		Position:        valueobjects.NewPosition(req.X, req.Y),
		SourceSnippetID: req.SourceSnippetID,
	}

	snippet, err := h.snippets.Create(r.Context(), input, userCtx.UserID)
	if err != nil {
		h.logger.Warn("Failed to create snippet",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toSnippetResponse(snippet))
}

// Get handles GET /projects/{projectID}/snippets/{snippetID}
func (h *SnippetHandler) Get(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	snippet, err := h.snippets.Get(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "snippetID"), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toSnippetResponse(snippet))
}

// List handles GET /projects/{projectID}/snippets
func (h *SnippetHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	snippets, err := h.snippets.List(r.Context(), chi.URLParam(r, "projectID"), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	out := make([]SnippetResponse, 0, len(snippets))
	for _, s := range snippets {
		out = append(out, toSnippetResponse(s))
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// Update handles PATCH /projects/{projectID}/snippets/{snippetID}
func (h *SnippetHandler) Update(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req UpdateSnippetRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	input := services.UpdateSnippetInput{
		Title:  req.Title,
		Text:   req.Text,
		Fields: req.Fields,
	}
	if req.X != nil && req.Y != nil {
		pos := valueobjects.NewPosition(*req.X, *req.Y)
		input.Position = &pos
	}

	snippet, err := h.snippets.Update(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "snippetID"), userCtx.UserID, input)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toSnippetResponse(snippet))
}

// Delete handles DELETE /projects/{projectID}/snippets/{snippetID}.
// The delete cascades: connections touching the snippet and its version
// history go with it.
func (h *SnippetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	err = h.deletion.DeleteSnippetCascade(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "snippetID"), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VersionResponse is the wire representation of one historical snapshot
type VersionResponse struct {
	Version   int               `json:"version"`
	Title     string            `json:"title"`
	Text      string            `json:"text"`
	Fields    map[string]string `json:"fields,omitempty"`
	ImageURL  string            `json:"image_url,omitempty"`
	VideoURL  string            `json:"video_url,omitempty"`
	CreatedAt string            `json:"created_at"`
}

// History handles GET /projects/{projectID}/snippets/{snippetID}/versions
func (h *SnippetHandler) History(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	records, err := h.snippets.History(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "snippetID"), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	out := make([]VersionResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, VersionResponse{
			Version:   rec.Version,
			Title:     rec.Title,
			Text:      rec.Text,
			Fields:    rec.Fields,
			ImageURL:  rec.ImageURL,
			VideoURL:  rec.VideoURL,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
		})
	}
	common.RespondJSON(w, http.StatusOK, out)
}
