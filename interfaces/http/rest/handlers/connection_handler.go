package handlers

import (
	"net/http"
	"time"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/application/services"
	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/pkg/auth"
	"snipgraph-backend/pkg/common"
	"snipgraph-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ConnectionHandler handles connection-related HTTP requests
type ConnectionHandler struct {
	connections *services.ConnectionService
	logger      *zap.Logger
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connections *services.ConnectionService, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		connections: connections,
		logger:      logger,
	}
}

// CreateConnectionRequest represents the request body for creating a connection
type CreateConnectionRequest struct {
	SourceSnippetID string            `json:"source_snippet_id" validate:"required,uuid"`
	TargetSnippetID string            `json:"target_snippet_id" validate:"required,uuid"`
	Label           string            `json:"label,omitempty" validate:"omitempty,max=100"`
	Description     string            `json:"description,omitempty" validate:"omitempty,max=500"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ConnectionResponse is the wire representation of a connection
type ConnectionResponse struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"project_id"`
	SourceID    string            `json:"source_snippet_id"`
	TargetID    string            `json:"target_snippet_id"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   string            `json:"created_at"`
}

func toConnectionResponse(c *entities.Connection) ConnectionResponse {
	return ConnectionResponse{
		ID:          c.ID,
		ProjectID:   c.ProjectID,
		SourceID:    c.SourceID.String(),
		TargetID:    c.TargetID.String(),
		Label:       c.Label,
		Description: c.Description,
		Metadata:    c.Metadata,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /projects/{projectID}/connections
func (h *ConnectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req CreateConnectionRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBody); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	input := services.CreateConnectionInput{
		ProjectID:       chi.URLParam(r, "projectID"),
		SourceSnippetID: req.SourceSnippetID,
		TargetSnippetID: req.TargetSnippetID,
		Label:           req.Label,
		Description:     req.Description,
		Metadata:        req.Metadata,
	}

	conn, err := h.connections.Create(r.Context(), input, userCtx.UserID)
	if err != nil {
		h.logger.Warn("Failed to create connection",
			zap.String("userID", userCtx.UserID),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toConnectionResponse(conn))
}

// List handles GET /projects/{projectID}/connections.
// Optional query params source, target, and label narrow the result.
func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	filter := ports.ConnectionFilter{
		ProjectID: chi.URLParam(r, "projectID"),
		SourceID:  r.URL.Query().Get("source"),
		TargetID:  r.URL.Query().Get("target"),
		Label:     r.URL.Query().Get("label"),
	}

	conns, err := h.connections.List(r.Context(), filter)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	out := make([]ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		if c.UserID != userCtx.UserID {
			continue
		}
		out = append(out, toConnectionResponse(c))
	}
	common.RespondJSON(w, http.StatusOK, out)
}

// Delete handles DELETE /projects/{projectID}/connections/{connectionID}
func (h *ConnectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	err = h.connections.Delete(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "connectionID"), userCtx.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
