package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/HealthyWithVictor/storefront/internal/apperror"
	"github.com/HealthyWithVictor/storefront/internal/auth"
	"github.com/HealthyWithVictor/storefront/internal/service"
)

// CommentHandler serves comment posting and deletion. Both routes sit behind
// RequireAuth, so an identity is always present in the context.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type commentRequest struct {
	Body string `json:"body"`
}

// HandleAddComment is POST /api/products/{id}/comments.
func (h *CommentHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Forbidden("authentication required"))
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	comment, err := h.comments.AddComment(r.Context(), r.PathValue("id"), ident.UserID, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleDeleteComment is DELETE /api/comments/{id}. The service enforces
// that only the author (or an admin) may delete.
func (h *CommentHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Forbidden("authentication required"))
		return
	}

	if err := h.comments.DeleteComment(r.Context(), r.PathValue("id"), ident.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
