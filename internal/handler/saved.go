package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/middleware"
	"github.com/yourusername/careerops-api/internal/model"
	"github.com/yourusername/careerops-api/internal/repository"
	"github.com/yourusername/careerops-api/internal/service"
	"github.com/yourusername/careerops-api/internal/storage"
	"github.com/yourusername/careerops-api/internal/workspace"
)

type SavedSessionHandler struct {
	store   *workspace.Store
	saved   repository.SavedSessionStore
	objects storage.ObjectStore
}

func NewSavedSessionHandler(store *workspace.Store, saved repository.SavedSessionStore, objects storage.ObjectStore) *SavedSessionHandler {
	return &SavedSessionHandler{store: store, saved: saved, objects: objects}
}

// Save handles POST /sessions/:id/save
// Passing savedId overwrites that saved session instead of creating one.
func (h *SavedSessionHandler) Save(c *gin.Context) {
	ownerID := middleware.GetOwnerID(c)
	ws, err := h.store.Get(ownerID, c.Param("id"))
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	var req struct {
		SavedID     string `json:"savedId"`
		DisplayName string `json:"displayName"`
	}
	_ = c.ShouldBindJSON(&req)

	ctx := c.Request.Context()
	rec := &model.SavedSession{OwnerID: ownerID}
	var previousKey string
	if req.SavedID != "" {
		if rec.ID, err = uuid.Parse(req.SavedID); err != nil {
			badRequest(c, "Invalid savedId")
			return
		}
		old, err := h.saved.Get(ctx, ownerID, rec.ID)
		if err != nil {
			respondError(c, err, http.StatusInternalServerError)
			return
		}
		previousKey = old.StorageKey
	}

	snap := ws.Snapshot()
	state, err := json.Marshal(snap)
	if err != nil {
		respondError(c, fmt.Errorf("encoding snapshot: %w", err), http.StatusInternalServerError)
		return
	}
	rec.State = state
	rec.Filename = snap.Filename
	rec.FileMD5 = snap.FileMD5
	rec.StorageKey = snap.UploadKey
	rec.DisplayName = strings.TrimSpace(req.DisplayName)
	if rec.DisplayName == "" {
		rec.DisplayName = displayName(ws.Parsed(), snap.Filename)
	}

	saved, err := h.saved.Save(ctx, rec)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	if previousKey != saved.StorageKey {
		h.releaseUpload(ctx, ownerID, previousKey)
	}

	log.Info().Str("session", ws.ID).Str("saved", saved.ID.String()).Msg("Session saved")
	saved.State = nil
	status := http.StatusCreated
	if req.SavedID != "" {
		status = http.StatusOK
	}
	c.JSON(status, saved)
}

// displayName is "Name - Role", the name alone, or the file name.
func displayName(r *model.Resume, filename string) string {
	if r == nil || strings.TrimSpace(r.Name) == "" {
		if filename == "" {
			return "Untitled resume"
		}
		return filename
	}
	if role := strings.TrimSpace(r.Role); role != "" {
		return strings.TrimSpace(r.Name) + " - " + role
	}
	return strings.TrimSpace(r.Name)
}

// List handles GET /saved-sessions
func (h *SavedSessionHandler) List(c *gin.Context) {
	list, err := h.saved.List(c.Request.Context(), middleware.GetOwnerID(c))
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []model.SavedSession{}
	}
	c.JSON(http.StatusOK, list)
}

// Restore handles POST /saved-sessions/:id/restore
// Starts a new live session with the saved history rebuilt.
func (h *SavedSessionHandler) Restore(c *gin.Context) {
	ownerID := middleware.GetOwnerID(c)
	rec, ok := h.load(c, ownerID)
	if !ok {
		return
	}

	var snap workspace.Snapshot
	if err := json.Unmarshal(rec.State, &snap); err != nil {
		log.Error().Err(err).Str("saved", rec.ID.String()).Msg("Saved session state is unreadable")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "This saved session cannot be restored.", "code": "corrupt_snapshot"})
		return
	}

	ws, err := h.store.Restore(ownerID, snap)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	log.Info().Str("saved", rec.ID.String()).Str("session", ws.ID).Msg("Session restored")
	c.JSON(http.StatusCreated, gin.H{
		"session":  ws.Summary(),
		"document": ws.Document(),
		"sections": ws.Document().Sections(),
	})
}

// Delete handles DELETE /saved-sessions/:id
// The stored upload is removed once no other saved session refers to it.
func (h *SavedSessionHandler) Delete(c *gin.Context) {
	ownerID := middleware.GetOwnerID(c)
	rec, ok := h.load(c, ownerID)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := h.saved.Delete(ctx, ownerID, rec.ID); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	h.releaseUpload(ctx, ownerID, rec.StorageKey)

	c.Status(http.StatusNoContent)
}

// releaseUpload deletes the stored upload once neither a saved session of
// the owner nor a live session refers to it.
func (h *SavedSessionHandler) releaseUpload(ctx context.Context, ownerID, key string) {
	if key == "" || h.store.UsesUpload(key) {
		return
	}
	rest, err := h.saved.List(ctx, ownerID)
	if err != nil {
		log.Warn().Err(err).Msg("Could not check upload references, keeping object")
		return
	}
	for _, other := range rest {
		if other.StorageKey == key {
			return
		}
	}
	if err := h.objects.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		log.Warn().Err(err).Str("key", key).Msg("Failed to delete stored upload")
	}
}

// Upload handles GET /saved-sessions/:id/upload
// Streams the original uploaded file.
func (h *SavedSessionHandler) Upload(c *gin.Context) {
	rec, ok := h.load(c, middleware.GetOwnerID(c))
	if !ok {
		return
	}
	if rec.StorageKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "This session was created from pasted text.", "code": "not_found"})
		return
	}

	body, err := h.objects.Open(c.Request.Context(), rec.StorageKey)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	defer body.Close()

	name, err := storage.SanitizeFileName(rec.Filename)
	if err != nil {
		name = "resume"
	}
	contentType := service.DetectMIME(rec.Filename, "")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, name),
	})
}

func (h *SavedSessionHandler) load(c *gin.Context, ownerID string) (*model.SavedSession, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid saved session ID")
		return nil, false
	}
	rec, err := h.saved.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return nil, false
	}
	return rec, true
}
