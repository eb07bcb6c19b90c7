package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/editor"
	"github.com/yourusername/careerops-api/internal/service"
)

// GenerateCoverLetter handles POST /sessions/:id/cover-letter
// Writes a letter for the target job. A regenerated letter differs from the
// previous one and starts a fresh edit history.
func (h *SessionHandler) GenerateCoverLetter(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	var req struct {
		Question     string `json:"question"`
		Instructions string `json:"instructions"`
	}
	_ = c.ShouldBindJSON(&req)

	var previous string
	if s, err := ws.CoverLetter(); err == nil {
		previous = s.Current().Text
	}

	text, err := h.svc.Letters.Generate(c.Request.Context(), service.CoverLetterRequest{
		ResumeText:   ws.Document().Text,
		Target:       ws.Target(),
		Question:     req.Question,
		Instructions: req.Instructions,
		Previous:     previous,
	})
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}

	s := ws.SetCoverLetter(text)
	log.Info().Str("session", ws.ID).Int("len", len(text)).Bool("regenerated", previous != "").Msg("Cover letter generated")
	c.JSON(http.StatusCreated, gin.H{"document": s.Current()})
}

// GetCoverLetter handles GET /sessions/:id/cover-letter
func (h *SessionHandler) GetCoverLetter(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	s, err := ws.CoverLetter()
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	resp := historyJSON(s, ws.LetterChat())
	resp["document"] = s.Current()
	c.JSON(http.StatusOK, resp)
}

// EditCoverLetter handles POST /sessions/:id/cover-letter/edits
func (h *SessionHandler) EditCoverLetter(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	s, err := ws.CoverLetter()
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "instruction is required")
		return
	}

	res, err := ws.ApplyLetterEdit(c.Request.Context(), req.Instruction)
	respondEdit(c, "letter_apply", req.Instruction, ws.LetterChat(), s.Current(), res, err)
}

// UndoCoverLetter handles POST /sessions/:id/cover-letter/undo
func (h *SessionHandler) UndoCoverLetter(c *gin.Context) {
	h.letterStep(c, "letter_undo", (*editor.Session).Undo)
}

// RedoCoverLetter handles POST /sessions/:id/cover-letter/redo
func (h *SessionHandler) RedoCoverLetter(c *gin.Context) {
	h.letterStep(c, "letter_redo", (*editor.Session).Redo)
}

func (h *SessionHandler) letterStep(c *gin.Context, op string, step func(*editor.Session) (*editor.Result, error)) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	s, err := ws.CoverLetter()
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	respondStep(c, op, func() (*editor.Result, error) { return step(s) })
}
