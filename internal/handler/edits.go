package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/editor"
	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/metrics"
	"github.com/yourusername/careerops-api/internal/service"
	"github.com/yourusername/careerops-api/internal/workspace"
)

type editRequest struct {
	Instruction string `json:"instruction"`
	JobContext  string `json:"jobContext"`
}

// chatMessage is the wire form of one chat turn.
type chatMessage struct {
	Role    llm.Role `json:"role"`
	Content string   `json:"content"`
}

func chatJSON(t *workspace.Timeline) []chatMessage {
	out := []chatMessage{}
	if t == nil {
		return out
	}
	for _, m := range t.All() {
		out = append(out, chatMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// ApplyEdit handles POST /sessions/:id/edits
// A reply that is advice or a question instead of an edit comes back with
// applied=false and leaves the document unchanged.
func (h *SessionHandler) ApplyEdit(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "instruction is required")
		return
	}

	res, err := ws.ApplyEdit(c.Request.Context(), req.Instruction, req.JobContext)
	respondEdit(c, "apply", req.Instruction, ws.Chat(), ws.Document(), res, err)
}

// respondEdit writes the outcome of an ApplyInstruction call.
func respondEdit(c *gin.Context, op, instruction string, chat *workspace.Timeline, current editor.Document, res *editor.Result, err error) {
	var reply *service.ReplyError
	switch {
	case err == nil:
		metrics.ObserveEdit(op, "ok")
		message := "Done."
		if res.Record != nil && res.Record.Summary != "" {
			message = res.Record.Summary
		}
		c.JSON(http.StatusOK, gin.H{
			"applied": true,
			"message": message,
			"result":  res,
		})
	case errors.As(err, &reply):
		metrics.ObserveEdit(op, "reply")
		chat.Exchange(instruction, reply.Message)
		suggestions := reply.Suggestions
		if suggestions == nil {
			suggestions = []string{}
		}
		c.JSON(http.StatusOK, gin.H{
			"applied":     false,
			"type":        reply.Kind,
			"message":     reply.Message,
			"suggestions": suggestions,
			"document":    current,
		})
	default:
		metrics.ObserveEdit(op, "error")
		respondError(c, err, http.StatusBadGateway)
	}
}

// Undo handles POST /sessions/:id/undo
func (h *SessionHandler) Undo(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	respondStep(c, "undo", ws.Resume().Undo)
}

// Redo handles POST /sessions/:id/redo
func (h *SessionHandler) Redo(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	respondStep(c, "redo", ws.Resume().Redo)
}

func respondStep(c *gin.Context, op string, step func() (*editor.Result, error)) {
	res, err := step()
	if err != nil {
		metrics.ObserveEdit(op, "error")
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	metrics.ObserveEdit(op, "ok")
	log.Debug().Str("op", op).Int("cursor", res.Cursor).Msg("History step")
	c.JSON(http.StatusOK, res)
}

// History handles GET /sessions/:id/history
func (h *SessionHandler) History(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, historyJSON(ws.Resume(), ws.Chat()))
}

func historyJSON(s *editor.Session, chat *workspace.Timeline) gin.H {
	records, cursor := s.Records()
	if records == nil {
		records = []editor.Record{}
	}
	return gin.H{
		"original": s.Original(),
		"records":  records,
		"cursor":   cursor,
		"canUndo":  cursor > 0,
		"canRedo":  cursor < len(records),
		"chat":     chatJSON(chat),
	}
}

// Diff handles GET /sessions/:id/diff?base=previous|original
func (h *SessionHandler) Diff(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	var spans []editor.Span
	switch base := c.DefaultQuery("base", "previous"); base {
	case "previous":
		spans = ws.Resume().DiffFromPrevious()
	case "original":
		spans = ws.Resume().DiffFromOriginal()
	default:
		badRequest(c, "base must be previous or original")
		return
	}
	if spans == nil {
		spans = []editor.Span{}
	}
	c.JSON(http.StatusOK, gin.H{"document": ws.Document(), "spans": spans})
}
