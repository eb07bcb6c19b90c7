package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/interview"
	"github.com/yourusername/careerops-api/internal/service"
)

// maxAnswerAudio caps a spoken answer upload.
var maxAnswerAudio int64 = 25 << 20

// StartInterview handles POST /sessions/:id/interview
// Generates count questions (default 5, at most 10) from the resume and
// target job. Any earlier interview is replaced.
func (h *SessionHandler) StartInterview(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	var req struct {
		Count int `json:"count"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Count < 0 || req.Count > service.MaxQuestionCount {
		badRequest(c, "count must be between 1 and "+strconv.Itoa(service.MaxQuestionCount))
		return
	}

	questions, err := h.svc.Interviewer.Questions(c.Request.Context(), ws.Document().Text, ws.Target(), req.Count)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	iv, err := ws.StartInterview(questions)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}

	log.Info().Str("session", ws.ID).Int("questions", len(questions)).Msg("Interview started")
	c.JSON(http.StatusCreated, interviewJSON(iv))
}

// GetInterview handles GET /sessions/:id/interview
func (h *SessionHandler) GetInterview(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	iv, err := ws.Interview()
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, interviewJSON(iv))
}

func interviewJSON(iv *interview.Interview) gin.H {
	resp := gin.H{"interview": iv.State()}
	if q, idx, err := iv.Current(); err == nil {
		resp["question"] = q
		resp["index"] = idx
	}
	return resp
}

// QuestionAudio handles GET /sessions/:id/interview/audio?voice=nova
// Streams the current question as MP3.
func (h *SessionHandler) QuestionAudio(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	iv, err := ws.Interview()
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	q, _, err := iv.Current()
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	audio, err := h.svc.Interviewer.Speak(c.Request.Context(), q.Text, c.Query("voice"))
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// Answer handles POST /sessions/:id/interview/answers
// Accepts JSON {index, answer} or a multipart form with "index" and an
// "audio" file that is transcribed first. index must be the current
// question; it defaults to it when omitted.
func (h *SessionHandler) Answer(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	iv, err := ws.Interview()
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	ctx := c.Request.Context()

	q, current, err := iv.Current()
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	var (
		index      = current
		answer     string
		transcript bool
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if raw := c.PostForm("index"); raw != "" {
			if index, err = strconv.Atoi(raw); err != nil {
				badRequest(c, "index must be a number")
				return
			}
		}
		file, header, ferr := c.Request.FormFile("audio")
		if ferr != nil {
			badRequest(c, "No audio uploaded")
			return
		}
		defer file.Close()
		if header.Size > maxAnswerAudio {
			fileTooLarge(c, maxAnswerAudio)
			return
		}
		audio, rerr := io.ReadAll(io.LimitReader(file, maxAnswerAudio+1))
		if rerr != nil {
			log.Error().Err(rerr).Msg("Failed to read answer audio")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read audio", "code": "internal"})
			return
		}
		if int64(len(audio)) > maxAnswerAudio {
			fileTooLarge(c, maxAnswerAudio)
			return
		}
		// A stale index must not cost a transcription.
		if index != current {
			respondError(c, interview.ErrStaleAnswer, http.StatusConflict)
			return
		}
		if answer, err = h.svc.Interviewer.Transcribe(ctx, audio, header.Filename); err != nil {
			respondError(c, err, http.StatusBadGateway)
			return
		}
		transcript = true
	} else {
		var req struct {
			Index  *int   `json:"index"`
			Answer string `json:"answer"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "answer is required")
			return
		}
		if req.Index != nil {
			index = *req.Index
		}
		answer = req.Answer
	}

	if index != current {
		respondError(c, interview.ErrStaleAnswer, http.StatusConflict)
		return
	}
	if strings.TrimSpace(answer) == "" {
		respondError(c, interview.ErrEmptyAnswer, http.StatusBadRequest)
		return
	}

	eval, err := h.svc.Interviewer.Evaluate(ctx, q, answer, ws.Document().Text, ws.Target())
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	turn, err := iv.Record(index, answer, eval)
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	resp := interviewJSON(iv)
	resp["turn"] = turn
	resp["complete"] = iv.Complete()
	if transcript {
		resp["transcript"] = answer
	}
	c.JSON(http.StatusOK, resp)
}

// InterviewSummary handles POST /sessions/:id/interview/summary
func (h *SessionHandler) InterviewSummary(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	iv, err := ws.Interview()
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	if !iv.Complete() {
		respondError(c, interview.ErrNotComplete, http.StatusConflict)
		return
	}

	summary, err := h.svc.Interviewer.Summarize(c.Request.Context(), iv.Turns(), ws.Target())
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	if err := iv.SetSummary(summary); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, summary)
}
