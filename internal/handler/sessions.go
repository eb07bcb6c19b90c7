package handler

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/middleware"
	"github.com/yourusername/careerops-api/internal/model"
	"github.com/yourusername/careerops-api/internal/repository"
	"github.com/yourusername/careerops-api/internal/service"
	"github.com/yourusername/careerops-api/internal/storage"
	"github.com/yourusername/careerops-api/internal/workspace"
)

// Services bundles the model-backed operations used by the handlers.
type Services struct {
	Parser      *service.ResumeParser
	Pipeline    *service.Pipeline
	Analyzer    *service.Analyzer
	Matcher     *service.Matcher
	Jobs        *service.JobExtractor
	Advisor     *service.Advisor
	Interviewer *service.Interviewer
	Letters     *service.CoverLetterWriter
}

type SessionHandler struct {
	store     *workspace.Store
	catalog   repository.JobCatalog
	objects   storage.ObjectStore
	svc       Services
	maxUpload int64
}

func NewSessionHandler(store *workspace.Store, catalog repository.JobCatalog, objects storage.ObjectStore, svc Services, maxUpload int64) *SessionHandler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &SessionHandler{store: store, catalog: catalog, objects: objects, svc: svc, maxUpload: maxUpload}
}

// workspace loads the :id workspace for the caller, writing the error
// response when it cannot.
func (h *SessionHandler) workspace(c *gin.Context) (*workspace.Workspace, bool) {
	ws, err := h.store.Get(middleware.GetOwnerID(c), c.Param("id"))
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return nil, false
	}
	return ws, true
}

// ── Create ─────────────────────────────────────────────

type createRequest struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
	Analyze  bool   `json:"analyze"`
}

// Create handles POST /sessions
// Accepts a multipart "file" upload (PDF, DOCX, TXT or image) or JSON {text}.
func (h *SessionHandler) Create(c *gin.Context) {
	ownerID := middleware.GetOwnerID(c)
	ctx := c.Request.Context()

	var (
		intake  *service.Intake
		seed    workspace.Seed
		analyze = c.Query("analyze") == "true"
		err     error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			badRequest(c, "No file uploaded")
			return
		}
		defer file.Close()

		if header.Size > h.maxUpload {
			fileTooLarge(c, h.maxUpload)
			return
		}

		data, rerr := io.ReadAll(io.LimitReader(file, h.maxUpload))
		if rerr != nil {
			log.Error().Err(rerr).Msg("Failed to read uploaded file")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file", "code": "internal"})
			return
		}

		mimeType := service.DetectMIME(header.Filename, header.Header.Get("Content-Type"))
		intake, err = h.svc.Parser.FromUpload(ctx, service.Upload{
			Filename: header.Filename,
			MIMEType: mimeType,
			Data:     data,
		})
		if err != nil {
			respondError(c, err, http.StatusBadGateway)
			return
		}

		key, _, serr := h.objects.Save(ctx, ownerID, header.Filename, mimeType, bytes.NewReader(data))
		if serr != nil {
			respondError(c, serr, http.StatusInternalServerError)
			return
		}

		seed = workspace.Seed{Filename: header.Filename, FileMD5: md5Hex(data), UploadKey: key}
		analyze = analyze || c.PostForm("analyze") == "true"
	} else {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Send a multipart file or JSON with text")
			return
		}
		intake, err = h.svc.Parser.FromText(ctx, req.Text)
		if err != nil {
			respondError(c, err, http.StatusBadGateway)
			return
		}
		filename := req.Filename
		if filename == "" {
			filename = "resume.txt"
		}
		seed = workspace.Seed{Filename: filename, FileMD5: md5Hex([]byte(req.Text))}
		analyze = analyze || req.Analyze
	}

	seed.Text = intake.Text
	seed.Resume = intake.Resume
	ws, err := h.store.Create(ownerID, seed)
	if err != nil {
		h.discardUpload(ctx, seed.UploadKey)
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("session", ws.ID).
		Str("filename", ws.Filename).
		Str("method", intake.Method).
		Int("textLen", len(intake.Text)).
		Msg("Resume session created")

	resp := gin.H{
		"session":  ws.Summary(),
		"document": ws.Document(),
		"sections": ws.Document().Sections(),
		"resume":   intake.Resume,
		"method":   intake.Method,
	}

	if analyze {
		if insights, err := h.runInsights(c, ws); err != nil {
			log.Warn().Err(err).Str("session", ws.ID).Msg("Post-upload analysis failed")
			resp["analysisError"] = classify(err, http.StatusBadGateway).message
		} else {
			resp["analysis"] = insights.Analysis
			resp["matches"] = insights.Matches
		}
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *SessionHandler) runInsights(c *gin.Context, ws *workspace.Workspace) (*service.Insights, error) {
	jobs, err := h.catalog.List(c.Request.Context())
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	insights, err := h.svc.Pipeline.Run(c.Request.Context(), ws.Document().Text, jobs)
	if err != nil {
		return nil, err
	}
	ws.SetAnalysis(insights.Analysis)
	ws.SetMatches(insights.Matches)
	return insights, nil
}

func md5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// ── Read ───────────────────────────────────────────────

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ws.Summary())
}

// Delete handles DELETE /sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(middleware.GetOwnerID(c), c.Param("id")); err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}

// Document handles GET /sessions/:id/document
// ?section=Skills narrows the response to one section.
func (h *SessionHandler) Document(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	doc := ws.Document()

	if name := c.Query("section"); name != "" {
		sec, found := doc.Section(name)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Section not found", "code": "not_found"})
			return
		}
		c.JSON(http.StatusOK, sec)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"sections": doc.Sections(),
		"parsed":   ws.Parsed(),
	})
}

// Export handles GET /sessions/:id/export?format=txt|md
func (h *SessionHandler) Export(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	exp, err := service.ExportDocument(ws.Document(), c.DefaultQuery("format", service.FormatText), exportBasename(ws.Filename))
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exp.Filename))
	c.Data(http.StatusOK, exp.ContentType, exp.Body)
}

func exportBasename(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	clean, err := storage.SanitizeFileName(base)
	if err != nil {
		return "resume"
	}
	return clean
}

// ── Insights ───────────────────────────────────────────

// Analyze handles POST /sessions/:id/analysis
// Scores the current document.
func (h *SessionHandler) Analyze(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	analysis, err := h.svc.Analyzer.Analyze(c.Request.Context(), ws.Document().Text)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	ws.SetAnalysis(analysis)
	c.JSON(http.StatusOK, analysis)
}

// Match handles POST /sessions/:id/matches
// Ranks the job catalog against the current document.
func (h *SessionHandler) Match(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	jobs, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	matches, err := h.svc.Matcher.Match(c.Request.Context(), ws.Document().Text, jobs)
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	ws.SetMatches(matches)
	c.JSON(http.StatusOK, matches)
}

// ── Target job ─────────────────────────────────────────

type targetRequest struct {
	JobID       string `json:"jobId"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// SetTarget handles PUT /sessions/:id/target-job
// Exactly one of jobId, description or url selects the target.
func (h *SessionHandler) SetTarget(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	given := 0
	for _, v := range []string{req.JobID, req.Description, req.URL} {
		if strings.TrimSpace(v) != "" {
			given++
		}
	}
	if given != 1 {
		badRequest(c, "Provide exactly one of jobId, description or url")
		return
	}

	ctx := c.Request.Context()
	var (
		target *model.TargetJob
		err    error
	)
	switch {
	case req.JobID != "":
		if jm, found := ws.Matches().Find(req.JobID); found {
			target = model.TargetFromMatch(jm)
			break
		}
		var job *model.Job
		job, err = h.catalog.FindByID(ctx, req.JobID)
		if err == nil {
			target = model.TargetFromMatch(model.JobMatch{Job: *job})
		}
	case req.Description != "":
		target, err = h.svc.Jobs.FromText(ctx, req.Description)
	default:
		target, err = h.svc.Jobs.FromURL(ctx, req.URL)
	}
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}

	ws.SetTarget(target)
	log.Info().Str("session", ws.ID).Str("source", target.Source).Str("title", target.Title).Msg("Target job set")

	c.JSON(http.StatusOK, gin.H{"target": target, "context": target.Context()})
}

// ClearTarget handles DELETE /sessions/:id/target-job
func (h *SessionHandler) ClearTarget(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	ws.SetTarget(nil)
	c.Status(http.StatusNoContent)
}

// Suggestions handles POST /sessions/:id/suggestions
// Returns advice without changing the document.
func (h *SessionHandler) Suggestions(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	// An empty body asks for general advice.
	_ = c.ShouldBindJSON(&req)

	out, err := h.svc.Advisor.Suggest(c.Request.Context(), ws.Document().Text, req.Question, ws.JobContext())
	if err != nil {
		respondError(c, err, http.StatusBadGateway)
		return
	}
	c.JSON(http.StatusOK, out)
}

func fileTooLarge(c *gin.Context, limit int64) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("File too large. Maximum size is %dMB.", limit>>20),
		"code":  "file_too_large",
	})
}

// discardUpload removes an upload that no session ended up owning.
func (h *SessionHandler) discardUpload(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.objects.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to delete orphaned upload")
	}
}
