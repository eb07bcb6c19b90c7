package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/editor"
	"github.com/yourusername/careerops-api/internal/interview"
	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/repository"
	"github.com/yourusername/careerops-api/internal/service"
	"github.com/yourusername/careerops-api/internal/storage"
	"github.com/yourusername/careerops-api/internal/workspace"
)

// apiError is the status, stable code and user-facing message for an error.
type apiError struct {
	status  int
	code    string
	message string
}

// Order matters: breaker, configuration and timeout errors also surface
// wrapped in an interpreter failure.
var errorTable = []struct {
	target error
	api    apiError
}{
	{editor.ErrInvalidInstruction, apiError{http.StatusBadRequest, "invalid_instruction", "Instruction is empty."}},
	{workspace.ErrNotFound, apiError{http.StatusNotFound, "not_found", "Session not found. It may have expired."}},
	{repository.ErrNotFound, apiError{http.StatusNotFound, "not_found", "Not found."}},
	{storage.ErrObjectNotFound, apiError{http.StatusNotFound, "not_found", "The original upload is no longer stored."}},
	{editor.ErrCorruptHistory, apiError{http.StatusUnprocessableEntity, "corrupt_snapshot", "This saved session cannot be restored."}},
	{editor.ErrNothingToUndo, apiError{http.StatusConflict, "nothing_to_undo", "Nothing to undo."}},
	{editor.ErrNothingToRedo, apiError{http.StatusConflict, "nothing_to_redo", "Nothing to redo."}},
	{editor.ErrSessionBusy, apiError{http.StatusConflict, "session_busy", "An edit is already in progress. Try again when it finishes."}},
	{llm.ErrCircuitOpen, apiError{http.StatusServiceUnavailable, "llm_unavailable", "The AI service is temporarily unavailable. Try again shortly."}},
	{llm.ErrNotConfigured, apiError{http.StatusServiceUnavailable, "not_configured", "This feature is not configured on the server."}},
	{context.DeadlineExceeded, apiError{http.StatusGatewayTimeout, "timeout", "The AI service took too long. Try again."}},
	{editor.ErrInterpreterFailure, apiError{http.StatusBadGateway, "edit_failed", "Edit failed, try rephrasing the instruction."}},

	{service.ErrEmptyResume, apiError{http.StatusBadRequest, "empty_resume", "No resume content found."}},
	{service.ErrUnsupportedFile, apiError{http.StatusBadRequest, "unsupported_file", "Unsupported file type. Upload a PDF, DOCX, TXT or image."}},
	{service.ErrInvalidURL, apiError{http.StatusBadRequest, "invalid_url", "Job URL must be an absolute http(s) link."}},
	{service.ErrEmptyJob, apiError{http.StatusBadRequest, "empty_job", "Job description is empty."}},
	{service.ErrUnknownFormat, apiError{http.StatusBadRequest, "unknown_format", "Format must be txt or md."}},
	{workspace.ErrEmptyDocument, apiError{http.StatusBadRequest, "empty_document", "Document is empty."}},
	{storage.ErrInvalidName, apiError{http.StatusBadRequest, "invalid_filename", "Invalid file name."}},
	{interview.ErrEmptyAnswer, apiError{http.StatusBadRequest, "empty_answer", "Answer is empty."}},
	{interview.ErrUnknownVoice, apiError{http.StatusBadRequest, "unknown_voice", "Unknown voice."}},
	{interview.ErrNoQuestions, apiError{http.StatusBadGateway, "no_questions", "No interview questions were generated. Try again."}},

	{service.ErrNoTargetJob, apiError{http.StatusConflict, "no_target_job", "Select a target job first."}},
	{interview.ErrStaleAnswer, apiError{http.StatusConflict, "stale_answer", "That question has already been answered."}},
	{interview.ErrComplete, apiError{http.StatusConflict, "interview_complete", "The interview is already complete."}},
	{interview.ErrNotComplete, apiError{http.StatusConflict, "interview_incomplete", "Answer every question first."}},
	{workspace.ErrNoCoverLetter, apiError{http.StatusConflict, "no_cover_letter", "Generate a cover letter first."}},
	{workspace.ErrNoInterview, apiError{http.StatusConflict, "no_interview", "Start an interview first."}},
}

func classify(err error, fallback int) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			return e.api
		}
	}
	if fallback == http.StatusBadGateway {
		return apiError{fallback, "llm_error", "The AI service returned an error. Try again."}
	}
	return apiError{fallback, "internal", "Internal error"}
}

// respondError logs err and writes the matching JSON error. fallback is the
// status for errors with no specific mapping.
func respondError(c *gin.Context, err error, fallback int) {
	api := classify(err, fallback)

	event := log.Warn()
	if api.status >= 500 {
		event = log.Error()
	}
	event.Err(err).Str("code", api.code).Str("path", c.FullPath()).Msg("Request failed")

	c.JSON(api.status, gin.H{"error": api.message, "code": api.code})
}

// badRequest writes a 400 for malformed input.
func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": "bad_request"})
}
