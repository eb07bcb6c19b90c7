package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/careerops-api/internal/editor"
	"github.com/yourusername/careerops-api/internal/llm"
)

const (
	ReplyEdit       = "edit"
	ReplySuggestion = "suggestion"
	ReplyChat       = "chat"

	// historyTurns is how many earlier chat messages accompany an instruction.
	historyTurns = 2
)

// Conversation supplies the recent chat turns of a session.
type Conversation interface {
	Recent(n int) []llm.Message
}

// ReplyError is returned by an interpreter when the model answered with
// advice or a clarifying question instead of an edit. The document is not
// changed.
type ReplyError struct {
	Kind        string
	Message     string
	Suggestions []string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("model replied with %s instead of an edit: %s", e.Kind, e.Message)
}

const resumeEditPrompt = `You are "CareerOps", a resume editing assistant with full control over the resume text.

The resume is plain text. Section headers are upper-case lines (SUMMARY, SKILLS, EXPERIENCE, PROJECTS, EDUCATION). List items start with "- ".
You may edit any line, add new sections (CERTIFICATIONS, AWARDS, LANGUAGES, ...), remove sections or reorder them.

Respond with ONLY a JSON object in one of these forms:

1. For any edit (modify, add, delete, reorder, restructure):
   {"type": "edit", "document": "<the COMPLETE updated resume text>", "message": "What changed"}
   - Return the COMPLETE resume, not just the changed part.
   - Copy unchanged lines EXACTLY, character by character.
   - Keep ALL bullet points. Do not summarize or shorten bullets unless asked.
   - Keep the same header and list conventions.

2. For advice or suggestions:
   {"type": "suggestion", "suggestions": ["Suggestion 1", "Suggestion 2"], "message": "Here are my suggestions:"}

3. If the request is unclear:
   {"type": "chat", "message": "Could you clarify..."}

"type" MUST be exactly "edit", "suggestion" or "chat".`

const coverLetterEditPrompt = `You are "CareerOps", a cover letter editing assistant.

Respond with ONLY a JSON object in one of these forms:

1. For any edit (rewrite, rephrase, expand, shorten, change tone):
   {"type": "edit", "document": "<the COMPLETE updated cover letter>", "message": "What changed"}
   - Return the COMPLETE letter, not just the changed part.
   - Only modify what the user asked for. Keep the rest unchanged.
   - Reference real experience from the resume. Do NOT fabricate.

2. For advice or suggestions:
   {"type": "suggestion", "suggestions": ["Suggestion 1", "Suggestion 2"], "message": "Here are my suggestions:"}

3. If the request is unclear:
   {"type": "chat", "message": "Could you clarify..."}

"type" MUST be exactly "edit", "suggestion" or "chat".`

type editReply struct {
	Type        string   `json:"type"`
	Document    string   `json:"document"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// normalize repairs replies whose type disagrees with their payload.
func (r *editReply) normalize() {
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Document != "" && r.Type != ReplyEdit && r.Type != ReplySuggestion {
		r.Type = ReplyEdit
	}
	if len(r.Suggestions) > 0 && r.Type != ReplySuggestion && r.Document == "" {
		r.Type = ReplySuggestion
	}
}

// EditInterpreter turns instructions into full-document rewrites through a
// language model. It implements editor.Interpreter.
type EditInterpreter struct {
	llm       llm.Completer
	conv      Conversation
	system    string
	label     string
	operation string
	reference func() string
}

// NewResumeInterpreter edits resume text.
func NewResumeInterpreter(c llm.Completer, conv Conversation) *EditInterpreter {
	return &EditInterpreter{
		llm:       c,
		conv:      conv,
		system:    resumeEditPrompt,
		label:     "CURRENT RESUME",
		operation: "edit_resume",
	}
}

// NewCoverLetterInterpreter edits a cover letter. resume supplies the current
// resume text as reference material.
func NewCoverLetterInterpreter(c llm.Completer, conv Conversation, resume func() string) *EditInterpreter {
	return &EditInterpreter{
		llm:       c,
		conv:      conv,
		system:    coverLetterEditPrompt,
		label:     "CURRENT COVER LETTER",
		operation: "edit_cover_letter",
		reference: resume,
	}
}

func (ei *EditInterpreter) ProposeEdit(ctx context.Context, req editor.Request) (editor.Proposal, error) {
	var sys strings.Builder
	sys.WriteString(ei.system)
	fmt.Fprintf(&sys, "\n\n%s:\n%s", ei.label, req.Text)
	if ei.reference != nil {
		if ref := strings.TrimSpace(ei.reference()); ref != "" {
			fmt.Fprintf(&sys, "\n\nCANDIDATE'S RESUME (reference only, use real experience):\n%s", ref)
		}
	}
	if jc := strings.TrimSpace(req.JobContext); jc != "" {
		fmt.Fprintf(&sys, "\n\nTARGET JOB (tailor for this position):\n%s", jc)
	}

	var messages []llm.Message
	if ei.conv != nil {
		messages = append(messages, ei.conv.Recent(historyTurns)...)
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: req.Instruction})

	var reply editReply
	_, err := llm.CompleteJSON(ctx, ei.llm, llm.Request{
		Operation: ei.operation,
		System:    sys.String(),
		Messages:  messages,
		MaxTokens: 4000,
	}, &reply)
	if err != nil {
		return editor.Proposal{}, err
	}

	reply.normalize()
	switch reply.Type {
	case ReplyEdit:
		if strings.TrimSpace(reply.Document) == "" {
			return editor.Proposal{}, fmt.Errorf("edit reply without a document: %w", llm.ErrEmptyResponse)
		}
		return editor.Proposal{Text: withTrailingNewline(reply.Document, req.Text), Summary: reply.Message}, nil
	case ReplySuggestion, ReplyChat:
		return editor.Proposal{}, &ReplyError{Kind: reply.Type, Message: reply.Message, Suggestions: reply.Suggestions}
	default:
		return editor.Proposal{}, fmt.Errorf("unknown reply type %q", reply.Type)
	}
}

// withTrailingNewline makes the proposal end the way the current document
// does, so a lone missing newline does not show up as an edit.
func withTrailingNewline(proposed, current string) string {
	proposed = strings.ReplaceAll(proposed, "\r\n", "\n")
	if strings.HasSuffix(current, "\n") && !strings.HasSuffix(proposed, "\n") {
		return proposed + "\n"
	}
	return proposed
}
