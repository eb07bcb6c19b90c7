package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/model"
)

// ErrNoTargetJob is returned by operations that need a target job.
var ErrNoTargetJob = errors.New("no target job selected")

const coverLetterSystemPrompt = `You are "CareerOps", a professional cover letter writer.

Rules:
- Reference REAL experience, skills and achievements from the resume. Do NOT fabricate.
- Use specific examples and metrics from the resume where possible.
- Do NOT include the candidate's address or a date header, just the letter body.
- Write in first person.

Respond with ONLY a JSON object:
{"coverLetter": "the full cover letter text"}`

// CoverLetterRequest describes a letter to write.
type CoverLetterRequest struct {
	ResumeText string
	Target     *model.TargetJob
	// Question is an application question to answer instead of a general letter.
	Question     string
	Instructions string
	// Previous is an earlier version; the new one should differ from it.
	Previous string
}

type CoverLetterWriter struct {
	llm llm.Completer
}

func NewCoverLetterWriter(c llm.Completer) *CoverLetterWriter {
	return &CoverLetterWriter{llm: c}
}

// Generate writes a cover letter for the target job.
func (w *CoverLetterWriter) Generate(ctx context.Context, req CoverLetterRequest) (string, error) {
	if req.Target == nil {
		return "", ErrNoTargetJob
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		return "", ErrEmptyResume
	}

	t := req.Target
	var sb strings.Builder
	fmt.Fprintf(&sb, "CANDIDATE'S RESUME:\n%s\n\n", req.ResumeText)
	fmt.Fprintf(&sb, "TARGET JOB:\n- Title: %s\n- Company: %s\n\n", orDefault(t.Title, "Unknown"), orDefault(t.Company, "Unknown"))
	fmt.Fprintf(&sb, "Requirements:\n%s\n\n", bulletList(t.Requirements, "(none listed)"))
	fmt.Fprintf(&sb, "Job Description:\n%s\n\n", t.Description)
	fmt.Fprintf(&sb, "Why the candidate matches:\n%s\n\n", bulletList(t.MatchReasons, "(none)"))
	fmt.Fprintf(&sb, "Gaps to address:\n%s\n\n", bulletList(t.Gaps, "(none identified)"))
	fmt.Fprintf(&sb, "Tailoring tips:\n%s\n", bulletList(t.TailoringTips, "(none)"))

	if q := strings.TrimSpace(req.Question); q != "" {
		fmt.Fprintf(&sb, "\nAPPLICATION QUESTION:\n%q\n\nWrite a professional answer to this question that reads like a cover letter paragraph: persuasive, specific and tailored to this role. Do NOT start with \"Dear Hiring Manager\".\n", q)
	} else {
		sb.WriteString("\nWrite a general cover letter for this position: an opening that names the role and company, one or two body paragraphs with the most relevant experience, and a closing. 250-400 words. Start with \"Dear Hiring Manager,\".\n")
	}
	if prev := strings.TrimSpace(req.Previous); prev != "" {
		fmt.Fprintf(&sb, "\nPREVIOUS VERSION (write a DIFFERENT version, vary structure, emphasis and wording):\n%s\n", prev)
	}
	if ins := strings.TrimSpace(req.Instructions); ins != "" {
		fmt.Fprintf(&sb, "\nUSER INSTRUCTIONS (follow these closely):\n%s\n", ins)
	}

	temp := 0.8
	llmReq := llm.UserPrompt("cover_letter", coverLetterSystemPrompt, sb.String())
	llmReq.MaxTokens = 2000
	llmReq.Temperature = &temp

	var out struct {
		CoverLetter string `json:"coverLetter"`
	}
	if _, err := llm.CompleteJSON(ctx, w.llm, llmReq, &out); err != nil {
		return "", fmt.Errorf("generating cover letter: %w", err)
	}
	letter := strings.TrimSpace(out.CoverLetter)
	if letter == "" {
		return "", fmt.Errorf("generating cover letter: %w", llm.ErrEmptyResponse)
	}
	return letter + "\n", nil
}

func bulletList(items []string, empty string) string {
	if len(items) == 0 {
		return "- " + empty
	}
	return "- " + strings.Join(items, "\n- ")
}
