package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/careerops-api/internal/llm"
)

const suggestSystemPrompt = `You are "CareerOps", a resume coach. Give advice about the resume below. Do NOT rewrite it.

Respond with ONLY a JSON object:
{
  "message": "One or two sentences introducing the advice",
  "suggestions": ["Specific, actionable suggestion quoting the resume where possible"]
}

Give 3-6 suggestions, most impactful first. If a target job is given, focus on closing the gaps for that role.`

// Suggestions is advice about a document that leaves it unchanged.
type Suggestions struct {
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

type Advisor struct {
	llm llm.Completer
}

func NewAdvisor(c llm.Completer) *Advisor {
	return &Advisor{llm: c}
}

// Suggest returns advice for the resume. question narrows the advice to what
// the user asked about and may be empty.
func (a *Advisor) Suggest(ctx context.Context, resumeText, question, jobContext string) (*Suggestions, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrEmptyResume
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Resume:\n%s", resumeText)
	if jc := strings.TrimSpace(jobContext); jc != "" {
		fmt.Fprintf(&prompt, "\n\nTarget job:\n%s", jc)
	}
	if q := strings.TrimSpace(question); q != "" {
		fmt.Fprintf(&prompt, "\n\nThe user asks: %s", q)
	}

	req := llm.UserPrompt("suggest", suggestSystemPrompt, prompt.String())
	req.MaxTokens = 1500

	var out Suggestions
	if _, err := llm.CompleteJSON(ctx, a.llm, req, &out); err != nil {
		return nil, fmt.Errorf("generating suggestions: %w", err)
	}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}
	return &out, nil
}
