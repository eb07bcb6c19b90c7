package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/model"
)

const analyzeSystemPrompt = `You are an expert resume analyst. Analyze the resume and provide detailed, constructive feedback.

Respond with ONLY a JSON object:
{
  "overallScore": 72,
  "categoryScores": {"experience": 0, "skills": 0, "education": 0, "presentation": 0, "impact": 0},
  "strengths": [{"title": "Strength", "description": "Detailed explanation"}],
  "weaknesses": [{"title": "Weakness", "description": "Detailed explanation with a suggestion"}],
  "quickWins": ["Specific actionable improvement"],
  "summary": "2-3 sentence overall assessment"
}

Scoring criteria (each 0-100):
- experience: relevance, progression, achievements with metrics
- skills: technical depth, variety, modern in-demand skills
- education: relevance, certifications
- presentation: clarity, organization, readability
- impact: quantified achievements, results-oriented language

Be honest. Every weakness should say exactly what to change.`

const matchSystemPrompt = `You are a career advisor matching candidates to job opportunities.

Analyze the candidate's skills, experience and background, then rank the jobs by fit.

Respond with ONLY a JSON object:
{
  "matches": [
    {
      "jobId": "1",
      "matchScore": 0,
      "matchReasons": ["Reason"],
      "gaps": ["Gap"],
      "tailoringTips": ["Tip to improve the resume for this job"]
    }
  ],
  "candidateSummary": "Brief summary of the candidate's strongest qualifications",
  "recommendedFocus": "What type of role the candidate should focus on"
}

Ranking criteria: skills match, experience level, domain knowledge, growth potential.
matchScore is 0-100. Use the exact job ids given. Include every job.`

type Analyzer struct {
	llm llm.Completer
	now func() time.Time
}

func NewAnalyzer(c llm.Completer) *Analyzer {
	return &Analyzer{llm: c, now: time.Now}
}

// Analyze scores a resume. Scores outside 0..100 are clamped.
func (a *Analyzer) Analyze(ctx context.Context, resumeText string) (*model.Analysis, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrEmptyResume
	}

	req := llm.UserPrompt("analyze", analyzeSystemPrompt, "Analyze this resume and return the JSON:\n\n"+resumeText)
	req.MaxTokens = 2000

	var result model.Analysis
	if _, err := llm.CompleteJSON(ctx, a.llm, req, &result); err != nil {
		return nil, fmt.Errorf("analyzing resume: %w", err)
	}
	result.Clamp()
	result.AnalyzedAt = a.now().UTC()
	return &result, nil
}

type Matcher struct {
	llm llm.Completer
	now func() time.Time
}

func NewMatcher(c llm.Completer) *Matcher {
	return &Matcher{llm: c, now: time.Now}
}

type rawMatch struct {
	JobID         string   `json:"jobId"`
	MatchScore    int      `json:"matchScore"`
	MatchReasons  []string `json:"matchReasons"`
	Gaps          []string `json:"gaps"`
	TailoringTips []string `json:"tailoringTips"`
}

type rawMatchResult struct {
	Matches          []rawMatch `json:"matches"`
	CandidateSummary string     `json:"candidateSummary"`
	RecommendedFocus string     `json:"recommendedFocus"`
}

// Match ranks jobs against the resume. Ids the model invents are dropped,
// duplicates keep their first occurrence, and the result is ordered by score
// with ties kept in the model's order.
func (m *Matcher) Match(ctx context.Context, resumeText string, jobs []model.Job) (*model.MatchResult, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrEmptyResume
	}
	if len(jobs) == 0 {
		return &model.MatchResult{Matches: []model.JobMatch{}, MatchedAt: m.now().UTC()}, nil
	}

	prompt := fmt.Sprintf("CANDIDATE RESUME:\n%s\n\nAVAILABLE JOBS:\n%s", resumeText, formatJobs(jobs))
	req := llm.UserPrompt("match", matchSystemPrompt, prompt)
	req.MaxTokens = 4000

	var raw rawMatchResult
	if _, err := llm.CompleteJSON(ctx, m.llm, req, &raw); err != nil {
		return nil, fmt.Errorf("matching jobs: %w", err)
	}

	return joinMatches(raw, jobs, m.now().UTC()), nil
}

func joinMatches(raw rawMatchResult, jobs []model.Job, at time.Time) *model.MatchResult {
	byID := make(map[string]model.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}

	seen := make(map[string]bool, len(raw.Matches))
	matches := make([]model.JobMatch, 0, len(raw.Matches))
	for _, rm := range raw.Matches {
		id := strings.TrimSpace(rm.JobID)
		job, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		matches = append(matches, model.JobMatch{
			Job:           job,
			MatchScore:    model.ClampScore(rm.MatchScore, 0, 100),
			MatchReasons:  rm.MatchReasons,
			Gaps:          rm.Gaps,
			TailoringTips: rm.TailoringTips,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	return &model.MatchResult{
		Matches:          matches,
		CandidateSummary: raw.CandidateSummary,
		RecommendedFocus: raw.RecommendedFocus,
		MatchedAt:        at,
	}
}

func formatJobs(jobs []model.Job) string {
	var sb strings.Builder
	for _, j := range jobs {
		fmt.Fprintf(&sb, "- id: %s\n  title: %s\n  company: %s\n  location: %s\n  requirements: %s\n  description: %s\n",
			j.ID, j.Title, j.Company, j.Location, strings.Join(j.Requirements, ", "), j.Description)
	}
	return sb.String()
}
