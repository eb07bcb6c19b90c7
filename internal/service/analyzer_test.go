package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/careerops-api/internal/model"
)

var testJobs = []model.Job{
	{ID: "1", Title: "Senior Software Engineer", Company: "TechCorp", Requirements: []string{"Go"}},
	{ID: "2", Title: "Data Scientist", Company: "AI Innovations", Requirements: []string{"Python", "SQL"}},
	{ID: "3", Title: "Product Manager", Company: "StartupXYZ"},
}

func TestAnalyzer_ClampsScores(t *testing.T) {
	fake := newFakeLLM().on("analyze", `{
		"overallScore": 130,
		"categoryScores": {"experience": 80, "skills": -10, "education": 50, "presentation": 70, "impact": 101},
		"strengths": [{"title": "Clear", "description": "Well organized"}],
		"quickWins": ["Add metrics"],
		"summary": "Solid."
	}`)
	a := NewAnalyzer(fake)
	a.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	got, err := a.Analyze(context.Background(), "Jane Doe\nSKILLS\n- Go")
	require.NoError(t, err)
	assert.Equal(t, 100, got.OverallScore)
	assert.Equal(t, 0, got.CategoryScores.Skills)
	assert.Equal(t, 100, got.CategoryScores.Impact)
	assert.Equal(t, 80, got.CategoryScores.Experience)
	assert.Equal(t, "Clear", got.Strengths[0].Title)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), got.AnalyzedAt)

	_, err = a.Analyze(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyResume)
}

func TestMatcher_JoinsCatalogAndSorts(t *testing.T) {
	fake := newFakeLLM().on("match", `{
		"matches": [
			{"jobId": "3", "matchScore": 60, "matchReasons": ["Leadership"]},
			{"jobId": "99", "matchScore": 95},
			{"jobId": "2", "matchScore": 88, "gaps": ["No TensorFlow"]},
			{"jobId": "1", "matchScore": 60},
			{"jobId": "2", "matchScore": 10}
		],
		"candidateSummary": "Strong analyst",
		"recommendedFocus": "Data roles"
	}`)

	got, err := NewMatcher(fake).Match(context.Background(), "resume text", testJobs)
	require.NoError(t, err)

	require.Len(t, got.Matches, 3)
	assert.Equal(t, "2", got.Matches[0].ID)
	assert.Equal(t, "Data Scientist", got.Matches[0].Title)
	assert.Equal(t, []string{"No TensorFlow"}, got.Matches[0].Gaps)
	// Ties keep the model's order.
	assert.Equal(t, "3", got.Matches[1].ID)
	assert.Equal(t, "1", got.Matches[2].ID)
	assert.Equal(t, "Strong analyst", got.CandidateSummary)

	prompt := fake.last().Messages[0].Content
	assert.Contains(t, prompt, "id: 2")
	assert.Contains(t, prompt, "AI Innovations")
}

func TestMatcher_NoJobs(t *testing.T) {
	fake := newFakeLLM()
	got, err := NewMatcher(fake).Match(context.Background(), "resume", nil)
	require.NoError(t, err)
	assert.Empty(t, got.Matches)
	assert.Empty(t, fake.requests)
}

func TestPipeline_RunsBoth(t *testing.T) {
	fake := newFakeLLM().
		on("analyze", `{"overallScore": 70}`).
		on("match", `{"matches": [{"jobId": "1", "matchScore": 50}]}`)
	p := NewPipeline(NewAnalyzer(fake), NewMatcher(fake))

	got, err := p.Run(context.Background(), "resume", testJobs)
	require.NoError(t, err)
	assert.Equal(t, 70, got.Analysis.OverallScore)
	require.Len(t, got.Matches.Matches, 1)
	assert.Equal(t, "TechCorp", got.Matches.Matches[0].Company)
}

func TestPipeline_FailureWins(t *testing.T) {
	boom := errors.New("provider down")
	fake := newFakeLLM().
		on("analyze", `{"overallScore": 70}`).
		fail("match", boom)
	p := NewPipeline(NewAnalyzer(fake), NewMatcher(fake))

	_, err := p.Run(context.Background(), "resume", testJobs)
	assert.ErrorIs(t, err, boom)
}
