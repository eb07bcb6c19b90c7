package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/careerops-api/internal/interview"
	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/model"
)

func TestInterviewer_Questions(t *testing.T) {
	fake := newFakeLLM().on("interview_questions", `{"questions": [
		{"question": "Tell me about a time you led a project.", "type": "behavioral", "focusArea": "Leadership", "difficulty": "easy", "goodAnswerHints": ["STAR"]},
		{"question": "How would you design a rate limiter?", "type": "technical", "focusArea": "Systems", "difficulty": "hard"},
		{"question": "Extra question", "type": "technical"}
	]}`)
	iv := NewInterviewer(fake, nil, "")

	target := &model.TargetJob{Title: "Backend Engineer", Company: "Payco", Gaps: []string{"Kafka"}}
	qs, err := iv.Questions(context.Background(), "resume", target, 2)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "Leadership", qs[0].FocusArea)
	assert.Equal(t, []string{"STAR"}, qs[0].GoodAnswerHints)

	prompt := fake.last().Messages[0].Content
	assert.Contains(t, prompt, "Generate exactly 2 questions.")
	assert.Contains(t, prompt, "Known gaps: Kafka")
}

func TestInterviewer_EvaluateClamps(t *testing.T) {
	fake := newFakeLLM().on("interview_evaluate", `{"score": 14, "scoreBreakdown": {"relevance": 0, "depth": 5, "structure": 11, "authenticity": 7}, "verbalFeedback": "Nice."}`)
	iv := NewInterviewer(fake, nil, "nova")

	eval, err := iv.Evaluate(context.Background(), interview.Question{Text: "Why Go?"}, "It is simple.", "resume", nil)
	require.NoError(t, err)
	assert.Equal(t, 10, eval.Score)
	assert.Equal(t, interview.ScoreBreakdown{Relevance: 1, Depth: 5, Structure: 10, Authenticity: 7}, eval.Breakdown)
	assert.Contains(t, fake.last().Messages[0].Content, "General interview")
}

func TestInterviewer_SummarizeUsesAverage(t *testing.T) {
	fake := newFakeLLM().on("interview_summary", `{"overallScore": 9.9, "readinessLevel": "Almost Ready"}`)
	iv := NewInterviewer(fake, nil, "")

	turns := []interview.Turn{
		{Question: interview.Question{Text: "Q1"}, Answer: "A1", Evaluation: interview.Evaluation{Score: 6}},
		{Question: interview.Question{Text: "Q2"}, Answer: "A2", Evaluation: interview.Evaluation{Score: 9}},
	}
	sum, err := iv.Summarize(context.Background(), turns, nil)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, sum.OverallScore, 1e-9)
	assert.Equal(t, "Almost Ready", sum.ReadinessLevel)

	_, err = iv.Summarize(context.Background(), nil, nil)
	assert.ErrorIs(t, err, interview.ErrNotComplete)
}

func TestInterviewer_Speech(t *testing.T) {
	noSpeech := NewInterviewer(newFakeLLM(), nil, "")
	_, err := noSpeech.Speak(context.Background(), "hi", "")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
	_, err = noSpeech.Transcribe(context.Background(), []byte("x"), "a.webm")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	speech := &fakeSpeech{}
	iv := NewInterviewer(newFakeLLM(), speech, "bogus")

	audio, err := iv.Speak(context.Background(), "Question one", "")
	require.NoError(t, err)
	assert.Equal(t, "mp3:Question one", string(audio))
	assert.Equal(t, "alloy", speech.voice)

	_, err = iv.Speak(context.Background(), "Question one", "robot")
	assert.ErrorIs(t, err, interview.ErrUnknownVoice)

	text, err := iv.Transcribe(context.Background(), []byte("my answer"), "a.webm")
	require.NoError(t, err)
	assert.Equal(t, "my answer", text)
}
