package interview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

func questions() []Question {
	return []Question{
		{Text: "Tell me about a project you led.", Type: "behavioral", Difficulty: "easy"},
		{Text: "How would you shard a Postgres table?", Type: "technical", Difficulty: "hard"},
	}
}

func TestNew_DropsBlankQuestions(t *testing.T) {
	_, err := New([]Question{{Text: "  "}}, fixedNow)
	assert.ErrorIs(t, err, ErrNoQuestions)

	iv, err := New(append(questions(), Question{Text: ""}), fixedNow)
	require.NoError(t, err)
	assert.Len(t, iv.State().Questions, 2)
}

func TestInterview_Progression(t *testing.T) {
	iv, err := New(questions(), fixedNow)
	require.NoError(t, err)

	q, idx, err := iv.Current()
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "Tell me about a project you led.", q.Text)

	turn, err := iv.Record(0, " I led the billing rewrite. ", Evaluation{Score: 7})
	require.NoError(t, err)
	assert.Equal(t, "I led the billing rewrite.", turn.Answer)
	assert.Equal(t, fixedNow(), turn.AnsweredAt)
	assert.False(t, iv.Complete())

	_, err = iv.Record(0, "again", Evaluation{Score: 5})
	assert.ErrorIs(t, err, ErrStaleAnswer)

	_, err = iv.Record(1, "By tenant id with a routing table.", Evaluation{Score: 9})
	require.NoError(t, err)
	assert.True(t, iv.Complete())
	assert.InDelta(t, 8.0, iv.AverageScore(), 0.001)

	_, _, err = iv.Current()
	assert.ErrorIs(t, err, ErrComplete)
	_, err = iv.Record(2, "extra", Evaluation{})
	assert.ErrorIs(t, err, ErrComplete)
}

func TestRecord_RejectsEmptyAnswer(t *testing.T) {
	iv, err := New(questions(), fixedNow)
	require.NoError(t, err)

	_, err = iv.Record(0, "   ", Evaluation{Score: 5})
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.Empty(t, iv.Turns())
}

func TestRecord_ClampsScores(t *testing.T) {
	iv, err := New(questions(), fixedNow)
	require.NoError(t, err)

	turn, err := iv.Record(0, "answer", Evaluation{Score: 14, Breakdown: ScoreBreakdown{Relevance: 0, Depth: -3, Structure: 11, Authenticity: 6}})
	require.NoError(t, err)

	assert.Equal(t, 10, turn.Evaluation.Score)
	assert.Equal(t, ScoreBreakdown{Relevance: 1, Depth: 1, Structure: 10, Authenticity: 6}, turn.Evaluation.Breakdown)
}

func TestSetSummary_RequiresCompletion(t *testing.T) {
	iv, err := New(questions()[:1], fixedNow)
	require.NoError(t, err)

	assert.ErrorIs(t, iv.SetSummary(Summary{ReadinessLevel: "Ready"}), ErrNotComplete)

	_, err = iv.Record(0, "answer", Evaluation{Score: 8})
	require.NoError(t, err)
	require.NoError(t, iv.SetSummary(Summary{ReadinessLevel: "Ready"}))

	st := iv.State()
	assert.True(t, st.Complete)
	require.NotNil(t, st.Summary)
	assert.Equal(t, "Ready", st.Summary.ReadinessLevel)
}

func TestValidVoice(t *testing.T) {
	assert.True(t, ValidVoice("nova"))
	assert.False(t, ValidVoice("robot"))
}
