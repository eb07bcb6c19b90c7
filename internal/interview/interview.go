// Package interview tracks the progress of a mock interview: the generated
// questions, the candidate's answers with their evaluations, and the final
// summary. Question generation and scoring happen elsewhere.
package interview

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrNoQuestions  = errors.New("interview has no questions")
	ErrComplete     = errors.New("interview is already complete")
	ErrNotComplete  = errors.New("interview is not complete")
	ErrEmptyAnswer  = errors.New("answer is empty")
	ErrStaleAnswer  = errors.New("answer does not match the current question")
	ErrUnknownVoice = errors.New("unknown voice")
)

// Voices are the speech voices a question can be read in.
var Voices = []string{"alloy", "echo", "fable", "onyx", "nova", "shimmer"}

// ValidVoice reports whether v is one of Voices.
func ValidVoice(v string) bool {
	for _, known := range Voices {
		if v == known {
			return true
		}
	}
	return false
}

type Question struct {
	Text            string   `json:"question"`
	Type            string   `json:"type"`
	FocusArea       string   `json:"focusArea"`
	Difficulty      string   `json:"difficulty"`
	GoodAnswerHints []string `json:"goodAnswerHints"`
}

type ScoreBreakdown struct {
	Relevance    int `json:"relevance"`
	Depth        int `json:"depth"`
	Structure    int `json:"structure"`
	Authenticity int `json:"authenticity"`
}

type Evaluation struct {
	Score              int            `json:"score"`
	Breakdown          ScoreBreakdown `json:"scoreBreakdown"`
	Strengths          []string       `json:"strengths"`
	Improvements       []string       `json:"improvements"`
	SampleBetterAnswer string         `json:"sampleBetterAnswer"`
	FollowUpTip        string         `json:"followUpTip"`
	VerbalFeedback     string         `json:"verbalFeedback"`
}

// Clamp forces every score into 1..10.
func (e *Evaluation) Clamp() {
	e.Score = clamp(e.Score)
	e.Breakdown.Relevance = clamp(e.Breakdown.Relevance)
	e.Breakdown.Depth = clamp(e.Breakdown.Depth)
	e.Breakdown.Structure = clamp(e.Breakdown.Structure)
	e.Breakdown.Authenticity = clamp(e.Breakdown.Authenticity)
}

type Summary struct {
	OverallScore        float64  `json:"overallScore"`
	OverallAssessment   string   `json:"overallAssessment"`
	TopStrengths        []string `json:"topStrengths"`
	KeyImprovementAreas []string `json:"keyImprovementAreas"`
	ReadinessLevel      string   `json:"readinessLevel"`
	RecommendedActions  []string `json:"recommendedActions"`
	EncouragingMessage  string   `json:"encouragingMessage"`
}

// Turn is one answered question.
type Turn struct {
	Index      int        `json:"index"`
	Question   Question   `json:"question"`
	Answer     string     `json:"answer"`
	Evaluation Evaluation `json:"evaluation"`
	AnsweredAt time.Time  `json:"answeredAt"`
}

// State is a copy of an interview's progress.
type State struct {
	Questions []Question `json:"questions"`
	Turns     []Turn     `json:"turns"`
	Current   int        `json:"current"`
	Complete  bool       `json:"complete"`
	Summary   *Summary   `json:"summary,omitempty"`
	StartedAt time.Time  `json:"startedAt"`
}

// Interview is safe for concurrent use.
type Interview struct {
	mu        sync.Mutex
	questions []Question
	turns     []Turn
	summary   *Summary
	startedAt time.Time
	now       func() time.Time
}

// New starts an interview at the first question.
func New(questions []Question, now func() time.Time) (*Interview, error) {
	var kept []Question
	for _, q := range questions {
		if strings.TrimSpace(q.Text) != "" {
			kept = append(kept, q)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoQuestions
	}
	if now == nil {
		now = time.Now
	}
	return &Interview{questions: kept, startedAt: now().UTC(), now: now}, nil
}

// Current returns the question waiting for an answer and its index.
func (iv *Interview) Current() (Question, int, error) {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	idx := len(iv.turns)
	if idx >= len(iv.questions) {
		return Question{}, idx, ErrComplete
	}
	return iv.questions[idx], idx, nil
}

// Record stores the answer to question index and advances. index must be
// the current question, so two concurrent answers cannot both land.
func (iv *Interview) Record(index int, answer string, eval Evaluation) (Turn, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Turn{}, ErrEmptyAnswer
	}

	iv.mu.Lock()
	defer iv.mu.Unlock()
	if len(iv.turns) >= len(iv.questions) {
		return Turn{}, ErrComplete
	}
	if index != len(iv.turns) {
		return Turn{}, ErrStaleAnswer
	}
	eval.Clamp()
	turn := Turn{
		Index:      index,
		Question:   iv.questions[index],
		Answer:     answer,
		Evaluation: eval,
		AnsweredAt: iv.now().UTC(),
	}
	iv.turns = append(iv.turns, turn)
	return turn, nil
}

// Complete reports whether every question has been answered.
func (iv *Interview) Complete() bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return len(iv.turns) >= len(iv.questions)
}

// Turns returns the answered questions in order.
func (iv *Interview) Turns() []Turn {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return append([]Turn(nil), iv.turns...)
}

// AverageScore is the mean evaluation score, or 0 with no turns.
func (iv *Interview) AverageScore() float64 {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	if len(iv.turns) == 0 {
		return 0
	}
	total := 0
	for _, t := range iv.turns {
		total += t.Evaluation.Score
	}
	return float64(total) / float64(len(iv.turns))
}

// SetSummary stores the final summary. The interview must be complete.
func (iv *Interview) SetSummary(s Summary) error {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	if len(iv.turns) < len(iv.questions) {
		return ErrNotComplete
	}
	iv.summary = &s
	return nil
}

// State copies the interview.
func (iv *Interview) State() State {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	st := State{
		Questions: append([]Question(nil), iv.questions...),
		Turns:     append([]Turn(nil), iv.turns...),
		Current:   len(iv.turns),
		Complete:  len(iv.turns) >= len(iv.questions),
		StartedAt: iv.startedAt,
	}
	if iv.summary != nil {
		s := *iv.summary
		st.Summary = &s
	}
	return st
}

func clamp(v int) int {
	switch {
	case v < 1:
		return 1
	case v > 10:
		return 10
	}
	return v
}
