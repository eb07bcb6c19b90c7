package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/careerops-api/internal/interview"
	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/model"
)

const (
	DefaultQuestionCount = 5
	MaxQuestionCount     = 10
)

const questionsSystemPrompt = `You are an expert interviewer. Generate interview questions for the candidate and position below.

The questions must:
1. Test the skills and experience the candidate claims on the resume
2. Dig into the gaps between the resume and the job requirements
3. Mix behavioral (STAR method) and technical questions
4. Progress from easier to harder

Respond with ONLY a JSON object:
{
  "questions": [
    {
      "question": "The full interview question",
      "type": "behavioral or technical",
      "focusArea": "The skill or gap this question tests",
      "difficulty": "easy, medium or hard",
      "goodAnswerHints": ["Key point a strong answer should include"]
    }
  ]
}

Make questions conversational and professional, as a real interviewer would ask them.`

const evaluateSystemPrompt = `You are an expert interviewer evaluating a candidate's answer.

Respond with ONLY a JSON object:
{
  "score": 7,
  "scoreBreakdown": {"relevance": 7, "depth": 7, "structure": 7, "authenticity": 7},
  "strengths": ["Specific thing they did well"],
  "improvements": ["Specific area to improve"],
  "sampleBetterAnswer": "A brief example of a stronger answer (2-3 sentences)",
  "followUpTip": "One actionable tip for similar questions",
  "verbalFeedback": "Natural, encouraging 2-sentence feedback spoken to the candidate"
}

All scores are 1-10. Use the resume to fact-check the answer. Be constructive and honest.`

const summarySystemPrompt = `You are an expert career coach giving a post-interview assessment.

Respond with ONLY a JSON object:
{
  "overallScore": 7.5,
  "overallAssessment": "2-3 sentence summary of the performance",
  "topStrengths": ["Strength shown across answers"],
  "keyImprovementAreas": ["Area to work on"],
  "readinessLevel": "Ready, Almost Ready or Needs Preparation",
  "recommendedActions": ["Specific preparation step"],
  "encouragingMessage": "A motivating closing message"
}`

// Interviewer generates and scores mock interviews. speech may be nil, in
// which case audio questions and spoken answers are unavailable.
type Interviewer struct {
	llm          llm.Completer
	speech       llm.Speech
	defaultVoice string
}

func NewInterviewer(c llm.Completer, speech llm.Speech, defaultVoice string) *Interviewer {
	if !interview.ValidVoice(defaultVoice) {
		defaultVoice = interview.Voices[0]
	}
	return &Interviewer{llm: c, speech: speech, defaultVoice: defaultVoice}
}

// Questions generates n questions for the resume and target job.
func (iv *Interviewer) Questions(ctx context.Context, resumeText string, target *model.TargetJob, n int) ([]interview.Question, error) {
	if n <= 0 {
		n = DefaultQuestionCount
	}
	if n > MaxQuestionCount {
		n = MaxQuestionCount
	}

	prompt := fmt.Sprintf("POSITION:\n%s\n\nCANDIDATE RESUME:\n%s\n\nGenerate exactly %d questions.",
		positionContext(target), resumeText, n)
	req := llm.UserPrompt("interview_questions", questionsSystemPrompt, prompt)
	req.MaxTokens = 3000

	var out struct {
		Questions []interview.Question `json:"questions"`
	}
	if _, err := llm.CompleteJSON(ctx, iv.llm, req, &out); err != nil {
		return nil, fmt.Errorf("generating interview questions: %w", err)
	}
	if len(out.Questions) > n {
		out.Questions = out.Questions[:n]
	}
	return out.Questions, nil
}

// Evaluate scores one answer.
func (iv *Interviewer) Evaluate(ctx context.Context, q interview.Question, answer, resumeText string, target *model.TargetJob) (interview.Evaluation, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "POSITION:\n%s\n\n", positionContext(target))
	fmt.Fprintf(&sb, "INTERVIEW QUESTION:\n%q\n\n", q.Text)
	fmt.Fprintf(&sb, "QUESTION TYPE: %s\nFOCUS AREA: %s\nDIFFICULTY: %s\n\n", orDefault(q.Type, "general"), orDefault(q.FocusArea, "general skills"), orDefault(q.Difficulty, "medium"))
	if len(q.GoodAnswerHints) > 0 {
		fmt.Fprintf(&sb, "WHAT A GOOD ANSWER SHOULD INCLUDE:\n- %s\n\n", strings.Join(q.GoodAnswerHints, "\n- "))
	}
	fmt.Fprintf(&sb, "CANDIDATE'S ANSWER:\n%q\n\nCANDIDATE'S RESUME:\n%s", answer, resumeText)

	req := llm.UserPrompt("interview_evaluate", evaluateSystemPrompt, sb.String())
	req.MaxTokens = 1500

	var eval interview.Evaluation
	if _, err := llm.CompleteJSON(ctx, iv.llm, req, &eval); err != nil {
		return interview.Evaluation{}, fmt.Errorf("evaluating answer: %w", err)
	}
	eval.Clamp()
	return eval, nil
}

// Summarize writes the post-interview assessment. The overall score is the
// computed average, whatever the model says.
func (iv *Interviewer) Summarize(ctx context.Context, turns []interview.Turn, target *model.TargetJob) (interview.Summary, error) {
	if len(turns) == 0 {
		return interview.Summary{}, interview.ErrNotComplete
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "POSITION:\n%s\n\nINTERVIEW PERFORMANCE:\n", positionContext(target))
	total := 0
	for i, t := range turns {
		fmt.Fprintf(&sb, "\nQuestion %d: %s\nAnswer: %s\nScore: %d/10\n", i+1, t.Question.Text, t.Answer, t.Evaluation.Score)
		total += t.Evaluation.Score
	}

	req := llm.UserPrompt("interview_summary", summarySystemPrompt, sb.String())
	req.MaxTokens = 1500

	var summary interview.Summary
	if _, err := llm.CompleteJSON(ctx, iv.llm, req, &summary); err != nil {
		return interview.Summary{}, fmt.Errorf("summarizing interview: %w", err)
	}
	summary.OverallScore = float64(total) / float64(len(turns))
	return summary, nil
}

// Speak renders a question as MP3 audio. An empty voice uses the default.
func (iv *Interviewer) Speak(ctx context.Context, text, voice string) ([]byte, error) {
	if iv.speech == nil {
		return nil, fmt.Errorf("speech: %w", llm.ErrNotConfigured)
	}
	if voice == "" {
		voice = iv.defaultVoice
	}
	if !interview.ValidVoice(voice) {
		return nil, fmt.Errorf("%w: %s", interview.ErrUnknownVoice, voice)
	}
	return iv.speech.Synthesize(ctx, text, voice)
}

// Transcribe converts a spoken answer to text.
func (iv *Interviewer) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if iv.speech == nil {
		return "", fmt.Errorf("transcription: %w", llm.ErrNotConfigured)
	}
	return iv.speech.Transcribe(ctx, audio, filename)
}

func positionContext(target *model.TargetJob) string {
	if target == nil {
		return "General interview (no specific position)"
	}
	return target.Context()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
