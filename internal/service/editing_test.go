package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/careerops-api/internal/editor"
	"github.com/yourusername/careerops-api/internal/llm"
)

func TestResumeInterpreter_Edit(t *testing.T) {
	fake := newFakeLLM().on("edit_resume", `{"type": "edit", "document": "Skills: Python, SQL.", "message": "Added SQL"}`)
	conv := staticConversation{
		{Role: llm.RoleUser, Content: "first"},
		{Role: llm.RoleAssistant, Content: "done"},
		{Role: llm.RoleUser, Content: "second"},
		{Role: llm.RoleAssistant, Content: "done again"},
	}
	interp := NewResumeInterpreter(fake, conv)

	got, err := interp.ProposeEdit(context.Background(), editor.Request{
		Text:        "Skills: Python.",
		Instruction: "Add SQL to my skills",
		JobContext:  "Title: Data Analyst",
	})
	require.NoError(t, err)
	assert.Equal(t, "Skills: Python, SQL.", got.Text)
	assert.Equal(t, "Added SQL", got.Summary)

	req := fake.last()
	assert.Equal(t, "edit_resume", req.Operation)
	assert.True(t, req.JSON)
	assert.Contains(t, req.System, "CURRENT RESUME:\nSkills: Python.")
	assert.Contains(t, req.System, "TARGET JOB (tailor for this position):\nTitle: Data Analyst")
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "second", req.Messages[0].Content)
	assert.Equal(t, "done again", req.Messages[1].Content)
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "Add SQL to my skills"}, req.Messages[2])
}

func TestResumeInterpreter_KeepsTrailingNewline(t *testing.T) {
	fake := newFakeLLM().on("edit_resume", `{"type": "edit", "document": "Skills: Go", "message": "ok"}`)
	got, err := NewResumeInterpreter(fake, nil).ProposeEdit(context.Background(), editor.Request{
		Text:        "Skills: Java\n",
		Instruction: "swap Java for Go",
	})
	require.NoError(t, err)
	assert.Equal(t, "Skills: Go\n", got.Text)
}

func TestResumeInterpreter_Replies(t *testing.T) {
	cases := map[string]string{
		ReplySuggestion: `{"type": "suggestion", "suggestions": ["Quantify impact"], "message": "Here are my suggestions:"}`,
		ReplyChat:       `{"type": "chat", "message": "Which role do you mean?"}`,
	}
	for kind, body := range cases {
		fake := newFakeLLM().on("edit_resume", body)
		_, err := NewResumeInterpreter(fake, nil).ProposeEdit(context.Background(), editor.Request{Text: "x", Instruction: "help"})

		var reply *ReplyError
		require.True(t, errors.As(err, &reply), kind)
		assert.Equal(t, kind, reply.Kind)
	}
}

func TestEditReply_Normalize(t *testing.T) {
	r := editReply{Type: "Update", Document: "new text"}
	r.normalize()
	assert.Equal(t, ReplyEdit, r.Type)

	r = editReply{Type: "chat", Suggestions: []string{"a"}}
	r.normalize()
	assert.Equal(t, ReplySuggestion, r.Type)

	r = editReply{Type: " EDIT "}
	r.normalize()
	assert.Equal(t, ReplyEdit, r.Type)
}

func TestResumeInterpreter_EditWithoutDocument(t *testing.T) {
	fake := newFakeLLM().on("edit_resume", `{"type": "edit", "message": "done"}`)
	_, err := NewResumeInterpreter(fake, nil).ProposeEdit(context.Background(), editor.Request{Text: "x", Instruction: "y"})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestResumeInterpreter_DrivesSession(t *testing.T) {
	fake := newFakeLLM().on("edit_resume", `{"type": "edit", "document": "Skills: Python, SQL.", "message": "Added SQL"}`)
	s := editor.NewSession(editor.NewDocument("doc", "Skills: Python."), NewResumeInterpreter(fake, nil))

	res, err := s.ApplyInstruction(context.Background(), "Add SQL", "")
	require.NoError(t, err)
	assert.Equal(t, []editor.Span{
		{Op: editor.OpEqual, Text: "Skills: Python", Start: 0, End: 14},
		{Op: editor.OpInsert, Text: ", SQL", Start: 14, End: 19},
		{Op: editor.OpEqual, Text: ".", Start: 19, End: 20},
	}, res.Spans)
	assert.Equal(t, "Added SQL", res.Record.Summary)

	fake.on("edit_resume", `{"type": "chat", "message": "Which section?"}`)
	_, err = s.ApplyInstruction(context.Background(), "make it better", "")
	assert.ErrorIs(t, err, editor.ErrInterpreterFailure)
	var reply *ReplyError
	require.True(t, errors.As(err, &reply))
	assert.Equal(t, "Which section?", reply.Message)
	assert.Equal(t, "Skills: Python, SQL.", s.Current().Text)
}

func TestCoverLetterInterpreter_IncludesResume(t *testing.T) {
	fake := newFakeLLM().on("edit_cover_letter", `{"type": "edit", "document": "Dear Hiring Manager,\nShorter.", "message": "Shortened"}`)
	interp := NewCoverLetterInterpreter(fake, nil, func() string { return "Jane Doe\nSKILLS\n- Go" })

	got, err := interp.ProposeEdit(context.Background(), editor.Request{Text: "Dear Hiring Manager,\nLong.", Instruction: "shorten"})
	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager,\nShorter.", got.Text)
	assert.Contains(t, fake.last().System, "CURRENT COVER LETTER:\nDear Hiring Manager,\nLong.")
	assert.Contains(t, fake.last().System, "Jane Doe\nSKILLS\n- Go")
}

func TestAdvisor_Suggest(t *testing.T) {
	fake := newFakeLLM().on("suggest", `{"message": "Some ideas", "suggestions": ["Add metrics", "Trim summary"]}`)
	got, err := NewAdvisor(fake).Suggest(context.Background(), "resume text", "how do I stand out?", "Title: SRE")
	require.NoError(t, err)
	assert.Equal(t, []string{"Add metrics", "Trim summary"}, got.Suggestions)

	prompt := fake.last().Messages[0].Content
	assert.Contains(t, prompt, "Target job:\nTitle: SRE")
	assert.Contains(t, prompt, "The user asks: how do I stand out?")

	_, err = NewAdvisor(fake).Suggest(context.Background(), "", "", "")
	assert.ErrorIs(t, err, ErrEmptyResume)
}
