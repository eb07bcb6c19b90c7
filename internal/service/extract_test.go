package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/careerops-api/internal/llm"
)

const parsedResumeJSON = `{
  "name": "Jane Doe",
  "role": "Data Analyst",
  "contact": ["jane@example.com"],
  "skills": {"Languages": ["Python"]},
  "summary": "Analyst with five years of experience.",
  "experience": [{"company": "Acme", "role": "Analyst", "date": "2020 - Present", "bullets": ["Built dashboards"]}],
  "projects": [],
  "education": []
}`

func TestIsScanned(t *testing.T) {
	assert.True(t, IsScanned(""))
	assert.True(t, IsScanned("   short text   "))
	assert.True(t, IsScanned(strings.Repeat("x", 150)), "long but only one word")

	body := strings.Repeat("experienced engineer building systems ", 10)
	assert.False(t, IsScanned(body))
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, MIMEPDF, DetectMIME("resume.PDF", "application/octet-stream"))
	assert.Equal(t, MIMEDOCX, DetectMIME("resume.docx", ""))
	assert.Equal(t, "image/png", DetectMIME("scan.png", ""))
	assert.Equal(t, MIMEPlain, DetectMIME("upload", "text/plain; charset=utf-8"))
	assert.Equal(t, "", DetectMIME("upload", ""))
}

func TestExtractText(t *testing.T) {
	text, err := ExtractText([]byte("hello"), MIMEPlain)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, err = ExtractText([]byte("x"), "application/zip")
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = ExtractText([]byte("not a pdf"), MIMEPDF)
	assert.Error(t, err)
}

func TestStripDocxXML(t *testing.T) {
	raw := `<w:document xmlns:w="w"><w:body>` +
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Skills: </w:t></w:r><w:r><w:t>Go</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	assert.Equal(t, "Jane Doe\nSkills: Go", stripDocxXML(raw))
}

func TestResumeParser_FromText(t *testing.T) {
	fake := newFakeLLM().on("parse_resume", "```json\n"+parsedResumeJSON+"\n```")
	p := NewResumeParser(fake, nil)

	in, err := p.FromText(context.Background(), "Jane Doe\nData Analyst ...")
	require.NoError(t, err)
	assert.Equal(t, IntakeMethodText, in.Method)
	assert.Equal(t, "Jane Doe", in.Resume.Name)
	assert.Equal(t, "Python", in.Resume.Skills["Languages"])
	assert.Contains(t, in.Text, "SKILLS\n- Languages: Python")
	assert.Contains(t, in.Text, "Analyst, Acme (2020 - Present)\n- Built dashboards")

	_, err = p.FromText(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyResume)
}

func TestResumeParser_EmptyParseIsRejected(t *testing.T) {
	fake := newFakeLLM().on("parse_resume", `{}`)
	_, err := NewResumeParser(fake, nil).FromText(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrEmptyResume)
}

func TestResumeParser_ImagesNeedVision(t *testing.T) {
	up := Upload{Filename: "scan.png", Data: []byte{0x89, 'P', 'N', 'G'}}

	_, err := NewResumeParser(newFakeLLM(), nil).FromUpload(context.Background(), up)
	assert.ErrorIs(t, err, llm.ErrNotConfigured)

	vision := &fakeVision{reply: parsedResumeJSON}
	in, err := NewResumeParser(newFakeLLM(), vision).FromUpload(context.Background(), up)
	require.NoError(t, err)
	assert.Equal(t, IntakeMethodVision, in.Method)
	assert.Equal(t, "Jane Doe", in.Resume.Name)
	require.Len(t, vision.files, 1)
	assert.Equal(t, "image/png", vision.files[0].MIMEType)
}

func TestResumeParser_PlainTextUpload(t *testing.T) {
	fake := newFakeLLM().on("parse_resume", parsedResumeJSON)
	in, err := NewResumeParser(fake, nil).FromUpload(context.Background(), Upload{
		Filename: "resume.txt",
		Data:     []byte("Jane Doe, Data Analyst"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe, Data Analyst", in.RawText)
	assert.Contains(t, fake.last().Messages[0].Content, "Jane Doe, Data Analyst")
}
