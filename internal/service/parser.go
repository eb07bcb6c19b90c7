package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/model"
)

// ErrEmptyResume is returned when nothing usable could be read from an upload.
var ErrEmptyResume = errors.New("no resume content found")

const (
	IntakeMethodText   = "text"
	IntakeMethodVision = "vision_ocr"

	maxResumeChars = 30000
)

const resumeSchema = `{
  "name": "Full Name",
  "role": "Job Title",
  "contact": ["Email", "Phone", "Link"],
  "skills": {"Category": "Item, Item"},
  "summary": "Full summary text",
  "experience": [{"company": "Name", "role": "Title", "date": "Date", "bullets": ["Detail"]}],
  "projects": [{"name": "Project Name", "tech": "Stack", "bullets": ["Detail"]}],
  "education": [{"school": "Name", "degree": "Degree", "date": "Date"}]
}`

const parseResumePrompt = `You are a resume parser. Extract ALL resume data from the raw text into JSON.

Schema:
` + resumeSchema + `

Rules:
- Extract every bullet point completely. Do not summarize.
- Extract projects if present.
- Use empty strings or empty arrays for anything missing. Don't invent data.`

const ocrResumePrompt = `You are a resume parser. Read this resume and extract ALL information into structured JSON.

- Extract EVERY bullet point completely. Do not summarize.
- Include ALL contact information (email, phone, links).
- Capture ALL skills mentioned.
- Extract complete work experience with dates and bullets.

Return ONLY a JSON object in this exact schema:
` + resumeSchema

// Upload is a file as received from the client.
type Upload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Intake is the outcome of reading an upload: the structured resume and the
// canonical text that becomes the session's original document.
type Intake struct {
	Resume  *model.Resume
	Text    string
	RawText string
	Method  string
}

type ResumeParser struct {
	llm    llm.Completer
	vision llm.Vision
}

// NewResumeParser builds a parser. vision may be nil, in which case scanned
// PDFs and images are rejected.
func NewResumeParser(c llm.Completer, v llm.Vision) *ResumeParser {
	return &ResumeParser{llm: c, vision: v}
}

// FromUpload extracts, parses and renders an uploaded file. Text PDFs and
// DOCX files are read locally; images and scanned PDFs go to vision OCR.
func (p *ResumeParser) FromUpload(ctx context.Context, up Upload) (*Intake, error) {
	mimeType := DetectMIME(up.Filename, up.MIMEType)

	if IsImage(mimeType) {
		return p.fromVision(ctx, up, mimeType)
	}

	raw, err := ExtractText(up.Data, mimeType)
	if err != nil {
		return nil, err
	}

	if mimeType == MIMEPDF && IsScanned(raw) {
		if p.vision != nil {
			log.Info().Str("filename", up.Filename).Int("textLen", len(strings.TrimSpace(raw))).Msg("PDF looks scanned, using vision OCR")
			return p.fromVision(ctx, up, mimeType)
		}
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("scanned PDF needs OCR: %w", llm.ErrNotConfigured)
		}
	}

	return p.FromText(ctx, raw)
}

// FromText parses pasted or extracted resume text.
func (p *ResumeParser) FromText(ctx context.Context, raw string) (*Intake, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyResume
	}

	resume, err := p.Parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	return newIntake(resume, raw, IntakeMethodText)
}

// Parse asks the model to structure raw resume text.
func (p *ResumeParser) Parse(ctx context.Context, raw string) (*model.Resume, error) {
	if len(raw) > maxResumeChars {
		raw = raw[:maxResumeChars]
	}

	req := llm.UserPrompt("parse_resume", parseResumePrompt, "Raw resume text:\n\n"+raw)
	req.MaxTokens = 4000

	var resume model.Resume
	if _, err := llm.CompleteJSON(ctx, p.llm, req, &resume); err != nil {
		return nil, fmt.Errorf("parsing resume: %w", err)
	}
	return &resume, nil
}

func (p *ResumeParser) fromVision(ctx context.Context, up Upload, mimeType string) (*Intake, error) {
	if p.vision == nil {
		return nil, fmt.Errorf("image upload needs OCR: %w", llm.ErrNotConfigured)
	}

	resp, err := p.vision.Extract(ctx, ocrResumePrompt, []llm.Attachment{{
		Filename: up.Filename,
		MIMEType: mimeType,
		Data:     up.Data,
	}})
	if err != nil {
		return nil, fmt.Errorf("vision OCR: %w", err)
	}

	var resume model.Resume
	if err := llm.DecodeJSON(resp.Text, &resume); err != nil {
		return nil, fmt.Errorf("vision OCR: %w", err)
	}
	return newIntake(&resume, "", IntakeMethodVision)
}

func newIntake(resume *model.Resume, raw, method string) (*Intake, error) {
	text := resume.Text()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResume
	}
	if raw == "" {
		raw = text
	}
	return &Intake{Resume: resume, Text: text, RawText: raw, Method: method}, nil
}
