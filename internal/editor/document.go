package editor

import (
	"regexp"
	"strings"
)

// PreambleSection names the text that appears before the first header,
// usually the candidate's name and contact line.
const PreambleSection = "Header"

var (
	inlineHeader = regexp.MustCompile(`^([A-Za-z][A-Za-z &/]{1,40}):\s*(.*)$`)
	capsHeader   = regexp.MustCompile(`^[A-Z][A-Z &/]{2,40}$`)
)

// knownSections are the resume headings recognised anywhere in a document,
// lower-cased.
var knownSections = map[string]bool{
	"summary": true, "profile": true, "professional summary": true, "objective": true,
	"about": true, "about me": true, "highlights of qualifications": true,
	"skills": true, "technical skills": true, "core competencies": true,
	"experience": true, "work experience": true, "professional experience": true,
	"employment": true, "employment history": true, "work history": true,
	"education": true, "projects": true, "personal projects": true,
	"certifications": true, "certificates": true, "licenses & certifications": true,
	"awards": true, "honors & awards": true, "achievements": true,
	"publications": true, "languages": true, "interests": true,
	"volunteer": true, "volunteering": true, "volunteer experience": true,
	"courses": true, "training": true, "references": true,
}

func isKnownSection(name string) bool {
	return knownSections[strings.ToLower(strings.Join(strings.Fields(name), " "))]
}

// Document is one version of a resume. Text is canonical and Sections are
// derived from it, so two documents with equal Text are the same version.
type Document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Section is a named block of a document.
type Section struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// NewDocument normalises line endings and returns the document.
func NewDocument(id, text string) Document {
	return Document{ID: id, Text: normalize(text)}
}

func normalize(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

// Sections splits the text on header lines. A header is either a known
// section name followed by a colon, as in "Skills: Go, SQL", or an all-caps
// line such as "EXPERIENCE". Inside the preamble only known names start a
// section, so an all-caps candidate name or title stays in the header.
func (d Document) Sections() []Section {
	var (
		sections []Section
		current  = Section{Name: PreambleSection}
		body     []string
	)
	inPreamble := func() bool { return len(sections) == 0 && current.Name == PreambleSection }
	flush := func() {
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if current.Body != "" || current.Name != PreambleSection {
			sections = append(sections, current)
		}
		body = nil
	}

	for _, line := range strings.Split(d.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := inlineHeader.FindStringSubmatch(trimmed); m != nil && isKnownSection(m[1]) {
			flush()
			current = Section{Name: titleCase(m[1])}
			if m[2] != "" {
				body = append(body, m[2])
			}
			continue
		}
		if capsHeader.MatchString(trimmed) && (isKnownSection(trimmed) || !inPreamble()) {
			flush()
			current = Section{Name: titleCase(trimmed)}
			continue
		}
		body = append(body, line)
	}
	flush()
	return sections
}

// Section returns the named section, matched case-insensitively.
func (d Document) Section(name string) (Section, bool) {
	for _, s := range d.Sections() {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Section{}, false
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if w == "&" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
