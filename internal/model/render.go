package model

import (
	"fmt"
	"strings"
)

// Text renders the resume as the canonical plain-text document that edit
// sessions operate on. Section headers are upper-case lines; list items
// start with "- ".
func (r Resume) Text() string {
	var blocks []string

	var head []string
	if r.Name != "" {
		head = append(head, r.Name)
	}
	if r.Role != "" {
		head = append(head, r.Role)
	}
	if len(r.Contact) > 0 {
		head = append(head, strings.Join(r.Contact, " | "))
	}
	if len(head) > 0 {
		blocks = append(blocks, strings.Join(head, "\n"))
	}

	if s := strings.TrimSpace(r.Summary); s != "" {
		blocks = append(blocks, "SUMMARY\n"+s)
	}

	if len(r.Skills) > 0 {
		lines := []string{"SKILLS"}
		for _, cat := range r.Skills.Categories() {
			lines = append(lines, fmt.Sprintf("- %s: %s", cat, r.Skills[cat]))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	if len(r.Experience) > 0 {
		lines := []string{"EXPERIENCE"}
		for _, e := range r.Experience {
			lines = append(lines, entryLine(joinNonEmpty(", ", e.Role, e.Company), e.Date))
			lines = append(lines, bullets(e.Bullets)...)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	if len(r.Projects) > 0 {
		lines := []string{"PROJECTS"}
		for _, p := range r.Projects {
			lines = append(lines, entryLine(p.Name, p.Tech))
			lines = append(lines, bullets(p.Bullets)...)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	if len(r.Education) > 0 {
		lines := []string{"EDUCATION"}
		for _, e := range r.Education {
			lines = append(lines, entryLine(joinNonEmpty(", ", e.Degree, e.School), e.Date))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	return strings.Join(blocks, "\n\n") + "\n"
}

func entryLine(title, detail string) string {
	if detail == "" {
		return title
	}
	return fmt.Sprintf("%s (%s)", title, detail)
}

func bullets(items []string) []string {
	out := make([]string, 0, len(items))
	for _, b := range items {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, "- "+b)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
