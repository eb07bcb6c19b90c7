package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ── Resume ─────────────────────────────────────────────

type Experience struct {
	Company string   `json:"company"`
	Role    string   `json:"role"`
	Date    string   `json:"date"`
	Bullets []string `json:"bullets"`
}

type Project struct {
	Name    string   `json:"name"`
	Tech    string   `json:"tech"`
	Bullets []string `json:"bullets"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Date   string `json:"date"`
}

// Skills maps a category ("Languages", "Cloud") to its items.
type Skills map[string]string

// UnmarshalJSON accepts {"Cat": "a, b"}, {"Cat": ["a", "b"]} or ["a", "b"].
// Models are not consistent about which shape they return.
func (s *Skills) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = Skills{}
		if len(list) > 0 {
			(*s)["Skills"] = strings.Join(list, ", ")
		}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("skills: %w", err)
	}
	out := Skills{}
	for k, v := range raw {
		var str string
		if err := json.Unmarshal(v, &str); err == nil {
			out[k] = str
			continue
		}
		var items []string
		if err := json.Unmarshal(v, &items); err != nil {
			return fmt.Errorf("skills[%s]: %w", k, err)
		}
		out[k] = strings.Join(items, ", ")
	}
	*s = out
	return nil
}

// Categories returns the category names in a stable order.
func (s Skills) Categories() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resume is the structured form extracted from an upload.
type Resume struct {
	Name       string       `json:"name"`
	Role       string       `json:"role"`
	Contact    []string     `json:"contact"`
	Skills     Skills       `json:"skills"`
	Summary    string       `json:"summary"`
	Experience []Experience `json:"experience"`
	Projects   []Project    `json:"projects"`
	Education  []Education  `json:"education"`
}

// ── Analysis ───────────────────────────────────────────

type CategoryScores struct {
	Experience   int `json:"experience"`
	Skills       int `json:"skills"`
	Education    int `json:"education"`
	Presentation int `json:"presentation"`
	Impact       int `json:"impact"`
}

type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Analysis struct {
	OverallScore   int            `json:"overallScore"`
	CategoryScores CategoryScores `json:"categoryScores"`
	Strengths      []Insight      `json:"strengths"`
	Weaknesses     []Insight      `json:"weaknesses"`
	QuickWins      []string       `json:"quickWins"`
	Summary        string         `json:"summary"`
	AnalyzedAt     time.Time      `json:"analyzedAt"`
}

// Clamp forces every score into 0..100.
func (a *Analysis) Clamp() {
	a.OverallScore = ClampScore(a.OverallScore, 0, 100)
	a.CategoryScores.Experience = ClampScore(a.CategoryScores.Experience, 0, 100)
	a.CategoryScores.Skills = ClampScore(a.CategoryScores.Skills, 0, 100)
	a.CategoryScores.Education = ClampScore(a.CategoryScores.Education, 0, 100)
	a.CategoryScores.Presentation = ClampScore(a.CategoryScores.Presentation, 0, 100)
	a.CategoryScores.Impact = ClampScore(a.CategoryScores.Impact, 0, 100)
}

func ClampScore(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ── Jobs ───────────────────────────────────────────────

// Job is a catalog entry a resume can be matched against.
type Job struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Salary       string   `json:"salary"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Type         string   `json:"type"`
	Category     string   `json:"category"`
}

type JobMatch struct {
	Job
	MatchScore    int      `json:"matchScore"`
	MatchReasons  []string `json:"matchReasons"`
	Gaps          []string `json:"gaps"`
	TailoringTips []string `json:"tailoringTips"`
}

type MatchResult struct {
	Matches          []JobMatch `json:"matches"`
	CandidateSummary string     `json:"candidateSummary"`
	RecommendedFocus string     `json:"recommendedFocus"`
	MatchedAt        time.Time  `json:"matchedAt"`
}

// Find returns the match for a job id.
func (m *MatchResult) Find(jobID string) (JobMatch, bool) {
	if m == nil {
		return JobMatch{}, false
	}
	for _, jm := range m.Matches {
		if jm.ID == jobID {
			return jm, true
		}
	}
	return JobMatch{}, false
}

// TargetJob is the role the user is tailoring for.
type TargetJob struct {
	Source        string   `json:"source"` // catalog, text, url
	JobID         string   `json:"jobId,omitempty"`
	URL           string   `json:"url,omitempty"`
	Title         string   `json:"title"`
	Company       string   `json:"company"`
	Description   string   `json:"description"`
	Requirements  []string `json:"requirements"`
	MatchReasons  []string `json:"matchReasons,omitempty"`
	Gaps          []string `json:"gaps,omitempty"`
	TailoringTips []string `json:"tailoringTips,omitempty"`
}

const (
	TargetSourceCatalog = "catalog"
	TargetSourceText    = "text"
	TargetSourceURL     = "url"
)

// TargetFromMatch builds a target from a catalog job and its match data.
func TargetFromMatch(jm JobMatch) *TargetJob {
	return &TargetJob{
		Source:        TargetSourceCatalog,
		JobID:         jm.ID,
		Title:         jm.Title,
		Company:       jm.Company,
		Description:   jm.Description,
		Requirements:  jm.Requirements,
		MatchReasons:  jm.MatchReasons,
		Gaps:          jm.Gaps,
		TailoringTips: jm.TailoringTips,
	}
}

// Context renders the target as the job-context block given to the model.
func (t *TargetJob) Context() string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", orUnknown(t.Title))
	fmt.Fprintf(&sb, "Company: %s\n", orUnknown(t.Company))
	if len(t.Requirements) > 0 {
		fmt.Fprintf(&sb, "Requirements: %s\n", strings.Join(t.Requirements, ", "))
	}
	if len(t.Gaps) > 0 {
		fmt.Fprintf(&sb, "Known gaps: %s\n", strings.Join(t.Gaps, ", "))
	}
	if t.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", t.Description)
	}
	return strings.TrimSpace(sb.String())
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

// ── Saved sessions ─────────────────────────────────────

// SavedSession is a persisted snapshot of a workspace. State holds the
// JSON-encoded workspace snapshot.
type SavedSession struct {
	ID          uuid.UUID       `json:"id"`
	OwnerID     string          `json:"ownerId"`
	DisplayName string          `json:"displayName"`
	Filename    string          `json:"filename"`
	FileMD5     string          `json:"fileMd5"`
	StorageKey  string          `json:"storageKey,omitempty"`
	State       json.RawMessage `json:"state,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
