// Package workspace holds the live per-user state built around an uploaded
// resume: its edit session, chat, analysis, job matches, target job, mock
// interview and cover letter.
package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourusername/careerops-api/internal/editor"
	"github.com/yourusername/careerops-api/internal/interview"
	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/model"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrNoCoverLetter = errors.New("no cover letter yet")
	ErrNoInterview   = errors.New("no interview in progress")
	ErrEmptyDocument = errors.New("document is empty")
)

// SnapshotVersion tags the persisted layout.
const SnapshotVersion = 1

// Seed is what a new workspace starts from.
type Seed struct {
	Filename  string
	FileMD5   string
	UploadKey string
	Text      string
	Resume    *model.Resume
}

// Snapshot is the persisted form of a workspace. The mock interview is not
// persisted.
type Snapshot struct {
	Version     int                `json:"version"`
	Filename    string             `json:"filename"`
	FileMD5     string             `json:"fileMd5"`
	UploadKey   string             `json:"uploadKey,omitempty"`
	Parsed      *model.Resume      `json:"parsed,omitempty"`
	Resume      editor.Snapshot    `json:"resume"`
	Chat        []llm.Message      `json:"chat,omitempty"`
	Analysis    *model.Analysis    `json:"analysis,omitempty"`
	Matches     *model.MatchResult `json:"matches,omitempty"`
	Target      *model.TargetJob   `json:"target,omitempty"`
	CoverLetter *editor.Snapshot   `json:"coverLetter,omitempty"`
	LetterChat  []llm.Message      `json:"letterChat,omitempty"`
}

// Summary is the overview returned for a session.
type Summary struct {
	ID             string           `json:"id"`
	Filename       string           `json:"filename"`
	CreatedAt      time.Time        `json:"createdAt"`
	LastAccess     time.Time        `json:"lastAccess"`
	Cursor         int              `json:"cursor"`
	Edits          int              `json:"edits"`
	Busy           bool             `json:"busy"`
	HasAnalysis    bool             `json:"hasAnalysis"`
	HasMatches     bool             `json:"hasMatches"`
	Target         *model.TargetJob `json:"target,omitempty"`
	HasCoverLetter bool             `json:"hasCoverLetter"`
	HasInterview   bool             `json:"hasInterview"`
}

// Workspace is safe for concurrent use. The resume edit session enforces
// its own single-flight rule; the fields here are guarded by mu.
type Workspace struct {
	ID        string
	OwnerID   string
	Filename  string
	FileMD5   string
	UploadKey string
	CreatedAt time.Time

	resume *editor.Session
	chat   *Timeline
	parsed *model.Resume

	newLetter func(doc editor.Document, chat *Timeline) *editor.Session
	now       func() time.Time

	mu         sync.RWMutex
	lastAccess time.Time
	analysis   *model.Analysis
	matches    *model.MatchResult
	target     *model.TargetJob
	interview  *interview.Interview
	letter     *editor.Session
	letterChat *Timeline
}

// Document returns the visible resume.
func (w *Workspace) Document() editor.Document { return w.resume.Current() }

// Resume exposes the resume edit session.
func (w *Workspace) Resume() *editor.Session { return w.resume }

// Chat is the resume edit conversation.
func (w *Workspace) Chat() *Timeline { return w.chat }

// Parsed is the structured resume extracted at upload.
func (w *Workspace) Parsed() *model.Resume { return w.parsed }

// ApplyEdit runs an instruction against the resume. An empty jobContext
// falls back to the target job.
func (w *Workspace) ApplyEdit(ctx context.Context, instruction, jobContext string) (*editor.Result, error) {
	if jobContext == "" {
		jobContext = w.JobContext()
	}
	res, err := w.resume.ApplyInstruction(ctx, instruction, jobContext)
	if err != nil {
		return nil, err
	}
	w.chat.Exchange(instruction, replyText(res))
	return res, nil
}

func replyText(res *editor.Result) string {
	if res.Record != nil && res.Record.Summary != "" {
		return res.Record.Summary
	}
	return "Done."
}

// JobContext renders the target job for prompts, or "" without one.
func (w *Workspace) JobContext() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.target.Context()
}

func (w *Workspace) Target() *model.TargetJob {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.target
}

// SetTarget replaces the target job. nil clears it.
func (w *Workspace) SetTarget(t *model.TargetJob) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.target = t
}

func (w *Workspace) Analysis() *model.Analysis {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.analysis
}

func (w *Workspace) SetAnalysis(a *model.Analysis) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.analysis = a
}

func (w *Workspace) Matches() *model.MatchResult {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.matches
}

func (w *Workspace) SetMatches(m *model.MatchResult) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.matches = m
}

// Interview returns the interview in progress.
func (w *Workspace) Interview() (*interview.Interview, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.interview == nil {
		return nil, ErrNoInterview
	}
	return w.interview, nil
}

// StartInterview replaces any previous interview.
func (w *Workspace) StartInterview(questions []interview.Question) (*interview.Interview, error) {
	iv, err := interview.New(questions, w.now)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.interview = iv
	return iv, nil
}

// CoverLetter returns the cover letter edit session.
func (w *Workspace) CoverLetter() (*editor.Session, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.letter == nil {
		return nil, ErrNoCoverLetter
	}
	return w.letter, nil
}

// SetCoverLetter starts a fresh edit session for a newly generated letter.
// The previous letter's history is discarded.
func (w *Workspace) SetCoverLetter(text string) *editor.Session {
	chat := NewTimeline(nil)
	s := w.newLetter(editor.NewDocument(w.ID+"-cover-letter", text), chat)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.letter = s
	w.letterChat = chat
	return s
}

// ApplyLetterEdit runs an instruction against the cover letter.
func (w *Workspace) ApplyLetterEdit(ctx context.Context, instruction string) (*editor.Result, error) {
	w.mu.RLock()
	s, chat := w.letter, w.letterChat
	w.mu.RUnlock()
	if s == nil {
		return nil, ErrNoCoverLetter
	}
	res, err := s.ApplyInstruction(ctx, instruction, w.JobContext())
	if err != nil {
		return nil, err
	}
	chat.Exchange(instruction, replyText(res))
	return res, nil
}

// LetterChat is the cover letter edit conversation.
func (w *Workspace) LetterChat() *Timeline {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.letterChat
}

// Snapshot copies everything that survives a save.
func (w *Workspace) Snapshot() Snapshot {
	snap := Snapshot{
		Version:   SnapshotVersion,
		Filename:  w.Filename,
		FileMD5:   w.FileMD5,
		UploadKey: w.UploadKey,
		Parsed:    w.parsed,
		Resume:    w.resume.Snapshot(),
		Chat:      w.chat.All(),
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	snap.Analysis = w.analysis
	snap.Matches = w.matches
	snap.Target = w.target
	if w.letter != nil {
		ls := w.letter.Snapshot()
		snap.CoverLetter = &ls
		snap.LetterChat = w.letterChat.All()
	}
	return snap
}

// Summary describes the workspace.
func (w *Workspace) Summary() Summary {
	records, cursor := w.resume.Records()

	w.mu.RLock()
	defer w.mu.RUnlock()
	return Summary{
		ID:             w.ID,
		Filename:       w.Filename,
		CreatedAt:      w.CreatedAt,
		LastAccess:     w.lastAccess,
		Cursor:         cursor,
		Edits:          len(records),
		Busy:           w.resume.Busy(),
		HasAnalysis:    w.analysis != nil,
		HasMatches:     w.matches != nil,
		Target:         w.target,
		HasCoverLetter: w.letter != nil,
		HasInterview:   w.interview != nil,
	}
}

func (w *Workspace) touch(at time.Time) {
	w.mu.Lock()
	w.lastAccess = at
	w.mu.Unlock()
}

// idleSince reports whether the workspace has gone unused since cutoff. A
// workspace with an edit in flight is never idle.
func (w *Workspace) idleSince(cutoff time.Time) bool {
	if w.resume.Busy() {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.letter != nil && w.letter.Busy() {
		return false
	}
	return w.lastAccess.Before(cutoff)
}
