package editor

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Request is what an Interpreter receives for one instruction.
type Request struct {
	Text        string
	Instruction string
	JobContext  string
}

// Proposal is the interpreter's answer: the complete new document text and
// an optional human-readable summary of the change.
type Proposal struct {
	Text    string
	Summary string
}

// Interpreter turns a natural-language instruction into a new document.
// Implementations call out to a language model and may take seconds.
type Interpreter interface {
	ProposeEdit(ctx context.Context, req Request) (Proposal, error)
}

// InterpreterFunc adapts a function to the Interpreter interface.
type InterpreterFunc func(ctx context.Context, req Request) (Proposal, error)

func (f InterpreterFunc) ProposeEdit(ctx context.Context, req Request) (Proposal, error) {
	return f(ctx, req)
}

// Result is returned by every mutating operation.
type Result struct {
	Document Document `json:"document"`
	Record   *Record  `json:"record,omitempty"`
	Spans    []Span   `json:"spans"`
	Cursor   int      `json:"cursor"`
	CanUndo  bool     `json:"canUndo"`
	CanRedo  bool     `json:"canRedo"`
}

// Snapshot is a point-in-time copy of a session, suitable for persistence.
type Snapshot struct {
	Original Document `json:"original"`
	Records  []Record `json:"records"`
	Cursor   int      `json:"cursor"`
}

// Session owns one document and its edit history. All methods are safe for
// concurrent use. At most one ApplyInstruction runs at a time; while it is
// outstanding, Undo, Redo and further ApplyInstruction calls fail with
// ErrSessionBusy and reads return the pre-edit document.
type Session struct {
	interp      Interpreter
	granularity Granularity
	now         func() time.Time
	newID       func() string

	mu       sync.Mutex
	original Document
	history  History
	busy     bool
}

// Option configures a Session.
type Option func(*Session)

// WithGranularity sets the diff granularity used for results.
func WithGranularity(g Granularity) Option {
	return func(s *Session) { s.granularity = g }
}

// WithClock overrides time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDs overrides record ID generation.
func WithIDs(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// NewSession starts a session at the original document.
func NewSession(original Document, interp Interpreter, opts ...Option) *Session {
	s := &Session{
		interp:   interp,
		original: original,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RestoreSession rebuilds a session from a snapshot. The records must chain
// from the original text.
func RestoreSession(snap Snapshot, interp Interpreter, opts ...Option) (*Session, error) {
	if err := validate(snap.Original.Text, snap.Records, snap.Cursor); err != nil {
		return nil, err
	}
	s := NewSession(snap.Original, interp, opts...)
	s.history.records = append([]Record(nil), snap.Records...)
	s.history.cursor = snap.Cursor
	return s, nil
}

// ApplyInstruction asks the interpreter to rewrite the current document.
// On success, undone records are discarded, a new record becomes the head,
// and the diff between the previous and new text is returned. On failure
// the session is unchanged.
func (s *Session) ApplyInstruction(ctx context.Context, instruction, jobContext string) (*Result, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, ErrInvalidInstruction
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	s.busy = true
	base := s.history.visible(s.original.Text)
	s.mu.Unlock()

	// The lock is not held while the interpreter runs so reads stay fast.
	proposal, err := s.interp.ProposeEdit(ctx, Request{
		Text:        base,
		Instruction: instruction,
		JobContext:  jobContext,
	})
	if err == nil && strings.TrimSpace(proposal.Text) == "" {
		err = errEmptyProposal
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		return nil, &InterpreterError{Instruction: instruction, Err: err}
	}

	rec := Record{
		ID:          s.newID(),
		Instruction: instruction,
		JobContext:  jobContext,
		Summary:     proposal.Summary,
		Previous:    base,
		Result:      normalize(proposal.Text),
		CreatedAt:   s.now().UTC(),
	}
	s.history.push(rec)

	res := s.resultLocked(base)
	res.Record = &rec
	return res, nil
}

// Undo moves the cursor back one record.
func (s *Session) Undo() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, ErrSessionBusy
	}
	if !s.history.canUndo() {
		return nil, ErrNothingToUndo
	}
	before := s.history.visible(s.original.Text)
	s.history.cursor--
	return s.resultLocked(before), nil
}

// Redo moves the cursor forward one record.
func (s *Session) Redo() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, ErrSessionBusy
	}
	if !s.history.canRedo() {
		return nil, ErrNothingToRedo
	}
	before := s.history.visible(s.original.Text)
	s.history.cursor++
	return s.resultLocked(before), nil
}

// Current returns the visible document. It never waits on the interpreter.
func (s *Session) Current() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

// Original returns the document the session started from.
func (s *Session) Original() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.original
}

// Records returns the full history and the cursor.
func (s *Session) Records() ([]Record, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Records(), s.history.cursor
}

// Busy reports whether an instruction is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Original: s.original,
		Records:  s.history.Records(),
		Cursor:   s.history.cursor,
	}
}

// DiffFromOriginal compares the original upload with the visible document.
func (s *Session) DiffFromOriginal() []Span {
	s.mu.Lock()
	before, after := s.original.Text, s.history.visible(s.original.Text)
	g := s.granularity
	s.mu.Unlock()
	return Diff(before, after, g)
}

// DiffFromPrevious compares the visible document with the one before it.
// At the original upload the result is a single equal span.
func (s *Session) DiffFromPrevious() []Span {
	s.mu.Lock()
	after := s.history.visible(s.original.Text)
	before := after
	if c := s.history.cursor; c > 0 {
		before = s.history.records[c-1].Previous
	}
	g := s.granularity
	s.mu.Unlock()
	return Diff(before, after, g)
}

func (s *Session) currentLocked() Document {
	return Document{ID: s.original.ID, Text: s.history.visible(s.original.Text)}
}

func (s *Session) resultLocked(before string) *Result {
	doc := s.currentLocked()
	return &Result{
		Document: doc,
		Spans:    Diff(before, doc.Text, s.granularity),
		Cursor:   s.history.cursor,
		CanUndo:  s.history.canUndo(),
		CanRedo:  s.history.canRedo(),
	}
}
