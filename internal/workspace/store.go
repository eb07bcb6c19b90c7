package workspace

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/careerops-api/internal/editor"
	"github.com/yourusername/careerops-api/internal/metrics"
)

// ResumeInterpreterFunc builds the interpreter for a resume session.
type ResumeInterpreterFunc func(chat *Timeline) editor.Interpreter

// LetterInterpreterFunc builds the interpreter for a cover letter session.
// resume returns the current resume text for reference.
type LetterInterpreterFunc func(chat *Timeline, resume func() string) editor.Interpreter

type StoreConfig struct {
	TTL         time.Duration
	Granularity editor.Granularity
	Resume      ResumeInterpreterFunc
	Letter      LetterInterpreterFunc
	Now         func() time.Time
}

// Store is the registry of live workspaces. It is safe for concurrent use.
type Store struct {
	cfg StoreConfig

	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

func NewStore(cfg StoreConfig) *Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 2 * time.Hour
	}
	return &Store{cfg: cfg, workspaces: make(map[string]*Workspace)}
}

// Create starts a new workspace whose original document is seed.Text.
func (s *Store) Create(ownerID string, seed Seed) (*Workspace, error) {
	if strings.TrimSpace(seed.Text) == "" {
		return nil, ErrEmptyDocument
	}
	w := s.newWorkspace(ownerID, seed.Filename, seed.FileMD5, seed.UploadKey)
	w.parsed = seed.Resume
	w.chat = NewTimeline(nil)
	w.resume = editor.NewSession(editor.NewDocument(w.ID, seed.Text), s.cfg.Resume(w.chat), s.sessionOpts()...)

	s.add(w)
	log.Info().Str("session_id", w.ID).Str("owner", ownerID).Str("filename", seed.Filename).Msg("Session created")
	return w, nil
}

// Restore rebuilds a live workspace from a snapshot under a fresh id.
func (s *Store) Restore(ownerID string, snap Snapshot) (*Workspace, error) {
	w := s.newWorkspace(ownerID, snap.Filename, snap.FileMD5, snap.UploadKey)
	w.parsed = snap.Parsed
	w.chat = NewTimeline(snap.Chat)

	// The document id follows the workspace so exports and diffs line up.
	resumeSnap := snap.Resume
	resumeSnap.Original.ID = w.ID
	resume, err := editor.RestoreSession(resumeSnap, s.cfg.Resume(w.chat), s.sessionOpts()...)
	if err != nil {
		return nil, fmt.Errorf("restore resume: %w", err)
	}
	w.resume = resume

	w.analysis = snap.Analysis
	w.matches = snap.Matches
	w.target = snap.Target
	if snap.CoverLetter != nil {
		chat := NewTimeline(snap.LetterChat)
		letterSnap := *snap.CoverLetter
		letterSnap.Original.ID = w.ID + "-cover-letter"
		letter, err := editor.RestoreSession(letterSnap, s.cfg.Letter(chat, w.resumeText), s.sessionOpts()...)
		if err != nil {
			return nil, fmt.Errorf("restore cover letter: %w", err)
		}
		w.letter = letter
		w.letterChat = chat
	}

	s.add(w)
	log.Info().Str("session_id", w.ID).Str("owner", ownerID).Msg("Session restored")
	return w, nil
}

// Get returns the owner's workspace and marks it used.
func (s *Store) Get(ownerID, id string) (*Workspace, error) {
	s.mu.RLock()
	w, ok := s.workspaces[id]
	s.mu.RUnlock()
	if !ok || w.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	w.touch(s.cfg.Now())
	return w, nil
}

// Delete discards the owner's workspace.
func (s *Store) Delete(ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[id]
	if !ok || w.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.workspaces, id)
	metrics.SetActiveSessions(len(s.workspaces))
	return nil
}

// Len returns the number of live workspaces.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// UsesUpload reports whether a live workspace still refers to the stored
// upload key.
func (s *Store) UsesUpload(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, w := range s.workspaces {
		if w.UploadKey == key {
			return true
		}
	}
	return false
}

// Sweep drops workspaces idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	cutoff := s.cfg.Now().Add(-s.cfg.TTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, w := range s.workspaces {
		if w.idleSince(cutoff) {
			delete(s.workspaces, id)
			removed++
		}
	}
	metrics.SetActiveSessions(len(s.workspaces))
	return removed
}

// Run sweeps expired workspaces every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Info().Int("removed", n).Int("active", s.Len()).Msg("Expired sessions swept")
			}
		}
	}
}

func (s *Store) newWorkspace(ownerID, filename, md5, uploadKey string) *Workspace {
	now := s.cfg.Now()
	w := &Workspace{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Filename:   filename,
		FileMD5:    md5,
		UploadKey:  uploadKey,
		CreatedAt:  now.UTC(),
		now:        s.cfg.Now,
		lastAccess: now,
	}
	w.newLetter = func(doc editor.Document, chat *Timeline) *editor.Session {
		return editor.NewSession(doc, s.cfg.Letter(chat, w.resumeText), s.sessionOpts()...)
	}
	return w
}

func (s *Store) add(w *Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[w.ID] = w
	metrics.SetActiveSessions(len(s.workspaces))
}

func (s *Store) sessionOpts() []editor.Option {
	return []editor.Option{editor.WithGranularity(s.cfg.Granularity), editor.WithClock(s.cfg.Now)}
}

func (w *Workspace) resumeText() string { return w.resume.Current().Text }
