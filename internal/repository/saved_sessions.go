package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/careerops-api/internal/model"
)

var ErrNotFound = errors.New("not found")

// SavedSessionStore persists workspace snapshots per owner.
type SavedSessionStore interface {
	// Save inserts s, or overwrites the owner's row when s.ID is set.
	Save(ctx context.Context, s *model.SavedSession) (*model.SavedSession, error)
	// List returns the owner's sessions, newest first, without State.
	List(ctx context.Context, ownerID string) ([]model.SavedSession, error)
	Get(ctx context.Context, ownerID string, id uuid.UUID) (*model.SavedSession, error)
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// ── Postgres ───────────────────────────────────────────

type SavedSessionRepo struct {
	pool *pgxpool.Pool
}

func NewSavedSessionRepo(pool *pgxpool.Pool) *SavedSessionRepo {
	return &SavedSessionRepo{pool: pool}
}

func (r *SavedSessionRepo) Save(ctx context.Context, s *model.SavedSession) (*model.SavedSession, error) {
	if s.ID == uuid.Nil {
		return r.create(ctx, s)
	}

	var saved model.SavedSession
	err := r.pool.QueryRow(ctx, `
		UPDATE saved_sessions
		SET display_name = $3, filename = $4, file_md5 = $5, storage_key = $6,
		    state = $7, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, display_name, filename, file_md5, storage_key,
		          state, created_at, updated_at
	`, s.ID, s.OwnerID, s.DisplayName, s.Filename, s.FileMD5, s.StorageKey, []byte(s.State),
	).Scan(
		&saved.ID, &saved.OwnerID, &saved.DisplayName, &saved.Filename, &saved.FileMD5,
		&saved.StorageKey, &saved.State, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating saved session: %w", err)
	}
	return &saved, nil
}

func (r *SavedSessionRepo) create(ctx context.Context, s *model.SavedSession) (*model.SavedSession, error) {
	var created model.SavedSession
	err := r.pool.QueryRow(ctx, `
		INSERT INTO saved_sessions (owner_id, display_name, filename, file_md5, storage_key, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, owner_id, display_name, filename, file_md5, storage_key,
		          state, created_at, updated_at
	`, s.OwnerID, s.DisplayName, s.Filename, s.FileMD5, s.StorageKey, []byte(s.State),
	).Scan(
		&created.ID, &created.OwnerID, &created.DisplayName, &created.Filename, &created.FileMD5,
		&created.StorageKey, &created.State, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating saved session: %w", err)
	}
	return &created, nil
}

func (r *SavedSessionRepo) List(ctx context.Context, ownerID string) ([]model.SavedSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, display_name, filename, file_md5, storage_key,
		       created_at, updated_at
		FROM saved_sessions
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing saved sessions: %w", err)
	}
	defer rows.Close()

	sessions := []model.SavedSession{}
	for rows.Next() {
		var s model.SavedSession
		err := rows.Scan(
			&s.ID, &s.OwnerID, &s.DisplayName, &s.Filename, &s.FileMD5,
			&s.StorageKey, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning saved session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SavedSessionRepo) Get(ctx context.Context, ownerID string, id uuid.UUID) (*model.SavedSession, error) {
	var s model.SavedSession
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, display_name, filename, file_md5, storage_key,
		       state, created_at, updated_at
		FROM saved_sessions
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID).Scan(
		&s.ID, &s.OwnerID, &s.DisplayName, &s.Filename, &s.FileMD5,
		&s.StorageKey, &s.State, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding saved session: %w", err)
	}
	return &s, nil
}

func (r *SavedSessionRepo) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM saved_sessions WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting saved session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ── In memory ──────────────────────────────────────────

// MemorySavedSessionRepo is used when no database is configured. Contents
// are lost on restart.
type MemorySavedSessionRepo struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]model.SavedSession
	now      func() time.Time
}

func NewMemorySavedSessionRepo() *MemorySavedSessionRepo {
	return &MemorySavedSessionRepo{
		sessions: make(map[uuid.UUID]model.SavedSession),
		now:      time.Now,
	}
}

func (r *MemorySavedSessionRepo) Save(_ context.Context, s *model.SavedSession) (*model.SavedSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	saved := *s
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
		saved.CreatedAt = now
	} else {
		existing, ok := r.sessions[saved.ID]
		if !ok || existing.OwnerID != saved.OwnerID {
			return nil, ErrNotFound
		}
		saved.CreatedAt = existing.CreatedAt
	}
	saved.UpdatedAt = now
	saved.State = append([]byte(nil), s.State...)
	r.sessions[saved.ID] = saved

	out := saved
	return &out, nil
}

func (r *MemorySavedSessionRepo) List(_ context.Context, ownerID string) ([]model.SavedSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.SavedSession{}
	for _, s := range r.sessions {
		if s.OwnerID != ownerID {
			continue
		}
		s.State = nil
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *MemorySavedSessionRepo) Get(_ context.Context, ownerID string, id uuid.UUID) (*model.SavedSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemorySavedSessionRepo) Delete(_ context.Context, ownerID string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

var (
	_ SavedSessionStore = (*SavedSessionRepo)(nil)
	_ SavedSessionStore = (*MemorySavedSessionRepo)(nil)
)
