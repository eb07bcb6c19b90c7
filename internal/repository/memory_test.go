package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/careerops-api/internal/model"
)

func TestSampleJobs(t *testing.T) {
	jobs := SampleJobs()
	require.Len(t, jobs, 20)
	assert.Equal(t, "1", jobs[0].ID)
	assert.Equal(t, "Senior Software Engineer", jobs[0].Title)
	assert.Equal(t, []string{"5+ years Python", "AWS", "Microservices", "SQL", "Docker"}, jobs[0].Requirements)
	assert.Equal(t, "20", jobs[19].ID)

	seen := map[string]bool{}
	for _, j := range jobs {
		assert.False(t, seen[j.ID], "duplicate id %s", j.ID)
		seen[j.ID] = true
		assert.NotEmpty(t, j.Category)
	}
}

func TestMemoryJobRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryJobRepo(SampleJobs())

	jobs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 20)

	jobs[0].Title = "mutated"
	j, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Senior Software Engineer", j.Title)

	_, err = repo.FindByID(ctx, "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, 7, sortOrder("7", 0))
	assert.Equal(t, 1_000_003, sortOrder("custom", 3))
}

func TestMemorySavedSessionRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySavedSessionRepo()
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	first, err := repo.Save(ctx, &model.SavedSession{
		OwnerID:     "owner-1",
		DisplayName: "Jane Doe - Engineer",
		State:       json.RawMessage(`{"version":1}`),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, clock, first.CreatedAt)

	clock = clock.Add(time.Minute)
	second, err := repo.Save(ctx, &model.SavedSession{OwnerID: "owner-1", State: json.RawMessage(`{}`)})
	require.NoError(t, err)
	_, err = repo.Save(ctx, &model.SavedSession{OwnerID: "owner-2", State: json.RawMessage(`{}`)})
	require.NoError(t, err)

	list, err := repo.List(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Nil(t, list[0].State)

	// Overwriting bumps updated_at and keeps created_at.
	clock = clock.Add(time.Minute)
	updated, err := repo.Save(ctx, &model.SavedSession{ID: first.ID, OwnerID: "owner-1", State: json.RawMessage(`{"version":2}`)})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(first.UpdatedAt))

	list, err = repo.List(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, list[0].ID)

	got, err := repo.Get(ctx, "owner-1", first.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2}`, string(got.State))

	_, err = repo.Get(ctx, "owner-2", first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Save(ctx, &model.SavedSession{ID: first.ID, OwnerID: "owner-2"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "owner-2", first.ID), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "owner-1", first.ID))
	_, err = repo.Get(ctx, "owner-1", first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
