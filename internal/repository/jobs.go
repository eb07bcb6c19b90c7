package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/careerops-api/internal/model"
)

//go:embed seed/jobs.json
var sampleJobsJSON []byte

// SampleJobs returns the built-in job catalog.
func SampleJobs() []model.Job {
	var jobs []model.Job
	if err := json.Unmarshal(sampleJobsJSON, &jobs); err != nil {
		panic(fmt.Sprintf("decoding embedded sample jobs: %v", err))
	}
	return jobs
}

// JobCatalog is the set of jobs a resume is matched against.
type JobCatalog interface {
	List(ctx context.Context) ([]model.Job, error)
	FindByID(ctx context.Context, id string) (*model.Job, error)
}

// ── Postgres ───────────────────────────────────────────

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

// List returns the catalog ordered by id.
func (r *JobRepo) List(ctx context.Context) ([]model.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, company, location, salary, description,
		       requirements, job_type, category
		FROM catalog_jobs
		ORDER BY sort_order, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		var j model.Job
		err := rows.Scan(
			&j.ID, &j.Title, &j.Company, &j.Location, &j.Salary,
			&j.Description, &j.Requirements, &j.Type, &j.Category,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// FindByID returns a single job or ErrNotFound.
func (r *JobRepo) FindByID(ctx context.Context, id string) (*model.Job, error) {
	var j model.Job
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, company, location, salary, description,
		       requirements, job_type, category
		FROM catalog_jobs
		WHERE id = $1
	`, id).Scan(
		&j.ID, &j.Title, &j.Company, &j.Location, &j.Salary,
		&j.Description, &j.Requirements, &j.Type, &j.Category,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding job: %w", err)
	}
	return &j, nil
}

// Seed inserts jobs that are not in the table yet.
func (r *JobRepo) Seed(ctx context.Context, jobs []model.Job) (int, error) {
	batch := &pgx.Batch{}
	for i, j := range jobs {
		batch.Queue(`
			INSERT INTO catalog_jobs (id, title, company, location, salary,
			                          description, requirements, job_type, category, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING
		`, j.ID, j.Title, j.Company, j.Location, j.Salary,
			j.Description, j.Requirements, j.Type, j.Category, sortOrder(j.ID, i))
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range jobs {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("seeding jobs: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// sortOrder keeps numeric ids in numeric order.
func sortOrder(id string, fallback int) int {
	if n, err := strconv.Atoi(id); err == nil {
		return n
	}
	return 1_000_000 + fallback
}

// ── In memory ──────────────────────────────────────────

// MemoryJobRepo serves a fixed catalog in the order given.
type MemoryJobRepo struct {
	jobs []model.Job
}

func NewMemoryJobRepo(jobs []model.Job) *MemoryJobRepo {
	return &MemoryJobRepo{jobs: append([]model.Job(nil), jobs...)}
}

func (r *MemoryJobRepo) List(_ context.Context) ([]model.Job, error) {
	return append([]model.Job(nil), r.jobs...), nil
}

func (r *MemoryJobRepo) FindByID(_ context.Context, id string) (*model.Job, error) {
	for _, j := range r.jobs {
		if j.ID == id {
			found := j
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

var (
	_ JobCatalog = (*JobRepo)(nil)
	_ JobCatalog = (*MemoryJobRepo)(nil)
)
