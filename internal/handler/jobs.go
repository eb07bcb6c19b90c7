package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/careerops-api/internal/model"
	"github.com/yourusername/careerops-api/internal/repository"
)

type JobHandler struct {
	catalog repository.JobCatalog
}

func NewJobHandler(catalog repository.JobCatalog) *JobHandler {
	return &JobHandler{catalog: catalog}
}

// ListJobs handles GET /jobs
// ?category=Engineering filters by category.
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		filtered := make([]model.Job, 0, len(jobs))
		for _, j := range jobs {
			if strings.EqualFold(j.Category, category) {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}

	if jobs == nil {
		jobs = []model.Job{}
	}

	c.JSON(http.StatusOK, jobs)
}

// GetJob handles GET /jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.catalog.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, job)
}
