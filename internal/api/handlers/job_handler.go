package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/scribely/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Get handles GET /jobs/:job_id
func (h *JobHandler) Get(c *gin.Context) {
	jobID := c.Param("job_id")
	c.Set("job_id", jobID)

	job, err := h.jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
