package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/axisworks/axis/ent/job"
	"github.com/axisworks/axis/pkg/models"
)

// getJobHandler handles GET /api/jobs/:id.
func (s *Server) getJobHandler(c *echo.Context) error {
	row, err := s.jobs.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toJobResponse(row))
}

// approveJobHandler handles POST /api/jobs/:id/approve. The nonce spends
// exactly once: the CAS from awaiting_approval to executing is what consumes
// it, so a concurrent second approve loses the race and gets a conflict no
// matter how tight the interleaving.
func (s *Server) approveJobHandler(c *echo.Context) error {
	jobID := c.Param("id")

	var req ApproveJobRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, models.CodeValidation, "malformed request body")
	}
	if req.Nonce == "" {
		return writeError(c, http.StatusBadRequest, models.CodeValidation, "nonce is required")
	}

	ctx := c.Request().Context()

	row, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return writeServiceError(c, err)
	}
	if row.Status != job.StatusAwaitingApproval {
		return writeError(c, http.StatusConflict, models.CodeConflict,
			"job is not awaiting approval")
	}
	if !nonceMatches(req.Nonce, row.ApprovalNonce) {
		// A wrong nonce and a spent one answer identically, so probing the
		// endpoint reveals nothing about past approvals.
		return writeError(c, http.StatusConflict, models.CodeConflict,
			"approval nonce is invalid or already used")
	}

	ok, err := s.jobs.Transition(ctx, jobID, job.StatusAwaitingApproval, job.StatusExecuting, nil)
	if err != nil {
		return writeServiceError(c, err)
	}
	if !ok {
		return writeError(c, http.StatusConflict, models.CodeConflict,
			"approval nonce is invalid or already used")
	}

	// Wake the parked worker only after the row is committed as executing;
	// if the worker died while parked, orphan recovery picks the row up.
	if !s.approvals.Resolve(jobID) {
		slog.Warn("Approved job has no waiting worker; leaving to recovery", "job_id", jobID)
	}

	if s.audit != nil {
		s.audit.Record(ctx, models.AuditRecord{
			Actor:     requestActor(c),
			Action:    "job.approved",
			RiskLevel: models.RiskMedium,
			JobID:     jobID,
		})
	}

	return c.JSON(http.StatusOK, &ApproveResponse{
		JobID:  jobID,
		Status: string(job.StatusExecuting),
	})
}

// cancelJobHandler handles POST /api/jobs/:id/cancel. Cancelling a parked
// approval is how a user denies it: the row moves to cancelled and the
// worker's context is torn down, so the pipeline settles without executing.
func (s *Server) cancelJobHandler(c *echo.Context) error {
	jobID := c.Param("id")
	ctx := c.Request().Context()

	ok, err := s.jobs.Cancel(ctx, jobID)
	if err != nil {
		return writeServiceError(c, err)
	}
	if !ok {
		return writeError(c, http.StatusConflict, models.CodeConflict,
			"job is already in a terminal state")
	}

	if s.pool != nil {
		s.pool.CancelJob(jobID)
	}

	if s.audit != nil {
		s.audit.Record(ctx, models.AuditRecord{
			Actor:     requestActor(c),
			Action:    "job.cancelled",
			RiskLevel: models.RiskLow,
			JobID:     jobID,
		})
	}

	return c.JSON(http.StatusOK, &CancelResponse{
		JobID:  jobID,
		Status: string(job.StatusCancelled),
	})
}

// nonceMatches compares the presented nonce against the stored one in
// constant time over SHA-256 digests.
func nonceMatches(presented string, stored *string) bool {
	if stored == nil || *stored == "" {
		return false
	}
	a := sha256.Sum256([]byte(presented))
	b := sha256.Sum256([]byte(*stored))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
