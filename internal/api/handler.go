package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkurosawa/github-org-pulse/internal/aggregator"
	"github.com/mkurosawa/github-org-pulse/internal/domain"
	apperrors "github.com/mkurosawa/github-org-pulse/internal/errors"
)

// SyncRunner runs one sync cycle for an organization
type SyncRunner interface {
	Sync(ctx context.Context, org string) (*domain.Organization, error)
}

// CycleLister returns recent sync cycle records
type CycleLister interface {
	GetSyncCycles(ctx context.Context, org string, limit int) ([]*domain.SyncCycle, error)
}

// Handler handles API requests
type Handler struct {
	aggregator aggregator.Aggregator
	syncer     SyncRunner
	cycles     CycleLister
}

// NewHandler creates a new API handler
func NewHandler(agg aggregator.Aggregator, syncer SyncRunner, cycles CycleLister) *Handler {
	return &Handler{
		aggregator: agg,
		syncer:     syncer,
		cycles:     cycles,
	}
}

// SyncOrganization runs one sync cycle and returns the synced document
// POST /api/v1/orgs/:org/sync
func (h *Handler) SyncOrganization(c *gin.Context) {
	org := c.Param("org")

	doc, err := h.syncer.Sync(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": doc,
	})
}

// GetOrganization returns the stored organization document
// GET /api/v1/orgs/:org
func (h *Handler) GetOrganization(c *gin.Context) {
	org := c.Param("org")

	doc, err := h.aggregator.GetOrganization(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": doc,
	})
}

// GetCodeFrequency returns the weekly code-delta report
// GET /api/v1/orgs/:org/stats/code_frequency?week=YYYY-MM-DD
func (h *Handler) GetCodeFrequency(c *gin.Context) {
	org := c.Param("org")

	window, err := parseWindow(c)
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.aggregator.CodeFrequencyReport(c.Request.Context(), org, window)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": report,
	})
}

// GetPunchCard returns the 168-bucket commit-activity grid
// GET /api/v1/orgs/:org/stats/punch_card
func (h *Handler) GetPunchCard(c *gin.Context) {
	org := c.Param("org")

	report, err := h.aggregator.PunchCardReport(c.Request.Context(), org)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": report,
	})
}

// GetSyncCycles returns recent sync cycle records
// GET /api/v1/orgs/:org/sync/cycles?limit=N
func (h *Handler) GetSyncCycles(c *gin.Context) {
	org := c.Param("org")
	limit := parseIntQuery(c, "limit", 20)

	cycles, err := h.cycles.GetSyncCycles(c.Request.Context(), org, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": cycles,
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// parseWindow builds the report window from the week query parameter,
// defaulting to the most recently completed Saturday
func parseWindow(c *gin.Context) (aggregator.WindowFunc, error) {
	week := c.Query("week")
	if week == "" {
		return aggregator.LastCompletedWeek(time.Now(), time.Local), nil
	}

	boundary, err := time.Parse("2006-01-02", week)
	if err != nil {
		return nil, apperrors.NewBadRequestError("week must be formatted as YYYY-MM-DD")
	}
	return aggregator.ExactWeek(boundary), nil
}

// parseIntQuery parses a positive integer query parameter
func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		case apperrors.ErrCodeUpstream:
			status = http.StatusBadGateway
		case apperrors.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	})
}
