package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/nkatz/stylist/internal/domain"
	"github.com/nkatz/stylist/internal/service"
)

// StyleHandler handles styling pipeline endpoints. It owns the latest
// ResultRecord and a single-flight busy flag: each run fully replaces the
// previous record and only one run may be in flight at a time.
type StyleHandler struct {
	pipeline *service.PipelineService

	mu     sync.RWMutex
	busy   bool
	latest *domain.ResultRecord
}

// NewStyleHandler creates a new style handler.
// Parameters:
//   - pipeline: pipeline orchestrator.
// Returns:
//   - *StyleHandler: initialized handler.
func NewStyleHandler(pipeline *service.PipelineService) *StyleHandler {
	return &StyleHandler{pipeline: pipeline}
}

// StyleRequest is the body of a style submission.
type StyleRequest struct {
	Message string `json:"message" binding:"required"`
}

// Submit handles POST /api/v1/style.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StyleHandler) Submit(c *gin.Context) {
	var req StyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	h.mu.Lock()
	if h.busy {
		h.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{
			"error": "A styling run is already in progress",
		})
		return
	}
	h.busy = true
	h.mu.Unlock()

	// The flag must clear even when the run panics past Recovery,
	// or every later submission would be rejected as busy.
	defer func() {
		h.mu.Lock()
		h.busy = false
		h.mu.Unlock()
	}()

	record := h.pipeline.Run(c.Request.Context(), req.Message)

	h.mu.Lock()
	h.latest = record
	h.mu.Unlock()

	c.JSON(http.StatusOK, record)
}

// Result handles GET /api/v1/result.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StyleHandler) Result(c *gin.Context) {
	h.mu.RLock()
	record := h.latest
	h.mu.RUnlock()

	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No styling result yet",
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Status handles GET /api/v1/status.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StyleHandler) Status(c *gin.Context) {
	h.mu.RLock()
	busy := h.busy
	h.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"busy": busy,
	})
}
