package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contentops/taskflow/internal/application/service"
	"github.com/contentops/taskflow/internal/domain/lifecycle"
	"github.com/contentops/taskflow/internal/domain/task"
	"github.com/contentops/taskflow/internal/view"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	taskService service.TaskService
	logger      Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(taskService service.TaskService, logger Logger) *Handlers {
	return &Handlers{
		taskService: taskService,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// identityRequest carries the acting identity on mutating requests.
// Authentication is handled upstream; the dashboard passes the identity
// through.
type identityRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

func (r identityRequest) identity() task.Identity {
	return task.Identity{Name: r.Name, Department: r.Department}
}

// SetStatusRequest is the body of POST /api/tasks/:id/status
type SetStatusRequest struct {
	identityRequest
	Status string `json:"status" binding:"required"`
}

// RevisionRequest is the body of reject and revision-request calls
type RevisionRequest struct {
	identityRequest
	Note string `json:"note"`
	// FallbackDepartment applies when the task has no recorded
	// originalDepartment to hand back to.
	FallbackDepartment string `json:"fallbackDepartment"`
}

// PostRequest is the body of POST /api/tasks/:id/post
type PostRequest struct {
	identityRequest
	AdsRun bool    `json:"adsRun"`
	AdType string  `json:"adType"`
	AdCost float64 `json:"adCost"`
}

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	identityRequest
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Department  string `json:"department"`
	AssignedTo  string `json:"assignedTo"`
	ClientID    string `json:"clientId"`
	ClientName  string `json:"clientName"`
	Deadline    string `json:"deadline"`
	PostDate    string `json:"postDate"`
	Status      string `json:"status"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// CreateTask handles POST /api/tasks
func (h *Handlers) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	department := req.Department
	if department == "" {
		department = req.identityRequest.Department
	}

	created, err := h.taskService.Create(c.Request.Context(), service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Department:  department,
		AssignedTo:  req.AssignedTo,
		ClientID:    req.ClientID,
		ClientName:  req.ClientName,
		Deadline:    req.Deadline,
		PostDate:    req.PostDate,
		Status:      task.Status(req.Status),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: created})
}

// ListTasks handles GET /api/tasks. Query parameters: name, department,
// window (day|week|month), month (YYYY-MM), status, dashboard
// (personal|department|all).
func (h *Handlers) ListTasks(c *gin.Context) {
	q := view.Query{
		Identity: task.Identity{
			Name:       c.Query("name"),
			Department: c.Query("department"),
		},
		Window: view.Window(c.DefaultQuery("window", string(view.WindowMonth))),
		Month:  c.Query("month"),
		Status: task.Status(c.Query("status")),
		Owned:  ownershipFor(c.DefaultQuery("dashboard", "personal")),
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: h.taskService.View(q)})
}

// GetTask handles GET /api/tasks/:id
func (h *Handlers) GetTask(c *gin.Context) {
	t, err := h.taskService.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: t})
}

// SetStatus handles POST /api/tasks/:id/status
func (h *Handlers) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	err := h.taskService.SetStatus(c.Request.Context(), c.Param("id"), task.Status(req.Status), req.identity())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// Approve handles POST /api/tasks/:id/approve
func (h *Handlers) Approve(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.taskService.Approve(c.Request.Context(), c.Param("id"), req.identity()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// Reject handles POST /api/tasks/:id/reject
func (h *Handlers) Reject(c *gin.Context) {
	var req RevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.taskService.Reject(c.Request.Context(), c.Param("id"), req.Note, req.identity()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// Post handles POST /api/tasks/:id/post
func (h *Handlers) Post(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	var ad *lifecycle.AdInfo
	if req.AdsRun {
		ad = &lifecycle.AdInfo{Type: task.AdType(req.AdType), Cost: req.AdCost}
	}

	if err := h.taskService.Post(c.Request.Context(), c.Param("id"), ad, req.identity()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// RequestRevision handles POST /api/tasks/:id/revision
func (h *Handlers) RequestRevision(c *gin.Context) {
	var req RevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	err := h.taskService.RequestRevision(c.Request.Context(), c.Param("id"), req.Note, req.identity(), req.FallbackDepartment)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ListAlerts handles GET /api/alerts
func (h *Handlers) ListAlerts(c *gin.Context) {
	identity := task.Identity{
		Name:       c.Query("name"),
		Department: c.Query("department"),
	}
	owned := ownershipFor(c.DefaultQuery("dashboard", "personal"))

	alerts := h.taskService.Alerts(identity, owned)
	c.JSON(http.StatusOK, Response{Success: true, Data: alerts})
}

// AcknowledgeAlert handles POST /api/alerts/:id/ack
func (h *Handlers) AcknowledgeAlert(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.taskService.Acknowledge(c.Request.Context(), c.Param("id"), req.identity()); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ownershipFor maps a dashboard variant to its ownership predicate.
func ownershipFor(dashboard string) view.OwnershipPredicate {
	switch dashboard {
	case "department":
		return view.DepartmentOwnership
	case "all":
		return view.AllOwnership
	default:
		return view.PersonalOwnership
	}
}

// writeError maps domain errors onto HTTP status codes.
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, task.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, task.ErrIllegalTransition):
		status = http.StatusConflict
	case errors.Is(err, task.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, task.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}
