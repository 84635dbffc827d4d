package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskpad/internal/domain"
	"taskpad/internal/pipeline"
)

// ListTasks returns the caller's tasks ordered by title, optionally run
// through the same filter/search derivation the live view uses: the
// status filter is applied first, then the query narrows within the
// filtered subset.
func (h *Handler) ListTasks(c *gin.Context) {
	email, ok := getEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	mode, err := pipeline.ParseFilterMode(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	visible := pipeline.Visible(tasks, mode, c.Query("q"))
	if visible == nil {
		visible = []domain.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": visible})
}

type createTaskRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	TimerMinutes *int64 `json:"timer_minutes"`
}

// CreateTask persists a new task. The timer duration arrives as minutes
// (the form input unit) and is stored in seconds; the start instant is
// stamped server-side at creation.
func (h *Handler) CreateTask(c *gin.Context) {
	email, ok := getEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req createTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	t := domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.StatusOpen,
	}
	if req.Status != "" {
		t.Status = domain.Status(req.Status)
	}
	if req.TimerMinutes != nil {
		seconds := *req.TimerMinutes * 60
		start := time.Now().UnixMilli()
		t.TimerSeconds = &seconds
		t.TimerStartedAt = &start
	}

	if err := t.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.Tasks.Create(c.Request.Context(), email, t)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	t.ID = id
	c.JSON(http.StatusCreated, gin.H{"task": t})
}

func (h *Handler) UpdateTask(c *gin.Context) {
	email, ok := getEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var patch domain.TaskPatch
	if err := c.BindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}
	if patch.Title != nil {
		if err := (domain.Task{Title: *patch.Title, Status: domain.StatusOpen}).Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task status"})
		return
	}

	if err := h.Tasks.Update(c.Request.Context(), email, c.Param("id"), patch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ToggleTask flips the task's status based on its current stored value.
// An unknown id is a no-op, matching stale-reference semantics.
func (h *Handler) ToggleTask(c *gin.Context) {
	email, ok := getEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id := c.Param("id")
	tasks, err := h.Tasks.List(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	var current domain.Status
	found := false
	for _, t := range tasks {
		if t.ID == id {
			current = t.Status
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	next := current.Opposite()
	if err := h.Tasks.Update(c.Request.Context(), email, id, domain.TaskPatch{Status: &next}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": next})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	email, ok := getEmail(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), email, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
