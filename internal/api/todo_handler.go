package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tasknotes/internal/repository"
	"tasknotes/internal/service"
)

type TodoHandler struct {
	todos *service.TodoService
	log   *zap.SugaredLogger
}

type createTodoRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  *string    `json:"description"`
	StartDate    *time.Time `json:"start_date"`
	DueDate      *time.Time `json:"due_date"`
	AttributeIDs []string   `json:"attribute_ids"`
}

type updateTodoRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Completed    *bool      `json:"completed"`
	StartDate    *time.Time `json:"start_date"`
	ClearStart   bool       `json:"clear_start"`
	DueDate      *time.Time `json:"due_date"`
	ClearDue     bool       `json:"clear_due"`
	AttributeIDs *[]string  `json:"attribute_ids"`
}

func (h *TodoHandler) Create(c *gin.Context) {
	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.todos.Create(c.Request.Context(), c.GetString("uid"), service.TodoInput{
		Title:        req.Title,
		Description:  req.Description,
		StartDate:    req.StartDate,
		DueDate:      req.DueDate,
		AttributeIDs: req.AttributeIDs,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, view)
}

// List supports ?completed=, ?attributes=id1,id2 and ?operator=AND|OR.
func (h *TodoHandler) List(c *gin.Context) {
	filter := repository.TodoFilter{Operator: repository.AttributeOr}

	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "completed must be true or false"})
			return
		}
		filter.Completed = &completed
	}
	if raw := c.Query("attributes"); raw != "" {
		filter.AttributeIDs = strings.Split(raw, ",")
	}
	if op := strings.ToUpper(c.Query("operator")); op == string(repository.AttributeAnd) {
		filter.Operator = repository.AttributeAnd
	}

	views, err := h.todos.List(c.Request.Context(), c.GetString("uid"), filter)
	if err != nil {
		h.log.Errorw("list todos", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list todos"})
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *TodoHandler) Get(c *gin.Context) {
	view, err := h.todos.Get(c.Request.Context(), c.GetString("uid"), c.Param("id"))
	if err != nil {
		respondTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TodoHandler) Update(c *gin.Context) {
	var req updateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.todos.Update(c.Request.Context(), c.GetString("uid"), c.Param("id"), service.TodoUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Completed:    req.Completed,
		StartDate:    req.StartDate,
		ClearStart:   req.ClearStart,
		DueDate:      req.DueDate,
		ClearDue:     req.ClearDue,
		AttributeIDs: req.AttributeIDs,
	})
	if err != nil {
		respondTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TodoHandler) ToggleComplete(c *gin.Context) {
	view, err := h.todos.ToggleComplete(c.Request.Context(), c.GetString("uid"), c.Param("id"))
	if err != nil {
		respondTodoError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	if err := h.todos.Delete(c.Request.Context(), c.GetString("uid"), c.Param("id")); err != nil {
		respondTodoError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondTodoError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
