package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tasknotes/internal/repository"
	"tasknotes/internal/service"
)

type TemplateHandler struct {
	templates *service.TemplateService
}

type createTemplateRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   *string  `json:"description"`
	Frequency     string   `json:"frequency" binding:"required"`
	IntervalValue int      `json:"interval_value"`
	Weekdays      []int    `json:"weekdays"`
	StartTime     *string  `json:"start_time"`
	EndDate       *string  `json:"end_date"` // YYYY-MM-DD
	Enabled       *bool    `json:"enabled"`
	AttributeIDs  []string `json:"attribute_ids"`
}

type updateTemplateRequest struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Frequency     *string   `json:"frequency"`
	IntervalValue *int      `json:"interval_value"`
	Weekdays      *[]int    `json:"weekdays"`
	StartTime     *string   `json:"start_time"`
	ClearStart    bool      `json:"clear_start"`
	EndDate       *string   `json:"end_date"`
	ClearEnd      bool      `json:"clear_end"`
	Enabled       *bool     `json:"enabled"`
	AttributeIDs  *[]string `json:"attribute_ids"`
}

type toggleTemplateRequest struct {
	Enabled bool `json:"enabled"`
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, *raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	interval := req.IntervalValue
	if interval == 0 {
		interval = 1
	}

	view, err := h.templates.Create(c.Request.Context(), c.GetString("uid"), service.TemplateInput{
		Title:         req.Title,
		Description:   req.Description,
		Frequency:     req.Frequency,
		IntervalValue: interval,
		Weekdays:      req.Weekdays,
		StartTime:     req.StartTime,
		EndDate:       endDate,
		Enabled:       req.Enabled,
		AttributeIDs:  req.AttributeIDs,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *TemplateHandler) List(c *gin.Context) {
	views, err := h.templates.List(c.Request.Context(), c.GetString("uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	view, err := h.templates.Get(c.Request.Context(), c.GetString("uid"), c.Param("id"))
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TemplateHandler) Update(c *gin.Context) {
	var req updateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}

	view, err := h.templates.Update(c.Request.Context(), c.GetString("uid"), c.Param("id"), service.TemplateUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Frequency:     req.Frequency,
		IntervalValue: req.IntervalValue,
		Weekdays:      req.Weekdays,
		StartTime:     req.StartTime,
		ClearStart:    req.ClearStart,
		EndDate:       endDate,
		ClearEnd:      req.ClearEnd,
		Enabled:       req.Enabled,
		AttributeIDs:  req.AttributeIDs,
	})
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TemplateHandler) Toggle(c *gin.Context) {
	var req toggleTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.templates.SetEnabled(c.Request.Context(), c.GetString("uid"), c.Param("id"), req.Enabled); err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": req.Enabled})
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	if err := h.templates.Delete(c.Request.Context(), c.GetString("uid"), c.Param("id")); err != nil {
		respondTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondTemplateError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
