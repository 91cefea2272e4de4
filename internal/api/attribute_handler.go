package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasknotes/internal/repository"
	"tasknotes/internal/service"
)

type AttributeHandler struct {
	attrs *service.AttributeService
}

type createAttributeRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color" binding:"required"`
}

type updateAttributeRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (h *AttributeHandler) Create(c *gin.Context) {
	var req createAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attr, err := h.attrs.Create(c.Request.Context(), c.GetString("uid"), req.Name, req.Color)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, attr)
}

func (h *AttributeHandler) List(c *gin.Context) {
	attrs, err := h.attrs.List(c.Request.Context(), c.GetString("uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list attributes"})
		return
	}
	c.JSON(http.StatusOK, attrs)
}

func (h *AttributeHandler) Stats(c *gin.Context) {
	stats, err := h.attrs.Stats(c.Request.Context(), c.GetString("uid"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load attribute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AttributeHandler) Update(c *gin.Context) {
	var req updateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	attr, err := h.attrs.Update(c.Request.Context(), c.GetString("uid"), c.Param("id"), req.Name, req.Color)
	if err != nil {
		respondAttributeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attr)
}

func (h *AttributeHandler) Delete(c *gin.Context) {
	if err := h.attrs.Delete(c.Request.Context(), c.GetString("uid"), c.Param("id")); err != nil {
		respondAttributeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondAttributeError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "attribute not found"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
