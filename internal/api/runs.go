package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"overtime/internal/store"
)

// ListRuns 列出计算历史
// GET /api/runs?limit=50
func (h *Handler) ListRuns(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, gin.H{"items": []*store.Run{}})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := h.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询计算历史失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": runs})
}

// GetRun 查询单次计算及其错误单元格
// GET /api/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "未启用计算历史"})
		return
	}

	id := c.Param("id")
	run, err := h.store.GetRun(id)
	if errors.Is(err, store.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "计算记录不存在"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询计算记录失败"})
		return
	}

	runErrors, err := h.store.ListRunErrors(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询错误单元格失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "errors": runErrors})
}
