package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Ready       bool   `json:"ready"`
	History     bool   `json:"history"`     // 是否记录计算历史
	Month       int    `json:"month"`       // 目标月份，0 表示不限
	TargetDays  []int  `json:"targetDays"`  // 目标日期
	TotalRuns   int    `json:"totalRuns"`   // 最近计算次数
	LastRunTime string `json:"lastRunTime"` // 最后计算时间
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{
		Ready:      h.engine != nil,
		History:    h.store != nil,
		Month:      h.cfg.Sheet.Month,
		TargetDays: h.cfg.Sheet.SortedTargetDays(),
	}

	if h.store != nil {
		runs, err := h.store.ListRuns(100)
		if err == nil {
			resp.TotalRuns = len(runs)
			if len(runs) > 0 {
				resp.LastRunTime = runs[0].CreatedAt.Format("2006-01-02 15:04:05")
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}
