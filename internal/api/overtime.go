package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"overtime/internal/importer"
	"overtime/internal/model"
	"overtime/internal/service/excel"
	"overtime/internal/service/overtime"
)

// ComputeResponse 计算结果
type ComputeResponse struct {
	RunID         string              `json:"runId,omitempty"`
	Filename      string              `json:"filename"`
	Sheet         string              `json:"sheet"`
	Employees     int                 `json:"employees"`
	Days          []int               `json:"days"`
	ErrorCount    int                 `json:"errorCount"`
	TotalHours    float64             `json:"totalHours"`
	Flags         []model.ErrorMarker `json:"flags"`
	DownloadToken string              `json:"downloadToken"`
	DownloadURL   string              `json:"downloadUrl"`
}

// upload 已保存的上传文件
type upload struct {
	filename   string
	inputPath  string
	outputPath string
	resultName string
}

// Compute 上传考勤表并计算加班
// POST /api/overtime
func (h *Handler) Compute(c *gin.Context) {
	up, ok := h.saveUpload(c)
	if !ok {
		return
	}
	defer os.Remove(up.inputPath)

	report, err := h.coordinator.Process(c.Request.Context(), up.options())
	if err != nil {
		_ = os.Remove(up.outputPath)
		c.JSON(statusForError(err), gin.H{"error": "加班计算失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.response(c, up, report))
}

// ComputeStream 上传考勤表并计算加班 (SSE 流式响应)
// POST /api/overtime/stream
func (h *Handler) ComputeStream(c *gin.Context) {
	up, ok := h.saveUpload(c)
	if !ok {
		return
	}
	defer os.Remove(up.inputPath)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for event := range h.coordinator.Stream(c.Request.Context(), up.options()) {
		switch event.Type {
		case "done":
			if report, ok := event.Data.(*importer.Report); ok {
				event.Data = h.response(c, up, report)
			}
		case "error":
			_ = os.Remove(up.outputPath)
		}

		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// Download 下载计算结果（一次性）
// GET /api/download/:token
func (h *Handler) Download(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 token"})
		return
	}

	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接已失效"})
		return
	}

	if _, err := os.Stat(item.filePath); err != nil {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "结果文件不存在"})
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": item.filename}))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(item.filePath)

	h.downloads.delete(token)
	_ = os.Remove(item.filePath)
}

func (h *Handler) saveUpload(c *gin.Context) (*upload, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未找到上传文件"})
		return nil, false
	}

	filename := filepath.Base(file.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "仅支持 .xlsx 文件"})
		return nil, false
	}

	id := uuid.New().String()
	up := &upload{
		filename:   filename,
		inputPath:  filepath.Join(h.dataDir, "uploads", id+".xlsx"),
		outputPath: filepath.Join(h.dataDir, "exports", id+".xlsx"),
		resultName: filepath.Base(excel.OutputPath(filename, "", "")),
	}

	if err := os.MkdirAll(filepath.Dir(up.inputPath), 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return nil, false
	}
	if err := c.SaveUploadedFile(file, up.inputPath); err != nil {
		h.logger.Error("保存上传文件失败", zap.String("filename", filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存文件失败"})
		return nil, false
	}
	return up, true
}

func (u *upload) options() importer.ProcessOptions {
	return importer.ProcessOptions{
		InputPath:  u.inputPath,
		OutputPath: u.outputPath,
		Filename:   u.filename,
	}
}

func (h *Handler) response(c *gin.Context, up *upload, report *importer.Report) ComputeResponse {
	token := h.downloads.put(up.outputPath, up.resultName, downloadTTL)
	return ComputeResponse{
		RunID:         report.RunID,
		Filename:      up.filename,
		Sheet:         report.Sheet,
		Employees:     report.Employees,
		Days:          report.Days,
		ErrorCount:    report.ErrorCount,
		TotalHours:    report.TotalHours,
		Flags:         report.Flags,
		DownloadToken: token,
		DownloadURL:   apiPrefix(c) + "/download/" + token,
	}
}

// statusForError 表格结构问题返回 422，其余为 500
func statusForError(err error) int {
	switch {
	case errors.Is(err, excel.ErrNoDayColumns),
		errors.Is(err, excel.ErrMissingDayColumns),
		errors.Is(err, overtime.ErrStructural):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func apiPrefix(c *gin.Context) string {
	path := c.FullPath()
	if i := strings.Index(path, "/overtime"); i >= 0 {
		return path[:i]
	}
	return "/api"
}
