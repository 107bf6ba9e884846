package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"overtime/internal/config"
	"overtime/internal/model"
	"overtime/internal/service/excel"
	"overtime/internal/service/overtime"
	"overtime/internal/store"
)

// Coordinator 考勤表处理协调器：读取 -> 计算 -> 写回 -> 记录历史
type Coordinator struct {
	sheet  config.SheetConfig
	engine *overtime.Engine
	store  *store.Store // 可为 nil，表示不记录历史
	logger *zap.Logger
}

// NewCoordinator 创建协调器
func NewCoordinator(sheet config.SheetConfig, engine *overtime.Engine, st *store.Store, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		sheet:  sheet,
		engine: engine,
		store:  st,
		logger: logger,
	}
}

// ProcessOptions 处理选项
type ProcessOptions struct {
	InputPath  string
	OutputPath string
	Filename   string // 记录到历史中的文件名，为空时取 InputPath 的文件名
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`    // start/loaded/computed/saved/done/error
	Message   string      `json:"message"` // 事件消息
	Data      interface{} `json:"data"`    // 附加数据
	Timestamp time.Time   `json:"timestamp"`
}

// Report 处理结果
type Report struct {
	RunID      string              `json:"runId,omitempty"`
	InputPath  string              `json:"inputPath"`
	OutputPath string              `json:"outputPath"`
	Sheet      string              `json:"sheet"`
	Employees  int                 `json:"employees"`
	Days       []int               `json:"days"`
	ErrorCount int                 `json:"errorCount"`
	TotalHours float64             `json:"totalHours"`
	Flags      []model.ErrorMarker `json:"flags"`
	Duration   time.Duration       `json:"duration"`
}

// Process 同步处理
func (c *Coordinator) Process(ctx context.Context, opts ProcessOptions) (*Report, error) {
	return c.process(ctx, opts, nil)
}

// Stream 异步处理，返回进度通道，最后一个事件为 done 或 error
func (c *Coordinator) Stream(ctx context.Context, opts ProcessOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		report, err := c.process(ctx, opts, progressChan)
		if err != nil {
			c.sendProgress(progressChan, ProgressEvent{
				Type:      "error",
				Message:   err.Error(),
				Timestamp: time.Now(),
			})
			return
		}
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "done",
			Message:   "加班统计完成",
			Data:      report,
			Timestamp: time.Now(),
		})
	}()

	return progressChan
}

func (c *Coordinator) process(ctx context.Context, opts ProcessOptions, progressChan chan ProgressEvent) (*Report, error) {
	startTime := time.Now()
	filename := opts.Filename
	if filename == "" {
		filename = filepath.Base(opts.InputPath)
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "start",
		Message:   "开始读取考勤文件",
		Data:      map[string]string{"filename": filename},
		Timestamp: time.Now(),
	})
	c.logger.Info("读取考勤文件", zap.String("path", opts.InputPath))

	runID, err := c.createRun(filename, opts.InputPath)
	if err != nil {
		return nil, err
	}

	report, err := c.run(ctx, runID, opts, progressChan)
	if err != nil {
		c.failRun(runID, err)
		c.logger.Error("加班统计失败", zap.String("path", opts.InputPath), zap.Error(err))
		return nil, err
	}
	report.RunID = runID
	report.Duration = time.Since(startTime)
	return report, nil
}

func (c *Coordinator) run(ctx context.Context, runID string, opts ProcessOptions, progressChan chan ProgressEvent) (*Report, error) {
	loader := excel.NewLoader(SheetOptions(c.sheet), c.logger)
	wb, err := loader.LoadFile(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("读取考勤文件失败: %w", err)
	}
	defer wb.Close()

	table := wb.Table
	days := make([]int, 0, len(table.Days))
	for _, d := range table.Days {
		days = append(days, d.Day)
	}
	c.sendProgress(progressChan, ProgressEvent{
		Type:    "loaded",
		Message: fmt.Sprintf("识别到 %d 名员工、%d 个日期列", len(table.Rows), len(days)),
		Data: map[string]interface{}{
			"sheet":     table.Sheet,
			"employees": len(table.Rows),
			"days":      days,
		},
		Timestamp: time.Now(),
	})

	annotated, err := c.engine.Run(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("加班计算失败: %w", err)
	}
	c.sendProgress(progressChan, ProgressEvent{
		Type:    "computed",
		Message: fmt.Sprintf("计算完成，%d 个单元格需要人工核对", annotated.ErrorCount()),
		Data: map[string]interface{}{
			"errors": annotated.ErrorCount(),
		},
		Timestamp: time.Now(),
	})

	writer := excel.NewWriter(c.sheet.Author, c.logger)
	if err := writer.Apply(wb, annotated); err != nil {
		return nil, fmt.Errorf("写入结果失败: %w", err)
	}
	if err := writer.Save(wb, opts.OutputPath); err != nil {
		return nil, err
	}
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "saved",
		Message:   "结果已保存",
		Data:      map[string]string{"output": filepath.Base(opts.OutputPath)},
		Timestamp: time.Now(),
	})

	if c.store != nil && runID != "" {
		if err := c.store.CompleteRun(runID, annotated, opts.OutputPath); err != nil {
			return nil, fmt.Errorf("记录计算历史失败: %w", err)
		}
	}
	c.logger.Info("加班统计完成",
		zap.String("output", opts.OutputPath),
		zap.Int("employees", len(table.Rows)),
		zap.Int("errors", annotated.ErrorCount()),
	)

	return &Report{
		InputPath:  opts.InputPath,
		OutputPath: opts.OutputPath,
		Sheet:      table.Sheet,
		Employees:  len(table.Rows),
		Days:       days,
		ErrorCount: annotated.ErrorCount(),
		TotalHours: annotated.TotalOvertimeHours(),
		Flags:      annotated.Flags,
	}, nil
}

// createRun 未配置 store 时返回空 id
func (c *Coordinator) createRun(filename, path string) (string, error) {
	if c.store == nil {
		return "", nil
	}
	hash, err := fileHash(path)
	if err != nil {
		return "", fmt.Errorf("读取考勤文件失败: %w", err)
	}
	id, err := c.store.CreateRun(filename, hash)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (c *Coordinator) failRun(runID string, cause error) {
	if c.store == nil || runID == "" {
		return
	}
	if err := c.store.FailRun(runID, cause.Error()); err != nil {
		c.logger.Warn("记录失败状态出错", zap.String("run", runID), zap.Error(err))
	}
}

// sendProgress 非阻塞发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	if ch == nil {
		return
	}
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}

// SheetOptions 配置转换为加载选项
func SheetOptions(s config.SheetConfig) excel.SheetOptions {
	return excel.SheetOptions{
		Sheet:            s.Sheet,
		HeaderRow:        s.HeaderRow,
		EmployeeIDColumn: s.EmployeeIDColumn,
		FirstDayColumn:   s.FirstDayColumn,
		Month:            s.Month,
		TargetDays:       s.SortedTargetDays(),
	}
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
