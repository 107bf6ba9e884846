package excel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"overtime/internal/model"
	"overtime/internal/service/overtime"
)

// ErrorFillColor 错误单元格底色
const ErrorFillColor = "#FFC7CE"

// Writer 将计算结果写回工作簿
type Writer struct {
	author string
	logger *zap.Logger
}

// NewWriter 创建写入器
func NewWriter(author string, logger *zap.Logger) *Writer {
	if author == "" {
		author = "加班统计"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{author: author, logger: logger}
}

// Apply 追加派生列、写入批注，并将错误源单元格标红
func (w *Writer) Apply(wb *Workbook, at *model.AnnotatedTable) error {
	if wb == nil || wb.File == nil || at == nil || at.Source == nil {
		return fmt.Errorf("nothing to write")
	}
	f := wb.File
	sheet := at.Source.Sheet

	// 设置表头样式
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for _, col := range at.Columns {
		header, err := excelize.CoordinatesToCellName(col.Column, wb.HeaderRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, header, col.Label); err != nil {
			return fmt.Errorf("failed to write header %s: %w", header, err)
		}
		if err := f.SetCellStyle(sheet, header, header, headerStyle); err != nil {
			return err
		}
		name, _ := excelize.ColumnNumberToName(col.Column)
		if err := f.SetColWidth(sheet, name, name, 10); err != nil {
			return err
		}

		w.logger.Info("写入加班列",
			zap.String("label", col.Label),
			zap.Int("sourceColumn", col.Day.Column),
			zap.Int("column", col.Column))

		for i, result := range col.Results {
			cell, err := excelize.CoordinatesToCellName(col.Column, at.Source.Rows[i].SheetRow)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, result.FinalOvertimeHours); err != nil {
				return fmt.Errorf("failed to write %s: %w", cell, err)
			}
			if err := f.AddComment(sheet, excelize.Comment{Cell: cell, Author: w.author, Text: result.Note}); err != nil {
				return fmt.Errorf("failed to comment %s: %w", cell, err)
			}
		}
	}

	return w.flagErrors(f, sheet, at.Flags)
}

// flagErrors 错误源单元格：底色标红，已有批注时不覆盖
func (w *Writer) flagErrors(f *excelize.File, sheet string, flags []model.ErrorMarker) error {
	if len(flags) == 0 {
		return nil
	}

	commented := make(map[string]bool)
	if comments, err := f.GetComments(sheet); err == nil {
		for _, c := range comments {
			commented[strings.ToUpper(c.Cell)] = true
		}
	}

	// 原样式 ID -> 标红后的样式 ID，保留单元格原有格式
	flagged := make(map[int]int)
	for _, m := range flags {
		styleID, err := f.GetCellStyle(sheet, m.Ref)
		if err != nil {
			return fmt.Errorf("failed to read style of %s: %w", m.Ref, err)
		}
		newID, ok := flagged[styleID]
		if !ok {
			style, err := f.GetStyle(styleID)
			if err != nil || style == nil {
				style = &excelize.Style{}
			}
			style.Fill = excelize.Fill{Type: "pattern", Color: []string{ErrorFillColor}, Pattern: 1}
			newID, err = f.NewStyle(style)
			if err != nil {
				return fmt.Errorf("failed to create error style: %w", err)
			}
			flagged[styleID] = newID
		}
		if err := f.SetCellStyle(sheet, m.Ref, m.Ref, newID); err != nil {
			return err
		}

		if !commented[strings.ToUpper(m.Ref)] {
			if err := f.AddComment(sheet, excelize.Comment{Cell: m.Ref, Author: w.author, Text: overtime.FlagNote(m)}); err != nil {
				return fmt.Errorf("failed to comment %s: %w", m.Ref, err)
			}
			commented[strings.ToUpper(m.Ref)] = true
		}

		w.logger.Warn("标记错误单元格",
			zap.String("cell", m.Ref),
			zap.String("employee", m.EmployeeID),
			zap.String("reason", m.Reason))
	}
	return nil
}

// Save 保存到 path，自动创建目录
func (w *Writer) Save(wb *Workbook, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := wb.File.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	w.logger.Info("结果已保存", zap.String("path", path))
	return nil
}

// OutputPath 输出文件路径：未指定时为 <输入文件名>-加班统计.xlsx；相对路径写入 root
func OutputPath(input, output, root string) string {
	if output != "" {
		if filepath.IsAbs(output) {
			return output
		}
		return filepath.Join(root, output)
	}
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(root, stem+"-加班统计.xlsx")
}
