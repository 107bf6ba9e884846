package overtime

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"overtime/internal/model"
)

// Engine 加班计算引擎
type Engine struct {
	rules     Rules
	resolver  *Resolver
	evaluator *Evaluator
	workers   int
	logger    *zap.Logger
}

// Option 引擎选项
type Option func(*Engine)

// WithWorkers 设置并发行数，<=0 时使用 CPU 数
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine 创建引擎，规则在此拷贝并校验，运行期间只读
func NewEngine(rules Rules, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	rules = rules.clone()

	e := &Engine{
		rules:     rules,
		resolver:  NewResolver(rules),
		evaluator: NewEvaluator(rules),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.NumCPU()
	}
	return e, nil
}

// Rules 返回规则副本
func (e *Engine) Rules() Rules {
	return e.rules.clone()
}

// RowResult 单行计算结果
type RowResult struct {
	Results []model.OvertimeResult // 与 Days 对齐，失败处为占位结果
	Markers []model.ErrorMarker
}

// Run 计算整张表
// 表结构不合法时返回 *StructuralError，单元格问题只会产生 ErrorMarker
func (e *Engine) Run(ctx context.Context, table *model.AttendanceTable) (*model.AnnotatedTable, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}

	e.logger.Info("开始计算",
		zap.String("sheet", table.Sheet),
		zap.Int("employees", len(table.Rows)),
		zap.Int("days", len(table.Days)),
		zap.Int("workers", e.workers))

	results := make([]RowResult, len(table.Rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range table.Rows {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.processRow(i, table.Rows[i], table.Days)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	annotated := Annotate(table, results)
	e.logger.Info("计算完成",
		zap.Int("columns", len(annotated.Columns)),
		zap.Int("errors", annotated.ErrorCount()))
	return annotated, nil
}

// processRow 逐日计算一行，行之间互不影响
func (e *Engine) processRow(idx int, row model.EmployeeRow, days []model.DayColumn) RowResult {
	out := RowResult{Results: make([]model.OvertimeResult, len(days))}

	var prev *model.ShiftDescriptor
	for i, cell := range row.Cells {
		day := days[i]
		if i > 0 && days[i-1].Day+1 != day.Day {
			// 日期不连续，前一列不是前一天
			prev = nil
		}

		desc := e.resolver.Resolve(cell.Raw)
		result, err := e.evaluator.Evaluate(desc, EvalContext{Day: day.Day, Prev: prev})
		if err != nil {
			marker := newMarker(idx, row, day, cell, err)
			out.Markers = append(out.Markers, marker)
			result = model.OvertimeResult{
				ShiftText: desc.Text,
				Kind:      desc.Kind,
				Failed:    true,
				Note:      failedNote(desc.Text, marker.Kind, marker.Reason),
			}
			e.logger.Warn("排班单元格无法计算",
				zap.String("employee", row.EmployeeID),
				zap.Int("day", day.Day),
				zap.String("cell", cell.Ref),
				zap.String("raw", cell.Raw),
				zap.String("reason", marker.Reason))
		} else {
			e.logger.Debug("完成单元格计算",
				zap.String("employee", row.EmployeeID),
				zap.Int("day", day.Day),
				zap.String("shift", orDash(result.ShiftText)),
				zap.Float64("hours", result.FinalOvertimeHours),
				zap.String("rest", SummarizeRestLabels(result.RestLabels)))
		}
		out.Results[i] = result

		if desc.IsWork() && err == nil {
			d := desc
			prev = &d
		} else {
			prev = nil
		}
	}
	return out
}

func newMarker(idx int, row model.EmployeeRow, day model.DayColumn, cell model.ShiftCell, err error) model.ErrorMarker {
	marker := model.ErrorMarker{
		EmployeeID: row.EmployeeID,
		RowIndex:   idx,
		SheetRow:   row.SheetRow,
		Day:        day.Day,
		Ref:        cell.Ref,
		Raw:        cell.Raw,
		Kind:       model.ErrorComputation,
		Reason:     err.Error(),
	}

	var malformedErr *MalformedShiftError
	var computationErr *ComputationError
	switch {
	case errors.As(err, &malformedErr):
		marker.Kind = model.ErrorMalformed
		marker.Reason = malformedErr.Reason
	case errors.As(err, &computationErr):
		marker.Reason = computationErr.Reason
	}
	return marker
}

// ValidateTable 校验表结构：每行单元格数与日期列数一致、员工标识唯一
func ValidateTable(table *model.AttendanceTable) error {
	if table == nil {
		return &StructuralError{Msg: "nil table"}
	}
	if len(table.Days) == 0 {
		return &StructuralError{Msg: "table has no day columns"}
	}

	days := make(map[int]bool, len(table.Days))
	for _, d := range table.Days {
		if d.Day < 1 || d.Day > 31 {
			return &StructuralError{Msg: fmt.Sprintf("invalid day index %d", d.Day)}
		}
		if days[d.Day] {
			return &StructuralError{Msg: fmt.Sprintf("duplicate day column %d", d.Day)}
		}
		days[d.Day] = true
	}

	ids := make(map[string]int, len(table.Rows))
	for i, row := range table.Rows {
		if len(row.Cells) != len(table.Days) {
			return &StructuralError{RowIndex: i, EmployeeID: row.EmployeeID, Want: len(table.Days), Got: len(row.Cells)}
		}
		if row.EmployeeID == "" {
			return &StructuralError{Msg: fmt.Sprintf("row %d has empty employee id", i)}
		}
		if first, ok := ids[row.EmployeeID]; ok {
			return &StructuralError{Msg: fmt.Sprintf("employee id %q repeated in rows %d and %d", row.EmployeeID, first, i)}
		}
		ids[row.EmployeeID] = i
	}
	return nil
}
