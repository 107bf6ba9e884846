package excel

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"overtime/internal/model"
	"overtime/internal/parser"
)

var (
	// ErrNoDayColumns 表头中没有任何日期列
	ErrNoDayColumns = errors.New("未识别到日期列")
	// ErrMissingDayColumns 缺少配置的目标日期列
	ErrMissingDayColumns = errors.New("缺少目标日期列")
)

// SheetOptions 考勤表读取选项
type SheetOptions struct {
	Sheet            string
	HeaderRow        int
	EmployeeIDColumn int
	FirstDayColumn   int
	Month            int
	TargetDays       []int
}

// Workbook 已加载的工作簿及解析出的考勤表
type Workbook struct {
	File      *excelize.File
	Table     *model.AttendanceTable
	HeaderRow int
	Date1904  bool
}

// Close 关闭工作簿
func (w *Workbook) Close() error {
	if w == nil || w.File == nil {
		return nil
	}
	return w.File.Close()
}

// Loader 考勤表加载器
type Loader struct {
	opts   SheetOptions
	logger *zap.Logger
}

// NewLoader 创建加载器
func NewLoader(opts SheetOptions, logger *zap.Logger) *Loader {
	if opts.HeaderRow <= 0 {
		opts.HeaderRow = 1
	}
	if opts.EmployeeIDColumn <= 0 {
		opts.EmployeeIDColumn = 1
	}
	if opts.FirstDayColumn <= 0 {
		opts.FirstDayColumn = opts.EmployeeIDColumn + 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{opts: opts, logger: logger}
}

// LoadFile 从文件加载
func (l *Loader) LoadFile(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	wb, err := l.Parse(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return wb, nil
}

// Load 从 reader 加载
func (l *Loader) Load(reader io.Reader) (*Workbook, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	wb, err := l.Parse(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	return wb, nil
}

// Parse 从已打开的工作簿解析考勤表
func (l *Loader) Parse(file *excelize.File) (*Workbook, error) {
	date1904 := false
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	sheet := l.opts.Sheet
	if sheet == "" {
		sheet = l.detectSheet(file, date1904)
	}
	if idx, err := file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}

	rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) < l.opts.HeaderRow {
		return nil, fmt.Errorf("sheet %q: header row %d not found", sheet, l.opts.HeaderRow)
	}

	days, err := l.dayColumns(rows[l.opts.HeaderRow-1], date1904)
	if err != nil {
		return nil, err
	}

	table := &model.AttendanceTable{
		Sheet:      sheet,
		Days:       days,
		Rows:       []model.EmployeeRow{},
		LastColumn: max(lastColumn(rows), dimensionColumn(file, sheet)),
	}

	seen := make(map[string]bool)
	for i := l.opts.HeaderRow; i < len(rows); i++ {
		sheetRow := i + 1
		row, ok := l.parseRow(rows[i], sheetRow, days)
		if !ok {
			continue
		}
		if seen[row.EmployeeID] {
			renamed := fmt.Sprintf("%s#%d", row.EmployeeID, sheetRow)
			l.logger.Warn("员工标识重复，已追加行号", zap.String("employee", row.EmployeeID), zap.Int("row", sheetRow))
			row.EmployeeID = renamed
		}
		seen[row.EmployeeID] = true
		table.Rows = append(table.Rows, row)
	}

	l.logger.Info("读取考勤表",
		zap.String("sheet", sheet),
		zap.Int("employees", len(table.Rows)),
		zap.Int("days", len(days)))

	return &Workbook{
		File:      file,
		Table:     table,
		HeaderRow: l.opts.HeaderRow,
		Date1904:  date1904,
	}, nil
}

// detectSheet 活动工作表不像考勤表时，在所有工作表中选置信度最高的
func (l *Loader) detectSheet(file *excelize.File, date1904 bool) string {
	active := file.GetSheetName(file.GetActiveSheetIndex())
	recognizer := parser.NewSheetRecognizer(date1904)

	results := make([]parser.SheetRecognitionResult, 0, len(file.GetSheetList()))
	for _, name := range file.GetSheetList() {
		header := l.headerRow(file, name)
		res := recognizer.Recognize(name, header)
		if name == active && res.SheetType == parser.SheetTypeAttendance {
			return active
		}
		results = append(results, res)
	}

	best, ok := parser.Best(results)
	if !ok {
		return active
	}
	l.logger.Info("活动工作表不是考勤表，改用识别结果",
		zap.String("active", active),
		zap.String("sheet", best.SheetName),
		zap.Float64("confidence", best.Confidence))
	return best.SheetName
}

func (l *Loader) headerRow(file *excelize.File, sheet string) []string {
	rows, err := file.Rows(sheet)
	if err != nil {
		return nil
	}
	defer rows.Close()

	for i := 1; rows.Next(); i++ {
		if i < l.opts.HeaderRow {
			continue
		}
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil
		}
		return cols
	}
	return nil
}

// dayColumns 识别表头中的日期列
func (l *Loader) dayColumns(header []string, date1904 bool) ([]model.DayColumn, error) {
	targets := l.opts.TargetDays
	days := make([]model.DayColumn, 0, 31)
	seen := make(map[int]bool)

	for idx, value := range header {
		column := idx + 1
		if column < l.opts.FirstDayColumn {
			continue
		}
		month, day, ok := parser.ParseDayHeader(value, date1904)
		if !ok {
			continue
		}
		if l.opts.Month > 0 && month > 0 && month != l.opts.Month {
			continue
		}
		if len(targets) > 0 && !slices.Contains(targets, day) {
			continue
		}
		if seen[day] {
			l.logger.Warn("日期列重复，忽略", zap.Int("day", day), zap.Int("column", column))
			continue
		}
		seen[day] = true
		days = append(days, model.DayColumn{Day: day, Label: strings.TrimSpace(value), Column: column})
		l.logger.Info("识别到目标日期列", zap.Int("day", day), zap.Int("column", column))
	}

	var missing []int
	for _, d := range targets {
		if !seen[d] && !slices.Contains(missing, d) {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMissingDayColumns, missing)
	}
	if len(days) == 0 {
		return nil, ErrNoDayColumns
	}
	return days, nil
}

// parseRow 解析单行，空行返回 false
func (l *Loader) parseRow(values []string, sheetRow int, days []model.DayColumn) (model.EmployeeRow, bool) {
	get := func(column int) string {
		if column-1 < len(values) {
			return values[column-1]
		}
		return ""
	}

	row := model.EmployeeRow{
		EmployeeID: strings.TrimSpace(get(l.opts.EmployeeIDColumn)),
		SheetRow:   sheetRow,
		Cells:      make([]model.ShiftCell, len(days)),
	}

	blank := true
	for i, d := range days {
		ref, _ := excelize.CoordinatesToCellName(d.Column, sheetRow)
		raw := get(d.Column)
		if strings.TrimSpace(raw) != "" {
			blank = false
		}
		row.Cells[i] = model.ShiftCell{Raw: raw, Ref: ref}
	}

	if row.EmployeeID == "" {
		if blank {
			return row, false
		}
		row.EmployeeID = fmt.Sprintf("第%d行", sheetRow)
	}
	return row, true
}

// dimensionColumn 工作表 dimension 记录的最大列，含仅设置了格式的空列
func dimensionColumn(file *excelize.File, sheet string) int {
	dim, err := file.GetSheetDimension(sheet)
	if err != nil || dim == "" {
		return 0
	}
	ref := dim
	if i := strings.LastIndex(dim, ":"); i >= 0 {
		ref = dim[i+1:]
	}
	col, _, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0
	}
	return col
}

func lastColumn(rows [][]string) int {
	last := 0
	for _, r := range rows {
		for i := len(r) - 1; i >= 0; i-- {
			if r[i] != "" {
				last = max(last, i+1)
				break
			}
		}
	}
	return last
}
