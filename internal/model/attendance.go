package model

// DayColumn 日期列（源表中的一天）
type DayColumn struct {
	Day    int    `json:"day"`    // 日期序号 1..31
	Label  string `json:"label"`  // 源表表头文本
	Column int    `json:"column"` // 源表列号（从 1 开始）
}

// ShiftCell 排班单元格，引擎只读
type ShiftCell struct {
	Raw string `json:"raw"` // 原始值
	Ref string `json:"ref"` // 单元格坐标，如 F3
}

// EmployeeRow 员工行
type EmployeeRow struct {
	EmployeeID string      `json:"employeeId"`
	SheetRow   int         `json:"sheetRow"` // 源表行号（从 1 开始）
	Cells      []ShiftCell `json:"cells"`    // 与 AttendanceTable.Days 按下标对齐
}

// AttendanceTable 考勤表
type AttendanceTable struct {
	Sheet      string        `json:"sheet"`
	Days       []DayColumn   `json:"days"`
	Rows       []EmployeeRow `json:"rows"`
	LastColumn int           `json:"lastColumn"` // 源表最后一列，派生列从其后开始
}

// DerivedColumn 派生的加班列
type DerivedColumn struct {
	Day     DayColumn        `json:"day"`
	Label   string           `json:"label"`   // 如 "3号加班"
	Column  int              `json:"column"`  // 输出列号
	Results []OvertimeResult `json:"results"` // 与 AttendanceTable.Rows 按下标对齐
}

// AnnotatedTable 引擎输出：原表 + 派生列 + 错误标记
type AnnotatedTable struct {
	Source  *AttendanceTable `json:"-"`
	Columns []DerivedColumn  `json:"columns"`
	Flags   []ErrorMarker    `json:"flags"`
}

// ErrorCount 错误单元格数量
func (t *AnnotatedTable) ErrorCount() int {
	if t == nil {
		return 0
	}
	return len(t.Flags)
}

// TotalOvertimeHours 全表加班工时合计
func (t *AnnotatedTable) TotalOvertimeHours() float64 {
	if t == nil {
		return 0
	}
	var total float64
	for _, col := range t.Columns {
		for _, r := range col.Results {
			total += r.FinalOvertimeHours
		}
	}
	return total
}
