package model

// OvertimeResult 单个员工单日的加班计算结果
type OvertimeResult struct {
	ShiftText            string    `json:"shiftText"`
	Kind                 ShiftKind `json:"kind"`
	ScheduledHours       float64   `json:"scheduledHours"` // 排班时长（未扣休息）
	WorkedMinutes        int       `json:"workedMinutes"`  // 扣除休息后的工时
	RestDeductionMinutes int       `json:"restDeductionMinutes"`
	RestLabels           []string  `json:"restLabels,omitempty"`
	FinalOvertimeHours   float64   `json:"finalOvertimeHours"`
	Note                 string    `json:"note"`
	Failed               bool      `json:"failed"` // 计算失败时为占位结果
}

// ErrorKind 单元格错误类型
type ErrorKind string

const (
	ErrorMalformed   ErrorKind = "malformed"   // 排班无法解析
	ErrorComputation ErrorKind = "computation" // 规则无法计算
)

// ErrorMarker 需要标红的源单元格
type ErrorMarker struct {
	EmployeeID string    `json:"employeeId"`
	RowIndex   int       `json:"rowIndex"` // AttendanceTable.Rows 下标
	SheetRow   int       `json:"sheetRow"`
	Day        int       `json:"day"`
	Ref        string    `json:"ref"`
	Raw        string    `json:"raw"`
	Kind       ErrorKind `json:"kind"`
	Reason     string    `json:"reason"`
}
