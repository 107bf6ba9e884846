package parser

// SheetType Sheet 类型
type SheetType string

const (
	SheetTypeAttendance SheetType = "attendance" // 考勤表
	SheetTypeUnknown    SheetType = "unknown"
)

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName  string    `json:"sheetName"`
	SheetType  SheetType `json:"sheetType"`
	Confidence float64   `json:"confidence"`
	DayColumns int       `json:"dayColumns"` // 识别到的日期列数
	Month      int       `json:"month"`      // 表头日期中出现最多的月份，0 表示未知
}
