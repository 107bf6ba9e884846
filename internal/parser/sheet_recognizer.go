package parser

// 员工标识列关键词
var employeeKeywords = []string{"姓名", "工号", "员工", "人员"}

// 最少日期列数，少于此数不视为考勤表
const minDayColumns = 3

// SheetRecognizer Sheet 类型识别器
type SheetRecognizer struct {
	date1904 bool
}

// NewSheetRecognizer 创建识别器，date1904 为工作簿的日期系统
func NewSheetRecognizer(date1904 bool) *SheetRecognizer {
	return &SheetRecognizer{date1904: date1904}
}

// Recognize 根据表头识别是否为考勤表
func (r *SheetRecognizer) Recognize(sheetName string, header []string) SheetRecognitionResult {
	result := SheetRecognitionResult{
		SheetName: sheetName,
		SheetType: SheetTypeUnknown,
	}

	months := make(map[int]int)
	hasEmployee := false
	for _, cell := range header {
		name := NormalizeColumnName(cell)
		if name == "" {
			continue
		}
		if month, _, ok := ParseDayHeader(name, r.date1904); ok {
			result.DayColumns++
			if month > 0 {
				months[month]++
			}
			continue
		}
		if ContainsAny(name, employeeKeywords) {
			hasEmployee = true
		}
	}

	best := 0
	for m, n := range months {
		if n > best || (n == best && m < result.Month) {
			result.Month, best = m, n
		}
	}

	if result.DayColumns < minDayColumns {
		return result
	}

	// 日期列占满一个月视为 0.8，有员工标识列再加 0.2
	result.Confidence = 0.8 * float64(min(result.DayColumns, 28)) / 28
	if hasEmployee {
		result.Confidence += 0.2
	}
	result.SheetType = SheetTypeAttendance
	return result
}

// Best 返回置信度最高的考勤表，没有考勤表时 ok 为 false
func Best(results []SheetRecognitionResult) (best SheetRecognitionResult, ok bool) {
	for _, res := range results {
		if res.SheetType != SheetTypeAttendance {
			continue
		}
		if !ok || res.Confidence > best.Confidence {
			best, ok = res, true
		}
	}
	return best, ok
}
