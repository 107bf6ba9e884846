package overtime

import (
	"fmt"

	"overtime/internal/model"
)

func testRules() Rules {
	return Rules{
		Codes: []ShiftCode{
			{Code: "休", Kind: model.ShiftRest},
			{Code: "一线员工休息", Kind: model.ShiftRest},
			{Code: "白", Kind: model.ShiftStandard, Start: 9 * 60, End: 18 * 60},
			{Code: "夜", Kind: model.ShiftOvernight, Start: 22 * 60, End: 6 * 60},
		},
		BaselineHours: 8,
		EmptyIsRest:   true,
	}
}

// fixedBreaks 三个固定休息时段
func fixedBreaks() []BreakWindow {
	return []BreakWindow{
		{Start: 11*60 + 30, End: 12 * 60, Label: "11:30-12:00"},
		{Start: 17 * 60, End: 17*60 + 30, Label: "17:00-17:30"},
		{Start: 23 * 60, End: 23*60 + 30, Label: "23:00-23:30"},
	}
}

func buildTable(rows ...[]string) *model.AttendanceTable {
	table := &model.AttendanceTable{Sheet: "考勤", LastColumn: 5}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	for d := 1; d <= width; d++ {
		table.Days = append(table.Days, model.DayColumn{Day: d, Label: fmt.Sprintf("%d日", d), Column: 5 + d})
	}
	table.LastColumn = 5 + width
	for i, r := range rows {
		row := model.EmployeeRow{EmployeeID: fmt.Sprintf("员工%d", i+1), SheetRow: i + 2}
		for j, raw := range r {
			row.Cells = append(row.Cells, model.ShiftCell{Raw: raw, Ref: fmt.Sprintf("%c%d", 'F'+j, i+2)})
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func floatPtr(v float64) *float64 {
	return &v
}
