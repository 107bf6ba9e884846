package overtime

import (
	"cmp"
	"slices"

	"overtime/internal/model"
)

// Annotate 汇总各行结果为派生列，并收集错误标记
// rows 必须与 table.Rows 按下标对齐
func Annotate(table *model.AttendanceTable, rows []RowResult) *model.AnnotatedTable {
	base := table.LastColumn
	for _, d := range table.Days {
		base = max(base, d.Column)
	}

	out := &model.AnnotatedTable{
		Source:  table,
		Columns: make([]model.DerivedColumn, len(table.Days)),
		Flags:   []model.ErrorMarker{},
	}

	position := make(map[int]int, len(table.Days))
	for j, day := range table.Days {
		position[day.Day] = j
		col := model.DerivedColumn{
			Day:     day,
			Label:   DerivedLabel(day.Day),
			Column:  base + j + 1,
			Results: make([]model.OvertimeResult, len(table.Rows)),
		}
		for i := range table.Rows {
			if i < len(rows) && j < len(rows[i].Results) {
				col.Results[i] = rows[i].Results[j]
			}
		}
		out.Columns[j] = col
	}

	for _, r := range rows {
		out.Flags = append(out.Flags, r.Markers...)
	}
	slices.SortStableFunc(out.Flags, func(a, b model.ErrorMarker) int {
		if c := cmp.Compare(a.RowIndex, b.RowIndex); c != 0 {
			return c
		}
		return cmp.Compare(position[a.Day], position[b.Day])
	})

	return out
}
