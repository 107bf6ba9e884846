package excel_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"overtime/internal/service/excel"
)

// buildAttendanceWorkbook 前 5 列为员工信息，第 6 列起为 10 月 1..6 日
func buildAttendanceWorkbook(t *testing.T, rows ...[]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	header := []interface{}{"姓名", "工号", "部门", "岗位", "班组"}
	for d := 1; d <= 6; d++ {
		header = append(header, time.Date(2025, time.October, d, 0, 0, 0, 0, time.UTC))
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	return f
}

func employee(name string, shifts ...string) []interface{} {
	row := []interface{}{name, "", "", "", ""}
	for _, s := range shifts {
		row = append(row, s)
	}
	return row
}

func TestLoader_ParseDateHeaders(t *testing.T) {
	f := buildAttendanceWorkbook(t,
		employee("张三", "08:00-20:00", "一线员工休息", "20:00-08:00", "休", "22:00-06:00", "白"),
		employee("李四", "", "", "", "", "", ""),
		employee("王五", "???", "白", "", "", "", ""),
	)

	loader := excel.NewLoader(excel.SheetOptions{
		HeaderRow:        1,
		EmployeeIDColumn: 1,
		FirstDayColumn:   6,
		Month:            10,
		TargetDays:       []int{1, 2, 3, 5, 6},
	}, nil)

	wb, err := loader.Parse(f)
	require.NoError(t, err)
	table := wb.Table

	assert.Equal(t, "Sheet1", table.Sheet)
	assert.Equal(t, 11, table.LastColumn)
	require.Len(t, table.Days, 5)
	assert.Equal(t, []int{1, 2, 3, 5, 6}, []int{table.Days[0].Day, table.Days[1].Day, table.Days[2].Day, table.Days[3].Day, table.Days[4].Day})
	assert.Equal(t, 6, table.Days[0].Column)
	assert.Equal(t, 10, table.Days[3].Column)

	// 李四整行为空但有姓名，保留
	require.Len(t, table.Rows, 3)
	zhang := table.Rows[0]
	assert.Equal(t, "张三", zhang.EmployeeID)
	assert.Equal(t, 2, zhang.SheetRow)
	require.Len(t, zhang.Cells, 5)
	assert.Equal(t, "08:00-20:00", zhang.Cells[0].Raw)
	assert.Equal(t, "F2", zhang.Cells[0].Ref)
	assert.Equal(t, "22:00-06:00", zhang.Cells[3].Raw)
	assert.Equal(t, "J2", zhang.Cells[3].Ref)

	assert.Equal(t, "???", table.Rows[2].Cells[0].Raw)
	assert.Equal(t, "F4", table.Rows[2].Cells[0].Ref)
}

func TestLoader_AllDaysAndTextHeaders(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"姓名", "1日", "2日", "3日", "1号加班"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	row := []interface{}{"赵六", "白", "休", "夜"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	blank := []interface{}{"", "", "", ""}
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &blank))
	noName := []interface{}{"", "白"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &noName))
	dup := []interface{}{"赵六", "休", "休", "休"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A5", &dup))

	wb, err := excel.NewLoader(excel.SheetOptions{}, nil).Parse(f)
	require.NoError(t, err)

	require.Len(t, wb.Table.Days, 3)
	require.Len(t, wb.Table.Rows, 3)
	assert.Equal(t, "第4行", wb.Table.Rows[1].EmployeeID)
	assert.Equal(t, "", wb.Table.Rows[1].Cells[2].Raw)
	assert.Equal(t, "赵六#5", wb.Table.Rows[2].EmployeeID)
}

func TestLoader_MissingTargetDays(t *testing.T) {
	f := buildAttendanceWorkbook(t, employee("张三", "白"))

	_, err := excel.NewLoader(excel.SheetOptions{FirstDayColumn: 6, Month: 10, TargetDays: []int{1, 7, 9}}, nil).Parse(f)
	require.ErrorIs(t, err, excel.ErrMissingDayColumns)
	assert.Contains(t, err.Error(), "[7 9]")
}

func TestLoader_WrongMonth(t *testing.T) {
	f := buildAttendanceWorkbook(t, employee("张三", "白"))

	_, err := excel.NewLoader(excel.SheetOptions{FirstDayColumn: 6, Month: 11}, nil).Parse(f)
	require.ErrorIs(t, err, excel.ErrNoDayColumns)
}

func TestLoader_LoadReaderAndMissingSheet(t *testing.T) {
	f := buildAttendanceWorkbook(t, employee("张三", "白"))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	wb, err := excel.NewLoader(excel.SheetOptions{FirstDayColumn: 6}, nil).Load(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	assert.Len(t, wb.Table.Days, 6)

	_, err = excel.NewLoader(excel.SheetOptions{Sheet: "不存在"}, nil).Load(bytes.NewReader(buf.Bytes()))
	require.Error(t, err)
}

func TestLoader_DetectsAttendanceSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	intro := []interface{}{"说明", "本表为 10 月排班"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &intro))

	_, err := f.NewSheet("10月")
	require.NoError(t, err)
	header := []interface{}{"姓名", "1日", "2日", "3日"}
	require.NoError(t, f.SetSheetRow("10月", "A1", &header))
	row := []interface{}{"张三", "白", "休", "白"}
	require.NoError(t, f.SetSheetRow("10月", "A2", &row))

	wb, err := excel.NewLoader(excel.SheetOptions{}, nil).Parse(f)
	require.NoError(t, err)
	assert.Equal(t, "10月", wb.Table.Sheet)
	assert.Len(t, wb.Table.Days, 3)

	// 指定工作表时不做识别
	_, err = excel.NewLoader(excel.SheetOptions{Sheet: "Sheet1"}, nil).Parse(f)
	require.ErrorIs(t, err, excel.ErrNoDayColumns)
}

func TestLoader_LastColumnCountsFormattedColumns(t *testing.T) {
	f := buildAttendanceWorkbook(t, employee("张三", "白"))

	// L..M 列只有格式没有值
	style, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "L1", "M2", style))
	require.NoError(t, f.SetSheetDimension("Sheet1", "A1:M2"))

	wb, err := excel.NewLoader(excel.SheetOptions{FirstDayColumn: 6}, nil).Parse(f)
	require.NoError(t, err)
	assert.Equal(t, 13, wb.Table.LastColumn)
}
