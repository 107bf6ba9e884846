package excel_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"overtime/internal/model"
	"overtime/internal/service/excel"
	"overtime/internal/service/overtime"
)

func fixedBreakRules() overtime.Rules {
	zero := 0.0
	return overtime.Rules{
		Codes: []overtime.ShiftCode{
			{Code: "一线员工休息", Kind: model.ShiftRest},
			{Code: "休", Kind: model.ShiftRest},
			{Code: "白", Kind: model.ShiftStandard, Start: 540, End: 1080},
		},
		Breaks: []overtime.BreakWindow{
			{Start: 690, End: 720, Label: "11:30-12:00"},
			{Start: 1020, End: 1050, Label: "17:00-17:30"},
			{Start: 1380, End: 1410, Label: "23:00-23:30"},
		},
		Days: map[int]overtime.DayRule{
			1: {Segment: overtime.SegmentFull},
			2: {Segment: overtime.SegmentFull},
			3: {Segment: overtime.SegmentUntilMidnight},
			5: {Segment: overtime.SegmentAfterMidnight, BaselineHours: &zero},
			6: {Segment: overtime.SegmentUntilMidnight},
		},
		EmptyIsRest: true,
	}
}

func TestWriter_ApplyAndReopen(t *testing.T) {
	f := buildAttendanceWorkbook(t,
		employee("张三", "08:00-20:00", "一线员工休息", "20:00-08:00", "休", "22:00-06:00", "白"),
		employee("王五", "???", "白", "", "", "", ""),
	)
	wb, err := excel.NewLoader(excel.SheetOptions{FirstDayColumn: 6, Month: 10, TargetDays: []int{1, 2, 3, 5, 6}}, nil).Parse(f)
	require.NoError(t, err)

	engine, err := overtime.NewEngine(fixedBreakRules())
	require.NoError(t, err)
	at, err := engine.Run(context.Background(), wb.Table)
	require.NoError(t, err)
	require.Len(t, at.Flags, 1)

	require.NoError(t, excel.NewWriter("测试", nil).Apply(wb, at))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	out, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer out.Close()

	// 源表 11 列，派生列从 L 列开始
	for i, want := range []string{"1号加班", "2号加班", "3号加班", "5号加班", "6号加班"} {
		cell, _ := excelize.CoordinatesToCellName(12+i, 1)
		got, err := out.GetCellValue("Sheet1", cell)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// 08:00-20:00 扣 11:30-12:00、17:00-17:30 共 1 小时
	v, err := out.GetCellValue("Sheet1", "L2")
	require.NoError(t, err)
	assert.Equal(t, "11", v)
	// 20:00-08:00 只统计零点前：20:00-24:00 扣 23:00-23:30
	v, err = out.GetCellValue("Sheet1", "N2")
	require.NoError(t, err)
	assert.Equal(t, "3.5", v)
	// 22:00-06:00 只统计零点后
	v, err = out.GetCellValue("Sheet1", "O2")
	require.NoError(t, err)
	assert.Equal(t, "6", v)
	v, err = out.GetCellValue("Sheet1", "L3")
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	comments, err := out.GetComments("Sheet1")
	require.NoError(t, err)
	byCell := make(map[string]string)
	for _, c := range comments {
		text := c.Text
		for _, p := range c.Paragraph {
			text += p.Text
		}
		byCell[c.Cell] = text
	}
	assert.Contains(t, byCell["L2"], "11:30-12:00，17:00-17:30")
	assert.Contains(t, byCell["M2"], "休息日")
	assert.Contains(t, byCell["F3"], "unrecognized shift code")
	assert.Len(t, byCell, 10+1)

	styleID, err := out.GetCellStyle("Sheet1", "F3")
	require.NoError(t, err)
	style, err := out.GetStyle(styleID)
	require.NoError(t, err)
	require.NotEmpty(t, style.Fill.Color)
	assert.Contains(t, strings.ToUpper(style.Fill.Color[0]), "FFC7CE")

	clean, err := out.GetCellStyle("Sheet1", "F2")
	require.NoError(t, err)
	assert.NotEqual(t, styleID, clean)
}

func TestWriter_SaveCreatesDirectory(t *testing.T) {
	f := buildAttendanceWorkbook(t, employee("张三", "白"))
	wb, err := excel.NewLoader(excel.SheetOptions{FirstDayColumn: 6}, nil).Parse(f)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "out.xlsx")
	require.NoError(t, excel.NewWriter("", nil).Save(wb, path))

	reopened, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer reopened.Close()
}

func TestOutputPath(t *testing.T) {
	root := filepath.Join("outputs")
	assert.Equal(t, filepath.Join(root, "10月考勤-加班统计.xlsx"), excel.OutputPath("/data/10月考勤.xlsx", "", root))
	assert.Equal(t, filepath.Join(root, "result.xlsx"), excel.OutputPath("/data/10月考勤.xlsx", "result.xlsx", root))
	assert.Equal(t, "/tmp/result.xlsx", excel.OutputPath("/data/10月考勤.xlsx", "/tmp/result.xlsx", root))
}
