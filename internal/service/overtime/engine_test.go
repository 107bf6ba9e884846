package overtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overtime/internal/model"
)

func newTestEngine(t *testing.T, rules Rules, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(rules, opts...)
	require.NoError(t, err)
	return engine
}

func hoursOfRow(at *model.AnnotatedTable, row int) []float64 {
	out := make([]float64, 0, len(at.Columns))
	for _, col := range at.Columns {
		out = append(out, col.Results[row].FinalOvertimeHours)
	}
	return out
}

func TestEngine_RestAndDayShifts(t *testing.T) {
	engine := newTestEngine(t, testRules())
	table := buildTable([]string{"休", "白(9-18)", "休", "白(9-18)"})

	at, err := engine.Run(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 1}, hoursOfRow(at, 0))
	assert.Empty(t, at.Flags)
}

func TestEngine_UnrecognizedCellIsFlagged(t *testing.T) {
	engine := newTestEngine(t, testRules())
	table := buildTable([]string{"白", "白", "???", "白"})

	at, err := engine.Run(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 0, 1}, hoursOfRow(at, 0))

	require.Len(t, at.Flags, 1)
	flag := at.Flags[0]
	assert.Equal(t, 3, flag.Day)
	assert.Equal(t, ReasonUnrecognized, flag.Reason)
	assert.Equal(t, model.ErrorMalformed, flag.Kind)
	assert.Equal(t, "H2", flag.Ref)
	assert.Equal(t, "员工1", flag.EmployeeID)

	cell := at.Columns[2].Results[0]
	assert.True(t, cell.Failed)
	assert.Contains(t, cell.Note, "unrecognized shift code")
}

func TestEngine_OvernightShift(t *testing.T) {
	engine := newTestEngine(t, testRules())
	table := buildTable([]string{"夜(22-6)"})

	at, err := engine.Run(context.Background(), table)
	require.NoError(t, err)
	result := at.Columns[0].Results[0]
	assert.Equal(t, (6+24-22)*60, result.WorkedMinutes)
	assert.Zero(t, result.FinalOvertimeHours)
}

func TestEngine_StructuralError(t *testing.T) {
	engine := newTestEngine(t, testRules())
	table := buildTable(
		[]string{"白", "白", "白"},
		[]string{"白", "白", "白"},
	)
	table.Rows[1].Cells = table.Rows[1].Cells[:2]

	at, err := engine.Run(context.Background(), table)
	require.ErrorIs(t, err, ErrStructural)
	assert.Nil(t, at)

	var structural *StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Equal(t, 1, structural.RowIndex)
	assert.Equal(t, 3, structural.Want)
	assert.Equal(t, 2, structural.Got)
}

func TestValidateTable(t *testing.T) {
	dup := buildTable([]string{"白"}, []string{"白"})
	dup.Rows[1].EmployeeID = dup.Rows[0].EmployeeID
	assert.ErrorIs(t, ValidateTable(dup), ErrStructural)

	noDays := &model.AttendanceTable{}
	assert.ErrorIs(t, ValidateTable(noDays), ErrStructural)

	sameDay := buildTable([]string{"白", "白"})
	sameDay.Days[1].Day = 1
	assert.ErrorIs(t, ValidateTable(sameDay), ErrStructural)

	assert.ErrorIs(t, ValidateTable(nil), ErrStructural)
	assert.NoError(t, ValidateTable(buildTable([]string{"白"})))
}

func TestEngine_PreservesShape(t *testing.T) {
	engine := newTestEngine(t, testRules())
	table := buildTable(
		[]string{"白", "休", "夜"},
		[]string{"???", "白(9-20)", "休"},
		[]string{"", "", ""},
	)

	at, err := engine.Run(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, at.Columns, len(table.Days))
	assert.Same(t, table, at.Source)

	for j, col := range at.Columns {
		assert.Equal(t, table.Days[j], col.Day)
		assert.Equal(t, table.LastColumn+j+1, col.Column)
		assert.Equal(t, DerivedLabel(table.Days[j].Day), col.Label)
		require.Len(t, col.Results, len(table.Rows))
		for _, r := range col.Results {
			assert.NotEmpty(t, r.Note)
		}
	}
	assert.Equal(t, "1号加班", at.Columns[0].Label)
	assert.Equal(t, "员工1", table.Rows[0].EmployeeID)
	assert.Equal(t, []float64{0, 3, 0}, hoursOfRow(at, 1))
}

func TestEngine_Idempotent(t *testing.T) {
	rules := testRules()
	rules.Breaks = fixedBreaks()
	engine := newTestEngine(t, rules)
	table := buildTable(
		[]string{"白", "夜", "白(9-12)", "???"},
		[]string{"08:00-20:00", "休", "bad-cell", "20:00-08:00"},
	)

	first, err := engine.Run(context.Background(), table)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngine_ParallelMatchesSequential(t *testing.T) {
	rows := make([][]string, 0, 60)
	codes := []string{"白", "夜", "休", "???", "白(8-21)", "09:00-12:00 13:00-19:30"}
	for i := 0; i < 60; i++ {
		row := make([]string, 0, 31)
		for d := 0; d < 31; d++ {
			row = append(row, codes[(i+d)%len(codes)])
		}
		rows = append(rows, row)
	}
	table := buildTable(rows...)

	sequential, err := newTestEngine(t, testRules(), WithWorkers(1)).Run(context.Background(), table)
	require.NoError(t, err)
	parallel, err := newTestEngine(t, testRules(), WithWorkers(8)).Run(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
	for i := 1; i < len(parallel.Flags); i++ {
		assert.LessOrEqual(t, parallel.Flags[i-1].RowIndex, parallel.Flags[i].RowIndex)
	}
}

func TestEngine_OverlapWithPreviousDay(t *testing.T) {
	engine := newTestEngine(t, testRules())
	table := buildTable([]string{"夜(22-10)", "白(9-18)", "白(9-18)"})

	at, err := engine.Run(context.Background(), table)
	require.NoError(t, err)
	require.Len(t, at.Flags, 1)
	assert.Equal(t, model.ErrorComputation, at.Flags[0].Kind)
	assert.Equal(t, 2, at.Flags[0].Day)
	assert.Equal(t, ReasonOverlapPrevious, at.Flags[0].Reason)
	assert.Equal(t, []float64{4, 0, 1}, hoursOfRow(at, 0))
}

func TestEngine_NonConsecutiveDaysDropContext(t *testing.T) {
	engine := newTestEngine(t, testRules())
	table := buildTable([]string{"夜(22-10)", "白(9-18)"})
	table.Days[1].Day = 3

	at, err := engine.Run(context.Background(), table)
	require.NoError(t, err)
	assert.Empty(t, at.Flags)
	assert.Equal(t, "3号加班", at.Columns[1].Label)
}

func TestEngine_RulesAreCopied(t *testing.T) {
	rules := testRules()
	engine := newTestEngine(t, rules)

	rules.Codes[2] = ShiftCode{Code: "白", Kind: model.ShiftStandard, Start: 0, End: 1440}
	rules.BaselineHours = 0

	at, err := engine.Run(context.Background(), buildTable([]string{"白"}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, at.Columns[0].Results[0].FinalOvertimeHours)
	assert.Equal(t, 8.0, engine.Rules().BaselineHours)
}

func TestNewEngine_InvalidRules(t *testing.T) {
	rules := testRules()
	rules.BaselineHours = -1

	_, err := NewEngine(rules)
	require.Error(t, err)
}

func TestEngine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(t, testRules(), WithWorkers(1)).Run(ctx, buildTable([]string{"白"}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarizeRestLabels(t *testing.T) {
	assert.Equal(t, "无", SummarizeRestLabels(nil))
	assert.Equal(t, "11:30-12:00×2，17:00-17:30", SummarizeRestLabels([]string{"11:30-12:00", "17:00-17:30", "11:30-12:00"}))
}
