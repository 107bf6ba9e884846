package overtime

import (
	"errors"
	"fmt"
)

// 单元格错误原因
const (
	ReasonUnrecognized    = "unrecognized shift code"
	ReasonInvalidRange    = "invalid time range"
	ReasonEmptyRange      = "empty time range"
	ReasonEndBeforeStart  = "end time before start time"
	ReasonEmptyCell       = "empty shift cell"
	ReasonOverlapRanges   = "overlapping time ranges"
	ReasonOverlapPrevious = "overlaps previous day shift"
	ReasonUnknownSegment  = "unknown segment mode"
)

// ErrStructural 表结构错误，整次计算中止
var ErrStructural = errors.New("structural error")

// StructuralError 表结构错误详情
type StructuralError struct {
	RowIndex   int
	EmployeeID string
	Want       int
	Got        int
	Msg        string
}

func (e *StructuralError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("structural error: %s", e.Msg)
	}
	return fmt.Sprintf("structural error: row %d (%s) has %d cells, want %d", e.RowIndex, e.EmployeeID, e.Got, e.Want)
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// MalformedShiftError 排班无法解析（单元格级，不中止）
type MalformedShiftError struct {
	Raw    string
	Reason string
}

func (e *MalformedShiftError) Error() string {
	return fmt.Sprintf("malformed shift %q: %s", e.Raw, e.Reason)
}

// ComputationError 班次可解析但无法按规则计算（单元格级，不中止）
type ComputationError struct {
	Raw    string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("cannot evaluate shift %q: %s", e.Raw, e.Reason)
}
