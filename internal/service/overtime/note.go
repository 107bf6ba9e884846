package overtime

import (
	"fmt"
	"strconv"
	"strings"

	"overtime/internal/model"
)

// DerivedLabel 派生列表头
func DerivedLabel(day int) string {
	return fmt.Sprintf("%d号加班", day)
}

func restNote(text string) string {
	return strings.Join([]string{
		"班次: " + orDash(text),
		"类型: 休息日，不计算",
		"加班工时: 0 小时",
	}, "\n")
}

func resultNote(r model.OvertimeResult, remarks []string) string {
	lines := []string{
		"班次: " + orDash(r.ShiftText),
		"类型: " + r.Kind.DisplayName(),
		fmt.Sprintf("休息扣减: %s（%d 分钟）", SummarizeRestLabels(r.RestLabels), r.RestDeductionMinutes),
		fmt.Sprintf("工时: %s 小时", formatHours(float64(r.WorkedMinutes)/60)),
		fmt.Sprintf("加班工时: %s 小时", formatHours(r.FinalOvertimeHours)),
	}
	for _, remark := range remarks {
		lines = append(lines, "备注: "+remark)
	}
	return strings.Join(lines, "\n")
}

func failedNote(text string, kind model.ErrorKind, reason string) string {
	prefix := "排班解析错误"
	if kind == model.ErrorComputation {
		prefix = "规则计算错误"
	}
	return strings.Join([]string{
		"班次: " + orDash(text),
		"加班工时: 0 小时",
		fmt.Sprintf("备注: %s: %s", prefix, reason),
	}, "\n")
}

// FlagNote 标红源单元格的批注
func FlagNote(m model.ErrorMarker) string {
	prefix := "排班解析错误"
	if m.Kind == model.ErrorComputation {
		prefix = "规则计算错误"
	}
	return fmt.Sprintf("%s: %s（%q）", prefix, m.Reason, m.Raw)
}

// SummarizeRestLabels 按首次出现顺序合并重复标签
func SummarizeRestLabels(labels []string) string {
	if len(labels) == 0 {
		return "无"
	}
	order := make([]string, 0, len(labels))
	counts := make(map[string]int, len(labels))
	for _, l := range labels {
		if counts[l] == 0 {
			order = append(order, l)
		}
		counts[l]++
	}
	parts := make([]string, 0, len(order))
	for _, l := range order {
		if counts[l] > 1 {
			parts = append(parts, fmt.Sprintf("%s×%d", l, counts[l]))
		} else {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, "，")
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
