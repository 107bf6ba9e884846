package overtime

import (
	"fmt"
	"math"
	"sort"

	"overtime/internal/model"
)

// EvalContext 计算上下文
type EvalContext struct {
	Day  int                    // 日期序号，用于查找单日规则
	Prev *model.ShiftDescriptor // 前一日班次，nil 表示无前序班次
}

// Evaluator 加班规则计算器
type Evaluator struct {
	rules Rules
}

// NewEvaluator 创建计算器
func NewEvaluator(rules Rules) *Evaluator {
	return &Evaluator{rules: rules}
}

// Evaluate 计算单个班次的加班工时
// Malformed 返回 *MalformedShiftError，规则无法处理时返回 *ComputationError
func (e *Evaluator) Evaluate(desc model.ShiftDescriptor, ctx EvalContext) (model.OvertimeResult, error) {
	switch desc.Kind {
	case model.ShiftMalformed:
		return model.OvertimeResult{}, &MalformedShiftError{Raw: desc.Text, Reason: desc.Reason}
	case model.ShiftRest:
		result := model.OvertimeResult{ShiftText: desc.Text, Kind: model.ShiftRest}
		result.Note = restNote(desc.Text)
		return result, nil
	}

	segment, baseline := e.rules.dayRule(ctx.Day)
	segments, err := clipIntervals(desc.Intervals, segment)
	if err != nil {
		return model.OvertimeResult{}, &ComputationError{Raw: desc.Text, Reason: err.Error()}
	}

	var remarks []string
	if gap, ok := restGap(ctx.Prev, desc); ok {
		if gap < 0 {
			return model.OvertimeResult{}, &ComputationError{Raw: desc.Text, Reason: ReasonOverlapPrevious}
		}
		if e.rules.MinRestMinutes > 0 && gap < e.rules.MinRestMinutes {
			remarks = append(remarks, fmt.Sprintf("与前一日班次间隔 %d 分钟，少于 %d 分钟", gap, e.rules.MinRestMinutes))
		}
	}

	rawMinutes := 0
	deduction := 0
	var labels []string
	for _, seg := range segments {
		duration := seg.Minutes()
		if duration == 0 {
			continue
		}
		rawMinutes += duration
		d, l := breakDeductions(seg, e.rules.Breaks)
		if d > duration {
			d = duration
		}
		deduction += d
		labels = append(labels, l...)
	}

	if tier, ok := matchTier(rawMinutes, e.rules.Tiers); ok {
		deduction += tier.DeductMinutes
		labels = append(labels, fmt.Sprintf("工时满%s小时扣%d分钟", formatHours(float64(tier.MinWorkedMinutes)/60), tier.DeductMinutes))
	}
	if deduction > rawMinutes {
		deduction = rawMinutes
	}

	worked := rawMinutes - deduction
	overtimeMinutes := worked - int(math.Round(baseline*60))
	if overtimeMinutes < 0 {
		overtimeMinutes = 0
	}

	var hours float64
	if e.rules.RoundingMinutes > 0 {
		overtimeMinutes = overtimeMinutes / e.rules.RoundingMinutes * e.rules.RoundingMinutes
		hours = float64(overtimeMinutes) / 60
	} else {
		hours = round2(float64(overtimeMinutes) / 60)
	}

	result := model.OvertimeResult{
		ShiftText:            desc.Text,
		Kind:                 desc.Kind,
		ScheduledHours:       round2(float64(rawMinutes) / 60),
		WorkedMinutes:        worked,
		RestDeductionMinutes: deduction,
		RestLabels:           labels,
		FinalOvertimeHours:   hours,
	}
	result.Note = resultNote(result, remarks)
	return result, nil
}

// clipIntervals 按单日口径裁剪时间段
func clipIntervals(intervals []model.Interval, mode SegmentMode) ([]model.Interval, error) {
	out := make([]model.Interval, 0, len(intervals))
	for _, iv := range intervals {
		var lower, upper int
		switch mode {
		case SegmentFull, "":
			lower, upper = iv.Start, iv.End
		case SegmentUntilMidnight:
			lower, upper = iv.Start, min(iv.End, DayMinutes)
		case SegmentAfterMidnight:
			lower, upper = max(iv.Start, DayMinutes), iv.End
		default:
			return nil, fmt.Errorf("%s: %s", ReasonUnknownSegment, mode)
		}
		if upper > lower {
			out = append(out, model.Interval{Start: lower, End: upper})
		}
	}
	return out, nil
}

// restGap 前一日班次结束到本班次开始的间隔分钟数
func restGap(prev *model.ShiftDescriptor, desc model.ShiftDescriptor) (int, bool) {
	if prev == nil || !prev.IsWork() {
		return 0, false
	}
	prevEnd, ok := prev.LatestEnd()
	if !ok {
		return 0, false
	}
	start, ok := desc.EarliestStart()
	if !ok {
		return 0, false
	}
	return start - (prevEnd - DayMinutes), true
}

// breakDeductions 时间段与固定休息时段的重叠，跨天时逐日计算
func breakDeductions(seg model.Interval, breaks []BreakWindow) (int, []string) {
	if seg.End <= seg.Start || len(breaks) == 0 {
		return 0, nil
	}
	total := 0
	var labels []string
	startDay := seg.Start / DayMinutes
	endDay := (seg.End - 1) / DayMinutes
	for offset := startDay; offset <= endDay; offset++ {
		base := offset * DayMinutes
		for _, b := range breaks {
			overlap := min(seg.End, base+b.End) - max(seg.Start, base+b.Start)
			if overlap > 0 {
				total += overlap
				labels = append(labels, breakLabel(offset, b))
			}
		}
	}
	return total, labels
}

func breakLabel(offset int, b BreakWindow) string {
	label := b.Label
	if label == "" {
		label = FormatClock(b.Start) + "-" + FormatClock(b.End)
	}
	switch offset {
	case 0:
		return label
	case 1:
		return "次日" + label
	default:
		return fmt.Sprintf("第%d天%s", offset, label)
	}
}

// matchTier 取满足条件的最高档
func matchTier(rawMinutes int, tiers []DeductionTier) (DeductionTier, bool) {
	if rawMinutes <= 0 || len(tiers) == 0 {
		return DeductionTier{}, false
	}
	sorted := append([]DeductionTier(nil), tiers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinWorkedMinutes > sorted[j].MinWorkedMinutes })
	for _, t := range sorted {
		if rawMinutes >= t.MinWorkedMinutes && t.DeductMinutes > 0 {
			return t, true
		}
	}
	return DeductionTier{}, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
