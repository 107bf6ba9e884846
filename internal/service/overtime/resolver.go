package overtime

import (
	"regexp"
	"sort"
	"strings"

	"overtime/internal/model"
)

var (
	// 白(9-18)、夜（22:00-06:00）
	codeRangePattern = regexp.MustCompile(`^(.+?)\s*[(（]\s*([0-9:：]+)\s*[-–—~～]\s*([0-9:：]+)\s*[)）]$`)
	// 08:00-17:30、9-18
	rangePattern = regexp.MustCompile(`^([0-9:：]+)[-–—~～]([0-9:：]+)$`)
)

// Resolver 班次代码解析器
type Resolver struct {
	codes       map[string]ShiftCode
	emptyIsRest bool
}

// NewResolver 按规则中的班次词表创建解析器
func NewResolver(rules Rules) *Resolver {
	codes := make(map[string]ShiftCode, len(rules.Codes))
	for _, c := range rules.Codes {
		codes[strings.TrimSpace(c.Code)] = c
	}
	return &Resolver{codes: codes, emptyIsRest: rules.EmptyIsRest}
}

// Resolve 将单元格原始值解析为班次，永不失败，无法识别时返回 Malformed
func (r *Resolver) Resolve(raw string) model.ShiftDescriptor {
	text := normalizeCell(raw)
	if text == "" {
		if r.emptyIsRest {
			return model.ShiftDescriptor{Kind: model.ShiftRest}
		}
		return malformed(text, ReasonEmptyCell)
	}

	if code, ok := r.codes[text]; ok {
		return fromTemplate(code, text)
	}

	if m := codeRangePattern.FindStringSubmatch(text); m != nil {
		if code, ok := r.codes[strings.TrimSpace(m[1])]; ok {
			return r.resolveCodeRange(code, text, m[2], m[3])
		}
		if !rangePattern.MatchString(text) {
			return malformed(text, ReasonUnrecognized)
		}
	}

	return resolveRanges(text)
}

// resolveCodeRange 代码 + 显式时间段，时间段覆盖模板时间
func (r *Resolver) resolveCodeRange(code ShiftCode, text, startToken, endToken string) model.ShiftDescriptor {
	if code.Kind == model.ShiftRest {
		return malformed(text, ReasonUnrecognized)
	}

	start, ok := ParseClock(startToken, false)
	if !ok {
		return malformed(text, ReasonInvalidRange)
	}
	end, ok := ParseClock(endToken, true)
	if !ok {
		return malformed(text, ReasonInvalidRange)
	}
	if start == end {
		return malformed(text, ReasonEmptyRange)
	}

	desc := model.ShiftDescriptor{Kind: model.ShiftStandard, Code: code.Code, Text: text}
	if end < start {
		if code.Kind != model.ShiftOvernight {
			return malformed(text, ReasonEndBeforeStart)
		}
		end += DayMinutes
		desc.Kind = model.ShiftOvernight
		desc.CrossesMidnight = true
	}
	desc.Intervals = []model.Interval{{Start: start, End: end}}
	return desc
}

// resolveRanges 空格分隔的若干时间段，结束早于开始视为跨零点
func resolveRanges(text string) model.ShiftDescriptor {
	parts := strings.Fields(text)
	intervals := make([]model.Interval, 0, len(parts))
	crosses := false

	for _, part := range parts {
		m := rangePattern.FindStringSubmatch(part)
		if m == nil {
			if strings.ContainsAny(part, "-–—~～") {
				return malformed(text, ReasonInvalidRange)
			}
			return malformed(text, ReasonUnrecognized)
		}
		start, ok := ParseClock(m[1], false)
		if !ok {
			return malformed(text, ReasonInvalidRange)
		}
		end, ok := ParseClock(m[2], true)
		if !ok {
			return malformed(text, ReasonInvalidRange)
		}
		if start == end {
			return malformed(text, ReasonEmptyRange)
		}
		if end < start {
			end += DayMinutes
			crosses = true
		}
		intervals = append(intervals, model.Interval{Start: start, End: end})
	}

	if overlapping(intervals) {
		return malformed(text, ReasonOverlapRanges)
	}

	kind := model.ShiftStandard
	if crosses {
		kind = model.ShiftOvernight
	}
	return model.ShiftDescriptor{Kind: kind, Text: text, Intervals: intervals, CrossesMidnight: crosses}
}

func fromTemplate(code ShiftCode, text string) model.ShiftDescriptor {
	desc := model.ShiftDescriptor{Kind: code.Kind, Code: code.Code, Text: text}
	switch code.Kind {
	case model.ShiftStandard:
		desc.Intervals = []model.Interval{{Start: code.Start, End: code.End}}
	case model.ShiftOvernight:
		desc.Intervals = []model.Interval{{Start: code.Start, End: code.End + DayMinutes}}
		desc.CrossesMidnight = true
	}
	return desc
}

func malformed(text, reason string) model.ShiftDescriptor {
	return model.ShiftDescriptor{Kind: model.ShiftMalformed, Text: text, Reason: reason}
}

func overlapping(intervals []model.Interval) bool {
	if len(intervals) < 2 {
		return false
	}
	sorted := append([]model.Interval(nil), intervals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			return true
		}
	}
	return false
}

// normalizeCell 去除首尾空白与换行，压缩中间空白
func normalizeCell(raw string) string {
	raw = strings.ReplaceAll(raw, "\r", " ")
	raw = strings.ReplaceAll(raw, "\n", " ")
	return strings.Join(strings.Fields(raw), " ")
}
