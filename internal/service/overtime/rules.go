package overtime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"overtime/internal/model"
)

// DayMinutes 一天的分钟数
const DayMinutes = 24 * 60

// SegmentMode 单日统计口径
type SegmentMode string

const (
	SegmentFull          SegmentMode = "full"           // 整个班次
	SegmentUntilMidnight SegmentMode = "until_midnight" // 只统计零点前
	SegmentAfterMidnight SegmentMode = "after_midnight" // 只统计零点后
)

// ShiftCode 班次代码模板
type ShiftCode struct {
	Code  string
	Kind  model.ShiftKind
	Start int // 分钟，Rest 忽略
	End   int // 分钟，Overnight 时小于 Start
}

// BreakWindow 固定休息时段（按钟点扣除）
type BreakWindow struct {
	Start int
	End   int
	Label string
}

// DeductionTier 按工时长度扣除休息
type DeductionTier struct {
	MinWorkedMinutes int
	DeductMinutes    int
}

// DayRule 单日规则
type DayRule struct {
	Segment       SegmentMode
	BaselineHours *float64 // nil 时使用 Rules.BaselineHours
}

// Rules 引擎规则，构造引擎时注入，运行期间只读
type Rules struct {
	Codes           []ShiftCode
	Breaks          []BreakWindow
	Tiers           []DeductionTier
	Days            map[int]DayRule
	BaselineHours   float64
	RoundingMinutes int
	MinRestMinutes  int
	EmptyIsRest     bool
}

// Validate 校验规则
func (r Rules) Validate() error {
	var errs []error

	if r.BaselineHours < 0 || r.BaselineHours > 24 {
		errs = append(errs, fmt.Errorf("baseline hours out of range: %v", r.BaselineHours))
	}
	if r.RoundingMinutes < 0 || r.RoundingMinutes > 60 {
		errs = append(errs, fmt.Errorf("rounding minutes out of range: %d", r.RoundingMinutes))
	}
	if r.MinRestMinutes < 0 {
		errs = append(errs, fmt.Errorf("min rest minutes must not be negative: %d", r.MinRestMinutes))
	}

	seen := make(map[string]bool, len(r.Codes))
	for _, c := range r.Codes {
		code := strings.TrimSpace(c.Code)
		if code == "" {
			errs = append(errs, errors.New("shift code must not be empty"))
			continue
		}
		if seen[code] {
			errs = append(errs, fmt.Errorf("duplicate shift code %q", code))
		}
		seen[code] = true

		switch c.Kind {
		case model.ShiftRest:
		case model.ShiftStandard:
			if c.Start < 0 || c.End > DayMinutes || c.Start >= c.End {
				errs = append(errs, fmt.Errorf("shift code %q: standard shift needs start < end", code))
			}
		case model.ShiftOvernight:
			if c.Start < 0 || c.Start >= DayMinutes || c.End < 0 || c.End >= c.Start {
				errs = append(errs, fmt.Errorf("shift code %q: overnight shift needs end < start", code))
			}
		default:
			errs = append(errs, fmt.Errorf("shift code %q: unknown kind %q", code, c.Kind))
		}
	}

	for _, b := range r.Breaks {
		if b.Start < 0 || b.End > DayMinutes || b.Start >= b.End {
			errs = append(errs, fmt.Errorf("break window %q: invalid range", b.Label))
		}
	}
	for _, t := range r.Tiers {
		if t.MinWorkedMinutes < 0 || t.DeductMinutes < 0 {
			errs = append(errs, fmt.Errorf("deduction tier %d/%d must not be negative", t.MinWorkedMinutes, t.DeductMinutes))
		}
	}
	for day, rule := range r.Days {
		if day < 1 || day > 31 {
			errs = append(errs, fmt.Errorf("day rule for invalid day %d", day))
		}
		switch rule.Segment {
		case "", SegmentFull, SegmentUntilMidnight, SegmentAfterMidnight:
		default:
			errs = append(errs, fmt.Errorf("day %d: unknown segment mode %q", day, rule.Segment))
		}
		if rule.BaselineHours != nil && (*rule.BaselineHours < 0 || *rule.BaselineHours > 24) {
			errs = append(errs, fmt.Errorf("day %d: baseline hours out of range", day))
		}
	}

	return errors.Join(errs...)
}

// clone 深拷贝，保证引擎持有的规则不被调用方修改
func (r Rules) clone() Rules {
	out := r
	out.Codes = append([]ShiftCode(nil), r.Codes...)
	out.Breaks = append([]BreakWindow(nil), r.Breaks...)
	out.Tiers = append([]DeductionTier(nil), r.Tiers...)
	if r.Days != nil {
		out.Days = make(map[int]DayRule, len(r.Days))
		for day, rule := range r.Days {
			if rule.BaselineHours != nil {
				v := *rule.BaselineHours
				rule.BaselineHours = &v
			}
			out.Days[day] = rule
		}
	}
	return out
}

// dayRule 返回某天的统计口径与基准工时
func (r Rules) dayRule(day int) (SegmentMode, float64) {
	rule, ok := r.Days[day]
	if !ok {
		return SegmentFull, r.BaselineHours
	}
	segment := rule.Segment
	if segment == "" {
		segment = SegmentFull
	}
	baseline := r.BaselineHours
	if rule.BaselineHours != nil {
		baseline = *rule.BaselineHours
	}
	return segment, baseline
}

// ParseClock 解析钟点，支持 "9"、"09"、"9:30"、"09:30"；allowDayEnd 为 true 时接受 "24:00"
func ParseClock(token string, allowDayEnd bool) (int, bool) {
	token = strings.TrimSpace(strings.ReplaceAll(token, "：", ":"))
	if token == "" {
		return 0, false
	}

	hourPart, minutePart := token, "0"
	if idx := strings.Index(token, ":"); idx >= 0 {
		hourPart, minutePart = token[:idx], token[idx+1:]
		if minutePart == "" {
			return 0, false
		}
	}
	if len(hourPart) == 0 || len(hourPart) > 2 || len(minutePart) > 2 {
		return 0, false
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil {
		return 0, false
	}
	if hour == 24 && minute == 0 {
		if allowDayEnd {
			return DayMinutes, true
		}
		return 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// FormatClock 分钟数转钟点文本
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
