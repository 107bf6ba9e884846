package model

// ShiftKind 班次类型
type ShiftKind string

const (
	ShiftRest      ShiftKind = "rest"      // 休息
	ShiftStandard  ShiftKind = "standard"  // 日内班次
	ShiftOvernight ShiftKind = "overnight" // 跨零点班次
	ShiftMalformed ShiftKind = "malformed" // 无法解析
)

// DisplayName 班次类型中文名
func (k ShiftKind) DisplayName() string {
	switch k {
	case ShiftRest:
		return "休息"
	case ShiftStandard:
		return "日班"
	case ShiftOvernight:
		return "跨夜班"
	case ShiftMalformed:
		return "格式错误"
	default:
		return string(k)
	}
}

// Interval 工作时间段，分钟数以班次当天零点为基准，End 可超过 1440
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Minutes 时间段长度
func (iv Interval) Minutes() int {
	if iv.End <= iv.Start {
		return 0
	}
	return iv.End - iv.Start
}

// ShiftDescriptor 解析后的班次
type ShiftDescriptor struct {
	Kind            ShiftKind  `json:"kind"`
	Code            string     `json:"code,omitempty"` // 命中的班次代码
	Text            string     `json:"text"`           // 规整后的原始文本
	Intervals       []Interval `json:"intervals,omitempty"`
	CrossesMidnight bool       `json:"crossesMidnight"`
	Reason          string     `json:"reason,omitempty"` // Malformed 时的原因
}

// IsWork 是否为需要计算工时的班次
func (d ShiftDescriptor) IsWork() bool {
	return d.Kind == ShiftStandard || d.Kind == ShiftOvernight
}

// LatestEnd 最晚结束分钟（无时间段时返回 0, false）
func (d ShiftDescriptor) LatestEnd() (int, bool) {
	if len(d.Intervals) == 0 {
		return 0, false
	}
	end := d.Intervals[0].End
	for _, iv := range d.Intervals[1:] {
		if iv.End > end {
			end = iv.End
		}
	}
	return end, true
}

// EarliestStart 最早开始分钟
func (d ShiftDescriptor) EarliestStart() (int, bool) {
	if len(d.Intervals) == 0 {
		return 0, false
	}
	start := d.Intervals[0].Start
	for _, iv := range d.Intervals[1:] {
		if iv.Start < start {
			start = iv.Start
		}
	}
	return start, true
}
