package overtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"overtime/internal/model"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(testRules())

	tests := []struct {
		name      string
		raw       string
		kind      model.ShiftKind
		intervals []model.Interval
		reason    string
	}{
		{name: "rest code", raw: "休", kind: model.ShiftRest},
		{name: "rest label", raw: " 一线员工休息 ", kind: model.ShiftRest},
		{name: "empty is rest", raw: "  ", kind: model.ShiftRest},
		{name: "template day", raw: "白", kind: model.ShiftStandard, intervals: []model.Interval{{Start: 540, End: 1080}}},
		{name: "template night", raw: "夜", kind: model.ShiftOvernight, intervals: []model.Interval{{Start: 1320, End: 1800}}},
		{name: "code with range", raw: "白(9-18)", kind: model.ShiftStandard, intervals: []model.Interval{{Start: 540, End: 1080}}},
		{name: "full width parens", raw: "白（8:30-17:30）", kind: model.ShiftStandard, intervals: []model.Interval{{Start: 510, End: 1050}}},
		{name: "overnight code with range", raw: "夜(22-6)", kind: model.ShiftOvernight, intervals: []model.Interval{{Start: 1320, End: 1800}}},
		{name: "bare range", raw: "08:00-17:30", kind: model.ShiftStandard, intervals: []model.Interval{{Start: 480, End: 1050}}},
		{name: "bare overnight", raw: "20:00-02:00", kind: model.ShiftOvernight, intervals: []model.Interval{{Start: 1200, End: 1560}}},
		{name: "until day end", raw: "18:00-24:00", kind: model.ShiftStandard, intervals: []model.Interval{{Start: 1080, End: 1440}}},
		{name: "split shift", raw: "08:00-12:00 13:00-17:00", kind: model.ShiftStandard, intervals: []model.Interval{{Start: 480, End: 720}, {Start: 780, End: 1020}}},
		{name: "unknown", raw: "???", kind: model.ShiftMalformed, reason: ReasonUnrecognized},
		{name: "unknown code with range", raw: "早(6-14)", kind: model.ShiftMalformed, reason: ReasonUnrecognized},
		{name: "rest code with range", raw: "休(9-18)", kind: model.ShiftMalformed, reason: ReasonUnrecognized},
		{name: "day code ends before start", raw: "白(20-4)", kind: model.ShiftMalformed, reason: ReasonEndBeforeStart},
		{name: "bad clock", raw: "25:00-26:00", kind: model.ShiftMalformed, reason: ReasonInvalidRange},
		{name: "bad minutes", raw: "08:75-17:00", kind: model.ShiftMalformed, reason: ReasonInvalidRange},
		{name: "start at day end", raw: "24:00-08:00", kind: model.ShiftMalformed, reason: ReasonInvalidRange},
		{name: "zero length", raw: "09:00-09:00", kind: model.ShiftMalformed, reason: ReasonEmptyRange},
		{name: "overlapping parts", raw: "08:00-12:00 11:00-14:00", kind: model.ShiftMalformed, reason: ReasonOverlapRanges},
		{name: "range with junk", raw: "08:00-12:00 请假", kind: model.ShiftMalformed, reason: ReasonUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.raw)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.intervals, got.Intervals)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestResolver_EmptyCellStrict(t *testing.T) {
	rules := testRules()
	rules.EmptyIsRest = false

	got := NewResolver(rules).Resolve("")
	assert.Equal(t, model.ShiftMalformed, got.Kind)
	assert.Equal(t, ReasonEmptyCell, got.Reason)
}

func TestResolver_OvernightFlag(t *testing.T) {
	r := NewResolver(testRules())

	assert.True(t, r.Resolve("夜(22-6)").CrossesMidnight)
	assert.True(t, r.Resolve("22:00-06:00").CrossesMidnight)
	assert.False(t, r.Resolve("白(9-18)").CrossesMidnight)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		token  string
		dayEnd bool
		want   int
		ok     bool
	}{
		{"9", false, 540, true},
		{"09:30", false, 570, true},
		{"9：30", false, 570, true},
		{"23:59", false, 1439, true},
		{"24:00", true, 1440, true},
		{"24:00", false, 0, false},
		{"24:30", true, 0, false},
		{"7:", false, 0, false},
		{"abc", false, 0, false},
		{"123", false, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseClock(tt.token, tt.dayEnd)
		assert.Equal(t, tt.ok, ok, tt.token)
		assert.Equal(t, tt.want, got, tt.token)
	}
}
