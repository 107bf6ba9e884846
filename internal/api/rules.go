package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"overtime/internal/model"
	"overtime/internal/service/overtime"
)

type shiftCodeResponse struct {
	Code  string `json:"code"`
	Kind  string `json:"kind"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type breakResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Label string `json:"label"`
}

type tierResponse struct {
	MinWorkedMinutes int `json:"minWorkedMinutes"`
	DeductMinutes    int `json:"deductMinutes"`
}

type dayRuleResponse struct {
	Day           int      `json:"day"`
	Segment       string   `json:"segment"`
	BaselineHours *float64 `json:"baselineHours,omitempty"`
}

// RulesResponse 当前生效的加班规则
type RulesResponse struct {
	BaselineHours   float64             `json:"baselineHours"`
	RoundingMinutes int                 `json:"roundingMinutes"`
	MinRestMinutes  int                 `json:"minRestMinutes"`
	EmptyIsRest     bool                `json:"emptyIsRest"`
	Codes           []shiftCodeResponse `json:"codes"`
	Breaks          []breakResponse     `json:"breaks"`
	Tiers           []tierResponse      `json:"tiers"`
	Days            []dayRuleResponse   `json:"days"`
}

// GetRules 获取当前规则
// GET /api/rules
func (h *Handler) GetRules(c *gin.Context) {
	c.JSON(http.StatusOK, rulesResponse(h.engine.Rules(), h.cfg.Sheet.SortedTargetDays()))
}

func rulesResponse(r overtime.Rules, days []int) RulesResponse {
	resp := RulesResponse{
		BaselineHours:   r.BaselineHours,
		RoundingMinutes: r.RoundingMinutes,
		MinRestMinutes:  r.MinRestMinutes,
		EmptyIsRest:     r.EmptyIsRest,
		Codes:           make([]shiftCodeResponse, 0, len(r.Codes)),
		Breaks:          make([]breakResponse, 0, len(r.Breaks)),
		Tiers:           make([]tierResponse, 0, len(r.Tiers)),
		Days:            make([]dayRuleResponse, 0, len(r.Days)),
	}

	for _, sc := range r.Codes {
		item := shiftCodeResponse{Code: sc.Code, Kind: string(sc.Kind)}
		if sc.Kind != model.ShiftRest {
			item.Start = overtime.FormatClock(sc.Start)
			item.End = overtime.FormatClock(sc.End)
		}
		resp.Codes = append(resp.Codes, item)
	}
	for _, b := range r.Breaks {
		resp.Breaks = append(resp.Breaks, breakResponse{
			Start: overtime.FormatClock(b.Start),
			End:   overtime.FormatClock(b.End),
			Label: b.Label,
		})
	}
	for _, t := range r.Tiers {
		resp.Tiers = append(resp.Tiers, tierResponse{MinWorkedMinutes: t.MinWorkedMinutes, DeductMinutes: t.DeductMinutes})
	}

	// 按目标日期顺序输出；未配置目标日期时按日期升序
	if len(days) == 0 {
		for d := 1; d <= 31; d++ {
			days = append(days, d)
		}
	}
	for _, d := range days {
		rule, ok := r.Days[d]
		if !ok {
			continue
		}
		resp.Days = append(resp.Days, dayRuleResponse{Day: d, Segment: string(rule.Segment), BaselineHours: rule.BaselineHours})
	}
	return resp
}
