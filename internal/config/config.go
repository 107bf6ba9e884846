package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"overtime/internal/model"
	"overtime/internal/service/overtime"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Sheet  SheetConfig  `toml:"sheet"`
	Rules  RulesConfig  `toml:"rules"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir   string `toml:"data_dir"`
	OutputDir string `toml:"output_dir"` // 相对路径时位于数据目录下
	LogDir    string `toml:"log_dir"`
	History   bool   `toml:"history"` // 是否记录计算历史
}

// SheetConfig 考勤表读取配置
type SheetConfig struct {
	Sheet            string `toml:"sheet"` // 为空时使用活动工作表
	HeaderRow        int    `toml:"header_row"`
	EmployeeIDColumn int    `toml:"employee_id_column"`
	FirstDayColumn   int    `toml:"first_day_column"`
	Month            int    `toml:"month"`       // 0 表示不限月份
	TargetDays       []int  `toml:"target_days"` // 为空时计算所有日期列
	Author           string `toml:"author"`      // 批注作者
}

// ShiftCodeConfig 班次代码
type ShiftCodeConfig struct {
	Code  string `toml:"code"`
	Kind  string `toml:"kind"` // rest / standard / overnight
	Start string `toml:"start"`
	End   string `toml:"end"`
}

// BreakConfig 固定休息时段
type BreakConfig struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
	Label string `toml:"label"`
}

// TierConfig 按工时扣除休息
type TierConfig struct {
	MinWorkedMinutes int `toml:"min_worked_minutes"`
	DeductMinutes    int `toml:"deduct_minutes"`
}

// DayRuleConfig 单日规则
type DayRuleConfig struct {
	Day           int      `toml:"day"`
	Segment       string   `toml:"segment"`
	BaselineHours *float64 `toml:"baseline_hours"`
}

// RulesConfig 加班规则配置
type RulesConfig struct {
	BaselineHours   float64           `toml:"baseline_hours"`
	RoundingMinutes int               `toml:"rounding_minutes"`
	MinRestMinutes  int               `toml:"min_rest_minutes"`
	EmptyIsRest     bool              `toml:"empty_is_rest"`
	Codes           []ShiftCodeConfig `toml:"codes"`
	Breaks          []BreakConfig     `toml:"breaks"`
	Tiers           []TierConfig      `toml:"tiers"`
	Days            []DayRuleConfig   `toml:"days"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	Found         bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	zero := 0.0
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:   "data",
			OutputDir: "outputs",
			LogDir:    "outputs",
			History:   true,
		},
		Sheet: SheetConfig{
			HeaderRow:        1,
			EmployeeIDColumn: 1,
			FirstDayColumn:   6,
			Month:            10,
			TargetDays:       []int{1, 2, 3, 5, 6},
			Author:           "加班统计",
		},
		Rules: RulesConfig{
			BaselineHours:   0,
			RoundingMinutes: 0,
			MinRestMinutes:  0,
			EmptyIsRest:     true,
			Codes: []ShiftCodeConfig{
				{Code: "一线员工休息", Kind: string(model.ShiftRest)},
				{Code: "休", Kind: string(model.ShiftRest)},
				{Code: "白", Kind: string(model.ShiftStandard), Start: "09:00", End: "18:00"},
				{Code: "夜", Kind: string(model.ShiftOvernight), Start: "22:00", End: "06:00"},
			},
			Breaks: []BreakConfig{
				{Start: "11:30", End: "12:00", Label: "11:30-12:00"},
				{Start: "17:00", End: "17:30", Label: "17:00-17:30"},
				{Start: "23:00", End: "23:30", Label: "23:00-23:30"},
			},
			Days: []DayRuleConfig{
				{Day: 1, Segment: string(overtime.SegmentFull)},
				{Day: 2, Segment: string(overtime.SegmentFull)},
				{Day: 3, Segment: string(overtime.SegmentUntilMidnight)},
				{Day: 5, Segment: string(overtime.SegmentAfterMidnight), BaselineHours: &zero},
				{Day: 6, Segment: string(overtime.SegmentUntilMidnight)},
			},
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 默认配置文件路径：环境变量 OVERTIME_CONFIG 优先，否则为可执行文件同目录下的 config.toml
func DefaultConfigPath() string {
	if v := os.Getenv("OVERTIME_CONFIG"); v != "" {
		return v
	}
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 从 config.toml 加载配置并返回元信息，path 为空时使用默认路径
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 配置文件不存在，使用默认配置
			return config, info, nil
		}
		return nil, info, err
	}
	info.Found = true
	info.PortSpecified = isPortSpecifiedInToml(data)

	// 文件中出现的列表整体替换对应默认值，未出现的列表保留默认
	lists := rulesListsInToml(data)
	if lists["codes"] {
		config.Rules.Codes = nil
	}
	if lists["breaks"] {
		config.Rules.Breaks = nil
	}
	if lists["tiers"] {
		config.Rules.Tiers = nil
	}
	if lists["days"] {
		config.Rules.Days = nil
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if _, err := config.EngineRules(); err != nil {
		return nil, info, fmt.Errorf("invalid rules in %s: %w", path, err)
	}

	return config, info, nil
}

// rulesListsInToml 返回 [rules] 下出现的列表键
func rulesListsInToml(data []byte) map[string]bool {
	found := make(map[string]bool)
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return found
	}
	rules, ok := raw["rules"].(map[string]any)
	if !ok {
		return found
	}
	for _, key := range []string{"codes", "breaks", "tiers", "days"} {
		if _, ok := rules[key]; ok {
			found[key] = true
		}
	}
	return found
}

// LoadConfig 从 config.toml 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// SaveConfig 保存配置到 path
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EngineRules 转换为引擎规则并校验
func (c *AppConfig) EngineRules() (overtime.Rules, error) {
	rc := c.Rules
	rules := overtime.Rules{
		BaselineHours:   rc.BaselineHours,
		RoundingMinutes: rc.RoundingMinutes,
		MinRestMinutes:  rc.MinRestMinutes,
		EmptyIsRest:     rc.EmptyIsRest,
	}

	var errs []error
	for _, code := range rc.Codes {
		sc := overtime.ShiftCode{Code: code.Code, Kind: model.ShiftKind(code.Kind)}
		if sc.Kind != model.ShiftRest {
			start, ok := overtime.ParseClock(code.Start, false)
			if !ok {
				errs = append(errs, fmt.Errorf("shift code %q: invalid start %q", code.Code, code.Start))
			}
			end, ok := overtime.ParseClock(code.End, true)
			if !ok {
				errs = append(errs, fmt.Errorf("shift code %q: invalid end %q", code.Code, code.End))
			}
			sc.Start, sc.End = start, end
		}
		rules.Codes = append(rules.Codes, sc)
	}

	for _, b := range rc.Breaks {
		start, ok1 := overtime.ParseClock(b.Start, false)
		end, ok2 := overtime.ParseClock(b.End, true)
		if !ok1 || !ok2 {
			errs = append(errs, fmt.Errorf("break %q: invalid time", b.Label))
			continue
		}
		rules.Breaks = append(rules.Breaks, overtime.BreakWindow{Start: start, End: end, Label: b.Label})
	}

	for _, t := range rc.Tiers {
		rules.Tiers = append(rules.Tiers, overtime.DeductionTier{MinWorkedMinutes: t.MinWorkedMinutes, DeductMinutes: t.DeductMinutes})
	}

	if len(rc.Days) > 0 {
		rules.Days = make(map[int]overtime.DayRule, len(rc.Days))
		for _, d := range rc.Days {
			if _, dup := rules.Days[d.Day]; dup {
				errs = append(errs, fmt.Errorf("day rule %d repeated", d.Day))
			}
			rules.Days[d.Day] = overtime.DayRule{Segment: overtime.SegmentMode(d.Segment), BaselineHours: d.BaselineHours}
		}
	}

	if err := errors.Join(errs...); err != nil {
		return overtime.Rules{}, err
	}
	if err := rules.Validate(); err != nil {
		return overtime.Rules{}, err
	}
	return rules, nil
}

// SortedTargetDays 目标日期（升序，去重）
func (s SheetConfig) SortedTargetDays() []int {
	seen := make(map[int]bool, len(s.TargetDays))
	out := make([]int, 0, len(s.TargetDays))
	for _, d := range s.TargetDays {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out
}

// EnsureDataDir 确保数据目录存在，相对路径位于可执行文件同目录下
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := resolveDir(config.Data.DataDir)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"uploads", "exports"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// OutputRoot 输出目录（相对路径位于当前工作目录下）
func OutputRoot(config *AppConfig) string {
	if filepath.IsAbs(config.Data.OutputDir) {
		return config.Data.OutputDir
	}
	return filepath.Join(".", config.Data.OutputDir)
}

// LogRoot 日志目录
func LogRoot(config *AppConfig) string {
	if config.Data.LogDir == "" {
		return OutputRoot(config)
	}
	if filepath.IsAbs(config.Data.LogDir) {
		return config.Data.LogDir
	}
	return filepath.Join(".", config.Data.LogDir)
}

// DatabaseFile 计算历史数据库文件名，位于数据目录下
const DatabaseFile = "overtime.db"

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(resolveDir(config.Data.DataDir), subdir, filename)
}

func resolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	exeDir, err := GetExeDir()
	if err != nil || exeDir == "" {
		exeDir = "."
	}
	return filepath.Join(exeDir, dir)
}
