package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	monthDayPattern = regexp.MustCompile(`^(?:(\d{4})[-/.年])?(\d{1,2})[-/.月](\d{1,2})[日号]?`)
	dayOnlyPattern  = regexp.MustCompile(`^(\d{1,2})[日号]`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// DerivedHeaderKeyword 派生列表头关键词，带此关键词的列不是日期列
const DerivedHeaderKeyword = "加班"

// ParseDayHeader 解析日期列表头，返回月份（无法得知时为 0）与日期
// 支持：日期单元格原始序列号、"2025/10/1"、"2025-10-01"、"10月1日"、"1日"、"1号"、纯数字 1..31
func ParseDayHeader(value string, date1904 bool) (month, day int, found bool) {
	text := NormalizeColumnName(value)
	if text == "" || strings.Contains(text, DerivedHeaderKeyword) {
		return 0, 0, false
	}

	if f, err := strconv.ParseFloat(text, 64); err == nil {
		if f == float64(int(f)) && f >= 1 && f <= 31 {
			return 0, int(f), true
		}
		if f >= 32 {
			t, err := excelize.ExcelDateToTime(f, date1904)
			if err != nil {
				return 0, 0, false
			}
			return int(t.Month()), t.Day(), true
		}
		return 0, 0, false
	}

	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return month, day, true
		}
		return 0, 0, false
	}

	if m := dayOnlyPattern.FindStringSubmatch(text); m != nil {
		day, _ = strconv.Atoi(m[1])
		if day >= 1 && day <= 31 {
			return 0, day, true
		}
	}

	return 0, 0, false
}

// NormalizeColumnName 规范化列名，去除空格和特殊字符
func NormalizeColumnName(name string) string {
	// 去除首尾空格
	name = strings.TrimSpace(name)
	// 去除换行符和制表符
	name = strings.ReplaceAll(name, "\n", "")
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\t", "")
	// 去除全部空白
	name = spacePattern.ReplaceAllString(name, "")
	return name
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
