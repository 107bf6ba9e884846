package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"overtime/internal/config"
	"overtime/internal/importer"
	"overtime/internal/service/excel"
	"overtime/internal/util"
)

var (
	inputPath  string
	outputPath string
	openResult bool
	noHistory  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "计算考勤表中的加班工时",
	RunE:  runRun,
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "考勤 Excel 路径")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "输出 Excel 路径 (相对路径位于输出目录下)")
	cmd.Flags().BoolVar(&openResult, "open", false, "完成后打开结果文件")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "不记录计算历史")
}

// errNoInput 未指定输入且默认位置都不存在
var errNoInput = errors.New("未指定考勤文件，请使用 -i 指定")

func runRun(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if noHistory {
		cfg.Data.History = false
	}

	input, err := resolveInput(inputPath, cfg)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	engine, err := newEngine(cfg, logger.Logger)
	if err != nil {
		return err
	}

	st, _ := openStore(cfg, logger.Logger)
	if st != nil {
		defer st.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	output := excel.OutputPath(input, outputPath, config.OutputRoot(cfg))
	report, err := importer.NewCoordinator(cfg.Sheet, engine, st, logger.Logger).Process(ctx, importer.ProcessOptions{
		InputPath:  input,
		OutputPath: output,
	})
	if err != nil {
		return err
	}

	printReport(cmd, report)
	fmt.Fprintf(cmd.OutOrStdout(), "加班统计已生成: %s\n", report.OutputPath)

	if openResult {
		if err := util.OpenWithFallback(report.OutputPath); err != nil {
			logger.Warn("无法打开结果文件", zap.String("path", report.OutputPath), zap.Error(err))
		}
	}
	return nil
}

// resolveInput 未指定 -i 时依次尝试默认位置
func resolveInput(input string, cfg *config.AppConfig) (string, error) {
	if input != "" {
		if _, err := os.Stat(input); err != nil {
			return "", fmt.Errorf("考勤文件不存在: %s", input)
		}
		return input, nil
	}
	for _, candidate := range defaultInputs(cfg) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", errNoInput
}

func defaultInputs(cfg *config.AppConfig) []string {
	month := cfg.Sheet.Month
	if month <= 0 {
		month = 10
	}
	name := fmt.Sprintf("%d月考勤.xlsx", month)
	return []string{name, filepath.Join("files", name)}
}

func printReport(cmd *cobra.Command, report *importer.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "工作表: %s，员工 %d 人，日期 %v\n", report.Sheet, report.Employees, report.Days)
	fmt.Fprintf(out, "加班工时合计: %.2f 小时\n", report.TotalHours)
	if report.ErrorCount == 0 {
		return
	}
	fmt.Fprintf(out, "%d 个单元格需要人工核对:\n", report.ErrorCount)
	for _, m := range report.Flags {
		fmt.Fprintf(out, "  %s %s %d号 %q: %s\n", m.Ref, m.EmployeeID, m.Day, m.Raw, m.Reason)
	}
}
