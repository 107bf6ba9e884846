package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"overtime/internal/config"
	"overtime/internal/logging"
	"overtime/internal/service/overtime"
	"overtime/internal/store"
)

var (
	configPath string
	debug      bool
	workers    int
)

var rootCmd = &cobra.Command{
	Use:   "overtime",
	Short: "考勤表加班统计工具",
	Long:  "读取考勤 Excel，按班次计算每日加班工时，在原表末尾追加加班列并标记无法识别的班次。",
	// 直接运行 overtime 等同于 overtime run
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "配置文件路径 (默认: 可执行文件同目录 config.toml，或环境变量 OVERTIME_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "控制台输出 DEBUG 日志")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "并行计算的 worker 数 (默认 CPU 核数)")

	addRunFlags(rootCmd)
	addRunFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.AppConfig, config.LoadConfigInfo, error) {
	cfg, info, err := config.LoadConfigWithInfo(configPath)
	if err != nil {
		return nil, info, fmt.Errorf("加载配置失败: %w", err)
	}
	return cfg, info, nil
}

func newLogger(cfg *config.AppConfig) (*logging.Logger, error) {
	logger, err := logging.New(config.LogRoot(cfg), debug)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return logger, nil
}

func newEngine(cfg *config.AppConfig, logger *zap.Logger) (*overtime.Engine, error) {
	rules, err := cfg.EngineRules()
	if err != nil {
		return nil, err
	}
	opts := []overtime.Option{overtime.WithLogger(logger)}
	if workers > 0 {
		opts = append(opts, overtime.WithWorkers(workers))
	}
	return overtime.NewEngine(rules, opts...)
}

// openStore 打开历史库，失败时返回 nil 并记录警告，不影响计算
func openStore(cfg *config.AppConfig, logger *zap.Logger) (*store.Store, string) {
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		logger.Warn("创建数据目录失败", zap.Error(err))
		return nil, cfg.Data.DataDir
	}
	if !cfg.Data.History {
		return nil, dataDir
	}
	st, err := store.New(config.GetDataPath(cfg, "", config.DatabaseFile))
	if err != nil {
		logger.Warn("打开计算历史失败，本次不记录", zap.Error(err))
		return nil, dataDir
	}
	return st, dataDir
}
