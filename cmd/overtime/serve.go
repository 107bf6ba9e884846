package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"overtime/internal/server"
	"overtime/internal/util"
)

var (
	servePort int
	serveOpen bool
	serveDev  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务，通过上传考勤表计算加班",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "启动后打开浏览器")
	serveCmd.Flags().BoolVar(&serveDev, "dev", false, "开发模式")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, info, err := loadConfig()
	if err != nil {
		return err
	}

	// 命令行参数覆盖配置
	if servePort > 0 && !info.PortSpecified {
		cfg.Server.Port = servePort
	}
	if serveDev {
		cfg.Server.DevMode = true
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

	st, dataDir := openStore(cfg, logger.Logger)
	if st != nil {
		defer st.Close()
	}

	port := cfg.Server.Port
	if !info.PortSpecified {
		if p, err := util.FindAvailablePort(port, 20); err == nil {
			port = p
		}
	}

	srv := server.NewServer(cfg, engine, st, dataDir, logger.Logger)
	addr := fmt.Sprintf(":%d", port)
	url := fmt.Sprintf("http://localhost:%d/api/status", port)

	fmt.Fprintf(cmd.OutOrStdout(), "数据目录: %s\n", dataDir)
	fmt.Fprintf(cmd.OutOrStdout(), "服务地址: %s\n", url)
	fmt.Fprintln(cmd.OutOrStdout(), "按 Ctrl+C 停止服务...")

	if serveOpen {
		if err := util.OpenWithFallback(url); err != nil {
			logger.Warn("无法自动打开浏览器", zap.String("url", url), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, addr)
}
