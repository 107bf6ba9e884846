package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 控制台 + 文件双输出的日志
type Logger struct {
	*zap.Logger
	path string
	file *os.File
}

// New 在 dir 下创建 overtime_YYYYMMDD_HHMMSS.log，并同时输出到控制台
// debug 为 true 时控制台也输出 DEBUG 级别，文件始终记录 DEBUG
func New(dir string, debug bool) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("overtime_%s.log", time.Now().Format("20060102_150405")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleLevel := zapcore.InfoLevel
	if debug {
		consoleLevel = zapcore.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(file), zapcore.DebugLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), consoleLevel),
	)

	logger := &Logger{
		Logger: zap.New(core).Named("overtime"),
		path:   path,
		file:   file,
	}
	logger.Info("日志文件", zap.String("path", path))
	return logger, nil
}

// Nop 不输出任何内容的日志，用于测试
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Path 日志文件路径
func (l *Logger) Path() string {
	return l.path
}

// Close 刷新并关闭日志文件
func (l *Logger) Close() error {
	_ = l.Logger.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
