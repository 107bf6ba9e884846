package util

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
)

// openCommand 各平台的默认打开方式
func openCommand(target string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	case "darwin":
		return exec.Command("open", target)
	default:
		return exec.Command("xdg-open", target)
	}
}

// Open 用系统默认程序打开文件或网址
func Open(target string) error {
	return openCommand(target).Start()
}

// OpenWithFallback 带降级方案的打开
func OpenWithFallback(target string) error {
	err := Open(target)
	if err == nil {
		return nil
	}

	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", target).Start()
	case "linux":
		for _, opener := range []string{"gio", "sensible-browser"} {
			args := []string{target}
			if opener == "gio" {
				args = []string{"open", target}
			}
			if err := exec.Command(opener, args...).Start(); err == nil {
				return nil
			}
		}
	}

	return err
}

// FindAvailablePort 从 startPort 开始查找可监听的端口，最多尝试 limit 个
func FindAvailablePort(startPort, limit int) (int, error) {
	if limit <= 0 {
		limit = 1
	}
	for port := startPort; port < startPort+limit; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("no available port in [%d, %d)", startPort, startPort+limit)
}
