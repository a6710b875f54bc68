package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config 进程级配置：默认值 < .env 文件 < 环境变量
type Config struct {
	Addr      string
	LogFile   string
	LogLevel  string
	LogStdout bool
	ClientDir string
	// SendQueue 每个连接的发送队列长度
	SendQueue int
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Addr:      ":8080",
		LogFile:   "app.log",
		LogLevel:  "debug",
		ClientDir: "client",
		SendQueue: 64,
	}
}

// LoadConfig 读取可选的 .env 文件后再从环境变量覆盖默认值。
// envFile 不存在不算错误。
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := DefaultConfig()
	cfg.Addr = envString("TEMPLE_ADDR", cfg.Addr)
	cfg.LogFile = envString("TEMPLE_LOG_FILE", cfg.LogFile)
	cfg.LogLevel = envString("TEMPLE_LOG_LEVEL", cfg.LogLevel)
	cfg.ClientDir = envString("TEMPLE_CLIENT_DIR", cfg.ClientDir)

	if v, ok := os.LookupEnv("TEMPLE_LOG_STDOUT"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("TEMPLE_LOG_STDOUT: %w", err)
		}
		cfg.LogStdout = b
	}
	if v, ok := os.LookupEnv("TEMPLE_SEND_QUEUE"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("TEMPLE_SEND_QUEUE: invalid value %q", v)
		}
		cfg.SendQueue = n
	}
	return cfg, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
