package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合模拟器与查看器进程的配置项。
type Config struct {
	Server ServerConfig
	Paths  PathsConfig
	Replay ReplayConfig
	Log    LogConfig
	// Seed overrides the profile seed when set.
	Seed *uint64
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	replay, err := loadReplayConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	seed, err := parseOptionalUintEnv("JOURNEY_SEED")
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Paths:  loadPathsConfig(),
		Replay: replay,
		Log:    logCfg,
		Seed:   seed,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// PathsConfig locates the profile, the intermediate file and the optional JSONL export.
type PathsConfig struct {
	ProfilePath string
	DataPath    string
	ExportDir   string
}

const (
	DefaultProfilePath = "data/config_member.yaml"
	DefaultDataPath    = "data/generated/journey.json"
)

func loadPathsConfig() PathsConfig {
	return PathsConfig{
		ProfilePath: getEnvOrDefault("JOURNEY_PROFILE", DefaultProfilePath),
		DataPath:    getEnvOrDefault("JOURNEY_DATA", DefaultDataPath),
		ExportDir:   strings.TrimSpace(os.Getenv("JOURNEY_EXPORT_DIR")),
	}
}

// ReplayConfig 控制回放接口的默认节奏。
type ReplayConfig struct {
	Interval time.Duration
}

func loadReplayConfig() (ReplayConfig, error) {
	interval := 400 * time.Millisecond
	ms, err := parseOptionalIntEnv("REPLAY_INTERVAL_MS")
	if err != nil {
		return ReplayConfig{}, err
	}
	if ms != nil {
		if *ms < 0 {
			return ReplayConfig{}, fmt.Errorf("invalid REPLAY_INTERVAL_MS value %d: must not be negative", *ms)
		}
		interval = time.Duration(*ms) * time.Millisecond
	}
	return ReplayConfig{Interval: interval}, nil
}

// LogConfig 描述日志级别与输出格式。
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() (LogConfig, error) {
	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text"))
	if format != "text" && format != "json" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q: want text or json", format)
	}
	return LogConfig{
		Level:  strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		Format: format,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalUintEnv(key string) (*uint64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
