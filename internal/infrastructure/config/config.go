// Package config 提供应用配置的加载
// 优先级：环境变量 > 配置文件 > 默认值
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// 环境变量键
const (
	// EnvHTTPPort HTTP 监听端口
	EnvHTTPPort = "WEBIDE_HTTP_PORT"
	// EnvWorkspaceDir 工作区根目录
	EnvWorkspaceDir = "WEBIDE_WORKSPACE_DIR"
	// EnvConfigFile 配置文件路径
	EnvConfigFile = "WEBIDE_CONFIG_FILE"
	// EnvLLMAPIKey 模型 API Key
	EnvLLMAPIKey = "WEBIDE_LLM_API_KEY"
	// EnvLLMBaseURL 模型 API 地址
	EnvLLMBaseURL = "WEBIDE_LLM_BASE_URL"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Database  DatabaseConfig  `yaml:"database"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	LLM       LLMConfig       `yaml:"llm"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// HTTPPort HTTP 监听端口（固定端口，用于单例锁）
	HTTPPort string `yaml:"http_port"`
	// Advertise 是否通过 mDNS 在局域网广播服务
	Advertise bool `yaml:"advertise"`
}

// WorkspaceConfig 工作区配置
type WorkspaceConfig struct {
	// Root 工作区根目录，留空表示当前工作目录下的 workspace
	Root string `yaml:"root"`
	// Name 工作区显示名称（用于 mDNS 广播）
	Name string `yaml:"name"`
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size"`
	// SendBufferSize 每个会话的发送队列长度
	SendBufferSize int `yaml:"send_buffer_size"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Path sqlite 数据库路径，留空表示 ~/.webide/webide.db
	Path string `yaml:"path"`
}

// WatcherConfig 文件监听配置
type WatcherConfig struct {
	// DebounceDelay 修改事件防抖延迟
	DebounceDelay time.Duration `yaml:"debounce_delay"`
}

// LLMConfig 生成模型配置
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// NewConfig 创建配置
// 先加载默认值，再按需合并配置文件，最后应用环境变量覆盖
func NewConfig() *Config {
	cfg := defaultConfig()

	if path := configFilePath(); path != "" {
		if err := cfg.loadFile(path); err != nil && !os.IsNotExist(err) {
			// 配置文件损坏时保留默认值，由调用方日志记录
			fmt.Fprintf(os.Stderr, "config: failed to load %s: %v\n", path, err)
		}
	}

	cfg.applyEnv()
	return cfg
}

// defaultConfig 返回默认配置
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:  ":18980",
			Advertise: true,
		},
		Workspace: WorkspaceConfig{
			Root: "",
			Name: "webide",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			SendBufferSize:  256,
		},
		Database: DatabaseConfig{
			Path: "",
		},
		Watcher: WatcherConfig{
			DebounceDelay: 300 * time.Millisecond,
		},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
	}
}

// configFilePath 返回配置文件路径
func configFilePath() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".webide", "config.yaml")
}

// loadFile 从 YAML 文件合并配置
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// applyEnv 应用环境变量覆盖
func (c *Config) applyEnv() {
	if port := os.Getenv(EnvHTTPPort); port != "" {
		c.Server.HTTPPort = port
	}
	if dir := os.Getenv(EnvWorkspaceDir); dir != "" {
		c.Workspace.Root = dir
	}
	if key := os.Getenv(EnvLLMAPIKey); key != "" {
		c.LLM.APIKey = key
	}
	if url := os.Getenv(EnvLLMBaseURL); url != "" {
		c.LLM.BaseURL = url
	}
}

// ResolveWorkspaceRoot 解析工作区根目录的绝对路径
// 目录不存在时自动创建
func (c *Config) ResolveWorkspaceRoot() (string, error) {
	root := c.Workspace.Root
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		root = filepath.Join(cwd, "workspace")
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return "", fmt.Errorf("failed to create workspace root: %w", err)
	}

	return absRoot, nil
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewDatabaseConfig 创建数据库配置
func NewDatabaseConfig(cfg *Config) *DatabaseConfig {
	return &cfg.Database
}

// NewLLMConfig 创建模型配置
func NewLLMConfig(cfg *Config) *LLMConfig {
	return &cfg.LLM
}
