package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用程序配置
type Config struct {
	// 服务器配置
	Server ServerConfig `yaml:"server"`

	// LLM抽取配置
	LLM LLMConfig `yaml:"llm"`

	// 解析器配置
	Extractor ExtractorConfig `yaml:"extractor"`

	// MinIO配置
	MinIO MinIOConfig `yaml:"minio"`

	// Redis配置
	Redis RedisConfig `yaml:"redis"`

	// 日志配置
	Logger LoggerConfig `yaml:"logger"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address string `yaml:"address"` // 例如 ":8080" or "0.0.0.0:8080"
	APIKey  string `yaml:"api_key"` // 可选，设置后启用keyauth中间件
}

// LLMConfig LLM补全网关配置
type LLMConfig struct {
	APIKey           string  `yaml:"api_key"`
	APIURL           string  `yaml:"api_url"`
	Model            string  `yaml:"model"`
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	TimeoutSeconds   int     `yaml:"timeout_seconds"`    // 单次补全调用超时(秒)
	QPM              int     `yaml:"qpm"`                // 每分钟请求数限制
	MaxRetries       int     `yaml:"max_retries"`        // 最大重试次数
	RetryWaitSeconds int     `yaml:"retry_wait_seconds"` // 重试等待时间(秒)
}

// ExtractorConfig 字段抽取流水线配置
type ExtractorConfig struct {
	Schema   string `yaml:"schema"`    // 输出模式: "basic_info" 或 "profile"
	MaxChars int    `yaml:"max_chars"` // 提交给LLM前的文本长度上限
}

// MinIOConfig MinIO配置结构
type MinIOConfig struct {
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Location        string `yaml:"location"` // 可选，存储桶区域
	// 两个存储桶：原始简历与预处理文本
	OriginalsBucket  string `yaml:"originalsBucket"`
	ParsedTextBucket string `yaml:"parsedTextBucket"`
	// 对象生命周期管理
	OriginalFileExpireDays int `yaml:"original_file_expire_days"`
	ParsedTextExpireDays   int `yaml:"parsed_text_expire_days"`
}

// RedisConfig Redis配置（文件MD5去重索引）
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`
	MinIdleConns int `yaml:"min_idle_conns"`
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	// MD5记录过期时间(天)
	MD5RecordExpireDays int `yaml:"md5_record_expire_days"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// LoadConfig 从文件加载配置，环境变量可覆盖LLM凭据
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 从环境变量覆盖配置（如果存在）
	if envKey := os.Getenv("LLM_API_KEY"); envKey != "" {
		config.LLM.APIKey = envKey
	}
	if envURL := os.Getenv("LLM_API_URL"); envURL != "" {
		config.LLM.APIURL = envURL
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		config.LLM.Model = envModel
	}

	config.applyDefaults()
	return &config, nil
}

// DefaultConfig 返回带默认值的配置，用于测试环境
func DefaultConfig() *Config {
	config := &Config{}
	config.applyDefaults()
	if envKey := os.Getenv("LLM_API_KEY"); envKey != "" {
		config.LLM.APIKey = envKey
	}
	return config
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.LLM.APIURL == "" {
		c.LLM.APIURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "qwen-turbo"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 800
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 30
	}
	if c.LLM.MaxRetries == 0 {
		c.LLM.MaxRetries = 2
	}
	if c.LLM.RetryWaitSeconds == 0 {
		c.LLM.RetryWaitSeconds = 2
	}

	if c.Extractor.Schema == "" {
		c.Extractor.Schema = "profile"
	}
	if c.Extractor.MaxChars == 0 {
		c.Extractor.MaxChars = 4000
	}

	if c.MinIO.Endpoint == "" {
		c.MinIO.Endpoint = "localhost:9000"
	}
	if c.MinIO.OriginalsBucket == "" {
		c.MinIO.OriginalsBucket = "resume-originals"
	}
	if c.MinIO.ParsedTextBucket == "" {
		c.MinIO.ParsedTextBucket = "resume-parsed-text"
	}
	if c.MinIO.OriginalFileExpireDays == 0 {
		c.MinIO.OriginalFileExpireDays = 1095 // 默认3年过期
	}
	if c.MinIO.ParsedTextExpireDays == 0 {
		c.MinIO.ParsedTextExpireDays = 1095
	}

	if c.Redis.Address == "" {
		c.Redis.Address = "localhost:6379"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 2
	}
	if c.Redis.DialTimeoutSeconds == 0 {
		c.Redis.DialTimeoutSeconds = 5
	}
	if c.Redis.ReadTimeoutSeconds == 0 {
		c.Redis.ReadTimeoutSeconds = 3
	}
	if c.Redis.WriteTimeoutSeconds == 0 {
		c.Redis.WriteTimeoutSeconds = 3
	}
	if c.Redis.MD5RecordExpireDays == 0 {
		c.Redis.MD5RecordExpireDays = 365 // 默认1年过期
	}

	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "pretty"
	}
	if c.Logger.TimeFormat == "" {
		c.Logger.TimeFormat = "2006-01-02 15:04:05"
	}
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
