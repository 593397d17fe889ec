package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	LLM        LLMConfig        `mapstructure:"llm"`
	YouTube    YouTubeConfig    `mapstructure:"youtube"`
	Transcript TranscriptConfig `mapstructure:"transcript"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Log        LogConfig        `mapstructure:"log"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Session    SessionConfig    `mapstructure:"session"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// LLMConfig 描述摘要/翻译所用的模型，API Key 由用户在会话中提供
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"` // groq | openai | gemini | doubao | qwen
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Temperature  float32       `mapstructure:"temperature"`
	Timeout      time.Duration `mapstructure:"timeout"`
	DebugRequest bool          `mapstructure:"debug_request"`
}

type YouTubeConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type TranscriptConfig struct {
	ScraperAPIKey string        `mapstructure:"scraperapi_key"`
	ProxyHost     string        `mapstructure:"proxy_host"`
	ProxyPort     int           `mapstructure:"proxy_port"`
	ProxyInsecure bool          `mapstructure:"proxy_insecure"`
	WatchURL      string        `mapstructure:"watch_url"`
	Languages     []string      `mapstructure:"languages"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupSchedule string        `mapstructure:"cleanup_schedule"`
	CookieName      string        `mapstructure:"cookie_name"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"` // memory | redis
	RedisURL  string `mapstructure:"redis_url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// applyProviderDefaults 按提供方补齐未配置的 base_url 与 model
func (l *LLMConfig) applyProviderDefaults() {
	switch l.Provider {
	case "groq":
		if l.BaseURL == "" {
			l.BaseURL = "https://api.groq.com/openai/v1"
		}
		if l.Model == "" {
			l.Model = "llama-3.3-70b-versatile"
		}
	case "openai":
		if l.Model == "" {
			l.Model = "gpt-4o-mini"
		}
	case "gemini":
		if l.Model == "" {
			l.Model = "gemini-2.5-flash"
		}
	case "doubao":
		if l.BaseURL == "" {
			l.BaseURL = "https://ark.cn-beijing.volces.com/api/v3"
		}
		if l.Model == "" {
			l.Model = "doubao-seed-1-6-250615"
		}
	case "qwen":
		if l.BaseURL == "" {
			l.BaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
		}
		if l.Model == "" {
			l.Model = "qwen-plus"
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 300*time.Second)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", 60*time.Second)

	v.SetDefault("youtube.api_key", "")
	v.SetDefault("youtube.endpoint", "https://www.googleapis.com/")
	v.SetDefault("youtube.timeout", 30*time.Second)

	v.SetDefault("transcript.scraperapi_key", "")
	v.SetDefault("transcript.proxy_host", "proxy-server.scraperapi.com")
	v.SetDefault("transcript.proxy_port", 8001)
	v.SetDefault("transcript.proxy_insecure", true)
	v.SetDefault("transcript.watch_url", "https://www.youtube.com/watch")
	v.SetDefault("transcript.languages", []string{"en"})
	v.SetDefault("transcript.timeout", 30*time.Second)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept"})
	v.SetDefault("cors.max_age", 43200)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_minute", 30)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cleanup_schedule", "@every 10m")
	v.SetDefault("session.cookie_name", "yts_session")

	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.key_prefix", "yts:session:")
}

// Load 读取 .env、YAML 配置文件和环境变量；配置文件不存在时只使用默认值
func Load(configPath string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("YTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", configPath, err)
			}
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 配置文件优先，如果配置文件中没有设置，则使用环境变量
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUR_YOUTUBE_API_KEY")
	}
	if c.Transcript.ScraperAPIKey == "" {
		c.Transcript.ScraperAPIKey = os.Getenv("SCRAPERAPI_KEY")
	}

	c.LLM.applyProviderDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate 校验取值范围，密钥缺失不视为错误（运行时以提示文本呈现）
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "groq", "openai", "gemini", "doubao", "qwen":
	default:
		return fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}
	switch c.Storage.Type {
	case "memory":
	case "redis":
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for redis storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl: %s", c.Session.TTL)
	}
	return nil
}
