package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Chat      ChatConfig      `yaml:"chat"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
	Debug     bool            `yaml:"debug"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
}

type LLMConfig struct {
	Provider        string        `yaml:"provider"` // google, anthropic, openai, compatible
	Model           string        `yaml:"model"`
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Temperature     float64       `yaml:"temperature"`
	MaxOutputTokens int           `yaml:"max_output_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
	Retries         *int          `yaml:"retries"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
}

type ExtractorConfig struct {
	Backend      string        `yaml:"backend"` // native, pdftotext
	PDFToTextBin string        `yaml:"pdftotext_bin"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxFileBytes int64         `yaml:"max_file_bytes"`
}

type ChatConfig struct {
	HistoryLimit int    `yaml:"history_limit"`
	AudioMIME    string `yaml:"audio_mime"` // used when the upload carries no usable type
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path, applies environment overrides and
// fills defaults. An empty path skips the file and uses the environment
// only. Variables from a .env file in the working directory are loaded
// first without overriding the real environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.setDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("API_KEY"); v != "" {
		c.LLM.APIKey = v
	} else if v := os.Getenv("GOOGLE_API_KEY"); v != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("DEBUG"); v != "" {
		c.Debug = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 60 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 120 * time.Second
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 32 << 20
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "google"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel(c.LLM.Provider)
	}
	if c.LLM.MaxOutputTokens == 0 {
		c.LLM.MaxOutputTokens = 8192
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 90 * time.Second
	}
	if c.LLM.Retries == nil {
		retries := 1
		c.LLM.Retries = &retries
	}
	if c.LLM.RetryBackoff == 0 {
		c.LLM.RetryBackoff = time.Second
	}

	if c.Extractor.Backend == "" {
		c.Extractor.Backend = "native"
	}
	if c.Extractor.Timeout == 0 {
		c.Extractor.Timeout = 25 * time.Second
	}
	if c.Extractor.MaxFileBytes == 0 {
		c.Extractor.MaxFileBytes = 15 << 20
	}

	if c.Chat.HistoryLimit == 0 {
		c.Chat.HistoryLimit = 5
	}
	if c.Chat.AudioMIME == "" {
		c.Chat.AudioMIME = "audio/mp3"
	}

	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"*"}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Debug {
		c.Log.Level = "debug"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case "anthropic":
		return "claude-3-5-haiku-latest"
	case "openai", "compatible":
		return "gpt-4o-mini"
	default:
		return "gemini-1.5-flash"
	}
}

// MaxRetries returns the number of extra upstream attempts
func (c *LLMConfig) MaxRetries() int {
	if c.Retries == nil || *c.Retries < 0 {
		return 0
	}
	return *c.Retries
}
