// 환경변수 기반 설정 로딩
//
// 로딩 순서:
//  1. .env 파일이 있으면 프로세스 환경변수로 로드 (godotenv)
//  2. CONFIG_FILE 이 지정되면 YAML 설정 파일 로드
//  3. 환경변수가 설정 파일/기본값보다 우선
//
// 필수 값(GRAFANA_API_KEY, 알림 채널 webhook URL)이 없으면 기동 시점에 실패

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"

	NotifyTeams = "teams"
	NotifySlack = "slack"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Grafana  GrafanaConfig  `mapstructure:"grafana"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Template TemplateConfig `mapstructure:"template"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	GinMode      string `mapstructure:"gin_mode"`       // debug | release | test
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"` // 웹훅 요청 본문 최대 크기
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json

	// File 이 비어있으면 stdout 으로만 출력
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type AnalysisConfig struct {
	Provider     string        `mapstructure:"provider"` // ollama | gemini
	OllamaURL    string        `mapstructure:"ollama_url"`
	Model        string        `mapstructure:"model"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	GeminiModel  string        `mapstructure:"gemini_model"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type GrafanaConfig struct {
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type NotifyConfig struct {
	Kind            string        `mapstructure:"kind"` // teams | slack
	TeamsWebhookURL string        `mapstructure:"teams_webhook_url"`
	SlackWebhookURL string        `mapstructure:"slack_webhook_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// TemplateConfig - 비어있으면 template 패키지의 기본 템플릿 사용
type TemplateConfig struct {
	Prompt       string `mapstructure:"prompt"`
	Annotation   string `mapstructure:"annotation"`
	Notification string `mapstructure:"notification"`
}

// 설정 키 -> 환경변수 이름
var envBindings = map[string]string{
	"server.port":              "PORT",
	"server.gin_mode":          "GIN_MODE",
	"server.max_body_bytes":    "MAX_BODY_BYTES",
	"log.level":                "LOG_LEVEL",
	"log.format":               "LOG_FORMAT",
	"log.file":                 "LOG_FILE",
	"log.max_size_mb":          "LOG_MAX_SIZE_MB",
	"log.max_backups":          "LOG_MAX_BACKUPS",
	"log.max_age_days":         "LOG_MAX_AGE_DAYS",
	"analysis.provider":        "ANALYSIS_PROVIDER",
	"analysis.ollama_url":      "OLLAMA_URL",
	"analysis.model":           "OLLAMA_MODEL",
	"analysis.gemini_api_key":  "AI_API_KEY",
	"analysis.gemini_model":    "GEMINI_MODEL",
	"analysis.timeout":         "ANALYSIS_TIMEOUT",
	"grafana.url":              "GRAFANA_URL",
	"grafana.api_key":          "GRAFANA_API_KEY",
	"grafana.timeout":          "GRAFANA_TIMEOUT",
	"notify.kind":              "NOTIFY_KIND",
	"notify.teams_webhook_url": "TEAMS_WEBHOOK_URL",
	"notify.slack_webhook_url": "SLACK_WEBHOOK_URL",
	"notify.timeout":           "NOTIFY_TIMEOUT",
	"template.prompt":          "PROMPT_TEMPLATE",
	"template.annotation":      "ANNOTATION_TEMPLATE",
	"template.notification":    "NOTIFICATION_TEMPLATE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", gin.ReleaseMode)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("analysis.provider", ProviderOllama)
	v.SetDefault("analysis.ollama_url", "http://ollama:11434")
	v.SetDefault("analysis.model", "gemma2")
	v.SetDefault("analysis.gemini_api_key", "")
	v.SetDefault("analysis.gemini_model", "gemini-2.0-flash")
	v.SetDefault("analysis.timeout", 30*time.Second)

	v.SetDefault("grafana.url", "http://grafana:3000")
	v.SetDefault("grafana.api_key", "")
	v.SetDefault("grafana.timeout", 10*time.Second)

	v.SetDefault("notify.kind", NotifyTeams)
	v.SetDefault("notify.teams_webhook_url", "")
	v.SetDefault("notify.slack_webhook_url", "")
	v.SetDefault("notify.timeout", 10*time.Second)

	v.SetDefault("template.prompt", "")
	v.SetDefault("template.annotation", "")
	v.SetDefault("template.notification", "")
}

// Load - 설정 로드 후 검증까지 수행
func Load() (Config, error) {
	// .env 파일은 로컬 개발용이라 없어도 무시
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Analysis.Provider = strings.ToLower(strings.TrimSpace(c.Analysis.Provider))
	c.Notify.Kind = strings.ToLower(strings.TrimSpace(c.Notify.Kind))
	c.Server.GinMode = strings.ToLower(strings.TrimSpace(c.Server.GinMode))
	c.Grafana.URL = strings.TrimRight(strings.TrimSpace(c.Grafana.URL), "/")
	c.Analysis.OllamaURL = strings.TrimRight(strings.TrimSpace(c.Analysis.OllamaURL), "/")
}

// Validate - 기동 시점 필수값 검증
func (c Config) Validate() error {
	var errs []error

	// gin.SetMode 는 알 수 없는 값이면 panic
	switch c.Server.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		errs = append(errs, fmt.Errorf("unsupported GIN_MODE %q", c.Server.GinMode))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}

	if c.Grafana.URL == "" {
		errs = append(errs, errors.New("GRAFANA_URL is required"))
	}
	if c.Grafana.APIKey == "" {
		errs = append(errs, errors.New("GRAFANA_API_KEY is required"))
	}

	switch c.Notify.Kind {
	case NotifyTeams:
		if c.Notify.TeamsWebhookURL == "" {
			errs = append(errs, errors.New("TEAMS_WEBHOOK_URL is required"))
		}
	case NotifySlack:
		if c.Notify.SlackWebhookURL == "" {
			errs = append(errs, errors.New("SLACK_WEBHOOK_URL is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported NOTIFY_KIND %q", c.Notify.Kind))
	}

	switch c.Analysis.Provider {
	case ProviderOllama:
		if c.Analysis.OllamaURL == "" {
			errs = append(errs, errors.New("OLLAMA_URL is required"))
		}
	case ProviderGemini:
		if c.Analysis.GeminiAPIKey == "" {
			errs = append(errs, errors.New("AI_API_KEY is required for gemini provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported ANALYSIS_PROVIDER %q", c.Analysis.Provider))
	}

	if c.Analysis.Timeout <= 0 || c.Grafana.Timeout <= 0 || c.Notify.Timeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
