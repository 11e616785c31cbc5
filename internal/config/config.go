package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither -config nor CONFIG_PATH is given.
const DefaultPath = "config.yaml"

// Config holds all application configuration.
type Config struct {
	AlphaVantage struct {
		BaseURL   string        `yaml:"base_url" default:"https://www.alphavantage.co/query" validate:"required,url"`
		APIKey    string        `yaml:"api_key" validate:"required"`
		CallPause time.Duration `yaml:"call_pause" default:"1s" validate:"gte=0"`
		Timeout   time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	} `yaml:"alpha_vantage"`
	Report struct {
		Tickers     []string      `yaml:"tickers"`
		OutputDir   string        `yaml:"output_dir" default:"stock_reports" validate:"required"`
		TickerPause time.Duration `yaml:"ticker_pause" default:"60s" validate:"gte=0"`
		StopOnError bool          `yaml:"stop_on_error"`
	} `yaml:"report"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token" validate:"required_with=ChatID"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	History struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"history"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads config from a YAML file, fills defaults, then applies
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path resolves the config file location from a flag value and CONFIG_PATH.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

func applyEnv(cfg *Config) error {
	strs := []struct {
		env string
		dst *string
	}{
		{"ALPHA_VANTAGE", &cfg.AlphaVantage.APIKey},
		{"ALPHA_VANTAGE_BASE_URL", &cfg.AlphaVantage.BaseURL},
		{"STOCK_REPORTS_DIR", &cfg.Report.OutputDir},
		{"REPORT_CRON", &cfg.Schedule.Cron},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"TELEGRAM_BOT_TOKEN", &cfg.Telegram.BotToken},
		{"TELEGRAM_CHAT_ID", &cfg.Telegram.ChatID},
		{"HTTPS_PROXY", &cfg.Proxy},
		{"SQLITE_PATH", &cfg.History.SQLitePath},
	}
	for _, s := range strs {
		if v := os.Getenv(s.env); v != "" {
			*s.dst = v
		}
	}
	if v := os.Getenv("REPORT_TICKER_PAUSE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REPORT_TICKER_PAUSE: %w", err)
		}
		cfg.Report.TickerPause = d
	}
	return nil
}

// Validate checks required fields, enumerations and the cron expression.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, errorMessage(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.NewParser(CronFields).Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	return nil
}

// CronFields is the cron grammar accepted in schedule.cron: six fields
// with seconds first, or a descriptor such as @daily.
const CronFields = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

// TelegramEnabled reports whether run summaries should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func errorMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gt":
		return fmt.Sprintf("%s must be positive", field)
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
