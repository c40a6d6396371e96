package utils

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	SMS      SMSConfig
	Captcha  CaptchaConfig

	// Categories is the verification category registry. Loaded once at
	// startup and read-only afterwards.
	Categories []CategoryConfig

	// ListRoles are the role names allowed to list issued code records.
	ListRoles []string

	Errors ErrorMessages
	SignIn *FlowConfig
	Reset  *FlowConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type SMSConfig struct {
	Endpoint string
}

type CaptchaConfig struct {
	Endpoint string
	Secret   string
}

// CategoryConfig describes one verification category: SMS provider
// credentials, template, code length, expiry and resend throttle.
type CategoryConfig struct {
	Name            string        `mapstructure:"name"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	AccessKeySecret string        `mapstructure:"access_key_secret"`
	TemplateCode    string        `mapstructure:"template_code"`
	SignName        string        `mapstructure:"sign_name"`
	Product         string        `mapstructure:"product"`
	CodeLength      int           `mapstructure:"code_length"`
	ExpiresIn       time.Duration `mapstructure:"expires_in"`
	ExpiresInError  string        `mapstructure:"expires_in_error"`
	ResendInterval  time.Duration `mapstructure:"resend_interval"`
	ResendError     string        `mapstructure:"resend_error"`
	Captcha         bool          `mapstructure:"captcha"`
}

// ErrorMessages are the client-facing strings for each failure kind,
// configurable per deployment for localization.
type ErrorMessages struct {
	Empty            string `mapstructure:"empty"`
	EmptyCategory    string `mapstructure:"empty_category"`
	EmptyMobile      string `mapstructure:"empty_mobile"`
	EmptyCode        string `mapstructure:"empty_code"`
	EmptyUsername    string `mapstructure:"empty_username"`
	EmptyPassword    string `mapstructure:"empty_password"`
	UnknownCategory  string `mapstructure:"unknown_category"`
	UsernameNotFound string `mapstructure:"username_not_found"`
	Captcha          string `mapstructure:"captcha"`
}

// FlowConfig ties a sign-in or reset flow to the category driving it and
// the lifetime of the session token issued on success.
type FlowConfig struct {
	CategoryName     string        `mapstructure:"category_name"`
	ExpiresIn        time.Duration `mapstructure:"expires_in"`
	InvalidCodeError string        `mapstructure:"invalid_code_error"`
}

// CategoryByName returns the configured category, or false when the name
// is not registered.
func (c *Config) CategoryByName(name string) (*CategoryConfig, bool) {
	for i := range c.Categories {
		if c.Categories[i].Name == name {
			return &c.Categories[i], true
		}
	}
	return nil, false
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_path", "logs/")
	viper.SetDefault("database.max_conns", 10)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("app.name"),
			Port:    viper.GetString("app.port"),
			Debug:   viper.GetBool("app.debug"),
			LogPath: viper.GetString("app.log_path"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("database.host"),
			Port:     viper.GetString("database.port"),
			Name:     viper.GetString("database.name"),
			User:     viper.GetString("database.user"),
			Password: viper.GetString("database.password"),
			MaxConns: viper.GetInt32("database.max_conns"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
			Issuer: viper.GetString("jwt.issuer"),
		},
		SMS: SMSConfig{
			Endpoint: viper.GetString("sms.endpoint"),
		},
		Captcha: CaptchaConfig{
			Endpoint: viper.GetString("captcha.endpoint"),
			Secret:   viper.GetString("captcha.secret"),
		},
		ListRoles: viper.GetStringSlice("list_roles"),
	}

	if err := viper.UnmarshalKey("categories", &config.Categories); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	if err := viper.UnmarshalKey("errors", &config.Errors); err != nil {
		return nil, fmt.Errorf("parse error messages: %w", err)
	}
	if viper.IsSet("signin") {
		if err := viper.UnmarshalKey("signin", &config.SignIn); err != nil {
			return nil, fmt.Errorf("parse signin config: %w", err)
		}
	}
	if viper.IsSet("reset") {
		if err := viper.UnmarshalKey("reset", &config.Reset); err != nil {
			return nil, fmt.Errorf("parse reset config: %w", err)
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	seen := make(map[string]bool)
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if seen[cat.Name] {
			return fmt.Errorf("duplicate category name %q", cat.Name)
		}
		seen[cat.Name] = true

		if cat.CodeLength <= 0 {
			return fmt.Errorf("category %q: code_length must be positive", cat.Name)
		}
		if cat.ExpiresIn <= 0 {
			return fmt.Errorf("category %q: expires_in must be positive", cat.Name)
		}
		if cat.ResendInterval <= 0 {
			return fmt.Errorf("category %q: resend_interval must be positive", cat.Name)
		}
	}

	if c.SignIn != nil {
		if !seen[c.SignIn.CategoryName] {
			return fmt.Errorf("signin references unknown category %q", c.SignIn.CategoryName)
		}
	}
	if c.Reset != nil {
		if !seen[c.Reset.CategoryName] {
			return fmt.Errorf("reset references unknown category %q", c.Reset.CategoryName)
		}
	}

	return nil
}
