package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Stripe      StripeConfig      `yaml:"stripe"`
	Flutterwave FlutterwaveConfig `yaml:"flutterwave"`
	Email       EmailConfig       `yaml:"email"`
	Chat        ChatConfig        `yaml:"chat"`
	Admin       AdminConfig       `yaml:"admin"`
	Sweep       SweepConfig       `yaml:"sweep"`
	Worker      WorkerConfig      `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	OrderEventsTopic   string   `yaml:"order_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type StripeConfig struct {
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"`
}

type FlutterwaveConfig struct {
	SecretKey string `yaml:"secret_key"`
	BaseURL   string `yaml:"base_url"`
}

type EmailConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	From         string `yaml:"from"`
	AdminAddress string `yaml:"admin_address"`
	SiteURL      string `yaml:"site_url"`
}

// ChatConfig is optional: an empty APIURL or AdminPhone disables the
// chat alert channel entirely.
type ChatConfig struct {
	APIURL     string `yaml:"api_url"`
	APIKey     string `yaml:"api_key"`
	AdminPhone string `yaml:"admin_phone"`
}

type AdminConfig struct {
	Tokens []string `yaml:"tokens"`
}

type SweepConfig struct {
	CronSecret         string `yaml:"cron_secret"`
	ReminderAfterHours int    `yaml:"reminder_after_hours"`
	SurveyDelayHours   int    `yaml:"survey_delay_hours"`
	SurveyLookbackDays int    `yaml:"survey_lookback_days"`
	BatchSize          int    `yaml:"batch_size"`
}

type WorkerConfig struct {
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv overrides secrets from the environment so they never have to
// live in the yaml file.
func (c *Config) applyEnv() {
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		c.Stripe.SecretKey = v
	}
	if v := os.Getenv("FLW_SECRET_KEY"); v != "" {
		c.Flutterwave.SecretKey = v
	}
	if v := os.Getenv("EMAIL_API_KEY"); v != "" {
		c.Email.APIKey = v
	}
	if v := os.Getenv("CHAT_API_KEY"); v != "" {
		c.Chat.APIKey = v
	}
	if v := os.Getenv("CRON_SECRET"); v != "" {
		c.Sweep.CronSecret = v
	}
}

func (c *Config) applyDefaults() {
	if c.Sweep.ReminderAfterHours == 0 {
		c.Sweep.ReminderAfterHours = 24
	}
	if c.Sweep.SurveyDelayHours == 0 {
		c.Sweep.SurveyDelayHours = 6
	}
	if c.Sweep.SurveyLookbackDays == 0 {
		c.Sweep.SurveyLookbackDays = 14
	}
	if c.Sweep.BatchSize == 0 {
		c.Sweep.BatchSize = 50
	}
	if c.Worker.SweepIntervalMinutes == 0 {
		c.Worker.SweepIntervalMinutes = 60
	}
}
