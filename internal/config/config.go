package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local" validate:"oneof=local dev prod"`
	HTTP        HTTPConfig        `yaml:"http"`
	Webhook     WebhookConfig     `yaml:"webhook"`
	Chat        ChatConfig        `yaml:"chat"`
	Email       EmailConfig       `yaml:"email"`
	Fulfillment FulfillmentConfig `yaml:"fulfillment"`
	Dispatch    DispatchConfig    `yaml:"dispatch"`
	Kafka       KafkaConfig       `yaml:"kafka"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port" env:"HTTP_PORT" env-default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"60s"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" env:"HTTP_MAX_BODY_BYTES" env-default:"1048576" validate:"gt=0"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" env:"HTTP_RATE_LIMIT_RPS" env-default:"0" validate:"gte=0"`
	RateLimitBurst int           `yaml:"rate_limit_burst" env:"HTTP_RATE_LIMIT_BURST" env-default:"10" validate:"gte=0"`
}

type WebhookConfig struct {
	// SigningSecret enables signature verification of inbound deliveries when set.
	SigningSecret string `yaml:"signing_secret" env:"SNIPCART_SECRET"`
}

type ChatConfig struct {
	WebhookURL string `yaml:"webhook_url" env:"DISCORD_WEBHOOK_URL" validate:"omitempty,url"`
}

type EmailConfig struct {
	APIKey            string `yaml:"api_key" env:"RESEND_API_KEY"`
	NotificationEmail string `yaml:"notification_email" env:"NOTIFICATION_EMAIL" validate:"omitempty,email"`
	From              string `yaml:"from" env:"EMAIL_FROM" env-default:"PosturePro Orders <orders@posturepro.store>"`
	BaseURL           string `yaml:"base_url" env:"RESEND_BASE_URL" env-default:"https://api.resend.com" validate:"url"`
	FulfillmentURL    string `yaml:"fulfillment_url" env:"EMAIL_FULFILLMENT_URL" env-default:"https://cjdropshipping.com"`
}

type FulfillmentConfig struct {
	APIKey   string            `yaml:"api_key" env:"CJ_API_KEY"`
	BaseURL  string            `yaml:"base_url" env:"CJ_BASE_URL" env-default:"https://developers.cjdropshipping.com/api2.0/v1" validate:"url"`
	Variants map[string]string `yaml:"variants" env:"CJ_VARIANTS" env-default:"S/M:YOUR_SM_VARIANT_ID,L/XL:YOUR_LXL_VARIANT_ID"`
	// PerItemVariants maps every line item's own size instead of reusing the first item's variant.
	PerItemVariants bool `yaml:"per_item_variants" env:"CJ_PER_ITEM_VARIANTS" env-default:"false"`
}

type DispatchConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"DISPATCH_TIMEOUT" env-default:"10s" validate:"gt=0"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers" env:"KAFKA_BROKERS"`
	FailureTopic string   `yaml:"failure_topic" env:"KAFKA_FAILURE_TOPIC" env-default:"order-dispatch-failures"`
}

func (c *Config) ChatEnabled() bool {
	return c.Chat.WebhookURL != ""
}

func (c *Config) EmailEnabled() bool {
	return c.Email.APIKey != "" && c.Email.NotificationEmail != ""
}

func (c *Config) FulfillmentEnabled() bool {
	return c.Fulfillment.APIKey != ""
}

func (c *Config) SignatureRequired() bool {
	return c.Webhook.SigningSecret != ""
}

func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func InitConfig() Config {
	cfg, err := Load(getConfigPath())
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	return cfg
}

// Load reads the YAML file at path, overridden by the environment. An empty
// path reads the environment only.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config file does not exist: %s", path)
		}

		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func getConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	return path
}
