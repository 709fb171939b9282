// Package config provides configuration management for the Duitku relay service.
// Configuration can be loaded from YAML or .env files and overridden by environment variables.
package config

import (
	"duitku/entity"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the relay service.
// Values can be set via a configuration file or environment variables.
// Environment variables take precedence over file values.
type Config struct {
	IsDebug bool `yaml:"is_debug" env:"DEBUG" env-default:"false"`
	Listen  struct {
		BindIP   string `yaml:"bind_ip" env:"BIND_IP" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env:"PORT" env-default:"3000"`
		TLS      bool   `yaml:"tls_enabled" env:"TLS_ENABLED" env-default:"false"`
		CertFile string `yaml:"cert_file" env:"TLS_CERT_FILE" env-default:""`
		KeyFile  string `yaml:"key_file" env:"TLS_KEY_FILE" env-default:""`
	} `yaml:"listen"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:""`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"duitku"`
	} `yaml:"mongo"`
	Merchant struct {
		Code        string `yaml:"code" env:"DUITKU_MERCHANT_CODE" env-default:""`
		ApiKey      string `yaml:"api_key" env:"DUITKU_API_KEY" env-default:""`
		BaseUrl     string `yaml:"base_url" env:"DUITKU_SANDBOX_URL" env-default:"https://sandbox.duitku.com/webapi/api/merchant"`
		CallbackUrl string `yaml:"callback_url" env:"CALLBACK_URL" env-default:""`
		ReturnUrl   string `yaml:"return_url" env:"RETURN_URL" env-default:""`
	} `yaml:"merchant"`
	GatewayTimeout time.Duration `yaml:"gateway_timeout" env:"GATEWAY_TIMEOUT" env-default:"30s"`
}

// GetConfig loads configuration from the specified file path.
// When the file does not exist, configuration is read from the environment only.
// Supported file formats are those of cleanenv: .yml, .yaml, .json, .toml and .env.
//
// Example:
//
//	cfg, err := config.GetConfig("config.yml")
//	if err != nil {
//	    log.Fatal(err)
//	}
func GetConfig(path string) (*Config, error) {
	conf := &Config{}

	var err error
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		err = cleanenv.ReadConfig(path, conf)
	} else {
		err = cleanenv.ReadEnv(conf)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		return nil, fmt.Errorf("load config: %w; %s", err, desc)
	}

	if err = conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// Validate reports settings without which no gateway request can be signed.
func (c *Config) Validate() error {
	var missing []string
	if c.Merchant.Code == "" {
		missing = append(missing, "merchant code")
	}
	if c.Merchant.ApiKey == "" {
		missing = append(missing, "api key")
	}
	if c.Merchant.BaseUrl == "" {
		missing = append(missing, "gateway url")
	}
	if len(missing) > 0 {
		return errors.New("merchant not configured: missing " + strings.Join(missing, ", "))
	}
	return nil
}

// Credentials returns the merchant identity used for every signature.
func (c *Config) Credentials() entity.Credentials {
	return entity.Credentials{
		MerchantCode: c.Merchant.Code,
		ApiKey:       c.Merchant.ApiKey,
	}
}

func (c *Config) MerchantUrls() entity.MerchantUrls {
	return entity.MerchantUrls{
		Gateway:  strings.TrimRight(c.Merchant.BaseUrl, "/"),
		Callback: c.Merchant.CallbackUrl,
		Return:   c.Merchant.ReturnUrl,
	}
}
