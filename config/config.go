/*
Copyright 2025 Candleworks Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5100"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"FULFIL_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"FULFIL_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"FULFIL_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"FULFIL_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"FULFIL_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"FULFIL_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"FULFIL_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"FULFIL_REDIS_DNS"`
}

// CarrierConfig holds the rate-shopping/label-purchase API credentials. The
// API key is resolved before startup (secret bootstrap is a precondition) and
// verified once per process.
type CarrierConfig struct {
	ApiKey     string `json:"api_key" envconfig:"FULFIL_CARRIER_API_KEY"`
	BaseUrl    string `json:"base_url" envconfig:"FULFIL_CARRIER_BASE_URL"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"FULFIL_CARRIER_TIMEOUT_SEC"`
}

// OriginAddress is the warehouse address every shipment originates from.
type OriginAddress struct {
	Name       string `json:"name" envconfig:"FULFIL_ORIGIN_NAME"`
	Line1      string `json:"line1" envconfig:"FULFIL_ORIGIN_LINE1"`
	Line2      string `json:"line2" envconfig:"FULFIL_ORIGIN_LINE2"`
	City       string `json:"city" envconfig:"FULFIL_ORIGIN_CITY"`
	State      string `json:"state" envconfig:"FULFIL_ORIGIN_STATE"`
	PostalCode string `json:"postal_code" envconfig:"FULFIL_ORIGIN_POSTAL_CODE"`
	Country    string `json:"country" envconfig:"FULFIL_ORIGIN_COUNTRY"`
}

type StripeConfig struct {
	SecretKey  string `json:"secret_key" envconfig:"FULFIL_STRIPE_SECRET_KEY"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"FULFIL_STRIPE_TIMEOUT_SEC"`
}

// ShippingConfig carries the store's packaging constants and quote surcharge.
// Unit weight and box dimensions are per-product constants, not user input.
type ShippingConfig struct {
	UnitWeightOz    float64 `json:"unit_weight_oz" envconfig:"FULFIL_SHIPPING_UNIT_WEIGHT_OZ"`
	BoxLengthIn     float64 `json:"box_length_in" envconfig:"FULFIL_SHIPPING_BOX_LENGTH_IN"`
	BoxWidthIn      float64 `json:"box_width_in" envconfig:"FULFIL_SHIPPING_BOX_WIDTH_IN"`
	BoxBaseHeightIn float64 `json:"box_base_height_in" envconfig:"FULFIL_SHIPPING_BOX_BASE_HEIGHT_IN"`
	SurchargeCents  int64   `json:"surcharge_cents" envconfig:"FULFIL_SHIPPING_SURCHARGE_CENTS"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"FULFIL_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"FULFIL_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"FULFIL_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"FULFIL_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Carrier      CarrierConfig    `json:"carrier"`
	Origin       OriginAddress    `json:"origin"`
	Stripe       StripeConfig     `json:"stripe"`
	Shipping     ShippingConfig   `json:"shipping"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("fulfil", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called fulfil.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Fulfil Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	if cnf.Carrier.ApiKey == "" {
		log.Println("Error: Carrier API key is empty. It's a required field.")
		return errors.New("carrier API key is required")
	}

	if cnf.Carrier.BaseUrl == "" {
		cnf.Carrier.BaseUrl = "https://api.easypost.com/v2"
	}

	if cnf.Carrier.TimeoutSec <= 0 {
		cnf.Carrier.TimeoutSec = 15
	}

	if cnf.Stripe.TimeoutSec <= 0 {
		cnf.Stripe.TimeoutSec = 15
	}

	if cnf.Origin.Country == "" {
		cnf.Origin.Country = "US"
	}

	// Packaging constants for the store's single product SKU. Zero values mean
	// "not configured", never a zero-size box.
	if cnf.Shipping.UnitWeightOz <= 0 {
		cnf.Shipping.UnitWeightOz = 15
	}
	if cnf.Shipping.BoxLengthIn <= 0 {
		cnf.Shipping.BoxLengthIn = 10
	}
	if cnf.Shipping.BoxWidthIn <= 0 {
		cnf.Shipping.BoxWidthIn = 8
	}
	if cnf.Shipping.BoxBaseHeightIn <= 0 {
		cnf.Shipping.BoxBaseHeightIn = 4
	}
	if cnf.Shipping.SurchargeCents < 0 {
		log.Println("Warning: Negative shipping surcharge. Resetting to default.")
		cnf.Shipping.SurchargeCents = 100
	}
	if cnf.Shipping.SurchargeCents == 0 {
		cnf.Shipping.SurchargeCents = 100
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Carrier.ApiKey = strings.TrimSpace(cnf.Carrier.ApiKey)
	cnf.Stripe.SecretKey = strings.TrimSpace(cnf.Stripe.SecretKey)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	mockConfig.applyTestDefaults()
	ConfigStore.Store(mockConfig)
}

func (cnf *Configuration) applyTestDefaults() {
	if cnf.Shipping.UnitWeightOz <= 0 {
		cnf.Shipping.UnitWeightOz = 15
	}
	if cnf.Shipping.BoxLengthIn <= 0 {
		cnf.Shipping.BoxLengthIn = 10
	}
	if cnf.Shipping.BoxWidthIn <= 0 {
		cnf.Shipping.BoxWidthIn = 8
	}
	if cnf.Shipping.BoxBaseHeightIn <= 0 {
		cnf.Shipping.BoxBaseHeightIn = 4
	}
	if cnf.Shipping.SurchargeCents == 0 {
		cnf.Shipping.SurchargeCents = 100
	}
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
