// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	HTTP          HTTPConfig         `mapstructure:"http"`
	Store         StoreConfig        `mapstructure:"store"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Cache         CacheConfig        `mapstructure:"cache"`
	Breaker       BreakerConfig      `mapstructure:"breaker"`
	Fulfillment   FulfillmentConfig  `mapstructure:"fulfillment"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Tracing       TracingConfig      `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Timezone    string `mapstructure:"timezone"`
}

// Location resolves the configured timezone, falling back to UTC.
func (a AppConfig) Location() *time.Location {
	if a.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type HTTPConfig struct {
	Port           int     `mapstructure:"port"`
	ReadTimeout    int     `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout   int     `mapstructure:"write_timeout"` // milliseconds
	RequestTimeout int     `mapstructure:"request_timeout"`
	RateLimit      float64 `mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst      int     `mapstructure:"rate_burst"`
}

// Supported store drivers.
const (
	StoreDriverMemory        = "memory"
	StoreDriverPostgres      = "postgres"
	StoreDriverElasticsearch = "elasticsearch"
)

type StoreConfig struct {
	Driver          string `mapstructure:"driver"`
	SeedPath        string `mapstructure:"seed_path"`
	GymsCollection  string `mapstructure:"gyms_collection"`
	QuoteCollection string `mapstructure:"quotes_collection"`
	ConnectRetries  int    `mapstructure:"connect_retries"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	URL         string   `mapstructure:"url"`
	IndexPrefix string   `mapstructure:"index_prefix"`
}

// GetAddresses returns the configured addresses, or URL when only that is set.
func (e ElasticsearchConfig) GetAddresses() []string {
	if len(e.Addresses) > 0 {
		return e.Addresses
	}
	if e.URL != "" {
		return []string{e.URL}
	}
	return nil
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig controls the redis read-through cache in front of gym documents.
type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TTL       int    `mapstructure:"ttl"` // seconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

// BreakerConfig tunes the circuit breaker wrapped around the document store.
type BreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // milliseconds
	Timeout          int     `mapstructure:"timeout"`  // milliseconds
	MinRequests      uint32  `mapstructure:"min_requests"`
	FailureThreshold float64 `mapstructure:"failure_threshold"`
}

// FulfillmentConfig holds the business policy constants used by the intent handlers.
type FulfillmentConfig struct {
	GymID            string  `mapstructure:"gym_id"`
	GymName          string  `mapstructure:"gym_name"` // shown to the sales team
	ActivationFee    float64 `mapstructure:"activation_fee"`
	MonthlyRemainder float64 `mapstructure:"monthly_remainder"`
	PromotionMonths  int     `mapstructure:"promotion_months"`
	FullPriceFrom    string  `mapstructure:"full_price_from"`
	JoinURL          string  `mapstructure:"join_url"`
	StoreTimeout     int     `mapstructure:"store_timeout"` // milliseconds
}

// DisplayName is the gym name used in lead notifications, falling back to
// the document id when no name is configured.
func (f FulfillmentConfig) DisplayName() string {
	if f.GymName != "" {
		return f.GymName
	}
	return f.GymID
}

// NotificationConfig holds the sinks that receive newly captured leads.
type NotificationConfig struct {
	SES struct {
		Enabled   bool     `mapstructure:"enabled"`
		Region    string   `mapstructure:"region"`
		FromEmail string   `mapstructure:"from_email"`
		ToEmails  []string `mapstructure:"to_emails"`
	} `mapstructure:"ses"`
	SNS struct {
		Enabled     bool   `mapstructure:"enabled"`
		Region      string `mapstructure:"region"`
		TopicARN    string `mapstructure:"topic_arn"`
		PhoneNumber string `mapstructure:"phone_number"`
	} `mapstructure:"sns"`
	Zoho struct {
		Enabled   bool   `mapstructure:"enabled"`
		BaseURL   string `mapstructure:"base_url"`
		AuthToken string `mapstructure:"oauth_token"`
		Timeout   int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"zoho"`
	NATS struct {
		Enabled bool   `mapstructure:"enabled"`
		URL     string `mapstructure:"url"`
		Subject string `mapstructure:"subject"`
	} `mapstructure:"nats"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TracingConfig controls the jaeger exporter.
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}
