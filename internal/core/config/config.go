package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Backend holds the storefront backend API configuration.
	Backend BackendConfig `mapstructure:",squash"`

	// Cache holds the Redis cache configuration.
	Cache CacheConfig `mapstructure:",squash"`

	// Tracking holds the tracking stage derivation settings.
	Tracking TrackingConfig `mapstructure:",squash"`

	// Carrier holds the optional carrier page scraper settings.
	Carrier CarrierConfig `mapstructure:",squash"`

	// Proxy holds the upstream proxy used by the carrier scraper.
	Proxy ProxyConfig `mapstructure:",squash"`
}

// BackendConfig holds the connection details for the storefront REST backend.
type BackendConfig struct {
	// URL is the base URL of the storefront backend (e.g., https://api.shop.test/api).
	URL string `mapstructure:"BACKEND_URL" required:"true"`
	// Token is an optional bearer token sent on every backend request.
	Token string `mapstructure:"BACKEND_TOKEN"`
	// TimeoutSeconds bounds every backend request.
	TimeoutSeconds int `mapstructure:"BACKEND_TIMEOUT_SECONDS" default:"10"`
}

// Timeout returns the backend request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// CacheConfig holds the tracking feed cache settings.
type CacheConfig struct {
	// RedisURL is the Redis connection string. Empty disables caching.
	RedisURL string `mapstructure:"REDIS_URL"`
	// TrackingTTLSeconds is how long a fetched tracking feed stays cached.
	TrackingTTLSeconds int `mapstructure:"TRACKING_CACHE_TTL_SECONDS" default:"60"`
}

// TrackingTTL returns the feed cache TTL as a duration.
func (c CacheConfig) TrackingTTL() time.Duration {
	return time.Duration(c.TrackingTTLSeconds) * time.Second
}

// TrackingConfig holds the settings consumed by the tracking stage engine.
type TrackingConfig struct {
	// ExchangeReturnWindowDays is the number of days after delivery during which
	// exchange and return requests are accepted.
	ExchangeReturnWindowDays int `mapstructure:"EXCHANGE_RETURN_WINDOW_DAYS" default:"7"`
	// DateLayout is the Go time layout used for stage dates.
	DateLayout string `mapstructure:"DATE_LAYOUT" default:"02 Jan 2006"`
	// Timezone is the IANA zone stage dates are rendered in.
	Timezone string `mapstructure:"DATE_TIMEZONE" default:"UTC"`
}

// CarrierConfig holds the headless-browser carrier scraper settings.
type CarrierConfig struct {
	// PageURL is the carrier tracking page template; "%s" is replaced by the order ID.
	// Empty disables the scraper.
	PageURL string `mapstructure:"CARRIER_PAGE_URL"`
	// APIPattern is the request pattern hijacked on the carrier page.
	APIPattern string `mapstructure:"CARRIER_API_PATTERN" default:"*/api/tracking*"`
	// TimeoutSeconds bounds a single scrape.
	TimeoutSeconds int `mapstructure:"CARRIER_TIMEOUT_SECONDS" default:"30"`
}

// Enabled reports whether a carrier page is configured.
func (c CarrierConfig) Enabled() bool {
	return c.PageURL != ""
}

// Timeout returns the scrape timeout as a duration.
func (c CarrierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ProxyConfig holds the upstream proxy credentials.
type ProxyConfig struct {
	// Enabled toggles proxy usage.
	Enabled bool `mapstructure:"PROXY_ENABLED"`
	// Hostname is the upstream proxy host.
	Hostname string `mapstructure:"PROXY_HOST"`
	// Port is the upstream proxy port.
	Port int `mapstructure:"PROXY_PORT"`
	// Username is the proxy user.
	Username string `mapstructure:"PROXY_USER"`
	// Password is the proxy password.
	Password string `mapstructure:"PROXY_PASS"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if _, err := time.LoadLocation(config.Tracking.Timezone); err != nil {
		return nil, fmt.Errorf("invalid DATE_TIMEZONE %q: %w", config.Tracking.Timezone, err)
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env keys and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
