package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Cal.com account credentials.
	CalAPIKey   string        `mapstructure:"CAL_API_KEY"`
	CalUsername string        `mapstructure:"CAL_USERNAME"`
	CalBaseURL  string        `mapstructure:"CAL_BASE_URL"`
	CalTimeout  time.Duration `mapstructure:"CAL_TIMEOUT"`

	// Inbound API auth, same semantics as the bearer middleware.
	StaticTokens  string `mapstructure:"STATIC_TOKENS"`
	JWTHMACSecret string `mapstructure:"JWT_HMAC_SECRET"`

	RateLimitPerMin int `mapstructure:"RATE_LIMIT_PER_MIN"`
	// Comma-separated proxy IPs/CIDRs whose X-Forwarded-For is honored. Empty trusts none.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"CAL_API_KEY", "CAL_USERNAME", "CAL_BASE_URL", "CAL_TIMEOUT",
	"STATIC_TOKENS", "JWT_HMAC_SECRET", "RATE_LIMIT_PER_MIN", "TRUSTED_PROXIES",
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CAL_BASE_URL", "https://api.cal.com/v1")
	v.SetDefault("CAL_TIMEOUT", time.Duration(0))
	v.SetDefault("RATE_LIMIT_PER_MIN", 120)
}

// Load reads configuration from the environment and an optional config.yaml
// in the working directory or ./config. configFile overrides the search path.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows about when unmarshalling.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, errors.Wrapf(err, "bind env %s", k)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fails fast on missing credentials.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.CalAPIKey) == "" {
		missing = append(missing, "CAL_API_KEY")
	}
	if strings.TrimSpace(c.CalUsername) == "" {
		missing = append(missing, "CAL_USERNAME")
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.CalTimeout < 0 {
		return errors.Errorf("CAL_TIMEOUT must not be negative, got %s", c.CalTimeout)
	}
	return nil
}

// IsProduction reports whether the process runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Tokens returns the configured static bearer tokens.
func (c *Config) Tokens() []string {
	return splitList(c.StaticTokens)
}

// Proxies returns the trusted proxy list.
func (c *Config) Proxies() []string {
	return splitList(c.TrustedProxies)
}

func splitList(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
