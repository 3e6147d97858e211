package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	DefaultListenAddr = ":8489"
)

type MySQLConfig struct {
	Dsn             string   `mapstructure:"dsn"`
	ReplicaDsns     []string `mapstructure:"replicaDsns"`
	TablePrefix     string   `mapstructure:"tablePrefix"`
	MaxIdleConns    int      `mapstructure:"maxIdleConns"`
	MaxOpenConns    int      `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime int      `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime int      `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type SecretsConfig struct {
	JWTSecret        string `mapstructure:"jwtSecret"`
	CSRFSecret       string `mapstructure:"csrfSecret"`
	LoginAttemptSalt string `mapstructure:"loginAttemptSalt"`
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type SessionConfig struct {
	// InsecureCookies drops the Secure flag from both the session and csrf
	// cookies. Development only; startup logs a loud warning when set.
	InsecureCookies bool          `mapstructure:"insecureCookies"`
	TokenMaxAge     time.Duration `mapstructure:"tokenMaxAge"`
}

type Config struct {
	Debug             bool          `mapstructure:"debug"`
	ListenAddr        string        `mapstructure:"listenAddr"`
	AllowOrigins      []string      `mapstructure:"allowOrigins"`
	TrustProxyHeaders bool          `mapstructure:"trustProxyHeaders"`
	MySQL             MySQLConfig   `mapstructure:"mysql"`
	Redis             RedisConfig   `mapstructure:"redis"`
	Secrets           SecretsConfig `mapstructure:"secrets"`
	Session           SessionConfig `mapstructure:"session"`
	Admin             AdminConfig   `mapstructure:"admin"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	return nil
}

// stringToBoolHookFunc lets quoted flag values like "1" or "true" decode
// into bool fields instead of failing unmarshal.
func stringToBoolHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.Bool {
			return data, nil
		}
		return cast.ToBoolE(data.(string))
	}
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		stringToBoolHookFunc(),
	))); err != nil {
		return nil, err
	}

	// Environment overrides are not visible to Unmarshal; pick up the
	// security flags explicitly, coercing string forms like "1".
	if v := viper.Get("trustProxyHeaders"); v != nil {
		config.TrustProxyHeaders = cast.ToBool(v)
	}
	if v := viper.Get("session.insecureCookies"); v != nil {
		config.Session.InsecureCookies = cast.ToBool(v)
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
