package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Orders    OrdersConfig    `mapstructure:"orders"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Client    ClientConfig    `mapstructure:"client"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// OrdersConfig 订单后端
type OrdersConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ListPath     string        `mapstructure:"list_path"`
	ShipPath     string        `mapstructure:"ship_path"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// InventoryConfig 库存后端（与订单后端地址不同）
type InventoryConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ListPath   string `mapstructure:"list_path"`
	AddPath    string `mapstructure:"add_path"`
	UpdatePath string `mapstructure:"update_path"`
}

// ClientConfig 出站请求；Timeout 为 0 时沿用 transport 默认行为
type ClientConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

type DashboardConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig JWTSecret 为空时关闭鉴权
type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret"`
	AdminUser         string        `mapstructure:"admin_user"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// AuthEnabled 是否启用管理员鉴权
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}

// Location 返回看板使用的时区
func (c *Config) Location() (*time.Location, error) {
	if c.Dashboard.Timezone == "" || c.Dashboard.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Dashboard.Timezone)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("orders.base_url", "https://alcohal-server.gofastapi.com")
	v.SetDefault("orders.list_path", "/getOrders")
	v.SetDefault("orders.ship_path", "/markAsShipped")
	v.SetDefault("orders.poll_interval", 10*time.Second)

	v.SetDefault("inventory.base_url", "http://localhost:5000")
	v.SetDefault("inventory.list_path", "/api/products")
	v.SetDefault("inventory.add_path", "/api/products/add")
	v.SetDefault("inventory.update_path", "/api/products/update")

	v.SetDefault("client.timeout", time.Duration(0))
	v.SetDefault("dashboard.timezone", "Local")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file::memory:?cache=shared")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.admin_user", "admin")
	v.SetDefault("auth.admin_password_hash", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.service_name", "delivery-admin")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
}

// Load 读取 config.yaml 与 ADMIN_ 前缀环境变量
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("ADMIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Orders.PollInterval <= 0 {
		return nil, fmt.Errorf("orders.poll_interval must be positive, got %s", cfg.Orders.PollInterval)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("dashboard.timezone: %w", err)
	}
	return &cfg, nil
}
