package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// envVarPattern 匹配 ${VAR} 或 ${VAR:default} 形式的环境变量占位符
var envVarPattern = regexp.MustCompile(`\$\{(\w+)(:([^}]*))?\}`)

// Load 加载配置，优先级：环境变量 > 环境专属配置文件 > 基础配置文件 > 默认值
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	if configPath == "" {
		configPath = "configs"
	}

	if err := loadConfigFile(v, fmt.Sprintf("%s/config.yaml", configPath)); err != nil {
		return nil, fmt.Errorf("加载基础配置失败: %w", err)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	envFile := fmt.Sprintf("%s/config.%s.yaml", configPath, env)
	if _, err := os.Stat(envFile); err == nil {
		if err := loadConfigFile(v, envFile); err != nil {
			return nil, fmt.Errorf("加载环境配置失败: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.App.Env = env

	return &cfg, nil
}

// MustLoad 加载配置，失败时 panic
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// loadConfigFile 读取单个配置文件并展开环境变量占位符后合并
func loadConfigFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	expanded := expandEnv(string(data))
	return v.MergeConfig(strings.NewReader(expanded))
}

// expandEnv 将 ${VAR} / ${VAR:default} 替换为环境变量值或默认值
func expandEnv(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name := groups[1]
		def := groups[3]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return def
	})
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "shop-copy-ai-api")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8100)
	v.SetDefault("server.http.read_timeout", "30s")
	v.SetDefault("server.http.write_timeout", "60s")
	v.SetDefault("server.http.idle_timeout", "120s")

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", "30m")
	v.SetDefault("database.postgres.conn_max_idle_time", "10m")

	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 10)
	v.SetDefault("cache.redis.min_idle_conns", 2)
	v.SetDefault("cache.redis.dial_timeout", "5s")
	v.SetDefault("cache.redis.read_timeout", "3s")
	v.SetDefault("cache.redis.write_timeout", "3s")

	v.SetDefault("llm.default_provider", "openai")

	v.SetDefault("generation.daily_quota", 10)
	v.SetDefault("generation.free_credit_grant", 10)
	v.SetDefault("generation.recent_limit", 3)
	v.SetDefault("generation.retry.max_attempts", 4)
	v.SetDefault("generation.retry.base_delay", "10s")
	v.SetDefault("generation.retry.multiplier", 2.0)
	v.SetDefault("generation.prompt.heading_tag", "h3")
	v.SetDefault("generation.prompt.paragraph_tag", "p")
	v.SetDefault("generation.prompt.list_tag", "ul")
	v.SetDefault("generation.prompt.list_item_tag", "li")
	v.SetDefault("generation.prompt.intro_sentences", 2)

	v.SetDefault("payments.stripe.currency", "usd")

	v.SetDefault("oauth.timeout", "10s")

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.logging.output", "stdout")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.exporter", "otlp")
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests_per_minute", 120)
	v.SetDefault("security.rate_limit.burst", 30)
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
}
