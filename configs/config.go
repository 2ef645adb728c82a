package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort     string   `yaml:"app_port"`
	AutoMigrate bool     `yaml:"auto_migrate"`
	CORSOrigins []string `yaml:"cors_origins"`
	LogLevel    string   `yaml:"log_level"`
	LogFormat   string   `yaml:"log_format"`

	DB    DBConfig    `yaml:"db"`
	Redis RedisConfig `yaml:"redis"`
	Kafka KafkaConfig `yaml:"kafka"`
	S3    S3Config    `yaml:"s3"`
	JWT   JWTConfig   `yaml:"jwt"`
	Limit LimitConfig `yaml:"rate_limit"`
	OTEL  OTELConfig  `yaml:"otel"`

	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

type DBConfig struct {
	Host     string   `yaml:"host"`
	Port     string   `yaml:"port"`
	User     string   `yaml:"user"`
	Pass     string   `yaml:"password"`
	Name     string   `yaml:"name"`
	SSLMode  string   `yaml:"sslmode"`
	Replicas []string `yaml:"replicas"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers    string `yaml:"brokers"`
	PostsTopic string `yaml:"posts_topic"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type LimitConfig struct {
	Requests int64         `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type OTELConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

func defaults() *Config {
	return &Config{
		AppPort:     ":5007",
		CORSOrigins: []string{"http://localhost:5173"},
		LogLevel:    "info",
		LogFormat:   "json",
		DB: DBConfig{
			Host: "localhost", Port: "5432", User: "postgres", Pass: "postgres",
			Name: "social_db", SSLMode: "disable",
		},
		Kafka: KafkaConfig{PostsTopic: "posts.events"},
		S3:    S3Config{Bucket: "post-images"},
		JWT:   JWTConfig{TTL: 30 * 24 * time.Hour},
		Limit: LimitConfig{Requests: 60, Window: time.Minute},
		OTEL:  OTELConfig{Endpoint: "otel-collector:4318", ServiceName: "social-service"},

		MaxUploadBytes: 5 << 20,
	}
}

// LoadConfig starts from defaults, applies CONFIG_FILE (YAML) when set and
// then environment variables, which always win.
func LoadConfig() (*Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(c *Config) {
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.AutoMigrate = getBool("AUTO_MIGRATE", c.AutoMigrate)
	c.CORSOrigins = getList("CORS_ORIGINS", c.CORSOrigins)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.Port = getEnv("DB_PORT", c.DB.Port)
	c.DB.User = getEnv("DB_USER", c.DB.User)
	c.DB.Pass = getEnv("DB_PASSWORD", c.DB.Pass)
	c.DB.Name = getEnv("DB_NAME", c.DB.Name)
	c.DB.SSLMode = getEnv("DB_SSLMODE", c.DB.SSLMode)
	c.DB.Replicas = getList("DB_REPLICAS", c.DB.Replicas)

	if host := os.Getenv("REDIS_HOST"); host != "" {
		c.Redis.Addr = host + ":" + getEnv("REDIS_PORT", "6379")
	}
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	c.Kafka.Brokers = getEnv("KAFKA_BOOTSTRAP_SERVERS", c.Kafka.Brokers)
	c.Kafka.PostsTopic = getEnv("POSTS_TOPIC", c.Kafka.PostsTopic)

	c.S3.Endpoint = getEnv("S3_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKey = getEnv("S3_ACCESS_KEY", c.S3.AccessKey)
	c.S3.SecretKey = getEnv("S3_SECRET_KEY", c.S3.SecretKey)
	c.S3.UseSSL = getBool("S3_USE_SSL", c.S3.UseSSL)
	c.S3.Bucket = getEnv("S3_BUCKET", c.S3.Bucket)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.TTL = getDuration("JWT_TTL", c.JWT.TTL)

	c.Limit.Requests = int64(getInt("RATE_LIMIT_REQUESTS", int(c.Limit.Requests)))
	c.Limit.Window = getDuration("RATE_LIMIT_WINDOW", c.Limit.Window)

	c.OTEL.Enabled = getBool("OTEL_ENABLED", c.OTEL.Enabled)
	c.OTEL.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTEL.Endpoint)
	c.OTEL.ServiceName = getEnv("OTEL_SERVICE_NAME", c.OTEL.ServiceName)

	c.MaxUploadBytes = int64(getInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
}

func (c *DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Pass, c.Name, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
