// Package config loads the service configuration from configs/config.yml,
// an optional .env file and CLARIASENSE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "CLARIASENSE"

// Trigger transports.
const (
	TransportLocal = "local"
	TransportKafka = "kafka"
)

type Config struct {
	Server     ServerConfig    `mapstructure:"server"`
	DB         DBConfig        `mapstructure:"db"`
	Realtime   RealtimeConfig  `mapstructure:"realtime"`
	Log        LogConfig       `mapstructure:"log"`
	CORS       CORSConfig      `mapstructure:"cors"`
	Mail       MailConfig      `mapstructure:"mail"`
	Refill     RefillConfig    `mapstructure:"refill"`
	Thresholds map[string]Rule `mapstructure:"thresholds"`
	Timezone   string          `mapstructure:"timezone"`
	HourlyLogs HourlyConfig    `mapstructure:"hourly_logs"`
	Triggers   TriggerConfig   `mapstructure:"triggers"`
	MQTT       MQTTConfig      `mapstructure:"mqtt"`
	Auth       AuthConfig      `mapstructure:"auth"`
	Devices    []DeviceConfig  `mapstructure:"devices"`
	Simulator  SimulatorConfig `mapstructure:"simulator"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type RealtimeConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

type MailConfig struct {
	// BaseURL prefixes the unsubscribe link and the logo in alert emails.
	BaseURL           string `mapstructure:"base_url"`
	MaxParallelWrites int    `mapstructure:"max_parallel_writes"`
}

type RefillConfig struct {
	Threshold float64       `mapstructure:"threshold"`
	Cooldown  time.Duration `mapstructure:"cooldown"`
}

// Rule is the accepted [Min, Max] range of one sensor.
type Rule struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

type HourlyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

type TriggerConfig struct {
	Transport      string        `mapstructure:"transport"`
	Workers        int           `mapstructure:"workers"`
	Buffer         int           `mapstructure:"buffer"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
	Kafka          KafkaConfig   `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// SimulatorConfig drives the built-in demo rig.
type SimulatorConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Tick    time.Duration `mapstructure:"tick"`
}

type DeviceConfig struct {
	Name   string `mapstructure:"name"`
	Secret string `mapstructure:"secret"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("db.path", "clariasense.db")
	v.SetDefault("realtime.path", "realtime.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("cors.origins", []string{"http://localhost:3000"})
	v.SetDefault("mail.base_url", "https://clariasense.web.app")
	v.SetDefault("mail.max_parallel_writes", 8)
	v.SetDefault("refill.threshold", 14.0)
	v.SetDefault("refill.cooldown", time.Hour)
	v.SetDefault("thresholds.ph.min", 6.5)
	v.SetDefault("thresholds.ph.max", 8.5)
	v.SetDefault("thresholds.tds.min", 0.0)
	v.SetDefault("thresholds.tds.max", 500.0)
	v.SetDefault("thresholds.temp.min", 24.0)
	v.SetDefault("thresholds.temp.max", 30.0)
	v.SetDefault("timezone", "Asia/Manila")
	v.SetDefault("hourly_logs.enabled", true)
	v.SetDefault("hourly_logs.schedule", "@hourly")
	v.SetDefault("triggers.transport", TransportLocal)
	v.SetDefault("triggers.workers", 4)
	v.SetDefault("triggers.buffer", 64)
	v.SetDefault("triggers.handler_timeout", 30*time.Second)
	v.SetDefault("triggers.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("triggers.kafka.topic", "clariasense.triggers")
	v.SetDefault("triggers.kafka.group_id", "clariasense")
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "clariasense-backend")
	v.SetDefault("mqtt.topic_prefix", "clariasense")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 12*time.Hour)
	v.SetDefault("simulator.enabled", false)
	v.SetDefault("simulator.tick", 5*time.Second)
}

// Load reads <dir>/config.yml when present, applies .env and environment
// overrides, and validates the result.
func Load(dir string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("server.port must not be empty")
	}
	if c.Mail.MaxParallelWrites <= 0 {
		return errors.New("mail.max_parallel_writes must be positive")
	}
	if c.Refill.Cooldown < 0 {
		return errors.New("refill.cooldown must not be negative")
	}
	for id, r := range c.Thresholds {
		if r.Min > r.Max {
			return fmt.Errorf("thresholds.%s: min %v greater than max %v", id, r.Min, r.Max)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Triggers.Transport {
	case TransportLocal:
	case TransportKafka:
		if len(c.Triggers.Kafka.Brokers) == 0 || c.Triggers.Kafka.Topic == "" {
			return errors.New("triggers.kafka needs brokers and topic")
		}
	default:
		return fmt.Errorf("triggers.transport %q: want %q or %q", c.Triggers.Transport, TransportLocal, TransportKafka)
	}
	if len(c.Devices) > 0 && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when devices are configured")
	}
	if c.Simulator.Enabled && c.Simulator.Tick <= 0 {
		return errors.New("simulator.tick must be positive")
	}
	for i, d := range c.Devices {
		if d.Name == "" || d.Secret == "" {
			return fmt.Errorf("devices[%d]: name and secret are required", i)
		}
	}
	return nil
}

// Location resolves Timezone; empty means UTC.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
