package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port: got %q", cfg.Server.Port)
	}
	if cfg.Refill.Threshold != 14 || cfg.Refill.Cooldown != time.Hour {
		t.Fatalf("refill defaults: %+v", cfg.Refill)
	}
	if r, ok := cfg.Thresholds["ph"]; !ok || r.Min != 6.5 || r.Max != 8.5 {
		t.Fatalf("ph threshold defaults: %+v", cfg.Thresholds)
	}
	if cfg.Triggers.Transport != TransportLocal {
		t.Fatalf("transport: got %q", cfg.Triggers.Transport)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
refill:
  cooldown: 30m
thresholds:
  tds:
    min: 50
    max: 400
auth:
  jwt_secret: s3cret
devices:
  - name: tank-1
    secret: pw
`)
	t.Setenv("CLARIASENSE_SERVER_PORT", "7070")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("env should override port, got %q", cfg.Server.Port)
	}
	if cfg.Refill.Cooldown != 30*time.Minute {
		t.Fatalf("cooldown: got %v", cfg.Refill.Cooldown)
	}
	if r := cfg.Thresholds["tds"]; r.Min != 50 || r.Max != 400 {
		t.Fatalf("tds threshold: %+v", r)
	}
	if len(cfg.Devices) != 1 || cfg.Devices[0].Name != "tank-1" {
		t.Fatalf("devices: %+v", cfg.Devices)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Port: "8080"},
			Mail:     MailConfig{MaxParallelWrites: 4},
			Triggers: TriggerConfig{Transport: TransportLocal},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "empty port", mutate: func(c *Config) { c.Server.Port = " " }, wantErr: "server.port"},
		{name: "inverted range", mutate: func(c *Config) { c.Thresholds = map[string]Rule{"ph": {Min: 9, Max: 6}} }, wantErr: "thresholds.ph"},
		{name: "bad transport", mutate: func(c *Config) { c.Triggers.Transport = "nats" }, wantErr: "triggers.transport"},
		{name: "kafka without topic", mutate: func(c *Config) {
			c.Triggers.Transport = TransportKafka
			c.Triggers.Kafka.Brokers = []string{"b:9092"}
		}, wantErr: "triggers.kafka"},
		{name: "devices without secret key", mutate: func(c *Config) {
			c.Devices = []DeviceConfig{{Name: "a", Secret: "b"}}
		}, wantErr: "jwt_secret"},
		{name: "simulator without tick", mutate: func(c *Config) { c.Simulator.Enabled = true }, wantErr: "simulator.tick"},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }, wantErr: "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("want error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
