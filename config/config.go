package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Files    FilesConfig    `yaml:"files"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type AppConfig struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
}

// FilesConfig points at the reference catalogs and the two booking files.
type FilesConfig struct {
	FlightRecords   string `yaml:"flight_records"`
	HolidayRecords  string `yaml:"holiday_records"`
	FlightBookings  string `yaml:"flight_bookings"`
	HolidayBookings string `yaml:"holiday_bookings"`
}

type CatalogConfig struct {
	Source          string `yaml:"source"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	GroupID            string   `yaml:"group_id"`
}

// Enabled reports whether booking events should be published.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.BookingEventsTopic != ""
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills every unset field with the file names and settings the
// booking system has always used.
func (c *Config) ApplyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Files.FlightRecords == "" {
		c.Files.FlightRecords = "FlightRecords.txt"
	}
	if c.Files.HolidayRecords == "" {
		c.Files.HolidayRecords = "HolidayRecords.txt"
	}
	if c.Files.FlightBookings == "" {
		c.Files.FlightBookings = "FlightBookings.txt"
	}
	if c.Files.HolidayBookings == "" {
		c.Files.HolidayBookings = "HolidayBookings.txt"
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = CatalogSourceFile
	}
	if c.Catalog.CacheTTLSeconds == 0 {
		c.Catalog.CacheTTLSeconds = 300
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "travelbooking-worker"
	}
}

func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogSourceFile, CatalogSourcePostgres:
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}
	if c.Catalog.CacheTTLSeconds < 0 {
		return fmt.Errorf("catalog cache ttl must not be negative")
	}
	return nil
}
