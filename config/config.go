package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	mu sync.Mutex `yaml:"-"`

	Namespace string `yaml:"namespace"`
	StationID string `yaml:"station_id"`

	Web       WebConfig       `yaml:"web"`
	OData     ODataConfig     `yaml:"odata"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Messaging MessagingConfig `yaml:"messaging"`
	Screens   []ScreenConfig  `yaml:"screens"`
}

// WebConfig defines the web server settings.
type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

// ODataConfig defines the SAP gateway connection.
type ODataConfig struct {
	BaseURL   string        `yaml:"base_url"   json:"base_url"`
	Timeout   time.Duration `yaml:"timeout"    json:"timeout"`
	Username  string        `yaml:"username"   json:"username"`
	Password  string        `yaml:"password"   json:"-"`
	SAPClient string        `yaml:"sap_client" json:"sap_client"`
}

// DatabaseConfig selects the SQL backend.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // "sqlite" or "postgres"
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig defines the SQLite file location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig defines PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// RedisConfig defines the optional screen summary cache.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MessagingConfig defines the messaging backend.
type MessagingConfig struct {
	Enabled             bool          `yaml:"enabled"`
	Backend             string        `yaml:"backend"` // "mqtt" or "kafka"
	MQTT                MQTTConfig    `yaml:"mqtt"`
	Kafka               KafkaConfig   `yaml:"kafka"`
	ActivityTopic       string        `yaml:"activity_topic"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval"`
}

// MQTTConfig defines MQTT broker settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// KafkaConfig defines Kafka broker settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

// ScreenConfig overrides or adds an order-list screen. Fields left empty
// keep the built-in value when ID matches a built-in screen.
type ScreenConfig struct {
	ID            string   `yaml:"id"`
	Title         string   `yaml:"title"`
	Service       string   `yaml:"service"`
	EntitySet     string   `yaml:"entity_set"`
	PlantField    string   `yaml:"plant_field"`
	DocumentField string   `yaml:"document_field"`
	SearchFields  []string `yaml:"search_fields"`
	MonthField    string   `yaml:"month_field"`
	StartField    string   `yaml:"start_field"`
	EndField      string   `yaml:"end_field"`
	CreatedField  string   `yaml:"created_field"`
	QuantityField string   `yaml:"quantity_field"`
	UnitField     string   `yaml:"unit_field"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Namespace: "plant",
		StationID: "shopfloor-1",
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 8085,
		},
		OData: ODataConfig{
			BaseURL: "http://localhost:8000/sap/opu/odata/SAP",
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "shopfloor.db"},
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Messaging: MessagingConfig{
			Backend:             "mqtt",
			ActivityTopic:       "shopfloor/activity",
			OutboxDrainInterval: 5 * time.Second,
			MQTT: MQTTConfig{
				Broker: "localhost",
				Port:   1883,
			},
		},
	}
}

// Load reads a YAML config file. If the file doesn't exist, defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ClientID returns the MQTT client ID, or derives one from namespace and station.
func (c *Config) ClientID() string {
	if c.Messaging.MQTT.ClientID != "" {
		return c.Messaging.MQTT.ClientID
	}
	return c.Namespace + "." + c.StationID
}

// ODataSnapshot returns a copy of the OData settings under the config lock.
func (c *Config) ODataSnapshot() ODataConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.OData
}

// Lock acquires the config mutex for multi-step mutations.
func (c *Config) Lock() { c.mu.Lock() }

// Unlock releases the config mutex.
func (c *Config) Unlock() { c.mu.Unlock() }
