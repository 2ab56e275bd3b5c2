package config

import (
	"os"
	"time"
	// LoadLocation must work in minimal containers
	_ "time/tzdata"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFile    = "data/config.yaml"
	configFileEnv = "CONFIG_FILE"

	telegramTokenEnv    = "TELEGRAM_TOKEN"
	postgresPasswordEnv = "POSTGRES_PASSWORD"
	amqpURLEnv          = "AMQP_URL"
)

type config struct {
	App       AppConfig       `yaml:"app"`
	Storage   StorageConfig   `yaml:"storage"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Memcached MemcachedConfig `yaml:"memcached"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	AMQP      AMQPConfig      `yaml:"amqp"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

type Service struct {
	config config
}

// New reads the YAML file named by CONFIG_FILE, or data/config.yaml.
// Secrets may be supplied through the environment instead of the file.
func New() (*Service, error) {
	path := os.Getenv(configFileEnv)
	if path == "" {
		path = configFile
	}

	rawYAML, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	return Parse(rawYAML)
}

func Parse(rawYAML []byte) (*Service, error) {
	s := &Service{}

	err := yaml.Unmarshal(rawYAML, &s.config)
	if err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}

	s.applyEnv()
	s.applyDefaults()

	if s.config.App.location, err = time.LoadLocation(s.config.App.TimeZone); err != nil {
		return nil, errors.Wrapf(err, "unknown timezone %q", s.config.App.TimeZone)
	}
	return s, nil
}

func (s *Service) applyEnv() {
	if v := os.Getenv(telegramTokenEnv); v != "" {
		s.config.Telegram.ApiToken = v
	}
	if v := os.Getenv(postgresPasswordEnv); v != "" {
		s.config.Postgres.Pswd = v
	}
	if v := os.Getenv(amqpURLEnv); v != "" {
		s.config.AMQP.BrokerURL = v
	}
}

func (s *Service) applyDefaults() {
	c := &s.config
	setDefault(&c.App.TimeZone, "UTC")
	setDefault(&c.Storage.Kind, "file")
	setDefault(&c.Storage.Key, "expenses")
	setDefault(&c.Storage.File, "data/expenses.json")
	setDefault(&c.Storage.SQLite, "data/expenses.db")
	setDefault(&c.Postgres.Mode, "disable")
	if c.Postgres.PortNumber == 0 {
		c.Postgres.PortNumber = 5432
	}
	setDefault(&c.Kafka.Topic, "expense-events")
	setDefault(&c.Kafka.Consumer, "expense-journal")
	setDefault(&c.AMQP.ExchangeName, "expenses")
	setDefault(&c.AMQP.QueueName, "expense-events")
	setDefault(&c.Metrics.Addr, ":8080")
	setDefault(&c.Tracing.Service, "expense-tracker")
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func (s *Service) App() *AppConfig {
	return &s.config.App
}

func (s *Service) Storage() *StorageConfig {
	return &s.config.Storage
}

func (s *Service) Postgres() *PostgresConfig {
	return &s.config.Postgres
}

func (s *Service) Memcached() *MemcachedConfig {
	return &s.config.Memcached
}

func (s *Service) Telegram() *TelegramConfig {
	return &s.config.Telegram
}

func (s *Service) Kafka() *KafkaConfig {
	return &s.config.Kafka
}

func (s *Service) AMQP() *AMQPConfig {
	return &s.config.AMQP
}

func (s *Service) Metrics() *MetricsConfig {
	return &s.config.Metrics
}

func (s *Service) Tracing() *TracingConfig {
	return &s.config.Tracing
}
